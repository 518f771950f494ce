// This file is part of Pepsim.
//
// Pepsim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Pepsim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Pepsim.  If not, see <https://www.gnu.org/licenses/>.

// Package memory defines the Target contract for anything addressable in the
// simulated machine and provides the basic implementations of it.
//
// A Target is a range of bytes addressed from zero. The Dense type is the
// simplest Target: a plain array of bytes. The ReadOnly type wraps another
// Target and rejects writes issued by the running program.
//
// The Bus type is a Target that contains other Targets. Each Target is
// registered on the Bus with the span of bus addresses it occupies and the
// Bus translates a bus address into the local address of the Target.
// Targets may overlap on the Bus, in which case the most recently pushed
// Target takes priority. Because the Bus is itself a Target, buses may be
// nested.
//
// Memory accesses never return Go errors for expected conditions. Instead,
// every access returns a Result which describes whether the access completed
// and why it didn't. It is up to the caller, usually the CPU, to decide how
// serious the condition is.
//
// Accesses are tagged with an Operation. Accesses of type Application are
// made by the running program and are recorded in the trace buffer, if one
// is attached to the Target. Accesses of type BufferInternal are made by the
// simulator itself (the loader, the debugger, trace filters) and are never
// recorded.
package memory
