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

// Package debugger implements a stepping debugger for a hardware.System.
// Features include:
//
//	- single stepping and running to a limit
//	- stepping backwards and forwards through the recorded trace
//	- memory peek and poke
//	- watches on memory addresses
//	- breakpoints on the program counter
//
// Initialisation of the debugger is done with the NewDebugger() function
//
//	dbg := debugger.NewDebugger(sys)
//
// The debugger attaches a trace buffer to the System if one is not already
// attached. Stepping backwards is not possible without the trace.
//
// The machine can be driven directly with the Step(), Run(), StepBack() and
// StepForward() functions, or interactively through a terminal with the
// Start() function.
//
//	err := dbg.Start(ctx, plainterm.NewPlainTerminal(nil, nil), "")
//
// Watches and breakpoints are implemented as trace filters. When a filter
// fires the event is reported by the Events() function, after which it is
// forgotten.
package debugger
