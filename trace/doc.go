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

// Package trace records every state change in the simulated machine as a
// replayable and reversible log.
//
// The Buffer is a byte slice of encoded fragments. Frame headers (Trace and
// Extender) divide the buffer into ticks. Packet headers (Clear, PureRead,
// ImpureRead, Write, Increment) describe an access to a device. Payloads
// (Variable) carry the data for the preceding packet.
//
// Writes to ordinary memory are recorded as the XOR of the old and new
// values. Applying the same delta twice is a no-op so the same packet can be
// used to undo and redo the write. See the Replayer interface.
//
// Frame headers store the distance to the previous frame and the length of
// the frame, which means frames can be visited in both directions without
// decoding their contents. Finer grained backward navigation is helped by a
// cache of backlinks that is filled as the buffer is walked forward.
//
// What is recorded is decided by the installed filters. The TraceFilter
// records every access to a set of devices and the ValueFilter pauses
// execution when a watched address takes a watched value.
package trace
