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

// Package rewind moves a hardware.System backwards and forwards through the
// ticks recorded in its trace buffer.
//
// Moving backwards replays the packets of the most recent tick in reverse,
// undoing every change the tick made to memory, registers and the
// memory-mapped devices. Moving forwards replays the packets of the next
// undone tick. No snapshots of the machine are ever taken: the trace is the
// only record of the machine's history.
//
// Ticks that have been undone remain in the trace until Commit() is called.
// Commit() must be called before the System is ticked again, otherwise the
// new tick would be recorded after ticks that no longer happened.
package rewind
