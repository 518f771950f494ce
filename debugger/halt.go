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

package debugger

// StopReason indicates why Run() returned.
type StopReason int

// List of valid StopReason values.
const (
	// an instruction asked for execution to pause
	Paused StopReason = iota

	// a watch or breakpoint fired
	Break

	// the CPU needs input from an input port that has no more data
	NeedsInput

	// the CPU can no longer run. for example, an illegal opcode or a memory
	// fault
	Terminated

	// the machine has been powered off
	Halted

	// the tick limit was reached
	LimitReached

	// the context was cancelled
	Cancelled
)

func (r StopReason) String() string {
	switch r {
	case Paused:
		return "paused"
	case Break:
		return "break"
	case NeedsInput:
		return "needs input"
	case Terminated:
		return "terminated"
	case Halted:
		return "halted"
	case LimitReached:
		return "limit reached"
	case Cancelled:
		return "cancelled"
	}
	return "unknown stop reason"
}
