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

package rewind

import (
	"fmt"

	"github.com/pepsim/pepsim/hardware/tick"
)

// Timeline provides a summary of the current state of the rewind system.
//
// Useful for user interfaces, to present the range of ticks that are
// available in the rewind history.
type Timeline struct {
	// the earliest and latest ticks that can be reached
	Start tick.Type
	End   tick.Type

	// the tick the System is currently at
	Current tick.Type
}

func (tl Timeline) String() string {
	return fmt.Sprintf("%d [%d-%d]", tl.Current, tl.Start, tl.End)
}

// Timeline returns the current state of the rewind system. The trace buffer
// is cleared when the System is initialised so the start of the timeline is
// tick zero unless the history has since been forgotten.
func (r *Rewind) Timeline() Timeline {
	cur := r.sys.CurrentTick()
	return Timeline{
		Start:   r.start,
		End:     cur + tick.Type(r.undone),
		Current: cur,
	}
}
