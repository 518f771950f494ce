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
	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/hardware"
	"github.com/pepsim/pepsim/hardware/tick"
	"github.com/pepsim/pepsim/logger"
	"github.com/pepsim/pepsim/trace"
)

// Sentinel error patterns.
const (
	NoBuffer    = "rewind: system has no trace buffer"
	ReplayError = "rewind: %v"
)

// Rewind keeps a cursor into the trace of a System.
type Rewind struct {
	sys *hardware.System

	// the position in the trace of the earliest undone tick. only meaningful
	// when undone is greater than zero
	cursor int

	// the number of ticks that have been undone
	undone int

	// the earliest tick in the trace
	start tick.Type
}

// NewRewind is the preferred method of initialisation for the Rewind type.
func NewRewind(sys *hardware.System) *Rewind {
	return &Rewind{sys: sys}
}

// Reset forgets any undone ticks. It should be called whenever the System is
// initialised.
func (r *Rewind) Reset() {
	r.cursor = 0
	r.undone = 0
	r.start = r.sys.CurrentTick()
}

// Undone returns the number of ticks that have been undone and not yet
// committed or redone.
func (r *Rewind) Undone() int {
	return r.undone
}

// position returns the trace position of the earliest undone tick or the
// end of the trace if nothing has been undone
func (r *Rewind) position(tb *trace.Buffer) int {
	if r.undone == 0 {
		return tb.End()
	}
	return r.cursor
}

func (r *Rewind) buffer() (*trace.Buffer, error) {
	tb := r.sys.Buffer()
	if tb == nil {
		return nil, curated.Errorf(NoBuffer)
	}
	return tb, nil
}

// StepBack undoes the most recent tick. Returns false if there is nothing
// to undo.
func (r *Rewind) StepBack() (bool, error) {
	tb, err := r.buffer()
	if err != nil {
		return false, err
	}

	loc := tb.PrevTick(r.position(tb))
	if loc < 0 {
		return false, nil
	}

	if err := tb.ReplayTick(loc, trace.Backward, r.sys.Replayer); err != nil {
		return false, curated.Errorf(ReplayError, err)
	}

	r.cursor = loc
	r.undone++
	r.sys.SetTick(r.sys.CurrentTick() - 1)

	return true, nil
}

// StepForward redoes the earliest undone tick. Returns false if there is
// nothing to redo.
func (r *Rewind) StepForward() (bool, error) {
	tb, err := r.buffer()
	if err != nil {
		return false, err
	}

	if r.undone == 0 {
		return false, nil
	}

	if err := tb.ReplayTick(r.cursor, trace.Forward, r.sys.Replayer); err != nil {
		return false, curated.Errorf(ReplayError, err)
	}

	r.cursor = tb.NextTick(r.cursor)
	r.undone--
	r.sys.SetTick(r.sys.CurrentTick() + 1)

	return true, nil
}

// GotoTick steps backwards or forwards until the System is at the tick or
// until no more steps are possible. Returns the tick reached.
func (r *Rewind) GotoTick(t tick.Type) (tick.Type, error) {
	for r.sys.CurrentTick() > t {
		ok, err := r.StepBack()
		if err != nil {
			return r.sys.CurrentTick(), err
		}
		if !ok {
			break
		}
	}
	for r.sys.CurrentTick() < t {
		ok, err := r.StepForward()
		if err != nil {
			return r.sys.CurrentTick(), err
		}
		if !ok {
			break
		}
	}
	return r.sys.CurrentTick(), nil
}

// Commit removes the undone ticks from the trace. The undone ticks can no
// longer be redone.
func (r *Rewind) Commit() error {
	if r.undone == 0 {
		return nil
	}

	tb, err := r.buffer()
	if err != nil {
		return err
	}

	if err := tb.Truncate(r.cursor); err != nil {
		return curated.Errorf(ReplayError, err)
	}

	logger.Logf(logger.Allow, "rewind", "forgetting %d ticks after tick %d", r.undone, r.sys.CurrentTick())
	r.undone = 0

	return nil
}

// Forget removes every recorded tick from the trace. Nothing can be undone or
// redone afterwards. It should be called whenever the System is changed
// outside of a tick, because the recorded deltas no longer describe the path
// to the current state.
func (r *Rewind) Forget() error {
	tb, err := r.buffer()
	if err != nil {
		return err
	}
	tb.Clear()
	r.Reset()
	logger.Logf(logger.Allow, "rewind", "forgetting history at tick %d", r.sys.CurrentTick())
	return nil
}
