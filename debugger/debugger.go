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

import (
	"context"
	"fmt"

	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/debugger/terminal"
	"github.com/pepsim/pepsim/hardware"
	"github.com/pepsim/pepsim/hardware/memory"
	"github.com/pepsim/pepsim/hardware/tick"
	"github.com/pepsim/pepsim/logger"
	"github.com/pepsim/pepsim/rewind"
	"github.com/pepsim/pepsim/trace"
)

// Sentinel error patterns.
const (
	UnknownInput    = "debugger: unknown input port (%s)"
	UnknownOutput   = "debugger: unknown output port (%s)"
	UnmappedAddress = "debugger: address %#04x is not mapped"
	PokeError       = "debugger: poke %#04x: %v"
	InvalidDuration = "debugger: invalid duration (%v)"
)

// Debugger is the stepping frontend for a hardware.System.
type Debugger struct {
	sys    *hardware.System
	tb     *trace.Buffer
	rewind *rewind.Rewind

	watches     *watches
	breakpoints *breakpoints

	// descriptions of filter events that have not yet been collected by
	// Events()
	events []string

	// fields used by the interactive input loop. see Start()
	term      terminal.Terminal
	runLimit  int
	quit      bool
	printSeen map[string]int
}

// NewDebugger is the preferred method of initialisation for the Debugger
// type. A trace buffer is attached to the System if it does not have one.
func NewDebugger(sys *hardware.System) *Debugger {
	dbg := &Debugger{
		sys:       sys,
		tb:        sys.Buffer(),
		printSeen: make(map[string]int),
	}

	if dbg.tb == nil {
		dbg.tb = trace.NewBuffer()
		sys.SetBuffer(dbg.tb)
	}

	dbg.rewind = rewind.NewRewind(sys)
	dbg.watches = newWatches(dbg)
	dbg.breakpoints = newBreakpoints(dbg)

	return dbg
}

// System returns the System being debugged.
func (dbg *Debugger) System() *hardware.System {
	return dbg.sys
}

// Rewind returns the Rewind instance used for stepping backwards and
// forwards.
func (dbg *Debugger) Rewind() *rewind.Rewind {
	return dbg.rewind
}

// Reset initialises the System. Watches and breakpoints are kept but any
// undone ticks and uncollected events are forgotten.
func (dbg *Debugger) Reset() {
	dbg.sys.Init()
	dbg.rewind.Reset()
	dbg.events = dbg.events[:0]
	clear(dbg.printSeen)
	logger.Log(logger.Allow, "debugger", "machine reset")
}

// Events returns the descriptions of the watches and breakpoints that have
// fired since the previous call to Events(). The events are forgotten once
// returned.
func (dbg *Debugger) Events() []string {
	ev := dbg.events
	dbg.events = nil
	return ev
}

// collect the filter events of the most recent tick. returns true if there
// were any events
func (dbg *Debugger) collectEvents() bool {
	evs := dbg.tb.Events()
	if len(evs) == 0 {
		return false
	}
	dbg.tb.ClearEvents()

	for _, ev := range evs {
		if w, ok := dbg.watches.find(ev.Handle); ok {
			dbg.events = append(dbg.events, fmt.Sprintf("watch %s", w))
		} else if b, ok := dbg.breakpoints.find(ev.Handle); ok {
			dbg.events = append(dbg.events, fmt.Sprintf("break %s", b))
		} else {
			dbg.events = append(dbg.events, ev.String())
		}
	}

	return true
}

// step the machine forward by one tick. the broke value is true if a watch
// or breakpoint fired during the tick
func (dbg *Debugger) step() (res tick.Result, broke bool, err error) {
	// executing a new tick invalidates the undone ticks
	if err := dbg.rewind.Commit(); err != nil {
		return tick.Result{}, false, err
	}

	dbg.sys.CPU().UpdateStartingPC()
	_, res = dbg.sys.Tick(tick.Jump)

	// events from a tick that was unwound never happened
	if res.Error != tick.Success {
		dbg.tb.ClearEvents()
		return res, false, nil
	}

	return res, dbg.collectEvents(), nil
}

// Step executes a single tick.
//
// If ticks have been undone with StepBack() then the undone ticks are
// forgotten before the new tick is executed.
func (dbg *Debugger) Step() (tick.Result, error) {
	res, _, err := dbg.step()
	return res, err
}

// Run executes ticks until the limit is reached or until execution is stopped
// for another reason. A limit of zero or less means no limit.
func (dbg *Debugger) Run(ctx context.Context, limit int) (StopReason, error) {
	for i := 0; limit <= 0 || i < limit; i++ {
		if ctx.Err() != nil {
			return Cancelled, nil
		}

		res, broke, err := dbg.step()
		if err != nil {
			return Terminated, err
		}

		switch res.Error {
		case tick.NoMMInput:
			return NeedsInput, nil
		case tick.Terminate:
			if dbg.sys.Halted() {
				return Halted, nil
			}
			return Terminated, nil
		}

		if broke {
			return Break, nil
		}
		if dbg.sys.Halted() {
			return Halted, nil
		}
		if res.Pause {
			return Paused, nil
		}
	}

	return LimitReached, nil
}

// StepBack undoes the most recent tick. Returns false if there is nothing to
// undo.
func (dbg *Debugger) StepBack() (bool, error) {
	return dbg.rewind.StepBack()
}

// StepForward redoes the most recently undone tick. Returns false if there is
// nothing to redo.
func (dbg *Debugger) StepForward() (bool, error) {
	return dbg.rewind.StepForward()
}

// GotoTick moves backwards or forwards through the recorded ticks.
func (dbg *Debugger) GotoTick(t tick.Type) (tick.Type, error) {
	return dbg.rewind.GotoTick(t)
}

// Feed appends data to the named input port. It must not be called while a
// tick is in progress.
func (dbg *Debugger) Feed(name string, data []byte) error {
	in := dbg.sys.Input(name)
	if in == nil {
		return curated.Errorf(UnknownInput, name)
	}
	in.Endpoint().AppendValue(data...)
	return nil
}

// Output returns everything written to the named output port.
func (dbg *Debugger) Output(name string) ([]byte, error) {
	out := dbg.sys.Output(name)
	if out == nil {
		return nil, curated.Errorf(UnknownOutput, name)
	}
	return out.Endpoint().History(), nil
}

// Peek reads memory without side effects. The read is never recorded.
func (dbg *Debugger) Peek(address uint16, length int) ([]byte, error) {
	b := make([]byte, length)
	if !dbg.sys.Bus().Peek(address, b) {
		return nil, curated.Errorf(UnmappedAddress, address)
	}
	return b, nil
}

// Poke writes memory directly. Read-only memory can be poked.
//
// The write is not recorded. Undone ticks are committed first and the
// recorded history is then forgotten, so StepBack() can not replay deltas
// over the poked value.
func (dbg *Debugger) Poke(address uint16, data []byte) error {
	if err := dbg.rewind.Commit(); err != nil {
		return err
	}
	r := dbg.sys.Bus().Write(address, data, memory.Internal)
	if !r.Completed {
		return curated.Errorf(PokeError, address, r.Error)
	}
	return dbg.rewind.Forget()
}
