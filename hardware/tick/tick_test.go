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

package tick_test

import (
	"testing"

	"github.com/pepsim/pepsim/hardware/device"
	"github.com/pepsim/pepsim/hardware/tick"
	"github.com/pepsim/pepsim/test"
)

type recipient struct {
	id     device.ID
	src    tick.Source
	result tick.Result
	clocks []tick.Type
}

func (r *recipient) ID() device.ID             { return r.id }
func (r *recipient) Source() tick.Source       { return r.src }
func (r *recipient) SetSource(src tick.Source) { r.src = src }

func (r *recipient) Clock(current tick.Type) tick.Result {
	r.clocks = append(r.clocks, current)
	return r.result
}

// run the scheduler for a number of steps and clock whatever is due
func run(s *tick.SimpleScheduler, mode tick.Mode, steps int) tick.Type {
	var t tick.Type
	for range steps {
		var due []tick.Recipient
		t, due = s.Next(t, mode)
		for _, r := range due {
			s.Update(r, t, r.Clock(t))
		}
	}
	return t
}

func TestResultNextTick(t *testing.T) {
	r := tick.Result{Delay: 2, TickDelay: true}
	test.ExpectEquality(t, r.NextTick(10, tick.NewClock(3)), 12)

	r.TickDelay = false
	test.ExpectEquality(t, r.NextTick(10, tick.NewClock(3)), 16)
	test.ExpectEquality(t, r.NextTick(10, nil), 12)

	r.Delay = 0
	test.ExpectEquality(t, r.NextTick(10, tick.NewClock(3)), 13)
}

func TestIncrement(t *testing.T) {
	s := tick.NewSimpleScheduler()
	a := &recipient{id: 1, result: tick.Result{Delay: 1, TickDelay: true}}
	b := &recipient{id: 2, result: tick.Result{Delay: 2, TickDelay: true}}
	s.Schedule(b, 1)
	s.Schedule(a, 1)

	cur := run(s, tick.Increment, 4)
	test.ExpectEquality(t, cur, 4)
	test.ExpectEquality(t, len(a.clocks), 4)
	test.ExpectEquality(t, len(b.clocks), 2)
	test.ExpectEquality(t, b.clocks[1], 3)

	// ties are broken by ID
	_, due := s.Next(4, tick.Increment)
	test.DemandEquality(t, len(due), 2)
	test.ExpectEquality(t, due[0].ID(), 1)
	test.ExpectEquality(t, due[1].ID(), 2)
}

func TestJump(t *testing.T) {
	s := tick.NewSimpleScheduler()
	a := &recipient{id: 1, src: tick.NewClock(10), result: tick.Result{Delay: 1}}
	s.Schedule(a, 5)

	cur := run(s, tick.Jump, 3)
	test.ExpectEquality(t, cur, 25)
	test.DemandEquality(t, len(a.clocks), 3)
	test.ExpectEquality(t, a.clocks[0], 5)
	test.ExpectEquality(t, a.clocks[1], 15)

	// nothing scheduled
	e := tick.NewSimpleScheduler()
	cur, due := e.Next(7, tick.Jump)
	test.ExpectEquality(t, cur, 7)
	test.ExpectEquality(t, len(due), 0)

	// increment mode still advances when nothing is due
	cur, due = e.Next(7, tick.Increment)
	test.ExpectEquality(t, cur, 8)
	test.ExpectEquality(t, len(due), 0)
}

func TestStates(t *testing.T) {
	s := tick.NewSimpleScheduler()
	a := &recipient{id: 1, result: tick.Result{Delay: 1, TickDelay: true, Error: tick.NoMMInput}}
	s.Schedule(a, 1)

	// needing input leaves the recipient due on the same tick
	run(s, tick.Increment, 1)
	test.ExpectEquality(t, s.State(1), tick.Paused)
	due, ok := s.Due(1)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, due, 1)

	a.result.Error = tick.Success
	a.result.Pause = true
	_, rs := s.Next(0, tick.Increment)
	test.DemandEquality(t, len(rs), 1)
	s.Update(a, 1, a.Clock(1))
	test.ExpectEquality(t, s.State(1), tick.Paused)

	a.result.Pause = false
	s.Update(a, 2, a.Clock(2))
	test.ExpectEquality(t, s.State(1), tick.Idle)

	a.result.Error = tick.Terminate
	s.Update(a, 3, a.Clock(3))
	test.ExpectEquality(t, s.State(1), tick.Terminated)
	_, rs = s.Next(3, tick.Increment)
	test.ExpectEquality(t, len(rs), 0)

	// reinitialising
	s.SetState(1, tick.Idle)
	test.ExpectSuccess(t, s.Reschedule(1, 4))
	_, rs = s.Next(3, tick.Increment)
	test.ExpectEquality(t, len(rs), 1)

	test.ExpectFailure(t, s.Reschedule(9, 4))
	test.ExpectEquality(t, s.State(9), tick.Terminated)
}
