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

package tick

import (
	"slices"

	"github.com/pepsim/pepsim/hardware/device"
)

// Mode decides how far Scheduler.Next() advances.
type Mode int

// List of valid Mode values.
const (
	// advance by exactly one tick, even if nothing is due
	Increment Mode = iota

	// advance to the next tick on which something is due
	Jump
)

// State of a recipient.
type State int

// List of valid State values.
const (
	Idle State = iota
	Paused
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Paused:
		return "paused"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// Scheduler orders recipients in time.
type Scheduler interface {
	Next(current Type, mode Mode) (Type, []Recipient)
	Schedule(r Recipient, startingOn Type)
	Reschedule(id device.ID, startingOn Type) bool
}

type scheduled struct {
	r     Recipient
	next  Type
	state State
}

// SimpleScheduler keeps recipients sorted by the tick they are next due.
// Recipients due on the same tick are ordered by ID.
type SimpleScheduler struct {
	entries []*scheduled
}

// NewSimpleScheduler is the preferred method of initialisation for the
// SimpleScheduler type.
func NewSimpleScheduler() *SimpleScheduler {
	return &SimpleScheduler{}
}

func (s *SimpleScheduler) sort() {
	slices.SortStableFunc(s.entries, func(a, b *scheduled) int {
		if a.next != b.next {
			if a.next < b.next {
				return -1
			}
			return 1
		}
		return int(a.r.ID()) - int(b.r.ID())
	})
}

func (s *SimpleScheduler) find(id device.ID) *scheduled {
	for _, e := range s.entries {
		if e.r.ID() == id {
			return e
		}
	}
	return nil
}

// Schedule implements the Scheduler interface. Scheduling a recipient that
// is already scheduled is the same as rescheduling it.
func (s *SimpleScheduler) Schedule(r Recipient, startingOn Type) {
	if e := s.find(r.ID()); e != nil {
		e.next = startingOn
		e.state = Idle
	} else {
		s.entries = append(s.entries, &scheduled{r: r, next: startingOn})
	}
	s.sort()
}

// Reschedule implements the Scheduler interface. Returns false if the
// recipient is not known to the scheduler.
func (s *SimpleScheduler) Reschedule(id device.ID, startingOn Type) bool {
	e := s.find(id)
	if e == nil {
		return false
	}
	e.next = startingOn
	s.sort()
	return true
}

// Next implements the Scheduler interface. Returns the new current tick and
// the recipients due on that tick, in order. Terminated recipients are never
// due.
func (s *SimpleScheduler) Next(current Type, mode Mode) (Type, []Recipient) {
	t := current + 1

	if mode == Jump {
		found := false
		for _, e := range s.entries {
			if e.state != Terminated {
				t = max(e.next, current+1)
				found = true
				break
			}
		}
		if !found {
			return current, nil
		}
	}

	var due []Recipient
	for _, e := range s.entries {
		if e.next > t {
			break
		}
		if e.state != Terminated {
			due = append(due, e.r)
		}
	}
	return t, due
}

// Due returns the tick on which the recipient is next due.
func (s *SimpleScheduler) Due(id device.ID) (Type, bool) {
	e := s.find(id)
	if e == nil {
		return 0, false
	}
	return e.next, true
}

// State returns the state of the recipient.
func (s *SimpleScheduler) State(id device.ID) State {
	if e := s.find(id); e != nil {
		return e.state
	}
	return Terminated
}

// SetState changes the state of the recipient. A terminated recipient is
// only scheduled again after its state is set back to Idle.
func (s *SimpleScheduler) SetState(id device.ID, state State) {
	if e := s.find(id); e != nil {
		e.state = state
	}
}

// Update changes the state of a recipient and reschedules it according to
// the result of clocking it on tick t. A recipient that needs more input is
// left due on the same tick so that the tick can be retried.
func (s *SimpleScheduler) Update(r Recipient, t Type, res Result) {
	e := s.find(r.ID())
	if e == nil {
		return
	}

	switch res.Error {
	case Terminate:
		e.state = Terminated
		return
	case NoMMInput:
		e.state = Paused
		return
	}

	if res.Pause {
		e.state = Paused
	} else {
		e.state = Idle
	}
	e.next = res.NextTick(t, r.Source())
	s.sort()
}
