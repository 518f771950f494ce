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
	"fmt"

	"github.com/pepsim/pepsim/hardware/device"
)

// Type is a point in simulated time.
type Type uint64

// Error is the outcome of a clock.
type Error int

// List of valid Error values.
const (
	Success Error = iota

	// the recipient needs more input. the tick can be retried once input
	// has been supplied
	NoMMInput

	// the recipient cannot continue until it has been reinitialised
	Terminate
)

func (e Error) String() string {
	switch e {
	case Success:
		return "success"
	case NoMMInput:
		return "no memory-mapped input"
	case Terminate:
		return "terminate"
	}
	return "unknown"
}

// Result of a call to Recipient.Clock().
//
// If TickDelay is true then Delay is a number of ticks, otherwise it is a
// number of the recipient's clock intervals.
type Result struct {
	Pause     bool
	TickDelay bool
	Error     Error
	Delay     Type
}

func (r Result) String() string {
	s := fmt.Sprintf("%s (delay %d", r.Error, r.Delay)
	if !r.TickDelay {
		s = fmt.Sprintf("%s intervals", s)
	}
	if r.Pause {
		return s + ", pause)"
	}
	return s + ")"
}

// NextTick returns the tick on which the recipient should next be clocked.
// A delay of zero is treated as one.
func (r Result) NextTick(current Type, src Source) Type {
	d := max(r.Delay, 1)
	if !r.TickDelay && src != nil {
		d *= max(src.Interval(), 1)
	}
	return current + d
}

// Source is a clock source. The interval is the number of ticks in one clock
// cycle.
type Source interface {
	Interval() Type
}

// Clock is a simple implementation of Source.
type Clock struct {
	interval Type
}

// NewClock is the preferred method of initialisation for the Clock type.
func NewClock(interval Type) *Clock {
	return &Clock{interval: interval}
}

// Interval implements the Source interface.
func (c *Clock) Interval() Type {
	return c.interval
}

// Recipient is anything that can be clocked.
type Recipient interface {
	// the device ID of the recipient is used to identify it to the scheduler
	ID() device.ID

	Clock(current Type) Result
	Source() Source
	SetSource(src Source)
}
