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

package memory

import "github.com/pepsim/pepsim/trace"

// Error describes why a memory access did not complete normally.
type Error int

// List of valid Error values.
const (
	Success Error = iota

	// no target contains the address
	Unmapped

	// the access extends beyond the end of the target
	OOBAccess

	// an input has no more data and its fail policy is RaiseError
	NeedsMMI

	// a trace filter requested a break. the access did complete
	Breakpoint

	// the access can never succeed
	Terminate

	// the running program wrote to read-only memory
	WriteToRO
)

func (e Error) String() string {
	switch e {
	case Success:
		return "success"
	case Unmapped:
		return "unmapped"
	case OOBAccess:
		return "out of bounds access"
	case NeedsMMI:
		return "needs memory-mapped input"
	case Breakpoint:
		return "breakpoint"
	case Terminate:
		return "terminate"
	case WriteToRO:
		return "write to read-only"
	}
	return "unknown error"
}

// Result of a memory access. If Completed is false then Error is never
// Success. Pause indicates that the running program should be interrupted
// once the current instruction has finished.
type Result struct {
	Completed bool
	Pause     bool
	Error     Error
}

// Completed is the Result of an access that completed normally.
var Completed = Result{Completed: true}

// Failed returns a Result for an access that did not complete.
func Failed(e Error) Result {
	return Result{Completed: false, Error: e}
}

func (r Result) String() string {
	if r.Pause {
		return r.Error.String() + " (pause)"
	}
	return r.Error.String()
}

// Merge combines two results. The first incomplete Result takes precedence,
// otherwise pauses and breakpoints are accumulated.
func (r Result) Merge(o Result) Result {
	if !r.Completed {
		return r
	}
	if !o.Completed {
		return o
	}
	r.Pause = r.Pause || o.Pause
	if r.Error == Success {
		r.Error = o.Error
	}
	return r
}

// FromAction converts the action decided by the trace filters into a Result
// for a completed access.
func FromAction(act trace.Action) Result {
	if act >= trace.Break {
		return Result{Completed: true, Pause: true, Error: Breakpoint}
	}
	return Completed
}

// FailPolicy decides what an input does when it has no more data.
type FailPolicy int

// List of valid FailPolicy values.
const (
	// the access fails with NeedsMMI
	RaiseError FailPolicy = iota

	// the access completes with a default value
	YieldDefaultValue
)

func (p FailPolicy) String() string {
	if p == YieldDefaultValue {
		return "yield default"
	}
	return "raise error"
}
