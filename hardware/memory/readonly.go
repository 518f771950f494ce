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

import (
	"github.com/pepsim/pepsim/hardware/device"
	"github.com/pepsim/pepsim/trace"
)

// ReadOnly wraps a Target and rejects writes made by the running program.
// Writes of type BufferInternal, as made by the loader and the debugger, are
// passed through.
type ReadOnly struct {
	target     Target
	allowClear bool
}

// NewReadOnly is the preferred method of initialisation for the ReadOnly
// type. If allowClear is false then calls to Clear() are ignored.
func NewReadOnly(target Target, allowClear bool) *ReadOnly {
	return &ReadOnly{
		target:     target,
		allowClear: allowClear,
	}
}

// Unwrap returns the wrapped Target.
func (ro *ReadOnly) Unwrap() Target {
	return ro.target
}

// Descriptor implements the Device interface. The descriptor is that of the
// wrapped target, if it has one.
func (ro *ReadOnly) Descriptor() device.Descriptor {
	if d, ok := ro.target.(Device); ok {
		return d.Descriptor()
	}
	return device.Descriptor{}
}

// Span implements the Target interface.
func (ro *ReadOnly) Span() AddressSpan {
	return ro.target.Span()
}

// Read implements the Target interface.
func (ro *ReadOnly) Read(address uint16, dest []byte, op Operation) Result {
	return ro.target.Read(address, dest, op)
}

// Write implements the Target interface.
func (ro *ReadOnly) Write(address uint16, src []byte, op Operation) Result {
	if op.Type == Application {
		return Failed(WriteToRO)
	}
	return ro.target.Write(address, src, op)
}

// Clear implements the Target interface.
func (ro *ReadOnly) Clear(fill byte) {
	if ro.allowClear {
		ro.target.Clear(fill)
	}
}

// Dump implements the Target interface.
func (ro *ReadOnly) Dump(dest []byte) {
	ro.target.Dump(dest)
}

// Peek implements the Peeker interface.
func (ro *ReadOnly) Peek(address uint16, dest []byte) bool {
	return ro.target.Read(address, dest, Internal).Completed
}

// SetBuffer implements the Traced interface.
func (ro *ReadOnly) SetBuffer(tb *trace.Buffer) {
	if t, ok := ro.target.(Traced); ok {
		t.SetBuffer(tb)
	}
}
