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

package mmio

import (
	"github.com/pepsim/pepsim/hardware/device"
	"github.com/pepsim/pepsim/hardware/memory"
	"github.com/pepsim/pepsim/trace"
)

// Output is a memory-mapped output port. Every byte written by the running
// program is appended to the endpoint. Reads return the most recently
// written byte.
type Output struct {
	desc     device.Descriptor
	span     memory.AddressSpan
	endpoint Endpoint

	tb *trace.Buffer
}

// NewOutput is the preferred method of initialisation for the Output type.
func NewOutput(desc device.Descriptor, span memory.AddressSpan) *Output {
	return &Output{
		desc: desc,
		span: span,
	}
}

// Descriptor implements the memory.Device interface.
func (out *Output) Descriptor() device.Descriptor {
	return out.desc
}

// Endpoint returns the observable side of the output.
func (out *Output) Endpoint() *Endpoint {
	return &out.endpoint
}

// SetBuffer implements the memory.Traced interface.
func (out *Output) SetBuffer(tb *trace.Buffer) {
	out.tb = tb
}

// Span implements the memory.Target interface.
func (out *Output) Span() memory.AddressSpan {
	return out.span
}

// Read implements the memory.Target interface.
func (out *Output) Read(address uint16, dest []byte, op memory.Operation) memory.Result {
	if !out.span.Contains(address) {
		return memory.Failed(memory.OOBAccess)
	}
	v, _ := out.endpoint.Last()
	for i := range dest {
		dest[i] = v
	}
	if out.tb != nil && op.Traced() {
		return memory.FromAction(out.tb.EmitPureRead(out.desc.ID, uint32(address), len(dest)))
	}
	return memory.Completed
}

// Write implements the memory.Target interface. BufferInternal writes are
// not added to the history.
func (out *Output) Write(address uint16, src []byte, op memory.Operation) memory.Result {
	if !out.span.Contains(address) {
		return memory.Failed(memory.OOBAccess)
	}
	if !op.Traced() {
		return memory.Completed
	}
	out.endpoint.AppendValue(src...)
	if out.tb != nil {
		return memory.FromAction(out.tb.EmitMMWrite(out.desc.ID, uint32(address), src))
	}
	return memory.Completed
}

// Clear implements the memory.Target interface. The history is emptied.
func (out *Output) Clear(_ byte) {
	out.endpoint.Reset()
}

// Dump implements the memory.Target interface.
func (out *Output) Dump(dest []byte) {
	out.Read(out.span.MinOffset, dest, memory.Internal)
}

// Peek implements the memory.Peeker interface.
func (out *Output) Peek(address uint16, dest []byte) bool {
	return out.Read(address, dest, memory.Internal).Completed
}

// Replay implements the trace.Replayer interface.
func (out *Output) Replay(p trace.Packet, payload []byte, dir trace.Direction) error {
	if _, ok := p.(trace.Write); !ok {
		return nil
	}
	if dir == trace.Backward {
		out.endpoint.Truncate(out.endpoint.Len() - len(payload))
	} else {
		out.endpoint.AppendValue(payload...)
	}
	return nil
}
