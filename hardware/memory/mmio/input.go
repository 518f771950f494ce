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

// Input is a memory-mapped input port. Reads by the running program consume
// bytes from the endpoint. Writes are accepted and ignored.
type Input struct {
	desc     device.Descriptor
	span     memory.AddressSpan
	endpoint Endpoint
	policy   memory.FailPolicy

	// the value read when the endpoint is exhausted and the policy is
	// YieldDefaultValue. set by Clear()
	fill byte

	tb *trace.Buffer
}

// NewInput is the preferred method of initialisation for the Input type.
func NewInput(desc device.Descriptor, span memory.AddressSpan, policy memory.FailPolicy) *Input {
	return &Input{
		desc:   desc,
		span:   span,
		policy: policy,
	}
}

// Descriptor implements the memory.Device interface.
func (in *Input) Descriptor() device.Descriptor {
	return in.desc
}

// Endpoint returns the producer side of the input.
func (in *Input) Endpoint() *Endpoint {
	return &in.endpoint
}

// Policy returns the current fail policy.
func (in *Input) Policy() memory.FailPolicy {
	return in.policy
}

// SetFailPolicy changes the fail policy.
func (in *Input) SetFailPolicy(policy memory.FailPolicy) {
	in.policy = policy
}

// SetBuffer implements the memory.Traced interface.
func (in *Input) SetBuffer(tb *trace.Buffer) {
	in.tb = tb
}

// Span implements the memory.Target interface.
func (in *Input) Span() memory.AddressSpan {
	return in.span
}

// Read implements the memory.Target interface. Every byte of dest is taken
// from the endpoint. BufferInternal reads do not consume anything.
func (in *Input) Read(address uint16, dest []byte, op memory.Operation) memory.Result {
	if !in.span.Contains(address) {
		return memory.Failed(memory.OOBAccess)
	}

	if !op.Traced() {
		v, ok := in.endpoint.Peek()
		if !ok {
			v = in.fill
		}
		for i := range dest {
			dest[i] = v
		}
		return memory.Completed
	}

	var n int
	for i := range dest {
		v, ok := in.endpoint.Next()
		if !ok {
			if in.policy == memory.RaiseError {
				// nothing is consumed by an incomplete read
				in.endpoint.Unread(n)
				return memory.Failed(memory.NeedsMMI)
			}
			v = in.fill
		} else {
			n++
		}
		dest[i] = v
	}

	if n > 0 && in.tb != nil {
		return memory.FromAction(in.tb.EmitMMRead(in.desc.ID, uint32(address), dest[:n]))
	}
	return memory.Completed
}

// Write implements the memory.Target interface.
func (in *Input) Write(address uint16, src []byte, op memory.Operation) memory.Result {
	if !in.span.Contains(address) {
		return memory.Failed(memory.OOBAccess)
	}
	return memory.Completed
}

// Clear implements the memory.Target interface. The fill value is returned
// by reads once the endpoint is exhausted, if the fail policy is
// YieldDefaultValue.
func (in *Input) Clear(fill byte) {
	in.fill = fill
}

// Dump implements the memory.Target interface.
func (in *Input) Dump(dest []byte) {
	in.Read(in.span.MinOffset, dest, memory.Internal)
}

// Peek implements the memory.Peeker interface.
func (in *Input) Peek(address uint16, dest []byte) bool {
	return in.Read(address, dest, memory.Internal).Completed
}

// Replay implements the trace.Replayer interface.
func (in *Input) Replay(p trace.Packet, payload []byte, dir trace.Direction) error {
	if _, ok := p.(trace.ImpureRead); !ok {
		return nil
	}
	if dir == trace.Backward {
		in.endpoint.Unread(len(payload))
	} else {
		in.endpoint.Reread(len(payload))
	}
	return nil
}
