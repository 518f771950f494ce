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
	"fmt"
	"strings"

	"github.com/pepsim/pepsim/hardware/device"
	"github.com/pepsim/pepsim/trace"
)

// Dense is a plain array of bytes. It is used for main memory regions, the
// CPU's register files and disk images.
type Dense struct {
	desc device.Descriptor
	span AddressSpan
	data []byte

	tb *trace.Buffer
}

// NewDense is the preferred method of initialisation for the Dense type.
func NewDense(desc device.Descriptor, size int) *Dense {
	return &Dense{
		desc: desc,
		span: SpanOfSize(size),
		data: make([]byte, size),
	}
}

func (d *Dense) String() string {
	s := strings.Builder{}
	s.WriteString("      -0 -1 -2 -3 -4 -5 -6 -7 -8 -9 -A -B -C -D -E -F\n")
	s.WriteString("    ---- -- -- -- -- -- -- -- -- -- -- -- -- -- -- --\n")
	for y := 0; y < len(d.data); y += 16 {
		s.WriteString(fmt.Sprintf("%04x |", y))
		for x := y; x < min(y+16, len(d.data)); x++ {
			s.WriteString(fmt.Sprintf(" %02x", d.data[x]))
		}
		s.WriteString("\n")
	}
	return strings.TrimSuffix(s.String(), "\n")
}

// Descriptor implements the Device interface.
func (d *Dense) Descriptor() device.Descriptor {
	return d.desc
}

// Span implements the Target interface.
func (d *Dense) Span() AddressSpan {
	return d.span
}

// SetBuffer implements the Traced interface.
func (d *Dense) SetBuffer(tb *trace.Buffer) {
	d.tb = tb
}

// Read implements the Target interface.
func (d *Dense) Read(address uint16, dest []byte, op Operation) Result {
	if !d.span.inBounds(address, len(dest)) {
		return Failed(OOBAccess)
	}
	copy(dest, d.data[address:])
	if d.tb != nil && op.Traced() {
		return FromAction(d.tb.EmitPureRead(d.desc.ID, uint32(address), len(dest)))
	}
	return Completed
}

// Write implements the Target interface. The new value is in memory before
// the write is recorded so that trace filters see the new value.
func (d *Dense) Write(address uint16, src []byte, op Operation) Result {
	if !d.span.inBounds(address, len(src)) {
		return Failed(OOBAccess)
	}
	if d.tb != nil && op.Traced() {
		old := make([]byte, len(src))
		copy(old, d.data[address:])
		copy(d.data[address:], src)
		return FromAction(d.tb.EmitWrite(d.desc.ID, uint32(address), src, old))
	}
	copy(d.data[address:], src)
	return Completed
}

// Clear implements the Target interface. The clear is recorded if a trace
// buffer is attached.
func (d *Dense) Clear(fill byte) {
	if d.tb != nil {
		d.tb.EmitClear(d.desc.ID, fill, d.data)
	}
	for i := range d.data {
		d.data[i] = fill
	}
}

// Dump implements the Target interface.
func (d *Dense) Dump(dest []byte) {
	copy(dest, d.data)
}

// Peek implements the Peeker interface.
func (d *Dense) Peek(address uint16, dest []byte) bool {
	return d.Read(address, dest, Internal).Completed
}

// Increment adds the big-endian value in delta to the value of the same
// width at address. The addition wraps.
func (d *Dense) Increment(address uint16, delta []byte, op Operation) Result {
	if !d.span.inBounds(address, len(delta)) {
		return Failed(OOBAccess)
	}
	add(d.data[address:int(address)+len(delta)], delta, false)
	if d.tb != nil && op.Traced() {
		return FromAction(d.tb.EmitIncrement(d.desc.ID, uint32(address), delta))
	}
	return Completed
}

// add (or subtract) the big-endian value in delta to the big-endian value
// in v. both slices must be the same length.
func add(v []byte, delta []byte, subtract bool) {
	var carry int
	for i := len(v) - 1; i >= 0; i-- {
		var n int
		if subtract {
			n = int(v[i]) - int(delta[i]) - carry
			carry = 0
			if n < 0 {
				n += 256
				carry = 1
			}
		} else {
			n = int(v[i]) + int(delta[i]) + carry
			carry = n >> 8
		}
		v[i] = byte(n)
	}
}

// Replay implements the trace.Replayer interface.
func (d *Dense) Replay(p trace.Packet, payload []byte, dir trace.Direction) error {
	a := int(p.Info().Address)
	if a >= len(d.data) {
		return nil
	}
	switch p.(type) {
	case trace.Write, trace.Clear:
		// XOR deltas are the same in both directions
		for i, v := range payload {
			if a+i < len(d.data) {
				d.data[a+i] ^= v
			}
		}
	case trace.Increment:
		if a+len(payload) <= len(d.data) {
			add(d.data[a:a+len(payload)], payload, dir == trace.Backward)
		}
	}
	return nil
}
