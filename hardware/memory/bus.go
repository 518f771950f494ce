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
)

// entry is a Target and the span of bus addresses it occupies.
type entry struct {
	span   AddressSpan
	target Target
}

// Bus routes accesses to the Target that contains the address. Targets
// pushed with PushFrontTarget() take priority over targets pushed earlier.
//
// Accesses that span more than one Target are divided so that each Target
// only sees the bytes it contains.
type Bus struct {
	desc device.Descriptor
	span AddressSpan

	// in priority order
	entries []entry
}

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus(desc device.Descriptor, span AddressSpan) *Bus {
	return &Bus{
		desc: desc,
		span: span,
	}
}

// Summary returns a multiline description of the targets on the bus, in
// priority order.
func (b *Bus) Summary() string {
	s := strings.Builder{}
	for _, e := range b.entries {
		name := fmt.Sprintf("%T", e.target)
		if d, ok := e.target.(Device); ok {
			name = d.Descriptor().FullName
		}
		s.WriteString(fmt.Sprintf("%s -> %s\n", e.span, name))
	}
	return s.String()
}

// Descriptor implements the Device interface.
func (b *Bus) Descriptor() device.Descriptor {
	return b.desc
}

// PushFrontTarget adds a target to the bus at the span of bus addresses. The
// target takes priority over all other targets already on the bus. The size
// of the span should not be larger than the target.
func (b *Bus) PushFrontTarget(span AddressSpan, target Target) {
	b.entries = append([]entry{{span: span, target: target}}, b.entries...)
}

// Targets returns the targets on the bus, in priority order.
func (b *Bus) Targets() []Target {
	t := make([]Target, 0, len(b.entries))
	for _, e := range b.entries {
		t = append(t, e.target)
	}
	return t
}

// find the entry containing the address. also returns the number of bytes,
// up to length, that can be accessed from the entry before another entry
// takes over.
func (b *Bus) find(address uint16, length int) (entry, int, bool) {
	for i, e := range b.entries {
		if !e.span.Contains(address) {
			continue
		}

		n := min(length, int(e.span.MaxOffset)-int(address)+1)

		// a higher priority target may begin part way through the access
		for _, h := range b.entries[:i] {
			if int(h.span.MinOffset) > int(address) && int(h.span.MinOffset) < int(address)+n {
				n = int(h.span.MinOffset) - int(address)
			}
		}

		return e, n, true
	}
	return entry{}, 0, false
}

// Resolve returns the target containing the bus address and the address
// local to that target. If the target is itself a Bus then the address is
// resolved recursively.
func (b *Bus) Resolve(address uint16) (Target, uint16, bool) {
	e, _, ok := b.find(address, 1)
	if !ok {
		return nil, 0, false
	}
	local := address - e.span.MinOffset
	if sub, ok := e.target.(*Bus); ok {
		return sub.Resolve(local)
	}
	return e.target, local, true
}

// Span implements the Target interface.
func (b *Bus) Span() AddressSpan {
	return b.span
}

type access func(t Target, address uint16, buf []byte) Result

func (b *Bus) access(address uint16, buf []byte, fn access) Result {
	r := Completed
	for len(buf) > 0 {
		e, n, ok := b.find(address, len(buf))
		if !ok {
			return Failed(Unmapped)
		}
		r = r.Merge(fn(e.target, address-e.span.MinOffset, buf[:n]))
		if !r.Completed {
			return r
		}
		buf = buf[n:]
		address += uint16(n)
	}
	return r
}

// Read implements the Target interface.
func (b *Bus) Read(address uint16, dest []byte, op Operation) Result {
	return b.access(address, dest, func(t Target, a uint16, buf []byte) Result {
		return t.Read(a, buf, op)
	})
}

// Write implements the Target interface.
func (b *Bus) Write(address uint16, src []byte, op Operation) Result {
	return b.access(address, src, func(t Target, a uint16, buf []byte) Result {
		return t.Write(a, buf, op)
	})
}

// Clear implements the Target interface. Every target on the bus is cleared.
func (b *Bus) Clear(fill byte) {
	for _, e := range b.entries {
		e.target.Clear(fill)
	}
}

// Dump implements the Target interface. Addresses not covered by any target
// are left unchanged.
func (b *Bus) Dump(dest []byte) {
	// lowest priority first so that higher priority targets overwrite
	for i := len(b.entries) - 1; i >= 0; i-- {
		e := b.entries[i]
		if int(e.span.MinOffset) >= len(dest) {
			continue
		}
		tmp := make([]byte, e.target.Span().Size())
		e.target.Dump(tmp)
		n := min(e.span.Size(), len(tmp))
		copy(dest[e.span.MinOffset:], tmp[:n])
	}
}

// Peek implements the Peeker interface.
func (b *Bus) Peek(address uint16, dest []byte) bool {
	return b.Read(address, dest, Internal).Completed
}
