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

package trace

import (
	"slices"

	"github.com/pepsim/pepsim/bits"
	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/hardware/device"
)

// Sentinel error patterns.
const (
	CorruptFragment = "trace: corrupt fragment at %d: %v"
	NotAFrame       = "trace: position %d is not a frame"
)

// the maximum number of bytes in a single frame. the length and back offset
// fields of a frame header must be able to address the whole frame.
const maxFrameLength = 0xffff

// large payloads are divided into more than one packet so that a packet and
// its payload always fit comfortably in a single frame.
const maxPacketPayload = 4096

// Buffer is an in-memory, append-only record of every state change in the
// machine. The buffer is divided into frames, one or more per tick. Each
// frame contains packets describing individual accesses and packets are
// followed by their payloads.
//
// Whether an access is recorded is decided by the installed filters. The
// built-in filter (handle 0) records every access to the devices enabled by
// the Trace() function.
type Buffer struct {
	data []byte

	// start of the most recent frame. -1 if the buffer is empty
	lastFrameStart int

	// filters are applied in handle order
	traced     TraceFilter
	filters    map[uint16]Filter
	handles    []uint16
	nextHandle uint16
	events     []FilterEvent

	// stack of initiator paths. see PushPath()
	paths []uint16

	// payloads are dropped if the preceding packet was not recorded
	dropPayloads bool

	// backlinks[loc] is the position of the fragment immediately before loc
	backlinks map[int]int
}

// NewBuffer is the preferred method of initialisation for the Buffer type.
func NewBuffer() *Buffer {
	return &Buffer{
		lastFrameStart: -1,
		filters:        make(map[uint16]Filter),
		backlinks:      make(map[int]int),
	}
}

// End returns the position after the last fragment. It is the sentinel
// position for forward iteration.
func (b *Buffer) End() int {
	return len(b.data)
}

// Bytes returns the raw contents of the buffer. The returned slice must not
// be modified.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Trace enables or disables recording for a device.
func (b *Buffer) Trace(dev device.ID, enabled bool) {
	if enabled {
		b.traced.Insert(dev)
	} else {
		b.traced.Remove(dev)
	}
}

// IsTraced returns true if the device is enabled for recording.
func (b *Buffer) IsTraced(dev device.ID) bool {
	return b.traced.Contains(dev)
}

// AddFilter installs a filter and returns a handle that can be used to
// remove or replace it. Handles are never reused.
func (b *Buffer) AddFilter(f Filter) uint16 {
	b.nextHandle++
	h := b.nextHandle
	b.filters[h] = f
	b.handles = append(b.handles, h)
	return h
}

// RemoveFilter removes the filter with the handle. Returns false if there is
// no such filter.
func (b *Buffer) RemoveFilter(handle uint16) bool {
	if _, ok := b.filters[handle]; !ok {
		return false
	}
	delete(b.filters, handle)
	if i := slices.Index(b.handles, handle); i >= 0 {
		b.handles = slices.Delete(b.handles, i, i+1)
	}
	return true
}

// ReplaceFilter replaces the filter with the handle. Returns false if there
// is no such filter.
func (b *Buffer) ReplaceFilter(handle uint16, f Filter) bool {
	if _, ok := b.filters[handle]; !ok {
		return false
	}
	b.filters[handle] = f
	return true
}

// Events returns the filter events that have occurred since the last call
// to ClearEvents().
func (b *Buffer) Events() []FilterEvent {
	return slices.Clone(b.events)
}

// ClearEvents forgets all filter events.
func (b *Buffer) ClearEvents() {
	b.events = b.events[:0]
}

func (b *Buffer) applyFilters(dev device.ID, address uint32, length int) Action {
	act := b.traced.Apply(dev, address, length)
	for _, h := range b.handles {
		a := b.filters[h].Apply(dev, address, length)
		if a >= Break {
			b.events = append(b.events, FilterEvent{
				Handle:  h,
				Device:  dev,
				Address: address,
				Action:  a,
			})
		}
		act = max(act, a)
	}
	return act
}

// WriteFragment appends a fragment to the buffer. Returns false if the
// fragment was not recorded.
//
// Frame headers close the current frame. The Length and BackOffset fields
// of the supplied header are ignored and calculated by the buffer. Packet
// headers are only recorded if a filter wants them. Payloads following a
// packet that was not recorded are also dropped. Payloads longer than
// MaxVariableBytes are divided into several Variable fragments.
func (b *Buffer) WriteFragment(f Fragment) bool {
	switch f := f.(type) {
	case Trace:
		b.EmitFrameStart()
	case Extender:
		b.startFrame(true)
	case Variable:
		if b.dropPayloads {
			return false
		}
		b.payload(f.Bytes, f.Continues)
	case Packet:
		return b.packet(f, 0, 1) >= Record
	}
	return true
}

// UpdateFrameHeader sets the length of the current frame to the number of
// bytes written to it so far.
func (b *Buffer) UpdateFrameHeader() {
	if b.lastFrameStart < 0 {
		return
	}
	putUint16(b.data[b.lastFrameStart+1:], uint16(len(b.data)-b.lastFrameStart))
}

func (b *Buffer) startFrame(extender bool) {
	pos := len(b.data)

	var back uint16
	if b.lastFrameStart >= 0 {
		b.UpdateFrameHeader()
		back = uint16(pos - b.lastFrameStart)
	}

	tag := tagTrace
	if extender {
		tag = tagExtender
	}
	b.data = append(b.data, encodeFrame(tag, 0, back)...)
	b.lastFrameStart = pos
}

// reserve makes sure the current frame has room for n more bytes, starting
// a new frame if necessary.
func (b *Buffer) reserve(n int) {
	if b.lastFrameStart < 0 {
		b.startFrame(false)
	} else if len(b.data)+n-b.lastFrameStart > maxFrameLength {
		b.startFrame(true)
	}
}

func (b *Buffer) append(enc []byte) {
	b.reserve(len(enc))
	b.data = append(b.data, enc...)
}

// the encoded size of a payload of n bytes.
func payloadSize(n int) int {
	chunks := max(1, (n+MaxVariableBytes-1)/MaxVariableBytes)
	return chunks*2 + n
}

// packet records the packet header if the filters want it. the reserve
// argument is the size of the payload that will follow.
func (b *Buffer) packet(p Packet, reserve int, length int) Action {
	info := p.Info()
	act := b.applyFilters(info.Device, info.Address, length)
	if act < Record {
		b.dropPayloads = true
		return act
	}
	b.dropPayloads = false

	enc := encode(p)
	b.reserve(len(enc) + reserve)
	b.data = append(b.data, enc...)
	return act
}

func (b *Buffer) payload(data []byte, continues bool) {
	if b.dropPayloads {
		return
	}
	for len(data) > MaxVariableBytes {
		b.append(encode(Variable{Continues: true, Bytes: data[:MaxVariableBytes]}))
		data = data[MaxVariableBytes:]
	}
	b.append(encode(Variable{Continues: continues, Bytes: data}))
}

func (b *Buffer) info(dev device.ID, address uint32) PacketInfo {
	return PacketInfo{
		Path:    b.CurrentPath(),
		Device:  dev,
		Address: address,
	}
}

// chunks calls fn for each maxPacketPayload sized part of data, with the
// offset of the part. fn is called at least once.
func chunks(data []byte, fn func(offset int, part []byte)) {
	if len(data) == 0 {
		fn(0, data)
		return
	}
	for o := 0; o < len(data); o += maxPacketPayload {
		fn(o, data[o:min(o+maxPacketPayload, len(data))])
	}
}

// EmitFrameStart starts the frame for a new tick.
func (b *Buffer) EmitFrameStart() {
	b.startFrame(false)
	b.dropPayloads = false
}

// EmitWrite records a write of src to the device at address. The previous
// contents are in old and the payload is the XOR of old and src.
func (b *Buffer) EmitWrite(dev device.ID, address uint32, src []byte, old []byte) Action {
	var act Action
	chunks(src, func(o int, part []byte) {
		a := b.packet(Write{PacketInfo: b.info(dev, address+uint32(o))}, payloadSize(len(part)), len(part))
		if a >= Record {
			delta := make([]byte, len(part))
			bits.MemcpyXOR(delta, old[o:], part)
			b.payload(delta, false)
		}
		act = max(act, a)
	})
	return act
}

// EmitMMWrite records a write of src to a memory-mapped output. The payload
// is the written data.
func (b *Buffer) EmitMMWrite(dev device.ID, address uint32, src []byte) Action {
	var act Action
	chunks(src, func(o int, part []byte) {
		a := b.packet(Write{PacketInfo: b.info(dev, address+uint32(o))}, payloadSize(len(part)), len(part))
		if a >= Record {
			b.payload(part, false)
		}
		act = max(act, a)
	})
	return act
}

// EmitPureRead records a read of length bytes that did not change the
// state of the device.
func (b *Buffer) EmitPureRead(dev device.ID, address uint32, length int) Action {
	return b.packet(PureRead{PacketInfo: b.info(dev, address), Length: uint16(length)}, 0, length)
}

// EmitMMRead records a read from a memory-mapped input. The payload is the
// data that was read.
func (b *Buffer) EmitMMRead(dev device.ID, address uint32, src []byte) Action {
	a := b.packet(ImpureRead{PacketInfo: b.info(dev, address)}, payloadSize(len(src)), len(src))
	if a >= Record {
		b.payload(src, false)
	}
	return a
}

// EmitIncrement records the addition of the big-endian value in delta to the
// value at address.
func (b *Buffer) EmitIncrement(dev device.ID, address uint32, delta []byte) Action {
	a := b.packet(Increment{PacketInfo: b.info(dev, address)}, payloadSize(len(delta)), len(delta))
	if a >= Record {
		b.payload(delta, false)
	}
	return a
}

// EmitClear records every byte in a device being set to value. The previous
// contents of the device are in old.
func (b *Buffer) EmitClear(dev device.ID, value byte, old []byte) Action {
	var act Action
	chunks(old, func(o int, part []byte) {
		a := b.packet(Clear{PacketInfo: b.info(dev, uint32(o)), Value: value}, payloadSize(len(part)), len(part))
		if a >= Record {
			delta := make([]byte, len(part))
			for i, v := range part {
				delta[i] = v ^ value
			}
			b.payload(delta, false)
		}
		act = max(act, a)
	})
	return act
}

// Clear removes all fragments from the buffer. Filters are kept but filter
// events are forgotten.
func (b *Buffer) Clear() {
	b.data = b.data[:0]
	b.lastFrameStart = -1
	b.dropPayloads = false
	b.backlinks = make(map[int]int)
	b.ClearEvents()
}

// Truncate removes the frame at loc and every fragment after it.
func (b *Buffer) Truncate(loc int) error {
	if loc >= b.End() {
		return nil
	}
	if loc < 0 {
		loc = 0
	}

	_, back, ok := frameFields(b.fragmentAt(loc))
	if !ok {
		return curated.Errorf(NotAFrame, loc)
	}

	if loc == 0 {
		b.lastFrameStart = -1
	} else {
		b.lastFrameStart = loc - int(back)
		// the previous frame is open again
		putUint16(b.data[b.lastFrameStart+1:], 0)
	}

	b.data = b.data[:loc]
	b.dropPayloads = false
	b.backlinks = make(map[int]int)
	return nil
}

// LastTick returns the position of the frame that started the most recent
// tick. Returns -1 if the buffer is empty.
func (b *Buffer) LastTick() int {
	loc := b.lastFrameStart
	for loc > 0 {
		if _, ok := b.fragmentAt(loc).(Extender); !ok {
			break
		}
		loc = b.Prev(loc, LevelFrame)
	}
	return loc
}

// DropLast removes the frames of the most recent tick.
func (b *Buffer) DropLast() error {
	loc := b.LastTick()
	if loc < 0 {
		return nil
	}
	return b.Truncate(loc)
}
