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

// Direction of iteration or replay.
type Direction int

// List of valid Direction values.
const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// FrameIterator visits the frames in the buffer. The iterator is a value
// and Next() returns a new iterator.
//
//	for it := tb.Cbegin(); !it.Equal(tb.Cend()); it = it.Next() {
//		...
//	}
type FrameIterator struct {
	buf *Buffer
	loc int
	dir Direction
}

// Cbegin returns an iterator positioned at the first frame.
func (b *Buffer) Cbegin() FrameIterator {
	return FrameIterator{buf: b, loc: 0, dir: Forward}
}

// Cend returns the sentinel for forward iteration.
func (b *Buffer) Cend() FrameIterator {
	return FrameIterator{buf: b, loc: b.End(), dir: Forward}
}

// Crbegin returns an iterator positioned at the last frame, for backward
// iteration.
func (b *Buffer) Crbegin() FrameIterator {
	return FrameIterator{buf: b, loc: b.lastFrameStart, dir: Backward}
}

// Crend returns the sentinel for backward iteration.
func (b *Buffer) Crend() FrameIterator {
	return FrameIterator{buf: b, loc: -1, dir: Backward}
}

// Loc returns the position of the frame in the buffer.
func (it FrameIterator) Loc() int {
	return it.loc
}

// Equal returns true if both iterators are at the same position and moving
// in the same direction.
func (it FrameIterator) Equal(o FrameIterator) bool {
	return it.buf == o.buf && it.loc == o.loc && it.dir == o.dir
}

// Next returns an iterator for the next frame in the direction of travel.
func (it FrameIterator) Next() FrameIterator {
	if it.dir == Forward {
		it.loc = it.buf.Next(it.loc, LevelFrame)
	} else {
		it.loc = it.buf.Prev(it.loc, LevelFrame)
	}
	return it
}

// Header returns the frame header. Either a Trace or an Extender fragment.
func (it FrameIterator) Header() Fragment {
	return it.buf.fragmentAt(it.loc)
}

// Packets returns an iterator for the packets in the frame.
func (it FrameIterator) Packets() PacketIterator {
	end := it.buf.Next(it.loc, LevelFrame)
	return newPacketIterator(it.buf, it.loc+frameHeaderSize, end)
}

// PacketIterator visits the packets in a single frame.
type PacketIterator struct {
	buf *Buffer
	loc int
	end int
}

func newPacketIterator(b *Buffer, start int, end int) PacketIterator {
	// skip payloads that continue a packet from the previous frame
	for start < end && b.At(start) != LevelPacket {
		_, n := b.decodeAt(start)
		start += n
	}
	return PacketIterator{buf: b, loc: start, end: end}
}

// Valid returns false once the iterator has moved past the last packet.
func (it PacketIterator) Valid() bool {
	return it.loc < it.end
}

// Loc returns the position of the packet header.
func (it PacketIterator) Loc() int {
	return it.loc
}

// Next returns an iterator for the next packet in the frame.
func (it PacketIterator) Next() PacketIterator {
	n := it.buf.next(it.loc, LevelPacket, false)
	if n >= it.end || it.buf.At(n) != LevelPacket {
		n = it.end
	}
	it.loc = n
	return it
}

// Header returns the packet header.
func (it PacketIterator) Header() Packet {
	return it.buf.fragmentAt(it.loc).(Packet)
}

// Payload returns the payload of the packet, reassembled from its Variable
// fragments. The returned slice is a copy. Returns nil if the packet has no
// payload.
func (it PacketIterator) Payload() []byte {
	var out []byte

	_, n := it.buf.decodeAt(it.loc)
	loc := it.loc + n
	for loc < it.buf.End() {
		f, n := it.buf.decodeAt(loc)
		switch f := f.(type) {
		case Extender:
		case Variable:
			out = append(out, f.Bytes...)
			if !f.Continues {
				if out == nil {
					out = []byte{}
				}
				return out
			}
		default:
			return out
		}
		loc += n
	}

	return out
}
