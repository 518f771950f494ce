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
	"fmt"
	"io"

	"github.com/pepsim/pepsim/bits"
	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/hardware/device"
)

// UnknownDevice is the error pattern used when a packet refers to a device
// that cannot be replayed.
const UnknownDevice = "trace: replay: unknown device (%d)"

// Replayer is implemented by every device that records packets in the trace.
//
// Replaying in the Backward direction must undo the effect of the packet
// and replaying in the Forward direction must redo it. Replayers must not
// record anything in the trace buffer while replaying.
type Replayer interface {
	Replay(p Packet, payload []byte, dir Direction) error
}

// ReplayerLookup returns the Replayer for a device.
type ReplayerLookup func(dev device.ID) (Replayer, bool)

// Entry is a packet and its payload.
type Entry struct {
	Loc     int
	Packet  Packet
	Payload []byte
}

// NextTick returns the position of the first frame of the tick after the
// tick starting at loc. Extender frames are part of the same tick. Returns
// End() if there are no more ticks.
func (b *Buffer) NextTick(loc int) int {
	end := b.End()
	loc = b.Next(loc, LevelFrame)
	for loc < end {
		if _, ok := b.fragmentAt(loc).(Trace); ok {
			return loc
		}
		loc = b.Next(loc, LevelFrame)
	}
	return end
}

// PrevTick returns the position of the first frame of the tick before the
// tick starting at loc. Returns -1 if there is no earlier tick.
func (b *Buffer) PrevTick(loc int) int {
	loc = b.Prev(loc, LevelFrame)
	for loc >= 0 {
		if _, ok := b.fragmentAt(loc).(Trace); ok {
			return loc
		}
		loc = b.Prev(loc, LevelFrame)
	}
	return -1
}

// Tick returns every packet in the tick starting at loc, in the order they
// were recorded.
func (b *Buffer) Tick(loc int) ([]Entry, error) {
	if loc < 0 || loc >= b.End() {
		return nil, curated.Errorf(NotAFrame, loc)
	}
	if _, ok := b.fragmentAt(loc).(Trace); !ok {
		return nil, curated.Errorf(NotAFrame, loc)
	}

	var entries []Entry

	next := b.NextTick(loc)
	for it := (FrameIterator{buf: b, loc: loc, dir: Forward}); it.loc < next; it = it.Next() {
		for p := it.Packets(); p.Valid(); p = p.Next() {
			entries = append(entries, Entry{
				Loc:     p.Loc(),
				Packet:  p.Header(),
				Payload: p.Payload(),
			})
		}
	}

	return entries, nil
}

// ReplayTick replays every packet in the tick starting at loc. In the
// Backward direction the packets are replayed in reverse order.
func (b *Buffer) ReplayTick(loc int, dir Direction, lookup ReplayerLookup) error {
	entries, err := b.Tick(loc)
	if err != nil {
		return err
	}

	replay := func(e Entry) error {
		dev := e.Packet.Info().Device
		r, ok := lookup(dev)
		if !ok {
			return curated.Errorf(UnknownDevice, dev)
		}
		return r.Replay(e.Packet, e.Payload, dir)
	}

	if dir == Forward {
		for _, e := range entries {
			if err := replay(e); err != nil {
				return err
			}
		}
	} else {
		for i := len(entries) - 1; i >= 0; i-- {
			if err := replay(entries[i]); err != nil {
				return err
			}
		}
	}

	return nil
}

// ApplyDeltas XORs every Write and Clear payload for the device recorded
// between the positions from and to into image. The image is indexed by the
// device's local address.
//
// Because the deltas are XOR encoded, applying them to a snapshot of the
// device taken at from gives the contents of the device at to, and applying
// them to the contents at to gives the contents at from.
func (b *Buffer) ApplyDeltas(dev device.ID, image []byte, from int, to int) {
	to = min(to, b.End())
	for loc := max(from, 0); loc < to; loc = b.next(loc, LevelPacket, false) {
		if b.At(loc) != LevelPacket {
			continue
		}
		it := PacketIterator{buf: b, loc: loc, end: to}
		h := it.Header()
		switch h.(type) {
		case Write, Clear:
		default:
			continue
		}
		info := h.Info()
		if info.Device != dev || int(info.Address) >= len(image) {
			continue
		}
		bits.XORInPlace(image[info.Address:], it.Payload())
	}
}

// Dump writes a description of every frame and packet in the buffer. The
// name function is used to describe device IDs. It can be nil.
func (b *Buffer) Dump(w io.Writer, name func(device.ID) string) {
	for it := b.Cbegin(); !it.Equal(b.Cend()); it = it.Next() {
		fmt.Fprintf(w, "%06x %v\n", it.Loc(), it.Header())
		for p := it.Packets(); p.Valid(); p = p.Next() {
			h := p.Header()
			d := ""
			if name != nil {
				d = fmt.Sprintf(" [%s]", name(h.Info().Device))
			}
			fmt.Fprintf(w, "%06x   %v%s\n", p.Loc(), h, d)
			if pl := p.Payload(); len(pl) > 0 {
				fmt.Fprintf(w, "         %s\n", bits.AsciiHex(pl, " "))
			}
		}
	}
}
