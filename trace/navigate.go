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
	"github.com/pepsim/pepsim/curated"
)

// the backlink cache is flushed when it reaches this size.
const maxBacklinks = 1 << 16

// decodeAt returns the fragment at loc and the number of bytes it occupies.
// A fragment that cannot be decoded means the buffer has been corrupted,
// which is a programming error.
func (b *Buffer) decodeAt(loc int) (Fragment, int) {
	if loc < 0 || loc >= len(b.data) {
		panic(curated.Errorf(CorruptFragment, loc, "position out of range"))
	}
	f, n, err := decode(b.data[loc:])
	if err != nil {
		panic(curated.Errorf(CorruptFragment, loc, err))
	}
	return f, n
}

func (b *Buffer) fragmentAt(loc int) Fragment {
	f, _ := b.decodeAt(loc)
	return f
}

// Fragment returns the fragment at loc. The Bytes field of a Variable
// fragment refers to the buffer's memory and must not be modified.
func (b *Buffer) Fragment(loc int) Fragment {
	return b.fragmentAt(loc)
}

// At returns the level of the fragment at loc.
func (b *Buffer) At(loc int) Level {
	return b.fragmentAt(loc).Level()
}

func (b *Buffer) setBacklink(loc int, prev int) {
	if len(b.backlinks) >= maxBacklinks {
		b.backlinks = make(map[int]int)
	}
	b.backlinks[loc] = prev
}

// Next returns the position of the next fragment at or above the level of
// detail. For example, Next(loc, LevelPacket) finds the next packet or frame
// header. Returns End() if there is no such fragment.
func (b *Buffer) Next(loc int, level Level) int {
	return b.next(loc, level, true)
}

func (b *Buffer) next(loc int, level Level, allowJumps bool) int {
	end := b.End()
	if loc >= end {
		return end
	}

	f, n := b.decodeAt(loc)

	// the frame length can be used to skip the contents of the frame. the
	// length is not trusted if it doesn't lead to another frame because the
	// frame may have grown since the length was last updated
	if allowJumps && level == LevelFrame {
		if length, _, ok := frameFields(f); ok && length > 0 {
			j := loc + int(length)
			if j == end || (j < end && b.At(j) == LevelFrame) {
				return j
			}
		}
	}

	prev := loc
	loc += n
	for loc < end {
		f, n = b.decodeAt(loc)
		b.setBacklink(loc, prev)
		if f.Level() <= level {
			return loc
		}
		prev = loc
		loc += n
	}

	return end
}

// Prev returns the position of the previous fragment at or above the level
// of detail. Returns -1 if there is no such fragment.
func (b *Buffer) Prev(loc int, level Level) int {
	if loc <= 0 {
		return -1
	}

	end := b.End()
	if loc >= end {
		if b.lastFrameStart < 0 {
			return -1
		}
		return b.lastBefore(b.lastFrameStart, end, level)
	}

	f := b.fragmentAt(loc)

	// frame headers point directly to the previous frame
	if level == LevelFrame {
		if _, back, ok := frameFields(f); ok {
			return loc - int(back)
		}
	}

	for loc > 0 {
		p, ok := b.backlinks[loc]
		if !ok {
			// walk forward from the start of the frame before loc. this fills
			// the backlink cache for every fragment in that range
			var start int
			if _, back, isFrame := frameFields(f); isFrame {
				start = loc - int(back)
			} else {
				start = b.Prev(b.next(loc, LevelFrame, true), LevelFrame)
			}
			p = b.lastBefore(start, loc, LevelPayload)
		}

		loc = p
		f = b.fragmentAt(loc)
		if f.Level() <= level {
			return loc
		}
	}

	return -1
}

// lastBefore returns the position of the last fragment at or above level
// that is before end. The search starts at start, which must be a frame.
func (b *Buffer) lastBefore(start int, end int, level Level) int {
	prev := start
	loc := start
	for loc < end {
		prev = loc
		loc = b.next(loc, level, false)
	}
	return prev
}
