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

import "slices"

// Endpoint is an append-only history of bytes with a read cursor.
type Endpoint struct {
	history []byte
	cursor  int
}

// AppendValue adds bytes to the end of the history.
func (e *Endpoint) AppendValue(v ...byte) {
	e.history = append(e.history, v...)
}

// Next returns the byte at the cursor and advances the cursor. Returns false
// if there are no more bytes.
func (e *Endpoint) Next() (byte, bool) {
	if e.cursor >= len(e.history) {
		return 0, false
	}
	v := e.history[e.cursor]
	e.cursor++
	return v, true
}

// Peek returns the byte at the cursor without advancing.
func (e *Endpoint) Peek() (byte, bool) {
	if e.cursor >= len(e.history) {
		return 0, false
	}
	return e.history[e.cursor], true
}

// Unread moves the cursor back by n bytes.
func (e *Endpoint) Unread(n int) {
	e.cursor = max(0, e.cursor-n)
}

// Reread moves the cursor forward by n bytes.
func (e *Endpoint) Reread(n int) {
	e.cursor = min(len(e.history), e.cursor+n)
}

// Rewind moves the cursor to the start of the history.
func (e *Endpoint) Rewind() {
	e.cursor = 0
}

// Cursor returns the position of the cursor.
func (e *Endpoint) Cursor() int {
	return e.cursor
}

// Pending returns the number of bytes after the cursor.
func (e *Endpoint) Pending() int {
	return len(e.history) - e.cursor
}

// Len returns the length of the history.
func (e *Endpoint) Len() int {
	return len(e.history)
}

// Last returns the final byte of the history.
func (e *Endpoint) Last() (byte, bool) {
	if len(e.history) == 0 {
		return 0, false
	}
	return e.history[len(e.history)-1], true
}

// History returns a copy of the history.
func (e *Endpoint) History() []byte {
	return slices.Clone(e.history)
}

// Since returns a copy of the history after the first n bytes.
func (e *Endpoint) Since(n int) []byte {
	if n >= len(e.history) {
		return nil
	}
	return slices.Clone(e.history[max(0, n):])
}

// Truncate shortens the history to n bytes.
func (e *Endpoint) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(e.history) {
		e.history = e.history[:n]
	}
	e.cursor = min(e.cursor, len(e.history))
}

// Reset empties the history.
func (e *Endpoint) Reset() {
	e.history = e.history[:0]
	e.cursor = 0
}
