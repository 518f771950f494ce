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

package easyterm

import (
	"context"
	"io"
)

// list of ASCII codes for non-alphanumeric characters
const (
	KeyCarriage = 13
	KeyLineFeed = 10
)

// Keys reads bytes from r and sends them on the returned channel. The channel
// is closed when r returns an error, including io.EOF.
//
// Carriage returns are translated to line feeds. The reading goroutine is
// blocked in r.Read() for most of its life and so cannot be stopped. It
// should only be used for input that lives as long as the program.
func Keys(r io.Reader) <-chan byte {
	keys := make(chan byte, 256)
	go func() {
		defer close(keys)
		b := make([]byte, 64)
		for {
			n, err := r.Read(b)
			for _, c := range b[:n] {
				if c == KeyCarriage {
					c = KeyLineFeed
				}
				keys <- c
			}
			if err != nil {
				return
			}
		}
	}()
	return keys
}

// Pump forwards bytes from keys to the handover function until the context
// is cancelled or keys is closed. Bytes that are immediately available are
// passed to the handover function together.
//
// Returns io.EOF if keys is closed and the context error if the context was
// cancelled.
func Pump(ctx context.Context, keys <-chan byte, handover func([]byte)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-keys:
			if !ok {
				return io.EOF
			}
			b := []byte{c}
		drain:
			for {
				select {
				case c, ok := <-keys:
					if !ok {
						break drain
					}
					b = append(b, c)
				default:
					break drain
				}
			}
			handover(b)
		}
	}
}
