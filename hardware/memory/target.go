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
	"github.com/pepsim/pepsim/bits"
	"github.com/pepsim/pepsim/hardware/device"
	"github.com/pepsim/pepsim/trace"
)

// Target is anything addressable. Addresses are local to the Target and
// Read() and Write() never access bytes outside of the Target's span.
// Accesses that extend beyond the span fail with OOBAccess.
type Target interface {
	Span() AddressSpan
	Read(address uint16, dest []byte, op Operation) Result
	Write(address uint16, src []byte, op Operation) Result

	// Clear sets every byte to the fill value
	Clear(fill byte)

	// Dump copies the contents of the target into dest without side
	// effects. dest should be Span().Size() bytes long
	Dump(dest []byte)
}

// Device is a Target with an identity.
type Device interface {
	Target
	Descriptor() device.Descriptor
}

// Traced is implemented by targets that can record accesses in a trace
// buffer. A nil buffer disables recording.
type Traced interface {
	SetBuffer(tb *trace.Buffer)
}

// Peeker is implemented by targets that can be read without side effects.
type Peeker = trace.Peeker

// ReadUint16 reads a big-endian word from the Target.
func ReadUint16(t Target, address uint16, op Operation) (uint16, Result) {
	var b [2]byte
	r := t.Read(address, b[:], op)
	if !r.Completed {
		return 0, r
	}
	return bits.Uint16(b[:], bits.BigEndian), r
}

// WriteUint16 writes a big-endian word to the Target.
func WriteUint16(t Target, address uint16, v uint16, op Operation) Result {
	var b [2]byte
	bits.PutUint16(b[:], v, bits.BigEndian)
	return t.Write(address, b[:], op)
}

// ReadUint8 reads a single byte from the Target.
func ReadUint8(t Target, address uint16, op Operation) (uint8, Result) {
	var b [1]byte
	r := t.Read(address, b[:], op)
	return b[0], r
}

// WriteUint8 writes a single byte to the Target.
func WriteUint8(t Target, address uint16, v uint8, op Operation) Result {
	return t.Write(address, []byte{v}, op)
}
