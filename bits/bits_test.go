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

package bits_test

import (
	"testing"

	"github.com/pepsim/pepsim/bits"
	"github.com/pepsim/pepsim/test"
)

func TestMemcpyEndianSameSize(t *testing.T) {
	src := []byte{0x11, 0x25}
	dest := make([]byte, 2)

	bits.MemcpyEndian(dest, bits.BigEndian, src, bits.BigEndian)
	test.ExpectBytes(t, dest, []byte{0x11, 0x25})

	bits.MemcpyEndian(dest, bits.LittleEndian, src, bits.BigEndian)
	test.ExpectBytes(t, dest, []byte{0x25, 0x11})

	// and back again
	back := make([]byte, 2)
	bits.MemcpyEndian(back, bits.BigEndian, dest, bits.LittleEndian)
	test.ExpectBytes(t, back, src)
}

func TestMemcpyEndianPadding(t *testing.T) {
	src := []byte{0xab, 0xcd}

	// a wider destination is zero padded on the most significant side
	dest := []byte{0xff, 0xff, 0xff, 0xff}
	bits.MemcpyEndian(dest, bits.BigEndian, src, bits.BigEndian)
	test.ExpectBytes(t, dest, []byte{0x00, 0x00, 0xab, 0xcd})

	dest = []byte{0xff, 0xff, 0xff, 0xff}
	bits.MemcpyEndian(dest, bits.LittleEndian, src, bits.BigEndian)
	test.ExpectBytes(t, dest, []byte{0xcd, 0xab, 0x00, 0x00})

	// a narrower destination keeps the least significant bytes
	dest = make([]byte, 1)
	bits.MemcpyEndian(dest, bits.BigEndian, src, bits.BigEndian)
	test.ExpectBytes(t, dest, []byte{0xcd})

	bits.MemcpyEndian(dest, bits.BigEndian, src, bits.LittleEndian)
	test.ExpectBytes(t, dest, []byte{0xab})
}

func TestUint16(t *testing.T) {
	b := make([]byte, 2)
	bits.PutUint16(b, 0x1234, bits.BigEndian)
	test.ExpectBytes(t, b, []byte{0x12, 0x34})
	test.ExpectEquality(t, bits.Uint16(b, bits.BigEndian), 0x1234)
	test.ExpectEquality(t, bits.Uint16(b, bits.LittleEndian), 0x3412)

	// single byte values
	test.ExpectEquality(t, bits.Uint16([]byte{0x7f}, bits.BigEndian), 0x007f)
	b = make([]byte, 1)
	bits.PutUint16(b, 0x1234, bits.BigEndian)
	test.ExpectBytes(t, b, []byte{0x34})

	// only the first two bytes of a longer slice are used
	b = []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee}
	bits.PutUint16(b[1:], 0x1234, bits.BigEndian)
	test.ExpectBytes(t, b, []byte{0xaa, 0x12, 0x34, 0xdd, 0xee})
	test.ExpectEquality(t, bits.Uint16(b[1:], bits.BigEndian), 0x1234)
	bits.PutUint16(b[3:], 0x5678, bits.LittleEndian)
	test.ExpectBytes(t, b, []byte{0xaa, 0x12, 0x34, 0x78, 0x56})
	test.ExpectEquality(t, bits.Uint16(b[3:], bits.LittleEndian), 0x5678)

	// round trip through the host order
	h := make([]byte, 2)
	for _, v := range []uint16{0, 1, 0x00ff, 0xff00, 0xfffe, 0x8000} {
		bits.PutUint16(h, v, bits.HostOrder())
		test.ExpectEquality(t, bits.Uint16(h, bits.HostOrder()), v)
	}
}

func TestXOR(t *testing.T) {
	old := []byte{0x00, 0xff, 0x5a}
	updated := []byte{0x25, 0x0f, 0x5a}
	delta := make([]byte, 3)
	bits.MemcpyXOR(delta, old, updated)
	test.ExpectBytes(t, delta, []byte{0x25, 0xf0, 0x00})

	// applying the delta twice returns the original value
	v := []byte{0x00, 0xff, 0x5a}
	bits.XORInPlace(v, delta)
	test.ExpectBytes(t, v, updated)
	bits.XORInPlace(v, delta)
	test.ExpectBytes(t, v, old)

	// only the shortest length is affected
	short := []byte{0x01, 0x01, 0x01}
	bits.MemcpyXOR(short, []byte{0x01}, []byte{0x03, 0x03})
	test.ExpectBytes(t, short, []byte{0x02, 0x01, 0x01})
}

func TestByteswap(t *testing.T) {
	test.ExpectEquality(t, bits.Byteswap16(0x1234), 0x3412)

	b := []byte{1, 2, 3, 4, 5}
	bits.Byteswap(b)
	test.ExpectBytes(t, b, []byte{5, 4, 3, 2, 1})

	bits.Memset(b, 0xaa)
	test.ExpectBytes(t, b, []byte{0xaa, 0xaa, 0xaa, 0xaa, 0xaa})
	bits.Memclr(b)
	test.ExpectBytes(t, b, []byte{0, 0, 0, 0, 0})
}

func TestAsciiHex(t *testing.T) {
	test.ExpectEquality(t, bits.AsciiHex([]byte{0x11, 0x25, 0x0a}, " "), "11 25 0A")
	test.ExpectEquality(t, bits.AsciiHex(nil, " "), "")

	b, err := bits.ParseAsciiHex("11 25\n0a\tFF")
	test.ExpectSuccess(t, err)
	test.ExpectBytes(t, b, []byte{0x11, 0x25, 0x0a, 0xff})

	_, err = bits.ParseAsciiHex("11 2")
	test.ExpectFailure(t, err)
	_, err = bits.ParseAsciiHex("zz")
	test.ExpectFailure(t, err)

	test.ExpectSuccess(t, bits.StartsWithHexPrefix("0xfffe"))
	test.ExpectFailure(t, bits.StartsWithHexPrefix("fffe"))
}

func TestEscapedString(t *testing.T) {
	b, err := bits.EscapedStringToBytes(`ab\n\x41\\`)
	test.ExpectSuccess(t, err)
	test.ExpectBytes(t, b, []byte{'a', 'b', '\n', 'A', '\\'})

	_, err = bits.EscapedStringToBytes(`\q`)
	test.ExpectFailure(t, err)

	_, err = bits.EscapedStringToBytes("Ā")
	test.ExpectFailure(t, err)
}
