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

package bits

import (
	"encoding/binary"
)

// Order is the byte order of a multi-byte value.
type Order int

// List of valid Order values. NotApplicable is used for single byte values
// and is treated the same as BigEndian by the copying functions.
const (
	BigEndian Order = iota
	LittleEndian
	NotApplicable
)

func (o Order) String() string {
	switch o {
	case BigEndian:
		return "big endian"
	case LittleEndian:
		return "little endian"
	}
	return "n/a"
}

var hostOrder Order

func init() {
	b := make([]byte, 2)
	binary.NativeEndian.PutUint16(b, 0x0001)
	if b[0] == 0x01 {
		hostOrder = LittleEndian
	} else {
		hostOrder = BigEndian
	}
}

// HostOrder returns the byte order of the machine running the program.
func HostOrder() Order {
	return hostOrder
}

// Uint16 returns the first two bytes of b as a uint16 in the specified order.
// Bytes after the first two are ignored. Slices shorter than two bytes are
// zero extended as if they were the least significant bytes of the value.
func Uint16(b []byte, order Order) uint16 {
	var v [2]byte
	MemcpyEndian(v[:], BigEndian, b[:min(len(b), 2)], order)
	return binary.BigEndian.Uint16(v[:])
}

// PutUint16 writes v into the first two bytes of b in the specified order.
// Bytes after the first two are left untouched. If b is shorter than two
// bytes then only the least significant bytes are written.
func PutUint16(b []byte, v uint16, order Order) {
	var s [2]byte
	binary.BigEndian.PutUint16(s[:], v)
	MemcpyEndian(b[:min(len(b), 2)], order, s[:], BigEndian)
}
