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

// significance index for a byte in a value of the specified length and
// order. a significance of zero is the least significant byte.
func index(length int, significance int, order Order) int {
	if order == LittleEndian {
		return significance
	}
	return length - 1 - significance
}

// MemcpyEndian copies the value in src to dest, converting between byte
// orders. If dest is longer than src then the additional most significant
// bytes in dest are zeroed. If src is longer than dest then the most
// significant bytes of src are discarded.
func MemcpyEndian(dest []byte, destOrder Order, src []byte, srcOrder Order) {
	n := min(len(dest), len(src))

	// simple copy if the orders are the same and the lengths are equal
	if len(dest) == len(src) && canonical(destOrder) == canonical(srcOrder) {
		copy(dest, src)
		return
	}

	Memclr(dest)
	for i := range n {
		dest[index(len(dest), i, destOrder)] = src[index(len(src), i, srcOrder)]
	}
}

func canonical(o Order) Order {
	if o == NotApplicable {
		return BigEndian
	}
	return o
}

// MemcpyXOR sets each byte in dest to the XOR of the corresponding bytes in
// src1 and src2. Only the number of bytes in the shortest slice are affected.
func MemcpyXOR(dest []byte, src1 []byte, src2 []byte) {
	n := min(len(dest), len(src1), len(src2))
	for i := range n {
		dest[i] = src1[i] ^ src2[i]
	}
}

// XORInPlace is the same as MemcpyXOR(dest, dest, src).
func XORInPlace(dest []byte, src []byte) {
	MemcpyXOR(dest, dest, src)
}

// Memclr sets every byte of b to zero.
func Memclr(b []byte) {
	clear(b)
}

// Memset sets every byte of b to v.
func Memset(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

// Byteswap reverses the order of the bytes in b.
func Byteswap(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// Byteswap16 returns v with the two bytes exchanged.
func Byteswap16(v uint16) uint16 {
	return v<<8 | v>>8
}
