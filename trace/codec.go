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

	"github.com/pepsim/pepsim/bits"
	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/hardware/device"
)

// the first byte of every encoded fragment.
const (
	tagTrace      byte = 0x01
	tagExtender   byte = 0x02
	tagClear      byte = 0x10
	tagPureRead   byte = 0x11
	tagImpureRead byte = 0x12
	tagWrite      byte = 0x13
	tagIncrement  byte = 0x14
	tagVariable   byte = 0x20
)

// size of an encoded frame header.
const frameHeaderSize = 5

// the control byte of a Variable fragment.
const (
	variableContinues = 0x80
	variableLenMask   = 0x1f
)

// Sentinel error patterns for decoding.
const (
	TruncatedFragment  = "trace: truncated fragment"
	InvalidAddressSize = "trace: invalid address size (%d)"
	VariableTooLong    = "trace: variable fragment too long (%d)"
	UnknownTag         = "trace: unknown tag (%#02x)"
)

// header fields are always two bytes. the slice is usually the remainder of
// the buffer so it is cut to length here
func putUint16(b []byte, v uint16) {
	bits.PutUint16(b[:2], v, bits.BigEndian)
}

func getUint16(b []byte) uint16 {
	return bits.Uint16(b[:2], bits.BigEndian)
}

// the number of bytes used to encode an address.
func addressSize(a uint32) int {
	switch {
	case a <= 0xff:
		return 1
	case a <= 0xffff:
		return 2
	}
	return 4
}

func putAddress(b []byte, a uint32) int {
	n := addressSize(a)
	b[0] = byte(n)
	v := []byte{byte(a >> 24), byte(a >> 16), byte(a >> 8), byte(a)}
	copy(b[1:], v[4-n:])
	return n + 1
}

func getAddress(b []byte) (uint32, int, error) {
	if len(b) < 1 {
		return 0, 0, curated.Errorf(TruncatedFragment)
	}
	n := int(b[0])
	if n != 1 && n != 2 && n != 4 {
		return 0, 0, curated.Errorf(InvalidAddressSize, n)
	}
	if len(b) < n+1 {
		return 0, 0, curated.Errorf(TruncatedFragment)
	}
	var a uint32
	for _, v := range b[1 : n+1] {
		a = a<<8 | uint32(v)
	}
	return a, n + 1, nil
}

func encodeFrame(tag byte, length uint16, backOffset uint16) []byte {
	b := make([]byte, frameHeaderSize)
	b[0] = tag
	putUint16(b[1:], length)
	putUint16(b[3:], backOffset)
	return b
}

func encodePacket(tag byte, info PacketInfo, extra ...byte) []byte {
	b := make([]byte, 6+addressSize(info.Address)+len(extra))
	b[0] = tag
	putUint16(b[1:], info.Path)
	putUint16(b[3:], uint16(info.Device))
	n := putAddress(b[5:], info.Address)
	copy(b[5+n:], extra)
	return b
}

// encode a fragment. Variable fragments must not be longer than
// MaxVariableBytes.
func encode(f Fragment) []byte {
	switch f := f.(type) {
	case Trace:
		return encodeFrame(tagTrace, f.Length, f.BackOffset)
	case Extender:
		return encodeFrame(tagExtender, f.Length, f.BackOffset)
	case Clear:
		return encodePacket(tagClear, f.PacketInfo, f.Value)
	case PureRead:
		return encodePacket(tagPureRead, f.PacketInfo, byte(f.Length>>8), byte(f.Length))
	case ImpureRead:
		return encodePacket(tagImpureRead, f.PacketInfo)
	case Write:
		return encodePacket(tagWrite, f.PacketInfo)
	case Increment:
		return encodePacket(tagIncrement, f.PacketInfo)
	case Variable:
		b := make([]byte, 2+len(f.Bytes))
		b[0] = tagVariable
		b[1] = byte(len(f.Bytes)) & variableLenMask
		if f.Continues {
			b[1] |= variableContinues
		}
		copy(b[2:], f.Bytes)
		return b
	}
	panic(fmt.Sprintf("trace: cannot encode %T", f))
}

// decode the fragment at the start of b. Returns the fragment and the number
// of bytes it occupies.
func decode(b []byte) (Fragment, int, error) {
	if len(b) == 0 {
		return nil, 0, curated.Errorf(TruncatedFragment)
	}

	switch b[0] {
	case tagTrace, tagExtender:
		if len(b) < frameHeaderSize {
			return nil, 0, curated.Errorf(TruncatedFragment)
		}
		l := getUint16(b[1:])
		o := getUint16(b[3:])
		if b[0] == tagTrace {
			return Trace{Length: l, BackOffset: o}, frameHeaderSize, nil
		}
		return Extender{Length: l, BackOffset: o}, frameHeaderSize, nil

	case tagClear, tagPureRead, tagImpureRead, tagWrite, tagIncrement:
		if len(b) < 6 {
			return nil, 0, curated.Errorf(TruncatedFragment)
		}
		info := PacketInfo{
			Path:   getUint16(b[1:]),
			Device: device.ID(getUint16(b[3:])),
		}
		a, n, err := getAddress(b[5:])
		if err != nil {
			return nil, 0, err
		}
		info.Address = a
		sz := 5 + n

		switch b[0] {
		case tagClear:
			if len(b) < sz+1 {
				return nil, 0, curated.Errorf(TruncatedFragment)
			}
			return Clear{PacketInfo: info, Value: b[sz]}, sz + 1, nil
		case tagPureRead:
			if len(b) < sz+2 {
				return nil, 0, curated.Errorf(TruncatedFragment)
			}
			return PureRead{PacketInfo: info, Length: getUint16(b[sz:])}, sz + 2, nil
		case tagImpureRead:
			return ImpureRead{PacketInfo: info}, sz, nil
		case tagWrite:
			return Write{PacketInfo: info}, sz, nil
		}
		return Increment{PacketInfo: info}, sz, nil

	case tagVariable:
		if len(b) < 2 {
			return nil, 0, curated.Errorf(TruncatedFragment)
		}
		n := int(b[1] & variableLenMask)
		if n > MaxVariableBytes {
			return nil, 0, curated.Errorf(VariableTooLong, n)
		}
		if len(b) < 2+n {
			return nil, 0, curated.Errorf(TruncatedFragment)
		}
		return Variable{
			Continues: b[1]&variableContinues == variableContinues,
			Bytes:     b[2 : 2+n],
		}, 2 + n, nil
	}

	return nil, 0, curated.Errorf(UnknownTag, b[0])
}
