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
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pepsim/pepsim/curated"
)

// Sentinel error patterns.
const (
	InvalidHex    = "bits: invalid hex value (%s)"
	InvalidEscape = "bits: invalid escaped string: %v"
)

// AsciiHex returns the bytes in b as pairs of upper case hex digits separated
// by sep.
func AsciiHex(b []byte, sep string) string {
	s := strings.Builder{}
	for i, v := range b {
		if i > 0 {
			s.WriteString(sep)
		}
		s.WriteString(fmt.Sprintf("%02X", v))
	}
	return s.String()
}

// StartsWithHexPrefix returns true if s begins with 0x or 0X.
func StartsWithHexPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// ParseAsciiHex converts a list of whitespace separated hex byte pairs into
// a slice of bytes. Each field must be exactly two hex digits.
func ParseAsciiHex(s string) ([]byte, error) {
	f := strings.FieldsFunc(s, unicode.IsSpace)
	b := make([]byte, 0, len(f))
	for _, h := range f {
		if len(h) != 2 {
			return nil, curated.Errorf(InvalidHex, h)
		}
		v, err := strconv.ParseUint(h, 16, 8)
		if err != nil {
			return nil, curated.Errorf(InvalidHex, h)
		}
		b = append(b, byte(v))
	}
	return b, nil
}

// EscapedStringToBytes converts a string containing Go style escape
// sequences (eg. \n or \x41) to a slice of bytes. Characters outside the
// single byte range are not allowed.
func EscapedStringToBytes(s string) ([]byte, error) {
	b := make([]byte, 0, len(s))
	for len(s) > 0 {
		r, _, tail, err := strconv.UnquoteChar(s, 0)
		if err != nil {
			return nil, curated.Errorf(InvalidEscape, err)
		}
		if r > 0xff {
			return nil, curated.Errorf(InvalidEscape, fmt.Sprintf("character out of range (%q)", r))
		}
		b = append(b, byte(r))
		s = tail
	}
	return b, nil
}
