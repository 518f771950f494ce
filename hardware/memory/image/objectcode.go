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

package image

import (
	"bufio"
	"io"
	"strings"

	"github.com/pepsim/pepsim/bits"
	"github.com/pepsim/pepsim/curated"
)

// Sentinel error patterns.
const (
	Unterminated  = "image: object code is not terminated by zz"
	BadObjectCode = "image: object code: %v"
)

// ParseObjectCode reads Pep object code text. Scanning stops at the "zz"
// terminator.
func ParseObjectCode(r io.Reader) ([]byte, error) {
	var b []byte

	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		w := scanner.Text()
		if strings.EqualFold(w, "zz") {
			return b, nil
		}

		v, err := bits.ParseAsciiHex(w)
		if err != nil {
			return nil, curated.Errorf(BadObjectCode, err)
		}
		b = append(b, v...)
	}

	if err := scanner.Err(); err != nil {
		return nil, curated.Errorf(BadObjectCode, err)
	}

	return nil, curated.Errorf(Unterminated)
}
