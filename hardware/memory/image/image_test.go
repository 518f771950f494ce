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

package image_test

import (
	"strings"
	"testing"

	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/hardware/cpu/isa"
	"github.com/pepsim/pepsim/hardware/memory/image"
	"github.com/pepsim/pepsim/test"
)

func TestObjectCode(t *testing.T) {
	b, err := image.ParseObjectCode(strings.NewReader("D1 FC 15 F1 FC 16\n00 zz"))
	test.ExpectSuccess(t, err)
	test.ExpectBytes(t, b, []byte{0xd1, 0xfc, 0x15, 0xf1, 0xfc, 0x16, 0x00})

	// everything after the terminator is ignored
	b, err = image.ParseObjectCode(strings.NewReader("00 zz junk"))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(b), 1)

	_, err = image.ParseObjectCode(strings.NewReader("00 01"))
	test.ExpectSuccess(t, curated.Is(err, image.Unterminated))

	_, err = image.ParseObjectCode(strings.NewReader("00 0g zz"))
	test.ExpectSuccess(t, curated.Is(err, image.BadObjectCode))
}

func TestDefaultPep9(t *testing.T) {
	img := image.Default(isa.Pep9)
	test.ExpectEquality(t, len(img.MMIO), 3)

	p, ok := img.Port(image.CharIn)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, p.MinOffset, 0xfff0)
	test.ExpectEquality(t, p.Type, image.Input)

	p, ok = img.Port(image.PwrOff)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, p.MinOffset, 0xfff2)
	test.ExpectEquality(t, p.Type, image.Output)

	_, ok = img.Port(image.DiskIn)
	test.ExpectFailure(t, ok)
}

func TestDefaultPep10(t *testing.T) {
	img := image.Default(isa.Pep10)
	test.ExpectEquality(t, len(img.MMIO), 4)

	p, _ := img.Port(image.DiskIn)
	test.ExpectEquality(t, p.MinOffset, 0xfff0)
	p, _ = img.Port(image.PwrOff)
	test.ExpectEquality(t, p.MinOffset, 0xfff3)

	// the stack and dispatcher vectors
	test.ExpectEquality(t, len(img.Regions), 1)
	test.ExpectEquality(t, len(img.Regions[0].Segments), 2)
	test.ExpectEquality(t, img.Regions[0].Segments[0].Address, 0xfffa)
	test.ExpectBytes(t, img.Regions[0].Segments[0].Data, []byte{0xfb, 0x8f})
}

func TestLoad(t *testing.T) {
	img := image.Image{
		Regions: []image.Region{
			{MinOffset: 0x0000, MaxOffset: 0x00ff, Writable: true},
			{MinOffset: 0x0100, MaxOffset: 0x01ff},
		},
	}

	// data crossing the boundary between regions is divided
	test.ExpectSuccess(t, img.Load(0x00fe, []byte{1, 2, 3, 4}))
	test.ExpectEquality(t, len(img.Regions[0].Segments), 1)
	test.ExpectBytes(t, img.Regions[0].Segments[0].Data, []byte{1, 2})
	test.ExpectEquality(t, img.Regions[1].Segments[0].Address, 0x0100)
	test.ExpectBytes(t, img.Regions[1].Segments[0].Data, []byte{3, 4})

	// unmapped
	test.ExpectFailure(t, img.Load(0x01ff, []byte{1, 2}))
	test.ExpectFailure(t, img.Load(0x8000, []byte{1}))
}
