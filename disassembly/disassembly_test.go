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

package disassembly_test

import (
	"strings"
	"testing"

	"github.com/pepsim/pepsim/disassembly"
	"github.com/pepsim/pepsim/hardware/cpu/isa"
	"github.com/pepsim/pepsim/test"
)

func TestLinearSweep(t *testing.T) {
	def := isa.New(isa.Pep9)
	ldba, ok := def.Encode(isa.Ldba, isa.Direct)
	test.DemandSuccess(t, ok)
	stop, ok := def.Encode(isa.Stop, isa.Implied)
	test.DemandSuccess(t, ok)

	code := []byte{ldba, 0xff, 0xf0, stop, ldba, 0x01}
	dsm := disassembly.FromObjectCode(isa.Pep9, code, 0x0000)

	test.DemandEquality(t, len(dsm.Entries), 3)
	test.ExpectEquality(t, dsm.Entries[0].Mnemonic, "LDBA 0xFFF0,d")
	test.ExpectEquality(t, dsm.Entries[0].Operand, 0xfff0)
	test.ExpectEquality(t, dsm.Entries[1].Address, 0x0003)
	test.ExpectEquality(t, dsm.Entries[1].Mnemonic, "STOP")
	test.ExpectSuccess(t, dsm.Entries[2].Truncated)
	test.ExpectEquality(t, len(dsm.Entries[2].Bytecode), 2)

	var out strings.Builder
	err := dsm.Write(&out, disassembly.WriteAttr{ByteCode: true})
	test.ExpectSuccess(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	test.DemandEquality(t, len(lines), 3)
	test.ExpectEquality(t, lines[0], "0000  D1FFF0  LDBA 0xFFF0,d")
	test.ExpectEquality(t, lines[1], "0003  00      STOP")
}
