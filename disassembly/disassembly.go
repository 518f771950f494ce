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

package disassembly

import (
	"fmt"
	"io"
	"strings"

	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/hardware/cpu/isa"
)

// Sentinel error patterns.
const (
	DisasmError = "disassembly: %v"
)

// Entry is a single disassembled instruction.
type Entry struct {
	Address  uint16
	Bytecode []byte
	Defn     isa.Definition
	Operand  uint16

	// the instruction extends beyond the end of the object code
	Truncated bool

	// assembler notation of the instruction
	Mnemonic string
}

func (e Entry) String() string {
	return fmt.Sprintf("%#04x %s", e.Address, e.Mnemonic)
}

// Disassembly of a block of object code.
type Disassembly struct {
	isa     *isa.ISA
	Entries []Entry
}

// FromObjectCode disassembles the code, which is assumed to be loaded at the
// origin address.
func FromObjectCode(arch isa.Architecture, code []byte, origin uint16) *Disassembly {
	dsm := &Disassembly{
		isa: isa.New(arch),
	}

	for i := 0; i < len(code); {
		defn := dsm.isa.Lookup(code[i])

		e := Entry{
			Address: origin + uint16(i),
			Defn:    defn,
		}

		n := defn.Bytes
		if i+n > len(code) {
			n = len(code) - i
			e.Truncated = true
		}
		e.Bytecode = code[i : i+n]

		if len(e.Bytecode) == 3 {
			e.Operand = uint16(e.Bytecode[1])<<8 | uint16(e.Bytecode[2])
		}

		if e.Truncated {
			e.Mnemonic = fmt.Sprintf(".BYTE 0x%02X ; truncated %s", code[i], defn.Operator)
		} else {
			e.Mnemonic = dsm.isa.Disassemble(code[i], e.Operand)
		}

		dsm.Entries = append(dsm.Entries, e)
		i += n
	}

	return dsm
}

// WriteAttr controls what is printed by the Write*() functions.
type WriteAttr struct {
	ByteCode bool
}

// Write the entire disassembly to io.Writer.
func (dsm *Disassembly) Write(output io.Writer, attr WriteAttr) error {
	for _, e := range dsm.Entries {
		if err := dsm.WriteEntry(output, attr, e); err != nil {
			return err
		}
	}
	return nil
}

// WriteEntry writes a single Entry to io.Writer.
func (dsm *Disassembly) WriteEntry(output io.Writer, attr WriteAttr, e Entry) error {
	var s strings.Builder

	fmt.Fprintf(&s, "%04X", e.Address)
	if attr.ByteCode {
		fmt.Fprintf(&s, "  %-6X", e.Bytecode)
	}
	fmt.Fprintf(&s, "  %s\n", e.Mnemonic)

	if _, err := io.WriteString(output, s.String()); err != nil {
		return curated.Errorf(DisasmError, err)
	}
	return nil
}
