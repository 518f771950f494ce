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

package isa

import (
	"fmt"

	"github.com/pepsim/pepsim/curated"
)

// UnsupportedArchitecture is the pattern used when panicking because New()
// was asked for an architecture it doesn't know about.
const UnsupportedArchitecture = "isa: unsupported architecture (%d)"

// Definition defines each instruction in the instruction set; one per
// instruction specifier.
type Definition struct {
	OpCode         uint8
	Operator       Operator
	AddressingMode AddressingMode
	Bytes          int
	Effect         Category
}

// String returns a single instruction definition as a string.
func (defn Definition) String() string {
	if defn.Operator == Illegal {
		return fmt.Sprintf("%02x illegal instruction", defn.OpCode)
	}
	if defn.Unary() {
		return fmt.Sprintf("%02x %s (unary) [effect=%s]", defn.OpCode, defn.Operator, defn.Effect)
	}
	return fmt.Sprintf("%02x %s,%s +%dbytes [effect=%s]", defn.OpCode, defn.Operator, defn.AddressingMode, defn.Bytes, defn.Effect)
}

// Legal returns false if the instruction specifier is not defined.
func (defn Definition) Legal() bool {
	return defn.Operator != Illegal
}

// Unary returns true if the instruction has no operand specifier.
func (defn Definition) Unary() bool {
	return defn.Bytes == 1
}

// ISA is the definition of an instruction set architecture.
type ISA struct {
	Arch    Architecture
	defs    [256]Definition
	vectors map[Vector]uint16
}

// New returns the ISA for the architecture. Panics if the architecture is
// not supported.
func New(arch Architecture) *ISA {
	isa := &ISA{
		Arch: arch,
	}
	for i := range isa.defs {
		isa.defs[i] = Definition{OpCode: uint8(i), Bytes: 1, Effect: Modify}
	}

	switch arch {
	case Pep9:
		isa.pep9()
	case Pep10:
		isa.pep10()
	default:
		panic(curated.Errorf(UnsupportedArchitecture, arch))
	}

	return isa
}

// Lookup returns the definition for the instruction specifier.
func (isa *ISA) Lookup(opcode uint8) Definition {
	return isa.defs[opcode]
}

// Encode returns the instruction specifier for the operator and addressing
// mode. The addressing mode is ignored for unary operators.
func (isa *ISA) Encode(op Operator, mode AddressingMode) (uint8, bool) {
	for _, d := range isa.defs {
		if d.Operator == op && (d.Unary() || d.AddressingMode == mode) {
			return d.OpCode, true
		}
	}
	return 0, false
}

// Vector returns the address of the memory vector. Returns false if the
// architecture does not have the vector.
func (isa *ISA) Vector(v Vector) (uint16, bool) {
	a, ok := isa.vectors[v]
	return a, ok
}

// Disassemble returns the assembler notation for an instruction.
func (isa *ISA) Disassemble(is uint8, os uint16) string {
	defn := isa.Lookup(is)
	if !defn.Legal() {
		return fmt.Sprintf(".BYTE 0x%02X", is)
	}
	if defn.Unary() {
		return defn.Operator.String()
	}
	return fmt.Sprintf("%s 0x%04X,%s", defn.Operator, os, defn.AddressingMode)
}

func (isa *ISA) unary(opcode uint8, op Operator) {
	isa.defs[opcode] = Definition{
		OpCode:         opcode,
		Operator:       op,
		AddressingMode: Implied,
		Bytes:          1,
		Effect:         categorise(op),
	}
}

func (isa *ISA) nonunary(opcode uint8, op Operator, mode AddressingMode) {
	isa.defs[opcode] = Definition{
		OpCode:         opcode,
		Operator:       op,
		AddressingMode: mode,
		Bytes:          3,
		Effect:         categorise(op),
	}
}

// the unary register instructions come in A and X pairs
func (isa *ISA) pairs(opcode uint8, ops ...Operator) {
	for i, op := range ops {
		isa.unary(opcode+uint8(i), op)
	}
}

// branch instructions use the one bit a field
func (isa *ISA) branch(opcode uint8, ops ...Operator) {
	for i, op := range ops {
		for j, m := range branchModes {
			isa.nonunary(opcode+uint8(i*2+j), op, m)
		}
	}
}

// general instructions use the three bit aaa field. the immediate mode is
// excluded when noImmediate is true
func (isa *ISA) general(opcode uint8, noImmediate bool, ops ...Operator) {
	for i, op := range ops {
		for j, m := range generalModes {
			if noImmediate && m == Immediate {
				continue
			}
			isa.nonunary(opcode+uint8(i*8+j), op, m)
		}
	}
}

func (isa *ISA) pep9() {
	isa.vectors = map[Vector]uint16{
		UserStackPtr:   0xfff4,
		SystemStackPtr: 0xfff6,
		CharIn:         0xfff8,
		CharOut:        0xfffa,
		Loader:         0xfffc,
		TrapHandler:    0xfffe,
	}

	isa.pairs(0x00, Stop, Ret, Rettr, Movspa, Movflga, Movaflg)
	isa.pairs(0x06, Nota, Notx, Nega, Negx, Asla, Aslx, Asra, Asrx, Rola, Rolx, Rora, Rorx)
	isa.branch(0x12, Br, Brle, Brlt, Breq, Brne, Brge, Brgt, Brv, Brc, Call)
	isa.pairs(0x26, Nop0, Nop1)
	isa.general(0x28, false, Nopn)
	isa.general(0x30, true, Deci)
	isa.general(0x38, false, Deco, Hexo)
	isa.general(0x48, true, Stro)
	isa.general(0x50, false, Addsp, Subsp, Adda, Addx, Suba, Subx, Anda, Andx, Ora, Orx, Cpwa, Cpwx, Cpba, Cpbx, Ldwa, Ldwx, Ldba, Ldbx)
	isa.general(0xe0, true, Stwa, Stwx, Stba, Stbx)
}

func (isa *ISA) pep10() {
	isa.vectors = map[Vector]uint16{
		SystemStackPtr: 0xfffa,
		Dispatcher:     0xfffc,
		TrapHandler:    0xfffe,
	}

	isa.pairs(0x00, Ret, Sret, Movspa, Movasp, Movflga, Movaflg, Nop)
	isa.pairs(0x10, Nota, Notx, Nega, Negx, Asla, Aslx, Asra, Asrx, Rola, Rolx, Rora, Rorx)
	isa.branch(0x1c, Br, Brle, Brlt, Breq, Brne, Brge, Brgt, Brv, Brc, Call)
	isa.general(0x30, false, Scall)
	isa.general(0x40, false, Ldwa, Ldwx, Ldba, Ldbx)
	isa.general(0x60, true, Stwa, Stwx, Stba, Stbx)
	isa.general(0x80, false, Cpwa, Cpwx, Cpba, Cpbx, Adda, Addx, Suba, Subx, Anda, Andx, Ora, Orx, Xora, Xorx, Addsp, Subsp)
}
