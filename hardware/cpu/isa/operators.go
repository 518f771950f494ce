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

// Operator identifies the operation performed by an instruction.
type Operator int

// List of valid Operator values. Not every operator is available in both
// architectures.
const (
	Illegal Operator = iota

	Stop
	Ret
	Rettr
	Sret
	Movspa
	Movasp
	Movflga
	Movaflg
	Nop

	Nota
	Notx
	Nega
	Negx
	Asla
	Aslx
	Asra
	Asrx
	Rola
	Rolx
	Rora
	Rorx

	Br
	Brle
	Brlt
	Breq
	Brne
	Brge
	Brgt
	Brv
	Brc
	Call

	Nop0
	Nop1
	Nopn
	Deci
	Deco
	Hexo
	Stro
	Scall

	Addsp
	Subsp
	Adda
	Addx
	Suba
	Subx
	Anda
	Andx
	Ora
	Orx
	Xora
	Xorx
	Cpwa
	Cpwx
	Cpba
	Cpbx
	Ldwa
	Ldwx
	Ldba
	Ldbx
	Stwa
	Stwx
	Stba
	Stbx
)

var operatorNames = map[Operator]string{
	Illegal: "???",
	Stop:    "STOP",
	Ret:     "RET",
	Rettr:   "RETTR",
	Sret:    "SRET",
	Movspa:  "MOVSPA",
	Movasp:  "MOVASP",
	Movflga: "MOVFLGA",
	Movaflg: "MOVAFLG",
	Nop:     "NOP",
	Nota:    "NOTA",
	Notx:    "NOTX",
	Nega:    "NEGA",
	Negx:    "NEGX",
	Asla:    "ASLA",
	Aslx:    "ASLX",
	Asra:    "ASRA",
	Asrx:    "ASRX",
	Rola:    "ROLA",
	Rolx:    "ROLX",
	Rora:    "RORA",
	Rorx:    "RORX",
	Br:      "BR",
	Brle:    "BRLE",
	Brlt:    "BRLT",
	Breq:    "BREQ",
	Brne:    "BRNE",
	Brge:    "BRGE",
	Brgt:    "BRGT",
	Brv:     "BRV",
	Brc:     "BRC",
	Call:    "CALL",
	Nop0:    "NOP0",
	Nop1:    "NOP1",
	Nopn:    "NOP",
	Deci:    "DECI",
	Deco:    "DECO",
	Hexo:    "HEXO",
	Stro:    "STRO",
	Scall:   "SCALL",
	Addsp:   "ADDSP",
	Subsp:   "SUBSP",
	Adda:    "ADDA",
	Addx:    "ADDX",
	Suba:    "SUBA",
	Subx:    "SUBX",
	Anda:    "ANDA",
	Andx:    "ANDX",
	Ora:     "ORA",
	Orx:     "ORX",
	Xora:    "XORA",
	Xorx:    "XORX",
	Cpwa:    "CPWA",
	Cpwx:    "CPWX",
	Cpba:    "CPBA",
	Cpbx:    "CPBX",
	Ldwa:    "LDWA",
	Ldwx:    "LDWX",
	Ldba:    "LDBA",
	Ldbx:    "LDBX",
	Stwa:    "STWA",
	Stwx:    "STWX",
	Stba:    "STBA",
	Stbx:    "STBX",
}

func (o Operator) String() string {
	if s, ok := operatorNames[o]; ok {
		return s
	}
	return "unknown operator"
}

// Register returns the register used by the operator, for those operators
// that have a register in their name.
func (o Operator) Register() Register {
	switch o {
	case Notx, Negx, Aslx, Asrx, Rolx, Rorx,
		Addx, Subx, Andx, Orx, Xorx, Cpwx, Cpbx,
		Ldwx, Ldbx, Stwx, Stbx:
		return X
	}
	return A
}

// ByteOperand returns true if the operator works with a single byte
// operand.
func (o Operator) ByteOperand() bool {
	switch o {
	case Ldba, Ldbx, Stba, Stbx, Cpba, Cpbx:
		return true
	}
	return false
}

// Category of an instruction describes its effect.
type Category int

// List of valid Category values.
const (
	// reads an operand
	Read Category = iota

	// writes the operand address
	Write

	// changes registers only
	Modify

	// branches
	Flow

	// calls and returns
	Subroutine

	// enters or leaves the operating system
	Trap
)

func (e Category) String() string {
	switch e {
	case Read:
		return "Read"
	case Write:
		return "Write"
	case Modify:
		return "Modify"
	case Flow:
		return "Flow"
	case Subroutine:
		return "Subroutine"
	case Trap:
		return "Trap"
	}
	return "unknown effect"
}

func categorise(o Operator) Category {
	switch o {
	case Stwa, Stwx, Stba, Stbx:
		return Write
	case Br, Brle, Brlt, Breq, Brne, Brge, Brgt, Brv, Brc:
		return Flow
	case Call, Ret:
		return Subroutine
	case Nop0, Nop1, Nopn, Deci, Deco, Hexo, Stro, Scall, Rettr, Sret, Stop:
		return Trap
	case Addsp, Subsp, Adda, Addx, Suba, Subx, Anda, Andx, Ora, Orx, Xora, Xorx,
		Cpwa, Cpwx, Cpba, Cpbx, Ldwa, Ldwx, Ldba, Ldbx:
		return Read
	}
	return Modify
}
