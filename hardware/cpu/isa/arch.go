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
	"strings"

	"github.com/pepsim/pepsim/curated"
)

// UnknownArchitecture is the error pattern returned by ParseArchitecture().
const UnknownArchitecture = "isa: unknown architecture (%s)"

// Architecture identifies one of the supported instruction set
// architectures.
type Architecture int

// List of valid Architecture values.
const (
	Pep9 Architecture = iota
	Pep10
)

func (a Architecture) String() string {
	switch a {
	case Pep9:
		return "Pep/9"
	case Pep10:
		return "Pep/10"
	}
	return "unknown"
}

// ParseArchitecture converts a string to an Architecture. The match is case
// insensitive and the slash is optional.
func ParseArchitecture(s string) (Architecture, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "/", "") {
	case "pep9", "9":
		return Pep9, nil
	case "pep10", "10":
		return Pep10, nil
	}
	return Pep9, curated.Errorf(UnknownArchitecture, s)
}

// Register identifies a sixteen bit CPU register. The registers are stored
// in the register file at Register*2, big-endian.
type Register int

// List of valid Register values.
const (
	A Register = iota
	X
	SP
	PC
	IS
	OS
	TR

	NumRegisters
)

func (r Register) String() string {
	switch r {
	case A:
		return "A"
	case X:
		return "X"
	case SP:
		return "SP"
	case PC:
		return "PC"
	case IS:
		return "IS"
	case OS:
		return "OS"
	case TR:
		return "TR"
	}
	return "unknown register"
}

// Offset returns the position of the register in the register file.
func (r Register) Offset() uint16 {
	return uint16(r) * 2
}

// ParseRegister converts a register name to a Register.
func ParseRegister(s string) (Register, bool) {
	for r := A; r < NumRegisters; r++ {
		if strings.EqualFold(r.String(), s) {
			return r, true
		}
	}
	return 0, false
}

// CSR identifies one of the status flags. Each flag is stored in a single
// byte of the CSR file.
type CSR int

// List of valid CSR values.
const (
	N CSR = iota
	Z
	V
	C

	NumCSRs
)

func (c CSR) String() string {
	switch c {
	case N:
		return "N"
	case Z:
		return "Z"
	case V:
		return "V"
	case C:
		return "C"
	}
	return "unknown flag"
}

// Vector identifies a memory vector. A memory vector is a word at a fixed
// address near the top of memory that holds the address of something the
// CPU or the system needs.
type Vector int

// List of valid Vector values.
const (
	UserStackPtr Vector = iota
	SystemStackPtr
	CharIn
	CharOut
	Loader
	Dispatcher
	TrapHandler
)

func (v Vector) String() string {
	switch v {
	case UserStackPtr:
		return "user stack"
	case SystemStackPtr:
		return "system stack"
	case CharIn:
		return "charIn"
	case CharOut:
		return "charOut"
	case Loader:
		return "loader"
	case Dispatcher:
		return "dispatcher"
	case TrapHandler:
		return "trap handler"
	}
	return "unknown vector"
}
