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

// AddressingMode describes how the operand specifier of a non-unary
// instruction is interpreted.
type AddressingMode int

// List of valid AddressingMode values.
const (
	Implied AddressingMode = iota
	Immediate
	Direct
	Indirect
	StackRelative
	StackRelativeDeferred
	Indexed
	StackIndexed
	StackDeferredIndexed
)

// the three bit aaa field of the instruction specifier.
var generalModes = [8]AddressingMode{
	Immediate,
	Direct,
	Indirect,
	StackRelative,
	StackRelativeDeferred,
	Indexed,
	StackIndexed,
	StackDeferredIndexed,
}

// the one bit a field of the branch instructions.
var branchModes = [2]AddressingMode{
	Immediate,
	Indexed,
}

// String returns the assembler notation for the addressing mode.
func (m AddressingMode) String() string {
	switch m {
	case Implied:
		return ""
	case Immediate:
		return "i"
	case Direct:
		return "d"
	case Indirect:
		return "n"
	case StackRelative:
		return "s"
	case StackRelativeDeferred:
		return "sf"
	case Indexed:
		return "x"
	case StackIndexed:
		return "sx"
	case StackDeferredIndexed:
		return "sfx"
	}
	return "unknown addressing mode"
}

// ParseAddressingMode converts assembler notation to an AddressingMode.
func ParseAddressingMode(s string) (AddressingMode, bool) {
	for m := Immediate; m <= StackDeferredIndexed; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return Implied, false
}
