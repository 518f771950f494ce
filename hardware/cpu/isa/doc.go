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

// Package isa defines the Pep/9 and Pep/10 instruction set architectures:
// the registers, the status flags, the memory vectors and the table of
// instruction definitions for each architecture.
//
// The definitions are used by the cpu package to decode instructions. An
// instruction is one or three bytes long. The first byte is the instruction
// specifier and is looked up in the definition table. Unary instructions
// have no operand. Non-unary instructions are followed by a two byte operand
// specifier, which is interpreted according to the addressing mode encoded
// in the low bits of the instruction specifier.
package isa
