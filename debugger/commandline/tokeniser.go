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

// Package commandline divides debugger input into tokens and provides
// helpers for consuming the tokens as command arguments.
//
// Hex values can be written with the 0x or $ prefix. The $ prefix is
// normalised to 0x by TokeniseInput().
package commandline

import (
	"strconv"
	"strings"

	"github.com/pepsim/pepsim/curated"
)

// Sentinel error patterns.
const (
	MissingArgument = "commandline: %s required"
	BadNumber       = "commandline: invalid %s (%s)"
)

// Tokens represents tokenised input. Can be used to walk through the input
// string (using Get()) for eas(ier) parsing.
type Tokens struct {
	input  string
	tokens []string
	curr   int
}

func (tk *Tokens) String() string {
	return tk.input
}

// Reset begins the token traversal process from the beginning.
func (tk *Tokens) Reset() {
	tk.curr = 0
}

// IsEnd returns true if we're at the end of the token list.
func (tk *Tokens) IsEnd() bool {
	return tk.curr >= len(tk.tokens)
}

// Remainder returns the remaining tokens as a string.
func (tk *Tokens) Remainder() string {
	return strings.Join(tk.tokens[tk.curr:], " ")
}

// Remaining returns the count of remaining tokens in the token list.
func (tk *Tokens) Remaining() int {
	return len(tk.tokens) - tk.curr
}

// Get returns the next token in the list, and a success boolean - if the end
// of the token list has been reached, the function returns false instead of
// true.
func (tk *Tokens) Get() (string, bool) {
	if tk.curr >= len(tk.tokens) {
		return "", false
	}
	tk.curr++
	return tk.tokens[tk.curr-1], true
}

// Unget walks backwards in the token list.
func (tk *Tokens) Unget() {
	if tk.curr > 0 {
		tk.curr--
	}
}

// Peek returns the next token in the list without advancing the list.
func (tk *Tokens) Peek() (string, bool) {
	if tk.curr >= len(tk.tokens) {
		return "", false
	}
	return tk.tokens[tk.curr], true
}

// GetCommand returns the next token in upper case.
func (tk *Tokens) GetCommand() (string, bool) {
	s, ok := tk.Get()
	return strings.ToUpper(s), ok
}

// GetUint returns the next token as an unsigned number no larger than
// bitSize bits. The name is used in error messages.
func (tk *Tokens) GetUint(name string, bitSize int) (uint64, error) {
	s, ok := tk.Get()
	if !ok {
		return 0, curated.Errorf(MissingArgument, name)
	}
	v, err := strconv.ParseUint(s, 0, bitSize)
	if err != nil {
		return 0, curated.Errorf(BadNumber, name, s)
	}
	return v, nil
}

// GetOptionalUint is like GetUint() except that the default value is
// returned if there are no more tokens.
func (tk *Tokens) GetOptionalUint(name string, bitSize int, def uint64) (uint64, error) {
	if tk.IsEnd() {
		return def, nil
	}
	return tk.GetUint(name, bitSize)
}

// TokeniseInput creates and returns a new Tokens instance.
func TokeniseInput(input string) *Tokens {
	tk := new(Tokens)

	// remove leading/trailing space
	input = strings.TrimSpace(input)

	// divide user input into tokens. removes excess white space
	tk.tokens = strings.Fields(input)

	// take a note of the raw input
	tk.input = input

	// normalise variations in syntax
	for i := range tk.tokens {
		if len(tk.tokens[i]) > 1 && tk.tokens[i][0] == '$' {
			tk.tokens[i] = "0x" + tk.tokens[i][1:]
		}
	}

	return tk
}
