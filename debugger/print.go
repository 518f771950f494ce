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

package debugger

import (
	"fmt"
	"strings"

	"github.com/pepsim/pepsim/debugger/terminal"
)

// all output from the input loop goes through printLine. output is silently
// dropped if there is no terminal.
func (dbg *Debugger) printLine(sty terminal.Style, s string, a ...any) {
	dbg.printRaw(sty, fmt.Sprintf(s, a...))
}

// printRaw is like printLine but the string is not treated as a format
// string. the help text contains percent signs
func (dbg *Debugger) printRaw(sty terminal.Style, s string) {
	if dbg.term == nil {
		return
	}

	// remove all trailing newlines, and return if the resulting string is empty
	s = strings.TrimRight(s, "\n")
	if len(s) == 0 {
		return
	}

	dbg.term.TermPrintLine(sty, s)
}

// styleWriter implements the io.Writer interface. it is useful for when an
// io.Writer is required and you want to direct the output to the terminal.
// allows the application of a single style.
type styleWriter struct {
	dbg   *Debugger
	style terminal.Style
}

func (dbg *Debugger) printStyle(sty terminal.Style) *styleWriter {
	return &styleWriter{
		dbg:   dbg,
		style: sty,
	}
}

func (wrt styleWriter) Write(p []byte) (n int, err error) {
	for _, l := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		wrt.dbg.printRaw(wrt.style, l)
	}
	return len(p), nil
}
