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

//go:build windows

package easyterm

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Terminal is a minimal implementation for platforms without termios. The
// mode functions do nothing.
type Terminal struct {
	input  *os.File
	output *os.File
}

// Initialise the fields in the Terminal struct.
func (pt *Terminal) Initialise(inputFile, outputFile *os.File) error {
	if inputFile == nil || outputFile == nil {
		return fmt.Errorf("easyterm: Terminal requires an input and output file")
	}
	pt.input = inputFile
	pt.output = outputFile
	return nil
}

// CleanUp does nothing.
func (pt *Terminal) CleanUp() {}

// IsTerminal returns true if both the input and output are connected to a
// terminal.
func (pt *Terminal) IsTerminal() bool {
	return term.IsTerminal(int(pt.input.Fd())) && term.IsTerminal(int(pt.output.Fd()))
}

// Print writes the formatted string to the output file.
func (pt *Terminal) Print(s string, a ...any) {
	pt.output.WriteString(fmt.Sprintf(s, a...))
}

// Geometry returns the current dimensions, in characters, of the output
// terminal.
func (pt *Terminal) Geometry() (cols int, rows int, err error) {
	return term.GetSize(int(pt.output.Fd()))
}

// CanonicalMode does nothing.
func (pt *Terminal) CanonicalMode() error { return nil }

// CBreakMode does nothing.
func (pt *Terminal) CBreakMode() error { return nil }

// Flush does nothing.
func (pt *Terminal) Flush() error { return nil }
