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

//go:build !windows

package easyterm

import (
	"fmt"
	"os"
	"sync"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal is the main container for posix terminals.
type Terminal struct {
	input  *os.File
	output *os.File

	// whether the input and output are connected to a terminal
	realInput  bool
	realOutput bool

	canAttr    unix.Termios
	cbreakAttr unix.Termios

	// the mode changing functions are called from the main goroutine and
	// from CleanUp(), which may be deferred in another goroutine
	mu sync.Mutex
}

// Initialise the fields in the Terminal struct.
func (pt *Terminal) Initialise(inputFile, outputFile *os.File) error {
	if inputFile == nil {
		return fmt.Errorf("easyterm: Terminal requires an input file")
	}
	if outputFile == nil {
		return fmt.Errorf("easyterm: Terminal requires an output file")
	}

	pt.input = inputFile
	pt.output = outputFile
	pt.realInput = term.IsTerminal(int(pt.input.Fd()))
	pt.realOutput = term.IsTerminal(int(pt.output.Fd()))

	if !pt.realInput {
		return nil
	}

	// prepare the attributes for the different terminal modes we'll be using
	if err := termios.Tcgetattr(pt.input.Fd(), &pt.canAttr); err != nil {
		return fmt.Errorf("easyterm: %w", err)
	}
	pt.cbreakAttr = pt.canAttr
	termios.Cfmakecbreak(&pt.cbreakAttr)

	return nil
}

// CleanUp restores the terminal to canonical mode.
func (pt *Terminal) CleanUp() {
	_ = pt.CanonicalMode()
}

// IsTerminal returns true if both the input and output are connected to a
// terminal.
func (pt *Terminal) IsTerminal() bool {
	return pt.realInput && pt.realOutput
}

// Print writes the formatted string to the output file.
func (pt *Terminal) Print(s string, a ...any) {
	pt.output.WriteString(fmt.Sprintf(s, a...))
	pt.output.Sync()
}

// Geometry returns the current dimensions, in characters, of the output
// terminal.
func (pt *Terminal) Geometry() (cols int, rows int, err error) {
	if !pt.realOutput {
		return 0, 0, fmt.Errorf("easyterm: output is not a terminal")
	}
	return term.GetSize(int(pt.output.Fd()))
}

// CanonicalMode puts terminal into normal, everyday canonical mode.
func (pt *Terminal) CanonicalMode() error {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if !pt.realInput {
		return nil
	}
	return termios.Tcsetattr(pt.input.Fd(), termios.TCSANOW, &pt.canAttr)
}

// CBreakMode puts terminal into cbreak mode. Key presses are available
// immediately and are not echoed.
func (pt *Terminal) CBreakMode() error {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if !pt.realInput {
		return nil
	}
	return termios.Tcsetattr(pt.input.Fd(), termios.TCSANOW, &pt.cbreakAttr)
}

// Flush makes sure the terminal's input buffer is empty.
func (pt *Terminal) Flush() error {
	if !pt.realInput {
		return nil
	}
	return termios.Tcflush(pt.input.Fd(), termios.TCIFLUSH)
}
