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

package script

import (
	"io"
	"os"
	"strings"

	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/debugger/terminal"
)

// Sentinel error patterns.
const (
	ScriptFileUnavailable = "script: file unavailable: %v"
	ScriptFileError       = "script: file error: %v"
)

const commentLine = "#"

// check if line is prepended with commentLine (ignoring leading spaces) or is
// empty
func isSkipped(line string) bool {
	line = strings.TrimSpace(line)
	return line == "" || strings.HasPrefix(line, commentLine)
}

// Rescribe represents a previously written script. The type implements the
// terminal.Input interface.
type Rescribe struct {
	scriptFile string
	lines      []string
	lineCt     int
}

// RescribeScript is the preferred method of initialisation for the Rescribe
// type.
func RescribeScript(scriptFile string) (*Rescribe, error) {
	f, err := os.Open(scriptFile)
	if err != nil {
		return nil, curated.Errorf(ScriptFileUnavailable, err)
	}
	defer f.Close()

	return NewRescribe(scriptFile, f)
}

// NewRescribe creates a Rescribe instance from the script read from r.
func NewRescribe(name string, r io.Reader) (*Rescribe, error) {
	buffer, err := io.ReadAll(r)
	if err != nil {
		return nil, curated.Errorf(ScriptFileError, err)
	}

	scr := &Rescribe{scriptFile: name}
	scr.lines = strings.Split(strings.ReplaceAll(string(buffer), "\r\n", "\n"), "\n")

	return scr, nil
}

func (scr *Rescribe) String() string {
	return scr.scriptFile
}

// IsInteractive implements the terminal.Input interface.
func (scr *Rescribe) IsInteractive() bool {
	return false
}

// TermRead implements the terminal.Input interface. Returns io.EOF when
// every line has been read.
func (scr *Rescribe) TermRead(_ terminal.Prompt) (string, error) {
	// pass over any lines starting with the commentLine
	for scr.lineCt < len(scr.lines) && isSkipped(scr.lines[scr.lineCt]) {
		scr.lineCt++
	}

	if scr.lineCt >= len(scr.lines) {
		return "", io.EOF
	}

	line := strings.TrimSpace(scr.lines[scr.lineCt])
	scr.lineCt++

	return line, nil
}
