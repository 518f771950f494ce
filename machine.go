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

package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/hardware"
	"github.com/pepsim/pepsim/hardware/cpu/isa"
	"github.com/pepsim/pepsim/hardware/memory/image"
	"github.com/pepsim/pepsim/logger"
	"github.com/pepsim/pepsim/trace"
)

// Sentinel error patterns.
const (
	ObjectFileError = "pepsim: object file: %v"
	InputFileError  = "pepsim: input file: %v"
)

// machine describes how a System should be built from the command line.
type machine struct {
	arch       isa.Architecture
	objectFile string
	inputFile  string
	trace      bool
}

// the object code is loaded at address zero of the default image for the
// architecture
func (m machine) build() (*hardware.System, error) {
	code, err := readObjectCode(m.objectFile)
	if err != nil {
		return nil, err
	}

	img := image.Default(m.arch)
	if !img.Load(0x0000, code) {
		return nil, curated.Errorf(ObjectFileError, fmt.Errorf("%d bytes does not fit in memory", len(code)))
	}

	if m.inputFile != "" {
		input, err := os.ReadFile(m.inputFile)
		if err != nil {
			return nil, curated.Errorf(InputFileError, err)
		}
		img.Buffer(image.CharIn, input)
	}

	sys := hardware.FromImage(img)
	if m.trace {
		sys.SetBuffer(trace.NewBuffer())
	}
	sys.Init()

	logger.Logf(logger.Allow, "pepsim", "%s: %d bytes of object code", m.arch, len(code))

	return sys, nil
}

func readObjectCode(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, curated.Errorf(ObjectFileError, err)
	}

	code, err := image.ParseObjectCode(bytes.NewReader(data))
	if err != nil {
		return nil, curated.Errorf(ObjectFileError, err)
	}

	return code, nil
}
