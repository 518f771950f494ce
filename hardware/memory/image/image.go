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

package image

import (
	"github.com/pepsim/pepsim/bits"
	"github.com/pepsim/pepsim/hardware/cpu/isa"
)

// Segment is a run of bytes in a region. The address is a bus address.
type Segment struct {
	Address uint16
	Data    []byte
}

// Region is a contiguous area of memory.
type Region struct {
	MinOffset uint16
	MaxOffset uint16
	Writable  bool
	Segments  []Segment
}

// Contains returns true if the address is in the region.
func (r Region) Contains(address uint16) bool {
	return address >= r.MinOffset && address <= r.MaxOffset
}

// IOType is the type of a memory-mapped device.
type IOType int

// List of valid IOType values.
const (
	Input IOType = iota
	Output
	IDE
)

func (t IOType) String() string {
	switch t {
	case Input:
		return "input"
	case Output:
		return "output"
	case IDE:
		return "ide"
	}
	return "unknown io type"
}

// MMIO declares a memory-mapped device.
type MMIO struct {
	Name      string
	Type      IOType
	MinOffset uint16
	MaxOffset uint16
}

// Buffer is data to be placed in an input port's endpoint before the machine
// starts.
type Buffer struct {
	Port string
	Data []byte
}

// Image is the description of a machine.
type Image struct {
	Arch    isa.Architecture
	Regions []Region
	MMIO    []MMIO
	Buffers []Buffer

	// the address of the boot flags word. only meaningful if HasBootFlags
	// is true
	BootFlagAddress uint16
	HasBootFlags    bool
}

// Default port names.
const (
	CharIn  = "charIn"
	CharOut = "charOut"
	DiskIn  = "diskIn"
	PwrOff  = "pwrOff"
)

// DefaultStack is the initial stack pointer written into the stack vector
// of the default image.
const DefaultStack = 0xfb8f

// Default returns an image with a single writable region covering all of
// memory and the standard ports for the architecture. The memory vectors
// are prepared so that a program loaded at address zero runs without an
// operating system.
func Default(arch isa.Architecture) Image {
	img := Image{
		Arch: arch,
		Regions: []Region{
			{MinOffset: 0x0000, MaxOffset: 0xffff, Writable: true},
		},
	}

	var ports []string
	switch arch {
	case isa.Pep9:
		ports = []string{CharIn, CharOut, PwrOff}
	case isa.Pep10:
		ports = []string{DiskIn, CharIn, CharOut, PwrOff}
	}

	addr := uint16(0xfff0)
	for _, p := range ports {
		t := Output
		if p == CharIn || p == DiskIn {
			t = Input
		}
		img.MMIO = append(img.MMIO, MMIO{Name: p, Type: t, MinOffset: addr, MaxOffset: addr})
		addr++
	}

	def := isa.New(arch)
	vector := func(v isa.Vector, value uint16) {
		if a, ok := def.Vector(v); ok {
			b := make([]byte, 2)
			bits.PutUint16(b, value, bits.BigEndian)
			img.Load(a, b)
		}
	}

	switch arch {
	case isa.Pep9:
		vector(isa.UserStackPtr, DefaultStack)
		vector(isa.SystemStackPtr, DefaultStack)
		if p, ok := img.Port(CharIn); ok {
			vector(isa.CharIn, p.MinOffset)
		}
		if p, ok := img.Port(CharOut); ok {
			vector(isa.CharOut, p.MinOffset)
		}
	case isa.Pep10:
		vector(isa.SystemStackPtr, DefaultStack)
		vector(isa.Dispatcher, 0x0000)
	}

	return img
}

// Port returns the declaration of the named device.
func (img *Image) Port(name string) (MMIO, bool) {
	for _, m := range img.MMIO {
		if m.Name == name {
			return m, true
		}
	}
	return MMIO{}, false
}

// Load adds data to the region containing the address. Data that falls
// outside of the region is divided and added to the following regions.
// Returns false if any of the data could not be placed.
func (img *Image) Load(address uint16, data []byte) bool {
	for len(data) > 0 {
		i := img.region(address)
		if i < 0 {
			return false
		}
		r := &img.Regions[i]

		n := min(len(data), int(r.MaxOffset)-int(address)+1)
		r.Segments = append(r.Segments, Segment{Address: address, Data: data[:n]})
		data = data[n:]

		if address+uint16(n) < address {
			return len(data) == 0
		}
		address += uint16(n)
	}
	return true
}

func (img *Image) region(address uint16) int {
	for i := range img.Regions {
		if img.Regions[i].Contains(address) {
			return i
		}
	}
	return -1
}

// Buffer adds data to be read from the named input port.
func (img *Image) Buffer(port string, data []byte) {
	img.Buffers = append(img.Buffers, Buffer{Port: port, Data: data})
}

// SetBootFlagAddress sets the location of the boot flags word.
func (img *Image) SetBootFlagAddress(address uint16) {
	img.BootFlagAddress = address
	img.HasBootFlags = true
}
