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

// Package device defines the identity of every stateful component in the
// simulated machine. Every target that can appear in a trace has a Descriptor
// with a unique ID.
package device

import (
	"fmt"
	"sort"

	"github.com/pepsim/pepsim/curated"
)

// ID uniquely identifies a device in a System. Only the low nine bits are
// significant.
type ID uint16

// MaxDevices is the maximum number of devices in a system.
const MaxDevices = 512

// Sentinel error patterns.
const (
	TooManyDevices  = "device: too many devices (max %d)"
	DuplicateDevice = "device: duplicate device id (%d)"
)

// Descriptor names a device. FullName is the path of the device in the
// system hierarchy, for example "/bus/dense0".
type Descriptor struct {
	ID       ID
	BaseName string
	FullName string
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s (%d)", d.FullName, d.ID)
}

// IDGenerator implementations issue device IDs. IDs are never reused.
type IDGenerator interface {
	NextID() ID
}

// Counter is a simple implementation of IDGenerator.
type Counter struct {
	next ID
}

// NextID implements the IDGenerator interface. Panics if more than
// MaxDevices IDs are requested.
func (c *Counter) NextID() ID {
	if c.next >= MaxDevices {
		panic(curated.Errorf(TooManyDevices, MaxDevices))
	}
	id := c.next
	c.next++
	return id
}

// Peek returns the ID that will be issued by the next call to NextID().
func (c *Counter) Peek() ID {
	return c.next
}

// Table is a lookup table of devices by ID.
type Table struct {
	descriptors map[ID]Descriptor
}

// NewTable is the preferred method of initialisation for the Table type.
func NewTable() *Table {
	return &Table{
		descriptors: make(map[ID]Descriptor),
	}
}

// Add a device to the table.
func (t *Table) Add(d Descriptor) error {
	if _, ok := t.descriptors[d.ID]; ok {
		return curated.Errorf(DuplicateDevice, d.ID)
	}
	t.descriptors[d.ID] = d
	return nil
}

// Lookup returns the descriptor with the specified ID.
func (t *Table) Lookup(id ID) (Descriptor, bool) {
	d, ok := t.descriptors[id]
	return d, ok
}

// LookupName returns the descriptor with the specified full name.
func (t *Table) LookupName(fullName string) (Descriptor, bool) {
	for _, d := range t.descriptors {
		if d.FullName == fullName {
			return d, true
		}
	}
	return Descriptor{}, false
}

// All returns every descriptor in the table, ordered by ID.
func (t *Table) All() []Descriptor {
	all := make([]Descriptor, 0, len(t.descriptors))
	for _, d := range t.descriptors {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID < all[j].ID
	})
	return all
}
