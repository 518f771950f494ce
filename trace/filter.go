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

package trace

import (
	"fmt"
	"slices"

	"github.com/pepsim/pepsim/bits"
	"github.com/pepsim/pepsim/hardware/device"
)

// Action is the result of applying a Filter to an access. Higher values
// take precedence when more than one filter is installed.
type Action int

// List of valid Action values.
const (
	// the access is not of interest
	None Action = iota

	// the access should be recorded in the trace
	Record

	// the access should be recorded and execution should pause
	Break

	// the access should be recorded and is reported as a failed assertion
	Assert
)

func (a Action) String() string {
	switch a {
	case None:
		return "none"
	case Record:
		return "record"
	case Break:
		return "break"
	case Assert:
		return "assert"
	}
	return "unknown action"
}

// Filter implementations decide what happens to an access of length bytes at
// address in the device.
type Filter interface {
	Apply(dev device.ID, address uint32, length int) Action
}

// FilterEvent is created whenever a filter returns Break or Assert.
type FilterEvent struct {
	Handle  uint16
	Device  device.ID
	Address uint32
	Action  Action
}

func (e FilterEvent) String() string {
	return fmt.Sprintf("%s: filter %d device=%d address=%#04x", e.Action, e.Handle, e.Device, e.Address)
}

// TraceFilter records every access to the devices in its set.
type TraceFilter struct {
	devices []device.ID
}

// Insert a device into the set.
func (f *TraceFilter) Insert(dev device.ID) {
	i, ok := slices.BinarySearch(f.devices, dev)
	if !ok {
		f.devices = slices.Insert(f.devices, i, dev)
	}
}

// Remove a device from the set.
func (f *TraceFilter) Remove(dev device.ID) {
	i, ok := slices.BinarySearch(f.devices, dev)
	if ok {
		f.devices = slices.Delete(f.devices, i, i+1)
	}
}

// Contains returns true if the device is in the set.
func (f *TraceFilter) Contains(dev device.ID) bool {
	_, ok := slices.BinarySearch(f.devices, dev)
	return ok
}

// Devices returns a copy of the set, in ascending order.
func (f *TraceFilter) Devices() []device.ID {
	return slices.Clone(f.devices)
}

// Apply implements the Filter interface.
func (f *TraceFilter) Apply(dev device.ID, _ uint32, _ int) Action {
	if f.Contains(dev) {
		return Record
	}
	return None
}

// Peeker is implemented by targets that can be read without side effects.
// The address is local to the target.
type Peeker interface {
	Peek(address uint16, dest []byte) bool
}

// ValueFilter breaks when an access to the device overlaps the watched
// address and the value now at the address is one of the watched values. If
// there are no watched values then any access to the address breaks.
//
// The value is read big-endian and is one or two bytes wide depending on the
// type parameter.
type ValueFilter[T uint8 | uint16] struct {
	Device  device.ID
	Address uint16
	Values  []T

	target Peeker
}

// NewValueFilter is the preferred method of initialisation for the
// ValueFilter type.
func NewValueFilter[T uint8 | uint16](dev device.ID, target Peeker, address uint16, values ...T) *ValueFilter[T] {
	return &ValueFilter[T]{
		Device:  dev,
		Address: address,
		Values:  values,
		target:  target,
	}
}

func (f *ValueFilter[T]) width() int {
	var v T
	switch any(v).(type) {
	case uint8:
		return 1
	}
	return 2
}

// Apply implements the Filter interface.
func (f *ValueFilter[T]) Apply(dev device.ID, address uint32, length int) Action {
	if dev != f.Device {
		return None
	}

	w := f.width()
	lo := uint32(f.Address)
	hi := lo + uint32(w)
	if address >= hi || address+uint32(max(length, 1)) <= lo {
		return None
	}

	if len(f.Values) == 0 {
		return Break
	}

	b := make([]byte, w)
	if !f.target.Peek(f.Address, b) {
		return None
	}
	v := T(bits.Uint16(b, bits.BigEndian))

	if slices.Contains(f.Values, v) {
		return Break
	}
	return None
}
