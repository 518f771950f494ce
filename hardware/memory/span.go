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

package memory

import "fmt"

// AddressSpan is an inclusive range of addresses.
type AddressSpan struct {
	MinOffset uint16
	MaxOffset uint16
}

// SpanOfSize returns an AddressSpan beginning at zero covering size bytes.
// The size must be between 1 and 65536.
func SpanOfSize(size int) AddressSpan {
	return AddressSpan{MinOffset: 0, MaxOffset: uint16(size - 1)}
}

func (s AddressSpan) String() string {
	return fmt.Sprintf("%#04x-%#04x", s.MinOffset, s.MaxOffset)
}

// Contains returns true if address is inside the span.
func (s AddressSpan) Contains(address uint16) bool {
	return address >= s.MinOffset && address <= s.MaxOffset
}

// Size returns the number of addresses in the span.
func (s AddressSpan) Size() int {
	return int(s.MaxOffset) - int(s.MinOffset) + 1
}

// inBounds returns true if length bytes starting at address all fall inside
// the span.
func (s AddressSpan) inBounds(address uint16, length int) bool {
	return s.Contains(address) && int(address)+length-1 <= int(s.MaxOffset)
}

// OperationType distinguishes accesses made by the running program from
// accesses made by the simulator.
type OperationType int

// List of valid OperationType values.
const (
	Application OperationType = iota
	BufferInternal
)

// OperationKind distinguishes instruction fetches from data accesses.
type OperationKind int

// List of valid OperationKind values.
const (
	Data OperationKind = iota
	Instruction
)

// Operation describes a memory access.
type Operation struct {
	Type OperationType
	Kind OperationKind
}

// Commonly used Operation values.
var (
	AppData        = Operation{Type: Application, Kind: Data}
	AppInstruction = Operation{Type: Application, Kind: Instruction}
	Internal       = Operation{Type: BufferInternal, Kind: Data}
)

func (op Operation) String() string {
	t := "app"
	if op.Type == BufferInternal {
		t = "internal"
	}
	if op.Kind == Instruction {
		return t + "/instruction"
	}
	return t + "/data"
}

// Traced returns true if accesses with the Operation should be recorded.
func (op Operation) Traced() bool {
	return op.Type == Application
}
