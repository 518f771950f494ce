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

package cpu

import (
	"fmt"
	"strings"

	"github.com/pepsim/pepsim/bits"
	"github.com/pepsim/pepsim/hardware/cpu/isa"
	"github.com/pepsim/pepsim/hardware/device"
	"github.com/pepsim/pepsim/hardware/memory"
	"github.com/pepsim/pepsim/hardware/tick"
	"github.com/pepsim/pepsim/trace"
)

// Status of the CPU. Any status other than Ok prevents the CPU from running.
type Status int

// List of valid Status values.
const (
	Ok Status = iota
	Halted
	IllegalOpcode
	MemoryFault
)

func (s Status) String() string {
	switch s {
	case Ok:
		return "ok"
	case Halted:
		return "halted"
	case IllegalOpcode:
		return "illegal opcode"
	case MemoryFault:
		return "memory fault"
	}
	return "unknown status"
}

// CPU implements the Pep/9 and Pep/10 processors.
type CPU struct {
	desc device.Descriptor
	isa  *isa.ISA

	regs *memory.Dense
	csrs *memory.Dense

	// the memory the CPU executes from
	bus memory.Target

	// the power off port. the STOP instruction writes to it
	pwrOff memory.Target

	source tick.Source
	tb     *trace.Buffer
	status Status

	startingPC uint16

	// the combined result of the memory accesses made by the current
	// instruction
	result memory.Result

	// the current instruction has changed the PC
	redirected bool
}

// NewCPU is the preferred method of initialisation for the CPU type. The
// register file and the CSR file are given IDs by the generator.
func NewCPU(arch isa.Architecture, desc device.Descriptor, ids device.IDGenerator) *CPU {
	mc := &CPU{
		desc: desc,
		isa:  isa.New(arch),
	}

	mc.regs = memory.NewDense(device.Descriptor{
		ID:       ids.NextID(),
		BaseName: "regs",
		FullName: desc.FullName + "/regs",
	}, int(isa.NumRegisters)*2)

	mc.csrs = memory.NewDense(device.Descriptor{
		ID:       ids.NextID(),
		BaseName: "csrs",
		FullName: desc.FullName + "/csrs",
	}, int(isa.NumCSRs))

	return mc
}

func (mc *CPU) String() string {
	s := strings.Builder{}
	for r := isa.A; r < isa.NumRegisters; r++ {
		s.WriteString(fmt.Sprintf("%s=%04x ", r, mc.Register(r)))
	}
	for c := isa.N; c < isa.NumCSRs; c++ {
		if mc.Flag(c) {
			s.WriteString(c.String())
		} else {
			s.WriteString(strings.ToLower(c.String()))
		}
	}
	return s.String()
}

// Descriptor implements the memory.Device interface.
func (mc *CPU) Descriptor() device.Descriptor {
	return mc.desc
}

// ID implements the tick.Recipient interface.
func (mc *CPU) ID() device.ID {
	return mc.desc.ID
}

// ISA returns the instruction set the CPU is executing.
func (mc *CPU) ISA() *isa.ISA {
	return mc.isa
}

// Regs returns the register file.
func (mc *CPU) Regs() *memory.Dense {
	return mc.regs
}

// CSRs returns the CSR file.
func (mc *CPU) CSRs() *memory.Dense {
	return mc.csrs
}

// SetTarget sets the memory the CPU executes from.
func (mc *CPU) SetTarget(bus memory.Target) {
	mc.bus = bus
}

// SetPwrOff sets the target written to by the STOP instruction.
func (mc *CPU) SetPwrOff(pwrOff memory.Target) {
	mc.pwrOff = pwrOff
}

// SetBuffer implements the memory.Traced interface.
func (mc *CPU) SetBuffer(tb *trace.Buffer) {
	mc.tb = tb
	mc.regs.SetBuffer(tb)
	mc.csrs.SetBuffer(tb)
}

// Source implements the tick.Recipient interface.
func (mc *CPU) Source() tick.Source {
	return mc.source
}

// SetSource implements the tick.Recipient interface.
func (mc *CPU) SetSource(src tick.Source) {
	mc.source = src
}

// Status returns the status of the CPU.
func (mc *CPU) Status() Status {
	return mc.status
}

// SetStatus changes the status of the CPU.
func (mc *CPU) SetStatus(s Status) {
	mc.status = s
}

// Reset clears the registers and flags and sets the status to Ok.
func (mc *CPU) Reset() {
	mc.regs.Clear(0)
	mc.csrs.Clear(0)
	mc.status = Ok
}

// StartingPC returns the value of the PC recorded by UpdateStartingPC().
func (mc *CPU) StartingPC() uint16 {
	return mc.startingPC
}

// UpdateStartingPC records the current value of the PC.
func (mc *CPU) UpdateStartingPC() {
	mc.startingPC = mc.Register(isa.PC)
}

// Register returns the value of a register.
func (mc *CPU) Register(r isa.Register) uint16 {
	v, _ := memory.ReadUint16(mc.regs, r.Offset(), memory.Internal)
	return v
}

// SetRegister changes the value of a register. The change is not recorded
// in the trace.
func (mc *CPU) SetRegister(r isa.Register, v uint16) {
	memory.WriteUint16(mc.regs, r.Offset(), v, memory.Internal)
}

// Flag returns the value of a status flag.
func (mc *CPU) Flag(c isa.CSR) bool {
	v, _ := memory.ReadUint8(mc.csrs, uint16(c), memory.Internal)
	return v != 0
}

// SetFlag changes the value of a status flag. The change is not recorded in
// the trace.
func (mc *CPU) SetFlag(c isa.CSR, v bool) {
	memory.WriteUint8(mc.csrs, uint16(c), boolToUint8(v), memory.Internal)
}

// Flags returns the status flags packed into the low nibble of a byte, in
// the order NZVC.
func (mc *CPU) Flags() uint8 {
	var f uint8
	for c := isa.N; c < isa.NumCSRs; c++ {
		f <<= 1
		f |= boolToUint8(mc.Flag(c))
	}
	return f
}

func boolToUint8(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func boolToUint16(v bool) uint16 {
	if v {
		return 1
	}
	return 0
}

// big-endian representation of a word. used for the PC increment
func word(v uint16) []byte {
	var b [2]byte
	bits.PutUint16(b[:], v, bits.BigEndian)
	return b[:]
}
