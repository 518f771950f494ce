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

package cpu_test

import (
	"testing"

	"github.com/pepsim/pepsim/hardware/cpu"
	"github.com/pepsim/pepsim/hardware/cpu/isa"
	"github.com/pepsim/pepsim/hardware/device"
	"github.com/pepsim/pepsim/hardware/memory"
	"github.com/pepsim/pepsim/hardware/memory/mmio"
	"github.com/pepsim/pepsim/hardware/tick"
	"github.com/pepsim/pepsim/test"
	"github.com/pepsim/pepsim/trace"
)

type machine struct {
	t   *testing.T
	ids device.Counter
	mc  *cpu.CPU
	ram *memory.Dense
	bus *memory.Bus
}

func newMachine(t *testing.T, arch isa.Architecture) *machine {
	t.Helper()
	m := &machine{t: t}
	m.mc = cpu.NewCPU(arch, device.Descriptor{ID: m.ids.NextID(), BaseName: "cpu", FullName: "cpu"}, &m.ids)
	m.bus = memory.NewBus(device.Descriptor{ID: m.ids.NextID(), BaseName: "bus", FullName: "bus"}, memory.SpanOfSize(0x10000))
	m.ram = memory.NewDense(device.Descriptor{ID: m.ids.NextID(), BaseName: "dense", FullName: "dense0"}, 0x10000)
	m.bus.PushFrontTarget(memory.SpanOfSize(0x10000), m.ram)
	m.mc.SetTarget(m.bus)
	return m
}

// assemble a single instruction at address and return the address of the
// following instruction
func (m *machine) asm(address uint16, op isa.Operator, mode isa.AddressingMode, os uint16) uint16 {
	m.t.Helper()
	is, ok := m.mc.ISA().Encode(op, mode)
	test.DemandSuccess(m.t, ok)
	m.poke(address, is)
	if m.mc.ISA().Lookup(is).Unary() {
		return address + 1
	}
	m.poke(address+1, uint8(os>>8), uint8(os))
	return address + 3
}

func (m *machine) poke(address uint16, v ...uint8) {
	m.ram.Write(address, v, memory.Internal)
}

func (m *machine) peek16(address uint16) uint16 {
	v, _ := memory.ReadUint16(m.ram, address, memory.Internal)
	return v
}

func (m *machine) clock() tick.Result {
	return m.mc.Clock(0)
}

func (m *machine) flags(n, z, v, c bool) {
	m.t.Helper()
	test.ExpectEquality(m.t, m.mc.Flag(isa.N), n, "N")
	test.ExpectEquality(m.t, m.mc.Flag(isa.Z), z, "Z")
	test.ExpectEquality(m.t, m.mc.Flag(isa.V), v, "V")
	test.ExpectEquality(m.t, m.mc.Flag(isa.C), c, "C")
}

func TestLoadStore(t *testing.T) {
	m := newMachine(t, isa.Pep10)
	a := m.asm(0, isa.Ldwa, isa.Immediate, 0x8234)
	a = m.asm(a, isa.Stwa, isa.Direct, 0x0100)
	a = m.asm(a, isa.Ldba, isa.Direct, 0x0100)
	m.asm(a, isa.Stba, isa.Direct, 0x0200)

	test.ExpectEquality(t, m.clock().Error, tick.Success)
	test.ExpectEquality(t, m.mc.Register(isa.A), 0x8234)
	test.ExpectEquality(t, m.mc.Register(isa.PC), 3)
	test.ExpectEquality(t, m.mc.Register(isa.OS), 0x8234)
	m.flags(true, false, false, false)

	m.clock()
	test.ExpectEquality(t, m.peek16(0x0100), 0x8234)

	// Pep/10 clears the high byte
	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.A), 0x0082)
	m.flags(false, false, false, false)

	m.clock()
	test.ExpectEquality(t, m.peek16(0x0200), 0x8200)
	test.ExpectEquality(t, m.mc.Register(isa.PC), 12)
}

func TestLoadBytePep9(t *testing.T) {
	m := newMachine(t, isa.Pep9)
	m.mc.SetRegister(isa.A, 0xab00)
	m.asm(0, isa.Ldba, isa.Immediate, 0x1200)
	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.A), 0xab00)
	m.flags(false, true, false, false)
}

func TestAddressingModes(t *testing.T) {
	m := newMachine(t, isa.Pep10)
	m.mc.SetRegister(isa.SP, 0x1000)
	m.mc.SetRegister(isa.X, 0x0004)

	// value at the target of each mode
	m.poke(0x0020, 0x00, 0x30)
	m.poke(0x0030, 0x11, 0x11)
	m.poke(0x1010, 0x00, 0x40)
	m.poke(0x0040, 0x33, 0x33)
	m.poke(0x0044, 0x44, 0x44)
	m.poke(0x0024, 0x55, 0x55)
	m.poke(0x1014, 0x66, 0x66)

	tests := []struct {
		mode isa.AddressingMode
		os   uint16
		v    uint16
	}{
		{isa.Immediate, 0x1234, 0x1234},
		{isa.Direct, 0x0030, 0x1111},
		{isa.Indirect, 0x0020, 0x1111},
		{isa.StackRelative, 0x0014, 0x6666},
		{isa.StackRelativeDeferred, 0x0010, 0x3333},
		{isa.Indexed, 0x0020, 0x5555},
		{isa.StackIndexed, 0x0010, 0x6666},
		{isa.StackDeferredIndexed, 0x0010, 0x4444},
	}

	for _, tt := range tests {
		m.mc.SetRegister(isa.PC, 0x0100)
		m.asm(0x0100, isa.Ldwa, tt.mode, tt.os)
		test.ExpectEquality(t, m.clock().Error, tick.Success, tt.mode)
		test.ExpectEquality(t, m.mc.Register(isa.A), tt.v, tt.mode)
	}
}

func TestArithmeticShiftLeft(t *testing.T) {
	tests := []struct {
		a          uint16
		r          uint16
		n, z, v, c bool
	}{
		{0x0001, 0x0002, false, false, false, false},
		{0x4000, 0x8000, true, false, true, false},
		{0x8000, 0x0000, false, true, true, true},
		{0xc000, 0x8000, true, false, false, true},
	}

	for _, tt := range tests {
		m := newMachine(t, isa.Pep10)
		m.asm(0, isa.Asla, isa.Implied, 0)
		m.mc.SetRegister(isa.A, tt.a)
		m.clock()
		test.ExpectEquality(t, m.mc.Register(isa.A), tt.r)
		m.flags(tt.n, tt.z, tt.v, tt.c)
		test.ExpectEquality(t, m.mc.Register(isa.PC), 1)
	}
}

func TestShiftsAndRotates(t *testing.T) {
	m := newMachine(t, isa.Pep10)
	a := m.asm(0, isa.Asra, isa.Implied, 0)
	a = m.asm(a, isa.Rola, isa.Implied, 0)
	m.asm(a, isa.Rora, isa.Implied, 0)

	m.mc.SetRegister(isa.A, 0x8001)
	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.A), 0xc000)
	m.flags(true, false, false, true)

	// carry rotates in at the bottom
	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.A), 0x8001)
	test.ExpectEquality(t, m.mc.Flag(isa.C), true)

	// and out of the bottom
	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.A), 0xc000)
	test.ExpectEquality(t, m.mc.Flag(isa.C), true)
}

func TestArithmeticFlags(t *testing.T) {
	tests := []struct {
		op         isa.Operator
		a, b       uint16
		r          uint16
		n, z, v, c bool
	}{
		{isa.Adda, 0x7fff, 0x0001, 0x8000, true, false, true, false},
		{isa.Adda, 0xffff, 0x0001, 0x0000, false, true, false, true},
		{isa.Suba, 0x0000, 0x0001, 0xffff, true, false, false, false},
		{isa.Suba, 0x0001, 0x0001, 0x0000, false, true, false, true},
		{isa.Suba, 0x8000, 0x0001, 0x7fff, false, false, true, true},
		{isa.Anda, 0xff0f, 0x00f0, 0x0000, false, true, false, false},
		{isa.Ora, 0x8000, 0x0001, 0x8001, true, false, false, false},
		{isa.Xora, 0xffff, 0x00ff, 0xff00, true, false, false, false},
	}

	for _, tt := range tests {
		m := newMachine(t, isa.Pep10)
		m.asm(0, tt.op, isa.Immediate, tt.b)
		m.mc.SetRegister(isa.A, tt.a)
		m.clock()
		test.ExpectEquality(t, m.mc.Register(isa.A), tt.r, tt.op)
		m.flags(tt.n, tt.z, tt.v, tt.c)
	}
}

func TestCompare(t *testing.T) {
	m := newMachine(t, isa.Pep10)
	m.asm(0, isa.Cpwa, isa.Immediate, 0x0001)
	m.mc.SetRegister(isa.A, 0x8000)
	m.clock()

	// register is unchanged and N is corrected for overflow
	test.ExpectEquality(t, m.mc.Register(isa.A), 0x8000)
	m.flags(true, false, true, true)

	m = newMachine(t, isa.Pep10)
	m.asm(0, isa.Cpba, isa.Immediate, 0x0041)
	m.mc.SetRegister(isa.A, 0x1241)
	m.clock()
	m.flags(false, true, false, false)
}

func TestNegateAndNot(t *testing.T) {
	m := newMachine(t, isa.Pep10)
	a := m.asm(0, isa.Nega, isa.Implied, 0)
	m.asm(a, isa.Notx, isa.Implied, 0)
	m.mc.SetRegister(isa.A, 0x8000)
	m.mc.SetRegister(isa.X, 0xffff)

	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.A), 0x8000)
	m.flags(true, false, true, false)

	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.X), 0x0000)
	test.ExpectEquality(t, m.mc.Flag(isa.Z), true)
}

func TestFlagsToAccumulator(t *testing.T) {
	m := newMachine(t, isa.Pep10)
	a := m.asm(0, isa.Movflga, isa.Implied, 0)
	m.asm(a, isa.Movaflg, isa.Implied, 0)
	m.mc.SetRegister(isa.A, 0x1200)
	m.mc.SetFlag(isa.N, true)
	m.mc.SetFlag(isa.C, true)

	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.A), 0x1209)

	m.mc.SetRegister(isa.A, 0x0006)
	m.clock()
	m.flags(false, true, true, false)
}

func TestStackPointer(t *testing.T) {
	m := newMachine(t, isa.Pep10)
	a := m.asm(0, isa.Subsp, isa.Immediate, 4)
	a = m.asm(a, isa.Movspa, isa.Implied, 0)
	m.asm(a, isa.Addsp, isa.Immediate, 6)
	m.mc.SetRegister(isa.SP, 0x1000)

	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.SP), 0x0ffc)
	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.A), 0x0ffc)
	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.SP), 0x1002)
	m.flags(false, false, false, false)
}

func TestBranches(t *testing.T) {
	tests := []struct {
		op    isa.Operator
		n, z  bool
		taken bool
	}{
		{isa.Br, false, false, true},
		{isa.Breq, false, true, true},
		{isa.Breq, false, false, false},
		{isa.Brne, false, false, true},
		{isa.Brlt, true, false, true},
		{isa.Brle, false, true, true},
		{isa.Brge, true, false, false},
		{isa.Brgt, false, true, false},
		{isa.Brgt, false, false, true},
	}

	for _, tt := range tests {
		m := newMachine(t, isa.Pep10)
		m.asm(0, tt.op, isa.Immediate, 0x0050)
		m.mc.SetFlag(isa.N, tt.n)
		m.mc.SetFlag(isa.Z, tt.z)
		m.clock()
		if tt.taken {
			test.ExpectEquality(t, m.mc.Register(isa.PC), 0x0050, tt.op)
		} else {
			test.ExpectEquality(t, m.mc.Register(isa.PC), 3, tt.op)
		}
	}

	// indexed branches go through a jump table
	m := newMachine(t, isa.Pep10)
	m.asm(0, isa.Br, isa.Indexed, 0x0040)
	m.poke(0x0042, 0x12, 0x34)
	m.mc.SetRegister(isa.X, 2)
	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.PC), 0x1234)
}

func TestCallAndReturn(t *testing.T) {
	m := newMachine(t, isa.Pep10)
	m.mc.SetRegister(isa.PC, 0x1122)
	m.mc.SetRegister(isa.SP, 0xffff)
	m.asm(0x1122, isa.Call, isa.Immediate, 0x2000)
	m.asm(0x2000, isa.Ret, isa.Implied, 0)

	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.PC), 0x2000)
	test.ExpectEquality(t, m.mc.Register(isa.SP), 0xfffd)
	test.ExpectEquality(t, m.peek16(0xfffd), 0x1125)

	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.PC), 0x1125)
	test.ExpectEquality(t, m.mc.Register(isa.SP), 0xffff)
}

func TestTrap(t *testing.T) {
	m := newMachine(t, isa.Pep10)
	ssp, _ := m.mc.ISA().Vector(isa.SystemStackPtr)
	th, _ := m.mc.ISA().Vector(isa.TrapHandler)
	m.poke(ssp, 0x80, 0x00)
	m.poke(th, 0x90, 0x00)

	m.asm(0, isa.Scall, isa.Immediate, 0x0005)
	m.asm(0x9000, isa.Sret, isa.Implied, 0)
	m.mc.SetRegister(isa.A, 0x1111)
	m.mc.SetRegister(isa.X, 0x2222)
	m.mc.SetRegister(isa.SP, 0x7000)
	m.mc.SetFlag(isa.N, true)

	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.PC), 0x9000)
	test.ExpectEquality(t, m.mc.Register(isa.SP), 0x7ff6)

	is, _ := m.mc.ISA().Encode(isa.Scall, isa.Immediate)
	v, _ := memory.ReadUint8(m.ram, 0x7fff, memory.Internal)
	test.ExpectEquality(t, v, is)
	test.ExpectEquality(t, m.peek16(0x7ffd), 0x7000)
	test.ExpectEquality(t, m.peek16(0x7ffb), 0x0003)
	test.ExpectEquality(t, m.peek16(0x7ff9), 0x2222)
	test.ExpectEquality(t, m.peek16(0x7ff7), 0x1111)
	v, _ = memory.ReadUint8(m.ram, 0x7ff6, memory.Internal)
	test.ExpectEquality(t, v, 0x08)

	m.mc.SetRegister(isa.A, 0)
	m.mc.SetRegister(isa.X, 0)
	m.mc.SetFlag(isa.N, false)

	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.PC), 0x0003)
	test.ExpectEquality(t, m.mc.Register(isa.SP), 0x7000)
	test.ExpectEquality(t, m.mc.Register(isa.A), 0x1111)
	test.ExpectEquality(t, m.mc.Register(isa.X), 0x2222)
	test.ExpectEquality(t, m.mc.Flag(isa.N), true)
}

func TestIllegalOpcode(t *testing.T) {
	m := newMachine(t, isa.Pep10)

	var illegal uint8
	for i := range 256 {
		if !m.mc.ISA().Lookup(uint8(i)).Legal() {
			illegal = uint8(i)
			break
		}
	}
	m.poke(0, illegal)

	test.ExpectEquality(t, m.clock().Error, tick.Terminate)
	test.ExpectEquality(t, m.mc.Status(), cpu.IllegalOpcode)
	test.ExpectEquality(t, m.mc.Register(isa.PC), 0)

	// the CPU will not run until it has been reset
	m.asm(0, isa.Nop, isa.Implied, 0)
	test.ExpectEquality(t, m.clock().Error, tick.Terminate)
	m.mc.Reset()
	test.ExpectEquality(t, m.clock().Error, tick.Success)
}

func TestMemoryFault(t *testing.T) {
	m := newMachine(t, isa.Pep10)
	bus := memory.NewBus(device.Descriptor{ID: m.ids.NextID(), BaseName: "bus"}, memory.SpanOfSize(0x10000))
	bus.PushFrontTarget(memory.AddressSpan{MinOffset: 0, MaxOffset: 0x00ff}, m.ram)
	m.mc.SetTarget(bus)
	m.asm(0, isa.Ldwa, isa.Direct, 0x8000)

	test.ExpectEquality(t, m.clock().Error, tick.Terminate)
	test.ExpectEquality(t, m.mc.Status(), cpu.MemoryFault)
}

func TestNeedsInput(t *testing.T) {
	m := newMachine(t, isa.Pep10)
	in := mmio.NewInput(device.Descriptor{ID: m.ids.NextID(), BaseName: "charIn"}, memory.SpanOfSize(1), memory.RaiseError)
	m.bus.PushFrontTarget(memory.AddressSpan{MinOffset: 0xfff0, MaxOffset: 0xfff0}, in)
	m.asm(0, isa.Ldba, isa.Direct, 0xfff0)

	test.ExpectEquality(t, m.clock().Error, tick.NoMMInput)
	test.ExpectEquality(t, m.mc.Register(isa.PC), 0)
	test.ExpectEquality(t, m.mc.Status(), cpu.Ok)

	in.Endpoint().AppendValue('x')
	test.ExpectEquality(t, m.clock().Error, tick.Success)
	test.ExpectEquality(t, m.mc.Register(isa.A), 'x')
	test.ExpectEquality(t, m.mc.Register(isa.PC), 3)
}

func TestStop(t *testing.T) {
	m := newMachine(t, isa.Pep9)
	pwrOff := mmio.NewOutput(device.Descriptor{ID: m.ids.NextID(), BaseName: "pwrOff"}, memory.SpanOfSize(1))
	m.mc.SetPwrOff(pwrOff)
	m.asm(0, isa.Stop, isa.Implied, 0)

	r := m.clock()
	test.ExpectSuccess(t, r.Pause)
	test.ExpectEquality(t, pwrOff.Endpoint().Len(), 1)

	// without a power off port the CPU halts by itself
	m = newMachine(t, isa.Pep9)
	m.asm(0, isa.Stop, isa.Implied, 0)
	r = m.clock()
	test.ExpectSuccess(t, r.Pause)
	test.ExpectEquality(t, m.mc.Status(), cpu.Halted)
	test.ExpectEquality(t, m.clock().Error, tick.Terminate)
}

func TestBreakOnPC(t *testing.T) {
	m := newMachine(t, isa.Pep10)
	tb := trace.NewBuffer()
	m.mc.SetBuffer(tb)

	regs := m.mc.Regs()
	tb.AddFilter(trace.NewValueFilter[uint16](regs.Descriptor().ID, regs, isa.PC.Offset(), 0x0002))

	a := m.asm(0, isa.Nop, isa.Implied, 0)
	a = m.asm(a, isa.Nop, isa.Implied, 0)
	m.asm(a, isa.Nop, isa.Implied, 0)

	tb.EmitFrameStart()
	test.ExpectFailure(t, m.clock().Pause)
	tb.EmitFrameStart()
	test.ExpectSuccess(t, m.clock().Pause)
	test.ExpectEquality(t, m.mc.Register(isa.PC), 2)
	test.ExpectEquality(t, len(tb.Events()), 1)
}

func TestUndoInstruction(t *testing.T) {
	m := newMachine(t, isa.Pep10)
	tb := trace.NewBuffer()
	for _, d := range []device.ID{m.mc.Regs().Descriptor().ID, m.mc.CSRs().Descriptor().ID, m.ram.Descriptor().ID} {
		tb.Trace(d, true)
	}
	m.mc.SetBuffer(tb)
	m.ram.SetBuffer(tb)

	m.mc.SetRegister(isa.SP, 0x1000)
	m.asm(0, isa.Call, isa.Immediate, 0x0040)

	tb.EmitFrameStart()
	m.clock()
	test.ExpectEquality(t, m.mc.Register(isa.PC), 0x0040)

	lookup := func(id device.ID) (trace.Replayer, bool) {
		switch id {
		case m.mc.Regs().Descriptor().ID:
			return m.mc.Regs(), true
		case m.mc.CSRs().Descriptor().ID:
			return m.mc.CSRs(), true
		case m.ram.Descriptor().ID:
			return m.ram, true
		}
		return nil, false
	}

	err := tb.ReplayTick(tb.LastTick(), trace.Backward, lookup)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, m.mc.Register(isa.PC), 0)
	test.ExpectEquality(t, m.mc.Register(isa.SP), 0x1000)
	test.ExpectEquality(t, m.peek16(0x0ffe), 0)
}
