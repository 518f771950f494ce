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
	"github.com/pepsim/pepsim/hardware/cpu/isa"
	"github.com/pepsim/pepsim/hardware/memory"
	"github.com/pepsim/pepsim/hardware/tick"
	"github.com/pepsim/pepsim/logger"
)

// Clock implements the tick.Recipient interface. It executes one
// instruction.
func (mc *CPU) Clock(current tick.Type) tick.Result {
	res := tick.Result{
		TickDelay: true,
		Delay:     1,
	}

	if mc.status != Ok || mc.bus == nil {
		res.Error = tick.Terminate
		return res
	}

	g := mc.tb.PushPath(uint16(mc.desc.ID))
	defer g.Pop()

	mc.result = memory.Completed
	mc.redirected = false

	pc := mc.Register(isa.PC)

	is, ok := mc.read8(pc, memory.AppInstruction)
	if ok {
		ok = mc.setRegister(isa.IS, uint16(is))
	}
	if !ok {
		return mc.tickResult(res)
	}

	defn := mc.isa.Lookup(is)
	if !defn.Legal() {
		mc.status = IllegalOpcode
		logger.Logf(logger.Allow, "cpu", "illegal instruction %#02x at %#04x", is, pc)
		res.Error = tick.Terminate
		return res
	}

	var os uint16
	if !defn.Unary() {
		os, ok = mc.read16(pc+1, memory.AppInstruction)
		if ok {
			ok = mc.setRegister(isa.OS, os)
		}
		if !ok {
			return mc.tickResult(res)
		}
	}

	mc.execute(defn, is, os, pc+uint16(defn.Bytes))

	if mc.result.Completed && !mc.redirected {
		mc.check(mc.regs.Increment(isa.PC.Offset(), word(uint16(defn.Bytes)), memory.AppData))
	}

	return mc.tickResult(res)
}

// translate the accumulated memory result into a tick result
func (mc *CPU) tickResult(res tick.Result) tick.Result {
	res.Pause = mc.result.Pause
	if mc.result.Completed {
		return res
	}

	switch mc.result.Error {
	case memory.NeedsMMI:
		res.Error = tick.NoMMInput
	default:
		mc.status = MemoryFault
		logger.Logf(logger.Allow, "cpu", "%s at %#04x", mc.result.Error, mc.Register(isa.PC))
		res.Error = tick.Terminate
	}

	return res
}

// check adds the result of a memory access to the accumulated result of the
// instruction. Returns false if execution of the instruction should stop.
func (mc *CPU) check(r memory.Result) bool {
	if r.Error == memory.WriteToRO {
		logger.Logf(logger.Allow, "cpu", "write to read-only memory ignored at %#04x", mc.Register(isa.PC))
		return true
	}
	mc.result = mc.result.Merge(r)
	return mc.result.Completed
}

func (mc *CPU) read8(address uint16, op memory.Operation) (uint8, bool) {
	v, r := memory.ReadUint8(mc.bus, address, op)
	return v, mc.check(r)
}

func (mc *CPU) read16(address uint16, op memory.Operation) (uint16, bool) {
	v, r := memory.ReadUint16(mc.bus, address, op)
	return v, mc.check(r)
}

func (mc *CPU) write8(address uint16, v uint8) bool {
	return mc.check(memory.WriteUint8(mc.bus, address, v, memory.AppData))
}

func (mc *CPU) write16(address uint16, v uint16) bool {
	return mc.check(memory.WriteUint16(mc.bus, address, v, memory.AppData))
}

func (mc *CPU) setRegister(r isa.Register, v uint16) bool {
	return mc.check(memory.WriteUint16(mc.regs, r.Offset(), v, memory.AppData))
}

// setFlags writes consecutive flags, starting with the first flag named.
func (mc *CPU) setFlags(first isa.CSR, values ...bool) bool {
	b := make([]byte, len(values))
	for i, v := range values {
		b[i] = boolToUint8(v)
	}
	return mc.check(mc.csrs.Write(uint16(first), b, memory.AppData))
}

func (mc *CPU) setNZ(v uint16) bool {
	return mc.setFlags(isa.N, v&0x8000 != 0, v == 0)
}

// jump changes the PC. the PC will not be advanced at the end of the
// instruction
func (mc *CPU) jump(target uint16) bool {
	mc.redirected = true
	return mc.setRegister(isa.PC, target)
}

// address returns the operand address for the addressing mode.
func (mc *CPU) address(mode isa.AddressingMode, os uint16) (uint16, bool) {
	switch mode {
	case isa.Direct:
		return os, true
	case isa.Indirect:
		return mc.read16(os, memory.AppData)
	case isa.StackRelative:
		return mc.Register(isa.SP) + os, true
	case isa.StackRelativeDeferred:
		return mc.read16(mc.Register(isa.SP)+os, memory.AppData)
	case isa.Indexed:
		return os + mc.Register(isa.X), true
	case isa.StackIndexed:
		return mc.Register(isa.SP) + os + mc.Register(isa.X), true
	case isa.StackDeferredIndexed:
		a, ok := mc.read16(mc.Register(isa.SP)+os, memory.AppData)
		return a + mc.Register(isa.X), ok
	}
	return os, true
}

// operand returns the value of the operand, reading from memory if
// necessary.
func (mc *CPU) operand(defn isa.Definition, os uint16) (uint16, bool) {
	byteOperand := defn.Operator.ByteOperand()

	if defn.AddressingMode == isa.Immediate {
		if byteOperand {
			return os & 0x00ff, true
		}
		return os, true
	}

	a, ok := mc.address(defn.AddressingMode, os)
	if !ok {
		return 0, false
	}

	if byteOperand {
		v, ok := mc.read8(a, memory.AppData)
		return uint16(v), ok
	}
	return mc.read16(a, memory.AppData)
}
