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
)

// execute the instruction. next is the address of the following instruction.
// Errors are accumulated in mc.result.
func (mc *CPU) execute(defn isa.Definition, is uint8, os uint16, next uint16) {
	op := defn.Operator
	r := op.Register()

	switch op {
	case isa.Stop:
		mc.stop()

	case isa.Nop:

	case isa.Ret:
		sp := mc.Register(isa.SP)
		pc, ok := mc.read16(sp, memory.AppData)
		if ok && mc.setRegister(isa.SP, sp+2) {
			mc.jump(pc)
		}

	case isa.Rettr, isa.Sret:
		mc.returnFromTrap()

	case isa.Movspa:
		mc.setRegister(isa.A, mc.Register(isa.SP))

	case isa.Movasp:
		mc.setRegister(isa.SP, mc.Register(isa.A))

	case isa.Movflga:
		mc.setRegister(isa.A, mc.Register(isa.A)&0xff00|uint16(mc.Flags()))

	case isa.Movaflg:
		mc.setNZVC(uint8(mc.Register(isa.A)))

	case isa.Nota, isa.Notx:
		v := ^mc.Register(r)
		if mc.setRegister(r, v) {
			mc.setNZ(v)
		}

	case isa.Nega, isa.Negx:
		v := -mc.Register(r)
		if mc.setRegister(r, v) {
			mc.setFlags(isa.N, v&0x8000 != 0, v == 0, v == 0x8000)
		}

	case isa.Asla, isa.Aslx:
		o := mc.Register(r)
		v := o << 1
		if mc.setRegister(r, v) {
			mc.setFlags(isa.N, v&0x8000 != 0, v == 0, (o^v)&0x8000 != 0, o&0x8000 != 0)
		}

	case isa.Asra, isa.Asrx:
		o := mc.Register(r)
		v := uint16(int16(o) >> 1)
		if mc.setRegister(r, v) && mc.setNZ(v) {
			mc.setFlags(isa.C, o&0x0001 != 0)
		}

	case isa.Rola, isa.Rolx:
		o := mc.Register(r)
		v := o<<1 | boolToUint16(mc.Flag(isa.C))
		if mc.setRegister(r, v) {
			mc.setFlags(isa.C, o&0x8000 != 0)
		}

	case isa.Rora, isa.Rorx:
		o := mc.Register(r)
		v := o>>1 | boolToUint16(mc.Flag(isa.C))<<15
		if mc.setRegister(r, v) {
			mc.setFlags(isa.C, o&0x0001 != 0)
		}

	case isa.Br, isa.Brle, isa.Brlt, isa.Breq, isa.Brne, isa.Brge, isa.Brgt, isa.Brv, isa.Brc:
		if mc.branchTaken(op) {
			if target, ok := mc.branchTarget(defn, os); ok {
				mc.jump(target)
			}
		}

	case isa.Call:
		target, ok := mc.branchTarget(defn, os)
		if !ok {
			return
		}
		sp := mc.Register(isa.SP) - 2
		if mc.write16(sp, next) && mc.setRegister(isa.SP, sp) {
			mc.jump(target)
		}

	case isa.Nop0, isa.Nop1, isa.Nopn, isa.Deci, isa.Deco, isa.Hexo, isa.Stro, isa.Scall:
		mc.trap(is, next)

	case isa.Addsp, isa.Subsp:
		v, ok := mc.operand(defn, os)
		if !ok {
			return
		}
		sp := mc.Register(isa.SP)
		if op == isa.Addsp {
			mc.setRegister(isa.SP, sp+v)
		} else {
			mc.setRegister(isa.SP, sp-v)
		}

	case isa.Adda, isa.Addx:
		v, ok := mc.operand(defn, os)
		if !ok {
			return
		}
		a := mc.Register(r)
		s := a + v
		if mc.setRegister(r, s) {
			mc.setFlags(isa.N, s&0x8000 != 0, s == 0, (a^s)&(v^s)&0x8000 != 0, s < a)
		}

	case isa.Suba, isa.Subx:
		v, ok := mc.operand(defn, os)
		if !ok {
			return
		}
		s, n, z, ov, c := subtract(mc.Register(r), v)
		if mc.setRegister(r, s) {
			mc.setFlags(isa.N, n, z, ov, c)
		}

	case isa.Cpwa, isa.Cpwx:
		v, ok := mc.operand(defn, os)
		if !ok {
			return
		}
		_, n, z, ov, c := subtract(mc.Register(r), v)
		mc.setFlags(isa.N, n != ov, z, ov, c)

	case isa.Cpba, isa.Cpbx:
		v, ok := mc.operand(defn, os)
		if !ok {
			return
		}
		t := uint8(mc.Register(r)) - uint8(v)
		mc.setFlags(isa.N, t&0x80 != 0, t == 0, false, false)

	case isa.Anda, isa.Andx, isa.Ora, isa.Orx, isa.Xora, isa.Xorx:
		v, ok := mc.operand(defn, os)
		if !ok {
			return
		}
		s := mc.Register(r)
		switch op {
		case isa.Anda, isa.Andx:
			s &= v
		case isa.Ora, isa.Orx:
			s |= v
		default:
			s ^= v
		}
		if mc.setRegister(r, s) {
			mc.setNZ(s)
		}

	case isa.Ldwa, isa.Ldwx:
		v, ok := mc.operand(defn, os)
		if ok && mc.setRegister(r, v) {
			mc.setNZ(v)
		}

	case isa.Ldba, isa.Ldbx:
		v, ok := mc.operand(defn, os)
		if !ok {
			return
		}
		v &= 0x00ff
		if mc.isa.Arch == isa.Pep9 {
			v |= mc.Register(r) & 0xff00
		}
		if mc.setRegister(r, v) {
			mc.setFlags(isa.N, false, v&0x00ff == 0)
		}

	case isa.Stwa, isa.Stwx:
		if a, ok := mc.address(defn.AddressingMode, os); ok {
			mc.write16(a, mc.Register(r))
		}

	case isa.Stba, isa.Stbx:
		if a, ok := mc.address(defn.AddressingMode, os); ok {
			mc.write8(a, uint8(mc.Register(r)))
		}
	}
}

// subtract b from a and return the result and the NZVC flags
func subtract(a uint16, b uint16) (uint16, bool, bool, bool, bool) {
	s := uint32(a) + uint32(^b) + 1
	r := uint16(s)
	return r, r&0x8000 != 0, r == 0, (a^b)&(a^r)&0x8000 != 0, s > 0xffff
}

func (mc *CPU) setNZVC(f uint8) bool {
	return mc.setFlags(isa.N, f&0x08 != 0, f&0x04 != 0, f&0x02 != 0, f&0x01 != 0)
}

func (mc *CPU) branchTaken(op isa.Operator) bool {
	n := mc.Flag(isa.N)
	z := mc.Flag(isa.Z)

	switch op {
	case isa.Br:
		return true
	case isa.Brle:
		return n || z
	case isa.Brlt:
		return n
	case isa.Breq:
		return z
	case isa.Brne:
		return !z
	case isa.Brge:
		return !n
	case isa.Brgt:
		return !n && !z
	case isa.Brv:
		return mc.Flag(isa.V)
	case isa.Brc:
		return mc.Flag(isa.C)
	}
	return false
}

// the target of a branch is the operand specifier in immediate mode or the
// word at operand specifier plus X in indexed mode
func (mc *CPU) branchTarget(defn isa.Definition, os uint16) (uint16, bool) {
	if defn.AddressingMode == isa.Indexed {
		return mc.read16(os+mc.Register(isa.X), memory.AppData)
	}
	return os, true
}

// STOP writes to the power off port. if there is no port the CPU halts
// immediately
func (mc *CPU) stop() {
	if mc.pwrOff == nil {
		mc.status = Halted
		mc.result.Pause = true
		return
	}
	mc.check(mc.pwrOff.Write(0, []byte{0x01}, memory.AppData))
	mc.result.Pause = true
}

// trap saves the processor state on the system stack and transfers control
// to the trap handler.
func (mc *CPU) trap(is uint8, next uint16) {
	ssp, _ := mc.isa.Vector(isa.SystemStackPtr)
	th, _ := mc.isa.Vector(isa.TrapHandler)

	t, ok := mc.read16(ssp, memory.AppData)
	if !ok {
		return
	}
	handler, ok := mc.read16(th, memory.AppData)
	if !ok {
		return
	}

	if !mc.write8(t-1, is) ||
		!mc.write16(t-3, mc.Register(isa.SP)) ||
		!mc.write16(t-5, next) ||
		!mc.write16(t-7, mc.Register(isa.X)) ||
		!mc.write16(t-9, mc.Register(isa.A)) ||
		!mc.write8(t-10, mc.Flags()) {
		return
	}

	if mc.setRegister(isa.SP, t-10) {
		mc.jump(handler)
	}
}

// returnFromTrap restores the processor state saved by trap()
func (mc *CPU) returnFromTrap() {
	sp := mc.Register(isa.SP)

	f, ok := mc.read8(sp, memory.AppData)
	if !ok {
		return
	}

	var w [4]uint16
	for i := range w {
		w[i], ok = mc.read16(sp+1+uint16(i)*2, memory.AppData)
		if !ok {
			return
		}
	}

	if mc.setNZVC(f) &&
		mc.setRegister(isa.A, w[0]) &&
		mc.setRegister(isa.X, w[1]) &&
		mc.setRegister(isa.SP, w[3]) {
		mc.jump(w[2])
	}
}
