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

// Package cpu emulates the Pep/9 and Pep/10 processors.
//
// The CPU's registers and status flags are held in two memory.Dense targets,
// the register file and the CSR file. Sixteen bit registers occupy two bytes
// of the register file at the offset given by isa.Register.Offset(), stored
// big-endian. Each status flag occupies one byte of the CSR file. Because
// they are ordinary targets, changes to the registers and flags are recorded
// in the trace buffer in exactly the same way as changes to main memory and
// can be undone in the same way.
//
// The CPU type implements the tick.Recipient interface. Each call to Clock()
// executes exactly one instruction:
//
//	mc := cpu.NewCPU(isa.Pep10, desc, ids)
//	mc.SetTarget(bus)
//
//	for {
//		r := mc.Clock(t)
//		if r.Error != tick.Success {
//			break
//		}
//	}
//
// Memory errors are translated into tick errors. An input running out of
// data results in tick.NoMMInput. The instruction made no memory changes
// other than to the IS and OS registers and can be retried once more input
// has been supplied. Any other failed memory access, or an illegal
// instruction, results in tick.Terminate and the CPU refuses to run again
// until it has been reset.
package cpu
