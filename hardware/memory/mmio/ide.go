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

package mmio

import (
	"github.com/pepsim/pepsim/bits"
	"github.com/pepsim/pepsim/hardware/device"
	"github.com/pepsim/pepsim/hardware/memory"
	"github.com/pepsim/pepsim/logger"
	"github.com/pepsim/pepsim/trace"
)

// The registers of the IDE controller, relative to the start of its span.
const (
	IDECommand = iota
	IDEStatus
	IDELBAHi
	IDELBALo
	IDESectorCount
	IDEReserved
	IDEDMAHi
	IDEDMALo

	// the number of bytes in the register block
	IDERegisters
)

// IDE commands.
const (
	IDENone  = 0x00
	IDERead  = 0x01
	IDEWrite = 0x02
)

// IDE status values.
const (
	IDEOk    = 0x00
	IDEError = 0x01
)

// SectorSize is the number of bytes in a disk sector.
const SectorSize = 512

// IDE is a simple disk controller. The running program sets up the LBA,
// sector count and DMA address registers and then writes a command to the
// command register. The transfer happens immediately, between the disk and
// memory on the target bus.
//
// Transfers are recorded in the trace with the controller's device ID as the
// path.
type IDE struct {
	regs *memory.Dense
	disk *memory.Dense

	// the memory that DMA transfers read from and write to
	target memory.Target

	tb *trace.Buffer

	// a command is in progress. DMA writes that reach the register block
	// while busy are dropped and the command fails
	busy     bool
	collided bool
}

// NewIDE is the preferred method of initialisation for the IDE type. The
// disk has its own device descriptor.
func NewIDE(desc device.Descriptor, disk device.Descriptor, sectors int) *IDE {
	return &IDE{
		regs: memory.NewDense(desc, IDERegisters),
		disk: memory.NewDense(disk, sectors*SectorSize),
	}
}

// Descriptor implements the memory.Device interface.
func (ide *IDE) Descriptor() device.Descriptor {
	return ide.regs.Descriptor()
}

// Disk returns the disk attached to the controller.
func (ide *IDE) Disk() *memory.Dense {
	return ide.disk
}

// Registers returns the register block of the controller.
func (ide *IDE) Registers() *memory.Dense {
	return ide.regs
}

// SetTarget sets the memory used for DMA transfers.
func (ide *IDE) SetTarget(target memory.Target) {
	ide.target = target
}

// SetBuffer implements the memory.Traced interface.
func (ide *IDE) SetBuffer(tb *trace.Buffer) {
	ide.tb = tb
	ide.regs.SetBuffer(tb)
	ide.disk.SetBuffer(tb)
}

// Span implements the memory.Target interface.
func (ide *IDE) Span() memory.AddressSpan {
	return ide.regs.Span()
}

// Read implements the memory.Target interface.
func (ide *IDE) Read(address uint16, dest []byte, op memory.Operation) memory.Result {
	return ide.regs.Read(address, dest, op)
}

// Write implements the memory.Target interface. A write that includes the
// command register starts the command.
func (ide *IDE) Write(address uint16, src []byte, op memory.Operation) memory.Result {
	if ide.busy {
		ide.collided = true
		return memory.Completed
	}
	r := ide.regs.Write(address, src, op)
	if !r.Completed || !op.Traced() {
		return r
	}
	if address == IDECommand && len(src) > 0 {
		r = r.Merge(ide.execute())
	}
	return r
}

func (ide *IDE) reg(n uint16) byte {
	v, _ := memory.ReadUint8(ide.regs, n, memory.Internal)
	return v
}

func (ide *IDE) execute() memory.Result {
	cmd := ide.reg(IDECommand)
	if cmd == IDENone {
		return memory.Completed
	}

	g := ide.tb.PushPath(uint16(ide.Descriptor().ID))
	defer g.Pop()

	lba := int(bits.Uint16([]byte{ide.reg(IDELBAHi), ide.reg(IDELBALo)}, bits.BigEndian))
	count := int(ide.reg(IDESectorCount))
	dma := bits.Uint16([]byte{ide.reg(IDEDMAHi), ide.reg(IDEDMALo)}, bits.BigEndian)

	status := byte(IDEOk)
	r := memory.Completed

	if ide.target == nil || lba*SectorSize+count*SectorSize > ide.disk.Span().Size() || int(dma)+count*SectorSize > 0x10000 {
		logger.Logf(logger.Allow, "ide", "%s: invalid transfer (lba=%d count=%d dma=%#04x)", ide.Descriptor().FullName, lba, count, dma)
		status = IDEError
	} else {
		buf := make([]byte, count*SectorSize)
		from := uint16(lba * SectorSize)

		ide.busy = true
		ide.collided = false

		switch cmd {
		case IDERead:
			r = r.Merge(ide.disk.Read(from, buf, memory.AppData))
			if r.Completed {
				r = r.Merge(ide.target.Write(dma, buf, memory.AppData))
			}
		case IDEWrite:
			r = r.Merge(ide.target.Read(dma, buf, memory.AppData))
			if r.Completed {
				r = r.Merge(ide.disk.Write(from, buf, memory.AppData))
			}
		default:
			logger.Logf(logger.Allow, "ide", "%s: unknown command (%#02x)", ide.Descriptor().FullName, cmd)
			status = IDEError
		}

		ide.busy = false
		if ide.collided {
			logger.Logf(logger.Allow, "ide", "%s: transfer overlaps the controller (dma=%#04x count=%d)", ide.Descriptor().FullName, dma, count)
			status = IDEError
		}

		if !r.Completed {
			// the memory error is reported to the running program as a
			// failed command
			status = IDEError
			r = memory.Completed
		}
	}

	r = r.Merge(ide.regs.Write(IDEStatus, []byte{status}, memory.AppData))
	r = r.Merge(ide.regs.Write(IDECommand, []byte{IDENone}, memory.AppData))
	return r
}

// Clear implements the memory.Target interface. The register block is
// cleared. The disk is not affected.
func (ide *IDE) Clear(fill byte) {
	ide.regs.Clear(fill)
}

// Dump implements the memory.Target interface.
func (ide *IDE) Dump(dest []byte) {
	ide.regs.Dump(dest)
}

// Peek implements the memory.Peeker interface.
func (ide *IDE) Peek(address uint16, dest []byte) bool {
	return ide.regs.Peek(address, dest)
}

// Replay implements the trace.Replayer interface. Packets for the register
// block are replayed. Packets for the disk have the disk's device ID and
// should be replayed by the disk directly.
func (ide *IDE) Replay(p trace.Packet, payload []byte, dir trace.Direction) error {
	if p.Info().Device == ide.disk.Descriptor().ID {
		return ide.disk.Replay(p, payload, dir)
	}
	return ide.regs.Replay(p, payload, dir)
}
