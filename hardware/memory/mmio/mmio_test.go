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

package mmio_test

import (
	"testing"

	"github.com/pepsim/pepsim/hardware/device"
	"github.com/pepsim/pepsim/hardware/memory"
	"github.com/pepsim/pepsim/hardware/memory/mmio"
	"github.com/pepsim/pepsim/test"
	"github.com/pepsim/pepsim/trace"
)

func TestEndpoint(t *testing.T) {
	var e mmio.Endpoint
	_, ok := e.Next()
	test.ExpectFailure(t, ok)

	e.AppendValue('a', 'b', 'c')
	test.ExpectEquality(t, e.Pending(), 3)

	v, ok := e.Next()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v, 'a')
	v, _ = e.Next()
	test.ExpectEquality(t, v, 'b')

	e.Unread(1)
	v, _ = e.Peek()
	test.ExpectEquality(t, v, 'b')
	e.Reread(2)
	test.ExpectEquality(t, e.Pending(), 0)
	e.Reread(10)
	test.ExpectEquality(t, e.Cursor(), 3)
	e.Unread(10)
	test.ExpectEquality(t, e.Cursor(), 0)

	test.ExpectBytes(t, e.Since(1), []byte("bc"))
	test.ExpectEquality(t, len(e.Since(3)), 0)

	e.Reread(3)
	e.Truncate(1)
	test.ExpectEquality(t, e.Len(), 1)
	test.ExpectEquality(t, e.Cursor(), 1)
	last, _ := e.Last()
	test.ExpectEquality(t, last, 'a')

	e.Reset()
	test.ExpectEquality(t, e.Len(), 0)
	_, ok = e.Last()
	test.ExpectFailure(t, ok)
}

func TestCharInNeedsInput(t *testing.T) {
	in := mmio.NewInput(device.Descriptor{ID: 1, BaseName: "charIn"}, memory.SpanOfSize(1), memory.RaiseError)

	_, r := memory.ReadUint8(in, 0, memory.AppData)
	test.ExpectFailure(t, r.Completed)
	test.ExpectEquality(t, r.Error, memory.NeedsMMI)

	in.Endpoint().AppendValue('x')
	v, r := memory.ReadUint8(in, 0, memory.AppData)
	test.ExpectSuccess(t, r.Completed)
	test.ExpectEquality(t, v, 'x')

	// a two byte read with only one byte available consumes nothing
	in.Endpoint().AppendValue('y')
	_, r = memory.ReadUint16(in, 0, memory.AppData)
	test.ExpectEquality(t, r.Error, memory.NeedsMMI)
	test.ExpectEquality(t, in.Endpoint().Pending(), 1)

	// internal reads never consume
	b := make([]byte, 1)
	test.ExpectSuccess(t, in.Peek(0, b))
	test.ExpectEquality(t, b[0], 'y')
	test.ExpectEquality(t, in.Endpoint().Pending(), 1)

	// writes are ignored
	r = in.Write(0, []byte{'q'}, memory.AppData)
	test.ExpectSuccess(t, r.Completed)
	test.ExpectEquality(t, in.Endpoint().Pending(), 1)

	_, r = memory.ReadUint8(in, 1, memory.AppData)
	test.ExpectEquality(t, r.Error, memory.OOBAccess)
}

func TestDiskInYieldsDefault(t *testing.T) {
	in := mmio.NewInput(device.Descriptor{ID: 1, BaseName: "diskIn"}, memory.SpanOfSize(1), memory.YieldDefaultValue)
	in.Clear('z')

	in.Endpoint().AppendValue('1')
	v, r := memory.ReadUint8(in, 0, memory.AppData)
	test.ExpectSuccess(t, r.Completed)
	test.ExpectEquality(t, v, '1')

	for range 3 {
		v, r = memory.ReadUint8(in, 0, memory.AppData)
		test.ExpectSuccess(t, r.Completed)
		test.ExpectEquality(t, r.Error, memory.Success)
		test.ExpectEquality(t, v, 'z')
	}
}

func TestInputReplay(t *testing.T) {
	tb := trace.NewBuffer()
	tb.Trace(1, true)
	in := mmio.NewInput(device.Descriptor{ID: 1}, memory.SpanOfSize(1), memory.YieldDefaultValue)
	in.SetBuffer(tb)
	in.Endpoint().AppendValue('a', 'b')

	lookup := func(device.ID) (trace.Replayer, bool) { return in, true }

	tb.EmitFrameStart()
	memory.ReadUint8(in, 0, memory.AppData)
	memory.ReadUint8(in, 0, memory.AppData)
	test.ExpectEquality(t, in.Endpoint().Pending(), 0)

	// exhausted reads are not recorded
	end := tb.End()
	memory.ReadUint8(in, 0, memory.AppData)
	test.ExpectEquality(t, tb.End(), end)

	test.ExpectSuccess(t, tb.ReplayTick(tb.LastTick(), trace.Backward, lookup))
	test.ExpectEquality(t, in.Endpoint().Pending(), 2)
	test.ExpectSuccess(t, tb.ReplayTick(tb.LastTick(), trace.Forward, lookup))
	test.ExpectEquality(t, in.Endpoint().Pending(), 0)
}

func TestOutput(t *testing.T) {
	tb := trace.NewBuffer()
	tb.Trace(2, true)
	out := mmio.NewOutput(device.Descriptor{ID: 2, BaseName: "charOut"}, memory.SpanOfSize(1))
	out.SetBuffer(tb)

	lookup := func(device.ID) (trace.Replayer, bool) { return out, true }

	tb.EmitFrameStart()
	out.Write(0, []byte("hi"), memory.AppData)
	tb.EmitFrameStart()
	out.Write(0, []byte("!"), memory.AppData)
	test.ExpectBytes(t, out.Endpoint().History(), []byte("hi!"))

	v, _ := memory.ReadUint8(out, 0, memory.AppData)
	test.ExpectEquality(t, v, '!')

	// internal writes are not output
	out.Write(0, []byte("x"), memory.Internal)
	test.ExpectBytes(t, out.Endpoint().History(), []byte("hi!"))

	test.ExpectSuccess(t, tb.ReplayTick(tb.LastTick(), trace.Backward, lookup))
	test.ExpectBytes(t, out.Endpoint().History(), []byte("hi"))
	test.ExpectSuccess(t, tb.ReplayTick(tb.LastTick(), trace.Forward, lookup))
	test.ExpectBytes(t, out.Endpoint().History(), []byte("hi!"))

	out.Clear(0)
	test.ExpectEquality(t, out.Endpoint().Len(), 0)
}

func TestIDE(t *testing.T) {
	ram := memory.NewDense(device.Descriptor{ID: 1}, 0x10000)
	ide := mmio.NewIDE(device.Descriptor{ID: 2, FullName: "/bus/ide-disk"}, device.Descriptor{ID: 3}, 4)

	bus := memory.NewBus(device.Descriptor{ID: 0}, memory.SpanOfSize(0x10000))
	bus.PushFrontTarget(memory.SpanOfSize(0x10000), ram)
	bus.PushFrontTarget(memory.AddressSpan{MinOffset: 0xfe00, MaxOffset: 0xfe07}, ide)
	ide.SetTarget(bus)

	tb := trace.NewBuffer()
	tb.Trace(1, true)
	tb.Trace(2, true)
	tb.Trace(3, true)
	ram.SetBuffer(tb)
	ide.SetBuffer(tb)

	lookup := func(id device.ID) (trace.Replayer, bool) {
		switch id {
		case 1:
			return ram, true
		case 2, 3:
			return ide, true
		}
		return nil, false
	}

	// put something on the second sector of the disk
	ide.Disk().Write(mmio.SectorSize, []byte("sector one"), memory.Internal)

	tb.EmitFrameStart()
	bus.Write(0xfe00+mmio.IDELBAHi, []byte{0x00, 0x01, 0x01}, memory.AppData)
	bus.Write(0xfe00+mmio.IDEDMAHi, []byte{0x20, 0x00}, memory.AppData)
	r := bus.Write(0xfe00+mmio.IDECommand, []byte{mmio.IDERead}, memory.AppData)
	test.ExpectSuccess(t, r.Completed)

	b := make([]byte, 10)
	ram.Peek(0x2000, b)
	test.ExpectBytes(t, b, []byte("sector one"))

	v, _ := memory.ReadUint8(bus, 0xfe00+mmio.IDEStatus, memory.Internal)
	test.ExpectEquality(t, v, mmio.IDEOk)
	v, _ = memory.ReadUint8(bus, 0xfe00+mmio.IDECommand, memory.Internal)
	test.ExpectEquality(t, v, mmio.IDENone)

	// the transfer into memory was made under the controller's path
	entries, err := tb.Tick(tb.LastTick())
	test.DemandSuccess(t, err)
	var dma bool
	for _, e := range entries {
		if e.Packet.Info().Device == 1 {
			test.ExpectEquality(t, e.Packet.Info().Path, 2)
			dma = true
		}
	}
	test.ExpectSuccess(t, dma)

	// undo the whole tick
	test.ExpectSuccess(t, tb.ReplayTick(tb.LastTick(), trace.Backward, lookup))
	ram.Peek(0x2000, b)
	test.ExpectBytes(t, b, make([]byte, 10))

	// write memory back to the first sector
	ram.Write(0x3000, []byte("hello"), memory.Internal)
	tb.EmitFrameStart()
	bus.Write(0xfe00+mmio.IDELBAHi, []byte{0x00, 0x00, 0x01}, memory.AppData)
	bus.Write(0xfe00+mmio.IDEDMAHi, []byte{0x30, 0x00}, memory.AppData)
	bus.Write(0xfe00+mmio.IDECommand, []byte{mmio.IDEWrite}, memory.AppData)
	b = make([]byte, 5)
	ide.Disk().Peek(0, b)
	test.ExpectBytes(t, b, []byte("hello"))

	// a transfer beyond the end of the disk
	bus.Write(0xfe00+mmio.IDELBAHi, []byte{0x00, 0x04, 0x01}, memory.AppData)
	bus.Write(0xfe00+mmio.IDECommand, []byte{mmio.IDERead}, memory.AppData)
	v, _ = memory.ReadUint8(bus, 0xfe00+mmio.IDEStatus, memory.Internal)
	test.ExpectEquality(t, v, mmio.IDEError)
}

func TestIDETransferOverController(t *testing.T) {
	ram := memory.NewDense(device.Descriptor{ID: 1}, 0x10000)
	ide := mmio.NewIDE(device.Descriptor{ID: 2, FullName: "/bus/ide-disk"}, device.Descriptor{ID: 3}, 1)

	bus := memory.NewBus(device.Descriptor{ID: 0}, memory.SpanOfSize(0x10000))
	bus.PushFrontTarget(memory.SpanOfSize(0x10000), ram)
	bus.PushFrontTarget(memory.AddressSpan{MinOffset: 0xfe00, MaxOffset: 0xfe07}, ide)
	ide.SetTarget(bus)

	tb := trace.NewBuffer()
	ram.SetBuffer(tb)
	ide.SetBuffer(tb)

	// a sector that looks like a read command for itself
	sector := []byte{mmio.IDERead, 0x00, 0x00, 0x00, 0x01, 0x00, 0xfe, 0x00, 'x'}
	ide.Disk().Write(0, sector, memory.Internal)

	tb.EmitFrameStart()
	bus.Write(0xfe00+mmio.IDELBAHi, []byte{0x00, 0x00, 0x01}, memory.AppData)
	bus.Write(0xfe00+mmio.IDEDMAHi, []byte{0xfe, 0x00}, memory.AppData)
	r := bus.Write(0xfe00+mmio.IDECommand, []byte{mmio.IDERead}, memory.AppData)
	test.ExpectSuccess(t, r.Completed)

	v, _ := memory.ReadUint8(bus, 0xfe00+mmio.IDEStatus, memory.Internal)
	test.ExpectEquality(t, v, mmio.IDEError)
	v, _ = memory.ReadUint8(bus, 0xfe00+mmio.IDECommand, memory.Internal)
	test.ExpectEquality(t, v, mmio.IDENone)

	// the register block was not overwritten by the transfer
	b := make([]byte, 4)
	ide.Peek(mmio.IDELBAHi, b)
	test.ExpectBytes(t, b, []byte{0x00, 0x00, 0x01, 0x00})

	// the part of the transfer outside the controller still happens
	v, _ = memory.ReadUint8(ram, 0xfe08, memory.Internal)
	test.ExpectEquality(t, v, 'x')

	// the controller is usable afterwards
	bus.Write(0xfe00+mmio.IDEDMAHi, []byte{0x20, 0x00}, memory.AppData)
	bus.Write(0xfe00+mmio.IDECommand, []byte{mmio.IDERead}, memory.AppData)
	v, _ = memory.ReadUint8(bus, 0xfe00+mmio.IDEStatus, memory.Internal)
	test.ExpectEquality(t, v, mmio.IDEOk)
	b = make([]byte, len(sector))
	ram.Peek(0x2000, b)
	test.ExpectBytes(t, b, sector)
}
