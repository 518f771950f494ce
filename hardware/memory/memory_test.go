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

package memory_test

import (
	"testing"

	"github.com/pepsim/pepsim/hardware/device"
	"github.com/pepsim/pepsim/hardware/memory"
	"github.com/pepsim/pepsim/test"
	"github.com/pepsim/pepsim/trace"
)

func dense(id device.ID, size int) *memory.Dense {
	return memory.NewDense(device.Descriptor{ID: id, BaseName: "dense", FullName: "/bus/dense"}, size)
}

func TestSpan(t *testing.T) {
	s := memory.AddressSpan{MinOffset: 0x10, MaxOffset: 0x1f}
	test.ExpectEquality(t, s.Size(), 16)
	test.ExpectSuccess(t, s.Contains(0x10))
	test.ExpectSuccess(t, s.Contains(0x1f))
	test.ExpectFailure(t, s.Contains(0x20))
	test.ExpectFailure(t, s.Contains(0x0f))
	test.ExpectEquality(t, memory.SpanOfSize(0x10000).Size(), 0x10000)
	test.ExpectEquality(t, memory.SpanOfSize(0x10000).MaxOffset, 0xffff)
}

func TestDenseRoundTrip(t *testing.T) {
	d := dense(1, 0x100)

	r := d.Write(0x10, []byte{0xde, 0xad}, memory.AppData)
	test.ExpectSuccess(t, r.Completed)
	test.ExpectEquality(t, r.Error, memory.Success)

	v, r := memory.ReadUint16(d, 0x10, memory.AppData)
	test.ExpectSuccess(t, r.Completed)
	test.ExpectEquality(t, v, 0xdead)

	r = memory.WriteUint16(d, 0xfe, 0x1234, memory.AppData)
	test.ExpectSuccess(t, r.Completed)
	b, _ := memory.ReadUint8(d, 0xff, memory.AppData)
	test.ExpectEquality(t, b, 0x34)

	// past the end of the target
	r = d.Write(0xff, []byte{0x01, 0x02}, memory.AppData)
	test.ExpectFailure(t, r.Completed)
	test.ExpectEquality(t, r.Error, memory.OOBAccess)
	_, r = memory.ReadUint16(d, 0xff, memory.AppData)
	test.ExpectEquality(t, r.Error, memory.OOBAccess)
	_, r = memory.ReadUint8(d, 0x100, memory.AppData)
	test.ExpectEquality(t, r.Error, memory.OOBAccess)

	// the failed write did not change anything
	b, _ = memory.ReadUint8(d, 0xff, memory.AppData)
	test.ExpectEquality(t, b, 0x34)

	d.Clear(0xaa)
	dump := make([]byte, d.Span().Size())
	d.Dump(dump)
	for _, v := range dump {
		test.ExpectEquality(t, v, 0xaa)
	}
}

func TestReadOnly(t *testing.T) {
	d := dense(1, 0x10)
	d.Write(0, []byte{0x55}, memory.Internal)

	ro := memory.NewReadOnly(d, false)
	r := ro.Write(0, []byte{0x66}, memory.AppData)
	test.ExpectFailure(t, r.Completed)
	test.ExpectEquality(t, r.Error, memory.WriteToRO)

	v, r := memory.ReadUint8(ro, 0, memory.AppData)
	test.ExpectSuccess(t, r.Completed)
	test.ExpectEquality(t, v, 0x55)

	// the loader can still write to read only memory
	r = ro.Write(0, []byte{0x66}, memory.Internal)
	test.ExpectSuccess(t, r.Completed)
	v, _ = memory.ReadUint8(ro, 0, memory.AppData)
	test.ExpectEquality(t, v, 0x66)

	// clear is ignored unless allowed
	ro.Clear(0)
	v, _ = memory.ReadUint8(ro, 0, memory.AppData)
	test.ExpectEquality(t, v, 0x66)

	ro = memory.NewReadOnly(d, true)
	ro.Clear(0)
	v, _ = memory.ReadUint8(ro, 0, memory.AppData)
	test.ExpectEquality(t, v, 0x00)

	test.ExpectEquality(t, ro.Descriptor().ID, 1)
	test.ExpectEquality(t, ro.Unwrap(), memory.Target(d))
}

func TestBusUnmapped(t *testing.T) {
	bus := memory.NewBus(device.Descriptor{ID: 0}, memory.SpanOfSize(0x10000))
	bus.PushFrontTarget(memory.AddressSpan{MinOffset: 0x0000, MaxOffset: 0x00ff}, dense(1, 0x100))

	_, r := memory.ReadUint8(bus, 0x0100, memory.AppData)
	test.ExpectFailure(t, r.Completed)
	test.ExpectEquality(t, r.Error, memory.Unmapped)

	r = bus.Write(0x0100, []byte{1}, memory.AppData)
	test.ExpectEquality(t, r.Error, memory.Unmapped)

	// partly mapped
	_, r = memory.ReadUint16(bus, 0x00ff, memory.AppData)
	test.ExpectEquality(t, r.Error, memory.Unmapped)

	_, _, ok := bus.Resolve(0x0100)
	test.ExpectFailure(t, ok)
}

func TestBusPriority(t *testing.T) {
	ram := dense(1, 0x10000)
	io := dense(2, 4)

	bus := memory.NewBus(device.Descriptor{ID: 0}, memory.SpanOfSize(0x10000))
	bus.PushFrontTarget(memory.SpanOfSize(0x10000), ram)
	bus.PushFrontTarget(memory.AddressSpan{MinOffset: 0xfff0, MaxOffset: 0xfff3}, io)

	// the front pushed span wins
	r := bus.Write(0xfff1, []byte{0x42}, memory.AppData)
	test.ExpectSuccess(t, r.Completed)
	v, _ := memory.ReadUint8(io, 0x0001, memory.AppData)
	test.ExpectEquality(t, v, 0x42)
	v, _ = memory.ReadUint8(ram, 0xfff1, memory.AppData)
	test.ExpectEquality(t, v, 0x00)

	// an access that crosses from one target into another is divided
	r = memory.WriteUint16(bus, 0xffef, 0x1122, memory.AppData)
	test.ExpectSuccess(t, r.Completed)
	v, _ = memory.ReadUint8(ram, 0xffef, memory.AppData)
	test.ExpectEquality(t, v, 0x11)
	v, _ = memory.ReadUint8(io, 0x0000, memory.AppData)
	test.ExpectEquality(t, v, 0x22)
	w, _ := memory.ReadUint16(bus, 0xffef, memory.AppData)
	test.ExpectEquality(t, w, 0x1122)

	// and back again
	r = memory.WriteUint16(bus, 0xfff3, 0x3344, memory.AppData)
	test.ExpectSuccess(t, r.Completed)
	v, _ = memory.ReadUint8(io, 0x0003, memory.AppData)
	test.ExpectEquality(t, v, 0x33)
	v, _ = memory.ReadUint8(ram, 0xfff4, memory.AppData)
	test.ExpectEquality(t, v, 0x44)

	target, local, ok := bus.Resolve(0xfff2)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, target, memory.Target(io))
	test.ExpectEquality(t, local, 0x0002)

	target, local, ok = bus.Resolve(0x1000)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, target, memory.Target(ram))
	test.ExpectEquality(t, local, 0x1000)

	// the dump shows the front target
	dump := make([]byte, 0x10000)
	bus.Dump(dump)
	test.ExpectEquality(t, dump[0xffef], 0x11)
	test.ExpectEquality(t, dump[0xfff0], 0x22)
	test.ExpectEquality(t, dump[0xfff3], 0x33)
	test.ExpectEquality(t, dump[0xfff4], 0x44)
}

func TestNestedBus(t *testing.T) {
	inner := memory.NewBus(device.Descriptor{ID: 1}, memory.SpanOfSize(0x100))
	mem := dense(2, 0x80)
	inner.PushFrontTarget(memory.AddressSpan{MinOffset: 0x80, MaxOffset: 0xff}, mem)

	outer := memory.NewBus(device.Descriptor{ID: 0}, memory.SpanOfSize(0x10000))
	outer.PushFrontTarget(memory.AddressSpan{MinOffset: 0x1000, MaxOffset: 0x10ff}, inner)

	r := outer.Write(0x1081, []byte{0x99}, memory.AppData)
	test.ExpectSuccess(t, r.Completed)
	v, _ := memory.ReadUint8(mem, 0x01, memory.AppData)
	test.ExpectEquality(t, v, 0x99)

	target, local, ok := outer.Resolve(0x1081)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, target, memory.Target(mem))
	test.ExpectEquality(t, local, 0x01)

	// unmapped inside the inner bus
	r = outer.Write(0x1001, []byte{0x99}, memory.AppData)
	test.ExpectEquality(t, r.Error, memory.Unmapped)
}

func TestDenseTracing(t *testing.T) {
	d := dense(3, 0x100)
	tb := trace.NewBuffer()
	tb.Trace(3, true)
	d.SetBuffer(tb)

	lookup := func(id device.ID) (trace.Replayer, bool) {
		return d, id == 3
	}

	tb.EmitFrameStart()
	d.Write(0x20, []byte{1, 2, 3}, memory.AppData)
	tick0 := tb.LastTick()

	tb.EmitFrameStart()
	d.Write(0x21, []byte{0xff}, memory.AppData)
	d.Increment(0x30, []byte{0x00, 0x01}, memory.AppData)
	d.Increment(0x30, []byte{0xff, 0xff}, memory.AppData)
	tick1 := tb.LastTick()

	// internal accesses are not recorded
	end := tb.End()
	d.Write(0x40, []byte{0x77}, memory.Internal)
	test.ExpectEquality(t, tb.End(), end)
	d.Write(0x40, []byte{0x00}, memory.Internal)

	b := make([]byte, 4)
	d.Peek(0x20, b)
	test.ExpectBytes(t, b, []byte{1, 0xff, 3, 0})
	w, _ := memory.ReadUint16(d, 0x30, memory.Internal)
	test.ExpectEquality(t, w, 0x0000)

	test.ExpectSuccess(t, tb.ReplayTick(tick1, trace.Backward, lookup))
	d.Peek(0x20, b)
	test.ExpectBytes(t, b, []byte{1, 2, 3, 0})
	w, _ = memory.ReadUint16(d, 0x30, memory.Internal)
	test.ExpectEquality(t, w, 0x0000)

	test.ExpectSuccess(t, tb.ReplayTick(tick0, trace.Backward, lookup))
	d.Peek(0x20, b)
	test.ExpectBytes(t, b, []byte{0, 0, 0, 0})

	test.ExpectSuccess(t, tb.ReplayTick(tick0, trace.Forward, lookup))
	test.ExpectSuccess(t, tb.ReplayTick(tick1, trace.Forward, lookup))
	d.Peek(0x20, b)
	test.ExpectBytes(t, b, []byte{1, 0xff, 3, 0})

	// clearing is recorded and can be undone
	tb.EmitFrameStart()
	d.Clear(0x5a)
	v, _ := memory.ReadUint8(d, 0x00, memory.Internal)
	test.ExpectEquality(t, v, 0x5a)
	test.ExpectSuccess(t, tb.ReplayTick(tb.LastTick(), trace.Backward, lookup))
	d.Peek(0x20, b)
	test.ExpectBytes(t, b, []byte{1, 0xff, 3, 0})
	v, _ = memory.ReadUint8(d, 0x00, memory.Internal)
	test.ExpectEquality(t, v, 0x00)
}

func TestIncrementReplay(t *testing.T) {
	d := dense(3, 2)
	tb := trace.NewBuffer()
	tb.Trace(3, true)
	d.SetBuffer(tb)
	memory.WriteUint16(d, 0, 0x00ff, memory.Internal)

	tb.EmitFrameStart()
	d.Increment(0, []byte{0x00, 0x03}, memory.AppData)
	w, _ := memory.ReadUint16(d, 0, memory.Internal)
	test.ExpectEquality(t, w, 0x0102)

	test.ExpectSuccess(t, tb.ReplayTick(tb.LastTick(), trace.Backward, func(device.ID) (trace.Replayer, bool) {
		return d, true
	}))
	w, _ = memory.ReadUint16(d, 0, memory.Internal)
	test.ExpectEquality(t, w, 0x00ff)
}

func TestBreakpointResult(t *testing.T) {
	d := dense(3, 0x100)
	tb := trace.NewBuffer()
	d.SetBuffer(tb)
	tb.AddFilter(trace.NewValueFilter[uint8](3, d, 0x10, 0x25))

	tb.EmitFrameStart()
	r := d.Write(0x10, []byte{0x10}, memory.AppData)
	test.ExpectEquality(t, r, memory.Completed)

	r = d.Write(0x10, []byte{0x25}, memory.AppData)
	test.ExpectSuccess(t, r.Completed)
	test.ExpectSuccess(t, r.Pause)
	test.ExpectEquality(t, r.Error, memory.Breakpoint)

	// the value is in memory even though the access paused
	v, _ := memory.ReadUint8(d, 0x10, memory.Internal)
	test.ExpectEquality(t, v, 0x25)

	// reading the watched address also breaks
	_, r = memory.ReadUint8(d, 0x10, memory.AppData)
	test.ExpectEquality(t, r.Error, memory.Breakpoint)
}

func TestResultMerge(t *testing.T) {
	brk := memory.Result{Completed: true, Pause: true, Error: memory.Breakpoint}
	test.ExpectEquality(t, memory.Completed.Merge(brk), brk)
	test.ExpectEquality(t, brk.Merge(memory.Completed), brk)
	test.ExpectEquality(t, brk.Merge(memory.Failed(memory.Unmapped)), memory.Failed(memory.Unmapped))
	test.ExpectEquality(t, memory.Failed(memory.OOBAccess).Merge(brk), memory.Failed(memory.OOBAccess))
}
