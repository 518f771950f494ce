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

package rewind

import (
	"github.com/pepsim/pepsim/hardware/cpu/isa"
	"github.com/pepsim/pepsim/hardware/device"
	"github.com/pepsim/pepsim/hardware/memory"
	"github.com/pepsim/pepsim/hardware/tick"
	"github.com/pepsim/pepsim/trace"
)

// search backwards through the ticks before the current position for the
// most recent tick containing a write that matches
func (r *Rewind) search(match func(p trace.Packet, payload []byte) bool) (tick.Type, bool) {
	tb := r.sys.Buffer()
	if tb == nil {
		return 0, false
	}

	t := r.sys.CurrentTick()
	loc := tb.PrevTick(r.position(tb))
	for loc >= 0 {
		entries, err := tb.Tick(loc)
		if err != nil {
			return 0, false
		}
		for _, e := range entries {
			switch e.Packet.(type) {
			case trace.Write, trace.Increment, trace.Clear:
				if match(e.Packet, e.Payload) {
					return t, true
				}
			}
		}
		loc = tb.PrevTick(loc)
		t--
	}

	return 0, false
}

func covers(p trace.Packet, payload []byte, dev device.ID, address uint16) bool {
	info := p.Info()
	if info.Device != dev {
		return false
	}
	if _, ok := p.(trace.Clear); ok {
		return true
	}
	a := uint32(address)
	return a >= info.Address && a < info.Address+uint32(max(len(payload), 1))
}

// SearchMemoryWrite looks backwards from the current tick for the most recent
// tick that wrote to the bus address. Returns false if no such tick is found.
//
// Writes are only found if they were recorded: the device must have been
// traced at the time of the write.
func (r *Rewind) SearchMemoryWrite(address uint16) (tick.Type, bool) {
	tgt, local, ok := r.sys.Bus().Resolve(address)
	if !ok {
		return 0, false
	}
	d, ok := tgt.(memory.Device)
	if !ok {
		return 0, false
	}
	dev := d.Descriptor().ID

	return r.search(func(p trace.Packet, payload []byte) bool {
		return covers(p, payload, dev, local)
	})
}

// SearchRegisterWrite looks backwards from the current tick for the most
// recent tick that changed the register. Returns false if no such tick is
// found.
func (r *Rewind) SearchRegisterWrite(reg isa.Register) (tick.Type, bool) {
	dev := r.sys.CPU().Regs().Descriptor().ID
	return r.search(func(p trace.Packet, payload []byte) bool {
		return covers(p, payload, dev, reg.Offset()) || covers(p, payload, dev, reg.Offset()+1)
	})
}
