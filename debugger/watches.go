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

package debugger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/hardware/device"
	"github.com/pepsim/pepsim/hardware/memory"
	"github.com/pepsim/pepsim/trace"
)

// Sentinel error patterns.
const (
	NoSuchWatch  = "debugger: watch #%d is not defined"
	WatchExists  = "debugger: already watching %#04x"
	NotWatchable = "debugger: address %#04x cannot be watched"
	NoSuchBreak  = "debugger: breakpoint #%d is not defined"
	BreakExists  = "debugger: already breaking on %#04x"
)

// watcher is a single watched address. the address is the address on the bus
// and local is the same address as seen by the device
type watcher struct {
	handle  uint16
	address uint16
	dev     device.Descriptor
	local   uint16
	values  []uint8
}

func (w watcher) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%#04x (%s %#04x)", w.address, w.dev.BaseName, w.local))
	if len(w.values) > 0 {
		s.WriteString(" value=")
		for i, v := range w.values {
			if i > 0 {
				s.WriteString("|")
			}
			s.WriteString(fmt.Sprintf("%#02x", v))
		}
	}
	return s.String()
}

type watches struct {
	dbg     *Debugger
	watches []watcher
}

func newWatches(dbg *Debugger) *watches {
	return &watches{dbg: dbg}
}

func (wtc *watches) find(handle uint16) (watcher, bool) {
	for _, w := range wtc.watches {
		if w.handle == handle {
			return w, true
		}
	}
	return watcher{}, false
}

func (wtc *watches) add(address uint16, values []uint8) error {
	for _, w := range wtc.watches {
		if w.address == address && slices.Equal(w.values, values) {
			return curated.Errorf(WatchExists, address)
		}
	}

	tgt, local, ok := wtc.dbg.sys.Bus().Resolve(address)
	if !ok {
		return curated.Errorf(UnmappedAddress, address)
	}

	// the filter identifies accesses by device ID and peeks at the device to
	// check the value
	d, ok := tgt.(memory.Device)
	if !ok {
		return curated.Errorf(NotWatchable, address)
	}
	p, ok := tgt.(memory.Peeker)
	if !ok {
		return curated.Errorf(NotWatchable, address)
	}

	w := watcher{
		address: address,
		dev:     d.Descriptor(),
		local:   local,
		values:  slices.Clone(values),
	}
	w.handle = wtc.dbg.tb.AddFilter(trace.NewValueFilter(w.dev.ID, p, local, w.values...))
	wtc.watches = append(wtc.watches, w)

	return nil
}

func (wtc *watches) drop(num int) error {
	if num < 0 || num >= len(wtc.watches) {
		return curated.Errorf(NoSuchWatch, num)
	}
	wtc.dbg.tb.RemoveFilter(wtc.watches[num].handle)
	wtc.watches = slices.Delete(wtc.watches, num, num+1)
	return nil
}

func (wtc *watches) clear() {
	for _, w := range wtc.watches {
		wtc.dbg.tb.RemoveFilter(w.handle)
	}
	wtc.watches = wtc.watches[:0]
}

func (wtc *watches) list() []string {
	l := make([]string, 0, len(wtc.watches))
	for i, w := range wtc.watches {
		l = append(l, fmt.Sprintf("% 2d: %s", i, w))
	}
	return l
}

// AddWatch installs a watch on the bus address. If values are given then the
// watch fires when the address is accessed and holds one of the values. If
// no values are given then any access fires the watch.
func (dbg *Debugger) AddWatch(address uint16, values ...uint8) error {
	return dbg.watches.add(address, values)
}

// DropWatch removes the watch with the number shown by ListWatches().
func (dbg *Debugger) DropWatch(num int) error {
	return dbg.watches.drop(num)
}

// ClearWatches removes all watches.
func (dbg *Debugger) ClearWatches() {
	dbg.watches.clear()
}

// ListWatches returns a description of every watch, in the order they were
// added.
func (dbg *Debugger) ListWatches() []string {
	return dbg.watches.list()
}
