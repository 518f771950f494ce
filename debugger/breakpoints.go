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

	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/hardware/cpu/isa"
	"github.com/pepsim/pepsim/trace"
)

// breaker halts execution when the program counter is changed to a specific
// value. in other words, the instruction at the address has not yet been
// executed when the breakpoint fires
type breaker struct {
	handle uint16
	pc     uint16
}

func (bk breaker) String() string {
	return fmt.Sprintf("PC->%#04x", bk.pc)
}

type breakpoints struct {
	dbg    *Debugger
	breaks []breaker
}

func newBreakpoints(dbg *Debugger) *breakpoints {
	return &breakpoints{dbg: dbg}
}

func (bp *breakpoints) find(handle uint16) (breaker, bool) {
	for _, b := range bp.breaks {
		if b.handle == handle {
			return b, true
		}
	}
	return breaker{}, false
}

func (bp *breakpoints) add(pc uint16) error {
	if slices.ContainsFunc(bp.breaks, func(b breaker) bool { return b.pc == pc }) {
		return curated.Errorf(BreakExists, pc)
	}

	regs := bp.dbg.sys.CPU().Regs()
	b := breaker{pc: pc}
	b.handle = bp.dbg.tb.AddFilter(trace.NewValueFilter(regs.Descriptor().ID, regs, isa.PC.Offset(), pc))
	bp.breaks = append(bp.breaks, b)

	return nil
}

func (bp *breakpoints) drop(num int) error {
	if num < 0 || num >= len(bp.breaks) {
		return curated.Errorf(NoSuchBreak, num)
	}
	bp.dbg.tb.RemoveFilter(bp.breaks[num].handle)
	bp.breaks = slices.Delete(bp.breaks, num, num+1)
	return nil
}

func (bp *breakpoints) clear() {
	for _, b := range bp.breaks {
		bp.dbg.tb.RemoveFilter(b.handle)
	}
	bp.breaks = bp.breaks[:0]
}

func (bp *breakpoints) list() []string {
	l := make([]string, 0, len(bp.breaks))
	for i, b := range bp.breaks {
		l = append(l, fmt.Sprintf("% 2d: %s", i, b))
	}
	return l
}

// AddBreakpoint halts execution before the instruction at the address is
// executed.
func (dbg *Debugger) AddBreakpoint(pc uint16) error {
	return dbg.breakpoints.add(pc)
}

// DropBreakpoint removes the breakpoint with the number shown by
// ListBreakpoints().
func (dbg *Debugger) DropBreakpoint(num int) error {
	return dbg.breakpoints.drop(num)
}

// ClearBreakpoints removes all breakpoints.
func (dbg *Debugger) ClearBreakpoints() {
	dbg.breakpoints.clear()
}

// ListBreakpoints returns a description of every breakpoint, in the order
// they were added.
func (dbg *Debugger) ListBreakpoints() []string {
	return dbg.breakpoints.list()
}
