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

package script

import (
	"context"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/debugger"
	"github.com/pepsim/pepsim/hardware/cpu/isa"
	"github.com/pepsim/pepsim/hardware/memory/image"
	"github.com/pepsim/pepsim/logger"
)

// Sentinel error patterns.
const (
	ScriptError = "script: %v"
)

// Script is a Lua interpreter bound to a Debugger.
type Script struct {
	dbg    *debugger.Debugger
	L      *lua.LState
	output io.Writer
}

// NewScript is the preferred method of initialisation for the Script type.
// Output from the Lua print() function is written to output. If output is nil
// then printed text is discarded.
func NewScript(dbg *debugger.Debugger, output io.Writer) *Script {
	if output == nil {
		output = io.Discard
	}

	scr := &Script{
		dbg:    dbg,
		L:      lua.NewState(),
		output: output,
	}

	for name, fn := range map[string]lua.LGFunction{
		"print":        scr.print,
		"tick":         scr.tick,
		"run":          scr.run,
		"step_back":    scr.stepBack,
		"step_forward": scr.stepForward,
		"tick_count":   scr.tickCount,
		"reset":        scr.reset,
		"peek":         scr.peek,
		"peek_word":    scr.peekWord,
		"poke":         scr.poke,
		"reg":          scr.reg,
		"flags":        scr.flags,
		"feed":         scr.feed,
		"output":       scr.outputPort,
		"watch":        scr.watch,
		"break_at":     scr.breakAt,
		"events":       scr.events,
	} {
		scr.L.SetGlobal(name, scr.L.NewFunction(fn))
	}

	return scr
}

// Close the Lua interpreter. The Script cannot be used after Close().
func (scr *Script) Close() {
	scr.L.Close()
}

// RunFile executes the named Lua file. Execution is abandoned if the context
// is cancelled.
func (scr *Script) RunFile(ctx context.Context, path string) error {
	return scr.do(ctx, func() error {
		return scr.L.DoFile(path)
	})
}

// RunString executes the Lua source. Execution is abandoned if the context is
// cancelled.
func (scr *Script) RunString(ctx context.Context, src string) error {
	return scr.do(ctx, func() error {
		return scr.L.DoString(src)
	})
}

func (scr *Script) do(ctx context.Context, f func() error) error {
	scr.L.SetContext(ctx)
	defer scr.L.RemoveContext()

	if err := f(); err != nil {
		logger.Logf(logger.Allow, "script", "%v", err)
		return curated.Errorf(ScriptError, err)
	}
	return nil
}

// the context the script is running under. the debugger is given this
// context so that a long run() is interrupted along with the script
func (scr *Script) context() context.Context {
	if ctx := scr.L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (scr *Script) address(n int) uint16 {
	v := scr.L.CheckInt(n)
	if v < 0 || v > 0xffff {
		scr.L.ArgError(n, "address out of range")
	}
	return uint16(v)
}

func (scr *Script) byteValue(n int) uint8 {
	v := scr.L.CheckInt(n)
	if v < 0 || v > 0xff {
		scr.L.ArgError(n, "byte value out of range")
	}
	return uint8(v)
}

func (scr *Script) print(L *lua.LState) int {
	s := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		s = append(s, L.ToStringMeta(L.Get(i)).String())
	}
	io.WriteString(scr.output, strings.Join(s, "\t"))
	io.WriteString(scr.output, "\n")
	return 0
}

func (scr *Script) runFor(L *lua.LState, limit int) int {
	reason, err := scr.dbg.Run(scr.context(), limit)
	if err != nil {
		L.RaiseError("%v", err)
	}
	L.Push(lua.LString(reason.String()))
	return 1
}

func (scr *Script) tick(L *lua.LState) int {
	n := L.OptInt(1, 1)
	if n < 1 {
		L.ArgError(1, "tick count must be positive")
	}
	return scr.runFor(L, n)
}

func (scr *Script) run(L *lua.LState) int {
	return scr.runFor(L, L.OptInt(1, 0))
}

func (scr *Script) repeat(L *lua.LState, f func() (bool, error)) int {
	n := L.OptInt(1, 1)
	var done int
	for ; done < n; done++ {
		ok, err := f()
		if err != nil {
			L.RaiseError("%v", err)
		}
		if !ok {
			break
		}
	}
	L.Push(lua.LNumber(done))
	return 1
}

func (scr *Script) stepBack(L *lua.LState) int {
	return scr.repeat(L, scr.dbg.StepBack)
}

func (scr *Script) stepForward(L *lua.LState) int {
	return scr.repeat(L, scr.dbg.StepForward)
}

func (scr *Script) tickCount(L *lua.LState) int {
	L.Push(lua.LNumber(scr.dbg.System().CurrentTick()))
	return 1
}

func (scr *Script) reset(L *lua.LState) int {
	scr.dbg.Reset()
	return 0
}

func (scr *Script) peekN(L *lua.LState, n int) []byte {
	b, err := scr.dbg.Peek(scr.address(1), n)
	if err != nil {
		L.RaiseError("%v", err)
	}
	return b
}

func (scr *Script) peek(L *lua.LState) int {
	b := scr.peekN(L, 1)
	L.Push(lua.LNumber(b[0]))
	return 1
}

func (scr *Script) peekWord(L *lua.LState) int {
	b := scr.peekN(L, 2)
	L.Push(lua.LNumber(uint16(b[0])<<8 | uint16(b[1])))
	return 1
}

func (scr *Script) poke(L *lua.LState) int {
	address := scr.address(1)
	if L.GetTop() < 2 {
		L.ArgError(2, "value expected")
	}
	data := make([]byte, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		data = append(data, scr.byteValue(i))
	}
	if err := scr.dbg.Poke(address, data); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (scr *Script) reg(L *lua.LState) int {
	name := L.CheckString(1)
	r, ok := isa.ParseRegister(name)
	if !ok {
		L.ArgError(1, "unknown register "+name)
	}
	L.Push(lua.LNumber(scr.dbg.System().CPU().Register(r)))
	return 1
}

func (scr *Script) flags(L *lua.LState) int {
	L.Push(lua.LNumber(scr.dbg.System().CPU().Flags()))
	return 1
}

func (scr *Script) feed(L *lua.LState) int {
	port := L.CheckString(1)
	text := L.CheckString(2)
	if err := scr.dbg.Feed(port, []byte(text)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (scr *Script) outputPort(L *lua.LState) int {
	b, err := scr.dbg.Output(L.OptString(1, image.CharOut))
	if err != nil {
		L.RaiseError("%v", err)
	}
	L.Push(lua.LString(b))
	return 1
}

func (scr *Script) watch(L *lua.LState) int {
	address := scr.address(1)
	var values []uint8
	for i := 2; i <= L.GetTop(); i++ {
		values = append(values, scr.byteValue(i))
	}
	if err := scr.dbg.AddWatch(address, values...); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (scr *Script) breakAt(L *lua.LState) int {
	if err := scr.dbg.AddBreakpoint(scr.address(1)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (scr *Script) events(L *lua.LState) int {
	tbl := L.NewTable()
	for _, ev := range scr.dbg.Events() {
		tbl.Append(lua.LString(ev))
	}
	L.Push(tbl)
	return 1
}
