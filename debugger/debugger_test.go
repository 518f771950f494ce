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

package debugger_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/debugger"
	"github.com/pepsim/pepsim/debugger/terminal"
	"github.com/pepsim/pepsim/hardware"
	"github.com/pepsim/pepsim/hardware/cpu/isa"
	"github.com/pepsim/pepsim/hardware/memory/image"
	"github.com/pepsim/pepsim/logger"
	"github.com/pepsim/pepsim/test"
)

type mockTerm struct {
	inp    []string
	output []string
}

func (trm *mockTerm) Initialise() error {
	return nil
}

func (trm *mockTerm) CleanUp() {
}

func (trm *mockTerm) Silence(silenced bool) {
}

func (trm *mockTerm) TermRead(_ terminal.Prompt) (string, error) {
	if len(trm.inp) == 0 {
		return "", io.EOF
	}
	s := trm.inp[0]
	trm.inp = trm.inp[1:]
	return s, nil
}

func (trm *mockTerm) IsInteractive() bool {
	return true
}

func (trm *mockTerm) TermPrintLine(sty terminal.Style, s string) {
	if sty == terminal.StyleError {
		s = "* " + s
	}
	trm.output = append(trm.output, s)
}

func (trm *mockTerm) contains(s string) bool {
	for _, o := range trm.output {
		if strings.Contains(o, s) {
			return true
		}
	}
	return false
}

func assemble(t *testing.T, arch isa.Architecture, prog func(add func(op isa.Operator, mode isa.AddressingMode, os uint16))) []byte {
	t.Helper()

	def := isa.New(arch)
	var b []byte
	prog(func(op isa.Operator, mode isa.AddressingMode, os uint16) {
		is, ok := def.Encode(op, mode)
		test.DemandSuccess(t, ok)
		b = append(b, is)
		if !def.Lookup(is).Unary() {
			b = append(b, uint8(os>>8), uint8(os))
		}
	})
	return b
}

// echo input to output forever
func echo(t *testing.T, input string) *debugger.Debugger {
	t.Helper()

	img := image.Default(isa.Pep9)
	img.Load(0x0000, assemble(t, isa.Pep9, func(add func(isa.Operator, isa.AddressingMode, uint16)) {
		add(isa.Ldba, isa.Direct, 0xfff0)
		add(isa.Stba, isa.Direct, 0xfff1)
		add(isa.Br, isa.Immediate, 0x0000)
	}))
	img.Buffer(image.CharIn, []byte(input))

	sys := hardware.FromImage(img)
	sys.Init()
	return debugger.NewDebugger(sys)
}

// print "Hi" and stop
func hello(t *testing.T) *debugger.Debugger {
	t.Helper()

	img := image.Default(isa.Pep9)
	img.Load(0x0000, assemble(t, isa.Pep9, func(add func(isa.Operator, isa.AddressingMode, uint16)) {
		add(isa.Ldba, isa.Immediate, 'H')
		add(isa.Stba, isa.Direct, 0xfff1)
		add(isa.Ldba, isa.Immediate, 'i')
		add(isa.Stba, isa.Direct, 0xfff1)
		add(isa.Stop, isa.Implied, 0)
	}))

	sys := hardware.FromImage(img)
	sys.Init()
	return debugger.NewDebugger(sys)
}

func output(t *testing.T, dbg *debugger.Debugger) string {
	t.Helper()
	b, err := dbg.Output(image.CharOut)
	test.DemandSuccess(t, err)
	return string(b)
}

func TestBufferAttached(t *testing.T) {
	dbg := echo(t, "")
	test.ExpectInequality(t, dbg.System().Buffer(), nil)
}

func TestStepAndStepBack(t *testing.T) {
	dbg := echo(t, "abc")

	for range 6 {
		_, err := dbg.Step()
		test.DemandSuccess(t, err)
	}
	test.ExpectEquality(t, output(t, dbg), "ab")

	ok, err := dbg.StepBack()
	test.ExpectSuccess(t, ok)
	test.ExpectSuccess(t, err)
	ok, _ = dbg.StepBack()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, output(t, dbg), "a")
	test.ExpectEquality(t, dbg.System().CurrentTick(), 4)

	ok, _ = dbg.StepForward()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, output(t, dbg), "ab")

	// stepping forward with a new tick forgets the undone tick
	_, err = dbg.Step()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, dbg.Rewind().Undone(), 0)
	test.ExpectEquality(t, dbg.Rewind().Timeline().End, 6)
	ok, _ = dbg.StepForward()
	test.ExpectFailure(t, ok)
}

func TestRunToHalt(t *testing.T) {
	dbg := hello(t)

	reason, err := dbg.Run(context.Background(), 0)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, reason, debugger.Halted)
	test.ExpectEquality(t, output(t, dbg), "Hi")

	reason, _ = dbg.Run(context.Background(), 0)
	test.ExpectEquality(t, reason, debugger.Halted)

	// the machine comes back to life when the halting tick is undone
	ok, _ := dbg.StepBack()
	test.ExpectSuccess(t, ok)
	test.ExpectFailure(t, dbg.System().Halted())

	dbg.Reset()
	test.ExpectEquality(t, dbg.System().CurrentTick(), 0)
	test.ExpectEquality(t, output(t, dbg), "")
}

func TestRunNeedsInput(t *testing.T) {
	dbg := echo(t, "ab")

	reason, err := dbg.Run(context.Background(), 100)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, reason, debugger.NeedsInput)
	test.ExpectEquality(t, output(t, dbg), "ab")

	err = dbg.Feed(image.CharIn, []byte("c"))
	test.ExpectSuccess(t, err)
	reason, _ = dbg.Run(context.Background(), 100)
	test.ExpectEquality(t, reason, debugger.NeedsInput)
	test.ExpectEquality(t, output(t, dbg), "abc")

	err = dbg.Feed("nothing", []byte("c"))
	test.ExpectSuccess(t, curated.Is(err, debugger.UnknownInput))
}

func TestRunLimitAndCancel(t *testing.T) {
	dbg := echo(t, "abc")

	reason, _ := dbg.Run(context.Background(), 2)
	test.ExpectEquality(t, reason, debugger.LimitReached)
	test.ExpectEquality(t, dbg.System().CurrentTick(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reason, _ = dbg.Run(ctx, 0)
	test.ExpectEquality(t, reason, debugger.Cancelled)
	test.ExpectEquality(t, dbg.System().CurrentTick(), 2)
}

func TestWatch(t *testing.T) {
	dbg := echo(t, "abc")

	err := dbg.AddWatch(0xfff1, 'b')
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(dbg.ListWatches()), 1)

	err = dbg.AddWatch(0xfff1, 'b')
	test.ExpectSuccess(t, curated.Is(err, debugger.WatchExists))

	reason, _ := dbg.Run(context.Background(), 100)
	test.ExpectEquality(t, reason, debugger.Break)
	test.ExpectEquality(t, output(t, dbg), "ab")
	test.ExpectEquality(t, dbg.System().CurrentTick(), 5)

	ev := dbg.Events()
	test.ExpectEquality(t, len(ev), 1)
	test.ExpectSuccess(t, strings.HasPrefix(ev[0], "watch 0xfff1"))

	// events are forgotten once collected
	test.ExpectEquality(t, len(dbg.Events()), 0)

	test.ExpectSuccess(t, dbg.DropWatch(0))
	test.ExpectSuccess(t, curated.Is(dbg.DropWatch(0), debugger.NoSuchWatch))

	reason, _ = dbg.Run(context.Background(), 100)
	test.ExpectEquality(t, reason, debugger.NeedsInput)
}

func TestWatchMemory(t *testing.T) {
	dbg := echo(t, "abc")

	// any access to the first instruction
	err := dbg.AddWatch(0x0000)
	test.DemandSuccess(t, err)

	reason, _ := dbg.Run(context.Background(), 100)
	test.ExpectEquality(t, reason, debugger.Break)
	test.ExpectEquality(t, dbg.System().CurrentTick(), 1)

	dbg.ClearWatches()
	test.ExpectEquality(t, len(dbg.ListWatches()), 0)
}

func TestBreakpoint(t *testing.T) {
	dbg := echo(t, "abc")

	err := dbg.AddBreakpoint(0x0003)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, curated.Is(dbg.AddBreakpoint(0x0003), debugger.BreakExists))

	reason, _ := dbg.Run(context.Background(), 100)
	test.ExpectEquality(t, reason, debugger.Break)
	test.ExpectEquality(t, dbg.System().CurrentTick(), 1)
	test.ExpectEquality(t, dbg.System().CPU().Register(isa.PC), 0x0003)

	ev := dbg.Events()
	test.ExpectEquality(t, len(ev), 1)
	test.ExpectEquality(t, ev[0], "break PC->0x0003")

	reason, _ = dbg.Run(context.Background(), 100)
	test.ExpectEquality(t, reason, debugger.Break)
	test.ExpectEquality(t, dbg.System().CurrentTick(), 4)
	test.ExpectEquality(t, output(t, dbg), "a")

	test.ExpectSuccess(t, dbg.DropBreakpoint(0))
	test.ExpectEquality(t, len(dbg.ListBreakpoints()), 0)
}

func TestPeekAndPoke(t *testing.T) {
	dbg := echo(t, "abc")

	def := isa.New(isa.Pep9)
	ldba, _ := def.Encode(isa.Ldba, isa.Direct)
	stba, _ := def.Encode(isa.Stba, isa.Direct)

	b, err := dbg.Peek(0x0000, 3)
	test.ExpectSuccess(t, err)
	test.ExpectBytes(t, b, []byte{ldba, 0xff, 0xf0})

	// change the output port of the STBA instruction
	err = dbg.Poke(0x0004, []byte{0x01, 0x00})
	test.ExpectSuccess(t, err)
	b, _ = dbg.Peek(0x0003, 3)
	test.ExpectBytes(t, b, []byte{stba, 0x01, 0x00})

	_, err = dbg.Step()
	test.ExpectSuccess(t, err)
	_, err = dbg.Step()
	test.ExpectSuccess(t, err)
	b, _ = dbg.Peek(0x0100, 1)
	test.ExpectBytes(t, b, []byte{'a'})
	test.ExpectEquality(t, output(t, dbg), "")
}

func TestPokeForgetsHistory(t *testing.T) {
	img := image.Default(isa.Pep9)
	img.Load(0x0000, assemble(t, isa.Pep9, func(add func(isa.Operator, isa.AddressingMode, uint16)) {
		add(isa.Ldwa, isa.Immediate, 0x1234)
		add(isa.Stwa, isa.Direct, 0x0100)
		add(isa.Ldwa, isa.Immediate, 0x5678)
		add(isa.Stwa, isa.Direct, 0x0102)
		add(isa.Stop, isa.Implied, 0)
	}))
	sys := hardware.FromImage(img)
	sys.Init()
	dbg := debugger.NewDebugger(sys)

	for range 2 {
		_, err := dbg.Step()
		test.DemandSuccess(t, err)
	}
	b, _ := dbg.Peek(0x0100, 2)
	test.ExpectBytes(t, b, []byte{0x12, 0x34})

	rw, err := test.NewRingWriter(256)
	test.DemandSuccess(t, err)
	logger.SetEcho(rw, false)
	defer logger.SetEcho(nil, false)

	// the poked value survives an attempt to step back
	test.ExpectSuccess(t, dbg.Poke(0x0100, []byte{0xaa, 0xbb}))
	test.ExpectSuccess(t, strings.Contains(rw.String(), "forgetting history at tick 2"))
	var ok bool
	ok, err = dbg.StepBack()
	test.ExpectSuccess(t, err)
	test.ExpectFailure(t, ok)
	b, _ = dbg.Peek(0x0100, 2)
	test.ExpectBytes(t, b, []byte{0xaa, 0xbb})
	test.ExpectEquality(t, dbg.Rewind().Timeline().Start, 2)
	test.ExpectEquality(t, dbg.System().CurrentTick(), 2)

	// ticks after the poke are recorded as normal
	for range 2 {
		_, err := dbg.Step()
		test.DemandSuccess(t, err)
	}
	ok, err = dbg.StepBack()
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, ok)
	b, _ = dbg.Peek(0x0100, 4)
	test.ExpectBytes(t, b, []byte{0xaa, 0xbb, 0x00, 0x00})

	// undone ticks are committed before the poke
	test.ExpectEquality(t, dbg.Rewind().Undone(), 1)
	test.ExpectSuccess(t, dbg.Poke(0x0104, []byte{0x01}))
	test.ExpectEquality(t, dbg.Rewind().Undone(), 0)
	ok, _ = dbg.StepForward()
	test.ExpectFailure(t, ok)
	test.ExpectEquality(t, dbg.System().CurrentTick(), 3)
	test.ExpectEquality(t, dbg.System().CPU().Register(isa.PC), 0x0009)
}

func TestInputLoop(t *testing.T) {
	dbg := echo(t, "abc")
	trm := &mockTerm{
		inp: []string{
			"STEP 2",
			"REGS",
			"BACK",
			"WATCH $fff1",
			"LIST",
			"RUN",
			"foo",
			"HELP SEARCH",
			"QUIT",
			"STEP",
		},
	}

	err := dbg.Start(context.Background(), trm, "")
	test.ExpectSuccess(t, err)

	test.ExpectSuccess(t, trm.contains("0x0000: LDBA 0xFFF0,d"))
	test.ExpectSuccess(t, trm.contains("A=0x0061"))
	test.ExpectSuccess(t, trm.contains("watch  0: 0xfff1"))
	test.ExpectSuccess(t, trm.contains("watch 0xfff1"))
	test.ExpectSuccess(t, trm.contains("* debugger: unknown command (FOO)"))
	test.ExpectSuccess(t, trm.contains("SEARCH <address|register>"))

	// the STEP after QUIT is never executed
	test.ExpectEquality(t, dbg.System().CurrentTick(), 2)
}
