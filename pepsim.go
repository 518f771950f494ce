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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/bradleyjkemp/memviz"
	"golang.org/x/sync/errgroup"

	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/debugger"
	"github.com/pepsim/pepsim/debugger/terminal/plainterm"
	"github.com/pepsim/pepsim/disassembly"
	"github.com/pepsim/pepsim/easyterm"
	"github.com/pepsim/pepsim/hardware"
	"github.com/pepsim/pepsim/hardware/cpu/isa"
	"github.com/pepsim/pepsim/hardware/memory/image"
	"github.com/pepsim/pepsim/hardware/tick"
	"github.com/pepsim/pepsim/logger"
	"github.com/pepsim/pepsim/modalflag"
	"github.com/pepsim/pepsim/performance"
	"github.com/pepsim/pepsim/prefs"
	"github.com/pepsim/pepsim/script"
	"github.com/pepsim/pepsim/statsview"
	"github.com/pepsim/pepsim/version"
)

// Sentinel error patterns.
const (
	Terminated     = "pepsim: execution terminated at %#04x"
	LimitReached   = "pepsim: tick limit (%d) reached"
	WrongArguments = "pepsim: %s mode requires %s"
)

// the number of ticks between flushes of the charOut device in RUN mode
const flushInterval = 4096

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])

	if err := launch(context.Background(), md); err != nil {
		fmt.Printf("* error in %s mode: %s\n", md, err)
		os.Exit(20)
	}
}

func launch(ctx context.Context, md *modalflag.Modes) error {
	md.NewMode()
	md.AddSubModes("RUN", "DEBUG", "SCRIPT", "DISASM", "PERFORMANCE", "MEMVIZ", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return nil
	case modalflag.ParseError:
		return err
	}

	switch md.Mode() {
	case "RUN":
		return run(ctx, md)
	case "DEBUG":
		return debug(ctx, md)
	case "SCRIPT":
		return scripted(ctx, md)
	case "DISASM":
		return disasm(md)
	case "PERFORMANCE":
		return perform(ctx, md)
	case "MEMVIZ":
		return memoryViz(md)
	case "VERSION":
		fmt.Fprintln(md.Output, version.String())
	}

	return nil
}

// flags common to all modes that build a machine
type common struct {
	arch      *string
	input     *string
	trace     *bool
	prefs     *string
	log       *bool
	statsview *bool
}

func addCommon(md *modalflag.Modes) common {
	c := common{
		arch:  md.AddString("arch", "", "architecture: pep9, pep10 (default from preferences)"),
		input: md.AddString("input", "", "file to buffer to the charIn port"),
		trace: md.AddBool("trace", false, "record every tick (always true in DEBUG and SCRIPT modes)"),
		prefs: md.AddString("prefs", "", "preference overrides. eg. \"debugger.runlimit::100\""),
		log:   md.AddBool("log", false, "echo log to stderr"),
	}
	if statsview.Available() {
		c.statsview = md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))
	}
	return c
}

// apply the common flags and build the machine from the object file
func (c common) machine(ctx context.Context, md *modalflag.Modes, objectFile string) (*debugger.Preferences, *hardware.System, error) {
	if *c.prefs != "" {
		prefs.PushCommandLineStack(*c.prefs)
		defer prefs.PopCommandLineStack()
	}

	p, err := debugger.NewPreferences()
	if err != nil {
		return nil, nil, err
	}

	// loading the preferences sets the echo state of the logger
	if *c.log {
		logger.SetEcho(os.Stderr, false)
	}

	m := machine{
		arch:       p.Arch(),
		objectFile: objectFile,
		inputFile:  *c.input,
		trace:      *c.trace || p.Trace.Get().(bool),
	}
	if *c.arch != "" {
		m.arch, err = isa.ParseArchitecture(*c.arch)
		if err != nil {
			return nil, nil, err
		}
	}

	if c.statsview != nil && *c.statsview {
		statsview.Launch(ctx, md.Output)
	}

	sys, err := m.build()
	if err != nil {
		return nil, nil, err
	}

	return p, sys, nil
}

func run(ctx context.Context, md *modalflag.Modes) error {
	md.NewMode()

	c := addCommon(md)
	limit := md.AddInt("limit", 0, "maximum number of ticks (0 for no limit)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 1 {
		return curated.Errorf(WrongArguments, md, "an object file")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	_, sys, err := c.machine(ctx, md, md.GetArg(0))
	if err != nil {
		return err
	}

	var et easyterm.Terminal
	if err := et.Initialise(os.Stdin, os.Stdout); err != nil {
		return err
	}
	defer et.CleanUp()

	// characters typed at an interactive terminal are sent to the program
	// immediately and are echoed by us and not by the terminal
	interactive := et.IsTerminal()
	if interactive {
		if err := et.CBreakMode(); err != nil {
			return err
		}
		defer et.CanonicalMode()
	}

	return execute(ctx, sys, os.Stdin, md.Output, interactive, *limit)
}

// execute the System until it halts or until the context is cancelled. input
// is forwarded to the charIn port as it arrives. the charOut port is copied
// to output
func execute(ctx context.Context, sys *hardware.System, input io.Reader, output io.Writer, echo bool, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// keyboard input is handed over to the run loop between ticks. the
	// channel is closed when there is no more input
	keys := make(chan []byte, 16)

	g.Go(func() error {
		defer close(keys)
		err := easyterm.Pump(ctx, easyterm.Keys(input), func(b []byte) {
			if echo {
				_, _ = output.Write(b)
			}
			select {
			case keys <- b:
			case <-ctx.Done():
			}
		})
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		defer cancel()

		charIn := sys.Input(image.CharIn)
		charOut := sys.Output(image.CharOut)

		var written int
		flush := func() error {
			if charOut == nil {
				return nil
			}
			b := charOut.Endpoint().Since(written)
			written += len(b)
			_, err := output.Write(b)
			return err
		}

		// nil once there will never be any more input
		pending := (<-chan []byte)(keys)

		accept := func(b []byte, ok bool) bool {
			if !ok {
				pending = nil
				return false
			}
			if charIn != nil {
				charIn.Endpoint().AppendValue(b...)
			}
			return true
		}

		for ticks := 1; ; ticks++ {
			select {
			case b, ok := <-pending:
				accept(b, ok)
			case <-ctx.Done():
				return flush()
			default:
			}

			sys.CPU().UpdateStartingPC()
			_, res := sys.Tick(tick.Jump)

			switch res.Error {
			case tick.Success:
			case tick.NoMMInput:
				if err := flush(); err != nil {
					return err
				}
				if pending == nil {
					logger.Log(logger.Allow, "pepsim", "program requires more input")
					return nil
				}
				select {
				case b, ok := <-pending:
					if !accept(b, ok) {
						logger.Log(logger.Allow, "pepsim", "program requires more input")
						return nil
					}
				case <-ctx.Done():
					return nil
				}

				// the tick was abandoned and will be retried
				ticks--
				continue
			default:
				if err := flush(); err != nil {
					return err
				}
				if sys.Halted() {
					return nil
				}
				return curated.Errorf(Terminated, sys.CPU().StartingPC())
			}

			if sys.Halted() {
				return flush()
			}

			if limit > 0 && ticks >= limit {
				if err := flush(); err != nil {
					return err
				}
				return curated.Errorf(LimitReached, limit)
			}

			if ticks%flushInterval == 0 {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	})

	return g.Wait()
}

func debug(ctx context.Context, md *modalflag.Modes) error {
	md.NewMode()

	c := addCommon(md)
	initScript := md.AddString("initscript", "", "debugger commands to run before reading from the terminal")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 1 {
		return curated.Errorf(WrongArguments, md, "an object file")
	}

	// the debugger handles interrupts itself, stopping a RUN command rather
	// than ending the program
	prf, sys, err := c.machine(ctx, md, md.GetArg(0))
	if err != nil {
		return err
	}

	dbg := debugger.NewDebugger(sys)
	dbg.SetRunLimit(prf.Limit())

	return dbg.Start(ctx, plainterm.NewPlainTerminal(nil, nil), *initScript)
}

func scripted(ctx context.Context, md *modalflag.Modes) error {
	md.NewMode()

	c := addCommon(md)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 2 {
		return curated.Errorf(WrongArguments, md, "an object file and a Lua script")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	_, sys, err := c.machine(ctx, md, md.GetArg(0))
	if err != nil {
		return err
	}

	scr := script.NewScript(debugger.NewDebugger(sys), md.Output)
	defer scr.Close()

	return scr.RunFile(ctx, md.GetArg(1))
}

func disasm(md *modalflag.Modes) error {
	md.NewMode()

	arch := md.AddString("arch", "pep10", "architecture: pep9, pep10")
	bytecode := md.AddBool("bytecode", false, "include bytecode in disassembly")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 1 {
		return curated.Errorf(WrongArguments, md, "an object file")
	}

	a, err := isa.ParseArchitecture(*arch)
	if err != nil {
		return err
	}

	code, err := readObjectCode(md.GetArg(0))
	if err != nil {
		return err
	}

	dsm := disassembly.FromObjectCode(a, code, 0x0000)
	return dsm.Write(md.Output, disassembly.WriteAttr{ByteCode: *bytecode})
}

func perform(ctx context.Context, md *modalflag.Modes) error {
	md.NewMode()

	c := addCommon(md)
	duration := md.AddString("duration", "", "run duration (default from preferences)")
	profile := md.AddString("profile", "none", "run performance check with profiling: CPU, MEM, TRACE (comma separated)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 1 {
		return curated.Errorf(WrongArguments, md, "an object file")
	}

	prf, err := performance.ParseProfile(*profile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	pref, sys, err := c.machine(ctx, md, md.GetArg(0))
	if err != nil {
		return err
	}

	dur := pref.Duration()
	if *duration != "" {
		dur, err = time.ParseDuration(*duration)
		if err != nil {
			return err
		}
	}

	return performance.Check(ctx, md.Output, prf, sys, dur)
}

func memoryViz(md *modalflag.Modes) error {
	md.NewMode()

	c := addCommon(md)
	out := md.AddString("out", "", "write dot file to named file rather than stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 1 {
		return curated.Errorf(WrongArguments, md, "an object file")
	}

	_, sys, err := c.machine(context.Background(), md, md.GetArg(0))
	if err != nil {
		return err
	}

	if *out == "" {
		memviz.Map(md.Output, sys)
		return nil
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	memviz.Map(f, sys)
	return f.Close()
}
