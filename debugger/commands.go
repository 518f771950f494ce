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
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/debugger/commandline"
	"github.com/pepsim/pepsim/debugger/terminal"
	"github.com/pepsim/pepsim/hardware/cpu/isa"
	"github.com/pepsim/pepsim/hardware/memory/image"
	"github.com/pepsim/pepsim/hardware/tick"
	"github.com/pepsim/pepsim/logger"
)

// Sentinel error patterns.
const (
	UnknownCommand = "debugger: unknown command (%s)"
	CommandError   = "debugger: %s"
)

type command struct {
	name string
	args string
	help string
}

var commands = []command{
	{"HELP", "[command]", "list commands or describe a command"},
	{"STEP", "[n]", "execute the next n ticks (default 1)"},
	{"BACK", "[n]", "undo the previous n ticks (default 1)"},
	{"FORWARD", "[n]", "redo the next n undone ticks (default 1)"},
	{"GOTO", "<tick>", "move backwards or forwards to the tick"},
	{"RUN", "[limit]", "execute until stopped. interrupt with ctrl-c"},
	{"REGS", "", "show the CPU registers and flags"},
	{"PEEK", "<address> [n]", "show n bytes of memory (default 1)"},
	{"POKE", "<address> <value>...", "change memory. pokes cannot be undone"},
	{"WATCH", "<address> [value]...", "break on access to the address, optionally only for the values"},
	{"BREAK", "<address>", "break before the instruction at the address is executed"},
	{"DROP", "WATCH|BREAK <n>", "remove a watch or a breakpoint"},
	{"CLEAR", "WATCHES|BREAKS", "remove all watches or all breakpoints"},
	{"LIST", "", "list watches and breakpoints"},
	{"FEED", "<port> <text>", "append the text and a newline to an input port"},
	{"OUTPUT", "[port]", "show everything written to an output port"},
	{"PORTS", "", "list input and output ports"},
	{"DEVICES", "", "list every device in the machine"},
	{"TIMELINE", "", "show the range of ticks that can be reached"},
	{"SEARCH", "<address|register>", "find the most recent tick that wrote to an address or register"},
	{"RESET", "", "initialise the machine"},
	{"LOG", "[n]", "show the last n log entries (default 10)"},
	{"QUIT", "", "leave the debugger"},
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// Execute parses and runs a single debugger command. Output is sent to the
// terminal given to Start(). Without a terminal the command is run but
// nothing is printed.
func (dbg *Debugger) Execute(ctx context.Context, input string) error {
	tokens := commandline.TokeniseInput(input)

	cmd, ok := tokens.GetCommand()
	if !ok {
		return nil
	}

	switch cmd {
	case "HELP":
		return dbg.cmdHelp(tokens)
	case "STEP":
		return dbg.cmdStep(tokens)
	case "BACK":
		return dbg.cmdBack(tokens, false)
	case "FORWARD":
		return dbg.cmdBack(tokens, true)
	case "GOTO":
		return dbg.cmdGoto(tokens)
	case "RUN":
		return dbg.cmdRun(ctx, tokens)
	case "REGS":
		dbg.printRegisters()
	case "PEEK":
		return dbg.cmdPeek(tokens)
	case "POKE":
		return dbg.cmdPoke(tokens)
	case "WATCH":
		return dbg.cmdWatch(tokens)
	case "BREAK":
		v, err := tokens.GetUint("address", 16)
		if err != nil {
			return err
		}
		return dbg.AddBreakpoint(uint16(v))
	case "DROP":
		return dbg.cmdDrop(tokens)
	case "CLEAR":
		return dbg.cmdClear(tokens)
	case "LIST":
		dbg.cmdList()
	case "FEED":
		return dbg.cmdFeed(tokens)
	case "OUTPUT":
		return dbg.cmdOutput(tokens)
	case "PORTS":
		dbg.printLine(terminal.StyleFeedback, "inputs: %s", strings.Join(dbg.sys.Inputs(), " "))
		dbg.printLine(terminal.StyleFeedback, "outputs: %s", strings.Join(dbg.sys.Outputs(), " "))
	case "DEVICES":
		for _, d := range dbg.sys.Devices() {
			dbg.printLine(terminal.StyleFeedback, "%s", d)
		}
	case "TIMELINE":
		dbg.printLine(terminal.StyleFeedback, "%s", dbg.rewind.Timeline())
	case "SEARCH":
		return dbg.cmdSearch(tokens)
	case "RESET":
		dbg.Reset()
	case "LOG":
		n, err := tokens.GetOptionalUint("count", 16, 10)
		if err != nil {
			return err
		}
		logger.Tail(dbg.printStyle(terminal.StyleFeedbackSecondary), int(n))
	case "QUIT":
		dbg.quit = true
	default:
		return curated.Errorf(UnknownCommand, cmd)
	}

	return nil
}

func (dbg *Debugger) cmdHelp(tokens *commandline.Tokens) error {
	if name, ok := tokens.GetCommand(); ok {
		c, ok := findCommand(name)
		if !ok {
			return curated.Errorf(UnknownCommand, name)
		}
		dbg.printRaw(terminal.StyleHelp, strings.TrimSpace(fmt.Sprintf("%s %s", c.name, c.args)))
		dbg.printRaw(terminal.StyleHelp, "  "+c.help)
		return nil
	}

	for _, c := range commands {
		dbg.printRaw(terminal.StyleHelp, fmt.Sprintf("%-9s %s", c.name, c.help))
	}
	return nil
}

func (dbg *Debugger) cmdStep(tokens *commandline.Tokens) error {
	n, err := tokens.GetOptionalUint("count", 32, 1)
	if err != nil {
		return err
	}

	for range n {
		res, broke, err := dbg.step()
		if err != nil {
			return err
		}
		if !dbg.reportTick(res) {
			break
		}
		if broke {
			dbg.printEvents()
			break
		}
		if res.Pause {
			break
		}
	}

	return nil
}

func (dbg *Debugger) cmdBack(tokens *commandline.Tokens, forward bool) error {
	n, err := tokens.GetOptionalUint("count", 32, 1)
	if err != nil {
		return err
	}

	for range n {
		var ok bool
		if forward {
			ok, err = dbg.StepForward()
		} else {
			ok, err = dbg.StepBack()
		}
		if err != nil {
			return err
		}
		if !ok {
			dbg.printLine(terminal.StyleFeedback, "no more ticks")
			break
		}
	}
	dbg.printOutput()

	return nil
}

func (dbg *Debugger) cmdGoto(tokens *commandline.Tokens) error {
	v, err := tokens.GetUint("tick", 64)
	if err != nil {
		return err
	}
	t, err := dbg.GotoTick(tick.Type(v))
	if err != nil {
		return err
	}
	if t != tick.Type(v) {
		dbg.printLine(terminal.StyleFeedback, "stopped at tick %d", t)
	}
	dbg.printOutput()
	return nil
}

func (dbg *Debugger) cmdRun(ctx context.Context, tokens *commandline.Tokens) error {
	limit, err := tokens.GetOptionalUint("limit", 32, uint64(dbg.runLimit))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	start := dbg.sys.CurrentTick()
	reason, err := dbg.Run(ctx, int(limit))
	if err != nil {
		return err
	}

	dbg.printOutput()
	switch reason {
	case Break:
		dbg.printEvents()
	case NeedsInput:
		dbg.printLine(terminal.StyleHalt, "needs input. use FEED to supply more")
	case Terminated:
		dbg.printLine(terminal.StyleHalt, "cpu %s", dbg.sys.CPU().Status())
	default:
		dbg.printLine(terminal.StyleHalt, "%s after %d ticks", reason, dbg.sys.CurrentTick()-start)
	}

	return nil
}

func (dbg *Debugger) cmdPeek(tokens *commandline.Tokens) error {
	a, err := tokens.GetUint("address", 16)
	if err != nil {
		return err
	}
	n, err := tokens.GetOptionalUint("count", 16, 1)
	if err != nil {
		return err
	}

	address := uint16(a)
	for n > 0 {
		l := min(n, 8)
		b, err := dbg.Peek(address, int(l))
		if err != nil {
			return err
		}
		dbg.printLine(terminal.StyleFeedback, "%#04x: % 02x", address, b)
		address += uint16(l)
		n -= l
	}

	return nil
}

func (dbg *Debugger) cmdPoke(tokens *commandline.Tokens) error {
	a, err := tokens.GetUint("address", 16)
	if err != nil {
		return err
	}

	var data []byte
	for !tokens.IsEnd() {
		v, err := tokens.GetUint("value", 8)
		if err != nil {
			return err
		}
		data = append(data, uint8(v))
	}
	if len(data) == 0 {
		return curated.Errorf(commandline.MissingArgument, "value")
	}

	return dbg.Poke(uint16(a), data)
}

func (dbg *Debugger) cmdWatch(tokens *commandline.Tokens) error {
	a, err := tokens.GetUint("address", 16)
	if err != nil {
		return err
	}

	var values []uint8
	for !tokens.IsEnd() {
		v, err := tokens.GetUint("value", 8)
		if err != nil {
			return err
		}
		values = append(values, uint8(v))
	}

	return dbg.AddWatch(uint16(a), values...)
}

func (dbg *Debugger) cmdDrop(tokens *commandline.Tokens) error {
	what, ok := tokens.GetCommand()
	if !ok {
		return curated.Errorf(commandline.MissingArgument, "WATCH or BREAK")
	}
	n, err := tokens.GetUint("number", 16)
	if err != nil {
		return err
	}

	switch what {
	case "WATCH":
		return dbg.DropWatch(int(n))
	case "BREAK":
		return dbg.DropBreakpoint(int(n))
	}
	return curated.Errorf(CommandError, fmt.Sprintf("cannot drop %s", what))
}

func (dbg *Debugger) cmdClear(tokens *commandline.Tokens) error {
	what, ok := tokens.GetCommand()
	if !ok {
		return curated.Errorf(commandline.MissingArgument, "WATCHES or BREAKS")
	}

	switch what {
	case "WATCHES":
		dbg.ClearWatches()
	case "BREAKS":
		dbg.ClearBreakpoints()
	default:
		return curated.Errorf(CommandError, fmt.Sprintf("cannot clear %s", what))
	}
	return nil
}

func (dbg *Debugger) cmdList() {
	w := dbg.ListWatches()
	b := dbg.ListBreakpoints()
	if len(w) == 0 && len(b) == 0 {
		dbg.printLine(terminal.StyleFeedback, "no watches or breakpoints")
		return
	}
	for _, s := range w {
		dbg.printLine(terminal.StyleFeedback, "watch %s", s)
	}
	for _, s := range b {
		dbg.printLine(terminal.StyleFeedback, "break %s", s)
	}
}

func (dbg *Debugger) cmdFeed(tokens *commandline.Tokens) error {
	port, ok := tokens.Get()
	if !ok {
		return curated.Errorf(commandline.MissingArgument, "port")
	}
	return dbg.Feed(port, []byte(tokens.Remainder()+"\n"))
}

func (dbg *Debugger) cmdOutput(tokens *commandline.Tokens) error {
	port, ok := tokens.Get()
	if !ok {
		port = image.CharOut
	}
	b, err := dbg.Output(port)
	if err != nil {
		return err
	}
	dbg.printStyle(terminal.StyleMachineOutput).Write(b)
	return nil
}

func (dbg *Debugger) cmdSearch(tokens *commandline.Tokens) error {
	s, ok := tokens.Get()
	if !ok {
		return curated.Errorf(commandline.MissingArgument, "address or register")
	}

	var t tick.Type
	var found bool
	if r, ok := isa.ParseRegister(s); ok {
		t, found = dbg.rewind.SearchRegisterWrite(r)
	} else {
		tokens.Unget()
		a, err := tokens.GetUint("address", 16)
		if err != nil {
			return err
		}
		t, found = dbg.rewind.SearchMemoryWrite(uint16(a))
	}

	if !found {
		dbg.printLine(terminal.StyleFeedback, "no write to %s found", s)
		return nil
	}
	dbg.printLine(terminal.StyleFeedback, "%s written on tick %d", s, t)
	return nil
}

// print the instruction executed by the most recent tick, any output and
// the reason for the tick failing. returns false if the tick failed
func (dbg *Debugger) reportTick(res tick.Result) bool {
	mc := dbg.sys.CPU()

	switch res.Error {
	case tick.NoMMInput:
		dbg.printLine(terminal.StyleHalt, "needs input. use FEED to supply more")
		return false
	case tick.Terminate:
		if dbg.sys.Halted() {
			dbg.printLine(terminal.StyleHalt, "machine is halted. use RESET to start again")
		} else {
			dbg.printLine(terminal.StyleHalt, "cpu %s", mc.Status())
		}
		return false
	}

	is := uint8(mc.Register(isa.IS))
	dbg.printLine(terminal.StyleInstructionStep, "%#04x: %s", mc.StartingPC(), mc.ISA().Disassemble(is, mc.Register(isa.OS)))
	dbg.printOutput()

	if dbg.sys.Halted() {
		dbg.printLine(terminal.StyleHalt, "halted")
	}

	return true
}

func (dbg *Debugger) printEvents() {
	for _, e := range dbg.Events() {
		dbg.printLine(terminal.StyleHalt, "%s", e)
	}
}

// print anything written to the output ports since the last call
func (dbg *Debugger) printOutput() {
	for _, name := range dbg.sys.Outputs() {
		if name == image.PwrOff {
			continue
		}

		ep := dbg.sys.Output(name).Endpoint()
		seen := min(dbg.printSeen[name], ep.Len())
		if ep.Len() > seen {
			dbg.printStyle(terminal.StyleMachineOutput).Write(ep.Since(seen))
		}
		dbg.printSeen[name] = ep.Len()
	}
}

func (dbg *Debugger) printRegisters() {
	mc := dbg.sys.CPU()
	s := strings.Builder{}
	for _, r := range []isa.Register{isa.A, isa.X, isa.SP, isa.PC, isa.IS, isa.OS} {
		s.WriteString(fmt.Sprintf("%s=%#04x ", r, mc.Register(r)))
	}
	s.WriteString(fmt.Sprintf("NZVC=%04b", mc.Flags()))
	dbg.printLine(terminal.StyleFeedback, "%s", s.String())
}
