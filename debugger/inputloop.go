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
	"errors"
	"fmt"
	"io"

	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/debugger/script"
	"github.com/pepsim/pepsim/debugger/terminal"
	"github.com/pepsim/pepsim/hardware/cpu/isa"
	"github.com/pepsim/pepsim/logger"
)

// SetRunLimit sets the number of ticks executed by a RUN command that does
// not specify a limit. Zero means no limit.
func (dbg *Debugger) SetRunLimit(limit int) {
	dbg.runLimit = max(0, limit)
}

// Start the interactive input loop. Commands are read from the terminal
// until the QUIT command, the end of input or until the context is
// cancelled.
//
// If initScript is not empty then the commands in the script file are run
// before reading commands from the terminal.
func (dbg *Debugger) Start(ctx context.Context, term terminal.Terminal, initScript string) error {
	if err := term.Initialise(); err != nil {
		return curated.Errorf(CommandError, err)
	}
	defer term.CleanUp()

	dbg.term = term
	defer func() {
		dbg.term = nil
	}()
	dbg.quit = false

	if initScript != "" {
		scr, err := script.RescribeScript(initScript)
		if err != nil {
			return err
		}
		logger.Logf(logger.Allow, "debugger", "running script %s", scr)
		if err := dbg.inputLoop(ctx, scr); err != nil {
			return err
		}
	}

	return dbg.inputLoop(ctx, term)
}

func (dbg *Debugger) inputLoop(ctx context.Context, inp terminal.Input) error {
	for !dbg.quit && ctx.Err() == nil {
		line, err := inp.TermRead(dbg.prompt())
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		// input from a script is echoed so that the output makes sense
		if !inp.IsInteractive() {
			dbg.printLine(terminal.StyleEcho, "%s", line)
		}

		if err := dbg.Execute(ctx, line); err != nil {
			dbg.printLine(terminal.StyleError, "%s", err)
		}
	}

	return nil
}

// the prompt shows the tick and the instruction that will be executed next
func (dbg *Debugger) prompt() terminal.Prompt {
	return terminal.Prompt{
		Type:    terminal.PromptTypeStep,
		Content: fmt.Sprintf("%d %s", dbg.sys.CurrentTick(), dbg.nextInstruction()),
		Undone:  dbg.rewind.Undone(),
	}
}

func (dbg *Debugger) nextInstruction() string {
	mc := dbg.sys.CPU()
	pc := mc.Register(isa.PC)

	b, err := dbg.Peek(pc, 1)
	if err != nil {
		return fmt.Sprintf("%#04x: unmapped", pc)
	}
	is := b[0]
	if mc.ISA().Lookup(is).Unary() {
		return fmt.Sprintf("%#04x: %s", pc, mc.ISA().Disassemble(is, 0))
	}

	b, err = dbg.Peek(pc, 3)
	if err != nil {
		return fmt.Sprintf("%#04x: %#02x", pc, is)
	}
	return fmt.Sprintf("%#04x: %s", pc, mc.ISA().Disassemble(is, uint16(b[1])<<8|uint16(b[2])))
}
