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

// Package script drives a debugger.Debugger from a Lua script.
//
// The following functions are available to the script in addition to the Lua
// base library:
//
//	tick([n])              run at most n ticks (default 1). returns the stop reason
//	run([limit])           run until stopped. a limit of zero means no limit
//	step_back([n])         undo n ticks (default 1). returns the number undone
//	step_forward([n])      redo n ticks (default 1). returns the number redone
//	tick_count()           the current tick
//	reset()                initialise the machine
//	peek(addr)             the byte at addr
//	peek_word(addr)        the big-endian word at addr
//	poke(addr, v, ...)     write bytes starting at addr
//	reg(name)              the value of a register (A, X, SP, PC, IS, OS)
//	flags()                the NZVC flags as a nibble
//	feed(port, text)       append text to an input port
//	output([port])         everything written to an output port (default charOut)
//	watch(addr, [v, ...])  break when addr is accessed (or takes one of the values)
//	break_at(pc)           break when the program counter reaches pc
//	events()               table of watch and breakpoint events since last call
//
// The stop reasons returned by tick() and run() are the strings of the
// debugger.StopReason type. For example, "halted" or "needs input".
//
// The Lua print() function writes to the output given to NewScript().
package script
