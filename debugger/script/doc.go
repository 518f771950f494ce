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

// Package script allows the debugger to replay a file of debugger commands.
// In this package we refer to this as rescribing.
//
// Scripts are written by hand, one command per line. Comment lines begin
// with the # symbol and blank lines are ignored. Invalid commands are
// replayed like any other and the error message is printed to the terminal.
//
// The Rescribe type satisfies the terminal.Input interface and is used as a
// source for the debugger package's input loop.
package script
