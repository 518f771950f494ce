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

// Package mmio implements the memory-mapped input and output devices.
//
// Input and Output devices are backed by an Endpoint, a byte history with a
// read cursor. Producers (the keyboard, the loader) append to the endpoint
// of an Input and the running program consumes bytes by reading from the
// device. Every byte written to an Output is appended to its endpoint where
// it can be observed by the user interface.
//
// What an Input does when the program reads beyond the end of the available
// data depends on its memory.FailPolicy. Interactive inputs raise NeedsMMI so
// that execution can be paused until more input is supplied. Disk inputs
// yield a default value so that the loader can detect the end of the data.
//
// The IDE type is a simple disk controller that copies sectors between its
// disk and bus memory.
//
// Endpoints are not safe for concurrent use. Bytes should only be appended
// between ticks.
package mmio
