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

// Package hardware is the base package for the Pep/9 and Pep/10 emulation.
// It and its sub-packages contain everything required for a headless
// emulation.
//
// The System type is the root of the emulation. It is built from a list of
// memory regions and memory-mapped device declarations, usually supplied by
// an image.Image:
//
//	sys := hardware.FromImage(img)
//	sys.SetBuffer(trace.NewBuffer())
//	sys.Init()
//
//	for {
//		_, r := sys.Tick(tick.Increment)
//		if r.Error != tick.Success || r.Pause {
//			break
//		}
//	}
//
// Every tick is recorded as one frame in the trace buffer. A tick that could
// not complete, because an input port had no data or because of a fatal
// error, is removed from the trace and its changes undone before Tick()
// returns.
package hardware
