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

package trace

import (
	"fmt"

	"github.com/pepsim/pepsim/hardware/device"
)

// Level is the granularity of a fragment. Lower values are coarser.
type Level int

// List of valid Level values.
const (
	LevelFrame Level = iota
	LevelPacket
	LevelPayload
)

func (l Level) String() string {
	switch l {
	case LevelFrame:
		return "frame"
	case LevelPacket:
		return "packet"
	case LevelPayload:
		return "payload"
	}
	return "unknown level"
}

// Fragment is the unit of storage in the trace buffer. The set of fragment
// types is closed:
//
//	frame headers: Trace, Extender
//	packet headers: Clear, PureRead, ImpureRead, Write, Increment
//	payloads: Variable
type Fragment interface {
	Level() Level
	isFragment()
}

// Packet is implemented by every packet header fragment.
type Packet interface {
	Fragment
	Info() PacketInfo
}

// PacketInfo is the information common to every packet header. Path
// identifies the initiator of the access, for example the CPU or a DMA
// controller.
type PacketInfo struct {
	Path    uint16
	Device  device.ID
	Address uint32
}

// Info implements the Packet interface.
func (p PacketInfo) Info() PacketInfo {
	return p
}

func (p PacketInfo) String() string {
	return fmt.Sprintf("path=%d device=%d address=%#04x", p.Path, p.Device, p.Address)
}

// Trace is the header that starts the frame of a new tick. Length is the
// number of bytes to the next frame, or zero if the frame is still open.
// BackOffset is the number of bytes to the start of the previous frame.
type Trace struct {
	Length     uint16
	BackOffset uint16
}

// Extender is a frame header that continues the tick of the preceding frame.
// It is used when a tick produces more data than a single frame can address.
type Extender struct {
	Length     uint16
	BackOffset uint16
}

// Clear records that every byte in a device was set to Value. The payload is
// the XOR of the previous contents and the new contents.
type Clear struct {
	PacketInfo
	Value byte
}

// PureRead records a read that did not change the state of the device. It
// has no payload.
type PureRead struct {
	PacketInfo
	Length uint16
}

// ImpureRead records a read that changed the state of the device, for
// example by consuming a byte from an input port. The payload is the data
// that was read.
type ImpureRead struct {
	PacketInfo
}

// Write records a write to a device. For ordinary memory the payload is the
// XOR of the old and new values. For memory-mapped output the payload is the
// written data.
type Write struct {
	PacketInfo
}

// Increment records an in-place addition. The payload is the big-endian
// value that was added.
type Increment struct {
	PacketInfo
}

// Variable is a payload fragment. Payloads longer than MaxVariableBytes are
// divided into several fragments, each but the last with Continues set.
type Variable struct {
	Continues bool
	Bytes     []byte
}

// MaxVariableBytes is the maximum number of bytes in a single Variable
// fragment.
const MaxVariableBytes = 16

// Level implements the Fragment interface.
func (Trace) Level() Level { return LevelFrame }

// Level implements the Fragment interface.
func (Extender) Level() Level { return LevelFrame }

// Level implements the Fragment interface.
func (Clear) Level() Level { return LevelPacket }

// Level implements the Fragment interface.
func (PureRead) Level() Level { return LevelPacket }

// Level implements the Fragment interface.
func (ImpureRead) Level() Level { return LevelPacket }

// Level implements the Fragment interface.
func (Write) Level() Level { return LevelPacket }

// Level implements the Fragment interface.
func (Increment) Level() Level { return LevelPacket }

// Level implements the Fragment interface.
func (Variable) Level() Level { return LevelPayload }

func (Trace) isFragment()      {}
func (Extender) isFragment()   {}
func (Clear) isFragment()      {}
func (PureRead) isFragment()   {}
func (ImpureRead) isFragment() {}
func (Write) isFragment()      {}
func (Increment) isFragment()  {}
func (Variable) isFragment()   {}

// frameFields returns the length and back offset of a frame header.
func frameFields(f Fragment) (length uint16, backOffset uint16, ok bool) {
	switch f := f.(type) {
	case Trace:
		return f.Length, f.BackOffset, true
	case Extender:
		return f.Length, f.BackOffset, true
	}
	return 0, 0, false
}

func (f Trace) String() string {
	return fmt.Sprintf("trace: length=%d back=%d", f.Length, f.BackOffset)
}

func (f Extender) String() string {
	return fmt.Sprintf("extender: length=%d back=%d", f.Length, f.BackOffset)
}

func (f Clear) String() string {
	return fmt.Sprintf("clear: %s value=%#02x", f.PacketInfo, f.Value)
}

func (f PureRead) String() string {
	return fmt.Sprintf("pure read: %s length=%d", f.PacketInfo, f.Length)
}

func (f ImpureRead) String() string {
	return fmt.Sprintf("impure read: %s", f.PacketInfo)
}

func (f Write) String() string {
	return fmt.Sprintf("write: %s", f.PacketInfo)
}

func (f Increment) String() string {
	return fmt.Sprintf("increment: %s", f.PacketInfo)
}

func (f Variable) String() string {
	return fmt.Sprintf("variable: % 02x continues=%v", f.Bytes, f.Continues)
}
