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

package hardware

import (
	"fmt"
	"maps"
	"slices"

	"github.com/pepsim/pepsim/bits"
	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/hardware/cpu"
	"github.com/pepsim/pepsim/hardware/cpu/isa"
	"github.com/pepsim/pepsim/hardware/device"
	"github.com/pepsim/pepsim/hardware/memory"
	"github.com/pepsim/pepsim/hardware/memory/image"
	"github.com/pepsim/pepsim/hardware/memory/mmio"
	"github.com/pepsim/pepsim/hardware/tick"
	"github.com/pepsim/pepsim/logger"
	"github.com/pepsim/pepsim/trace"
)

// Sentinel error patterns.
const (
	UnknownIOType = "system: unknown io type (%v)"
	UnknownPort   = "system: no input port named %s"
)

// the number of sectors on the disk attached to an IDE controller
const ideSectors = 128

type reloadEntry struct {
	target *memory.Dense
	base   uint16
	data   []byte
}

// System is the container for the emulated components of the machine.
type System struct {
	arch isa.Architecture

	ids     device.Counter
	devices *device.Table

	cpu *cpu.CPU
	bus *memory.Bus

	dense []*memory.Dense
	mmi   map[string]*mmio.Input
	mmo   map[string]*mmio.Output
	ide   map[string]*mmio.IDE

	// the power off port. may not be on the bus
	pwrOff *mmio.Output

	reload []reloadEntry

	bootFlagAddress uint16
	hasBootFlags    bool

	scheduler *tick.SimpleScheduler
	tick      tick.Type

	tb        *trace.Buffer
	replayers map[device.ID]trace.Replayer
}

// NewSystem creates a new System and everything described by the regions
// and the MMIO declarations. Panics if the architecture or an MMIO type is
// not supported. Both are programming errors.
func NewSystem(arch isa.Architecture, regions []image.Region, mmios []image.MMIO) *System {
	sys := &System{
		arch:      arch,
		devices:   device.NewTable(),
		mmi:       make(map[string]*mmio.Input),
		mmo:       make(map[string]*mmio.Output),
		ide:       make(map[string]*mmio.IDE),
		scheduler: tick.NewSimpleScheduler(),
		replayers: make(map[device.ID]trace.Replayer),
	}

	sys.cpu = cpu.NewCPU(arch, device.Descriptor{ID: sys.NextID(), BaseName: "cpu", FullName: "/cpu"}, sys)
	sys.AddDevice(sys.cpu.Descriptor())
	sys.AddDevice(sys.cpu.Regs().Descriptor())
	sys.AddDevice(sys.cpu.CSRs().Descriptor())
	sys.replayers[sys.cpu.Regs().Descriptor().ID] = sys.cpu.Regs()
	sys.replayers[sys.cpu.CSRs().Descriptor().ID] = sys.cpu.CSRs()

	sys.bus = memory.NewBus(device.Descriptor{ID: sys.NextID(), BaseName: "bus", FullName: "/bus"}, memory.SpanOfSize(0x10000))
	sys.AddDevice(sys.bus.Descriptor())

	for _, r := range regions {
		id := sys.NextID()
		desc := device.Descriptor{
			ID:       id,
			BaseName: fmt.Sprintf("dense%d", id),
			FullName: fmt.Sprintf("/bus/dense%d", id),
		}
		sys.AddDevice(desc)

		mem := memory.NewDense(desc, int(r.MaxOffset)-int(r.MinOffset)+1)
		sys.dense = append(sys.dense, mem)
		sys.replayers[id] = mem

		var target memory.Target = mem
		if !r.Writable {
			target = memory.NewReadOnly(mem, false)
		}
		sys.bus.PushFrontTarget(memory.AddressSpan{MinOffset: r.MinOffset, MaxOffset: r.MaxOffset}, target)

		for _, seg := range r.Segments {
			e := reloadEntry{
				target: mem,
				base:   seg.Address - r.MinOffset,
				data:   seg.Data,
			}
			sys.reload = append(sys.reload, e)
			mem.Write(e.base, e.data, memory.Internal)
		}
	}

	for _, m := range mmios {
		span := memory.SpanOfSize(int(m.MaxOffset) - int(m.MinOffset) + 1)
		at := memory.AddressSpan{MinOffset: m.MinOffset, MaxOffset: m.MaxOffset}

		switch m.Type {
		case image.Input:
			desc := sys.descriptor("mmi", m.Name)
			in := mmio.NewInput(desc, span, memory.YieldDefaultValue)
			switch m.Name {
			case image.CharIn:
				in.SetFailPolicy(memory.RaiseError)
			case image.DiskIn:
				// the loader depends on reading the sentinel when the disk
				// is exhausted
				in.SetFailPolicy(memory.YieldDefaultValue)
				in.Clear('z')
			}
			sys.bus.PushFrontTarget(at, in)
			sys.mmi[m.Name] = in
			sys.replayers[desc.ID] = in

		case image.Output:
			desc := sys.descriptor("mmo", m.Name)
			out := mmio.NewOutput(desc, span)
			sys.bus.PushFrontTarget(at, out)
			sys.mmo[m.Name] = out
			sys.replayers[desc.ID] = out

		case image.IDE:
			desc := sys.descriptor("ide", m.Name)
			disk := device.Descriptor{
				ID:       sys.NextID(),
				BaseName: desc.BaseName + "-disk",
				FullName: desc.FullName + "/disk",
			}
			sys.AddDevice(disk)
			ide := mmio.NewIDE(desc, disk, ideSectors)
			ide.SetTarget(sys.bus)
			sys.bus.PushFrontTarget(at, ide)
			sys.ide[m.Name] = ide
			sys.replayers[desc.ID] = ide
			sys.replayers[disk.ID] = ide

		default:
			panic(curated.Errorf(UnknownIOType, m.Type))
		}
	}

	// the Pep/9 STOP instruction needs a power off port even if the program
	// cannot write to it directly
	if arch == isa.Pep9 {
		if _, ok := sys.mmo[image.PwrOff]; !ok {
			desc := sys.descriptor("mmo", image.PwrOff)
			out := mmio.NewOutput(desc, memory.AddressSpan{})
			sys.mmo[image.PwrOff] = out
			sys.replayers[desc.ID] = out
		}
		sys.cpu.SetPwrOff(sys.mmo[image.PwrOff])
	}
	sys.pwrOff = sys.mmo[image.PwrOff]

	sys.cpu.SetTarget(sys.bus)
	sys.cpu.SetSource(tick.NewClock(1))
	sys.scheduler.Schedule(sys.cpu, 1)

	return sys
}

// FromImage creates a new System from an image. Buffered data is added to
// the input ports.
func FromImage(img image.Image) *System {
	sys := NewSystem(img.Arch, img.Regions, img.MMIO)

	for _, b := range img.Buffers {
		if err := sys.Feed(b.Port, b.Data); err != nil {
			logger.Log(logger.Allow, "system", err)
		}
	}

	if img.Arch == isa.Pep10 {
		if in, ok := sys.mmi[image.DiskIn]; ok {
			in.Endpoint().AppendValue(' ', 'z', 'z')
		}
	}

	if img.HasBootFlags {
		sys.SetBootFlagAddress(img.BootFlagAddress)
	}

	return sys
}

func (sys *System) descriptor(prefix string, name string) device.Descriptor {
	desc := device.Descriptor{
		ID:       sys.NextID(),
		BaseName: fmt.Sprintf("%s-%s", prefix, name),
		FullName: fmt.Sprintf("/bus/%s-%s", prefix, name),
	}
	sys.AddDevice(desc)
	return desc
}

func (sys *System) String() string {
	return fmt.Sprintf("%s tick=%d %s", sys.arch, sys.tick, sys.cpu)
}

// Architecture returns the architecture of the CPU.
func (sys *System) Architecture() isa.Architecture {
	return sys.arch
}

// NextID implements the device.IDGenerator interface. IDs are never reused.
func (sys *System) NextID() device.ID {
	return sys.ids.NextID()
}

// AddDevice adds a descriptor to the device table. Panics if the ID is
// already in use.
func (sys *System) AddDevice(desc device.Descriptor) {
	if err := sys.devices.Add(desc); err != nil {
		panic(err)
	}
}

// Descriptor returns the descriptor of the device with the ID.
func (sys *System) Descriptor(id device.ID) (device.Descriptor, bool) {
	return sys.devices.Lookup(id)
}

// Devices returns every device descriptor, ordered by ID.
func (sys *System) Devices() []device.Descriptor {
	return sys.devices.All()
}

// DeviceName returns the full name of the device or the ID as a string if
// the device is not known.
func (sys *System) DeviceName(id device.ID) string {
	if d, ok := sys.devices.Lookup(id); ok {
		return d.FullName
	}
	return fmt.Sprintf("device %d", id)
}

// CPU returns the CPU.
func (sys *System) CPU() *cpu.CPU {
	return sys.cpu
}

// Bus returns the bus.
func (sys *System) Bus() *memory.Bus {
	return sys.bus
}

// Scheduler returns the scheduler used by Tick().
func (sys *System) Scheduler() *tick.SimpleScheduler {
	return sys.scheduler
}

// Inputs returns the names of the input ports, in alphabetical order.
func (sys *System) Inputs() []string {
	return slices.Sorted(maps.Keys(sys.mmi))
}

// Input returns the named input port or nil.
func (sys *System) Input(name string) *mmio.Input {
	return sys.mmi[name]
}

// Outputs returns the names of the output ports, in alphabetical order.
func (sys *System) Outputs() []string {
	return slices.Sorted(maps.Keys(sys.mmo))
}

// Output returns the named output port or nil.
func (sys *System) Output(name string) *mmio.Output {
	return sys.mmo[name]
}

// IDEControllers returns the names of the IDE controllers, in alphabetical
// order.
func (sys *System) IDEControllers() []string {
	return slices.Sorted(maps.Keys(sys.ide))
}

// IDEController returns the named IDE controller or nil.
func (sys *System) IDEController(name string) *mmio.IDE {
	return sys.ide[name]
}

// Feed appends data to the named input port. It must not be called while a
// tick is in progress.
func (sys *System) Feed(name string, data []byte) error {
	in, ok := sys.mmi[name]
	if !ok {
		return curated.Errorf(UnknownPort, name)
	}
	in.Endpoint().AppendValue(data...)
	return nil
}

// Replayer implements the trace.ReplayerLookup function type.
func (sys *System) Replayer(id device.ID) (trace.Replayer, bool) {
	r, ok := sys.replayers[id]
	return r, ok
}

// SetBuffer attaches the trace buffer to every device and enables recording
// for every device that can be replayed.
func (sys *System) SetBuffer(tb *trace.Buffer) {
	sys.tb = tb
	sys.cpu.SetBuffer(tb)
	for _, d := range sys.dense {
		d.SetBuffer(tb)
	}
	for _, in := range sys.mmi {
		in.SetBuffer(tb)
	}
	for _, out := range sys.mmo {
		out.SetBuffer(tb)
	}
	for _, ide := range sys.ide {
		ide.SetBuffer(tb)
	}

	if tb == nil {
		return
	}

	for _, id := range slices.Sorted(maps.Keys(sys.replayers)) {
		tb.Trace(id, true)
	}
}

// Buffer returns the attached trace buffer. May be nil.
func (sys *System) Buffer() *trace.Buffer {
	return sys.tb
}

// DoReloadEntries restores the initial contents of every memory region. Read
// only regions are restored too.
func (sys *System) DoReloadEntries() {
	for _, e := range sys.reload {
		e.target.Write(e.base, e.data, memory.Internal)
	}
}

// SetBootFlagAddress sets the location of the boot flags word.
func (sys *System) SetBootFlagAddress(address uint16) {
	sys.bootFlagAddress = address
	sys.hasBootFlags = true
}

// BootFlagAddress returns the location of the boot flags word. Returns false
// if there is no boot flags word.
func (sys *System) BootFlagAddress() (uint16, bool) {
	return sys.bootFlagAddress, sys.hasBootFlags
}

// SetBootFlags writes the boot flags word. The word is always big-endian.
func (sys *System) SetBootFlags(enableLoader bool, enableDispatcher bool) {
	if !sys.hasBootFlags {
		return
	}
	var v uint16
	if enableLoader {
		v |= 0x01
	}
	if enableDispatcher {
		v |= 0x02
	}
	b := make([]byte, 2)
	bits.PutUint16(b, v, bits.BigEndian)
	sys.bus.Write(sys.bootFlagAddress, b, memory.Internal)
}

// BootFlags returns the value of the boot flags word. Returns zero if there
// is no boot flags word.
func (sys *System) BootFlags() uint16 {
	if !sys.hasBootFlags {
		return 0
	}
	v, _ := memory.ReadUint16(sys.bus, sys.bootFlagAddress, memory.Internal)
	return v
}

// Init puts the machine into its starting state. Memory is reloaded, the
// registers are cleared and the PC and SP are taken from the memory vectors
// of the architecture. Input ports are rewound to the start of their data
// and output ports are emptied. The trace buffer is cleared.
func (sys *System) Init() {
	sys.DoReloadEntries()
	for _, in := range sys.mmi {
		in.Endpoint().Rewind()
	}
	for _, out := range sys.mmo {
		out.Endpoint().Reset()
	}
	if sys.pwrOff != nil {
		sys.pwrOff.Clear(0)
	}

	sys.cpu.Reset()

	def := sys.cpu.ISA()
	vector := func(v isa.Vector) uint16 {
		a, _ := def.Vector(v)
		w, _ := memory.ReadUint16(sys.bus, a, memory.Internal)
		return w
	}

	switch sys.arch {
	case isa.Pep9:
		sys.cpu.SetRegister(isa.PC, 0x0000)
		sys.cpu.SetRegister(isa.SP, vector(isa.UserStackPtr))
	case isa.Pep10:
		sys.cpu.SetRegister(isa.PC, vector(isa.Dispatcher))
		sys.cpu.SetRegister(isa.SP, vector(isa.SystemStackPtr))
	}
	sys.cpu.UpdateStartingPC()

	sys.tick = 0
	sys.scheduler.Schedule(sys.cpu, 1)

	if sys.tb != nil {
		sys.tb.Clear()
	}

	logger.Logf(logger.Allow, "system", "init %s: PC=%#04x SP=%#04x", sys.arch, sys.cpu.Register(isa.PC), sys.cpu.Register(isa.SP))
}

// CurrentTick returns the number of ticks that have completed.
func (sys *System) CurrentTick() tick.Type {
	return sys.tick
}

// Halted returns true if the machine has been powered off.
func (sys *System) Halted() bool {
	return sys.cpu.Status() == cpu.Halted
}

// Tick advances the machine by one tick. Returns the new tick number and the
// result of clocking the CPU.
//
// A tick that fails with NoMMInput or Terminate is undone and removed from
// the trace. The tick number is only advanced on success.
func (sys *System) Tick(mode tick.Mode) (tick.Type, tick.Result) {
	t, due := sys.scheduler.Next(sys.tick, mode)
	if len(due) == 0 {
		return sys.tick, tick.Result{Error: tick.Terminate}
	}

	start := -1
	if sys.tb != nil {
		start = sys.tb.End()
		sys.tb.EmitFrameStart()
	}

	var res tick.Result
	for _, r := range due {
		res = r.Clock(t)
		sys.scheduler.Update(r, t, res)
		if res.Error != tick.Success {
			break
		}
	}

	if res.Error != tick.Success {
		sys.unwind(start)
		return sys.tick, res
	}

	if sys.pwrOff != nil && sys.pwrOff.Endpoint().Len() > 0 {
		sys.cpu.SetStatus(cpu.Halted)
	}
	if sys.cpu.Status() == cpu.Halted {
		res.Pause = true
		logger.Logf(logger.Allow, "system", "halted on tick %d", t)
	}

	if sys.tb != nil {
		sys.tb.UpdateFrameHeader()
	}
	sys.tick = t

	return sys.tick, res
}

// undo and forget the partial frame starting at loc
func (sys *System) unwind(loc int) {
	if sys.tb == nil || loc < 0 {
		return
	}
	sys.tb.UpdateFrameHeader()
	if err := sys.tb.ReplayTick(loc, trace.Backward, sys.Replayer); err != nil {
		logger.Log(logger.Allow, "system", err)
	}
	if err := sys.tb.DropLast(); err != nil {
		logger.Log(logger.Allow, "system", err)
	}
}

// SetTick changes the tick counter after the machine state has been moved
// backwards or forwards by replaying the trace. The CPU is rescheduled and
// a halted CPU is revived if the power off port is no longer written.
func (sys *System) SetTick(t tick.Type) {
	sys.tick = t

	if sys.cpu.Status() == cpu.Halted && (sys.pwrOff == nil || sys.pwrOff.Endpoint().Len() == 0) {
		sys.cpu.SetStatus(cpu.Ok)
	} else if sys.pwrOff != nil && sys.pwrOff.Endpoint().Len() > 0 {
		sys.cpu.SetStatus(cpu.Halted)
	}

	if sys.cpu.Status() == cpu.Ok {
		sys.scheduler.Schedule(sys.cpu, t+1)
	}
}
