/*
Copyright (c) 2019-2021 Andreas T Jonsson

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

package cpu

import (
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral"
	"github.com/andreas-jonsson/virtual8080/emulator/processor"
	"github.com/andreas-jonsson/virtual8080/emulator/processor/validator"
)

type CPU struct {
	processor.Registers
	instructionState

	// StackFault halts the processor when a push leaves memory.
	StackFault bool

	mem         *memory.Memory
	ports       processor.Ports
	peripherals []peripheral.Peripheral

	breakpoints  map[memory.Pointer]bool
	breakHandler processor.BreakHandler
	breakNext    bool

	trace  io.Writer
	shadow shadowStack

	interruptEnable bool
	instructions    uint64
	stats           processor.Stats

	halted    int32
	faultLock sync.Mutex
	fault     error
}

func NewCPU(mem *memory.Memory, peripherals []peripheral.Peripheral) (*CPU, []error) {
	if mem == nil {
		mem = memory.New(memory.MaxSize)
	}

	p := &CPU{
		StackFault:  true,
		mem:         mem,
		peripherals: peripherals,
		breakpoints: make(map[memory.Pointer]bool),
	}
	p.Flags.Store(0)
	mem.Indent = p.shadow.indent

	return p, p.installPeripherals()
}

func (p *CPU) installPeripherals() []error {
	var errs []error
	for _, d := range p.peripherals {
		if err := d.Install(p); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.Name(), err))
		}
	}
	return errs
}

func (p *CPU) Close() {
	for _, d := range p.peripherals {
		if cd, b := d.(peripheral.PeripheralCloser); b {
			if err := cd.Close(); err != nil {
				log.Print("Failed to close peripheral: ", err)
			}
		}
	}
}

func (p *CPU) Break() {
	p.Debug = true
}

func (p *CPU) GetStats() processor.Stats {
	s := p.stats
	p.stats = processor.Stats{}
	return s
}

// Reset sets the program counter, clears the flags and any recorded fault.
// Memory and the remaining registers are left untouched.
func (p *CPU) Reset(pc uint16) {
	p.PC = pc
	p.Flags.Store(0)
	p.interruptEnable = false
	p.breakNext = false
	p.shadow.reset()

	p.faultLock.Lock()
	p.fault = nil
	p.faultLock.Unlock()
	atomic.StoreInt32(&p.halted, 0)

	for _, d := range p.peripherals {
		d.Reset()
	}
}

func (p *CPU) GetRegisters() *processor.Registers {
	return &p.Registers
}

func (p *CPU) InstructionCount() uint64 {
	return p.instructions
}

// InstructionPC is the address of the most recently executed instruction.
func (p *CPU) InstructionPC() uint16 {
	return p.decodeAt
}

func (p *CPU) InterruptEnabled() bool {
	return p.interruptEnable
}

func (p *CPU) Memory() *memory.Memory {
	return p.mem
}

func (p *CPU) Symbols() *memory.Symbols {
	return p.mem.Symbols
}

func (p *CPU) AddSymbol(name string, addr memory.Pointer) {
	p.mem.Symbols.Add(name, addr)
}

func (p *CPU) InByte(port byte) (byte, error) {
	p.stats.RX++
	return p.ports.In(port, p)
}

func (p *CPU) OutByte(port byte, data byte) {
	p.stats.TX++
	p.ports.Out(port, data)
}

func (p *CPU) ReadByte(addr memory.Pointer) byte {
	v := p.mem.ReadByte(addr)
	validator.ReadByte(uint16(addr), v)
	return v
}

// WriteByte halts the processor if addr is read-only.
func (p *CPU) WriteByte(addr memory.Pointer, data byte) {
	p.writeByte(addr, data)
}

// writeByte reports false when the write was rejected and the processor halted.
func (p *CPU) writeByte(addr memory.Pointer, data byte) bool {
	if err := p.mem.WriteByte(addr, data); err != nil {
		p.Halt(fmt.Errorf("%w: %s at PC 0x%04X", err, p.mem.Symbols.Format(addr), p.decodeAt))
		return false
	}
	validator.WriteByte(uint16(addr), data)
	return true
}

func (p *CPU) LoadByte(addr memory.Pointer, data byte) error {
	return p.mem.LoadByte(addr, data)
}

func (p *CPU) SetReadOnlyEnd(addr memory.Pointer) {
	p.mem.SetReadOnlyEnd(int(addr))
}

func (p *CPU) InstallInputDevice(port byte, device processor.InputDevice) error {
	return p.ports.InstallInput(port, device)
}

func (p *CPU) InstallOutputDevice(port byte, device processor.OutputDevice) error {
	return p.ports.InstallOutput(port, device)
}

func (p *CPU) InstallMemoryDevice(device memory.MappedDevice, from, to int) error {
	return p.mem.InstallDevice(device, from, to)
}

func (p *CPU) RemoveMemoryDevice(device memory.MappedDevice) {
	p.mem.RemoveDevice(device)
}

// Halt stops the processor before the next instruction. The first recorded
// cause is kept. It is safe to call from any goroutine.
func (p *CPU) Halt(err error) {
	if err == nil {
		err = processor.ErrCPUHalt
	}

	p.faultLock.Lock()
	if p.fault == nil {
		p.fault = err
	}
	p.faultLock.Unlock()

	atomic.StoreInt32(&p.halted, 1)
}

func (p *CPU) Halted() bool {
	return atomic.LoadInt32(&p.halted) != 0
}

func (p *CPU) Err() error {
	p.faultLock.Lock()
	defer p.faultLock.Unlock()
	return p.fault
}

func (p *CPU) SetBreakpoint(addr memory.Pointer) {
	p.breakpoints[addr] = true
}

func (p *CPU) ClearBreakpoint(addr memory.Pointer) {
	delete(p.breakpoints, addr)
}

func (p *CPU) Breakpoints() []memory.Pointer {
	list := make([]memory.Pointer, 0, len(p.breakpoints))
	for addr := range p.breakpoints {
		list = append(list, addr)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

func (p *CPU) SetBreakHandler(h processor.BreakHandler) {
	p.breakHandler = h
}

// EnableTrace sends instruction and memory traces to w. A nil writer turns tracing off.
func (p *CPU) EnableTrace(w io.Writer) {
	p.trace = w
	p.mem.Trace = w
	p.mem.TraceReads = w != nil
	p.mem.TraceWrites = w != nil
}

func (p *CPU) DumpRegisters() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "   A x%02x    FLAGS:%s\n", p.A, p.Flags.String())
	for id := processor.PairBC; id <= processor.PairHL; id++ {
		p.dumpPair(&sb, id)
	}
	fmt.Fprintf(&sb, "  SP x%04x\n", p.SP)
	fmt.Fprintf(&sb, "  PC x%04x\n", p.PC)
	return sb.String()
}

// dumpPair prints the pair along with the symbol and printable string it points at.
func (p *CPU) dumpPair(sb *strings.Builder, id byte) {
	addr := p.Pair(id)
	name, _ := p.mem.Symbols.Name(memory.Pointer(addr))

	var s []byte
	for a := int(addr); a < p.mem.Size() && len(s) < 20; a++ {
		c := p.mem.Peek(memory.Pointer(a))
		if c == 0 || c >= 127 {
			break
		}
		s = append(s, c)
	}
	fmt.Fprintf(sb, "  %s x%02x:%02x   %s --> %q\n", processor.PairNames[id], byte(addr>>8), byte(addr), name, s)
}

// Run executes instructions until the processor halts or, when limit is
// non-zero, the instruction count reaches limit. It returns the halt cause
// or nil when the budget ran out.
func (p *CPU) Run(limit uint64) error {
	for !p.Halted() && (limit == 0 || p.instructions < limit) {
		pc := memory.Pointer(p.PC)
		if p.trace != nil {
			if name, ok := p.mem.Symbols.Name(pc); ok {
				fmt.Fprintf(p.trace, ":%s:\n", name)
			}
		}

		hit := p.breakpoints[pc]
		if (hit || p.breakNext) && p.trace != nil {
			io.WriteString(p.trace, p.DumpRegisters())
		}
		p.breakNext = hit

		if (hit || p.Debug) && p.breakHandler != nil {
			if err := p.breakHandler.Break(p); err != nil {
				p.Halt(err)
				break
			}
			if p.Halted() {
				break
			}
		}

		p.Step()
	}

	if p.trace != nil {
		fmt.Fprintf(p.trace, "STEPS %d\n", p.instructions)
	}
	return p.Err()
}
