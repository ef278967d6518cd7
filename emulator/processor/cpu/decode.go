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

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/andreas-jonsson/virtual8080/emulator/processor"
	"github.com/andreas-jonsson/virtual8080/emulator/processor/validator"
)

type instructionState struct {
	opcode   byte
	decodeAt uint16
}

func (p *CPU) readOpcodeStream() byte {
	v := p.mem.Peek(memory.Pointer(p.PC))
	p.PC++
	return v
}

func (p *CPU) readOpcodeImm16() uint16 {
	lo := p.readOpcodeStream()
	return uint16(p.readOpcodeStream())<<8 | uint16(lo)
}

// push16 stores the low byte at SP and the high byte at SP+1 after
// decrementing SP by two.
func (p *CPU) push16(v uint16) {
	p.SP -= 2
	if p.StackFault && int(p.SP)+1 >= p.mem.Size() {
		p.Halt(fmt.Errorf("%w: push to 0x%04X at PC 0x%04X", processor.ErrStackFault, p.SP, p.decodeAt))
		return
	}
	if p.writeStack(p.SP, byte(v)) {
		p.writeStack(p.SP+1, byte(v>>8))
	}
}

func (p *CPU) writeStack(addr uint16, data byte) bool {
	if err := p.mem.WriteStack(memory.Pointer(addr), data); err != nil {
		p.Halt(fmt.Errorf("%w: stack at 0x%04X, PC 0x%04X", err, addr, p.decodeAt))
		return false
	}
	validator.WriteByte(addr, data)
	return true
}

func (p *CPU) pop8() byte {
	if p.StackFault && int(p.SP) >= p.mem.Size() {
		p.Halt(fmt.Errorf("%w: pop from 0x%04X at PC 0x%04X", processor.ErrStackFault, p.SP, p.decodeAt))
		return 0
	}
	v := p.mem.Peek(memory.Pointer(p.SP))
	validator.ReadByte(p.SP, v)
	p.SP++
	return v
}

func (p *CPU) pop16() uint16 {
	lo := p.pop8()
	if p.Halted() {
		return 0
	}
	return uint16(p.pop8())<<8 | uint16(lo)
}

func (p *CPU) call(addr uint16) {
	p.push16(p.PC)
	if p.Halted() {
		return
	}
	p.shadow.call(p.SP, p.PC)
	p.PC = addr
}

func (p *CPU) ret() {
	sp := p.SP
	addr := p.pop16()
	if p.Halted() {
		return
	}
	p.PC = addr
	p.shadow.ret(sp, addr)
}

func (p *CPU) invalidOpcode() {
	p.Halt(fmt.Errorf("%w: 0x%02X at PC 0x%04X", processor.ErrUnimplemented, p.opcode, p.decodeAt))
}

// Step executes one instruction. It returns the halt cause once the
// processor has stopped.
func (p *CPU) Step() error {
	if p.Halted() {
		return p.Err()
	}

	p.instructions++
	p.stats.NumInstructions++

	var (
		text, indent string
		before       = p.Registers
	)
	if p.trace != nil {
		text, _ = Disassemble(p.mem, memory.Pointer(p.PC))
		indent = p.shadow.indent()
	}

	p.decodeAt = p.PC
	p.opcode = p.readOpcodeStream()

	validator.Begin(p.opcode, before)
	p.execute()
	if p.Halted() {
		validator.Discard()
	} else {
		validator.End(p.Registers)
	}

	if p.trace != nil {
		fmt.Fprintf(p.trace, "%06x %04x %02x %s %s [A=x%02x F=%s]\n",
			p.instructions, p.decodeAt, p.opcode, indent, text, p.A, p.Flags.String())
	}

	for _, d := range p.peripherals {
		if err := d.Step(1); err != nil {
			p.Halt(err)
		}
	}
	return p.Err()
}
