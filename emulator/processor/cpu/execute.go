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
)

var conditionFlags = [4]processor.Flags{processor.Zero, processor.Carry, processor.Parity, processor.Sign}

// condition decodes bits 3-5 as {NZ,Z,NC,C,PO,PE,P,M}.
func (p *CPU) condition(op byte) bool {
	cc := (op >> 3) & 7
	return p.GetBool(conditionFlags[cc>>1]) == (cc&1 == 1)
}

func (p *CPU) execute() {
	op := p.opcode
	switch op >> 6 {
	case 0:
		p.executeFamily00(op)
	case 1:
		if op == 0x76 { // HLT
			p.Halt(processor.ErrCPUHalt)
			return
		}
		dstLocation(op).writeByte(p, srcLocation(op).readByte(p))
	case 2:
		p.alu((op>>3)&7, srcLocation(op).readByte(p))
	case 3:
		p.executeFamily11(op)
	}
}

func (p *CPU) executeFamily00(op byte) {
	switch op & 7 {
	case 0: // NOP
	case 1:
		pair := pairOf(op)
		if op&0x08 == 0 { // LXI
			pair.writeWord(p, p.readOpcodeImm16())
		} else { // DAD
			p.dad(pair.readWord(p))
		}
	case 2:
		p.loadStore(op)
	case 3:
		pair := pairOf(op)
		if op&0x08 == 0 { // INX
			pair.writeWord(p, pair.readWord(p)+1)
		} else { // DCX
			pair.writeWord(p, pair.readWord(p)-1)
		}
	case 4: // INR
		loc := dstLocation(op)
		loc.writeByte(p, p.inr(loc.readByte(p)))
	case 5: // DCR
		loc := dstLocation(op)
		loc.writeByte(p, p.dcr(loc.readByte(p)))
	case 6: // MVI
		dstLocation(op).writeByte(p, p.readOpcodeStream())
	case 7:
		switch op {
		case 0x07: // RLC
			p.A = p.rotRLC(p.A)
		case 0x0F: // RRC
			p.A = p.rotRRC(p.A)
		case 0x17: // RAL
			p.A = p.rotRAL(p.A)
		case 0x1F: // RAR
			p.A = p.rotRAR(p.A)
		case 0x27: // DAA
			p.daa()
		case 0x2F: // CMA
			p.A = ^p.A
		case 0x37: // STC
			p.Set(processor.Carry)
		case 0x3F: // CMC
			p.invertFlag(processor.Carry)
		}
	}
}

// loadStore covers STAX/LDAX and the direct addressed SHLD/LHLD/STA/LDA.
func (p *CPU) loadStore(op byte) {
	if op < 0x20 {
		addr := p.BC()
		if op&0x10 != 0 {
			addr = p.DE()
		}
		if op&0x08 != 0 { // LDAX
			p.A = p.ReadByte(memory.Pointer(addr))
		} else { // STAX
			p.WriteByte(memory.Pointer(addr), p.A)
		}
		return
	}

	addr := memory.Pointer(p.readOpcodeImm16())
	switch op {
	case 0x22: // SHLD
		if p.writeByte(addr, p.L) {
			p.writeByte(addr+1, p.H)
		}
	case 0x2A: // LHLD
		p.L = p.ReadByte(addr)
		p.H = p.ReadByte(addr + 1)
	case 0x32: // STA
		p.WriteByte(addr, p.A)
	case 0x3A: // LDA
		p.A = p.ReadByte(addr)
	}
}

func (p *CPU) executeFamily11(op byte) {
	switch op & 7 {
	case 0: // Rcc
		if p.condition(op) {
			p.ret()
		}
	case 1:
		switch op {
		case 0xC9: // RET
			p.ret()
		case 0xE9: // PCHL
			p.PC = p.HL()
			p.shadow.ret(p.SP, p.PC)
		case 0xF9: // SPHL
			p.SP = p.HL()
		case 0xD9:
			p.invalidOpcode()
		default: // POP
			v := p.pop16()
			if !p.Halted() {
				pairOf(op).setStackWord(p, v)
			}
		}
	case 2: // Jcc
		addr := p.readOpcodeImm16()
		if p.condition(op) {
			p.PC = addr
		}
	case 3:
		p.executeMisc(op)
	case 4: // Ccc
		addr := p.readOpcodeImm16()
		if p.condition(op) {
			p.call(addr)
		}
	case 5:
		if op&0x08 != 0 { // CALL and its aliases
			p.call(p.readOpcodeImm16())
			return
		}
		p.push16(pairOf(op).stackWord(p)) // PUSH
	case 6: // ADI, ACI, SUI, SBI, ANI, XRI, ORI, CPI
		p.alu((op>>3)&7, p.readOpcodeStream())
	case 7: // RST
		p.call(uint16(op & 0x38))
	}
}

func (p *CPU) executeMisc(op byte) {
	switch op {
	case 0xC3, 0xCB: // JMP
		p.PC = p.readOpcodeImm16()
	case 0xD3: // OUT
		p.OutByte(p.readOpcodeStream(), p.A)
	case 0xDB: // IN
		port := p.readOpcodeStream()
		v, err := p.InByte(port)
		if err != nil {
			p.Halt(fmt.Errorf("%w: port 0x%02X", err, port))
			return
		}
		p.A = v
	case 0xE3: // XTHL
		l := p.ReadByte(memory.Pointer(p.SP))
		h := p.ReadByte(memory.Pointer(p.SP + 1))
		if !p.writeByte(memory.Pointer(p.SP), p.L) || !p.writeByte(memory.Pointer(p.SP+1), p.H) {
			return
		}
		p.L, p.H = l, h
	case 0xEB: // XCHG
		p.D, p.H = p.H, p.D
		p.E, p.L = p.L, p.E
	case 0xF3: // DI
		p.interruptEnable = false
	case 0xFB: // EI
		p.interruptEnable = true
	}
}
