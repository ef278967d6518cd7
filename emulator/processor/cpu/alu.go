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

import "github.com/andreas-jonsson/virtual8080/emulator/processor"

const (
	aluADD = iota
	aluADC
	aluSUB
	aluSBB
	aluANA
	aluXRA
	aluORA
	aluCMP
)

func (p *CPU) updateFlagsSZP(res int) {
	v := byte(res)
	p.SetBool(processor.Sign, v&0x80 != 0)
	p.SetBool(processor.Zero, v == 0)
	p.SetBool(processor.Parity, parityLookup[v])
}

// setFlagsNotC takes the unmasked result and low nibble result.
// Carry is left alone.
func (p *CPU) setFlagsNotC(res, res4 int) {
	p.updateFlagsSZP(res)
	p.SetBool(processor.AuxCarry, res4 < 0 || res4 >= 0x10)
}

func (p *CPU) setAllFlags(res, res4 int) {
	p.setFlagsNotC(res, res4)
	p.SetBool(processor.Carry, res < 0 || res >= 0x100)
}

// setMostFlags leaves Aux-Carry unchanged.
func (p *CPU) setMostFlags(res int) {
	p.updateFlagsSZP(res)
	p.SetBool(processor.Carry, res < 0 || res >= 0x100)
}

func (p *CPU) carryIn() int {
	if p.GetBool(processor.Carry) {
		return 1
	}
	return 0
}

func (p *CPU) invertFlag(f processor.Flags) {
	p.SetBool(f, !p.GetBool(f))
}

// alu applies one of the eight accumulator operations selected by op.
func (p *CPU) alu(op byte, value byte) {
	a, v := int(p.A), int(value)

	var cin int
	if op == aluADC || op == aluSBB {
		cin = p.carryIn()
	}

	switch op {
	case aluADD, aluADC:
		res := a + v + cin
		p.setAllFlags(res, a&0xF+v&0xF+cin)
		p.A = byte(res)
	case aluSUB, aluSBB, aluCMP:
		res := a - (v + cin)
		p.setAllFlags(res, a&0xF-(v&0xF+cin))
		p.invertFlag(processor.AuxCarry)
		if op != aluCMP {
			p.A = byte(res)
		}
	case aluANA:
		p.A &= value
		p.setMostFlags(int(p.A))
	case aluXRA:
		p.A ^= value
		p.setAllFlags(int(p.A), 0)
	case aluORA:
		p.A |= value
		p.setMostFlags(int(p.A))
	}
}

func (p *CPU) inr(v byte) byte {
	res := int(v) + 1
	p.setFlagsNotC(res, int(v&0xF)+1)
	return byte(res)
}

func (p *CPU) dcr(v byte) byte {
	res := int(v) - 1
	p.setFlagsNotC(res, int(v&0xF)-1)
	p.invertFlag(processor.AuxCarry)
	return byte(res)
}

// dad adds a pair to HL as two chained byte additions. Only Carry is affected.
func (p *CPU) dad(v uint16) {
	l := int(p.L) + int(v&0xFF)
	h := int(p.H) + int(v>>8) + l>>8
	p.L, p.H = byte(l), byte(h)
	p.SetBool(processor.Carry, h >= 0x100)
}
