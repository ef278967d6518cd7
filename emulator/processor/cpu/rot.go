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

func (p *CPU) rotRLC(v byte) byte {
	s := v & 0x80
	p.SetBool(processor.Carry, s != 0)
	return v<<1 | s>>7
}

func (p *CPU) rotRRC(v byte) byte {
	c := v & 1
	p.SetBool(processor.Carry, c != 0)
	return v>>1 | c<<7
}

func (p *CPU) rotRAL(v byte) byte {
	s := v & 0x80
	v <<= 1
	if p.GetBool(processor.Carry) {
		v |= 1
	}
	p.SetBool(processor.Carry, s != 0)
	return v
}

func (p *CPU) rotRAR(v byte) byte {
	c := v & 1
	v >>= 1
	if p.GetBool(processor.Carry) {
		v |= 0x80
	}
	p.SetBool(processor.Carry, c != 0)
	return v
}

// daa adjusts the accumulator after a BCD addition.
func (p *CPU) daa() {
	a := int(p.A)
	carry := p.GetBool(processor.Carry)

	var res4 int
	if a&0xF > 9 || p.GetBool(processor.AuxCarry) {
		res4 = a&0xF + 6
		a += 6
	}
	if a >= 0x100 || (a>>4)&0xF > 9 || carry {
		a += 0x60
	}

	p.setAllFlags(a, res4)
	if carry {
		p.Set(processor.Carry)
	}
	p.A = byte(a)
}
