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
	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/andreas-jonsson/virtual8080/emulator/processor"
)

// dataLocation is a 3-bit operand selector. processor.RegM addresses the
// byte at HL, everything else is a register.
type dataLocation byte

func srcLocation(op byte) dataLocation {
	return dataLocation(op & 7)
}

func dstLocation(op byte) dataLocation {
	return dataLocation((op >> 3) & 7)
}

func (loc dataLocation) isMemory() bool {
	return byte(loc) == processor.RegM
}

func (loc dataLocation) String() string {
	return processor.RegisterNames[loc : loc+1]
}

func (loc dataLocation) readByte(p *CPU) byte {
	if loc.isMemory() {
		return p.ReadByte(memory.Pointer(p.HL()))
	}
	return p.Reg(byte(loc))
}

func (loc dataLocation) writeByte(p *CPU, data byte) {
	if loc.isMemory() {
		p.WriteByte(memory.Pointer(p.HL()), data)
		return
	}
	p.SetReg(byte(loc), data)
}

// pairLocation selects BC, DE, HL or SP from instruction bits 4-5.
type pairLocation byte

func pairOf(op byte) pairLocation {
	return pairLocation((op >> 4) & 3)
}

func (loc pairLocation) String() string {
	return processor.PairNames[loc]
}

func (loc pairLocation) readWord(p *CPU) uint16 {
	return p.Pair(byte(loc))
}

func (loc pairLocation) writeWord(p *CPU, v uint16) {
	p.SetPair(byte(loc), v)
}

// stackWord reads the pair as PUSH stores it, with PSW in place of SP.
func (loc pairLocation) stackWord(p *CPU) uint16 {
	if byte(loc) == processor.PairPSW {
		return p.PSW()
	}
	return p.Pair(byte(loc))
}

func (loc pairLocation) setStackWord(p *CPU, v uint16) {
	if byte(loc) == processor.PairPSW {
		p.SetPSW(v)
		return
	}
	p.SetPair(byte(loc), v)
}

var parityLookup [0x100]bool

func init() {
	for i := range parityLookup {
		n := 0
		for v := i; v != 0; v >>= 1 {
			n += v & 1
		}
		parityLookup[i] = n%2 == 0
	}
}
