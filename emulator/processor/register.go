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

package processor

import (
	"fmt"
)

const (
	Carry    Flags = 0x01
	Reserved Flags = 0x02
	Parity   Flags = 0x04
	AuxCarry Flags = 0x10
	Zero     Flags = 0x40
	Sign     Flags = 0x80
)

const AllFlags = Carry | Parity | AuxCarry | Zero | Sign

type Flags byte

func (r *Flags) Get(f Flags) Flags {
	return *r & f
}

func (r *Flags) GetBool(f Flags) bool {
	return r.Get(f) != 0
}

func (r *Flags) Set(f Flags) {
	*r |= f
}

func (r *Flags) SetBool(f Flags, b bool) {
	if b {
		r.Set(f)
		return
	}
	r.Clear(f)
}

func (r *Flags) Clear(f Flags) {
	*r &= ^f
}

func (r *Flags) Store(f byte) {
	*r = (Flags(f) & AllFlags) | Reserved
}

func (r *Flags) Load() byte {
	return byte((*r & AllFlags) | Reserved)
}

func (r Flags) String() string {
	s := []byte("SZ-A-P-C")
	for i := 0; i < 8; i++ {
		if r&(0x80>>uint(i)) == 0 || s[i] == '-' {
			s[i] = '-'
		}
	}
	return string(s)
}

// Register selectors as encoded in instruction bits.
const (
	RegB byte = iota
	RegC
	RegD
	RegE
	RegH
	RegL
	RegM
	RegA
)

// Register pair selectors as encoded in instruction bits 4-5.
const (
	PairBC byte = iota
	PairDE
	PairHL
	PairSP
)

const PairPSW = PairSP

var (
	RegisterNames = "BCDEHLMA"
	PairNames     = [4]string{"B", "D", "H", "SP"}
	StackPairs    = [4]string{"B", "D", "H", "PSW"}
)

type Registers struct {
	B, C, D, E, H, L, A byte

	Flags

	SP, PC uint16
	Debug  bool
}

func (r *Registers) Reg(id byte) byte {
	switch id & 7 {
	case RegB:
		return r.B
	case RegC:
		return r.C
	case RegD:
		return r.D
	case RegE:
		return r.E
	case RegH:
		return r.H
	case RegL:
		return r.L
	case RegA:
		return r.A
	}
	panic("memory operand is not a register")
}

func (r *Registers) SetReg(id, v byte) {
	switch id & 7 {
	case RegB:
		r.B = v
	case RegC:
		r.C = v
	case RegD:
		r.D = v
	case RegE:
		r.E = v
	case RegH:
		r.H = v
	case RegL:
		r.L = v
	case RegA:
		r.A = v
	default:
		panic("memory operand is not a register")
	}
}

func (r *Registers) BC() uint16 {
	return uint16(r.B)<<8 | uint16(r.C)
}

func (r *Registers) SetBC(v uint16) {
	r.B, r.C = byte(v>>8), byte(v)
}

func (r *Registers) DE() uint16 {
	return uint16(r.D)<<8 | uint16(r.E)
}

func (r *Registers) SetDE(v uint16) {
	r.D, r.E = byte(v>>8), byte(v)
}

func (r *Registers) HL() uint16 {
	return uint16(r.H)<<8 | uint16(r.L)
}

func (r *Registers) SetHL(v uint16) {
	r.H, r.L = byte(v>>8), byte(v)
}

// PSW is the accumulator and flags as they are laid out on the stack.
func (r *Registers) PSW() uint16 {
	return uint16(r.A)<<8 | uint16(r.Flags.Load())
}

func (r *Registers) SetPSW(v uint16) {
	r.A = byte(v >> 8)
	r.Flags.Store(byte(v))
}

// Pair returns BC, DE, HL or SP.
func (r *Registers) Pair(id byte) uint16 {
	switch id & 3 {
	case PairBC:
		return r.BC()
	case PairDE:
		return r.DE()
	case PairHL:
		return r.HL()
	default:
		return r.SP
	}
}

func (r *Registers) SetPair(id byte, v uint16) {
	switch id & 3 {
	case PairBC:
		r.SetBC(v)
	case PairDE:
		r.SetDE(v)
	case PairHL:
		r.SetHL(v)
	default:
		r.SP = v
	}
}

func (r *Registers) String() string {
	return fmt.Sprintf("A=%02X F=%s BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X",
		r.A, r.Flags.String(), r.BC(), r.DE(), r.HL(), r.SP, r.PC)
}
