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

var (
	aluNames     = [8]string{"ADD", "ADC", "SUB", "SBB", "ANA", "XRA", "ORA", "CMP"}
	aluImmNames  = [8]string{"ADI", "ACI", "SUI", "SBI", "ANI", "XRI", "ORI", "CPI"}
	rotNames     = [8]string{"RLC", "RRC", "RAL", "RAR", "DAA", "CMA", "STC", "CMC"}
	conditionIDs = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
	directNames  = map[byte]string{0x22: "SHLD", 0x2A: "LHLD", 0x32: "STA", 0x3A: "LDA"}
)

// Disassemble decodes the instruction at addr. It returns the text and
// the instruction length in bytes. Memory is read without tracing.
func Disassemble(mem *memory.Memory, addr memory.Pointer) (string, int) {
	op := mem.Peek(addr)
	imm8 := mem.Peek(addr + 1)
	imm16 := memory.Pointer(mem.Peek(addr+2))<<8 | memory.Pointer(imm8)
	sym := mem.Symbols.Format(imm16)

	reg := func(id byte) string {
		return processor.RegisterNames[id&7 : id&7+1]
	}
	pair := processor.PairNames[(op>>4)&3]

	switch op >> 6 {
	case 1:
		if op == 0x76 {
			return "HLT", 1
		}
		return fmt.Sprintf("MOV %s,%s", reg(op>>3), reg(op)), 1
	case 2:
		return fmt.Sprintf("%s %s", aluNames[(op>>3)&7], reg(op)), 1
	case 0:
		switch op & 7 {
		case 0:
			return "NOP", 1
		case 1:
			if op&0x08 == 0 {
				return fmt.Sprintf("LXI %s,%s", pair, sym), 3
			}
			return "DAD " + pair, 1
		case 2:
			if op < 0x20 {
				if op&0x08 != 0 {
					return "LDAX " + pair, 1
				}
				return "STAX " + pair, 1
			}
			return fmt.Sprintf("%s %s", directNames[op], sym), 3
		case 3:
			if op&0x08 == 0 {
				return "INX " + pair, 1
			}
			return "DCX " + pair, 1
		case 4:
			return "INR " + reg(op>>3), 1
		case 5:
			return "DCR " + reg(op>>3), 1
		case 6:
			return fmt.Sprintf("MVI %s,x%02x", reg(op>>3), imm8), 2
		default:
			return rotNames[(op>>3)&7], 1
		}
	}

	cc := conditionIDs[(op>>3)&7]
	switch op & 7 {
	case 0:
		return "R" + cc, 1
	case 1:
		switch op {
		case 0xC9:
			return "RET", 1
		case 0xD9:
			return fmt.Sprintf("DB x%02x", op), 1
		case 0xE9:
			return "PCHL", 1
		case 0xF9:
			return "SPHL", 1
		}
		return "POP " + processor.StackPairs[(op>>4)&3], 1
	case 2:
		return fmt.Sprintf("J%s %s", cc, sym), 3
	case 3:
		switch op {
		case 0xC3, 0xCB:
			return "JMP " + sym, 3
		case 0xD3:
			return fmt.Sprintf("OUT x%02x", imm8), 2
		case 0xDB:
			return fmt.Sprintf("IN x%02x", imm8), 2
		case 0xE3:
			return "XTHL", 1
		case 0xEB:
			return "XCHG", 1
		case 0xF3:
			return "DI", 1
		default:
			return "EI", 1
		}
	case 4:
		return fmt.Sprintf("C%s %s", cc, sym), 3
	case 5:
		if op&0x08 != 0 {
			return "CALL " + sym, 3
		}
		return "PUSH " + processor.StackPairs[(op>>4)&3], 1
	case 6:
		return fmt.Sprintf("%s x%02x", aluImmNames[(op>>3)&7], imm8), 2
	default:
		return fmt.Sprintf("RST %d", (op>>3)&7), 1
	}
}
