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

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/andreas-jonsson/virtual8080/emulator/processor"
	"github.com/andreas-jonsson/virtual8080/emulator/processor/validator"
)

type eventSource interface {
	Decode(*validator.Event) error
}

// compare reads events pairwise and returns the number of equal events
// before the first divergence.
func compare(a, b eventSource, max int) (int, error) {
	var numEq int
	for ; numEq < max; numEq++ {
		var ea, eb validator.Event
		errA, errB := a.Decode(&ea), b.Decode(&eb)
		if errors.Is(errA, io.EOF) || errors.Is(errB, io.EOF) {
			return numEq, nil
		}
		if errA != nil {
			return numEq, errA
		}
		if errB != nil {
			return numEq, errB
		}

		if err := diff(&ea, &eb); err != nil {
			return numEq, fmt.Errorf("event %d: %w", numEq, err)
		}
	}
	return numEq, nil
}

func diff(a, b *validator.Event) error {
	ar, br := &a.Regs[0], &b.Regs[0]
	if a.Opcode != b.Opcode || ar.PC != br.PC {
		return fmt.Errorf("opcode 0x%02X at 0x%04X, expected 0x%02X at 0x%04X", a.Opcode, ar.PC, b.Opcode, br.PC)
	}
	if !equalRegs(&a.Regs[1], &b.Regs[1]) {
		return fmt.Errorf("registers after 0x%02X at 0x%04X:\n  %v\nexpected:\n  %v", a.Opcode, ar.PC, a.Regs[1].String(), b.Regs[1].String())
	}
	if a.Reads != b.Reads {
		return fmt.Errorf("memory reads of 0x%02X at 0x%04X: %v, expected %v", a.Opcode, ar.PC, a.Reads, b.Reads)
	}
	if a.Writes != b.Writes {
		return fmt.Errorf("memory writes of 0x%02X at 0x%04X: %v, expected %v", a.Opcode, ar.PC, a.Writes, b.Writes)
	}
	return nil
}

func equalRegs(a, b *processor.Registers) bool {
	return a.A == b.A &&
		a.B == b.B &&
		a.C == b.C &&
		a.D == b.D &&
		a.E == b.E &&
		a.H == b.H &&
		a.L == b.L &&
		a.SP == b.SP &&
		a.PC == b.PC &&
		a.Flags.Load() == b.Flags.Load()
}
