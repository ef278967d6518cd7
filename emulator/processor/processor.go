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
	"errors"
	"io"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
)

type Stats struct {
	NumInstructions uint64
	RX, TX          uint64
}

var (
	ErrCPUHalt       = errors.New("CPU HALT")
	ErrUnimplemented = errors.New("unimplemented instruction")
	ErrStackFault    = errors.New("stack fault")
	ErrReadOnly      = memory.ErrReadOnly

	// ErrNoData is returned by an input device that has nothing more to give.
	// It halts the processor and is the normal way for scripted input to end.
	ErrNoData = errors.New("device empty")
)

type InputDevice interface {
	In(port byte, p Processor) (byte, error)
}

type OutputDevice interface {
	Out(port byte, data byte)
}

// BreakHandler is invoked by the run loop when a breakpoint is reached.
type BreakHandler interface {
	Break(p Processor) error
}

type Debug interface {
	GetStats() Stats
	DumpRegisters() string
	InstructionPC() uint16
	SetBreakpoint(addr memory.Pointer)
	ClearBreakpoint(addr memory.Pointer)
	Breakpoints() []memory.Pointer
	SetBreakHandler(h BreakHandler)
	EnableTrace(w io.Writer)
}

type Processor interface {
	Debug

	InByte(port byte) (byte, error)
	OutByte(port byte, data byte)

	ReadByte(addr memory.Pointer) byte
	WriteByte(addr memory.Pointer, data byte)
	LoadByte(addr memory.Pointer, data byte) error
	SetReadOnlyEnd(addr memory.Pointer)
	Memory() *memory.Memory

	Symbols() *memory.Symbols
	AddSymbol(name string, addr memory.Pointer)

	GetRegisters() *Registers
	InstructionCount() uint64

	InstallInputDevice(port byte, device InputDevice) error
	InstallOutputDevice(port byte, device OutputDevice) error
	InstallMemoryDevice(device memory.MappedDevice, from, to int) error
	RemoveMemoryDevice(device memory.MappedDevice)

	Halt(err error)
	Halted() bool
	Err() error
}
