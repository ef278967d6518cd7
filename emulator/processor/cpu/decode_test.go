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
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral/rom"
	"github.com/andreas-jonsson/virtual8080/emulator/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLimit = 10000

func newTestCPU(t testing.TB, base memory.Pointer, prog []byte, extra ...peripheral.Peripheral) *CPU {
	peripherals := append([]peripheral.Peripheral{
		&rom.Device{
			RomName: "TEST",
			Base:    base,
			Reader:  bytes.NewReader(prog),
		},
	}, extra...)

	p, errs := NewCPU(memory.New(memory.MaxSize), peripherals)
	for _, err := range errs {
		t.Error(err)
	}

	p.Reset(uint16(base))
	p.SP = 0xF000
	return p
}

func runTest(t *testing.T, p *CPU) {
	err := p.Run(testLimit)
	require.True(t, errors.Is(err, processor.ErrCPUHalt), "unexpected stop: %v", err)
}

func TestPushPopScenario(t *testing.T) {
	assert := assert.New(t)

	p := newTestCPU(t, 0x100, []byte{0xC5, 0xD1, 0x76}) // PUSH B; POP D; HLT
	p.SP = 0x200
	p.B, p.C = 0x12, 0x34
	runTest(t, p)

	assert.Equal(byte(0x12), p.D)
	assert.Equal(byte(0x34), p.E)
	assert.Equal(uint16(0x200), p.SP)
	assert.True(p.Halted())
	assert.Equal(uint64(3), p.InstructionCount())
}

func TestCallReturn(t *testing.T) {
	assert := assert.New(t)

	prog := make([]byte, 0x101)
	copy(prog, []byte{0xCD, 0x00, 0x02, 0x76}) // CALL 0x200; HLT
	prog[0x100] = 0xC9                         // RET

	p := newTestCPU(t, 0x100, prog)
	p.SP = 0x1000
	runTest(t, p)

	assert.Equal(uint16(0x104), p.PC)
	assert.Equal(uint16(0x1000), p.SP)
	assert.Equal(0, p.shadow.depth())
}

func TestConditionalCall(t *testing.T) {
	assert := assert.New(t)

	prog := make([]byte, 0x102)
	copy(prog, []byte{0xAF, 0xC4, 0x00, 0x02, 0xCC, 0x00, 0x02, 0x76}) // XRA A; CNZ 0x200; CZ 0x200; HLT
	copy(prog[0x100:], []byte{0x3C, 0xC9})                             // INR A; RET

	p := newTestCPU(t, 0x100, prog)
	runTest(t, p)

	assert.Equal(byte(1), p.A)
	assert.Equal(uint16(0xF000), p.SP)
	assert.Equal(uint64(6), p.InstructionCount())
}

func TestRST(t *testing.T) {
	p := newTestCPU(t, 0x100, []byte{0xFF}) // RST 7
	require.NoError(t, p.LoadByte(0x38, 0x76))
	runTest(t, p)

	assert.Equal(t, uint16(0x39), p.PC)
	assert.Equal(t, uint16(0xEFFE), p.SP)
	assert.Equal(t, byte(0x01), p.mem.Peek(0xEFFE))
	assert.Equal(t, byte(0x01), p.mem.Peek(0xEFFF))
}

func TestINR(t *testing.T) {
	assert := assert.New(t)

	p := newTestCPU(t, 0x100, []byte{0x04, 0x76}) // INR B; HLT
	p.B = 0xFF
	p.Set(processor.Carry)
	runTest(t, p)

	assert.Equal(byte(0), p.B)
	assert.True(p.GetBool(processor.Zero))
	assert.False(p.GetBool(processor.Sign))
	assert.True(p.GetBool(processor.Carry))
	assert.True(p.GetBool(processor.AuxCarry))
}

func TestDAA(t *testing.T) {
	assert := assert.New(t)

	p := newTestCPU(t, 0x100, []byte{0x3E, 0x09, 0xC6, 0x01, 0x27, 0x76}) // MVI A,9; ADI 1; DAA; HLT
	require.NoError(t, p.Step())
	require.NoError(t, p.Step())
	assert.Equal(byte(0x0A), p.A)

	runTest(t, p)
	assert.Equal(byte(0x10), p.A)
	assert.False(p.GetBool(processor.Carry))
}

func TestDAACarry(t *testing.T) {
	p := newTestCPU(t, 0x100, []byte{0x3E, 0x99, 0xC6, 0x01, 0x27, 0x76}) // MVI A,99; ADI 1; DAA; HLT
	runTest(t, p)

	assert.Equal(t, byte(0x00), p.A)
	assert.True(t, p.GetBool(processor.Carry))
}

func TestUnmappedPorts(t *testing.T) {
	assert := assert.New(t)

	p := newTestCPU(t, 0x100, []byte{0xDB, 0x10, 0xD3, 0x11, 0x76}) // IN 10; OUT 11; HLT
	p.A = 0x55

	require.NoError(t, p.Step())
	assert.Equal(byte(0), p.A)
	assert.False(p.Halted())

	require.NoError(t, p.Step())
	assert.False(p.Halted())

	runTest(t, p)
}

type testPort struct {
	in  byte
	out []byte
	err error
}

func (d *testPort) In(byte, processor.Processor) (byte, error) {
	return d.in, d.err
}

func (d *testPort) Out(_ byte, data byte) {
	d.out = append(d.out, data)
}

func TestPorts(t *testing.T) {
	assert := assert.New(t)

	dev := &testPort{in: 0x42}
	p := newTestCPU(t, 0x100, []byte{0xDB, 0x02, 0x3C, 0xD3, 0x02, 0x76}) // IN 2; INR A; OUT 2; HLT
	require.NoError(t, p.InstallInputDevice(2, dev))
	require.NoError(t, p.InstallOutputDevice(2, dev))
	runTest(t, p)

	assert.Equal([]byte{0x43}, dev.out)
	assert.Equal(uint64(1), p.stats.RX)
	assert.Equal(uint64(1), p.stats.TX)
}

func TestInputNoData(t *testing.T) {
	p := newTestCPU(t, 0x100, []byte{0xDB, 0x02, 0x76})
	require.NoError(t, p.InstallInputDevice(2, &testPort{err: processor.ErrNoData}))

	err := p.Run(testLimit)
	assert.True(t, errors.Is(err, processor.ErrNoData))
	assert.True(t, p.Halted())
	assert.Equal(t, uint16(0x102), p.PC)
}

func TestReadOnly(t *testing.T) {
	assert := assert.New(t)

	p := newTestCPU(t, 0x200, []byte{0x3E, 0x42, 0x32, 0x50, 0x00, 0x76}) // MVI A,42; STA 0x50; HLT
	p.SetReadOnlyEnd(0x100)

	err := p.Run(testLimit)
	assert.True(errors.Is(err, processor.ErrReadOnly))
	assert.Equal(byte(0), p.mem.Peek(0x50))
	assert.Equal(uint16(0x205), p.PC)

	p.Reset(0x200)
	p.SetReadOnlyEnd(0)
	runTest(t, p)
	assert.Equal(byte(0x42), p.mem.Peek(0x50))
}

func TestReadOnlyStopsInstruction(t *testing.T) {
	assert := assert.New(t)

	// LXI H,xAB11; SHLD x00FF; HLT
	p := newTestCPU(t, 0x200, []byte{0x21, 0x11, 0xAB, 0x22, 0xFF, 0x00, 0x76})
	p.SetReadOnlyEnd(0x100)
	assert.True(errors.Is(p.Run(testLimit), processor.ErrReadOnly))
	assert.Equal(byte(0), p.mem.Peek(0xFF))
	assert.Equal(byte(0), p.mem.Peek(0x100))

	// LXI H,x2211; XTHL; HLT
	p = newTestCPU(t, 0x200, []byte{0x21, 0x11, 0x22, 0xE3, 0x76})
	p.SetReadOnlyEnd(0x100)
	p.SP = 0x80
	p.LoadByte(0x80, 0x44)
	p.LoadByte(0x81, 0x33)
	assert.True(errors.Is(p.Run(testLimit), processor.ErrReadOnly))
	assert.Equal(uint16(0x2211), p.HL())
	assert.Equal(byte(0x44), p.mem.Peek(0x80))
	assert.Equal(byte(0x33), p.mem.Peek(0x81))

	// PUSH B with the low byte landing below the boundary.
	p = newTestCPU(t, 0x200, []byte{0xC5, 0x76})
	p.SetReadOnlyEnd(0x100)
	p.SP = 0x101
	p.B, p.C = 0x12, 0x34
	assert.True(errors.Is(p.Run(testLimit), processor.ErrReadOnly))
	assert.Equal(byte(0), p.mem.Peek(0xFF))
	assert.Equal(byte(0), p.mem.Peek(0x100))
}

func TestUnimplemented(t *testing.T) {
	p := newTestCPU(t, 0x100, []byte{0xD9})
	err := p.Run(testLimit)
	assert.True(t, errors.Is(err, processor.ErrUnimplemented))
	assert.Contains(t, err.Error(), "0xD9")

	// A halted processor stays halted.
	assert.Equal(t, err, p.Step())
}

func TestStackFault(t *testing.T) {
	p, errs := NewCPU(memory.New(0x400), nil)
	require.Empty(t, errs)
	require.NoError(t, p.LoadByte(0x100, 0xC5)) // PUSH B

	p.Reset(0x100)
	p.SP = 0
	err := p.Run(testLimit)
	assert.True(t, errors.Is(err, processor.ErrStackFault))

	p.Reset(0x100)
	p.SP = 0
	p.StackFault = false
	require.NoError(t, p.Step())
	assert.Equal(t, uint16(0xFFFE), p.SP)
}

func TestPSW(t *testing.T) {
	assert := assert.New(t)

	p := newTestCPU(t, 0x100, []byte{0xF5, 0xC1, 0xC5, 0xF1, 0x76}) // PUSH PSW; POP B; PUSH B; POP PSW; HLT
	p.A = 0x12
	p.Flags.Store(byte(processor.Sign | processor.Carry))
	require.NoError(t, p.Step())

	assert.Equal(byte(0x83), p.mem.Peek(memory.Pointer(p.SP)))
	assert.Equal(byte(0x12), p.mem.Peek(memory.Pointer(p.SP+1)))

	require.NoError(t, p.Step())
	assert.Equal(uint16(0x1283), p.BC())

	p.C = 0xFF
	runTest(t, p)
	assert.Equal(byte(0x12), p.A)
	assert.Equal(byte(0xD7), p.Flags.Load())
}

func TestPushPopRoundTrip(t *testing.T) {
	p, errs := NewCPU(nil, nil)
	require.Empty(t, errs)
	p.SP = 0x8000

	for x := 0; x < 0x10000; x++ {
		p.push16(uint16(x))
		if v := p.pop16(); v != uint16(x) {
			t.Fatalf("pushed 0x%04X, popped 0x%04X", x, v)
		}
		if p.SP != 0x8000 {
			t.Fatalf("SP 0x%04X after 0x%04X", p.SP, x)
		}
	}
}

func TestMoveAndMemory(t *testing.T) {
	assert := assert.New(t)

	// LXI H,0x300; MVI M,5; MOV B,M; INR M; LDA 0x300; XCHG; SHLD 0x310; LHLD 0x310; HLT
	p := newTestCPU(t, 0x100, []byte{
		0x21, 0x00, 0x03,
		0x36, 0x05,
		0x46,
		0x34,
		0x3A, 0x00, 0x03,
		0xEB,
		0x22, 0x10, 0x03,
		0x2A, 0x10, 0x03,
		0x76,
	})
	p.SetDE(0xBEEF)
	runTest(t, p)

	assert.Equal(byte(5), p.B)
	assert.Equal(byte(6), p.A)
	assert.Equal(uint16(0x300), p.DE())
	assert.Equal(uint16(0xBEEF), p.HL())
	assert.Equal(byte(0xEF), p.mem.Peek(0x310))
	assert.Equal(byte(0xBE), p.mem.Peek(0x311))
}

func TestXTHLAndSPHL(t *testing.T) {
	assert := assert.New(t)

	p := newTestCPU(t, 0x100, []byte{0xE3, 0xF9, 0x76}) // XTHL; SPHL; HLT
	p.SetHL(0x1234)
	require.NoError(t, p.LoadByte(0xF000, 0x78))
	require.NoError(t, p.LoadByte(0xF001, 0x56))
	runTest(t, p)

	assert.Equal(uint16(0x5678), p.HL())
	assert.Equal(uint16(0x5678), p.SP)
	assert.Equal(byte(0x34), p.mem.Peek(0xF000))
	assert.Equal(byte(0x12), p.mem.Peek(0xF001))
}

func TestDAD(t *testing.T) {
	p := newTestCPU(t, 0x100, []byte{0x09, 0x76}) // DAD B; HLT
	p.SetHL(0xFFFF)
	p.SetBC(0x0002)
	p.Set(processor.Zero)
	runTest(t, p)

	assert.Equal(t, uint16(0x0001), p.HL())
	assert.True(t, p.GetBool(processor.Carry))
	assert.True(t, p.GetBool(processor.Zero))
}

func TestInterruptEnable(t *testing.T) {
	p := newTestCPU(t, 0x100, []byte{0xFB, 0xF3, 0x76}) // EI; DI; HLT
	require.NoError(t, p.Step())
	assert.True(t, p.InterruptEnabled())
	runTest(t, p)
	assert.False(t, p.InterruptEnabled())
}

type testMapped struct {
	addr      memory.Pointer
	old, data byte
	calls     int
}

func (d *testMapped) MemoryWritten(addr memory.Pointer, old, data byte) {
	d.addr, d.old, d.data = addr, old, data
	d.calls++
}

func TestMappedDevice(t *testing.T) {
	assert := assert.New(t)

	dev := &testMapped{}
	p := newTestCPU(t, 0x100, []byte{0x3E, 0x41, 0x32, 0x00, 0x08, 0x32, 0x00, 0x10, 0x76}) // MVI A,41; STA 0800; STA 1000; HLT
	require.NoError(t, p.LoadByte(0x800, 0x20))
	require.NoError(t, p.InstallMemoryDevice(dev, 0x800, 0x1000))
	runTest(t, p)

	assert.Equal(1, dev.calls)
	assert.Equal(memory.Pointer(0x800), dev.addr)
	assert.Equal(byte(0x20), dev.old)
	assert.Equal(byte(0x41), dev.data)

	p.RemoveMemoryDevice(dev)
	p.Reset(0x100)
	runTest(t, p)
	assert.Equal(1, dev.calls)
}

type testBreak struct {
	hits []uint16
	err  error
}

func (h *testBreak) Break(p processor.Processor) error {
	h.hits = append(h.hits, p.GetRegisters().PC)
	return h.err
}

func TestBreakpoints(t *testing.T) {
	assert := assert.New(t)

	h := &testBreak{}
	p := newTestCPU(t, 0x100, []byte{0x00, 0x00, 0x00, 0x76})
	p.SetBreakHandler(h)
	p.SetBreakpoint(0x102)
	p.SetBreakpoint(0x101)
	assert.Equal([]memory.Pointer{0x101, 0x102}, p.Breakpoints())

	runTest(t, p)
	assert.Equal([]uint16{0x101, 0x102}, h.hits)

	p.ClearBreakpoint(0x101)
	h.hits = nil
	h.err = errors.New("stop")
	p.Reset(0x100)

	err := p.Run(testLimit)
	assert.Equal(h.err, err)
	assert.Equal([]uint16{0x102}, h.hits)
	assert.Equal(uint16(0x102), p.PC)
}

func TestRunLimit(t *testing.T) {
	p := newTestCPU(t, 0x100, []byte{0xC3, 0x00, 0x01}) // JMP 0x100
	assert.NoError(t, p.Run(100))
	assert.Equal(t, uint64(100), p.InstructionCount())
	assert.False(t, p.Halted())
}

func TestHaltFromOutside(t *testing.T) {
	p := newTestCPU(t, 0x100, []byte{0xC3, 0x00, 0x01})
	cause := errors.New("outside")
	p.Halt(cause)
	p.Halt(errors.New("second"))

	assert.Equal(t, cause, p.Run(0))
	assert.Equal(t, uint64(0), p.InstructionCount())
}

func TestTrace(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	p := newTestCPU(t, 0x100, []byte{0xC5, 0xD1, 0x76})
	p.AddSymbol("START", 0x100)
	p.EnableTrace(&buf)
	runTest(t, p)

	out := buf.String()
	assert.True(strings.HasPrefix(out, ":START:\n"))
	assert.Contains(out, "000001 0100 c5  PUSH B [A=x00 F=--------]")
	assert.Contains(out, "POP D")
	assert.Contains(out, "HLT")
	assert.Contains(out, "STEPS 3")
}

func TestDumpRegisters(t *testing.T) {
	p := newTestCPU(t, 0x100, nil)
	p.SetHL(0x200)
	require.NoError(t, p.LoadByte(0x200, 'H'))
	require.NoError(t, p.LoadByte(0x201, 'I'))
	p.AddSymbol("MSG", 0x200)

	dump := p.DumpRegisters()
	assert.Contains(t, dump, `H x02:00   MSG --> "HI"`)
	assert.Contains(t, dump, "PC x0100")
}

func BenchmarkLoop(b *testing.B) {
	// LXI B,0x1000; DCX B; MOV A,B; ORA C; JNZ 0x103; HLT
	prog := []byte{0x01, 0x00, 0x10, 0x0B, 0x78, 0xB1, 0xC2, 0x03, 0x01, 0x76}
	p := newTestCPU(b, 0x100, prog)

	for i := 0; i < b.N; i++ {
		p.Reset(0x100)
		if err := p.Run(0); !errors.Is(err, processor.ErrCPUHalt) {
			b.Fatal(err)
		}
	}
}

func TestConditions(t *testing.T) {
	flags := [4]processor.Flags{processor.Zero, processor.Carry, processor.Parity, processor.Sign}

	for cc := byte(0); cc < 8; cc++ {
		for _, set := range []bool{false, true} {
			taken := set == (cc&1 == 1)
			name := fmt.Sprintf("%s set=%v", conditionIDs[cc], set)

			prog := make([]byte, 0x101)
			copy(prog, []byte{0xC2 | cc<<3, 0x00, 0x02, 0x76}) // Jcc 0x200; HLT
			prog[0x100] = 0x76

			p := newTestCPU(t, 0x100, prog)
			p.SetBool(flags[cc>>1], set)
			runTest(t, p)
			if taken {
				assert.Equal(t, uint16(0x201), p.PC, "J"+name)
			} else {
				assert.Equal(t, uint16(0x104), p.PC, "J"+name)
			}

			prog[0] = 0xC4 | cc<<3 // Ccc 0x200
			p = newTestCPU(t, 0x100, prog)
			p.SetBool(flags[cc>>1], set)
			runTest(t, p)
			if taken {
				assert.Equal(t, uint16(0x201), p.PC, "C"+name)
				assert.Equal(t, uint16(0xEFFE), p.SP, "C"+name)
			} else {
				assert.Equal(t, uint16(0x104), p.PC, "C"+name)
				assert.Equal(t, uint16(0xF000), p.SP, "C"+name)
			}

			prog[0], prog[1] = 0xC0|cc<<3, 0x76 // Rcc; HLT
			p = newTestCPU(t, 0x100, prog)
			p.SP = 0xEFFE
			p.LoadByte(0xEFFE, 0x00)
			p.LoadByte(0xEFFF, 0x02)
			p.SetBool(flags[cc>>1], set)
			runTest(t, p)
			if taken {
				assert.Equal(t, uint16(0x201), p.PC, "R"+name)
				assert.Equal(t, uint16(0xF000), p.SP, "R"+name)
			} else {
				assert.Equal(t, uint16(0x102), p.PC, "R"+name)
				assert.Equal(t, uint16(0xEFFE), p.SP, "R"+name)
			}
		}
	}
}

func TestCarryOps(t *testing.T) {
	assert := assert.New(t)

	p := newTestCPU(t, 0x100, []byte{0x3E, 0x5A, 0x2F, 0x37, 0x3F, 0x3F, 0x76}) // MVI A,x5A; CMA; STC; CMC; CMC; HLT
	p.Step()
	p.Step()
	assert.Equal(byte(0xA5), p.A)
	assert.False(p.GetBool(processor.Carry))

	p.Step()
	assert.True(p.GetBool(processor.Carry))
	p.Step()
	assert.False(p.GetBool(processor.Carry))
	runTest(t, p)
	assert.True(p.GetBool(processor.Carry))
	assert.False(p.GetBool(processor.Zero))
}

func TestStaxLdax(t *testing.T) {
	assert := assert.New(t)

	p := newTestCPU(t, 0x100, []byte{
		0x01, 0x00, 0x03, // LXI B,x0300
		0x11, 0x01, 0x03, // LXI D,x0301
		0x3E, 0x11, // MVI A,x11
		0x02,       // STAX B
		0x3E, 0x22, // MVI A,x22
		0x12,       // STAX D
		0x0A,       // LDAX B
		0x47,       // MOV B,A
		0x1A,       // LDAX D
		0x76,       // HLT
	})
	runTest(t, p)

	assert.Equal(byte(0x11), p.mem.Peek(0x300))
	assert.Equal(byte(0x22), p.mem.Peek(0x301))
	assert.Equal(byte(0x11), p.B)
	assert.Equal(byte(0x22), p.A)
}

func TestPCHL(t *testing.T) {
	prog := make([]byte, 0x101)
	copy(prog, []byte{0x21, 0x00, 0x02, 0xE9}) // LXI H,x0200; PCHL
	prog[0x100] = 0x76

	p := newTestCPU(t, 0x100, prog)
	runTest(t, p)
	assert.Equal(t, uint16(0x201), p.PC)
}

func TestIncDecPairs(t *testing.T) {
	assert := assert.New(t)

	p := newTestCPU(t, 0x100, []byte{
		0x01, 0xFF, 0x00, // LXI B,x00FF
		0x03,             // INX B
		0x11, 0x00, 0x00, // LXI D,x0000
		0x1B,             // DCX D
		0x21, 0xFF, 0xFF, // LXI H,xFFFF
		0x23,             // INX H
		0x31, 0x00, 0x01, // LXI SP,x0100
		0x3B,             // DCX SP
		0x76,             // HLT
	})
	p.Set(processor.Carry)
	runTest(t, p)

	assert.Equal(uint16(0x0100), p.BC())
	assert.Equal(uint16(0xFFFF), p.DE())
	assert.Equal(uint16(0x0000), p.HL())
	assert.Equal(uint16(0x00FF), p.SP)
	assert.Equal("-------C", p.Flags.String())
}
