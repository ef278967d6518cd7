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

package loader

import (
	"errors"
	"testing"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type target struct {
	mem *memory.Memory
}

func newTarget() *target {
	return &target{mem: memory.New(0x10000)}
}

func (t *target) LoadByte(addr memory.Pointer, data byte) error {
	return t.mem.LoadByte(addr, data)
}

func (t *target) AddSymbol(name string, addr memory.Pointer) {
	t.mem.Symbols.Add(name, addr)
}

func (t *target) Symbols() *memory.Symbols {
	return t.mem.Symbols
}

func writeFile(t *testing.T, fs afero.Fs, name, content string) {
	require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0644))
}

func TestReadHex(t *testing.T) {
	assert := assert.New(t)
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "prog.hex", "1 START 0100H\n\n:03010000C5D176F0\n$\n2 IGNORED 0200H\n:00000001FF\n")

	tg := newTarget()
	require.NoError(t, ReadHex(fs, "prog.hex", tg))

	assert.Equal(byte(0xC5), tg.mem.Peek(0x100))
	assert.Equal(byte(0xD1), tg.mem.Peek(0x101))
	assert.Equal(byte(0x76), tg.mem.Peek(0x102))

	addr, ok := tg.mem.Symbols.Addr("START")
	assert.True(ok)
	assert.Equal(memory.Pointer(0x100), addr)

	_, ok = tg.mem.Symbols.Addr("IGNORED")
	assert.False(ok)
}

func TestReadHexErrors(t *testing.T) {
	table := []struct {
		content string
		line    int
		err     error
	}{
		{":03010000C5D176F1\n", 1, ErrChecksum},
		{"\n:0301\n", 2, ErrShortRecord},
		{":03010000C5D1\n", 1, ErrShortRecord},
		{":0G010000C5D176F0\n", 1, ErrBadNumber},
		{"START 0100H\n", 1, ErrBadSymbol},
	}

	for _, entry := range table {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "bad.hex", entry.content)

		err := ReadHex(fs, "bad.hex", newTarget())
		var se ErrSyntax
		if assert.Error(t, err, entry.content) {
			assert.True(t, errors.As(err, &se), entry.content)
			assert.Equal(t, entry.line, se.LineNo, entry.content)
			assert.True(t, errors.Is(err, entry.err), entry.content)
		}
	}
}

func TestReadSymbols(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "prog.symbols", "0100|START\n\n0200|LOOP\n")

	tg := newTarget()
	require.NoError(t, ReadSymbols(fs, "prog.symbols", tg))

	name, ok := tg.mem.Symbols.Name(0x200)
	assert.True(t, ok)
	assert.Equal(t, "LOOP", name)

	writeFile(t, fs, "bad.symbols", "0100 START\n")
	assert.True(t, errors.Is(ReadSymbols(fs, "bad.symbols", tg), ErrBadSymbol))
}

func TestAsmSignature(t *testing.T) {
	table := []struct {
		line string
		sym  string
		size int
	}{
		{"START:", "START", 1},
		{"BUF:   DS  72", "BUF", 72},
		{"BUF:   DS  LEN", "BUF", 1},
		{"LINE  DEFS  4", "LINE", 4},
		{"PTR  DEFW  0", "PTR", 2},
		{"MSG  DEFM  'HELLO'", "MSG", 5},
		{"HERE  EQU  $", "HERE", 1},
		{"CR  EQU  13", "CR", 0},
		{"LOOP  MOV  A,B", "LOOP", 1},
	}

	for _, entry := range table {
		sym, size := asmSignature(entry.line)
		assert.Equal(t, entry.sym, sym, entry.line)
		assert.Equal(t, entry.size, size, entry.line)
	}
}

func TestBoot(t *testing.T) {
	assert := assert.New(t)
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "basic.asm", "BEGPR:  DS  4\nCR  EQU  13\n  NOP\n")
	writeFile(t, fs, "basic.symbols", "0300|BEGPR\n0400|CR\n")
	writeFile(t, fs, "basic.hex", ":03010000C5D176F0\n")

	tg := newTarget()
	require.NoError(t, Boot(fs, "basic.hex", tg))
	assert.Equal(byte(0x76), tg.mem.Peek(0x102))

	name, ok := tg.mem.Symbols.Name(0x302)
	assert.True(ok)
	assert.Equal("BEGPR+2", name)

	_, ok = tg.mem.Symbols.Addr("CR")
	assert.False(ok)

	assert.Error(Boot(fs, "missing.hex", tg))
}
