// +build validator

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
	"io"
	"testing"

	"github.com/andreas-jonsson/virtual8080/emulator/processor/validator"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorEvents(t *testing.T) {
	fs := afero.NewMemMapFs()
	validator.SetFileSystem(fs)
	defer validator.SetFileSystem(afero.NewOsFs())

	require.NoError(t, validator.Initialize("events.json.gz", validator.DefaultQueueSize, validator.DefaultBufferSize))

	p := newTestCPU(t, 0x100, []byte{
		0x3E, 0x12,       // MVI A,x12
		0x32, 0x00, 0x03, // STA x0300
		0x3A, 0x00, 0x03, // LDA x0300
		0x76,             // HLT
	})
	runTest(t, p)
	validator.Shutdown()

	fp, err := fs.Open("events.json.gz")
	require.NoError(t, err)
	defer fp.Close()

	dec, err := validator.NewDecoder(fp)
	require.NoError(t, err)
	defer dec.Close()

	var events []validator.Event
	for {
		var ev validator.Event
		if err := dec.Decode(&ev); err == io.EOF {
			break
		} else {
			require.NoError(t, err)
		}
		events = append(events, ev)
	}

	require.Len(t, events, 3)
	assert.Equal(t, byte(0x3E), events[0].Opcode)
	assert.Equal(t, byte(0x12), events[0].Regs[1].A)

	assert.Equal(t, byte(0x32), events[1].Opcode)
	assert.Equal(t, validator.MemOp{Addr: 0x300, Data: 0x12}, events[1].Writes[0])
	assert.True(t, events[1].Writes[1].Empty())

	assert.Equal(t, byte(0x3A), events[2].Opcode)
	assert.Contains(t, events[2].Reads[:], validator.MemOp{Addr: 0x300, Data: 0x12})
	assert.Equal(t, uint16(0x108), events[2].Regs[1].PC)
}
