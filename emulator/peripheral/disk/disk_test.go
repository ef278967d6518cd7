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

package disk

import (
	"testing"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral"
	"github.com/andreas-jonsson/virtual8080/emulator/processor/cpu"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cmdBlock = 0x40

func newTestMachine(t *testing.T) (*cpu.CPU, *Device, afero.File) {
	dc := &Device{}
	p, errs := cpu.NewCPU(memory.New(memory.MaxSize), []peripheral.Peripheral{dc})
	require.Empty(t, errs)

	fs := afero.NewMemMapFs()
	fp, err := fs.Create("disk.dsk")
	require.NoError(t, err)

	img := make([]byte, SectorSize*SectorsPerTrack*2)
	for i := range img {
		img[i] = byte(i / SectorSize)
	}
	_, err = fp.Write(img)
	require.NoError(t, err)

	require.NoError(t, dc.Insert(1, fp))
	return p, dc, fp
}

func command(p *cpu.CPU, dc *Device, cmd, trk, sec byte, addr uint16) byte {
	block := []byte{cmd, 0, 0, trk, sec, byte(addr), byte(addr >> 8)}
	for i, v := range block {
		p.LoadByte(memory.Pointer(cmdBlock+i), v)
	}

	dc.Out(CommandPort, setAddressByte)
	dc.Out(CommandPort, cmdBlock)
	dc.Out(CommandPort, 0)
	dc.Out(CommandPort, 0)
	return p.Memory().Peek(cmdBlock + 1)
}

func TestReadSector(t *testing.T) {
	assert := assert.New(t)
	p, dc, _ := newTestMachine(t)

	assert.Equal(byte(statusDone), command(p, dc, 0x21, 1, 3, 0x1000))
	assert.Equal(byte(SectorsPerTrack+2), p.Memory().Peek(0x1000))
	assert.Equal(byte(SectorsPerTrack+2), p.Memory().Peek(0x107F))

	// Past the end of the image.
	assert.Equal(byte(statusDone), command(p, dc, 0x21, 10, 1, 0x1000))
	assert.Equal(byte(0), p.Memory().Peek(0x1000))

	assert.Equal(byte(statusNoDrive), command(p, dc, 0x22, 0, 1, 0x1000))
}

func TestWriteSector(t *testing.T) {
	assert := assert.New(t)
	p, dc, fp := newTestMachine(t)

	for i := 0; i < SectorSize; i++ {
		p.LoadByte(memory.Pointer(0x2000+i), 0xAB)
	}
	assert.Equal(byte(statusDone), command(p, dc, 0x11, 0, 2, 0x2000))

	buf := make([]byte, 2)
	_, err := fp.ReadAt(buf, SectorSize-1)
	require.NoError(t, err)
	assert.Equal([]byte{0, 0xAB}, buf)

	assert.Equal(byte(statusNoWrite), command(p, dc, 0x13, 0, 2, 0x2000))
	assert.Equal(byte(statusBadCmd), command(p, dc, 0x71, 0, 2, 0x2000))
}

func TestStatusGate(t *testing.T) {
	p, dc, _ := newTestMachine(t)

	p.LoadByte(cmdBlock+1, 0x55)
	dc.Out(CommandPort, setAddressByte)
	dc.Out(CommandPort, cmdBlock)
	dc.Out(CommandPort, 0)
	dc.Out(CommandPort, 0)
	assert.Equal(t, byte(0x55), p.Memory().Peek(cmdBlock+1))
}

func TestBootAndEject(t *testing.T) {
	assert := assert.New(t)
	p, dc, fp := newTestMachine(t)

	p.LoadByte(0, 0xFF)
	require.NoError(t, dc.Boot())
	assert.Equal(byte(0), p.Memory().Peek(0))

	assert.Error(dc.Insert(1, fp))
	assert.Error(dc.Insert(MaxDrives, fp))

	rws, err := dc.Eject(1)
	assert.NoError(err)
	assert.Equal(fp, rws)

	_, err = dc.Eject(1)
	assert.Error(err)
	assert.Equal(ErrNoBootDisk, dc.Boot())

	assert.NoError(dc.Replace(1, fp))
	assert.NoError(dc.Replace(1, fp))
}
