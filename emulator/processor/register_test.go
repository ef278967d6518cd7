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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagsString(t *testing.T) {
	assert := assert.New(t)

	var f Flags
	f.Store(0)
	assert.Equal("--------", f.String())
	assert.Equal(byte(0x02), f.Load())

	f.Store(0xFF)
	assert.Equal("SZ-A-P-C", f.String())
	assert.Equal(byte(0xD7), f.Load())

	f.Store(0x41)
	assert.Equal("-Z-----C", f.String())
}

func TestPairs(t *testing.T) {
	assert := assert.New(t)

	var r Registers
	r.SetPair(PairBC, 0x1234)
	r.SetPair(PairDE, 0x5678)
	r.SetPair(PairHL, 0x9ABC)
	r.SetPair(PairSP, 0xDEF0)

	assert.Equal(byte(0x12), r.B)
	assert.Equal(byte(0x34), r.C)
	assert.Equal(uint16(0x5678), r.DE())
	assert.Equal(uint16(0x9ABC), r.Pair(PairHL))
	assert.Equal(uint16(0xDEF0), r.Pair(PairSP))

	r.SetPSW(0x83FF)
	assert.Equal(byte(0x83), r.A)
	assert.Equal(uint16(0x83D7), r.PSW())
}

func TestRegisterSelectors(t *testing.T) {
	var r Registers
	for id := byte(0); id < 8; id++ {
		if id == RegM {
			assert.Panics(t, func() { r.Reg(RegM) })
			continue
		}
		r.SetReg(id, id+1)
		assert.Equal(t, id+1, r.Reg(id), RegisterNames[id:id+1])
	}
	assert.Equal(t, byte(8), r.A)
}

type testPort struct {
	v    byte
	last byte
}

func (d *testPort) In(port byte, p Processor) (byte, error) {
	return d.v, nil
}

func (d *testPort) Out(port byte, data byte) {
	d.last = data
}

func TestPorts(t *testing.T) {
	assert := assert.New(t)

	var b Ports
	d := &testPort{v: 0x42}

	assert.Error(b.InstallInput(1, nil))
	assert.NoError(b.InstallInput(1, d))
	assert.NoError(b.InstallOutput(2, d))
	assert.Equal(d, b.Input(1))
	assert.Nil(b.Output(1))

	v, err := b.In(1, nil)
	assert.NoError(err)
	assert.Equal(byte(0x42), v)

	v, err = b.In(9, nil)
	assert.NoError(err)
	assert.Zero(v)

	b.Out(2, 0x99)
	b.Out(3, 0x11)
	assert.Equal(byte(0x99), d.last)
}
