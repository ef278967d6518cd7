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

package validator

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, compress bool) {
	var buffer bytes.Buffer
	enc := NewEncoder(&buffer, compress)

	ev := EmptyEvent
	ev.Opcode = 0xC5
	ev.Regs[0].PC = 0x100
	ev.Regs[1].PC = 0x101
	ev.Writes[0] = MemOp{0x1FF, 0x12}

	require.NoError(t, enc.Encode(&ev))
	require.NoError(t, enc.Close())

	if compress {
		assert.Equal(t, []byte{0x1F, 0x8B}, buffer.Bytes()[:2])
	}

	dec, err := NewDecoder(&buffer)
	require.NoError(t, err)
	defer dec.Close()

	var out Event
	require.NoError(t, dec.Decode(&out))
	assert.Equal(t, ev, out)
	assert.False(t, out.Writes[0].Empty())
	assert.True(t, out.Writes[1].Empty())

	assert.Equal(t, io.EOF, dec.Decode(&out))
}

func TestEncoder(t *testing.T) {
	roundTrip(t, false)
}

func TestCompressedEncoder(t *testing.T) {
	roundTrip(t, true)
}

func TestCompressed(t *testing.T) {
	assert.True(t, Compressed("events.json.gz"))
	assert.False(t, Compressed("events.json"))
}
