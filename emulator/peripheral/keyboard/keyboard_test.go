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

package keyboard

import (
	"sync"
	"testing"
	"time"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral/sio"
	"github.com/andreas-jonsson/virtual8080/emulator/processor/cpu"
	"github.com/andreas-jonsson/virtual8080/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTerminal struct {
	sync.Mutex
	output  []byte
	handler func(platform.Key)
}

func (t *testTerminal) Print(data []byte) {
	t.Lock()
	t.output = append(t.output, data...)
	t.Unlock()
}

func (t *testTerminal) SetKeyboardHandler(h func(platform.Key)) {
	t.handler = h
}

func (t *testTerminal) String() string {
	t.Lock()
	defer t.Unlock()
	return string(t.output)
}

func newTestDevice(t *testing.T) (*Device, *testTerminal, *cpu.CPU) {
	term := &testTerminal{}
	kb := &Device{Status: &sio.Status{}, Terminal: term}
	p, errs := cpu.NewCPU(memory.New(memory.MaxSize), []peripheral.Peripheral{kb.Status, kb})
	require.Empty(t, errs)
	require.NotNil(t, term.handler)
	return kb, term, p
}

func TestInstallWithoutTerminal(t *testing.T) {
	_, errs := cpu.NewCPU(nil, []peripheral.Peripheral{&Device{}})
	assert.Len(t, errs, 1)
}

func TestKeys(t *testing.T) {
	assert := assert.New(t)
	kb, term, p := newTestDevice(t)
	defer p.Close()

	term.handler('A')
	term.handler(platform.KeyEnter)

	var typed []byte
	assert.Eventually(func() bool {
		if kb.StatusChecked(false) {
			assert.True(kb.Status.RX())
			k, _ := kb.In(sio.DataPort, p)
			typed = append(typed, k)
		}
		return len(typed) == 2
	}, 5*time.Second, time.Millisecond)

	assert.Equal([]byte{'A', '\r'}, typed)
	assert.False(kb.Status.RX())
}

func TestQueueFull(t *testing.T) {
	kb, term, p := newTestDevice(t)
	defer p.Close()

	for i := 0; i < MaxEvents+1; i++ {
		term.handler('X')
	}
	assert.Equal(t, "\x07", term.String())

	kb.Reset()
	assert.NoError(t, kb.pushEvent('Y'))
}

func TestOutput(t *testing.T) {
	kb, term, p := newTestDevice(t)
	defer p.Close()

	kb.Out(sio.DataPort, 'H'|0x80)
	kb.Out(sio.DataPort, 0)
	kb.Out(sio.DataPort, 'I')
	assert.Equal(t, "HI", term.String())
}

func TestMonitorFocus(t *testing.T) {
	assert := assert.New(t)
	kb, term, p := newTestDevice(t)
	defer p.Close()

	var focus []Focus
	var lines []string
	kb.OnFocus = func(f Focus) { focus = append(focus, f) }
	kb.MonitorInput = func(ln string) { lines = append(lines, ln) }

	assert.Equal(FocusMachine, kb.Focus())
	term.handler(platform.KeyFocus)
	assert.Equal(FocusMonitor, kb.Focus())

	for _, k := range []platform.Key{'b', 'x', platform.KeyBackspace, ' ', '1', '0', platform.KeyEnter} {
		term.handler(k)
	}
	assert.Equal([]string{"b 10"}, lines)
	assert.Equal("bx\b \b 10\r\n", term.String())

	// Nothing reached the machine.
	assert.Len(kb.events, 0)

	kb.SetFocus(FocusMonitor)
	term.handler(platform.KeyFocus)
	assert.Equal([]Focus{FocusMonitor, FocusMachine}, focus)
	assert.Equal("MACHINE", kb.Focus().String())
}
