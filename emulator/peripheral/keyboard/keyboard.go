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
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreas-jonsson/virtual8080/emulator/peripheral/sio"
	"github.com/andreas-jonsson/virtual8080/emulator/processor"
	"github.com/andreas-jonsson/virtual8080/platform"
)

const MaxEvents = 64

var ErrQueueFull = errors.New("event queue is full")

// Focus selects who receives keys from the terminal.
type Focus int32

const (
	FocusMachine Focus = iota
	FocusMonitor
)

func (f Focus) String() string {
	if f == FocusMonitor {
		return "MONITOR"
	}
	return "MACHINE"
}

// Terminal is the part of the platform the keyboard talks to.
type Terminal interface {
	Print(data []byte)
	SetKeyboardHandler(h func(platform.Key))
}

// Device is the serial terminal keyboard and printer on the data port.
type Device struct {
	lock   sync.Mutex
	state  byte
	hasKey bool
	events chan byte
	ticker *time.Ticker

	focus int32
	line  []byte

	Port     byte
	Status   *sio.Status
	Terminal Terminal

	// MonitorInput receives each line typed while the monitor has focus.
	MonitorInput func(line string)
	OnFocus      func(f Focus)
}

func (m *Device) Install(p processor.Processor) error {
	if m.Port == 0 {
		m.Port = sio.DataPort
	}
	if m.Terminal == nil {
		return errors.New("no terminal")
	}

	m.ticker = time.NewTicker(time.Millisecond * 10)
	m.events = make(chan byte, MaxEvents)

	if m.Status != nil {
		m.Status.AddMonitored(m)
	}
	m.Terminal.SetKeyboardHandler(m.pushKey)

	if err := p.InstallInputDevice(m.Port, m); err != nil {
		return err
	}
	return p.InstallOutputDevice(m.Port, m)
}

func (m *Device) Name() string {
	return "Terminal Keyboard"
}

func (m *Device) Reset() {
	m.lock.Lock()
	m.state = 0
	m.hasKey = false
	m.lock.Unlock()

	for {
		select {
		case <-m.events:
		default:
			return
		}
	}
}

func (m *Device) Step(int) error {
	return nil
}

func (m *Device) Close() error {
	if m.ticker != nil {
		m.ticker.Stop()
	}
	return nil
}

func (m *Device) Focus() Focus {
	return Focus(atomic.LoadInt32(&m.focus))
}

func (m *Device) SetFocus(f Focus) {
	if Focus(atomic.SwapInt32(&m.focus, int32(f))) == f {
		return
	}
	if m.OnFocus != nil {
		m.OnFocus(f)
	}
}

func (m *Device) pushKey(k platform.Key) {
	if k == platform.KeyFocus {
		if m.Focus() == FocusMachine {
			m.SetFocus(FocusMonitor)
		} else {
			m.SetFocus(FocusMachine)
		}
		return
	}

	if m.Focus() == FocusMonitor {
		m.editLine(byte(k))
		return
	}

	if err := m.pushEvent(byte(k)); err != nil {
		m.Terminal.Print([]byte{0x07})
	}
}

// editLine does simple line editing for the monitor prompt.
func (m *Device) editLine(c byte) {
	switch {
	case c == '\r' || c == '\n':
		ln := string(m.line)
		m.line = m.line[:0]
		m.Terminal.Print([]byte("\r\n"))
		if m.MonitorInput != nil {
			m.MonitorInput(ln)
		}
	case c == byte(platform.KeyBackspace) || c == byte(platform.KeyDelete):
		if len(m.line) > 0 {
			m.line = m.line[:len(m.line)-1]
			m.Terminal.Print([]byte("\b \b"))
		}
	case c >= 0x20 && c < 0x7F:
		m.line = append(m.line, c)
		m.Terminal.Print([]byte{c})
	}
}

func (m *Device) pushEvent(ev byte) error {
	select {
	case m.events <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

func (m *Device) checkEvents() bool {
	select {
	case <-m.ticker.C:
		select {
		case m.state = <-m.events:
			m.hasKey = true
			return true
		default:
		}
	default:
	}
	return false
}

func (m *Device) StatusChecked(bool) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	if !m.hasKey {
		m.checkEvents()
	}
	if m.hasKey && m.Status != nil {
		m.Status.SetRX(true)
	}
	return m.hasKey
}

func (m *Device) In(byte, processor.Processor) (byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if !m.hasKey {
		m.checkEvents()
	}
	m.hasKey = false
	if m.Status != nil {
		m.Status.SetRX(false)
	}
	return m.state, nil
}

func (m *Device) Out(_ byte, data byte) {
	sio.Pace()
	if data &= 0x7F; data != 0 {
		m.Terminal.Print([]byte{data})
	}
}
