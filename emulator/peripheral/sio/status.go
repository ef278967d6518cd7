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

package sio

import (
	"fmt"
	"sync"
	"time"

	"github.com/andreas-jonsson/virtual8080/emulator/processor"
)

const (
	StatusPort = 3
	DataPort   = 2
)

const (
	txReady = 0x01
	rxReady = 0x02
)

// DefaultTightLoopSleep is how long a status poll blocks once a polling
// loop has been detected.
const DefaultTightLoopSleep = 200 * time.Millisecond

// Monitored channels are told about every status poll. Returning true
// signals that the channel has data and the poll is not idle.
type Monitored interface {
	StatusChecked(tightLoop bool) bool
}

// Status reports the transmit and receive state of a serial channel.
type Status struct {
	lock      sync.Mutex
	txNotRdy  bool
	rxRdy     bool
	monitored []Monitored

	tightLoops map[uint16]uint64
	prevCount  uint64

	Sleep time.Duration
	Trace func(format string, a ...interface{})
}

func (m *Status) Install(p processor.Processor) error {
	if m.Sleep == 0 {
		m.Sleep = DefaultTightLoopSleep
	}
	return p.InstallInputDevice(StatusPort, m)
}

func (m *Status) Name() string {
	return "Serial Status"
}

func (m *Status) Reset() {
	m.lock.Lock()
	m.rxRdy = false
	m.txNotRdy = false
	m.prevCount = 0
	m.lock.Unlock()
}

func (m *Status) Step(int) error {
	return nil
}

func (m *Status) AddMonitored(d Monitored) {
	m.lock.Lock()
	m.monitored = append(m.monitored, d)
	m.lock.Unlock()
}

// AddTightLoop marks the status poll at pc as a polling loop when fewer
// than limit instructions pass between two polls.
func (m *Status) AddTightLoop(pc uint16, limit uint64) {
	m.lock.Lock()
	if m.tightLoops == nil {
		m.tightLoops = make(map[uint16]uint64)
	}
	m.tightLoops[pc] = limit
	m.lock.Unlock()
}

func (m *Status) SetRX(b bool) {
	m.lock.Lock()
	m.rxRdy = b
	m.lock.Unlock()
}

func (m *Status) RX() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.rxRdy
}

func (m *Status) SetTX(b bool) {
	m.lock.Lock()
	m.txNotRdy = !b
	m.lock.Unlock()
}

func (m *Status) In(_ byte, p processor.Processor) (byte, error) {
	count := p.InstructionCount()
	pc := p.GetRegisters().PC - 2

	m.lock.Lock()
	elapsed := count - m.prevCount
	m.prevCount = count
	limit, ok := m.tightLoops[pc]
	monitored := m.monitored
	m.lock.Unlock()

	tightLoop := ok && elapsed <= limit
	for _, d := range monitored {
		if d.StatusChecked(tightLoop) {
			tightLoop = false
		}
	}

	if tightLoop {
		if m.Trace != nil {
			m.Trace("SLEEP %04x %d", pc, elapsed)
		}
		time.Sleep(m.Sleep)
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	var v byte
	if !m.txNotRdy {
		v |= txReady
	}
	if m.rxRdy {
		v |= rxReady
	}
	return v, nil
}

func (m *Status) String() string {
	m.lock.Lock()
	defer m.lock.Unlock()
	return fmt.Sprintf("TX:%v RX:%v", !m.txNotRdy, m.rxRdy)
}
