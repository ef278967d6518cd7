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
	"bufio"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/andreas-jonsson/virtual8080/emulator/processor"
)

const (
	keySpeed  = 10 * time.Millisecond
	ctrlC     = 0x03
	ctrlO     = 0x0F
	maxCtrlC  = 3
	lineQueue = 16
)

// Console is a line oriented terminal on the standard streams. Lines are
// upper-cased and sent with a trailing carriage return.
type Console struct {
	lock     sync.Mutex
	keys     []byte
	lines    chan string
	sig      chan os.Signal
	eof      bool
	numCtrlC int
	lastKey  time.Time

	Port   byte
	Status *Status
	Input  io.Reader
	Output io.Writer
}

func (m *Console) Install(p processor.Processor) error {
	if m.Port == 0 {
		m.Port = DataPort
	}
	if m.Input == nil {
		m.Input = os.Stdin
	}
	if m.Output == nil {
		m.Output = os.Stdout
	}
	if m.Status != nil {
		m.Status.AddMonitored(m)
	}

	m.lines = make(chan string, lineQueue)
	go m.readLines()

	m.sig = make(chan os.Signal, 1)
	signal.Notify(m.sig, os.Interrupt)

	if err := p.InstallInputDevice(m.Port, m); err != nil {
		return err
	}
	return p.InstallOutputDevice(m.Port, m)
}

func (m *Console) readLines() {
	scanner := bufio.NewScanner(m.Input)
	for scanner.Scan() {
		m.lines <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		log.Print(err)
	}
	close(m.lines)
}

func (m *Console) Name() string {
	return "Console"
}

func (m *Console) Reset() {
	m.lock.Lock()
	m.keys = nil
	m.numCtrlC = 0
	m.lock.Unlock()
}

func (m *Console) Step(int) error {
	return nil
}

func (m *Console) Close() error {
	if m.sig != nil {
		signal.Stop(m.sig)
	}
	return nil
}

// queueLine turns one input line into keystrokes.
func (m *Console) queueLine(ln string) {
	ln = strings.ToUpper(strings.TrimSpace(ln))
	if ln == "CTRLO" {
		m.keys = append(m.keys, ctrlO)
		return
	}
	m.keys = append(m.keys, ln...)
	m.keys = append(m.keys, '\r')
}

func (m *Console) StatusChecked(bool) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	select {
	case <-m.sig:
		m.numCtrlC++
		if m.numCtrlC > maxCtrlC {
			log.Print("EXIT due to CTRL-C")
			m.eof = true
		}
	default:
	}

	if time.Since(m.lastKey) < keySpeed {
		return len(m.keys) > 0
	}

	if len(m.keys) == 0 && m.numCtrlC == 0 && !m.eof {
		select {
		case ln, ok := <-m.lines:
			if !ok {
				m.eof = true
			} else {
				m.queueLine(ln)
			}
		default:
		}
	}

	if len(m.keys) > 0 || m.numCtrlC > 0 || m.eof {
		if m.Status != nil {
			m.Status.SetRX(true)
		}
		return true
	}
	return false
}

func (m *Console) In(byte, processor.Processor) (byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	var key byte
	switch {
	case m.numCtrlC > 0:
		m.numCtrlC = 0
		key = ctrlC
	case len(m.keys) > 0:
		key = m.keys[0]
		m.keys = m.keys[1:]
	case m.eof:
		return 0, processor.ErrNoData
	}

	if m.Status != nil {
		m.Status.SetRX(false)
	}
	m.lastKey = time.Now()
	return key, nil
}

func (m *Console) Out(_ byte, data byte) {
	Pace()
	if data > 0 && data < 127 {
		m.Output.Write([]byte{data})
	}
}
