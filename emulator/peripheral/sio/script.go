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
	"log"
	"strings"
	"sync"

	"github.com/andreas-jonsson/virtual8080/emulator/processor"
	"github.com/spf13/afero"
)

const scriptPollDelay = 10

// Script types a BASIC program into the machine as if from a paper tape.
type Script struct {
	lock  sync.Mutex
	keys  []byte
	delay int

	Port    byte
	Status  *Status
	Printer *Printer
}

// Load reads a program from fs. Each line is sent followed by a carriage return.
func (m *Script) Load(fs afero.Fs, name string) error {
	fp, err := fs.Open(name)
	if err != nil {
		return err
	}
	defer fp.Close()

	var lines []string
	scanner := bufio.NewScanner(fp)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	m.SetProgram(lines)
	return nil
}

func (m *Script) SetProgram(lines []string) {
	s := "TAPE\rNEW\r" + strings.Join(lines, "\r") + "\rKEY\rRUN\r"

	m.lock.Lock()
	m.keys = []byte(s)
	m.delay = 0
	m.lock.Unlock()
}

func (m *Script) Remaining() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.keys)
}

func (m *Script) Install(p processor.Processor) error {
	if m.Port == 0 {
		m.Port = DataPort
	}
	if m.Status != nil {
		m.Status.AddMonitored(m)
	}
	return p.InstallInputDevice(m.Port, m)
}

func (m *Script) Name() string {
	return "Script Input"
}

func (m *Script) Reset() {
}

func (m *Script) Step(int) error {
	return nil
}

func (m *Script) Close() error {
	if n := m.Remaining(); n > 0 {
		log.Printf("Remaining unread chars: %d", n)
	}
	return nil
}

func (m *Script) printerDone() bool {
	return m.Printer != nil && m.Printer.Done()
}

func (m *Script) StatusChecked(tightLoop bool) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	if tightLoop {
		m.delay = 0
	}
	if m.delay > 0 {
		m.delay--
		return false
	}
	if len(m.keys) > 0 || m.printerDone() {
		m.Status.SetRX(true)
		return true
	}
	return false
}

func (m *Script) In(byte, processor.Processor) (byte, error) {
	if m.printerDone() {
		return 0, processor.ErrNoData
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if m.Status != nil {
		m.Status.SetRX(false)
	}
	m.delay = scriptPollDelay

	if len(m.keys) == 0 {
		return 0, processor.ErrNoData
	}
	k := m.keys[0]
	m.keys = m.keys[1:]
	return k, nil
}
