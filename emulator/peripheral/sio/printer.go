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
	"io"
	"os"
	"strings"
	"sync"

	"github.com/andreas-jonsson/virtual8080/emulator/processor"
)

// ByeBye is the line BASIC prints when it leaves.
const ByeBye = "BYE BYE"

// Printer collects output lines. The transcript is written to Output on Close.
type Printer struct {
	lock  sync.Mutex
	line  strings.Builder
	lines []string
	done  bool

	Port   byte
	Output io.Writer
}

func (m *Printer) Install(p processor.Processor) error {
	if m.Port == 0 {
		m.Port = DataPort
	}
	if m.Output == nil {
		m.Output = os.Stdout
	}
	return p.InstallOutputDevice(m.Port, m)
}

func (m *Printer) Name() string {
	return "Line Printer"
}

func (m *Printer) Reset() {
}

func (m *Printer) Step(int) error {
	return nil
}

func (m *Printer) Out(_ byte, data byte) {
	Pace()

	m.lock.Lock()
	defer m.lock.Unlock()

	switch {
	case data == '\n':
	case data == '\r':
		ln := m.line.String()
		if ln == ByeBye {
			m.done = true
		}
		m.lines = append(m.lines, ln)
		m.line.Reset()
	case data > 0 && data < 127:
		m.line.WriteByte(data)
	}
}

// Done reports whether the program has said goodbye.
func (m *Printer) Done() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.done
}

func (m *Printer) Lines() []string {
	m.lock.Lock()
	defer m.lock.Unlock()

	lines := append([]string(nil), m.lines...)
	if m.line.Len() > 0 {
		lines = append(lines, m.line.String())
	}
	return lines
}

func (m *Printer) Close() error {
	lines := m.Lines()
	if len(lines) == 0 {
		return nil
	}
	_, err := io.WriteString(m.Output, strings.Join(lines, "\n")+"\n")
	return err
}
