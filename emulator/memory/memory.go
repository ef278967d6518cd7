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

package memory

import (
	"errors"
	"fmt"
	"io"
	"log"
)

const MaxSize = 0x10000

var ErrReadOnly = errors.New("write to read-only memory")

type Pointer uint16

func (p Pointer) String() string {
	return fmt.Sprintf("0x%04X", uint16(p))
}

// MappedDevice is notified after a write lands inside its installed range.
type MappedDevice interface {
	MemoryWritten(addr Pointer, old, data byte)
}

type mapping struct {
	from, to int
	device   MappedDevice
}

type Memory struct {
	mem         []byte
	readOnlyEnd int
	devices     []mapping

	TraceReads, TraceWrites bool
	Trace                   io.Writer
	Indent                  func() string
	Symbols                 *Symbols
}

func New(size int) *Memory {
	if size <= 0 || size > MaxSize {
		size = MaxSize
	}
	return &Memory{
		mem:     make([]byte, size),
		Symbols: NewSymbols(),
	}
}

func (m *Memory) Size() int {
	return len(m.mem)
}

func (m *Memory) Contains(addr int) bool {
	return addr >= 0 && addr < len(m.mem)
}

func (m *Memory) SetReadOnlyEnd(addr int) {
	m.readOnlyEnd = addr
}

func (m *Memory) ReadOnlyEnd() int {
	return m.readOnlyEnd
}

func (m *Memory) InstallDevice(device MappedDevice, from, to int) error {
	if from < 0 || to > MaxSize || from >= to {
		return fmt.Errorf("invalid memory range: 0x%X-0x%X", from, to)
	}
	for _, d := range m.devices {
		if d.device == device {
			return errors.New("device already installed")
		}
	}
	m.devices = append(m.devices, mapping{from, to, device})
	return nil
}

func (m *Memory) RemoveDevice(device MappedDevice) {
	for i, d := range m.devices {
		if d.device == device {
			m.devices = append(m.devices[:i], m.devices[i+1:]...)
			return
		}
	}
}

// Peek reads without tracing.
func (m *Memory) Peek(addr Pointer) byte {
	if int(addr) >= len(m.mem) {
		return 0
	}
	return m.mem[addr]
}

func (m *Memory) ReadByte(addr Pointer) byte {
	v := m.Peek(addr)
	if m.TraceReads && m.Trace != nil {
		fmt.Fprintf(m.Trace, "          %s is_mem[%s] -- %s\n", m.indent(), m.Symbols.Format(addr), formatValue(v))
	}
	return v
}

// WriteByte stores data and notifies any device mapped at addr. Writes beneath
// the read-only boundary are rejected with no mutation.
func (m *Memory) WriteByte(addr Pointer, data byte) error {
	return m.write(addr, data, m.TraceWrites)
}

// WriteStack is WriteByte without tracing.
func (m *Memory) WriteStack(addr Pointer, data byte) error {
	return m.write(addr, data, false)
}

func (m *Memory) write(addr Pointer, data byte, trace bool) error {
	if int(addr) < m.readOnlyEnd {
		if m.Trace != nil {
			fmt.Fprintf(m.Trace, "change read-only memory %s\n", m.Symbols.Format(addr))
		}
		return ErrReadOnly
	}
	if trace && m.Trace != nil {
		fmt.Fprintf(m.Trace, "          %s mem[%s] <- %s\n", m.indent(), m.Symbols.Format(addr), formatValue(data))
	}
	m.store(addr, data)
	return nil
}

// LoadByte bypasses the read-only boundary and device notifications.
func (m *Memory) LoadByte(addr Pointer, data byte) error {
	if int(addr) >= len(m.mem) {
		return fmt.Errorf("address %v outside of %d bytes memory", addr, len(m.mem))
	}
	m.mem[addr] = data
	return nil
}

func (m *Memory) store(addr Pointer, data byte) {
	if int(addr) >= len(m.mem) {
		log.Printf("writing unmapped memory: %v", addr)
		return
	}

	old := m.mem[addr]
	m.mem[addr] = data

	a := int(addr)
	for _, d := range m.devices {
		if a >= d.from && a < d.to {
			d.device.MemoryWritten(addr, old, data)
		}
	}
}

func (m *Memory) indent() string {
	if m.Indent == nil {
		return ""
	}
	return m.Indent()
}

func formatValue(v byte) string {
	if v >= 32 && v < 127 {
		return fmt.Sprintf("x%02x chr(%c)", v, v)
	}
	return fmt.Sprintf("x%02x", v)
}
