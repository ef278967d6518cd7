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

package vio

import (
	"errors"
	"sync"
	"time"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/andreas-jonsson/virtual8080/emulator/processor"
)

const (
	Columns = 80
	Rows    = 24

	memorySize  = 0x800
	frameLength = time.Second / 30
)

var MemoryBase memory.Pointer = 0x0800

// InverseMask marks a character cell as shown in inverse video.
const InverseMask = 0x80

type Renderer interface {
	RenderText(mem []byte, cols, rows int)
}

// Device is the memory mapped video board. Writes to video memory mark
// the screen dirty and it is redrawn at most once per frame.
type Device struct {
	lock        sync.Mutex
	dirtyMemory bool
	mem         [memorySize]byte
	frame       [Columns * Rows]byte
	lastFrame   time.Time

	Renderer Renderer
}

func (m *Device) Install(p processor.Processor) error {
	if m.Renderer == nil {
		return errors.New("no renderer")
	}
	from := int(MemoryBase)
	return p.InstallMemoryDevice(m, from, from+memorySize)
}

func (m *Device) Name() string {
	return "VIO Video Board"
}

func (m *Device) Reset() {
	m.lock.Lock()
	for i := range m.mem {
		m.mem[i] = ' '
	}
	m.dirtyMemory = true
	m.lock.Unlock()
}

func (m *Device) MemoryWritten(addr memory.Pointer, _, data byte) {
	m.lock.Lock()
	m.mem[int(addr-MemoryBase)&(memorySize-1)] = data
	m.dirtyMemory = true
	m.lock.Unlock()
}

// Dirty reports if video memory changed since the last frame.
func (m *Device) Dirty() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.dirtyMemory
}

func (m *Device) Step(int) error {
	if time.Since(m.lastFrame) < frameLength {
		return nil
	}
	m.lastFrame = time.Now()

	m.lock.Lock()
	if !m.dirtyMemory {
		m.lock.Unlock()
		return nil
	}
	m.dirtyMemory = false
	copy(m.frame[:], m.mem[:])
	m.lock.Unlock()

	m.Renderer.RenderText(m.frame[:], Columns, Rows)
	return nil
}
