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

package rom

import (
	"fmt"
	"io"
	"io/ioutil"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/andreas-jonsson/virtual8080/emulator/processor"
)

// Device copies a raw binary image into memory at Base when installed.
// With Protect set, everything below the end of the image becomes read-only.
type Device struct {
	mem []byte

	Base    memory.Pointer
	RomName string
	Reader  io.Reader
	Protect bool
}

func (m *Device) Install(p processor.Processor) error {
	var err error
	if m.mem, err = ioutil.ReadAll(m.Reader); err != nil {
		return err
	}
	if m.RomName == "" {
		m.RomName = "ROM"
	}

	end := int(m.Base) + len(m.mem)
	if end > p.Memory().Size() {
		return fmt.Errorf("image of %d bytes at %v does not fit in memory", len(m.mem), m.Base)
	}

	for i, v := range m.mem {
		if err := p.LoadByte(m.Base+memory.Pointer(i), v); err != nil {
			return err
		}
	}
	if m.Protect {
		p.SetReadOnlyEnd(memory.Pointer(end))
	}
	return nil
}

func (m *Device) Name() string {
	return m.RomName
}

func (m *Device) Size() int {
	return len(m.mem)
}

func (m *Device) Reset() {
}

func (m *Device) Step(int) error {
	return nil
}
