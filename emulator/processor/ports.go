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

package processor

import (
	"fmt"
	"log"
)

// Ports maps 8-bit port numbers to input and output devices.
type Ports struct {
	in  [0x100]InputDevice
	out [0x100]OutputDevice

	loggedIn, loggedOut [0x100]bool
}

func (b *Ports) InstallInput(port byte, device InputDevice) error {
	if device == nil {
		return fmt.Errorf("no input device for port 0x%02X", port)
	}
	b.in[port] = device
	return nil
}

func (b *Ports) InstallOutput(port byte, device OutputDevice) error {
	if device == nil {
		return fmt.Errorf("no output device for port 0x%02X", port)
	}
	b.out[port] = device
	return nil
}

func (b *Ports) Input(port byte) InputDevice {
	return b.in[port]
}

func (b *Ports) Output(port byte) OutputDevice {
	return b.out[port]
}

// In reads from the device at port. Unmapped ports read as zero.
func (b *Ports) In(port byte, p Processor) (byte, error) {
	if d := b.in[port]; d != nil {
		return d.In(port, p)
	}
	if !b.loggedIn[port] {
		b.loggedIn[port] = true
		log.Printf("reading unmapped IO port: 0x%02X", port)
	}
	return 0, nil
}

// Out writes to the device at port. Writes to unmapped ports are dropped.
func (b *Ports) Out(port, data byte) {
	if d := b.out[port]; d != nil {
		d.Out(port, data)
		return
	}
	if !b.loggedOut[port] {
		b.loggedOut[port] = true
		log.Printf("writing unmapped IO port: 0x%02X", port)
	}
}
