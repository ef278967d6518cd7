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

package disk

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/andreas-jonsson/virtual8080/emulator/processor"
)

const (
	SectorSize      = 0x80
	SectorsPerTrack = 26
	MaxDrives       = 16

	CommandPort = 0xFD
)

const (
	cmdWriteSector = 1
	cmdReadSector  = 2
)

const (
	statusDone     = 1
	statusNoDrive  = 2
	statusNoWrite  = 0x9F
	statusBadCmd   = 0xFF
	setAddressByte = 0x10
)

var ErrNoBootDisk = errors.New("no boot disk")

type diskDrive struct {
	rws     io.ReadWriteSeeker
	present bool
}

// Device is the FIF floppy controller. The processor writes 0x10 followed
// by the address of a command string to the command port, and 0x00 to run it.
//
//	+0 command (high nibble) and drive (low nibble)
//	+1 status, the command only runs while it is zero
//	+2 sector format
//	+3 track
//	+4 sector, starting at 1
//	+5 buffer address low
//	+6 buffer address high
type Device struct {
	cpu    processor.Processor
	lock   sync.Mutex
	buffer [SectorSize]byte

	state   int
	cmdAddr uint16

	disks [MaxDrives]diskDrive
}

func (m *Device) Install(p processor.Processor) error {
	m.cpu = p
	return p.InstallOutputDevice(CommandPort, m)
}

func (m *Device) Name() string {
	return "FIF Disk Controller"
}

func (m *Device) Reset() {
	m.lock.Lock()
	m.state = 0
	m.lock.Unlock()
}

func (m *Device) Step(int) error {
	return nil
}

func (m *Device) Eject(dnum byte) (io.ReadWriteSeeker, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if int(dnum) >= MaxDrives || !m.disks[dnum].present {
		return nil, errors.New("no disk")
	}
	d := &m.disks[dnum]
	d.present = false
	return d.rws, nil
}

func (m *Device) Replace(dnum byte, disk io.ReadWriteSeeker) error {
	m.Eject(dnum)
	return m.Insert(dnum, disk)
}

func (m *Device) Insert(dnum byte, disk io.ReadWriteSeeker) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if int(dnum) >= MaxDrives {
		return fmt.Errorf("invalid drive: %d", dnum)
	}
	d := &m.disks[dnum]
	if d.present {
		return errors.New("has disk")
	}
	if _, err := disk.Seek(0, io.SeekStart); err != nil {
		return err
	}

	d.rws = disk
	d.present = true
	return nil
}

// Boot copies track 0, sector 1 of the first drive to address 0.
func (m *Device) Boot() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	d := &m.disks[1]
	if !d.present {
		return ErrNoBootDisk
	}
	if err := m.readSector(d, 0, 1); err != nil {
		return fmt.Errorf("can't read boot sector: %w", err)
	}
	for i, v := range m.buffer {
		if err := m.cpu.LoadByte(memory.Pointer(i), v); err != nil {
			return err
		}
	}
	return nil
}

func sectorOffset(trk, sec byte) int64 {
	return SectorSize * (int64(sec) - 1 + SectorsPerTrack*int64(trk))
}

// readSector fills the buffer. Reading past the end of the image gives an empty sector.
func (m *Device) readSector(d *diskDrive, trk, sec byte) error {
	for i := range m.buffer {
		m.buffer[i] = 0
	}
	if _, err := d.rws.Seek(sectorOffset(trk, sec), io.SeekStart); err != nil {
		return err
	}
	if _, err := io.ReadFull(d.rws, m.buffer[:]); err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return err
	}
	return nil
}

func (m *Device) writeSector(d *diskDrive, trk, sec byte) error {
	if _, err := d.rws.Seek(sectorOffset(trk, sec), io.SeekStart); err != nil {
		return err
	}
	_, err := d.rws.Write(m.buffer[:])
	return err
}

func (m *Device) Out(_ byte, data byte) {
	m.lock.Lock()
	defer m.lock.Unlock()

	switch m.state {
	case 0:
		switch data {
		case 0:
			m.executeCommand()
		case setAddressByte:
			m.state = 1
		}
	case 1:
		m.cmdAddr = uint16(data)
		m.state = 2
	case 2:
		m.cmdAddr |= uint16(data) << 8
		m.state = 0
	}
}

func (m *Device) peek(offset uint16) byte {
	return m.cpu.Memory().Peek(memory.Pointer(m.cmdAddr + offset))
}

func (m *Device) setStatus(status byte) {
	m.cpu.WriteByte(memory.Pointer(m.cmdAddr+1), status)
}

func (m *Device) executeCommand() {
	if m.peek(1) != 0 {
		return
	}

	cmdByte := m.peek(0)
	trk, sec := m.peek(3), m.peek(4)
	addr := memory.Pointer(uint16(m.peek(5)) | uint16(m.peek(6))<<8)
	d := &m.disks[cmdByte&0x0F]

	switch cmdByte >> 4 {
	case cmdReadSector:
		if !d.present {
			m.setStatus(statusNoDrive)
			return
		}
		if err := m.readSector(d, trk, sec); err != nil {
			log.Print("Disk read error: ", err)
		}
		for i, v := range m.buffer {
			m.cpu.WriteByte(addr+memory.Pointer(i), v)
		}
		m.setStatus(statusDone)
	case cmdWriteSector:
		if !d.present {
			m.setStatus(statusNoWrite)
			return
		}
		for i := range m.buffer {
			m.buffer[i] = m.cpu.Memory().Peek(addr + memory.Pointer(i))
		}
		if err := m.writeSector(d, trk, sec); err != nil {
			log.Print("Disk write error: ", err)
			m.setStatus(statusNoWrite)
			return
		}
		m.setStatus(statusDone)
	default:
		log.Printf("Unsupported disk command: cmd:0x%02X fmt:0x%02X trk:%d sec:%d addr:%v", cmdByte, m.peek(2), trk, sec, addr)
		m.setStatus(statusBadCmd)
	}
}
