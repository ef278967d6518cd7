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
	"log"
	"net"
	"sync"

	"github.com/andreas-jonsson/virtual8080/emulator/processor"
)

const DefaultSocketPort = 8008

const (
	telnetIAC  = 0xFF
	telnetWILL = 0xFB
	telnetDO   = 0xFD
	telnetSB   = 0xFA
	telnetSE   = 0xF0

	telnetEcho = 0x01
	telnetSGA  = 0x03
)

// Socket is a serial channel served to a single telnet client.
type Socket struct {
	lock     sync.Mutex
	ln       net.Listener
	conn     net.Conn
	keys     []byte
	notifyCh chan struct{}

	Port    byte
	TCPPort int
	Status  *Status
}

func (m *Socket) Install(p processor.Processor) error {
	if m.Port == 0 {
		m.Port = DataPort
	}
	if m.TCPPort == 0 {
		m.TCPPort = DefaultSocketPort
	}
	if m.Status != nil {
		m.Status.AddMonitored(m)
	}

	var err error
	if m.ln, err = net.Listen("tcp", fmt.Sprintf(":%d", m.TCPPort)); err != nil {
		return err
	}
	log.Printf("Serial console listening on port %d", m.TCPPort)
	m.notifyCh = make(chan struct{}, 1)
	go m.accept()

	if err := p.InstallInputDevice(m.Port, m); err != nil {
		return err
	}
	return p.InstallOutputDevice(m.Port, m)
}

// Addr is the address the listener is bound to.
func (m *Socket) Addr() net.Addr {
	if m.ln == nil {
		return nil
	}
	return m.ln.Addr()
}

func (m *Socket) accept() {
	for {
		conn, err := m.ln.Accept()
		if err != nil {
			return
		}

		m.lock.Lock()
		if m.conn != nil {
			m.conn.Close()
		}
		m.conn = conn
		m.keys = m.keys[:0]
		m.lock.Unlock()

		log.Print("Serial console connected: ", conn.RemoteAddr())
		conn.Write([]byte{telnetIAC, telnetWILL, telnetEcho, telnetIAC, telnetWILL, telnetSGA})
		go m.read(conn)
	}
}

func (m *Socket) read(conn net.Conn) {
	var buf [256]byte
	var state int
	for {
		n, err := conn.Read(buf[:])
		if err != nil {
			m.lock.Lock()
			if m.conn == conn {
				m.conn = nil
			}
			m.lock.Unlock()
			return
		}

		m.lock.Lock()
		for _, c := range buf[:n] {
			state = m.filterTelnet(state, c)
		}
		m.lock.Unlock()

		select {
		case m.notifyCh <- struct{}{}:
		default:
		}
	}
}

// filterTelnet strips option negotiation from the input stream.
func (m *Socket) filterTelnet(state int, c byte) int {
	switch state {
	case 1: // after IAC
		switch c {
		case telnetIAC:
			m.keys = append(m.keys, c)
			return 0
		case telnetSB:
			return 3
		case telnetWILL, telnetDO, telnetWILL + 1, telnetDO + 1:
			return 2
		}
		return 0
	case 2: // option byte
		return 0
	case 3: // subnegotiation
		if c == telnetIAC {
			return 4
		}
		return 3
	case 4:
		if c == telnetSE {
			return 0
		}
		return 3
	}

	switch c {
	case telnetIAC:
		return 1
	case 0, '\n':
	default:
		m.keys = append(m.keys, c)
	}
	return 0
}

func (m *Socket) Name() string {
	return "Socket Console"
}

func (m *Socket) Reset() {
	m.lock.Lock()
	m.keys = m.keys[:0]
	m.lock.Unlock()
}

func (m *Socket) Step(int) error {
	return nil
}

func (m *Socket) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	if m.ln != nil {
		return m.ln.Close()
	}
	return nil
}

func (m *Socket) StatusChecked(bool) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	if len(m.keys) > 0 {
		if m.Status != nil {
			m.Status.SetRX(true)
		}
		return true
	}
	return false
}

// Wait blocks until the client sends something.
func (m *Socket) Wait() {
	<-m.notifyCh
}

func (m *Socket) In(byte, processor.Processor) (byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.Status != nil {
		m.Status.SetRX(false)
	}
	if len(m.keys) == 0 {
		return 0, nil
	}
	k := m.keys[0]
	m.keys = m.keys[1:]
	return k, nil
}

func (m *Socket) Out(_ byte, data byte) {
	Pace()

	m.lock.Lock()
	conn := m.conn
	m.lock.Unlock()

	if conn == nil {
		return
	}
	if _, err := conn.Write([]byte{data}); err != nil {
		log.Print("Serial console: ", err)
	}
}
