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

package debug

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/andreas-jonsson/virtual8080/emulator/processor"
	"github.com/andreas-jonsson/virtual8080/emulator/processor/cpu"
)

const (
	historySize = 128
	lineQueue   = 16
)

var (
	EnableDebug, noHistory, debugBreak bool
	debugPort                          = 23
)

var ErrQuit = errors.New("QUIT!")

var internalLogger = &Logger{local: os.Stderr}

// Logger mirrors log output to the connected telnet client and to a
// local writer. The marker <<<! followed by a newline keeps the cursor
// on the same line, used for prompts.
type Logger struct {
	sync.RWMutex
	conn  net.Conn
	local io.Writer
	muted bool
}

func (l *Logger) Write(p []byte) (n int, err error) {
	l.Lock()
	defer l.Unlock()

	n = len(p)
	p = bytes.ReplaceAll(p, []byte("<<<!\n"), []byte{})
	p = bytes.ReplaceAll(p, []byte{0xA}, []byte{0xD, 0xA})

	if l.local != nil && !l.muted {
		l.local.Write(p)
	}
	if l.conn != nil {
		if _, err := l.conn.Write(p); err != nil {
			l.conn = nil
		}
	}
	return
}

func (l *Logger) setConn(conn net.Conn) {
	l.Lock()
	if l.conn != nil {
		l.conn.Close()
	}
	l.conn = conn
	l.Unlock()
}

// MuteLogging silences the local log output. The telnet client still
// receives everything.
func MuteLogging(b bool) {
	internalLogger.Lock()
	internalLogger.muted = b
	internalLogger.Unlock()
}

// SetOutput replaces the local log writer.
func SetOutput(w io.Writer) {
	internalLogger.Lock()
	internalLogger.local = w
	internalLogger.Unlock()
}

func init() {
	flag.BoolVar(&noHistory, "nohistory", false, "do not build histogram")
	flag.BoolVar(&EnableDebug, "debug", false, "enable telnet debugger")
	flag.BoolVar(&debugBreak, "break", false, "break on startup")
	flag.IntVar(&debugPort, "debugport", debugPort, "telnet debugger port")

	log.SetOutput(internalLogger)
}

type Device struct {
	signChan            chan os.Signal
	historyChan         chan string
	numInstructionsLost uint64

	lines     chan string
	listener  net.Listener
	interrupt int32
	breaking  int32

	mips        float64
	stats       processor.Stats
	updateStats time.Time

	// OnContinue is called when the prompt is left to run the machine.
	OnContinue func()

	r *processor.Registers
	p processor.Processor
}

func (m *Device) Install(p processor.Processor) error {
	m.historyChan = make(chan string, historySize)
	m.lines = make(chan string, lineQueue)
	m.signChan = make(chan os.Signal, 1)
	signal.Notify(m.signChan, os.Interrupt)

	if EnableDebug {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", debugPort))
		if err != nil {
			return err
		}
		m.listener = ln
		go m.accept()
	}

	p.SetBreakHandler(m)

	m.p = p
	m.r = p.GetRegisters()
	m.r.Debug = debugBreak
	m.updateStats = time.Now()
	return nil
}

func (m *Device) accept() {
	for {
		conn, err := m.listener.Accept()
		if err != nil {
			return
		}
		internalLogger.setConn(conn)

		name, _ := os.Hostname()
		log.Print("Connected to: ", name)
		go m.read(conn)
	}
}

func (m *Device) read(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		m.ConsoleInput(scanner.Text())
	}
}

// ConsoleInput queues a command line for the prompt.
func (m *Device) ConsoleInput(ln string) {
	ln = strings.TrimFunc(ln, func(r rune) bool {
		return r < 0x20 || r >= 0x7F
	})
	select {
	case m.lines <- ln:
	default:
		log.Print("debug: input queue is full")
	}
}

// Interrupt requests a break before the next instruction. It is safe to
// call from any goroutine.
func (m *Device) Interrupt() {
	atomic.StoreInt32(&m.interrupt, 1)
}

// Resume leaves the prompt if it is waiting for a command.
func (m *Device) Resume() {
	if atomic.LoadInt32(&m.breaking) != 0 {
		m.ConsoleInput("c")
	}
}

func (m *Device) Name() string {
	return "Debug Device"
}

func (m *Device) Reset() {
}

func (m *Device) Step(int) error {
	if time.Since(m.updateStats) >= time.Second {
		m.stats = m.p.GetStats()
		m.mips = float64(m.stats.NumInstructions) / 1000000.0
		m.updateStats = time.Now()
	}

	select {
	case <-m.signChan:
		log.Println("BREAK!")
		m.r.Debug = true
	default:
	}

	if atomic.SwapInt32(&m.interrupt, 0) != 0 {
		m.r.Debug = true
	}

	if !noHistory {
		m.pushHistory(m.instruction(m.p.InstructionPC()))
	}
	return nil
}

func (m *Device) instruction(addr uint16) string {
	pc := memory.Pointer(addr)
	text, _ := cpu.Disassemble(m.p.Memory(), pc)
	return fmt.Sprintf("| [%s] %s", m.p.Symbols().Format(pc), text)
}

// Break runs the monitor prompt until the machine is told to step or continue.
func (m *Device) Break(p processor.Processor) error {
	atomic.StoreInt32(&m.breaking, 1)
	defer atomic.StoreInt32(&m.breaking, 0)

	m.r.Debug = true
	log.Println(m.instruction(m.r.PC))

	for {
		log.Printf("[%s] DEBUG><<<!\n", p.Symbols().Format(memory.Pointer(m.r.PC)))

		done, err := m.command(<-m.lines)
		if err != nil {
			return err
		}
		if done {
			if !m.r.Debug && m.OnContinue != nil {
				m.OnContinue()
			}
			return nil
		}
	}
}

func (m *Device) pushHistory(inst string) {
	select {
	case m.historyChan <- inst:
	default:
		<-m.historyChan
		m.numInstructionsLost++
		m.historyChan <- inst
	}
}

func (m *Device) Close() error {
	if m.signChan != nil {
		signal.Stop(m.signChan)
	}
	if m.listener != nil {
		m.listener.Close()
	}
	internalLogger.setConn(nil)
	return nil
}
