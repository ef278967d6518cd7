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
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral/sio"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral/vio"
	"github.com/andreas-jonsson/virtual8080/platform/dialog"
)

// command executes one prompt line. It reports true when the machine
// should run again.
func (m *Device) command(ln string) (bool, error) {
	ln = strings.TrimSpace(ln)
	switch {
	case ln == "q":
		return false, ErrQuit
	case ln == "c":
		m.r.Debug = false
		return true, nil
	case ln == "" || ln == "s":
		m.r.Debug = true
		return true, nil
	case ln == "reset":
		log.Print("Reset!")
		dialog.RequestRestart()
		m.r.Debug = false
		return true, nil
	case ln == "r":
		log.Print(m.p.DumpRegisters())
	case ln == "v":
		m.renderVideo()
	case ln == "h":
		m.showHistory(16)
	case ln == "ch":
		log.Print("Clear history!")
		m.clearHistory()
	case ln == "t":
		log.Printf("MIPS: %.2f\n", m.mips)
		log.Printf("Instructions: %d RX: %d TX: %d\n", m.stats.NumInstructions, m.stats.RX, m.stats.TX)
	case ln == "@":
		pc := memory.Pointer(m.r.PC)
		log.Printf("%v (%d)\n", pc, pc)
		log.Print(m.instruction(m.r.PC))
	case ln == "cb":
		log.Print("Clear breakpoints!")
		for _, br := range m.p.Breakpoints() {
			m.p.ClearBreakpoint(br)
		}
	case ln == "b":
		m.showBreakpoints()
	case ln == "baud":
		log.Printf("Baud rate: %d\n", sio.Baud())
	case strings.HasPrefix(ln, "h "):
		m.showHistoryWithLength(ln[2:])
	case strings.HasPrefix(ln, "b "):
		m.setBreakpoint(ln[2:])
	case strings.HasPrefix(ln, "rb "):
		m.removeBreakpoint(ln[3:])
	case strings.HasPrefix(ln, "m "):
		m.showMemory(ln[2:])
	case strings.HasPrefix(ln, "baud "):
		m.setBaud(ln[5:])
	case strings.HasPrefix(ln, "sym "):
		m.showSymbol(strings.TrimSpace(ln[4:]))
	case strings.HasPrefix(ln, "mount "):
		m.mount(ln[6:])
	case strings.HasPrefix(ln, "eject "):
		m.eject(ln[6:])
	default:
		log.Print("unknown command: ", ln)
	}
	return false, nil
}

func (m *Device) showMemory(rng string) {
	syms := m.p.Symbols()
	parts := strings.Split(rng, ",")

	from, err := syms.Parse(strings.TrimSpace(parts[0]))
	if err != nil {
		log.Println("invalid memory range")
		return
	}

	mem := m.p.Memory()
	if len(parts) == 1 {
		d := mem.Peek(from)
		log.Printf("%v: 0x%X (%d)\n", from, d, d)
		return
	}

	to, err := syms.Parse(strings.TrimSpace(parts[1]))
	if err != nil || to < from {
		log.Println("invalid memory range")
		return
	}

	buffer := make([]byte, int(to-from)+1)
	for i := range buffer {
		buffer[i] = mem.Peek(from + memory.Pointer(i))
	}
	log.Print(hex.Dump(buffer))
}

func toASCII(b byte) string {
	b &= 0x7F
	if b < 0x20 || b == 0x7F {
		return "."
	}
	return string(rune(b))
}

func (m *Device) renderVideo() {
	mem := m.p.Memory()
	p := vio.MemoryBase
	for y := 0; y < vio.Rows; y++ {
		var sb strings.Builder
		sb.WriteString("| ")
		for x := 0; x < vio.Columns; x++ {
			sb.WriteString(toASCII(mem.Peek(p)))
			p++
		}
		log.Print(sb.String())
	}
}

func (m *Device) showBreakpoints() {
	syms := m.p.Symbols()
	for i, br := range m.p.Breakpoints() {
		log.Printf("%d:\t%v %s\n", i, br, syms.Format(br))
	}
}

func (m *Device) setBreakpoint(br string) {
	b, err := m.p.Symbols().Parse(strings.TrimSpace(br))
	if err != nil {
		log.Print(err)
		return
	}
	log.Printf("Breakpoint set at: %v\n", b)
	m.p.SetBreakpoint(b)
}

func (m *Device) removeBreakpoint(br string) {
	i, err := strconv.Atoi(strings.TrimSpace(br))
	list := m.p.Breakpoints()
	if err != nil || i < 0 || i >= len(list) {
		log.Println("invalid breakpoint")
		return
	}
	log.Printf("Removed breakpoint %d at: %v\n", i, list[i])
	m.p.ClearBreakpoint(list[i])
}

func (m *Device) setBaud(s string) {
	baud, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || baud < 0 {
		log.Println("invalid baud rate")
		return
	}
	sio.SetBaud(baud)
	log.Printf("Baud rate: %d\n", sio.Baud())
}

func (m *Device) showSymbol(name string) {
	syms := m.p.Symbols()
	if addr, ok := syms.Addr(name); ok {
		log.Printf("%s = %v\n", name, addr)
		return
	}
	if addr, err := syms.Parse(name); err == nil {
		if n, ok := syms.Name(addr); ok {
			log.Printf("%v = %s\n", addr, n)
			return
		}
	}
	log.Print("unknown symbol: ", name)
}

func parseDrive(s string) (byte, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil || n >= dialog.MaxDrives {
		return 0, fmt.Errorf("invalid drive: %s", s)
	}
	return byte(n), nil
}

func (m *Device) mount(args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		log.Println("usage: mount <drive> <image>")
		return
	}
	dnum, err := parseDrive(fields[0])
	if err == nil {
		err = dialog.MountDiskImage(dnum, fields[1])
	}
	if err != nil {
		log.Print(err)
		return
	}
	log.Printf("Mounted %s in drive %d\n", fields[1], dnum)
}

func (m *Device) eject(args string) {
	dnum, err := parseDrive(args)
	if err == nil {
		err = dialog.EjectDisk(dnum)
	}
	if err != nil {
		log.Print(err)
		return
	}
	log.Printf("Ejected drive %d\n", dnum)
}

func (m *Device) showHistoryWithLength(hl string) {
	var num int
	if n, _ := fmt.Sscanf(hl, "%d", &num); n == 1 {
		if num <= 0 {
			num = historySize
		}
		m.showHistory(num)
		return
	}
	log.Println("invalid history range")
}

func (m *Device) showHistory(num int) {
	log.Println("| Lost instructions:", m.numInstructionsLost)
	n := len(m.historyChan)
	for i := 0; i < n; i++ {
		inst := <-m.historyChan
		if i >= n-num {
			log.Println(inst)
		}
		m.historyChan <- inst
	}
}

func (m *Device) clearHistory() {
	for {
		select {
		case <-m.historyChan:
			m.numInstructionsLost++
		default:
			return
		}
	}
}
