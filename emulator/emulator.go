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

package emulator

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/andreas-jonsson/virtual8080/emulator/loader"
	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral/debug"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral/disk"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral/keyboard"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral/rom"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral/sio"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral/switches"
	"github.com/andreas-jonsson/virtual8080/emulator/peripheral/vio"
	"github.com/andreas-jonsson/virtual8080/emulator/processor"
	"github.com/andreas-jonsson/virtual8080/emulator/processor/cpu"
	"github.com/andreas-jonsson/virtual8080/emulator/processor/validator"
	"github.com/andreas-jonsson/virtual8080/platform"
	"github.com/andreas-jonsson/virtual8080/platform/dialog"
	"github.com/spf13/afero"
)

const scriptStepLimit = 5000000

var (
	basicPath = "IMSAI"
	hexImage  = ""
)

var (
	memKiB, tcpPort, baud int
	stepLimit             uint64

	traceDebug, socketMode, vioVideo,
	basic4k, textMode, lineMode, diskBoot bool

	basScript, romImage, traceFile, tightLoops, validatorFile string
	romBase                                    uint

	lastError error
)

func init() {
	if p, ok := os.LookupEnv("V8080_DEFAULT_HEX"); ok {
		hexImage = p
	}
	if p, ok := os.LookupEnv("V8080_DEFAULT_BASIC"); ok {
		basicPath = p
	}

	flag.IntVar(&memKiB, "m", 16, "Memory size in KiB (1-64)")
	flag.BoolVar(&traceDebug, "d", false, "Trace instructions and memory access")
	flag.StringVar(&traceFile, "trace", "dbg.txt", "Trace output file")
	flag.BoolVar(&socketMode, "s", false, "Serve the console as a telnet TTY")
	flag.IntVar(&tcpPort, "port", 8008, "Telnet TTY port")
	flag.BoolVar(&vioVideo, "v", false, "Enable the VIO video board")
	flag.BoolVar(&basic4k, "4", false, "Use 4K BASIC")
	flag.IntVar(&baud, "baud", 0, "Serial line speed, 0 is unlimited")
	flag.Uint64Var(&stepLimit, "limit", 0, "Stop after this many instructions")

	flag.StringVar(&hexImage, "hex", hexImage, "Intel HEX image to run")
	flag.StringVar(&basicPath, "basic", basicPath, "Directory holding the BASIC images")
	flag.StringVar(&basScript, "bas", "", "Run a BASIC program and print the transcript")
	flag.BoolVar(&lineMode, "line", false, "Line oriented console on standard input")
	flag.BoolVar(&diskBoot, "boot", false, "Boot from disk A")

	flag.StringVar(&romImage, "rom", "", "Binary ROM image")
	flag.UintVar(&romBase, "rom-base", 0, "Load address of the ROM image")
	flag.StringVar(&tightLoops, "tight", "", "Status polling loops as ADDR[=COUNT],...")

	flag.BoolVar(&textMode, "text", false, "Raw terminal on standard input and output")
	flag.StringVar(&validatorFile, "validator", "", "Record instruction events to this file (.gz compresses)")
}

// ParseArgs picks up program and script files given as plain arguments.
func ParseArgs(args []string) {
	for _, arg := range args {
		switch strings.ToLower(path.Ext(arg)) {
		case ".bas":
			basScript = arg
		case ".hex":
			hexImage = arg
		}
	}
}

// Headless reports if the machine runs without a terminal.
func Headless() bool {
	return socketMode || lineMode || basScript != ""
}

// Err returns the reason the last run stopped, if it was a failure.
func Err() error {
	return lastError
}

func Start(pl platform.Platform) {
	lastError = emuLoop(pl)
}

type terminalWriter struct {
	pl platform.Platform
}

func (w terminalWriter) Write(p []byte) (int, error) {
	w.pl.Print(p)
	return len(p), nil
}

type machine struct {
	fs          afero.Fs
	pl          platform.Platform
	status      *sio.Status
	peripherals []peripheral.Peripheral

	dc     *disk.Device
	script *sio.Script
	socket *sio.Socket
}

func emuLoop(pl platform.Platform) error {
	if memKiB <= 0 || memKiB > 64 {
		return fmt.Errorf("invalid memory size: %d", memKiB)
	}

	m := &machine{
		fs:     pl.FileSystem(),
		pl:     pl,
		status: &sio.Status{},
		dc:     &disk.Device{},
	}
	dialog.FS = m.fs
	dialog.FloppyController = m.dc

	if err := dialog.OpenDriveImages(); err != nil {
		return err
	}
	defer dialog.CloseDriveImages()

	for i, d := range dialog.DriveImages {
		if d.Fp != nil {
			if err := m.dc.Insert(byte(i), d.Fp); err != nil {
				return err
			}
		}
	}

	m.peripherals = []peripheral.Peripheral{
		m.status, // Serial Status (port 3)
		m.dc,     // FIF Disk Controller
		&control{},
	}

	if romImage != "" {
		fp, err := m.fs.Open(romImage)
		if err != nil {
			return err
		}
		defer fp.Close()

		m.peripherals = append(m.peripherals, &rom.Device{
			RomName: path.Base(romImage),
			Base:    memory.Pointer(romBase),
			Reader:  fp,
			Protect: true,
		})
	}

	if err := m.setupChannel(); err != nil {
		return err
	}

	mem := memory.New(memKiB * 1024)
	p, errs := cpu.NewCPU(mem, m.peripherals)
	defer p.Close()
	if len(errs) > 0 {
		for _, err := range errs[1:] {
			log.Print(err)
		}
		return errs[0]
	}

	if err := m.loadProgram(p); err != nil {
		return err
	}
	if err := m.setupTightLoops(p.Symbols()); err != nil {
		return err
	}

	if traceDebug {
		fp, err := m.fs.Create(traceFile)
		if err != nil {
			return err
		}
		defer fp.Close()

		w := bufio.NewWriter(fp)
		defer w.Flush()
		p.EnableTrace(w)
	}

	if validatorFile != "" {
		if !validator.Enabled {
			log.Print("Validator support is not compiled in, build with -tags validator")
		}
		validator.SetFileSystem(m.fs)
		if err := validator.Initialize(validatorFile, validator.DefaultQueueSize, validator.DefaultBufferSize); err != nil {
			return err
		}
		defer validator.Shutdown()
	}

	if m.socket != nil {
		log.Printf("Waiting for telnet connection on %v", m.socket.Addr())
		m.socket.Wait()
	}

	return run(p)
}

func run(p *cpu.CPU) error {
	for {
		p.Reset(0)

		limit := stepLimit
		if limit != 0 {
			limit += p.InstructionCount()
		}

		err := p.Run(limit)
		switch {
		case err == nil:
			log.Printf("Step limit reached after %d instructions", p.InstructionCount())
			return nil
		case errors.Is(err, errRestart):
			log.Print("Restart!")
			continue
		case errors.Is(err, errShutdown), errors.Is(err, debug.ErrQuit):
			return nil
		case errors.Is(err, processor.ErrNoData):
			log.Print("End of input")
			return nil
		case errors.Is(err, processor.ErrCPUHalt):
			log.Printf("HALT at %s", p.Symbols().Format(memory.Pointer(p.PC-1)))
			return nil
		}

		log.Print(p.DumpRegisters())
		return err
	}
}

// setupChannel installs the serial channel A devices for the selected mode.
func (m *machine) setupChannel() error {
	sio.SetBaud(baud)

	switch {
	case basScript != "":
		printer := &sio.Printer{}
		m.script = &sio.Script{Status: m.status, Printer: printer}
		if err := m.script.Load(m.fs, basScript); err != nil {
			return err
		}
		sio.SetBaud(0)
		if stepLimit == 0 {
			stepLimit = scriptStepLimit
		}
		m.peripherals = append(m.peripherals, m.script, printer)
	case socketMode:
		m.socket = &sio.Socket{TCPPort: tcpPort, Status: m.status}
		m.peripherals = append(m.peripherals, m.socket, &switches.Device{Value: switches.SocketMode})
	case lineMode:
		m.peripherals = append(m.peripherals, &sio.Console{Status: m.status})
	default:
		m.setupTerminal()
		return nil
	}

	if debug.EnableDebug {
		m.peripherals = append(m.peripherals, &debug.Device{})
	}
	return nil
}

// setupTerminal connects the keyboard, the monitor and the optional
// video board to the platform.
func (m *machine) setupTerminal() {
	var (
		dbg = &debug.Device{}
		kb  = &keyboard.Device{Status: m.status, Terminal: m.pl}
	)

	debug.SetOutput(terminalWriter{m.pl})
	if !textMode {
		debug.MuteLogging(true)
	}

	kb.MonitorInput = dbg.ConsoleInput
	kb.OnFocus = func(f keyboard.Focus) {
		m.pl.SetTitle("virtual8080 - " + f.String())
		if f == keyboard.FocusMonitor {
			debug.MuteLogging(false)
			dbg.Interrupt()
			return
		}
		debug.MuteLogging(!textMode)
		dbg.Resume()
	}
	dbg.OnContinue = func() {
		kb.SetFocus(keyboard.FocusMachine)
	}

	m.peripherals = append(m.peripherals, kb, dbg)
	if vioVideo {
		m.peripherals = append(m.peripherals, &vio.Device{Renderer: m.pl})
	}
	m.pl.SetTitle("virtual8080 - " + kb.Focus().String())
}

func (m *machine) loadProgram(p *cpu.CPU) error {
	switch {
	case diskBoot:
		return m.dc.Boot()
	case hexImage != "":
		return loader.Boot(m.fs, hexImage, p)
	case basic4k:
		log.Print("USING 4K BASIC")
		if err := loader.Boot(m.fs, path.Join(basicPath, "basic4k.hex"), p); err != nil {
			return err
		}
		p.Symbols().Extend("IOBUF", -2)
		p.Symbols().Extend("BEGPR", -2)
	default:
		log.Print("USING 8K BASIC")
		if err := loader.Boot(m.fs, path.Join(basicPath, "basic8k.hex"), p); err != nil {
			return err
		}
		p.Symbols().Extend("BEGPR", 250)
		if addr, ok := p.Symbols().Addr("RAM"); ok {
			p.SetReadOnlyEnd(addr)
		}
	}
	return nil
}

func (m *machine) setupTightLoops(syms *memory.Symbols) error {
	if tightLoops == "" {
		return nil
	}

	for _, entry := range strings.Split(tightLoops, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), "=", 2)
		pc, err := syms.Parse(parts[0])
		if err != nil {
			return err
		}

		limit := uint64(20)
		if len(parts) == 2 {
			if limit, err = strconv.ParseUint(parts[1], 10, 64); err != nil {
				return fmt.Errorf("bad tight loop count: %s", parts[1])
			}
		}
		m.status.AddTightLoop(uint16(pc), limit)
	}
	return nil
}
