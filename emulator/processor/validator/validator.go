// +build validator

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

package validator

import (
	"bytes"
	"io"
	"log"

	"github.com/andreas-jonsson/virtual8080/emulator/processor"
	"github.com/spf13/afero"
)

const Enabled = true

// FS is where event files are created.
var FS = afero.NewOsFs()

var outputFile string

func SetFileSystem(fs afero.Fs) {
	FS = fs
}

var (
	inScope      bool
	currentEvent Event
	outputChan   chan Event
	quitChan     chan struct{}
)

func Initialize(output string, queueSize, bufferSize int) error {
	if outputFile = output; output == "" {
		return nil
	}

	fp, err := FS.Create(outputFile)
	if err != nil {
		outputFile = ""
		return err
	}

	outputChan = make(chan Event, queueSize)
	quitChan = make(chan struct{})

	go func() {
		var buffer bytes.Buffer

		defer fp.Close()
		defer func() { io.Copy(fp, &buffer); quitChan <- struct{}{} }()

		enc := NewEncoder(&buffer, Compressed(output))
		defer enc.Close()

		for ev := range outputChan {
			if err := enc.Encode(&ev); err != nil {
				log.Print(err)
				return
			}
			if buffer.Len() >= bufferSize {
				log.Print("Flush validation events!")
				if _, err := io.Copy(fp, &buffer); err != nil {
					log.Print(err)
					return
				}
			}
		}
	}()
	return nil
}

func Begin(opcode byte, regs processor.Registers) {
	if outputFile == "" {
		return
	}

	inScope = true
	currentEvent = EmptyEvent
	currentEvent.Opcode = opcode
	currentEvent.Regs[0] = regs
}

func End(regs processor.Registers) {
	if !inScope {
		return
	}

	inScope = false
	currentEvent.Regs[1] = regs
	outputChan <- currentEvent
}

func Discard() {
	inScope = false
}

func ReadByte(addr uint16, data byte) {
	if !inScope {
		return
	}
	for i, op := range currentEvent.Reads {
		if op.Empty() {
			currentEvent.Reads[i] = MemOp{uint32(addr), data}
			return
		}
	}
	log.Panic("Max reads!")
}

func WriteByte(addr uint16, data byte) {
	if !inScope {
		return
	}
	for i, op := range currentEvent.Writes {
		if op.Empty() {
			currentEvent.Writes[i] = MemOp{uint32(addr), data}
			return
		}
	}
	log.Panic("Max writes!")
}

func Shutdown() {
	if outputFile == "" {
		return
	}
	close(outputChan)
	<-quitChan
	outputFile = ""
}
