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

package platform

import (
	"bufio"
	"io"
	"log"
	"os"
	"sync"

	"github.com/andreas-jonsson/virtual8080/platform/dialog"
	"github.com/spf13/afero"
	"golang.org/x/term"
)

// stdioPlatform talks to the host terminal directly. In text mode the
// terminal is put in raw mode and every key is delivered as typed.
type stdioPlatform struct {
	sync.Mutex

	fs     afero.Fs
	input  io.Reader
	output io.Writer

	keyboardHandler func(Key)
}

var stdioPlatformInstance = stdioPlatform{
	fs:     afero.NewOsFs(),
	input:  os.Stdin,
	output: os.Stdout,
}

func stdioStart(mainLoop func(Platform), configs ...Config) {
	p := &stdioPlatformInstance
	for _, cfg := range configs {
		if err := cfg(p); err != nil {
			log.Fatal(err)
		}
	}
	Instance = p

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			log.Fatal(err)
		}
		defer term.Restore(fd, state)
	}

	go p.readInput()
	mainLoop(Instance)
}

// StartHeadless runs mainLoop without a terminal. Output is written to
// standard out and no keys are delivered.
func StartHeadless(mainLoop func(Platform), configs ...Config) {
	p := &stdioPlatformInstance
	for _, cfg := range configs {
		if err := cfg(p); err != nil {
			log.Fatal(err)
		}
	}
	Instance = p
	mainLoop(Instance)
}

func (p *stdioPlatform) readInput() {
	r := bufio.NewReader(p.input)
	for {
		c, err := r.ReadByte()
		if err != nil {
			if err != io.EOF {
				log.Print(err)
			}
			dialog.Quit()
			return
		}

		p.Lock()
		h := p.keyboardHandler
		p.Unlock()

		if h != nil {
			h(Key(c))
		}
	}
}

func (p *stdioPlatform) setFileSystem(fs afero.Fs) {
	p.fs = fs
}

func (p *stdioPlatform) FileSystem() afero.Fs {
	return p.fs
}

func (p *stdioPlatform) Print(data []byte) {
	p.Lock()
	p.output.Write(data)
	p.Unlock()
}

// RenderText is not supported on a plain terminal.
func (p *stdioPlatform) RenderText([]byte, int, int) {
}

func (p *stdioPlatform) SetTitle(title string) {
	p.Lock()
	io.WriteString(p.output, "\r\n["+title+"]\r\n")
	p.Unlock()
}

func (p *stdioPlatform) SetKeyboardHandler(h func(Key)) {
	p.Lock()
	p.keyboardHandler = h
	p.Unlock()
}
