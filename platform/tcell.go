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
	"log"
	"sync"

	"github.com/gdamore/tcell"
	"github.com/spf13/afero"
)

const scrollback = 512

type (
	consoleEvent struct{}
	videoEvent   struct{}
)

type tcellPlatform struct {
	sync.Mutex

	fs     afero.Fs
	screen tcell.Screen

	console *textBuffer
	title   string

	video struct {
		enabled    bool
		mem        []byte
		cols, rows int
	}

	keyboardHandler func(Key)
}

var tcellPlatformInstance = tcellPlatform{
	fs:      afero.NewOsFs(),
	console: newTextBuffer(scrollback),
}

func tcellStart(mainLoop func(Platform), configs ...Config) {
	for _, cfg := range configs {
		if err := cfg(&tcellPlatformInstance); err != nil {
			log.Fatal(err)
		}
	}

	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	var err error
	if tcellPlatformInstance.screen, err = tcell.NewScreen(); err != nil {
		log.Fatal(err)
	}

	Instance = &tcellPlatformInstance
	s := tcellPlatformInstance.screen

	if err = s.Init(); err != nil {
		log.Fatal(err)
	}
	defer s.Fini()

	s.DisableMouse()
	s.Clear()

	if err := tcellPlatformInstance.initializeTcellEvents(); err != nil {
		log.Fatal(err)
	}
	mainLoop(Instance)
}

func (p *tcellPlatform) setFileSystem(fs afero.Fs) {
	p.fs = fs
}

func (p *tcellPlatform) FileSystem() afero.Fs {
	return p.fs
}

func (p *tcellPlatform) Print(data []byte) {
	p.Lock()
	p.console.Write(data)
	p.Unlock()
	p.screen.PostEvent(tcell.NewEventInterrupt(consoleEvent{}))
}

func (p *tcellPlatform) RenderText(mem []byte, cols, rows int) {
	p.Lock()
	v := &p.video
	v.enabled = true
	v.mem = append(v.mem[:0], mem...)
	v.cols, v.rows = cols, rows
	p.Unlock()
	p.screen.PostEvent(tcell.NewEventInterrupt(videoEvent{}))
}

func (p *tcellPlatform) SetTitle(title string) {
	p.Lock()
	p.title = title
	p.Unlock()
	p.screen.PostEvent(tcell.NewEventInterrupt(consoleEvent{}))
}

func (p *tcellPlatform) SetKeyboardHandler(h func(Key)) {
	p.Lock()
	p.keyboardHandler = h
	p.Unlock()
}
