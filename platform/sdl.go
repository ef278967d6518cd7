// +build sdl

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

	"github.com/spf13/afero"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	screenCols = 80
	screenRows = 25
)

type sdlPlatform struct {
	sync.Mutex

	fs       afero.Fs
	quitChan chan struct{}
	cleanup  []func(*sdlPlatform)

	windowSizeX, windowSizeY int32
	sdlWindowFlags           uint32

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	surface  *textSurface

	console *textBuffer
	title   string
	dirty   bool

	video struct {
		enabled    bool
		mem        []byte
		cols, rows int
	}

	keyboardHandler func(Key)
}

var sdlPlatformInstance = sdlPlatform{
	fs:      afero.NewOsFs(),
	console: newTextBuffer(scrollback),
}

func registerCleanup(p *sdlPlatform, cb func(*sdlPlatform)) {
	p.cleanup = append(p.cleanup, cb)
}

// Start opens a window for the console and the VIO screen. The text
// flag still selects the raw terminal.
func Start(mainLoop func(Platform), configs ...Config) {
	if textMode() {
		stdioStart(mainLoop, configs...)
		return
	}

	p := &sdlPlatformInstance
	p.windowSizeX = 640
	p.windowSizeY = 480
	p.sdlWindowFlags = sdl.WINDOW_RESIZABLE
	p.surface = newTextSurface(screenCols, screenRows)

	for _, cfg := range configs {
		if err := cfg(p); err != nil {
			log.Fatal(err)
		}
	}

	sdl.Main(func() {
		var err error
		sdl.Do(func() {
			err = sdl.Init(0)
		})
		if err != nil {
			log.Fatal(err)
		}
		defer sdl.Do(sdl.Quit)

		defer func() {
			for i := len(p.cleanup) - 1; i >= 0; i-- {
				p.cleanup[i](p)
			}
		}()

		Instance = p

		if err := p.initializeVideo(); err != nil {
			log.Fatal(err)
		}
		if err := p.initializeSDLEvents(); err != nil {
			log.Fatal(err)
		}
		mainLoop(p)
	})
}

func (p *sdlPlatform) setFileSystem(fs afero.Fs) {
	p.fs = fs
}

func (p *sdlPlatform) FileSystem() afero.Fs {
	return p.fs
}

func (p *sdlPlatform) Print(data []byte) {
	p.Lock()
	p.console.Write(data)
	p.dirty = true
	p.Unlock()
}

func (p *sdlPlatform) RenderText(mem []byte, cols, rows int) {
	p.Lock()
	v := &p.video
	v.enabled = true
	v.mem = append(v.mem[:0], mem...)
	v.cols, v.rows = cols, rows
	p.dirty = true
	p.Unlock()
}

func (p *sdlPlatform) SetTitle(title string) {
	p.Lock()
	p.title = title
	p.dirty = true
	p.Unlock()

	sdl.Do(func() {
		if p.window != nil {
			p.window.SetTitle(title)
		}
	})
}

func (p *sdlPlatform) SetKeyboardHandler(h func(Key)) {
	p.Lock()
	p.keyboardHandler = h
	p.Unlock()
}
