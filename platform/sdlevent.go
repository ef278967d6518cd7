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
	"time"

	"github.com/andreas-jonsson/virtual8080/platform/dialog"
	"github.com/veandco/go-sdl2/sdl"
)

func (p *sdlPlatform) initializeSDLEvents() error {
	var err error
	sdl.Do(func() {
		err = sdl.InitSubSystem(sdl.INIT_EVENTS)
	})
	if err != nil {
		return err
	}

	p.quitChan = make(chan struct{})
	registerCleanup(p, shutdownSDLEvents)

	go func() {
		ticker := time.NewTicker(time.Second / 30)
		defer ticker.Stop()

		for {
			select {
			case <-p.quitChan:
				close(p.quitChan)
				return
			case <-ticker.C:
				var keys []Key
				sdl.Do(func() {
					for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
						switch ev := event.(type) {
						case *sdl.QuitEvent:
							dialog.Quit()
						case *sdl.KeyboardEvent:
							if ev.Type != sdl.KEYDOWN {
								continue
							}
							if ev.Keysym.Scancode == sdl.SCANCODE_F12 {
								dialog.Quit()
								continue
							}
							if k := sdlKey(ev.Keysym.Scancode, ev.Keysym.Mod); k != KeyNone {
								keys = append(keys, k)
							}
						case *sdl.TextInputEvent:
							keys = append(keys, textKeys(ev.Text[:])...)
						case *sdl.WindowEvent:
							if ev.Event == sdl.WINDOWEVENT_EXPOSED {
								p.Lock()
								p.dirty = true
								p.Unlock()
							}
						}
					}
				})
				p.pushKeys(keys)
				p.present()
			}
		}
	}()
	return nil
}

func shutdownSDLEvents(p *sdlPlatform) {
	p.quitChan <- struct{}{}
	<-p.quitChan
	sdl.Do(func() {
		sdl.QuitSubSystem(sdl.INIT_EVENTS)
	})
}

func (p *sdlPlatform) pushKeys(keys []Key) {
	if len(keys) == 0 {
		return
	}

	p.Lock()
	h := p.keyboardHandler
	p.Unlock()

	if h != nil {
		for _, k := range keys {
			h(k)
		}
	}
}

// sdlKey maps the keys that produce no text input. Control with a
// letter gives the matching control code.
func sdlKey(scan sdl.Scancode, mod uint16) Key {
	if mod&uint16(sdl.KMOD_CTRL) != 0 && scan >= sdl.SCANCODE_A && scan <= sdl.SCANCODE_Z {
		return Key(scan-sdl.SCANCODE_A) + 1
	}

	switch scan {
	case sdl.SCANCODE_RETURN, sdl.SCANCODE_KP_ENTER:
		return KeyEnter
	case sdl.SCANCODE_BACKSPACE:
		return KeyBackspace
	case sdl.SCANCODE_ESCAPE:
		return KeyEscape
	case sdl.SCANCODE_DELETE:
		return KeyDelete
	case sdl.SCANCODE_TAB:
		return '\t'
	default:
		return KeyNone
	}
}
