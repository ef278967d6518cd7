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
	"github.com/veandco/go-sdl2/sdl"
)

func (p *sdlPlatform) initializeVideo() error {
	var err error
	sdl.Do(func() {
		if err = sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
			return
		}

		sdl.SetHint(sdl.HINT_RENDER_SCALE_QUALITY, "0")
		if p.window, p.renderer, err = sdl.CreateWindowAndRenderer(p.windowSizeX, p.windowSizeY, p.sdlWindowFlags); err != nil {
			return
		}
		p.window.SetTitle("virtual8080")

		w, h := int32(screenCols*glyphSize), int32(screenRows*glyphSize)
		if p.texture, err = p.renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, w, h); err != nil {
			return
		}
		if err = p.renderer.SetLogicalSize(w, h*2); err != nil {
			return
		}
		sdl.StartTextInput()
	})
	if err != nil {
		return err
	}

	p.dirty = true
	registerCleanup(p, shutdownVideo)
	return nil
}

func shutdownVideo(p *sdlPlatform) {
	sdl.Do(func() {
		sdl.StopTextInput()
		p.texture.Destroy()
		p.renderer.Destroy()
		p.window.Destroy()
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
	})
}

// compose redraws the surface if anything changed since the last frame.
// The bottom row holds the title in inverse video.
func (p *sdlPlatform) compose() bool {
	p.Lock()
	defer p.Unlock()

	if !p.dirty {
		return false
	}
	p.dirty = false

	s := p.surface
	s.clear()
	rows := s.rows - 1

	if v := &p.video; v.enabled && len(v.mem) >= v.cols*v.rows {
		for y := 0; y < v.rows && y < rows; y++ {
			for x := 0; x < v.cols && x < s.cols; x++ {
				s.putChar(x, y, v.mem[y*v.cols+x])
			}
		}
	} else {
		lines, cx, cy := p.console.Tail(rows)
		for y, line := range lines {
			s.putLine(y, line, false)
		}
		s.putChar(cx, cy, ' '|0x80)
	}

	s.putLine(rows, []byte(p.title), true)
	return true
}

func (p *sdlPlatform) present() {
	if !p.compose() {
		return
	}
	sdl.Do(func() {
		p.renderer.SetDrawColor(0, 0, 0, 0xFF)
		p.renderer.Clear()

		p.texture.Update(nil, p.surface.pixels, p.surface.pitch())
		p.renderer.Copy(p.texture, nil, nil)

		p.renderer.Present()
	})
}
