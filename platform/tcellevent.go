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
	"os"
	"time"

	"github.com/andreas-jonsson/virtual8080/platform/dialog"
	"github.com/gdamore/tcell"
)

var (
	normalStyle  = tcell.StyleDefault
	inverseStyle = tcell.StyleDefault.Reverse(true)
)

func (p *tcellPlatform) initializeTcellEvents() error {
	go func() {
		s := p.screen
		for {
			ev := s.PollEvent()
			switch ev := ev.(type) {
			case nil:
				return
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyF12 {
					dialog.Quit()
					go func() {
						time.Sleep(3 * time.Second)
						os.Exit(-1)
					}()
					return
				}
				p.pushKeyEvent(ev)
			case *tcell.EventResize:
				s.Sync()
				p.draw()
			case *tcell.EventInterrupt:
				p.draw()
			}
		}
	}()
	return nil
}

func (p *tcellPlatform) draw() {
	p.Lock()
	defer p.Unlock()

	s := p.screen
	s.Clear()

	w, h := s.Size()
	if h < 2 {
		return
	}

	if p.video.enabled {
		p.drawVideo()
	} else {
		p.drawConsole(h - 1)
	}

	title := []rune(p.title)
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(title) {
			r = title[x]
		}
		s.SetContent(x, h-1, r, nil, inverseStyle)
	}
	s.Show()
}

func (p *tcellPlatform) drawConsole(rows int) {
	s := p.screen
	lines, cx, cy := p.console.Tail(rows)
	for y, line := range lines {
		for x, c := range line {
			s.SetContent(x, y, rune(c), nil, normalStyle)
		}
	}
	s.ShowCursor(cx, cy)
}

func (p *tcellPlatform) drawVideo() {
	s := p.screen
	v := &p.video
	if len(v.mem) < v.cols*v.rows {
		return
	}
	for y := 0; y < v.rows; y++ {
		for x := 0; x < v.cols; x++ {
			c := v.mem[y*v.cols+x]

			style := normalStyle
			if c&0x80 != 0 {
				style = inverseStyle
			}

			r := rune(c & 0x7F)
			if r < 0x20 || r == 0x7F {
				r = ' '
			}
			s.SetContent(x, y, r, nil, style)
		}
	}
	s.HideCursor()
}

func (p *tcellPlatform) pushKeyEvent(ev *tcell.EventKey) {
	key := keyFromEvent(ev)
	if key == KeyNone {
		return
	}

	p.Lock()
	h := p.keyboardHandler
	p.Unlock()

	if h != nil {
		h(key)
	}
}

func keyFromEvent(ev *tcell.EventKey) Key {
	switch k := ev.Key(); k {
	case tcell.KeyRune:
		if r := ev.Rune(); r > 0 && r < 0x7F {
			return Key(r)
		}
	case tcell.KeyDelete:
		return KeyDelete
	default:
		if k < 0x80 {
			return Key(k)
		}
	}
	return KeyNone
}
