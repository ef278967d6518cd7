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

// textBuffer is a scrolling teletype screen. It understands carriage
// return, line feed and backspace. Other control characters are dropped.
type textBuffer struct {
	lines    [][]byte
	x        int
	maxLines int
}

func newTextBuffer(maxLines int) *textBuffer {
	return &textBuffer{lines: [][]byte{nil}, maxLines: maxLines}
}

func (b *textBuffer) Write(data []byte) (int, error) {
	for _, c := range data {
		line := &b.lines[len(b.lines)-1]
		switch {
		case c == '\r':
			b.x = 0
		case c == '\n':
			b.lines = append(b.lines, nil)
			b.x = 0
		case c == 0x08:
			if b.x > 0 {
				b.x--
			}
		case c < 0x20 || c >= 0x7F:
		default:
			for len(*line) < b.x {
				*line = append(*line, ' ')
			}
			if b.x < len(*line) {
				(*line)[b.x] = c
			} else {
				*line = append(*line, c)
			}
			b.x++
		}
	}

	if n := len(b.lines) - b.maxLines; n > 0 {
		b.lines = append(b.lines[:0], b.lines[n:]...)
	}
	return len(data), nil
}

// Tail returns at most n of the last lines and the cursor position within them.
func (b *textBuffer) Tail(n int) ([][]byte, int, int) {
	lines := b.lines
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, b.x, len(lines) - 1
}
