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

package cpu

import "strings"

const maxShadowFrames = 256

type shadowFrame struct {
	sp, pc uint16
}

// shadowStack follows calls and returns to indent the instruction trace.
// It never affects execution.
type shadowStack struct {
	frames []shadowFrame
}

func (s *shadowStack) reset() {
	s.frames = s.frames[:0]
}

func (s *shadowStack) depth() int {
	return len(s.frames)
}

func (s *shadowStack) indent() string {
	return strings.Repeat("  ", len(s.frames))
}

// call records the stack pointer holding the return address and the address itself.
func (s *shadowStack) call(sp, pc uint16) {
	if len(s.frames) >= maxShadowFrames {
		copy(s.frames, s.frames[1:])
		s.frames = s.frames[:len(s.frames)-1]
	}
	s.frames = append(s.frames, shadowFrame{sp, pc})
}

func (f shadowFrame) returnsTo(pc uint16) bool {
	return pc >= f.pc && uint32(pc) <= uint32(f.pc)+2
}

// ret reconciles a return taken from sp to pc. A frame whose return address
// is far from pc was left by an indirect jump and is kept.
func (s *shadowStack) ret(sp, pc uint16) {
	n := len(s.frames)
	if n == 0 {
		return
	}

	top := s.frames[n-1]
	if top.sp != sp || top.returnsTo(pc) {
		s.frames = s.frames[:n-1]
		return
	}
	if n > 1 && s.frames[n-2].returnsTo(pc) {
		s.frames = s.frames[:n-2]
	}
}
