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

package sio

import (
	"sync/atomic"
	"time"
)

var baudRate int64

// SetBaud sets the simulated line speed of all output channels. Zero
// disables pacing.
func SetBaud(baud int) {
	if baud < 0 {
		baud = 0
	}
	atomic.StoreInt64(&baudRate, int64(baud))
}

func Baud() int {
	return int(atomic.LoadInt64(&baudRate))
}

// CharDelay is the time to send one character at the current baud rate,
// counting ten bits per character.
func CharDelay() time.Duration {
	baud := atomic.LoadInt64(&baudRate)
	if baud <= 0 {
		return 0
	}
	return time.Second * 10 / time.Duration(baud)
}

// Pace blocks for the duration of one character.
func Pace() {
	if d := CharDelay(); d > 0 {
		time.Sleep(d)
	}
}
