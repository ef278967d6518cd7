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

package emulator

import (
	"errors"

	"github.com/andreas-jonsson/virtual8080/emulator/peripheral"
	"github.com/andreas-jonsson/virtual8080/platform/dialog"
)

var (
	errShutdown = errors.New("shutdown requested")
	errRestart  = errors.New("restart requested")
)

// control stops the processor when the user asks to quit or restart.
type control struct {
	peripheral.NullDevice
}

func (*control) Name() string {
	return "Machine Control"
}

func (*control) Step(int) error {
	if dialog.ShutdownRequested() {
		return errShutdown
	}
	if dialog.RestartRequested() {
		return errRestart
	}
	return nil
}
