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
	"flag"

	"github.com/andreas-jonsson/virtual8080/platform/dialog"
	"github.com/spf13/afero"
)

type internalPlatform interface {
	setFileSystem(fs afero.Fs)
}

type Config func(internalPlatform) error

// Key is an ASCII key code as produced by the terminal.
type Key byte

const (
	KeyNone      Key = 0x00
	KeyBreak     Key = 0x03
	KeyBackspace Key = 0x08
	KeyEnter     Key = 0x0D
	KeyCtrlO     Key = 0x0F
	KeyEscape    Key = 0x1B
	KeyFocus     Key = 0x1D
	KeyDelete    Key = 0x7F
)

type Platform interface {
	FileSystem() afero.Fs
	Print(data []byte)
	RenderText(mem []byte, cols, rows int)
	SetTitle(title string)
	SetKeyboardHandler(h func(Key))
}

var Instance Platform

// ConfigWithFileSystem replaces the host file system, mostly for testing.
func ConfigWithFileSystem(fs afero.Fs) Config {
	return func(p internalPlatform) error {
		p.setFileSystem(fs)
		dialog.FS = fs
		return nil
	}
}

func textMode() bool {
	f := flag.Lookup("text")
	return f != nil && f.Value.(flag.Getter).Get().(bool)
}

// textKeys converts NUL terminated UTF-8 text input to keys. Anything
// outside printable ASCII is dropped.
func textKeys(text []byte) []Key {
	var keys []Key
	for _, c := range text {
		if c == 0 {
			break
		}
		if c >= 0x20 && c < 0x7F {
			keys = append(keys, Key(c))
		}
	}
	return keys
}
