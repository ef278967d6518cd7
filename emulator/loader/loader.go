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

package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/spf13/afero"
)

var (
	ErrChecksum    = errors.New("checksum mismatch")
	ErrShortRecord = errors.New("record too short")
	ErrBadNumber   = errors.New("bad hex number")
	ErrBadSymbol   = errors.New("bad symbol line")
)

// ErrSyntax reports the line where a file could not be parsed.
type ErrSyntax struct {
	File   string
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return fmt.Sprintf("%s:%d '%v' %v", err.File, err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// Target receives the loaded image and symbols.
type Target interface {
	LoadByte(addr memory.Pointer, data byte) error
	AddSymbol(name string, addr memory.Pointer)
	Symbols() *memory.Symbols
}

func sibling(name, ext string) string {
	return strings.TrimSuffix(name, ".hex") + ext
}

// Boot loads hexPath into t. An assembler listing and a symbol file with
// the same base name are read first when they exist.
func Boot(fs afero.Fs, hexPath string, t Target) error {
	if ok, err := afero.Exists(fs, hexPath); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("no such image: %s", hexPath)
	}

	if name := sibling(hexPath, ".asm"); fileExists(fs, name) {
		if err := ReadAsm(fs, name, t.Symbols()); err != nil {
			return err
		}
	}
	if name := sibling(hexPath, ".symbols"); fileExists(fs, name) {
		if err := ReadSymbols(fs, name, t); err != nil {
			return err
		}
	}
	return ReadHex(fs, hexPath, t)
}

func fileExists(fs afero.Fs, name string) bool {
	ok, err := afero.Exists(fs, name)
	return ok && err == nil
}
