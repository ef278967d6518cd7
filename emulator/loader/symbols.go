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
	"bufio"
	"strings"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/spf13/afero"
)

// ReadSymbols reads a symbol file of ADDR|NAME lines with hex addresses.
func ReadSymbols(fs afero.Fs, name string, t Target) error {
	fp, err := fs.Open(name)
	if err != nil {
		return err
	}
	defer fp.Close()

	var lineNo int
	scanner := bufio.NewScanner(fp)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) != 2 {
			return ErrSyntax{File: name, LineNo: lineNo, Line: line, Err: ErrBadSymbol}
		}

		addr, err := parseHex(parts[0])
		if err != nil {
			return ErrSyntax{File: name, LineNo: lineNo, Line: line, Err: err}
		}
		t.AddSymbol(parts[1], memory.Pointer(addr))
	}
	return scanner.Err()
}
