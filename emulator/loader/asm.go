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
	"regexp"
	"strconv"
	"strings"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/spf13/afero"
)

var spaces = regexp.MustCompile(" +")

// ReadAsm scans an assembler listing for labels and the number of bytes
// each one covers. Constants defined with EQU are not labels.
func ReadAsm(fs afero.Fs, name string, syms *memory.Symbols) error {
	fp, err := fs.Open(name)
	if err != nil {
		return err
	}
	defer fp.Close()

	scanner := bufio.NewScanner(fp)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, " ") || strings.TrimSpace(line) == "" {
			continue
		}
		if sym, size := asmSignature(line); size > 0 {
			syms.AddSignature(sym, size)
		}
	}
	return scanner.Err()
}

func sizeOrOne(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return 1
}

func asmSignature(line string) (string, int) {
	tokens := spaces.Split(strings.TrimSpace(line), -1)

	if strings.HasSuffix(tokens[0], ":") {
		sym := strings.TrimSuffix(tokens[0], ":")
		if len(tokens) >= 3 && tokens[1] == "DS" {
			return sym, sizeOrOne(tokens[2])
		}
		return sym, 1
	}

	if len(tokens) < 3 {
		return tokens[0], 1
	}

	switch tokens[1] {
	case "DEFS":
		return tokens[0], sizeOrOne(tokens[2])
	case "DEFW":
		return tokens[0], 2
	case "DEFM":
		first := strings.IndexByte(line, '\'')
		if first < 0 {
			return tokens[0], 1
		}
		last := strings.IndexByte(line[first+1:], '\'')
		if last < 0 {
			return tokens[0], 1
		}
		return tokens[0], last
	case "EQU":
		if tokens[2] == "$" {
			return tokens[0], 1
		}
		return tokens[0], 0
	}
	return tokens[0], 1
}
