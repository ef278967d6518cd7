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
	"strconv"
	"strings"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/spf13/afero"
)

const (
	recordData = 0x00
	recordEOF  = 0x01
)

// ReadHex loads an Intel HEX file. Lines ahead of the first lone $ that
// are not records are read as symbol table entries.
func ReadHex(fs afero.Fs, name string, t Target) error {
	fp, err := fs.Open(name)
	if err != nil {
		return err
	}
	defer fp.Close()

	var (
		lineNo   int
		endCount int
		scanner  = bufio.NewScanner(fp)
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		var err error
		switch {
		case line == "":
		case line == "$":
			endCount++
		case line[0] == ':':
			err = readRecord(line, t)
		case endCount == 0:
			err = readSymbolLine(line, t)
		}

		if err != nil {
			return ErrSyntax{File: name, LineNo: lineNo, Line: line, Err: err}
		}
	}
	return scanner.Err()
}

func parseHex(s string) (int, error) {
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, ErrBadNumber
	}
	return int(v), nil
}

func readRecord(line string, t Target) error {
	if len(line) < 11 {
		return ErrShortRecord
	}

	count, err := parseHex(line[1:3])
	if err != nil {
		return err
	}
	addr, err := parseHex(line[3:7])
	if err != nil {
		return err
	}
	tp, err := parseHex(line[7:9])
	if err != nil {
		return err
	}

	if tp != recordData {
		return nil
	}
	if len(line) < 11+count*2 {
		return ErrShortRecord
	}

	sum := count + tp + addr + addr>>8
	for i := 0; i <= count; i++ {
		start := 9 + i*2
		b, err := parseHex(line[start : start+2])
		if err != nil {
			return err
		}
		sum += b

		if i < count {
			if err := t.LoadByte(memory.Pointer(addr+i), byte(b)); err != nil {
				return err
			}
		}
	}

	if sum&0xFF != 0 {
		return ErrChecksum
	}
	return nil
}

// readSymbolLine reads "<num> <name> <addr>H" where the address field is
// always five characters.
func readSymbolLine(line string, t Target) error {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return ErrBadSymbol
	}

	addr := fields[2]
	if len(addr) != 5 || !strings.HasSuffix(addr, "H") {
		return nil
	}

	v, err := parseHex(addr[:4])
	if err != nil {
		return err
	}
	t.AddSymbol(fields[1], memory.Pointer(v))
	return nil
}
