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

package memory

import (
	"fmt"
	"strconv"
	"strings"
)

type Symbols struct {
	toName map[Pointer]string
	toAddr map[string]Pointer

	signatures map[string]int
	short      map[string]string
}

func NewSymbols() *Symbols {
	return &Symbols{
		toName:     make(map[Pointer]string),
		toAddr:     make(map[string]Pointer),
		signatures: make(map[string]int),
		short:      make(map[string]string),
	}
}

// AddSignature records the size of a symbol as declared by the assembler source.
// Hex file symbol tables truncate names to five characters, so the full name is
// remembered for later lookups.
func (s *Symbols) AddSignature(name string, size int) {
	s.signatures[name] = size
	if len(name) > 5 {
		s.short[name[:5]] = name
	}
}

func (s *Symbols) Add(name string, addr Pointer) {
	if full, ok := s.short[name]; ok {
		name = full
	}

	size := 1
	if len(s.signatures) > 0 {
		if size = s.signatures[name]; size == 0 {
			return
		}
	}

	if old, ok := s.toName[addr]; ok {
		delete(s.toAddr, old)
	}
	if old, ok := s.toAddr[name]; ok {
		delete(s.toName, old)
	}
	s.toName[addr] = name
	s.toAddr[name] = addr

	if size > 1 {
		s.Extend(name, size)
	}
}

// Extend labels the count-1 addresses following name (or preceding it, for a
// negative count) as name+N, stopping at the first address that already has one.
// The base address keeps its name so Name and Addr stay inverse.
func (s *Symbols) Extend(name string, count int) {
	addr, ok := s.toAddr[name]
	if !ok {
		return
	}

	step := 1
	if count < 0 {
		step = -1
	}
	for i := step; i != count; i += step {
		a := addr + Pointer(i)
		if _, ok := s.toName[a]; ok {
			break
		}
		s.toName[a] = fmt.Sprintf("%s%+d", name, i)
	}
}

func (s *Symbols) Name(addr Pointer) (string, bool) {
	n, ok := s.toName[addr]
	return n, ok
}

func (s *Symbols) Addr(name string) (Pointer, bool) {
	a, ok := s.toAddr[name]
	return a, ok
}

func (s *Symbols) Len() int {
	return len(s.toAddr)
}

func (s *Symbols) Format(addr Pointer) string {
	if n, ok := s.toName[addr]; ok {
		return n
	}
	return fmt.Sprintf("x%04x", uint16(addr))
}

// Parse resolves a symbol name or a hexadecimal address.
func (s *Symbols) Parse(str string) (Pointer, error) {
	if a, ok := s.toAddr[str]; ok {
		return a, nil
	}
	str = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(str), "0x"), "x")
	v, err := strconv.ParseUint(str, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("bad address %s", str)
	}
	return Pointer(v), nil
}
