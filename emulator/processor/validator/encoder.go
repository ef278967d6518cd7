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

package validator

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"io"
	"strings"
)

// Encoder writes events as a JSON stream, optionally gzip compressed.
type Encoder struct {
	zw  *gzip.Writer
	enc *json.Encoder
}

func NewEncoder(w io.Writer, compress bool) *Encoder {
	e := &Encoder{}
	if compress {
		e.zw = gzip.NewWriter(w)
		w = e.zw
	}
	e.enc = json.NewEncoder(w)
	return e
}

func (e *Encoder) Encode(ev *Event) error {
	return e.enc.Encode(ev)
}

func (e *Encoder) Close() error {
	if e.zw != nil {
		return e.zw.Close()
	}
	return nil
}

// Compressed reports whether an event file name asks for gzip.
func Compressed(name string) bool {
	return strings.HasSuffix(name, ".gz")
}

// Decoder reads events written by Encoder.
type Decoder struct {
	zr  *gzip.Reader
	dec *json.Decoder
}

func NewDecoder(r io.Reader) (*Decoder, error) {
	br := bufio.NewReader(r)
	d := &Decoder{}

	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1F && magic[1] == 0x8B {
		if d.zr, err = gzip.NewReader(br); err != nil {
			return nil, err
		}
		d.dec = json.NewDecoder(d.zr)
		return d, nil
	}
	d.dec = json.NewDecoder(br)
	return d, nil
}

func (d *Decoder) Decode(ev *Event) error {
	return d.dec.Decode(ev)
}

func (d *Decoder) Close() error {
	if d.zr != nil {
		return d.zr.Close()
	}
	return nil
}
