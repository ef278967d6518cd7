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

package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/andreas-jonsson/virtual8080/emulator/processor/validator"
	"github.com/spf13/afero"
)

var (
	emuInput = "virtual8080.json"
	refInput = "validator.json"
	maxCount = 1000000
)

func init() {
	flag.StringVar(&emuInput, "virtual8080", emuInput, "Emulated CPU events")
	flag.StringVar(&refInput, "validation", refInput, "Reference CPU events")
	flag.IntVar(&maxCount, "n", maxCount, "Maximum number of events to compare")
}

func openEvents(fs afero.Fs, name string) (*validator.Decoder, io.Closer) {
	fp, err := fs.Open(name)
	if err != nil {
		log.Fatal(err)
	}
	dec, err := validator.NewDecoder(fp)
	if err != nil {
		log.Fatal(err)
	}
	return dec, fp
}

func main() {
	flag.Parse()
	log.SetFlags(0)

	fs := afero.NewOsFs()

	emuDec, emuFp := openEvents(fs, emuInput)
	defer emuFp.Close()

	refDec, refFp := openEvents(fs, refInput)
	defer refFp.Close()

	n, err := compare(emuDec, refDec, maxCount)
	if err != nil {
		log.Print(err)
		os.Exit(1)
	}
	log.Print("Equal: ", n)
}
