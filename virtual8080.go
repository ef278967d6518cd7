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
	"fmt"
	"os"

	"github.com/andreas-jonsson/virtual8080/emulator"
	"github.com/andreas-jonsson/virtual8080/platform"
	"github.com/andreas-jonsson/virtual8080/platform/dialog"
	"github.com/andreas-jonsson/virtual8080/version"
	"github.com/spf13/afero"
)

var (
	genFd string
	ver   bool
)

func init() {
	flag.BoolVar(&ver, "version", false, "Print version information")
	flag.StringVar(&genFd, "gen-fd", "", "Create a blank 8 inch floppy image")
}

func main() {
	flag.Parse()
	emulator.ParseArgs(flag.Args())

	if ver {
		fmt.Printf("%s (%s)\n", version.Current.FullString(), version.Hash)
		return
	}

	if genFd != "" {
		if err := genImage(afero.NewOsFs(), genFd); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	printLogo()
	if emulator.Headless() {
		platform.StartHeadless(emulator.Start)
	} else {
		platform.Start(emulator.Start)
	}

	if err := emulator.Err(); err != nil {
		dialog.ShowErrorMessage(err.Error())
		os.Exit(1)
	}
}

// genImage writes an empty single density disk of 77 tracks.
func genImage(fs afero.Fs, name string) error {
	const size = 77 * 26 * 128

	var buffer [size]byte
	for i := range buffer {
		buffer[i] = 0xE5
	}
	return afero.WriteFile(fs, name, buffer[:], 0644)
}

func printLogo() {
	fmt.Print(logo)
	fmt.Println("v" + version.Current.String())
	fmt.Print(" ───────═════ " + version.Copyright + " ══════───────\n\n")
}

var logo = `
██╗   ██╗ █████╗  ██████╗  █████╗  ██████╗
██║   ██║██╔══██╗██╔═████╗██╔══██╗██╔═████╗
██║   ██║╚█████╔╝██║██╔██║╚█████╔╝██║██╔██║
╚██╗ ██╔╝██╔══██╗████╔╝██║██╔══██╗████╔╝██║
 ╚████╔╝ ╚█████╔╝╚██████╔╝╚█████╔╝╚██████╔╝
  ╚═══╝   ╚════╝  ╚═════╝  ╚════╝  ╚═════╝`
