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

package dialog

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/spf13/afero"
)

const MaxDrives = 16

type DiskController interface {
	Eject(dnum byte) (io.ReadWriteSeeker, error)
	Replace(dnum byte, disk io.ReadWriteSeeker) error
}

var (
	FS               = afero.NewOsFs()
	FloppyController DiskController
)

var (
	requestRestart,
	quitFlag int32
)

var (
	defaultDiskA = ""
	defaultDiskB = ""
)

var DriveImages [MaxDrives]struct {
	Name string
	Fp   afero.File
}

func init() {
	if p, ok := os.LookupEnv("V8080_DISK_A"); ok {
		defaultDiskA = p
	}
	if p, ok := os.LookupEnv("V8080_DISK_B"); ok {
		defaultDiskB = p
	}

	flag.StringVar(&DriveImages[1].Name, "a", defaultDiskA, "Mount image as disk A")
	flag.StringVar(&DriveImages[2].Name, "b", defaultDiskB, "Mount image as disk B")
}

// OpenDriveImages opens all named drive images for reading and writing.
func OpenDriveImages() error {
	for i := range DriveImages {
		d := &DriveImages[i]
		if d.Name == "" || d.Fp != nil {
			continue
		}
		fp, err := FS.OpenFile(d.Name, os.O_RDWR, 0644)
		if err != nil {
			return err
		}
		d.Fp = fp
	}
	return nil
}

func CloseDriveImages() {
	for i := range DriveImages {
		if fp := DriveImages[i].Fp; fp != nil {
			fp.Close()
			DriveImages[i].Fp = nil
		}
	}
}

func MountDiskImage(dnum byte, name string) error {
	if FloppyController == nil {
		return errors.New("no disk controller")
	}
	if int(dnum) >= MaxDrives {
		return fmt.Errorf("invalid drive: %d", dnum)
	}

	fp, err := FS.OpenFile(name, os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	if err := FloppyController.Replace(dnum, fp); err != nil {
		fp.Close()
		return err
	}

	d := &DriveImages[dnum]
	if d.Fp != nil {
		d.Fp.Close()
	}
	d.Name, d.Fp = name, fp
	return nil
}

func EjectDisk(dnum byte) error {
	if FloppyController == nil {
		return errors.New("no disk controller")
	}
	if _, err := FloppyController.Eject(dnum); err != nil {
		return err
	}

	d := &DriveImages[dnum]
	if d.Fp != nil {
		d.Fp.Close()
	}
	d.Name, d.Fp = "", nil
	return nil
}

func RequestRestart() {
	atomic.StoreInt32(&requestRestart, 1)
}

func RestartRequested() bool {
	return atomic.SwapInt32(&requestRestart, 0) != 0
}

func ShutdownRequested() bool {
	return atomic.LoadInt32(&quitFlag) != 0
}

func Quit() {
	atomic.StoreInt32(&quitFlag, 1)
}
