// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pcibus accesses a PCI device through the Linux sysfs
// interface: config space through the config file, register windows
// through mmap of the resource files.  It implements sx.BusDevice.
package pcibus

import (
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"syscall"

	"github.com/platinasystems/sx"
)

var sysBusPciPath = "/sys/bus/pci/devices"

// Config space offset of the capability list head.
const capabilityListOffset = 0x34

// Device is one PCI device, e.g. "0000:05:00.0".
type Device struct {
	Addr string

	// config space image cached at open for the capability walk;
	// word access always goes to the live file
	config []byte
}

func New(addr string) (*Device, error) {
	d := &Device{Addr: addr}
	b, err := ioutil.ReadFile(d.path("config"))
	if err != nil {
		return nil, err
	}
	d.config = b
	return d, nil
}

func (d *Device) String() string { return d.Addr }

func (d *Device) path(name string) string {
	return filepath.Join(sysBusPciPath, d.Addr, name)
}

func (d *Device) configRw(offset uint, v uint32, nBytes int, isWrite bool) (uint32, error) {
	f, err := os.OpenFile(d.path("config"), os.O_RDWR, 0)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	if _, err = f.Seek(int64(offset), os.SEEK_SET); err != nil {
		return 0, err
	}
	var b [4]byte
	if isWrite {
		for i := 0; i < nBytes; i++ {
			b[i] = byte(v >> uint(8*i))
		}
		_, err = f.Write(b[:nBytes])
		return v, err
	}
	if _, err = f.Read(b[:nBytes]); err != nil {
		return 0, err
	}
	v = 0
	for i := 0; i < nBytes; i++ {
		v |= uint32(b[i]) << uint(8*i)
	}
	return v, nil
}

func (d *Device) ReadConfigUint16(o uint) (uint16, error) {
	v, err := d.configRw(o, 0, 2, false)
	return uint16(v), err
}

func (d *Device) WriteConfigUint16(o uint, v uint16) error {
	_, err := d.configRw(o, uint32(v), 2, true)
	return err
}

func (d *Device) ReadConfigUint32(o uint) (uint32, error) {
	return d.configRw(o, 0, 4, false)
}

func (d *Device) WriteConfigUint32(o uint, v uint32) error {
	_, err := d.configRw(o, v, 4, true)
	return err
}

func (d *Device) FindCap(c uint8) (offset uint, found bool) {
	if len(d.config) <= capabilityListOffset {
		return
	}
	o := uint(d.config[capabilityListOffset])
	for o >= 0x40 && o != 0xff && int(o)+1 < len(d.config) {
		if d.config[o] == c {
			return o, true
		}
		o = uint(d.config[o+1])
	}
	return
}

// MapResource maps size bytes at offset of resource BAR.  The mmap is
// page aligned under the hood; the returned window starts at offset.
func (d *Device) MapResource(bar uint, offset, size uint64) (sx.Window, error) {
	f, err := os.OpenFile(d.path(fmt.Sprintf("resource%d", bar)),
		os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pg := uint64(syscall.Getpagesize())
	base := offset &^ (pg - 1)
	mem, err := syscall.Mmap(int(f.Fd()), int64(base),
		int(offset-base+size),
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap resource%d: %v", bar, err)
	}
	return &window{mem: mem, off: int(offset - base)}, nil
}

type window struct {
	mem []byte
	off int
}

func (w *window) Get32() uint32 {
	return binary.BigEndian.Uint32(w.mem[w.off:])
}

func (w *window) Set32(v uint32) {
	binary.BigEndian.PutUint32(w.mem[w.off:], v)
}

func (w *window) Unmap() error { return syscall.Munmap(w.mem) }
