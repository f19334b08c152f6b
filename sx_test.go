// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sx

import (
	"encoding/binary"
	"errors"
	"time"
)

var errFakeIO = errors.New("fake i/o error")

// fakeDev scripts a bus device.  Status reads consume the status
// slice one word per read; the last word sticks.  Vendor identity
// reads return all-ones for vendorDeadReads reads before the real
// vendor word comes back.
type fakeDev struct {
	cfg [256]byte

	cfgReadErrAt  map[uint]bool
	cfgWriteErrAt map[uint]bool
	writes        []cfgWrite

	pcie uint // PCIe capability offset, 0 if none

	status      []uint32
	statusIdx   int
	statusReads int

	vendorDeadReads int
	vendorReads     int

	legacyWrites []uint32
	maps, unmaps int
	mapErr       error
}

type cfgWrite struct {
	offset uint
	bits   int
	v      uint32
}

func newFakeDev() *fakeDev {
	d := &fakeDev{
		cfgReadErrAt:  make(map[uint]bool),
		cfgWriteErrAt: make(map[uint]bool),
	}
	binary.LittleEndian.PutUint16(d.cfg[cfgVendorID:], VendorMellanox)
	binary.LittleEndian.PutUint16(d.cfg[cfgDeviceID:], deviceIDSpectrum)
	return d
}

func (d *fakeDev) String() string { return "fake" }

func (d *fakeDev) ReadConfigUint16(o uint) (uint16, error) {
	if d.cfgReadErrAt[o] {
		return 0, errFakeIO
	}
	if o == cfgVendorID {
		d.vendorReads++
		if d.vendorReads <= d.vendorDeadReads {
			return invalidVendorID, nil
		}
	}
	return binary.LittleEndian.Uint16(d.cfg[o:]), nil
}

func (d *fakeDev) WriteConfigUint16(o uint, v uint16) error {
	if d.cfgWriteErrAt[o] {
		return errFakeIO
	}
	d.writes = append(d.writes, cfgWrite{o, 16, uint32(v)})
	binary.LittleEndian.PutUint16(d.cfg[o:], v)
	return nil
}

func (d *fakeDev) ReadConfigUint32(o uint) (uint32, error) {
	if d.cfgReadErrAt[o] {
		return 0, errFakeIO
	}
	return binary.LittleEndian.Uint32(d.cfg[o:]), nil
}

func (d *fakeDev) WriteConfigUint32(o uint, v uint32) error {
	if d.cfgWriteErrAt[o] {
		return errFakeIO
	}
	d.writes = append(d.writes, cfgWrite{o, 32, v})
	binary.LittleEndian.PutUint32(d.cfg[o:], v)
	return nil
}

func (d *fakeDev) FindCap(c uint8) (uint, bool) {
	if c == CapabilityPCIE && d.pcie != 0 {
		return d.pcie, true
	}
	return 0, false
}

func (d *fakeDev) MapResource(bar uint, offset, size uint64) (Window, error) {
	if d.mapErr != nil {
		return nil, d.mapErr
	}
	d.maps++
	return &fakeWindow{d: d, offset: offset}, nil
}

type fakeWindow struct {
	d      *fakeDev
	offset uint64
}

func (w *fakeWindow) Get32() uint32 {
	if w.offset == systemStatusOffset {
		w.d.statusReads++
		if len(w.d.status) == 0 {
			return 0
		}
		v := w.d.status[w.d.statusIdx]
		if w.d.statusIdx < len(w.d.status)-1 {
			w.d.statusIdx++
		}
		return v
	}
	return 0
}

func (w *fakeWindow) Set32(v uint32) {
	if w.offset == legacyResetOffset {
		w.d.legacyWrites = append(w.d.legacyWrites, v)
	}
}

func (w *fakeWindow) Unmap() error {
	w.d.unmaps++
	return nil
}

// fakeNotifier records dispatch order and what the in-progress flag
// read at each event.
type fakeNotifier struct {
	events     []Event
	flagAtPre  bool
	flagAtPost bool
	preErr     error
	postErr    error
	override   error
	doOverride bool
}

func (n *fakeNotifier) Dispatch(dev *Device, ev Event, data *EventData) error {
	n.events = append(n.events, ev)
	switch ev {
	case EventPreReset:
		n.flagAtPre = dev.ResetInProgress
		return n.preErr
	case EventPostReset:
		n.flagAtPost = dev.ResetInProgress
		if n.doOverride {
			data.Err = n.override
		}
		return n.postErr
	}
	return nil
}

// fakeRegWriter records register-protocol writes.
type fakeRegWriter struct {
	err     error
	regs    []RegID
	onWrite func()
}

func (w *fakeRegWriter) WriteRegister(dev *Device, reg RegID, payload []byte) error {
	w.regs = append(w.regs, reg)
	if w.onWrite != nil {
		w.onWrite()
	}
	return w.err
}

// shortTimeouts shrinks the fixed waits so tests don't sleep for real
// hardware grace periods.  Use as: defer shortTimeouts()()
func shortTimeouts() func() {
	grace, window, budget := legacyResetGrace, busIdentityWindow,
		swResetTimeout
	legacyResetGrace = time.Millisecond
	busIdentityWindow = 20 * time.Millisecond
	swResetTimeout = 50 * time.Millisecond
	return func() {
		legacyResetGrace, busIdentityWindow, swResetTimeout =
			grace, window, budget
	}
}
