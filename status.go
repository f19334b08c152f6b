// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sx

import (
	"time"

	"github.com/platinasystems/log"
)

// Firmware publishes boot/reset progress in the low byte of a word in
// BAR0; 0x5e means the system is up and safe to access.
const (
	systemStatusOffset = 0xa1844
	systemStatusSize   = 4
	systemStatusMask   = 0xff
	systemStatusOK     = 0x5e

	statusPollInterval = time.Millisecond
)

// waitReady polls the system status word until it reads OK or the
// budget elapses, and reports how long it waited.  A zero budget is a
// single immediate read with no sleep: callers use that both as an
// "is it already up" probe and as a strict "must still be down" check
// right after a reset command.
func waitReady(dev *Device, budget time.Duration) (time.Duration, error) {
	w, err := dev.Bus.MapResource(0, systemStatusOffset, systemStatusSize)
	if err != nil {
		log.Print("err: ", dev.Bus, ": map system status register: ",
			err)
		return 0, ErrMapping
	}
	defer w.Unmap()

	start := time.Now()
	for {
		if w.Get32()&systemStatusMask == systemStatusOK {
			return time.Since(start), nil
		}
		if time.Since(start) >= budget {
			return time.Since(start), ErrTimeout
		}
		time.Sleep(statusPollInterval)
	}
}

// GetSystemStatus is a one-shot read of the system status byte,
// independent of any reset session.
func GetSystemStatus(dev *Device) (byte, error) {
	if dev == nil || dev.Bus == nil {
		return 0, ErrDeviceAbsent
	}
	w, err := dev.Bus.MapResource(0, systemStatusOffset, systemStatusSize)
	if err != nil {
		return 0, ErrMapping
	}
	defer w.Unmap()
	return byte(w.Get32() & systemStatusMask), nil
}
