// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sx

import (
	"errors"
	"time"

	"github.com/platinasystems/log"
)

// Legacy reset trigger in BAR0.  Writing 1 reboots the chip; there is
// no status to poll, only the fixed grace period.
const (
	legacyResetOffset = 0xf0010
	legacyResetSize   = 4
	legacyResetValue  = 1
)

// Window for the device to re-enumerate on the bus after a legacy
// reset.
var busIdentityWindow = 2 * time.Second

const busIdentityPollInterval = time.Millisecond

var errNoTransport = errors.New("no register-protocol transport")

// Driver resets Devices.  RegWriter and Notifier are supplied by the
// surrounding driver; either may be nil (no transport forces the
// legacy path, no notifier means nobody to tell).
type Driver struct {
	RegWriter RegWriter
	Notifier  Notifier
	Settings  *Settings
}

func (d *Driver) settings() *Settings {
	if d.Settings == nil {
		d.Settings = DefaultSettings()
	}
	return d.Settings
}

func (d *Driver) dispatch(dev *Device, ev Event, data *EventData) error {
	if d.Notifier == nil {
		return nil
	}
	return d.Notifier.Dispatch(dev, ev, data)
}

// Reset is the sole entry point.  With performChipReset it gates on
// the trigger, tells subscribers, runs the family-appropriate reset
// with its one legacy fallback, verifies completion and, for SwitchX,
// round-trips config space.  Without it, only current readiness is
// verified; nothing is touched.
//
// Reset does not retry.  The caller serializes calls per device and
// owns any retry policy.
func (d *Driver) Reset(dev *Device, performChipReset bool) error {
	if dev == nil || dev.Bus == nil {
		log.Print("err: reset skipped, no bus device")
		return ErrDeviceAbsent
	}
	s := d.settings()

	d.awaitTrigger(dev, s)

	if !performChipReset {
		if s.SkipBootCheck() {
			log.Print("notice: ", dev.Bus,
				": boot readiness check skipped")
			return nil
		}
		if _, err := waitReady(dev, 0); err != nil {
			log.Print("err: ", dev.Bus, ": system is not ready")
			return err
		}
		return nil
	}

	if err := d.dispatch(dev, EventPreReset, nil); err != nil {
		log.Print("err: ", dev.Bus, ": pre-reset event failed: ", err)
		return ErrNotify
	}

	err := d.performReset(dev)

	// Subscribers get the primary-phase outcome and the last word
	// on what the caller sees.
	data := &EventData{Err: err}
	if nerr := d.dispatch(dev, EventPostReset, data); nerr != nil {
		log.Print("err: ", dev.Bus, ": post-reset event failed: ", nerr)
	}
	return data.Err
}

// awaitTrigger gates on the advisory trigger flag.  If it never shows
// up within the budget, the driver arms it itself; a boot flow must
// not deadlock on a missing trigger.
func (d *Driver) awaitTrigger(dev *Device, s *Settings) {
	if s.TriggerArmed() {
		log.Print("notice: ", dev.Bus, ": reset trigger is already armed")
		return
	}
	log.Print("notice: ", dev.Bus, ": waiting for reset trigger")
	wait, poll := s.triggerGate()
	start := time.Now()
	for !s.TriggerArmed() && time.Since(start) < wait {
		time.Sleep(poll)
	}
	if s.TriggerArmed() {
		log.Print("notice: ", dev.Bus, ": reset trigger is armed")
	} else {
		log.Print("err: ", dev.Bus,
			": reset trigger timeout, self arming")
		s.SetTriggerArmed(true)
	}
}

func (d *Driver) performReset(dev *Device) error {
	var snap *configSnapshot
	if dev.Family == FamilySwitchX {
		var err error
		if snap, err = saveConfig(dev); err != nil {
			log.Print("err: ", dev.Bus,
				": reset aborted, cannot save config space")
			return err
		}
	}

	defer func() { dev.ResetInProgress = false }()

	var err error
	switch dev.Family {
	case FamilySwitchX:
		err = d.legacyResetSwitchX(dev)
	case FamilySpectrum, FamilySpectrum2, FamilySpectrum3,
		FamilySpectrum4, FamilySwitchIB, FamilySwitchIB2,
		FamilyQuantum, FamilyQuantum2, FamilyQuantum3:
		err = d.resetByRegister(dev)
		if err != nil && err != ErrUnexpectedReady {
			log.Print("err: ", dev.Bus, ": chip reset failed: ",
				err, "; running legacy reset")
			err = d.legacyReset(dev)
		}
	case FamilyUnsupported:
		fallthrough
	default:
		log.Print("err: ", dev.Bus, ": unsupported device family")
		return ErrUnsupportedFamily
	}
	if err != nil {
		return err
	}

	if snap != nil {
		if err = snap.restore(dev); err != nil {
			return err
		}
	}
	return nil
}

// resetByRegister resets modern families through the software-reset
// management register: wait for the system to be up, issue the write,
// confirm the device actually went down, then wait for it to come
// back up.
func (d *Driver) resetByRegister(dev *Device) error {
	budget := dev.Family.resetDuration()

	log.Print("notice: ", dev.Bus, ": wait for system ready before reset")
	waited, err := waitReady(dev, budget)
	if err != nil {
		log.Print("err: ", dev.Bus,
			": system is not ready and cannot be reset: ", err)
		return err
	}
	log.Print("notice: ", dev.Bus, ": system ready for reset [waited ",
		waited, "], performing reset now")

	dev.ResetInProgress = true

	if d.RegWriter == nil {
		log.Print("err: ", dev.Bus, ": ", errNoTransport)
		return errNoTransport
	}
	if err = d.RegWriter.WriteRegister(dev, RegSoftwareReset, nil); err != nil {
		log.Print("err: ", dev.Bus,
			": software reset register write: ", err)
		return err
	}

	// The status word must not read OK right after the command.  If
	// it does, the reset had no effect.
	if _, err = waitReady(dev, 0); err == nil {
		log.Print("err: ", dev.Bus,
			": system ready immediately after reset command")
		return ErrUnexpectedReady
	} else if err != ErrTimeout {
		return err
	}

	waited, err = waitReady(dev, budget)
	if err != nil {
		log.Print("err: ", dev.Bus,
			": system status timeout after reset: ", err)
		return err
	}
	log.Print("notice: ", dev.Bus, ": system ready after reset [waited ",
		waited, "]")
	return nil
}

// doLegacyReset writes the legacy trigger word and sleeps through the
// grace period.
func doLegacyReset(dev *Device) error {
	w, err := dev.Bus.MapResource(0, legacyResetOffset, legacyResetSize)
	if err != nil {
		log.Print("err: ", dev.Bus, ": map legacy reset register: ",
			err)
		return ErrMapping
	}
	w.Set32(legacyResetValue)
	if err = w.Unmap(); err != nil {
		log.Print("err: ", dev.Bus, ": unmap legacy reset register: ",
			err)
	}
	time.Sleep(legacyResetGrace)
	return nil
}

// waitBusIdentity polls the vendor word until the device re-enumerates
// on the bus.  SwitchX has no system status register, so this readback
// is its only post-reset verification.
func waitBusIdentity(dev *Device) error {
	start := time.Now()
	for {
		v, err := dev.Bus.ReadConfigUint16(cfgVendorID)
		if err == nil && v != invalidVendorID {
			return nil
		}
		if time.Since(start) >= busIdentityWindow {
			break
		}
		time.Sleep(busIdentityPollInterval)
	}
	log.Print("err: ", dev.Bus, ": device did not come back after reset")
	return ErrNoBusIdentity
}

func (d *Driver) legacyResetSwitchX(dev *Device) error {
	log.Print("notice: ", dev.Bus, ": performing SwitchX legacy reset")

	dev.ResetInProgress = true

	if err := doLegacyReset(dev); err != nil {
		return err
	}
	return waitBusIdentity(dev)
}

// legacyReset is the fallback for modern families when the
// register-protocol path fails.  Not a common flow; it waits double
// the usual budget on each side of the trigger.
func (d *Driver) legacyReset(dev *Device) error {
	budget := 2 * dev.Family.resetDuration()

	log.Print("notice: ", dev.Bus,
		": wait for system ready before legacy reset")
	waited, err := waitReady(dev, budget)
	if err != nil {
		log.Print("err: ", dev.Bus,
			": system is not ready and cannot be reset: ", err)
		return err
	}
	log.Print("notice: ", dev.Bus, ": system ready for reset [waited ",
		waited, "], performing legacy reset now")

	dev.ResetInProgress = true

	if err = doLegacyReset(dev); err != nil {
		return err
	}
	if err = waitBusIdentity(dev); err != nil {
		return err
	}

	waited, err = waitReady(dev, budget)
	if err != nil {
		log.Print("err: ", dev.Bus,
			": system status timeout after legacy reset: ", err)
		return err
	}
	log.Print("notice: ", dev.Bus,
		": system ready after legacy reset [waited ", waited, "]")
	return nil
}
