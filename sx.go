// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sx drives Mellanox SwitchX, Spectrum, SwitchIB and Quantum
// switch ASICs through their power-on and software reset sequence.
//
// The package owns the reset state machine only.  Register-protocol
// transport, event subscribers and raw bus access are consumed through
// the narrow RegWriter, Notifier and BusDevice contracts so that the
// surrounding driver can supply its own.
package sx

// Device is one switch ASIC on the bus.  The surrounding driver owns
// it; Reset borrows it for the duration of one call and leaves
// ResetInProgress false on every exit path.
//
// A Device is not safe for concurrent resets; the caller serializes
// Reset calls per device.
type Device struct {
	Bus    BusDevice
	Family Family

	// ResetInProgress is advisory state for observers.  It is true
	// only while a reset trigger has been issued and the final
	// readiness verdict is still pending.  It is not a lock.
	ResetInProgress bool
}

// NewDevice identifies the ASIC family from the bus identity words.
// A non-Mellanox or unknown device yields FamilyUnsupported, not an
// error; Reset on such a device fails with ErrUnsupportedFamily.
func NewDevice(bus BusDevice) (*Device, error) {
	if bus == nil {
		return nil, ErrDeviceAbsent
	}
	vendor, err := bus.ReadConfigUint16(cfgVendorID)
	if err != nil {
		return nil, ErrDeviceAbsent
	}
	id, err := bus.ReadConfigUint16(cfgDeviceID)
	if err != nil {
		return nil, ErrDeviceAbsent
	}
	dev := &Device{Bus: bus}
	if vendor == VendorMellanox {
		dev.Family = FamilyForDeviceID(id)
	}
	return dev, nil
}
