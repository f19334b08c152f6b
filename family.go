// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sx

import "time"

const VendorMellanox = 0x15b3

// PCI device IDs per ASIC generation.
const (
	deviceIDSwitchX   = 0xc738
	deviceIDSwitchIB  = 0xcb20
	deviceIDSwitchIB2 = 0xcb44
	deviceIDSpectrum  = 0xcb84
	deviceIDSpectrum2 = 0xcf6c
	deviceIDSpectrum3 = 0xcf70
	deviceIDSpectrum4 = 0xcf80
	deviceIDQuantum   = 0xd2f0
	deviceIDQuantum2  = 0xd2f2
	deviceIDQuantum3  = 0xd2f4
)

// Family is the ASIC generation.  It decides the reset mechanism and
// the completion budget.
type Family int

const (
	FamilyUnsupported Family = iota
	FamilySwitchX
	FamilySwitchIB
	FamilySwitchIB2
	FamilySpectrum
	FamilySpectrum2
	FamilySpectrum3
	FamilySpectrum4
	FamilyQuantum
	FamilyQuantum2
	FamilyQuantum3
)

func FamilyForDeviceID(id uint16) Family {
	switch id {
	case deviceIDSwitchX:
		return FamilySwitchX
	case deviceIDSwitchIB:
		return FamilySwitchIB
	case deviceIDSwitchIB2:
		return FamilySwitchIB2
	case deviceIDSpectrum:
		return FamilySpectrum
	case deviceIDSpectrum2:
		return FamilySpectrum2
	case deviceIDSpectrum3:
		return FamilySpectrum3
	case deviceIDSpectrum4:
		return FamilySpectrum4
	case deviceIDQuantum:
		return FamilyQuantum
	case deviceIDQuantum2:
		return FamilyQuantum2
	case deviceIDQuantum3:
		return FamilyQuantum3
	}
	return FamilyUnsupported
}

func (f Family) String() string {
	switch f {
	case FamilySwitchX:
		return "switchx"
	case FamilySwitchIB:
		return "switch-ib"
	case FamilySwitchIB2:
		return "switch-ib2"
	case FamilySpectrum:
		return "spectrum"
	case FamilySpectrum2:
		return "spectrum2"
	case FamilySpectrum3:
		return "spectrum3"
	case FamilySpectrum4:
		return "spectrum4"
	case FamilyQuantum:
		return "quantum"
	case FamilyQuantum2:
		return "quantum2"
	case FamilyQuantum3:
		return "quantum3"
	}
	return "unsupported"
}

// resetDuration is the budget for the system-ready wait around a
// reset.  Spectrum 2 and later may run gearbox firmware upgrades
// during reset, which can take 10 minutes or more, so those get a
// generous 15 minute budget.  The legacy fallback path doubles
// whatever is returned here.
func (f Family) resetDuration() time.Duration {
	switch f {
	case FamilyQuantum, FamilyQuantum2, FamilyQuantum3:
		return 15 * time.Second
	case FamilySpectrum2, FamilySpectrum3, FamilySpectrum4:
		return 15 * time.Minute
	case FamilySwitchX, FamilySwitchIB, FamilySwitchIB2,
		FamilySpectrum, FamilyUnsupported:
	}
	return swResetTimeout
}
