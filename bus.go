// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sx

// Standard config space offsets used by the reset flow.
const (
	cfgVendorID = 0x00
	cfgDeviceID = 0x02
	cfgCommand  = 0x04
)

// PCI express capability and the 16-bit control words restored ahead
// of the rest of config space.
const (
	CapabilityPCIE = 0x10

	pcieDevCtl  = 0x08
	pcieLinkCtl = 0x10
)

// Invalid bus identity; an all-ones vendor word means the device has
// not (re-)enumerated.
const invalidVendorID = 0xffff

// BusDevice is everything the reset flow needs from the bus: 16/32-bit
// config space access, the PCIe capability offset, and short-lived
// mapped windows into resource region 0.
type BusDevice interface {
	// String identifies the device in log lines.
	String() string

	ReadConfigUint16(offset uint) (uint16, error)
	WriteConfigUint16(offset uint, v uint16) error
	ReadConfigUint32(offset uint) (uint32, error)
	WriteConfigUint32(offset uint, v uint32) error

	// FindCap returns the config space offset of the given
	// capability, or false if the device doesn't list it.
	FindCap(capability uint8) (offset uint, found bool)

	// MapResource maps size bytes at the given offset of a BAR.
	// Windows are held only across an immediate read or poll loop,
	// never across a multi-second wait.
	MapResource(bar uint, offset, size uint64) (Window, error)
}

// Window is a mapped span of device registers.  Word access is
// big-endian, matching the device.
type Window interface {
	Get32() uint32
	Set32(v uint32)
	Unmap() error
}
