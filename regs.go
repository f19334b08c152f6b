// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sx

// RegID names a management register of the register-protocol
// interface.
type RegID uint16

// RegSoftwareReset is the management reset and shutdown register
// (MRSR).  Writing it with an empty payload requests a software reset;
// the reset flow uses no other register.
const RegSoftwareReset RegID = 0x9023

// RegWriter submits a register-protocol write through the device's
// command interface.  Encoding of the request and queue submission
// live with the transport, not here.  A transport error aborts the
// register-protocol reset path; the orchestrator decides whether to
// fall back.
type RegWriter interface {
	WriteRegister(dev *Device, reg RegID, payload []byte) error
}
