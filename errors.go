// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sx

import "errors"

var (
	// ErrDeviceAbsent: no bus handle for the device.
	ErrDeviceAbsent = errors.New("device absent")

	// ErrMapping: a register window could not be mapped.
	ErrMapping = errors.New("cannot map register window")

	// ErrTimeout: system ready was not observed within the budget.
	ErrTimeout = errors.New("system ready timeout")

	// ErrUnexpectedReady: the device reported ready immediately
	// after the reset command, meaning the reset had no effect.
	ErrUnexpectedReady = errors.New("system ready immediately after reset command")

	// ErrConfigSave: a config space read failed while saving the
	// snapshot; the reset is aborted before touching hardware.
	ErrConfigSave = errors.New("cannot save config space")

	// ErrConfigRestore: a config space write failed while restoring
	// the snapshot.  The device is left in an indeterminate state;
	// operator intervention is required.
	ErrConfigRestore = errors.New("cannot restore config space")

	// ErrNoBusIdentity: the device never re-enumerated on the bus
	// after a legacy reset.
	ErrNoBusIdentity = errors.New("device did not return after reset")

	// ErrUnsupportedFamily: the device identity is not a supported
	// switch ASIC.
	ErrUnsupportedFamily = errors.New("unsupported device family")

	// ErrNotify: a subscriber rejected the pre-reset notification.
	ErrNotify = errors.New("reset notification rejected")
)
