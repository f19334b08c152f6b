// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// +build !increased_timeout

package sx

import "time"

// Production timing.  Build with -tags increased_timeout on simulation
// platforms where resets are drastically slower.
var (
	// default system-ready budget for families without a
	// family-specific one
	swResetTimeout = 5 * time.Second

	// fixed wait after a legacy reset write before the device may
	// be accessed again; these chips expose nothing to poll during
	// the grace period
	legacyResetGrace = 3 * time.Second
)
