// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// +build increased_timeout

package sx

import "time"

// Simulation platform timing.
var (
	swResetTimeout   = 25 * time.Minute
	legacyResetGrace = 180 * time.Second
)
