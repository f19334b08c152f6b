// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sx

// Event identifies a reset notification.
type Event int

const (
	EventPreReset Event = iota
	EventPostReset
)

func (e Event) String() string {
	switch e {
	case EventPreReset:
		return "pre-reset"
	case EventPostReset:
		return "post-reset"
	}
	return "unknown"
}

// EventData is the post-reset payload.  Err carries the outcome of the
// primary reset phase into the notification; a subscriber may replace
// it, and whatever it holds after dispatch is what Reset returns.
type EventData struct {
	Err error
}

// Notifier dispatches reset events to the subsystems that registered
// for them.  Data is nil for EventPreReset.  An error from the
// pre-reset dispatch aborts the reset before any hardware is touched.
type Notifier interface {
	Dispatch(dev *Device, ev Event, data *EventData) error
}
