// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sx

import (
	"sync"
	"time"
)

// Settings are the runtime tunables of the reset flow.  A Driver with
// nil Settings behaves as if it held DefaultSettings.
//
// The trigger is an advisory gate, not a hard veto: if it is unarmed
// when Reset is called, the driver polls it every poll interval for up
// to the gate window and then arms it itself rather than deadlock a
// boot flow.  Tunables may be flipped while a reset is waiting on the
// gate, so all access goes through the methods.
type Settings struct {
	mutex sync.Mutex

	triggerArmed bool
	triggerWait  time.Duration
	triggerPoll  time.Duration

	skipBootCheck bool
}

func DefaultSettings() *Settings {
	return &Settings{
		triggerArmed: true,
		triggerWait:  10 * time.Second,
		triggerPoll:  100 * time.Millisecond,
	}
}

// SetTriggerArmed arms or disarms the gate on destructive resets.
func (s *Settings) SetTriggerArmed(armed bool) {
	s.mutex.Lock()
	s.triggerArmed = armed
	s.mutex.Unlock()
}

func (s *Settings) TriggerArmed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.triggerArmed
}

// SetTriggerGate sets how long an unarmed reset waits for the trigger
// and how often it looks.
func (s *Settings) SetTriggerGate(wait, poll time.Duration) {
	s.mutex.Lock()
	s.triggerWait = wait
	s.triggerPoll = poll
	s.mutex.Unlock()
}

func (s *Settings) triggerGate() (wait, poll time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.triggerWait, s.triggerPoll
}

// SetSkipBootCheck suppresses the readiness check of a
// verification-only call.  Only for debugging firmware boot flows;
// leave off otherwise.
func (s *Settings) SetSkipBootCheck(skip bool) {
	s.mutex.Lock()
	s.skipBootCheck = skip
	s.mutex.Unlock()
}

func (s *Settings) SkipBootCheck() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.skipBootCheck
}
