// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sx

import "github.com/platinasystems/log"

// A SwitchX reset wipes config space, so the driver round-trips it
// around the reset.  Words 22 and 23 carry reset-sensitive semantics
// and are never part of the snapshot.
const (
	snapshotWords = 64

	skipWordLo = 22
	skipWordHi = 23

	restoreWords = 16
)

// configSnapshot is one saved window of config space.  It belongs to a
// single reset session: captured before the trigger, restored (or
// discarded on an abort) before the session ends, never reused.
type configSnapshot struct {
	words [snapshotWords]uint32
}

// saveConfig reads the snapshot window.  Any single read failure
// aborts the whole save.
func saveConfig(dev *Device) (*configSnapshot, error) {
	s := new(configSnapshot)
	for i := 0; i < snapshotWords; i++ {
		if i == skipWordLo || i == skipWordHi {
			continue
		}
		v, err := dev.Bus.ReadConfigUint32(uint(i) * 4)
		if err != nil {
			log.Print("err: ", dev.Bus, ": save config word ", i,
				": ", err)
			return nil, ErrConfigSave
		}
		s.words[i] = v
	}
	return s, nil
}

// restore writes the snapshot back.  If the device lists a PCIe
// capability, its device control and link control words go first.
// Then the first 16 words, except that the command word is deliberately
// written last so bus mastering and memory access stay off until the
// rest of the state is back in place.
//
// A write failure aborts mid-restore with no rollback; callers must
// treat ErrConfigRestore as device-state-indeterminate.
func (s *configSnapshot) restore(dev *Device) error {
	if pcie, found := dev.Bus.FindCap(CapabilityPCIE); found {
		// A capability past the saved window was never captured,
		// so its control words cannot be put back.
		if (pcie+pcieLinkCtl)/4 >= snapshotWords {
			log.Print("notice: ", dev.Bus, ": PCIe capability at ",
				pcie, " beyond saved config, control words not restored")
		} else {
			devctl := uint16(s.words[(pcie+pcieDevCtl)/4])
			if err := dev.Bus.WriteConfigUint16(pcie+pcieDevCtl, devctl); err != nil {
				log.Print("err: ", dev.Bus,
					": restore PCIe device control: ", err)
				return ErrConfigRestore
			}
			linkctl := uint16(s.words[(pcie+pcieLinkCtl)/4])
			if err := dev.Bus.WriteConfigUint16(pcie+pcieLinkCtl, linkctl); err != nil {
				log.Print("err: ", dev.Bus,
					": restore PCIe link control: ", err)
				return ErrConfigRestore
			}
		}
	}

	for i := 0; i < restoreWords; i++ {
		if uint(i)*4 == cfgCommand {
			continue
		}
		if err := dev.Bus.WriteConfigUint32(uint(i)*4, s.words[i]); err != nil {
			log.Print("err: ", dev.Bus, ": restore config word ",
				i, ": ", err)
			return ErrConfigRestore
		}
	}

	if err := dev.Bus.WriteConfigUint32(cfgCommand, s.words[cfgCommand/4]); err != nil {
		log.Print("err: ", dev.Bus, ": restore command word: ", err)
		return ErrConfigRestore
	}
	return nil
}
