// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sx

import (
	"encoding/binary"
	"testing"
)

func patternDev() *fakeDev {
	f := newFakeDev()
	for i := 0; i < snapshotWords; i++ {
		binary.LittleEndian.PutUint32(f.cfg[i*4:],
			0xa0000000|uint32(i))
	}
	return f
}

func TestSaveSkipsReservedWords(t *testing.T) {
	f := patternDev()
	dev := &Device{Bus: f, Family: FamilySwitchX}

	s, err := saveConfig(dev)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < snapshotWords; i++ {
		want := 0xa0000000 | uint32(i)
		if i == skipWordLo || i == skipWordHi {
			want = 0
		}
		if got := s.words[i]; got != want {
			t.Errorf("word %d: got %#x want %#x", i, got, want)
		}
	}
}

func TestSaveAbortsOnReadFailure(t *testing.T) {
	f := patternDev()
	f.cfgReadErrAt[40] = true
	dev := &Device{Bus: f, Family: FamilySwitchX}

	if _, err := saveConfig(dev); err != ErrConfigSave {
		t.Errorf("got %v want %v", err, ErrConfigSave)
	}
}

func TestRestoreOrder(t *testing.T) {
	f := patternDev()
	f.pcie = 0x60
	dev := &Device{Bus: f, Family: FamilySwitchX}

	s, err := saveConfig(dev)
	if err != nil {
		t.Fatal(err)
	}
	f.writes = nil
	if err = s.restore(dev); err != nil {
		t.Fatal(err)
	}

	// PCIe devctl+linkctl, 15 header words, command word
	if got, want := len(f.writes), 2+15+1; got != want {
		t.Fatalf("writes: got %d want %d", got, want)
	}
	if w := f.writes[0]; w.offset != 0x60+pcieDevCtl || w.bits != 16 {
		t.Errorf("first write: got offset %#x/%d bits", w.offset, w.bits)
	}
	if w := f.writes[1]; w.offset != 0x60+pcieLinkCtl || w.bits != 16 {
		t.Errorf("second write: got offset %#x/%d bits", w.offset, w.bits)
	}
	last := f.writes[len(f.writes)-1]
	if last.offset != cfgCommand || last.bits != 32 {
		t.Errorf("last write: got offset %#x/%d bits, want command word",
			last.offset, last.bits)
	}
	for i, w := range f.writes[:len(f.writes)-1] {
		if w.bits == 32 && w.offset == cfgCommand {
			t.Errorf("write %d: command word before the rest", i)
		}
		if w.offset == skipWordLo*4 || w.offset == skipWordHi*4 {
			t.Errorf("write %d: reserved word %#x restored",
				i, w.offset)
		}
	}
}

func TestRestoreSkipsCapabilityBeyondSavedConfig(t *testing.T) {
	f := patternDev()
	f.pcie = 0xf0 // linkctl at 0x100, past the 64-word save
	dev := &Device{Bus: f, Family: FamilySwitchX}

	s, err := saveConfig(dev)
	if err != nil {
		t.Fatal(err)
	}
	f.writes = nil
	if err = s.restore(dev); err != nil {
		t.Fatal(err)
	}
	for i, w := range f.writes {
		if w.bits == 16 {
			t.Errorf("write %d: control word at %#x restored from "+
				"unsaved config", i, w.offset)
		}
	}
	if got, want := len(f.writes), 15+1; got != want {
		t.Errorf("writes: got %d want %d", got, want)
	}
}

func TestRestoreAbortsOnWriteFailure(t *testing.T) {
	f := patternDev()
	f.pcie = 0x60
	dev := &Device{Bus: f, Family: FamilySwitchX}

	s, err := saveConfig(dev)
	if err != nil {
		t.Fatal(err)
	}
	f.cfgWriteErrAt[cfgCommand] = true
	if err = s.restore(dev); err != ErrConfigRestore {
		t.Errorf("got %v want %v", err, ErrConfigRestore)
	}
}
