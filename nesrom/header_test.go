package nesrom

import (
	"reflect"
	"testing"
)

func TestParseHeader(t *testing.T) {
	b := []byte{0x4E, 0x45, 0x53, 0x1A, 0x02, 0x01, 0x31, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	want := &Header{magic: "NES\x1A", prgSize: 2, chrSize: 1, flags6: 0x31, flags7: 0x00, flags8: 0, flags9: 0}

	if got := parseHeader(b); !reflect.DeepEqual(got, want) {
		t.Errorf("parseHeader() = %+v, want %+v", got, want)
	}
}

func TestIsNES20(t *testing.T) {
	cases := []struct {
		flags7 uint8
		want   bool
	}{
		{0x08, true},
		{0x0C, false},
		{0x00, false},
		{0x04, false},
	}

	for _, tc := range cases {
		h := &Header{magic: "NES\x1A", flags7: tc.flags7}
		if got := h.isNES20(); got != tc.want {
			t.Errorf("isNES20() flags7=%#02x = %t, want %t", tc.flags7, got, tc.want)
		}
	}
}

func TestMapperNum(t *testing.T) {
	cases := []struct {
		flags6, flags7 uint8
		want           uint8
	}{
		{0xEF, 0xF0, 0xFE},
		{0x1F, 0x20, 0x21},
		{0x00, 0x00, 0x00},
	}

	for _, tc := range cases {
		h := &Header{flags6: tc.flags6, flags7: tc.flags7}
		if got := h.mapperNum(); got != tc.want {
			t.Errorf("mapperNum() flags6=%#02x flags7=%#02x = %#02x, want %#02x", tc.flags6, tc.flags7, got, tc.want)
		}
	}
}

func TestHasTrainer(t *testing.T) {
	cases := []struct {
		flags6 uint8
		want   bool
	}{
		{0xFF, true},
		{flag6Trainer, true},
		{0x00, false},
	}
	for _, tc := range cases {
		h := &Header{flags6: tc.flags6}
		if got := h.hasTrainer(); got != tc.want {
			t.Errorf("hasTrainer() flags6=%#02x = %t, want %t", tc.flags6, got, tc.want)
		}
	}
}

func TestMirror(t *testing.T) {
	cases := []struct {
		flags6 uint8
		want   Mirror
	}{
		{0x00, MirrorHorizontal},
		{0x01, MirrorVertical},
		{0x08, MirrorFourScreen},
		{0x09, MirrorFourScreen}, // four-screen bit overrides the mirroring bit
	}
	for _, tc := range cases {
		h := &Header{flags6: tc.flags6}
		if got := h.mirror(); got != tc.want {
			t.Errorf("mirror() flags6=%#02x = %v, want %v", tc.flags6, got, tc.want)
		}
	}
}

func TestHasBattery(t *testing.T) {
	h := &Header{flags6: flag6Battery}
	if !h.hasBattery() {
		t.Error("hasBattery() = false, want true")
	}
	h2 := &Header{flags6: 0}
	if h2.hasBattery() {
		t.Error("hasBattery() = true, want false")
	}
}
