package ppu

import (
	"testing"

	"github.com/bdwalton/gintendo/nesrom"
)

func TestSpriteFromBytesDecodesAttributes(t *testing.T) {
	cases := []struct {
		attrib               uint8
		wantPalette          uint8
		wantPriority         priority
		wantFlipH, wantFlipV bool
	}{
		{0b11111111, 0x03, BEHIND, true, true},
		{0b01111111, 0x03, BEHIND, true, false},
		{0b00111111, 0x03, BEHIND, false, false},
		{0b00111101, 0x01, BEHIND, false, false},
		{0b00011101, 0x01, FRONT, false, false},
		{0b10011101, 0x01, FRONT, false, true},
		{0b10011110, 0x02, FRONT, false, true},
	}

	for i, tc := range cases {
		s := spriteFromBytes([]uint8{0x10, 0x20, tc.attrib, 0x30})
		if s.Palette != tc.wantPalette || s.Priority != tc.wantPriority || s.FlipH != tc.wantFlipH || s.FlipV != tc.wantFlipV {
			t.Errorf("%d: got palette=%#02x priority=%d flipH=%t flipV=%t, want %#02x %d %t %t",
				i, s.Palette, s.Priority, s.FlipH, s.FlipV, tc.wantPalette, tc.wantPriority, tc.wantFlipH, tc.wantFlipV)
		}
		if s.Y != 0x10 || s.TileID != 0x20 || s.X != 0x30 {
			t.Errorf("%d: got y=%#02x tile=%#02x x=%#02x, want 0x10 0x20 0x30", i, s.Y, s.TileID, s.X)
		}
	}
}

func TestPPUSpriteReadsFromOAM(t *testing.T) {
	p := New(&testBus{}, nesrom.MirrorHorizontal)
	p.WriteReg(RegOAMAddr, 4)
	for _, b := range []uint8{0x50, 0x01, 0x00, 0x60} {
		p.WriteReg(RegOAMData, b)
	}

	s := p.Sprite(1)
	if s.Y != 0x50 || s.TileID != 0x01 || s.X != 0x60 {
		t.Errorf("Sprite(1) = %+v, want Y=0x50 TileID=0x01 X=0x60", s)
	}
}
