package console

import (
	"testing"

	"github.com/bdwalton/gintendo/mappers"
)

func TestRAMMirroring(t *testing.T) {
	b := New(mappers.Dummy)

	for i := uint16(0); i < 0x0800; i++ {
		b.Write(i, uint8(i+1))
	}

	for _, base := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		for i := uint16(0); i < 0x0800; i++ {
			addr := base + i
			if got, want := b.Read(addr), uint8(i+1); got != want {
				t.Errorf("Read(%#04x) = %#02x, want %#02x", addr, got, want)
			}
		}
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	b := New(mappers.Dummy)

	// OAMADDR ($2003, mirrored at $2003+8n) then OAMDATA ($2004) should
	// land in the same OAM slot no matter which mirror we write through.
	b.Write(0x2003, 0x10)
	b.Write(0x3FFC, 0x99) // $3FFC & 7 == 4 -> OAMDATA, mirrored far up the range

	if got := b.ppu.Sprite(0x10 / 4); got.Y != 0x99 {
		t.Errorf("sprite byte via mirrored OAMDATA = %#02x, want 0x99", got.Y)
	}
}

func TestOAMDMACopiesFullPage(t *testing.T) {
	b := New(mappers.Dummy)

	for i := uint16(0); i < 256; i++ {
		b.ram.Write(i&0x07FF, uint8(i))
	}

	b.Write(oamDMAAddr, 0x00) // source page $0000-$00FF, all RAM

	for i := 0; i < 64; i++ {
		s := b.ppu.Sprite(i)
		if want := uint8(i * 4); s.Y != want {
			t.Errorf("sprite %d Y = %#02x, want %#02x", i, s.Y, want)
		}
	}
}

func TestSRAMAndUnmappedRangesReadZero(t *testing.T) {
	b := New(mappers.Dummy)

	for _, addr := range []uint16{0x4000, 0x4015, 0x6000, 0x7FFF} {
		if got := b.Read(addr); got != 0 {
			t.Errorf("Read(%#04x) = %#02x, want 0", addr, got)
		}
	}
}

func TestJoypadShiftThroughBus(t *testing.T) {
	b := New(mappers.Dummy)
	// Set the latch directly rather than through Write/strobe, since
	// poll() reaches live ebiten keyboard state that isn't available
	// outside a running game loop.
	b.pad1.buttons = 0b00000011 // A and B held
	b.pad1.strobe = false
	b.pad1.shift = 0

	if got := b.Read(joypad1); got != 1 {
		t.Errorf("first joypad1 read = %d, want 1 (A)", got)
	}
	if got := b.Read(joypad1); got != 1 {
		t.Errorf("second joypad1 read = %d, want 1 (B)", got)
	}
	for i := 0; i < 6; i++ {
		b.Read(joypad1)
	}
	if got := b.Read(joypad1); got != 1 {
		t.Errorf("ninth joypad1 read = %d, want 1 (open bus)", got)
	}
}

func Test16BitRAMRoundTrip(t *testing.T) {
	b := New(mappers.Dummy)
	b.Write(0x0010, 0xCD)
	b.Write(0x0011, 0xAB)

	lo := uint16(b.Read(0x0010))
	hi := uint16(b.Read(0x0011))
	if got := lo | hi<<8; got != 0xABCD {
		t.Errorf("16-bit round trip = %#04x, want 0xABCD", got)
	}
}
