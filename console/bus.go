// Package console wires the CPU, PPU, cartridge mapper, and joypads
// into a single address space and drives them forward in lockstep.
package console

import (
	"context"
	"image/color"

	"github.com/bdwalton/gintendo/mappers"
	"github.com/bdwalton/gintendo/mos6502"
	"github.com/bdwalton/gintendo/ppu"
	"github.com/bdwalton/gintendo/ram"
	"github.com/hajimehoshi/ebiten/v2"
)

// CPU memory map, per the NES's $0000-$FFFF address decode.
const (
	ramEnd     = 0x1FFF
	ppuEnd     = 0x3FFF
	apuStart   = 0x4000
	oamDMAAddr = 0x4014
	joypad1    = 0x4016
	joypad2    = 0x4017
	apuEnd     = 0x5FFF
	sramStart  = 0x6000
	sramEnd    = 0x7FFF
	prgStart   = 0x8000
)

const screenWidth, screenHeight = 256, 240

// Bus owns every addressable device in the system and implements
// addressable.Addressable, mos6502.Bus, and ppu.Bus so the CPU and PPU
// can each reach it without knowing about each other.
type Bus struct {
	cpu    *mos6502.CPU
	ppu    *ppu.PPU
	mapper mappers.Mapper
	ram    *ram.RAM

	pad1, pad2 *Controller

	ticks uint64
}

// New builds a fully wired Bus around an already-loaded cartridge
// mapper and configures the ebiten window the Bus will drive as a
// ebiten.Game.
func New(m mappers.Mapper) *Bus {
	b := &Bus{
		mapper: m,
		ram:    ram.New(),
		pad1:   NewController(),
		pad2:   NewController(),
	}

	b.cpu = mos6502.New(b)
	b.ppu = ppu.New(b, m.Mirror())
	b.cpu.Reset()

	ebiten.SetWindowSize(screenWidth*2, screenHeight*2)
	ebiten.SetWindowTitle("gintendo")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return b
}

// ChrRead and ChrWrite satisfy ppu.Bus by delegating to the cartridge
// mapper, so the PPU never holds its own copy of CHR data.
func (b *Bus) ChrRead(addr uint16) uint8       { return b.mapper.ChrRead(addr) }
func (b *Bus) ChrWrite(addr uint16, val uint8) { b.mapper.ChrWrite(addr, val) }

// PendingNMI satisfies mos6502.Bus by forwarding to the PPU's
// consume-once latch.
func (b *Bus) PendingNMI() bool { return b.ppu.PendingNMI() }

// Read decodes addr per the CPU memory map and returns the value from
// whichever device owns that range.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr <= ramEnd:
		return b.ram.Read(addr & 0x07FF)
	case addr <= ppuEnd:
		return b.ppu.ReadReg((addr - 0x2000) & 0x0007)
	case addr == joypad1:
		return b.pad1.Read()
	case addr == joypad2:
		return b.pad2.Read()
	case addr <= apuEnd:
		return 0 // APU and other $4000-$4015 registers are out of scope
	case addr <= sramEnd:
		return 0 // no SRAM backing store
	default:
		return b.mapper.PrgRead(addr - prgStart)
	}
}

// Write decodes addr per the CPU memory map and routes val to whichever
// device owns that range. A write to $4014 triggers OAM DMA.
func (b *Bus) Write(addr uint16, val uint8) {
	switch {
	case addr <= ramEnd:
		b.ram.Write(addr&0x07FF, val)
	case addr <= ppuEnd:
		b.ppu.WriteReg((addr-0x2000)&0x0007, val)
	case addr == oamDMAAddr:
		b.doOAMDMA(val)
	case addr == joypad1:
		b.pad1.Write(val)
	case addr == joypad2:
		b.pad2.Write(val)
	case addr <= apuEnd:
		// APU registers are out of scope; writes are dropped.
	case addr <= sramEnd:
		// no SRAM backing store
	default:
		b.mapper.PrgWrite(addr-prgStart, val)
	}
}

// doOAMDMA streams the 256-byte CPU page starting at val<<8 into PPU
// OAM, per spec §4.3's $4014 note.
func (b *Bus) doOAMDMA(val uint8) {
	var page [ppu.OAMSize]uint8
	base := uint16(val) << 8
	for i := range page {
		page[i] = b.Read(base + uint16(i))
	}
	b.ppu.WriteOAMDMA(page)
}

// Layout returns the NES's fixed resolution, part of ebiten.Game.
// Returning a constant here forces ebiten to scale the display on
// window resize instead of changing the logical screen size.
func (b *Bus) Layout(w, h int) (int, int) {
	return screenWidth, screenHeight
}

// Update is part of ebiten.Game. The emulation itself runs on Run's own
// goroutine; Update exists only to satisfy the interface.
func (b *Bus) Update() error {
	return nil
}

// Draw renders a coarse, explicitly non-accurate debug preview: one
// 8x8 grey block per background tile entry in nametable 0, shaded by
// the palette-table entry selected by the low 5 bits of the tile id.
// CHR pattern data is not consulted. It exists so Draw/Layout have
// a real consumer of ebiten.Image, not to emulate the PPU's actual
// scanline compositor (priority muxing, sprite evaluation, and fine
// scroll are all out of scope).
func (b *Bus) Draw(screen *ebiten.Image) {
	const tilesPerRow = 32
	vram := b.ppu.VRAM()
	palette := b.ppu.PaletteTable()

	for i := 0; i < 30*tilesPerRow; i++ {
		tileID := vram[i]
		shade := palette[tileID&0x1F]
		x := (i % tilesPerRow) * 8
		y := (i / tilesPerRow) * 8
		c := color.Gray{Y: shade * 8}
		for dx := 0; dx < 8; dx++ {
			for dy := 0; dy < 8; dy++ {
				screen.Set(x+dx, y+dy, c)
			}
		}
	}
}

// Run drives the emulation: each CPU instruction's cycle count feeds
// the PPU forward by that many CPU cycles (ppu.Tick already applies the
// 3x dot multiplier), matching spec's lockstep CPU/PPU coupling. It
// returns when ctx is cancelled.
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			cycles := b.cpu.Step()
			b.ppu.Tick(cycles)
			b.ticks += uint64(cycles)
		}
	}
}

// BIOS hands control to the CPU's interactive step/breakpoint/memory
// debugger, which reaches every device through the Bus's Read/Write.
func (b *Bus) BIOS(ctx context.Context, preload ...uint16) {
	b.cpu.BIOS(ctx, preload...)
}
