// Package ppu implements the NES Picture Processing Unit's register
// interface, VRAM/OAM/palette model, and scanline-driven NMI timing.
// It does not attempt cycle-accurate pixel rendering; see console.Bus
// for the debug-only renderer built on top of it.
package ppu

import (
	"github.com/bdwalton/gintendo/nesrom"
	"github.com/rs/zerolog/log"
)

const (
	VRAMSize    = 2048
	OAMSize     = 256
	PaletteSize = 32
)

// PPU-local register indices, as exposed by console.Bus at $2000-$2007.
const (
	RegCtrl = iota
	RegMask
	RegStatus
	RegOAMAddr
	RegOAMData
	RegScroll
	RegAddr
	RegData
)

// Control ($2000) bit flags.
const (
	CtrlNametable1       = 1 << 0
	CtrlNametable2       = 1 << 1
	CtrlVRAMIncrement    = 1 << 2
	CtrlSpritePattern    = 1 << 3
	CtrlBGPattern        = 1 << 4
	CtrlSpriteSize       = 1 << 5
	CtrlMasterSlave      = 1 << 6
	CtrlGenerateNMI      = 1 << 7
)

// VRAM pointer increment granularity selected by CtrlVRAMIncrement.
const (
	incrAcross = 1
	incrDown   = 32
)

// Mask ($2001) bit flags.
const (
	MaskGreyscale      = 1 << 0
	MaskShowBGLeft     = 1 << 1
	MaskShowSpriteLeft = 1 << 2
	MaskShowBG         = 1 << 3
	MaskShowSprites    = 1 << 4
	MaskEmphasizeRed   = 1 << 5
	MaskEmphasizeGreen = 1 << 6
	MaskEmphasizeBlue  = 1 << 7
)

// Status ($2002) bit flags.
const (
	StatusSpriteOverflow = 1 << 5
	StatusSprite0Hit     = 1 << 6
	StatusVBlank         = 1 << 7
)

const (
	dotsPerScanline   = 341
	scanlinesPerFrame = 262
	vblankScanline    = 241
)

const (
	nametableBase    = 0x2000
	nametableEnd     = 0x3EFF
	paletteBase      = 0x3F00
	chrEnd           = 0x1FFF
)

// Bus is the minimal surface the PPU needs from whatever backs CHR
// memory (normally the cartridge mapper).
type Bus interface {
	ChrRead(addr uint16) uint8
	ChrWrite(addr uint16, val uint8)
}

// PPU holds all PPU-owned state: VRAM, OAM, the palette table, and the
// register latches. Reads and writes go through ReadReg/WriteReg,
// which dispatch to the eight CPU-visible registers.
type PPU struct {
	bus Bus

	paletteTable [PaletteSize]uint8
	oamData      [OAMSize]uint8
	oamAddr      uint8
	vram         [VRAMSize]uint8
	mirror       nesrom.Mirror

	control uint8
	mask    uint8
	status  uint8

	addr   *addrRegister
	scroll *scrollRegister

	internalDataBuffer uint8

	dotCycles int
	scanline  int

	nmiPending bool
}

func New(bus Bus, mirror nesrom.Mirror) *PPU {
	return &PPU{
		bus:    bus,
		mirror: mirror,
		addr:   newAddrRegister(),
		scroll: newScrollRegister(),
	}
}

// ReadReg returns the value of PPU-local register r (0-7). Registers
// 0, 1, 3, 5, and 6 are write-only and read back as 0, matching open
// bus behavior closely enough for this core's scope.
func (p *PPU) ReadReg(r uint16) uint8 {
	switch r {
	case RegStatus:
		return p.readStatus()
	case RegOAMData:
		return p.oamData[p.oamAddr]
	case RegData:
		return p.readData()
	default:
		return 0
	}
}

// WriteReg writes val to PPU-local register r (0-7). Writes to the
// read-only status register are ignored.
func (p *PPU) WriteReg(r uint16, val uint8) {
	switch r {
	case RegCtrl:
		p.writeCtrl(val)
	case RegMask:
		p.mask = val
	case RegOAMAddr:
		p.oamAddr = val
	case RegOAMData:
		p.oamData[p.oamAddr] = val
		p.oamAddr++
	case RegScroll:
		p.scroll.write(val)
	case RegAddr:
		p.addr.write(val)
	case RegData:
		p.writeData(val)
	}
}

func (p *PPU) writeCtrl(val uint8) {
	before := p.control&CtrlGenerateNMI != 0
	p.control = val
	after := p.control&CtrlGenerateNMI != 0
	if !before && after && p.status&StatusVBlank != 0 {
		p.nmiPending = true
	}
}

func (p *PPU) readStatus() uint8 {
	data := p.status
	p.status &^= StatusVBlank
	p.addr.resetLatch()
	p.scroll.resetLatch()
	return data
}

func (p *PPU) vramIncrement() uint8 {
	if p.control&CtrlVRAMIncrement != 0 {
		return incrDown
	}
	return incrAcross
}

// mirrorVRAMAddr resolves a raw PPU address in $2000-$3EFF to an index
// into the 2 KiB vram array, per the mirror mode.
func (p *PPU) mirrorVRAMAddr(addr uint16) uint16 {
	folded := addr & 0x2FFF
	index := folded - nametableBase
	nametable := index / 0x400

	switch p.mirror {
	case nesrom.MirrorVertical:
		if nametable == 2 || nametable == 3 {
			return (index - 0x800) % VRAMSize
		}
		return index % VRAMSize
	case nesrom.MirrorHorizontal:
		switch nametable {
		case 1, 2:
			return (index - 0x400) % VRAMSize
		case 3:
			return (index - 0x800) % VRAMSize
		default:
			return index % VRAMSize
		}
	default: // FourScreen: fold into the 2 KiB array we actually have.
		return index % VRAMSize
	}
}

// paletteIndex applies the $3F10/$3F14/$3F18/$3F1C mirror-to-$3F00
// aliasing and returns an index into the 32-byte palette table.
func paletteIndex(addr uint16) uint16 {
	off := (addr - paletteBase) % 0x20
	switch off {
	case 0x10, 0x14, 0x18, 0x1C:
		off -= 0x10
	}
	return off
}

func (p *PPU) readData() uint8 {
	addr := p.addr.get()
	defer p.addr.increment(p.vramIncrement())

	switch {
	case addr <= chrEnd:
		result := p.internalDataBuffer
		p.internalDataBuffer = p.bus.ChrRead(addr)
		return result
	case addr <= nametableEnd:
		result := p.internalDataBuffer
		p.internalDataBuffer = p.vram[p.mirrorVRAMAddr(addr)]
		return result
	default:
		return p.paletteByte(addr)
	}
}

func (p *PPU) paletteByte(addr uint16) uint8 {
	return p.paletteTable[paletteIndex(addr)]
}

func (p *PPU) writeData(val uint8) {
	addr := p.addr.get()
	defer p.addr.increment(p.vramIncrement())

	switch {
	case addr <= chrEnd:
		p.bus.ChrWrite(addr, val)
	case addr <= nametableEnd:
		p.vram[p.mirrorVRAMAddr(addr)] = val
	default:
		p.paletteTable[paletteIndex(addr)] = val
	}
}

// WriteOAMDMA copies 256 bytes (one CPU page) into OAM starting at the
// current OAM address, as issued by a $4014 write on the bus.
func (p *PPU) WriteOAMDMA(data [OAMSize]uint8) {
	for _, b := range data {
		p.oamData[p.oamAddr] = b
		p.oamAddr++
	}
}

// Tick advances the PPU by n CPU cycles (n*3 PPU dots) and reports
// whether a new frame has started.
func (p *PPU) Tick(cpuCycles uint8) bool {
	p.dotCycles += int(cpuCycles) * 3

	frameDone := false
	for p.dotCycles >= dotsPerScanline {
		p.dotCycles -= dotsPerScanline
		p.scanline++

		if p.scanline == vblankScanline {
			p.status |= StatusVBlank
			p.status &^= StatusSprite0Hit
			if p.control&CtrlGenerateNMI != 0 {
				p.nmiPending = true
			}
			log.Debug().Msg("ppu entered vblank")
		}

		if p.scanline >= scanlinesPerFrame {
			p.scanline = 0
			p.nmiPending = false
			p.status &^= StatusSprite0Hit
			p.status &^= StatusVBlank
			frameDone = true
		}
	}
	return frameDone
}

// PendingNMI reports and clears a latched NMI request, matching the
// CPU's pull-based consume-once polling contract.
func (p *PPU) PendingNMI() bool {
	pending := p.nmiPending
	p.nmiPending = false
	return pending
}

// VRAM exposes the nametable memory read-only, for a debug renderer.
func (p *PPU) VRAM() [VRAMSize]uint8 {
	return p.vram
}

// PaletteTable exposes the palette read-only, for a debug renderer.
func (p *PPU) PaletteTable() [PaletteSize]uint8 {
	return p.paletteTable
}
