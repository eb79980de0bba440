package mappers

import (
	"math"

	"github.com/bdwalton/gintendo/nesrom"
)

// dummyMapper backs PRG and CHR with one giant buffer so tests can poke
// arbitrary addresses without building a real cartridge image.
type dummyMapper struct {
	memory []uint8
	mirror nesrom.Mirror // tests can set this directly
}

func (dm *dummyMapper) ID() uint16 {
	return 0
}

func (dm *dummyMapper) Init(r *nesrom.ROM) {}

func (dm *dummyMapper) Name() string {
	return "dummy mapper"
}

func (dm *dummyMapper) PrgRead(addr uint16) uint8 {
	return dm.memory[addr]
}

func (dm *dummyMapper) PrgWrite(addr uint16, val uint8) {
	dm.memory[addr] = val
}

func (dm *dummyMapper) ChrRead(addr uint16) uint8 {
	return dm.memory[addr]
}

func (dm *dummyMapper) ChrWrite(addr uint16, val uint8) {
	dm.memory[addr] = val
}

func (dm *dummyMapper) Mirror() nesrom.Mirror {
	return dm.mirror
}

func (dm *dummyMapper) HasBattery() bool {
	return true
}

// Dummy is a shared test fixture, matching the teacher's package-level
// var used throughout mos6502/console tests.
var Dummy *dummyMapper = &dummyMapper{memory: make([]uint8, math.MaxUint16+1)}
