// Package mappers implements and registers the cartridge-side address
// extension circuitry referenced numerically by iNES ROM files. Only
// mapper 0 (NROM, no banking) is in scope; other mapper ids are accepted
// by the registry contract but not implemented.
package mappers

import (
	"fmt"

	"github.com/bdwalton/gintendo/nesrom"
)

// allMappers is a global registry of mapper constructors, keyed by
// mapper id, mirroring the teacher's self-registering init() pattern.
var allMappers = map[uint16]func() Mapper{}

// RegisterMapper installs the constructor fn under id. Re-registering an
// id already in use is a programmer bug and panics, matching the
// teacher's behavior.
func RegisterMapper(id uint16, fn func() Mapper) {
	if _, ok := allMappers[id]; ok {
		panic(fmt.Sprintf("mapper id %d is already registered", id))
	}
	allMappers[id] = fn
}

// Get constructs and initializes the mapper referenced by rom's header.
func Get(rom *nesrom.ROM) (Mapper, error) {
	id := rom.MapperNum()
	fn, ok := allMappers[id]
	if !ok {
		return nil, fmt.Errorf("unknown mapper id %d", id)
	}
	m := fn()
	m.Init(rom)
	return m, nil
}

// Mapper is the contract the bus and PPU use to reach cartridge-owned
// PRG/CHR data without knowing about bank switching.
type Mapper interface {
	ID() uint16
	Init(*nesrom.ROM)
	Name() string
	PrgRead(uint16) uint8
	PrgWrite(uint16, uint8)
	ChrRead(uint16) uint8
	ChrWrite(uint16, uint8)
	Mirror() nesrom.Mirror
	HasBattery() bool
}

// baseMapper factors out the bookkeeping every real mapper needs
// (its id, name, and a handle to the parsed ROM) so individual mapper
// implementations only add banking logic.
type baseMapper struct {
	id   uint16
	name string
	rom  *nesrom.ROM
}

func (bm *baseMapper) ID() uint16 {
	return bm.id
}

func (bm *baseMapper) Name() string {
	return bm.name
}

func (bm *baseMapper) Init(r *nesrom.ROM) {
	bm.rom = r
}

func (bm *baseMapper) Mirror() nesrom.Mirror {
	return bm.rom.Mirror()
}

func (bm *baseMapper) HasBattery() bool {
	return bm.rom.HasBattery()
}
