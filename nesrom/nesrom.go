package nesrom

import (
	"fmt"
	"os"

	"github.com/bdwalton/gintendo/emuerr"
	"github.com/rs/zerolog/log"
)

const (
	HeaderSize   = 16
	TrainerSize  = 512
	PRGBlockSize = 16384
	CHRBlockSize = 8192
)

// ROM holds a parsed cartridge: PRG-ROM, CHR-ROM (or CHR-RAM space if
// chrSize == 0), and the header-derived mapper/mirror/battery bits.
// Immutable after construction, except for CHR-RAM, which ChrWrite
// updates.
type ROM struct {
	h       *Header
	trainer []byte
	prg     []byte
	chr     []byte
}

// New parses a raw iNES byte slice per spec.md §4.2. It rejects invalid
// magic bytes and NES 2.0 headers before slicing PRG/CHR data.
func New(data []byte) (*ROM, error) {
	if len(data) < HeaderSize {
		return nil, &emuerr.LoadError{Source: "<bytes>", Err: emuerr.ErrTruncatedROM}
	}

	h := parseHeader(data[:HeaderSize])
	if !h.isValidMagic() {
		return nil, &emuerr.LoadError{Source: "<bytes>", Err: emuerr.ErrInvalidHeader}
	}
	if h.isNES20() {
		return nil, &emuerr.LoadError{Source: "<bytes>", Err: emuerr.ErrNES20Unsupported}
	}

	off := HeaderSize
	r := &ROM{h: h}

	if h.hasTrainer() {
		end := off + TrainerSize
		if end > len(data) {
			return nil, &emuerr.LoadError{Source: "<bytes>", Err: emuerr.ErrTruncatedROM}
		}
		r.trainer = data[off:end]
		off = end
	}

	prgLen := PRGBlockSize * int(h.prgSize)
	if off+prgLen > len(data) {
		return nil, &emuerr.LoadError{Source: "<bytes>", Err: fmt.Errorf("%w: prg wants %d bytes", emuerr.ErrTruncatedROM, prgLen)}
	}
	r.prg = data[off : off+prgLen]
	off += prgLen

	chrLen := CHRBlockSize * int(h.chrSize)
	if off+chrLen > len(data) {
		return nil, &emuerr.LoadError{Source: "<bytes>", Err: fmt.Errorf("%w: chr wants %d bytes", emuerr.ErrTruncatedROM, chrLen)}
	}
	r.chr = data[off : off+chrLen]

	if h.chrSize == 0 {
		// CHR-RAM boards ship no CHR-ROM data; give the PPU 8 KiB of
		// writable backing store instead of a zero-length slice.
		r.chr = make([]byte, CHRBlockSize)
	}

	log.Debug().Str("mirror", r.h.mirror().String()).Uint8("mapper", r.h.mapperNum()).Int("prg_bytes", len(r.prg)).Int("chr_bytes", len(r.chr)).Msg("rom loaded")

	return r, nil
}

// Load reads path from disk and parses it with New.
func Load(path string) (*ROM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &emuerr.LoadError{Source: path, Err: err}
	}
	r, err := New(data)
	if err != nil {
		if le, ok := err.(*emuerr.LoadError); ok {
			le.Source = path
			return nil, le
		}
		return nil, &emuerr.LoadError{Source: path, Err: err}
	}
	return r, nil
}

func (r *ROM) String() string {
	return fmt.Sprintf("%s", r.h)
}

// PrgRead reads from the PRG window ($8000-$FFFF, addr already relative
// to $8000). A single 16 KiB bank is mirrored across the full 32 KiB
// window.
func (r *ROM) PrgRead(addr uint16) uint8 {
	if len(r.prg) == PRGBlockSize {
		addr %= PRGBlockSize
	}
	if int(addr) >= len(r.prg) {
		return 0
	}
	return r.prg[addr]
}

// PrgWrite is a no-op: the PRG window is ROM. Matches spec.md §4.2.
func (r *ROM) PrgWrite(addr uint16, val uint8) {}

func (r *ROM) ChrRead(addr uint16) uint8 {
	if int(addr) >= len(r.chr) {
		return 0
	}
	return r.chr[addr]
}

func (r *ROM) ChrWrite(addr uint16, val uint8) {
	if r.h.chrSize == 0 && int(addr) < len(r.chr) {
		r.chr[addr] = val
	}
}

func (r *ROM) MapperNum() uint16 {
	return uint16(r.h.mapperNum())
}

func (r *ROM) Mirror() Mirror {
	return r.h.mirror()
}

func (r *ROM) HasBattery() bool {
	return r.h.hasBattery()
}

func (r *ROM) PrgBankCount() uint8 {
	return r.h.prgSize
}

func (r *ROM) ChrBankCount() uint8 {
	return r.h.chrSize
}
