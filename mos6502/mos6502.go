// Package mos6502 implements the MOS Technologies 6502 processor
// https://en.wikipedia.org/wiki/MOS_Technology_6502
package mos6502

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/bdwalton/gintendo/addressable"
	"github.com/bdwalton/gintendo/emuerr"
	"github.com/rs/zerolog/log"
)

// 6502 Interrupt Vectors
// https://en.wikipedia.org/wiki/Interrupts_in_65xx_processors
const (
	IntIRQ   = 0xFFFE
	IntBRK   = IntIRQ
	IntReset = 0xFFFC
	IntNMI   = 0xFFFA
)

// 6502 Processor Status Flags
// https://www.nesdev.org/obelisk-6502-guide/registers.html
const (
	StatusCarry            = 1 << 0 // C
	StatusZero             = 1 << 1 // Z
	StatusInterruptDisable = 1 << 2 // I
	StatusDecimal          = 1 << 3 // D
	StatusBreak            = 1 << 4 // B
	StatusUnused           = 1 << 5 // always on
	StatusOverflow         = 1 << 6 // V
	StatusNegative         = 1 << 7 // N
)

// Reset status per spec: unused + interrupt-disable set, everything
// else clear.
const resetStatus = StatusUnused | StatusInterruptDisable

// 6502 Addressing Modes
// https://www.nesdev.org/obelisk-6502-guide/addressing.html
const (
	Implicit = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndirectX // Indexed Indirect
	IndirectY // Indirect Indexed
)

const stackPage = 0x0100

var modeNames = map[uint8]string{
	Implicit: "Implicit", Accumulator: "Accumulator", Immediate: "Immediate",
	ZeroPage: "ZeroPage", ZeroPageX: "ZeroPageX", ZeroPageY: "ZeroPageY",
	Relative: "Relative", Absolute: "Absolute", AbsoluteX: "AbsoluteX", AbsoluteY: "AbsoluteY",
	Indirect: "Indirect", IndirectX: "IndirectX", IndirectY: "IndirectY",
}

type opcode struct {
	inst   uint8 // the instruction id (unused beyond documentation/debug)
	name   string
	mode   uint8 // the memory addressing mode to use
	bytes  uint8 // the instruction's length in bytes, opcode byte included
	cycles uint8 // the number of cycles consumed by the instruction
}

func (o opcode) String() string {
	return fmt.Sprintf("{%s, %s}", o.name, modeNames[o.mode])
}

// MemSize is how much address space the CPU can reach.
const MemSize = math.MaxUint16 + 1

var flagMap = map[uint8]byte{
	StatusCarry: 'C', StatusZero: 'Z', StatusInterruptDisable: 'I', StatusDecimal: 'D',
	StatusBreak: 'B', StatusUnused: '-', StatusOverflow: 'V', StatusNegative: 'N',
}

func statusString(p uint8) string {
	var sb strings.Builder
	for _, f := range []uint8{StatusNegative, StatusOverflow, StatusUnused, StatusBreak, StatusDecimal, StatusInterruptDisable, StatusZero, StatusCarry} {
		if p&f > 0 {
			sb.WriteByte(flagMap[f])
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// Bus is everything the CPU needs from the rest of the machine: the
// 16-bit address space, and a pull-based NMI line the PPU latches and
// the CPU consumes once per poll.
type Bus interface {
	addressable.Addressable
	PendingNMI() bool
}

// CPU implements all of the 6502's register-visible state. Bus access
// is the sole path to memory; the CPU owns no RAM of its own.
type CPU struct {
	acc    uint8  // accumulator
	x, y   uint8  // index registers
	status uint8  // processor status flags
	sp     uint8  // stack pointer; stack lives at stackPage+sp
	pc     uint16 // program counter
	bus    Bus

	cycles uint8 // cycles consumed by the instruction currently executing
}

func (c *CPU) String() string {
	return fmt.Sprintf("A,X,Y: %4d, %4d, %4d; PC: 0x%04x, SP: 0x%02x, P: %s; OP: %s", c.acc, c.x, c.y, c.pc, c.sp, statusString(c.status), opcodes[c.bus.Read(c.pc)])
}

// New constructs a CPU wired to bus and performs power-on reset,
// loading PC from the reset vector.
// https://nesdev-wiki.nes.science/wikipages/CPU_ALL.xhtml#Power_up_state
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.Reset()
	return c
}

// Reset loads PC from the reset vector, sets SP to $FD, and sets
// status to 0x24 (Unused and InterruptDisable set, everything else
// clear), per spec.
func (c *CPU) Reset() {
	c.sp = 0xFD
	c.status = resetStatus
	c.pc = addressable.ReadU16(c.bus, IntReset)
}

func (c *CPU) getInst() (opcode, error) {
	m := c.bus.Read(c.pc)
	op, ok := opcodes[m]
	if !ok {
		return opcode{}, fmt.Errorf("pc=%#04x: illegal opcode %#02x", c.pc, m)
	}
	return op, nil
}

// getOperandAddr takes a mode and returns an address for the operand
// referenced by the program counter. It assumes that the counter was
// incremented past the actual instruction byte itself.
func (c *CPU) getOperandAddr(mode uint8) uint16 {
	switch mode {
	case Accumulator, Implicit:
		panic(fmt.Sprintf("%s addressing mode never resolves an operand address", modeNames[mode]))
	case Immediate:
		return c.pc
	case ZeroPage:
		return uint16(c.bus.Read(c.pc))
	case ZeroPageX:
		return uint16(c.bus.Read(c.pc) + c.x)
	case ZeroPageY:
		return uint16(c.bus.Read(c.pc) + c.y)
	case Absolute:
		return addressable.ReadU16(c.bus, c.pc)
	case AbsoluteX:
		a := addressable.ReadU16(c.bus, c.pc)
		addr := a + uint16(c.x)
		c.cycles += extraCycles(a, addr)
		return addr
	case AbsoluteY:
		a := addressable.ReadU16(c.bus, c.pc)
		addr := a + uint16(c.y)
		c.cycles += extraCycles(a, addr)
		return addr
	case Indirect:
		return c.readU16PageWrapBug(addressable.ReadU16(c.bus, c.pc))
	case IndirectX:
		ptr := c.bus.Read(c.pc) + c.x // zero-page wraparound via uint8 overflow
		lo := uint16(c.bus.Read(uint16(ptr)))
		hi := uint16(c.bus.Read(uint16(ptr + 1))) // also wraps within the zero page
		return lo | hi<<8
	case IndirectY:
		ptr := c.bus.Read(c.pc)
		lo := uint16(c.bus.Read(uint16(ptr)))
		hi := uint16(c.bus.Read(uint16(ptr + 1)))
		base := lo | hi<<8
		addr := base + uint16(c.y)
		c.cycles += extraCycles(base, addr)
		return addr
	case Relative:
		// Relative from PC at time of instruction execution. PC
		// already points past the opcode byte; add the signed
		// operand to the address one past the operand itself.
		return (c.pc + 1) + uint16(int8(c.bus.Read(c.pc)))
	default:
		panic("invalid addressing mode")
	}
}

// readU16PageWrapBug reproduces the original 6502's JMP (indirect)
// bug: if the pointer's low byte is $FF, the high byte is fetched from
// the start of the same page instead of the next page.
func (c *CPU) readU16PageWrapBug(ptr uint16) uint16 {
	lo := uint16(c.bus.Read(ptr))
	hiAddr := ptr + 1
	if ptr&0x00FF == 0x00FF {
		hiAddr = ptr &^ 0x00FF
	}
	hi := uint16(c.bus.Read(hiAddr))
	return lo | hi<<8
}

func readAddress(prompt string) uint16 {
	var a uint16
	fmt.Print(prompt)
	fmt.Scanf("%04x\n", &a)
	return a
}

// BIOS is an interactive debugging console: a REPL for stepping,
// breakpointing, and inspecting CPU/memory state.
// BIOS hands control to the interactive step/breakpoint/memory-dump
// REPL, optionally preloaded with breakpoints (from a CLI -break flag,
// for example).
func (c *CPU) BIOS(ctx context.Context, preload ...uint16) {
	sigQuit := make(chan os.Signal, 1)
	signal.Notify(sigQuit, syscall.SIGINT, syscall.SIGTERM)

	breaks := make(map[uint16]struct{})
	for _, addr := range preload {
		breaks[addr] = struct{}{}
	}

	for {
		fmt.Printf("%s\n\n", c)
		fmt.Println("(B)reak - add breakpoint")
		fmt.Println("(C)lear - clear breakpoints")
		fmt.Println("(R)un - run to completion")
		fmt.Println("(S)tep - step the cpu one instruction")
		fmt.Println("R(e)set - hit the reset button")
		fmt.Println("(M)emory - select a memory range to display")
		fmt.Println("S(t)ack - show last 3 items on the stack")
		fmt.Println("(I)nstruction - show instruction memory locations")
		fmt.Println("(Q)uit - shutdown the gintendo")
		fmt.Printf("Choice: ")

		var in rune
		fmt.Scanf("%c\n", &in)

		switch in {
		case 'b', 'B':
			breaks[readAddress("Breakpoint (eg: ff15): ")] = struct{}{}
		case 'c', 'C':
			breaks = make(map[uint16]struct{})
		case 'q', 'Q':
			return
		case 'r', 'R':
			cctx, cancel := context.WithCancel(ctx)
			go func(ctx context.Context) {
				select {
				case <-sigQuit:
					cancel()
				case <-ctx.Done():
				}
			}(cctx)
			c.run(cctx, breaks)
		case 's', 'S':
			c.Step()
		case 't', 'T':
			fmt.Println()
			for i := 0; i < 3; i++ {
				m := c.stackAddr() + uint16(i) + 1 // sp is the next free slot
				if m > stackPage+0xFF {
					break
				}
				fmt.Printf("0x%04x: 0x%02x ", m, c.bus.Read(m))
			}
			fmt.Printf("\n\n")
		case 'i', 'I':
			fmt.Println()
			op := opcodes[c.bus.Read(c.pc)]
			for i := 0; i < int(op.bytes); i++ {
				m := c.pc + uint16(i)
				fmt.Printf("0x%04x: 0x%02x ", m, c.bus.Read(m))
			}
			fmt.Printf("\n\n")
		case 'e', 'E':
			c.Reset()
		case 'm', 'M':
			fmt.Println()
			low := readAddress("Low address (eg f00d): ")
			high := readAddress("High address (eg beef): ")
			fmt.Println()

			x := 1
			for i := low; ; i++ {
				fmt.Printf("0x%04x: 0x%02x ", i, c.bus.Read(i))
				if x%5 == 0 {
					fmt.Println()
				}
				if i == high || i == math.MaxUint16 {
					break
				}
				x++
			}
			fmt.Printf("\n\n")
		}
	}
}

// run drives Step on a real-time ticker, for interactive BIOS use.
// The console's frame loop does not use this path; it calls Step
// directly once per instruction and couples PPU ticks to the result.
func (c *CPU) run(ctx context.Context, breaks map[uint16]struct{}) {
	// https://www.nesdev.org/wiki/CPU#Frequencies
	t := time.NewTicker(time.Nanosecond * 559)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.Step()
			fmt.Println(c)
		case <-ctx.Done():
			return
		}

		if _, ok := breaks[c.pc]; ok {
			fmt.Printf("hit breakpoint at %#04x\n", c.pc)
			return
		}
	}
}

// Step services a pending NMI (if any) or else decodes and executes
// exactly one instruction, returning the number of CPU cycles
// consumed. The caller is expected to drive the PPU forward by
// cycles*3 dots after each call.
func (c *CPU) Step() uint8 {
	if n := c.serviceNMI(); n > 0 {
		return n
	}

	op, err := c.getInst()
	if err != nil {
		log.Error().Err(err).Msg("illegal opcode")
		emuerr.InvariantViolation("%v", err)
	}
	log.Trace().Uint16("pc", c.pc).Stringer("op", op).Msg("decoded instruction")

	c.cycles = op.cycles
	c.pc++
	before := c.pc

	v := reflect.ValueOf(c)
	v.MethodByName(op.name).Call([]reflect.Value{reflect.ValueOf(op.mode)})

	// If the instruction didn't redirect PC itself (branch, jump,
	// call, return), move past the remaining operand bytes.
	if c.pc == before {
		c.pc += uint16(op.bytes) - 1
	}

	return c.cycles
}

// serviceNMI pushes PC and status and vectors to the NMI handler if
// the bus reports a latched NMI request, returning the 7 cycles that
// consumes, or 0 if nothing was pending.
func (c *CPU) serviceNMI() uint8 {
	if !c.bus.PendingNMI() {
		return 0
	}

	c.pushAddress(c.pc)
	c.pushStack((c.status &^ StatusBreak) | StatusUnused)
	c.flagsOn(StatusInterruptDisable)
	c.pc = addressable.ReadU16(c.bus, IntNMI)
	return 7
}

// setNegativeAndZeroFlags sets StatusNegative and StatusZero according
// to n.
func (c *CPU) setNegativeAndZeroFlags(n uint8) {
	if n == 0 {
		c.flagsOn(StatusZero)
	} else {
		c.flagsOff(StatusZero)
	}

	if n&0b1000_0000 != 0 {
		c.flagsOn(StatusNegative)
	} else {
		c.flagsOff(StatusNegative)
	}
}

func (c *CPU) stackAddr() uint16 {
	return stackPage + uint16(c.sp)
}

func (c *CPU) pushStack(val uint8) {
	c.bus.Write(c.stackAddr(), val)
	c.sp--
}

func (c *CPU) popStack() uint8 {
	c.sp++
	return c.bus.Read(c.stackAddr())
}

// pushAddress pushes a 16-bit address high byte first, then low, so
// that popping reconstructs it low-then-high (little-endian).
func (c *CPU) pushAddress(addr uint16) {
	c.pushStack(uint8(addr >> 8))
	c.pushStack(uint8(addr & 0x00FF))
}

func (c *CPU) popAddress() uint16 {
	return uint16(c.popStack()) | (uint16(c.popStack()) << 8)
}

// flagsOn forces the flags in mask on in the status register.
func (c *CPU) flagsOn(mask uint8) {
	c.status |= mask
}

// flagsOff forces the flags in mask off in the status register.
func (c *CPU) flagsOff(mask uint8) {
	c.status &^= mask
}

// extraCycles returns 1 if addr1 and addr2 cross a page boundary, 0
// otherwise.
func extraCycles(addr1, addr2 uint16) uint8 {
	if addr1&0xFF00 != addr2&0xFF00 {
		return 1
	}
	return 0
}

// branch adjusts PC when (status&mask > 0) == predicate, charging the
// extra cycles a taken branch (and a taken branch across a page) costs.
func (c *CPU) branch(mask uint8, predicate bool) {
	if (c.status&mask > 0) == predicate {
		a := c.getOperandAddr(Relative)
		c.cycles += extraCycles(a, c.pc-1)
		c.cycles++
		c.pc = a
	}
}

// addWithOverflow adds b to the accumulator, handling carry, overflow
// and the zero/negative flags.
func (c *CPU) addWithOverflow(b uint8) {
	sum := uint16(c.acc) + uint16(b) + uint16(c.status&StatusCarry)
	res := uint8(sum)

	var mask uint8
	if sum&0x100 != 0 {
		mask |= StatusCarry
	}
	if (c.acc^res)&(b^res)&0x80 != 0 {
		mask |= StatusOverflow
	}

	c.flagsOff(StatusCarry | StatusOverflow | StatusNegative | StatusZero)
	c.flagsOn(mask)

	c.acc = res
	c.setNegativeAndZeroFlags(c.acc)
}

// compare implements CMP/CPX/CPY: Carry is set when a >= b ("no
// borrow") and cleared otherwise.
func (c *CPU) compare(a, b uint8) {
	c.setNegativeAndZeroFlags(a - b)
	if a >= b {
		c.flagsOn(StatusCarry)
	} else {
		c.flagsOff(StatusCarry)
	}
}
