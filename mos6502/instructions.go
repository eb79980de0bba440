package mos6502

import (
	"github.com/bdwalton/gintendo/addressable"
)

// 6502 Instructions
// https://www.nesdev.org/obelisk-6502-guide/instructions.html
// https://www.nesdev.org/obelisk-6502-guide/reference.html
const (
	ADC = iota // Add with Carry
	AND        // Logical AND
	ASL        // Arithmetic Shift Left
	BCC        // Branch if Carry Clear
	BCS        // Branch if Carry Set
	BEQ        // Branch if Equal
	BIT        // Bit Test
	BMI        // Branch if Minus
	BNE        // Branch if Not Equal
	BPL        // Branch if Positive
	BRK        // Force Interrupt
	BVC        // Branch if Overflow Clear
	BVS        // Branch if Overflow Set
	CLC        // Clear Carry Flag
	CLD        // Clear Decimal Mode
	CLI        // Clear Interrupt Disable
	CLV        // Clear Overflow Flag
	CMP        // Compare
	CPX        // Compare X Register
	CPY        // Compare Y Register
	DEC        // Decrement Memory
	DEX        // Decrement X Register
	DEY        // Decrement Y Register
	EOR        // Exclusive OR
	INC        // Increment Memory
	INX        // Increment X Register
	INY        // Increment Y Register
	JMP        // Jump
	JSR        // Jump to Subroutine
	LDA        // Load Accumulator
	LDX        // Load X Register
	LDY        // Load Y Register
	LSR        // Logical Shift Right
	NOP        // No Operation
	ORA        // Logical Inclusive OR
	PHA        // Push Accumulator
	PHP        // Push Processor Status
	PLA        // Pull Accumulator
	PLP        // Pull Processor Status
	ROL        // Rotate Left
	ROR        // Rotate Right
	RTI        // Return from Interrupt
	RTS        // Return from Subroutine
	SBC        // Subtract with Carry
	SEC        // Set Carry Flag
	SED        // Set Decimal Flag
	SEI        // Set Interrupt Disable
	STA        // Store Accumulator
	STX        // Store X Register
	STY        // Store Y Register
	TAX        // Transfer Accumulator to X
	TAY        // Transfer Accumulator to Y
	TSX        // Transfer Stack Pointer to X
	TXA        // Transfer X to Accumulator
	TXS        // Transfer X to Stack Pointer
	TYA        // Transfer Y to Accumulator
)

var opcodes = map[uint8]opcode{
	0x69: {ADC, "ADC", Immediate, 2, 2},
	0x65: {ADC, "ADC", ZeroPage, 2, 3},
	0x75: {ADC, "ADC", ZeroPageX, 2, 4},
	0x6D: {ADC, "ADC", Absolute, 3, 4},
	0x7D: {ADC, "ADC", AbsoluteX, 3, 4 /* +1 if page crossed */},
	0x79: {ADC, "ADC", AbsoluteY, 3, 4 /* +1 if page crossed*/},
	0x61: {ADC, "ADC", IndirectX, 2, 6},
	0x71: {ADC, "ADC", IndirectY, 2, 5 /* +1 if page crossed*/},
	0x29: {AND, "AND", Immediate, 2, 2},
	0x25: {AND, "AND", ZeroPage, 2, 3},
	0x35: {AND, "AND", ZeroPageX, 2, 4},
	0x2D: {AND, "AND", Absolute, 3, 4},
	0x3D: {AND, "AND", AbsoluteX, 3, 4 /* + 1 if page crossed*/},
	0x39: {AND, "AND", AbsoluteY, 3, 4 /* +1 if page crossed*/},
	0x21: {AND, "AND", IndirectX, 2, 6},
	0x31: {AND, "AND", IndirectY, 2, 5 /* +1 if page crossed*/},
	0x0A: {ASL, "ASL", Accumulator, 1, 2},
	0x06: {ASL, "ASL", ZeroPage, 2, 5},
	0x16: {ASL, "ASL", ZeroPageX, 2, 6},
	0x0E: {ASL, "ASL", Absolute, 3, 6},
	0x1E: {ASL, "ASL", AbsoluteX, 3, 7},
	0x90: {BCC, "BCC", Relative, 2, 2 /* +1 if branch succeeds +2 if to a new page */},
	0xB0: {BCS, "BCS", Relative, 2, 2},
	0xF0: {BEQ, "BEQ", Relative, 2, 2},
	0x24: {BIT, "BIT", ZeroPage, 2, 3},
	0x2C: {BIT, "BIT", Absolute, 3, 4},
	0x30: {BMI, "BMI", Relative, 2, 2},
	0xD0: {BNE, "BNE", Relative, 2, 2},
	0x10: {BPL, "BPL", Relative, 2, 2},
	0x00: {BRK, "BRK", Implicit, 2, 7},
	0x50: {BVC, "BVC", Relative, 2, 2},
	0x70: {BVS, "BVS", Relative, 2, 2},
	0x18: {CLC, "CLC", Implicit, 1, 2},
	0xD8: {CLD, "CLD", Implicit, 1, 2},
	0x58: {CLI, "CLI", Implicit, 1, 2},
	0xB8: {CLV, "CLV", Implicit, 1, 2},
	0xC9: {CMP, "CMP", Immediate, 2, 2},
	0xC5: {CMP, "CMP", ZeroPage, 2, 3},
	0xD5: {CMP, "CMP", ZeroPageX, 2, 4},
	0xCD: {CMP, "CMP", Absolute, 3, 4},
	0xDD: {CMP, "CMP", AbsoluteX, 3, 4 /* +1 if page crossed */},
	0xD9: {CMP, "CMP", AbsoluteY, 3, 4 /* +1 if page crossed */},
	0xC1: {CMP, "CMP", IndirectX, 2, 6},
	0xD1: {CMP, "CMP", IndirectY, 2, 5 /* +1 if page crossed */},
	0xE0: {CPX, "CPX", Immediate, 2, 2},
	0xE4: {CPX, "CPX", ZeroPage, 2, 3},
	0xEC: {CPX, "CPX", Absolute, 3, 4},
	0xC0: {CPY, "CPY", Immediate, 2, 2},
	0xC4: {CPY, "CPY", ZeroPage, 2, 3},
	0xCC: {CPY, "CPY", Absolute, 3, 4},
	0xC6: {DEC, "DEC", ZeroPage, 2, 5},
	0xD6: {DEC, "DEC", ZeroPageX, 2, 6},
	0xCE: {DEC, "DEC", Absolute, 3, 6},
	0xDE: {DEC, "DEC", AbsoluteX, 3, 7},
	0xCA: {DEX, "DEX", Implicit, 1, 2},
	0x88: {DEY, "DEY", Implicit, 1, 2},
	0x49: {EOR, "EOR", Immediate, 2, 2},
	0x45: {EOR, "EOR", ZeroPage, 2, 3},
	0x55: {EOR, "EOR", ZeroPageX, 2, 4},
	0x4D: {EOR, "EOR", Absolute, 3, 4},
	0x5D: {EOR, "EOR", AbsoluteX, 3, 4 /* +1 if page crossed */},
	0x59: {EOR, "EOR", AbsoluteY, 3, 4 /* +1 if page crossed */},
	0x41: {EOR, "EOR", IndirectX, 2, 6},
	0x51: {EOR, "EOR", IndirectY, 2, 5 /* +1 if page crossed */},
	0xE6: {INC, "INC", ZeroPage, 2, 5},
	0xF6: {INC, "INC", ZeroPageX, 2, 6},
	0xEE: {INC, "INC", Absolute, 3, 6},
	0xFE: {INC, "INC", AbsoluteX, 3, 7},
	0xE8: {INX, "INX", Implicit, 1, 2},
	0xC8: {INY, "INY", Implicit, 1, 2},
	0x4C: {JMP, "JMP", Absolute, 3, 3},
	0x6C: {JMP, "JMP", Indirect, 3, 5},
	0x20: {JSR, "JSR", Absolute, 3, 6},
	0xA9: {LDA, "LDA", Immediate, 2, 2},
	0xA5: {LDA, "LDA", ZeroPage, 2, 3},
	0xB5: {LDA, "LDA", ZeroPageX, 2, 4},
	0xAD: {LDA, "LDA", Absolute, 3, 4},
	0xBD: {LDA, "LDA", AbsoluteX, 3, 4 /* +1 if page crossed */},
	0xB9: {LDA, "LDA", AbsoluteY, 3, 4 /* +1 if page crossed */},
	0xA1: {LDA, "LDA", IndirectX, 2, 6},
	0xB1: {LDA, "LDA", IndirectY, 2, 5 /* +1 if page crossed */},
	0xA2: {LDX, "LDX", Immediate, 2, 2},
	0xA6: {LDX, "LDX", ZeroPage, 2, 3},
	0xB6: {LDX, "LDX", ZeroPageY, 2, 4},
	0xAE: {LDX, "LDX", Absolute, 3, 4},
	0xBE: {LDX, "LDX", AbsoluteY, 3, 4 /* +1 if page crossed */},
	0xA0: {LDY, "LDY", Immediate, 2, 2},
	0xA4: {LDY, "LDY", ZeroPage, 2, 3},
	0xB4: {LDY, "LDY", ZeroPageX, 2, 4},
	0xAC: {LDY, "LDY", Absolute, 3, 4},
	0xBC: {LDY, "LDY", AbsoluteX, 3, 4 /* +1 if page crossed */},
	0x4A: {LSR, "LSR", Accumulator, 1, 2},
	0x46: {LSR, "LSR", ZeroPage, 2, 5},
	0x56: {LSR, "LSR", ZeroPageX, 2, 6},
	0x4E: {LSR, "LSR", Absolute, 3, 6},
	0x5E: {LSR, "LSR", AbsoluteX, 3, 7},
	0xEA: {NOP, "NOP", Implicit, 1, 2},
	0x09: {ORA, "ORA", Immediate, 2, 2},
	0x05: {ORA, "ORA", ZeroPage, 2, 3},
	0x15: {ORA, "ORA", ZeroPageX, 2, 4},
	0x0D: {ORA, "ORA", Absolute, 3, 4},
	0x1D: {ORA, "ORA", AbsoluteX, 3, 4 /* +1 if page crossed */},
	0x19: {ORA, "ORA", AbsoluteY, 3, 4 /* +1 if page crossed */},
	0x01: {ORA, "ORA", IndirectX, 2, 6},
	0x11: {ORA, "ORA", IndirectY, 2, 5 /* +1 if page crossed */},
	0x48: {PHA, "PHA", Implicit, 1, 3},
	0x08: {PHP, "PHP", Implicit, 1, 3},
	0x68: {PLA, "PLA", Implicit, 1, 4},
	0x28: {PLP, "PLP", Implicit, 1, 4},
	0x2A: {ROL, "ROL", Accumulator, 1, 2},
	0x26: {ROL, "ROL", ZeroPage, 2, 5},
	0x36: {ROL, "ROL", ZeroPageX, 2, 6},
	0x2E: {ROL, "ROL", Absolute, 3, 6},
	0x3E: {ROL, "ROL", AbsoluteX, 3, 7},
	0x6A: {ROR, "ROR", Accumulator, 1, 2},
	0x66: {ROR, "ROR", ZeroPage, 2, 5},
	0x76: {ROR, "ROR", ZeroPageX, 2, 6},
	0x6E: {ROR, "ROR", Absolute, 3, 6},
	0x7E: {ROR, "ROR", AbsoluteX, 3, 7},
	0x40: {RTI, "RTI", Implicit, 1, 6},
	0x60: {RTS, "RTS", Implicit, 1, 6},
	0xE9: {SBC, "SBC", Immediate, 2, 2},
	0xE5: {SBC, "SBC", ZeroPage, 2, 3},
	0xF5: {SBC, "SBC", ZeroPageX, 2, 4},
	0xED: {SBC, "SBC", Absolute, 3, 4},
	0xFD: {SBC, "SBC", AbsoluteX, 3, 4 /* +1 if page crossed */},
	0xF9: {SBC, "SBC", AbsoluteY, 3, 4 /* +1 if page crossed */},
	0xE1: {SBC, "SBC", IndirectX, 2, 6},
	0xF1: {SBC, "SBC", IndirectY, 2, 5 /* +1 if page crossed */},
	0x38: {SEC, "SEC", Implicit, 1, 2},
	0xF8: {SED, "SED", Implicit, 1, 2},
	0x78: {SEI, "SEI", Implicit, 1, 2},
	0x85: {STA, "STA", ZeroPage, 2, 3},
	0x95: {STA, "STA", ZeroPageX, 2, 4},
	0x8D: {STA, "STA", Absolute, 3, 4},
	0x9D: {STA, "STA", AbsoluteX, 3, 5},
	0x99: {STA, "STA", AbsoluteY, 3, 5},
	0x81: {STA, "STA", IndirectX, 2, 6},
	0x91: {STA, "STA", IndirectY, 2, 6},
	0x86: {STX, "STX", ZeroPage, 2, 3},
	0x96: {STX, "STX", ZeroPageY, 2, 4},
	0x8E: {STX, "STX", Absolute, 3, 4},
	0x84: {STY, "STY", ZeroPage, 2, 3},
	0x94: {STY, "STY", ZeroPageX, 2, 4},
	0x8C: {STY, "STY", Absolute, 3, 4},
	0xAA: {TAX, "TAX", Implicit, 1, 2},
	0xA8: {TAY, "TAY", Implicit, 1, 2},
	0xBA: {TSX, "TSX", Implicit, 1, 2},
	0x8A: {TXA, "TXA", Implicit, 1, 2},
	0x9A: {TXS, "TXS", Implicit, 1, 2},
	0x98: {TYA, "TYA", Implicit, 1, 2},
}

func (c *CPU) ADC(mode uint8) {
	c.addWithOverflow(c.bus.Read(c.getOperandAddr(mode)))
}

func (c *CPU) AND(mode uint8) {
	c.acc &= c.bus.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) ASL(mode uint8) {
	var ov, nv uint8
	switch mode {
	case Accumulator:
		ov = c.acc
		c.acc <<= 1
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.bus.Read(addr)
		nv = ov << 1
		c.bus.Write(addr, nv)
	}

	c.flagsOff(StatusCarry | StatusNegative | StatusZero)
	c.setNegativeAndZeroFlags(nv)
	if ov&0x80 != 0 {
		c.flagsOn(StatusCarry)
	}
}

func (c *CPU) BCC(mode uint8) { c.branch(StatusCarry, false) }
func (c *CPU) BCS(mode uint8) { c.branch(StatusCarry, true) }
func (c *CPU) BEQ(mode uint8) { c.branch(StatusZero, true) }

func (c *CPU) BIT(mode uint8) {
	o := c.bus.Read(c.getOperandAddr(mode))

	c.flagsOff(StatusNegative | StatusOverflow | StatusZero)
	var flags uint8
	if (o & c.acc) == 0 {
		flags |= StatusZero
	}
	flags |= o & (StatusNegative | StatusOverflow)
	c.flagsOn(flags)
}

func (c *CPU) BMI(mode uint8) { c.branch(StatusNegative, true) }
func (c *CPU) BNE(mode uint8) { c.branch(StatusZero, false) }
func (c *CPU) BPL(mode uint8) { c.branch(StatusNegative, false) }

func (c *CPU) BRK(mode uint8) {
	// BRK's operand byte is skipped even though unused; push PC+2.
	c.pushAddress(c.pc + 1)
	c.pushStack(c.status | StatusBreak | StatusUnused)
	c.pc = addressable.ReadU16(c.bus, IntBRK)
	c.flagsOn(StatusInterruptDisable)
}

func (c *CPU) BVC(mode uint8) { c.branch(StatusOverflow, false) }
func (c *CPU) BVS(mode uint8) { c.branch(StatusOverflow, true) }

func (c *CPU) CLC(mode uint8) { c.flagsOff(StatusCarry) }
func (c *CPU) CLD(mode uint8) { c.flagsOff(StatusDecimal) }
func (c *CPU) CLI(mode uint8) { c.flagsOff(StatusInterruptDisable) }
func (c *CPU) CLV(mode uint8) { c.flagsOff(StatusOverflow) }

func (c *CPU) CMP(mode uint8) { c.compare(c.acc, c.bus.Read(c.getOperandAddr(mode))) }
func (c *CPU) CPX(mode uint8) { c.compare(c.x, c.bus.Read(c.getOperandAddr(mode))) }
func (c *CPU) CPY(mode uint8) { c.compare(c.y, c.bus.Read(c.getOperandAddr(mode))) }

func (c *CPU) DEC(mode uint8) {
	a := c.getOperandAddr(mode)
	v := c.bus.Read(a) - 1
	c.bus.Write(a, v)
	c.setNegativeAndZeroFlags(v)
}

func (c *CPU) DEX(mode uint8) {
	c.x--
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) DEY(mode uint8) {
	c.y--
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) EOR(mode uint8) {
	c.acc ^= c.bus.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) INC(mode uint8) {
	a := c.getOperandAddr(mode)
	v := c.bus.Read(a) + 1
	c.bus.Write(a, v)
	c.setNegativeAndZeroFlags(v)
}

func (c *CPU) INX(mode uint8) {
	c.x++
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) INY(mode uint8) {
	c.y++
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) JMP(mode uint8) {
	c.pc = c.getOperandAddr(mode)
}

func (c *CPU) JSR(mode uint8) {
	c.pushAddress(c.pc + 1) // the second byte of the JSR argument
	c.pc = c.getOperandAddr(mode)
}

func (c *CPU) LDA(mode uint8) {
	c.acc = c.bus.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) LDX(mode uint8) {
	c.x = c.bus.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) LDY(mode uint8) {
	c.y = c.bus.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) LSR(mode uint8) {
	var ov, nv uint8
	switch mode {
	case Accumulator:
		ov = c.acc
		c.acc >>= 1
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.bus.Read(addr)
		nv = ov >> 1
		c.bus.Write(addr, nv)
	}

	c.flagsOff(StatusCarry | StatusNegative | StatusZero)
	c.setNegativeAndZeroFlags(nv)
	if ov&StatusCarry != 0 { // bit 0 of the old value
		c.flagsOn(StatusCarry)
	}
}

func (c *CPU) NOP(mode uint8) {}

func (c *CPU) ORA(mode uint8) {
	c.acc |= c.bus.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) PHA(mode uint8) { c.pushStack(c.acc) }

func (c *CPU) PHP(mode uint8) {
	// The 6502 always sets Break and Unused when pushing status.
	c.pushStack(c.status | StatusBreak | StatusUnused)
}

func (c *CPU) PLA(mode uint8) {
	c.acc = c.popStack()
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) PLP(mode uint8) {
	c.status = (c.popStack() &^ StatusBreak) | StatusUnused
}

func (c *CPU) ROL(mode uint8) {
	var ov, nv uint8
	switch mode {
	case Accumulator:
		ov = c.acc
		c.acc = (ov << 1) | (c.status & StatusCarry)
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.bus.Read(addr)
		nv = (ov << 1) | (c.status & StatusCarry)
		c.bus.Write(addr, nv)
	}

	c.flagsOff(StatusCarry | StatusNegative | StatusZero)
	c.setNegativeAndZeroFlags(nv)
	if ov&0x80 != 0 {
		c.flagsOn(StatusCarry)
	}
}

func (c *CPU) ROR(mode uint8) {
	var ov, nv uint8
	switch mode {
	case Accumulator:
		ov = c.acc
		c.acc = (ov >> 1) | ((c.status & StatusCarry) << 7)
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.bus.Read(addr)
		nv = (ov >> 1) | ((c.status & StatusCarry) << 7)
		c.bus.Write(addr, nv)
	}

	c.flagsOff(StatusCarry | StatusNegative | StatusZero)
	c.setNegativeAndZeroFlags(nv)
	if ov&StatusCarry != 0 { // was bit 0 of the old value set?
		c.flagsOn(StatusCarry)
	}
}

func (c *CPU) RTI(mode uint8) {
	c.status = (c.popStack() &^ StatusBreak) | StatusUnused
	c.pc = c.popAddress()
}

func (c *CPU) RTS(mode uint8) {
	c.pc = c.popAddress() + 1
}

func (c *CPU) SBC(mode uint8) {
	c.addWithOverflow(^c.bus.Read(c.getOperandAddr(mode)))
}

func (c *CPU) SEC(mode uint8) { c.flagsOn(StatusCarry) }
func (c *CPU) SED(mode uint8) { c.flagsOn(StatusDecimal) }
func (c *CPU) SEI(mode uint8) { c.flagsOn(StatusInterruptDisable) }

func (c *CPU) STA(mode uint8) { c.bus.Write(c.getOperandAddr(mode), c.acc) }
func (c *CPU) STX(mode uint8) { c.bus.Write(c.getOperandAddr(mode), c.x) }
func (c *CPU) STY(mode uint8) { c.bus.Write(c.getOperandAddr(mode), c.y) }

func (c *CPU) TAX(mode uint8) {
	c.x = c.acc
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) TAY(mode uint8) {
	c.y = c.acc
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) TSX(mode uint8) {
	c.x = c.sp
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) TXA(mode uint8) {
	c.acc = c.x
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) TXS(mode uint8) { c.sp = c.x }

func (c *CPU) TYA(mode uint8) {
	c.acc = c.y
	c.setNegativeAndZeroFlags(c.acc)
}
