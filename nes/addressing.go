package nes

// AddressingMode identifies how an opcode's operand byte(s) are turned into
// an effective address or immediate value.
type AddressingMode byte

const (
	Immediate AddressingMode = iota
	ZeroPage
	Absolute
	Relative
	Implied
	Accumulator
	IndexedX
	IndexedY
	ZeroPageIndexedX
	ZeroPageIndexedY
	Indirect
	PreIndexedIndirect
	PostIndexedIndirect
)

// OperandKind tags the resolved operand. Every addressing mode collapses
// into one of these three shapes; "Absolute" here means "resolved effective
// address", not literally the Absolute addressing mode.
type OperandKind byte

const (
	OperandImplied OperandKind = iota
	OperandRelative
	OperandAbsolute
)

// Operand is the tagged union handed to an opcode's Exec function. Reading
// the operand value (for Read/ReadModWrite instructions) means bus.Read(Abs);
// Immediate mode resolves Abs to the address of the operand byte itself.
type Operand struct {
	Kind OperandKind
	Rel  int8
	Abs  uint16
}

// resolve reads the bytes following an opcode according to mode, advancing
// c.PC past them, and returns the decoded operand plus whether the
// effective address landed on a different page than the base address (used
// by the caller to add the one "oops" cycle for indexed Read instructions).
func (c *CPU) resolve(bus Bus, mode AddressingMode) (Operand, bool) {
	switch mode {
	case Immediate:
		addr := c.PC
		c.PC++
		return Operand{Kind: OperandAbsolute, Abs: addr}, false

	case ZeroPage:
		zp := bus.Read(c.PC)
		c.PC++
		return Operand{Kind: OperandAbsolute, Abs: uint16(zp)}, false

	case ZeroPageIndexedX:
		zp := bus.Read(c.PC)
		c.PC++
		addr := uint16(zp + c.X)
		return Operand{Kind: OperandAbsolute, Abs: addr}, false

	case ZeroPageIndexedY:
		zp := bus.Read(c.PC)
		c.PC++
		addr := uint16(zp + c.Y)
		return Operand{Kind: OperandAbsolute, Abs: addr}, false

	case Absolute:
		lo := bus.Read(c.PC)
		hi := bus.Read(c.PC + 1)
		c.PC += 2
		return Operand{Kind: OperandAbsolute, Abs: uint16(hi)<<8 | uint16(lo)}, false

	case IndexedX:
		lo := bus.Read(c.PC)
		hi := bus.Read(c.PC + 1)
		c.PC += 2
		base := uint16(hi)<<8 | uint16(lo)
		addr := base + uint16(c.X)
		return Operand{Kind: OperandAbsolute, Abs: addr}, (base & 0xFF00) != (addr & 0xFF00)

	case IndexedY:
		lo := bus.Read(c.PC)
		hi := bus.Read(c.PC + 1)
		c.PC += 2
		base := uint16(hi)<<8 | uint16(lo)
		addr := base + uint16(c.Y)
		return Operand{Kind: OperandAbsolute, Abs: addr}, (base & 0xFF00) != (addr & 0xFF00)

	case Indirect:
		lo := bus.Read(c.PC)
		hi := bus.Read(c.PC + 1)
		c.PC += 2
		ptr := uint16(hi)<<8 | uint16(lo)
		// 6502 page-wrap bug: the high byte is fetched from the same page as
		// the low byte, never crossing into the next page.
		hiAddr := (ptr & 0xFF00) | ((ptr + 1) & 0x00FF)
		resLo := bus.Read(ptr)
		resHi := bus.Read(hiAddr)
		return Operand{Kind: OperandAbsolute, Abs: uint16(resHi)<<8 | uint16(resLo)}, false

	case PreIndexedIndirect:
		zp := bus.Read(c.PC)
		c.PC++
		ptr := zp + c.X
		lo := bus.Read(uint16(ptr))
		hi := bus.Read(uint16(ptr + 1))
		return Operand{Kind: OperandAbsolute, Abs: uint16(hi)<<8 | uint16(lo)}, false

	case PostIndexedIndirect:
		zp := bus.Read(c.PC)
		c.PC++
		lo := bus.Read(uint16(zp))
		hi := bus.Read(uint16(zp + 1))
		base := uint16(hi)<<8 | uint16(lo)
		addr := base + uint16(c.Y)
		return Operand{Kind: OperandAbsolute, Abs: addr}, (base & 0xFF00) != (addr & 0xFF00)

	case Relative:
		rel := int8(bus.Read(c.PC))
		c.PC++
		return Operand{Kind: OperandRelative, Rel: rel}, false

	default: // Implied, Accumulator
		return Operand{Kind: OperandImplied}, false
	}
}
