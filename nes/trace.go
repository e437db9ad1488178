package nes

import (
	"fmt"
	"strings"
)

// Trace renders the nestest-format trace line for the instruction about to
// execute at c.PC, using bus.Peek exclusively so that producing a trace
// never perturbs PPU register state (a PPUDATA Read would otherwise consume
// the buffered byte or clear VBlank out from under the real execution that
// follows). Column layout: 6 columns for the address, up to 8 for the raw
// opcode bytes, an illegal-opcode marker, mnemonic plus operand padded to
// column 48, then the register file.
func (c *CPU) Trace(bus Bus) string {
	pc := c.PC
	opcode := bus.Peek(pc)
	inst := opcodes[opcode]

	var b strings.Builder
	fmt.Fprintf(&b, "%04X  ", pc)

	switch inst.Size {
	case 1:
		fmt.Fprintf(&b, "%02X      ", inst.OpCode)
	case 2:
		fmt.Fprintf(&b, "%02X %02X   ", inst.OpCode, bus.Peek(pc+1))
	case 3:
		fmt.Fprintf(&b, "%02X %02X %02X", inst.OpCode, bus.Peek(pc+1), bus.Peek(pc+2))
	}

	if inst.Illegal {
		b.WriteString(" *")
	} else {
		b.WriteString("  ")
	}

	b.WriteString(inst.Name)
	b.WriteByte(' ')

	switch inst.Mode {
	case Accumulator:
		b.WriteString("A")
	case Implied:
		// no operand text
	default:
		var arg uint16
		switch inst.Mode {
		case Immediate, ZeroPage, ZeroPageIndexedX, ZeroPageIndexedY, PreIndexedIndirect, PostIndexedIndirect:
			arg = uint16(bus.Peek(pc + 1))
		case Absolute, Indirect, IndexedX, IndexedY:
			arg = uint16(bus.Peek(pc+1)) | uint16(bus.Peek(pc+2))<<8
		case Relative:
			rel := int8(bus.Peek(pc + 1))
			arg = uint16(int32(pc) + 2 + int32(rel))
		}
		fmt.Fprintf(&b, addressingFormats[inst.Mode], arg)
	}

	line := b.String()
	if pad := 48 - len(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}

	dot, scanLine := 0, 0
	if sb, ok := bus.(*SysBus); ok && sb.PPU != nil {
		dot, scanLine = sb.PPU.Dot, sb.PPU.ScanLine
	}

	return fmt.Sprintf("%sA:%02X X:%02X Y:%02X P:%02X SP:%02X PPU:%3d,%3d CYC:%d\n",
		line, c.A, c.X, c.Y, c.P, c.S, dot, scanLine, c.Cycles)
}
