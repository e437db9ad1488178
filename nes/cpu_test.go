package nes

import "testing"

func newTestCPU(pc uint16) (*CPU, *FlatBus) {
	c := NewCPU()
	c.P = 0x24 // I|X, matches a typical post-reset P with flags otherwise clear
	c.PC = pc
	return c, NewFlatBus()
}

func TestCPU_SimpleProgram(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	// LDA #$05; STA $0010; LDX $0010
	bus.LoadAt(0x8000, []byte{0xA9, 0x05, 0x85, 0x10, 0xA6, 0x10})

	for i := 0; i < 3; i++ {
		if _, err := c.Step(bus); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	if c.A != 0x05 {
		t.Fatalf("A = %#02x, want 0x05", c.A)
	}
	if got := bus.Read(0x0010); got != 0x05 {
		t.Fatalf("mem[0x0010] = %#02x, want 0x05", got)
	}
	if c.X != 0x05 {
		t.Fatalf("X = %#02x, want 0x05", c.X)
	}
	if c.PC != 0x8006 {
		t.Fatalf("PC = %#04x, want 0x8006", c.PC)
	}
}

func TestCPU_ADC_SignedOverflow(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.LoadAt(0x8000, []byte{0x69, 0x50}) // ADC #$50
	c.A = 0x50
	c.P &^= FlagC

	if _, err := c.Step(bus); err != nil {
		t.Fatal(err)
	}

	if c.A != 0xA0 {
		t.Fatalf("A = %#02x, want 0xA0", c.A)
	}
	if c.P&FlagV == 0 {
		t.Fatalf("expected overflow flag set for 0x50+0x50")
	}
	if c.P&FlagC != 0 {
		t.Fatalf("expected carry clear for 0x50+0x50")
	}
	if c.P&FlagN == 0 {
		t.Fatalf("expected negative flag set, result has high bit set")
	}
}

func TestCPU_IndirectJMP_PageWrapBug(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.LoadAt(0x8000, []byte{0x6C, 0xFF, 0x30}) // JMP ($30FF)
	bus.Write(0x30FF, 0x40)
	bus.Write(0x3000, 0x80) // the bug: high byte comes from $3000, not $3100
	bus.Write(0x3100, 0xFF) // if the bug were absent, this would be picked up instead

	if _, err := c.Step(bus); err != nil {
		t.Fatal(err)
	}

	if c.PC != 0x8040 {
		t.Fatalf("PC = %#04x, want 0x8040 (page-wrap bug)", c.PC)
	}
}

func TestCPU_ZeroPageIndexedX_Wraps(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.LoadAt(0x8000, []byte{0xB5, 0xFF}) // LDA $FF,X
	c.X = 0x02
	bus.Write(0x0001, 0x99) // ($FF + 2) wraps to $01 within the zero page

	if _, err := c.Step(bus); err != nil {
		t.Fatal(err)
	}

	if c.A != 0x99 {
		t.Fatalf("A = %#02x, want 0x99 (zero-page wraparound)", c.A)
	}
}

func TestCPU_Branch_PageCrossCyclesCost(t *testing.T) {
	// A taken branch costs 3 cycles; one more on top when the target lands
	// on a different page than the instruction after the branch.
	c, bus := newTestCPU(0x80FD)
	bus.LoadAt(0x80FD, []byte{0xD0, 0x05}) // BNE +5 -> target 0x8104, crosses from page 80 to 81
	c.P &^= FlagZ                          // ensure Z clear so the branch is taken

	before := c.Cycles
	if _, err := c.Step(bus); err != nil {
		t.Fatal(err)
	}

	if c.PC != 0x8104 {
		t.Fatalf("PC = %#04x, want 0x8104", c.PC)
	}
	if got := c.Cycles - before; got != 4 {
		t.Fatalf("cycles = %d, want 4 (2 base + 1 taken + 1 page-cross)", got)
	}
}

func TestCPU_PHP_PLP_PreservesCallerBandX(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.LoadAt(0x8000, []byte{0x08, 0x28}) // PHP; PLP
	c.P = FlagN | FlagC | FlagX            // no FlagB set on the live CPU

	if _, err := c.Step(bus); err != nil { // PHP
		t.Fatal(err)
	}
	pushed := bus.Read(stackBase | uint16(c.S+1))
	if pushed&FlagB == 0 {
		t.Fatalf("PHP must push FlagB set, got P=%#02x", pushed)
	}

	c.P = 0 // simulate something having cleared every flag before PLP runs
	if _, err := c.Step(bus); err != nil { // PLP
		t.Fatal(err)
	}
	if c.P&FlagN == 0 || c.P&FlagC == 0 {
		t.Fatalf("PLP should restore N and C from the stack, got P=%#02x", c.P)
	}
	if c.P&FlagB != 0 {
		t.Fatalf("PLP must not let the pushed FlagB leak into the live P, got P=%#02x", c.P)
	}
}

func TestCPU_BRK_HaltsAndVectors(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.LoadAt(0x8000, []byte{0x00, 0x00}) // BRK, padding byte
	bus.Write(irqVector, 0x00)
	bus.Write(irqVector+1, 0x90) // vector to $9000

	if _, err := c.Step(bus); err != nil {
		t.Fatal(err)
	}

	if !c.Halted {
		t.Fatalf("expected Halted after BRK")
	}
	if c.PC != 0x9000 {
		t.Fatalf("PC = %#04x, want 0x9000 (vectored through IRQ/BRK vector)", c.PC)
	}
	if c.P&FlagI == 0 {
		t.Fatalf("expected FlagI set after the interrupt sequence")
	}
}

func TestCPU_NMI_TakesPriorityAtNextStep(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.LoadAt(0x8000, []byte{0xEA}) // NOP
	bus.Write(nmiVector, 0x00)
	bus.Write(nmiVector+1, 0xA0) // vector to $A000

	c.RequestNMI()
	if _, err := c.Step(bus); err != nil {
		t.Fatal(err)
	}

	if c.PC != 0xA000 {
		t.Fatalf("PC = %#04x, want 0xA000 (NMI serviced before the pending NOP)", c.PC)
	}
}

func TestCPU_CMP_SetsFlagsRelativeToAccumulator(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.LoadAt(0x8000, []byte{0xC9, 0x40}) // CMP #$40
	c.A = 0x40

	if _, err := c.Step(bus); err != nil {
		t.Fatal(err)
	}

	if c.P&FlagZ == 0 {
		t.Fatalf("expected Z set when A == operand")
	}
	if c.P&FlagC == 0 {
		t.Fatalf("expected C set when A >= operand")
	}
}
