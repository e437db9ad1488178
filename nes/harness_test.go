package nes

import (
	"os"
	"testing"
)

func TestRunBlarggTest_Basics(t *testing.T) {
	const romPath = "../roms/instr_test-v5/01-basics.nes"
	if _, err := os.Stat(romPath); err != nil {
		t.Skipf("blargg fixture not present at %s, skipping", romPath)
	}

	f, err := os.Open(romPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	cart, err := LoadINES(f)
	if err != nil {
		t.Fatalf("unable to load rom: %v", err)
	}

	console := NewConsole(cart, 0, nil)

	if err := RunBlarggTest(console, 10_000_000); err != nil {
		t.Fatalf("01-basics: %v", err)
	}
}

func TestReadBlarggMessage(t *testing.T) {
	cart := &Cartridge{}
	console := &Console{Bus: NewSysBus(NewRAM(), NewPPU(cart), cart, nil)}

	msg := "failed #2\n"
	for i, c := range []byte(msg) {
		console.Write(uint16(statusMessageBase+i), c)
	}
	console.Write(uint16(statusMessageBase+len(msg)), 0)

	if got := readBlarggMessage(console); got != msg {
		t.Fatalf("readBlarggMessage = %q, want %q", got, msg)
	}
}
