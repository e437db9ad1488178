package nes

import (
	"io"
	"log"
)

// Bus is the uniform 16-bit address space the CPU operates against. Read
// and Write may mutate the backing device (the PPU's register reads are
// side-effecting); Peek never does, so Trace can stay pure even when the
// resolved operand lands on a PPU register.
type Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, v byte)
	Peek(addr uint16) byte
}

// FlatBus is a flat 64KiB RAM bus with no PPU/cartridge mediation, used by
// CPU unit tests that want to drive raw opcode sequences without wiring a
// whole console.
type FlatBus struct {
	mem [65536]byte
}

func NewFlatBus() *FlatBus { return &FlatBus{} }

func (b *FlatBus) Read(addr uint16) byte     { return b.mem[addr] }
func (b *FlatBus) Write(addr uint16, v byte) { b.mem[addr] = v }
func (b *FlatBus) Peek(addr uint16) byte     { return b.mem[addr] }

// LoadAt copies data into the bus starting at addr, for test setup.
func (b *FlatBus) LoadAt(addr uint16, data []byte) {
	copy(b.mem[addr:], data)
}

// SysBus is the real NES memory map: RAM mirrored to $1FFF, PPU registers
// mirrored every 8 bytes across $2000-$3FFF, $4000-$5FFF reserved (logged,
// not fatal), PRG-RAM at $6000-$7FFF, and the cartridge's PRG-ROM window
// above $8000.
type SysBus struct {
	RAM       *RAM
	PPU       *PPU
	Cartridge *Cartridge

	// Logger receives one line per address the first time it is read or
	// written in the reserved/unmapped region. Defaults to io.Discard so a
	// bare SysBus never panics for lack of a sink.
	Logger *log.Logger

	warnedRead  map[uint16]bool
	warnedWrite map[uint16]bool
}

// NewSysBus wires RAM, PPU and Cartridge into one address space. logger may
// be nil, in which case unmapped-access warnings are discarded.
func NewSysBus(ram *RAM, ppu *PPU, cart *Cartridge, logger *log.Logger) *SysBus {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &SysBus{
		RAM:         ram,
		PPU:         ppu,
		Cartridge:   cart,
		Logger:      logger,
		warnedRead:  make(map[uint16]bool),
		warnedWrite: make(map[uint16]bool),
	}
}

func (bus *SysBus) Read(addr uint16) byte {
	switch {
	case addr < 0x2000:
		return bus.RAM.Read(addr & 0x07FF)
	case addr < 0x4000:
		return bus.PPU.ReadRegister(0x2000 | (addr & 0x0007))
	case addr < 0x6000:
		if !bus.warnedRead[addr] {
			bus.warnedRead[addr] = true
			bus.Logger.Printf("nes: unmapped read at $%04X", addr)
		}
		return 0x00
	default:
		return bus.Cartridge.Read(addr)
	}
}

func (bus *SysBus) Write(addr uint16, v byte) {
	switch {
	case addr < 0x2000:
		bus.RAM.Write(addr&0x07FF, v)
	case addr < 0x4000:
		bus.PPU.WriteRegister(0x2000|(addr&0x0007), v)
	case addr < 0x6000:
		if !bus.warnedWrite[addr] {
			bus.warnedWrite[addr] = true
			bus.Logger.Printf("nes: unmapped write at $%04X = $%02X", addr, v)
		}
	default:
		bus.Cartridge.Write(addr, v)
	}
}

// Peek mirrors Read but never triggers a PPU register side effect (no
// PPUSTATUS VBlank-clear, no PPUDATA buffer refill/advance), so Trace can
// read the next instruction's operand bytes purely.
func (bus *SysBus) Peek(addr uint16) byte {
	switch {
	case addr < 0x2000:
		return bus.RAM.Read(addr & 0x07FF)
	case addr < 0x4000:
		return bus.PPU.PeekRegister(0x2000 | (addr & 0x0007))
	case addr < 0x6000:
		return 0x00
	default:
		return bus.Cartridge.Read(addr)
	}
}
