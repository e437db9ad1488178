package nes

import (
	"fmt"
	"io"
)

// Console aggregates the CPU, PPU, RAM, and a loaded Cartridge behind one
// SysBus, and drives the outer 3:1 CPU:PPU clock loop. It owns no
// audio/recording state and no graphical surface — those are external
// collaborators (cmd/nesview, internal/input).
type Console struct {
	CPU       *CPU
	PPU       *PPU
	RAM       *RAM
	Cartridge *Cartridge
	Bus       *SysBus

	Controller1 *Controller
	Controller2 *Controller
}

// NewConsole wires a freshly loaded Cartridge into a new CPU/PPU/RAM/Bus,
// resets the CPU from the cartridge's reset vector, and optionally
// overrides PC (nestest-style cold boots start at $C000 rather than the
// cartridge's own reset vector). If trace is non-nil, every instruction's
// nestest-format trace line is written to it before the instruction runs.
func NewConsole(cart *Cartridge, pc uint16, trace io.Writer) *Console {
	ram := NewRAM()
	ppu := NewPPU(cart)
	bus := NewSysBus(ram, ppu, cart, nil)
	cpu := NewCPU()

	cpu.Reset(bus)
	if pc != 0 {
		cpu.PC = pc
	}
	// nestest and most trace-comparison harnesses start counting from the
	// 7 cycles the real reset sequence itself consumes.
	cpu.Cycles = 7

	if trace != nil {
		cpu.TraceFunc = func(line string) {
			io.WriteString(trace, line)
		}
	}

	return &Console{
		CPU:         cpu,
		PPU:         ppu,
		RAM:         ram,
		Cartridge:   cart,
		Bus:         bus,
		Controller1: &Controller{},
		Controller2: &Controller{},
	}
}

// Step runs one CPU step, advances the PPU three dots per CPU cycle
// consumed, and hands a VBlank NMI edge latched during this step to the
// CPU. The CPU step is exactly one instruction, except on the call after
// such a latch, which runs only the NMI sequence.
func (c *Console) Step() error {
	cycles, err := c.CPU.Step(c.Bus)
	if err != nil {
		return err
	}

	for i := uint64(0); i < cycles*3; i++ {
		c.PPU.Tick()
	}

	if c.PPU.TakeNMIEdge() {
		c.CPU.RequestNMI()
	}

	return nil
}

// StepFrame runs Step repeatedly until the PPU's frame counter advances.
func (c *Console) StepFrame() error {
	frame := c.PPU.Frame
	for frame == c.PPU.Frame {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// RunUntilBRK steps the console until the CPU executes a BRK (Halted) or
// budget instructions have run without one.
func (c *Console) RunUntilBRK(budget int) error {
	for i := 0; i < budget; i++ {
		if c.CPU.Halted {
			return nil
		}
		if err := c.Step(); err != nil {
			return err
		}
		if c.CPU.Halted {
			return nil
		}
	}
	return fmt.Errorf("nes: RunUntilBRK: no BRK within %d instructions", budget)
}

func (c *Console) Press(player int, button Button) {
	switch player {
	case 0:
		c.Controller1.Press(button)
	case 1:
		c.Controller2.Press(button)
	}
}

func (c *Console) Release(player int, button Button) {
	switch player {
	case 0:
		c.Controller1.Release(button)
	case 1:
		c.Controller2.Release(button)
	}
}

func (c *Console) Read(addr uint16) byte     { return c.Bus.Read(addr) }
func (c *Console) Write(addr uint16, v byte) { c.Bus.Write(addr, v) }
