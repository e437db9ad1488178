package nes

import "image/color"

// palette is the fixed NES master palette: 64 entries, indexed by the
// 6-bit value stored in palette RAM. Hardware data, not prose.
var palette = [64]color.RGBA{
	{0x7C, 0x7C, 0x7C, 0xFF}, {0x00, 0x00, 0xFC, 0xFF},
	{0x00, 0x00, 0xBC, 0xFF}, {0x44, 0x28, 0xBC, 0xFF},
	{0x94, 0x00, 0x84, 0xFF}, {0xA8, 0x00, 0x20, 0xFF},
	{0xA8, 0x10, 0x00, 0xFF}, {0x88, 0x14, 0x00, 0xFF},
	{0x50, 0x30, 0x00, 0xFF}, {0x00, 0x78, 0x00, 0xFF},
	{0x00, 0x68, 0x00, 0xFF}, {0x00, 0x58, 0x00, 0xFF},
	{0x00, 0x40, 0x58, 0xFF}, {0x00, 0x00, 0x00, 0xFF},
	{0x00, 0x00, 0x00, 0xFF}, {0x00, 0x00, 0x00, 0xFF},
	{0xBC, 0xBC, 0xBC, 0xFF}, {0x00, 0x78, 0xF8, 0xFF},
	{0x00, 0x58, 0xF8, 0xFF}, {0x68, 0x44, 0xFC, 0xFF},
	{0xD8, 0x00, 0xCC, 0xFF}, {0xE4, 0x00, 0x58, 0xFF},
	{0xF8, 0x38, 0x00, 0xFF}, {0xE4, 0x5C, 0x10, 0xFF},
	{0xAC, 0x7C, 0x00, 0xFF}, {0x00, 0xB8, 0x00, 0xFF},
	{0x00, 0xA8, 0x00, 0xFF}, {0x00, 0xA8, 0x44, 0xFF},
	{0x00, 0x88, 0x88, 0xFF}, {0x00, 0x00, 0x00, 0xFF},
	{0x00, 0x00, 0x00, 0xFF}, {0x00, 0x00, 0x00, 0xFF},
	{0xF8, 0xF8, 0xF8, 0xFF}, {0x3C, 0xBC, 0xFC, 0xFF},
	{0x68, 0x88, 0xFC, 0xFF}, {0x98, 0x78, 0xF8, 0xFF},
	{0xF8, 0x78, 0xF8, 0xFF}, {0xF8, 0x58, 0x98, 0xFF},
	{0xF8, 0x78, 0x58, 0xFF}, {0xFC, 0xA0, 0x44, 0xFF},
	{0xF8, 0xB8, 0x00, 0xFF}, {0xB8, 0xF8, 0x18, 0xFF},
	{0x58, 0xD8, 0x54, 0xFF}, {0x58, 0xF8, 0x98, 0xFF},
	{0x00, 0xE8, 0xD8, 0xFF}, {0x78, 0x78, 0x78, 0xFF},
	{0x00, 0x00, 0x00, 0xFF}, {0x00, 0x00, 0x00, 0xFF},
	{0xFC, 0xFC, 0xFC, 0xFF}, {0xA4, 0xE4, 0xFC, 0xFF},
	{0xB8, 0xB8, 0xF8, 0xFF}, {0xD8, 0xB8, 0xF8, 0xFF},
	{0xF8, 0xB8, 0xF8, 0xFF}, {0xF8, 0xA4, 0xC0, 0xFF},
	{0xF0, 0xD0, 0xB0, 0xFF}, {0xFC, 0xE0, 0xA8, 0xFF},
	{0xF8, 0xD8, 0x78, 0xFF}, {0xD8, 0xF8, 0x78, 0xFF},
	{0xB8, 0xF8, 0xB8, 0xFF}, {0xB8, 0xF8, 0xD8, 0xFF},
	{0x00, 0xFC, 0xFC, 0xFF}, {0xF8, 0xD8, 0xF8, 0xFF},
	{0x00, 0x00, 0x00, 0xFF}, {0x00, 0x00, 0x00, 0xFF},
}

const (
	PPUCTRL   uint16 = 0x2000
	PPUMASK   uint16 = 0x2001
	PPUSTATUS uint16 = 0x2002
	OAMADDR   uint16 = 0x2003
	OAMDATA   uint16 = 0x2004
	PPUSCROLL uint16 = 0x2005
	PPUADDR   uint16 = 0x2006
	PPUDATA   uint16 = 0x2007
)

// PpuCtrl bits, $2000.
type PpuCtrl byte

const (
	CtrlNametableMask  PpuCtrl = 0x03
	CtrlIncrement32    PpuCtrl = 1 << 2
	CtrlSpriteTable    PpuCtrl = 1 << 3
	CtrlBGTable        PpuCtrl = 1 << 4
	CtrlSpriteSize     PpuCtrl = 1 << 5
	CtrlMasterSlave    PpuCtrl = 1 << 6
	CtrlGenerateNMI    PpuCtrl = 1 << 7
)

// PpuStatus bits, $2002.
type PpuStatus byte

const (
	StatusSpriteOverflow PpuStatus = 1 << 5
	StatusSprite0Hit     PpuStatus = 1 << 6
	StatusVBlank         PpuStatus = 1 << 7
)

const (
	dotsPerScanline     = 341
	scanlinesPerFrame   = 262
	vblankStartScanline = 241
	preRenderScanline   = 261
)

// PPU owns registers, VRAM/palette/OAM, and the dot/scanline/frame clock.
// Rendering pixel fetch (background tiles, sprite evaluation) is out of
// scope: the surface exposed here is the register contract, the VBlank
// timing, and a palette-indexed framebuffer, not a cycle-exact pixel
// pipeline — so Framebuffer is filled by FillSolid/FillTestPattern rather
// than a real fetch unit.
type PPU struct {
	Cartridge *Cartridge

	Ctrl   PpuCtrl
	Mask   PpuMask
	Status PpuStatus

	oamAddr byte
	oam     [256]byte

	paletteRAM [32]byte
	nametables [4][1024]byte

	v uint16 // current VRAM address, 15 bits
	t uint16 // temporary VRAM address
	x byte   // fine X scroll, 3 bits
	w bool   // write-toggle latch

	readBuffer byte

	Dot      int
	ScanLine int
	Frame    uint64

	// nmiEdge latches once per VBlank 0->1 transition when NMI-enable was
	// already set at that instant; the CPU consumes it exactly once. This
	// is distinct from ShouldInterrupt, which is a pure level query of the
	// current VBlank/NMI-enable combination used by the "NMI gating"
	// testable property.
	nmiEdge bool

	framebuffer [256 * 240]byte
}

// PpuMask bits, $2001.
type PpuMask byte

const (
	MaskGreyscale      PpuMask = 1 << 0
	MaskShowBGLeft     PpuMask = 1 << 1
	MaskShowSpriteLeft PpuMask = 1 << 2
	MaskShowBG         PpuMask = 1 << 3
	MaskShowSprites    PpuMask = 1 << 4
)

func NewPPU(cart *Cartridge) *PPU {
	return &PPU{Cartridge: cart}
}

// ReadRegister implements the CPU-visible side of the register contract,
// addr already normalized to one of $2000-$2007.
func (p *PPU) ReadRegister(addr uint16) byte {
	switch addr {
	case PPUSTATUS:
		v := byte(p.Status)
		p.Status &^= StatusVBlank
		p.w = false
		return v
	case OAMDATA:
		return p.oam[p.oamAddr]
	case PPUDATA:
		return p.readData()
	default:
		return 0
	}
}

// PeekRegister mirrors ReadRegister without clearing VBlank/write_toggle or
// advancing the VRAM address/read buffer, so Trace stays pure.
func (p *PPU) PeekRegister(addr uint16) byte {
	switch addr {
	case PPUSTATUS:
		return byte(p.Status)
	case OAMDATA:
		return p.oam[p.oamAddr]
	case PPUDATA:
		if p.v&0x3FFF >= 0x3F00 {
			return p.readPalette(p.v)
		}
		return p.readBuffer
	default:
		return 0
	}
}

func (p *PPU) readData() byte {
	addr := p.v & 0x3FFF
	var result byte
	if addr >= 0x3F00 {
		result = p.readPalette(addr)
		p.readBuffer = p.readVRAM(addr - 0x1000)
	} else {
		result = p.readBuffer
		p.readBuffer = p.readVRAM(addr)
	}
	p.incrementV()
	return result
}

func (p *PPU) WriteRegister(addr uint16, v byte) {
	switch addr {
	case PPUCTRL:
		wasEnabled := p.Ctrl&CtrlGenerateNMI != 0
		p.Ctrl = PpuCtrl(v)
		p.t = (p.t &^ 0x0C00) | uint16(v&0x03)<<10
		if !wasEnabled && p.Ctrl&CtrlGenerateNMI != 0 && p.Status&StatusVBlank != 0 {
			// NMI-enable rising while VBlank is already latched must not
			// itself trigger a second NMI; nmiEdge is only set at the VBlank
			// 0->1 transition in Tick.
		}
	case PPUMASK:
		p.Mask = PpuMask(v)
	case PPUSTATUS:
		// read-only; writes ignored
	case OAMADDR:
		p.oamAddr = v
	case OAMDATA:
		p.oam[p.oamAddr] = v
		p.oamAddr++
	case PPUSCROLL:
		if !p.w {
			p.t = (p.t &^ 0x001F) | uint16(v>>3)
			p.x = v & 0x07
			p.w = true
		} else {
			p.t = (p.t &^ 0x73E0) | uint16(v&0x07)<<12 | uint16(v&0xF8)<<2
			p.w = false
		}
	case PPUADDR:
		if !p.w {
			p.t = (p.t &^ 0xFF00) | uint16(v&0x3F)<<8
			p.w = true
		} else {
			p.t = (p.t &^ 0x00FF) | uint16(v)
			p.v = p.t
			p.w = false
		}
	case PPUDATA:
		p.writeVRAM(p.v&0x3FFF, v)
		p.incrementV()
	}
}

func (p *PPU) incrementV() {
	if p.Ctrl&CtrlIncrement32 != 0 {
		p.v += 32
	} else {
		p.v++
	}
}

// nametableIndex maps a $2000-$2FFF address to one of the PPU's four
// 1KiB logical nametable slots plus an offset within it.
func (p *PPU) nametableIndex(addr uint16) (table, offset int) {
	addr &= 0x0FFF
	return int(addr / 0x0400), int(addr % 0x0400)
}

// physicalBank maps a logical nametable slot (0-3) to the physical 1KiB
// bank backing it, per the cartridge's wired mirroring mode. Horizontal
// mirroring ties {0,1} and {2,3} together; Vertical ties {0,2} and {1,3};
// FourScreenMirror keeps all four distinct.
func (p *PPU) physicalBank(table int) int {
	switch p.Cartridge.MirrorMode {
	case Horizontal:
		return table / 2
	case Vertical:
		return table % 2
	default: // FourScreenMirror
		return table
	}
}

func (p *PPU) readNametable(addr uint16) byte {
	table, off := p.nametableIndex(addr)
	return p.nametables[p.physicalBank(table)][off]
}

func (p *PPU) writeNametable(addr uint16, v byte) {
	table, off := p.nametableIndex(addr)
	p.nametables[p.physicalBank(table)][off] = v
}

func (p *PPU) readVRAM(addr uint16) byte {
	if addr >= 0x3F00 {
		return p.readPalette(addr)
	}
	if addr >= 0x2000 {
		return p.readNametable(addr)
	}
	return p.Cartridge.ReadCHR(addr)
}

func (p *PPU) writeVRAM(addr uint16, v byte) {
	if addr >= 0x3F00 {
		p.writePalette(addr, v)
		return
	}
	if addr >= 0x2000 {
		p.writeNametable(addr, v)
		return
	}
	p.Cartridge.WriteCHR(addr, v)
}

func paletteIndex(addr uint16) uint16 {
	i := addr & 0x1F
	// $3F10/$3F14/$3F18/$3F1C mirror $3F00/$3F04/$3F08/$3F0C.
	if i >= 0x10 && i%4 == 0 {
		i -= 0x10
	}
	return i
}

func (p *PPU) readPalette(addr uint16) byte  { return p.paletteRAM[paletteIndex(addr)] }
func (p *PPU) writePalette(addr uint16, v byte) { p.paletteRAM[paletteIndex(addr)] = v }

// ShouldInterrupt is a pure level query: true iff VBlank is currently
// latched and NMI-generation is currently enabled. This is what the "NMI
// gating" testable property exercises directly — it is deliberately not
// the same thing as the edge-triggered signal the CPU consumes once per
// VBlank entry (see nmiEdge/TakeNMIEdge).
func (p *PPU) ShouldInterrupt() bool {
	return p.Status&StatusVBlank != 0 && p.Ctrl&CtrlGenerateNMI != 0
}

// TakeNMIEdge reports and clears a pending edge-triggered NMI, latched once
// when VBlank transitioned 0->1 while NMI-enable happened to already be
// set. Consumed at most once per VBlank period.
func (p *PPU) TakeNMIEdge() bool {
	v := p.nmiEdge
	p.nmiEdge = false
	return v
}

// Tick advances the dot/scanline/frame counters by one PPU clock,
// 341 dots per scanline, 262 scanlines per frame. VBlank is set at dot 1
// of scanline 241 and cleared at dot 1 of the pre-render scanline 261.
func (p *PPU) Tick() {
	p.Dot++
	if p.Dot >= dotsPerScanline {
		p.Dot = 0
		p.ScanLine++
		if p.ScanLine > preRenderScanline {
			p.ScanLine = 0
			p.Frame++
		}
	}

	if p.ScanLine == vblankStartScanline && p.Dot == 1 {
		p.Status |= StatusVBlank
		if p.Ctrl&CtrlGenerateNMI != 0 {
			p.nmiEdge = true
		}
	}
	if p.ScanLine == preRenderScanline && p.Dot == 1 {
		p.Status &^= StatusVBlank
		p.Status &^= StatusSprite0Hit
		p.Status &^= StatusSpriteOverflow
	}
}

// Framebuffer returns the current palette-indexed 256x240 frame, row-major.
func (p *PPU) Framebuffer() []byte {
	return p.framebuffer[:]
}

// FillSolid sets every pixel to a single palette index; useful for tests
// and as a placeholder presentation until a real pixel pipeline exists.
func (p *PPU) FillSolid(index byte) {
	for i := range p.framebuffer {
		p.framebuffer[i] = index % 64
	}
}

// FillTestPattern fills the framebuffer deterministically from palette RAM
// contents, one vertical 8px-wide band per palette entry (32 bands across
// the 256px width), so a renderer
// exercising FramebufferToRGBA has something structured to show.
func (p *PPU) FillTestPattern() {
	const width, height = 256, 240
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			band := byte(x / 8 % 32)
			p.framebuffer[y*width+x] = p.paletteRAM[band] % 64
		}
	}
}

// FramebufferToRGBA converts the palette-indexed framebuffer into packed
// RGBA bytes, one fully-opaque pixel per four bytes.
func FramebufferToRGBA(fb []byte) []byte {
	out := make([]byte, len(fb)*4)
	for i, idx := range fb {
		c := palette[idx%64]
		out[i*4+0] = c.R
		out[i*4+1] = c.G
		out[i*4+2] = c.B
		out[i*4+3] = 0xFF
	}
	return out
}
