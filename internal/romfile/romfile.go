// Package romfile loads an iNES cartridge image from disk, separating the
// filesystem concern from nes.LoadINES so the CPU/PPU/cartridge core never
// imports os.
package romfile

import (
	"fmt"
	"os"

	"github.com/flga/nes/nes"
)

// Load opens path and parses it as an iNES ROM image.
func Load(path string) (*nes.Cartridge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("romfile: %w", err)
	}
	defer f.Close()

	cart, err := nes.LoadINES(f)
	if err != nil {
		return nil, fmt.Errorf("romfile: %s: %w", path, err)
	}

	return cart, nil
}
