// Package input adapts SDL keyboard events onto a console's two joypads.
// It knows nothing about rendering; engine/view code in cmd/nesview owns
// the SDL window and calls Handle per polled event.
package input

import (
	"github.com/flga/nes/nes"
	"github.com/veandco/go-sdl2/sdl"
)

// Keymap is player 1's default layout: arrows for direction, Z/X for
// B/A, Enter/RShift for Start/Select.
var Keymap = map[sdl.Keycode]nes.Button{
	sdl.K_UP:     nes.Up,
	sdl.K_DOWN:   nes.Down,
	sdl.K_LEFT:   nes.Left,
	sdl.K_RIGHT:  nes.Right,
	sdl.K_z:      nes.B,
	sdl.K_x:      nes.A,
	sdl.K_RETURN: nes.Start,
	sdl.K_RSHIFT: nes.Select,
}

// Handle applies a keyboard event to player's controller on console, if the
// key is mapped. Returns false for any event that isn't a mapped keyboard
// event, so callers can fall through to other handling.
func Handle(evt sdl.Event, console *nes.Console, player int) bool {
	kb, ok := evt.(*sdl.KeyboardEvent)
	if !ok {
		return false
	}

	button, ok := Keymap[kb.Keysym.Sym]
	if !ok {
		return false
	}

	switch kb.Type {
	case sdl.KEYDOWN:
		console.Press(player, button)
	case sdl.KEYUP:
		console.Release(player, button)
	}

	return true
}
