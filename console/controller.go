package console

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Buttons, as bits read back LSB-first on successive $4016/$4017 reads:
// 0 - A
// 1 - B
// 2 - Select
// 3 - Start
// 4 - Up
// 5 - Down
// 6 - Left
// 7 - Right
var buttonKeys = []ebiten.Key{
	ebiten.KeyA,
	ebiten.KeyB,
	ebiten.KeySpace,
	ebiten.KeyEnter,
	ebiten.KeyUp,
	ebiten.KeyDown,
	ebiten.KeyLeft,
	ebiten.KeyRight,
}

// Controller models a standard NES joypad's shift register, as seen at
// $4016/$4017: a strobe write loads the live button state, and each
// subsequent read shifts out one bit (A, B, Select, Start, Up, Down,
// Left, Right), exposing 1 for every read past the eighth.
type Controller struct {
	strobe  bool
	buttons uint8
	shift   uint8
}

// NewController returns a controller with no buttons held.
func NewController() *Controller {
	return &Controller{}
}

// Write handles a strobe byte written to $4016. Bit 0 set means "strobe
// high": poll() keeps re-sampling on every write until strobe goes low,
// at which point the shift index resets and the next 8 reads drain the
// latched button state.
func (c *Controller) Write(val uint8) {
	c.strobe = val&0x01 != 0
	if c.strobe {
		c.poll()
	}
	c.shift = 0
}

// Read shifts out the next button bit. Reads past the eighth return 1,
// matching real joypad open-bus behavior.
func (c *Controller) Read() uint8 {
	if c.strobe {
		c.poll()
	}
	if c.shift > 7 {
		return 1
	}
	bit := (c.buttons >> c.shift) & 0x01
	c.shift++
	return bit
}

func (c *Controller) poll() {
	var b uint8
	for i, key := range buttonKeys {
		if ebiten.IsKeyPressed(key) {
			b |= 1 << uint(i)
		}
	}
	c.buttons = b
}
