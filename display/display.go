// Package display is the frontend collaborator: it owns the PixelGL window,
// blits the core's frame buffer to the screen, and translates key events
// into controller state. It only touches the core through nes's exported
// API.
package display

import (
	"image"
	"image/color"
	"log"

	"github.com/devnes/nesgo/nes"
	"github.com/faiface/pixel"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"
)

const (
	nesResW float64 = 256
	nesResH float64 = 240
	scale   float64 = 2

	screenW float64 = nesResW * scale
	screenH float64 = nesResH * scale

	screenPosX float64 = 600
	screenPosY float64 = 400
)

// Display renders one nes.Bus's frame buffer to a PixelGL window and feeds
// keyboard input back into port 0's controller.
type Display struct {
	bus *nes.Bus

	rgba   *image.RGBA
	window *pixelgl.Window
	matrix pixel.Matrix
}

// keyBinding pairs a PixelGL key with the bit it sets in the controller's
// latched button byte. Bit order matches nes.Controller: A, B, Select,
// Start, Up, Down, Left, Right, MSB to LSB.
type keyBinding struct {
	key pixelgl.Button
	bit byte
}

var controller0Bindings = []keyBinding{
	{pixelgl.KeyN, 0x80}, // A
	{pixelgl.KeyM, 0x40}, // B
	{pixelgl.KeyH, 0x20}, // Select
	{pixelgl.KeyJ, 0x10}, // Start
	{pixelgl.KeyW, 0x08}, // Up
	{pixelgl.KeyS, 0x04}, // Down
	{pixelgl.KeyA, 0x02}, // Left
	{pixelgl.KeyD, 0x01}, // Right
}

// New creates the PixelGL window sized to the NES's 256x240 frame buffer at
// the configured scale, and attaches it to bus. Must be called on the main
// thread (via pixelgl.Run / mainthread.Run).
func New(bus *nes.Bus) *Display {
	rect := image.Rect(0, 0, int(nesResW), int(nesResH))
	rgba := image.NewRGBA(rect)

	config := pixelgl.WindowConfig{
		Title:    "NES Emulator",
		Bounds:   pixel.R(0, 0, screenW, screenH),
		Position: pixel.V(screenPosX, screenPosY),
		VSync:    true,
	}
	window, err := pixelgl.NewWindow(config)
	if err != nil {
		log.Fatal("unable to create PixelGL window: ", err)
	}

	pic := pixel.PictureDataFromImage(rgba)
	matrix := pixel.IM.Moved(pic.Bounds().Center().Scaled(scale))
	matrix = matrix.Scaled(pic.Bounds().Center().Scaled(scale), scale)

	return &Display{
		bus:    bus,
		rgba:   rgba,
		window: window,
		matrix: matrix,
	}
}

// Run drives the main loop: each iteration runs one NES frame, blits the
// result, polls input, and yields to PixelGL until the window is closed.
func (d *Display) Run() {
	for !d.window.Closed() {
		d.bus.RunFrame()
		d.blit()
		d.pollInput()
		d.window.Update()
	}
}

func (d *Display) blit() {
	frame := d.bus.Ppu.FrameBuffer

	for y := 0; y < len(frame); y++ {
		row := frame[y]
		for x := 0; x < len(row); x++ {
			c := row[x]
			d.rgba.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF})
		}
	}

	d.window.Clear(colornames.Black)

	pic := pixel.PictureDataFromImage(d.rgba)
	sprite := pixel.NewSprite(pic, pic.Bounds())
	sprite.Draw(d.window, d.matrix)
}

func (d *Display) pollInput() {
	var bits byte
	for _, binding := range controller0Bindings {
		if d.window.Pressed(binding.key) {
			bits |= binding.bit
		}
	}
	d.bus.SetControllerState(0, bits)
}
