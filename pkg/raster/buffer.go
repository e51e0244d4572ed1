// Package raster provides a small software rasterizer that draws primitives
// (pixels, lines, circles, rectangles and bitmap text) into an in-memory
// pixel buffer. Every drawing operation clips per pixel and never fails.
package raster

import (
	"image"
	"image/color"
	"math"
)

// Unit is the numeric range a buffer or a color stores its components in.
type Unit int

const (
	// UnitByte stores components in 0..255.
	UnitByte Unit = iota
	// UnitFloat stores components normalized to 0..1.
	UnitFloat
)

// scale returns the value that represents full intensity in this unit.
func (u Unit) scale() float64 {
	if u == UnitFloat {
		return 1
	}
	return 255
}

// String returns the unit name.
func (u Unit) String() string {
	if u == UnitFloat {
		return "float"
	}
	return "byte"
}

// Color is an RGBA color expressed in its own Unit.
type Color struct {
	R, G, B, A float64
	Unit       Unit
}

// RGBA returns a byte-unit color.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: float64(r), G: float64(g), B: float64(b), A: float64(a), Unit: UnitByte}
}

// NormRGBA returns a color with components already normalized to 0..1.
func NormRGBA(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a, Unit: UnitFloat}
}

// In converts the color to the given unit.
func (c Color) In(u Unit) Color {
	if c.Unit == u {
		return c
	}
	to, from := u.scale(), c.Unit.scale()
	return Color{R: c.R * to / from, G: c.G * to / from, B: c.B * to / from, A: c.A * to / from, Unit: u}
}

// Common colors.
var (
	Black   = RGBA(0, 0, 0, 255)
	White   = RGBA(255, 255, 255, 255)
	Red     = RGBA(255, 0, 0, 255)
	Green   = RGBA(0, 255, 0, 255)
	Blue    = RGBA(0, 0, 255, 255)
	Yellow  = RGBA(255, 255, 0, 255)
	Cyan    = RGBA(0, 255, 255, 255)
	Magenta = RGBA(255, 0, 255, 255)
)

// Buffer is a width×height grid of RGB or RGBA pixels. Components are kept
// in the buffer's Unit. A Buffer never changes size after construction.
type Buffer struct {
	width    int
	height   int
	channels int
	unit     Unit
	pix      []float32
}

// NewBuffer allocates a zeroed buffer. channels must be 3 (RGB) or 4 (RGBA);
// any other value is treated as 4.
func NewBuffer(width, height, channels int, unit Unit) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if channels != 3 {
		channels = 4
	}
	return &Buffer{
		width:    width,
		height:   height,
		channels: channels,
		unit:     unit,
		pix:      make([]float32, width*height*channels),
	}
}

// NewBufferFromBGR builds a byte-unit RGB buffer from packed BGR bytes, the
// layout of an 8-bit 3-channel camera frame.
func NewBufferFromBGR(width, height int, bgr []byte) *Buffer {
	b := NewBuffer(width, height, 3, UnitByte)
	n := width * height
	if len(bgr) < n*3 {
		n = len(bgr) / 3
	}
	for i := 0; i < n; i++ {
		b.pix[i*3] = float32(bgr[i*3+2])
		b.pix[i*3+1] = float32(bgr[i*3+1])
		b.pix[i*3+2] = float32(bgr[i*3])
	}
	return b
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.height }

// Channels returns 3 for RGB buffers and 4 for RGBA buffers.
func (b *Buffer) Channels() int { return b.channels }

// Unit returns the unit components are stored in.
func (b *Buffer) Unit() Unit { return b.unit }

// In reports whether (x, y) lies inside the buffer.
func (b *Buffer) In(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// At returns the stored color at (x, y) in the buffer's unit. Outside the
// buffer it returns the zero color.
func (b *Buffer) At(x, y int) Color {
	if !b.In(x, y) {
		return Color{Unit: b.unit}
	}
	i := (y*b.width + x) * b.channels
	c := Color{
		R:    float64(b.pix[i]),
		G:    float64(b.pix[i+1]),
		B:    float64(b.pix[i+2]),
		A:    b.unit.scale(),
		Unit: b.unit,
	}
	if b.channels == 4 {
		c.A = float64(b.pix[i+3])
	}
	return c
}

// set stores c, already converted to the buffer unit, at (x, y).
// Callers are responsible for the bounds check.
func (b *Buffer) set(x, y int, c Color) {
	i := (y*b.width + x) * b.channels
	b.pix[i] = float32(c.R)
	b.pix[i+1] = float32(c.G)
	b.pix[i+2] = float32(c.B)
	if b.channels == 4 {
		b.pix[i+3] = float32(c.A)
	}
}

// BGR packs the buffer into 8-bit BGR bytes suitable for an OpenCV Mat.
func (b *Buffer) BGR() []byte {
	out := make([]byte, b.width*b.height*3)
	f := 255 / b.unit.scale()
	for p := 0; p < b.width*b.height; p++ {
		i := p * b.channels
		out[p*3] = toByte(float64(b.pix[i+2]) * f)
		out[p*3+1] = toByte(float64(b.pix[i+1]) * f)
		out[p*3+2] = toByte(float64(b.pix[i]) * f)
	}
	return out
}

// Image returns an RGBA copy of the buffer.
func (b *Buffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	f := 255 / b.unit.scale()
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := b.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(c.R * f),
				G: toByte(c.G * f),
				B: toByte(c.B * f),
				A: toByte(c.A * f),
			})
		}
	}
	return img
}

func toByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
