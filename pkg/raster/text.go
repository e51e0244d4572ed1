package raster

// Character cell size at scale 1. Glyphs are 5 wide and at most 7 tall; the
// remainder is spacing.
const (
	CellWidth  = 6
	CellHeight = 8
)

// DrawText renders text with its top-left corner at (x, y). '\n' returns to
// x and moves down one cell, ' ' advances without drawing, and characters
// missing from the font are skipped but still advance the cursor. Each glyph
// bit is drawn as a scale×scale block.
func (d *Drawer) DrawText(x, y int, text string, c Color, scale int, font string) {
	c = c.In(d.buf.unit)
	if scale < 1 {
		scale = 1
	}
	glyphs := FontByName(font)

	cx, cy := x, y
	for _, ch := range text {
		switch ch {
		case '\n':
			cx = x
			cy += CellHeight * scale
			continue
		case ' ':
			cx += CellWidth * scale
			continue
		}
		if g, ok := glyphs[ch]; ok {
			d.drawGlyph(cx, cy, g, c, scale)
		}
		cx += CellWidth * scale
	}
}

// TextSize returns the pixel extent DrawText would cover for text.
func TextSize(text string, scale int) (w, h int) {
	if scale < 1 {
		scale = 1
	}
	cols, lines := 0, 1
	for _, ch := range text {
		if ch == '\n' {
			lines++
			cols = 0
			continue
		}
		cols++
		w = max(w, cols*CellWidth*scale)
	}
	return w, lines * CellHeight * scale
}

func (d *Drawer) drawGlyph(x, y int, g Glyph, c Color, scale int) {
	for row, bits := range g {
		for col := 0; col < glyphWidth; col++ {
			if bits&(1<<(glyphWidth-1-col)) == 0 {
				continue
			}
			for sy := 0; sy < scale; sy++ {
				for sx := 0; sx < scale; sx++ {
					d.plot(x+col*scale+sx, y+row*scale+sy, c)
				}
			}
		}
	}
}
