package raster

// Drawer draws primitives onto a Buffer it wraps. Colors passed to any
// method are converted to the buffer's unit before they are stored.
type Drawer struct {
	buf *Buffer
}

// NewDrawer returns a Drawer over buf.
func NewDrawer(buf *Buffer) *Drawer {
	return &Drawer{buf: buf}
}

// Buffer returns the wrapped buffer.
func (d *Drawer) Buffer() *Buffer {
	return d.buf
}

// Clear sets every pixel to c.
func (d *Drawer) Clear(c Color) {
	c = c.In(d.buf.unit)
	for y := 0; y < d.buf.height; y++ {
		for x := 0; x < d.buf.width; x++ {
			d.buf.set(x, y, c)
		}
	}
}

// DrawPixel sets (x, y) to c. Points outside the buffer are ignored.
func (d *Drawer) DrawPixel(x, y int, c Color) {
	d.plot(x, y, c.In(d.buf.unit))
}

// plot stores an already converted color with a bounds check.
func (d *Drawer) plot(x, y int, c Color) {
	if d.buf.In(x, y) {
		d.buf.set(x, y, c)
	}
}

// DrawLine draws a Bresenham line from (x1, y1) to (x2, y2), both endpoints
// included. Each stepped point is painted as a thickness×thickness square
// centered on it.
func (d *Drawer) DrawLine(x1, y1, x2, y2 int, c Color, thickness int) {
	c = c.In(d.buf.unit)
	if thickness < 1 {
		thickness = 1
	}
	lo := -(thickness / 2)
	hi := lo + thickness

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 >= x2 {
		sx = -1
	}
	if y1 >= y2 {
		sy = -1
	}
	err := dx - dy

	for {
		for oy := lo; oy < hi; oy++ {
			for ox := lo; ox < hi; ox++ {
				d.plot(x1+ox, y1+oy, c)
			}
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawCircle draws a circle outline of the given radius centered on
// (cx, cy). When fill is non-nil the inclusive disk is painted with it
// first. The outline is drawn at radius, radius-1, ... for thickness rings.
func (d *Drawer) DrawCircle(cx, cy, radius int, c Color, thickness int, fill *Color) {
	c = c.In(d.buf.unit)
	if thickness < 1 {
		thickness = 1
	}

	if fill != nil {
		f := fill.In(d.buf.unit)
		r2 := radius * radius
		for y := max(0, cy-radius); y <= min(d.buf.height-1, cy+radius); y++ {
			for x := max(0, cx-radius); x <= min(d.buf.width-1, cx+radius); x++ {
				if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r2 {
					d.buf.set(x, y, f)
				}
			}
		}
	}

	for t := 0; t < thickness; t++ {
		r := radius - t
		if r < 0 {
			continue
		}
		d.circleOutline(cx, cy, r, c)
	}
}

// circleOutline draws one midpoint circle ring using 8-way symmetry.
func (d *Drawer) circleOutline(cx, cy, r int, c Color) {
	x, y := 0, r
	dec := 3 - 2*r
	for y >= x {
		d.plot(cx+x, cy+y, c)
		d.plot(cx-x, cy+y, c)
		d.plot(cx+x, cy-y, c)
		d.plot(cx-x, cy-y, c)
		d.plot(cx+y, cy+x, c)
		d.plot(cx-y, cy+x, c)
		d.plot(cx+y, cy-x, c)
		d.plot(cx-y, cy-x, c)

		x++
		if dec > 0 {
			y--
			dec += 4*(x-y) + 10
		} else {
			dec += 4*x + 6
		}
	}
}

// DrawRectangle draws the rectangle spanned by two opposite corners. When
// fill is non-nil the interior, border included, is painted first.
func (d *Drawer) DrawRectangle(x1, y1, x2, y2 int, c Color, thickness int, fill *Color) {
	left, right := min(x1, x2), max(x1, x2)
	top, bottom := min(y1, y2), max(y1, y2)

	if fill != nil {
		f := fill.In(d.buf.unit)
		fx0, fx1 := max(left, 0), min(right, d.buf.width-1)
		fy0, fy1 := max(top, 0), min(bottom, d.buf.height-1)
		for y := fy0; y <= fy1; y++ {
			for x := fx0; x <= fx1; x++ {
				d.plot(x, y, f)
			}
		}
	}

	d.DrawLine(left, top, right, top, c, thickness)
	d.DrawLine(right, top, right, bottom, c, thickness)
	d.DrawLine(left, bottom, right, bottom, c, thickness)
	d.DrawLine(left, top, left, bottom, c, thickness)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
