package main

import (
	"image"
	"math"
)

// Rasterizer primitives. Every routine writes exact palette indices with no
// blending, clips to the buffer bounds, and is deterministic for a given
// input: pixel placement never depends on platform float behavior beyond
// IEEE-754 basic operations.

// Line draws a Bresenham line, endpoints inclusive. A zero-length line is a
// single pixel.
func (b *Buffer) Line(c uint8, x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy
	x, y := x0, y0
	for {
		b.Set(x, y, c)
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// ThickLine stamps filled discs along the segment. Thickness 1 or less
// degrades to a plain Bresenham line.
func (b *Buffer) ThickLine(c uint8, x0, y0, x1, y1, thickness int) {
	if thickness <= 1 {
		b.Line(c, x0, y0, x1, y1)
		return
	}
	dx := float64(x1 - x0)
	dy := float64(y1 - y0)
	dist := math.Sqrt(dx*dx + dy*dy)
	r := thickness / 2
	if dist == 0 {
		b.EllipseFill(c, x0, y0, r, r)
		return
	}
	steps := int(dist * 2)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		tx := float64(x0) + t*dx
		ty := float64(y0) + t*dy
		b.EllipseFill(c, int(math.Round(tx)), int(math.Round(ty)), r, r)
	}
}

// CapsuleFill is a thick line of radius r.
func (b *Buffer) CapsuleFill(c uint8, x0, y0, x1, y1, r int) {
	b.ThickLine(c, x0, y0, x1, y1, r*2)
}

func (b *Buffer) RectFill(c uint8, x, y, w, h int) {
	for yy := y; yy < y+h; yy++ {
		if yy < 0 || yy >= b.H {
			continue
		}
		row := yy * b.W
		for xx := x; xx < x+w; xx++ {
			if xx >= 0 && xx < b.W {
				b.Pix[row+xx] = c
			}
		}
	}
}

func (b *Buffer) RectStroke(c uint8, x, y, w, h int) {
	for i := 0; i < w; i++ {
		b.Set(x+i, y, c)
		b.Set(x+i, y+h-1, c)
	}
	for j := 0; j < h; j++ {
		b.Set(x, y+j, c)
		b.Set(x+w-1, y+j, c)
	}
}

// EllipseFill rasterizes a filled ellipse as symmetric horizontal spans.
// Zero radii on both axes draw the center pixel; a single zero radius is a
// no-op.
func (b *Buffer) EllipseFill(c uint8, cx, cy, rx, ry int) {
	if rx <= 0 || ry <= 0 {
		if rx == 0 && ry == 0 {
			b.Set(cx, cy, c)
		}
		return
	}
	for yy := cy - ry; yy <= cy+ry; yy++ {
		if yy < 0 || yy >= b.H {
			continue
		}
		dy := float64(yy-cy) / float64(ry)
		inside := 1.0 - dy*dy
		if inside < 0 {
			continue
		}
		span := int(math.Floor(float64(rx) * math.Sqrt(inside)))
		row := yy * b.W
		for xx := cx - span; xx <= cx+span; xx++ {
			if xx >= 0 && xx < b.W {
				b.Pix[row+xx] = c
			}
		}
	}
}

// EllipseStroke draws an ellipse outline with the midpoint algorithm,
// plotting all four quadrants per step.
func (b *Buffer) EllipseStroke(c uint8, cx, cy, rx, ry int) {
	if rx <= 0 || ry <= 0 {
		return
	}
	x, y := 0, ry
	rx2 := rx * rx
	ry2 := ry * ry
	px, py := 0, 2*rx2*y

	plot := func(dx, dy int) {
		b.Set(cx+dx, cy+dy, c)
		b.Set(cx-dx, cy+dy, c)
		b.Set(cx+dx, cy-dy, c)
		b.Set(cx-dx, cy-dy, c)
	}

	plot(x, y)
	p := int(math.Round(float64(ry2) - float64(rx2*ry) + 0.25*float64(rx2)))
	for px < py {
		x++
		px += 2 * ry2
		if p < 0 {
			p += ry2 + px
		} else {
			y--
			py -= 2 * rx2
			p += ry2 + px - py
		}
		plot(x, y)
	}
	fp := float64(ry2)*(float64(x)+0.5)*(float64(x)+0.5) +
		float64(rx2)*float64(y-1)*float64(y-1) - float64(rx2*ry2)
	p = int(math.Round(fp))
	for y > 0 {
		y--
		py -= 2 * rx2
		if p > 0 {
			p += rx2 - py
		} else {
			x++
			px += 2 * ry2
			p += rx2 - py + px
		}
		plot(x, y)
	}
}

func (b *Buffer) CircleFill(c uint8, cx, cy, r int) {
	b.EllipseFill(c, cx, cy, r, r)
}

// PolyFill scanline-fills a closed polygon using the even-odd rule.
// The edge between the last and first vertex is implicit. An empty vertex
// list is a no-op.
func (b *Buffer) PolyFill(c uint8, pts []image.Point) {
	if len(pts) == 0 {
		return
	}
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	var nodes []float64
	for y := minY; y <= maxY; y++ {
		if y < 0 || y >= b.H {
			continue
		}
		nodes = nodes[:0]
		j := len(pts) - 1
		for i := range pts {
			yi, yj := pts[i].Y, pts[j].Y
			if (yi < y && y <= yj) || (yj < y && y <= yi) {
				xi, xj := float64(pts[i].X), float64(pts[j].X)
				nodes = append(nodes, xi+float64(y-pts[i].Y)/float64(yj-yi)*(xj-xi))
			}
			j = i
		}
		sortFloats(nodes)
		for i := 0; i+1 < len(nodes); i += 2 {
			x0 := int(math.Ceil(nodes[i]))
			x1 := int(math.Floor(nodes[i+1]))
			row := y * b.W
			for x := x0; x <= x1; x++ {
				if x >= 0 && x < b.W {
					b.Pix[row+x] = c
				}
			}
		}
	}
}

// Insertion sort keeps span ordering stable and allocation-free for the
// short node lists scanline fill produces.
func sortFloats(v []float64) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] < v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}

// FloodFill replaces the 4-connected region containing the seed with c.
// A seed already holding c is a no-op, and an out-of-bounds seed does
// nothing.
func (b *Buffer) FloodFill(c uint8, sx, sy int) {
	if !b.In(sx, sy) {
		return
	}
	target := b.Pix[sy*b.W+sx]
	if target == c {
		return
	}
	queue := []image.Point{{X: sx, Y: sy}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if !b.In(p.X, p.Y) {
			continue
		}
		i := p.Y*b.W + p.X
		if b.Pix[i] != target {
			continue
		}
		b.Pix[i] = c
		queue = append(queue,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1})
	}
}

// bezierSegments is the pinned subdivision count for quadratic beziers.
// Changing it changes pixel-exact output of every document.
const bezierSegments = 32

// Bezier draws a quadratic bezier as a chain of line segments between
// bezierSegments+1 evaluated points, endpoints exact.
func (b *Buffer) Bezier(c uint8, x0, y0, cx, cy, x1, y1 int) {
	px, py := x0, y0
	for i := 1; i <= bezierSegments; i++ {
		t := float64(i) / bezierSegments
		u := 1 - t
		tx := u*u*float64(x0) + 2*u*t*float64(cx) + t*t*float64(x1)
		ty := u*u*float64(y0) + 2*u*t*float64(cy) + t*t*float64(y1)
		nx, ny := int(math.Round(tx)), int(math.Round(ty))
		b.Line(c, px, py, nx, ny)
		px, py = nx, ny
	}
}

// GradientLinear bands the whole buffer by projecting each pixel onto the
// (x0,y0)→(x1,y1) axis and picking the nearest index stop. A degenerate axis
// or empty stop list is a no-op.
func (b *Buffer) GradientLinear(indices []uint8, x0, y0, x1, y1 int) {
	if len(indices) == 0 {
		return
	}
	dx := x1 - x0
	dy := y1 - y0
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return
	}
	n := len(indices) - 1
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			t := float64((x-x0)*dx+(y-y0)*dy) / float64(lenSq)
			t = math.Max(0, math.Min(1, t))
			b.Pix[y*b.W+x] = indices[int(t*float64(n))]
		}
	}
}

// GradientRadial bands the disc of radius r around (cx,cy).
func (b *Buffer) GradientRadial(indices []uint8, cx, cy, r int) {
	if len(indices) == 0 || r <= 0 {
		return
	}
	n := len(indices) - 1
	for yy := cy - r; yy <= cy+r; yy++ {
		for xx := cx - r; xx <= cx+r; xx++ {
			if !b.In(xx, yy) {
				continue
			}
			dist := math.Sqrt(float64((xx-cx)*(xx-cx) + (yy-cy)*(yy-cy)))
			if dist <= float64(r) {
				t := dist / float64(r)
				b.Pix[yy*b.W+xx] = indices[int(t*float64(n))]
			}
		}
	}
}

// DitherRect fills a rectangle with an ordered pattern: "checker" (the 2x2
// Bayer matrix at half density) or "dots" (every other pixel on every other
// row). Unknown patterns fall back to checker.
func (b *Buffer) DitherRect(c uint8, x, y, w, h int, pattern string) {
	for yy := y; yy < y+h; yy++ {
		if yy < 0 || yy >= b.H {
			continue
		}
		row := yy * b.W
		for xx := x; xx < x+w; xx++ {
			if xx < 0 || xx >= b.W {
				continue
			}
			on := false
			switch pattern {
			case "dots":
				on = xx%2 == 0 && yy%2 == 0
			default:
				on = (xx+yy)%2 == 0
			}
			if on {
				b.Pix[row+xx] = c
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
