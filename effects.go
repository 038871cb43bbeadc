package main

import (
	"fmt"
	"math"
)

// Effects and whole-buffer transforms. Like the rasterizer these are
// index-exact: every write is one palette index, never a blend.

// Outline paints c into transparent 4-neighbors of non-transparent pixels,
// one ring per thickness step. Each ring grows from a snapshot that includes
// the previous rings, so outline pixels never cascade within one call, and
// occupied pixels are never overwritten.
func (b *Buffer) Outline(c uint8, thickness int) {
	work := make([]bool, len(b.Pix))
	for i, v := range b.Pix {
		work[i] = v != 0
	}
	var add []int
	for ring := 0; ring < thickness; ring++ {
		add = add[:0]
		for y := 0; y < b.H; y++ {
			for x := 0; x < b.W; x++ {
				i := y*b.W + x
				if work[i] {
					continue
				}
				if (x+1 < b.W && work[i+1]) ||
					(x-1 >= 0 && work[i-1]) ||
					(y+1 < b.H && work[i+b.W]) ||
					(y-1 >= 0 && work[i-b.W]) {
					add = append(add, i)
				}
			}
		}
		for _, i := range add {
			b.Pix[i] = c
			work[i] = true
		}
	}
}

// ShadeBand paints c into b at every position the mask occupies that lies
// within thickness pixels of the mask's edge on the given side. Pixels the
// mask doesn't occupy are never touched.
func (b *Buffer) ShadeBand(mask *Buffer, c uint8, side string, thickness int) error {
	var dx, dy int
	switch side {
	case "top":
		dy = -1
	case "bottom":
		dy = 1
	case "left":
		dx = -1
	case "right":
		dx = 1
	default:
		return fmt.Errorf("shade_band: unsupported side %q", side)
	}
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if mask.Get(x, y) == 0 {
				continue
			}
			for t := 1; t <= thickness; t++ {
				nx, ny := x+dx*t, y+dy*t
				if !mask.In(nx, ny) || mask.Pix[ny*mask.W+nx] == 0 {
					b.Pix[y*b.W+x] = c
					break
				}
			}
		}
	}
	return nil
}

// noiseSeedDefault is used when a document omits the seed outside strict
// mode. A constant, never wall-clock: renders must stay reproducible.
const noiseSeedDefault = 1

// lcgNext advances the portable 31-bit linear congruential generator that
// backs noise_points. The constants are part of the rendering contract;
// every implementation must produce the same sequence for the same seed.
func lcgNext(x uint32) uint32 {
	return (1103515245*x + 12345) & 0x7FFFFFFF
}

// NoisePoints paints count distinct pseudo-random positions chosen among the
// mask's non-transparent pixels. The same seed and mask always select the
// same set. Fewer eligible pixels than count paints them all.
func (b *Buffer) NoisePoints(mask *Buffer, c uint8, count, seed int) {
	var eligible []int
	for i, v := range mask.Pix {
		if v != 0 {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 || count <= 0 {
		return
	}
	if count >= len(eligible) {
		for _, i := range eligible {
			b.Pix[i] = c
		}
		return
	}
	chosen := make(map[int]bool, count)
	x := uint32(seed) & 0x7FFFFFFF
	for len(chosen) < count {
		x = lcgNext(x)
		i := eligible[int(x)%len(eligible)]
		if chosen[i] {
			continue
		}
		chosen[i] = true
		b.Pix[i] = c
	}
}

// ColorReplace substitutes every from-index pixel with to. A non-nil mask
// restricts the substitution to positions the mask occupies.
func (b *Buffer) ColorReplace(from, to uint8, mask *Buffer) {
	for i, v := range b.Pix {
		if mask != nil && mask.Pix[i] == 0 {
			continue
		}
		if v == from {
			b.Pix[i] = to
		}
	}
}

// Mirror reflects the buffer in place about the vertical axis ("x") or the
// horizontal axis ("y"). Applying the same axis twice restores the buffer.
func (b *Buffer) Mirror(axis string) {
	if axis == "y" {
		for x := 0; x < b.W; x++ {
			for y := 0; y < b.H/2; y++ {
				i, j := y*b.W+x, (b.H-1-y)*b.W+x
				b.Pix[i], b.Pix[j] = b.Pix[j], b.Pix[i]
			}
		}
		return
	}
	for y := 0; y < b.H; y++ {
		row := y * b.W
		for x := 0; x < b.W/2; x++ {
			i, j := row+x, row+(b.W-1-x)
			b.Pix[i], b.Pix[j] = b.Pix[j], b.Pix[i]
		}
	}
}

// Translate shifts all pixels by (dx,dy). Pixels shifted off-canvas are
// discarded; vacated positions become transparent.
func (b *Buffer) Translate(dx, dy int) {
	old := b.Clone()
	clear(b.Pix)
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			sx, sy := x-dx, y-dy
			if old.In(sx, sy) {
				b.Pix[y*b.W+x] = old.Pix[sy*old.W+sx]
			}
		}
	}
}

// Rotate rotates the buffer by angle degrees about (cx,cy) with inverse
// nearest-neighbor sampling. Out-of-bounds source samples are transparent.
func (b *Buffer) Rotate(angle, cx, cy float64) {
	rad := angle * math.Pi / 180
	cosA, sinA := math.Cos(rad), math.Sin(rad)
	old := b.Clone()
	clear(b.Pix)
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			tx, ty := float64(x)-cx, float64(y)-cy
			sx := int(math.Round(tx*cosA + ty*sinA + cx))
			sy := int(math.Round(-tx*sinA + ty*cosA + cy))
			if old.In(sx, sy) {
				b.Pix[y*b.W+x] = old.Pix[sy*old.W+sx]
			}
		}
	}
}

// InsetFill fills the rectangle shrunk by inset on every edge, writing only
// where the mask (the merged canvas) is already occupied.
func (b *Buffer) InsetFill(mask *Buffer, c uint8, x, y, w, h, inset int) {
	x0, y0 := x+inset, y+inset
	x1, y1 := x+w-inset-1, y+h-inset-1
	for yy := y0; yy <= y1; yy++ {
		if yy < 0 || yy >= b.H {
			continue
		}
		row := yy * b.W
		for xx := x0; xx <= x1; xx++ {
			if xx >= 0 && xx < b.W && mask.Pix[row+xx] != 0 {
				b.Pix[row+xx] = c
			}
		}
	}
}
