package main

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// Palette is the document's fixed, ordered color list. Index 0 is always
// fully transparent; buffers store palette indices, never colors.
type Palette struct {
	Colors []color.NRGBA
}

func (p *Palette) Len() int { return len(p.Colors) }

// ParsePalette converts hex color strings (#RRGGBB or #RRGGBBAA) into a
// palette. Entry 0 is forced transparent regardless of its alpha digits.
func ParsePalette(entries []string) (*Palette, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("palette is empty")
	}
	if len(entries) > 256 {
		return nil, fmt.Errorf("palette has %d colors (max 256)", len(entries))
	}
	p := &Palette{Colors: make([]color.NRGBA, len(entries))}
	for i, e := range entries {
		c, err := parseHexColor(e)
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		p.Colors[i] = c
	}
	p.Colors[0] = color.NRGBA{}
	return p, nil
}

func parseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q (expected 6 or 8 hex digits)", s)
	}
	var b [4]byte
	b[3] = 0xFF
	for i := 0; i < len(hex)/2; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		b[i] = uint8(v)
	}
	return color.NRGBA{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}

// Buffer is a dense grid of palette indices for one canvas. Index 0 is
// transparent. Buffers are never shared between frames.
type Buffer struct {
	W, H int
	Pix  []uint8
}

func NewBuffer(w, h int) *Buffer {
	return &Buffer{W: w, H: h, Pix: make([]uint8, w*h)}
}

func (b *Buffer) In(x, y int) bool {
	return x >= 0 && x < b.W && y >= 0 && y < b.H
}

// Set writes a palette index, silently clipping out-of-bounds coordinates.
func (b *Buffer) Set(x, y int, c uint8) {
	if b.In(x, y) {
		b.Pix[y*b.W+x] = c
	}
}

// Get returns the index at (x,y), or 0 (transparent) out of bounds.
func (b *Buffer) Get(x, y int) uint8 {
	if b.In(x, y) {
		return b.Pix[y*b.W+x]
	}
	return 0
}

func (b *Buffer) Clone() *Buffer {
	out := &Buffer{W: b.W, H: b.H, Pix: make([]uint8, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// Fill sets every pixel, doubling the copied span each pass.
func (b *Buffer) Fill(c uint8) {
	if len(b.Pix) == 0 {
		return
	}
	b.Pix[0] = c
	for filled := 1; filled < len(b.Pix); filled *= 2 {
		copy(b.Pix[filled:], b.Pix[:filled])
	}
}

// CompositeOver writes src's non-transparent pixels over b.
func (b *Buffer) CompositeOver(src *Buffer) {
	for i, v := range src.Pix {
		if v != 0 {
			b.Pix[i] = v
		}
	}
}

// ToNRGBA expands the index grid into an RGBA image through the palette.
func (b *Buffer) ToNRGBA(p *Palette) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.W, b.H))
	for i, v := range b.Pix {
		c := p.Colors[v]
		o := i * 4
		img.Pix[o] = c.R
		img.Pix[o+1] = c.G
		img.Pix[o+2] = c.B
		img.Pix[o+3] = c.A
	}
	return img
}

// ToPaletted produces an indexed image sharing the document palette,
// suitable for GIF frames without quantization.
func (b *Buffer) ToPaletted(p *Palette) *image.Paletted {
	pal := make(color.Palette, p.Len())
	for i, c := range p.Colors {
		pal[i] = c
	}
	img := image.NewPaletted(image.Rect(0, 0, b.W, b.H), pal)
	copy(img.Pix, b.Pix)
	return img
}
