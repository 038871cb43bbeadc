package main

import (
	"bytes"
	"image"
	"testing"
)

func bufPixels(t *testing.T, b *Buffer, c uint8) []image.Point {
	t.Helper()
	var pts []image.Point
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.Pix[y*b.W+x] == c {
				pts = append(pts, image.Point{X: x, Y: y})
			}
		}
	}
	return pts
}

func countPixels(b *Buffer, c uint8) int {
	n := 0
	for _, v := range b.Pix {
		if v == c {
			n++
		}
	}
	return n
}

func TestLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           []image.Point
	}{
		{
			name: "horizontal",
			x0:   1, y0: 2, x1: 4, y1: 2,
			want: []image.Point{{1, 2}, {2, 2}, {3, 2}, {4, 2}},
		},
		{
			name: "diagonal",
			x0:   0, y0: 0, x1: 3, y1: 3,
			want: []image.Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}},
		},
		{
			name: "reversed endpoints inclusive",
			x0:   3, y0: 0, x1: 0, y1: 0,
			want: []image.Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		},
		{
			name: "zero length is a single pixel",
			x0:   5, y0: 5, x1: 5, y1: 5,
			want: []image.Point{{5, 5}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(8, 8)
			b.Line(1, tt.x0, tt.y0, tt.x1, tt.y1)
			got := bufPixels(t, b, 1)
			if len(got) != len(tt.want) {
				t.Fatalf("painted %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("painted %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestLineClipsOffCanvas(t *testing.T) {
	b := NewBuffer(4, 4)
	b.Line(1, -2, 0, 6, 0)
	if n := countPixels(b, 1); n != 4 {
		t.Fatalf("got %d pixels inside canvas, want 4", n)
	}
}

func TestRectFill(t *testing.T) {
	b := NewBuffer(8, 8)
	b.RectFill(2, 2, 2, 3, 2)
	if n := countPixels(b, 2); n != 6 {
		t.Fatalf("filled %d pixels, want 6", n)
	}
	if b.Get(2, 2) != 2 || b.Get(4, 3) != 2 {
		t.Fatal("fill missing corner pixels")
	}
	if b.Get(5, 2) != 0 || b.Get(2, 4) != 0 {
		t.Fatal("fill overran its bounds")
	}
}

func TestRectFillClipped(t *testing.T) {
	b := NewBuffer(4, 4)
	b.RectFill(3, -2, -2, 10, 10)
	if n := countPixels(b, 3); n != 16 {
		t.Fatalf("clipped fill painted %d pixels, want 16", n)
	}
}

func TestRectStroke(t *testing.T) {
	b := NewBuffer(8, 8)
	b.RectStroke(1, 1, 1, 4, 4)
	// 4x4 outline = 16 - 4 interior
	if n := countPixels(b, 1); n != 12 {
		t.Fatalf("stroke painted %d pixels, want 12", n)
	}
	if b.Get(2, 2) != 0 {
		t.Fatal("stroke painted the interior")
	}
}

func TestEllipseFill(t *testing.T) {
	t.Run("symmetric", func(t *testing.T) {
		b := NewBuffer(16, 16)
		b.EllipseFill(1, 8, 8, 5, 3)
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				mx, my := 16-x, 16-y // reflection through (8,8)
				if mx < 16 && my < 16 && b.Get(x, y) != b.Get(mx, my) {
					t.Fatalf("asymmetric at (%d,%d) vs (%d,%d)", x, y, mx, my)
				}
			}
		}
	})
	t.Run("degenerate point", func(t *testing.T) {
		b := NewBuffer(8, 8)
		b.EllipseFill(1, 3, 3, 0, 0)
		if got := bufPixels(t, b, 1); len(got) != 1 || got[0] != (image.Point{3, 3}) {
			t.Fatalf("zero-radius ellipse painted %v, want just (3,3)", got)
		}
	})
	t.Run("single zero radius is a no-op", func(t *testing.T) {
		b := NewBuffer(8, 8)
		b.EllipseFill(1, 3, 3, 2, 0)
		if n := countPixels(b, 1); n != 0 {
			t.Fatalf("painted %d pixels, want 0", n)
		}
	})
}

func TestCircleFillMatchesEqualRadiiEllipse(t *testing.T) {
	a := NewBuffer(16, 16)
	b := NewBuffer(16, 16)
	a.CircleFill(1, 8, 8, 4)
	b.EllipseFill(1, 8, 8, 4, 4)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatal("circle_fill differs from equal-radii ellipse_fill")
	}
}

func TestEllipseStrokeTouchesExtremes(t *testing.T) {
	b := NewBuffer(16, 16)
	b.EllipseStroke(1, 8, 8, 5, 3)
	for _, p := range []image.Point{{3, 8}, {13, 8}, {8, 5}, {8, 11}} {
		if b.Get(p.X, p.Y) != 1 {
			t.Fatalf("stroke missing extreme point %v", p)
		}
	}
}

func TestPolyFill(t *testing.T) {
	t.Run("square", func(t *testing.T) {
		b := NewBuffer(10, 10)
		b.PolyFill(1, []image.Point{{2, 2}, {7, 2}, {7, 7}, {2, 7}})
		if b.Get(4, 4) != 1 {
			t.Fatal("interior not filled")
		}
		if b.Get(1, 4) != 0 || b.Get(8, 4) != 0 {
			t.Fatal("fill leaked outside the polygon")
		}
	})
	t.Run("empty vertex list is a no-op", func(t *testing.T) {
		b := NewBuffer(10, 10)
		b.PolyFill(1, nil)
		if n := countPixels(b, 1); n != 0 {
			t.Fatalf("painted %d pixels, want 0", n)
		}
	})
	t.Run("self-intersecting uses even-odd", func(t *testing.T) {
		// Bowtie: the crossing region at the center is covered twice and
		// must stay empty under the even-odd rule.
		b := NewBuffer(20, 20)
		b.PolyFill(1, []image.Point{{2, 2}, {18, 2}, {2, 18}, {18, 18}})
		if b.Get(5, 10) != 0 || b.Get(15, 10) != 0 {
			t.Fatal("even-odd rule violated: bowtie waist should be empty")
		}
		if b.Get(10, 5) != 1 || b.Get(10, 15) != 1 {
			t.Fatal("bowtie wings should be filled")
		}
	})
}

func TestFloodFill(t *testing.T) {
	t.Run("fills enclosed region", func(t *testing.T) {
		b := NewBuffer(8, 8)
		b.RectStroke(1, 1, 1, 6, 6)
		b.FloodFill(2, 3, 3)
		if b.Get(3, 3) != 2 || b.Get(5, 5) != 2 {
			t.Fatal("interior not flooded")
		}
		if b.Get(0, 0) != 0 {
			t.Fatal("flood escaped the border")
		}
		if b.Get(1, 1) != 1 {
			t.Fatal("flood overwrote the border")
		}
	})
	t.Run("seed equal to fill color is a no-op", func(t *testing.T) {
		b := NewBuffer(8, 8)
		b.RectFill(2, 0, 0, 8, 8)
		before := b.Clone()
		b.FloodFill(2, 3, 3)
		if !bytes.Equal(b.Pix, before.Pix) {
			t.Fatal("buffer changed")
		}
	})
	t.Run("out-of-bounds seed is a no-op", func(t *testing.T) {
		b := NewBuffer(8, 8)
		b.FloodFill(2, -1, 0)
		if n := countPixels(b, 2); n != 0 {
			t.Fatalf("painted %d pixels, want 0", n)
		}
	})
}

func TestBezier(t *testing.T) {
	b := NewBuffer(32, 32)
	b.Bezier(1, 2, 30, 16, 0, 30, 30)
	if b.Get(2, 30) != 1 || b.Get(30, 30) != 1 {
		t.Fatal("bezier endpoints not painted")
	}

	// Identical input must produce identical output on every run.
	b2 := NewBuffer(32, 32)
	b2.Bezier(1, 2, 30, 16, 0, 30, 30)
	if !bytes.Equal(b.Pix, b2.Pix) {
		t.Fatal("bezier output not deterministic")
	}
}

func TestGradientLinear(t *testing.T) {
	b := NewBuffer(10, 1)
	b.GradientLinear([]uint8{1, 2, 3}, 0, 0, 9, 0)
	if b.Get(0, 0) != 1 {
		t.Fatalf("left stop = %d, want 1", b.Get(0, 0))
	}
	if b.Get(9, 0) != 3 {
		t.Fatalf("right stop = %d, want 3", b.Get(9, 0))
	}
	// Monotonic banding across the axis.
	prev := uint8(1)
	for x := 0; x < 10; x++ {
		v := b.Get(x, 0)
		if v < prev {
			t.Fatalf("band decreased at x=%d", x)
		}
		prev = v
	}
}

func TestGradientLinearDegenerate(t *testing.T) {
	b := NewBuffer(4, 4)
	b.GradientLinear([]uint8{1, 2}, 2, 2, 2, 2)
	if n := countPixels(b, 1) + countPixels(b, 2); n != 0 {
		t.Fatal("degenerate axis should be a no-op")
	}
	b.GradientLinear(nil, 0, 0, 3, 3)
	if n := countPixels(b, 1); n != 0 {
		t.Fatal("empty stop list should be a no-op")
	}
}

func TestGradientRadialStaysInDisc(t *testing.T) {
	b := NewBuffer(16, 16)
	b.GradientRadial([]uint8{1, 2}, 8, 8, 4)
	if b.Get(8, 8) != 1 {
		t.Fatalf("center = %d, want first stop", b.Get(8, 8))
	}
	if b.Get(8, 3) != 0 || b.Get(13, 13) != 0 {
		t.Fatal("gradient painted outside its radius")
	}
}

func TestDitherRect(t *testing.T) {
	t.Run("checker", func(t *testing.T) {
		b := NewBuffer(8, 8)
		b.DitherRect(1, 0, 0, 4, 4, "checker")
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				want := uint8(0)
				if (x+y)%2 == 0 {
					want = 1
				}
				if got := b.Get(x, y); got != want {
					t.Fatalf("(%d,%d) = %d, want %d", x, y, got, want)
				}
			}
		}
	})
	t.Run("dots", func(t *testing.T) {
		b := NewBuffer(8, 8)
		b.DitherRect(1, 0, 0, 4, 4, "dots")
		if n := countPixels(b, 1); n != 4 {
			t.Fatalf("dots painted %d pixels in 4x4, want 4", n)
		}
	})
}

func TestThickLineCoversPlainLine(t *testing.T) {
	thin := NewBuffer(16, 16)
	thin.Line(1, 2, 2, 13, 13)
	thick := NewBuffer(16, 16)
	thick.ThickLine(1, 2, 2, 13, 13, 4)
	for _, p := range bufPixels(t, thin, 1) {
		if thick.Get(p.X, p.Y) != 1 {
			t.Fatalf("thick line misses thin-line pixel %v", p)
		}
	}
	if countPixels(thick, 1) <= countPixels(thin, 1) {
		t.Fatal("thick line no wider than thin line")
	}
}
