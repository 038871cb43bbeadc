package main

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
)

var ErrUnknownOp = errors.New("unknown operation")

// Op is one resolved drawing, layer, or transform instruction. The set of
// implementations is closed: the interpreter dispatches over it exhaustively
// and the decoder below is the only constructor.
type Op interface {
	opName() string
}

type ClearOp struct{ Color uint8 }
type PixelOp struct {
	Color uint8
	X, Y  int
}
type LineOp struct {
	Color          uint8
	X0, Y0, X1, Y1 int
}
type ThickLineOp struct {
	Color          uint8
	X0, Y0, X1, Y1 int
	Thickness      int
}
type CapsuleFillOp struct {
	Color          uint8
	X0, Y0, X1, Y1 int
	R              int
}
type RectStrokeOp struct {
	Color      uint8
	X, Y, W, H int
}
type RectFillOp struct {
	Color      uint8
	X, Y, W, H int
}
type EllipseFillOp struct {
	Color          uint8
	CX, CY, RX, RY int
}
type EllipseStrokeOp struct {
	Color          uint8
	CX, CY, RX, RY int
}
type CircleFillOp struct {
	Color     uint8
	CX, CY, R int
}
type PolyFillOp struct {
	Color  uint8
	Points []image.Point
}
type BezierOp struct {
	Color                  uint8
	X0, Y0, CX, CY, X1, Y1 int
}
type FloodFillOp struct {
	Color uint8
	X, Y  int
}
type InsetFillOp struct {
	Color      uint8
	X, Y, W, H int
	Inset      int
}
type DitherRectOp struct {
	Color      uint8
	X, Y, W, H int
	Pattern    string
}
type GradientLinearOp struct {
	Indices        []uint8
	X0, Y0, X1, Y1 int
}
type GradientRadialOp struct {
	Indices   []uint8
	CX, CY, R int
}
type LayerBeginOp struct{ Name string }
type LayerEndOp struct{}
type LayerMergeOp struct{ Names []string }
type EnsureLayerOp struct{ Name string }
type CopyLayerOp struct{ Src, Dst string }
type MaskLayerOp struct{ Name, MaskName string }
type OutlineOp struct {
	Color     uint8
	Thickness int
}
type ShadeBandOp struct {
	Color     uint8
	Layer     string
	Side      string
	Thickness int
}
type NoisePointsOp struct {
	Color   uint8
	Layer   string
	Count   int
	Seed    int
	HasSeed bool
}
type ColorReplaceOp struct {
	From, To  uint8
	MaskLayer string
}
type MirrorOp struct{ Axis string }
type TranslateOp struct{ DX, DY int }
type RotateOp struct {
	Angle     float64
	CX, CY    float64
	HasCenter bool
}

func (ClearOp) opName() string          { return "clear" }
func (PixelOp) opName() string          { return "pixel" }
func (LineOp) opName() string           { return "line" }
func (ThickLineOp) opName() string      { return "thick_line" }
func (CapsuleFillOp) opName() string    { return "capsule_fill" }
func (RectStrokeOp) opName() string     { return "rect_stroke" }
func (RectFillOp) opName() string       { return "rect_fill" }
func (EllipseFillOp) opName() string    { return "ellipse_fill" }
func (EllipseStrokeOp) opName() string  { return "ellipse_stroke" }
func (CircleFillOp) opName() string     { return "circle_fill" }
func (PolyFillOp) opName() string       { return "poly_fill" }
func (BezierOp) opName() string         { return "bezier" }
func (FloodFillOp) opName() string      { return "fill" }
func (InsetFillOp) opName() string      { return "inset_fill" }
func (DitherRectOp) opName() string     { return "dither_rect" }
func (GradientLinearOp) opName() string { return "gradient_linear" }
func (GradientRadialOp) opName() string { return "gradient_radial" }
func (LayerBeginOp) opName() string     { return "layer_begin" }
func (LayerEndOp) opName() string       { return "layer_end" }
func (LayerMergeOp) opName() string     { return "layer_merge" }
func (EnsureLayerOp) opName() string    { return "ensure_layer" }
func (CopyLayerOp) opName() string      { return "copy_layer" }
func (MaskLayerOp) opName() string      { return "mask_layer" }
func (OutlineOp) opName() string        { return "outline" }
func (ShadeBandOp) opName() string      { return "shade_band" }
func (NoisePointsOp) opName() string    { return "noise_points" }
func (ColorReplaceOp) opName() string   { return "color_replace" }
func (MirrorOp) opName() string         { return "mirror" }
func (TranslateOp) opName() string      { return "translate" }
func (RotateOp) opName() string         { return "rotate" }

// opArity lists accepted argument counts per operation name. poly_fill takes
// a color plus any even number of coordinates; its upper bound is nominal.
var opArity = map[string][2]int{
	"clear":           {1, 1},
	"pixel":           {3, 3},
	"line":            {5, 5},
	"thick_line":      {6, 6},
	"capsule_fill":    {6, 6},
	"rect":            {5, 5},
	"rect_stroke":     {5, 5},
	"rect_fill":       {5, 5},
	"ellipse_fill":    {5, 5},
	"ellipse_stroke":  {5, 5},
	"circle_fill":     {4, 4},
	"poly_fill":       {3, 201},
	"bezier":          {7, 7},
	"fill":            {3, 3},
	"inset_fill":      {6, 6},
	"dither_rect":     {5, 6},
	"gradient_linear": {5, 5},
	"gradient_radial": {4, 4},
	"layer_begin":     {1, 1},
	"layer_end":       {0, 0},
	"layer_merge":     {0, 64},
	"ensure_layer":    {1, 1},
	"copy_layer":      {2, 2},
	"mask_layer":      {2, 2},
	"outline":         {1, 2},
	"outline_layer":   {1, 2},
	"shade_band":      {3, 4},
	"noise_points":    {3, 4},
	"color_replace":   {2, 3},
	"mirror":          {0, 1},
	"translate":       {2, 2},
	"rotate":          {1, 3},
}

type opArgs struct {
	name string
	args []any
}

func (a opArgs) Int(i int) (int, error) {
	switch v := a.args[i].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s: argument %d: expected integer, got %v", a.name, i+1, v)
		}
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("%s: argument %d: expected integer, got %T", a.name, i+1, v)
	}
}

func (a opArgs) Float(i int) (float64, error) {
	switch v := a.args[i].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%s: argument %d: expected number, got %T", a.name, i+1, v)
	}
}

func (a opArgs) Str(i int) (string, error) {
	if s, ok := a.args[i].(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("%s: argument %d: expected string, got %T", a.name, i+1, a.args[i])
}

func (a opArgs) Color(i int) (uint8, error) {
	n, err := a.Int(i)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 255 {
		return 0, fmt.Errorf("%s: argument %d: palette index %d out of range", a.name, i+1, n)
	}
	return uint8(n), nil
}

// Indices accepts a gradient stop list as a comma-separated string, a JSON
// array, or a single index.
func (a opArgs) Indices(i int) ([]uint8, error) {
	switch v := a.args[i].(type) {
	case string:
		var out []uint8
		for _, part := range strings.Split(v, ",") {
			n, err := parseIndex(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("%s: argument %d: %w", a.name, i+1, err)
			}
			out = append(out, n)
		}
		return out, nil
	case []any:
		sub := opArgs{name: a.name, args: v}
		out := make([]uint8, len(v))
		for j := range v {
			n, err := sub.Color(j)
			if err != nil {
				return nil, err
			}
			out[j] = n
		}
		return out, nil
	default:
		c, err := a.Color(i)
		if err != nil {
			return nil, err
		}
		return []uint8{c}, nil
	}
}

func parseIndex(s string) (uint8, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad palette index %q", s)
	}
	if n < 0 || n > 255 {
		return 0, fmt.Errorf("palette index %d out of range", n)
	}
	return uint8(n), nil
}

// DecodeOp turns a positional operation array ([name, arg, arg, ...]) into
// its typed form. Argument order matches the document format exactly.
func DecodeOp(raw []any) (Op, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty operation")
	}
	name, ok := raw[0].(string)
	if !ok {
		return nil, fmt.Errorf("operation name must be a string, got %T", raw[0])
	}
	arity, known := opArity[name]
	if !known {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownOp)
	}
	a := opArgs{name: name, args: raw[1:]}
	if n := len(a.args); n < arity[0] || n > arity[1] {
		return nil, fmt.Errorf("%s: expected %d-%d arguments, got %d", name, arity[0], arity[1], n)
	}
	return decodeArgs(name, a)
}

func decodeArgs(name string, a opArgs) (Op, error) {
	ints := func(from, n int) ([]int, error) {
		out := make([]int, n)
		for i := 0; i < n; i++ {
			v, err := a.Int(from + i)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	switch name {
	case "clear":
		c, err := a.Color(0)
		if err != nil {
			return nil, err
		}
		return ClearOp{Color: c}, nil

	case "pixel", "fill":
		c, err := a.Color(0)
		if err != nil {
			return nil, err
		}
		v, err := ints(1, 2)
		if err != nil {
			return nil, err
		}
		if name == "fill" {
			return FloodFillOp{Color: c, X: v[0], Y: v[1]}, nil
		}
		return PixelOp{Color: c, X: v[0], Y: v[1]}, nil

	case "line":
		c, err := a.Color(0)
		if err != nil {
			return nil, err
		}
		v, err := ints(1, 4)
		if err != nil {
			return nil, err
		}
		return LineOp{Color: c, X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}, nil

	case "thick_line", "capsule_fill":
		c, err := a.Color(0)
		if err != nil {
			return nil, err
		}
		v, err := ints(1, 5)
		if err != nil {
			return nil, err
		}
		if name == "capsule_fill" {
			return CapsuleFillOp{Color: c, X0: v[0], Y0: v[1], X1: v[2], Y1: v[3], R: v[4]}, nil
		}
		return ThickLineOp{Color: c, X0: v[0], Y0: v[1], X1: v[2], Y1: v[3], Thickness: v[4]}, nil

	case "rect", "rect_stroke", "rect_fill":
		c, err := a.Color(0)
		if err != nil {
			return nil, err
		}
		v, err := ints(1, 4)
		if err != nil {
			return nil, err
		}
		if name == "rect_fill" {
			return RectFillOp{Color: c, X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
		}
		return RectStrokeOp{Color: c, X: v[0], Y: v[1], W: v[2], H: v[3]}, nil

	case "ellipse_fill", "ellipse_stroke":
		c, err := a.Color(0)
		if err != nil {
			return nil, err
		}
		v, err := ints(1, 4)
		if err != nil {
			return nil, err
		}
		if name == "ellipse_stroke" {
			return EllipseStrokeOp{Color: c, CX: v[0], CY: v[1], RX: v[2], RY: v[3]}, nil
		}
		return EllipseFillOp{Color: c, CX: v[0], CY: v[1], RX: v[2], RY: v[3]}, nil

	case "circle_fill":
		c, err := a.Color(0)
		if err != nil {
			return nil, err
		}
		v, err := ints(1, 3)
		if err != nil {
			return nil, err
		}
		return CircleFillOp{Color: c, CX: v[0], CY: v[1], R: v[2]}, nil

	case "poly_fill":
		c, err := a.Color(0)
		if err != nil {
			return nil, err
		}
		if (len(a.args)-1)%2 != 0 {
			return nil, fmt.Errorf("poly_fill: coordinates must come in x,y pairs")
		}
		v, err := ints(1, len(a.args)-1)
		if err != nil {
			return nil, err
		}
		pts := make([]image.Point, len(v)/2)
		for i := range pts {
			pts[i] = image.Point{X: v[i*2], Y: v[i*2+1]}
		}
		return PolyFillOp{Color: c, Points: pts}, nil

	case "bezier":
		c, err := a.Color(0)
		if err != nil {
			return nil, err
		}
		v, err := ints(1, 6)
		if err != nil {
			return nil, err
		}
		return BezierOp{Color: c, X0: v[0], Y0: v[1], CX: v[2], CY: v[3], X1: v[4], Y1: v[5]}, nil

	case "inset_fill":
		c, err := a.Color(0)
		if err != nil {
			return nil, err
		}
		v, err := ints(1, 5)
		if err != nil {
			return nil, err
		}
		return InsetFillOp{Color: c, X: v[0], Y: v[1], W: v[2], H: v[3], Inset: v[4]}, nil

	case "dither_rect":
		c, err := a.Color(0)
		if err != nil {
			return nil, err
		}
		v, err := ints(1, 4)
		if err != nil {
			return nil, err
		}
		pattern := "checker"
		if len(a.args) > 5 {
			if pattern, err = a.Str(5); err != nil {
				return nil, err
			}
		}
		return DitherRectOp{Color: c, X: v[0], Y: v[1], W: v[2], H: v[3], Pattern: pattern}, nil

	case "gradient_linear":
		idx, err := a.Indices(0)
		if err != nil {
			return nil, err
		}
		v, err := ints(1, 4)
		if err != nil {
			return nil, err
		}
		return GradientLinearOp{Indices: idx, X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}, nil

	case "gradient_radial":
		idx, err := a.Indices(0)
		if err != nil {
			return nil, err
		}
		v, err := ints(1, 3)
		if err != nil {
			return nil, err
		}
		return GradientRadialOp{Indices: idx, CX: v[0], CY: v[1], R: v[2]}, nil

	case "layer_begin", "ensure_layer":
		n, err := a.Str(0)
		if err != nil {
			return nil, err
		}
		if name == "ensure_layer" {
			return EnsureLayerOp{Name: n}, nil
		}
		return LayerBeginOp{Name: n}, nil

	case "layer_end":
		return LayerEndOp{}, nil

	case "layer_merge":
		names := make([]string, len(a.args))
		for i := range a.args {
			n, err := a.Str(i)
			if err != nil {
				return nil, err
			}
			names[i] = n
		}
		return LayerMergeOp{Names: names}, nil

	case "copy_layer", "mask_layer":
		s1, err := a.Str(0)
		if err != nil {
			return nil, err
		}
		s2, err := a.Str(1)
		if err != nil {
			return nil, err
		}
		if name == "mask_layer" {
			return MaskLayerOp{Name: s1, MaskName: s2}, nil
		}
		return CopyLayerOp{Src: s1, Dst: s2}, nil

	// outline_layer is a legacy alias; both forms outline the buffer
	// drawing currently targets.
	case "outline", "outline_layer":
		c, err := a.Color(0)
		if err != nil {
			return nil, err
		}
		t := 1
		if len(a.args) > 1 {
			if t, err = a.Int(1); err != nil {
				return nil, err
			}
		}
		return OutlineOp{Color: c, Thickness: t}, nil

	case "shade_band":
		c, err := a.Color(0)
		if err != nil {
			return nil, err
		}
		layer, err := a.Str(1)
		if err != nil {
			return nil, err
		}
		side, err := a.Str(2)
		if err != nil {
			return nil, err
		}
		t := 1
		if len(a.args) > 3 {
			if t, err = a.Int(3); err != nil {
				return nil, err
			}
		}
		return ShadeBandOp{Color: c, Layer: layer, Side: side, Thickness: t}, nil

	case "noise_points":
		c, err := a.Color(0)
		if err != nil {
			return nil, err
		}
		layer, err := a.Str(1)
		if err != nil {
			return nil, err
		}
		count, err := a.Int(2)
		if err != nil {
			return nil, err
		}
		op := NoisePointsOp{Color: c, Layer: layer, Count: count, Seed: noiseSeedDefault}
		if len(a.args) > 3 {
			if op.Seed, err = a.Int(3); err != nil {
				return nil, err
			}
			op.HasSeed = true
		}
		return op, nil

	case "color_replace":
		from, err := a.Color(0)
		if err != nil {
			return nil, err
		}
		to, err := a.Color(1)
		if err != nil {
			return nil, err
		}
		op := ColorReplaceOp{From: from, To: to}
		if len(a.args) > 2 {
			if op.MaskLayer, err = a.Str(2); err != nil {
				return nil, err
			}
		}
		return op, nil

	case "mirror":
		axis := "x"
		if len(a.args) > 0 {
			var err error
			if axis, err = a.Str(0); err != nil {
				return nil, err
			}
		}
		return MirrorOp{Axis: axis}, nil

	case "translate":
		v, err := ints(0, 2)
		if err != nil {
			return nil, err
		}
		return TranslateOp{DX: v[0], DY: v[1]}, nil

	case "rotate":
		angle, err := a.Float(0)
		if err != nil {
			return nil, err
		}
		op := RotateOp{Angle: angle}
		if len(a.args) > 2 {
			if op.CX, err = a.Float(1); err != nil {
				return nil, err
			}
			if op.CY, err = a.Float(2); err != nil {
				return nil, err
			}
			op.HasCenter = true
		} else if len(a.args) > 1 {
			return nil, fmt.Errorf("rotate: center needs both cx and cy")
		}
		return op, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownOp)
}
