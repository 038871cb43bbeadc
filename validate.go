package main

import (
	"fmt"
	"strings"
)

// ValidationError pinpoints one problem in a sprite document.
type ValidationError struct {
	Path  string
	Frame int // -1 when not frame-specific
	Op    int // -1 when not op-specific
	Msg   string
}

func (e ValidationError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("file %s", e.Path))
	}
	if e.Frame >= 0 {
		parts = append(parts, fmt.Sprintf("frame %d", e.Frame))
	}
	if e.Op >= 0 {
		parts = append(parts, fmt.Sprintf("op %d", e.Op))
	}
	if len(parts) == 0 {
		return e.Msg
	}
	return strings.Join(parts, ", ") + ": " + e.Msg
}

type validator struct {
	path   string
	strict bool
	errs   []ValidationError
}

func (v *validator) addf(frame, op int, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Path: v.path, Frame: frame, Op: op, Msg: fmt.Sprintf(format, args...),
	})
}

// ValidateDocument checks a sprite document against the operation catalogue:
// structure, arities and argument types, palette index bounds, layer
// references, inheritance shape, and (in strict mode) explicit noise seeds.
// An empty result means the document is renderable.
func ValidateDocument(doc *Document, path string, strict bool) []ValidationError {
	v := &validator{path: path, strict: strict}

	if doc.Format != docFormat {
		v.addf(-1, -1, "missing or invalid format field (expected %q, got %q)", docFormat, doc.Format)
	}
	if doc.Canvas.W <= 0 || doc.Canvas.H <= 0 {
		v.addf(-1, -1, "canvas dimensions must be positive (got %dx%d)", doc.Canvas.W, doc.Canvas.H)
	}

	v.checkPalette(doc.Palette)

	if len(doc.Frames) == 0 {
		v.addf(-1, -1, "document has no frames")
	}
	for i, f := range doc.Frames {
		v.checkFrame(doc, f, i)
	}

	for name, anim := range doc.Animations {
		for _, fi := range anim.Frames {
			if fi < 0 || fi >= len(doc.Frames) {
				v.addf(-1, -1, "animation %q references invalid frame index %d", name, fi)
			}
		}
	}

	return v.errs
}

func (v *validator) checkPalette(palette []string) {
	if len(palette) == 0 {
		v.addf(-1, -1, "palette is empty")
		return
	}
	if len(palette) > 256 {
		v.addf(-1, -1, "palette has %d colors (max 256)", len(palette))
	}
	for i, entry := range palette {
		if _, err := parseHexColor(entry); err != nil {
			v.addf(-1, -1, "palette entry %d: %v", i, err)
		}
	}
	if c, err := parseHexColor(palette[0]); err == nil && c.A != 0 {
		v.addf(-1, -1, "palette entry 0 must be fully transparent (use #00000000)")
	}
}

func (v *validator) checkFrame(doc *Document, f Frame, idx int) {
	if f.Base != nil {
		if *f.Base < 0 || *f.Base >= idx {
			v.addf(idx, -1, "base must reference an earlier frame (got %d)", *f.Base)
		}
		if len(f.Overrides) == 0 && len(f.AppendOps) == 0 {
			v.addf(idx, -1, "inherited frame must have overrides or append_ops")
		}
		for _, ov := range f.Overrides {
			if op, err := DecodeOp(ov.Op); err != nil {
				v.addf(idx, ov.OpIndex, "override: %v", err)
			} else {
				v.checkOpArgs(doc, op, idx, ov.OpIndex, nil)
			}
		}
		for j, raw := range f.AppendOps {
			if op, err := DecodeOp(raw); err != nil {
				v.addf(idx, j, "append op: %v", err)
			} else {
				v.checkOpArgs(doc, op, idx, j, nil)
			}
		}
		return
	}

	if f.Ops == nil {
		v.addf(idx, -1, "frame must have an ops array")
		return
	}
	// Layer references are only tracked for literal frames; inherited
	// frames pull their layer set from the base list.
	defined := map[string]bool{"base": true}
	for j, raw := range f.Ops {
		op, err := DecodeOp(raw)
		if err != nil {
			v.addf(idx, j, "%v", err)
			continue
		}
		v.checkOpArgs(doc, op, idx, j, defined)
		switch o := op.(type) {
		case LayerBeginOp:
			defined[o.Name] = true
		case EnsureLayerOp:
			defined[o.Name] = true
		case CopyLayerOp:
			defined[o.Dst] = true
		}
	}
}

// checkOpArgs enforces palette bounds, layer references (when tracking is
// possible), and the strict-mode seed rule on one decoded operation.
func (v *validator) checkOpArgs(doc *Document, op Op, frame, idx int, defined map[string]bool) {
	n := len(doc.Palette)
	color := func(c uint8) {
		if int(c) >= n {
			v.addf(frame, idx, "%s: palette index %d out of bounds (palette has %d colors)", op.opName(), c, n)
		}
	}
	colors := func(cs []uint8) {
		for _, c := range cs {
			color(c)
		}
	}
	layer := func(name string) {
		if defined != nil && !defined[name] {
			v.addf(frame, idx, "%s: references undefined layer %q", op.opName(), name)
		}
	}

	switch o := op.(type) {
	case ClearOp:
		color(o.Color)
	case PixelOp:
		color(o.Color)
	case LineOp:
		color(o.Color)
	case ThickLineOp:
		color(o.Color)
	case CapsuleFillOp:
		color(o.Color)
	case RectStrokeOp:
		color(o.Color)
	case RectFillOp:
		color(o.Color)
	case EllipseFillOp:
		color(o.Color)
	case EllipseStrokeOp:
		color(o.Color)
	case CircleFillOp:
		color(o.Color)
	case PolyFillOp:
		color(o.Color)
	case BezierOp:
		color(o.Color)
	case FloodFillOp:
		color(o.Color)
	case InsetFillOp:
		color(o.Color)
	case DitherRectOp:
		color(o.Color)
		if o.Pattern != "checker" && o.Pattern != "dots" {
			v.addf(frame, idx, "dither_rect: unknown pattern %q", o.Pattern)
		}
	case GradientLinearOp:
		colors(o.Indices)
	case GradientRadialOp:
		colors(o.Indices)
	case OutlineOp:
		color(o.Color)
	case ShadeBandOp:
		color(o.Color)
		layer(o.Layer)
		switch o.Side {
		case "top", "bottom", "left", "right":
		default:
			v.addf(frame, idx, "shade_band: unsupported side %q", o.Side)
		}
	case NoisePointsOp:
		color(o.Color)
		layer(o.Layer)
		if v.strict && !o.HasSeed {
			v.addf(frame, idx, "noise_points requires an explicit seed in strict mode")
		}
	case ColorReplaceOp:
		color(o.From)
		color(o.To)
		if o.MaskLayer != "" {
			layer(o.MaskLayer)
		}
	case MaskLayerOp:
		layer(o.Name)
		layer(o.MaskName)
	case MirrorOp:
		if o.Axis != "x" && o.Axis != "y" {
			v.addf(frame, idx, "mirror: axis must be \"x\" or \"y\" (got %q)", o.Axis)
		}
	}
}

// ValidateFile loads and validates one document file.
func ValidateFile(path string, strict bool) (*Document, []ValidationError) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, []ValidationError{{Path: path, Frame: -1, Op: -1, Msg: err.Error()}}
	}
	return doc, ValidateDocument(doc, path, strict)
}
