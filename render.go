package main

import (
	"fmt"
	"runtime"
	"sync"
)

// RenderFrame interprets a resolved operation list against a fresh layer
// stack and returns the flattened canvas. Any layers left un-merged are
// composited in creation order at the end, so every frame yields exactly
// one flat buffer.
func RenderFrame(ops []Op, w, h int) (*Buffer, error) {
	stack := NewLayerStack(w, h)
	for i, op := range ops {
		if err := applyOp(stack, op); err != nil {
			return nil, fmt.Errorf("op %d (%s): %w", i, op.opName(), err)
		}
	}
	return stack.Flatten(), nil
}

// applyOp dispatches one operation to the rasterizer, effect library, or
// layer stack. Drawing targets the open layer, or the base when none is
// open.
func applyOp(s *LayerStack, op Op) error {
	t := s.Target()
	switch o := op.(type) {
	case ClearOp:
		s.Clear(o.Color)
	case PixelOp:
		t.Set(o.X, o.Y, o.Color)
	case LineOp:
		t.Line(o.Color, o.X0, o.Y0, o.X1, o.Y1)
	case ThickLineOp:
		t.ThickLine(o.Color, o.X0, o.Y0, o.X1, o.Y1, o.Thickness)
	case CapsuleFillOp:
		t.CapsuleFill(o.Color, o.X0, o.Y0, o.X1, o.Y1, o.R)
	case RectStrokeOp:
		t.RectStroke(o.Color, o.X, o.Y, o.W, o.H)
	case RectFillOp:
		t.RectFill(o.Color, o.X, o.Y, o.W, o.H)
	case EllipseFillOp:
		t.EllipseFill(o.Color, o.CX, o.CY, o.RX, o.RY)
	case EllipseStrokeOp:
		t.EllipseStroke(o.Color, o.CX, o.CY, o.RX, o.RY)
	case CircleFillOp:
		t.CircleFill(o.Color, o.CX, o.CY, o.R)
	case PolyFillOp:
		t.PolyFill(o.Color, o.Points)
	case BezierOp:
		t.Bezier(o.Color, o.X0, o.Y0, o.CX, o.CY, o.X1, o.Y1)
	case FloodFillOp:
		t.FloodFill(o.Color, o.X, o.Y)
	case InsetFillOp:
		t.InsetFill(s.Merged(), o.Color, o.X, o.Y, o.W, o.H, o.Inset)
	case DitherRectOp:
		t.DitherRect(o.Color, o.X, o.Y, o.W, o.H, o.Pattern)
	case GradientLinearOp:
		t.GradientLinear(o.Indices, o.X0, o.Y0, o.X1, o.Y1)
	case GradientRadialOp:
		t.GradientRadial(o.Indices, o.CX, o.CY, o.R)
	case LayerBeginOp:
		return s.Begin(o.Name)
	case LayerEndOp:
		return s.End()
	case LayerMergeOp:
		s.Merge(o.Names)
	case EnsureLayerOp:
		s.Ensure(o.Name)
	case CopyLayerOp:
		s.Copy(o.Src, o.Dst)
	case MaskLayerOp:
		s.Mask(o.Name, o.MaskName)
	case OutlineOp:
		t.Outline(o.Color, o.Thickness)
	case ShadeBandOp:
		mask := s.Lookup(o.Layer)
		if mask == nil {
			return fmt.Errorf("shade_band: missing layer %q", o.Layer)
		}
		return t.ShadeBand(mask, o.Color, o.Side, o.Thickness)
	case NoisePointsOp:
		mask := s.Lookup(o.Layer)
		if mask == nil {
			return fmt.Errorf("noise_points: missing layer %q", o.Layer)
		}
		t.NoisePoints(mask, o.Color, o.Count, o.Seed)
	case ColorReplaceOp:
		var mask *Buffer
		if o.MaskLayer != "" {
			mask = s.Lookup(o.MaskLayer)
		}
		t.ColorReplace(o.From, o.To, mask)
	case MirrorOp:
		t.Mirror(o.Axis)
	case TranslateOp:
		t.Translate(o.DX, o.DY)
	case RotateOp:
		cx, cy := float64(t.W)/2, float64(t.H)/2
		if o.HasCenter {
			cx, cy = o.CX, o.CY
		}
		t.Rotate(o.Angle, cx, cy)
	default:
		return fmt.Errorf("%q: %w", op.opName(), ErrUnknownOp)
	}
	return nil
}

// FrameResult is one frame's composited buffer, or the error that aborted
// it. A failed frame never blocks the rest of the document.
type FrameResult struct {
	Buffer   *Buffer
	Duration int
	Err      error
}

// RenderDocument resolves and renders every frame. Resolution runs serially
// so the inheritance cache is shared; interpretation runs on a bounded
// worker pool, one private layer stack per frame.
func RenderDocument(doc *Document) ([]FrameResult, *Palette, error) {
	palette, err := ParsePalette(doc.Palette)
	if err != nil {
		return nil, nil, err
	}
	w, h := doc.Canvas.W, doc.Canvas.H

	results := make([]FrameResult, len(doc.Frames))
	resolver := newFrameResolver(doc.Frames)
	resolved := make([][]Op, len(doc.Frames))
	for i := range doc.Frames {
		results[i].Duration = doc.Frames[i].Duration()
		resolved[i], results[i].Err = resolver.Resolve(i)
	}

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for i := range resolved {
		if results[i].Err != nil {
			continue
		}
		i := i
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; wg.Done() }()
			buf, err := RenderFrame(resolved[i], w, h)
			if err != nil {
				results[i].Err = fmt.Errorf("frame %d: %w", i, err)
				return
			}
			results[i].Buffer = buf
		}()
	}
	wg.Wait()

	return results, palette, nil
}
