package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func testDoc(frames []Frame) *Document {
	return &Document{
		Format:  docFormat,
		Version: 1,
		Canvas:  Canvas{W: 16, H: 16},
		Palette: []string{"#00000000", "#000000", "#ffffff", "#ff0000"},
		Frames:  frames,
	}
}

func TestRenderFrameBasics(t *testing.T) {
	ops := []Op{
		ClearOp{Color: 1},
		RectFillOp{Color: 2, X: 2, Y: 2, W: 4, H: 4},
		PixelOp{Color: 3, X: 0, Y: 0},
	}
	buf, err := RenderFrame(ops, 16, 16)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Get(0, 0) != 3 || buf.Get(3, 3) != 2 || buf.Get(10, 10) != 1 {
		t.Fatal("wrong pixels after basic ops")
	}
}

func TestRenderFrameOutOfBoundsPixelIsNoop(t *testing.T) {
	buf, err := RenderFrame([]Op{PixelOp{Color: 3, X: -1, Y: 0}}, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if n := countPixels(buf, 3); n != 0 {
		t.Fatal("out-of-bounds pixel painted something")
	}
}

func TestRenderFrameLayerFlow(t *testing.T) {
	ops := []Op{
		ClearOp{Color: 1},
		LayerBeginOp{Name: "body"},
		RectFillOp{Color: 2, X: 4, Y: 4, W: 8, H: 8},
		LayerEndOp{},
		LayerBeginOp{Name: "spots"},
		PixelOp{Color: 3, X: 6, Y: 6},
		LayerEndOp{},
		LayerMergeOp{},
	}
	buf, err := RenderFrame(ops, 16, 16)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Get(6, 6) != 3 {
		t.Fatal("later layer should win the overlap")
	}
	if buf.Get(4, 4) != 2 || buf.Get(0, 0) != 1 {
		t.Fatal("merge lost layer or base content")
	}
}

func TestRenderFrameImplicitFlatten(t *testing.T) {
	// A frame that never merges still yields its layer content.
	ops := []Op{
		LayerBeginOp{Name: "a"},
		PixelOp{Color: 2, X: 1, Y: 1},
		LayerEndOp{},
	}
	buf, err := RenderFrame(ops, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Get(1, 1) != 2 {
		t.Fatal("unmerged layer missing from the flattened frame")
	}
}

func TestRenderFrameErrorContext(t *testing.T) {
	ops := []Op{
		ClearOp{Color: 0},
		LayerBeginOp{Name: "a"},
		LayerBeginOp{Name: "b"},
	}
	_, err := RenderFrame(ops, 8, 8)
	if !errors.Is(err, ErrNestedLayer) {
		t.Fatalf("got %v, want ErrNestedLayer", err)
	}
	if !strings.Contains(err.Error(), "op 2") {
		t.Fatalf("error %q does not name the failing op index", err)
	}
}

func TestRenderFrameMissingShadeLayer(t *testing.T) {
	_, err := RenderFrame([]Op{ShadeBandOp{Color: 1, Layer: "ghost", Side: "top", Thickness: 1}}, 8, 8)
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("got %v, want missing-layer error naming the layer", err)
	}
}

func TestRenderDocumentBaseLayerRefs(t *testing.T) {
	// Anything the validator accepts against layer "base" must also render.
	doc := testDoc([]Frame{{Ops: [][]any{
		{"rect_fill", float64(2), float64(2), float64(2), float64(8), float64(8)},
		{"shade_band", float64(3), "base", "bottom"},
		{"noise_points", float64(1), "base", float64(4), float64(9)},
		{"copy_layer", "base", "snap"},
	}}})
	if errs := ValidateDocument(doc, "", false); len(errs) != 0 {
		t.Fatalf("document should validate: %v", errs)
	}
	results, _, err := RenderDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Err != nil {
		t.Fatalf("base layer references failed at render: %v", results[0].Err)
	}
	buf := results[0].Buffer
	for x := 2; x < 10; x++ {
		if got := buf.Get(x, 9); got != 3 && got != 1 {
			t.Fatalf("(%d,9) = %d, want the shade band (or a noise point)", x, got)
		}
	}
}

func TestRenderDocumentDeterministic(t *testing.T) {
	doc := testDoc([]Frame{
		{Ops: [][]any{
			{"clear", float64(0)},
			{"layer_begin", "fx"},
			{"rect_fill", float64(2), float64(2), float64(2), float64(10), float64(10)},
			{"layer_end"},
			{"noise_points", float64(3), "fx", float64(12), float64(7)},
			{"layer_merge"},
		}},
		{Base: intp(0), AppendOps: [][]any{{"mirror", "x"}}},
	})

	run := func() [][]uint8 {
		results, _, err := RenderDocument(doc)
		if err != nil {
			t.Fatal(err)
		}
		out := make([][]uint8, len(results))
		for i, res := range results {
			if res.Err != nil {
				t.Fatalf("frame %d: %v", i, res.Err)
			}
			out[i] = res.Buffer.Pix
		}
		return out
	}

	first := run()
	second := run()
	for i := range first {
		if !bytes.Equal(first[i], second[i]) {
			t.Fatalf("frame %d differs between identical renders", i)
		}
	}
}

func TestRenderDocumentFrameErrorIsolation(t *testing.T) {
	doc := testDoc([]Frame{
		{Ops: [][]any{{"clear", float64(1)}}},
		{Ops: [][]any{{"layer_end"}}}, // fails: nothing open
		{Ops: [][]any{{"clear", float64(2)}}},
	})
	results, _, err := RenderDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatal("healthy frames affected by a failing sibling")
	}
	if results[1].Err == nil {
		t.Fatal("failing frame reported no error")
	}
	if results[0].Buffer.Get(0, 0) != 1 || results[2].Buffer.Get(0, 0) != 2 {
		t.Fatal("healthy frames rendered wrong content")
	}
}

func TestRenderDocumentBadPalette(t *testing.T) {
	doc := testDoc([]Frame{{Ops: [][]any{{"clear", float64(0)}}}})
	doc.Palette = []string{"#00000000", "nope"}
	if _, _, err := RenderDocument(doc); err == nil {
		t.Fatal("expected palette error")
	}
}

func TestRenderDocumentDurations(t *testing.T) {
	doc := testDoc([]Frame{
		{DurationMs: 250, Ops: [][]any{{"clear", float64(0)}}},
		{Ops: [][]any{{"clear", float64(0)}}},
	})
	results, _, err := RenderDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Duration != 250 {
		t.Fatalf("explicit duration = %d, want 250", results[0].Duration)
	}
	if results[1].Duration != defaultDurationMs {
		t.Fatalf("default duration = %d, want %d", results[1].Duration, defaultDurationMs)
	}
}

func TestApplyOpRotateDefaultsToCanvasCenter(t *testing.T) {
	s := NewLayerStack(9, 9)
	s.Base.Set(8, 4, 1)
	if err := applyOp(s, RotateOp{Angle: 90}); err != nil {
		t.Fatal(err)
	}
	// Default pivot is (4.5, 4.5): dest (x,y) samples source (y, 9-x).
	if s.Base.Get(5, 8) != 1 {
		t.Fatal("rotation did not pivot about the canvas center")
	}
	if countPixels(s.Base, 1) != 1 {
		t.Fatal("rotation duplicated or dropped pixels")
	}
}

func TestApplyOpInsetFillMasksToDrawnArt(t *testing.T) {
	s := NewLayerStack(8, 8)
	s.Base.RectFill(1, 2, 2, 4, 4)
	if err := applyOp(s, InsetFillOp{Color: 2, X: 0, Y: 0, W: 8, H: 8, Inset: 1}); err != nil {
		t.Fatal(err)
	}
	if s.Base.Get(3, 3) != 2 {
		t.Fatal("inset fill skipped occupied pixels")
	}
	if s.Base.Get(1, 1) != 0 {
		t.Fatal("inset fill painted transparent canvas")
	}
}
