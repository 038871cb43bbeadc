package main

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"

	svg "github.com/ajstarks/svgo"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	xdraw "golang.org/x/image/draw"
)

// ExportOptions selects which artifacts a rendered sprite produces.
type ExportOptions struct {
	Scale  int
	Layout string // "horizontal" or "grid"
	Cols   int
	Frames bool // per-frame PNGs
	GIF    bool
	PDF    bool
	SVG    bool
}

// FrameRect is one frame's placement inside the (unscaled) spritesheet.
type FrameRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type AnimMeta struct {
	Frames         []int `json:"frames"`
	Loop           bool  `json:"loop"`
	FrameDurations []int `json:"frameDurations"`
}

// SpriteMeta is the machine-readable description written alongside the
// spritesheet.
type SpriteMeta struct {
	Sprite      string              `json:"sprite"`
	FrameWidth  int                 `json:"frameWidth"`
	FrameHeight int                 `json:"frameHeight"`
	TotalFrames int                 `json:"totalFrames"`
	Scale       int                 `json:"scale"`
	Layout      string              `json:"layout"`
	FrameRects  []FrameRect         `json:"frames"`
	Animations  map[string]AnimMeta `json:"animations"`
}

// sheetLayout computes each frame's rectangle and the overall sheet size.
func sheetLayout(w, h, frames int, layout string, cols int) ([]FrameRect, int, int) {
	rects := make([]FrameRect, frames)
	if layout == "grid" {
		if cols <= 0 {
			cols = 4
		}
		rows := (frames + cols - 1) / cols
		for i := range rects {
			rects[i] = FrameRect{X: (i % cols) * w, Y: (i / cols) * h, W: w, H: h}
		}
		return rects, w * cols, h * rows
	}
	for i := range rects {
		rects[i] = FrameRect{X: i * w, Y: 0, W: w, H: h}
	}
	return rects, w * frames, h
}

// scaleNearest upscales by an integer factor with hard pixel edges.
func scaleNearest(img *image.NRGBA, scale int) *image.NRGBA {
	if scale <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// ExportSprite writes every requested artifact for a fully rendered sprite
// into outdir and returns the metadata it also wrote to disk. All frame
// results must hold buffers; callers report failed frames before exporting.
func ExportSprite(name, outdir string, doc *Document, results []FrameResult, palette *Palette, opts ExportOptions) (*SpriteMeta, error) {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Layout == "" {
		opts.Layout = "horizontal"
	}
	w, h := doc.Canvas.W, doc.Canvas.H

	rects, sheetW, sheetH := sheetLayout(w, h, len(results), opts.Layout, opts.Cols)
	sheet := image.NewNRGBA(image.Rect(0, 0, sheetW, sheetH))
	for i, res := range results {
		img := res.Buffer.ToNRGBA(palette)
		r := rects[i]
		draw.Draw(sheet, image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H), img, image.Point{}, draw.Src)
	}

	sheetPath := filepath.Join(outdir, name+"_sheet.png")
	if err := writePNG(sheetPath, scaleNearest(sheet, opts.Scale)); err != nil {
		return nil, fmt.Errorf("writing sheet: %w", err)
	}

	if opts.Frames {
		for i, res := range results {
			img := scaleNearest(res.Buffer.ToNRGBA(palette), opts.Scale)
			path := filepath.Join(outdir, fmt.Sprintf("frame_%02d.png", i))
			if err := writePNG(path, img); err != nil {
				return nil, fmt.Errorf("writing frame %d: %w", i, err)
			}
		}
	}

	if opts.GIF && len(results) > 1 {
		if err := writeGIF(filepath.Join(outdir, name+".gif"), results, palette, opts.Scale); err != nil {
			return nil, fmt.Errorf("writing gif: %w", err)
		}
	}

	if opts.SVG {
		if err := writeSVG(filepath.Join(outdir, name+".svg"), results[0].Buffer, palette, opts.Scale); err != nil {
			return nil, fmt.Errorf("writing svg: %w", err)
		}
	}

	if opts.PDF {
		pdfPath := filepath.Join(outdir, name+"_sheet.pdf")
		if err := api.ImportImagesFile([]string{sheetPath}, pdfPath, nil, nil); err != nil {
			return nil, fmt.Errorf("writing pdf: %w", err)
		}
	}

	meta := &SpriteMeta{
		Sprite:      name,
		FrameWidth:  w,
		FrameHeight: h,
		TotalFrames: len(results),
		Scale:       opts.Scale,
		Layout:      opts.Layout,
		FrameRects:  rects,
		Animations:  make(map[string]AnimMeta, len(doc.Animations)),
	}
	for animName, anim := range doc.Animations {
		am := AnimMeta{Frames: anim.Frames, Loop: anim.IsLoop()}
		for _, fi := range anim.Frames {
			if fi >= 0 && fi < len(results) {
				am.FrameDurations = append(am.FrameDurations, results[fi].Duration)
			}
		}
		meta.Animations[animName] = am
	}

	metaPath := filepath.Join(outdir, name+"_meta.json")
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(metaPath, append(data, '\n'), 0644); err != nil {
		return nil, fmt.Errorf("writing metadata: %w", err)
	}

	return meta, nil
}

// writeGIF emits an animated GIF whose frames share the document palette
// directly, so no quantization happens. Durations are per frame; the
// animation loops forever.
func writeGIF(path string, results []FrameResult, palette *Palette, scale int) error {
	g := &gif.GIF{LoopCount: 0}
	for _, res := range results {
		frame := res.Buffer
		if scale > 1 {
			frame = upscaleIndexed(frame, scale)
		}
		g.Image = append(g.Image, frame.ToPaletted(palette))
		g.Delay = append(g.Delay, res.Duration/10)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, g)
}

// upscaleIndexed replicates palette indices by an integer factor. GIF frames
// stay indexed, so scaling happens on indices, not colors.
func upscaleIndexed(b *Buffer, scale int) *Buffer {
	out := NewBuffer(b.W*scale, b.H*scale)
	for y := 0; y < out.H; y++ {
		srcRow := (y / scale) * b.W
		dstRow := y * out.W
		for x := 0; x < out.W; x++ {
			out.Pix[dstRow+x] = b.Pix[srcRow+x/scale]
		}
	}
	return out
}

// writeSVG emits the first frame as one rect per pixel, an exact vector
// form of the indexed buffer.
func writeSVG(path string, b *Buffer, palette *Palette, scale int) error {
	if scale <= 0 {
		scale = 1
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	canvas := svg.New(f)
	canvas.Start(b.W*scale, b.H*scale, `shape-rendering="crispEdges"`)
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			idx := b.Pix[y*b.W+x]
			if idx == 0 {
				continue
			}
			canvas.Rect(x*scale, y*scale, scale, scale, svgFill(palette.Colors[idx]))
		}
	}
	canvas.End()
	return nil
}

func svgFill(c color.NRGBA) string {
	style := fmt.Sprintf("fill:#%02x%02x%02x", c.R, c.G, c.B)
	if c.A < 255 {
		style += fmt.Sprintf(";fill-opacity:%.3f", float64(c.A)/255)
	}
	return style
}
