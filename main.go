package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	var input, output, configPath string
	var newName, newPalette string
	var newW, newH int
	var validateOnly, strict, watch bool
	var scale, cols int
	var layout string
	var exportFrames, exportGIF, exportPDF, exportSVG bool

	flag.StringVar(&input, "i", "", "Input file (.spriteops.json) or directory")
	flag.StringVar(&input, "input", "", "Input file (.spriteops.json) or directory")
	flag.StringVar(&output, "o", "", "Output directory")
	flag.StringVar(&output, "output", "", "Output directory")
	flag.StringVar(&configPath, "config", "spritec.toml", "Path to config file (TOML)")
	flag.BoolVar(&validateOnly, "validate", false, "Validate documents without rendering")
	flag.BoolVar(&strict, "strict", false, "Strict validation (explicit noise seeds required)")
	flag.BoolVar(&watch, "watch", false, "Run as daemon, watching directories from config [watch] section")
	flag.IntVar(&scale, "scale", 0, "Integer upscale factor for output images")
	flag.StringVar(&layout, "layout", "", "Sprite sheet layout: horizontal or grid")
	flag.IntVar(&cols, "cols", 0, "Columns for grid layout")
	flag.BoolVar(&exportFrames, "export-frames", false, "Export individual frame PNGs")
	flag.BoolVar(&exportGIF, "gif", false, "Export animated GIF for multi-frame sprites")
	flag.BoolVar(&exportPDF, "pdf", false, "Export a PDF contact sheet")
	flag.BoolVar(&exportSVG, "svg", false, "Export the first frame as SVG pixel rects")
	flag.StringVar(&newName, "new", "", "Create a new sprite document with this name")
	flag.IntVar(&newW, "width", 32, "Canvas width for -new")
	flag.IntVar(&newH, "height", 32, "Canvas height for -new")
	flag.StringVar(&newPalette, "palette", "default", "Palette preset or comma-separated hex colors for -new")
	flag.Parse()

	cfg, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	opts := cfg.exportOptions()
	if scale > 0 {
		opts.Scale = scale
	}
	if layout != "" {
		opts.Layout = layout
	}
	if cols > 0 {
		opts.Cols = cols
	}
	opts.Frames = opts.Frames || exportFrames
	opts.GIF = opts.GIF || exportGIF
	opts.PDF = opts.PDF || exportPDF
	opts.SVG = opts.SVG || exportSVG
	strict = strict || cfg.Strict

	switch {
	case newName != "":
		if err := scaffoldDocument(newName, newW, newH, newPalette); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return

	case watch:
		if cfg.Watch.Location == "" || len(cfg.Watch.InputDirs) == 0 {
			fmt.Fprintln(os.Stderr, "Error: [watch] input_dirs and location must be set in config for --watch mode")
			os.Exit(1)
		}
		if err := runWatchMode(cfg, opts, strict); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if input == "" || (output == "" && !validateOnly) {
		fmt.Fprintln(os.Stderr, "Usage: spritec -i <input> -o <outdir> [flags]")
		fmt.Fprintln(os.Stderr, "       spritec -i <input> --validate [--strict]")
		fmt.Fprintln(os.Stderr, "       spritec -new <name> [-width N] [-height N] [-palette P]")
		fmt.Fprintln(os.Stderr, "       spritec --watch [--config spritec.toml]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	files, err := collectInputs(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No %s files found in %s\n", docExt, input)
		os.Exit(1)
	}

	if validateOnly {
		os.Exit(validateFiles(files, strict))
	}
	os.Exit(renderFiles(files, output, opts, strict))
}

func collectInputs(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("input path '%s' does not exist", input)
	}
	if !info.IsDir() {
		if !strings.HasSuffix(input, docExt) {
			return nil, fmt.Errorf("input file '%s' must have a %s extension", input, docExt)
		}
		return []string{input}, nil
	}
	var files []string
	err = filepath.WalkDir(input, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, docExt) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func validateFiles(files []string, strict bool) int {
	totalErrors := 0
	for _, path := range files {
		_, errs := ValidateFile(path, strict)
		if len(errs) == 0 {
			fmt.Printf("[OK] %s\n", path)
			continue
		}
		fmt.Fprintf(os.Stderr, "[FAIL] %s\n", path)
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  %s\n", e.Msg)
		}
		totalErrors += len(errs)
	}
	if totalErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n%d error(s) found\n", totalErrors)
		return 1
	}
	fmt.Printf("\n%d file(s) validated successfully\n", len(files))
	return 0
}

func renderFiles(files []string, outdir string, opts ExportOptions, strict bool) int {
	if err := os.MkdirAll(outdir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		return 1
	}

	start := time.Now()
	var (
		completed atomic.Int64
		failed    atomic.Int64
		skipped   atomic.Int64
		wg        sync.WaitGroup
	)
	total := int64(len(files))
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	errCh := make(chan string, len(files))

	for _, path := range files {
		path := path
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; wg.Done() }()
			if isSpriteUpToDate(path, outdir) {
				skipped.Add(1)
			} else if err := renderFile(path, outdir, opts, strict); err != nil {
				failed.Add(1)
				errCh <- fmt.Sprintf("failed to render '%s': %v", path, err)
			}
			n := completed.Add(1)
			fmt.Printf("\r[%d/%d] %s", n, total, filepath.Base(path))
		}()
	}
	wg.Wait()
	close(errCh)

	fmt.Println()
	for msg := range errCh {
		fmt.Fprintln(os.Stderr, msg)
	}

	if n := failed.Load(); n > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d sprite(s) failed\n", n, total)
		return 1
	}
	if n := skipped.Load(); n > 0 {
		fmt.Printf("Skipped %d up-to-date sprite(s)\n", n)
	}
	fmt.Printf("Rendered %d sprite(s) in %.2fs\n", total-skipped.Load(), time.Since(start).Seconds())
	return 0
}

// renderFile validates, renders, and exports one document. Frame failures
// are collected and reported together; a bad frame fails the file but not
// the batch.
func renderFile(path, outdir string, opts ExportOptions, strict bool) error {
	doc, errs := ValidateFile(path, strict)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s\n", e.Error())
		}
		return fmt.Errorf("validation failed with %d error(s)", len(errs))
	}

	results, palette, err := RenderDocument(doc)
	if err != nil {
		return err
	}

	var frameErrs int
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, res.Err)
			frameErrs++
		}
	}
	if frameErrs > 0 {
		return fmt.Errorf("%d frame(s) failed", frameErrs)
	}

	name := spriteName(path)
	if _, err := ExportSprite(name, outdir, doc, results, palette, opts); err != nil {
		return err
	}
	return nil
}

// spriteName derives the sprite's base name from the file name.
func spriteName(path string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(base, docExt) {
		return strings.TrimSuffix(base, docExt)
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func scaffoldDocument(name string, w, h int, palette string) error {
	colors, ok := palettePresets[palette]
	if !ok {
		if !strings.Contains(palette, ",") {
			return fmt.Errorf("unknown palette preset %q", palette)
		}
		colors = []string{"#00000000"}
		for _, c := range strings.Split(palette, ",") {
			colors = append(colors, strings.TrimSpace(c))
		}
	}
	if _, err := ParsePalette(colors); err != nil {
		return err
	}

	doc := NewDocument(w, h, colors)
	out := name + docExt
	if err := doc.Save(out); err != nil {
		return err
	}
	fmt.Printf("[OK] Created %s\n", out)
	fmt.Printf("  Canvas: %dx%d\n", w, h)
	fmt.Printf("  Palette: %s (%d colors)\n", palette, len(colors))
	return nil
}
