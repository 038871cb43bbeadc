package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

const (
	docFormat = "spriteops"
	docExt    = ".spriteops.json"

	defaultDurationMs = 100
)

// Document is one validated sprite description: canvas, palette, frames,
// and animation metadata. The engine never mutates it.
type Document struct {
	Format     string               `json:"format"`
	Version    int                  `json:"version"`
	Name       string               `json:"name,omitempty"`
	Canvas     Canvas               `json:"canvas"`
	Palette    []string             `json:"palette"`
	Animations map[string]Animation `json:"animations,omitempty"`
	Frames     []Frame              `json:"frames"`
}

type Canvas struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Animation is descriptive metadata consumed by export only.
type Animation struct {
	Loop   *bool `json:"loop,omitempty"`
	Frames []int `json:"frames"`
}

// IsLoop reports the loop flag; animations loop unless told otherwise.
func (a Animation) IsLoop() bool {
	return a.Loop == nil || *a.Loop
}

// Frame is either a literal operation list or an inheritance record
// referencing an earlier frame with overrides and appended operations.
type Frame struct {
	DurationMs int        `json:"durationMs,omitempty"`
	Ops        [][]any    `json:"ops,omitempty"`
	Base       *int       `json:"base,omitempty"`
	Overrides  []Override `json:"overrides,omitempty"`
	AppendOps  [][]any    `json:"append_ops,omitempty"`
}

type Override struct {
	OpIndex int   `json:"op_index"`
	Op      []any `json:"op"`
}

// Duration returns the display duration in milliseconds.
func (f Frame) Duration() int {
	if f.DurationMs > 0 {
		return f.DurationMs
	}
	return defaultDurationMs
}

// LoadDocument reads and unmarshals a sprite document. A UTF-8 BOM is
// tolerated.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &doc, nil
}

// palettePresets seed new documents. Entry 0 is always the transparent
// index.
var palettePresets = map[string][]string{
	"default": {
		"#00000000", "#000000", "#ffffff", "#ff0000",
		"#00ff00", "#0000ff", "#ffff00", "#ff00ff",
	},
	"gameboy": {"#00000000", "#0f380f", "#306230", "#8bac0f", "#9bbc0f"},
	"pico8": {
		"#00000000", "#1d2b53", "#7e2553", "#008751",
		"#ab5236", "#5f574f", "#c2c3c7", "#fff1e8",
		"#ff004d", "#ffa300", "#ffec27", "#00e436",
		"#29adff", "#83769c", "#ff77a8", "#ffccaa",
	},
	"grayscale": {"#00000000", "#000000", "#555555", "#aaaaaa", "#ffffff"},
}

// NewDocument builds a scaffold document for the -new command.
func NewDocument(w, h int, palette []string) *Document {
	loop := true
	return &Document{
		Format:  docFormat,
		Version: 1,
		Canvas:  Canvas{W: w, H: h},
		Palette: palette,
		Animations: map[string]Animation{
			"idle": {Loop: &loop, Frames: []int{0}},
		},
		Frames: []Frame{{
			DurationMs: defaultDurationMs,
			Ops: [][]any{
				{"clear", 0},
				{"layer_begin", "main"},
				{"layer_end"},
				{"layer_merge"},
				{"outline", 1, 1},
			},
		}},
	}
}

// Save writes the document as indented JSON.
func (d *Document) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
