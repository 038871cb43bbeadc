package main

import (
	"errors"
	"fmt"
)

var (
	ErrNestedLayer = errors.New("layer already open")
	ErrNoOpenLayer = errors.New("no open layer")
)

// Layer is a named, temporary buffer used to isolate in-progress drawing
// before compositing onto the frame's base buffer.
type Layer struct {
	Name string
	Buf  *Buffer
}

// LayerStack owns one frame's layers in creation order plus the base
// canvas buffer. At most one layer is open at a time; operations issued
// with no open layer target the base directly.
type LayerStack struct {
	Base   *Buffer
	layers []*Layer
	open   *Layer
}

func NewLayerStack(w, h int) *LayerStack {
	return &LayerStack{Base: NewBuffer(w, h)}
}

// Target returns the buffer drawing operations act on: the open layer,
// or the base when none is open.
func (s *LayerStack) Target() *Buffer {
	if s.open != nil {
		return s.open.Buf
	}
	return s.Base
}

func (s *LayerStack) find(name string) *Layer {
	for _, l := range s.layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Begin opens the named layer, creating a transparent one on first use.
// Re-opening an existing layer keeps its pixels, so appended operations can
// redraw incrementally.
func (s *LayerStack) Begin(name string) error {
	if s.open != nil {
		return fmt.Errorf("layer_begin %q while %q is open: %w", name, s.open.Name, ErrNestedLayer)
	}
	l := s.find(name)
	if l == nil {
		l = &Layer{Name: name, Buf: NewBuffer(s.Base.W, s.Base.H)}
		s.layers = append(s.layers, l)
	}
	s.open = l
	return nil
}

func (s *LayerStack) End() error {
	if s.open == nil {
		return fmt.Errorf("layer_end: %w", ErrNoOpenLayer)
	}
	s.open = nil
	return nil
}

// Ensure creates the named layer if absent without opening it.
func (s *LayerStack) Ensure(name string) *Layer {
	if l := s.find(name); l != nil {
		return l
	}
	l := &Layer{Name: name, Buf: NewBuffer(s.Base.W, s.Base.H)}
	s.layers = append(s.layers, l)
	return l
}

// Lookup returns the named layer's buffer, or nil. The reserved name
// "base" resolves to the base buffer, so masks and shade bands can
// reference the canvas itself.
func (s *LayerStack) Lookup(name string) *Buffer {
	if name == "base" {
		return s.Base
	}
	if l := s.find(name); l != nil {
		return l.Buf
	}
	return nil
}

// Copy duplicates src's pixels into dst, creating dst if needed. Either
// side may be "base". A missing source is a no-op (the validator flags
// dangling references).
func (s *LayerStack) Copy(src, dst string) {
	from := s.Lookup(src)
	if from == nil {
		return
	}
	if dst == "base" {
		copy(s.Base.Pix, from.Pix)
		return
	}
	to := s.Ensure(dst)
	copy(to.Buf.Pix, from.Pix)
}

// Mask zeroes pixels of the named layer wherever the mask layer is
// transparent.
func (s *LayerStack) Mask(name, maskName string) {
	target := s.Lookup(name)
	mask := s.Lookup(maskName)
	if target == nil || mask == nil {
		return
	}
	for i, m := range mask.Pix {
		if m == 0 {
			target.Pix[i] = 0
		}
	}
}

// Merge composites the named layers (or, with no names, every layer in
// creation order) onto the base and removes them from the stack. This is
// the only point where layer content commits to the base.
func (s *LayerStack) Merge(names []string) {
	merge := func(l *Layer) {
		s.Base.CompositeOver(l.Buf)
		if s.open == l {
			s.open = nil
		}
	}
	if len(names) == 0 {
		for _, l := range s.layers {
			merge(l)
		}
		s.layers = s.layers[:0]
		return
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	kept := s.layers[:0]
	for _, l := range s.layers {
		if wanted[l.Name] {
			merge(l)
		} else {
			kept = append(kept, l)
		}
	}
	s.layers = kept
}

// Flatten merges every remaining layer into the base and returns it. Run at
// end of frame so a document that never called layer_merge still yields one
// flat buffer.
func (s *LayerStack) Flatten() *Buffer {
	s.Merge(nil)
	return s.Base
}

// Clear fills the base and every layer with the given index.
func (s *LayerStack) Clear(c uint8) {
	s.Base.Fill(c)
	for _, l := range s.layers {
		l.Buf.Fill(c)
	}
}

// Merged returns a composite of base plus all layers in creation order
// without mutating the stack.
func (s *LayerStack) Merged() *Buffer {
	out := s.Base.Clone()
	for _, l := range s.layers {
		out.CompositeOver(l.Buf)
	}
	return out
}
