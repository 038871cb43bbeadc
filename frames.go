package main

import (
	"errors"
	"fmt"
)

var (
	ErrCyclicInheritance  = errors.New("cyclic frame inheritance")
	ErrOverrideOutOfRange = errors.New("override index out of range")
)

// frameResolver merges inheritance frames into flat operation lists. Results
// are cached for one render pass, so a frame inherited by several
// descendants is resolved once.
type frameResolver struct {
	frames []Frame
	cache  map[int][]Op
}

func newFrameResolver(frames []Frame) *frameResolver {
	return &frameResolver{frames: frames, cache: make(map[int][]Op, len(frames))}
}

// Resolve produces frame i's concrete operation list: the base frame's list
// (resolved recursively), with overrides applied by index and append_ops
// added at the end. The base reference must point strictly earlier.
func (r *frameResolver) Resolve(i int) ([]Op, error) {
	if ops, ok := r.cache[i]; ok {
		return ops, nil
	}
	f := r.frames[i]

	if f.Base == nil {
		ops, err := decodeOpList(f.Ops, i)
		if err != nil {
			return nil, err
		}
		r.cache[i] = ops
		return ops, nil
	}

	base := *f.Base
	if base < 0 || base >= i {
		return nil, fmt.Errorf("frame %d: base %d: %w", i, base, ErrCyclicInheritance)
	}
	baseOps, err := r.Resolve(base)
	if err != nil {
		return nil, err
	}

	ops := make([]Op, len(baseOps))
	copy(ops, baseOps)

	for _, ov := range f.Overrides {
		if ov.OpIndex < 0 || ov.OpIndex >= len(ops) {
			return nil, fmt.Errorf("frame %d: override index %d (base has %d ops): %w",
				i, ov.OpIndex, len(ops), ErrOverrideOutOfRange)
		}
		op, err := DecodeOp(ov.Op)
		if err != nil {
			return nil, fmt.Errorf("frame %d: override for op %d: %w", i, ov.OpIndex, err)
		}
		ops[ov.OpIndex] = op
	}

	for j, raw := range f.AppendOps {
		op, err := DecodeOp(raw)
		if err != nil {
			return nil, fmt.Errorf("frame %d: append op %d: %w", i, j, err)
		}
		ops = append(ops, op)
	}

	r.cache[i] = ops
	return ops, nil
}

func decodeOpList(raw [][]any, frame int) ([]Op, error) {
	ops := make([]Op, len(raw))
	for j, r := range raw {
		op, err := DecodeOp(r)
		if err != nil {
			return nil, fmt.Errorf("frame %d: op %d: %w", frame, j, err)
		}
		ops[j] = op
	}
	return ops, nil
}
