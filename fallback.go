package aimcache

import (
	"context"
	"fmt"
)

type fallbackKind uint8

const (
	fallbackNone fallbackKind = iota
	fallbackValue
	fallbackCompute
)

// Fallback is what Remember uses on a miss: either a ready value or a
// computation. The zero Fallback has neither and resolves to absent.
type Fallback[V any] struct {
	kind  fallbackKind
	value V
	fn    func(context.Context) (V, error)
}

// Value is a fallback that is already known.
func Value[V any](v V) Fallback[V] {
	return Fallback[V]{kind: fallbackValue, value: v}
}

// Compute is a fallback computed on miss. Remember blocks until fn returns.
// An error (or panic) makes the Remember result absent; return ErrNoValue to
// signal "nothing to cache" without it being reported as a failure.
func Compute[V any](fn func(context.Context) (V, error)) Fallback[V] {
	if fn == nil {
		return Fallback[V]{}
	}
	return Fallback[V]{kind: fallbackCompute, fn: fn}
}

// ComputeWith is Compute with an argument bound at call site.
func ComputeWith[V, A any](fn func(context.Context, A) (V, error), arg A) Fallback[V] {
	if fn == nil {
		return Fallback[V]{}
	}
	return Compute(func(ctx context.Context) (V, error) { return fn(ctx, arg) })
}

// resolve returns (value, true, nil) on success, (zero, false, nil) when the
// fallback has nothing, and (zero, false, err) when the computation failed.
func (f Fallback[V]) resolve(ctx context.Context) (v V, ok bool, err error) {
	switch f.kind {
	case fallbackValue:
		return f.value, true, nil
	case fallbackCompute:
		defer func() {
			if r := recover(); r != nil {
				var zero V
				v, ok, err = zero, false, fmt.Errorf("%w: %v", ErrFallbackPanic, r)
			}
		}()
		v, err = f.fn(ctx)
		if err != nil {
			var zero V
			return zero, false, err
		}
		return v, true, nil
	default:
		return v, false, nil
	}
}
