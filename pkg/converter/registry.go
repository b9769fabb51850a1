package converter

import (
	"context"
	"fmt"

	"github.com/keshon/interactkit/pkg/typeset"
)

// Registry stores converters keyed by their exact output descriptor and
// resolves declared parameter types to converters through the lattice.
type Registry struct {
	byKey map[string]*Converter
	order []*Converter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]*Converter)}
}

// Register adds a converter. Two converters for the same exact output type is
// a configuration error at setup time, not a runtime ambiguity.
func (r *Registry) Register(c *Converter) error {
	if c == nil || c.Output == nil || c.Convert == nil {
		return fmt.Errorf("converter missing output type or convert func")
	}
	key := c.Output.Key()
	if _, dup := r.byKey[key]; dup {
		return fmt.Errorf("converter for type %s already registered", key)
	}
	r.byKey[key] = c
	r.order = append(r.order, c)
	return nil
}

// Lookup resolves a declared type to a converter: exact descriptor match
// first, otherwise the most specific registered converter whose output is
// assignable to the declared type. Ties keep the earliest registration, so
// resolution is deterministic for a fixed registration order. Returns nil
// when nothing fits.
func (r *Registry) Lookup(decl *typeset.Descriptor) *Converter {
	if c, ok := r.byKey[decl.Key()]; ok {
		return c
	}

	var best *Converter
	for _, c := range r.order {
		if !typeset.Assignable(c.Output, decl) {
			continue
		}
		if best == nil {
			best = c
			continue
		}
		moreSpecific := typeset.Assignable(c.Output, best.Output) &&
			!typeset.Assignable(best.Output, c.Output)
		if moreSpecific {
			best = c
		}
	}
	return best
}

// Convert produces a value of the declared type from the view. An override
// converter, when given, bypasses resolution. The view is only advanced when
// the conversion succeeds.
func (r *Registry) Convert(ctx context.Context, view *StringView, inv Invocation, decl *typeset.Descriptor, override *Converter) (any, error) {
	c := override
	if c == nil {
		c = r.Lookup(decl)
	}
	if c == nil {
		return nil, fmt.Errorf("no converter for type %s: %w", decl, ErrNoMatch)
	}

	fork := view.Fork()
	v, err := c.Convert(ctx, fork, inv)
	if err != nil {
		return nil, fmt.Errorf("convert to %s: %w", decl, err)
	}
	view.Commit(fork)
	return v, nil
}
