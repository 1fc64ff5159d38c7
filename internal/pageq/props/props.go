// Package props provides the leaf property descriptors page definitions are
// built from: text content, attribute values, match counts and presence.
package props

import (
	"errors"
	"fmt"

	"github.com/pageq/pageq/internal/pageq/page"
	"github.com/pageq/pageq/internal/pageq/selector"
)

// ErrNotFound indicates that a property's selector matched no element.
var ErrNotFound = errors.New("no matching element")

type config struct {
	scope string
	at    *int
	reset bool
}

// Option refines a property descriptor's selector.
type Option func(*config)

// Scope nests the property's selector inside an extra fragment.
func Scope(s string) Option {
	return func(c *config) { c.scope = s }
}

// At narrows the property's selector to its zero-based Nth match.
func At(index int) Option {
	return func(c *config) { c.at = &index }
}

// ResetScope makes the property ignore the owning view's resolved scope.
func ResetScope() Option {
	return func(c *config) { c.reset = true }
}

func applyOptions(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// buildScope composes the property's final selector against the owning view.
func buildScope(v *page.View, sel string, cfg config) (string, error) {
	base := v.Scope()
	if cfg.reset {
		base = ""
	}
	return selector.Build(base, sel, selector.Filters{Scope: cfg.scope, At: cfg.at})
}

// Text reads the normalized text content of the first matching element.
// An empty selector reads the owning view's own scoped element.
func Text(sel string, opts ...Option) page.Descriptor {
	cfg := applyOptions(opts)
	return page.Descriptor{Value: func(v *page.View, index *int) (any, error) {
		scope, err := buildScope(v, sel, cfg)
		if err != nil {
			return nil, err
		}
		text, found, err := v.Document().Text(scope)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, scope)
		}
		return text, nil
	}}
}

// Attribute reads the named attribute of the first matching element.
func Attribute(name, sel string, opts ...Option) page.Descriptor {
	cfg := applyOptions(opts)
	return page.Descriptor{Value: func(v *page.View, index *int) (any, error) {
		scope, err := buildScope(v, sel, cfg)
		if err != nil {
			return nil, err
		}
		value, found, err := v.Document().Attribute(scope, name)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("%w: attribute %q on %q", ErrNotFound, name, scope)
		}
		return value, nil
	}}
}

// Count reports how many elements match the selector. The count reflects
// the document at access time; it is never cached.
func Count(sel string, opts ...Option) page.Descriptor {
	cfg := applyOptions(opts)
	return page.Descriptor{Value: func(v *page.View, index *int) (any, error) {
		scope, err := buildScope(v, sel, cfg)
		if err != nil {
			return nil, err
		}
		return v.Document().Count(scope)
	}}
}

// Present reports whether at least one element matches the selector.
func Present(sel string, opts ...Option) page.Descriptor {
	cfg := applyOptions(opts)
	return page.Descriptor{Value: func(v *page.View, index *int) (any, error) {
		scope, err := buildScope(v, sel, cfg)
		if err != nil {
			return nil, err
		}
		count, err := v.Document().Count(scope)
		if err != nil {
			return nil, err
		}
		return count > 0, nil
	}}
}
