// Package page composes tree-shaped definitions into live view objects.
//
// A Definition is a map of named properties. A property is either a plain
// value (returned as-is), a Descriptor (resolved lazily on every access with
// the owning view as context), or a nested Definition (composed into a child
// view). The reserved keys "scope" and "resetScope" control how a view's
// selector nests inside its parent's.
package page

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pageq/pageq/internal/pageq/dom"
	"github.com/pageq/pageq/internal/pageq/selector"
)

var (
	// ErrDefinition indicates a malformed definition.
	ErrDefinition = errors.New("invalid definition")

	// ErrUnknownProperty indicates access to a property the definition
	// does not declare.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrNotIndexable indicates indexed access to a property whose
	// descriptor does not accept an index.
	ErrNotIndexable = errors.New("property is not indexable")
)

// Reserved definition keys.
const (
	KeyScope      = "scope"
	KeyResetScope = "resetScope"
)

// Definition describes a view as a map of named properties.
type Definition map[string]any

// Descriptor is a lazily-resolved property. Value is invoked on every
// access with the owning view and, for indexable properties such as
// collections, an optional zero-based index.
type Descriptor struct {
	Value func(v *View, index *int) (any, error)
}

// Options configures view construction.
type Options struct {
	// Parent links the new view into an existing view tree. The view
	// inherits the parent's document and resolved scope.
	Parent *View

	// Document supplies the rendered tree for a root view. Ignored when
	// Parent is set.
	Document *dom.Document
}

// View is a live page object node. Views are cheap, stateless handles:
// every property access re-resolves against the current document.
type View struct {
	doc    *dom.Document
	parent *View
	def    Definition
	scope  string
	reset  bool
}

// Create composes a definition into a view. The definition is treated as a
// read-only template and is never mutated.
func Create(def Definition, opts Options) (*View, error) {
	doc := opts.Document
	if opts.Parent != nil {
		doc = opts.Parent.doc
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: view requires a document or a parent", ErrDefinition)
	}

	scope, err := stringKey(def, KeyScope)
	if err != nil {
		return nil, err
	}
	reset, err := boolKey(def, KeyResetScope)
	if err != nil {
		return nil, err
	}

	return &View{
		doc:    doc,
		parent: opts.Parent,
		def:    def,
		scope:  scope,
		reset:  reset,
	}, nil
}

// Document returns the rendered tree this view queries against.
func (v *View) Document() *dom.Document {
	return v.doc
}

// Scope resolves the view's effective selector: the parent chain's scope
// with the view's own fragment appended, unless the view resets scope.
func (v *View) Scope() string {
	if v.reset || v.parent == nil {
		return v.scope
	}
	return selector.Join(v.parent.Scope(), v.scope)
}

// Has reports whether the definition declares the named property.
func (v *View) Has(name string) bool {
	_, ok := v.def[name]
	return ok
}

// Keys returns the declared property names in sorted order.
func (v *View) Keys() []string {
	keys := make([]string, 0, len(v.def))
	for key := range v.def {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Get resolves the named property without an index. Descriptors are
// invoked with this view as context, nested definitions become child
// views, and plain values pass through unchanged.
func (v *View) Get(name string) (any, error) {
	return v.resolve(name, nil)
}

// GetIndex resolves the named property with a zero-based index. Only
// descriptors that accept an index, such as collections, support this.
func (v *View) GetIndex(name string, index int) (any, error) {
	return v.resolve(name, &index)
}

func (v *View) resolve(name string, index *int) (any, error) {
	raw, ok := v.def[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}

	switch value := raw.(type) {
	case Descriptor:
		if value.Value == nil {
			return nil, fmt.Errorf("%w: descriptor %q has no value function", ErrDefinition, name)
		}
		result, err := value.Value(v, index)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		return result, nil
	case Definition:
		return v.child(name, value, index)
	case map[string]any:
		return v.child(name, Definition(value), index)
	default:
		if index != nil {
			return nil, fmt.Errorf("%w: %q", ErrNotIndexable, name)
		}
		return raw, nil
	}
}

func (v *View) child(name string, def Definition, index *int) (any, error) {
	if index != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotIndexable, name)
	}
	childView, err := Create(def, Options{Parent: v})
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", name, err)
	}
	return childView, nil
}

func stringKey(def Definition, key string) (string, error) {
	raw, ok := def[key]
	if !ok || raw == nil {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", ErrDefinition, key, raw)
	}
	return value, nil
}

func boolKey(def Definition, key string) (bool, error) {
	raw, ok := def[key]
	if !ok || raw == nil {
		return false, nil
	}
	value, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q must be a bool, got %T", ErrDefinition, key, raw)
	}
	return value, nil
}
