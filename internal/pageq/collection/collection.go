// Package collection implements repeating page-object nodes.
//
// A collection definition describes a list of equally-shaped elements: an
// "itemScope" selector identifying each repeating container, an "item"
// definition for a single element's structure, and optionally a "scope"
// fragment, a "resetScope" flag, a literal "count" override and further
// collection-level properties such as a caption.
//
// The descriptor returned by Collection is indexable. Accessed without an
// index it yields the enumerable view: all collection-level properties plus
// a live "count". Accessed with a zero-based index it yields an item view
// scoped to exactly that container element. Both views are built fresh on
// every access and never share state; the definition itself is treated as a
// read-only template.
package collection

import (
	"errors"
	"fmt"
	"maps"

	"github.com/pageq/pageq/internal/pageq/page"
	"github.com/pageq/pageq/internal/pageq/props"
	"github.com/pageq/pageq/internal/pageq/selector"
)

// ErrDefinition indicates a malformed collection definition.
var ErrDefinition = errors.New("invalid collection definition")

// Definition keys interpreted by this package.
const (
	// KeyItemScope selects each repeating container element, relative to
	// the collection's own scope. It never surfaces as a view property.
	KeyItemScope = "itemScope"

	// KeyItem holds the definition composed for a single item view.
	KeyItem = "item"

	// KeyCount, when present, overrides the live element count.
	KeyCount = "count"
)

// Collection builds an indexable descriptor from a collection definition.
//
// Malformed definitions are reported on first access rather than deferred
// to a downstream query failure.
func Collection(def page.Definition) page.Descriptor {
	return page.Descriptor{Value: func(host *page.View, index *int) (any, error) {
		itemScope, itemDef, err := splitDefinition(def)
		if err != nil {
			return nil, err
		}
		if index != nil {
			return generateItem(host, *index, def, itemScope, itemDef)
		}
		return generateEnumerable(host, def, itemScope)
	}}
}

// splitDefinition validates the definition and extracts the parts the
// generators need.
func splitDefinition(def page.Definition) (string, page.Definition, error) {
	raw, ok := def[KeyItemScope]
	if !ok {
		return "", nil, fmt.Errorf("%w: missing %q", ErrDefinition, KeyItemScope)
	}
	itemScope, ok := raw.(string)
	if !ok || itemScope == "" {
		return "", nil, fmt.Errorf("%w: %q must be a non-empty string, got %v", ErrDefinition, KeyItemScope, raw)
	}

	var itemDef page.Definition
	switch item := def[KeyItem].(type) {
	case nil:
		itemDef = page.Definition{}
	case page.Definition:
		itemDef = item
	case map[string]any:
		itemDef = page.Definition(item)
	default:
		return "", nil, fmt.Errorf("%w: %q must be a definition, got %T", ErrDefinition, KeyItem, item)
	}

	return itemScope, itemDef, nil
}

// generateEnumerable composes the whole-collection view: every definition
// key except itemScope, plus a live count unless the definition supplies a
// literal one. The count is a lazy descriptor, so it reflects the document
// on each access.
func generateEnumerable(host *page.View, def page.Definition, itemScope string) (*page.View, error) {
	properties := maps.Clone(def)
	delete(properties, KeyItemScope)

	if _, ok := properties[KeyCount]; !ok {
		properties[KeyCount] = props.Count(itemScope)
	}

	return page.Create(properties, page.Options{Parent: host})
}

// generateItem composes the view for the index-th container element. The
// item scope is a clean selector built from the item container selector,
// the collection's own declared scope and the positional filter; the
// collection's resetScope flag carries over so item properties honor the
// same override semantics.
func generateItem(host *page.View, index int, def page.Definition, itemScope string, itemDef page.Definition) (*page.View, error) {
	declaredScope, _ := def[page.KeyScope].(string)
	resetScope, _ := def[page.KeyResetScope].(bool)

	scope, err := selector.Build("", itemScope, selector.Filters{
		Scope: declaredScope,
		At:    selector.At(index),
	})
	if err != nil {
		return nil, err
	}

	properties := maps.Clone(itemDef)
	if properties == nil {
		properties = page.Definition{}
	}
	properties[page.KeyScope] = scope
	properties[page.KeyResetScope] = resetScope

	return page.Create(properties, page.Options{Parent: host})
}
