package execute

import (
	"fmt"

	"github.com/pageq/pageq/internal/pageq/collection"
	"github.com/pageq/pageq/internal/pageq/model"
	"github.com/pageq/pageq/internal/pageq/page"
	"github.com/pageq/pageq/internal/pageq/props"
)

// buildDefinition turns a parsed check node into a composable definition.
func buildDefinition(node model.Node) page.Definition {
	def := page.Definition{}

	if node.Scope != "" {
		def[page.KeyScope] = node.Scope
	}
	if node.ResetScope {
		def[page.KeyResetScope] = true
	}

	for name, property := range node.Properties {
		def[name] = buildProperty(property)
	}
	for name, child := range node.Children {
		def[name] = buildDefinition(child)
	}
	for name, col := range node.Collections {
		def[name] = buildCollection(col)
	}

	return def
}

func buildCollection(col model.Collection) page.Descriptor {
	def := page.Definition{
		collection.KeyItemScope: col.ItemScope,
	}

	if col.Scope != "" {
		def[page.KeyScope] = col.Scope
	}
	if col.ResetScope {
		def[page.KeyResetScope] = true
	}
	if col.Item != nil {
		def[collection.KeyItem] = buildDefinition(*col.Item)
	}
	if col.Count != nil {
		def[collection.KeyCount] = *col.Count
	}

	return collection.Collection(def)
}

func buildProperty(property model.Property) page.Descriptor {
	opts := propertyOptions(property)

	switch property.Kind {
	case model.KindText:
		return props.Text(property.Selector, opts...)
	case model.KindAttribute:
		return props.Attribute(property.Attribute, property.Selector, opts...)
	case model.KindCount:
		return props.Count(property.Selector, opts...)
	case model.KindPresent:
		return props.Present(property.Selector, opts...)
	default:
		// Unreachable after model validation.
		kind := property.Kind
		return page.Descriptor{Value: func(*page.View, *int) (any, error) {
			return nil, fmt.Errorf("unsupported property kind %q", kind)
		}}
	}
}

func propertyOptions(property model.Property) []props.Option {
	var opts []props.Option
	if property.Scope != "" {
		opts = append(opts, props.Scope(property.Scope))
	}
	if property.At != nil {
		opts = append(opts, props.At(*property.At))
	}
	if property.ResetScope {
		opts = append(opts, props.ResetScope())
	}
	return opts
}
