// Package model defines the pageq YAML check-file schema.
//
// A check file is a YAML list of checks. Each check names a document (local
// file path or URL), describes the page-object model to compose against it,
// and lists assertions on resolved property paths.
package model

import (
	"fmt"
	"io"
	"slices"

	yaml "github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
)

// ErrModel is the sentinel error for all check-file failures.
var ErrModel = fmt.Errorf("check file error")

// Check is one document plus the page model and assertions to run on it.
type Check struct {
	Name     string  `yaml:"name,omitempty"`     // Optional label used in output
	Document string  `yaml:"document,omitempty"` // Local HTML file path
	URL      string  `yaml:"url,omitempty"`      // Remote document URL
	Page     Node    `yaml:"page"`               // Page-object model
	Asserts  Asserts `yaml:"asserts,omitempty"`  // Assertions on resolved paths
}

// Node describes a view: a scope plus named properties, nested sub-objects
// and collections. Collections recurse via their item node.
type Node struct {
	Scope       string                `yaml:"scope,omitempty"`
	ResetScope  bool                  `yaml:"reset_scope,omitempty"`
	Properties  map[string]Property   `yaml:"properties,omitempty"`
	Children    map[string]Node       `yaml:"children,omitempty"`
	Collections map[string]Collection `yaml:"collections,omitempty"`
}

// Collection describes a repeating node.
type Collection struct {
	Scope      string `yaml:"scope,omitempty"`
	ResetScope bool   `yaml:"reset_scope,omitempty"`
	ItemScope  string `yaml:"item_scope"`
	Item       *Node  `yaml:"item,omitempty"`
	Count      *int   `yaml:"count,omitempty"` // Literal count override
}

// Property kinds supported in check files.
const (
	KindText      = "text"
	KindAttribute = "attribute"
	KindCount     = "count"
	KindPresent   = "present"
)

var propertyKinds = []string{KindText, KindAttribute, KindCount, KindPresent}

// Property describes a leaf property descriptor.
type Property struct {
	Kind       string `yaml:"kind"`
	Selector   string `yaml:"selector,omitempty"`
	Attribute  string `yaml:"name,omitempty"` // Attribute name for kind "attribute"
	Scope      string `yaml:"scope,omitempty"`
	At         *int   `yaml:"at,omitempty"`
	ResetScope bool   `yaml:"reset_scope,omitempty"`
}

// Asserts groups the assertion types of a check.
type Asserts struct {
	Properties []PropertyAssert `yaml:"properties,omitempty"`
	JSON       []JSONAssert     `yaml:"json,omitempty"`
}

// PropertyAssert asserts a predicate on a resolved property path.
type PropertyAssert struct {
	Path      string    // Property path, e.g. "users[1].first_name"
	Predicate Predicate // Inline predicate (op/value)
}

// JSONAssert selects an element, parses its text content as JSON and
// asserts a predicate on a JSONPath selection.
type JSONAssert struct {
	Selector  string    // Element whose text content holds JSON
	Path      string    // JSONPath expression
	Predicate Predicate // Inline predicate (op/value)
}

// UnmarshalYAML separates the path from the inline predicate keys.
func (a *PropertyAssert) UnmarshalYAML(node ast.Node) error {
	err := unmarshalAssertWithField(node, []string{"path"}, func(name, value string) {
		a.Path = value
	}, &a.Predicate, "PropertyAssert")
	if err != nil {
		return err
	}
	if a.Path == "" {
		return fmt.Errorf("%w: PropertyAssert: missing required 'path' field", ErrModel)
	}
	return nil
}

// UnmarshalYAML separates selector and path from the inline predicate keys.
func (a *JSONAssert) UnmarshalYAML(node ast.Node) error {
	err := unmarshalAssertWithField(node, []string{"selector", "path"}, func(name, value string) {
		switch name {
		case "selector":
			a.Selector = value
		case "path":
			a.Path = value
		}
	}, &a.Predicate, "JSONAssert")
	if err != nil {
		return err
	}
	if a.Selector == "" {
		return fmt.Errorf("%w: JSONAssert: missing required 'selector' field", ErrModel)
	}
	if a.Path == "" {
		return fmt.Errorf("%w: JSONAssert: missing required 'path' field", ErrModel)
	}
	return nil
}

// Parse decodes a YAML stream of checks and validates it.
func Parse(r io.Reader) ([]Check, error) {
	decoder := yaml.NewDecoder(r)

	var checks []Check
	if err := decoder.Decode(&checks); err != nil {
		return nil, fmt.Errorf("%w: failed to decode YAML: %v", ErrModel, err)
	}

	for i, check := range checks {
		if err := check.Validate(); err != nil {
			return nil, fmt.Errorf("check %d: %w", i, err)
		}
	}

	return checks, nil
}

// Validate checks structural requirements the YAML schema cannot express.
func (c *Check) Validate() error {
	if c.Document == "" && c.URL == "" {
		return fmt.Errorf("%w: check requires 'document' or 'url'", ErrModel)
	}
	if c.Document != "" && c.URL != "" {
		return fmt.Errorf("%w: 'document' and 'url' are mutually exclusive", ErrModel)
	}
	return validateNode(&c.Page, "page")
}

func validateNode(node *Node, where string) error {
	for name, property := range node.Properties {
		if err := validateProperty(property); err != nil {
			return fmt.Errorf("%s.%s: %w", where, name, err)
		}
	}
	for name, child := range node.Children {
		if err := validateNode(&child, where+"."+name); err != nil {
			return err
		}
	}
	for name, col := range node.Collections {
		if col.ItemScope == "" {
			return fmt.Errorf("%s.%s: %w: collection requires 'item_scope'", where, name, ErrModel)
		}
		if col.Item != nil {
			if err := validateNode(col.Item, where+"."+name+".item"); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateProperty(property Property) error {
	if !slices.Contains(propertyKinds, property.Kind) {
		return fmt.Errorf("%w: unsupported property kind %q (supported: %v)", ErrModel, property.Kind, propertyKinds)
	}
	if property.Kind == KindAttribute && property.Attribute == "" {
		return fmt.Errorf("%w: property kind %q requires 'name'", ErrModel, KindAttribute)
	}
	return nil
}
