// Package selector builds the scoped selectors used by page views.
//
// A pageq selector is ordinary CSS extended with a positional ":eq(N)"
// suffix on any compound, narrowing that compound's matches to the Nth one
// in document order. The dom package interprets the extension; this package
// only composes selector strings.
package selector

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSelector indicates a selector composition failure.
var ErrSelector = errors.New("invalid selector")

// Filters refine a composed selector.
type Filters struct {
	// Scope is an extra selector fragment inserted between the base and the
	// target selector, typically a node's own declared scope.
	Scope string

	// At, when non-nil, constrains the target selector to its At-th match
	// (zero-based) by appending an ":eq(N)" suffix.
	At *int
}

// At returns a pointer suitable for Filters.At.
func At(index int) *int {
	return &index
}

// Build composes a final selector from a base scope, a nested selector and
// optional filters. Empty fragments are skipped; fragments are joined as
// CSS descendant combinators.
//
// Build is purely syntactic: it does not validate CSS and it never queries
// a document.
func Build(base, sel string, f Filters) (string, error) {
	if f.At != nil && *f.At < 0 {
		return "", fmt.Errorf("%w: index must not be negative, got %d", ErrSelector, *f.At)
	}

	target := strings.TrimSpace(sel)
	if f.At != nil {
		if target == "" {
			return "", fmt.Errorf("%w: positional filter requires a selector", ErrSelector)
		}
		target = fmt.Sprintf("%s:eq(%d)", target, *f.At)
	}

	return Join(base, f.Scope, target), nil
}

// Join concatenates selector fragments as descendant combinators,
// skipping empty fragments.
func Join(fragments ...string) string {
	parts := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		fragment = strings.TrimSpace(fragment)
		if fragment != "" {
			parts = append(parts, fragment)
		}
	}
	return strings.Join(parts, " ")
}
