// Package dom adapts a parsed HTML document to pageq's selector dialect.
//
// Selectors are standard CSS plus a positional ":eq(N)" suffix. A selector
// is evaluated in stages: each ":eq" splits the selector, the CSS part is
// matched among descendants of the previous stage's matches in document
// order, and the match list is then narrowed to the Nth element. An index
// past the end of the match list narrows to nothing; it is not an error.
package dom

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// ErrQuery indicates a malformed selector.
var ErrQuery = errors.New("invalid query")

// Document is a read-only rendered tree that page views query against.
type Document struct {
	doc *goquery.Document
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString reads an HTML document from a string.
func ParseString(html string) (*Document, error) {
	return Parse(strings.NewReader(html))
}

// Select evaluates a selector and returns the matching elements.
// An empty selector matches the document root.
func (d *Document) Select(sel string) (*goquery.Selection, error) {
	sel = strings.TrimSpace(sel)
	if sel == "" {
		return d.doc.Selection, nil
	}

	stages, err := splitStages(sel)
	if err != nil {
		return nil, err
	}

	current := d.doc.Selection
	for _, stage := range stages {
		matcher, err := cascadia.Compile(stage.css)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrQuery, stage.css, err)
		}
		current = current.FindMatcher(matcher)
		if stage.at != nil {
			current = current.Eq(*stage.at)
		}
	}

	return current, nil
}

// Count returns the number of elements matching the selector.
func (d *Document) Count(sel string) (int, error) {
	matches, err := d.Select(sel)
	if err != nil {
		return 0, err
	}
	return matches.Length(), nil
}

// Text returns the normalized text content of the first matching element.
// The second return value reports whether a match existed.
func (d *Document) Text(sel string) (string, bool, error) {
	matches, err := d.Select(sel)
	if err != nil {
		return "", false, err
	}
	if matches.Length() == 0 {
		return "", false, nil
	}
	return NormalizeText(matches.First().Text()), true, nil
}

// RawText returns the text content of the first matching element exactly as
// it appears in the document, without whitespace normalization. The second
// return value reports whether a match existed.
func (d *Document) RawText(sel string) (string, bool, error) {
	matches, err := d.Select(sel)
	if err != nil {
		return "", false, err
	}
	if matches.Length() == 0 {
		return "", false, nil
	}
	return matches.First().Text(), true, nil
}

// Attribute returns the named attribute of the first matching element.
// The second return value reports whether a match carried the attribute.
func (d *Document) Attribute(sel, name string) (string, bool, error) {
	matches, err := d.Select(sel)
	if err != nil {
		return "", false, err
	}
	if matches.Length() == 0 {
		return "", false, nil
	}
	value, exists := matches.First().Attr(name)
	return value, exists, nil
}

// NormalizeText collapses runs of whitespace to single spaces and trims.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stage is one evaluation step: a CSS fragment and an optional
// positional narrowing applied to its matches.
type stage struct {
	css string
	at  *int
}

var eqPattern = regexp.MustCompile(`:eq\((\d+)\)`)

// splitStages cuts a selector at each ":eq(N)" occurrence.
func splitStages(sel string) ([]stage, error) {
	locations := eqPattern.FindAllStringSubmatchIndex(sel, -1)
	if locations == nil {
		return []stage{{css: sel}}, nil
	}

	var stages []stage
	previous := 0
	for _, loc := range locations {
		css := strings.TrimSpace(sel[previous:loc[0]])
		if css == "" {
			return nil, fmt.Errorf("%w: %q: positional filter without a selector", ErrQuery, sel)
		}

		index, err := strconv.Atoi(sel[loc[2]:loc[3]])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrQuery, sel, err)
		}

		at := index
		stages = append(stages, stage{css: css, at: &at})
		previous = loc[1]
	}

	if rest := strings.TrimSpace(sel[previous:]); rest != "" {
		stages = append(stages, stage{css: rest})
	}

	return stages, nil
}
