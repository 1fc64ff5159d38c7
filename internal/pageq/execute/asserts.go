package execute

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/theory/jsonpath"

	"github.com/pageq/pageq/internal/pageq/dom"
	"github.com/pageq/pageq/internal/pageq/model"
	"github.com/pageq/pageq/internal/pageq/page"
	"github.com/pageq/pageq/internal/pageq/pathing"
	"github.com/pageq/pageq/internal/pageq/predicate"
	"github.com/pageq/pageq/internal/pageq/props"
)

// buildExpr converts a parsed predicate into a validated expression.
func buildExpr(input model.Predicate) (predicate.Expr, error) {
	op, err := predicate.ParseOperator(input.Operation)
	if err != nil {
		return predicate.Expr{}, err
	}

	expr := predicate.Expr{
		Op:       op,
		Value:    input.Value,
		HasValue: input.HasValue || input.Value != nil,
	}

	if err := predicate.ValidateExpr(expr); err != nil {
		return predicate.Expr{}, err
	}

	return expr, nil
}

// resolvePath walks a property path through the composed page, indexing
// into collections where the path carries an index.
func resolvePath(view *page.View, path string) (any, error) {
	segments, err := pathing.Parse(path)
	if err != nil {
		return nil, err
	}

	var current any = view
	for _, segment := range segments {
		host, ok := current.(*page.View)
		if !ok {
			return nil, fmt.Errorf("path %s: %s does not resolve to a composable view", path, segment)
		}

		if segment.Index != nil {
			current, err = host.GetIndex(segment.Name, *segment.Index)
		} else {
			current, err = host.Get(segment.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("path %s: %w", path, err)
		}
	}

	return current, nil
}

func (r *Runner) executePropertyAsserts(view *page.View, asserts []model.PropertyAssert) error {
	for _, current := range asserts {
		expr, err := buildExpr(current.Predicate)
		if err != nil {
			return fmt.Errorf("property assertion error for %s: %w", current.Path, err)
		}

		actual, err := resolvePath(view, current.Path)
		if err != nil {
			// A missing element satisfies only a negative existence check.
			if errors.Is(err, props.ErrNotFound) && expr.Op == predicate.OpExists {
				actual = nil
			} else {
				return fmt.Errorf("property assertion failed: %w", err)
			}
		}

		r.debugf("assert %s: resolved %v\n", current.Path, actual)

		ok, err := r.evaluator.Evaluate(expr, actual)
		if err != nil {
			return fmt.Errorf("property assertion error for %s: %w", current.Path, err)
		}
		if !ok {
			return fmt.Errorf("property assertion failed for %s: expected %s %v, got %v",
				current.Path, current.Predicate.Operation, current.Predicate.Value, actual)
		}
	}

	return nil
}

func (r *Runner) executeJSONAsserts(doc *dom.Document, asserts []model.JSONAssert) error {
	for _, current := range asserts {
		expr, err := buildExpr(current.Predicate)
		if err != nil {
			return fmt.Errorf("JSON assertion error for %s: %w", current.Path, err)
		}

		actual, err := extractJSONValue(doc, current.Selector, current.Path)
		if err != nil {
			if errors.Is(err, props.ErrNotFound) && expr.Op == predicate.OpExists {
				actual = nil
			} else {
				return fmt.Errorf("JSON assertion failed for %s: %w", current.Path, err)
			}
		}

		r.debugf("assert json %s %s: resolved %v\n", current.Selector, current.Path, actual)

		ok, err := r.evaluator.Evaluate(expr, actual)
		if err != nil {
			return fmt.Errorf("JSON assertion error for %s: %w", current.Path, err)
		}
		if !ok {
			return fmt.Errorf("JSON assertion failed for %s: expected %s %v, got %v",
				current.Path, current.Predicate.Operation, current.Predicate.Value, actual)
		}
	}

	return nil
}

// extractJSONValue parses an element's text content as JSON and selects the
// first value matching the JSONPath expression. The text is read raw:
// normalizing whitespace would alter string values inside the payload.
func extractJSONValue(doc *dom.Document, selector, pathExpr string) (any, error) {
	text, found, err := doc.RawText(selector)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: selector %s", props.ErrNotFound, selector)
	}

	var data any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("element %s does not contain valid JSON: %v", selector, err)
	}

	path, err := jsonpath.Parse(pathExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath %s: %v", pathExpr, err)
	}

	results := path.Select(data)
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: JSONPath %s", props.ErrNotFound, pathExpr)
	}

	return results[0], nil
}
