// Package predicate evaluates check-file assertions against resolved page
// property values.
package predicate

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"sync"
)

var (
	ErrInvalidInput = errors.New("invalid predicate input")
	ErrUnsupported  = errors.New("unsupported predicate operation")
)

// Operator names a predicate operation as written in check files.
type Operator string

const (
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "not_equals"
	OpContains           Operator = "contains"
	OpNotContains        Operator = "not_contains"
	OpStartsWith         Operator = "starts_with"
	OpEndsWith           Operator = "ends_with"
	OpRegex              Operator = "regex"
	OpExists             Operator = "exists"
	OpLength             Operator = "length"
	OpGreaterThan        Operator = "greater_than"
	OpLessThan           Operator = "less_than"
	OpGreaterThanOrEqual Operator = "greater_than_or_equal"
	OpLessThanOrEqual    Operator = "less_than_or_equal"
)

var supportedOperatorSet = map[Operator]struct{}{
	OpEquals:             {},
	OpNotEquals:          {},
	OpContains:           {},
	OpNotContains:        {},
	OpStartsWith:         {},
	OpEndsWith:           {},
	OpRegex:              {},
	OpExists:             {},
	OpLength:             {},
	OpGreaterThan:        {},
	OpLessThan:           {},
	OpGreaterThanOrEqual: {},
	OpLessThanOrEqual:    {},
}

// Expr is a parsed predicate: an operator plus its optional expected value.
type Expr struct {
	Op       Operator
	Value    any
	HasValue bool
}

// ParseOperator validates an operator name from a check file.
func ParseOperator(input string) (Operator, error) {
	op := Operator(input)
	if _, ok := supportedOperatorSet[op]; ok {
		return op, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, input)
}

// ValidateExpr checks operator and value arity before evaluation.
func ValidateExpr(expr Expr) error {
	if _, ok := supportedOperatorSet[expr.Op]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupported, expr.Op)
	}

	if expr.Op == OpExists {
		if expr.HasValue {
			return fmt.Errorf("%w: operation %q does not accept a value", ErrInvalidInput, expr.Op)
		}
		return nil
	}

	if !expr.HasValue {
		return fmt.Errorf("%w: operation %q requires a value", ErrInvalidInput, expr.Op)
	}

	return nil
}

type operationFunc func(actual any, expected any) (bool, error)

// Evaluator evaluates predicate expressions. It caches compiled regex
// patterns, so a shared evaluator amortizes repeated regex assertions.
type Evaluator struct {
	operations map[Operator]operationFunc

	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

// NewEvaluator builds an evaluator with the full operation set.
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		patterns: make(map[string]*regexp.Regexp),
	}

	e.operations = map[Operator]operationFunc{
		OpEquals: func(actual, expected any) (bool, error) {
			return equalValues(actual, expected), nil
		},
		OpNotEquals: func(actual, expected any) (bool, error) {
			return !equalValues(actual, expected), nil
		},
		OpContains:    stringComparison(OpContains, strings.Contains),
		OpNotContains: stringComparison(OpNotContains, func(a, b string) bool { return !strings.Contains(a, b) }),
		OpStartsWith:  stringComparison(OpStartsWith, strings.HasPrefix),
		OpEndsWith:    stringComparison(OpEndsWith, strings.HasSuffix),
		OpRegex:       e.evaluateRegex,
		OpExists: func(actual, _ any) (bool, error) {
			return evaluateExists(actual), nil
		},
		OpLength:             evaluateLength,
		OpGreaterThan:        numericComparison(OpGreaterThan, func(a, b float64) bool { return a > b }),
		OpLessThan:           numericComparison(OpLessThan, func(a, b float64) bool { return a < b }),
		OpGreaterThanOrEqual: numericComparison(OpGreaterThanOrEqual, func(a, b float64) bool { return a >= b }),
		OpLessThanOrEqual:    numericComparison(OpLessThanOrEqual, func(a, b float64) bool { return a <= b }),
	}

	return e
}

// Evaluate reports whether the actual value satisfies the expression.
func (e *Evaluator) Evaluate(expr Expr, actual any) (bool, error) {
	if err := ValidateExpr(expr); err != nil {
		return false, err
	}

	opFunc, ok := e.operations[expr.Op]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnsupported, expr.Op)
	}

	return opFunc(actual, expr.Value)
}

func (e *Evaluator) compileRegex(pattern string) (*regexp.Regexp, error) {
	e.mu.RLock()
	compiled, ok := e.patterns[pattern]
	e.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid regex %q: %v", ErrInvalidInput, pattern, err)
	}

	e.mu.Lock()
	e.patterns[pattern] = compiled
	e.mu.Unlock()

	return compiled, nil
}

func (e *Evaluator) evaluateRegex(actual, expected any) (bool, error) {
	actualString, err := requireString(OpRegex, "actual", actual)
	if err != nil {
		return false, err
	}
	pattern, err := requireString(OpRegex, "expected", expected)
	if err != nil {
		return false, err
	}

	regex, err := e.compileRegex(pattern)
	if err != nil {
		return false, err
	}

	return regex.MatchString(actualString), nil
}

func equalValues(actual, expected any) bool {
	if reflect.DeepEqual(actual, expected) {
		return true
	}

	actualNumber, actualOK := toFloat64(actual)
	expectedNumber, expectedOK := toFloat64(expected)
	if actualOK && expectedOK {
		return actualNumber == expectedNumber
	}

	return false
}

func evaluateExists(actual any) bool {
	if actual == nil {
		return false
	}

	value := reflect.ValueOf(actual)
	switch value.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return value.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !value.IsNil()
	default:
		return true
	}
}

func evaluateLength(actual, expected any) (bool, error) {
	expectedNumber, ok := toFloat64(expected)
	if !ok || expectedNumber != math.Trunc(expectedNumber) {
		return false, fmt.Errorf("%w: %q requires integer expected value, got %v (%T)", ErrInvalidInput, OpLength, expected, expected)
	}
	expectedLength := int(expectedNumber)

	if actual == nil {
		return false, fmt.Errorf("%w: %q requires string/slice/map actual value, got nil", ErrInvalidInput, OpLength)
	}

	actualValue := reflect.ValueOf(actual)
	switch actualValue.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return actualValue.Len() == expectedLength, nil
	default:
		return false, fmt.Errorf("%w: %q requires string/slice/map actual value, got %T", ErrInvalidInput, OpLength, actual)
	}
}

func stringComparison(op Operator, compare func(actual, expected string) bool) operationFunc {
	return func(actual, expected any) (bool, error) {
		actualString, err := requireString(op, "actual", actual)
		if err != nil {
			return false, err
		}
		expectedString, err := requireString(op, "expected", expected)
		if err != nil {
			return false, err
		}
		return compare(actualString, expectedString), nil
	}
}

func numericComparison(op Operator, compare func(a, b float64) bool) operationFunc {
	return func(actual, expected any) (bool, error) {
		actualNumber, actualOK := toFloat64(actual)
		expectedNumber, expectedOK := toFloat64(expected)
		if !actualOK || !expectedOK {
			return false, fmt.Errorf("%w: %q requires numeric values, got %T and %T", ErrInvalidInput, op, actual, expected)
		}
		return compare(actualNumber, expectedNumber), nil
	}
}

func requireString(op Operator, side string, value any) (string, error) {
	stringValue, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q requires string %s value, got %T", ErrInvalidInput, op, side, value)
	}
	return stringValue, nil
}
