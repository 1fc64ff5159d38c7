package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml/ast"
)

// Predicate is a parsed assertion predicate. Semantic validation happens in
// the predicate package at evaluation time; this type only carries YAML.
type Predicate struct {
	Operation string
	Value     any
	HasValue  bool
}

// UnmarshalYAML decodes a predicate from YAML. Predicate syntax is strict:
//
//	op: <operator>
//	value: <any>   # optional only for "exists"
func (p *Predicate) UnmarshalYAML(node ast.Node) error {
	mapNode, ok := node.(*ast.MappingNode)
	if !ok {
		return errors.New("predicate must be a mapping")
	}
	if len(mapNode.Values) == 0 {
		return errors.New("predicate mapping is empty")
	}

	for _, valNode := range mapNode.Values {
		key, ok := valNode.Key.(*ast.StringNode)
		if !ok {
			return errors.New("predicate key must be a string")
		}

		switch key.Value {
		case "op":
			opNode, ok := valNode.Value.(*ast.StringNode)
			if !ok {
				return errors.New("op value must be a string")
			}
			op := strings.TrimSpace(opNode.Value)
			if op == "" {
				return errors.New("op value must not be empty")
			}
			p.Operation = op
		case "value":
			value, err := nodeToValue(valNode.Value)
			if err != nil {
				return fmt.Errorf("failed to parse value: %w", err)
			}
			p.Value = value
			p.HasValue = true
		default:
			return fmt.Errorf("unsupported predicate key %q: use 'op' and optional 'value'", key.Value)
		}
	}

	if p.Operation == "" {
		return errors.New("predicate must specify an op")
	}

	return nil
}

// nodeToValue extracts values from AST nodes.
// Integer node values are normalized to int64, floats are always float64.
func nodeToValue(node ast.Node) (any, error) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		if n.Value == nil {
			return nil, errors.New("integer node has nil value")
		}
		if v, ok := n.Value.(int64); ok {
			return v, nil
		}
		if v, ok := n.Value.(uint64); ok {
			return int64(v), nil
		}
		return nil, fmt.Errorf("unexpected integer node value type: %T", n.Value)
	case *ast.FloatNode:
		return n.Value, nil
	case *ast.StringNode:
		return n.Value, nil
	case *ast.BoolNode:
		return n.Value, nil
	case *ast.NullNode:
		return nil, nil
	case *ast.SequenceNode:
		var result []any
		for i, item := range n.Values {
			val, err := nodeToValue(item)
			if err != nil {
				return nil, fmt.Errorf("invalid value at index %d: %w", i, err)
			}
			result = append(result, val)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported node type: %T", node)
	}
}

// unmarshalAssertWithField splits a named field off a mapping node and
// decodes the remaining keys as the inline predicate.
func unmarshalAssertWithField(node ast.Node, fieldNames []string, assign func(name, value string), predicate *Predicate, typeName string) error {
	mapNode, ok := node.(*ast.MappingNode)
	if !ok {
		return fmt.Errorf("%w: %s: expected mapping node", ErrModel, typeName)
	}

	fieldSet := make(map[string]struct{}, len(fieldNames))
	for _, name := range fieldNames {
		fieldSet[name] = struct{}{}
	}

	var predNode *ast.MappingNode
	for _, valNode := range mapNode.Values {
		keyNode, ok := valNode.Key.(*ast.StringNode)
		if !ok {
			return fmt.Errorf("%w: %s: key must be string", ErrModel, typeName)
		}

		if _, isField := fieldSet[keyNode.Value]; isField {
			stringVal, ok := valNode.Value.(*ast.StringNode)
			if !ok {
				return fmt.Errorf("%w: %s: %s value must be string", ErrModel, typeName, keyNode.Value)
			}
			assign(keyNode.Value, stringVal.Value)
			continue
		}

		if predNode == nil {
			predNode = &ast.MappingNode{}
		}
		predNode.Values = append(predNode.Values, valNode)
	}

	if predNode != nil {
		if err := predicate.UnmarshalYAML(predNode); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrModel, typeName, err)
		}
	}

	return nil
}
