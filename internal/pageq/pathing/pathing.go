// Package pathing parses the property paths check files use to address
// values inside a composed page, e.g. "users[1].first_name" or
// "users.count".
package pathing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrPath indicates a malformed property path.
var ErrPath = errors.New("invalid property path")

func pathError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPath, fmt.Sprintf(format, args...))
}

// Segment is one step of a property path: a property name and an optional
// zero-based collection index.
type Segment struct {
	Name  string
	Index *int
}

// String renders the segment in path syntax.
func (s Segment) String() string {
	if s.Index == nil {
		return s.Name
	}
	return fmt.Sprintf("%s[%d]", s.Name, *s.Index)
}

// Parse splits a property path into segments.
func Parse(path string) ([]Segment, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, pathError("path is empty")
	}

	var segments []Segment
	pos := 0
	for pos < len(path) {
		start := pos
		for pos < len(path) && isNamePart(path[pos]) {
			pos++
		}
		name := path[start:pos]
		if name == "" {
			return nil, pathError("%q: expected property name at position %d", path, start)
		}

		segment := Segment{Name: name}

		if pos < len(path) && path[pos] == '[' {
			end := strings.IndexByte(path[pos:], ']')
			if end < 0 {
				return nil, pathError("%q: unterminated index at position %d", path, pos)
			}
			index, err := strconv.Atoi(path[pos+1 : pos+end])
			if err != nil || index < 0 {
				return nil, pathError("%q: index must be a non-negative integer at position %d", path, pos)
			}
			segment.Index = &index
			pos += end + 1
		}

		segments = append(segments, segment)

		if pos < len(path) {
			if path[pos] != '.' {
				return nil, pathError("%q: unexpected %q at position %d", path, path[pos], pos)
			}
			pos++
			if pos == len(path) {
				return nil, pathError("%q: trailing separator", path)
			}
		}
	}

	return segments, nil
}

func isNamePart(char byte) bool {
	switch {
	case char >= 'a' && char <= 'z':
		return true
	case char >= 'A' && char <= 'Z':
		return true
	case char >= '0' && char <= '9':
		return true
	case char == '_' || char == '-':
		return true
	default:
		return false
	}
}
