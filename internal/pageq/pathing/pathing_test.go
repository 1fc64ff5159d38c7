package pathing

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []string
	}{
		{"single name", "count", []string{"count"}},
		{"dotted", "users.count", []string{"users", "count"}},
		{"indexed", "users[1].first_name", []string{"users[1]", "first_name"}},
		{"nested indexes", "rows[0].tags[2].label", []string{"rows[0]", "tags[2]", "label"}},
		{"dash and underscore", "nav-bar.page_title", []string{"nav-bar", "page_title"}},
		{"surrounding whitespace", "  users.count  ", []string{"users", "count"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, err := Parse(tt.path)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.path, err)
			}
			if len(segments) != len(tt.want) {
				t.Fatalf("Parse(%q) = %d segments, want %d", tt.path, len(segments), len(tt.want))
			}
			for i, segment := range segments {
				if segment.String() != tt.want[i] {
					t.Errorf("segment %d = %q, want %q", i, segment.String(), tt.want[i])
				}
			}
		})
	}
}

func TestParseIndexes(t *testing.T) {
	segments, err := Parse("users[3]")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if segments[0].Index == nil || *segments[0].Index != 3 {
		t.Errorf("Index = %v, want 3", segments[0].Index)
	}

	segments, err = Parse("users.count")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if segments[0].Index != nil {
		t.Errorf("Index = %v, want nil", segments[0].Index)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"leading dot", ".users"},
		{"trailing dot", "users."},
		{"double dot", "users..count"},
		{"unterminated index", "users[1"},
		{"non-numeric index", "users[one]"},
		{"negative index", "users[-1]"},
		{"bare index", "[0]"},
		{"unexpected character", "users!count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.path); !errors.Is(err, ErrPath) {
				t.Errorf("Parse(%q) error = %v, want ErrPath", tt.path, err)
			}
		})
	}
}
