package execute

import (
	"errors"
	"testing"

	"github.com/pageq/pageq/internal/pageq/dom"
	"github.com/pageq/pageq/internal/pageq/model"
	"github.com/pageq/pageq/internal/pageq/predicate"
	"github.com/pageq/pageq/internal/pageq/props"
)

func TestBuildExpr(t *testing.T) {
	tests := []struct {
		name    string
		input   model.Predicate
		wantOp  predicate.Operator
		wantErr bool
	}{
		{
			name:   "equals with value",
			input:  model.Predicate{Operation: "equals", Value: "x", HasValue: true},
			wantOp: predicate.OpEquals,
		},
		{
			name:   "exists without value",
			input:  model.Predicate{Operation: "exists"},
			wantOp: predicate.OpExists,
		},
		{
			name:    "unknown operator",
			input:   model.Predicate{Operation: "wat", Value: "x", HasValue: true},
			wantErr: true,
		},
		{
			name:    "exists with value",
			input:   model.Predicate{Operation: "exists", Value: "x", HasValue: true},
			wantErr: true,
		},
		{
			name:    "equals without value",
			input:   model.Predicate{Operation: "equals"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := buildExpr(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildExpr() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && expr.Op != tt.wantOp {
				t.Errorf("buildExpr() op = %v, want %v", expr.Op, tt.wantOp)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	view := composeTestPage(t, model.Node{
		Scope: ".content",
		Properties: map[string]model.Property{
			"title": {Kind: model.KindText, Selector: "h1"},
		},
		Collections: map[string]model.Collection{
			"users": {
				Scope:     ".admins",
				ItemScope: "table tr",
				Item: &model.Node{
					Properties: map[string]model.Property{
						"first_name": {Kind: model.KindText, Selector: "td.first"},
					},
				},
			},
		},
	})

	tests := []struct {
		path    string
		want    any
		wantErr bool
	}{
		{path: "title", want: "Team"},
		{path: "users.count", want: 2},
		{path: "users[0].first_name", want: "Mary"},
		{path: "users[1].first_name", want: "John"},
		{path: "missing", wantErr: true},
		{path: "title.inner", wantErr: true},
		{path: "users[9].first_name", wantErr: true},
		{path: "users[0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := resolvePath(view, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolvePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("resolvePath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestResolvePathOutOfRangeIsNotFound(t *testing.T) {
	view := composeTestPage(t, model.Node{
		Scope: ".content",
		Collections: map[string]model.Collection{
			"users": {
				Scope:     ".admins",
				ItemScope: "table tr",
				Item: &model.Node{
					Properties: map[string]model.Property{
						"first_name": {Kind: model.KindText, Selector: "td.first"},
					},
				},
			},
		},
	})

	_, err := resolvePath(view, "users[9].first_name")
	if !errors.Is(err, props.ErrNotFound) {
		t.Errorf("resolvePath() error = %v, want props.ErrNotFound", err)
	}
}

func TestExtractJSONValue(t *testing.T) {
	doc, err := dom.ParseString(`<html><body>
<pre id="data">{"user": {"name": "mary", "roles": ["admin", "ops"]}}</pre>
<pre id="spaced">{"note": "two  spaces inside", "indent": "  leading"}</pre>
<pre id="junk">not json</pre>
</body></html>`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	t.Run("string value", func(t *testing.T) {
		got, err := extractJSONValue(doc, "#data", "$.user.name")
		if err != nil {
			t.Fatalf("extractJSONValue() error = %v", err)
		}
		if got != "mary" {
			t.Errorf("extractJSONValue() = %v, want mary", got)
		}
	})

	t.Run("whitespace inside strings survives", func(t *testing.T) {
		got, err := extractJSONValue(doc, "#spaced", "$.note")
		if err != nil {
			t.Fatalf("extractJSONValue() error = %v", err)
		}
		if got != "two  spaces inside" {
			t.Errorf("extractJSONValue() = %q, want %q", got, "two  spaces inside")
		}

		got, err = extractJSONValue(doc, "#spaced", "$.indent")
		if err != nil {
			t.Fatalf("extractJSONValue() error = %v", err)
		}
		if got != "  leading" {
			t.Errorf("extractJSONValue() = %q, want %q", got, "  leading")
		}
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := extractJSONValue(doc, "#data", "$.user.missing")
		if !errors.Is(err, props.ErrNotFound) {
			t.Errorf("extractJSONValue() error = %v, want props.ErrNotFound", err)
		}
	})

	t.Run("missing element", func(t *testing.T) {
		_, err := extractJSONValue(doc, "#nope", "$.user.name")
		if !errors.Is(err, props.ErrNotFound) {
			t.Errorf("extractJSONValue() error = %v, want props.ErrNotFound", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := extractJSONValue(doc, "#junk", "$.user.name"); err == nil {
			t.Error("extractJSONValue() expected error for invalid JSON")
		}
	})

	t.Run("invalid jsonpath", func(t *testing.T) {
		if _, err := extractJSONValue(doc, "#data", "not a path"); err == nil {
			t.Error("extractJSONValue() expected error for invalid JSONPath")
		}
	})
}
