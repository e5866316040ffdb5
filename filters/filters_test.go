package filters

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/thomas-touhey/lscl/ast"
	"github.com/thomas-touhey/lscl/escape"
	"github.com/thomas-touhey/lscl/parser"
)

func mustParse(t *testing.T, input string, opts Options) Filters {
	t.Helper()
	f, err := Parse(input, escape.Options{}, opts)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return f
}

func hash(entries ...ast.HashEntry) ast.Hash {
	return ast.Hash{Entries: append([]ast.HashEntry{}, entries...)}
}

func entry(key string, v ast.Value) ast.HashEntry {
	return ast.HashEntry{Key: key, Value: v}
}

func str(s string) ast.String {
	return ast.String{Value: s}
}

func plugin(name string, entries ...ast.HashEntry) Filter {
	return Filter{Name: name, Config: hash(entries...)}
}

func TestParseBranching(t *testing.T) {
	got := mustParse(t, `if [type] == "apache" { mutate { add_tag => "web" } } else { mutate { add_tag => "other" } }`, Options{})
	expected := Filters{
		Branching{Branches: []Branch{
			{
				Condition: ast.Comparison{
					Left:  ast.FieldReference{Path: []string{"type"}},
					Op:    ast.Eq,
					Right: ast.Literal{Value: str("apache")},
				},
				Body: Filters{plugin("mutate", entry("add_tag", str("web")))},
			},
			{
				Body: Filters{plugin("mutate", entry("add_tag", str("other")))},
			},
		}},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Parse() = %#v, expected %#v", got, expected)
	}
}

const pipeline = `
input { stdin {} }
filter { a {} }
if [x] {
  filter { b {} }
  output { c {} }
} else {
  output { d {} }
}
"filter" { e { id => "E" } }
output { f {} }
`

func TestFindSection(t *testing.T) {
	got := mustParse(t, pipeline, Options{Scope: ScopeSection})
	expected := Filters{
		plugin("a"),
		Branching{Branches: []Branch{
			{Condition: ast.FieldReference{Path: []string{"x"}}, Body: Filters{plugin("b")}},
			{Body: Filters{}},
		}},
		Filter{Name: "e", Label: "E", Config: hash(entry("id", str("E")))},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Parse() = %#v, expected %#v", got, expected)
	}

	auto := mustParse(t, pipeline, Options{})
	if !reflect.DeepEqual(auto, expected) {
		t.Errorf("auto scope: Parse() = %#v, expected %#v", auto, expected)
	}
}

func TestFindSectionScopes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     Options
		expected Filters
	}{
		{
			name:     "auto without section",
			input:    `a {} b { x => 1 }`,
			expected: Filters{plugin("a"), plugin("b", entry("x", ast.Int(1)))},
		},
		{
			name:     "auto with empty section",
			input:    `filter {} a {}`,
			expected: Filters{},
		},
		{
			name:     "section without section",
			input:    `a {}`,
			opts:     Options{Scope: ScopeSection},
			expected: Filters{},
		},
		{
			name:     "root",
			input:    `filter { a {} }`,
			opts:     Options{Scope: ScopeRoot},
			expected: Filters{plugin("filter", entry("a", hash()))},
		},
		{
			name:     "custom section",
			input:    `filter { a {} } output { b {} }`,
			opts:     Options{Section: "output"},
			expected: Filters{plugin("b")},
		},
		{
			name:  "conditional without section content",
			input: `filter { a {} } if [x] { output { b {} } }`,
			expected: Filters{
				plugin("a"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.input, tt.opts)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Parse() = %#v, expected %#v", got, tt.expected)
			}
		})
	}
}

func TestExtractConfig(t *testing.T) {
	got := mustParse(t, `filter {
  elasticsearch {
    codec { json { charset => "UTF-8" } }
    hosts => ["a"]
    %{[a][b]} => 1
    id => 42
  }
}`, Options{})
	expected := Filters{
		Filter{Name: "elasticsearch", Config: hash(
			entry("codec", hash(entry("json", hash(entry("charset", str("UTF-8")))))),
			entry("hosts", ast.Array{Items: []ast.Value{str("a")}}),
			entry("%{[a][b]}", ast.Int(1)),
			entry("id", ast.Int(42)),
		)},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Parse() = %#v, expected %#v", got, expected)
	}
}

const duplicates = `mutate {
  add_tag => ["a"]
  add_tag => "b"
  remove_field => x
  add_field => { k => 1 }
  add_field => { k => 2 l => 3 }
  remove_field => y
}`

func TestDuplicatePolicies(t *testing.T) {
	tests := []struct {
		policy   DuplicatePolicy
		expected Filters
	}{
		{
			policy: DuplicateLastWins,
			expected: Filters{plugin("mutate",
				entry("add_tag", str("b")),
				entry("remove_field", str("y")),
				entry("add_field", hash(entry("k", ast.Int(2)), entry("l", ast.Int(3)))),
			)},
		},
		{
			policy: DuplicateMerge,
			expected: Filters{plugin("mutate",
				entry("add_tag", ast.Array{Items: []ast.Value{str("a"), str("b")}}),
				entry("remove_field", ast.Array{Items: []ast.Value{str("x"), str("y")}}),
				entry("add_field", hash(entry("k", ast.Int(2)), entry("l", ast.Int(3)))),
			)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			got := mustParse(t, duplicates, Options{Duplicates: tt.policy})
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Parse() = %#v, expected %#v", got, tt.expected)
			}
		})
	}

	t.Run("reject", func(t *testing.T) {
		_, err := Parse(duplicates, escape.Options{}, Options{Duplicates: DuplicateReject})
		var eerr *ExtractionError
		if !errors.As(err, &eerr) {
			t.Fatalf("expected *ExtractionError, got %T (%v)", err, err)
		}
		if got := eerr.Error(); got != "mutate > add_tag: setting defined more than once" {
			t.Errorf("Error() = %q", got)
		}
	})
}

func TestMergeDoesNotAlias(t *testing.T) {
	items := make([]ast.Value, 1, 4)
	items[0] = str("a")
	prev := ast.Array{Items: items}
	merged := merge(prev, str("b")).(ast.Array)
	merged.Items[0] = str("changed")
	if prev.Items[0] != str("a") {
		t.Errorf("merge modified its input: %#v", prev)
	}
}

func TestExtractionErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		path  []string
		msg   string
	}{
		{"attribute in section", `filter { add_tag => "x" }`, []string{"add_tag"}, "attribute outside of a plugin block"},
		{"attribute in branch", `filter { if [a] { b => 1 } }`, []string{"branch 1", "b"}, "attribute outside of a plugin block"},
		{"attribute in else", `filter { if [a] {} else { %{c} => 1 } }`, []string{"branch 2", "%{c}"}, "attribute outside of a plugin block"},
		{"conditional in plugin", `filter { mutate { if [a] { x => 1 } } }`, []string{"mutate"}, "conditional inside a plugin block"},
		{"nested section", `filter { if [a] { filter {} } }`, []string{"branch 1", "filter"}, "section block nested in filter content"},
		{"conditional in nested block", `filter { if [a] { mutate { codec { if [a] {} } } } }`, []string{"branch 1", "mutate", "codec"}, "conditional inside a plugin block"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, escape.Options{}, Options{})
			var eerr *ExtractionError
			if !errors.As(err, &eerr) {
				t.Fatalf("expected *ExtractionError, got %T (%v)", err, err)
			}
			if !reflect.DeepEqual(eerr.Path, tt.path) {
				t.Errorf("Path = %q, expected %q", eerr.Path, tt.path)
			}
			if eerr.Msg != tt.msg {
				t.Errorf("Msg = %q, expected %q", eerr.Msg, tt.msg)
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse(`filter { mutate add_tag => "x" } }`, escape.Options{}, Options{})
	var perr *parser.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *parser.ParseError, got %T (%v)", err, err)
	}
	if perr.Pos.Offset != 16 {
		t.Errorf("Pos.Offset = %d, expected 16", perr.Pos.Offset)
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		filters  Filters
		expected string
	}{
		{
			name: "single filter",
			filters: Filters{
				plugin("mutate", entry("add_field", hash(entry("hello.world", ast.Int(42))))),
			},
			expected: "mutate {\n  add_field => {\n    \"hello.world\" => 42\n  }\n}\n",
		},
		{
			name: "branching",
			filters: Filters{
				Branching{Branches: []Branch{
					{
						Condition: ast.Comparison{
							Left:  ast.FieldReference{Path: []string{"power"}},
							Op:    ast.Greater,
							Right: ast.Literal{Value: ast.Int(9000)},
						},
						Body: Filters{plugin("mutate", entry("convert", hash(entry("power", str("string")))))},
					},
					{Body: Filters{plugin("age")}},
				}},
			},
			expected: "if [power] > 9000 {\n  mutate {\n    convert => {\n      power => string\n    }\n  }\n} else {\n  age {}\n}\n",
		},
		{
			name: "labelled",
			filters: Filters{
				Filter{Name: "grok", Label: "parse", Config: hash(entry("id", str("parse")))},
			},
			expected: "grok {\n  id => parse\n}\n",
		},
		{
			name:     "empty",
			filters:  Filters{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.filters, escape.Options{})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Render() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestRenderLabelMismatch(t *testing.T) {
	tests := []Filter{
		{Name: "grok", Label: "a", Config: hash(entry("id", str("b")))},
		{Name: "grok", Label: "a", Config: hash()},
		{Name: "grok", Label: "a", Config: hash(entry("id", ast.Int(1)))},
		{Name: "grok", Config: hash(entry("id", str("b")))},
	}

	for _, f := range tests {
		_, err := Render(Filters{f}, escape.Options{})
		var perr *parser.ParseError
		if !errors.As(err, &perr) {
			t.Errorf("%#v: expected *parser.ParseError, got %T (%v)", f, err, err)
			continue
		}
		if !strings.Contains(err.Error(), "does not match") {
			t.Errorf("%#v: unexpected error %v", f, err)
		}
	}
}

func TestRenderSectionName(t *testing.T) {
	_, err := Render(Filters{Filter{Name: DefaultSection, Config: hash()}}, escape.Options{})
	var perr *parser.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *parser.ParseError, got %T (%v)", err, err)
	}
	if !strings.Contains(err.Error(), "collides with the filter section") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	inputs := []struct {
		name  string
		input string
		opts  escape.Options
	}{
		{
			name: "branches",
			input: `filter {
  grok { id => "g1" match => { "message" => "%{WORD:w}" } }
  if [w] == "x" and "t" in [tags] {
    mutate { add_tag => ["a", "b"] %{[x][y]} => 1 }
    if [z] =~ /q\/r/ { drop {} }
  } else if ![w] {
  } else {
    elasticsearch { hosts => ["h"] codec { json {} } }
  }
}`,
		},
		{
			name:  "escapes",
			input: `filter { mutate { gsub => ["f", "\\", "\""] } if [a%5B0%5D] { x { y => 'z' } } }`,
			opts:  escape.Options{SupportEscapes: true, FieldReferenceStyle: escape.StylePercent},
		},
	}

	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.input, tt.opts, Options{})
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			out, err := Render(f, tt.opts)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			again, err := Parse(out, tt.opts, Options{})
			if err != nil {
				t.Fatalf("Parse(rendered) error = %v\n%s", err, out)
			}
			if !reflect.DeepEqual(f, again) {
				t.Errorf("round trip changed the filters\nrendered:\n%s\nbefore: %#v\nafter:  %#v", out, f, again)
			}
		})
	}
}

func TestOptionNames(t *testing.T) {
	for _, s := range []Scope{ScopeAuto, ScopeRoot, ScopeSection} {
		got, err := ParseScope(strings.ToUpper(s.String()))
		if err != nil || got != s {
			t.Errorf("ParseScope(%q) = %v, %v", s, got, err)
		}
	}
	for _, p := range []DuplicatePolicy{DuplicateLastWins, DuplicateReject, DuplicateMerge} {
		got, err := ParseDuplicatePolicy(p.String())
		if err != nil || got != p {
			t.Errorf("ParseDuplicatePolicy(%q) = %v, %v", p, got, err)
		}
	}
	if _, err := ParseScope("everywhere"); err == nil {
		t.Error("expected error for unknown scope")
	}
	if _, err := ParseDuplicatePolicy("first-wins"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
