package escape

import (
	"strings"
	"testing"
)

func TestUnquote(t *testing.T) {
	tests := []struct {
		body     string
		escapes  bool
		expected string
	}{
		{`plain`, true, "plain"},
		{`a\nb`, false, `a\nb`},
		{`a\nb`, true, "a\nb"},
		{`\"\'\\`, true, `"'\`},
		{`\r\t\0`, true, "\r\t\x00"},
		{`café`, true, "café"},
		{`a\qb`, false, `a\qb`},
	}

	for _, tt := range tests {
		got, _, err := Unquote(tt.body, tt.escapes)
		if err != nil {
			t.Errorf("Unquote(%q, %v) error = %v", tt.body, tt.escapes, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("Unquote(%q, %v) = %q, expected %q", tt.body, tt.escapes, got, tt.expected)
		}
	}
}

func TestUnquoteErrors(t *testing.T) {
	tests := []struct {
		body   string
		at     int
		errMsg string
	}{
		{`a\`, 1, "dangling backslash"},
		{`x\q`, 1, "invalid escape sequence"},
		{`\u12`, 0, "truncated unicode escape"},
		{`ab\uzzzz`, 2, "invalid unicode escape"},
	}

	for _, tt := range tests {
		_, at, err := Unquote(tt.body, true)
		if err == nil {
			t.Errorf("Unquote(%q) expected error", tt.body)
			continue
		}
		if at != tt.at {
			t.Errorf("Unquote(%q) offset = %d, expected %d", tt.body, at, tt.at)
		}
		if !strings.Contains(err.Error(), tt.errMsg) {
			t.Errorf("Unquote(%q) error = %q, expected %q", tt.body, err, tt.errMsg)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		s        string
		escapes  bool
		expected string
	}{
		{"abc", false, `"abc"`},
		{"it's", false, `"it's"`},
		{`say "x"`, false, `'say "x"'`},
		{`a\\`, false, `"a\\"`},
		{`a\"b'`, false, `"a\"b'"`},
		{`it\'s "q"`, false, `'it\'s "q"'`},
		{`\'"`, false, `'\'"'`},
		{`say "x"`, true, `'say "x"'`},
		{`"it's"`, true, `"\"it's\""`},
		{"a\x01\x7f", true, `"a\u0001\u007f"`},
		{"\x00\n", true, `"\0\n"`},
		{`\`, true, `"\\"`},
		{"été", true, `"été"`},
	}

	for _, tt := range tests {
		got, err := Quote(tt.s, tt.escapes)
		if err != nil {
			t.Errorf("Quote(%q, %v) error = %v", tt.s, tt.escapes, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("Quote(%q, %v) = %s, expected %s", tt.s, tt.escapes, got, tt.expected)
		}
		back, _, err := Unquote(got[1:len(got)-1], tt.escapes)
		if err != nil || back != tt.s {
			t.Errorf("Unquote(Quote(%q)) = %q, %v", tt.s, back, err)
		}
	}
}

func TestQuoteErrors(t *testing.T) {
	for _, s := range []string{`"'`, `\"'"`, `"'\"`, `a\`, `a\\\`} {
		if _, err := Quote(s, false); err == nil {
			t.Errorf("Quote(%q, false) expected error", s)
		}
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		s        string
		expected Style
	}{
		{"", StyleNone},
		{"none", StyleNone},
		{"Percent", StylePercent},
		{" ampersand ", StyleAmpersand},
	}

	for _, tt := range tests {
		got, err := ParseStyle(tt.s)
		if err != nil || got != tt.expected {
			t.Errorf("ParseStyle(%q) = %v, %v, expected %v", tt.s, got, err, tt.expected)
		}
	}
	if _, err := ParseStyle("html"); err == nil {
		t.Error("expected error for unknown style")
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		seg     string
		style   Style
		encoded string
	}{
		{"a[b]", StyleNone, "a[b]"},
		{"a[b]", StylePercent, "a%5Bb%5D"},
		{"x,y}", StylePercent, "x%2Cy%7D"},
		{"50%2C", StylePercent, "50%252C"},
		{"100%", StylePercent, "100%"},
		{"a[b]", StyleAmpersand, "a&#91;b&#93;"},
		{"x,y}", StyleAmpersand, "x&#44;y&#125;"},
		{"a&#91;", StyleAmpersand, "a&#38;#91;"},
	}

	for _, tt := range tests {
		t.Run(tt.style.String()+"/"+tt.seg, func(t *testing.T) {
			enc, err := EncodeSegment(tt.seg, tt.style)
			if err != nil {
				t.Fatalf("EncodeSegment() error = %v", err)
			}
			if enc != tt.encoded {
				t.Errorf("EncodeSegment() = %q, expected %q", enc, tt.encoded)
			}
			dec, err := DecodeSegment(enc, tt.style)
			if err != nil {
				t.Fatalf("DecodeSegment() error = %v", err)
			}
			if dec != tt.seg {
				t.Errorf("DecodeSegment() = %q, expected %q", dec, tt.seg)
			}
		})
	}
}

func TestSegmentErrors(t *testing.T) {
	if _, err := EncodeSegment("", StylePercent); err == nil {
		t.Error("expected error for empty segment")
	}
	if _, err := DecodeSegment("a&#55296;", StyleAmpersand); err == nil {
		t.Error("expected error for surrogate character reference")
	}
	if _, err := DecodeSegment("a", Style(9)); err == nil {
		t.Error("expected error for unknown style")
	}
}
