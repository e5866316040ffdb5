// Package escape holds the escaping configuration shared by the LSCL parser
// and renderers, along with the string and field-reference codecs it drives.
package escape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Style mirrors Logstash's config.field_reference.escape_style setting.
type Style int

const (
	StyleNone Style = iota
	StylePercent
	StyleAmpersand
)

func (s Style) String() string {
	switch s {
	case StyleNone:
		return "none"
	case StylePercent:
		return "percent"
	case StyleAmpersand:
		return "ampersand"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle parses the Logstash setting value ("none", "percent" or
// "ampersand").
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return StyleNone, nil
	case "percent":
		return StylePercent, nil
	case "ampersand":
		return StyleAmpersand, nil
	}
	return StyleNone, fmt.Errorf("unknown field reference escape style %q", s)
}

// Options is the configuration record passed to every parse and render call.
// SupportEscapes mirrors config.support_escapes and FieldReferenceStyle
// mirrors config.field_reference.escape_style. The zero value matches an
// unconfigured Logstash instance.
type Options struct {
	SupportEscapes      bool
	FieldReferenceStyle Style
}

var escapeChars = map[byte]byte{
	'"':  '"',
	'\'': '\'',
	'\\': '\\',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'0':  0,
}

// Unquote decodes the body of a quoted string (delimiters already removed).
// When escapes are not supported the body is returned unchanged. On an invalid
// escape sequence it returns the byte offset of the backslash within body.
func Unquote(body string, supportEscapes bool) (string, int, error) {
	if !supportEscapes || !strings.Contains(body, `\`) {
		return body, 0, nil
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' {
			b.WriteByte(body[i])
			continue
		}
		if i+1 >= len(body) {
			return "", i, fmt.Errorf("dangling backslash")
		}
		c := body[i+1]
		if r, ok := escapeChars[c]; ok {
			b.WriteByte(r)
			i++
			continue
		}
		if c == 'u' {
			if i+6 > len(body) {
				return "", i, fmt.Errorf("truncated unicode escape")
			}
			v, err := strconv.ParseUint(body[i+2:i+6], 16, 32)
			if err != nil {
				return "", i, fmt.Errorf("invalid unicode escape %q", body[i:i+6])
			}
			b.WriteRune(rune(v))
			i += 5
			continue
		}
		return "", i, fmt.Errorf("invalid escape sequence %q", body[i:i+2])
	}
	return b.String(), 0, nil
}

// Quote renders s as a quoted LSCL string. Double quotes are preferred; single
// quotes are used when s contains a double quote but no single quote.
func Quote(s string, supportEscapes bool) (string, error) {
	delim := byte('"')
	if strings.IndexByte(s, '"') >= 0 && strings.IndexByte(s, '\'') < 0 {
		delim = '\''
	}

	if !supportEscapes {
		// Without escapes the body is kept verbatim, so it must lex as a
		// single string token between the chosen delimiters.
		if trailingBackslashes(s)%2 == 1 {
			return "", fmt.Errorf("string %q ends with a backslash and escapes are disabled", s)
		}
		for _, d := range []byte{delim, otherQuote(delim)} {
			if !unescapedDelimiter(s, d) {
				return string(d) + s + string(d), nil
			}
		}
		return "", fmt.Errorf("string %q holds both unescaped quote kinds and escapes are disabled", s)
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(delim)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == rune(delim):
			b.WriteByte('\\')
			b.WriteByte(delim)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == 0:
			b.WriteString(`\0`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	b.WriteByte(delim)
	return b.String(), nil
}

func otherQuote(delim byte) byte {
	if delim == '"' {
		return '\''
	}
	return '"'
}

// unescapedDelimiter reports whether s holds delim outside a backslash pair.
func unescapedDelimiter(s string, delim byte) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case delim:
			return true
		}
	}
	return false
}

func trailingBackslashes(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n
}

var (
	percentEscaped   = regexp.MustCompile(`%([0-9A-F]{2})`)
	ampersandEscaped = regexp.MustCompile(`&#([0-9]{2,});`)
)

// DecodeSegment decodes one field-reference path segment according to style.
func DecodeSegment(seg string, style Style) (string, error) {
	switch style {
	case StyleNone:
		return seg, nil
	case StylePercent:
		return percentEscaped.ReplaceAllStringFunc(seg, func(m string) string {
			v, _ := strconv.ParseUint(m[1:], 16, 8)
			return string(rune(v))
		}), nil
	case StyleAmpersand:
		var err error
		out := ampersandEscaped.ReplaceAllStringFunc(seg, func(m string) string {
			v, perr := strconv.ParseUint(m[2:len(m)-1], 10, 32)
			if perr != nil || !utf8.ValidRune(rune(v)) {
				err = fmt.Errorf("invalid character reference %q", m)
				return m
			}
			return string(rune(v))
		})
		return out, err
	}
	return "", fmt.Errorf("unsupported escape style %v", style)
}

// EncodeSegment encodes one field-reference path segment so that it survives
// a selector (`[seg]`) or a `%{...}` reference. With StyleNone the segment is
// returned as is; callers check it against the delimiters of their context.
func EncodeSegment(seg string, style Style) (string, error) {
	if seg == "" {
		return "", fmt.Errorf("empty field reference segment")
	}
	switch style {
	case StyleNone:
		return seg, nil
	case StylePercent:
		seg = percentEscaped.ReplaceAllString(seg, "%25$1")
		return strings.NewReplacer("[", "%5B", "]", "%5D", ",", "%2C", "}", "%7D").Replace(seg), nil
	case StyleAmpersand:
		seg = ampersandEscaped.ReplaceAllString(seg, "&#38;#$1;")
		return strings.NewReplacer("[", "&#91;", "]", "&#93;", ",", "&#44;", "}", "&#125;").Replace(seg), nil
	}
	return "", fmt.Errorf("unsupported escape style %v", style)
}
