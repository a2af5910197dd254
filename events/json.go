package events

import (
	"strconv"
	"strings"
)

// Field is one member of a JSON payload object. Disabled fields are skipped.
type Field struct {
	Key     string
	Value   string // Encoded JSON value
	Enabled bool
}

// String returns a string field. Empty strings are disabled.
func String(key, v string) Field {
	return StringIf(key, v, v != "")
}

// StringIf returns a string field enabled only when enabled is set and v is
// not empty.
func StringIf(key, v string, enabled bool) Field {
	if !enabled || v == "" {
		return Field{Key: key}
	}
	return Field{Key: key, Value: Quote(v), Enabled: true}
}

// Number returns an integer field.
func Number(key string, v int) Field {
	return NumberIf(key, v, true)
}

// NumberIf returns an integer field enabled only when enabled is set.
func NumberIf(key string, v int, enabled bool) Field {
	return Field{Key: key, Value: strconv.Itoa(v), Enabled: enabled}
}

// Bool returns a boolean field.
func Bool(key string, v bool) Field {
	return Field{Key: key, Value: strconv.FormatBool(v), Enabled: true}
}

// Raw returns a field holding already-encoded JSON.
func Raw(key, v string) Field {
	return Field{Key: key, Value: v, Enabled: true}
}

// Object joins the enabled fields into a JSON object, in argument order.
func Object(fields ...Field) string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for _, f := range fields {
		if !f.Enabled {
			continue
		}
		if !first {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(f.Key)
		sb.WriteString(`":`)
		sb.WriteString(f.Value)
		first = false
	}
	sb.WriteByte('}')
	return sb.String()
}

// Escape escapes backslash, quote, newline, carriage return and tab. Other
// control characters are dropped.
func Escape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c >= 0x20 {
				sb.WriteByte(c)
			}
		}
	}
	return sb.String()
}

// Quote returns s escaped and wrapped in double quotes.
func Quote(s string) string {
	return `"` + Escape(s) + `"`
}
