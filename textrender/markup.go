package textrender

import (
	"strconv"
	"strings"
)

// Markup tags:
//
//	<f:m>…</f>  <f:r>…</f>  <f:i>…</f>            font: modern, retro, icon
//	<b:bright>…</b>  <b:dim>…</b>  <b:180>…</b>  brightness
//
// Tags nest. Anything that is not a well-formed tag with a matching close
// is kept as literal text.

type tagKind uint8

const (
	tagText tagKind = iota
	tagOpen
	tagClose
)

type token struct {
	kind  tagKind
	cat   byte // 'f' or 'b'
	value uint8
	raw   []rune
	pair  int
}

var brightnessNames = map[string]uint8{
	"bright":  Bright,
	"normal":  Normal,
	"dim":     Dim,
	"verydim": VeryDim,
}

// parseTag decodes the text between '<' and '>'.
func parseTag(s string) (kind tagKind, cat byte, value uint8, ok bool) {
	switch s {
	case "/f":
		return tagClose, 'f', 0, true
	case "/b":
		return tagClose, 'b', 0, true
	}
	name, arg, found := strings.Cut(s, ":")
	if !found || len(name) != 1 {
		return tagText, 0, 0, false
	}
	switch name[0] {
	case 'f':
		switch arg {
		case "m":
			return tagOpen, 'f', uint8(Modern), true
		case "r":
			return tagOpen, 'f', uint8(Retro), true
		case "i":
			return tagOpen, 'f', uint8(Icon), true
		}
	case 'b':
		if v, ok := brightnessNames[arg]; ok {
			return tagOpen, 'b', v, true
		}
		if n, err := strconv.ParseUint(arg, 10, 8); err == nil {
			return tagOpen, 'b', uint8(n), true
		}
	}
	return tagText, 0, 0, false
}

func tokenize(in []rune) []token {
	var toks []token
	for i := 0; i < len(in); i++ {
		if in[i] == '<' {
			end := -1
			for j := i + 1; j < len(in) && in[j] != '<'; j++ {
				if in[j] == '>' {
					end = j
					break
				}
			}
			if end > 0 {
				if kind, cat, v, ok := parseTag(string(in[i+1 : end])); ok {
					toks = append(toks, token{kind: kind, cat: cat, value: v, raw: in[i : end+1], pair: -1})
					i = end
					continue
				}
			}
		}
		toks = append(toks, token{kind: tagText, raw: in[i : i+1], pair: -1})
	}
	return toks
}

// match pairs each close tag with the innermost open tag of the same kind.
func match(toks []token) {
	var stack []int
	for i := range toks {
		switch toks[i].kind {
		case tagOpen:
			stack = append(stack, i)
		case tagClose:
			for s := len(stack) - 1; s >= 0; s-- {
				o := stack[s]
				if toks[o].cat == toks[i].cat {
					toks[o].pair = i
					toks[i].pair = o
					stack = append(stack[:s], stack[s+1:]...)
					break
				}
			}
		}
	}
}

// ParseMarkup strips the markup tags from s. It returns the clean text and
// the spans the tags describe, with indices in runes of the clean text.
func ParseMarkup(s string) (string, []HighlightSpan, []FontSpan) {
	toks := tokenize([]rune(s))
	match(toks)

	var (
		out []rune
		hs  []HighlightSpan
		fs  []FontSpan
	)
	start := make(map[int]int)
	for i, t := range toks {
		if t.kind == tagText || t.pair < 0 {
			out = append(out, t.raw...)
			continue
		}
		if t.kind == tagOpen {
			start[i] = len(out)
			continue
		}
		open := toks[t.pair]
		from, to := start[t.pair], len(out)-1
		if to < from {
			continue
		}
		switch open.cat {
		case 'f':
			fs = append(fs, FontSpan{Start: from, End: to, Value: Font(open.value), Active: true})
		case 'b':
			hs = append(hs, HighlightSpan{Start: from, End: to, Value: open.value, Active: true})
		}
	}
	return string(out), hs, fs
}
