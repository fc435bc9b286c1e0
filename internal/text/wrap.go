package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// isWide reports runes that occupy a full cell in East Asian text. They can
// be broken around without a space, like CJK ideographs and kana.
func isWide(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}

// segments splits a paragraph at its break opportunities: after a run of
// spaces, and on both sides of a wide rune. Concatenating the result gives
// back the input.
func segments(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		switch {
		case isWide(r):
			if i > start {
				out = append(out, s[start:i])
			}
			n := i + utf8.RuneLen(r)
			out = append(out, s[i:n])
			start = n
		case unicode.IsSpace(r):
			n := i + utf8.RuneLen(r)
			next, _ := utf8.DecodeRuneInString(s[n:])
			if n == len(s) || !unicode.IsSpace(next) {
				out = append(out, s[start:n])
				start = n
			}
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// wrapLines breaks s into lines no wider than maxWidth according to
// measure. Segments that do not fit on an empty line are broken between
// runes. Hard newlines always break. maxWidth <= 0 only splits on
// newlines.
func wrapLines(s string, maxWidth float64, measure func(string) float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		if maxWidth <= 0 {
			lines = append(lines, para)
			continue
		}
		lines = append(lines, wrapParagraph(para, maxWidth, measure)...)
	}
	return lines
}

func wrapParagraph(para string, maxWidth float64, measure func(string) float64) []string {
	var lines []string
	line := ""
	flush := func() {
		lines = append(lines, strings.TrimRightFunc(line, unicode.IsSpace))
		line = ""
	}

	for _, seg := range segments(para) {
		if measure(strings.TrimRightFunc(line+seg, unicode.IsSpace)) <= maxWidth {
			line += seg
			continue
		}
		if line != "" {
			flush()
			seg = strings.TrimLeftFunc(seg, unicode.IsSpace)
		}
		if measure(strings.TrimRightFunc(seg, unicode.IsSpace)) <= maxWidth {
			line = seg
			continue
		}
		// Segment longer than a whole line: fall back to rune breaks.
		for _, r := range seg {
			if measure(line+string(r)) > maxWidth && line != "" {
				flush()
				if unicode.IsSpace(r) {
					continue
				}
			}
			line += string(r)
		}
	}
	if line != "" || len(lines) == 0 {
		flush()
	}
	return lines
}
