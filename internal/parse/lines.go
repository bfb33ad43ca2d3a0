package parse

import (
	"strings"
	"unicode/utf8"

	"github.com/cbegin/musictext-go/internal/notation"
)

// splitLines numbers every line and records its rune offset in src.
// offsets, when set, maps each rune of src to its index in the input.
func splitLines(src string, offsets []int) []rawLine {
	parts := strings.Split(src, "\n")
	out := make([]rawLine, 0, len(parts))
	start := 0
	for i, p := range parts {
		n := utf8.RuneCountInString(p)
		ln := rawLine{number: i + 1, text: p, start: start}
		if offsets != nil {
			ln.origin = offsets[start:min(start+n, len(offsets))]
		}
		out = append(out, ln)
		start += n + 1
	}
	return out
}

// splitParagraphs groups lines separated by one or more blank lines.
func splitParagraphs(lines []rawLine) [][]rawLine {
	var out [][]rawLine
	var cur []rawLine
	for _, ln := range lines {
		if isBlank(ln.text) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, ln)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func upperMarkKind(r rune) (notation.MarkKind, bool) {
	switch r {
	case '.', ':', '•':
		return notation.MarkUpperOctave, true
	case '_':
		return notation.MarkSlur, true
	case '~':
		return notation.MarkMordent, true
	case '+', '0', '1', '2', '3', '4', '5', '6':
		return notation.MarkTala, true
	}
	return 0, false
}

func lowerMarkKind(r rune) (notation.MarkKind, bool) {
	switch r {
	case '.', ':', '•':
		return notation.MarkLowerOctave, true
	case '_':
		return notation.MarkBeatGroup, true
	}
	return 0, false
}

// scanMarks tokenizes an annotation line. Runs of spaces, underscores and
// syllable characters become single marks; every other mark is one rune.
func scanMarks(ln rawLine, upper bool) []notation.Mark {
	kindOf := lowerMarkKind
	if upper {
		kindOf = upperMarkKind
	}
	runes := []rune(ln.text)
	var marks []notation.Mark
	for i := 0; i < len(runes); {
		j := i + 1
		var kind notation.MarkKind
		switch k, ok := kindOf(runes[i]); {
		case runes[i] == ' ':
			kind = notation.MarkSpace
			for j < len(runes) && runes[j] == ' ' {
				j++
			}
		case ok && (k == notation.MarkSlur || k == notation.MarkBeatGroup):
			kind = k
			for j < len(runes) && runes[j] == '_' {
				j++
			}
		case ok:
			kind = k
		default:
			kind = notation.MarkSyllable
			for j < len(runes) && runes[j] != ' ' {
				if _, mark := kindOf(runes[j]); mark {
					break
				}
				j++
			}
		}
		marks = append(marks, notation.Mark{
			Kind:  kind,
			Glyph: string(runes[i:j]),
			Pos:   notation.Position{Line: ln.number, Column: i, Index: ln.index(i)},
			Width: j - i,
		})
		i = j
	}
	return marks
}
