package parse

import (
	"strings"
	"unicode"

	"github.com/cbegin/musictext-go/internal/notation"
)

const (
	upperChars = " .:•_~"
	lowerChars = " .:•_"
	talaChars  = "+0123456"
)

type rawLine struct {
	number int
	text   string
	start  int   // rune index of the line in the normalized source
	origin []int // input rune index of each rune of text, nil for identity
}

// index maps a rune column of the line back to the caller's input.
func (ln rawLine) index(col int) int {
	switch {
	case ln.origin == nil:
		return ln.start + col
	case col < len(ln.origin):
		return ln.origin[col]
	case len(ln.origin) > 0:
		return ln.origin[len(ln.origin)-1]
	}
	return ln.start
}

type classified struct {
	kind    notation.LineKind
	content *contentLine
}

func onlyChars(text, allowed string) bool {
	for _, r := range text {
		if !strings.ContainsRune(allowed, r) {
			return false
		}
	}
	return true
}

func isBlank(text string) bool { return strings.TrimSpace(text) == "" }

// isTalaLine reports a line of tala markers and upper marks holding at least
// one marker.
func isTalaLine(text string) bool {
	return !isBlank(text) && onlyChars(text, upperChars+talaChars) && strings.ContainsAny(text, talaChars)
}

func isUpperLine(text string) bool {
	return !isBlank(text) && onlyChars(text, upperChars)
}

// isLowerLine accepts lower marks and letter tokens, the latter being lyrics.
func isLowerLine(text string) bool {
	if isBlank(text) || strings.Contains(text, "|") {
		return false
	}
	for _, r := range text {
		if strings.ContainsRune(lowerChars, r) || unicode.IsLetter(r) || unicode.IsMark(r) || r == '-' || r == '\'' {
			continue
		}
		return false
	}
	return true
}

// contentCandidate lexes text and reports whether it reads as a content line:
// it holds a barline, or every token is a run of known glyphs and at least
// one of them is a pitch.
func contentCandidate(text string) (*contentLine, bool) {
	if strings.Contains(text, "|") {
		cl, err := lexContent(text)
		if err != nil {
			return nil, true
		}
		return cl, true
	}
	if isBlank(text) || isDirective(text) {
		return nil, false
	}
	cl, err := lexContent(text)
	if err != nil {
		return nil, false
	}
	pitched := false
	for _, it := range cl.Items {
		if it.Beat == nil {
			continue
		}
		if !it.Beat.pure() {
			return nil, false
		}
		if it.Beat.hasPitch() {
			pitched = true
		}
	}
	return cl, pitched
}

// classifyParagraph assigns a kind to every line and returns the index of
// the content line, or -1 when the paragraph has none.
func classifyParagraph(lines []rawLine) ([]classified, int, error) {
	out := make([]classified, len(lines))
	content := -1
	for i, ln := range lines {
		if content < 0 {
			if isTalaLine(ln.text) && barlineBelow(lines[i+1:]) {
				out[i] = classified{kind: notation.LineUpper}
				continue
			}
			if isUpperLine(ln.text) {
				out[i] = classified{kind: notation.LineUpper}
				continue
			}
			if cl, ok := contentCandidate(ln.text); ok {
				out[i] = classified{kind: notation.LineContent, content: cl}
				content = i
				continue
			}
			out[i] = classified{kind: notation.LineText}
			continue
		}
		if strings.Contains(ln.text, "|") {
			return nil, -1, secondContent(ln, lines[content])
		}
		if isLowerLine(ln.text) {
			out[i] = classified{kind: notation.LineLower}
			continue
		}
		if _, ok := contentCandidate(ln.text); ok {
			return nil, -1, secondContent(ln, lines[content])
		}
		out[i] = classified{kind: notation.LineText}
	}
	// Upper lines only count above the content line; earlier ones without
	// a content line below them are plain text.
	if content < 0 {
		for i := range out {
			out[i].kind = notation.LineText
		}
	}
	return out, content, nil
}

func barlineBelow(lines []rawLine) bool {
	for _, ln := range lines {
		if strings.Contains(ln.text, "|") {
			return true
		}
	}
	return false
}

func secondContent(ln, first rawLine) error {
	return notation.ParseErrorAt(notation.Position{Line: ln.number}, "multiple content lines in one stave (first on line %d)", first.number)
}
