package parse

import (
	"regexp"
	"strings"

	"github.com/cbegin/musictext-go/internal/notation"
)

var (
	directiveRe = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9 _-]*?)\s*:\s*(.*?)\s*$`)
	titleGapRe  = regexp.MustCompile(` {4,}`)
)

// isDirective reports a "Key: value" line.
func isDirective(text string) bool {
	if strings.Contains(text, "|") {
		return false
	}
	return directiveRe.MatchString(text)
}

func parseDirective(text string) (string, string, bool) {
	if !isDirective(text) {
		return "", "", false
	}
	m := directiveRe.FindStringSubmatch(text)
	return m[1], m[2], true
}

// splitTitle splits "Title    Author" at the first run of four or more spaces.
func splitTitle(text string) (string, string, bool) {
	loc := titleGapRe.FindStringIndex(text)
	if loc == nil {
		return "", "", false
	}
	title := strings.TrimSpace(text[:loc[0]])
	author := strings.TrimSpace(text[loc[1]:])
	if title == "" || author == "" {
		return "", "", false
	}
	return title, author, true
}

// parseHeader folds a leading paragraph without a content line into the
// document header. Lines it cannot place are reported as warnings.
func parseHeader(doc *notation.Document, lines []rawLine) {
	for _, ln := range lines {
		text := strings.TrimSpace(ln.text)
		if text == "" {
			continue
		}
		pos := notation.Position{Line: ln.number}
		if key, value, ok := parseDirective(ln.text); ok {
			if doc.Header.Directives == nil {
				doc.Header.Directives = map[string]string{}
			}
			if _, dup := doc.Header.Directives[key]; dup {
				doc.Warn(notation.StageParse, pos, "directive %q repeated, keeping the last value", key)
			}
			doc.Header.Directives[key] = value
			continue
		}
		if doc.Header.Title == "" {
			if title, author, ok := splitTitle(ln.text); ok {
				doc.Header.Title, doc.Header.Author = title, author
				continue
			}
			doc.Header.Title = text
			continue
		}
		doc.Warn(notation.StageParse, pos, "ignored header line %q", text)
	}
	if v, ok := doc.Header.Directive("title"); ok && doc.Header.Title == "" {
		doc.Header.Title = v
	}
	if v, ok := doc.Header.Directive("author"); ok && doc.Header.Author == "" {
		doc.Header.Author = v
	}
}
