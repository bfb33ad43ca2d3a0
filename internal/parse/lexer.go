package parse

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/cbegin/musictext-go/internal/pitch"
)

const accidentalPattern = `(?:##|#|bb|b)?`

// alternation matches any of words, which must already be longest first.
func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return `(?:` + strings.Join(quoted, "|") + `)`
}

// contentLexer tokenizes a single content line. Rules are tried in order, so
// longer barlines and bols come before their prefixes. Bols and devanagari
// swaras come straight from the pitch tables.
var contentLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Barline", Pattern: `\|:\||:\|:|\|\||\|\.|\|:|:\||\|`},
	{Name: "Space", Pattern: ` +`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Breath", Pattern: `'`},
	{Name: "Bol", Pattern: alternation(pitch.Bols)},
	{Name: "Devanagari", Pattern: alternation(pitch.DevanagariBases) + accidentalPattern},
	{Name: "Pitch", Pattern: `[1-7A-GSRMPNsrgmpdn]` + accidentalPattern},
	{Name: "Unknown", Pattern: `[^ \t|'\-]`},
})

//nolint:govet // participle grammar tags are not standard struct tags
type contentLine struct {
	Items []*contentItem `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type contentItem struct {
	Pos     lexer.Position
	Barline string   `  @Barline`
	Space   string   `| @Space`
	Beat    *beatRun `| @@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type beatRun struct {
	Glyphs []*glyph `@@+`
}

//nolint:govet // participle grammar tags are not standard struct tags
type glyph struct {
	Pos     lexer.Position
	Dash    bool   `  @Dash`
	Breath  bool   `| @Breath`
	Bol     string `| @Bol`
	Pitch   string `| @(Devanagari | Pitch)`
	Unknown string `| @Unknown`
}

var contentParser = participle.MustBuild[contentLine](
	participle.Lexer(contentLexer),
)

func (g *glyph) text() string {
	switch {
	case g.Dash:
		return "-"
	case g.Breath:
		return "'"
	case g.Bol != "":
		return g.Bol
	case g.Pitch != "":
		return g.Pitch
	}
	return g.Unknown
}

func (g *glyph) isPitch() bool { return g.Bol != "" || g.Pitch != "" }

// pure reports whether a beat run holds only recognised glyphs.
func (b *beatRun) pure() bool {
	for _, g := range b.Glyphs {
		if g.Unknown != "" {
			return false
		}
	}
	return true
}

func (b *beatRun) hasPitch() bool {
	for _, g := range b.Glyphs {
		if g.isPitch() {
			return true
		}
	}
	return false
}

// lexContent runs the content grammar over one line. Tabs are treated as
// spaces here; callers reject them on real content lines.
func lexContent(text string) (*contentLine, error) {
	return contentParser.ParseString("", strings.ReplaceAll(text, "\t", " "))
}

// runeColumn converts a byte offset within text to a rune column.
func runeColumn(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return utf8.RuneCountInString(text[:offset])
}
