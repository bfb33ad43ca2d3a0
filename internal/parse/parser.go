// Package parse turns music-text input into a document of staves with fully
// tokenized content lines.
package parse

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"golang.org/x/text/unicode/norm"

	"github.com/cbegin/musictext-go/internal/notation"
	"github.com/cbegin/musictext-go/internal/pitch"
)

// documentNamespace seeds the name-based document IDs.
var documentNamespace = uuid.MustParse("6f1c2a8e-3b7d-5e4a-9c0f-2d8b1e7a4c93")

type ParserConfig struct {
	// ExpandCompact spaces out single-line inputs like "SRG".
	ExpandCompact bool
	// DefaultSystem is preferred when a stave has no unambiguous glyph.
	DefaultSystem notation.System
	// NormalizeUnicode applies NFC before parsing.
	NormalizeUnicode bool
}

func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		ExpandCompact:    true,
		DefaultSystem:    notation.SystemUnknown,
		NormalizeUnicode: true,
	}
}

type Parser struct{ cfg ParserConfig }

func NewParser(cfg ParserConfig) *Parser { return &Parser{cfg: cfg} }

// normalize applies the line ending, Unicode and compact rewrites Parse
// performs before reading input. The returned offsets give, for every rune
// of the result, the rune index in input it came from.
func (p *Parser) normalize(input string) (string, []int) {
	runes := []rune(input)
	offsets := make([]int, 0, len(runes))
	var b strings.Builder
	for i, r := range runes {
		if r == '\r' && i+1 < len(runes) && runes[i+1] == '\n' {
			continue
		}
		b.WriteRune(r)
		offsets = append(offsets, i)
	}
	src := b.String()
	if p.cfg.NormalizeUnicode {
		src, offsets = composeNFC(src, offsets)
	}
	if p.cfg.ExpandCompact {
		src, offsets = expandCompact(src, offsets)
	}
	return src, offsets
}

// composeNFC normalizes src segment by segment. Runes of a composed segment
// map to the input runes they replace, in order.
func composeNFC(src string, offsets []int) (string, []int) {
	if norm.NFC.IsNormalString(src) {
		return src, offsets
	}
	var b strings.Builder
	out := make([]int, 0, len(offsets))
	at := 0
	for len(src) > 0 {
		n := norm.NFC.NextBoundaryInString(src, true)
		if n <= 0 {
			n = len(src)
		}
		seg := src[:n]
		src = src[n:]
		count := utf8.RuneCountInString(seg)
		composed := norm.NFC.String(seg)
		k := 0
		for range composed {
			out = append(out, offsets[at+min(k, count-1)])
			k++
		}
		b.WriteString(composed)
		at += count
	}
	return b.String(), out
}

func (p *Parser) Parse(input string) (*notation.Document, error) {
	src, offsets := p.normalize(input)
	sum := blake3.Sum256([]byte(src))
	doc := &notation.Document{
		ID:         uuid.NewSHA1(documentNamespace, []byte(src)).String(),
		SourceHash: hex.EncodeToString(sum[:]),
		Source:     src,
		Staves:     []notation.Stave{},
	}
	for i, para := range splitParagraphs(splitLines(src, offsets)) {
		kinds, content, err := classifyParagraph(para)
		if err != nil {
			return nil, err
		}
		if content < 0 {
			if i == 0 {
				parseHeader(doc, para)
				continue
			}
			return nil, notation.ParseErrorAt(notation.Position{Line: para[0].number}, "paragraph has no content line")
		}
		stave, err := p.buildStave(doc, para, kinds, content)
		if err != nil {
			return nil, err
		}
		stave.Index = len(doc.Staves)
		doc.Staves = append(doc.Staves, stave)
	}
	return doc, nil
}

func (p *Parser) buildStave(doc *notation.Document, para []rawLine, kinds []classified, content int) (notation.Stave, error) {
	stave := notation.Stave{
		Lines:        make([]notation.Line, len(para)),
		ContentIndex: content,
	}
	for i, ln := range para {
		line := notation.Line{Kind: kinds[i].kind, Number: ln.number, Text: ln.text}
		switch line.Kind {
		case notation.LineUpper:
			line.Marks = scanMarks(ln, true)
		case notation.LineLower:
			line.Marks = scanMarks(ln, false)
		}
		stave.Lines[i] = line
	}
	ln := para[content]
	if col := strings.IndexByte(ln.text, '\t'); col >= 0 {
		at := notation.Position{Line: ln.number, Column: runeColumn(ln.text, col)}
		return notation.Stave{}, notation.ParseErrorAt(at, "tab characters are not allowed on a content line")
	}
	cl := kinds[content].content
	if cl == nil {
		var err error
		if cl, err = lexContent(ln.text); err != nil {
			return notation.Stave{}, notation.ParseErrorAt(notation.Position{Line: ln.number}, "%v", err)
		}
	}
	elements, system, err := p.buildElements(ln, cl)
	if err != nil {
		return notation.Stave{}, err
	}
	stave.Lines[content].Elements = elements
	stave.System = system
	if !hasNote(elements) && !hasBarline(elements) {
		return notation.Stave{}, notation.ParseErrorAt(notation.Position{Line: ln.number}, "content line has no pitches and no barlines")
	}
	if !hasNote(elements) {
		doc.Warn(notation.StageParse, notation.Position{Line: ln.number}, "content line has no pitches")
	}
	return stave, nil
}

// buildElements converts the lexed content line into elements, detecting the
// stave's notation system from its pitch glyphs first.
func (p *Parser) buildElements(ln rawLine, cl *contentLine) ([]notation.Element, notation.System, error) {
	pos := func(offset int) notation.Position {
		col := runeColumn(ln.text, offset)
		return notation.Position{Line: ln.number, Column: col, Index: ln.index(col)}
	}
	var glyphs []string
	for _, it := range cl.Items {
		if it.Beat == nil {
			continue
		}
		for _, g := range it.Beat.Glyphs {
			if g.Unknown != "" {
				return nil, 0, notation.ParseErrorAt(pos(g.Pos.Offset), "unrecognized glyph %q", g.Unknown)
			}
			if g.isPitch() {
				glyphs = append(glyphs, g.text())
			}
		}
	}
	system := pitch.Detect(glyphs, p.cfg.DefaultSystem)

	elements := make([]notation.Element, 0, len(cl.Items))
	for _, it := range cl.Items {
		switch {
		case it.Barline != "":
			kind, _ := notation.ParseBarline(it.Barline)
			elements = append(elements, notation.Element{
				Kind: notation.ElementBarline, Pos: pos(it.Pos.Offset), Text: it.Barline,
				Width: utf8.RuneCountInString(it.Barline), Barline: kind,
			})
		case it.Space != "":
			elements = append(elements, notation.Element{
				Kind: notation.ElementWhitespace, Pos: pos(it.Pos.Offset), Text: it.Space, Width: len(it.Space),
			})
		case it.Beat != nil:
			for _, g := range it.Beat.Glyphs {
				el := notation.Element{Pos: pos(g.Pos.Offset), Text: g.text(), Width: utf8.RuneCountInString(g.text())}
				switch {
				case g.Dash:
					el.Kind = notation.ElementDash
				case g.Breath:
					el.Kind = notation.ElementBreath
				default:
					code, err := pitch.Lookup(system, g.text())
					if err != nil {
						return nil, 0, notation.ParseErrorAt(el.Pos, "%v (stave detected as %s)", err, system)
					}
					el.Kind = notation.ElementNote
					el.Note = &notation.Note{Syllable: g.text(), PitchCode: code, System: system}
				}
				elements = append(elements, el)
			}
		}
	}
	return elements, system, nil
}

func hasNote(elements []notation.Element) bool {
	for i := range elements {
		if elements[i].Kind == notation.ElementNote {
			return true
		}
	}
	return false
}

func hasBarline(elements []notation.Element) bool {
	for i := range elements {
		if elements[i].Kind == notation.ElementBarline {
			return true
		}
	}
	return false
}
