package parse

import (
	"errors"
	"strings"
	"testing"

	"github.com/cbegin/musictext-go/internal/notation"
)

func mustParse(t *testing.T, input string) *notation.Document {
	t.Helper()
	doc, err := NewParser(DefaultParserConfig()).Parse(input)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return doc
}

func contentElements(t *testing.T, doc *notation.Document, stave int) []notation.Element {
	t.Helper()
	if len(doc.Staves) <= stave {
		t.Fatalf("expected at least %d staves, got %d", stave+1, len(doc.Staves))
	}
	line := doc.Staves[stave].Content()
	if line == nil {
		t.Fatalf("stave %d has no content line", stave)
	}
	return line.Elements
}

func pitchCodes(elements []notation.Element) []notation.PitchCode {
	var out []notation.PitchCode
	for _, el := range elements {
		if el.Note != nil {
			out = append(out, el.Note.PitchCode)
		}
	}
	return out
}

func equalCodes(a, b []notation.PitchCode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "\n\n", "   \n"} {
		doc := mustParse(t, in)
		if len(doc.Staves) != 0 {
			t.Fatalf("expected no staves for %q, got %d", in, len(doc.Staves))
		}
	}
}

func TestParseSingleNote(t *testing.T) {
	doc := mustParse(t, "1")
	els := contentElements(t, doc, 0)
	if len(els) != 1 || els[0].Kind != notation.ElementNote || els[0].Note.PitchCode != notation.N1 {
		t.Fatalf("expected a single N1 note, got %+v", els)
	}
	if doc.Staves[0].System != notation.SystemNumber {
		t.Fatalf("expected number system, got %v", doc.Staves[0].System)
	}
}

func TestParseBarlineAndNotes(t *testing.T) {
	doc := mustParse(t, "|1 2 3")
	els := contentElements(t, doc, 0)
	kinds := []notation.ElementKind{
		notation.ElementBarline, notation.ElementNote, notation.ElementWhitespace,
		notation.ElementNote, notation.ElementWhitespace, notation.ElementNote,
	}
	if len(els) != len(kinds) {
		t.Fatalf("expected %d elements, got %d", len(kinds), len(els))
	}
	for i, k := range kinds {
		if els[i].Kind != k {
			t.Fatalf("element %d: expected %v, got %v", i, k, els[i].Kind)
		}
		if els[i].Pos.Column != i {
			t.Fatalf("element %d: expected column %d, got %d", i, i, els[i].Pos.Column)
		}
	}
	if els[0].Barline != notation.BarlineSingle {
		t.Fatalf("expected single barline, got %v", els[0].Barline)
	}
	want := []notation.PitchCode{notation.N1, notation.N2, notation.N3}
	if got := pitchCodes(els); !equalCodes(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseBarlineVariants(t *testing.T) {
	doc := mustParse(t, "|: 1 :|: 2 | 3 || 4 :| 5 |:| 6 |.")
	var got []notation.BarlineKind
	for _, el := range contentElements(t, doc, 0) {
		if el.Kind == notation.ElementBarline {
			got = append(got, el.Barline)
		}
	}
	want := []notation.BarlineKind{
		notation.BarlineRepeatStart, notation.BarlineRepeatBoth, notation.BarlineSingle,
		notation.BarlineDouble, notation.BarlineRepeatEnd, notation.BarlineRepeatBoth, notation.BarlineFinal,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("barline %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestParseDashesAndBreath(t *testing.T) {
	doc := mustParse(t, "1-2' -3")
	var kinds []notation.ElementKind
	for _, el := range contentElements(t, doc, 0) {
		kinds = append(kinds, el.Kind)
	}
	want := []notation.ElementKind{
		notation.ElementNote, notation.ElementDash, notation.ElementNote, notation.ElementBreath,
		notation.ElementWhitespace, notation.ElementDash, notation.ElementNote,
	}
	if len(kinds) != len(want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("element %d: expected %v, got %v", i, want[i], kinds[i])
		}
	}
}

func TestParseCompactNotation(t *testing.T) {
	cases := []struct {
		in     string
		system notation.System
		codes  []notation.PitchCode
	}{
		{"SRG", notation.SystemSargam, []notation.PitchCode{notation.N1, notation.N2, notation.N3}},
		{"CDE", notation.SystemWestern, []notation.PitchCode{notation.N1, notation.N2, notation.N3}},
		{"123\n", notation.SystemNumber, []notation.PitchCode{notation.N1, notation.N2, notation.N3}},
	}
	for _, tc := range cases {
		t.Run(strings.TrimSpace(tc.in), func(t *testing.T) {
			doc := mustParse(t, tc.in)
			els := contentElements(t, doc, 0)
			if doc.Staves[0].System != tc.system {
				t.Fatalf("expected %v, got %v", tc.system, doc.Staves[0].System)
			}
			if got := pitchCodes(els); !equalCodes(got, tc.codes) {
				t.Fatalf("expected %v, got %v", tc.codes, got)
			}
			if len(els) != 5 {
				t.Fatalf("expected expansion to three notes and two spaces, got %d elements", len(els))
			}
		})
	}
}

func TestParseCompactDisabled(t *testing.T) {
	cfg := DefaultParserConfig()
	cfg.ExpandCompact = false
	doc, err := NewParser(cfg).Parse("SRG")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	els := contentElements(t, doc, 0)
	if len(els) != 3 || els[0].Kind != notation.ElementNote || els[2].Kind != notation.ElementNote {
		t.Fatalf("expected one run of three notes, got %+v", els)
	}
}

func TestParseAmbiguousCompactFails(t *testing.T) {
	_, err := NewParser(DefaultParserConfig()).Parse("SRG1")
	if err == nil {
		t.Fatalf("expected SRG1 to fail")
	}
	var pe *notation.ParseError
	if !errors.As(err, &pe) || !errors.Is(err, notation.ErrParse) {
		t.Fatalf("expected ParseError, got %T %v", err, err)
	}
	if pe.Line != 1 || pe.Column < 1 {
		t.Fatalf("unexpected position %d:%d", pe.Line, pe.Column)
	}
}

func TestParseSystems(t *testing.T) {
	cases := []struct {
		in     string
		system notation.System
		codes  []notation.PitchCode
	}{
		{"| S r G m M P d N", notation.SystemSargam, []notation.PitchCode{
			notation.N1, notation.N2b, notation.N3, notation.N4, notation.N4s, notation.N5, notation.N6b, notation.N7}},
		{"| C D# Eb F G A Bb", notation.SystemWestern, []notation.PitchCode{
			notation.N1, notation.N2s, notation.N3b, notation.N4, notation.N5, notation.N6, notation.N7b}},
		{"| स रे ग म प ध नि", notation.SystemBhatkhande, []notation.PitchCode{
			notation.N1, notation.N2, notation.N3, notation.N4, notation.N5, notation.N6, notation.N7}},
		{"| dha ge na terekita", notation.SystemTabla, []notation.PitchCode{
			notation.N1, notation.N1, notation.N1, notation.N1}},
		{"| 1# 2b 3## 4bb", notation.SystemNumber, []notation.PitchCode{
			notation.N1s, notation.N2b, notation.N3ss, notation.N4bb}},
	}
	for _, tc := range cases {
		t.Run(tc.system.String(), func(t *testing.T) {
			doc := mustParse(t, tc.in)
			if doc.Staves[0].System != tc.system {
				t.Fatalf("expected %v, got %v", tc.system, doc.Staves[0].System)
			}
			els := contentElements(t, doc, 0)
			if got := pitchCodes(els); !equalCodes(got, tc.codes) {
				t.Fatalf("expected %v, got %v", tc.codes, got)
			}
			for _, el := range els {
				if el.Note != nil && el.Note.System != tc.system {
					t.Fatalf("note %q carries system %v", el.Note.Syllable, el.Note.System)
				}
			}
		})
	}
}

func TestParseDevanagariColumns(t *testing.T) {
	doc := mustParse(t, "|रे स")
	els := contentElements(t, doc, 0)
	if els[1].Text != "रे" || els[1].Width != 2 || els[1].Pos.Column != 1 {
		t.Fatalf("unexpected devanagari element %+v", els[1])
	}
	if els[3].Pos.Column != 4 {
		t.Fatalf("expected rune column 4, got %d", els[3].Pos.Column)
	}
}

func TestParseStaveLines(t *testing.T) {
	input := "Title    Composer\n\n.   :\nS R G\n_ .\nna ra ya"
	doc := mustParse(t, input)
	if doc.Header.Title != "Title" || doc.Header.Author != "Composer" {
		t.Fatalf("unexpected header %+v", doc.Header)
	}
	st := doc.Staves[0]
	wantKinds := []notation.LineKind{notation.LineUpper, notation.LineContent, notation.LineLower, notation.LineLower}
	if len(st.Lines) != len(wantKinds) {
		t.Fatalf("expected %d lines, got %d", len(wantKinds), len(st.Lines))
	}
	for i, k := range wantKinds {
		if st.Lines[i].Kind != k {
			t.Fatalf("line %d: expected %v, got %v", i, k, st.Lines[i].Kind)
		}
	}
	if st.ContentIndex != 1 || st.Lines[1].Number != 4 {
		t.Fatalf("unexpected content line index %d number %d", st.ContentIndex, st.Lines[1].Number)
	}
	upper := st.Lines[0].Marks
	if len(upper) != 3 || upper[0].Kind != notation.MarkUpperOctave || upper[2].Glyph != ":" || upper[2].Pos.Column != 4 {
		t.Fatalf("unexpected upper marks %+v", upper)
	}
	lower := st.Lines[2].Marks
	if lower[0].Kind != notation.MarkBeatGroup || lower[2].Kind != notation.MarkLowerOctave {
		t.Fatalf("unexpected lower marks %+v", lower)
	}
	var syllables []string
	for _, m := range st.Lines[3].Marks {
		if m.Kind == notation.MarkSyllable {
			syllables = append(syllables, m.Glyph)
		}
	}
	if strings.Join(syllables, ",") != "na,ra,ya" {
		t.Fatalf("unexpected syllables %v", syllables)
	}
}

func TestParseTalaLine(t *testing.T) {
	doc := mustParse(t, "+     2\n|1 2 |3 4")
	st := doc.Staves[0]
	if st.Lines[0].Kind != notation.LineUpper || st.ContentIndex != 1 {
		t.Fatalf("expected tala upper line over content, got %+v", st.Lines[0])
	}
	var talas []string
	for _, m := range st.Lines[0].Marks {
		if m.Kind == notation.MarkTala {
			talas = append(talas, m.Glyph)
		}
	}
	if strings.Join(talas, " ") != "+ 2" {
		t.Fatalf("unexpected tala marks %v", talas)
	}
}

func TestParseHeaderDirectives(t *testing.T) {
	doc := mustParse(t, "Amazing Grace\nKey: D\nTonic: S\nstray line\n\n|1 2")
	if doc.Header.Title != "Amazing Grace" {
		t.Fatalf("unexpected title %q", doc.Header.Title)
	}
	if v, _ := doc.Header.Directive("key"); v != "D" {
		t.Fatalf("expected Key directive D, got %q", v)
	}
	if v, _ := doc.Header.Directive("Tonic"); v != "S" {
		t.Fatalf("expected Tonic directive S, got %q", v)
	}
	if len(doc.Warnings) != 1 || !strings.Contains(doc.Warnings[0].Message, "stray line") {
		t.Fatalf("expected one warning for the stray header line, got %v", doc.Warnings)
	}
	if len(doc.Staves) != 1 {
		t.Fatalf("expected one stave, got %d", len(doc.Staves))
	}
}

func TestParseMultipleStaves(t *testing.T) {
	doc := mustParse(t, "|1 2\n\n\n|3 4\n")
	if len(doc.Staves) != 2 {
		t.Fatalf("expected 2 staves, got %d", len(doc.Staves))
	}
	if doc.Staves[1].Index != 1 || doc.Staves[1].Lines[0].Number != 4 {
		t.Fatalf("unexpected second stave %+v", doc.Staves[1])
	}
	el := doc.Staves[1].Lines[0].Elements[1]
	if el.Pos.Index != len("|1 2\n\n\n|") {
		t.Fatalf("expected source index %d, got %d", len("|1 2\n\n\n|"), el.Pos.Index)
	}
}

func TestParseIndexesOriginalInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
		glyph string
	}{
		{"crlf", "1\r\n\r\n2", "2"},
		{"compact", "SRG", "G"},
		{"nfc header", "Cafe\u0301\n\n|1", "1"},
		{"crlf lines", ". .\r\nS R G\r\n", "G"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := mustParse(t, tc.input)
			runes := []rune(tc.input)
			found := false
			for _, st := range doc.Staves {
				for _, el := range st.Content().Elements {
					if el.Pos.Index < 0 || el.Pos.Index >= len(runes) {
						t.Fatalf("index %d outside input of %d runes", el.Pos.Index, len(runes))
					}
					if el.Note != nil && el.Note.Syllable == tc.glyph {
						found = true
						if got := string(runes[el.Pos.Index]); got != tc.glyph {
							t.Fatalf("note %q indexes %q in the input", tc.glyph, got)
						}
					}
				}
			}
			if !found {
				t.Fatalf("note %q not found", tc.glyph)
			}
		})
	}
	doc := mustParse(t, "SRG")
	els := doc.Staves[0].Content().Elements
	if els[1].Kind != notation.ElementWhitespace || els[1].Pos.Index != 0 {
		t.Fatalf("inserted space must index the glyph before it, got %+v", els[1])
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		line   int
		column int
	}{
		{"two content lines", "|1 2\n|3 4", 2, 1},
		{"unrecognized glyph", "|1 x 2", 1, 4},
		{"tab on content line", "|1\t2", 1, 3},
		{"paragraph without content", "|1 2\n\nhello there", 3, 1},
		{"glyph outside system", "| 1 2 C", 1, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewParser(DefaultParserConfig()).Parse(tc.in)
			var pe *notation.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if pe.Line != tc.line || pe.Column != tc.column {
				t.Fatalf("expected %d:%d, got %d:%d (%s)", tc.line, tc.column, pe.Line, pe.Column, pe.Message)
			}
		})
	}
}

func TestParseNormalizesInput(t *testing.T) {
	doc := mustParse(t, "Cafe\u0301\r\n\r\n|1 2\r\n")
	if doc.Header.Title != "Caf\u00e9" {
		t.Fatalf("expected NFC title, got %q", doc.Header.Title)
	}
	if strings.Contains(doc.Source, "\r") {
		t.Fatalf("expected CRLF to be normalized")
	}
	if len(doc.Staves) != 1 || doc.Staves[0].Lines[0].Number != 3 {
		t.Fatalf("unexpected staves %+v", doc.Staves)
	}
}

func TestParseIdentity(t *testing.T) {
	a := mustParse(t, "|1 2 3")
	b := mustParse(t, "|1 2 3")
	c := mustParse(t, "|1 2 4")
	if a.ID != b.ID || a.SourceHash != b.SourceHash {
		t.Fatalf("identical input must yield identical identity")
	}
	if a.ID == c.ID || a.SourceHash == c.SourceHash {
		t.Fatalf("different input must yield different identity")
	}
	if len(a.SourceHash) != 64 {
		t.Fatalf("expected hex blake3 digest, got %q", a.SourceHash)
	}
}

func TestColumnAnchorsIncrease(t *testing.T) {
	doc := mustParse(t, "|: S-R g' M -- P | d N S :|")
	els := contentElements(t, doc, 0)
	for i := 1; i < len(els); i++ {
		if els[i].Pos.Column <= els[i-1].Pos.Column {
			t.Fatalf("column anchors not increasing at %d: %d then %d", i, els[i-1].Pos.Column, els[i].Pos.Column)
		}
		if els[i].Pos.Index < 0 || els[i].Pos.Index >= len([]rune("|: S-R g' M -- P | d N S :|")) {
			t.Fatalf("index %d out of range", els[i].Pos.Index)
		}
	}
}

func BenchmarkParse(b *testing.B) {
	input := strings.Repeat(".   :\n|: S-R g' M -- P | d N S :|\n_____\nla la la\n\n", 50)
	p := NewParser(DefaultParserConfig())
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := p.Parse(input); err != nil {
			b.Fatalf("parse failed: %v", err)
		}
	}
}
