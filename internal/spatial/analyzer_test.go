package spatial

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/cbegin/musictext-go/internal/notation"
	"github.com/cbegin/musictext-go/internal/parse"
)

func analyze(t *testing.T, input string) (*notation.Document, *notation.Document) {
	t.Helper()
	doc, err := parse.NewParser(parse.DefaultParserConfig()).Parse(input)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	out, err := New(DefaultOptions()).Analyze(doc)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	return doc, out
}

func notes(doc *notation.Document) []*notation.Note {
	return doc.Staves[0].Notes()
}

func TestOctaveDots(t *testing.T) {
	_, doc := analyze(t, ".   .\nS R G")
	got := []int{}
	for _, n := range notes(doc) {
		got = append(got, n.Octave)
	}
	if !reflect.DeepEqual(got, []int{1, 0, 1}) {
		t.Fatalf("expected octaves [1 0 1], got %v", got)
	}
	if len(doc.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", doc.Warnings)
	}
}

func TestOctaveWeights(t *testing.T) {
	_, doc := analyze(t, ":   •\n1 2 3\n. : •")
	got := []int{}
	for _, n := range notes(doc) {
		got = append(got, n.Octave)
	}
	// 1: +2 -1, 2: -2, 3: +1 -1
	if !reflect.DeepEqual(got, []int{1, -2, 0}) {
		t.Fatalf("unexpected octaves %v", got)
	}
	el := doc.Staves[0].Content().Elements[0]
	if len(el.Consumed) != 2 || el.Consumed[0].Glyph != ":" || el.Consumed[1].Kind != notation.MarkLowerOctave {
		t.Fatalf("unexpected consumed record %+v", el.Consumed)
	}
}

func TestSlurRoles(t *testing.T) {
	_, doc := analyze(t, "_____\n1 2 3")
	ns := notes(doc)
	roles := []notation.Role{notation.RoleStart, notation.RoleMiddle, notation.RoleEnd}
	for i, n := range ns {
		if !n.InSlur || n.SlurRole != roles[i] {
			t.Fatalf("note %d: in_slur=%v role=%v", i, n.InSlur, n.SlurRole)
		}
	}
}

func TestSlurSpanIsHalfOpen(t *testing.T) {
	_, doc := analyze(t, "___\n1 2 3")
	ns := notes(doc)
	if !ns[0].InSlur || !ns[1].InSlur || ns[2].InSlur {
		t.Fatalf("expected only notes at columns 0 and 2 in the slur")
	}
	if ns[0].SlurRole != notation.RoleStart || ns[1].SlurRole != notation.RoleEnd {
		t.Fatalf("unexpected roles %v %v", ns[0].SlurRole, ns[1].SlurRole)
	}
}

func TestBeatGroupBelow(t *testing.T) {
	_, doc := analyze(t, "1 2 3\n___")
	ns := notes(doc)
	if !ns[0].InBeatGroup || !ns[1].InBeatGroup || ns[2].InBeatGroup || ns[0].InSlur {
		t.Fatalf("unexpected beat group flags")
	}
	if ns[0].BeatGroupRole != notation.RoleStart || ns[1].BeatGroupRole != notation.RoleEnd {
		t.Fatalf("unexpected roles %v %v", ns[0].BeatGroupRole, ns[1].BeatGroupRole)
	}
}

func TestSingleNoteSlurStarts(t *testing.T) {
	_, doc := analyze(t, "_\n1 2")
	if ns := notes(doc); ns[0].SlurRole != notation.RoleStart || ns[1].InSlur {
		t.Fatalf("expected a lone start role")
	}
}

func TestOrphanMarks(t *testing.T) {
	_, doc := analyze(t, " .\n1-2")
	ns := notes(doc)
	if ns[0].Octave != 1 || ns[1].Octave != 0 {
		t.Fatalf("expected orphan dot over the dash to go to the preceding note, got %d %d", ns[0].Octave, ns[1].Octave)
	}
	if len(doc.Warnings) != 1 || doc.Warnings[0].Stage != notation.StageSpatial || doc.Warnings[0].Line != 1 {
		t.Fatalf("expected one spatial warning, got %v", doc.Warnings)
	}

	_, doc = analyze(t, ".\n |1")
	if notes(doc)[0].Octave != 1 {
		t.Fatalf("orphan without a preceding note must go to the following note")
	}
}

func TestOrphanSlurDoesNotMarkNotes(t *testing.T) {
	_, doc := analyze(t, " _\n1 2")
	ns := notes(doc)
	if ns[0].InSlur || ns[1].InSlur {
		t.Fatalf("a slur run over no note must not set in_slur")
	}
	if len(doc.Staves[0].Content().Elements[0].Consumed) != 1 {
		t.Fatalf("expected the orphan slur to be recorded on the preceding note")
	}
	if len(doc.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", doc.Warnings)
	}
}

func TestOctaveClamp(t *testing.T) {
	_, doc := analyze(t, ":\n:\n:\n1")
	if n := notes(doc)[0]; n.Octave != 4 {
		t.Fatalf("expected octave clamped to 4, got %d", n.Octave)
	}
	if len(doc.Warnings) != 1 || !strings.Contains(doc.Warnings[0].Message, "clamped") {
		t.Fatalf("expected clamp warning, got %v", doc.Warnings)
	}

	a := New(Options{MaxOctave: 1})
	src, _ := parse.NewParser(parse.DefaultParserConfig()).Parse("1\n:")
	out, err := a.Analyze(src)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if n := notes(out)[0]; n.Octave != -1 {
		t.Fatalf("expected octave clamped to -1, got %d", n.Octave)
	}
}

func TestMordent(t *testing.T) {
	_, doc := analyze(t, "  ~\n1 2")
	ns := notes(doc)
	if ns[0].Mordent || !ns[1].Mordent {
		t.Fatalf("expected mordent on the second note")
	}
}

func TestTalaAssignment(t *testing.T) {
	_, doc := analyze(t, "+    2    0   3\n|1 2 |3 4 |5 6")
	var talas []int
	for _, el := range doc.Staves[0].Content().Elements {
		if el.Kind == notation.ElementBarline {
			if el.Tala == nil {
				t.Fatalf("barline at %d has no tala", el.Pos.Column)
			}
			talas = append(talas, *el.Tala)
		}
	}
	if !reflect.DeepEqual(talas, []int{notation.TalaSam, 2, 0}) {
		t.Fatalf("unexpected talas %v", talas)
	}
	if len(doc.Warnings) != 1 || !strings.Contains(doc.Warnings[0].Message, "no barline") {
		t.Fatalf("expected a surplus tala warning, got %v", doc.Warnings)
	}
}

func TestLyrics(t *testing.T) {
	_, doc := analyze(t, "1 2 3\nla  li")
	ns := notes(doc)
	if !reflect.DeepEqual(ns[0].Lyrics, []string{"la"}) || ns[1].Lyrics != nil || !reflect.DeepEqual(ns[2].Lyrics, []string{"li"}) {
		t.Fatalf("unexpected lyrics %v %v %v", ns[0].Lyrics, ns[1].Lyrics, ns[2].Lyrics)
	}
}

func TestLyricsSkipSlurredNotes(t *testing.T) {
	_, doc := analyze(t, "___\n1 2 3\nla li")
	ns := notes(doc)
	if !reflect.DeepEqual(ns[0].Lyrics, []string{"la"}) || ns[1].Lyrics != nil || !reflect.DeepEqual(ns[2].Lyrics, []string{"li"}) {
		t.Fatalf("unexpected lyrics %v %v %v", ns[0].Lyrics, ns[1].Lyrics, ns[2].Lyrics)
	}
}

func TestExcessLyrics(t *testing.T) {
	_, doc := analyze(t, "1  2\nla li lo")
	ns := notes(doc)
	if !reflect.DeepEqual(ns[1].Lyrics, []string{"li", "lo"}) {
		t.Fatalf("expected excess syllable on the last note, got %v", ns[1].Lyrics)
	}
	if len(doc.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", doc.Warnings)
	}
}

func TestLyricsPerVerse(t *testing.T) {
	_, doc := analyze(t, "1  2  3\nla li lo\nna ne ni")
	ns := notes(doc)
	want := [][]string{{"la", "na"}, {"li", "ne"}, {"lo", "ni"}}
	for i, w := range want {
		if !reflect.DeepEqual(ns[i].Lyrics, w) {
			t.Fatalf("note %d: expected %v, got %v", i, w, ns[i].Lyrics)
		}
	}
	if len(doc.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", doc.Warnings)
	}
}

func TestAnalyzeDoesNotMutateInput(t *testing.T) {
	src, out := analyze(t, ".\n1\n.")
	if notes(src)[0].Octave != 0 || src.Staves[0].Content().Elements[0].Consumed != nil {
		t.Fatalf("input document was mutated")
	}
	if notes(out)[0].Octave != 0 || len(out.Staves[0].Content().Elements[0].Consumed) != 2 {
		t.Fatalf("expected the two dots to cancel and both to be consumed")
	}
}

func TestStripRoundTrip(t *testing.T) {
	inputs := []string{
		".   .\nS R G",
		"+   2\n_____\n|1-2 3 |4\n. __\nla la",
		":\n:\n:\n1",
		" _\n1 2",
	}
	for _, in := range inputs {
		src, out := analyze(t, in)
		if got := out.StripAnnotations(); !reflect.DeepEqual(got, src) {
			t.Fatalf("strip(analyze(%q)) differs from the parsed document", in)
		}
	}
}

func TestSlurInvariant(t *testing.T) {
	_, doc := analyze(t, " ___  _\n1 2 3 4 5\n")
	st := doc.Staves[0]
	for _, el := range st.Content().Elements {
		if el.Note == nil || !el.Note.InSlur {
			continue
		}
		found := false
		for _, line := range st.Lines {
			for _, m := range line.Marks {
				if m.Kind == notation.MarkSlur && el.Pos.Column >= m.Pos.Column && el.Pos.Column < m.End() {
					found = true
				}
			}
		}
		if !found {
			t.Fatalf("note at column %d is in a slur no run covers", el.Pos.Column)
		}
	}
}

func TestAnalyzeRejectsNil(t *testing.T) {
	_, err := New(DefaultOptions()).Analyze(nil)
	var se *notation.SpatialError
	if !errors.As(err, &se) || !errors.Is(err, notation.ErrSpatial) {
		t.Fatalf("expected SpatialError for nil document, got %v", err)
	}
}

func TestAnalyzeRejectsNegativeMaxOctave(t *testing.T) {
	doc, err := parse.NewParser(parse.DefaultParserConfig()).Parse("1 2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = New(Options{MaxOctave: -1}).Analyze(doc)
	if !errors.Is(err, notation.ErrSpatial) || !strings.Contains(err.Error(), "-1") {
		t.Fatalf("expected SpatialError naming the bound, got %v", err)
	}
}
