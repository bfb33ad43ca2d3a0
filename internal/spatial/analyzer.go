// Package spatial attributes upper- and lower-line marks to content-line
// elements by column alignment.
package spatial

import (
	"fmt"
	"sort"

	"github.com/cbegin/musictext-go/internal/notation"
)

type Options struct {
	// MaxOctave bounds the absolute octave of every note.
	MaxOctave int
}

func DefaultOptions() Options { return Options{MaxOctave: 4} }

type Analyzer struct{ opts Options }

func New(opts Options) *Analyzer { return &Analyzer{opts: opts} }

// Analyze returns a copy of doc with every annotation folded into the
// content elements it aligns with. The input is left untouched.
func (a *Analyzer) Analyze(doc *notation.Document) (*notation.Document, error) {
	if doc == nil {
		return nil, &notation.SpatialError{Message: "nil document"}
	}
	if a.opts.MaxOctave < 0 {
		return nil, &notation.SpatialError{Message: fmt.Sprintf("max octave %d must not be negative", a.opts.MaxOctave)}
	}
	out := doc.Clone()
	for i := range out.Staves {
		a.analyzeStave(out, &out.Staves[i])
	}
	return out, nil
}

type stave struct {
	doc      *notation.Document
	elements []notation.Element
	notes    []int // element indexes holding notes, in column order
}

func (a *Analyzer) analyzeStave(doc *notation.Document, st *notation.Stave) {
	content := st.Content()
	if content == nil {
		return
	}
	s := &stave{doc: doc, elements: content.Elements}
	for i := range s.elements {
		if s.elements[i].Kind == notation.ElementNote {
			s.notes = append(s.notes, i)
		}
	}
	octaves := make(map[int]int)
	var talas []notation.Mark
	var verses [][]notation.Mark // syllables, one slice per lower line
	for li := range st.Lines {
		line := &st.Lines[li]
		if line.Kind != notation.LineUpper && line.Kind != notation.LineLower {
			continue
		}
		var syllables []notation.Mark
		for _, m := range line.Marks {
			switch m.Kind {
			case notation.MarkUpperOctave, notation.MarkLowerOctave:
				if idx, ok := s.target(m); ok {
					octaves[idx] += octaveWeight(m)
					s.consume(idx, m)
				}
			case notation.MarkMordent:
				if idx, ok := s.target(m); ok {
					s.elements[idx].Note.Mordent = true
					s.consume(idx, m)
				}
			case notation.MarkSlur, notation.MarkBeatGroup:
				s.span(m)
			case notation.MarkTala:
				talas = append(talas, m)
			case notation.MarkSyllable:
				syllables = append(syllables, m)
			}
		}
		if len(syllables) > 0 {
			verses = append(verses, syllables)
		}
	}
	for _, idx := range s.notes {
		n := s.elements[idx].Note
		oct := octaves[idx]
		if oct > a.opts.MaxOctave || oct < -a.opts.MaxOctave {
			clamped := a.opts.MaxOctave
			if oct < 0 {
				clamped = -clamped
			}
			doc.Warn(notation.StageSpatial, s.elements[idx].Pos, "octave %+d of %q clamped to %+d", oct, n.Syllable, clamped)
			oct = clamped
		}
		n.Octave = oct
	}
	s.assignTalas(talas)
	for _, verse := range verses {
		s.assignSyllables(verse)
	}
}

func octaveWeight(m notation.Mark) int {
	w := 1
	if m.Glyph == ":" {
		w = 2
	}
	if m.Kind == notation.MarkLowerOctave {
		w = -w
	}
	return w
}

func (s *stave) consume(idx int, m notation.Mark) {
	el := &s.elements[idx]
	el.Consumed = append(el.Consumed, notation.Consumed{Kind: m.Kind, Glyph: m.Glyph, Pos: m.Pos})
}

// target finds the note whose span contains the mark's column. An orphan
// falls back to the nearest preceding note, then the following one, and is
// reported as a warning.
func (s *stave) target(m notation.Mark) (int, bool) {
	col := m.Pos.Column
	for _, idx := range s.notes {
		el := &s.elements[idx]
		if col >= el.Pos.Column && col < el.End() {
			return idx, true
		}
	}
	idx, ok := s.nearest(col)
	if !ok {
		s.doc.Warn(notation.StageSpatial, m.Pos, "%s mark %q has no note to attach to", m.Kind, m.Glyph)
		return 0, false
	}
	s.doc.Warn(notation.StageSpatial, m.Pos, "%s mark %q is not aligned with a note, attached to %q",
		m.Kind, m.Glyph, s.elements[idx].Note.Syllable)
	return idx, true
}

func (s *stave) nearest(col int) (int, bool) {
	if len(s.notes) == 0 {
		return 0, false
	}
	// notes are in column order; the last one starting before col wins
	i := sort.Search(len(s.notes), func(i int) bool { return s.elements[s.notes[i]].Pos.Column >= col })
	if i > 0 {
		return s.notes[i-1], true
	}
	return s.notes[0], true
}

// span marks every note starting inside the run's [start, end) columns.
func (s *stave) span(m notation.Mark) {
	var hit []int
	for _, idx := range s.notes {
		c := s.elements[idx].Pos.Column
		if c >= m.Pos.Column && c < m.End() {
			hit = append(hit, idx)
		}
	}
	if len(hit) == 0 {
		idx, ok := s.nearest(m.Pos.Column)
		if !ok {
			s.doc.Warn(notation.StageSpatial, m.Pos, "%s run has no note to attach to", m.Kind)
			return
		}
		s.doc.Warn(notation.StageSpatial, m.Pos, "%s run covers no note, recorded on %q", m.Kind, s.elements[idx].Note.Syllable)
		s.consume(idx, m)
		return
	}
	for i, idx := range hit {
		role := notation.RoleMiddle
		switch {
		case i == 0:
			role = notation.RoleStart
		case i == len(hit)-1:
			role = notation.RoleEnd
		}
		n := s.elements[idx].Note
		if m.Kind == notation.MarkSlur {
			n.InSlur, n.SlurRole = true, role
		} else {
			n.InBeatGroup, n.BeatGroupRole = true, role
		}
		s.consume(idx, m)
	}
}

// assignTalas pairs tala markers with barlines in column order.
func (s *stave) assignTalas(marks []notation.Mark) {
	if len(marks) == 0 {
		return
	}
	sort.SliceStable(marks, func(i, j int) bool { return marks[i].Pos.Column < marks[j].Pos.Column })
	var bars []int
	for i := range s.elements {
		if s.elements[i].Kind == notation.ElementBarline {
			bars = append(bars, i)
		}
	}
	for i, m := range marks {
		if i >= len(bars) {
			s.doc.Warn(notation.StageSpatial, m.Pos, "tala marker %q has no barline", m.Glyph)
			continue
		}
		v := notation.TalaSam
		if m.Glyph != "+" {
			v = int(m.Glyph[0] - '0')
		}
		s.elements[bars[i]].Tala = &v
		s.consume(bars[i], m)
	}
}

// assignSyllables gives each lyric token of one lower line to the first
// free note at or after its column. Notes inside a slur after its first note carry the melisma and
// take no syllable. Tokens left over go to the last note.
func (s *stave) assignSyllables(marks []notation.Mark) {
	if len(marks) == 0 {
		return
	}
	if len(s.notes) == 0 {
		for _, m := range marks {
			s.doc.Warn(notation.StageSpatial, m.Pos, "syllable %q has no note to attach to", m.Glyph)
		}
		return
	}
	next := 0
	for _, m := range marks {
		idx := -1
		for next < len(s.notes) {
			cand := s.notes[next]
			next++
			n := s.elements[cand].Note
			if n.SlurRole == notation.RoleMiddle || n.SlurRole == notation.RoleEnd {
				continue
			}
			if s.elements[cand].End() > m.Pos.Column {
				idx = cand
				break
			}
		}
		if idx < 0 {
			idx = s.notes[len(s.notes)-1]
			s.doc.Warn(notation.StageSpatial, m.Pos, "syllable %q has no free note, appended to %q", m.Glyph, s.elements[idx].Note.Syllable)
		}
		n := s.elements[idx].Note
		n.Lyrics = append(n.Lyrics, m.Glyph)
		s.consume(idx, m)
	}
}
