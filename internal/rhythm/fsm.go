// Package rhythm segments content lines into beats with exact durations.
package rhythm

import (
	"fmt"

	"github.com/cbegin/musictext-go/internal/duration"
	"github.com/cbegin/musictext-go/internal/notation"
)

type Options struct {
	// BeatSpan is the length of one beat as a fraction of a whole note.
	BeatSpan notation.Fraction
	// TonicItems emits a leading Tonic item when the header names one.
	TonicItems bool
}

func DefaultOptions() Options {
	return Options{
		BeatSpan:   notation.NewFraction(1, 4),
		TonicItems: true,
	}
}

type Analyzer struct{ opts Options }

func New(opts Options) *Analyzer { return &Analyzer{opts: opts} }

type state int

const (
	stateStart state = iota
	stateInBeat
	stateExpectBeat
)

// sounding locates the last note-bearing beat element emitted, so a later
// dash can tie onto it.
type sounding struct {
	item, elem int
	content    *notation.Note // the head note on the content line
}

type machine struct {
	opts    Options
	doc     *notation.Document
	content []notation.Element
	items   []notation.Item
	state   state
	beat    *notation.Beat
	beatPos notation.Position
	last    *sounding
}

// Analyze returns a copy of doc whose staves carry rhythm items and whose
// content notes and dashes carry durations.
func (a *Analyzer) Analyze(doc *notation.Document) (*notation.Document, error) {
	if doc == nil {
		return nil, &notation.RhythmError{Message: "nil document"}
	}
	if a.opts.BeatSpan.Sign() <= 0 {
		return nil, &notation.RhythmError{Message: fmt.Sprintf("beat span %v must be positive", a.opts.BeatSpan)}
	}
	out := doc.Clone()
	var tonic string
	if a.opts.TonicItems {
		if v, ok := out.Header.Directive("tonic"); ok {
			tonic = v
		} else if v, ok := out.Header.Directive("key"); ok {
			tonic = v
		}
	}
	for i := range out.Staves {
		st := &out.Staves[i]
		line := st.Content()
		if line == nil {
			continue
		}
		m := &machine{opts: a.opts, doc: out, content: line.Elements, items: []notation.Item{}}
		if tonic != "" {
			m.items = append(m.items, notation.Item{Kind: notation.ItemTonic, Pos: notation.Position{Line: line.Number}, Tonic: tonic})
		}
		if err := m.run(); err != nil {
			return nil, err
		}
		st.Rhythm = m.items
	}
	return out, nil
}

func (m *machine) run() error {
	for i := range m.content {
		el := &m.content[i]
		switch el.Kind {
		case notation.ElementNote:
			m.openBeat(el)
			m.beat.Elements = append(m.beat.Elements, notation.BeatElement{
				Kind: notation.BeatNote, Pos: el.Pos, Element: i, Note: el.Note, Subdivisions: 1,
			})
		case notation.ElementDash:
			if m.state == stateInBeat {
				m.beat.Elements[len(m.beat.Elements)-1].Subdivisions++
				continue
			}
			m.openBeat(el)
			m.beat.Elements = append(m.beat.Elements, m.leadingDash(el, i))
		case notation.ElementWhitespace:
			if m.state == stateInBeat {
				if err := m.closeBeat(); err != nil {
					return err
				}
				m.state = stateExpectBeat
			}
		case notation.ElementBarline:
			if err := m.closeBeat(); err != nil {
				return err
			}
			it := notation.Item{Kind: notation.ItemBarline, Pos: el.Pos, Barline: el.Barline}
			if el.Tala != nil {
				v := *el.Tala
				it.Tala = &v
			}
			m.items = append(m.items, it)
			m.state = stateStart
		case notation.ElementBreath:
			if err := m.closeBeat(); err != nil {
				return err
			}
			m.items = append(m.items, notation.Item{Kind: notation.ItemBreath, Pos: el.Pos})
			m.last = nil
			m.state = stateExpectBeat
		default:
			return &notation.RhythmError{Message: fmt.Sprintf("unexpected content element %v at line %d", el.Kind, el.Pos.Line)}
		}
	}
	return m.closeBeat()
}

func (m *machine) openBeat(el *notation.Element) {
	if m.state == stateInBeat {
		return
	}
	m.beat = &notation.Beat{}
	m.beatPos = el.Pos
	m.state = stateInBeat
}

// leadingDash starts a beat with a dash: a tie continuation of the last
// sounding note, or a rest when there is none.
func (m *machine) leadingDash(el *notation.Element, idx int) notation.BeatElement {
	if m.last == nil {
		return notation.BeatElement{Kind: notation.BeatRest, Pos: el.Pos, Element: idx, Subdivisions: 1}
	}
	prev := m.items[m.last.item].Beat
	prev.TiedToNext = true
	prevElem := &prev.Elements[m.last.elem]
	prevElem.Note.TiedToNext = true
	m.last.content.TiedToNext = true

	n := prevElem.Note.Clone()
	n.TiedToPrevious = true
	n.TiedToNext = false
	m.beat.TiedToPrevious = true
	return notation.BeatElement{Kind: notation.BeatContinuation, Pos: el.Pos, Element: idx, Note: n, Subdivisions: 1}
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

func lowerPowerOfTwo(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

func (m *machine) closeBeat() error {
	if m.state != stateInBeat || m.beat == nil {
		return nil
	}
	b := m.beat
	m.beat = nil
	m.state = stateStart
	for _, be := range b.Elements {
		b.Divisions += be.Subdivisions
	}
	if b.Divisions == 0 {
		return nil
	}
	span := m.opts.BeatSpan
	normal := b.Divisions
	if !isPowerOfTwo(b.Divisions) {
		normal = lowerPowerOfTwo(b.Divisions)
		b.IsTuplet = true
		b.TupletRatio = &notation.TupletRatio{Actual: b.Divisions, Normal: normal}
	}
	unit := span.DivInt(int64(b.Divisions))
	total := notation.NewFraction(0, 1)
	for i := range b.Elements {
		be := &b.Elements[i]
		be.Duration = unit.MulInt(int64(be.Subdivisions))
		be.Notated = span.MulInt(int64(be.Subdivisions)).DivInt(int64(normal))
		res := duration.Decompose(be.Notated)
		be.Standard = res.Durations
		if !res.Exact() {
			m.doc.Warn(notation.StageRhythm, be.Pos, "duration %v approximated, %v left over", be.Notated, res.Residue)
		}
		total = total.Add(be.Duration)
		m.assignContent(be, unit)
	}
	b.TotalDuration = total
	if total.Cmp(span) != 0 {
		return &notation.RhythmError{Message: fmt.Sprintf("beat at line %d, column %d sums to %v, want %v",
			m.beatPos.Line, m.beatPos.Column+1, total, span)}
	}
	// The beat keeps snapshots so later stages never alias the content line.
	for i := range b.Elements {
		be := &b.Elements[i]
		if be.Kind == notation.BeatNote {
			content := be.Note
			be.Note = content.Clone()
			m.last = &sounding{item: len(m.items), elem: i, content: content}
		} else if be.Kind == notation.BeatContinuation {
			m.last = &sounding{item: len(m.items), elem: i, content: m.last.content}
		}
	}
	m.items = append(m.items, notation.Item{Kind: notation.ItemBeat, Pos: m.beatPos, Beat: b})
	return nil
}

// assignContent writes durations back onto the content line: the note gets
// its share and every dash it covers one subdivision.
func (m *machine) assignContent(be *notation.BeatElement, unit notation.Fraction) {
	if be.Note != nil {
		be.Note.Numerator, be.Note.Denominator = be.Duration.Num, be.Duration.Den
	}
	first := be.Element
	if be.Kind == notation.BeatNote {
		first++
	}
	for j := first; j < be.Element+be.Subdivisions && j < len(m.content); j++ {
		d := unit
		m.content[j].Duration = &d
	}
}
