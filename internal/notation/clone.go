package notation

// Stage names used in warnings and logs.
const (
	StageParse   = "parse"
	StageSpatial = "spatial"
	StageRhythm  = "rhythm"
)

// Clone returns a deep copy. Nil slices and maps stay nil.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Header = d.Header.clone()
	if d.Staves != nil {
		out.Staves = make([]Stave, len(d.Staves))
		for i := range d.Staves {
			out.Staves[i] = d.Staves[i].clone()
		}
	}
	if d.Warnings != nil {
		out.Warnings = append([]Warning(nil), d.Warnings...)
	}
	return &out
}

func (h Header) clone() Header {
	if h.Directives == nil {
		return h
	}
	m := make(map[string]string, len(h.Directives))
	for k, v := range h.Directives {
		m[k] = v
	}
	h.Directives = m
	return h
}

func (s Stave) clone() Stave {
	if s.Lines != nil {
		lines := make([]Line, len(s.Lines))
		for i := range s.Lines {
			lines[i] = s.Lines[i].clone()
		}
		s.Lines = lines
	}
	if s.Rhythm != nil {
		items := make([]Item, len(s.Rhythm))
		for i := range s.Rhythm {
			items[i] = s.Rhythm[i].clone()
		}
		s.Rhythm = items
	}
	return s
}

func (l Line) clone() Line {
	if l.Elements != nil {
		els := make([]Element, len(l.Elements))
		for i := range l.Elements {
			els[i] = l.Elements[i].clone()
		}
		l.Elements = els
	}
	if l.Marks != nil {
		l.Marks = append([]Mark(nil), l.Marks...)
	}
	return l
}

func (e Element) clone() Element {
	e.Note = e.Note.Clone()
	if e.Tala != nil {
		v := *e.Tala
		e.Tala = &v
	}
	if e.Duration != nil {
		v := *e.Duration
		e.Duration = &v
	}
	if e.Consumed != nil {
		e.Consumed = append([]Consumed(nil), e.Consumed...)
	}
	return e
}

func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	out := *n
	if n.Lyrics != nil {
		out.Lyrics = append([]string(nil), n.Lyrics...)
	}
	return &out
}

func (it Item) clone() Item {
	if it.Tala != nil {
		v := *it.Tala
		it.Tala = &v
	}
	if it.Beat != nil {
		b := *it.Beat
		if b.TupletRatio != nil {
			r := *b.TupletRatio
			b.TupletRatio = &r
		}
		if b.Elements != nil {
			els := make([]BeatElement, len(b.Elements))
			for i, be := range it.Beat.Elements {
				be.Note = be.Note.Clone()
				if be.Standard != nil {
					be.Standard = append([]StandardDuration(nil), be.Standard...)
				}
				els[i] = be
			}
			b.Elements = els
		}
		it.Beat = &b
	}
	return it
}

// StripAnnotations returns a copy with every spatial contribution removed:
// consumed marks, octaves, slur and beat-group flags, mordents, lyrics,
// barline talas and spatial warnings.
func (d *Document) StripAnnotations() *Document {
	out := d.Clone()
	if out == nil {
		return nil
	}
	for si := range out.Staves {
		for li := range out.Staves[si].Lines {
			line := &out.Staves[si].Lines[li]
			for ei := range line.Elements {
				el := &line.Elements[ei]
				el.Consumed = nil
				el.Tala = nil
				if el.Note != nil {
					stripNote(el.Note)
				}
			}
		}
		for ii := range out.Staves[si].Rhythm {
			it := &out.Staves[si].Rhythm[ii]
			it.Tala = nil
			if it.Beat == nil {
				continue
			}
			for bi := range it.Beat.Elements {
				if n := it.Beat.Elements[bi].Note; n != nil {
					stripNote(n)
				}
			}
		}
	}
	if out.Warnings != nil {
		kept := out.Warnings[:0]
		for _, w := range out.Warnings {
			if w.Stage != StageSpatial {
				kept = append(kept, w)
			}
		}
		if len(kept) == 0 {
			kept = nil
		}
		out.Warnings = kept
	}
	return out
}

func stripNote(n *Note) {
	n.Octave = 0
	n.InSlur = false
	n.InBeatGroup = false
	n.SlurRole = RoleNone
	n.BeatGroupRole = RoleNone
	n.Mordent = false
	n.Lyrics = nil
}

// Notes returns the content-line notes of a stave in order.
func (s *Stave) Notes() []*Note {
	line := s.Content()
	if line == nil {
		return nil
	}
	var notes []*Note
	for i := range line.Elements {
		if line.Elements[i].Note != nil {
			notes = append(notes, line.Elements[i].Note)
		}
	}
	return notes
}
