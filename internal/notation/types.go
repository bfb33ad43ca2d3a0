package notation

import (
	"fmt"
	"strings"
)

type System int

const (
	SystemUnknown System = iota
	SystemNumber
	SystemSargam
	SystemWestern
	SystemBhatkhande
	SystemTabla
)

var systemNames = map[System]string{
	SystemNumber:     "number",
	SystemSargam:     "sargam",
	SystemWestern:    "western",
	SystemBhatkhande: "bhatkhande",
	SystemTabla:      "tabla",
}

// Systems lists the notation systems in detection tie-break order.
var Systems = []System{SystemNumber, SystemSargam, SystemWestern, SystemBhatkhande, SystemTabla}

func (s System) String() string {
	if n, ok := systemNames[s]; ok {
		return n
	}
	return "unknown"
}

func ParseSystem(name string) (System, error) {
	for s, n := range systemNames {
		if n == name {
			return s, nil
		}
	}
	return SystemUnknown, fmt.Errorf("unknown notation system %q", name)
}

func (s System) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *System) UnmarshalText(b []byte) error {
	v, err := ParseSystem(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type BarlineKind int

const (
	BarlineNone BarlineKind = iota
	BarlineSingle
	BarlineDouble
	BarlineFinal
	BarlineRepeatStart
	BarlineRepeatEnd
	BarlineRepeatBoth
)

var barlineNames = map[BarlineKind]string{
	BarlineSingle:      "single",
	BarlineDouble:      "double",
	BarlineFinal:       "final",
	BarlineRepeatStart: "repeat_start",
	BarlineRepeatEnd:   "repeat_end",
	BarlineRepeatBoth:  "repeat_both",
}

func ParseBarline(glyph string) (BarlineKind, bool) {
	switch glyph {
	case "|":
		return BarlineSingle, true
	case "||":
		return BarlineDouble, true
	case "|.":
		return BarlineFinal, true
	case "|:":
		return BarlineRepeatStart, true
	case ":|":
		return BarlineRepeatEnd, true
	case "|:|", ":|:":
		return BarlineRepeatBoth, true
	}
	return BarlineNone, false
}

func (b BarlineKind) String() string { return barlineNames[b] }

func (b BarlineKind) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

type ElementKind int

const (
	ElementNote ElementKind = iota + 1
	ElementDash
	ElementBreath
	ElementWhitespace
	ElementBarline
)

var elementNames = map[ElementKind]string{
	ElementNote:       "note",
	ElementDash:       "dash",
	ElementBreath:     "breath_mark",
	ElementWhitespace: "whitespace",
	ElementBarline:    "barline",
}

func (k ElementKind) String() string { return elementNames[k] }

func (k ElementKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

type LineKind int

const (
	LineContent LineKind = iota + 1
	LineUpper
	LineLower
	LineText
)

var lineNames = map[LineKind]string{
	LineContent: "content",
	LineUpper:   "upper",
	LineLower:   "lower",
	LineText:    "text",
}

func (k LineKind) String() string { return lineNames[k] }

func (k LineKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

type MarkKind int

const (
	MarkSpace MarkKind = iota + 1
	MarkUpperOctave
	MarkSlur
	MarkMordent
	MarkTala
	MarkLowerOctave
	MarkBeatGroup
	MarkSyllable
)

var markNames = map[MarkKind]string{
	MarkSpace:       "space",
	MarkUpperOctave: "upper_octave",
	MarkSlur:        "slur",
	MarkMordent:     "mordent",
	MarkTala:        "tala",
	MarkLowerOctave: "lower_octave",
	MarkBeatGroup:   "beat_group",
	MarkSyllable:    "syllable",
}

func (k MarkKind) String() string { return markNames[k] }

func (k MarkKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

type Role int

const (
	RoleNone Role = iota
	RoleStart
	RoleMiddle
	RoleEnd
)

var roleNames = map[Role]string{RoleStart: "start", RoleMiddle: "middle", RoleEnd: "end"}

func (r Role) String() string { return roleNames[r] }

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// TalaSam is the tala index stored for a "+" marker.
const TalaSam = -1

// Position locates a glyph. Line is 1-based, Column is the 0-based rune
// column within the line and Index is the 0-based rune offset into the
// document source.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Index  int `json:"index"`
}

// Consumed records an annotation mark folded into a content element.
type Consumed struct {
	Kind  MarkKind `json:"kind"`
	Glyph string   `json:"glyph"`
	Pos   Position `json:"position"`
}

type Note struct {
	Syllable       string    `json:"syllable"`
	PitchCode      PitchCode `json:"pitch_code"`
	Octave         int       `json:"octave"`
	System         System    `json:"notation_system"`
	Numerator      int64     `json:"numerator"`
	Denominator    int64     `json:"denominator"`
	TiedToPrevious bool      `json:"tied_to_previous"`
	TiedToNext     bool      `json:"tied_to_next"`
	InSlur         bool      `json:"in_slur"`
	InBeatGroup    bool      `json:"in_beat_group"`
	SlurRole       Role      `json:"slur_role,omitempty"`
	BeatGroupRole  Role      `json:"beat_group_role,omitempty"`
	Mordent        bool      `json:"mordent,omitempty"`
	Lyrics         []string  `json:"lyrics,omitempty"`
}

// Element is one content-line element; Kind selects which fields are set.
type Element struct {
	Kind     ElementKind `json:"kind"`
	Pos      Position    `json:"position"`
	Text     string      `json:"text"`
	Width    int         `json:"width"`
	Note     *Note       `json:"note,omitempty"`
	Barline  BarlineKind `json:"barline,omitempty"`
	Tala     *int        `json:"tala,omitempty"`
	Duration *Fraction   `json:"duration,omitempty"`
	Consumed []Consumed  `json:"consumed_elements,omitempty"`
}

// End is the column one past the element.
func (e *Element) End() int { return e.Pos.Column + e.Width }

// Mark is one upper- or lower-line element.
type Mark struct {
	Kind  MarkKind `json:"kind"`
	Glyph string   `json:"glyph"`
	Pos   Position `json:"position"`
	Width int      `json:"width"`
}

func (m *Mark) End() int { return m.Pos.Column + m.Width }

type Line struct {
	Kind     LineKind  `json:"kind"`
	Number   int       `json:"line"`
	Text     string    `json:"text"`
	Elements []Element `json:"elements,omitempty"`
	Marks    []Mark    `json:"marks,omitempty"`
}

type Stave struct {
	Index        int    `json:"index"`
	Lines        []Line `json:"lines"`
	ContentIndex int    `json:"content_line"`
	System       System `json:"notation_system"`
	Rhythm       []Item `json:"rhythm,omitempty"`
}

func (s *Stave) Content() *Line {
	if s.ContentIndex < 0 || s.ContentIndex >= len(s.Lines) {
		return nil
	}
	return &s.Lines[s.ContentIndex]
}

type Header struct {
	Title      string            `json:"title,omitempty"`
	Author     string            `json:"author,omitempty"`
	Directives map[string]string `json:"directives,omitempty"`
}

// Directive looks a header directive up case-insensitively.
func (h *Header) Directive(key string) (string, bool) {
	for k, v := range h.Directives {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

type Warning struct {
	Stage   string `json:"stage"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s: line %d, column %d: %s", w.Stage, w.Line, w.Column, w.Message)
	}
	return w.Stage + ": " + w.Message
}

type Document struct {
	ID         string    `json:"id"`
	SourceHash string    `json:"source_hash"`
	Source     string    `json:"-"`
	Header     Header    `json:"header"`
	Staves     []Stave   `json:"staves"`
	Warnings   []Warning `json:"warnings,omitempty"`
}

func (d *Document) Warn(stage string, pos Position, format string, args ...any) {
	w := Warning{Stage: stage, Message: fmt.Sprintf(format, args...)}
	if pos.Line > 0 {
		w.Line = pos.Line
		w.Column = pos.Column + 1
	}
	d.Warnings = append(d.Warnings, w)
}

type ItemKind int

const (
	ItemBeat ItemKind = iota + 1
	ItemBarline
	ItemBreath
	ItemTonic
)

var itemNames = map[ItemKind]string{
	ItemBeat:    "beat",
	ItemBarline: "barline",
	ItemBreath:  "breath_mark",
	ItemTonic:   "tonic",
}

func (k ItemKind) String() string { return itemNames[k] }

func (k ItemKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Item is one rhythm-stage output entry.
type Item struct {
	Kind    ItemKind    `json:"kind"`
	Pos     Position    `json:"position"`
	Beat    *Beat       `json:"beat,omitempty"`
	Barline BarlineKind `json:"barline,omitempty"`
	Tala    *int        `json:"tala,omitempty"`
	Tonic   string      `json:"tonic,omitempty"`
}

type TupletRatio struct {
	Actual int `json:"actual"`
	Normal int `json:"normal"`
}

type Beat struct {
	Elements       []BeatElement `json:"elements"`
	Divisions      int           `json:"divisions"`
	IsTuplet       bool          `json:"is_tuplet"`
	TupletRatio    *TupletRatio  `json:"tuplet_ratio"`
	TotalDuration  Fraction      `json:"total_duration"`
	TiedToPrevious bool          `json:"tied_to_previous"`
	TiedToNext     bool          `json:"tied_to_next"`
}

type BeatElementKind int

const (
	BeatNote BeatElementKind = iota + 1
	BeatContinuation
	BeatRest
)

var beatElementNames = map[BeatElementKind]string{
	BeatNote:         "note",
	BeatContinuation: "continuation",
	BeatRest:         "rest",
}

func (k BeatElementKind) String() string { return beatElementNames[k] }

func (k BeatElementKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// StandardDuration is a base duration with augmentation dots. Base is one of
// w, h, q, 8, 16, 32, 64, 128.
type StandardDuration struct {
	Base string `json:"base"`
	Dots int    `json:"dots"`
}

// BeatElement is a note head with its continuations, a tie continuation of
// the previous beat's note, or a rest. Element indexes the content line.
type BeatElement struct {
	Kind         BeatElementKind    `json:"kind"`
	Pos          Position           `json:"position"`
	Element      int                `json:"element"`
	Note         *Note              `json:"note,omitempty"`
	Subdivisions int                `json:"subdivisions"`
	Duration     Fraction           `json:"duration"`
	Notated      Fraction           `json:"notated"`
	Standard     []StandardDuration `json:"standard"`
}
