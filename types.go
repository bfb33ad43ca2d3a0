package musictext

import "github.com/cbegin/musictext-go/internal/notation"

type (
	Document         = notation.Document
	Header           = notation.Header
	Stave            = notation.Stave
	Line             = notation.Line
	Element          = notation.Element
	Note             = notation.Note
	Mark             = notation.Mark
	Consumed         = notation.Consumed
	Position         = notation.Position
	Warning          = notation.Warning
	Item             = notation.Item
	Beat             = notation.Beat
	BeatElement      = notation.BeatElement
	TupletRatio      = notation.TupletRatio
	StandardDuration = notation.StandardDuration
	Fraction         = notation.Fraction
	PitchCode        = notation.PitchCode
	System           = notation.System
	BarlineKind      = notation.BarlineKind

	ParseError   = notation.ParseError
	SpatialError = notation.SpatialError
	RhythmError  = notation.RhythmError
)

const (
	SystemUnknown    = notation.SystemUnknown
	SystemNumber     = notation.SystemNumber
	SystemSargam     = notation.SystemSargam
	SystemWestern    = notation.SystemWestern
	SystemBhatkhande = notation.SystemBhatkhande
	SystemTabla      = notation.SystemTabla
)

var (
	ErrParse   = notation.ErrParse
	ErrSpatial = notation.ErrSpatial
	ErrRhythm  = notation.ErrRhythm
)

// NewFraction returns n/d in lowest terms.
func NewFraction(n, d int64) Fraction { return notation.NewFraction(n, d) }

// ParseFraction accepts "n/d" or a whole number.
func ParseFraction(s string) (Fraction, error) { return notation.ParseFraction(s) }
