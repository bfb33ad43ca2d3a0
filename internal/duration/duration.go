// Package duration maps exact fractions of a whole note onto standard note
// values for engraving.
package duration

import (
	"github.com/cbegin/musictext-go/internal/notation"
)

type entry struct {
	value notation.Fraction
	sd    notation.StandardDuration
}

// table is ordered longest first for greedy decomposition.
var table = []entry{
	{notation.NewFraction(1, 1), notation.StandardDuration{Base: "w"}},
	{notation.NewFraction(1, 2), notation.StandardDuration{Base: "h"}},
	{notation.NewFraction(3, 8), notation.StandardDuration{Base: "q", Dots: 1}},
	{notation.NewFraction(1, 4), notation.StandardDuration{Base: "q"}},
	{notation.NewFraction(3, 16), notation.StandardDuration{Base: "8", Dots: 1}},
	{notation.NewFraction(1, 8), notation.StandardDuration{Base: "8"}},
	{notation.NewFraction(3, 32), notation.StandardDuration{Base: "16", Dots: 1}},
	{notation.NewFraction(1, 16), notation.StandardDuration{Base: "16"}},
	{notation.NewFraction(1, 32), notation.StandardDuration{Base: "32"}},
}

var (
	sixtyFourth     = notation.NewFraction(1, 64)
	oneTwentyEighth = notation.NewFraction(1, 128)
	smallest        = notation.NewFraction(1, 32)
)

// maxParts caps the decomposition.
const maxParts = 16

// Result is the spelling of one fraction. Residue is the part, if any, that
// could not be expressed exactly and was rounded to a shorter value.
type Result struct {
	Durations []notation.StandardDuration
	Residue   notation.Fraction
}

// Exact reports whether the durations sum to the input.
func (r Result) Exact() bool { return r.Residue.IsZero() }

// Lookup returns the single table entry equal to f.
func Lookup(f notation.Fraction) (notation.StandardDuration, bool) {
	for _, e := range table {
		if e.value.Cmp(f) == 0 {
			return e.sd, true
		}
	}
	return notation.StandardDuration{}, false
}

// Decompose spells f as tied standard durations, taking the longest table
// entry that still fits at every step. A remainder shorter than a
// thirty-second is rounded down to a 64th or 128th, or dropped when it is
// shorter than a 128th, and is reported in Result.Residue. The spelled
// durations never sum to more than f.
func Decompose(f notation.Fraction) Result {
	var res Result
	if f.Sign() <= 0 {
		return res
	}
	if sd, ok := Lookup(f); ok {
		res.Durations = []notation.StandardDuration{sd}
		return res
	}
	rest := f
	for len(res.Durations) < maxParts && !rest.IsZero() {
		if rest.Cmp(smallest) < 0 {
			break
		}
		for _, e := range table {
			if e.value.Cmp(rest) <= 0 {
				res.Durations = append(res.Durations, e.sd)
				rest = rest.Sub(e.value)
				break
			}
		}
	}
	if rest.IsZero() {
		return res
	}
	res.Residue = rest
	switch {
	case rest.Cmp(sixtyFourth) >= 0:
		res.Durations = append(res.Durations, notation.StandardDuration{Base: "64"})
	case rest.Cmp(oneTwentyEighth) >= 0:
		res.Durations = append(res.Durations, notation.StandardDuration{Base: "128"})
	}
	return res
}

// VexFlow returns the VexFlow spelling of each duration.
func VexFlow(ds []notation.StandardDuration) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.VexFlow()
	}
	return out
}

// Lilypond returns the LilyPond spelling of each duration.
func Lilypond(ds []notation.StandardDuration) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Lilypond()
	}
	return out
}
