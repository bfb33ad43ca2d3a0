// Package pitch holds the per-system pitch tables and notation-system
// detection.
package pitch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cbegin/musictext-go/internal/notation"
)

var numberTable = map[string]notation.PitchCode{
	"1": notation.N1, "2": notation.N2, "3": notation.N3, "4": notation.N4,
	"5": notation.N5, "6": notation.N6, "7": notation.N7,
}

var westernTable = map[string]notation.PitchCode{
	"C": notation.N1, "D": notation.N2, "E": notation.N3, "F": notation.N4,
	"G": notation.N5, "A": notation.N6, "B": notation.N7,
}

// Lowercase r g d n are komal, uppercase M is tivra.
var sargamTable = map[string]notation.PitchCode{
	"S": notation.N1, "s": notation.N1,
	"R": notation.N2, "r": notation.N2b,
	"G": notation.N3, "g": notation.N3b,
	"m": notation.N4, "M": notation.N4s,
	"P": notation.N5, "p": notation.N5,
	"D": notation.N6, "d": notation.N6b,
	"N": notation.N7, "n": notation.N7b,
}

var bhatkhandeTable = map[string]notation.PitchCode{
	"स": notation.N1, "रे": notation.N2, "र": notation.N2, "ग": notation.N3,
	"म": notation.N4, "प": notation.N5, "ध": notation.N6, "द": notation.N6,
	"नि": notation.N7, "न": notation.N7,
	"S": notation.N1, "R": notation.N2, "G": notation.N3, "M": notation.N4,
	"P": notation.N5, "D": notation.N6, "N": notation.N7,
}

// Bols are percussion strokes; they carry no pitch and all map to N1.
var tablaTable = map[string]notation.PitchCode{
	"dha": notation.N1, "ge": notation.N1, "na": notation.N1, "ka": notation.N1,
	"ta": notation.N1, "trka": notation.N1, "terekita": notation.N1, "dhin": notation.N1,
}

var tables = map[notation.System]map[string]notation.PitchCode{
	notation.SystemNumber:     numberTable,
	notation.SystemSargam:     sargamTable,
	notation.SystemWestern:    westernTable,
	notation.SystemBhatkhande: bhatkhandeTable,
	notation.SystemTabla:      tablaTable,
}

// Accidental suffixes, longest first.
var suffixes = []struct {
	text  string
	shift int
}{
	{"##", 2},
	{"#", 1},
	{"bb", -2},
	{"b", -1},
}

// Bols lists the tabla bols longest first.
var Bols = sortedKeys(tablaTable)

// DevanagariBases lists the devanagari base glyphs longest first.
var DevanagariBases = func() []string {
	var out []string
	for _, k := range sortedKeys(bhatkhandeTable) {
		if k[0] >= 0x80 {
			out = append(out, k)
		}
	}
	return out
}()

func sortedKeys(m map[string]notation.PitchCode) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// SplitAccidentals separates a trailing accidental suffix from glyph.
func SplitAccidentals(glyph string) (base string, shift int) {
	for _, s := range suffixes {
		if len(glyph) > len(s.text) && strings.HasSuffix(glyph, s.text) {
			return glyph[:len(glyph)-len(s.text)], s.shift
		}
	}
	return glyph, 0
}

// Accepts reports whether glyph, with any accidental suffix, is a valid
// pitch in sys.
func Accepts(sys notation.System, glyph string) bool {
	_, err := Lookup(sys, glyph)
	return err == nil
}

// Lookup resolves glyph in sys. Accidental suffixes shift from the glyph's
// intrinsic pitch, so Sargam "r#" is N2.
func Lookup(sys notation.System, glyph string) (notation.PitchCode, error) {
	table, ok := tables[sys]
	if !ok {
		return notation.PitchNone, fmt.Errorf("unknown notation system %v", sys)
	}
	if p, ok := table[glyph]; ok {
		return p, nil
	}
	base, shift := SplitAccidentals(glyph)
	p, ok := table[base]
	if !ok {
		return notation.PitchNone, fmt.Errorf("glyph %q is not a %s pitch", glyph, sys)
	}
	if sys == notation.SystemTabla && shift != 0 {
		return notation.PitchNone, fmt.Errorf("tabla bol %q takes no accidentals", glyph)
	}
	shifted, ok := p.Shift(shift)
	if !ok {
		return notation.PitchNone, fmt.Errorf("accidentals on %q exceed a double sharp or flat", glyph)
	}
	return shifted, nil
}
