package pitch

import "github.com/cbegin/musictext-go/internal/notation"

// Unambiguous reports the single system a glyph belongs to. The shared
// capitals G D R M P N belong to several systems and report false.
func Unambiguous(glyph string) (notation.System, bool) {
	base, _ := SplitAccidentals(glyph)
	if _, ok := tablaTable[base]; ok {
		return notation.SystemTabla, true
	}
	if _, ok := numberTable[base]; ok {
		return notation.SystemNumber, true
	}
	switch base {
	case "C", "E", "F", "A", "B":
		return notation.SystemWestern, true
	case "S", "s", "r", "g", "m", "n", "d", "p":
		return notation.SystemSargam, true
	}
	if _, ok := bhatkhandeTable[base]; ok && base[0] >= 0x80 {
		return notation.SystemBhatkhande, true
	}
	return notation.SystemUnknown, false
}

// Detect picks the notation system for one stave's pitch glyphs. The system
// with the most unambiguous glyphs wins, ties going to the earlier entry of
// notation.Systems. With no unambiguous glyph, fallback is used if it
// accepts every glyph, then the first system that does, then Number.
func Detect(glyphs []string, fallback notation.System) notation.System {
	counts := make(map[notation.System]int, len(notation.Systems))
	for _, g := range glyphs {
		if sys, ok := Unambiguous(g); ok {
			counts[sys]++
		}
	}
	best, bestCount := notation.SystemUnknown, 0
	for _, sys := range notation.Systems {
		if counts[sys] > bestCount {
			best, bestCount = sys, counts[sys]
		}
	}
	if bestCount > 0 {
		return best
	}
	if fallback != notation.SystemUnknown && acceptsAll(fallback, glyphs) {
		return fallback
	}
	for _, sys := range notation.Systems {
		if acceptsAll(sys, glyphs) {
			return sys
		}
	}
	return notation.SystemNumber
}

func acceptsAll(sys notation.System, glyphs []string) bool {
	for _, g := range glyphs {
		if !Accepts(sys, g) {
			return false
		}
	}
	return true
}

// compactSystems are the single-character systems eligible for compact
// expansion.
var compactSystems = []notation.System{notation.SystemNumber, notation.SystemSargam, notation.SystemWestern}

// CompactSystem reports the one system whose table accepts every character
// of s as a pitch on its own. It fails when none or several do.
func CompactSystem(s string) (notation.System, bool) {
	found := notation.SystemUnknown
	for _, sys := range compactSystems {
		ok := true
		for _, r := range s {
			if _, hit := tables[sys][string(r)]; !hit {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if found != notation.SystemUnknown {
			return notation.SystemUnknown, false
		}
		found = sys
	}
	return found, found != notation.SystemUnknown
}
