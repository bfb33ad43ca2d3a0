package notation

import (
	"strconv"
	"strings"
)

var durationLogs = map[string]int{
	"w": 0, "h": 1, "q": 2, "8": 3, "16": 4, "32": 5, "64": 6, "128": 7,
}

// Log is the base duration as a power of two: 0 for whole, 2 for quarter.
func (d StandardDuration) Log() int {
	if l, ok := durationLogs[d.Base]; ok {
		return l
	}
	return -1
}

// Value is the exact length of the duration including its dots.
func (d StandardDuration) Value() Fraction {
	l := d.Log()
	if l < 0 {
		return Fraction{Num: 0, Den: 1}
	}
	base := NewFraction(1, int64(1)<<uint(l))
	v, add := base, base
	for i := 0; i < d.Dots; i++ {
		add = add.DivInt(2)
		v = v.Add(add)
	}
	return v
}

// VexFlow spells the duration the way VexFlow expects, e.g. "qd".
func (d StandardDuration) VexFlow() string {
	return d.Base + strings.Repeat("d", d.Dots)
}

// Lilypond spells the duration as LilyPond source, e.g. "4.".
func (d StandardDuration) Lilypond() string {
	l := d.Log()
	if l < 0 {
		return ""
	}
	n := 1 << uint(l)
	return strconv.Itoa(n) + strings.Repeat(".", d.Dots)
}

func (d StandardDuration) String() string { return d.VexFlow() }
