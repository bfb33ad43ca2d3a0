package parse

import (
	"strings"
	"unicode/utf8"

	"github.com/cbegin/musictext-go/internal/pitch"
)

// expandCompact spaces out a single-line run such as "SRG" when exactly one
// notation system accepts every character on its own. Anything else is
// returned unchanged. offsets is rewritten alongside, each inserted space
// taking the input index of the glyph before it.
func expandCompact(src string, offsets []int) (string, []int) {
	line := strings.TrimRight(src, "\n")
	if strings.Contains(line, "\n") || strings.ContainsAny(line, " \t|") {
		return src, offsets
	}
	if utf8.RuneCountInString(line) < 3 {
		return src, offsets
	}
	if _, ok := pitch.CompactSystem(line); !ok {
		return src, offsets
	}
	var b strings.Builder
	out := make([]int, 0, 2*len(offsets))
	n := 0
	for _, r := range line {
		if n > 0 {
			b.WriteByte(' ')
			out = append(out, offsets[n-1])
		}
		b.WriteRune(r)
		out = append(out, offsets[n])
		n++
	}
	b.WriteString(src[len(line):])
	return b.String(), append(out, offsets[n:]...)
}
