package notation

import (
	"fmt"
	"strconv"
	"strings"
)

type Accidental int

const (
	DoubleFlat  Accidental = -2
	Flat        Accidental = -1
	Natural     Accidental = 0
	Sharp       Accidental = 1
	DoubleSharp Accidental = 2
)

// PitchCode is a scale degree 1..7 combined with one of five accidentals.
// The zero value is PitchNone.
type PitchCode uint8

const PitchNone PitchCode = 0

const (
	N1bb PitchCode = iota + 1
	N1b
	N1
	N1s
	N1ss
	N2bb
	N2b
	N2
	N2s
	N2ss
	N3bb
	N3b
	N3
	N3s
	N3ss
	N4bb
	N4b
	N4
	N4s
	N4ss
	N5bb
	N5b
	N5
	N5s
	N5ss
	N6bb
	N6b
	N6
	N6s
	N6ss
	N7bb
	N7b
	N7
	N7s
	N7ss
)

var accidentalSuffix = [5]string{"bb", "b", "", "s", "ss"}

func NewPitchCode(degree int, acc Accidental) (PitchCode, bool) {
	if degree < 1 || degree > 7 || acc < DoubleFlat || acc > DoubleSharp {
		return PitchNone, false
	}
	return PitchCode((degree-1)*5 + int(acc) + 2 + 1), true
}

func (p PitchCode) Valid() bool { return p >= N1bb && p <= N7ss }

func (p PitchCode) Degree() int {
	if !p.Valid() {
		return 0
	}
	return (int(p)-1)/5 + 1
}

func (p PitchCode) Accidental() Accidental {
	if !p.Valid() {
		return Natural
	}
	return Accidental((int(p)-1)%5 - 2)
}

// Shift moves the accidental by n steps within the same degree.
func (p PitchCode) Shift(n int) (PitchCode, bool) {
	if !p.Valid() {
		return PitchNone, false
	}
	return NewPitchCode(p.Degree(), p.Accidental()+Accidental(n))
}

func (p PitchCode) String() string {
	if !p.Valid() {
		return ""
	}
	return "N" + strconv.Itoa(p.Degree()) + accidentalSuffix[p.Accidental()+2]
}

func ParsePitchCode(s string) (PitchCode, error) {
	if len(s) < 2 || s[0] != 'N' || s[1] < '1' || s[1] > '7' {
		return PitchNone, fmt.Errorf("invalid pitch code %q", s)
	}
	suffix := s[2:]
	for i, want := range accidentalSuffix {
		if suffix == want {
			p, _ := NewPitchCode(int(s[1]-'0'), Accidental(i-2))
			return p, nil
		}
	}
	return PitchNone, fmt.Errorf("invalid pitch code %q", s)
}

func (p PitchCode) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PitchCode) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*p = PitchNone
		return nil
	}
	v, err := ParsePitchCode(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
