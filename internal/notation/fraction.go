package notation

import (
	"fmt"
	"strconv"
	"strings"
)

// Fraction is an exact non-negative rational kept in lowest terms.
type Fraction struct {
	Num int64 `json:"numerator"`
	Den int64 `json:"denominator"`
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// NewFraction returns n/d reduced. A zero denominator yields the zero fraction.
func NewFraction(n, d int64) Fraction {
	if d == 0 {
		return Fraction{Num: 0, Den: 1}
	}
	if d < 0 {
		n, d = -n, -d
	}
	if n == 0 {
		return Fraction{Num: 0, Den: 1}
	}
	g := gcd(n, d)
	return Fraction{Num: n / g, Den: d / g}
}

func (f Fraction) norm() Fraction {
	if f.Den == 0 {
		return Fraction{Num: 0, Den: 1}
	}
	return NewFraction(f.Num, f.Den)
}

func (f Fraction) Add(o Fraction) Fraction {
	f, o = f.norm(), o.norm()
	return NewFraction(f.Num*o.Den+o.Num*f.Den, f.Den*o.Den)
}

func (f Fraction) Sub(o Fraction) Fraction {
	f, o = f.norm(), o.norm()
	return NewFraction(f.Num*o.Den-o.Num*f.Den, f.Den*o.Den)
}

func (f Fraction) Mul(o Fraction) Fraction {
	f, o = f.norm(), o.norm()
	return NewFraction(f.Num*o.Num, f.Den*o.Den)
}

func (f Fraction) MulInt(n int64) Fraction {
	f = f.norm()
	return NewFraction(f.Num*n, f.Den)
}

func (f Fraction) DivInt(n int64) Fraction {
	f = f.norm()
	return NewFraction(f.Num, f.Den*n)
}

// Cmp returns -1, 0 or 1.
func (f Fraction) Cmp(o Fraction) int {
	f, o = f.norm(), o.norm()
	l, r := f.Num*o.Den, o.Num*f.Den
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

func (f Fraction) IsZero() bool { return f.Num == 0 }

func (f Fraction) Sign() int {
	f = f.norm()
	switch {
	case f.Num < 0:
		return -1
	case f.Num > 0:
		return 1
	}
	return 0
}

func (f Fraction) String() string {
	f = f.norm()
	return strconv.FormatInt(f.Num, 10) + "/" + strconv.FormatInt(f.Den, 10)
}

// ParseFraction accepts "n/d" or a bare integer.
func ParseFraction(s string) (Fraction, error) {
	s = strings.TrimSpace(s)
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
	if err != nil {
		return Fraction{}, fmt.Errorf("invalid fraction %q", s)
	}
	d := int64(1)
	if found {
		d, err = strconv.ParseInt(strings.TrimSpace(den), 10, 64)
		if err != nil || d == 0 {
			return Fraction{}, fmt.Errorf("invalid fraction %q", s)
		}
	}
	return NewFraction(n, d), nil
}
