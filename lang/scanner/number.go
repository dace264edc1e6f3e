package scanner

import (
	"strconv"
	"strings"

	"github.com/mna/nenuphar/lang/token"
)

// number scans an INT or REAL literal. The integer part may use a 0b/0o/0x
// base prefix; the fractional part and exponent, when present, are always
// decimal and force the token to REAL.
func (s *Scanner) number() (tok token.Token, base int, lit string) {
	startOff := s.off
	tok = token.ILLEGAL

	base = 10
	prefix := rune(0)
	invalid := -1

	if s.cur != '.' {
		tok = token.INT
		if s.cur == '0' {
			s.advance()
			switch lower(s.cur) {
			case 'x':
				s.advance()
				base, prefix = 16, 'x'
			case 'o':
				s.advance()
				base, prefix = 8, 'o'
			case 'b':
				s.advance()
				base, prefix = 2, 'b'
			}
		}
		s.digits(base, &invalid)
	}

	if s.cur == '.' {
		if prefix != 0 {
			s.error("invalid radix point in " + litname(prefix))
		}
		tok = token.REAL
		s.advance()
		s.digits(10, &invalid)
	}

	if e := lower(s.cur); e == 'e' {
		if prefix != 0 {
			s.error("exponent requires decimal mantissa")
		}
		s.advance()
		tok = token.REAL
		if s.cur == '+' || s.cur == '-' {
			s.advance()
		}
		expInvalid := -1
		expStart := s.off
		s.digits(10, &expInvalid)
		if s.off == expStart {
			s.error("exponent has no digits")
		}
	}

	lit = string(s.src[startOff:s.off])
	if tok == token.INT && invalid >= 0 {
		s.errorf("invalid digit %q in %s", lit[invalid-startOff], litname(prefix))
	}
	return tok, base, lit
}

func isDecimal(rn rune) bool {
	return '0' <= rn && rn <= '9'
}

func isHexadecimal(rn rune) bool {
	return isDecimal(rn) ||
		'a' <= rn && rn <= 'f' ||
		'A' <= rn && rn <= 'F'
}

// digits accepts a run of digits valid for base, recording the offset of
// the first out-of-range digit in *invalid if not already set.
func (s *Scanner) digits(base int, invalid *int) {
	if base <= 10 {
		max := rune('0' + base)
		for isDecimal(s.cur) {
			if s.cur >= max && *invalid < 0 {
				*invalid = s.off
			}
			s.advance()
		}
	} else {
		for isHexadecimal(s.cur) {
			s.advance()
		}
	}
}

func litname(prefix rune) string {
	switch prefix {
	case 'x':
		return "hexadecimal literal"
	case 'o':
		return "octal literal"
	case 'b':
		return "binary literal"
	}
	return "decimal literal"
}

func lower(ch rune) rune {
	return ('a' - 'A') | ch
}

func numberToInt(lit string, base int) (int64, error) {
	if base != 10 {
		lit = lit[2:]
	}
	return strconv.ParseInt(strings.ToLower(lit), base, 32)
}

func numberToFloat(lit string) (float64, error) {
	return strconv.ParseFloat(lit, 64)
}
