//go:build rp2040 || rp2350

package strconvx

// Minimal, allocation-aware helpers with identical signatures.
// Supported bases: 2..36 for Format* and Parse*.
// FormatFloat supports 'f' with prec >= 0 only (all the firmware emits).

func Itoa(i int) string { return FormatInt(int64(i), 10) }

func Atoi(s string) (int, error) {
	v, err := ParseInt(s, 10, 0)
	return int(v), err
}

func FormatInt(i int64, base int) string {
	if base < 2 || base > 36 {
		base = 10
	}
	neg := i < 0
	var u uint64
	if neg {
		u = uint64(-i)
	} else {
		u = uint64(i)
	}
	s := formatUint(u, base)
	if neg {
		return "-" + s
	}
	return s
}

func FormatUint(u uint64, base int) string {
	if base < 2 || base > 36 {
		base = 10
	}
	return formatUint(u, base)
}

func formatUint(u uint64, base int) string {
	if u == 0 {
		return "0"
	}
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	var buf [64]byte
	i := len(buf)
	b := uint64(base)
	for u > 0 {
		i--
		buf[i] = digits[u%b]
		u /= b
	}
	return string(buf[i:])
}

func FormatFloat(f float64, fmt byte, prec, bitSize int) string {
	if prec < 0 {
		prec = 6
	}
	return string(AppendFixed(nil, f, prec))
}

type parseError struct{}

func (parseError) Error() string { return "invalid syntax" }

func ParseUint(s string, base, bitSize int) (uint64, error) {
	if base == 0 {
		base = 10
	}
	if base < 2 || base > 36 || s == "" {
		return 0, parseError{}
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'a' && c <= 'z':
			d = uint64(c-'a') + 10
		case c >= 'A' && c <= 'Z':
			d = uint64(c-'A') + 10
		default:
			return 0, parseError{}
		}
		if d >= uint64(base) {
			return 0, parseError{}
		}
		v = v*uint64(base) + d
	}
	return v, nil
}

func ParseInt(s string, base, bitSize int) (int64, error) {
	if s == "" {
		return 0, parseError{}
	}
	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}
	u, err := ParseUint(s, base, bitSize)
	if err != nil {
		return 0, err
	}
	if neg {
		return -int64(u), nil
	}
	return int64(u), nil
}
