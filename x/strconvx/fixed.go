package strconvx

import "math"

// Append helpers shared by host and MCU builds. The wire codec builds its
// lines with these so both targets produce identical bytes.

// AppendUint appends the base-10 form of u.
func AppendUint(dst []byte, u uint64) []byte {
	if u == 0 {
		return append(dst, '0')
	}
	var buf [20]byte
	i := len(buf)
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	return append(dst, buf[i:]...)
}

// AppendInt appends the base-10 form of i.
func AppendInt(dst []byte, i int64) []byte {
	if i < 0 {
		dst = append(dst, '-')
		return AppendUint(dst, uint64(-i))
	}
	return AppendUint(dst, uint64(i))
}

// AppendFixed appends f rounded half-up to prec decimal places, e.g.
// AppendFixed(dst, 1018.3, 1) -> "1018.3". NaN and infinities append their
// conventional names; callers that must not emit them check first.
func AppendFixed(dst []byte, f float64, prec int) []byte {
	if math.IsNaN(f) {
		return append(dst, "NaN"...)
	}
	if math.IsInf(f, 1) {
		return append(dst, "+Inf"...)
	}
	if math.IsInf(f, -1) {
		return append(dst, "-Inf"...)
	}
	if prec < 0 {
		prec = 0
	}
	if math.Signbit(f) {
		dst = append(dst, '-')
		f = -f
	}
	pow := uint64(1)
	for i := 0; i < prec; i++ {
		pow *= 10
	}
	scaled := uint64(f*float64(pow) + 0.5)
	dst = AppendUint(dst, scaled/pow)
	if prec > 0 {
		dst = append(dst, '.')
		frac := scaled % pow
		// zero-pad to prec digits
		for p := pow / 10; p > 1; p /= 10 {
			if frac >= p {
				break
			}
			dst = append(dst, '0')
		}
		if frac == 0 {
			dst = append(dst, '0')
		} else {
			dst = AppendUint(dst, frac)
		}
	}
	return dst
}
