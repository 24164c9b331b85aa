// Package conv formats integers into caller-owned byte slices. No fmt/strconv
// dependency, so it is safe to use from MCU builds and early boot.
package conv

import "dualdisplay-go/x/mathx"

const hexDigits = "0123456789ABCDEF"

// AppendUint appends the base-10 representation of n to dst.
func AppendUint(dst []byte, n uint64) []byte {
	var tmp [20]byte
	i := len(tmp)
	if n == 0 {
		i--
		tmp[i] = '0'
	}
	for n > 0 {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
	}
	return append(dst, tmp[i:]...)
}

// AppendInt appends the base-10 representation of n to dst.
func AppendInt(dst []byte, n int64) []byte {
	if n < 0 {
		dst = append(dst, '-')
		return AppendUint(dst, uint64(-n))
	}
	return AppendUint(dst, uint64(n))
}

// AppendHex appends "0x" followed by n as uppercase hex, zero-padded to
// digits nibbles (1..16).
func AppendHex(dst []byte, n uint64, digits int) []byte {
	digits = mathx.Clamp(digits, 1, 16)
	dst = append(dst, '0', 'x')
	for shift := (digits - 1) * 4; shift >= 0; shift -= 4 {
		dst = append(dst, hexDigits[(n>>uint(shift))&0xF])
	}
	return dst
}

// Hex8 renders a byte such as an I²C address, e.g. "0x3D".
func Hex8(b uint8) string { return string(AppendHex(nil, uint64(b), 2)) }
