package numutil

import "strconv"

// Integer is any signed integer type.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// WithCommas returns a string representation of an integer with a comma
// every three digits.
//
// Example:
//
//	12345 -> "12,345"
func WithCommas[T Integer](i T) string {
	n := int64(i)
	if n >= 0 {
		return groupDigits(uint64(n))
	}
	// -n overflows for math.MinInt64, its magnitude fits in a uint64.
	return "-" + groupDigits(uint64(-(n+1))+1)
}

func groupDigits(n uint64) string {
	digits := strconv.FormatUint(n, 10)
	if len(digits) <= 3 {
		return digits
	}

	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	out := digits[:head]
	for i := head; i < len(digits); i += 3 {
		out += "," + digits[i:i+3]
	}
	return out
}
