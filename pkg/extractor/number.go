package extractor

import (
	"errors"
	"strconv"
)

var errNotDecimal = errors.New("not a base-10 integer")

// parseExactInt parses text as an unsigned base-10 integer. Signs, fractions,
// exponents, separators and surrounding space are all rejected.
func parseExactInt(text string) (int64, error) {
	if text == "" {
		return 0, errNotDecimal
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return 0, errNotDecimal
		}
	}
	return strconv.ParseInt(text, 10, 64)
}
