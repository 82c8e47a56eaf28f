package tagged

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads a literal as written on a command line. "true" and "false"
// select the boolean words, a decimal integer is encoded as a Number, and a
// 0x prefixed hex string is taken as a raw word without any encoding.
func Parse(s string) (Value, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "true":
		return True, nil
	case "false":
		return False, nil
	case "":
		return 0, fmt.Errorf("parse value: empty literal")
	}

	if hex, ok := cutHexPrefix(s); ok {
		raw, err := strconv.ParseUint(strings.ReplaceAll(hex, "_", ""), 16, 64)
		if err != nil {
			return 0, fmt.Errorf("parse raw word %q: %w", s, err)
		}
		return Value(raw), nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse integer %q: %w", s, err)
	}
	return NumberChecked(n)
}

func cutHexPrefix(s string) (string, bool) {
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		return rest, true
	}
	return strings.CutPrefix(s, "0X")
}
