package transform

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeColor turns a calendar color into lowercase "#rrggbb", or
// "#rrggbbaa" when an alpha channel is given. Short "#rgb" forms are
// expanded. The empty string is returned unchanged.
func NormalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return "", nil
	}

	hex := strings.TrimPrefix(color, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return "", fmt.Errorf("invalid color %q", color)
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return "", fmt.Errorf("invalid color %q: %w", color, err)
	}

	return "#" + strings.ToLower(hex), nil
}
