package source

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/scorebook/internal/domain/model"
)

var (
	ofTheInning = regexp.MustCompile(`(?i)\b(top|bottom|bot)\s+of\s+the\s+(\d+)`)
	shortInning = regexp.MustCompile(`(?i)^(top|bottom|bot|t|b)\s*(\d+)(?:st|nd|rd|th)?$`)
)

// ParseInning reads spreadsheet-style inning labels such as "top of the 3rd",
// "t3", "Bot 7" or "bottom 12th".
func ParseInning(label string) (int, model.Half, error) {
	s := strings.TrimSpace(label)
	m := ofTheInning.FindStringSubmatch(s)
	if m == nil {
		m = shortInning.FindStringSubmatch(s)
	}
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidInning, label)
	}

	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidInning, label)
	}
	return n, parseHalf(m[1]), nil
}

// parseHalf maps "top"/"t"/"Top" and "bottom"/"bot"/"b" to a Half; anything
// else yields the zero Half, which Validate rejects.
func parseHalf(s string) model.Half {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top", "t":
		return model.Top
	case "bottom", "bot", "b":
		return model.Bottom
	default:
		return 0
	}
}
