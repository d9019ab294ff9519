package formatter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ErrInvalidViews is returned when a formatted view count cannot be parsed back.
var ErrInvalidViews = errors.New("invalid formatted view count")

// FetchedAtLayout renders timestamps as "D Mon YYYY, h:mm a".
const FetchedAtLayout = "2 Jan 2006, 3:04 pm"

var groupedInt = regexp.MustCompile(`^-?\d{1,3}(,\d{3})*$`)

// FormatViews renders n with thousands separators, e.g. 1234567 -> "1,234,567".
func FormatViews(n int64) string {
	return humanize.Comma(n)
}

// ParseViews reverses FormatViews. Separators must sit on thousands boundaries.
func ParseViews(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if !groupedInt.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidViews, s)
	}

	n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidViews, err)
	}

	return n, nil
}

// FormatFetchedAt renders a fetch timestamp for the detail table.
func FormatFetchedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(FetchedAtLayout)
}
