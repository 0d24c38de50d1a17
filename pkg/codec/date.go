package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ToContainerForm converts an ISO date (YYYY-MM-DD) into the container's
// M/D/YYYY form without zero padding. Every part must be decimal digits, and
// a month outside 1-12 or a day outside 1-31 is malformed. ToISOForm applies
// the same ranges.
func ToContainerForm(iso string) (string, error) {
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return "", errors.Wrapf(ErrMalformedDate, "%q: expected YYYY-MM-DD", iso)
	}

	year, month, day := parts[0], parts[1], parts[2]
	if !isDigits(year) {
		return "", errors.Wrapf(ErrMalformedDate, "%q: invalid year", iso)
	}
	m, ok := parseDatePart(month, 12)
	if !ok {
		return "", errors.Wrapf(ErrMalformedDate, "%q: invalid month", iso)
	}
	d, ok := parseDatePart(day, 31)
	if !ok {
		return "", errors.Wrapf(ErrMalformedDate, "%q: invalid day", iso)
	}

	return fmt.Sprintf("%d/%d/%s", m, d, year), nil
}

// ToISOForm converts a container date (M/D/YYYY) into ISO form with month and
// day padded to two digits. Malformed input yields the empty string.
func ToISOForm(native string) string {
	parts := strings.Split(native, "/")
	if len(parts) != 3 {
		return ""
	}

	m, ok := parseDatePart(parts[0], 12)
	if !ok {
		return ""
	}
	d, ok := parseDatePart(parts[1], 31)
	if !ok {
		return ""
	}
	year := parts[2]
	if !isDigits(year) {
		return ""
	}

	return fmt.Sprintf("%s-%02d-%02d", year, m, d)
}

func parseDatePart(s string, max int) (int, bool) {
	if !isDigits(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
