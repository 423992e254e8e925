// Package normalize canonicalizes the derived and free-form fields of an event
// record right before it is written: slug from title, ISO calendar date, and
// 24-hour HH:MM time.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"

	"devevents/internal/domain"
)

const isoDate = "2006-01-02"

// space matches the whitespace set of ECMAScript \s: ASCII space and
// controls \t \n \v \f \r, every Unicode space separator, and U+FEFF.
const space = `[\t\n\v\f\r\p{Z}\x{FEFF}]`

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\t\n\v\f\r\p{Z}\x{FEFF}-]`)
	slugSpaces     = regexp.MustCompile(space + `+`)
	slugHyphens    = regexp.MustCompile(`-+`)

	// clockRegex matches "H:MM" or "HH:MM" with an optional AM/PM marker.
	clockRegex = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})(` + space + `*(AM|PM))?$`)
)

// IsSpace reports whether r is whitespace under the same rules as the slug
// and clock patterns. Unlike unicode.IsSpace it includes U+FEFF and excludes U+0085.
func IsSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\uFEFF':
		return true
	}
	return unicode.In(r, unicode.Z)
}

// TrimSpace removes leading and trailing IsSpace runes.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, IsSpace)
}

// Slug derives the URL slug for a title.
func Slug(title string) string {
	s := TrimSpace(strings.ToLower(title))
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Date parses any recognizable calendar date, interpreted in UTC, and returns
// its YYYY-MM-DD form.
func Date(raw string) (string, error) {
	raw = TrimSpace(raw)
	if raw == "" {
		return "", domain.ErrInvalidDateFormat
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return "", domain.ErrInvalidDateFormat
	}
	return t.UTC().Format(isoDate), nil
}

// Time converts "2:30 PM", "12:00 am" or "9:05" style input to 24-hour HH:MM.
func Time(raw string) (string, error) {
	m := clockRegex.FindStringSubmatch(TrimSpace(raw))
	if m == nil {
		return "", domain.ErrInvalidTimeFormat
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil {
		return "", domain.ErrInvalidTimeFormat
	}
	minutes, err := strconv.Atoi(m[2])
	if err != nil {
		return "", domain.ErrInvalidTimeFormat
	}

	switch strings.ToUpper(m[4]) {
	case "PM":
		if hours != 12 {
			hours += 12
		}
	case "AM":
		if hours == 12 {
			hours = 0
		}
	}

	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return "", domain.ErrInvalidTimeValue
	}
	return fmt.Sprintf("%02d:%02d", hours, minutes), nil
}

// Event rewrites e.Slug, e.Date and e.Time in place. Each step runs only when its
// source field is in changed. Steps already applied stay applied when a later
// step fails; the caller must not persist e in that case.
func Event(e *domain.Event, changed domain.FieldSet) error {
	if changed.Has(domain.FieldTitle) {
		e.Slug = Slug(e.Title)
	}
	if changed.Has(domain.FieldDate) {
		d, err := Date(e.Date)
		if err != nil {
			return err
		}
		e.Date = d
	}
	if changed.Has(domain.FieldTime) {
		t, err := Time(e.Time)
		if err != nil {
			return err
		}
		e.Time = t
	}
	return nil
}
