package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidFilter is returned when entry filter parameters cannot be parsed.
var ErrInvalidFilter = errors.New("invalid entry filter")

// filterDateLayouts are accepted for since/until, most specific first.
var filterDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseEntryFilter builds a filter from string parameters as they arrive from
// query strings or command line flags. Empty parameters leave the
// corresponding criterion unset. A date-only until includes the whole day.
func ParseEntryFilter(identifier, pageID, since, until string) (EntryFilter, error) {
	f := EntryFilter{Identifier: strings.TrimSpace(identifier)}

	if pageID = strings.TrimSpace(pageID); pageID != "" {
		n, err := strconv.ParseInt(pageID, 10, 32)
		if err != nil || n < 0 {
			return EntryFilter{}, fmt.Errorf("%w: pageId %q", ErrInvalidFilter, pageID)
		}
		pid := int(n)
		f.PageID = &pid
	}

	if since = strings.TrimSpace(since); since != "" {
		t, _, err := parseFilterTime(since)
		if err != nil {
			return EntryFilter{}, fmt.Errorf("%w: since %q", ErrInvalidFilter, since)
		}
		f.Since = t
	}

	if until = strings.TrimSpace(until); until != "" {
		t, dateOnly, err := parseFilterTime(until)
		if err != nil {
			return EntryFilter{}, fmt.Errorf("%w: until %q", ErrInvalidFilter, until)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		f.Until = t
	}

	if !f.Since.IsZero() && !f.Until.IsZero() && !f.Since.Before(f.Until) {
		return EntryFilter{}, fmt.Errorf("%w: since must be before until", ErrInvalidFilter)
	}

	return f, nil
}

func parseFilterTime(s string) (t time.Time, dateOnly bool, err error) {
	for i, layout := range filterDateLayouts {
		if t, err = time.Parse(layout, s); err == nil {
			return t, i == len(filterDateLayouts)-1, nil
		}
	}
	return time.Time{}, false, err
}
