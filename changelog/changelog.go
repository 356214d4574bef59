package changelog

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

// ErrMalformedHeading is returned when a release heading does not carry a
// parseable version and date.
var ErrMalformedHeading = errors.New("changelog: malformed release heading")

// Entry is one rendered release.
type Entry struct {
	// Version as written, without the leading "v".
	Version string
	// Date is the release day in UTC.
	Date time.Time
	// HTML is the rendered body of the release section.
	HTML string
}

// headingPattern matches "## v1.4.0 - 2026-05-12"; the "v" is optional.
var headingPattern = regexp.MustCompile(`^##\s+v?(\S+)\s+-\s+(\d{4}-\d{2}-\d{2})\s*$`)

// Parse splits a Markdown changelog into release entries and renders each
// body to HTML. Entries keep document order, newest first by convention.
func Parse(src []byte) ([]Entry, error) {
	md := goldmark.New()

	var entries []Entry
	var current *Entry
	var body strings.Builder

	flush := func() error {
		if current == nil {
			return nil
		}
		var buf bytes.Buffer
		if err := md.Convert([]byte(body.String()), &buf); err != nil {
			return fmt.Errorf("render %s: %w", current.Version, err)
		}
		current.HTML = strings.TrimSpace(buf.String())
		entries = append(entries, *current)
		current = nil
		body.Reset()
		return nil
	}

	for _, line := range strings.Split(string(src), "\n") {
		if !strings.HasPrefix(line, "## ") {
			if current != nil {
				body.WriteString(line)
				body.WriteByte('\n')
			}
			continue
		}

		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeading, strings.TrimSpace(line))
		}
		date, err := time.ParseInLocation("2006-01-02", m[2], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeading, strings.TrimSpace(line))
		}

		if err := flush(); err != nil {
			return nil, err
		}
		current = &Entry{Version: m[1], Date: date}
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Latest returns the most recent entry by date. The second return is false
// for an empty changelog.
func Latest(entries []Entry) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}
	latest := entries[0]
	for _, e := range entries[1:] {
		if e.Date.After(latest.Date) {
			latest = e
		}
	}
	return latest, true
}
