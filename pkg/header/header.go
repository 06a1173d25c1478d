// Package header reads the effective date of a schedule from its first rows.
//
// Two letterheads are in circulation. Each is described by a Layout: how to
// recognise it, which row holds the date and how that date is written.
// Layouts are tried in order and the first match wins, so new layouts go
// before Legacy, which matches everything.
package header

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dtnitsch/sweep-schedules/models"
)

var (
	ErrNoLayout        = errors.New("no header layout matched")
	ErrNoDateRow       = errors.New("date row missing")
	ErrUnparseableDate = errors.New("unparseable date")
)

// DateIDFormat is the layout of a date key such as 2024-01-31.
const DateIDFormat = "2006-01-02"

// Date is the normalized effective date of a document.
type Date struct {
	ID     string    // YYYY-MM-DD partition key
	ISO    string    // local midnight as an ISO-8601 UTC instant
	Time   time.Time // local midnight in the parser's zone
	Future bool      // the layout only carries future schedules
	Layout string
}

// Layout describes one letterhead.
type Layout struct {
	Name    string
	DateRow int
	Future  bool
	Match   func(rows []models.Row) bool
	Parse   func(text string, loc *time.Location, now time.Time) (time.Time, error)
}

// Letterhead is the "LA Sanitation" layout used for future schedules.
var Letterhead = Layout{
	Name:    "letterhead",
	DateRow: 3,
	Future:  true,
	Match: func(rows []models.Row) bool {
		return len(rows) > 0 && rows[0].FirstText() == "LA Sanitation"
	},
	Parse: parseLetterheadDate,
}

// Legacy is the original single-line "Monday, January 7th @ 9:30" layout.
var Legacy = Layout{
	Name:    "legacy",
	DateRow: 1,
	Match:   func([]models.Row) bool { return true },
	Parse:   parseLegacyDate,
}

// DefaultLayouts is the detection order.
var DefaultLayouts = []Layout{Letterhead, Legacy}

// Parser extracts document dates in a fixed time zone.
type Parser struct {
	Location *time.Location
	Layouts  []Layout
	// Now supplies the year for layouts that omit it.
	Now func() time.Time
}

// NewParser returns a Parser using the default layouts.
func NewParser(loc *time.Location) *Parser {
	return &Parser{
		Location: loc,
		Layouts:  DefaultLayouts,
		Now:      time.Now,
	}
}

// Parse finds the layout of rows and reads its date.
func (p *Parser) Parse(rows []models.Row) (Date, error) {
	for _, layout := range p.Layouts {
		if layout.Match(rows) {
			return p.parseWith(layout, rows)
		}
	}
	return Date{}, ErrNoLayout
}

func (p *Parser) parseWith(layout Layout, rows []models.Row) (Date, error) {
	if len(rows) <= layout.DateRow || len(rows[layout.DateRow]) == 0 {
		return Date{}, fmt.Errorf("%s layout, row %d: %w", layout.Name, layout.DateRow, ErrNoDateRow)
	}
	text := rows[layout.DateRow].FirstText()

	t, err := layout.Parse(text, p.Location, p.Now().In(p.Location))
	if err != nil {
		return Date{}, fmt.Errorf("%s layout, %q: %w", layout.Name, text, err)
	}

	midnight := Midnight(t, p.Location)
	return Date{
		ID:     midnight.Format(DateIDFormat),
		ISO:    FormatISO(midnight),
		Time:   midnight,
		Future: layout.Future,
		Layout: layout.Name,
	}, nil
}

// Midnight returns the start of t's calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// FormatISO renders t the way JavaScript's toISOString does.
func FormatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// ParseID parses a YYYY-MM-DD key as local midnight in loc.
func ParseID(id string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateIDFormat, id, loc)
}

var letterheadDate = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)

func parseLetterheadDate(text string, loc *time.Location, _ time.Time) (time.Time, error) {
	match := letterheadDate.FindString(text)
	if match == "" {
		return time.Time{}, ErrUnparseableDate
	}
	t, err := dateparse.ParseIn(match, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnparseableDate, err)
	}
	return t, nil
}

// legacyDate captures the month and day of "Monday, January 7th @ 9:30".
// The time of day is dropped since dates are normalized to midnight.
var legacyDate = regexp.MustCompile(`^[A-Za-z]+,\s*([A-Za-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)

func parseLegacyDate(text string, loc *time.Location, now time.Time) (time.Time, error) {
	m := legacyDate.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return time.Time{}, ErrUnparseableDate
	}

	monthDay := m[1] + " " + m[2]
	for _, layout := range []string{"January 2", "Jan 2"} {
		t, err := time.Parse(layout, monthDay)
		if err != nil {
			continue
		}
		// The layout carries no year.
		d := time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		if d.Month() != t.Month() || d.Day() != t.Day() {
			return time.Time{}, fmt.Errorf("%w: %s has no %s in %d", ErrUnparseableDate, monthDay, t.Month(), now.Year())
		}
		return d, nil
	}
	return time.Time{}, ErrUnparseableDate
}
