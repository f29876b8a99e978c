package core

// dates.go turns date-of-birth cells into timestamps.
//
// Spreadsheet users type dates in whatever form their locale suggests, and
// Excel stores real date cells as serial day numbers. Both are accepted:
//   - Text is tried against ISO, US, and long-form layouts
//   - Two-digit years are resolved with a pivot around the current year
//   - Numbers are read as Excel serial dates (1900 date system)
//
// All results are in UTC.

import (
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// TimestampLayout is the canonical output form, e.g. 1990-01-01T00:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// maxExcelSerial is 9999-12-31, the last day Excel can represent.
const maxExcelSerial = 2958465

// Date layouts split by year format for proper 2-digit year handling
var (
	dateTimeLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02", "2006-1-2",
		"1/2/2006", "1-2-2006", "1.2.2006",
		"1/2/2006 15:04:05", "1/2/2006 15:04",
		"Jan 2, 2006", "January 2, 2006", "Jan 2 2006",
		"2 Jan 2006", "2 January 2006", "02-Jan-2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "1-2-06", "1.2.06", "2-Jan-06",
	}
)

// ParseDate interprets a cell as a calendar date. Text and numbers are
// accepted; empty and boolean cells are not.
func ParseDate(v Value) (time.Time, bool) {
	var (
		t  time.Time
		ok bool
	)
	switch v.Kind {
	case KindText:
		t, ok = parseDateText(v.Text)
	case KindNumber:
		t, ok = parseSerialDate(v.Number)
	}
	// TimestampLayout only holds four-digit years.
	if !ok || t.Year() < 0 || t.Year() > 9999 {
		return time.Time{}, false
	}
	return t, true
}

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func parseDateText(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() > pivotYear {
			t = t.AddDate(-100, 0, 0)
		}
		return t, true
	}

	return time.Time{}, false
}

// parseSerialDate converts an Excel serial day number. Serial 1 is 1900-01-01.
func parseSerialDate(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || serial < 1 || serial >= maxExcelSerial+1 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	// Cell times carry sub-millisecond float noise.
	return t.UTC().Round(time.Millisecond), true
}
