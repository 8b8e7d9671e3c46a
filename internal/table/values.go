package table

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// TYPED CELL ACCESSORS
// =============================================================================
// Cells are text. These helpers parse them the way the source spreadsheets
// write them: raw numbers ("50000", "50000.0"), Excel date serials
// ("45823"), or day-first textual dates ("20/06/2025").

// DateLayout is the single textual pattern used for dates in the report.
const DateLayout = "02/01/2006"

// dateLayouts are tried in order when a cell holds a textual date.
// Day-first layouts come before ISO ones.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04",
	"02-01-2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02/01/06",
}

// ParseDecimal parses a numeric cell. Thousands separators are not expected
// in raw cell values; a single comma is read as a decimal separator.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Decimal parses the cell, returning zero for null or unparseable cells.
func (r Row) Decimal(col string) decimal.Decimal {
	d, _ := ParseDecimal(r[col])
	return d
}

// ParseInt parses an integral numeric cell ("12", "12.0"). Non-integral
// values are rejected.
func ParseInt(s string) (int64, bool) {
	d, ok := ParseDecimal(s)
	if !ok {
		return 0, false
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	return d.IntPart(), true
}

// ParseDate parses a date cell: an Excel serial number or one of the
// day-first textual layouts. The result is truncated to the calendar day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return time.Time{}, false
		}
		return Day(t), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

// Date parses the cell as a date.
func (r Row) Date(col string) (time.Time, bool) {
	v, ok := r[col]
	if !ok {
		return time.Time{}, false
	}
	return ParseDate(v)
}

// Day truncates a time to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the absolute number of calendar days between a and b.
func DaysBetween(a, b time.Time) int {
	d := int(Day(a).Sub(Day(b)).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}

// FormatDate renders a date in the report's date layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDecimal renders a decimal without trailing zeros.
func FormatDecimal(d decimal.Decimal) string {
	return d.String()
}

// FormatInt renders the integer part of a decimal, truncating toward zero.
func FormatInt(d decimal.Decimal) string {
	return strconv.FormatInt(d.IntPart(), 10)
}
