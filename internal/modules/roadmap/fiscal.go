package roadmap

import (
	"fmt"
	"strings"
	"time"
)

// FiscalYearConvention decides which calendar year names a fiscal year.
type FiscalYearConvention int

const (
	// FiscalYearEndsJanuary names the fiscal year after the January that
	// closes it: Feb 2024 through Jan 2025 is FY25.
	FiscalYearEndsJanuary FiscalYearConvention = iota
	// FiscalYearOfQuarterEnd names each quarter's fiscal year after the
	// calendar year of the quarter's final month: Feb-Apr 2024 is FY24,
	// Nov 2024-Jan 2025 is FY25.
	FiscalYearOfQuarterEnd
)

// ParseFiscalYearConvention parses a convention name.
func ParseFiscalYearConvention(name string) (FiscalYearConvention, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ends-january", "ends_january":
		return FiscalYearEndsJanuary, nil
	case "quarter-end", "quarter_end":
		return FiscalYearOfQuarterEnd, nil
	default:
		return 0, fmt.Errorf("unknown fiscal year convention %q", name)
	}
}

// String returns the convention name accepted by ParseFiscalYearConvention.
func (c FiscalYearConvention) String() string {
	if c == FiscalYearOfQuarterEnd {
		return "quarter-end"
	}
	return "ends-january"
}

// QuarterEmoji decorates period labels.
var QuarterEmoji = map[int]string{1: "🌱", 2: "☀️", 3: "🍂", 4: "⛄️"}

// FiscalCalendar maps calendar dates to fiscal quarters.
// Q1 = Feb-Apr, Q2 = May-Jul, Q3 = Aug-Oct, Q4 = Nov-Jan.
type FiscalCalendar struct {
	Convention FiscalYearConvention
}

// FiscalQuarter identifies one fiscal quarter.
type FiscalQuarter struct {
	Number     int
	FiscalYear int
	// StartYear is the calendar year of the quarter's first month.
	StartYear int
	// StartMonth is the quarter's first calendar month.
	StartMonth time.Month
}

// QuarterFor returns the fiscal quarter containing t.
func (c FiscalCalendar) QuarterFor(t time.Time) FiscalQuarter {
	year, month := t.Year(), t.Month()

	var q FiscalQuarter
	switch {
	case month == time.January:
		q = FiscalQuarter{Number: 4, StartYear: year - 1, StartMonth: time.November}
	case month <= time.April:
		q = FiscalQuarter{Number: 1, StartYear: year, StartMonth: time.February}
	case month <= time.July:
		q = FiscalQuarter{Number: 2, StartYear: year, StartMonth: time.May}
	case month <= time.October:
		q = FiscalQuarter{Number: 3, StartYear: year, StartMonth: time.August}
	default:
		q = FiscalQuarter{Number: 4, StartYear: year, StartMonth: time.November}
	}

	endYear := q.StartYear
	if q.Number == 4 {
		endYear++
	}

	switch c.Convention {
	case FiscalYearOfQuarterEnd:
		q.FiscalYear = endYear
	default:
		// Every quarter of a fiscal year closes on or before the following January.
		q.FiscalYear = q.StartYear + 1
	}
	return q
}

// Next returns the quarter that follows q under the same convention.
func (c FiscalCalendar) Next(q FiscalQuarter) FiscalQuarter {
	start := time.Date(q.StartYear, q.StartMonth, 1, 0, 0, 0, 0, time.UTC)
	return c.QuarterFor(start.AddDate(0, 3, 0))
}

// Range returns every quarter from the one containing from up to and
// including the one containing to.
func (c FiscalCalendar) Range(from, to time.Time) []FiscalQuarter {
	last := c.QuarterFor(to)
	var quarters []FiscalQuarter
	for q := c.QuarterFor(from); !q.after(last); q = c.Next(q) {
		quarters = append(quarters, q)
	}
	return quarters
}

func (q FiscalQuarter) after(other FiscalQuarter) bool {
	if q.StartYear != other.StartYear {
		return q.StartYear > other.StartYear
	}
	return q.StartMonth > other.StartMonth
}

// Code returns the short label, e.g. "Q1/FY25".
func (q FiscalQuarter) Code() string {
	return fmt.Sprintf("Q%d/FY%02d", q.Number, q.FiscalYear%100)
}

// Months returns the month range annotation, e.g. "Feb - Apr 2024" or
// "Nov 2024 - Jan 2025".
func (q FiscalQuarter) Months() string {
	if q.Number == 4 {
		return fmt.Sprintf("Nov %d - Jan %d", q.StartYear, q.StartYear+1)
	}
	end := q.StartMonth + 2
	return fmt.Sprintf("%s - %s %d", shortMonth(q.StartMonth), shortMonth(end), q.StartYear)
}

// Label returns the full period label used by the canonical table,
// e.g. "🌱 Q1/FY25 (Feb - Apr 2024)".
func (q FiscalQuarter) Label() string {
	return fmt.Sprintf("%s %s (%s)", QuarterEmoji[q.Number], q.Code(), q.Months())
}

func shortMonth(m time.Month) string {
	return m.String()[:3]
}
