package roadmap

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// FuturePeriod is the label for projects without a planned quarter.
const FuturePeriod = "🌈 Future"

// UnknownPeriodError reports a period label present in the data but
// missing from the canonical table.
type UnknownPeriodError struct {
	Label string
}

func (e *UnknownPeriodError) Error() string {
	return fmt.Sprintf("period %q is not in the canonical period table", e.Label)
}

// StalePeriodTableError reports that the current fiscal quarter is missing
// from the canonical table. The table needs extending going forward.
type StalePeriodTableError struct {
	Current string
}

func (e *StalePeriodTableError) Error() string {
	return fmt.Sprintf("current period %q is not in the canonical period table; extend the table", e.Current)
}

// PeriodOrder is the canonical chronological ordering of period labels.
type PeriodOrder struct {
	labels []string
	index  map[string]int
}

// NewPeriodOrder builds an ordering from labels listed oldest first.
func NewPeriodOrder(labels []string) (*PeriodOrder, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("period table is empty")
	}
	index := make(map[string]int, len(labels))
	for i, label := range labels {
		if strings.TrimSpace(label) == "" {
			return nil, fmt.Errorf("period table entry %d is blank", i)
		}
		if _, dup := index[label]; dup {
			return nil, fmt.Errorf("period %q appears twice in the period table", label)
		}
		index[label] = i
	}
	return &PeriodOrder{
		labels: append([]string(nil), labels...),
		index:  index,
	}, nil
}

// DefaultPeriodLabels returns the built-in table: every quarter from
// May 2022 through January 2028 under the calendar's convention, then Future.
func DefaultPeriodLabels(cal FiscalCalendar) []string {
	from := time.Date(2022, time.May, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2028, time.January, 1, 0, 0, 0, 0, time.UTC)
	quarters := cal.Range(from, to)

	labels := make([]string, 0, len(quarters)+1)
	for _, q := range quarters {
		labels = append(labels, q.Label())
	}
	return append(labels, FuturePeriod)
}

// Labels returns a copy of the table.
func (o *PeriodOrder) Labels() []string {
	return append([]string(nil), o.labels...)
}

// Position returns a label's sequence position.
func (o *PeriodOrder) Position(label string) (int, bool) {
	i, ok := o.index[label]
	return i, ok
}

// Sort returns labels in canonical order. Any label absent from the
// table is an error.
func (o *PeriodOrder) Sort(labels []string) ([]string, error) {
	for _, label := range labels {
		if _, ok := o.index[label]; !ok {
			return nil, &UnknownPeriodError{Label: label}
		}
	}
	sorted := append([]string(nil), labels...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return o.index[sorted[i]] < o.index[sorted[j]]
	})
	return sorted, nil
}

// Partition sorts labels and splits them into those strictly before
// current and those at or after it.
func (o *PeriodOrder) Partition(labels []string, current string) (past, upcoming []string, err error) {
	cur, ok := o.index[current]
	if !ok {
		return nil, nil, &StalePeriodTableError{Current: current}
	}

	sorted, err := o.Sort(labels)
	if err != nil {
		return nil, nil, err
	}

	past = []string{}
	upcoming = []string{}
	for _, label := range sorted {
		if o.index[label] < cur {
			past = append(past, label)
		} else {
			upcoming = append(upcoming, label)
		}
	}
	return past, upcoming, nil
}

var quarterCode = regexp.MustCompile(`Q./FY..`)

// PeriodHeading turns a period label into a display heading:
// "🌱 Q1/FY25 (Feb - Apr 2024)" becomes "🌱 Feb – Apr 2024".
func PeriodHeading(label string) string {
	h := quarterCode.ReplaceAllString(label, "")
	h = strings.NewReplacer("(", "", ")", "", "-", "–").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}
