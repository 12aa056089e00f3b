package roadmap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPeriods = []string{
	"🌱 Q1/FY25 (Feb - Apr 2024)",
	"☀️ Q2/FY25 (May - Jul 2024)",
	"🍂 Q3/FY25 (Aug - Oct 2024)",
	"⛄️ Q4/FY25 (Nov 2024 - Jan 2025)",
	FuturePeriod,
}

func newTestPeriodOrder(t *testing.T) *PeriodOrder {
	order, err := NewPeriodOrder(testPeriods)
	require.NoError(t, err)
	return order
}

func TestNewPeriodOrder_Validation(t *testing.T) {
	_, err := NewPeriodOrder(nil)
	assert.Error(t, err)

	_, err = NewPeriodOrder([]string{"a", "b", "a"})
	assert.Error(t, err)

	_, err = NewPeriodOrder([]string{"a", "  "})
	assert.Error(t, err)
}

func TestPeriodOrder_LabelsIsACopy(t *testing.T) {
	order := newTestPeriodOrder(t)
	labels := order.Labels()
	labels[0] = "changed"
	assert.Equal(t, testPeriods[0], order.Labels()[0])
}

func TestPeriodOrder_Sort(t *testing.T) {
	order := newTestPeriodOrder(t)

	sorted, err := order.Sort([]string{FuturePeriod, testPeriods[2], testPeriods[0]})
	require.NoError(t, err)
	assert.Equal(t, []string{testPeriods[0], testPeriods[2], FuturePeriod}, sorted)
}

func TestPeriodOrder_SortUnknown(t *testing.T) {
	order := newTestPeriodOrder(t)

	_, err := order.Sort([]string{testPeriods[0], "Q9/FY99"})
	require.Error(t, err)

	var unknown *UnknownPeriodError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Q9/FY99", unknown.Label)
}

func TestPeriodOrder_Partition(t *testing.T) {
	order := newTestPeriodOrder(t)
	present := []string{FuturePeriod, testPeriods[0], testPeriods[3], testPeriods[1]}

	past, upcoming, err := order.Partition(present, testPeriods[1])
	require.NoError(t, err)
	assert.Equal(t, []string{testPeriods[0]}, past)
	assert.Equal(t, []string{testPeriods[1], testPeriods[3], FuturePeriod}, upcoming)

	// No loss or duplication.
	assert.ElementsMatch(t, present, append(append([]string{}, past...), upcoming...))

	// Every past label sorts strictly before every upcoming one.
	for _, p := range past {
		for _, u := range upcoming {
			pi, _ := order.Position(p)
			ui, _ := order.Position(u)
			assert.Less(t, pi, ui)
		}
	}
}

func TestPeriodOrder_PartitionEmpty(t *testing.T) {
	order := newTestPeriodOrder(t)

	past, upcoming, err := order.Partition(nil, testPeriods[2])
	require.NoError(t, err)
	assert.Empty(t, past)
	assert.Empty(t, upcoming)
	assert.NotNil(t, past)
	assert.NotNil(t, upcoming)
}

func TestPeriodOrder_PartitionStaleTable(t *testing.T) {
	order := newTestPeriodOrder(t)

	_, _, err := order.Partition([]string{testPeriods[0]}, "🍂 Q3/FY27 (Aug - Oct 2026)")
	require.Error(t, err)

	var stale *StalePeriodTableError
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, "🍂 Q3/FY27 (Aug - Oct 2026)", stale.Current)

	var unknown *UnknownPeriodError
	assert.False(t, errors.As(err, &unknown))
}

func TestPeriodOrder_PartitionUnknownLabel(t *testing.T) {
	order := newTestPeriodOrder(t)

	_, _, err := order.Partition([]string{"Someday"}, testPeriods[0])
	var unknown *UnknownPeriodError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Someday", unknown.Label)
}

func TestDefaultPeriodLabels(t *testing.T) {
	labels := DefaultPeriodLabels(FiscalCalendar{})

	original := []string{
		"☀️ Q2/FY23 (May - Jul 2022)",
		"🍂 Q3/FY23 (Aug - Oct 2022)",
		"⛄️ Q4/FY23 (Nov 2022 - Jan 2023)",
		"🌱 Q1/FY24 (Feb - Apr 2023)",
		"☀️ Q2/FY24 (May - Jul 2023)",
		"🍂 Q3/FY24 (Aug - Oct 2023)",
		"⛄️ Q4/FY24 (Nov 2023 - Jan 2024)",
		"🌱 Q1/FY25 (Feb - Apr 2024)",
		"☀️ Q2/FY25 (May - Jul 2024)",
		"🍂 Q3/FY25 (Aug - Oct 2024)",
		"⛄️ Q4/FY25 (Nov 2024 - Jan 2025)",
	}
	require.Greater(t, len(labels), len(original))
	assert.Equal(t, original, labels[:len(original)])
	assert.Equal(t, "⛄️ Q4/FY28 (Nov 2027 - Jan 2028)", labels[len(labels)-2])
	assert.Equal(t, FuturePeriod, labels[len(labels)-1])

	_, err := NewPeriodOrder(labels)
	assert.NoError(t, err)
}

func TestPeriodHeading(t *testing.T) {
	tests := map[string]string{
		"🌱 Q1/FY25 (Feb - Apr 2024)":       "🌱 Feb – Apr 2024",
		"⛄️ Q4/FY25 (Nov 2024 - Jan 2025)": "⛄️ Nov 2024 – Jan 2025",
		FuturePeriod:                       FuturePeriod,
	}
	for label, want := range tests {
		assert.Equal(t, want, PeriodHeading(label), label)
	}
}
