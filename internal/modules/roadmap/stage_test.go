package roadmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultStageTable(t *testing.T) *StageTable {
	table, err := NewStageTable(DefaultStageEntries(), DefaultStageRank, DefaultBadgeThreshold)
	require.NoError(t, err)
	return table
}

func TestNewStageTable_Validation(t *testing.T) {
	_, err := NewStageTable([]StageEntry{{Label: "a", Rank: 1}, {Label: "a", Rank: 2}}, -1, 2)
	assert.Error(t, err, "duplicate labels")

	_, err = NewStageTable([]StageEntry{{Label: "a", Rank: 0}}, 0, 2)
	assert.Error(t, err, "default rank must be strictly below every entry")

	table, err := NewStageTable(nil, -1, 2)
	require.NoError(t, err)
	assert.Equal(t, -1, table.Rank("anything"))
}

func TestStageTable_Lookup(t *testing.T) {
	table := newDefaultStageTable(t)

	rank, known := table.Lookup("👷 In development / drafting")
	assert.True(t, known)
	assert.Equal(t, 6, rank)

	rank, known = table.Lookup("Abandoned")
	assert.False(t, known)
	assert.Equal(t, DefaultStageRank, rank)

	rank, known = table.Lookup("")
	assert.False(t, known)
	assert.Equal(t, table.DefaultRank(), rank)
}

func TestStageTable_UnknownRanksBelowEveryEntry(t *testing.T) {
	table := newDefaultStageTable(t)
	for _, e := range DefaultStageEntries() {
		assert.Greater(t, table.Rank(e.Label), table.Rank("not a stage"), e.Label)
	}
}

func TestStageTable_SortByStage(t *testing.T) {
	table := newDefaultStageTable(t)

	projects := []Project{
		{ID: "1", Stage: "Needs triage"},
		{ID: "2", Stage: "✅ Done / launched / published"},
		{ID: "3", Stage: ""},
		{ID: "4", Stage: "👷 In development / drafting"},
		{ID: "5", Stage: "✅ Done / launched / published"},
		{ID: "6", Stage: "mystery"},
	}

	sorted := table.SortByStage(projects)

	ids := make([]string, len(sorted))
	for i, p := range sorted {
		ids[i] = p.ID
	}
	// Equal ranks keep input order: 2 before 5, 3 before 6.
	assert.Equal(t, []string{"2", "5", "4", "1", "3", "6"}, ids)

	// Input untouched.
	assert.Equal(t, "1", projects[0].ID)
}

func TestStageTable_SortByStageEmpty(t *testing.T) {
	table := newDefaultStageTable(t)
	assert.Empty(t, table.SortByStage(nil))
}

func TestStageTable_Badge(t *testing.T) {
	table := newDefaultStageTable(t)

	badge, ok := table.Badge("👟 👷 In testing / polishing")
	require.True(t, ok)
	assert.Equal(t, "🧪 Testing", badge.ShortName)
	assert.Equal(t, "rgba(0, 120, 223, 0.2)", badge.Color)

	badge, ok = table.Badge("⏳ Paused / Waiting")
	require.True(t, ok, "rank equal to the threshold shows a badge")
	assert.Equal(t, "⏳ Paused / Waiting", badge.ShortName)
	assert.Equal(t, NeutralStageColor, badge.Color)

	_, ok = table.Badge("Prioritized")
	assert.False(t, ok)

	_, ok = table.Badge("unknown stage")
	assert.False(t, ok)
}

func TestStageTable_BadgeForUnknownAboveThreshold(t *testing.T) {
	table, err := NewStageTable(nil, 5, 2)
	require.NoError(t, err)

	badge, ok := table.Badge("Custom")
	require.True(t, ok)
	assert.Equal(t, StageBadge{Label: "Custom", ShortName: "Custom", Color: NeutralStageColor}, badge)
}
