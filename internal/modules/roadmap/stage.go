package roadmap

import (
	"fmt"
	"sort"
)

const (
	// DefaultStageRank is the rank of any stage missing from the table.
	DefaultStageRank = -1
	// DefaultBadgeThreshold is the lowest rank that shows a stage badge.
	DefaultBadgeThreshold = 2
	// NeutralStageColor is used for stages without a configured color.
	NeutralStageColor = "rgba(206, 205, 202, 0.5)"
)

// StageEntry configures one workflow stage.
type StageEntry struct {
	Label     string
	Rank      int
	ShortName string // optional, defaults to Label
	Color     string // optional, defaults to NeutralStageColor
}

// StageBadge is the display data for a project's stage.
type StageBadge struct {
	Label     string `json:"label"`
	ShortName string `json:"short_name"`
	Color     string `json:"color"`
}

// StageTable ranks workflow stages. Unrecognized stages rank below every
// configured one and are never an error.
type StageTable struct {
	entries        map[string]StageEntry
	defaultRank    int
	badgeThreshold int
}

// DefaultStageEntries returns the built-in stage table.
func DefaultStageEntries() []StageEntry {
	return []StageEntry{
		{Label: "Needs triage", Rank: 0, Color: NeutralStageColor},
		{Label: "Prioritized", Rank: 1, Color: NeutralStageColor},
		{Label: "⏳ Paused / Waiting", Rank: 2},
		{Label: "👟 Scoping / speccing", Rank: 3, ShortName: "👟 Planning", Color: "rgba(221, 0, 129, 0.2)"},
		{Label: "👷 In tech design", Rank: 5, ShortName: "👟 Planning", Color: "rgba(245, 93, 0, 0.2)"},
		{Label: "👷 In development / drafting", Rank: 6, ShortName: "👷 Development", Color: "rgba(0, 135, 107, 0.2)"},
		{Label: "👟 👷 In testing / polishing", Rank: 7, ShortName: "🧪 Testing", Color: "rgba(0, 120, 223, 0.2)"},
		{Label: "🏁 Ready for launch / publish", Rank: 8, ShortName: "🏁 Ready for launch", Color: "rgba(103, 36, 222, 0.2)"},
		{Label: "✅ Done / launched / published", Rank: 9, ShortName: "✅ Launched", Color: "rgba(140, 46, 0, 0.2)"},
	}
}

// NewStageTable builds a table. defaultRank must sort below every entry.
func NewStageTable(entries []StageEntry, defaultRank, badgeThreshold int) (*StageTable, error) {
	table := &StageTable{
		entries:        make(map[string]StageEntry, len(entries)),
		defaultRank:    defaultRank,
		badgeThreshold: badgeThreshold,
	}
	for _, e := range entries {
		if _, dup := table.entries[e.Label]; dup {
			return nil, fmt.Errorf("stage %q appears twice in the stage table", e.Label)
		}
		if e.Rank <= defaultRank {
			return nil, fmt.Errorf("stage %q has rank %d, must be above the default rank %d", e.Label, e.Rank, defaultRank)
		}
		if e.ShortName == "" {
			e.ShortName = e.Label
		}
		if e.Color == "" {
			e.Color = NeutralStageColor
		}
		table.entries[e.Label] = e
	}
	return table, nil
}

// Lookup returns the rank for a stage and whether the stage is configured.
func (t *StageTable) Lookup(label string) (int, bool) {
	e, ok := t.entries[label]
	if !ok {
		return t.defaultRank, false
	}
	return e.Rank, true
}

// Rank returns the rank for a stage, or the default rank if unknown.
func (t *StageTable) Rank(label string) int {
	rank, _ := t.Lookup(label)
	return rank
}

// DefaultRank returns the rank given to unknown stages.
func (t *StageTable) DefaultRank() int {
	return t.defaultRank
}

// SortByStage returns a copy of projects ordered by descending stage rank.
// Projects of equal rank keep their relative order.
func (t *StageTable) SortByStage(projects []Project) []Project {
	sorted := append([]Project(nil), projects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return t.Rank(sorted[i].Stage) > t.Rank(sorted[j].Stage)
	})
	return sorted
}

// Badge returns the badge for a stage and whether it should be shown.
func (t *StageTable) Badge(label string) (StageBadge, bool) {
	if t.Rank(label) < t.badgeThreshold {
		return StageBadge{}, false
	}
	e, ok := t.entries[label]
	if !ok {
		return StageBadge{Label: label, ShortName: label, Color: NeutralStageColor}, true
	}
	return StageBadge{Label: label, ShortName: e.ShortName, Color: e.Color}, true
}
