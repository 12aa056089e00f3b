package roadmap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/roadmap/internal/clients/notion"
)

func TestNormalize_FullRecord(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{})

	page := buildPage(pageFixture{
		id:          "abc-123",
		title:       "Widgets (release)",
		description: strPtr("Ship widgets"),
		stage:       strPtr("👷 In development / drafting"),
		period:      strPtr("☀️ Q2/FY25 (May - Jul 2024)"),
		emoji:       "🧩",
	})

	p, err := n.Normalize(page)
	require.NoError(t, err)
	assert.Equal(t, Project{
		ID:          "abc-123",
		Title:       "Widgets",
		Icon:        "🧩",
		Description: "Ship widgets",
		Stage:       "👷 In development / drafting",
		Period:      "☀️ Q2/FY25 (May - Jul 2024)",
	}, p)
}

func TestNormalize_Defaults(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{})

	p, err := n.Normalize(buildPage(pageFixture{id: "b", title: "Bare"}))
	require.NoError(t, err)
	assert.Equal(t, FallbackIcon, p.Icon)
	assert.Equal(t, "", p.Stage)
	assert.Equal(t, FuturePeriod, p.Period)
	assert.Equal(t, "", p.Description)
}

func TestNormalize_NullOptions(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{})

	page := buildPage(pageFixture{id: "c", title: "Nulls"})
	fields := DefaultFieldNames()
	page.Properties[fields.Stage] = selectProp(nil)
	page.Properties[fields.Period] = selectProp(nil)
	page.Icon = &notion.Icon{Type: "external"}

	p, err := n.Normalize(page)
	require.NoError(t, err)
	assert.Equal(t, "", p.Stage)
	assert.Equal(t, FuturePeriod, p.Period)
	assert.Equal(t, FallbackIcon, p.Icon)
}

func TestNormalize_StatusProperty(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{})

	page := buildPage(pageFixture{id: "d", title: "Status"})
	page.Properties[DefaultFieldNames().Stage] = notion.Property{
		Type:   "status",
		Status: &notion.SelectOption{Name: "Prioritized"},
	}

	p, err := n.Normalize(page)
	require.NoError(t, err)
	assert.Equal(t, "Prioritized", p.Stage)
}

func TestNormalize_ConcatenatesFragments(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{})

	fields := DefaultFieldNames()
	page := notion.Page{
		ID: "e",
		Properties: map[string]notion.Property{
			fields.Title:       title("Faster ", "charts ", "(GA)"),
			fields.Description: richText("Line one. ", "Line two."),
		},
	}

	p, err := n.Normalize(page)
	require.NoError(t, err)
	assert.Equal(t, "Faster charts", p.Title)
	assert.Equal(t, "Line one. Line two.", p.Description)
}

func TestNormalize_MissingFields(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{})
	fields := DefaultFieldNames()

	tests := []struct {
		name    string
		page    notion.Page
		missing string
	}{
		{
			name:    "no title",
			page:    notion.Page{ID: "x", Properties: map[string]notion.Property{fields.Description: richText("d")}},
			missing: fields.Title,
		},
		{
			name:    "no description",
			page:    notion.Page{ID: "y", Properties: map[string]notion.Property{fields.Title: title("t")}},
			missing: fields.Description,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(tt.page)
			var missing *MissingFieldError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.page.ID, missing.RecordID)
			assert.Equal(t, tt.missing, missing.Field)
		})
	}
}

func TestNormalizeAll_StopsAtFirstError(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{})

	pages := []notion.Page{
		buildPage(pageFixture{id: "ok", title: "Fine"}),
		{ID: "bad", Properties: map[string]notion.Property{}},
	}

	projects, err := n.NormalizeAll(pages)
	assert.Nil(t, projects)
	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "bad", missing.RecordID)
}

func TestNormalize_CustomConfig(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{
		TitleStrips:  []string{"[beta]"},
		FallbackIcon: "?",
	})

	p, err := n.Normalize(buildPage(pageFixture{id: "f", title: "Thing [beta] (release)"}))
	require.NoError(t, err)
	assert.Equal(t, "Thing  (release)", p.Title)
	assert.Equal(t, "?", p.Icon)
}

func TestStripTitle(t *testing.T) {
	tests := map[string]string{
		"Plain":                             "Plain",
		"  Padded  ":                        "Padded",
		"Charts (release)":                  "Charts",
		"Charts (GA) (parent project)":      "Charts",
		"(re(release)lease) nested":         "nested",
		"":                                  "",
		"(GA)":                              "",
	}

	for in, want := range tests {
		got := StripTitle(in, DefaultTitleStrips)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, StripTitle(got, DefaultTitleStrips), "idempotent for %q", in)
	}
}
