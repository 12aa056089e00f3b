package roadmap

import (
	"fmt"
	"strings"

	"github.com/aristath/roadmap/internal/clients/notion"
)

// FallbackIcon is used when a record has no emoji icon.
const FallbackIcon = "🏳️"

// FieldNames names the database properties read by the fetcher and normalizer.
type FieldNames struct {
	Title          string
	Description    string
	Stage          string
	Period         string
	PublicCheckbox string
	EndDate        string
}

// DefaultFieldNames returns the property names of the roadmap database.
func DefaultFieldNames() FieldNames {
	return FieldNames{
		Title:          "Name",
		Description:    "Public description",
		Stage:          "Stage",
		Period:         "Planned quarter",
		PublicCheckbox: "Show on public Streamlit roadmap",
		EndDate:        "End date",
	}
}

// DefaultTitleStrips lists substrings removed from every title.
var DefaultTitleStrips = []string{
	"(parent project)",
	"(release)",
	"(GA)",
}

// MissingFieldError reports a record without a required property.
type MissingFieldError struct {
	RecordID string
	Field    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record %s is missing required field %q", e.RecordID, e.Field)
}

// NormalizerConfig configures a Normalizer. Zero values take defaults.
type NormalizerConfig struct {
	Fields       FieldNames
	TitleStrips  []string
	FallbackIcon string
}

// Normalizer maps raw database pages to projects.
type Normalizer struct {
	fields       FieldNames
	titleStrips  []string
	fallbackIcon string
}

// NewNormalizer creates a normalizer.
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	if cfg.Fields == (FieldNames{}) {
		cfg.Fields = DefaultFieldNames()
	}
	if cfg.TitleStrips == nil {
		cfg.TitleStrips = DefaultTitleStrips
	}
	if cfg.FallbackIcon == "" {
		cfg.FallbackIcon = FallbackIcon
	}
	return &Normalizer{
		fields:       cfg.Fields,
		titleStrips:  append([]string(nil), cfg.TitleStrips...),
		fallbackIcon: cfg.FallbackIcon,
	}
}

// Normalize converts one page. Title and description are required;
// stage, period and icon fall back to defaults.
func (n *Normalizer) Normalize(page notion.Page) (Project, error) {
	titleProp, ok := page.Properties[n.fields.Title]
	if !ok {
		return Project{}, &MissingFieldError{RecordID: page.ID, Field: n.fields.Title}
	}
	descProp, ok := page.Properties[n.fields.Description]
	if !ok {
		return Project{}, &MissingFieldError{RecordID: page.ID, Field: n.fields.Description}
	}

	return Project{
		ID:          page.ID,
		Title:       StripTitle(textOf(titleProp), n.titleStrips),
		Icon:        n.icon(page.Icon),
		Description: textOf(descProp),
		Stage:       n.stage(page.Properties),
		Period:      n.period(page.Properties),
	}, nil
}

// NormalizeAll converts pages in order, stopping at the first error.
func (n *Normalizer) NormalizeAll(pages []notion.Page) ([]Project, error) {
	projects := make([]Project, 0, len(pages))
	for _, page := range pages {
		p, err := n.Normalize(page)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (n *Normalizer) icon(icon *notion.Icon) string {
	if icon != nil && icon.Type == "emoji" && icon.Emoji != "" {
		return icon.Emoji
	}
	return n.fallbackIcon
}

func (n *Normalizer) stage(props map[string]notion.Property) string {
	prop, ok := props[n.fields.Stage]
	if !ok {
		// Absent property: the database has no stage column for this record.
		return ""
	}
	if opt := optionOf(prop); opt != nil {
		return opt.Name
	}
	// Present but unset.
	return ""
}

func (n *Normalizer) period(props map[string]notion.Property) string {
	prop, ok := props[n.fields.Period]
	if !ok {
		return FuturePeriod
	}
	if opt := optionOf(prop); opt != nil && opt.Name != "" {
		return opt.Name
	}
	return FuturePeriod
}

// textOf reads a title or rich text property.
func textOf(prop notion.Property) string {
	if prop.Type == "title" || (prop.Type == "" && prop.Title != nil) {
		return notion.PlainText(prop.Title)
	}
	return notion.PlainText(prop.RichText)
}

// optionOf reads a select or status property.
func optionOf(prop notion.Property) *notion.SelectOption {
	if prop.Status != nil {
		return prop.Status
	}
	return prop.Select
}

// StripTitle removes each configured substring until none remain, then
// trims surrounding whitespace. Applying it twice gives the same result as once.
func StripTitle(title string, strips []string) string {
	for {
		before := title
		for _, s := range strips {
			if s != "" {
				title = strings.ReplaceAll(title, s, "")
			}
		}
		if title == before {
			break
		}
	}
	return strings.TrimSpace(title)
}
