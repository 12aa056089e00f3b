package roadmap

import (
	"github.com/aristath/roadmap/internal/clients/notion"
)

// pageFixture describes a record for tests. Nil pointers mean the property is absent.
type pageFixture struct {
	id          string
	title       string
	description *string
	stage       *string
	period      *string
	emoji       string
}

func strPtr(s string) *string { return &s }

func title(parts ...string) notion.Property {
	prop := notion.Property{Type: "title", Title: []notion.RichText{}}
	for _, p := range parts {
		prop.Title = append(prop.Title, notion.RichText{Type: "text", PlainText: p})
	}
	return prop
}

func richText(parts ...string) notion.Property {
	prop := notion.Property{Type: "rich_text", RichText: []notion.RichText{}}
	for _, p := range parts {
		prop.RichText = append(prop.RichText, notion.RichText{Type: "text", PlainText: p})
	}
	return prop
}

func selectProp(name *string) notion.Property {
	prop := notion.Property{Type: "select"}
	if name != nil {
		prop.Select = &notion.SelectOption{Name: *name}
	}
	return prop
}

func buildPage(s pageFixture) notion.Page {
	fields := DefaultFieldNames()
	page := notion.Page{
		ID: s.id,
		Properties: map[string]notion.Property{
			fields.Title: title(s.title),
		},
	}
	desc := ""
	if s.description != nil {
		desc = *s.description
	}
	page.Properties[fields.Description] = richText(desc)
	if s.stage != nil {
		page.Properties[fields.Stage] = selectProp(s.stage)
	}
	if s.period != nil {
		page.Properties[fields.Period] = selectProp(s.period)
	}
	if s.emoji != "" {
		page.Icon = &notion.Icon{Type: "emoji", Emoji: s.emoji}
	}
	return page
}
