package notion

import "strings"

// Filter is a database query filter. Exactly one of the condition
// fields (or And/Or for compound filters) should be set.
type Filter struct {
	Property string             `json:"property,omitempty"`
	Checkbox *CheckboxCondition `json:"checkbox,omitempty"`
	Date     *DateCondition     `json:"date,omitempty"`
	Select   *SelectCondition   `json:"select,omitempty"`
	Status   *SelectCondition   `json:"status,omitempty"`
	And      []Filter           `json:"and,omitempty"`
	Or       []Filter           `json:"or,omitempty"`
}

// CheckboxCondition filters a checkbox property.
type CheckboxCondition struct {
	Equals bool `json:"equals"`
}

// DateCondition filters a date property. Dates use ISO 8601.
type DateCondition struct {
	After     string `json:"after,omitempty"`
	Before    string `json:"before,omitempty"`
	OnOrAfter string `json:"on_or_after,omitempty"`
	IsEmpty   bool   `json:"is_empty,omitempty"`
}

// SelectCondition filters a select or status property.
type SelectCondition struct {
	Equals       string `json:"equals,omitempty"`
	DoesNotEqual string `json:"does_not_equal,omitempty"`
	IsEmpty      bool   `json:"is_empty,omitempty"`
}

// QueryRequest is the body of POST /databases/{id}/query.
type QueryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

// QueryResponse is one page of database query results.
type QueryResponse struct {
	Object     string `json:"object"`
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// Page is a database row.
type Page struct {
	ID         string              `json:"id"`
	Icon       *Icon               `json:"icon,omitempty"`
	Properties map[string]Property `json:"properties"`
}

// Icon is a page icon. Only emoji icons carry a glyph.
type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

// Property is a typed property value. Only the field matching Type is populated.
type Property struct {
	ID       string        `json:"id,omitempty"`
	Type     string        `json:"type"`
	Title    []RichText    `json:"title,omitempty"`
	RichText []RichText    `json:"rich_text,omitempty"`
	Select   *SelectOption `json:"select,omitempty"`
	Status   *SelectOption `json:"status,omitempty"`
	Checkbox *bool         `json:"checkbox,omitempty"`
	Date     *DateValue    `json:"date,omitempty"`
}

// RichText is one fragment of a rich text array.
type RichText struct {
	Type      string `json:"type,omitempty"`
	PlainText string `json:"plain_text"`
	Href      string `json:"href,omitempty"`
}

// SelectOption is the value of a select or status property.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// DateValue is the value of a date property.
type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// APIError is the error object returned on non-2xx responses.
type APIError struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PlainText concatenates the plain text of every fragment in order.
func PlainText(parts []RichText) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.PlainText)
	}
	return b.String()
}
