package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/aristath/roadmap/internal/clients/notion"
)

// PageFixture describes one roadmap record. Empty Stage or Period leaves
// the property out of the page.
type PageFixture struct {
	ID          string
	Title       string
	Description string
	Emoji       string
	Stage       string
	Period      string
}

// NotionPage builds a database page with the roadmap's property names.
func NotionPage(f PageFixture) notion.Page {
	page := notion.Page{
		ID: f.ID,
		Properties: map[string]notion.Property{
			"Name": {Type: "title", Title: []notion.RichText{{Type: "text", PlainText: f.Title}}},
			"Public description": {
				Type:     "rich_text",
				RichText: []notion.RichText{{Type: "text", PlainText: f.Description}},
			},
		},
	}
	if f.Emoji != "" {
		page.Icon = &notion.Icon{Type: "emoji", Emoji: f.Emoji}
	}
	if f.Stage != "" {
		page.Properties["Stage"] = notion.Property{Type: "select", Select: &notion.SelectOption{Name: f.Stage}}
	}
	if f.Period != "" {
		page.Properties["Planned quarter"] = notion.Property{Type: "select", Select: &notion.SelectOption{Name: f.Period}}
	}
	return page
}

// NotionServer is a fake Notion API serving pages from a fixed result set,
// honouring page_size and start_cursor.
type NotionServer struct {
	*httptest.Server
	calls int32
}

// Calls returns how many query requests were served.
func (s *NotionServer) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}

// NewNotionServer starts a fake Notion API. It is closed when the test ends.
func NewNotionServer(t *testing.T, pages []notion.Page) *NotionServer {
	t.Helper()

	s := &NotionServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.calls, 1)

		var req notion.QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"object":"error","status":400,"code":"invalid_json","message":"bad body"}`, http.StatusBadRequest)
			return
		}

		start := 0
		if req.StartCursor != "" {
			n, err := strconv.Atoi(req.StartCursor)
			if err != nil || n < 0 || n > len(pages) {
				http.Error(w, `{"object":"error","status":400,"code":"validation_error","message":"bad cursor"}`, http.StatusBadRequest)
				return
			}
			start = n
		}
		size := req.PageSize
		if size <= 0 || size > notion.MaxPageSize {
			size = notion.MaxPageSize
		}
		end := start + size
		if end > len(pages) {
			end = len(pages)
		}

		resp := notion.QueryResponse{Object: "list", Results: pages[start:end]}
		if end < len(pages) {
			resp.HasMore = true
			resp.NextCursor = strconv.Itoa(end)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(s.Close)
	return s
}
