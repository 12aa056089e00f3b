package roadmap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/roadmap/internal/clients/notion"
)

// ErrMalformedPage is returned when the source reports more results
// without a usable cursor.
var ErrMalformedPage = errors.New("malformed page")

// Source queries the record store one page at a time.
// *notion.Client satisfies it.
type Source interface {
	QueryDatabase(ctx context.Context, databaseID string, req notion.QueryRequest) (*notion.QueryResponse, error)
}

// FilterOptions selects which records are fetched.
type FilterOptions struct {
	// OnlyPublic keeps records whose public checkbox is ticked.
	OnlyPublic bool
	// RecencyWindow keeps records whose end date is empty or within the
	// window. Zero disables the filter.
	RecencyWindow time.Duration
}

// CacheKey identifies the options in the roadmap cache.
func (o FilterOptions) CacheKey() string {
	return fmt.Sprintf("roadmap:public=%t:recency=%d", o.OnlyPublic, int64(o.RecencyWindow/time.Hour))
}

// Fetcher collects every record matching a filter, following pagination.
type Fetcher struct {
	source     Source
	databaseID string
	fields     FieldNames
	pageSize   int
	now        func() time.Time
	log        zerolog.Logger
}

// NewFetcher creates a fetcher for one database.
func NewFetcher(source Source, databaseID string, fields FieldNames, log zerolog.Logger) *Fetcher {
	if fields == (FieldNames{}) {
		fields = DefaultFieldNames()
	}
	return &Fetcher{
		source:     source,
		databaseID: databaseID,
		fields:     fields,
		pageSize:   notion.MaxPageSize,
		now:        time.Now,
		log:        log.With().Str("component", "roadmap_fetcher").Logger(),
	}
}

// BuildFilter translates options into a source filter. Returns nil when
// no condition applies.
func (f *Fetcher) BuildFilter(opts FilterOptions) *notion.Filter {
	var conditions []notion.Filter

	if opts.RecencyWindow > 0 {
		since := f.now().Add(-opts.RecencyWindow).Format("2006-01-02")
		conditions = append(conditions, notion.Filter{
			Or: []notion.Filter{
				{Property: f.fields.EndDate, Date: &notion.DateCondition{After: since}},
				{Property: f.fields.EndDate, Date: &notion.DateCondition{IsEmpty: true}},
			},
		})
	}

	if opts.OnlyPublic {
		conditions = append(conditions, notion.Filter{
			Property: f.fields.PublicCheckbox,
			Checkbox: &notion.CheckboxCondition{Equals: true},
		})
	}

	if len(conditions) == 0 {
		return nil
	}
	return &notion.Filter{And: conditions}
}

// FetchAll returns every matching record in the order the source returned them.
// Pages are requested sequentially since each cursor comes from the previous response.
func (f *Fetcher) FetchAll(ctx context.Context, opts FilterOptions) ([]notion.Page, error) {
	runID := uuid.New().String()
	log := f.log.With().Str("fetch_id", runID).Logger()

	req := notion.QueryRequest{
		Filter:   f.BuildFilter(opts),
		PageSize: f.pageSize,
	}

	var pages []notion.Page
	seen := make(map[string]bool)
	for n := 1; ; n++ {
		resp, err := f.source.QueryDatabase(ctx, f.databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("failed to query page %d: %w", n, err)
		}
		if resp == nil {
			return nil, fmt.Errorf("page %d: empty response: %w", n, ErrMalformedPage)
		}

		pages = append(pages, resp.Results...)
		log.Debug().
			Int("page", n).
			Int("results", len(resp.Results)).
			Bool("has_more", resp.HasMore).
			Msg("Fetched roadmap page")

		if !resp.HasMore {
			break
		}
		if resp.NextCursor == "" {
			return nil, fmt.Errorf("page %d: has_more without next_cursor: %w", n, ErrMalformedPage)
		}
		if seen[resp.NextCursor] {
			return nil, fmt.Errorf("page %d: cursor %q repeated: %w", n, resp.NextCursor, ErrMalformedPage)
		}
		seen[resp.NextCursor] = true
		req.StartCursor = resp.NextCursor
	}

	log.Info().
		Int("records", len(pages)).
		Bool("only_public", opts.OnlyPublic).
		Msg("Fetched roadmap records")

	if pages == nil {
		pages = []notion.Page{}
	}
	return pages, nil
}
