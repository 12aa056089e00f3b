// Package roadmap turns database records into a roadmap: projects grouped
// by fiscal period, ordered by workflow stage, split into past and
// upcoming periods.
package roadmap

import "sort"

// Project is one normalized roadmap entry. Values are never mutated after
// normalization.
type Project struct {
	ID          string `json:"id" msgpack:"id"`
	Title       string `json:"title" msgpack:"title"`
	Icon        string `json:"icon" msgpack:"icon"`
	Description string `json:"description" msgpack:"description"`
	Stage       string `json:"stage" msgpack:"stage"`
	Period      string `json:"period" msgpack:"period"`
}

// Roadmap maps a period label to its projects in the order they were fetched.
type Roadmap map[string][]Project

// Labels returns the period labels present, sorted lexically.
// Use PeriodOrder.Sort for chronological order.
func (r Roadmap) Labels() []string {
	labels := make([]string, 0, len(r))
	for label := range r {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Count returns the total number of projects across all periods.
func (r Roadmap) Count() int {
	n := 0
	for _, projects := range r {
		n += len(projects)
	}
	return n
}
