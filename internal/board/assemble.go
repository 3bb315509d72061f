package board

import (
	"fmt"

	"CRMDashboard/internal/domain"
)

// Card is the summary tile of one metric.
type Card struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Desc   string `json:"desc"`
	Count  int    `json:"count"`
	Status Counts `json:"status"`
}

// Drilldown is the content of a bucket's detail view.
type Drilldown struct {
	Metric  string  `json:"metric"`
	Color   Color   `json:"color"`
	Title   string  `json:"title"`
	Entries []Entry `json:"items"`
}

// Assemble builds cards for keys in the given order; no keys means every
// registered metric.
func (r *Registry) Assemble(s domain.Snapshot, keys []string) ([]Card, error) {
	if len(keys) == 0 {
		keys = r.order
	}

	cards := make([]Card, 0, len(keys))
	for _, key := range keys {
		m, err := r.Resolve(key)
		if err != nil {
			return nil, err
		}
		cards = append(cards, Card{
			Key:    m.Key(),
			Title:  m.Title(),
			Desc:   m.Description(),
			Count:  m.Count(s),
			Status: m.Counts(s),
		})
	}
	return cards, nil
}

// Drilldown formats one bucket of one metric.
func (r *Registry) Drilldown(s domain.Snapshot, key string, c Color) (Drilldown, error) {
	m, err := r.Resolve(key)
	if err != nil {
		return Drilldown{}, err
	}
	c, err = ParseColor(string(c))
	if err != nil {
		return Drilldown{}, err
	}

	return Drilldown{
		Metric:  m.Key(),
		Color:   c,
		Title:   fmt.Sprintf("%s — %s", m.Title(), c.Caption()),
		Entries: m.Entries(s, c),
	}, nil
}
