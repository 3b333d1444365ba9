package analytics

import (
	"cmp"
	"slices"
)

// KeyOrder decides how groups with equal counts are ordered.
type KeyOrder int

const (
	// KeyOrderFirstSeen keeps the order in which keys first appear in the
	// input. Used for identifier keys, which have no natural order.
	KeyOrderFirstSeen KeyOrder = iota
	// KeyOrderAscending orders tied keys by ascending key value. Used for
	// numeric keys such as status codes.
	KeyOrderAscending
)

type GroupOptions struct {
	Order KeyOrder
	// Nested adds a per-group status code breakdown.
	Nested bool
	// Limit caps the number of returned groups after sorting. Zero means no cap.
	Limit int
}

type Group[K cmp.Ordered] struct {
	Key         K
	Count       int
	Percentage  float64
	StatusCodes []StatusCount
}

type StatusCount struct {
	StatusCode int `json:"statusCode"`
	Count      int `json:"count"`
}

type tally[K cmp.Ordered] struct {
	key    K
	count  int
	nested *counter[int]
}

// counter keeps tallies in insertion order so first-seen ordering never
// depends on map iteration.
type counter[K cmp.Ordered] struct {
	index   map[K]int
	tallies []*tally[K]
}

func newCounter[K cmp.Ordered]() *counter[K] {
	return &counter[K]{index: make(map[K]int)}
}

func (c *counter[K]) add(key K) *tally[K] {
	if i, ok := c.index[key]; ok {
		t := c.tallies[i]
		t.count++
		return t
	}
	t := &tally[K]{key: key, count: 1}
	c.index[key] = len(c.tallies)
	c.tallies = append(c.tallies, t)
	return t
}

// sorted returns the tallies by descending count with the requested
// tie-break. The input order is the first-seen order.
func (c *counter[K]) sorted(order KeyOrder) []*tally[K] {
	out := slices.Clone(c.tallies)
	if order == KeyOrderAscending {
		slices.SortStableFunc(out, func(a, b *tally[K]) int {
			return cmp.Compare(a.key, b.key)
		})
	}
	slices.SortStableFunc(out, func(a, b *tally[K]) int {
		return cmp.Compare(b.count, a.count)
	})
	return out
}

func GroupBy[K cmp.Ordered](records []Record, keyFn func(Record) K, opts GroupOptions) []Group[K] {
	groups := []Group[K]{}
	total := len(records)
	if total == 0 {
		return groups
	}

	c := newCounter[K]()
	for _, r := range records {
		t := c.add(keyFn(r))
		if opts.Nested {
			if t.nested == nil {
				t.nested = newCounter[int]()
			}
			t.nested.add(r.StatusCode)
		}
	}

	sorted := c.sorted(opts.Order)
	if opts.Limit > 0 && len(sorted) > opts.Limit {
		sorted = sorted[:opts.Limit]
	}

	for _, t := range sorted {
		g := Group[K]{
			Key:        t.key,
			Count:      t.count,
			Percentage: percentage(t.count, total),
		}
		if t.nested != nil {
			for _, n := range t.nested.sorted(KeyOrderAscending) {
				g.StatusCodes = append(g.StatusCodes, StatusCount{StatusCode: n.key, Count: n.count})
			}
		}
		groups = append(groups, g)
	}
	return groups
}

type StatusCodeBucket struct {
	StatusCode int     `json:"statusCode"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// KeyCount is one entry of an identifier-keyed distribution.
type KeyCount struct {
	Key         string        `json:"key"`
	Count       int           `json:"count"`
	Percentage  float64       `json:"percentage"`
	StatusCodes []StatusCount `json:"statusCodes,omitempty"`
}

func StatusCodeDistribution(records []Record) []StatusCodeBucket {
	groups := GroupBy(records, func(r Record) int { return r.StatusCode }, GroupOptions{Order: KeyOrderAscending})
	out := make([]StatusCodeBucket, 0, len(groups))
	for _, g := range groups {
		out = append(out, StatusCodeBucket{StatusCode: g.Key, Count: g.Count, Percentage: g.Percentage})
	}
	return out
}

func MethodDistribution(records []Record) []KeyCount {
	return keyCounts(GroupBy(records, func(r Record) string { return r.HTTPMethod }, GroupOptions{}))
}

func ConsumerDistribution(records []Record, opts GroupOptions) []KeyCount {
	return keyCounts(GroupBy(records, func(r Record) string { return r.ConsumerID }, opts))
}

func ServiceDistribution(records []Record, opts GroupOptions) []KeyCount {
	return keyCounts(GroupBy(records, func(r Record) string { return r.ServiceID }, opts))
}

func RouteDistribution(records []Record, opts GroupOptions) []KeyCount {
	return keyCounts(GroupBy(records, func(r Record) string { return r.RouteID }, opts))
}

func keyCounts(groups []Group[string]) []KeyCount {
	out := make([]KeyCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, KeyCount{
			Key:         g.Key,
			Count:       g.Count,
			Percentage:  g.Percentage,
			StatusCodes: g.StatusCodes,
		})
	}
	return out
}
