package konnect

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kong/mcp-konnect/internal/analytics"
)

const requestsEndpoint = "/api/requests"

type requestsQuery struct {
	TimeRange analytics.TimeWindowDescriptor `json:"time_range"`
	Filters   []wireFilter                   `json:"filters"`
	Size      int                            `json:"size"`
}

type wireFilter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

type requestsResponse struct {
	Meta struct {
		Size      int `json:"size"`
		TimeRange struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"time_range"`
	} `json:"meta"`
	Results []json.RawMessage `json:"results"`
}

// QueryRequests runs one API request query. It implements analytics.Executor.
func (c *Client) QueryRequests(ctx context.Context, q analytics.Query) (*analytics.ResultSet, error) {
	filters := make([]wireFilter, 0, len(q.Filters))
	for _, p := range q.Filters {
		if err := p.Validate(); err != nil {
			return nil, &RequestError{Err: err}
		}
		filters = append(filters, wireFilter{
			Field:    string(p.Field),
			Operator: strings.ToLower(string(p.Operator)),
			Value:    p.Value,
		})
	}

	var resp requestsResponse
	err := c.do(ctx, requestsEndpoint, http.MethodPost, requestsEndpoint, nil, requestsQuery{
		TimeRange: q.TimeWindow,
		Filters:   filters,
		Size:      q.Limit,
	}, &resp)
	if err != nil {
		return nil, err
	}

	results := make([]analytics.RawRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, analytics.RawRecord(r))
	}

	return &analytics.ResultSet{
		Meta: analytics.Meta{
			Size: resp.Meta.Size,
			TimeRange: analytics.TimeRange{
				Start: resp.Meta.TimeRange.Start,
				End:   resp.Meta.TimeRange.End,
			},
		},
		Results: results,
	}, nil
}
