package analytics

import (
	"context"
	"errors"
	"strings"
)

var ErrMissingEntityID = errors.New("entity id is required")

type ReportMetadata struct {
	TotalRequests    int         `json:"totalRequests"`
	ReturnedRequests int         `json:"returnedRequests"`
	TimeWindow       TimeWindow  `json:"timeWindow"`
	TimeRange        TimeRange   `json:"timeRange"`
	Filters          []Predicate `json:"filters"`
}

func newMetadata(window TimeWindow, f *fetched) ReportMetadata {
	if window == "" {
		window = DefaultTimeWindow
	}
	return ReportMetadata{
		TotalRequests:    f.meta.Size,
		ReturnedRequests: len(f.records),
		TimeWindow:       window,
		TimeRange:        f.meta.TimeRange,
		Filters:          f.filters,
	}
}

type RequestsQuery struct {
	TimeWindow TimeWindow
	Filters    FilterArgs
	MaxResults int
}

type RequestsReport struct {
	Metadata ReportMetadata `json:"metadata"`
	Requests []Record       `json:"requests"`
}

func (e *Engine) QueryRequests(ctx context.Context, q RequestsQuery) (*RequestsReport, error) {
	f, err := e.fetch(ctx, q.TimeWindow, q.Filters, q.MaxResults)
	if err != nil {
		return nil, err
	}
	return &RequestsReport{
		Metadata: newMetadata(q.TimeWindow, f),
		Requests: f.records,
	}, nil
}

// EntityQuery looks up the traffic of one consumer or one service.
type EntityQuery struct {
	ID          string
	TimeWindow  TimeWindow
	SuccessOnly bool
	FailureOnly bool
	MaxResults  int
	TopN        int
}

type ConsumerStatistics struct {
	AverageLatencyMs       float64            `json:"averageLatencyMs"`
	SuccessRatePercent     float64            `json:"successRatePercent"`
	StatusCodeDistribution []StatusCodeBucket `json:"statusCodeDistribution"`
	ServiceDistribution    []KeyCount         `json:"serviceDistribution"`
	RouteDistribution      []KeyCount         `json:"routeDistribution"`
}

type ConsumerReport struct {
	ConsumerID string             `json:"consumerId"`
	Metadata   ReportMetadata     `json:"metadata"`
	Statistics ConsumerStatistics `json:"statistics"`
	Requests   []Record           `json:"requests"`
}

func (e *Engine) ConsumerRequests(ctx context.Context, q EntityQuery) (*ConsumerReport, error) {
	id := strings.TrimSpace(q.ID)
	if id == "" {
		return nil, ErrMissingEntityID
	}
	f, err := e.fetch(ctx, q.TimeWindow, FilterArgs{
		ConsumerIDs: []string{id},
		SuccessOnly: q.SuccessOnly,
		FailureOnly: q.FailureOnly,
	}, q.MaxResults)
	if err != nil {
		return nil, err
	}
	stats := ComputeStatistics(f.records)
	return &ConsumerReport{
		ConsumerID: id,
		Metadata:   newMetadata(q.TimeWindow, f),
		Statistics: ConsumerStatistics{
			AverageLatencyMs:       stats.AverageLatencyMs,
			SuccessRatePercent:     stats.SuccessRatePercent,
			StatusCodeDistribution: StatusCodeDistribution(f.records),
			ServiceDistribution:    ServiceDistribution(f.records, GroupOptions{Nested: true}),
			RouteDistribution:      RouteDistribution(f.records, GroupOptions{Limit: topN(q.TopN)}),
		},
		Requests: f.records,
	}, nil
}

type ServiceStatistics struct {
	AverageLatencyMs       float64            `json:"averageLatencyMs"`
	SuccessRatePercent     float64            `json:"successRatePercent"`
	StatusCodeDistribution []StatusCodeBucket `json:"statusCodeDistribution"`
	RouteDistribution      []KeyCount         `json:"routeDistribution"`
	ConsumerDistribution   []KeyCount         `json:"consumerDistribution"`
}

type ServiceReport struct {
	ServiceID  string            `json:"serviceId"`
	Metadata   ReportMetadata    `json:"metadata"`
	Statistics ServiceStatistics `json:"statistics"`
	Requests   []Record          `json:"requests"`
}

func (e *Engine) ServiceRequests(ctx context.Context, q EntityQuery) (*ServiceReport, error) {
	id := strings.TrimSpace(q.ID)
	if id == "" {
		return nil, ErrMissingEntityID
	}
	f, err := e.fetch(ctx, q.TimeWindow, FilterArgs{
		ServiceIDs:  []string{id},
		SuccessOnly: q.SuccessOnly,
		FailureOnly: q.FailureOnly,
	}, q.MaxResults)
	if err != nil {
		return nil, err
	}
	stats := ComputeStatistics(f.records)
	return &ServiceReport{
		ServiceID: id,
		Metadata:  newMetadata(q.TimeWindow, f),
		Statistics: ServiceStatistics{
			AverageLatencyMs:       stats.AverageLatencyMs,
			SuccessRatePercent:     stats.SuccessRatePercent,
			StatusCodeDistribution: StatusCodeDistribution(f.records),
			RouteDistribution:      RouteDistribution(f.records, GroupOptions{Nested: true}),
			ConsumerDistribution:   ConsumerDistribution(f.records, GroupOptions{Limit: topN(q.TopN)}),
		},
		Requests: f.records,
	}, nil
}

type FailureQuery struct {
	TimeWindow TimeWindow
	ServiceIDs []string
	RouteIDs   []string
	MaxResults int
	TopN       int
}

type FailureReport struct {
	Metadata               ReportMetadata     `json:"metadata"`
	TotalFailures          int                `json:"totalFailures"`
	AverageLatencyMs       float64            `json:"averageLatencyMs"`
	StatusCodeDistribution []StatusCodeBucket `json:"statusCodeDistribution"`
	TopConsumers           []KeyCount         `json:"topConsumers"`
	ServiceDistribution    []KeyCount         `json:"serviceDistribution"`
	RouteDistribution      []KeyCount         `json:"routeDistribution"`
	MethodDistribution     []KeyCount         `json:"methodDistribution"`
}

// FailedRequests reports on 4XX and 5XX traffic. The consumer list is the
// top N consumers by failure count.
func (e *Engine) FailedRequests(ctx context.Context, q FailureQuery) (*FailureReport, error) {
	f, err := e.fetch(ctx, q.TimeWindow, FilterArgs{
		ServiceIDs:  q.ServiceIDs,
		RouteIDs:    q.RouteIDs,
		FailureOnly: true,
	}, q.MaxResults)
	if err != nil {
		return nil, err
	}
	n := topN(q.TopN)
	return &FailureReport{
		Metadata:               newMetadata(q.TimeWindow, f),
		TotalFailures:          len(f.records),
		AverageLatencyMs:       ComputeStatistics(f.records).AverageLatencyMs,
		StatusCodeDistribution: StatusCodeDistribution(f.records),
		TopConsumers:           ConsumerDistribution(f.records, GroupOptions{Limit: n}),
		ServiceDistribution:    ServiceDistribution(f.records, GroupOptions{Nested: true}),
		RouteDistribution:      RouteDistribution(f.records, GroupOptions{Nested: true, Limit: n}),
		MethodDistribution:     MethodDistribution(f.records),
	}, nil
}

type SummaryQuery struct {
	TimeWindow TimeWindow
	Filters    FilterArgs
	MaxResults int
	TopN       int
}

type SummaryReport struct {
	Metadata               ReportMetadata     `json:"metadata"`
	Statistics             Statistics         `json:"statistics"`
	StatusCodeDistribution []StatusCodeBucket `json:"statusCodeDistribution"`
	MethodDistribution     []KeyCount         `json:"methodDistribution"`
	ServiceDistribution    []KeyCount         `json:"serviceDistribution"`
	ConsumerDistribution   []KeyCount         `json:"consumerDistribution"`
	RouteDistribution      []KeyCount         `json:"routeDistribution"`
}

func (e *Engine) TrafficSummary(ctx context.Context, q SummaryQuery) (*SummaryReport, error) {
	f, err := e.fetch(ctx, q.TimeWindow, q.Filters, q.MaxResults)
	if err != nil {
		return nil, err
	}
	n := topN(q.TopN)
	return &SummaryReport{
		Metadata:               newMetadata(q.TimeWindow, f),
		Statistics:             ComputeStatistics(f.records),
		StatusCodeDistribution: StatusCodeDistribution(f.records),
		MethodDistribution:     MethodDistribution(f.records),
		ServiceDistribution:    ServiceDistribution(f.records, GroupOptions{Nested: true, Limit: n}),
		ConsumerDistribution:   ConsumerDistribution(f.records, GroupOptions{Limit: n}),
		RouteDistribution:      RouteDistribution(f.records, GroupOptions{Limit: n}),
	}, nil
}
