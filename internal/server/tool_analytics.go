package server

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/kong/mcp-konnect/internal/analytics"
)

const maxTopN = 50

type QueryRequestsInput struct {
	TimeRange          string   `json:"timeRange,omitempty" jsonschema:"Relative time range ending now: 15M, 1H, 6H, 12H, 24H or 7D. Defaults to 1H."`
	StatusCodes        []int    `json:"statusCodes,omitempty" jsonschema:"Only include requests with these HTTP status codes"`
	ExcludeStatusCodes []int    `json:"excludeStatusCodes,omitempty" jsonschema:"Exclude requests with these HTTP status codes"`
	HTTPMethods        []string `json:"httpMethods,omitempty" jsonschema:"Only include requests with these HTTP methods, for example GET or POST"`
	ConsumerIDs        []string `json:"consumerIds,omitempty" jsonschema:"Only include requests from these consumer IDs"`
	ServiceIDs         []string `json:"serviceIds,omitempty" jsonschema:"Only include requests to these gateway service IDs"`
	RouteIDs           []string `json:"routeIds,omitempty" jsonschema:"Only include requests matching these route IDs"`
	MaxResults         int      `json:"maxResults,omitempty" jsonschema:"Maximum number of requests to fetch (1-1000). Defaults to 100."`
}

type ConsumerRequestsInput struct {
	ConsumerID  string `json:"consumerId" jsonschema:"Consumer ID to analyze"`
	TimeRange   string `json:"timeRange,omitempty" jsonschema:"Relative time range ending now: 15M, 1H, 6H, 12H, 24H or 7D. Defaults to 1H."`
	SuccessOnly bool   `json:"successOnly,omitempty" jsonschema:"Only include 2XX responses"`
	FailureOnly bool   `json:"failureOnly,omitempty" jsonschema:"Only include 4XX and 5XX responses"`
	MaxResults  int    `json:"maxResults,omitempty" jsonschema:"Maximum number of requests to fetch (1-1000). Defaults to 100."`
	TopN        int    `json:"topN,omitempty" jsonschema:"Number of routes kept in the route distribution (1-50). Defaults to 5."`
}

type ServiceRequestsInput struct {
	ServiceID   string `json:"serviceId" jsonschema:"Gateway service ID to analyze"`
	TimeRange   string `json:"timeRange,omitempty" jsonschema:"Relative time range ending now: 15M, 1H, 6H, 12H, 24H or 7D. Defaults to 1H."`
	SuccessOnly bool   `json:"successOnly,omitempty" jsonschema:"Only include 2XX responses"`
	FailureOnly bool   `json:"failureOnly,omitempty" jsonschema:"Only include 4XX and 5XX responses"`
	MaxResults  int    `json:"maxResults,omitempty" jsonschema:"Maximum number of requests to fetch (1-1000). Defaults to 100."`
	TopN        int    `json:"topN,omitempty" jsonschema:"Number of consumers kept in the consumer distribution (1-50). Defaults to 5."`
}

type FailedRequestsInput struct {
	TimeRange  string   `json:"timeRange,omitempty" jsonschema:"Relative time range ending now: 15M, 1H, 6H, 12H, 24H or 7D. Defaults to 1H."`
	ServiceIDs []string `json:"serviceIds,omitempty" jsonschema:"Only analyze failures of these gateway service IDs"`
	RouteIDs   []string `json:"routeIds,omitempty" jsonschema:"Only analyze failures of these route IDs"`
	MaxResults int      `json:"maxResults,omitempty" jsonschema:"Maximum number of requests to fetch (1-1000). Defaults to 100."`
	TopN       int      `json:"topN,omitempty" jsonschema:"Number of consumers and routes kept in top-N lists (1-50). Defaults to 5."`
}

type TrafficSummaryInput struct {
	TimeRange   string   `json:"timeRange,omitempty" jsonschema:"Relative time range ending now: 15M, 1H, 6H, 12H, 24H or 7D. Defaults to 1H."`
	HTTPMethods []string `json:"httpMethods,omitempty" jsonschema:"Only include requests with these HTTP methods"`
	ConsumerIDs []string `json:"consumerIds,omitempty" jsonschema:"Only include requests from these consumer IDs"`
	ServiceIDs  []string `json:"serviceIds,omitempty" jsonschema:"Only include requests to these gateway service IDs"`
	RouteIDs    []string `json:"routeIds,omitempty" jsonschema:"Only include requests matching these route IDs"`
	MaxResults  int      `json:"maxResults,omitempty" jsonschema:"Maximum number of requests to fetch (1-1000). Defaults to 100."`
	TopN        int      `json:"topN,omitempty" jsonschema:"Number of entries kept in the service, consumer and route distributions (1-50). Defaults to 5."`
}

func analyticsSchema(schema *jsonschema.Schema) {
	setTimeRangeEnum(schema)
	setBounds(schema, "maxResults", 1, analytics.MaxResultsLimit)
	setDefault(schema, "maxResults", analytics.DefaultMaxResults)
	setBounds(schema, "topN", 1, maxTopN)
	setDefault(schema, "topN", analytics.DefaultTopN)
	if p, ok := schema.Properties["statusCodes"]; ok && p.Items != nil {
		setItemBounds(p.Items, 100, 599)
	}
	if p, ok := schema.Properties["excludeStatusCodes"]; ok && p.Items != nil {
		setItemBounds(p.Items, 100, 599)
	}
}

func setItemBounds(items *jsonschema.Schema, minimum, maximum int) {
	lo, hi := float64(minimum), float64(maximum)
	items.Minimum = &lo
	items.Maximum = &hi
}

// parseTimeRange maps an optional symbol to a time window. Empty selects the
// default window.
func parseTimeRange(s string) (analytics.TimeWindow, error) {
	if s == "" {
		return analytics.DefaultTimeWindow, nil
	}
	return analytics.ParseTimeWindow(s)
}

func (s *Server) registerAnalyticsTools() error {
	engine := s.cfg.Analytics

	if err := addTool(s, toolDef[QueryRequestsInput, analytics.RequestsReport]{
		name:     "query_api_requests",
		category: categoryAnalytics,
		description: `
			PURPOSE:
			Query raw API request records proxied by Kong Konnect gateways.

			USAGE RULES:
			- Narrow the query with status codes, methods, consumers, services or routes.
			- All filters are combined with AND.
			- Prefer get_traffic_summary when only aggregates are needed.

			RETURNS:
			Metadata (total matching requests, time range, applied filters) and the normalized requests.
		`,
		tune: analyticsSchema,
		handle: func(ctx context.Context, in QueryRequestsInput) (analytics.RequestsReport, error) {
			window, err := parseTimeRange(in.TimeRange)
			if err != nil {
				return analytics.RequestsReport{}, err
			}
			report, err := engine.QueryRequests(ctx, analytics.RequestsQuery{
				TimeWindow: window,
				Filters: analytics.FilterArgs{
					StatusCodes:        in.StatusCodes,
					ExcludeStatusCodes: in.ExcludeStatusCodes,
					HTTPMethods:        in.HTTPMethods,
					ConsumerIDs:        in.ConsumerIDs,
					ServiceIDs:         in.ServiceIDs,
					RouteIDs:           in.RouteIDs,
				},
				MaxResults: in.MaxResults,
			})
			if err != nil {
				return analytics.RequestsReport{}, err
			}
			return *report, nil
		},
	}); err != nil {
		return err
	}

	if err := addTool(s, toolDef[ConsumerRequestsInput, analytics.ConsumerReport]{
		name:     "get_consumer_requests",
		category: categoryAnalytics,
		description: `
			PURPOSE:
			Analyze the API traffic of a single consumer.

			RETURNS:
			Average latency, success rate, status code distribution, services used (broken down by
			status code), top routes and the normalized requests.
		`,
		tune: analyticsSchema,
		handle: func(ctx context.Context, in ConsumerRequestsInput) (analytics.ConsumerReport, error) {
			window, err := parseTimeRange(in.TimeRange)
			if err != nil {
				return analytics.ConsumerReport{}, err
			}
			report, err := engine.ConsumerRequests(ctx, analytics.EntityQuery{
				ID:          in.ConsumerID,
				TimeWindow:  window,
				SuccessOnly: in.SuccessOnly,
				FailureOnly: in.FailureOnly,
				MaxResults:  in.MaxResults,
				TopN:        in.TopN,
			})
			if err != nil {
				return analytics.ConsumerReport{}, err
			}
			return *report, nil
		},
	}); err != nil {
		return err
	}

	if err := addTool(s, toolDef[ServiceRequestsInput, analytics.ServiceReport]{
		name:     "get_service_requests",
		category: categoryAnalytics,
		description: `
			PURPOSE:
			Analyze the API traffic of a single gateway service.

			RETURNS:
			Average latency, success rate, status code distribution, routes (broken down by status
			code), top consumers and the normalized requests.
		`,
		tune: analyticsSchema,
		handle: func(ctx context.Context, in ServiceRequestsInput) (analytics.ServiceReport, error) {
			window, err := parseTimeRange(in.TimeRange)
			if err != nil {
				return analytics.ServiceReport{}, err
			}
			report, err := engine.ServiceRequests(ctx, analytics.EntityQuery{
				ID:          in.ServiceID,
				TimeWindow:  window,
				SuccessOnly: in.SuccessOnly,
				FailureOnly: in.FailureOnly,
				MaxResults:  in.MaxResults,
				TopN:        in.TopN,
			})
			if err != nil {
				return analytics.ServiceReport{}, err
			}
			return *report, nil
		},
	}); err != nil {
		return err
	}

	if err := addTool(s, toolDef[FailedRequestsInput, analytics.FailureReport]{
		name:     "analyze_failed_requests",
		category: categoryAnalytics,
		description: `
			PURPOSE:
			Analyze failed (4XX and 5XX) API requests to find error patterns.

			RETURNS:
			Failure count, average latency of failed requests, status code distribution, top
			consumers by failure count, services and routes broken down by status code, and the
			HTTP method distribution.
		`,
		tune: analyticsSchema,
		handle: func(ctx context.Context, in FailedRequestsInput) (analytics.FailureReport, error) {
			window, err := parseTimeRange(in.TimeRange)
			if err != nil {
				return analytics.FailureReport{}, err
			}
			report, err := engine.FailedRequests(ctx, analytics.FailureQuery{
				TimeWindow: window,
				ServiceIDs: in.ServiceIDs,
				RouteIDs:   in.RouteIDs,
				MaxResults: in.MaxResults,
				TopN:       in.TopN,
			})
			if err != nil {
				return analytics.FailureReport{}, err
			}
			return *report, nil
		},
	}); err != nil {
		return err
	}

	return addTool(s, toolDef[TrafficSummaryInput, analytics.SummaryReport]{
		name:     "get_traffic_summary",
		category: categoryAnalytics,
		description: `
			PURPOSE:
			Summarize API traffic without returning raw requests.

			RETURNS:
			Average latency, success rate and distributions by status code, HTTP method, service,
			consumer and route.
		`,
		tune: analyticsSchema,
		handle: func(ctx context.Context, in TrafficSummaryInput) (analytics.SummaryReport, error) {
			window, err := parseTimeRange(in.TimeRange)
			if err != nil {
				return analytics.SummaryReport{}, err
			}
			report, err := engine.TrafficSummary(ctx, analytics.SummaryQuery{
				TimeWindow: window,
				Filters: analytics.FilterArgs{
					HTTPMethods: in.HTTPMethods,
					ConsumerIDs: in.ConsumerIDs,
					ServiceIDs:  in.ServiceIDs,
					RouteIDs:    in.RouteIDs,
				},
				MaxResults: in.MaxResults,
				TopN:       in.TopN,
			})
			if err != nil {
				return analytics.SummaryReport{}, err
			}
			return *report, nil
		},
	})
}
