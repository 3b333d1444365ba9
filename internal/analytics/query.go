package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

const (
	DefaultMaxResults = 100
	MaxResultsLimit   = 1000
	DefaultTopN       = 5
)

// Query is one time-windowed, filtered backend request.
type Query struct {
	TimeWindow TimeWindowDescriptor
	Filters    []Predicate
	Limit      int
}

type ResultSet struct {
	Meta    Meta
	Results []RawRecord
}

type Meta struct {
	Size      int       `json:"size"`
	TimeRange TimeRange `json:"timeRange"`
}

type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Executor runs a single query against the backend.
type Executor interface {
	QueryRequests(ctx context.Context, q Query) (*ResultSet, error)
}

type EngineConfig struct {
	Logger   *slog.Logger
	Executor Executor
}

func (c *EngineConfig) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Executor == nil {
		return errors.New("executor is required")
	}
	return nil
}

// Engine runs the resolve, filter, execute, normalize pipeline and builds
// reports from the canonical records. It holds no per-call state.
type Engine struct {
	log  *slog.Logger
	exec Executor
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		log:  cfg.Logger,
		exec: cfg.Executor,
	}, nil
}

type fetched struct {
	filters []Predicate
	meta    Meta
	records []Record
}

func (e *Engine) fetch(ctx context.Context, window TimeWindow, args FilterArgs, limit int) (*fetched, error) {
	if window == "" {
		window = DefaultTimeWindow
	}
	desc, err := Resolve(window)
	if err != nil {
		return nil, err
	}

	filters, err := BuildFilters(args)
	if err != nil {
		return nil, err
	}

	limit = clampLimit(limit)

	e.log.Debug("analytics: querying requests", "timeWindow", window, "filters", len(filters), "limit", limit)

	rs, err := e.exec.QueryRequests(ctx, Query{
		TimeWindow: desc,
		Filters:    filters,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}

	return &fetched{
		filters: filters,
		meta:    rs.Meta,
		records: NormalizeAll(rs.Results),
	}, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultMaxResults
	case limit > MaxResultsLimit:
		return MaxResultsLimit
	default:
		return limit
	}
}

func topN(n int) int {
	if n <= 0 {
		return DefaultTopN
	}
	return n
}
