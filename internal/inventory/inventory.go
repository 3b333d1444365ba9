package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

var ErrMissingControlPlaneID = errors.New("control plane id is required")

type EntityKind string

const (
	KindServices  EntityKind = "services"
	KindRoutes    EntityKind = "routes"
	KindConsumers EntityKind = "consumers"
	KindPlugins   EntityKind = "plugins"
)

type ListOptions struct {
	PageSize int
	// Offset is the opaque cursor of core-entity listings.
	Offset string
	// PageNumber and NameContains only apply to control planes.
	PageNumber   int
	NameContains string
}

// RawPage is one page of backend entities before renaming.
type RawPage struct {
	Data       []map[string]any
	NextOffset string
	Total      int
}

type Lister interface {
	ListControlPlanes(ctx context.Context, opts ListOptions) (*RawPage, error)
	ListCoreEntities(ctx context.Context, controlPlaneID string, kind EntityKind, opts ListOptions) (*RawPage, error)
}

type Config struct {
	Logger *slog.Logger
	Lister Lister
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Lister == nil {
		return errors.New("lister is required")
	}
	return nil
}

type Inventory struct {
	log    *slog.Logger
	lister Lister
}

func New(cfg Config) (*Inventory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Inventory{
		log:    cfg.Logger,
		lister: cfg.Lister,
	}, nil
}

type Pagination struct {
	PageSize   int    `json:"pageSize"`
	Offset     string `json:"offset,omitempty"`
	NextOffset string `json:"nextOffset,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

type ServiceList struct {
	ControlPlaneID string     `json:"controlPlaneId"`
	Services       []Service  `json:"services"`
	Pagination     Pagination `json:"pagination"`
}

type RouteList struct {
	ControlPlaneID string     `json:"controlPlaneId"`
	Routes         []Route    `json:"routes"`
	Pagination     Pagination `json:"pagination"`
}

type ConsumerList struct {
	ControlPlaneID string     `json:"controlPlaneId"`
	Consumers      []Consumer `json:"consumers"`
	Pagination     Pagination `json:"pagination"`
}

type PluginList struct {
	ControlPlaneID string     `json:"controlPlaneId"`
	Plugins        []Plugin   `json:"plugins"`
	Pagination     Pagination `json:"pagination"`
}

type ControlPlanePagination struct {
	PageSize   int `json:"pageSize"`
	PageNumber int `json:"pageNumber"`
	Total      int `json:"total"`
}

type ControlPlaneList struct {
	ControlPlanes []ControlPlane         `json:"controlPlanes"`
	Pagination    ControlPlanePagination `json:"pagination"`
}

func (i *Inventory) ListControlPlanes(ctx context.Context, opts ListOptions) (*ControlPlaneList, error) {
	opts.PageSize = clampPageSize(opts.PageSize)
	if opts.PageNumber <= 0 {
		opts.PageNumber = 1
	}

	page, err := i.lister.ListControlPlanes(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list control planes: %w", err)
	}

	return &ControlPlaneList{
		ControlPlanes: convert(page.Data, controlPlaneFromRaw),
		Pagination: ControlPlanePagination{
			PageSize:   opts.PageSize,
			PageNumber: opts.PageNumber,
			Total:      page.Total,
		},
	}, nil
}

func (i *Inventory) ListServices(ctx context.Context, controlPlaneID string, opts ListOptions) (*ServiceList, error) {
	page, pagination, err := i.listCoreEntities(ctx, controlPlaneID, KindServices, opts)
	if err != nil {
		return nil, err
	}
	return &ServiceList{
		ControlPlaneID: controlPlaneID,
		Services:       convert(page.Data, serviceFromRaw),
		Pagination:     pagination,
	}, nil
}

func (i *Inventory) ListRoutes(ctx context.Context, controlPlaneID string, opts ListOptions) (*RouteList, error) {
	page, pagination, err := i.listCoreEntities(ctx, controlPlaneID, KindRoutes, opts)
	if err != nil {
		return nil, err
	}
	return &RouteList{
		ControlPlaneID: controlPlaneID,
		Routes:         convert(page.Data, routeFromRaw),
		Pagination:     pagination,
	}, nil
}

func (i *Inventory) ListConsumers(ctx context.Context, controlPlaneID string, opts ListOptions) (*ConsumerList, error) {
	page, pagination, err := i.listCoreEntities(ctx, controlPlaneID, KindConsumers, opts)
	if err != nil {
		return nil, err
	}
	return &ConsumerList{
		ControlPlaneID: controlPlaneID,
		Consumers:      convert(page.Data, consumerFromRaw),
		Pagination:     pagination,
	}, nil
}

func (i *Inventory) ListPlugins(ctx context.Context, controlPlaneID string, opts ListOptions) (*PluginList, error) {
	page, pagination, err := i.listCoreEntities(ctx, controlPlaneID, KindPlugins, opts)
	if err != nil {
		return nil, err
	}
	return &PluginList{
		ControlPlaneID: controlPlaneID,
		Plugins:        convert(page.Data, pluginFromRaw),
		Pagination:     pagination,
	}, nil
}

func (i *Inventory) listCoreEntities(ctx context.Context, controlPlaneID string, kind EntityKind, opts ListOptions) (*RawPage, Pagination, error) {
	if strings.TrimSpace(controlPlaneID) == "" {
		return nil, Pagination{}, ErrMissingControlPlaneID
	}
	opts.PageSize = clampPageSize(opts.PageSize)

	i.log.Debug("inventory: listing entities", "kind", kind, "controlPlaneID", controlPlaneID, "pageSize", opts.PageSize)

	page, err := i.lister.ListCoreEntities(ctx, controlPlaneID, kind, opts)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	return page, Pagination{
		PageSize:   opts.PageSize,
		Offset:     opts.Offset,
		NextOffset: page.NextOffset,
		HasMore:    page.NextOffset != "",
	}, nil
}

func clampPageSize(size int) int {
	switch {
	case size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	default:
		return size
	}
}

func convert[T any](data []map[string]any, fn func(map[string]any) T) []T {
	out := make([]T, 0, len(data))
	for _, m := range data {
		out = append(out, fn(m))
	}
	return out
}
