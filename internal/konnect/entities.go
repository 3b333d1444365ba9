package konnect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kong/mcp-konnect/internal/inventory"
)

type controlPlanesResponse struct {
	Data []map[string]any `json:"data"`
	Meta struct {
		Page struct {
			Total  int `json:"total"`
			Size   int `json:"size"`
			Number int `json:"number"`
		} `json:"page"`
	} `json:"meta"`
}

type coreEntitiesResponse struct {
	Data   []map[string]any `json:"data"`
	Offset string           `json:"offset"`
}

// ListControlPlanes implements inventory.Lister.
func (c *Client) ListControlPlanes(ctx context.Context, opts inventory.ListOptions) (*inventory.RawPage, error) {
	query := url.Values{}
	if opts.PageSize > 0 {
		query.Set("page[size]", strconv.Itoa(opts.PageSize))
	}
	if opts.PageNumber > 0 {
		query.Set("page[number]", strconv.Itoa(opts.PageNumber))
	}
	if opts.NameContains != "" {
		query.Set("filter[name][contains]", opts.NameContains)
	}

	var resp controlPlanesResponse
	if err := c.do(ctx, "/control-planes", http.MethodGet, "/control-planes", query, nil, &resp); err != nil {
		return nil, err
	}
	return &inventory.RawPage{
		Data:  resp.Data,
		Total: resp.Meta.Page.Total,
	}, nil
}

// ListCoreEntities implements inventory.Lister.
func (c *Client) ListCoreEntities(ctx context.Context, controlPlaneID string, kind inventory.EntityKind, opts inventory.ListOptions) (*inventory.RawPage, error) {
	switch kind {
	case inventory.KindServices, inventory.KindRoutes, inventory.KindConsumers, inventory.KindPlugins:
	default:
		return nil, &RequestError{Err: fmt.Errorf("unsupported entity kind %q", kind)}
	}

	query := url.Values{}
	if opts.PageSize > 0 {
		query.Set("size", strconv.Itoa(opts.PageSize))
	}
	if opts.Offset != "" {
		query.Set("offset", opts.Offset)
	}

	endpoint := "/control-planes/{id}/core-entities/" + string(kind)
	path := "/control-planes/" + url.PathEscape(controlPlaneID) + "/core-entities/" + string(kind)

	var resp coreEntitiesResponse
	if err := c.do(ctx, endpoint, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}
	return &inventory.RawPage{
		Data:       resp.Data,
		NextOffset: resp.Offset,
	}, nil
}
