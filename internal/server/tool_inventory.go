package server

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/kong/mcp-konnect/internal/inventory"
)

type ListControlPlanesInput struct {
	PageSize     int    `json:"pageSize,omitempty" jsonschema:"Number of control planes per page (1-1000). Defaults to 100."`
	PageNumber   int    `json:"pageNumber,omitempty" jsonschema:"Page number to fetch, starting at 1"`
	NameContains string `json:"nameContains,omitempty" jsonschema:"Only list control planes whose name contains this text"`
}

type ListEntitiesInput struct {
	ControlPlaneID string `json:"controlPlaneId" jsonschema:"Control plane ID (use list_control_planes to find it)"`
	PageSize       int    `json:"pageSize,omitempty" jsonschema:"Number of entities per page (1-1000). Defaults to 100."`
	Offset         string `json:"offset,omitempty" jsonschema:"Pagination cursor returned as nextOffset by a previous call"`
}

func inventorySchema(schema *jsonschema.Schema) {
	setBounds(schema, "pageSize", 1, inventory.MaxPageSize)
	setDefault(schema, "pageSize", inventory.DefaultPageSize)
	if p, ok := schema.Properties["pageNumber"]; ok {
		one := 1.0
		p.Minimum = &one
	}
}

func (in ListEntitiesInput) options() inventory.ListOptions {
	return inventory.ListOptions{PageSize: in.PageSize, Offset: in.Offset}
}

func (s *Server) registerInventoryTools() error {
	inv := s.cfg.Inventory

	if err := addTool(s, toolDef[ListControlPlanesInput, inventory.ControlPlaneList]{
		name:        "list_control_planes",
		category:    categoryControlPlanes,
		description: "List the control planes of the Konnect organization. Use the returned controlPlaneId with the other list tools.",
		tune:        inventorySchema,
		handle: func(ctx context.Context, in ListControlPlanesInput) (inventory.ControlPlaneList, error) {
			list, err := inv.ListControlPlanes(ctx, inventory.ListOptions{
				PageSize:     in.PageSize,
				PageNumber:   in.PageNumber,
				NameContains: in.NameContains,
			})
			if err != nil {
				return inventory.ControlPlaneList{}, err
			}
			return *list, nil
		},
	}); err != nil {
		return err
	}

	if err := addTool(s, toolDef[ListEntitiesInput, inventory.ServiceList]{
		name:        "list_services",
		category:    categoryInventory,
		description: "List the gateway services of a control plane with their upstream host, port, protocol and timeouts.",
		tune:        inventorySchema,
		handle: func(ctx context.Context, in ListEntitiesInput) (inventory.ServiceList, error) {
			list, err := inv.ListServices(ctx, in.ControlPlaneID, in.options())
			if err != nil {
				return inventory.ServiceList{}, err
			}
			return *list, nil
		},
	}); err != nil {
		return err
	}

	if err := addTool(s, toolDef[ListEntitiesInput, inventory.RouteList]{
		name:        "list_routes",
		category:    categoryInventory,
		description: "List the routes of a control plane with their matching rules and the service they proxy to.",
		tune:        inventorySchema,
		handle: func(ctx context.Context, in ListEntitiesInput) (inventory.RouteList, error) {
			list, err := inv.ListRoutes(ctx, in.ControlPlaneID, in.options())
			if err != nil {
				return inventory.RouteList{}, err
			}
			return *list, nil
		},
	}); err != nil {
		return err
	}

	if err := addTool(s, toolDef[ListEntitiesInput, inventory.ConsumerList]{
		name:        "list_consumers",
		category:    categoryInventory,
		description: "List the consumers of a control plane.",
		tune:        inventorySchema,
		handle: func(ctx context.Context, in ListEntitiesInput) (inventory.ConsumerList, error) {
			list, err := inv.ListConsumers(ctx, in.ControlPlaneID, in.options())
			if err != nil {
				return inventory.ConsumerList{}, err
			}
			return *list, nil
		},
	}); err != nil {
		return err
	}

	return addTool(s, toolDef[ListEntitiesInput, inventory.PluginList]{
		name:        "list_plugins",
		category:    categoryInventory,
		description: "List the plugins of a control plane with their configuration and scope (global, service, route or consumer).",
		tune:        inventorySchema,
		handle: func(ctx context.Context, in ListEntitiesInput) (inventory.PluginList, error) {
			list, err := inv.ListPlugins(ctx, in.ControlPlaneID, in.options())
			if err != nil {
				return inventory.PluginList{}, err
			}
			return *list, nil
		},
	})
}
