package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/kong/mcp-konnect/internal/inventory"
	"github.com/kong/mcp-konnect/internal/konnect"
	"github.com/kong/mcp-konnect/internal/metrics"
)

func rawPage(t *testing.T, data string, next string, total int) *inventory.RawPage {
	t.Helper()
	var entities []map[string]any
	require.NoError(t, json.Unmarshal([]byte(data), &entities))
	return &inventory.RawPage{Data: entities, NextOffset: next, Total: total}
}

func TestMCP_Server_ToolListRoutes(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{page: rawPage(t, `[{
		"id": "rt-1",
		"name": "orders",
		"protocols": ["https"],
		"paths": ["/orders"],
		"strip_path": true,
		"service": {"id": "svc-1"},
		"created_at": 1700000000,
		"updated_at": 1700000100
	}]`, "next-cursor", 0)}
	cs := connect(t, testServer(t, &fakeExecutor{}, lister))

	res := callTool(t, cs, "list_routes", map[string]any{
		"controlPlaneId": "cp-1",
		"pageSize":       10,
		"offset":         "cursor",
	})
	require.False(t, res.IsError, resultText(t, res))

	require.Equal(t, "cp-1", lister.gotControlPlaneID)
	require.Equal(t, inventory.KindRoutes, lister.gotKind)
	require.Equal(t, 10, lister.gotOpts.PageSize)
	require.Equal(t, "cursor", lister.gotOpts.Offset)

	var list inventory.RouteList
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &list))
	require.Equal(t, "cp-1", list.ControlPlaneID)
	require.Len(t, list.Routes, 1)
	require.Equal(t, "rt-1", list.Routes[0].RouteID)
	require.Equal(t, "svc-1", list.Routes[0].ServiceID)
	require.Equal(t, inventory.Pagination{PageSize: 10, Offset: "cursor", NextOffset: "next-cursor", HasMore: true}, list.Pagination)
}

func TestMCP_Server_ToolListEntities_Kinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tool     string
		kind     inventory.EntityKind
		itemsKey string
	}{
		{tool: "list_services", kind: inventory.KindServices, itemsKey: "services"},
		{tool: "list_consumers", kind: inventory.KindConsumers, itemsKey: "consumers"},
		{tool: "list_plugins", kind: inventory.KindPlugins, itemsKey: "plugins"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			t.Parallel()

			lister := &fakeLister{page: rawPage(t, `[{"id": "e-1", "name": "one"}, {"id": "e-2", "name": "two"}]`, "", 0)}
			cs := connect(t, testServer(t, &fakeExecutor{}, lister))

			res := callTool(t, cs, tt.tool, map[string]any{"controlPlaneId": "cp-9"})
			require.False(t, res.IsError, resultText(t, res))

			require.Equal(t, tt.kind, lister.gotKind)
			require.Equal(t, inventory.DefaultPageSize, lister.gotOpts.PageSize)

			text := resultText(t, res)
			require.Equal(t, int64(2), gjson.Get(text, tt.itemsKey+".#").Int())
			require.False(t, gjson.Get(text, "pagination.hasMore").Bool())
		})
	}
}

func TestMCP_Server_ToolListControlPlanes(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{page: rawPage(t, `[{"id": "cp-1", "name": "prod", "labels": {"env": "prod"}, "config": {"cluster_type": "CLUSTER_TYPE_HYBRID"}}]`, "", 7)}
	cs := connect(t, testServer(t, &fakeExecutor{}, lister))

	res := callTool(t, cs, "list_control_planes", map[string]any{"nameContains": "pro"})
	require.False(t, res.IsError, resultText(t, res))
	require.Equal(t, "pro", lister.gotOpts.NameContains)
	require.Equal(t, 1, lister.gotOpts.PageNumber)

	var list inventory.ControlPlaneList
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &list))
	require.Len(t, list.ControlPlanes, 1)
	require.Equal(t, "cp-1", list.ControlPlanes[0].ControlPlaneID)
	require.Equal(t, inventory.ControlPlanePagination{PageSize: inventory.DefaultPageSize, PageNumber: 1, Total: 7}, list.Pagination)
}

func TestMCP_Server_ToolInventoryErrors(t *testing.T) {
	t.Parallel()

	t.Run("blank control plane id", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{}
		cs := connect(t, testServer(t, &fakeExecutor{}, lister))

		res := callTool(t, cs, "list_services", map[string]any{"controlPlaneId": "  "})
		require.True(t, res.IsError)
		text := resultText(t, res)
		require.Contains(t, text, inventory.ErrMissingControlPlaneID.Error())
		require.Contains(t, text, "list_control_planes")
		require.Empty(t, lister.gotKind)
	})

	t.Run("control plane listing upstream error", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{err: &konnect.APIError{StatusCode: 403, Detail: "forbidden"}}
		cs := connect(t, testServer(t, &fakeExecutor{}, lister))

		res := callTool(t, cs, "list_control_planes", map[string]any{})
		require.True(t, res.IsError)
		text := resultText(t, res)
		require.Contains(t, text, "failed to list control planes: API error (status 403): forbidden")
		require.Contains(t, text, "permission to list control planes")
	})
}

func TestMCP_Server_ToolCallMetrics(t *testing.T) {
	t.Parallel()

	failures := metrics.ToolCallsTotal.WithLabelValues("list_plugins", "error")
	before := testutil.ToFloat64(failures)

	lister := &fakeLister{err: &konnect.NetworkError{Err: context.DeadlineExceeded}}
	cs := connect(t, testServer(t, &fakeExecutor{}, lister))

	res := callTool(t, cs, "list_plugins", map[string]any{"controlPlaneId": "cp-1"})
	require.True(t, res.IsError)
	require.Equal(t, before+1, testutil.ToFloat64(failures))
}
