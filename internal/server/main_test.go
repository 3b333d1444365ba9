package server

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/kong/mcp-konnect/internal/analytics"
	"github.com/kong/mcp-konnect/internal/inventory"
)

type fakeExecutor struct {
	mu      sync.Mutex
	results []analytics.RawRecord
	meta    analytics.Meta
	err     error
	calls   []analytics.Query
}

func (f *fakeExecutor) QueryRequests(_ context.Context, q analytics.Query) (*analytics.ResultSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)
	if f.err != nil {
		return nil, f.err
	}
	return &analytics.ResultSet{Meta: f.meta, Results: f.results}, nil
}

func (f *fakeExecutor) Calls() []analytics.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]analytics.Query(nil), f.calls...)
}

type fakeLister struct {
	mu   sync.Mutex
	page *inventory.RawPage
	err  error

	gotControlPlaneID string
	gotKind           inventory.EntityKind
	gotOpts           inventory.ListOptions
}

func (f *fakeLister) ListControlPlanes(_ context.Context, opts inventory.ListOptions) (*inventory.RawPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeLister) ListCoreEntities(_ context.Context, controlPlaneID string, kind inventory.EntityKind, opts inventory.ListOptions) (*inventory.RawPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotControlPlaneID = controlPlaneID
	f.gotKind = kind
	f.gotOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

var sampleResults = []analytics.RawRecord{
	analytics.RawRecord(`{"status_code": 200, "consumer": "c1", "gateway_service": "s1", "route": "r1", "http_method": "GET", "latencies_response_ms": 10}`),
	analytics.RawRecord(`{"status_code": 500, "consumer": "c2", "gateway_service": "s1", "route": "r2", "http_method": "POST", "latencies_response_ms": 30}`),
	analytics.RawRecord(`{"response_http_status": 404, "gateway_service": "s2", "route": "r3", "http_method": "GET"}`),
	analytics.RawRecord(`{"status_code": 500, "consumer": "c2", "route": "r2", "http_method": "POST", "latencies_response_ms": 20}`),
}

var sampleMeta = analytics.Meta{
	Size:      4,
	TimeRange: analytics.TimeRange{Start: "2025-01-01T00:00:00Z", End: "2025-01-01T01:00:00Z"},
}

func testLogger(t *testing.T) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})).With("test", t.Name())
}

func testServer(t *testing.T, exec analytics.Executor, lister inventory.Lister, tokens ...string) *Server {
	t.Helper()
	log := testLogger(t)

	engine, err := analytics.NewEngine(analytics.EngineConfig{Logger: log, Executor: exec})
	require.NoError(t, err)
	inv, err := inventory.New(inventory.Config{Logger: log, Lister: lister})
	require.NoError(t, err)

	s, err := New(Config{
		Logger:        log,
		Clock:         clockwork.NewFakeClock(),
		Analytics:     engine,
		Inventory:     inv,
		Version:       "test",
		ListenAddr:    "127.0.0.1:0",
		AllowedTokens: tokens,
	})
	require.NoError(t, err)
	return s
}

func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := s.mcp.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(t.Context(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}
