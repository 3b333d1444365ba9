package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kong/mcp-konnect/internal/analytics"
	"github.com/kong/mcp-konnect/internal/metrics"
)

// toolDef describes one tool. Out is the structured result returned to the
// client; handler errors become an isError result with troubleshooting tips.
type toolDef[In, Out any] struct {
	name        string
	description string
	category    toolCategory
	// tune adjusts the inferred input schema (enums, bounds, defaults).
	tune   func(*jsonschema.Schema)
	handle func(ctx context.Context, in In) (Out, error)
}

func addTool[In, Out any](s *Server, def toolDef[In, Out]) error {
	in, err := jsonschema.For[In](nil)
	if err != nil {
		return fmt.Errorf("failed to create %s input schema: %w", def.name, err)
	}
	if def.tune != nil {
		def.tune(in)
	}

	out, err := jsonschema.For[Out](nil)
	if err != nil {
		return fmt.Errorf("failed to create %s output schema: %w", def.name, err)
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:         def.name,
		Description:  def.description,
		InputSchema:  in,
		OutputSchema: out,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args In) (*mcp.CallToolResult, Out, error) {
		log := s.log.With("tool", def.name, "invocationId", uuid.NewString())
		log.Debug("server: handling tool call")

		start := s.cfg.Clock.Now()
		res, err := def.handle(ctx, args)
		duration := s.cfg.Clock.Since(start)
		metrics.ToolCallDuration.WithLabelValues(def.name).Observe(duration.Seconds())

		if err != nil {
			metrics.ToolCallsTotal.WithLabelValues(def.name, "error").Inc()
			log.Warn("server: tool call failed", "error", err, "duration", duration)
			var zero Out
			return nil, zero, errors.New(formatToolError(def.category, err))
		}
		metrics.ToolCallsTotal.WithLabelValues(def.name, "success").Inc()
		log.Debug("server: tool call completed", "duration", duration)
		return nil, res, nil
	})
	return nil
}

func setBounds(schema *jsonschema.Schema, property string, minimum, maximum int) {
	p, ok := schema.Properties[property]
	if !ok {
		return
	}
	lo, hi := float64(minimum), float64(maximum)
	p.Minimum = &lo
	p.Maximum = &hi
}

func setDefault(schema *jsonschema.Schema, property string, value any) {
	p, ok := schema.Properties[property]
	if !ok {
		return
	}
	if b, err := json.Marshal(value); err == nil {
		p.Default = b
	}
}

func setTimeRangeEnum(schema *jsonschema.Schema) {
	p, ok := schema.Properties["timeRange"]
	if !ok {
		return
	}
	windows := analytics.TimeWindows()
	p.Enum = make([]any, 0, len(windows))
	for _, w := range windows {
		p.Enum = append(p.Enum, string(w))
	}
	setDefault(schema, "timeRange", string(analytics.DefaultTimeWindow))
}
