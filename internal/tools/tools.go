// Package tools holds the result helpers shared by all MCP tool packages.
//
// Every tool in this server returns its payload as a single text content
// block: pretty-printed JSON on success and a plain descriptive sentence on
// failure. Failures never surface as protocol-level errors, so a client
// always receives readable text it can relay to the user.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nutrifit/nutrifit/internal/observe"
	"github.com/nutrifit/nutrifit/internal/upstream"
)

// Instrument wraps a typed tool handler so every invocation records a call
// counter and duration sample under the given tool name. A result carrying
// IsError or a returned error counts as status "error". Failures are also
// logged with the trace context of the call.
func Instrument[In any](
	m *observe.Metrics,
	name string,
	h func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, any, error),
) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		res, out, err := h(ctx, req, in)
		status := "ok"
		if err != nil || (res != nil && res.IsError) {
			status = "error"
		}
		elapsed := time.Since(start)
		m.RecordToolCall(ctx, name, status, elapsed.Seconds())
		if err != nil {
			observe.Logger(ctx).Error("tool call failed", "tool", name, "err", err)
		} else {
			observe.Logger(ctx).Debug("tool call", "tool", name, "status", status, "duration", elapsed)
		}
		return res, out, err
	}
}

// Upstream error labels used in tool output.
const (
	nutritionixErrorLabel = "API Error"
	wgerErrorLabel        = "WGER API Error"
)

// Text wraps a plain string in a single-content tool result.
func Text(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: s}},
	}
}

// JSON marshals v with two-space indentation and wraps it in a tool result.
// A marshalling failure is reported as error text, keeping the tool contract
// of always returning readable content.
func JSON(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Text(fmt.Sprintf("Error encoding result: %v", err))
	}
	return Text(string(b))
}

// NutritionixError renders an upstream Nutritionix failure as tool text.
// HTTP-level failures keep the status and body; transport failures are
// prefixed with the action that was attempted (e.g. "searching food").
func NutritionixError(action string, err error) *mcp.CallToolResult {
	return Text(upstreamErrorText(nutritionixErrorLabel, action, err))
}

// WGERError renders an upstream WGER failure as tool text.
func WGERError(action string, err error) *mcp.CallToolResult {
	return Text(upstreamErrorText(wgerErrorLabel, action, err))
}

func upstreamErrorText(label, action string, err error) string {
	var se *upstream.StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("%s: %d - %s", label, se.StatusCode, se.Body)
	}
	return fmt.Sprintf("Error %s: %v", action, err)
}
