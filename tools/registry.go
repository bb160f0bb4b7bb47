package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	logcontext "github.com/va6996/travelingman-mcp/context"
	"github.com/va6996/travelingman-mcp/log"
)

// Handler is the typed body of a tool. In is decoded from the call
// arguments and the returned text becomes the tool result.
type Handler[In any] func(ctx context.Context, in In) (string, error)

// ToolExecutor is the function signature for executing a tool
type ToolExecutor func(ctx context.Context, args map[string]interface{}) (string, error)

// Registry manages the tools exposed over MCP and keeps a direct executor
// for each so they can also be called in-process.
type Registry struct {
	server    *mcp.Server
	executors map[string]ToolExecutor
}

// NewRegistry creates a new tool registry backed by server.
func NewRegistry(server *mcp.Server) *Registry {
	return &Registry{
		server:    server,
		executors: make(map[string]ToolExecutor),
	}
}

// Server returns the MCP server the tools are registered on.
func (r *Registry) Server() *mcp.Server {
	return r.server
}

// Register adds a tool to the registry with its executor. Registering a
// name twice replaces the earlier tool.
func Register[In any](r *Registry, name, description string, fn Handler[In]) {
	run := func(ctx context.Context, in In) (string, error) {
		ctx = logcontext.WithToolName(ctx, name)
		if logcontext.RequestIDFromContext(ctx) == "" {
			ctx = logcontext.WithRequestID(ctx, logcontext.NewRequestID())
		}
		log.Infof(ctx, "Tool %s called", name)
		out, err := fn(ctx, in)
		if err != nil {
			log.Errorf(ctx, "Tool %s failed: %v", name, err)
			return "", err
		}
		log.Debugf(ctx, "Tool %s returned %d bytes", name, len(out))
		return out, nil
	}

	mcp.AddTool(r.server, &mcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
			out, err := run(ctx, in)
			if err != nil {
				return nil, nil, err
			}
			return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: out}}}, nil, nil
		})

	r.executors[name] = func(ctx context.Context, args map[string]interface{}) (string, error) {
		var in In
		raw, err := json.Marshal(args)
		if err != nil {
			return "", fmt.Errorf("encode arguments for %s: %w", name, err)
		}
		if err := json.Unmarshal(raw, &in); err != nil {
			return "", fmt.Errorf("invalid arguments for %s: %w", name, err)
		}
		return run(ctx, in)
	}
}

// GetTools returns the names of all registered tools in sorted order.
func (r *Registry) GetTools() []string {
	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExecuteTool runs a registered tool by name
func (r *Registry) ExecuteTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	executor, ok := r.executors[name]
	if !ok {
		return "", fmt.Errorf("tool not found: %s", name)
	}
	return executor(ctx, args)
}
