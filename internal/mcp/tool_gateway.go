package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ToolGateway fronts a fixed set of tool executors. The tool set is static
// for the life of the process, so the registry is built once on first use.
// Executor errors are rendered as error-flagged results; the gateway never
// lets a tool failure surface as a protocol fault.
type ToolGateway struct {
	logger    *slog.Logger
	executors []ToolExecutor

	once     sync.Once
	registry *ToolRegistry
}

func NewToolGateway(log *slog.Logger, executors ...ToolExecutor) *ToolGateway {
	if log == nil {
		log = slog.Default()
	}
	filtered := make([]ToolExecutor, 0, len(executors))
	for _, executor := range executors {
		if executor != nil {
			filtered = append(filtered, executor)
		}
	}
	return &ToolGateway{
		logger:    log.With(slog.String("service", "tool_gateway")),
		executors: filtered,
	}
}

func (g *ToolGateway) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	return g.getRegistry(ctx).List(), nil
}

func (g *ToolGateway) CallTool(ctx context.Context, payload ToolCallPayload) (map[string]any, error) {
	toolName := strings.TrimSpace(payload.Name)
	if toolName == "" {
		return nil, fmt.Errorf("tool name is required")
	}

	executor, _, ok := g.getRegistry(ctx).Lookup(toolName)
	if !ok {
		return BuildToolErrorResult("tool not found: " + toolName), nil
	}

	arguments := payload.Arguments
	if arguments == nil {
		arguments = map[string]any{}
	}

	session := ToolSession{InvocationID: uuid.NewString()}
	started := time.Now()
	result, err := executor.CallTool(ctx, session, toolName, arguments)
	g.logger.Debug("tool call finished",
		slog.String("tool", toolName),
		slog.String("invocation_id", session.InvocationID),
		slog.Duration("elapsed", time.Since(started)),
	)
	if err != nil {
		if err == ErrToolNotFound {
			return BuildToolErrorResult("tool not found: " + toolName), nil
		}
		return BuildToolErrorResult(err.Error()), nil
	}
	if result == nil {
		return BuildToolSuccessResult(map[string]any{"ok": true}), nil
	}
	return result, nil
}

func (g *ToolGateway) getRegistry(ctx context.Context) *ToolRegistry {
	g.once.Do(func() {
		registry := NewToolRegistry()
		for _, executor := range g.executors {
			tools, err := executor.ListTools(ctx)
			if err != nil {
				g.logger.Warn("list tools from executor failed", slog.Any("error", err))
				continue
			}
			for _, tool := range tools {
				if err := registry.Register(executor, tool); err != nil {
					g.logger.Warn("skip duplicated/invalid tool", slog.String("tool", tool.Name), slog.Any("error", err))
				}
			}
		}
		g.registry = registry
	})
	return g.registry
}
