package mcp

import (
	"context"
	"errors"
	"testing"
)

type gatewayTestExecutor struct {
	lastInvocationID string
	callErr          error
}

func (e *gatewayTestExecutor) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	return []ToolDescriptor{
		{Name: "echo_tool", InputSchema: map[string]any{"type": "object"}},
	}, nil
}

func (e *gatewayTestExecutor) CallTool(ctx context.Context, session ToolSession, toolName string, arguments map[string]any) (map[string]any, error) {
	e.lastInvocationID = session.InvocationID
	if e.callErr != nil {
		return nil, e.callErr
	}
	return BuildToolSuccessResult(arguments["text"]), nil
}

func TestGatewayListTools(t *testing.T) {
	gateway := NewToolGateway(nil, &gatewayTestExecutor{})
	tools, err := gateway.ListTools(context.Background())
	if err != nil {
		t.Fatalf("list tools failed: %v", err)
	}
	if len(tools) != 1 || tools[0].Name != "echo_tool" {
		t.Fatalf("unexpected tools: %#v", tools)
	}
}

func TestGatewayCallStampsInvocationID(t *testing.T) {
	executor := &gatewayTestExecutor{}
	gateway := NewToolGateway(nil, executor)

	result, err := gateway.CallTool(context.Background(), ToolCallPayload{
		Name:      "echo_tool",
		Arguments: map[string]any{"text": "hello there from the gateway"},
	})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if executor.lastInvocationID == "" {
		t.Fatalf("invocation id should be stamped on the session")
	}
	if result["isError"] == true {
		t.Fatalf("unexpected error result: %#v", result)
	}
}

func TestGatewayUnknownToolIsErrorResult(t *testing.T) {
	gateway := NewToolGateway(nil, &gatewayTestExecutor{})
	result, err := gateway.CallTool(context.Background(), ToolCallPayload{Name: "no_such_tool"})
	if err != nil {
		t.Fatalf("unknown tool must not be a protocol error: %v", err)
	}
	if result["isError"] != true {
		t.Fatalf("expected error-flagged result, got %#v", result)
	}
}

func TestGatewayExecutorErrorBecomesErrorResult(t *testing.T) {
	gateway := NewToolGateway(nil, &gatewayTestExecutor{callErr: errors.New("backend exploded")})
	result, err := gateway.CallTool(context.Background(), ToolCallPayload{Name: "echo_tool"})
	if err != nil {
		t.Fatalf("executor errors must not escape as protocol errors: %v", err)
	}
	if result["isError"] != true {
		t.Fatalf("expected error-flagged result, got %#v", result)
	}
}

func TestGatewayEmptyToolNameRejected(t *testing.T) {
	gateway := NewToolGateway(nil, &gatewayTestExecutor{})
	if _, err := gateway.CallTool(context.Background(), ToolCallPayload{}); err == nil {
		t.Fatalf("empty tool name should be rejected")
	}
}
