package dispatch

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
)

func (d *Dispatcher) compileGraph(ctx context.Context) (compose.Runnable[graphInput, graphOutput], error) {
	graph := compose.NewGraph[graphInput, graphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in graphInput) (*graphState, error) {
			return validateRequest(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("resolve_target",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return resolveTarget(in, d.agents, d.tools)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node resolve_target: %w", err)
	}

	if err := graph.AddLambdaNode("fetch_data",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return fetchData(ctx, in, d.bank)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node fetch_data: %w", err)
	}

	if err := graph.AddLambdaNode("invoke_tool",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return invokeTool(ctx, in, d.tools)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node invoke_tool: %w", err)
	}

	if err := graph.AddLambdaNode("assemble_prompt",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return assemblePrompt(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node assemble_prompt: %w", err)
	}

	if err := graph.AddLambdaNode("call_model",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return callModel(ctx, in, d.models)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node call_model: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_response",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (graphOutput, error) {
			return finalizeResponse(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_response: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "resolve_target"},
		{"resolve_target", "fetch_data"},
		{"fetch_data", "invoke_tool"},
		{"invoke_tool", "assemble_prompt"},
		{"assemble_prompt", "call_model"},
		{"call_model", "finalize_response"},
		{"finalize_response", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("dispatch.handle_request"))
	if err != nil {
		return nil, fmt.Errorf("compile dispatch graph: %w", err)
	}
	return runner, nil
}
