package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"openbank-advisor/agent/bankdata"
	contractx "openbank-advisor/agent/contract"
)

// Func is one deterministic tool computation. Pure over its inputs: no LLM
// calls, no bank API calls, no side effects.
type Func func(args map[string]any, record *bankdata.CustomerRecord) (any, error)

type Definition struct {
	Name    string
	Desc    string
	Params  []Param
	Enabled bool
	Fn      Func
}

// Registry maps tool names to definitions. Populated at startup, read-only
// while requests are in flight.
type Registry struct {
	tools map[string]*Definition
}

func NewRegistry() *Registry {
	return &Registry{tools: map[string]*Definition{}}
}

// DefaultRegistry returns a registry with all built-in tools registered and
// enabled.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, def := range builtinTools() {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *Registry) Register(def Definition) error {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return fmt.Errorf("tool definition without a name")
	}
	if def.Fn == nil {
		return fmt.Errorf("tool %q has no function", name)
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("duplicate tool name %q", name)
	}
	def.Name = name
	r.tools[name] = &def
	return nil
}

// SetEnabled toggles a registered tool. Called during startup configuration
// only; the registry is immutable once requests flow.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	def, ok := r.tools[name]
	if !ok {
		return fmt.Errorf("%w: %q", contractx.ErrUnknownTool, name)
	}
	def.Enabled = enabled
	return nil
}

// Validate resolves the tool and checks args against its schema without
// running it. Returns ErrUnknownTool, ErrToolDisabled or ErrInvalidArguments.
func (r *Registry) Validate(name string, args map[string]any) error {
	_, _, err := r.resolve(name, args)
	return err
}

// Invoke validates and runs the named tool. The tool function never executes
// on invalid arguments.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any, record *bankdata.CustomerRecord) (contractx.ToolResult, error) {
	def, normalized, err := r.resolve(name, args)
	if err != nil {
		return contractx.ToolResult{}, err
	}

	result, err := def.Fn(normalized, record)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("tool %s: %w", def.Name, err)
	}
	return contractx.ToolResult{Tool: def.Name, Result: result}, nil
}

func (r *Registry) resolve(name string, args map[string]any) (*Definition, map[string]any, error) {
	def, ok := r.tools[strings.TrimSpace(name)]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", contractx.ErrUnknownTool, name)
	}
	if !def.Enabled {
		return nil, nil, fmt.Errorf("%w: %q", contractx.ErrToolDisabled, def.Name)
	}
	normalized, err := validateArgs(def.Params, args)
	if err != nil {
		return nil, nil, err
	}
	return def, normalized, nil
}

// Names returns the enabled tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name, def := range r.tools {
		if def.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func builtinTools() []Definition {
	return []Definition{
		analyzePortfolioTool(),
		optimizePortfolioTool(),
		assessRiskTool(),
		summarizeTransactionsTool(),
	}
}
