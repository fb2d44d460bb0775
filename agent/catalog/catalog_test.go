package catalog

import (
	"errors"
	"reflect"
	"testing"

	contractx "openbank-advisor/agent/contract"
)

func testDefs() []AgentDefinition {
	return []AgentDefinition{
		{Name: "market_analyst", Model: "llama3.2:latest", SystemPrompt: "You analyze markets.", Enabled: true},
		{Name: "portfolio_manager", Model: "llama3.2:latest", SystemPrompt: "You manage portfolios.", Tools: []string{"analyze_portfolio"}, Enabled: true},
		{Name: "risk_analyst", Model: "qwen2:7b", SystemPrompt: "You assess risk.", Enabled: true},
		{Name: "retired_agent", Model: "llama3.2:latest", SystemPrompt: "Old.", Enabled: false},
	}
}

func TestResolveKnownAgent(t *testing.T) {
	t.Parallel()

	c, err := New(testDefs())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	def, err := c.Resolve("portfolio_manager")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if def.Model != "llama3.2:latest" || !def.AllowsTool("analyze_portfolio") {
		t.Fatalf("unexpected definition %+v", def)
	}
	if def.AllowsTool("assess_risk") {
		t.Fatal("agent must not allow undeclared tools")
	}
}

func TestResolveUnknownAgent(t *testing.T) {
	t.Parallel()

	c, err := New(testDefs())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	_, err = c.Resolve("quant_wizard")
	if !errors.Is(err, contractx.ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
}

func TestDisabledAgentNotAdmitted(t *testing.T) {
	t.Parallel()

	c, err := New(testDefs())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	if _, err := c.Resolve("retired_agent"); !errors.Is(err, contractx.ErrUnknownAgent) {
		t.Fatalf("disabled agent must resolve as unknown, got %v", err)
	}

	want := []string{"market_analyst", "portfolio_manager", "risk_analyst"}
	if got := c.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDuplicateAgentRejected(t *testing.T) {
	t.Parallel()

	defs := testDefs()
	defs = append(defs, AgentDefinition{Name: "market_analyst", Model: "m", SystemPrompt: "p", Enabled: true})

	if _, err := New(defs); err == nil {
		t.Fatal("expected duplicate agent name to fail")
	}
}

func TestEnabledAgentRequiresModelAndPrompt(t *testing.T) {
	t.Parallel()

	_, err := New([]AgentDefinition{{Name: "a", SystemPrompt: "p", Enabled: true}})
	if err == nil {
		t.Fatal("expected missing model to fail")
	}

	_, err = New([]AgentDefinition{{Name: "a", Model: "m", Enabled: true}})
	if err == nil {
		t.Fatal("expected missing prompt to fail")
	}
}

func TestModelsDistinct(t *testing.T) {
	t.Parallel()

	c, err := New(testDefs())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	want := []string{"llama3.2:latest", "qwen2:7b"}
	if got := c.Models(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestForAnalysis(t *testing.T) {
	t.Parallel()

	c, err := New(testDefs())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	def, err := c.ForAnalysis(contractx.AnalysisRisk)
	if err != nil {
		t.Fatalf("for analysis: %v", err)
	}
	if def.Name != "risk_analyst" {
		t.Fatalf("expected risk_analyst, got %q", def.Name)
	}

	if _, err := c.ForAnalysis(contractx.AnalysisKind("astrology")); !errors.Is(err, contractx.ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestForAnalysisMissingAgent(t *testing.T) {
	t.Parallel()

	c, err := New([]AgentDefinition{
		{Name: "market_analyst", Model: "m", SystemPrompt: "p", Enabled: true},
	})
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	if _, err := c.ForAnalysis(contractx.AnalysisRisk); !errors.Is(err, contractx.ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
}
