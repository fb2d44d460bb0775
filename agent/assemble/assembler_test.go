package assemble

import (
	"strings"
	"testing"

	"openbank-advisor/agent/bankdata"
	"openbank-advisor/agent/catalog"
	contractx "openbank-advisor/agent/contract"
)

func testDef() catalog.AgentDefinition {
	return catalog.AgentDefinition{
		Name:         "portfolio_manager",
		Model:        "llama3.2:latest",
		SystemPrompt: "You are a portfolio manager.",
		Enabled:      true,
	}
}

func TestBuildCarriesSystemPrompt(t *testing.T) {
	t.Parallel()

	payload := Build(testDef(), "How is my portfolio doing?", nil, nil, nil, "")
	if payload.System != "You are a portfolio manager." {
		t.Fatalf("unexpected system prompt %q", payload.System)
	}
	if payload.User != "User Query: How is my portfolio doing?" {
		t.Fatalf("unexpected user prompt %q", payload.User)
	}
}

func TestBuildMarksMissingSubRecords(t *testing.T) {
	t.Parallel()

	record := &bankdata.CustomerRecord{
		CustomerOID: "CUST-1001",
		Portfolio:   &bankdata.Portfolio{TotalValue: 100000},
		Notes:       []string{"risk: unexpected status 503"},
	}

	payload := Build(testDef(), "query", record, nil, nil, "")

	if !strings.Contains(payload.User, "Customer Data for CUST-1001:") {
		t.Fatalf("missing customer data header: %q", payload.User)
	}
	if !strings.Contains(payload.User, `"total_value":100000`) {
		t.Fatalf("present portfolio must be rendered: %q", payload.User)
	}
	if !strings.Contains(payload.User, "- Risk Metrics: data not available") {
		t.Fatalf("missing sub-record must be marked unavailable: %q", payload.User)
	}
	if !strings.Contains(payload.User, "Data notes:\n- risk: unexpected status 503") {
		t.Fatalf("notes must be rendered: %q", payload.User)
	}
}

func TestBuildIncludesToolResult(t *testing.T) {
	t.Parallel()

	result := &contractx.ToolResult{
		Tool:   "assess_risk",
		Result: map[string]any{"risk_score": 6.5},
	}

	payload := Build(testDef(), "query", nil, nil, result, "")
	if !strings.Contains(payload.User, "Tool Result (assess_risk):") {
		t.Fatalf("missing tool result section: %q", payload.User)
	}
	if !strings.Contains(payload.User, `{"risk_score":6.5}`) {
		t.Fatalf("tool result must be rendered as json: %q", payload.User)
	}
}

func TestBuildIncludesMarketData(t *testing.T) {
	t.Parallel()

	market := &bankdata.MarketData{
		Timestamp: "2026-08-31T09:00:00Z",
		MarketData: []bankdata.MarketQuote{
			{Symbol: "AAPL", Price: 178.5, ChangePercent: 1.2},
		},
	}

	payload := Build(testDef(), "query", nil, market, nil, "")
	if !strings.Contains(payload.User, "Market Data:") {
		t.Fatalf("missing market data section: %q", payload.User)
	}
	if !strings.Contains(payload.User, `"symbol":"AAPL"`) {
		t.Fatalf("market quotes must be rendered as json: %q", payload.User)
	}
}

func TestBuildIncludesExtraContext(t *testing.T) {
	t.Parallel()

	payload := Build(testDef(), "query", nil, nil, nil, "  customer called about retirement  ")
	if !strings.HasPrefix(payload.User, "Context: customer called about retirement\n\n") {
		t.Fatalf("extra context must lead the prompt trimmed: %q", payload.User)
	}
}

func TestBuildDeterministic(t *testing.T) {
	t.Parallel()

	record := &bankdata.CustomerRecord{
		CustomerOID: "CUST-1001",
		Portfolio:   &bankdata.Portfolio{TotalValue: 100000},
		Risk: &bankdata.RiskMetrics{
			VarAnalysis: map[string]float64{"var_95": -2500, "var_99": -4100},
		},
	}

	first := Build(testDef(), "query", record, nil, nil, "ctx")
	second := Build(testDef(), "query", record, nil, nil, "ctx")
	if first != second {
		t.Fatalf("identical inputs produced different payloads:\n%q\n%q", first.User, second.User)
	}
}
