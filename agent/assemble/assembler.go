// Package assemble builds the prompt payload for an agent invocation.
// Assembly is pure string work: no remote calls, no truncation beyond what
// the LLM client itself enforces.
package assemble

import (
	"encoding/json"
	"fmt"
	"strings"

	"openbank-advisor/agent/bankdata"
	"openbank-advisor/agent/catalog"
	contractx "openbank-advisor/agent/contract"
)

type PromptPayload struct {
	System string
	User   string
}

const unavailableMarker = "data not available"

// Build merges customer data, market data, prior tool output, and free-text
// context into one payload for the given agent. Missing sub-records are
// rendered as explicit markers so the model is never misled into assuming
// completeness.
func Build(
	def catalog.AgentDefinition,
	query string,
	record *bankdata.CustomerRecord,
	market *bankdata.MarketData,
	toolResult *contractx.ToolResult,
	extraContext string,
) PromptPayload {
	var b strings.Builder

	if extra := strings.TrimSpace(extraContext); extra != "" {
		fmt.Fprintf(&b, "Context: %s\n\n", extra)
	}

	if record != nil {
		fmt.Fprintf(&b, "Customer Data for %s:\n", record.CustomerOID)
		fmt.Fprintf(&b, "- Customer Profile: %s\n", renderSection(record.Profile, record.Has(bankdata.FieldProfile)))
		fmt.Fprintf(&b, "- Portfolio: %s\n", renderSection(record.Portfolio, record.Has(bankdata.FieldPortfolio)))
		fmt.Fprintf(&b, "- Accounts: %s\n", renderSection(record.Accounts, record.Has(bankdata.FieldAccounts)))
		fmt.Fprintf(&b, "- Recent Transactions: %s\n", renderSection(record.Transactions, record.Has(bankdata.FieldTransactions)))
		fmt.Fprintf(&b, "- Risk Metrics: %s\n", renderSection(record.Risk, record.Has(bankdata.FieldRisk)))
		if len(record.Notes) > 0 {
			b.WriteString("Data notes:\n")
			for _, note := range record.Notes {
				fmt.Fprintf(&b, "- %s\n", note)
			}
		}
		b.WriteString("\n")
	}

	if market != nil {
		fmt.Fprintf(&b, "Market Data:\n%s\n\n", renderJSON(market))
	}

	if toolResult != nil {
		fmt.Fprintf(&b, "Tool Result (%s):\n%s\n\n", toolResult.Tool, renderJSON(toolResult.Result))
	}

	fmt.Fprintf(&b, "User Query: %s", strings.TrimSpace(query))

	return PromptPayload{
		System: def.SystemPrompt,
		User:   b.String(),
	}
}

func renderSection(v any, present bool) string {
	if !present {
		return unavailableMarker
	}
	return renderJSON(v)
}

func renderJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return unavailableMarker
	}
	return string(data)
}
