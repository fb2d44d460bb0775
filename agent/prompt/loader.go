package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/market_analyst.txt
	marketAnalystRaw string

	//go:embed template/portfolio_manager.txt
	portfolioManagerRaw string

	//go:embed template/risk_analyst.txt
	riskAnalystRaw string

	//go:embed template/explainability_agent.txt
	explainabilityRaw string
)

// PromptSet holds the default system prompts for the built-in agents.
type PromptSet struct {
	MarketAnalyst    string
	PortfolioManager string
	RiskAnalyst      string
	Explainability   string
}

// LoadPromptSet returns the embedded prompts, trimmed.
func LoadPromptSet() PromptSet {
	return PromptSet{
		MarketAnalyst:    strings.TrimSpace(marketAnalystRaw),
		PortfolioManager: strings.TrimSpace(portfolioManagerRaw),
		RiskAnalyst:      strings.TrimSpace(riskAnalystRaw),
		Explainability:   strings.TrimSpace(explainabilityRaw),
	}
}

// ForAgent returns the default prompt for a built-in agent name, or empty
// for names without a built-in default.
func (s PromptSet) ForAgent(name string) string {
	switch name {
	case "market_analyst":
		return s.MarketAnalyst
	case "portfolio_manager":
		return s.PortfolioManager
	case "risk_analyst":
		return s.RiskAnalyst
	case "explainability_agent":
		return s.Explainability
	default:
		return ""
	}
}
