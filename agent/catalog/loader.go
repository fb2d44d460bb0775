package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	promptx "openbank-advisor/agent/prompt"
)

// DefaultModel is used for agents whose configuration omits a model.
const DefaultModel = "llama3.2:latest"

// ToolSetting is the configuration toggle for one registered tool.
type ToolSetting struct {
	Name    string
	Enabled bool
}

type rawAgent struct {
	Name         string   `mapstructure:"name"`
	Model        string   `mapstructure:"model"`
	Role         string   `mapstructure:"role"`
	SystemPrompt string   `mapstructure:"system_prompt"`
	Temperature  *float32 `mapstructure:"temperature"`
	MaxTokens    int      `mapstructure:"max_tokens"`
	Tools        []string `mapstructure:"tools"`
	Enabled      *bool    `mapstructure:"enabled"`
}

type rawTool struct {
	Name    string `mapstructure:"name"`
	Enabled *bool  `mapstructure:"enabled"`
}

type rawFile struct {
	Agents []rawAgent `mapstructure:"agents"`
	Tools  []rawTool  `mapstructure:"tools"`
}

// Load reads agent and tool definitions from a YAML file. A missing file
// falls back to the built-in default catalog; a present but malformed file
// is an error.
func Load(path string) ([]AgentDefinition, []ToolSetting, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", path).Msg("catalog config not found, using defaults")
			return DefaultAgents(), DefaultToolSettings(), nil
		}
		return nil, nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read catalog config: %w", err)
	}

	var raw rawFile
	if err := v.Unmarshal(&raw); err != nil {
		return nil, nil, fmt.Errorf("parse catalog config: %w", err)
	}

	prompts := promptx.LoadPromptSet()

	defs := make([]AgentDefinition, 0, len(raw.Agents))
	for _, a := range raw.Agents {
		def := AgentDefinition{
			Name:         strings.TrimSpace(a.Name),
			Model:        strings.TrimSpace(a.Model),
			Role:         strings.TrimSpace(a.Role),
			SystemPrompt: strings.TrimSpace(a.SystemPrompt),
			Temperature:  0.7,
			MaxTokens:    a.MaxTokens,
			Tools:        a.Tools,
			Enabled:      true,
		}
		if a.Temperature != nil {
			def.Temperature = *a.Temperature
		}
		if a.Enabled != nil {
			def.Enabled = *a.Enabled
		}
		if def.Model == "" {
			def.Model = DefaultModel
		}
		if def.MaxTokens <= 0 {
			def.MaxTokens = 2048
		}
		if def.SystemPrompt == "" {
			def.SystemPrompt = prompts.ForAgent(def.Name)
		}
		defs = append(defs, def)
	}

	settings := make([]ToolSetting, 0, len(raw.Tools))
	for _, t := range raw.Tools {
		setting := ToolSetting{Name: strings.TrimSpace(t.Name), Enabled: true}
		if t.Enabled != nil {
			setting.Enabled = *t.Enabled
		}
		settings = append(settings, setting)
	}

	if len(defs) == 0 {
		defs = DefaultAgents()
	}
	return defs, settings, nil
}

// DefaultAgents is the built-in catalog used when no configuration file is
// present: the four advisory personas with their embedded prompts.
func DefaultAgents() []AgentDefinition {
	prompts := promptx.LoadPromptSet()
	return []AgentDefinition{
		{
			Name:         "market_analyst",
			Model:        DefaultModel,
			Role:         "Market Data Analyst",
			SystemPrompt: prompts.MarketAnalyst,
			Temperature:  0.7,
			MaxTokens:    2048,
			Enabled:      true,
		},
		{
			Name:         "portfolio_manager",
			Model:        DefaultModel,
			Role:         "Portfolio Manager",
			SystemPrompt: prompts.PortfolioManager,
			Temperature:  0.7,
			MaxTokens:    2048,
			Tools:        []string{"analyze_portfolio", "optimize_portfolio"},
			Enabled:      true,
		},
		{
			Name:         "risk_analyst",
			Model:        DefaultModel,
			Role:         "Risk Analyst",
			SystemPrompt: prompts.RiskAnalyst,
			Temperature:  0.7,
			MaxTokens:    2048,
			Tools:        []string{"assess_risk"},
			Enabled:      true,
		},
		{
			Name:         "explainability_agent",
			Model:        DefaultModel,
			Role:         "Explainability & Strategy Agent",
			SystemPrompt: prompts.Explainability,
			Temperature:  0.7,
			MaxTokens:    2048,
			Tools:        []string{"analyze_portfolio", "assess_risk", "summarize_transactions"},
			Enabled:      true,
		},
	}
}

func DefaultToolSettings() []ToolSetting {
	return []ToolSetting{
		{Name: "analyze_portfolio", Enabled: true},
		{Name: "optimize_portfolio", Enabled: true},
		{Name: "assess_risk", Enabled: true},
		{Name: "summarize_transactions", Enabled: true},
	}
}
