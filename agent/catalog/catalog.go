package catalog

import (
	"fmt"
	"sort"
	"strings"

	contractx "openbank-advisor/agent/contract"
)

// AgentDefinition describes one configured agent persona. Loaded once at
// startup and immutable for the process lifetime.
type AgentDefinition struct {
	Name         string
	Model        string
	Role         string
	SystemPrompt string
	Temperature  float32
	MaxTokens    int
	Tools        []string
	Enabled      bool
}

// AllowsTool reports whether the agent is permitted to use the named tool.
func (d AgentDefinition) AllowsTool(name string) bool {
	for _, t := range d.Tools {
		if t == name {
			return true
		}
	}
	return false
}

// Catalog is a read-only mapping from agent name to definition. Agents
// disabled in configuration are not admitted, so presence implies enabled.
type Catalog struct {
	agents map[string]AgentDefinition
}

func New(defs []AgentDefinition) (*Catalog, error) {
	agents := make(map[string]AgentDefinition, len(defs))
	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, fmt.Errorf("agent definition without a name")
		}
		if _, exists := agents[name]; exists {
			return nil, fmt.Errorf("duplicate agent name %q", name)
		}
		if !def.Enabled {
			continue
		}
		if strings.TrimSpace(def.Model) == "" {
			return nil, fmt.Errorf("agent %q has no model", name)
		}
		if strings.TrimSpace(def.SystemPrompt) == "" {
			return nil, fmt.Errorf("agent %q has no system prompt", name)
		}
		def.Name = name
		agents[name] = def
	}
	return &Catalog{agents: agents}, nil
}

func (c *Catalog) Resolve(name string) (AgentDefinition, error) {
	def, ok := c.agents[strings.TrimSpace(name)]
	if !ok {
		return AgentDefinition{}, fmt.Errorf("%w: %q", contractx.ErrUnknownAgent, name)
	}
	return def, nil
}

// Definitions returns the admitted definitions sorted by name.
func (c *Catalog) Definitions() []AgentDefinition {
	defs := make([]AgentDefinition, 0, len(c.agents))
	for _, name := range c.Names() {
		defs = append(defs, c.agents[name])
	}
	return defs
}

func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.agents))
	for name := range c.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Models returns the distinct model identifiers referenced by the catalog.
func (c *Catalog) Models() []string {
	seen := map[string]struct{}{}
	models := make([]string, 0, len(c.agents))
	for _, def := range c.agents {
		if _, ok := seen[def.Model]; ok {
			continue
		}
		seen[def.Model] = struct{}{}
		models = append(models, def.Model)
	}
	sort.Strings(models)
	return models
}

// ForAnalysis resolves the agent responsible for a single analysis kind.
// Comprehensive analysis has no single agent; it fans out to the other three.
func (c *Catalog) ForAnalysis(kind contractx.AnalysisKind) (AgentDefinition, error) {
	name, ok := analysisAgents[kind]
	if !ok {
		return AgentDefinition{}, fmt.Errorf("%w: unsupported analysis kind %q", contractx.ErrInvalidArguments, kind)
	}
	return c.Resolve(name)
}

var analysisAgents = map[contractx.AnalysisKind]string{
	contractx.AnalysisPortfolio: "portfolio_manager",
	contractx.AnalysisRisk:      "risk_analyst",
	contractx.AnalysisMarket:    "market_analyst",
}
