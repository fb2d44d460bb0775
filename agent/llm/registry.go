package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"openbank-advisor/agent/catalog"
	contractx "openbank-advisor/agent/contract"
	ollamax "openbank-advisor/pkg/ollama"
)

// ModelStatus is the per-agent availability snapshot taken at startup.
type ModelStatus struct {
	Model     string `json:"model"`
	Available bool   `json:"available"`
}

type generator struct {
	model string
	chat  einomodel.BaseChatModel
}

func (g *generator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	msg, err := g.chat.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	})
	if err != nil {
		return "", fmt.Errorf("%w: model %s: %v", contractx.ErrLLMUnavailable, g.model, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: model %s returned an empty response", contractx.ErrLLMUnavailable, g.model)
	}
	return strings.TrimSpace(msg.Content), nil
}

// Registry binds each configured agent to a chat model at startup and is
// read-only afterwards.
type Registry struct {
	generators map[string]contractx.Generator
	status     map[string]ModelStatus
}

var _ contractx.GeneratorRegistry = (*Registry)(nil)

// NewRegistry probes the runtime's model list once, then builds one chat
// model per agent definition. A model missing from the runtime falls back to
// another tag of the same base name when one is served (e.g. llama3.2:latest
// -> llama3.2:3b); otherwise the agent is kept with availability marked
// false rather than dropped.
func NewRegistry(ctx context.Context, cfg ollamax.Config, defs []catalog.AgentDefinition) (*Registry, error) {
	available, err := ollamax.ListModels(ctx, ollamax.NewClient(cfg))
	listed := err == nil
	if err != nil {
		log.Warn().Err(err).Msg("could not list runtime models, skipping availability check")
	}

	r := &Registry{
		generators: make(map[string]contractx.Generator, len(defs)),
		status:     make(map[string]ModelStatus, len(defs)),
	}
	for _, def := range defs {
		model, ok := resolveModel(def.Model, available)
		if model != def.Model {
			log.Info().
				Str("agent", def.Name).
				Str("requested", def.Model).
				Str("using", model).
				Msg("model tag not served, using matching base model")
		}

		chat, err := cfg.ChatModel(ctx, model, def.Temperature, def.MaxTokens)
		if err != nil {
			return nil, fmt.Errorf("%w: agent %s: %v", contractx.ErrLLMUnavailable, def.Name, err)
		}
		r.generators[def.Name] = &generator{model: model, chat: chat}
		r.status[def.Name] = ModelStatus{Model: model, Available: ok || !listed}
	}
	return r, nil
}

func (r *Registry) ForAgent(agent string) (contractx.Generator, error) {
	gen, ok := r.generators[strings.TrimSpace(agent)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", contractx.ErrUnknownAgent, agent)
	}
	return gen, nil
}

// Status returns the startup availability snapshot keyed by agent name.
func (r *Registry) Status() map[string]ModelStatus {
	out := make(map[string]ModelStatus, len(r.status))
	for name, status := range r.status {
		out[name] = status
	}
	return out
}

// resolveModel finds the served model matching a requested identifier:
// exact match first, then any served tag sharing the base name before the
// colon. When nothing is served under that base the requested identifier is
// kept and reported unavailable.
func resolveModel(requested string, available []string) (string, bool) {
	if len(available) == 0 {
		return requested, false
	}
	for _, m := range available {
		if m == requested {
			return requested, true
		}
	}
	base := requested
	if idx := strings.IndexByte(base, ':'); idx >= 0 {
		base = base[:idx]
	}
	matches := make([]string, 0, 1)
	for _, m := range available {
		if m == base || strings.HasPrefix(m, base+":") {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return requested, false
	}
	sort.Strings(matches)
	return matches[0], true
}
