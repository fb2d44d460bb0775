package contract

import "context"

// Generator produces text from a system and user prompt on one model. Any
// failure it returns is treated uniformly as ErrLLMUnavailable upstream.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GeneratorRegistry hands out the Generator bound to one configured agent.
// Populated at startup from the agent catalog and read-only afterwards.
type GeneratorRegistry interface {
	ForAgent(agent string) (Generator, error)
}
