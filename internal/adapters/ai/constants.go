package ai

import "strings"

// ProviderName represents an AI provider identifier
type ProviderName string

// Provider name constants
const (
	ProviderNameOpenAI ProviderName = "openai"
	ProviderNameGemini ProviderName = "gemini"
	ProviderNameClaude ProviderName = "claude"
)

// String returns the string representation of the provider name
func (p ProviderName) String() string {
	return string(p)
}

// IsValid checks if the provider name is supported
func (p ProviderName) IsValid() bool {
	switch p {
	case ProviderNameOpenAI, ProviderNameGemini, ProviderNameClaude:
		return true
	default:
		return false
	}
}

// AllProviderNames returns all supported provider names
func AllProviderNames() []ProviderName {
	return []ProviderName{
		ProviderNameOpenAI,
		ProviderNameGemini,
		ProviderNameClaude,
	}
}

const defaultMaxTokens = 4096

// Fallback models used when the configured one belongs to another provider
const (
	DefaultOpenAIModel = "gpt-4o"
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultClaudeModel = "claude-sonnet-4-5"
)

var modelPrefixes = map[ProviderName][]string{
	ProviderNameOpenAI: {"gpt-", "o1", "o3", "o4", "chatgpt-"},
	ProviderNameGemini: {"gemini-", "models/gemini-"},
	ProviderNameClaude: {"claude-"},
}

// ModelFor returns model when provider can serve it, otherwise the provider's default.
// Unknown provider names pass model through untouched.
func ModelFor(provider, model string) string {
	name := ProviderName(NormalizeProviderName(provider))
	prefixes, ok := modelPrefixes[name]
	if !ok {
		return model
	}
	lower := strings.ToLower(model)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return model
		}
	}

	switch name {
	case ProviderNameGemini:
		return DefaultGeminiModel
	case ProviderNameClaude:
		return DefaultClaudeModel
	default:
		return DefaultOpenAIModel
	}
}
