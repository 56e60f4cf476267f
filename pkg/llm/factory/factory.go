package factory

import (
	"fmt"

	"arogya-chat-be/pkg/llm"
	"arogya-chat-be/pkg/llm/ollama"
	"arogya-chat-be/pkg/llm/openaicompat"
)

type ProviderConfig struct {
	Provider      string // "groq", "openai", "huggingface" or "ollama"
	Model         string
	APIKey        string
	BaseURL       string // Overrides the provider's default endpoint
	OllamaBaseURL string
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "groq", "":
		return openaicompat.NewProvider(cfg.APIKey, orDefault(cfg.BaseURL, openaicompat.GroqBaseURL), cfg.Model), nil
	case "openai":
		return openaicompat.NewProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "huggingface":
		return openaicompat.NewProvider(cfg.APIKey, orDefault(cfg.BaseURL, openaicompat.HuggingFaceBaseURL), cfg.Model), nil
	case "ollama":
		return ollama.NewOllamaProvider(orDefault(cfg.OllamaBaseURL, "http://localhost:11434"), cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
