package factory

import (
	"testing"

	"arogya-chat-be/pkg/llm/ollama"
	"arogya-chat-be/pkg/llm/openaicompat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(ProviderConfig{Provider: "groq", Model: "llama-3.3-70b-versatile", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &openaicompat.Provider{}, p)

	p, err = NewLLMProvider(ProviderConfig{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	require.IsType(t, &ollama.OllamaProvider{}, p)
	assert.Equal(t, "http://localhost:11434", p.(*ollama.OllamaProvider).BaseURL)

	_, err = NewLLMProvider(ProviderConfig{Provider: "gemini"})
	assert.EqualError(t, err, "unsupported LLM provider: gemini")
}
