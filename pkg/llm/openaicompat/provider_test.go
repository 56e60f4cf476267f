package openaicompat

import (
	"context"
	"errors"
	"testing"

	"arogya-chat-be/pkg/llm"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (c *recordingClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.req = req
	return c.resp, c.err
}

func reply(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: content}}},
	}
}

func TestProvider_ChatMapsRolesAndOptions(t *testing.T) {
	client := &recordingClient{resp: reply("hello")}
	p := NewProviderWithClient(client, "llama-3.3-70b-versatile")

	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "sys"},
		{Role: llm.RoleUser, Content: "hi"},
		{Role: "model", Content: "earlier"},
	}, llm.WithTemperature(0.3), llm.WithMaxTokens(64))

	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "llama-3.3-70b-versatile", client.req.Model)
	assert.InDelta(t, 0.3, client.req.Temperature, 0.0001)
	assert.Equal(t, 64, client.req.MaxTokens)
	require.Len(t, client.req.Messages, 3)
	assert.Equal(t, openai.ChatMessageRoleSystem, client.req.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, client.req.Messages[1].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, client.req.Messages[2].Role)
}

func TestProvider_ModelOverride(t *testing.T) {
	client := &recordingClient{resp: reply("ok")}
	p := NewProviderWithClient(client, "default-model")

	_, err := p.Generate(context.Background(), "title please", llm.WithModel("small-model"))
	require.NoError(t, err)
	assert.Equal(t, "small-model", client.req.Model)
	assert.Zero(t, client.req.MaxTokens)
}

func TestProvider_Errors(t *testing.T) {
	boom := errors.New("dial tcp: timeout")
	p := NewProviderWithClient(&recordingClient{err: boom}, "m")
	_, err := p.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, boom)

	p = NewProviderWithClient(&recordingClient{}, "m")
	_, err = p.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoChoices)
}
