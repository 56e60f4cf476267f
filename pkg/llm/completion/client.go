// Package completion issues one blocking completion request per call against an injected provider.
package completion

import (
	"context"
	"strings"

	"arogya-chat-be/internal/constant"
	"arogya-chat-be/internal/pkg/apperror"
	"arogya-chat-be/pkg/llm"
)

type Client struct {
	provider llm.LLMProvider
	defaults []llm.Option
}

func NewClient(provider llm.LLMProvider, defaults ...llm.Option) *Client {
	return &Client{provider: provider, defaults: defaults}
}

// Complete prepends systemPrompt (when set) and sends history as-is.
// Provider and transport errors come back as apperror.KindServiceUnavailable. No retries.
func (c *Client) Complete(ctx context.Context, history []llm.Message, systemPrompt string, opts ...llm.Option) (string, error) {
	messages := make([]llm.Message, 0, len(history)+1)
	if systemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	}
	for _, msg := range history {
		role := msg.Role
		if role == constant.ChatMessageRoleModel {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: msg.Content})
	}

	all := make([]llm.Option, 0, len(c.defaults)+len(opts))
	all = append(all, c.defaults...)
	all = append(all, opts...)

	reply, err := c.provider.Chat(ctx, messages, all...)
	if err != nil {
		return "", apperror.ServiceUnavailable("completion provider failed", err)
	}

	if strings.TrimSpace(reply) == "" {
		return constant.ReplyEmpty, nil
	}
	return reply, nil
}
