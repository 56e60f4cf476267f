package testutil

import (
	"context"
	"sync"

	"arogya-chat-be/pkg/llm"
)

// FakeLLM records every call and answers from Replies in order, repeating the last one.
// Err, when set, fails every call.
type FakeLLM struct {
	mu      sync.Mutex
	Replies []string
	Err     error
	// ErrWhen fails only the calls it returns true for.
	ErrWhen func(history []llm.Message) error
	Calls   [][]llm.Message
	Options []llm.Options
}

var _ llm.LLMProvider = &FakeLLM{}

func (f *FakeLLM) Chat(_ context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := append([]llm.Message(nil), history...)
	f.Calls = append(f.Calls, copied)
	f.Options = append(f.Options, llm.Apply(llm.Options{}, opts...))

	if f.Err != nil {
		return "", f.Err
	}
	if f.ErrWhen != nil {
		if err := f.ErrWhen(copied); err != nil {
			return "", err
		}
	}

	if len(f.Replies) == 0 {
		return "ok", nil
	}
	idx := len(f.Calls) - 1
	if idx >= len(f.Replies) {
		idx = len(f.Replies) - 1
	}
	return f.Replies[idx], nil
}

func (f *FakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (f *FakeLLM) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
