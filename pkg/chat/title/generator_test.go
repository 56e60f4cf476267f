package title

import (
	"context"
	"errors"
	"strings"
	"testing"

	"arogya-chat-be/internal/constant"
	"arogya-chat-be/internal/testutil"
	"arogya-chat-be/pkg/llm"
	"arogya-chat-be/pkg/llm/completion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_CleansModelTitle(t *testing.T) {
	fake := &testutil.FakeLLM{Replies: []string{`  "Fever Symptoms"` + "\n"}}
	g := NewGenerator(completion.NewClient(fake), llm.WithMaxTokens(32))

	res := g.Generate(context.Background(), "I have a fever")
	assert.False(t, res.Fallback)
	assert.Equal(t, "Fever Symptoms", res.Title)

	require.Len(t, fake.Calls, 1)
	sent := fake.Calls[0]
	assert.Equal(t, constant.TitleSystemPrompt, sent[0].Content)
	assert.Contains(t, sent[1].Content, `User Query: "I have a fever"`)
	assert.Equal(t, 32, fake.Options[0].MaxTokens)
}

func TestGenerator_FallbackOnFailure(t *testing.T) {
	g := NewGenerator(completion.NewClient(&testutil.FakeLLM{Err: errors.New("rate limited")}))

	res := g.Generate(context.Background(), "I have had a persistent headache since Monday")
	assert.True(t, res.Fallback)
	assert.Error(t, res.Err)
	assert.Equal(t, "I have had a persistent headac...", res.Title)
}

func TestGenerator_FallbackOnBlankTitle(t *testing.T) {
	g := NewGenerator(completion.NewClient(&testutil.FakeLLM{Replies: []string{`""`}}))

	res := g.Generate(context.Background(), "I have a fever")
	assert.True(t, res.Fallback)
	assert.NoError(t, res.Err)
	assert.Equal(t, "I have a fever", res.Title)

	res = g.Generate(context.Background(), "I have had a persistent headache since Monday")
	assert.True(t, res.Fallback)
	assert.Equal(t, "I have had a persistent headac", res.Title)
}

func TestGenerator_EmptyReplyTruncatesWithoutEllipsis(t *testing.T) {
	g := NewGenerator(completion.NewClient(&testutil.FakeLLM{Replies: []string{"   "}}))

	res := g.Generate(context.Background(), "I have had a persistent headache since Monday")
	assert.True(t, res.Fallback)
	assert.Equal(t, "I have had a persistent headac", res.Title)
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "I have a fever", "I have a fever"},
		{"exact", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"long", strings.Repeat("b", 31), strings.Repeat("b", 30) + "..."},
		{"multibyte", strings.Repeat("बु", 20), strings.Repeat("बु", 15) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fallback(tt.in))
		})
	}
}
