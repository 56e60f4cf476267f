package title

import (
	"context"
	"fmt"
	"strings"

	"arogya-chat-be/internal/constant"
	"arogya-chat-be/pkg/llm"
)

// Completer is satisfied by completion.Client.
type Completer interface {
	Complete(ctx context.Context, history []llm.Message, systemPrompt string, opts ...llm.Option) (string, error)
}

// Result is either a generated title or the truncation fallback. Err carries the cause of a fallback, if any.
type Result struct {
	Title    string
	Fallback bool
	Err      error
}

type Generator struct {
	completer Completer
	opts      []llm.Option
}

func NewGenerator(completer Completer, opts ...llm.Option) *Generator {
	return &Generator{completer: completer, opts: opts}
}

// Generate never fails. Any problem with the completion yields the fallback title.
func (g *Generator) Generate(ctx context.Context, userText string) Result {
	prompt := fmt.Sprintf(constant.TitlePromptTemplate, userText)

	reply, err := g.completer.Complete(ctx,
		[]llm.Message{{Role: llm.RoleUser, Content: prompt}},
		constant.TitleSystemPrompt,
		g.opts...,
	)
	if err != nil {
		return Result{Title: Fallback(userText), Fallback: true, Err: err}
	}
	// A blank title is cut without the ellipsis
	if reply == constant.ReplyEmpty {
		return Result{Title: Truncate(userText), Fallback: true}
	}

	cleaned := Clean(reply)
	if cleaned == "" {
		return Result{Title: Truncate(userText), Fallback: true}
	}
	return Result{Title: cleaned}
}

// Clean strips quote characters and surrounding whitespace from a model title.
func Clean(raw string) string {
	return strings.TrimSpace(strings.NewReplacer(`"`, "", `'`, "").Replace(raw))
}

// Truncate keeps the first runes of text.
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= constant.TitleFallbackLength {
		return text
	}
	return string(runes[:constant.TitleFallbackLength])
}

// Fallback truncates text to its first runes, marking the cut with an ellipsis.
func Fallback(text string) string {
	if truncated := Truncate(text); truncated != text {
		return truncated + "..."
	}
	return text
}
