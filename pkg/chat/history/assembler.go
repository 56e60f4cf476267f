package history

import (
	"context"

	"arogya-chat-be/internal/constant"
	"arogya-chat-be/internal/repository/scope"
	"arogya-chat-be/internal/repository/specification"
	"arogya-chat-be/internal/repository/unitofwork"
	"arogya-chat-be/pkg/llm"

	"github.com/google/uuid"
)

// Assembler builds the bounded context window sent with each completion.
type Assembler struct {
	windowSize int
}

func NewAssembler() *Assembler {
	return &Assembler{windowSize: constant.ContextWindowSize}
}

// Assemble returns the newest messages of the session in chronological order.
// On a first contact the note is appended to the last user message instead of sent as its own turn.
func (a *Assembler) Assemble(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, firstContact bool) ([]llm.Message, error) {
	recent, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.Scope(scope.OrderByCreatedDesc),
		specification.Pagination{Limit: a.windowSize},
	)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		msg := recent[i]
		role := llm.RoleUser
		if msg.Role == constant.ChatMessageRoleModel {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: msg.Content})
	}

	if firstContact && len(messages) > 0 {
		last := &messages[len(messages)-1]
		if last.Role == llm.RoleUser {
			last.Content += constant.FirstContactNote
		}
	}

	return messages, nil
}
