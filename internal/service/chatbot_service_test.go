package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"arogya-chat-be/internal/constant"
	"arogya-chat-be/internal/dto"
	"arogya-chat-be/internal/entity"
	"arogya-chat-be/internal/pkg/apperror"
	"arogya-chat-be/internal/pkg/logger"
	"arogya-chat-be/internal/repository/memory"
	"arogya-chat-be/internal/repository/scope"
	"arogya-chat-be/internal/repository/specification"
	"arogya-chat-be/internal/repository/unitofwork"
	"arogya-chat-be/internal/testutil"
	"arogya-chat-be/pkg/chat/title"
	"arogya-chat-be/pkg/llm"
	"arogya-chat-be/pkg/llm/completion"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu      sync.Mutex
	sent    []uuid.UUID
	deleted []uuid.UUID
	swept   []string
	updated []string
}

func (p *recordingPublisher) PublishMessageSent(_ context.Context, sessionId uuid.UUID, _ string, _, _ bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sessionId)
}

func (p *recordingPublisher) PublishSessionDeleted(_ context.Context, sessionId uuid.UUID, _ string, _ int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, sessionId)
}

func (p *recordingPublisher) PublishHistorySwept(_ context.Context, ownerId, _ string, _, _ int64, _ time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.swept = append(p.swept, ownerId)
}

func (p *recordingPublisher) PublishRetentionUpdated(_ context.Context, ownerId, _, _ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = append(p.updated, ownerId)
}

type harness struct {
	uow       unitofwork.UnitOfWork
	factory   unitofwork.RepositoryFactory
	llm       *testutil.FakeLLM
	clock     *testutil.Clock
	cache     *memory.RetentionPolicyCache
	publisher *recordingPublisher
	chat      IChatbotService
	users     IUserService
}

var start = time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

func newHarness(t *testing.T, fake *testutil.FakeLLM) *harness {
	t.Helper()
	db := testutil.NewTestDB(t)
	factory := unitofwork.NewRepositoryFactory(db)
	client := completion.NewClient(fake, llm.WithTemperature(0.7), llm.WithMaxTokens(1000))
	h := &harness{
		uow:       factory.NewUnitOfWork(context.Background()),
		factory:   factory,
		llm:       fake,
		clock:     testutil.NewClock(start),
		cache:     memory.NewRetentionPolicyCache(time.Minute),
		publisher: &recordingPublisher{},
	}
	h.chat = NewChatbotService(factory, client, title.NewGenerator(client, llm.WithMaxTokens(32)),
		h.cache, h.publisher, logger.NewNopLogger(), WithClock(h.clock.Now))
	h.users = NewUserService(factory, h.cache, h.publisher, logger.NewNopLogger())
	return h
}

func (h *harness) messages(t *testing.T, sessionId uuid.UUID) []*entity.ChatMessage {
	t.Helper()
	msgs, err := h.uow.ChatMessageRepository().FindAll(context.Background(),
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.Scope(scope.OrderByCreatedAsc),
	)
	require.NoError(t, err)
	return msgs
}

func (h *harness) addUser(t *testing.T, id string, policy entity.RetentionPolicy) {
	t.Helper()
	require.NoError(t, h.uow.UserRepository().Create(context.Background(), &entity.User{
		Id: id, Name: "Test " + id, Email: id + "@example.com", HistoryRetention: policy,
	}))
}

func failMainReply(history []llm.Message) error {
	if len(history) > 0 && history[0].Content == constant.HealthSystemPrompt {
		return errors.New("provider down")
	}
	return nil
}

func TestSendMessage_NewSessionEndToEnd(t *testing.T) {
	h := newHarness(t, &testutil.FakeLLM{Replies: []string{`"Fever Symptoms"`, "**RISK LEVEL: LOW**"}})
	ctx := context.Background()

	res, err := h.chat.SendMessage(ctx, &dto.SendMessageRequest{Message: "I have a fever", UserId: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "**RISK LEVEL: LOW**", res.Reply)
	assert.Equal(t, "Fever Symptoms", res.Title)
	assert.NotEqual(t, uuid.Nil, res.ChatId)

	stored, err := h.uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: res.ChatId})
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UserId)
	assert.Equal(t, "Fever Symptoms", stored.Title)

	msgs := h.messages(t, res.ChatId)
	require.Len(t, msgs, 2)
	assert.Equal(t, constant.ChatMessageRoleUser, msgs[0].Role)
	assert.Equal(t, "u1", msgs[0].UserId)
	assert.Equal(t, "I have a fever", msgs[0].Content, "the note never reaches the store")
	assert.Equal(t, constant.ChatMessageRoleModel, msgs[1].Role)
	assert.Equal(t, constant.ModelUserId, msgs[1].UserId)
	assert.True(t, msgs[1].CreatedAt.After(msgs[0].CreatedAt))
	assert.False(t, stored.UpdatedAt.Before(msgs[1].CreatedAt))

	require.Equal(t, 2, h.llm.CallCount())
	titleCall, mainCall := h.llm.Calls[0], h.llm.Calls[1]
	assert.Equal(t, constant.TitleSystemPrompt, titleCall[0].Content)
	assert.Equal(t, 32, h.llm.Options[0].MaxTokens)
	assert.Equal(t, constant.HealthSystemPrompt, mainCall[0].Content)
	require.Len(t, mainCall, 2)
	assert.True(t, strings.HasSuffix(mainCall[1].Content, constant.FirstContactNote))
	assert.Equal(t, 1000, h.llm.Options[1].MaxTokens)

	assert.Equal(t, []uuid.UUID{res.ChatId}, h.publisher.sent)
}

func TestSendMessage_CompletionFailureStoresFallback(t *testing.T) {
	h := newHarness(t, &testutil.FakeLLM{Replies: []string{"Headache Causes"}, ErrWhen: failMainReply})

	res, err := h.chat.SendMessage(context.Background(), &dto.SendMessageRequest{Message: "my head hurts", UserId: "u1"})
	require.NoError(t, err)
	assert.Equal(t, constant.ReplyUnavailable, res.Reply)
	assert.Equal(t, "Headache Causes", res.Title)

	msgs := h.messages(t, res.ChatId)
	require.Len(t, msgs, 2)
	assert.Equal(t, "my head hurts", msgs[0].Content)
	assert.Equal(t, constant.ReplyUnavailable, msgs[1].Content)
}

func TestSendMessage_ProviderDownFallsBackEverywhere(t *testing.T) {
	h := newHarness(t, &testutil.FakeLLM{Err: errors.New("connection refused")})

	res, err := h.chat.SendMessage(context.Background(), &dto.SendMessageRequest{Message: "I have a fever", UserId: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "I have a fever", res.Title)
	assert.Equal(t, constant.ReplyUnavailable, res.Reply)
}

func TestSendMessage_GuestAndTruncatedTitle(t *testing.T) {
	h := newHarness(t, &testutil.FakeLLM{ErrWhen: func(history []llm.Message) error {
		if history[0].Content == constant.TitleSystemPrompt {
			return errors.New("title failed")
		}
		return nil
	}})

	long := "I have been coughing every night for two weeks now"
	res, err := h.chat.SendMessage(context.Background(), &dto.SendMessageRequest{Message: long})
	require.NoError(t, err)
	assert.Equal(t, "I have been coughing every nig...", res.Title)

	msgs := h.messages(t, res.ChatId)
	assert.Equal(t, constant.GuestUserId, msgs[0].UserId)
}

func TestSendMessage_TitleRefreshAndContextRules(t *testing.T) {
	h := newHarness(t, &testutil.FakeLLM{Replies: []string{"Title One", "reply"}})
	ctx := context.Background()

	first, err := h.chat.SendMessage(ctx, &dto.SendMessageRequest{Message: "first", UserId: "u1"})
	require.NoError(t, err)
	require.Equal(t, 2, h.llm.CallCount())

	// Two prior messages: title still refreshed, no first-contact note
	_, err = h.chat.SendMessage(ctx, &dto.SendMessageRequest{ChatId: first.ChatId.String(), Message: "second", UserId: "u1"})
	require.NoError(t, err)
	require.Equal(t, 4, h.llm.CallCount())
	mainCall := h.llm.Calls[3]
	assert.Len(t, mainCall, 4, "system + three stored messages")
	assert.NotContains(t, mainCall[len(mainCall)-1].Content, constant.FirstContactNote)
	assert.Equal(t, llm.RoleAssistant, mainCall[2].Role)

	// Four prior messages: no title request
	res, err := h.chat.SendMessage(ctx, &dto.SendMessageRequest{ChatId: first.ChatId.String(), Message: "third", UserId: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 5, h.llm.CallCount())
	assert.Equal(t, first.ChatId, res.ChatId)
	assert.Len(t, h.messages(t, first.ChatId), 6)
}

func TestSendMessage_ContextWindowIsBounded(t *testing.T) {
	h := newHarness(t, &testutil.FakeLLM{})
	ctx := context.Background()

	first, err := h.chat.SendMessage(ctx, &dto.SendMessageRequest{Message: "m0", UserId: "u1"})
	require.NoError(t, err)
	for i := 1; i < 8; i++ {
		_, err := h.chat.SendMessage(ctx, &dto.SendMessageRequest{ChatId: first.ChatId.String(), Message: "more", UserId: "u1"})
		require.NoError(t, err)
	}

	last := h.llm.Calls[len(h.llm.Calls)-1]
	assert.Len(t, last, 1+constant.ContextWindowSize)
	assert.Equal(t, llm.RoleUser, last[len(last)-1].Role)
}

func TestSendMessage_UnknownChatIdStartsNewSession(t *testing.T) {
	h := newHarness(t, &testutil.FakeLLM{})
	unknown := uuid.New()

	res, err := h.chat.SendMessage(context.Background(), &dto.SendMessageRequest{ChatId: unknown.String(), Message: "hello", UserId: "u1"})
	require.NoError(t, err)
	assert.NotEqual(t, unknown, res.ChatId)
}

func TestSendMessage_Validation(t *testing.T) {
	h := newHarness(t, &testutil.FakeLLM{})

	_, err := h.chat.SendMessage(context.Background(), &dto.SendMessageRequest{ChatId: "not-a-uuid", Message: "hi"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = h.chat.SendMessage(context.Background(), &dto.SendMessageRequest{Message: "   "})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Zero(t, h.llm.CallCount())
}

func TestGetHistory_SweepsThenListsByActivity(t *testing.T) {
	h := newHarness(t, &testutil.FakeLLM{})
	ctx := context.Background()
	h.addUser(t, "u1", entity.Retention24Hours)

	old, err := h.chat.SendMessage(ctx, &dto.SendMessageRequest{Message: "old question", UserId: "u1"})
	require.NoError(t, err)
	h.clock.Advance(30 * time.Hour)

	recent, err := h.chat.SendMessage(ctx, &dto.SendMessageRequest{Message: "recent question", UserId: "u1"})
	require.NoError(t, err)
	newest, err := h.chat.SendMessage(ctx, &dto.SendMessageRequest{Message: "newest question", UserId: "u1"})
	require.NoError(t, err)

	sessions, err := h.chat.GetHistory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 3, "model replies are owned by the ai sentinel and keep the old session referenced")
	assert.Equal(t, newest.ChatId, sessions[0].Id)
	assert.Equal(t, recent.ChatId, sessions[1].Id)
	assert.Equal(t, old.ChatId, sessions[2].Id)

	oldMsgs := h.messages(t, old.ChatId)
	require.Len(t, oldMsgs, 1)
	assert.Equal(t, constant.ChatMessageRoleModel, oldMsgs[0].Role)
	assert.Equal(t, []string{"u1"}, h.publisher.swept)
}

func TestGetHistory_RemovesSessionsLeftEmpty(t *testing.T) {
	h := newHarness(t, &testutil.FakeLLM{})
	ctx := context.Background()
	h.addUser(t, "u1", entity.Retention3Days)

	empty, err := h.chat.CreateSession(ctx, "u1")
	require.NoError(t, err)
	kept, err := h.chat.SendMessage(ctx, &dto.SendMessageRequest{Message: "hi", UserId: "u1"})
	require.NoError(t, err)

	sessions, err := h.chat.GetHistory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, kept.ChatId, sessions[0].Id)

	_, err = h.chat.GetSession(ctx, empty.Id)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestGetHistory_UnknownUserAndOffPolicySkipSweep(t *testing.T) {
	h := newHarness(t, &testutil.FakeLLM{})
	ctx := context.Background()

	_, err := h.chat.CreateSession(ctx, "stranger")
	require.NoError(t, err)
	sessions, err := h.chat.GetHistory(ctx, "stranger")
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	h.addUser(t, "u2", entity.RetentionOff)
	_, err = h.chat.CreateSession(ctx, "u2")
	require.NoError(t, err)
	res, err := h.chat.SweepExpired(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Empty(t, h.publisher.swept)
}

func TestGetHistory_UsesUpdatedPolicy(t *testing.T) {
	h := newHarness(t, &testutil.FakeLLM{})
	ctx := context.Background()
	h.addUser(t, "u1", entity.RetentionOff)

	_, err := h.chat.CreateSession(ctx, "u1")
	require.NoError(t, err)
	sessions, err := h.chat.GetHistory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 1, "off policy is cached here")

	_, err = h.users.UpdateSettings(ctx, &dto.UpdateSettingsRequest{UserId: "u1", HistoryRetention: "7d"})
	require.NoError(t, err)

	sessions, err = h.chat.GetHistory(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestGetSession_MessagesInOrder(t *testing.T) {
	h := newHarness(t, &testutil.FakeLLM{Replies: []string{"T", "r1", "T", "r2"}})
	ctx := context.Background()

	first, err := h.chat.SendMessage(ctx, &dto.SendMessageRequest{Message: "q1", UserId: "u1"})
	require.NoError(t, err)
	_, err = h.chat.SendMessage(ctx, &dto.SendMessageRequest{ChatId: first.ChatId.String(), Message: "q2", UserId: "u1"})
	require.NoError(t, err)

	got, err := h.chat.GetSession(ctx, first.ChatId)
	require.NoError(t, err)
	assert.Equal(t, first.ChatId, got.Id)
	require.Len(t, got.Messages, 4)
	contents := []string{got.Messages[0].Content, got.Messages[1].Content, got.Messages[2].Content, got.Messages[3].Content}
	assert.Equal(t, []string{"q1", "r1", "q2", "r2"}, contents)
	for i := 1; i < len(got.Messages); i++ {
		assert.True(t, got.Messages[i].Timestamp.After(got.Messages[i-1].Timestamp))
	}

	_, err = h.chat.GetSession(ctx, uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestDeleteSession_Cascades(t *testing.T) {
	h := newHarness(t, &testutil.FakeLLM{})
	ctx := context.Background()

	res, err := h.chat.SendMessage(ctx, &dto.SendMessageRequest{Message: "q", UserId: "u1"})
	require.NoError(t, err)
	other, err := h.chat.SendMessage(ctx, &dto.SendMessageRequest{Message: "q", UserId: "u1"})
	require.NoError(t, err)

	require.NoError(t, h.chat.DeleteSession(ctx, res.ChatId))
	assert.Empty(t, h.messages(t, res.ChatId))
	assert.Len(t, h.messages(t, other.ChatId), 2)
	assert.Equal(t, []uuid.UUID{res.ChatId}, h.publisher.deleted)

	err = h.chat.DeleteSession(ctx, res.ChatId)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestCreateSession_DefaultsToGuest(t *testing.T) {
	h := newHarness(t, &testutil.FakeLLM{})

	res, err := h.chat.CreateSession(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, constant.GuestUserId, res.UserId)
	assert.Equal(t, constant.DefaultChatTitle, res.Title)
	assert.True(t, start.Equal(res.CreatedAt))
}
