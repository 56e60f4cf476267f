package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"arogya-chat-be/internal/dto"
	"arogya-chat-be/internal/pkg/apperror"
	"arogya-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, res *http.Response) BaseResponse[any] {
	t.Helper()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var out BaseResponse[any]
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestErrorHandler_MapsKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"not found", apperror.NotFound("Chat not found"), 404, "Chat not found"},
		{"validation", apperror.Validation("message is required"), 400, "message is required"},
		{"provider", apperror.ServiceUnavailable("completion provider failed", errors.New("timeout")), 503, "completion provider failed"},
		{"store", apperror.StoreFailure("save message", errors.New("disk full")), 500, "Internal server error"},
		{"fiber", fiber.NewError(fiber.StatusMethodNotAllowed, "Method Not Allowed"), 405, "Method Not Allowed"},
		{"unknown", errors.New("secret detail"), 500, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(logger.NewNopLogger())})
			app.Get("/", func(ctx *fiber.Ctx) error { return tt.err })

			res, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.code, res.StatusCode)

			body := decode(t, res)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	err := ValidateRequest(dto.SendMessageRequest{ChatId: "nope"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Contains(t, err.Error(), "chatId must be a valid id")
	assert.Contains(t, err.Error(), "message is required")

	err = ValidateRequest(dto.UpdateSettingsRequest{UserId: "u1", HistoryRetention: "1y"})
	assert.Contains(t, err.Error(), "historyRetention must be one of")

	assert.NoError(t, ValidateRequest(dto.SendMessageRequest{Message: "hello"}))
	assert.NoError(t, ValidateRequest(dto.UpdateSettingsRequest{UserId: "u1"}))
}

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestOptionalJwtMiddleware(t *testing.T) {
	const secret = "test-secret"
	app := fiber.New()
	app.Use(OptionalJwtMiddleware(secret))
	app.Get("/", func(ctx *fiber.Ctx) error { return ctx.SendString(UserIdFromLocals(ctx)) })

	call := func(header string) string {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		res, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, res.StatusCode)
		body, _ := io.ReadAll(res.Body)
		return string(body)
	}

	exp := time.Now().Add(time.Hour).Unix()
	assert.Equal(t, "u1", call("Bearer "+signed(t, secret, jwt.MapClaims{"id": "u1", "exp": exp})))
	assert.Equal(t, "u2", call("Bearer "+signed(t, secret, jwt.MapClaims{"user_id": "u2", "exp": exp})))
	assert.Empty(t, call(""))
	assert.Empty(t, call("Bearer "+signed(t, "other-secret", jwt.MapClaims{"id": "u1"})))
	assert.Empty(t, call("Bearer "+signed(t, secret, jwt.MapClaims{"id": "u1", "exp": time.Now().Add(-time.Hour).Unix()})))
	assert.Empty(t, call("Basic dTE6cHc="))
}

func TestRateLimit_PassThrough(t *testing.T) {
	unreachable := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { unreachable.Close() })

	tests := []struct {
		name    string
		handler fiber.Handler
	}{
		{"nil client", RateLimit(nil, 5, logger.NewNopLogger())},
		{"disabled", RateLimit(unreachable, 0, logger.NewNopLogger())},
		{"redis down fails open", RateLimit(unreachable, 5, logger.NewNopLogger())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Post("/", tt.handler, func(ctx *fiber.Ctx) error { return ctx.SendStatus(fiber.StatusNoContent) })

			for i := 0; i < 3; i++ {
				res, err := app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
				require.NoError(t, err)
				assert.Equal(t, fiber.StatusNoContent, res.StatusCode)
			}
		})
	}
}

func TestRateLimitKey(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(ctx *fiber.Ctx) error {
		ctx.Locals(userIdLocal, "u1")
		return ctx.SendString(rateLimitKey(ctx))
	})
	app.Get("/guest", func(ctx *fiber.Ctx) error { return ctx.SendString(rateLimitKey(ctx)) })

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, "rate_limit:user:u1", string(body))

	res, err = app.Test(httptest.NewRequest(http.MethodGet, "/guest", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(res.Body)
	assert.Contains(t, string(body), "rate_limit:ip:")
}

func TestSuccessResponse(t *testing.T) {
	res := SuccessResponse("ok", map[string]int{"n": 1})
	assert.True(t, res.Success)
	assert.Equal(t, 200, res.Code)
	assert.Equal(t, 1, res.Data["n"])
}

func TestSuccessResponse_KeepsEmptyList(t *testing.T) {
	raw, err := json.Marshal(SuccessResponse("Chat history", []int{}))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"data":[]`)
}
