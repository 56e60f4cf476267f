package serverutils

import (
	"strconv"
	"time"

	"arogya-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Token bucket refilled at rate tokens per second. Returns {allowed, remaining, retry_after}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'tokens', 'updated_at')
local tokens = tonumber(bucket[1])
local updated_at = tonumber(bucket[2])

if tokens == nil or updated_at == nil then
    tokens = capacity
    updated_at = now
end

local elapsed = math.max(0, now - updated_at)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
local retry_after = 0

if tokens >= requested then
    tokens = tokens - requested
    allowed = 1
else
    retry_after = (requested - tokens) / rate
end

redis.call('HSET', key, 'tokens', tokens, 'updated_at', now)
redis.call('EXPIRE', key, 86400)

return {allowed, math.floor(tokens), math.ceil(retry_after)}
`)

// RateLimit allows qps requests per second per caller with bursts of 2*qps.
// Callers are keyed by authenticated user id, else by IP. A nil client or qps <= 0 disables it,
// and Redis errors let the request through.
func RateLimit(rdb *redis.Client, qps int, log logger.ILogger) fiber.Handler {
	if rdb == nil || qps <= 0 {
		return func(ctx *fiber.Ctx) error { return ctx.Next() }
	}

	capacity := 2 * qps
	return func(ctx *fiber.Ctx) error {
		now := float64(time.Now().UnixNano()) / 1e9

		result, err := tokenBucket.Run(ctx.UserContext(), rdb, []string{rateLimitKey(ctx)}, capacity, qps, now, 1).Int64Slice()
		if err != nil || len(result) < 3 {
			if err != nil {
				log.Warn("HTTP", "Rate limiter unavailable, allowing request", map[string]interface{}{"error": err.Error()})
			}
			return ctx.Next()
		}

		ctx.Set("X-RateLimit-Limit", strconv.Itoa(capacity))
		if result[0] == 0 {
			ctx.Set("Retry-After", strconv.FormatInt(result[2], 10))
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse(fiber.StatusTooManyRequests, "Too many requests, please slow down"))
		}

		ctx.Set("X-RateLimit-Remaining", strconv.FormatInt(result[1], 10))
		return ctx.Next()
	}
}

func rateLimitKey(ctx *fiber.Ctx) string {
	if id := UserIdFromLocals(ctx); id != "" {
		return "rate_limit:user:" + id
	}
	return "rate_limit:ip:" + ctx.IP()
}
