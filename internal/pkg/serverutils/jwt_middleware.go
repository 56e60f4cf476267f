package serverutils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const userIdLocal = "user_id"

// OptionalJwtMiddleware stores the token's user id in locals when a valid Bearer token is sent.
// Requests without a token, or with a bad one, continue as guests.
func OptionalJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			return ctx.Next()
		}

		authHeader := ctx.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return ctx.Next()
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}))
		if err != nil || !token.Valid {
			return ctx.Next()
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Next()
		}

		// The auth service signs "id"; older tokens carry "user_id"
		for _, key := range []string{"id", "user_id"} {
			if id, ok := claims[key].(string); ok && id != "" {
				ctx.Locals(userIdLocal, id)
				break
			}
		}
		return ctx.Next()
	}
}

// UserIdFromLocals returns the authenticated user id, or "" for guests.
func UserIdFromLocals(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(userIdLocal).(string)
	return id
}
