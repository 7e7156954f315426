package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/TobiasKrause/DamageDesk/internal/pkg/env"
	"github.com/TobiasKrause/DamageDesk/internal/pkg/usercontext"
)

// JWTAuthMiddleware authenticates requests carrying a bearer token issued by
// the external identity service. The token must be HS256-signed with the
// shared secret and carry at least a subject and an email claim; the core
// never trusts identity fields from the request body.
func JWTAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing bearer token"})
		}

		secret := env.GetEnv("JWT_SECRET", "")
		if secret == "" {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Token verification not configured"})
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid or expired token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid token claims"})
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if sub == "" || email == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Token is missing required claims"})
		}
		name, _ := claims["name"].(string)

		userCtx := usercontext.UserContext{
			UserID:     sub,
			Email:      email,
			Name:       name,
			IsLoggedIn: true,
		}
		usercontext.SetUserContext(c, userCtx)
		c.Locals(usercontext.KeyUserID, sub)
		c.Locals(usercontext.KeyUserEmail, email)

		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
