package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pulseboard/backend/pkg/response"
)

// SessionCookie carries the signed token for browser clients; API clients may
// send the same token as a Bearer header instead.
const SessionCookie = "pb_session"

type AuthMiddleware struct {
	secret string
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: secret}
}

// RequireAuth rejects requests without a resolved identity. Mutation endpoints
// sit behind this.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := m.resolve(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": "unauthorized"})
			c.Abort()
			return
		}

		c.Set(response.ContextUserKey, userID)
		c.Next()
	}
}

// OptionalAuth resolves an identity when one is present but lets anonymous
// requests through. Read endpoints use it so is_liked can be personalized.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := m.resolve(c); ok {
			c.Set(response.ContextUserKey, userID)
		}
		c.Next()
	}
}

func (m *AuthMiddleware) resolve(c *gin.Context) (string, bool) {
	tokenString := ""

	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}

	if tokenString == "" {
		if cookie, err := c.Cookie(SessionCookie); err == nil {
			tokenString = cookie
		}
	}

	if tokenString == "" {
		return "", false
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", false
	}

	return claims.Subject, true
}
