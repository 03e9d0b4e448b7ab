package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StaffClaims are the JWT claims accepted for staff-only endpoints.
type StaffClaims struct {
	Staff bool `json:"staff"`
	jwt.RegisteredClaims
}

// IssueStaffToken signs an HS256 staff token for subject.
func IssueStaffToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := StaffClaims{
		Staff: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// StaffAuthMiddleware requires a valid bearer token carrying staff: true.
func StaffAuthMiddleware(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(secret) == 0 {
			return errForbidden(c, "Staff authentication is not configured")
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return errUnauthorized(c, "Authorization token missing")
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return errUnauthorized(c, "Invalid authorization token format")
		}

		claims := &StaffClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return errUnauthorized(c, "Invalid token")
		}
		if !claims.Staff {
			return errForbidden(c, "Staff access required")
		}

		c.Locals("staff_subject", claims.Subject)
		return c.Next()
	}
}
