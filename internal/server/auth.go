package server

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Permissions understood by the API.
const (
	PermViewBill      = "view_bill"
	PermViewPayment   = "view_payment"
	PermViewRoom      = "view_room"
	PermViewTenant    = "view_tenant"
	PermChangeTenant  = "change_tenant"
	PermChangePayment = "change_payment"
	PermAddReading    = "add_reading"
)

// AllPermissions is granted by an operator token minted without explicit permissions.
var AllPermissions = []string{
	PermViewBill, PermViewPayment, PermViewRoom, PermViewTenant,
	PermChangeTenant, PermChangePayment, PermAddReading,
}

type Claims struct {
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

func (c *Claims) has(perm string) bool {
	for _, p := range c.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// IssueToken signs an HS256 token for subject carrying perms.
func IssueToken(secret, subject string, perms []string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	now := time.Now()
	claims := Claims{
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func extractBearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", errors.New("Unauthorized - Missing token")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("Unauthorized - Invalid token format")
	}
	return parts[1], nil
}

// RequireAuth verifies the bearer token and stores its claims in c.Locals("claims").
func RequireAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		claims, err := parseToken(secret, tokenString)
		if err != nil {
			log.Printf("[HTTP] rejected token: %v", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid token")
		}
		c.Locals("claims", claims)
		return c.Next()
	}
}

// RequirePermissions rejects requests whose token lacks any of perms.
func RequirePermissions(perms ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*Claims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Missing token")
		}
		for _, p := range perms {
			if !claims.has(p) {
				return fiber.NewError(fiber.StatusForbidden, "permission denied")
			}
		}
		return c.Next()
	}
}
