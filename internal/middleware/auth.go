// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"strconv"
	"strings"
	"time"

	"amplify/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "amplify_session"

// SessionTTL is how long an issued session token stays valid.
const SessionTTL = 7 * 24 * time.Hour

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// SessionClaims are the JWT claims embedded in a session token.
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// NewSessionToken mints a signed session token for the given user identity.
func NewSessionToken(userID uint, email, name, role string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email: email,
		Name:  name,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    "amplify",
			Audience:  jwt.ClaimStrings{"amplify"},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// parseSessionToken validates a token string and returns its claims.
func parseSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}
	return claims, nil
}

// sessionToken extracts the raw token from the session cookie, or falls back
// to a bearer Authorization header for API clients.
func sessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookieName); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// emailAllowed reports whether the email belongs to the configured staff domain.
func emailAllowed(email string) bool {
	return strings.HasSuffix(strings.ToLower(email), "@"+cfg.AllowedDomain)
}

// clearSessionCookie expires the session cookie on the client.
func clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}

// protectedPrefixes are page paths that require a signed-in session.
var protectedPrefixes = []string{
	"/dashboard",
	"/posting",
	"/campaigns",
	"/review",
	"/analytics",
	"/admin",
}

// SessionGuard gates page navigation. Unauthenticated visitors to protected
// pages are redirected to /login; signed-in users hitting /login are sent to
// the dashboard. Sessions whose email falls outside the staff domain are
// terminated.
func SessionGuard(c *fiber.Ctx) error {
	path := c.Path()

	protected := false
	for _, prefix := range protectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			protected = true
			break
		}
	}

	token := sessionToken(c)
	if token == "" {
		if protected {
			return c.Redirect("/login", fiber.StatusFound)
		}
		return c.Next()
	}

	claims, err := parseSessionToken(token)
	if err != nil {
		clearSessionCookie(c)
		if protected {
			return c.Redirect("/login", fiber.StatusFound)
		}
		return c.Next()
	}

	if !emailAllowed(claims.Email) {
		clearSessionCookie(c)
		return c.Redirect("/login?error=unauthorized_domain", fiber.StatusFound)
	}

	setUserLocals(c, claims)

	if path == "/login" {
		return c.Redirect("/dashboard", fiber.StatusFound)
	}

	return c.Next()
}

// AuthRequired enforces an authenticated session for API routes.
func AuthRequired(c *fiber.Ctx) error {
	token := sessionToken(c)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	claims, err := parseSessionToken(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	if !emailAllowed(claims.Email) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized",
		})
	}

	setUserLocals(c, claims)

	return c.Next()
}

// setUserLocals stores the session identity on the request context.
func setUserLocals(c *fiber.Ctx, claims *SessionClaims) {
	c.Locals("userEmail", claims.Email)
	c.Locals("userName", claims.Name)
	c.Locals("userRole", claims.Role)
	if id, err := strconv.ParseUint(claims.Subject, 10, 64); err == nil && id > 0 {
		c.Locals("userID", uint(id))
	}
}

// AdminRequired restricts a route to the configured admin account. It must
// run after AuthRequired.
func AdminRequired(c *fiber.Ctx) error {
	email, _ := c.Locals("userEmail").(string)
	if email == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}
	if !strings.EqualFold(email, cfg.AdminEmail) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized",
		})
	}
	return c.Next()
}

// CronOrAuthRequired admits either the cron bearer secret or a staff
// session. Endpoints fed by both machine schedulers and the dashboard
// use this instead of AuthRequired.
func CronOrAuthRequired(c *fiber.Ctx) error {
	if cfg != nil && cfg.CronSecret != "" &&
		c.Get("Authorization") == "Bearer "+cfg.CronSecret {
		return c.Next()
	}
	return AuthRequired(c)
}

// CronAuthRequired authenticates machine callers of cron endpoints with the
// shared bearer secret.
func CronAuthRequired(c *fiber.Ctx) error {
	if cfg == nil || cfg.CronSecret == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server misconfigured",
		})
	}

	authHeader := c.Get("Authorization")
	if authHeader != "Bearer "+cfg.CronSecret {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	return c.Next()
}
