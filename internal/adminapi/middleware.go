package adminapi

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/proisp/radiusd/internal/store"
)

// claims is the JWT payload issued at login: admin_id, username, role.
type claims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func generateToken(admin *store.Admin, secret string, ttl time.Duration) (string, error) {
	c := claims{
		AdminID:  admin.ID,
		Username: admin.Username,
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "radiusd",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString([]byte(secret))
}

// authRequired validates the Bearer token and loads the admin into Locals
// under "admin" for downstream handlers.
func (s *Server) authRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing or malformed authorization header")
		}

		token, err := jwt.ParseWithClaims(parts[1], &claims{}, func(*jwt.Token) (interface{}, error) {
			return []byte(s.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		cl, ok := token.Claims.(*claims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token claims")
		}

		admin, err := s.store.GetAdminByUsername(cl.Username)
		if err != nil || !admin.IsActive {
			return fiber.NewError(fiber.StatusUnauthorized, "admin not found or disabled")
		}

		c.Locals("admin", admin)
		return c.Next()
	}
}

func currentAdmin(c *fiber.Ctx) *store.Admin {
	admin, _ := c.Locals("admin").(*store.Admin)
	return admin
}

// requestLogger logs method, path, status and duration through logrus,
// the structured upgrade from the teacher's formatted log.Printf line.
func requestLogger(log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.WithFields(logrus.Fields{
			"component": "adminapi",
			"method":    c.Method(),
			"path":      c.Path(),
			"status":    c.Response().StatusCode(),
			"duration":  time.Since(start).String(),
			"ip":        c.IP(),
		}).Info("request")
		return err
	}
}

// corsMiddleware allows any origin to read JSON responses. The admin API
// has no cookie-based session to protect, so a permissive allowlist
// matches the teacher's own private-network/localhost CORS posture
// without needing a configurable origin list for a single-operator tool.
func corsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Access-Control-Allow-Origin", "*")
		c.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

// loginAttempt tracks failed logins per source IP for the in-memory
// rate limiter guarding /auth/login.
type loginAttempt struct {
	count     int
	blockedAt *time.Time
}

var (
	loginAttempts = make(map[string]*loginAttempt)
	loginMutex    sync.Mutex
)

const (
	maxLoginAttempts = 5
	loginBlockWindow = 15 * time.Minute
)

// loginRateLimiter blocks an IP for loginBlockWindow after
// maxLoginAttempts consecutive failed logins, grounded on the teacher's
// isIPBlocked/recordFailedAttempt pair.
func loginRateLimiter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()

		loginMutex.Lock()
		attempt, blocked := loginAttempts[ip]
		if blocked && attempt.blockedAt != nil {
			if time.Since(*attempt.blockedAt) < loginBlockWindow {
				remaining := int((loginBlockWindow - time.Since(*attempt.blockedAt)).Minutes()) + 1
				loginMutex.Unlock()
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "too many failed login attempts, try again in " + strconv.Itoa(remaining) + " minutes",
				})
			}
			delete(loginAttempts, ip)
		}
		loginMutex.Unlock()

		return c.Next()
	}
}

func recordFailedLogin(ip string) {
	loginMutex.Lock()
	defer loginMutex.Unlock()

	a, ok := loginAttempts[ip]
	if !ok {
		a = &loginAttempt{}
		loginAttempts[ip] = a
	}
	a.count++
	if a.count >= maxLoginAttempts {
		now := time.Now()
		a.blockedAt = &now
	}
}

func clearFailedLogins(ip string) {
	loginMutex.Lock()
	defer loginMutex.Unlock()
	delete(loginAttempts, ip)
}
