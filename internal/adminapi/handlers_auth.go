package adminapi

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/proisp/radiusd/internal/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

type loginResponse struct {
	Token        string      `json:"token,omitempty"`
	Admin        *store.Admin `json:"user,omitempty"`
	Requires2FA  bool        `json:"requires_2fa,omitempty"`
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	ip := c.IP()

	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "username and password are required")
	}

	admin, err := s.store.GetAdminByUsername(req.Username)
	if err != nil || !admin.IsActive {
		recordFailedLogin(ip)
		return fiber.NewError(fiber.StatusUnauthorized, "invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		recordFailedLogin(ip)
		return fiber.NewError(fiber.StatusUnauthorized, "invalid username or password")
	}

	if admin.TOTPEnabled {
		if req.TOTPCode == "" {
			return c.JSON(loginResponse{Requires2FA: true})
		}
		if !totp.Validate(req.TOTPCode, admin.TOTPSecret) {
			recordFailedLogin(ip)
			return fiber.NewError(fiber.StatusUnauthorized, "invalid 2FA code")
		}
	}

	clearFailedLogins(ip)

	ttl := time.Duration(s.cfg.JWTExpireHours) * time.Hour
	token, err := generateToken(admin, s.cfg.JWTSecret, ttl)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	if err := s.store.TouchAdminLogin(admin.ID); err != nil {
		s.log.WithError(err).Warn("failed to record admin login timestamp")
	}

	return c.JSON(loginResponse{Token: token, Admin: admin})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	return c.JSON(currentAdmin(c))
}

type enroll2FAResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
	QRCodeBase64    string `json:"qr_code_base64"`
}

// handleEnroll2FA issues a fresh TOTP secret and a QR-code PNG of its
// otpauth:// URI, but leaves 2FA disabled until handleVerify2FA confirms
// possession of the authenticator app.
func (s *Server) handleEnroll2FA(c *fiber.Ctx) error {
	admin := currentAdmin(c)

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "radiusd",
		AccountName: admin.Username,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate TOTP secret")
	}

	img, err := key.Image(200, 200)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate QR code")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to encode QR code")
	}

	if err := s.store.SetAdminTOTP(admin.ID, key.Secret()); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store TOTP secret")
	}

	return c.JSON(enroll2FAResponse{
		Secret:          key.Secret(),
		ProvisioningURI: key.String(),
		QRCodeBase64:    base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
}

type verify2FARequest struct {
	Code string `json:"code"`
}

func (s *Server) handleVerify2FA(c *fiber.Ctx) error {
	admin := currentAdmin(c)

	var req verify2FARequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if admin.TOTPSecret == "" {
		return fiber.NewError(fiber.StatusBadRequest, "no TOTP enrollment in progress")
	}
	if !totp.Validate(req.Code, admin.TOTPSecret) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid 2FA code")
	}

	if err := s.store.SetAdminTOTPEnabled(admin.ID, true); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to enable 2FA")
	}
	return c.JSON(fiber.Map{"totp_enabled": true})
}
