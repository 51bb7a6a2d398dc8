package adminapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/proisp/radiusd/internal/cache"
	"github.com/proisp/radiusd/internal/config"
	"github.com/proisp/radiusd/internal/store"
)

const testAdminPassword = "admin123"

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	st, err := store.Open("file::memory:?cache=shared", log, "admin", testAdminPassword, "testsecret")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{
		JWTSecret:      "test-secret",
		JWTExpireHours: 24,
	}

	s := New(cfg, st, cache.New("", "", log), log)
	return s, st
}

func doJSON(t *testing.T, s *Server, method, path string, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func loginAsDefaultAdmin(t *testing.T, s *Server) string {
	t.Helper()
	clearFailedLogins("0.0.0.0")
	resp, decoded := doJSON(t, s, http.MethodPost, "/api/auth/login", "", loginRequest{
		Username: "admin",
		Password: testAdminPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := decoded["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthRequiresNoAuth(t *testing.T) {
	s, _ := newTestServer(t)
	resp, decoded := doJSON(t, s, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", decoded["status"])
}

func TestLoginWithCorrectPasswordSucceeds(t *testing.T) {
	s, _ := newTestServer(t)
	token := loginAsDefaultAdmin(t, s)
	require.NotEmpty(t, token)
}

func TestLoginWithWrongPasswordRejected(t *testing.T) {
	s, _ := newTestServer(t)
	resp, decoded := doJSON(t, s, http.MethodPost, "/api/auth/login", "", loginRequest{
		Username: "admin",
		Password: "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, decoded["error"], "invalid")
}

func TestProtectedRouteRejectsMissingToken(t *testing.T) {
	s, _ := newTestServer(t)
	resp, _ := doJSON(t, s, http.MethodGet, "/api/dashboard/stats", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDashboardStatsReflectsSeedData(t *testing.T) {
	s, _ := newTestServer(t)
	token := loginAsDefaultAdmin(t, s)

	resp, decoded := doJSON(t, s, http.MethodGet, "/api/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 0, decoded["total_users"])
	// The default NAS client seeded on Open.
	require.EqualValues(t, 1, decoded["total_nas"])
}

func TestCreateAndFetchUser(t *testing.T) {
	s, _ := newTestServer(t)
	token := loginAsDefaultAdmin(t, s)

	resp, _ := doJSON(t, s, http.MethodPost, "/api/users", token, map[string]interface{}{
		"username": "alice",
		"password": "hunter2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, decoded := doJSON(t, s, http.MethodGet, "/api/users/alice", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "alice", decoded["username"])
}

func TestGetUnknownUserReturns404(t *testing.T) {
	s, _ := newTestServer(t)
	token := loginAsDefaultAdmin(t, s)

	resp, decoded := doJSON(t, s, http.MethodGet, "/api/users/ghost", token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "user not found", decoded["error"])
}

func TestCreateAndListNAS(t *testing.T) {
	s, _ := newTestServer(t)
	token := loginAsDefaultAdmin(t, s)

	resp, _ := doJSON(t, s, http.MethodPost, "/api/nas", token, map[string]interface{}{
		"ip_address": "10.0.0.1",
		"secret":     "xyzzy",
		"is_active":  true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, decoded := doJSON(t, s, http.MethodGet, "/api/nas", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, ok := decoded["items"].([]interface{})
	require.True(t, ok)
	// The seeded default NAS client plus the one just created.
	require.Len(t, items, 2)
}

func TestLoginRateLimiterBlocksAfterRepeatedFailures(t *testing.T) {
	clearFailedLogins("0.0.0.0")
	t.Cleanup(func() { clearFailedLogins("0.0.0.0") })
	s, _ := newTestServer(t)

	for i := 0; i < maxLoginAttempts; i++ {
		resp, _ := doJSON(t, s, http.MethodPost, "/api/auth/login", "", loginRequest{
			Username: "admin",
			Password: "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp, decoded := doJSON(t, s, http.MethodPost, "/api/auth/login", "", loginRequest{
		Username: "admin",
		Password: testAdminPassword,
	})
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Contains(t, decoded["error"], "too many failed login attempts")
}

func TestEnrollThenVerify2FA(t *testing.T) {
	s, _ := newTestServer(t)
	token := loginAsDefaultAdmin(t, s)

	resp, decoded := doJSON(t, s, http.MethodPost, "/api/auth/2fa/enroll", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	secret, _ := decoded["secret"].(string)
	require.NotEmpty(t, secret)
	require.NotEmpty(t, decoded["qr_code_base64"])

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	resp, decoded = doJSON(t, s, http.MethodPost, "/api/auth/2fa/verify", token, verify2FARequest{Code: code})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, decoded["totp_enabled"])
}
