package radiusproto

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNTResponseRFC2759Vector checks NTResponse against the worked example
// in RFC 2759 §8.7.
func TestNTResponseRFC2759Vector(t *testing.T) {
	authChallenge, _ := hex.DecodeString("5B5D7C7D7B3F2F3E3C2C602132262628")
	peerChallenge, _ := hex.DecodeString("21402324255E262A28295F2B3A337C7E")

	got := NTResponse(authChallenge, peerChallenge, "User", "clientPass")
	want, _ := hex.DecodeString("82309ECD8D708B5EA08FAA3981CD83544233114A3D85D6DF")

	require.Equal(t, want, got)
}

// TestAuthenticatorResponseRFC2759Vector checks AuthenticatorResponse
// against the same worked example.
func TestAuthenticatorResponseRFC2759Vector(t *testing.T) {
	authChallenge, _ := hex.DecodeString("5B5D7C7D7B3F2F3E3C2C602132262628")
	peerChallenge, _ := hex.DecodeString("21402324255E262A28295F2B3A337C7E")
	ntResponse, _ := hex.DecodeString("82309ECD8D708B5EA08FAA3981CD83544233114A3D85D6DF")

	got := AuthenticatorResponse("clientPass", ntResponse, peerChallenge, authChallenge, "User")
	gotStr := fmt.Sprintf("S=%s", strings.ToUpper(hex.EncodeToString(got)))

	require.Equal(t, "S=407A5589115FD0D6209F510FE9C04566932CDA56", gotStr)
}

func TestNTHashLength(t *testing.T) {
	require.Len(t, NTHash("wonderland"), 16)
}

func TestDesEncrypt3Length(t *testing.T) {
	key := make([]byte, 16)
	data := make([]byte, 8)
	require.Len(t, DesEncrypt3(key, data), 24)
}
