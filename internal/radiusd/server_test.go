package radiusd

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/proisp/radiusd/internal/store"
)

func TestGetSecretUnknownNASErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	_, err := srv.GetSecret(&net.UDPAddr{IP: net.ParseIP("10.0.0.99"), Port: 12345})
	require.Error(t, err)
}

func TestGetSecretKnownActiveNAS(t *testing.T) {
	srv, st := newTestServer(t)
	require.NoError(t, st.CreateNAS(&store.NAS{IPAddress: "10.0.0.1", Secret: "xyzzy", IsActive: true}))

	secret, err := srv.GetSecret(&net.UDPAddr{IP: net.ParseIP("10.0.0.1"), Port: 12345})
	require.NoError(t, err)
	require.Equal(t, "xyzzy", string(secret))
}

func TestGetSecretInactiveNASErrors(t *testing.T) {
	srv, st := newTestServer(t)
	require.NoError(t, st.CreateNAS(&store.NAS{IPAddress: "10.0.0.2", Secret: "xyzzy", IsActive: false}))

	_, err := srv.GetSecret(&net.UDPAddr{IP: net.ParseIP("10.0.0.2"), Port: 12345})
	require.Error(t, err)
}
