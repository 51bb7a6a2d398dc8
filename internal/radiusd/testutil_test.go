package radiusd

import (
	"net"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"layeh.com/radius"

	"github.com/proisp/radiusd/internal/store"
)

// recordingWriter captures the single packet a handler writes back, or nil
// if the handler silently discarded the request.
type recordingWriter struct {
	packet *radius.Packet
}

func (w *recordingWriter) Write(p *radius.Packet) error {
	w.packet = p
	return nil
}

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	st, err := store.Open("file::memory:?cache=shared", log, "admin", "admin123", "testsecret")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return NewServer(1812, 1813, st, nil, log), st
}

func newRequest(p *radius.Packet, nasIP string) *radius.Request {
	return &radius.Request{
		Packet:     p,
		RemoteAddr: &net.UDPAddr{IP: net.ParseIP(nasIP), Port: 32768},
	}
}
