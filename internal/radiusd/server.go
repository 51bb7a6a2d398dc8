// Package radiusd is the RADIUS packet engine: two UDP listeners, NAS
// secret dispatch, the authentication state machine, and accounting
// handling. It is the direct descendant of the teacher's internal/radius
// package, generalized from one ISP's subscriber model to the plain
// user/profile/session model internal/store defines.
package radiusd

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"layeh.com/radius"

	"github.com/proisp/radiusd/internal/cache"
	"github.com/proisp/radiusd/internal/store"
)

// nasSecretTTL bounds how long a NAS's shared secret is trusted from cache
// before GetSecret falls back to the store again.
const nasSecretTTL = 5 * time.Minute

// cachedNASSecret is the value Cache.Get/Set (de)serializes for a NAS
// lookup, keyed "nas:<ip>" — the same key InvalidateNAS deletes.
type cachedNASSecret struct {
	Secret string `json:"secret"`
}

// Server owns the two RADIUS UDP listeners and every dependency the auth
// and accounting handlers need.
type Server struct {
	authAddr string
	acctAddr string

	store *store.Store
	cache *cache.Cache
	log   *logrus.Logger

	authServer *radius.PacketServer
	acctServer *radius.PacketServer
}

// NewServer builds a Server bound to the given ports. It does not start
// listening until Start is called.
func NewServer(authPort, acctPort int, st *store.Store, ch *cache.Cache, log *logrus.Logger) *Server {
	return &Server{
		authAddr: fmt.Sprintf(":%d", authPort),
		acctAddr: fmt.Sprintf(":%d", acctPort),
		store:    st,
		cache:    ch,
		log:      log,
	}
}

// GetSecret resolves the shared secret for the NAS at remoteAddr. An
// unknown or inactive NAS returns an error, which layeh.com/radius treats
// as silent-discard: no Access-Reject is sent to an unrecognized source,
// avoiding amplification per RFC 2865 §3. A cache hit avoids a store round
// trip per datagram. Entries expire after nasSecretTTL; InvalidateNAS drops
// one earlier only when an admin-side NAS update carries its ip_address.
func (s *Server) GetSecret(remoteAddr net.Addr) ([]byte, error) {
	host, _, err := net.SplitHostPort(remoteAddr.String())
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	cacheKey := "nas:" + host

	var cached cachedNASSecret
	if s.cache.Get(ctx, cacheKey, &cached) {
		return []byte(cached.Secret), nil
	}

	nas, err := s.store.GetNASBySourceIP(host)
	if err != nil {
		return nil, fmt.Errorf("unknown NAS: %s", host)
	}

	s.cache.Set(ctx, cacheKey, cachedNASSecret{Secret: nas.Secret}, nasSecretTTL)
	return []byte(nas.Secret), nil
}

// secretSource adapts Server to layeh.com/radius's SecretSource interface.
type secretSource struct {
	server *Server
}

func (ss secretSource) RADIUSSecret(_ context.Context, remoteAddr net.Addr) ([]byte, error) {
	return ss.server.GetSecret(remoteAddr)
}

// Start launches the auth and accounting UDP listeners in background
// goroutines and returns immediately. Listener errors after a successful
// bind are logged, not returned — ListenAndServe only returns once the
// listener is closed.
func (s *Server) Start() error {
	secrets := secretSource{server: s}

	s.authServer = &radius.PacketServer{
		Addr:         s.authAddr,
		Network:      "udp",
		SecretSource: secrets,
		Handler:      radius.HandlerFunc(s.handleAuth),
	}
	s.acctServer = &radius.PacketServer{
		Addr:         s.acctAddr,
		Network:      "udp",
		SecretSource: secrets,
		Handler:      radius.HandlerFunc(s.handleAcct),
	}

	authReady := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.authAddr).Info("starting RADIUS auth listener")
		authReady <- s.authServer.ListenAndServe()
	}()

	acctReady := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.acctAddr).Info("starting RADIUS acct listener")
		acctReady <- s.acctServer.ListenAndServe()
	}()

	// Give both listeners up to 100ms to fail fast on a bind error before
	// Start returns, so cmd/radiusd can treat it as a fatal init error.
	select {
	case err := <-authReady:
		if err != nil {
			return fmt.Errorf("auth listener: %w", err)
		}
	case err := <-acctReady:
		if err != nil {
			return fmt.Errorf("acct listener: %w", err)
		}
	case <-time.After(100 * time.Millisecond):
	}

	go func() {
		if err := <-authReady; err != nil {
			s.log.WithError(err).Error("auth listener stopped")
		}
	}()
	go func() {
		if err := <-acctReady; err != nil {
			s.log.WithError(err).Error("acct listener stopped")
		}
	}()

	return nil
}

// Shutdown stops accepting new datagrams and waits for ctx's deadline for
// in-flight handlers to finish, mirroring the teacher's cooperative
// goroutine-stop pattern but expressed through layeh.com/radius's own
// Shutdown method.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.authServer != nil {
		if e := s.authServer.Shutdown(ctx); e != nil {
			err = e
		}
	}
	if s.acctServer != nil {
		if e := s.acctServer.Shutdown(ctx); e != nil {
			err = e
		}
	}
	return err
}
