package store

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	s, err := Open("file::memory:?cache=shared", log, "admin", "admin123", "testsecret")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenSeedsDefaultAdminAndProfile(t *testing.T) {
	s := newTestStore(t)

	admin, err := s.GetAdminByUsername("admin")
	require.NoError(t, err)
	require.True(t, admin.IsActive)

	profile, err := s.GetProfileByName("default")
	require.NoError(t, err)
	require.Equal(t, "default", profile.Name)
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)

	err := s.CreateUser(&User{Username: "alice", Password: "hunter2", IsActive: true})
	require.NoError(t, err)

	u, err := s.GetUserByUsername("alice")
	require.NoError(t, err)
	require.Equal(t, "default", u.ProfileName)
	require.Len(t, u.NTHash, 16)

	_, err = s.GetUserByUsername("nobody")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUserPreservesPasswordWhenOmitted(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateUser(&User{Username: "bob", Password: "initial"}))

	err := s.UpdateUser("bob", map[string]interface{}{"is_active": false})
	require.NoError(t, err)

	u, err := s.GetUserByUsername("bob")
	require.NoError(t, err)
	require.False(t, u.IsActive)
	require.Len(t, u.NTHash, 16)
}

func TestSessionLifecycleOutOfOrderAndDuplicateStop(t *testing.T) {
	s := newTestStore(t)
	now := time.Unix(1000000, 0)

	require.NoError(t, s.StartSession(&Session{
		SessionID: "sess-1", Username: "alice", NASIPAddress: "10.0.0.1",
		StartTime: now, UpdateTime: now,
	}))

	require.NoError(t, s.UpdateSessionInterim("sess-1", "alice", "10.0.0.1", "192.168.1.5", now.Add(time.Minute), 1000, 2000, 60))

	active, err := s.ListActiveSessions()
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, int64(1000), active[0].InputOctets)

	// Interim-Update arriving before any Start for a second session.
	require.NoError(t, s.UpdateSessionInterim("sess-2", "bob", "10.0.0.1", "192.168.1.6", now, 50, 50, 10))

	stopTime := now.Add(2 * time.Minute)
	require.NoError(t, s.StopSession("sess-1", "alice", "10.0.0.1", "192.168.1.5", "User-Request", stopTime, 5000, 6000, 120))

	// Duplicate Stop must not error.
	require.NoError(t, s.StopSession("sess-1", "alice", "10.0.0.1", "192.168.1.5", "User-Request", stopTime, 5000, 6000, 120))

	active, err = s.ListActiveSessions()
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "sess-2", active[0].SessionID)
}

func TestListUsersSearchFiltersBeforePaging(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateUser(&User{Username: "alice"}))
	require.NoError(t, s.CreateUser(&User{Username: "alicia"}))
	require.NoError(t, s.CreateUser(&User{Username: "bob"}))

	users, total, err := s.ListUsers(0, 25, "ali")
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, users, 2)

	users, total, err = s.ListUsers(0, 1, "ali")
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, users, 1)
}

func TestStartSessionRestartClearsStopTime(t *testing.T) {
	s := newTestStore(t)
	now := time.Unix(2000000, 0)

	require.NoError(t, s.StartSession(&Session{
		SessionID: "sess-3", Username: "carol", NASIPAddress: "10.0.0.1",
		StartTime: now, UpdateTime: now,
	}))
	require.NoError(t, s.StopSession("sess-3", "carol", "10.0.0.1", "", "User-Request", now.Add(time.Minute), 0, 0, 60))

	sessions, _, err := s.ListSessions(0, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].StopTime)

	restart := now.Add(2 * time.Minute)
	require.NoError(t, s.StartSession(&Session{
		SessionID: "sess-3", Username: "carol", NASIPAddress: "10.0.0.1",
		StartTime: restart, UpdateTime: restart,
	}))

	sessions, _, err = s.ListSessions(0, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Nil(t, sessions[0].StopTime)
	require.Empty(t, sessions[0].TerminateCause)
	require.Equal(t, restart.Unix(), sessions[0].StartTime.Unix())
}

func TestNASLookupBySourceIP(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateNAS(&NAS{IPAddress: "10.1.1.1", Secret: "topsecret", IsActive: true}))

	n, err := s.GetNASBySourceIP("10.1.1.1")
	require.NoError(t, err)
	require.Equal(t, "topsecret", n.Secret)

	_, err = s.GetNASBySourceIP("10.1.1.2")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDashboardCounters(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateUser(&User{Username: "alice", IsActive: true}))
	require.NoError(t, s.CreateNAS(&NAS{IPAddress: "10.1.1.1", Secret: "s", IsActive: true}))

	now := time.Unix(3000000, 0)
	require.NoError(t, s.StartSession(&Session{
		SessionID: "sess-a", Username: "alice", NASIPAddress: "10.1.1.1",
		StartTime: now, UpdateTime: now,
	}))
	require.NoError(t, s.StartSession(&Session{
		SessionID: "sess-b", Username: "alice", NASIPAddress: "10.1.1.1",
		StartTime: now, UpdateTime: now,
	}))

	st, err := s.Dashboard()
	require.NoError(t, err)
	require.Equal(t, int64(1), st.TotalUsers)
	// +1 for the default NAS client seeded on Open.
	require.Equal(t, int64(2), st.TotalNAS)
	require.Equal(t, int64(2), st.SessionsByNAS["10.1.1.1"])
}
