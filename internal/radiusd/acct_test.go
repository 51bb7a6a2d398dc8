package radiusd

import (
	"testing"

	"github.com/stretchr/testify/require"
	"layeh.com/radius"
	"layeh.com/radius/rfc2865"
	"layeh.com/radius/rfc2866"
	"layeh.com/radius/rfc2869"
)

func TestHandleAcctStartThenStopReconstructsGigawords(t *testing.T) {
	srv, st := newTestServer(t)

	start := radius.New(radius.CodeAccountingRequest, []byte(testSecret))
	rfc2865.UserName_SetString(start, "alice")
	rfc2866.AcctSessionID_SetString(start, "S1")
	rfc2866.AcctStatusType_Set(start, rfc2866.AcctStatusType_Value_Start)

	w := &recordingWriter{}
	srv.handleAcct(w, newRequest(start, "10.0.0.1"))
	require.NotNil(t, w.packet)
	require.Equal(t, radius.CodeAccountingResponse, w.packet.Code)

	active, err := st.ListActiveSessions()
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "S1", active[0].SessionID)

	stop := radius.New(radius.CodeAccountingRequest, []byte(testSecret))
	rfc2865.UserName_SetString(stop, "alice")
	rfc2866.AcctSessionID_SetString(stop, "S1")
	rfc2866.AcctStatusType_Set(stop, rfc2866.AcctStatusType_Value_Stop)
	rfc2866.AcctSessionTime_Set(stop, rfc2866.AcctSessionTime(120))
	rfc2866.AcctInputOctets_Set(stop, rfc2866.AcctInputOctets(1000))
	rfc2869.AcctInputGigawords_Set(stop, rfc2869.AcctInputGigawords(1))

	w2 := &recordingWriter{}
	srv.handleAcct(w2, newRequest(stop, "10.0.0.1"))
	require.NotNil(t, w2.packet)
	require.Equal(t, radius.CodeAccountingResponse, w2.packet.Code)

	active, err = st.ListActiveSessions()
	require.NoError(t, err)
	require.Empty(t, active)

	sessions, _, err := st.ListSessions(0, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, int64(4294968296), sessions[0].InputOctets)
	require.NotNil(t, sessions[0].StopTime)
}

func TestHandleAcctInterimWithoutStartCreatesSession(t *testing.T) {
	srv, st := newTestServer(t)

	interim := radius.New(radius.CodeAccountingRequest, []byte(testSecret))
	rfc2865.UserName_SetString(interim, "bob")
	rfc2866.AcctSessionID_SetString(interim, "S2")
	rfc2866.AcctStatusType_Set(interim, rfc2866.AcctStatusType_Value_InterimUpdate)
	rfc2866.AcctSessionTime_Set(interim, rfc2866.AcctSessionTime(60))

	w := &recordingWriter{}
	srv.handleAcct(w, newRequest(interim, "10.0.0.1"))
	require.NotNil(t, w.packet)

	active, err := st.ListActiveSessions()
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "S2", active[0].SessionID)
}

func TestHandleAcctAlwaysAppendsAccountingRecord(t *testing.T) {
	srv, st := newTestServer(t)

	req := radius.New(radius.CodeAccountingRequest, []byte(testSecret))
	rfc2865.UserName_SetString(req, "carol")
	rfc2866.AcctSessionID_SetString(req, "S3")
	rfc2866.AcctStatusType_Set(req, rfc2866.AcctStatusType_Value_Start)

	w := &recordingWriter{}
	srv.handleAcct(w, newRequest(req, "10.0.0.1"))
	require.NotNil(t, w.packet)

	_, total, err := st.ListAccountingRecords(0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}
