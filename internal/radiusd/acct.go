package radiusd

import (
	"fmt"
	"time"

	"layeh.com/radius"
	"layeh.com/radius/rfc2865"
	"layeh.com/radius/rfc2866"
	"layeh.com/radius/rfc2869"

	"github.com/proisp/radiusd/internal/radiusproto"
	"github.com/proisp/radiusd/internal/store"
)

// handleAcct dispatches an Accounting-Request on Acct-Status-Type,
// updates the session store, appends one row to the accounting log
// regardless of status type, and always acknowledges with an
// Accounting-Response so a slow or unknown user never makes the NAS
// retransmit indefinitely.
func (s *Server) handleAcct(w radius.ResponseWriter, r *radius.Request) {
	username := rfc2865.UserName_GetString(r.Packet)
	sessionID := rfc2866.AcctSessionID_GetString(r.Packet)
	nasIP := rfc2865.NASIPAddress_Get(r.Packet).String()
	framedIP := rfc2865.FramedIPAddress_Get(r.Packet).String()
	statusType := rfc2866.AcctStatusType_Get(r.Packet)

	sessionTime := int64(rfc2866.AcctSessionTime_Get(r.Packet))
	inputOctets := totalBytes(uint32(rfc2866.AcctInputOctets_Get(r.Packet)), uint32(rfc2869.AcctInputGigawords_Get(r.Packet)))
	outputOctets := totalBytes(uint32(rfc2866.AcctOutputOctets_Get(r.Packet)), uint32(rfc2869.AcctOutputGigawords_Get(r.Packet)))

	logf := s.log.WithFields(map[string]interface{}{
		"component":  "radiusd.acct",
		"username":   username,
		"session_id": sessionID,
		"nas":        nasIP,
		"status":     int(statusType),
	})

	now := time.Now()

	switch statusType {
	case rfc2866.AcctStatusType_Value_Start:
		err := s.store.StartSession(&store.Session{
			SessionID:    sessionID,
			Username:     username,
			NASIPAddress: nasIP,
			FramedIP:     framedIP,
			MACAddress:   rfc2865.CallingStationID_GetString(r.Packet),
			StartTime:    now,
			UpdateTime:   now,
		})
		if err != nil {
			logf.WithError(err).Error("failed to record session start")
		}

	case rfc2866.AcctStatusType_Value_Stop:
		cause := "User-Request"
		if raw := radiusproto.GetAttr(r.Packet, 49); raw != nil {
			cause = fmt.Sprintf("%d", rfc2866.AcctTerminateCause_Get(r.Packet))
		}
		err := s.store.StopSession(sessionID, username, nasIP, framedIP, cause, now, inputOctets, outputOctets, sessionTime)
		if err != nil {
			logf.WithError(err).Error("failed to record session stop")
		}

	case rfc2866.AcctStatusType_Value_InterimUpdate:
		err := s.store.UpdateSessionInterim(sessionID, username, nasIP, framedIP, now, inputOctets, outputOctets, sessionTime)
		if err != nil {
			logf.WithError(err).Error("failed to record interim update")
		}

	default:
		logf.Info("acct request with unhandled status type, acknowledging")
	}

	if err := s.store.AppendAccountingRecord(&store.AccountingRecord{
		StatusType:         int(statusType),
		SessionID:          sessionID,
		Username:           username,
		NASIPAddress:       nasIP,
		FramedIP:           framedIP,
		InputOctets:        inputOctets,
		OutputOctets:       outputOctets,
		SessionTimeSeconds: sessionTime,
		RecordedAt:         now,
	}); err != nil {
		logf.WithError(err).Error("failed to append accounting record")
	}

	w.Write(r.Response(radius.CodeAccountingResponse))
}

// totalBytes reconstructs a 64-bit logical byte count from a 32-bit octet
// counter and its gigaword overflow counter.
func totalBytes(octets, gigawords uint32) int64 {
	return int64(octets) + int64(gigawords)<<32
}
