package store

import (
	"time"

	"gorm.io/gorm/clause"
)

// StartSession records an Accounting-Request Start. If a session with the
// same SessionID already exists — a duplicate Start, an Interim-Update that
// raced ahead of it, or a NAS restarting a session_id it had previously
// stopped — its fields are refreshed instead of erroring, per SPEC_FULL.md
// §5's tolerance for out-of-order accounting delivery. A restart clears
// stop_time and terminate_cause so the session reads as active again,
// per spec.md §3.
func (s *Store) StartSession(sess *Session) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "nas_ip_address", "framed_ip", "mac_address", "start_time", "update_time", "stop_time", "terminate_cause"}),
	}).Create(sess).Error
}

// UpdateSessionInterim applies an Interim-Update's counters to an existing
// session row. If no row exists yet — the Start datagram was lost or is
// still in flight — a new row is created from the update itself so the
// session is never silently dropped.
func (s *Store) UpdateSessionInterim(sessionID, username, nasIP, framedIP string, updateTime time.Time, inputOctets, outputOctets, sessionTimeSecs int64) error {
	res := s.db.Model(&Session{}).Where("session_id = ?", sessionID).Updates(map[string]interface{}{
		"update_time":          updateTime,
		"input_octets":         inputOctets,
		"output_octets":        outputOctets,
		"session_time_seconds": sessionTimeSecs,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return s.db.Create(&Session{
		SessionID:          sessionID,
		Username:           username,
		NASIPAddress:       nasIP,
		FramedIP:           framedIP,
		StartTime:          updateTime,
		UpdateTime:         updateTime,
		InputOctets:        inputOctets,
		OutputOctets:       outputOctets,
		SessionTimeSeconds: sessionTimeSecs,
	}).Error
}

// StopSession closes out a session. Applying a Stop twice — a NAS retry
// after a lost Accounting-Response — is idempotent: the row is simply
// overwritten with the same terminal values.
func (s *Store) StopSession(sessionID, username, nasIP, framedIP, terminateCause string, stopTime time.Time, inputOctets, outputOctets, sessionTimeSecs int64) error {
	res := s.db.Model(&Session{}).Where("session_id = ?", sessionID).Updates(map[string]interface{}{
		"stop_time":            stopTime,
		"update_time":          stopTime,
		"input_octets":         inputOctets,
		"output_octets":        outputOctets,
		"session_time_seconds": sessionTimeSecs,
		"terminate_cause":      terminateCause,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return s.db.Create(&Session{
		SessionID:          sessionID,
		Username:           username,
		NASIPAddress:       nasIP,
		FramedIP:           framedIP,
		StartTime:          stopTime,
		UpdateTime:         stopTime,
		StopTime:           &stopTime,
		InputOctets:        inputOctets,
		OutputOctets:       outputOctets,
		SessionTimeSeconds: sessionTimeSecs,
		TerminateCause:     terminateCause,
	}).Error
}

// ListActiveSessions returns every session that has not yet received a
// Stop, for the admin API's live-sessions view.
func (s *Store) ListActiveSessions() ([]Session, error) {
	var sessions []Session
	if err := s.db.Where("stop_time IS NULL").Order("start_time desc").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListSessions returns sessions ordered most-recent-first, paginated, for
// the admin API's session history view.
func (s *Store) ListSessions(offset, limit int) ([]Session, int64, error) {
	var sessions []Session
	var total int64
	if err := s.db.Model(&Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := s.db.Order("start_time desc").Offset(offset).Limit(limit).Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}
