package store

import "time"

// Stats is the set of counters the admin API's dashboard endpoint reports.
type Stats struct {
	TotalUsers        int64 `json:"total_users"`
	ActiveUsers       int64 `json:"active_users"`
	TotalNAS          int64 `json:"total_nas"`
	ActiveSessions    int64 `json:"active_sessions"`
	AccountingRows    int64 `json:"accounting_rows"`
	TodayInputOctets  int64 `json:"today_input_octets"`
	TodayOutputOctets int64 `json:"today_output_octets"`

	// SessionsByNAS is each NAS's count of currently-online sessions,
	// keyed by IP address, mirroring the teacher's Nas.ActiveSessions field.
	SessionsByNAS map[string]int64 `json:"sessions_by_nas"`
}

// nasSessionCount is the GROUP BY row Dashboard scans SessionsByNAS from.
type nasSessionCount struct {
	NASIPAddress string
	Count        int64
}

// Dashboard gathers the counters backing the admin API's overview screen.
func (s *Store) Dashboard() (*Stats, error) {
	var st Stats
	if err := s.db.Model(&User{}).Count(&st.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&User{}).Where("is_active = ?", true).Count(&st.ActiveUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&NAS{}).Count(&st.TotalNAS).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&Session{}).Where("stop_time IS NULL").Count(&st.ActiveSessions).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&AccountingRecord{}).Count(&st.AccountingRows).Error; err != nil {
		return nil, err
	}

	today := time.Now().Format("2006-01-02")
	var todayRecords []AccountingRecord
	if err := s.db.Model(&AccountingRecord{}).
		Where("date(recorded_at) = ?", today).
		Find(&todayRecords).Error; err != nil {
		return nil, err
	}
	for _, r := range todayRecords {
		st.TodayInputOctets += r.InputOctets
		st.TodayOutputOctets += r.OutputOctets
	}

	var counts []nasSessionCount
	if err := s.db.Model(&Session{}).
		Select("nas_ip_address, count(*) as count").
		Where("stop_time IS NULL").
		Group("nas_ip_address").
		Find(&counts).Error; err != nil {
		return nil, err
	}
	st.SessionsByNAS = make(map[string]int64, len(counts))
	for _, c := range counts {
		st.SessionsByNAS[c.NASIPAddress] = c.Count
	}

	return &st, nil
}
