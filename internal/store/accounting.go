package store

// AppendAccountingRecord logs one Accounting-Request as an immutable row,
// independent of session tracking, so statistics survive even a session
// table that gets pruned. Called for every status type, including ones
// StopSession/UpdateSessionInterim already handled.
func (s *Store) AppendAccountingRecord(r *AccountingRecord) error {
	return s.db.Create(r).Error
}

// ListAccountingRecords returns accounting log rows ordered most-recent
// first, paginated, for the admin API.
func (s *Store) ListAccountingRecords(offset, limit int) ([]AccountingRecord, int64, error) {
	var records []AccountingRecord
	var total int64
	if err := s.db.Model(&AccountingRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := s.db.Order("recorded_at desc").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
