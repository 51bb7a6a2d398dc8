package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GetNASBySourceIP looks up an active NAS client by its source IP address,
// the only lookup key radiusd's SecretSource uses per SPEC_FULL.md §9.
func (s *Store) GetNASBySourceIP(ip string) (*NAS, error) {
	var n NAS
	err := s.db.Where("ip_address = ? AND is_active = ?", ip, true).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNAS returns every configured NAS client for the admin API.
func (s *Store) ListNAS() ([]NAS, error) {
	var clients []NAS
	if err := s.db.Order("ip_address").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// CreateNAS inserts a new NAS client.
func (s *Store) CreateNAS(n *NAS) error {
	// GORM replaces a false IsActive with the column default (true) on
	// insert, so an inactive client is written explicitly afterwards.
	active := n.IsActive
	if err := s.db.Create(n).Error; err != nil {
		return fmt.Errorf("create nas: %w", err)
	}
	if !active {
		if err := s.db.Model(n).Update("is_active", false).Error; err != nil {
			return fmt.Errorf("create nas: %w", err)
		}
		n.IsActive = false
	}
	return nil
}

// UpdateNAS applies a partial update keyed by ID.
func (s *Store) UpdateNAS(id uint, fields map[string]interface{}) error {
	res := s.db.Model(&NAS{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update nas: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteNAS removes a NAS client by ID.
func (s *Store) DeleteNAS(id uint) error {
	res := s.db.Delete(&NAS{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
