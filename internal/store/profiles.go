package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GetProfileByName looks up a profile, used to build Access-Accept reply
// attributes for a user's assigned profile name.
func (s *Store) GetProfileByName(name string) (*Profile, error) {
	var p Profile
	err := s.db.Where("name = ?", name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProfiles returns every profile for the admin API.
func (s *Store) ListProfiles() ([]Profile, error) {
	var profiles []Profile
	if err := s.db.Order("name").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// CreateProfile inserts a new profile.
func (s *Store) CreateProfile(p *Profile) error {
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}
