package store

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// GetAdminByUsername looks up an admin account for login.
func (s *Store) GetAdminByUsername(username string) (*Admin, error) {
	var a Admin
	err := s.db.Where("username = ?", username).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// TouchAdminLogin records a successful login timestamp.
func (s *Store) TouchAdminLogin(id uint) error {
	now := time.Now()
	return s.db.Model(&Admin{}).Where("id = ?", id).Update("last_login_at", &now).Error
}

// SetAdminTOTP stores a freshly enrolled TOTP secret, leaving it disabled
// until the caller confirms possession via SetAdminTOTPEnabled.
func (s *Store) SetAdminTOTP(id uint, secret string) error {
	return s.db.Model(&Admin{}).Where("id = ?", id).Update("totp_secret", secret).Error
}

// SetAdminTOTPEnabled flips whether an admin's login requires a TOTP code.
func (s *Store) SetAdminTOTPEnabled(id uint, enabled bool) error {
	return s.db.Model(&Admin{}).Where("id = ?", id).Update("totp_enabled", enabled).Error
}

// UpdateAdminPassword replaces an admin's stored password hash.
func (s *Store) UpdateAdminPassword(id uint, passwordHash string) error {
	return s.db.Model(&Admin{}).Where("id = ?", id).Update("password_hash", passwordHash).Error
}
