package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/proisp/radiusd/internal/radiusproto"
)

// ErrNotFound is returned by single-row lookups when nothing matches.
var ErrNotFound = errors.New("store: not found")

// GetUserByUsername looks up a user by exact username, the realm-stripped
// form radiusd's auth path passes in.
func (s *Store) GetUserByUsername(username string) (*User, error) {
	var u User
	err := s.db.Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns up to limit users starting at offset, ordered by
// username, for the admin API's paginated listing. When search is
// non-empty it is matched against username as a SQL LIKE substring before
// paging, so Total and the page window both reflect the filtered set.
func (s *Store) ListUsers(offset, limit int, search string) ([]User, int64, error) {
	applyFilter := func(db *gorm.DB) *gorm.DB {
		if search != "" {
			db = db.Where("username LIKE ?", "%"+search+"%")
		}
		return db
	}

	var total int64
	if err := applyFilter(s.db.Model(&User{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	if err := applyFilter(s.db.Model(&User{})).Order("username").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CreateUser inserts a new user, deriving NTHash from Password when one is
// supplied so MS-CHAP verification can use the stored hash.
func (s *Store) CreateUser(u *User) error {
	if u.Password != "" {
		u.NTHash = radiusproto.NTHash(u.Password)
	}
	if u.ProfileName == "" {
		u.ProfileName = "default"
	}
	if err := s.db.Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateUser applies a partial update by username. An empty Password field
// leaves the stored password and NT-Hash untouched.
func (s *Store) UpdateUser(username string, fields map[string]interface{}) error {
	if pw, ok := fields["password"]; ok {
		if pwStr, ok := pw.(string); ok && pwStr != "" {
			fields["nt_hash"] = radiusproto.NTHash(pwStr)
		} else {
			delete(fields, "password")
		}
	}
	res := s.db.Model(&User{}).Where("username = ?", username).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user by username.
func (s *Store) DeleteUser(username string) error {
	res := s.db.Where("username = ?", username).Delete(&User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveMAC sticky-binds a user's first-seen Calling-Station-Id so later
// requests from a different MAC can be rejected, mirroring the teacher's
// anti-sharing MAC check but scoped to a single optional field instead of a
// whole concurrent-session subsystem.
func (s *Store) SaveMAC(username, mac string) error {
	return s.db.Model(&User{}).Where("username = ? AND mac_address = ''", username).
		Update("mac_address", mac).Error
}
