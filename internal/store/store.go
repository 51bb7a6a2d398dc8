package store

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store wraps the single *gorm.DB connection radiusd keeps open against its
// SQLite file, the way the teacher's database package wraps one shared
// Postgres pool. Every exported method is a self-contained transaction or
// single statement — callers never reach for the underlying *gorm.DB.
type Store struct {
	db  *gorm.DB
	log *logrus.Logger
}

// Open connects to the SQLite file at path, enables WAL journaling so
// readers (the admin API) and the single RADIUS writer don't block each
// other, runs AutoMigrate, and seeds a default admin, profile, and NAS
// client on first boot.
func Open(path string, log *logrus.Logger, adminUsername, adminPassword, defaultSecret string) (*Store, error) {
	gormLog := gormlogger.New(
		&logrusWriter{log: log},
		gormlogger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      gormlogger.Warn,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		return nil, fmt.Errorf("enable WAL journaling: %w", err)
	}
	if err := db.Exec("PRAGMA foreign_keys=ON").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &NAS{}, &Profile{}, &Session{}, &AccountingRecord{}, &Admin{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	s := &Store{db: db, log: log}
	if err := s.seed(adminUsername, adminPassword, defaultSecret); err != nil {
		return nil, fmt.Errorf("seed database: %w", err)
	}
	return s, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// seed creates a default profile named "default", a default admin account,
// and a default NAS client the first time radiusd boots against an empty
// database, so a fresh install has a shared secret to point a test NAS at.
func (s *Store) seed(adminUsername, adminPassword, defaultSecret string) error {
	var profileCount int64
	if err := s.db.Model(&Profile{}).Where("name = ?", "default").Count(&profileCount).Error; err != nil {
		return err
	}
	if profileCount == 0 {
		if err := s.db.Create(&Profile{Name: "default"}).Error; err != nil {
			return fmt.Errorf("seed default profile: %w", err)
		}
		s.log.Info("seeded default profile")
	}

	var adminCount int64
	if err := s.db.Model(&Admin{}).Count(&adminCount).Error; err != nil {
		return err
	}
	if adminCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash default admin password: %w", err)
		}
		if err := s.db.Create(&Admin{Username: adminUsername, PasswordHash: string(hash), IsActive: true}).Error; err != nil {
			return fmt.Errorf("seed default admin: %w", err)
		}
		s.log.WithField("username", adminUsername).Info("seeded default admin account")
	}

	var nasCount int64
	if err := s.db.Model(&NAS{}).Count(&nasCount).Error; err != nil {
		return err
	}
	if nasCount == 0 {
		nas := &NAS{
			IPAddress: "127.0.0.1",
			Secret:    defaultSecret,
			Name:      "default",
			IsActive:  true,
		}
		if err := s.db.Create(nas).Error; err != nil {
			return fmt.Errorf("seed default NAS client: %w", err)
		}
		s.log.WithField("ip_address", nas.IPAddress).Info("seeded default NAS client")
	}
	return nil
}

// logrusWriter adapts a *logrus.Logger to gorm's logger.Writer interface.
type logrusWriter struct {
	log *logrus.Logger
}

func (w *logrusWriter) Printf(format string, args ...interface{}) {
	w.log.Debugf(format, args...)
}
