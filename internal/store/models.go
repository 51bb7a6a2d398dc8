// Package store owns every persisted row radiusd touches: users, NAS
// clients, profiles, sessions, the accounting log, and admin accounts. It
// is the only package that imports gorm — handlers borrow read-only
// values back from it and route every mutation through its methods, each
// atomic per call, mirroring the teacher's database package split between
// models and a single shared *gorm.DB handle.
package store

import "time"

// User is a RADIUS end-user: the credential material and profile
// assignment spec.md §3 describes. Password is kept in cleartext because
// PAP, CHAP and MS-CHAPv2 verification compare against it — see DESIGN.md
// and SPEC_FULL.md §9. NTHash is recomputed by the store whenever Password
// is set; only MS-CHAP verification reads it, so a user with an empty
// Password can authenticate through MS-CHAP and no other method.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Password    string     `gorm:"size:128" json:"-"`
	NTHash      []byte     `gorm:"size:16" json:"-"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	ProfileName string     `gorm:"size:64;default:default" json:"profile_name"`
	ExpiresAt   *time.Time `json:"expires_at"`
	MACAddress  string     `gorm:"size:32" json:"mac_address"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "radius_users" }

// IsExpired reports whether the user's expiry timestamp has passed.
func (u *User) IsExpired() bool {
	return u.ExpiresAt != nil && u.ExpiresAt.Before(time.Now())
}

// NAS is a Network Access Server client: the shared secret and active flag
// that gate whether radiusd will even decode a datagram from its IP.
type NAS struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	IPAddress     string    `gorm:"uniqueIndex;size:45;not null" json:"ip_address"`
	Secret        string    `gorm:"size:128;not null" json:"-"`
	Name          string    `gorm:"size:100" json:"name"`
	VendorType    string    `gorm:"size:32;default:mikrotik" json:"vendor_type"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	AllowedRealms string    `gorm:"size:500" json:"allowed_realms"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (NAS) TableName() string { return "nas_clients" }

// Profile groups the optional reply attributes applied on Access-Accept: a
// vendor-formatted rate limit and session/idle timeouts. A User referencing
// a profile that no longer exists simply gets no extra attributes — a
// dangling reference is tolerated, not an error.
type Profile struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	RateLimit          string    `gorm:"size:128" json:"rate_limit"`
	SessionTimeoutSecs *int      `json:"session_timeout_seconds"`
	IdleTimeoutSecs    *int      `json:"idle_timeout_seconds"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// Session is a live or terminated accounting session, keyed by the NAS's
// own Acct-Session-Id. StopTime is nil while the session is active.
type Session struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	SessionID          string     `gorm:"uniqueIndex;size:100;not null" json:"session_id"`
	Username           string     `gorm:"size:64;index;not null" json:"username"`
	NASIPAddress       string     `gorm:"size:45;index" json:"nas_ip_address"`
	FramedIP           string     `gorm:"size:45" json:"framed_ip"`
	MACAddress         string     `gorm:"size:32" json:"mac_address"`
	StartTime          time.Time  `json:"start_time"`
	UpdateTime         time.Time  `json:"update_time"`
	StopTime           *time.Time `json:"stop_time"`
	SessionTimeSeconds int64      `gorm:"default:0" json:"session_time_seconds"`
	InputOctets        int64      `gorm:"default:0" json:"input_octets"`
	OutputOctets       int64      `gorm:"default:0" json:"output_octets"`
	TerminateCause     string     `gorm:"size:64" json:"terminate_cause"`
}

func (Session) TableName() string { return "sessions" }

// IsActive reports whether the session has not yet received a Stop.
func (s *Session) IsActive() bool { return s.StopTime == nil }

// AccountingRecord is one append-only row logged for every
// Accounting-Request, regardless of status type, retained for statistics.
type AccountingRecord struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	StatusType         int       `json:"status_type"`
	SessionID          string    `gorm:"size:100;index" json:"session_id"`
	Username           string    `gorm:"size:64;index" json:"username"`
	NASIPAddress       string    `gorm:"size:45" json:"nas_ip_address"`
	FramedIP           string    `gorm:"size:45" json:"framed_ip"`
	InputOctets        int64     `json:"input_octets"`
	OutputOctets       int64     `json:"output_octets"`
	SessionTimeSeconds int64     `json:"session_time_seconds"`
	RecordedAt         time.Time `gorm:"index" json:"recorded_at"`
}

func (AccountingRecord) TableName() string { return "accounting_records" }

// Admin is an operator account for the HTTP management API. It never
// participates in the RADIUS wire protocol.
type Admin struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	TOTPSecret   string     `gorm:"size:64" json:"-"`
	TOTPEnabled  bool       `gorm:"default:false" json:"totp_enabled"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Admin) TableName() string { return "admins" }
