// Package models holds the plain data types persisted by repositories and
// exchanged between services and the HTTP layer.
package models

import "time"

type User struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	FullName           string     `json:"full_name"`
	PasswordHash       string     `json:"-"`
	Role               string     `json:"role"`
	EmployeeID         *string    `json:"employee_id,omitempty"`
	IsActive           bool       `json:"is_active"`
	MustChangePassword bool       `json:"must_change_password"`
	PasswordChangedAt  time.Time  `json:"password_changed_at"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Session is a server-side login session. Only the SHA-256 of the bearer
// token is stored.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	TokenHash    string    `json:"-"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActivity time.Time `json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
}

// MFASettings stores the encrypted TOTP secret and hashed backup codes.
type MFASettings struct {
	UserID          string     `json:"user_id"`
	SecretEncrypted []byte     `json:"-"`
	Enabled         bool       `json:"enabled"`
	BackupCodes     []string   `json:"-"`
	EnabledAt       *time.Time `json:"enabled_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type TrustedDevice struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	FingerprintHash string    `json:"-"`
	Name            string    `json:"name"`
	IPAddress       string    `json:"ip_address"`
	ExpiresAt       time.Time `json:"expires_at"`
	LastUsedAt      time.Time `json:"last_used_at"`
	CreatedAt       time.Time `json:"created_at"`
}
