package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/flagx"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

// JsonConfig is the DTO for JSON configuration files. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Zero values leave the current setting untouched.
type JsonConfig struct {
	HTTPAddr              string         `json:"http_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	DataKeyPassphrase     string         `json:"data_key_passphrase"`
	DataKeySalt           string         `json:"data_key_salt"`
	SessionTTL            timex.Duration `json:"session_ttl"`
	MFAChallengeTTL       timex.Duration `json:"mfa_challenge_ttl"`
	PasswordChangeTTL     timex.Duration `json:"password_change_ttl"`
	TrustedDeviceTTL      timex.Duration `json:"trusted_device_ttl"`
	PasswordMaxAge        timex.Duration `json:"password_max_age"`
	PasswordExpiryWarning timex.Duration `json:"password_expiry_warning"`
	LockoutMaxAttempts    int            `json:"lockout_max_attempts"`
	LockoutWindow         timex.Duration `json:"lockout_window"`
	LockoutDuration       timex.Duration `json:"lockout_duration"`
	OvertimeWeeklyHours   float64        `json:"overtime_weekly_hours"`
	OvertimeMultiplier    float64        `json:"overtime_multiplier"`
	VacationAccrualRate   float64        `json:"vacation_accrual_rate"`
	PayrollReferencePay   string         `json:"payroll_reference_pay_date"`
	TOTPIssuer            string         `json:"totp_issuer"`
	CompanyEmailDomain    string         `json:"company_email_domain"`
	AdminUsername         string         `json:"admin_username"`
	AdminPassword         string         `json:"admin_password"`
	AdminEmail            string         `json:"admin_email"`
	CORSAllowedOrigins    []string       `json:"cors_allowed_origins"`
	CookieSecure          *bool          `json:"cookie_secure"`
	TrustedProxies        []string       `json:"trusted_proxies"`
	LogLevel              string         `json:"log_level"`
	LogBackend            string         `json:"log_backend"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	CleanupInterval       timex.Duration `json:"cleanup_interval"`
}

// parseJson loads the file named by -c/-config, if any, over config.
func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFileFlag(args)

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", jsonConfigFile, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.DataKeyPassphrase, c.DataKeyPassphrase)
	setString(&config.DataKeySalt, c.DataKeySalt)
	setDuration(&config.SessionTTL, c.SessionTTL)
	setDuration(&config.MFAChallengeTTL, c.MFAChallengeTTL)
	setDuration(&config.PasswordChangeTTL, c.PasswordChangeTTL)
	setDuration(&config.TrustedDeviceTTL, c.TrustedDeviceTTL)
	setDuration(&config.PasswordMaxAge, c.PasswordMaxAge)
	setDuration(&config.PasswordExpiryWarning, c.PasswordExpiryWarning)
	if c.LockoutMaxAttempts != 0 {
		config.LockoutMaxAttempts = c.LockoutMaxAttempts
	}
	setDuration(&config.LockoutWindow, c.LockoutWindow)
	setDuration(&config.LockoutDuration, c.LockoutDuration)
	setFloat(&config.OvertimeWeeklyHours, c.OvertimeWeeklyHours)
	setFloat(&config.OvertimeMultiplier, c.OvertimeMultiplier)
	setFloat(&config.VacationAccrualRate, c.VacationAccrualRate)
	setString(&config.PayrollReferencePayDate, c.PayrollReferencePay)
	setString(&config.TOTPIssuer, c.TOTPIssuer)
	setString(&config.CompanyEmailDomain, c.CompanyEmailDomain)
	setString(&config.AdminUsername, c.AdminUsername)
	setString(&config.AdminPassword, c.AdminPassword)
	setString(&config.AdminEmail, c.AdminEmail)
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if len(c.TrustedProxies) > 0 {
		config.TrustedProxies = c.TrustedProxies
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.CleanupInterval, c.CleanupInterval)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
