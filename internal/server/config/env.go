package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by parseEnv.
const EnvPrefix = "HRKEEPER_"

// defaultEnvFile is loaded when present and no -envfile flag is given.
const defaultEnvFile = ".env"

// parseEnv loads a dotenv file (values already present in the process
// environment win) and then overlays HRKEEPER_* variables onto config.
//
// Durations accept Go syntax ("8h"); lists are comma separated.
func parseEnv(config *Config, args []string) error {
	envFile := flagx.EnvFileFlag(args)
	explicit := envFile != ""
	if !explicit {
		envFile = defaultEnvFile
	}

	if err := godotenv.Load(envFile); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	num := func(name string, dst *float64) {
		if v, ok := lookup(name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}

	str("HTTP_ADDR", &config.HTTPAddr)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	str("DATA_KEY_PASSPHRASE", &config.DataKeyPassphrase)
	str("DATA_KEY_SALT", &config.DataKeySalt)
	dur("SESSION_TTL", &config.SessionTTL)
	dur("MFA_CHALLENGE_TTL", &config.MFAChallengeTTL)
	dur("PASSWORD_CHANGE_TTL", &config.PasswordChangeTTL)
	dur("TRUSTED_DEVICE_TTL", &config.TrustedDeviceTTL)
	dur("PASSWORD_MAX_AGE", &config.PasswordMaxAge)
	dur("PASSWORD_EXPIRY_WARNING", &config.PasswordExpiryWarning)
	if v, ok := lookup("LOCKOUT_MAX_ATTEMPTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sLOCKOUT_MAX_ATTEMPTS: %w", EnvPrefix, err))
		} else {
			config.LockoutMaxAttempts = n
		}
	}
	dur("LOCKOUT_WINDOW", &config.LockoutWindow)
	dur("LOCKOUT_DURATION", &config.LockoutDuration)
	num("OVERTIME_WEEKLY_HOURS", &config.OvertimeWeeklyHours)
	num("OVERTIME_MULTIPLIER", &config.OvertimeMultiplier)
	num("VACATION_ACCRUAL_RATE", &config.VacationAccrualRate)
	str("PAYROLL_REFERENCE_PAY_DATE", &config.PayrollReferencePayDate)
	str("TOTP_ISSUER", &config.TOTPIssuer)
	str("COMPANY_EMAIL_DOMAIN", &config.CompanyEmailDomain)
	str("ADMIN_USERNAME", &config.AdminUsername)
	str("ADMIN_PASSWORD", &config.AdminPassword)
	str("ADMIN_EMAIL", &config.AdminEmail)
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok {
		config.CORSAllowedOrigins = splitList(v)
	}
	if v, ok := lookup("COOKIE_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sCOOKIE_SECURE: %w", EnvPrefix, err))
		} else {
			config.CookieSecure = b
		}
	}
	if v, ok := lookup("TRUSTED_PROXIES"); ok {
		config.TrustedProxies = splitList(v)
	}
	str("LOG_LEVEL", &config.LogLevel)
	str("LOG_BACKEND", &config.LogBackend)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	dur("CLEANUP_INTERVAL", &config.CleanupInterval)

	return errors.Join(errs...)
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
