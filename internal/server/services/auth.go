// Package services contains server-side business logic. Services own the
// flows that span several repositories and keep the HTTP layer thin.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/cryptox"
	"github.com/dmitrijs2005/hrkeeper/internal/dbx"
	"github.com/dmitrijs2005/hrkeeper/internal/server/auth"
	"github.com/dmitrijs2005/hrkeeper/internal/server/config"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/repomanager"
)

// LockedError is returned while a login key is locked out. It matches
// common.ErrorAccountLocked.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *LockedError) Is(target error) bool {
	return target == common.ErrorAccountLocked
}

// ClientInfo describes where a login attempt comes from.
type ClientInfo struct {
	IP                string
	UserAgent         string
	DeviceFingerprint string
}

// LoginResult is the outcome of a login step. Exactly one of SessionToken,
// MFAToken and PasswordChangeToken is set.
type LoginResult struct {
	User                   *models.User
	Session                *models.Session
	SessionToken           string
	CSRFToken              string
	MFARequired            bool
	MFAToken               string
	PasswordChangeRequired bool
	PasswordChangeToken    string
	// PasswordExpiresInDays is set when the password expires within the
	// warning window.
	PasswordExpiresInDays *int
	UsedBackupCode        bool
	BackupCodesRemaining  int
}

// Principal is an authenticated caller.
type Principal struct {
	User    *models.User
	Session *models.Session
}

type MFASetup struct {
	Secret      string   `json:"secret"`
	URL         string   `json:"otpauth_url"`
	BackupCodes []string `json:"backup_codes"`
}

type MFAStatus struct {
	Enabled              bool       `json:"enabled"`
	EnabledAt            *time.Time `json:"enabled_at,omitempty"`
	BackupCodesRemaining int        `json:"backup_codes_remaining"`
	TrustedDevices       int        `json:"trusted_devices"`
}

type CreateUserRequest struct {
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	FullName   string  `json:"full_name"`
	Password   string  `json:"password"`
	Role       string  `json:"role"`
	EmployeeID *string `json:"employee_id,omitempty"`
}

// AuthService implements password login with lockout, TOTP second factor,
// trusted devices, and server-side sessions.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
	secret      []byte
	box         *cryptox.Box
	lockout     *auth.Lockout
	now         func() time.Time
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, box *cryptox.Box) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		config:      cfg,
		secret:      []byte(cfg.SecretKey),
		box:         box,
		lockout:     auth.NewLockout(cfg.LockoutMaxAttempts, cfg.LockoutWindow, cfg.LockoutDuration),
		now:         time.Now,
	}
}

// Login checks the password and either opens a session or asks for the
// next step: a password change or a second factor.
func (s *AuthService) Login(ctx context.Context, login, password string, client ClientInfo) (*LoginResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, fmt.Errorf("%w: login and password are required", common.ErrorValidation)
	}

	key := auth.LockoutKey(strings.ToLower(login), client.IP)
	if left, locked := s.lockout.Locked(key); locked {
		return nil, &LockedError{RetryAfter: left}
	}

	user, err := s.repomanager.Users(s.db).GetByLogin(ctx, login)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}
	if user == nil || !user.IsActive || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, s.failed(key)
	}
	s.lockout.Reset(key)

	if s.passwordExpired(user) {
		token, err := auth.IssuePasswordChallenge(user.ID, user.PasswordHash, s.secret, s.config.PasswordChangeTTL)
		if err != nil {
			return nil, common.ErrorInternal
		}
		return &LoginResult{User: user, PasswordChangeRequired: true, PasswordChangeToken: token}, nil
	}

	return s.secondFactor(ctx, user, client)
}

func (s *AuthService) failed(key string) error {
	if s.lockout.Fail(key) == 0 {
		left, _ := s.lockout.Locked(key)
		return &LockedError{RetryAfter: left}
	}
	return common.ErrorUnauthorized
}

func (s *AuthService) passwordExpired(u *models.User) bool {
	if u.MustChangePassword {
		return true
	}
	return s.config.PasswordMaxAge > 0 && s.now().Sub(u.PasswordChangedAt) > s.config.PasswordMaxAge
}

// secondFactor opens a session unless MFA is enabled and the device is not
// trusted, in which case it issues an MFA challenge.
func (s *AuthService) secondFactor(ctx context.Context, user *models.User, client ClientInfo) (*LoginResult, error) {
	settings, err := s.repomanager.MFA(s.db).Get(ctx, user.ID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}
	if settings != nil && settings.Enabled {
		trusted, err := s.trustedDevice(ctx, user.ID, client.DeviceFingerprint)
		if err != nil {
			return nil, err
		}
		if !trusted {
			token, err := auth.IssueChallenge(user.ID, auth.PurposeMFA, s.secret, s.config.MFAChallengeTTL)
			if err != nil {
				return nil, common.ErrorInternal
			}
			return &LoginResult{User: user, MFARequired: true, MFAToken: token}, nil
		}
	}
	return s.openSession(ctx, user, client)
}

func (s *AuthService) trustedDevice(ctx context.Context, userID, fingerprint string) (bool, error) {
	if fingerprint == "" {
		return false, nil
	}
	repo := s.repomanager.TrustedDevices(s.db)
	d, err := repo.FindValid(ctx, userID, auth.HashToken(fingerprint))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, common.ErrorInternal
	}
	if err := repo.Touch(ctx, d.ID); err != nil {
		return false, common.ErrorInternal
	}
	return true, nil
}

func (s *AuthService) openSession(ctx context.Context, user *models.User, client ClientInfo) (*LoginResult, error) {
	token, hash, err := auth.NewToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	now := s.now()
	session, err := s.repomanager.Sessions(s.db).Create(ctx, &models.Session{
		UserID:    user.ID,
		TokenHash: hash,
		IPAddress: client.IP,
		UserAgent: client.UserAgent,
		ExpiresAt: now.Add(s.config.SessionTTL),
	})
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.Users(s.db).TouchLogin(ctx, user.ID, now); err != nil {
		return nil, common.ErrorInternal
	}

	res := &LoginResult{
		User:         user,
		Session:      session,
		SessionToken: token,
		CSRFToken:    s.CSRFToken(session.ID),
	}
	if s.config.PasswordMaxAge > 0 {
		left := s.config.PasswordMaxAge - now.Sub(user.PasswordChangedAt)
		if left <= s.config.PasswordExpiryWarning {
			days := int(left.Hours() / 24)
			res.PasswordExpiresInDays = &days
		}
	}
	return res, nil
}

// VerifyMFA completes a login with a TOTP code or a one-time backup code.
// With trustDevice set the client fingerprint skips MFA until the trust
// expires.
func (s *AuthService) VerifyMFA(ctx context.Context, mfaToken, code string, trustDevice bool, deviceName string, client ClientInfo) (*LoginResult, error) {
	userID, err := auth.ParseChallenge(mfaToken, auth.PurposeMFA, s.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	key := auth.LockoutKey("mfa:"+userID, client.IP)
	if left, locked := s.lockout.Locked(key); locked {
		return nil, &LockedError{RetryAfter: left}
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil || !user.IsActive {
		return nil, common.ErrorUnauthorized
	}
	settings, err := s.repomanager.MFA(s.db).Get(ctx, userID)
	if err != nil || !settings.Enabled {
		return nil, common.ErrorUnauthorized
	}

	usedBackup, err := s.checkCode(ctx, settings, code)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, s.failed(key)
		}
		return nil, err
	}
	s.lockout.Reset(key)

	if trustDevice && client.DeviceFingerprint != "" {
		if deviceName == "" {
			deviceName = client.UserAgent
		}
		_, err := s.repomanager.TrustedDevices(s.db).Create(ctx, &models.TrustedDevice{
			UserID:          userID,
			FingerprintHash: auth.HashToken(client.DeviceFingerprint),
			Name:            deviceName,
			IPAddress:       client.IP,
			ExpiresAt:       s.now().Add(s.config.TrustedDeviceTTL),
		})
		if err != nil {
			return nil, common.ErrorInternal
		}
	}

	res, err := s.openSession(ctx, user, client)
	if err != nil {
		return nil, err
	}
	res.UsedBackupCode = usedBackup
	res.BackupCodesRemaining = len(settings.BackupCodes)
	return res, nil
}

// checkCode validates a TOTP code, or consumes a matching backup code.
// settings.BackupCodes is updated in place when a backup code is used.
func (s *AuthService) checkCode(ctx context.Context, settings *models.MFASettings, code string) (bool, error) {
	if auth.LooksLikeTOTP(code) {
		secret, err := s.box.DecryptString(settings.SecretEncrypted)
		if err != nil {
			return false, common.ErrorInternal
		}
		if !auth.ValidateTOTP(strings.TrimSpace(code), secret, s.now()) {
			return false, common.ErrorUnauthorized
		}
		return false, nil
	}

	idx := auth.MatchBackupCode(code, settings.BackupCodes)
	if idx < 0 {
		return false, common.ErrorUnauthorized
	}
	consumed, err := s.repomanager.MFA(s.db).ConsumeBackupCode(ctx, settings.UserID, settings.BackupCodes[idx])
	if err != nil {
		return false, common.ErrorInternal
	}
	if !consumed {
		return false, common.ErrorUnauthorized
	}
	settings.BackupCodes = append(append([]string(nil), settings.BackupCodes[:idx]...), settings.BackupCodes[idx+1:]...)
	return true, nil
}

// ChangePasswordRequest carries either a password-change challenge token
// (expired or temporary password at login) or the id of an authenticated
// user together with the current password.
type ChangePasswordRequest struct {
	ChallengeToken  string
	UserID          string
	CurrentPassword string
	NewPassword     string
}

// ChangePassword stores a new password, revokes every session of the user
// and continues the login flow.
func (s *AuthService) ChangePassword(ctx context.Context, req ChangePasswordRequest, client ClientInfo) (*LoginResult, error) {
	userID := req.UserID
	var challenge *auth.Claims
	if req.ChallengeToken != "" {
		claims, err := auth.ParseChallengeClaims(req.ChallengeToken, auth.PurposePasswordChange, s.secret)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
		}
		challenge, userID = claims, claims.UserID
	}
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if challenge != nil && challenge.Binding != auth.CredentialBinding(user.PasswordHash) {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrInvalidToken)
	}
	if challenge == nil && !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return nil, common.ErrorUnauthorized
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return nil, err
	}
	if auth.CheckPassword(user.PasswordHash, req.NewPassword) {
		return nil, fmt.Errorf("%w: new password must differ from the current one", common.ErrorValidation)
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, common.ErrorInternal
	}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, user.ID, hash, false); err != nil {
			return err
		}
		return s.repomanager.Sessions(tx).DeleteByUser(ctx, user.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("error changing password: %w", err)
	}

	user.PasswordHash = hash
	user.MustChangePassword = false
	user.PasswordChangedAt = s.now()

	if challenge != nil {
		return s.secondFactor(ctx, user, client)
	}
	return s.openSession(ctx, user, client)
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.repomanager.Sessions(s.db).Delete(ctx, sessionID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return common.ErrorInternal
	}
	return nil
}

// Authenticate resolves a session token and slides its expiry.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}
	repo := s.repomanager.Sessions(s.db)
	session, err := repo.FindValid(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}

	now := s.now()
	session.ExpiresAt = now.Add(s.config.SessionTTL)
	session.LastActivity = now
	if err := repo.Touch(ctx, session.ID, session.ExpiresAt); err != nil {
		return nil, common.ErrorInternal
	}
	return &Principal{User: user, Session: session}, nil
}

// CSRFToken returns the CSRF token bound to a session.
func (s *AuthService) CSRFToken(sessionID string) string {
	return auth.CSRFToken(s.secret, sessionID)
}

// VerifyCSRF checks a CSRF token against a session.
func (s *AuthService) VerifyCSRF(sessionID, token string) bool {
	return auth.VerifyCSRF(s.secret, sessionID, token)
}

// SetupMFA generates a new secret and backup codes. MFA stays disabled
// until EnableMFA confirms a code from the authenticator.
func (s *AuthService) SetupMFA(ctx context.Context, userID string) (*MFASetup, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	repo := s.repomanager.MFA(s.db)
	current, err := repo.Get(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}
	if current != nil && current.Enabled {
		return nil, fmt.Errorf("%w: MFA is already enabled", common.ErrorConflict)
	}

	account := user.Email
	if account == "" {
		account = user.Username
	}
	key, err := auth.GenerateTOTP(s.config.TOTPIssuer, account)
	if err != nil {
		return nil, common.ErrorInternal
	}
	sealed, err := s.box.EncryptString(key.Secret)
	if err != nil {
		return nil, common.ErrorInternal
	}
	codes, hashes, err := auth.GenerateBackupCodes()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := repo.Save(ctx, &models.MFASettings{UserID: userID, SecretEncrypted: sealed, BackupCodes: hashes}); err != nil {
		return nil, common.ErrorInternal
	}
	return &MFASetup{Secret: key.Secret, URL: key.URL, BackupCodes: codes}, nil
}

// EnableMFA turns MFA on after the user proves the authenticator works.
func (s *AuthService) EnableMFA(ctx context.Context, userID, code string) error {
	repo := s.repomanager.MFA(s.db)
	settings, err := repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: MFA setup was not started", common.ErrorInvalidState)
		}
		return common.ErrorInternal
	}
	if settings.Enabled {
		return fmt.Errorf("%w: MFA is already enabled", common.ErrorConflict)
	}
	if !auth.LooksLikeTOTP(code) {
		return fmt.Errorf("%w: a six-digit code is required", common.ErrorValidation)
	}
	if _, err := s.checkCode(ctx, settings, code); err != nil {
		return err
	}
	now := s.now()
	settings.Enabled = true
	settings.EnabledAt = &now
	if err := repo.Save(ctx, settings); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// DisableMFA requires the password and removes the secret, backup codes
// and trusted devices.
func (s *AuthService) DisableMFA(ctx context.Context, userID, password string) error {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return common.ErrorUnauthorized
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.MFA(tx).Delete(ctx, userID); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return s.repomanager.TrustedDevices(tx).DeleteByUser(ctx, userID)
	})
}

// RegenerateBackupCodes replaces all backup codes after a valid TOTP code.
func (s *AuthService) RegenerateBackupCodes(ctx context.Context, userID, code string) ([]string, error) {
	repo := s.repomanager.MFA(s.db)
	settings, err := repo.Get(ctx, userID)
	if err != nil || !settings.Enabled {
		return nil, fmt.Errorf("%w: MFA is not enabled", common.ErrorInvalidState)
	}
	if !auth.LooksLikeTOTP(code) {
		return nil, fmt.Errorf("%w: a six-digit code is required", common.ErrorValidation)
	}
	if _, err := s.checkCode(ctx, settings, code); err != nil {
		return nil, err
	}
	codes, hashes, err := auth.GenerateBackupCodes()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := repo.SetBackupCodes(ctx, userID, hashes); err != nil {
		return nil, common.ErrorInternal
	}
	return codes, nil
}

func (s *AuthService) MFAStatus(ctx context.Context, userID string) (*MFAStatus, error) {
	st := &MFAStatus{}
	settings, err := s.repomanager.MFA(s.db).Get(ctx, userID)
	switch {
	case err == nil:
		st.Enabled = settings.Enabled
		st.EnabledAt = settings.EnabledAt
		if settings.Enabled {
			st.BackupCodesRemaining = len(settings.BackupCodes)
		}
	case !errors.Is(err, common.ErrorNotFound):
		return nil, common.ErrorInternal
	}
	devices, err := s.repomanager.TrustedDevices(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	st.TrustedDevices = len(devices)
	return st, nil
}

func (s *AuthService) ListTrustedDevices(ctx context.Context, userID string) ([]*models.TrustedDevice, error) {
	return s.repomanager.TrustedDevices(s.db).ListByUser(ctx, userID)
}

func (s *AuthService) RevokeTrustedDevice(ctx context.Context, userID, deviceID string) error {
	return s.repomanager.TrustedDevices(s.db).Delete(ctx, userID, deviceID)
}

// CreateUser adds an account with a temporary password that must be
// changed at first login.
func (s *AuthService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: username and email are required", common.ErrorValidation)
	}
	if req.Role == "" {
		req.Role = auth.RoleEmployee
	}
	if !auth.IsValidRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrorValidation, req.Role)
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Username:           req.Username,
		Email:              req.Email,
		FullName:           strings.TrimSpace(req.FullName),
		PasswordHash:       hash,
		Role:               req.Role,
		EmployeeID:         req.EmployeeID,
		IsActive:           true,
		MustChangePassword: true,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("%w: username or email already taken", common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// EnsureAdmin creates the configured super admin when no user exists yet.
// A generated password is returned when none is configured.
func (s *AuthService) EnsureAdmin(ctx context.Context) (password string, created bool, err error) {
	repo := s.repomanager.Users(s.db)
	n, err := repo.Count(ctx)
	if err != nil {
		return "", false, err
	}
	if n > 0 {
		return "", false, nil
	}

	password = s.config.AdminPassword
	if password == "" {
		random, err := common.MakeRandHexString(12)
		if err != nil {
			return "", false, err
		}
		password = "Hr!7" + strings.ToUpper(random[:4]) + random[4:]
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", false, err
	}
	_, err = repo.Create(ctx, &models.User{
		Username:           s.config.AdminUsername,
		Email:              strings.ToLower(s.config.AdminEmail),
		FullName:           "Administrator",
		PasswordHash:       hash,
		Role:               auth.RoleSuperAdmin,
		IsActive:           true,
		MustChangePassword: true,
	})
	if err != nil {
		return "", false, err
	}
	return password, true, nil
}

// PurgeExpired drops expired sessions, trusted devices and stale lockout
// counters.
func (s *AuthService) PurgeExpired(ctx context.Context) (sessions, devices int64, err error) {
	sessions, err = s.repomanager.Sessions(s.db).DeleteExpired(ctx)
	if err != nil {
		return 0, 0, err
	}
	devices, err = s.repomanager.TrustedDevices(s.db).DeleteExpired(ctx)
	if err != nil {
		return sessions, 0, err
	}
	s.lockout.Sweep()
	return sessions, devices, nil
}
