package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/auth"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// loginResponse is the body of every step of the login flow. Exactly one
// of SessionID, TempToken with RequiresMFA, or TempToken with
// RequiresPasswordChange is set.
type loginResponse struct {
	Message                string       `json:"message"`
	User                   *models.User `json:"user,omitempty"`
	SessionID              string       `json:"session_id,omitempty"`
	CSRFToken              string       `json:"csrf_token,omitempty"`
	RequiresMFA            bool         `json:"requires_mfa,omitempty"`
	RequiresPasswordChange bool         `json:"requires_password_change,omitempty"`
	Reason                 string       `json:"reason,omitempty"`
	TempToken              string       `json:"temp_token,omitempty"`
	PasswordWarning        string       `json:"password_warning,omitempty"`
	UsedBackupCode         bool         `json:"used_backup_code,omitempty"`
	BackupCodesRemaining   *int         `json:"backup_codes_remaining,omitempty"`
}

// respondLogin turns a LoginResult into a response, setting the session
// cookie when a session was opened.
func (s *Server) respondLogin(w http.ResponseWriter, res *services.LoginResult) {
	switch {
	case res.PasswordChangeRequired:
		reason := "Password change required"
		if res.User != nil && !res.User.MustChangePassword {
			reason = "Password expired"
		}
		writeJSON(w, http.StatusOK, loginResponse{
			Message:                "Password change required",
			RequiresPasswordChange: true,
			Reason:                 reason,
			TempToken:              res.PasswordChangeToken,
		})
		return
	case res.MFARequired:
		writeJSON(w, http.StatusOK, loginResponse{
			Message:     "MFA verification required",
			RequiresMFA: true,
			TempToken:   res.MFAToken,
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    res.SessionToken,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	body := loginResponse{
		Message:        "Login successful",
		User:           res.User,
		SessionID:      res.SessionToken,
		CSRFToken:      res.CSRFToken,
		UsedBackupCode: res.UsedBackupCode,
	}
	if res.PasswordExpiresInDays != nil {
		body.PasswordWarning = passwordWarning(*res.PasswordExpiresInDays)
	}
	if res.UsedBackupCode {
		left := res.BackupCodesRemaining
		body.BackupCodesRemaining = &left
	}
	writeJSON(w, http.StatusOK, body)
}

func passwordWarning(days int) string {
	switch {
	case days <= 0:
		return "Your password expires today"
	case days == 1:
		return "Your password expires in 1 day"
	default:
		return "Your password expires in " + strconv.Itoa(days) + " days"
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		badRequest(w, r, "username and password are required")
		return
	}
	res, err := s.svc.Auth.Login(r.Context(), req.Username, req.Password, clientInfo(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondLogin(w, res)
}

func (s *Server) handleVerifyMFA(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TempToken   string `json:"temp_token"`
		Code        string `json:"code"`
		TrustDevice bool   `json:"trust_device"`
		DeviceName  string `json:"device_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.TempToken == "" || strings.TrimSpace(req.Code) == "" {
		badRequest(w, r, "temp_token and code are required")
		return
	}

	client := clientInfo(r)
	if req.TrustDevice {
		// a fresh server-issued secret identifies the device from now on
		secret, _, err := auth.NewToken()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		client.DeviceFingerprint = secret
	}

	res, err := s.svc.Auth.VerifyMFA(r.Context(), req.TempToken, req.Code, req.TrustDevice, req.DeviceName, client)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.TrustDevice {
		http.SetCookie(w, &http.Cookie{
			Name:     deviceCookie,
			Value:    client.DeviceFingerprint,
			Path:     "/api/auth",
			MaxAge:   int(s.trustedDeviceTTL.Seconds()),
			HttpOnly: true,
			Secure:   s.cookieSecure,
			SameSite: http.SameSiteStrictMode,
		})
	}
	s.respondLogin(w, res)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TempToken       string `json:"temp_token"`
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.NewPassword == "" {
		badRequest(w, r, "new_password is required")
		return
	}

	cp := services.ChangePasswordRequest{
		ChallengeToken:  req.TempToken,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}
	if cp.ChallengeToken == "" {
		token, _ := sessionToken(r)
		p, err := s.svc.Auth.Authenticate(r.Context(), token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		cp.UserID = p.User.ID
	}

	res, err := s.svc.Auth.ChangePassword(r.Context(), cp, clientInfo(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondLogin(w, res)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	if err := s.svc.Auth.Logout(r.Context(), p.Session.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user":       p.User,
		"expires_at": p.Session.ExpiresAt,
		"csrf_token": s.svc.Auth.CSRFToken(p.Session.ID),
	})
}

func (s *Server) handleMFAStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Auth.MFAStatus(r.Context(), principalFrom(r.Context()).User.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	setup, err := s.svc.Auth.SetupMFA(r.Context(), principalFrom(r.Context()).User.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, setup)
}

type codeRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleMFAEnable(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Auth.EnableMFA(r.Context(), principalFrom(r.Context()).User.ID, req.Code); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "MFA enabled"})
}

func (s *Server) handleMFADisable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Auth.DisableMFA(r.Context(), principalFrom(r.Context()).User.ID, req.Password); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "MFA disabled"})
}

func (s *Server) handleRegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	codes, err := s.svc.Auth.RegenerateBackupCodes(r.Context(), principalFrom(r.Context()).User.ID, req.Code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"backup_codes": codes})
}

func (s *Server) handleListTrustedDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.svc.Auth.ListTrustedDevices(r.Context(), principalFrom(r.Context()).User.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) handleRevokeTrustedDevice(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Auth.RevokeTrustedDevice(r.Context(), principalFrom(r.Context()).User.ID, chi.URLParam(r, "deviceID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Auth.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	// only super admins hand out super admin
	if req.Role == auth.RoleSuperAdmin && principalFrom(r.Context()).User.Role != auth.RoleSuperAdmin {
		fail(w, r, http.StatusForbidden, "forbidden", "insufficient permissions")
		return
	}
	u, err := s.svc.Auth.CreateUser(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}
