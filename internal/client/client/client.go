package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/payperiod"
	"github.com/dmitrijs2005/hrkeeper/internal/server/services"
	"github.com/dmitrijs2005/hrkeeper/internal/server/timecards"
)

// LoginResponse mirrors the body of the login, verify-mfa and
// change-password endpoints.
type LoginResponse struct {
	Message                string       `json:"message"`
	User                   *models.User `json:"user"`
	SessionID              string       `json:"session_id"`
	RequiresMFA            bool         `json:"requires_mfa"`
	RequiresPasswordChange bool         `json:"requires_password_change"`
	Reason                 string       `json:"reason"`
	TempToken              string       `json:"temp_token"`
	PasswordWarning        string       `json:"password_warning"`
	UsedBackupCode         bool         `json:"used_backup_code"`
	BackupCodesRemaining   *int         `json:"backup_codes_remaining"`
}

// MatchResult is the server's answer to an employee match query.
type MatchResult struct {
	Matched  bool             `json:"matched"`
	Strategy string           `json:"strategy"`
	Employee *models.Employee `json:"employee"`
}

type envelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

// Client talks to one hrkeeper server. It is safe for concurrent use once
// the token is set.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken sets the session token sent as a bearer credential.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

// HTTPClient exposes the underlying client for direct storage transfers.
func (c *Client) HTTPClient() *http.Client { return c.http }

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	if in == nil {
		return c.do(ctx, method, path, nil, "", out)
	}
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, bytes.NewReader(b), "application/json", out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: resp.Status}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env); err == nil && env.Error.Code != "" {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.RequestID = env.RequestID
	}
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return apiErr
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, "", nil)
}

// Login starts a session. The response may instead carry an MFA or
// password-change challenge in TempToken.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	in := map[string]string{"username": username, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyMFA(ctx context.Context, tempToken, code string) (*LoginResponse, error) {
	var out LoginResponse
	in := map[string]string{"temp_token": tempToken, "code": code}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/verify-mfa", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, tempToken, current, next string) (*LoginResponse, error) {
	var out LoginResponse
	in := map[string]string{"temp_token": tempToken, "current_password": current, "new_password": next}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/change-password", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) CurrentPeriod(ctx context.Context) (payperiod.Period, error) {
	var p payperiod.Period
	err := c.doJSON(ctx, http.MethodGet, "/api/payroll/periods/current", nil, &p)
	return p, err
}

func (c *Client) Periods(ctx context.Context, year int) ([]payperiod.Period, error) {
	var out []payperiod.Period
	err := c.doJSON(ctx, http.MethodGet, "/api/payroll/periods?year="+strconv.Itoa(year), nil, &out)
	return out, err
}

// MatchEmployee resolves a person to an existing employee. A miss is not
// an error: Matched is false.
func (c *Client) MatchEmployee(ctx context.Context, name, email, phone string) (*MatchResult, error) {
	var out MatchResult
	in := map[string]string{"name": name, "email": email, "phone": phone}
	if err := c.doJSON(ctx, http.MethodPost, "/api/employees/match", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ImportTimecards uploads one spreadsheet as multipart field "file".
func (c *Client) ImportTimecards(ctx context.Context, filename string, r io.Reader) (*timecards.Summary, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out timecards.Summary
	if err := c.do(ctx, http.MethodPost, "/api/timecards/import", &buf, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GeneratePayroll(ctx context.Context, req services.GenerateRequest) (*services.GenerateResult, error) {
	var out services.GenerateResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/payroll/generate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestUpload registers a document and returns the presigned PUT URL for
// its content.
func (c *Client) RequestUpload(ctx context.Context, employeeID, name, contentType string) (*services.UploadTicket, error) {
	if employeeID == "" {
		return nil, fmt.Errorf("%w: employee id is required", common.ErrorValidation)
	}
	var out services.UploadTicket
	in := map[string]string{"name": name, "content_type": contentType}
	path := "/api/employees/" + url.PathEscape(employeeID) + "/documents"
	if err := c.doJSON(ctx, http.MethodPost, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ConfirmUpload(ctx context.Context, employeeID, documentID string, size int64) error {
	path := "/api/employees/" + url.PathEscape(employeeID) + "/documents/" + url.PathEscape(documentID) + "/confirm"
	return c.doJSON(ctx, http.MethodPost, path, map[string]int64{"size": size}, nil)
}

// IsUnauthorized reports whether err means the stored session is no longer
// accepted.
func IsUnauthorized(err error) bool {
	return errors.Is(err, common.ErrorUnauthorized)
}
