package common

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "sessionId"

// SessionHeaderName is the alternative header carrying the session token
// for clients that cannot use cookies or bearer auth.
const SessionHeaderName = "X-Session-ID"

// CSRFHeaderName carries the CSRF token for cookie-authenticated requests.
const CSRFHeaderName = "X-CSRF-Token"

// Employee statuses.
const (
	EmployeeStatusActive     = "Active"
	EmployeeStatusOnLeave    = "On Leave"
	EmployeeStatusTerminated = "Terminated"
)

// Onboarding sources recorded on employee rows.
const (
	SourceManual     = "Manual"
	SourceOnboarding = "Onboarding"
	SourceTimecard   = "Timecard"
	SourceCommission = "Commission"
)
