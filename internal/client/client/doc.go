// Package client is the hrctl side of the hrkeeper REST API.
//
// Client wraps net/http with the server's conventions: JSON bodies, a
// bearer session token on every request once logged in, and the
// {"error":{"code","message"},"request_id"} failure envelope decoded into
// *APIError. APIError unwraps to the common package sentinels, so callers
// match failures with errors.Is(err, common.ErrorNotFound) the same way the
// server does. Transport failures are reported as ErrUnavailable.
package client
