// Package cli implements hrctl, the operator command line for hrkeeper.
//
// Each invocation runs one command and exits. Offline commands (periods,
// match, hash-password) need no server. The rest talk to the REST API
// with the session token that login stores in the session file.
//
//	hrctl [-a URL] [-t SECONDS] [-s FILE] [-c CONFIG] <command> [args]
//
// Password prompts read from the terminal without echo.
package cli
