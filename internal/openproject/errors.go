package openproject

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request. Network-level failures that never
// reached the API are Connectivity; everything else is derived from the
// HTTP status code.
type Kind string

const (
	// KindConnectivity covers DNS failures, refused connections and
	// timeouts — the request never produced an API response.
	KindConnectivity Kind = "connectivity"

	// KindAuthentication is a 401: the API key was rejected.
	KindAuthentication Kind = "authentication"

	// KindAuthorization is a 403: the key is valid but lacks permission.
	KindAuthorization Kind = "authorization"

	// KindNotFound is a 404.
	KindNotFound Kind = "not_found"

	// KindProxyAuth is a 407 from an outbound proxy.
	KindProxyAuth Kind = "proxy_auth"

	// KindServer covers 5xx responses.
	KindServer Kind = "server"

	// KindAPI is any other non-2xx response.
	KindAPI Kind = "api"

	// KindSessionClosed means the client was used after Close.
	KindSessionClosed Kind = "session_closed"
)

// Error is a classified request failure. Status is zero for failures
// that never produced an HTTP response (Connectivity, SessionClosed).
// Hint, when set, is a remediation suggestion suitable for showing to
// the caller; Body holds a snippet of the response body.
type Error struct {
	Kind   Kind
	Status int
	Hint   string
	Body   string
	err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("API error %d (%s): %s", e.Status, e.Kind, e.Body)
	case e.err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.err)
	default:
		return fmt.Sprintf("%s error", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.err }

// KindOf extracts the Kind from err, or "" if err is not a classified
// client error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// bodySnippetLen bounds how much of an error response body is carried
// in the Error, so a huge HTML error page doesn't balloon log lines.
const bodySnippetLen = 500

// statusHints maps well-known statuses to remediation hints. Other
// statuses carry no hint.
var statusHints = map[int]string{
	401: "Authentication failed. Check your API key.",
	403: "Access denied. The user lacks required permissions.",
	404: "Resource not found. Verify the URL and that the resource exists.",
	407: "Proxy authentication required.",
	500: "Internal server error. Try again later.",
	502: "Bad gateway. The server or proxy is not responding correctly.",
	503: "Service unavailable. The server might be under maintenance.",
}

// classify turns a non-2xx response into a typed Error.
func classify(status int, body []byte) *Error {
	snippet := string(body)
	if len(snippet) > bodySnippetLen {
		snippet = snippet[:bodySnippetLen] + "..."
	}

	var kind Kind
	switch {
	case status == 401:
		kind = KindAuthentication
	case status == 403:
		kind = KindAuthorization
	case status == 404:
		kind = KindNotFound
	case status == 407:
		kind = KindProxyAuth
	case status >= 500:
		kind = KindServer
	default:
		kind = KindAPI
	}

	return &Error{
		Kind:   kind,
		Status: status,
		Hint:   statusHints[status],
		Body:   snippet,
	}
}

// connectivityError wraps a transport-level failure. These are never
// conflated with API-level kinds: the request did not reach the server.
func connectivityError(err error) *Error {
	return &Error{
		Kind: KindConnectivity,
		Hint: "Could not reach the OpenProject server. Check the URL, network and proxy settings.",
		err:  err,
	}
}

// errSessionClosed is returned for any request issued after Close.
func errSessionClosed() *Error {
	return &Error{
		Kind: KindSessionClosed,
		Hint: "The client has been closed. Create a new client to issue requests.",
	}
}
