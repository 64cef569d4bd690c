package pveclient

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pvecontrol/pvecontrol/internal/common/apperrors"
)

// Error classes for the client. Every failure a call returns wraps exactly
// one of these, so callers can classify with errors.Is.
var (
	// ErrTransport covers DNS, connection, and TLS failures as well as
	// timeouts: nothing was received from the server.
	ErrTransport = apperrors.New("transport failure")

	// ErrStatus covers responses with a status outside 200-299. The status
	// code is available via apperrors.Error.StatusCode.
	ErrStatus = apperrors.New("server returned an error status")

	// ErrDecode covers 2xx responses whose body does not match the expected
	// envelope shape. Distinct from ErrStatus so API-version mismatches are
	// diagnosable.
	ErrDecode = apperrors.New("unable to decode server response")
)

const maxErrorSnippet = 200

// statusError builds an ErrStatus for a non-2xx response, capturing the
// status code and a body snippet as diagnostic context. The body is never
// decoded as an envelope; the API may return arbitrary or empty bodies on
// error.
func statusError(code int, body []byte) apperrors.Error {
	msg := fmt.Sprintf("server returned status %d", code)
	if detail := errorDetail(body); detail != "" {
		msg += ": " + detail
	}
	return ErrStatus.New(msg).SetStatusCode(code)
}

// errorDetail extracts a human-readable fragment from an error-response
// body. Proxmox sometimes returns {"errors": {...}} or a message field;
// otherwise the raw text is used. Every branch is capped at
// maxErrorSnippet bytes.
func errorDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	detail := strings.TrimSpace(string(body))
	if gjson.ValidBytes(body) {
		if m := gjson.GetBytes(body, "message"); m.Exists() && m.String() != "" {
			detail = strings.TrimSpace(m.String())
		} else if e := gjson.GetBytes(body, "errors"); e.Exists() {
			detail = e.Raw
		}
	}
	if len(detail) > maxErrorSnippet {
		detail = detail[:maxErrorSnippet] + "..."
	}
	return detail
}
