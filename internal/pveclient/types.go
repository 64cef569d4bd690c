package pveclient

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// envelope is the uniform wrapping of every successful API response body.
// The payload of interest is always under "data".
type envelope struct {
	Data jsoniter.RawMessage `json:"data"`
}

// NodeInfo describes a single cluster node as reported by the nodes endpoint.
// Status is free-form; "online" is the only value with defined meaning.
type NodeInfo struct {
	Node   string `json:"node"`
	Status string `json:"status,omitempty"`
}

// Online reports whether the node advertised itself as online.
// Any other status value, or none at all, reads as unknown/offline.
func (n NodeInfo) Online() bool {
	return strings.EqualFold(n.Status, "online")
}

// ticketData is the payload returned by the ticket endpoint on login.
type ticketData struct {
	Ticket              string `json:"ticket"`
	CSRFPreventionToken string `json:"CSRFPreventionToken"`
	Username            string `json:"username"`
}

// versionData is the payload returned by the version endpoint.
type versionData struct {
	Version string `json:"version"`
}

// decodeEnvelope unwraps the {"data": ...} envelope and decodes the payload
// into v. Both a malformed envelope and a malformed payload classify as
// decode errors, distinct from status errors.
func decodeEnvelope(body []byte, v any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ErrDecode.MsgErr("response is not a valid api envelope", err)
	}
	if len(env.Data) == 0 {
		return ErrDecode.New("response envelope has no data field")
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return ErrDecode.MsgErr("unexpected payload shape", err)
	}
	return nil
}
