// Package pveclient provides a session-authenticated client for the Proxmox
// VE management API. It handles ticket-based login, CSRF-token injection,
// request composition, and response classification. The caller owns the
// client's lifetime; discarding it is the only form of logout the protocol
// has.
package pveclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	apiPort         = 8006
	defaultTimeout  = 10 * time.Second
	authCookieName  = "PVEAuthCookie"
	csrfHeaderName  = "CSRFPreventionToken"
	formContentType = "application/x-www-form-urlencoded; charset=utf-8"
)

// session holds the credential triple issued by a successful login.
// Ticket and CSRF token are always set together; there is no
// partially-authenticated state.
type session struct {
	ticket    string
	csrfToken string
	username  string
}

// Option configures client construction.
type Option func(*clientConfig)

type clientConfig struct {
	trust   TrustPolicy
	timeout time.Duration
	baseURL string
}

// WithTrustPolicy sets the certificate trust policy for this client's
// connections. The default delegates to standard chain validation.
func WithTrustPolicy(policy TrustPolicy) Option {
	return func(c *clientConfig) {
		c.trust = policy
	}
}

// WithTimeout overrides the fixed per-request timeout. Intended for tests;
// production callers keep the 10 second default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithBaseURL points the client at an explicit base URL instead of the
// standard https://{host}:8006/api2/json. Intended for tests against local
// HTTP servers.
func WithBaseURL(baseURL string) Option {
	return func(c *clientConfig) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// Client is a session-authenticated client bound to one Proxmox VE host.
// It performs no I/O at construction. A single login populates the session
// state; subsequent calls attach it automatically. The session fields are
// guarded by a mutex so a login racing an in-flight read never exposes a
// half-written session, but callers should still serialize logins relative
// to calls that depend on the session they set.
type Client struct {
	host       string
	baseURL    string
	httpClient *http.Client

	mu      sync.RWMutex
	session *session
}

// New creates a client bound to host, a bare hostname or IP without scheme.
func New(host string, opts ...Option) *Client {
	config := clientConfig{
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(&config)
	}

	baseURL := config.baseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s:%d/api2/json", host, apiPort)
	}

	return &Client{
		host:    host,
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: transportFor(config.trust),
			Timeout:   config.timeout,
		},
	}
}

// Host returns the host this client is bound to.
func (c *Client) Host() string {
	return c.host
}

// Authenticated reports whether a login has populated the session state.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session != nil
}

// Username returns the authenticated username, or "" before login.
func (c *Client) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.username
}

// Login authenticates against the ticket endpoint and stores the issued
// ticket, CSRF token, and username as the session state, overwriting any
// prior session. Login is atomic: on any failure the previous session state
// is left untouched. The caller validates that the inputs are non-empty;
// the client does not re-validate. The password is never retained past
// this call.
func (c *Client) Login(ctx context.Context, username, password, realm string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("realm", realm)

	body, err := c.do(ctx, http.MethodPost, "/access/ticket", form)
	if err != nil {
		return err
	}

	var data ticketData
	if err := decodeEnvelope(body, &data); err != nil {
		return err
	}
	if data.Ticket == "" || data.CSRFPreventionToken == "" {
		return ErrDecode.New("ticket response is missing credentials")
	}

	c.mu.Lock()
	c.session = &session{
		ticket:    data.Ticket,
		csrfToken: data.CSRFPreventionToken,
		username:  data.Username,
	}
	c.mu.Unlock()
	return nil
}

// Version queries the server version. This call is advisory: callers may
// treat its failure as non-fatal to a larger connect sequence.
func (c *Client) Version(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/version", nil)
	if err != nil {
		return "", err
	}
	var data versionData
	if err := decodeEnvelope(body, &data); err != nil {
		return "", err
	}
	return data.Version, nil
}

// ListNodes returns the cluster nodes in the order the server reports them.
func (c *Client) ListNodes(ctx context.Context) ([]NodeInfo, error) {
	body, err := c.do(ctx, http.MethodGet, "/nodes", nil)
	if err != nil {
		return nil, err
	}
	var nodes []NodeInfo
	if err := decodeEnvelope(body, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// RebootNode asks the named node to reboot. Success means the request was
// accepted, nothing more: the command is fire-and-forget and is never
// retried, since re-sending a power command is not guaranteed idempotent.
func (c *Client) RebootNode(ctx context.Context, node string) error {
	return c.nodeCommand(ctx, node, "reboot")
}

// ShutdownNode asks the named node to shut down. Same contract as
// RebootNode.
func (c *Client) ShutdownNode(ctx context.Context, node string) error {
	return c.nodeCommand(ctx, node, "shutdown")
}

func (c *Client) nodeCommand(ctx context.Context, node, command string) error {
	form := url.Values{}
	form.Set("command", command)
	// 2xx is success; the response body is ignored.
	_, err := c.do(ctx, http.MethodPost, "/nodes/"+url.PathEscape(node)+"/status", form)
	return err
}

// credentials snapshots the session pair under the read lock.
func (c *Client) credentials() (ticket, csrfToken string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return "", ""
	}
	return c.session.ticket, c.session.csrfToken
}

// do composes and issues one request. Composition rules apply uniformly:
// the ticket travels as a cookie on every request once present, the CSRF
// token as a header on non-GET requests, and form bodies are URL-encoded.
// The status code is validated before any decoding is attempted.
func (c *Client) do(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	var bodyReader io.Reader
	if form != nil {
		bodyReader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, ErrTransport.MsgErr("failed to create request", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", formContentType)
	}

	ticket, csrfToken := c.credentials()
	if ticket != "" {
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: ticket})
	}
	if method != http.MethodGet && csrfToken != "" {
		req.Header.Set(csrfHeaderName, csrfToken)
	}

	requestID := uuid.NewString()
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Str("request_id", requestID).Str("method", method).
			Str("path", path).Err(err).Msg("api request failed")
		return nil, ErrTransport.MsgErr(fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrTransport.MsgErr("failed to read response body", err)
	}

	log.Debug().Str("request_id", requestID).Str("method", method).
		Str("path", path).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}
