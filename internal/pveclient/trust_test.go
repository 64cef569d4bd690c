package pveclient

import (
	"context"
	"crypto/x509"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// selfSignedServer runs a TLS test server whose certificate no system root
// can validate.
func selfSignedServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"version":"8.2.4"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTrustPolicy(t *testing.T) {
	srv := selfSignedServer(t)
	ctx := context.Background()

	t.Run("system validation rejects self-signed", func(t *testing.T) {
		client := New("pve.example.com", WithBaseURL(srv.URL))
		_, err := client.Version(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransport)
	})

	t.Run("accept-any reaches http processing", func(t *testing.T) {
		client := New("pve.example.com", WithBaseURL(srv.URL), WithTrustPolicy(TrustAny()))
		version, err := client.Version(ctx)
		require.NoError(t, err)
		assert.Equal(t, "8.2.4", version)
	})

	t.Run("custom policy sees the presented leaf", func(t *testing.T) {
		var seen *x509.Certificate
		policy := func(cert *x509.Certificate) error {
			seen = cert
			return nil
		}
		client := New("pve.example.com", WithBaseURL(srv.URL), WithTrustPolicy(policy))
		_, err := client.Version(ctx)
		require.NoError(t, err)
		require.NotNil(t, seen)
	})

	t.Run("rejecting policy fails as transport error", func(t *testing.T) {
		policy := func(cert *x509.Certificate) error {
			return errors.New("certificate not pinned")
		}
		client := New("pve.example.com", WithBaseURL(srv.URL), WithTrustPolicy(policy))
		_, err := client.Version(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransport)
	})
}
