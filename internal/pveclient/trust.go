package pveclient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net/http"
)

// TrustPolicy decides whether to accept the certificate a server presents.
// A nil policy means standard chain validation applies unmodified. A non-nil
// policy replaces chain validation entirely; TLS negotiation and channel
// encryption still apply. Policies are scoped to a single client instance,
// never global.
type TrustPolicy func(cert *x509.Certificate) error

// TrustSystem returns the default policy: platform certificate validation.
func TrustSystem() TrustPolicy {
	return nil
}

// TrustAny returns a policy that accepts any presented certificate,
// self-signed included. Callers exposing this as an option must label it
// clearly as reducing transport security.
func TrustAny() TrustPolicy {
	return func(*x509.Certificate) error {
		return nil
	}
}

// transportFor builds the HTTP transport carrying the trust policy.
// Chain validation is skipped only when a policy takes over verification;
// the policy is handed the parsed leaf certificate.
func transportFor(policy TrustPolicy) http.RoundTripper {
	if policy == nil {
		return http.DefaultTransport
	}
	return &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
			VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
				if len(rawCerts) == 0 {
					return errors.New("server presented no certificate")
				}
				leaf, err := x509.ParseCertificate(rawCerts[0])
				if err != nil {
					return err
				}
				return policy(leaf)
			},
		},
	}
}
