package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectInputValidation(t *testing.T) {
	valid := connectInput{Host: "pve.example.com", Username: "root", Realm: "pam"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		input   connectInput
		wantErr string
	}{
		{
			name:    "missing host",
			input:   connectInput{Username: "root", Realm: "pam"},
			wantErr: "host is required",
		},
		{
			name:    "host with scheme",
			input:   connectInput{Host: "https://pve.example.com", Username: "root", Realm: "pam"},
			wantErr: "without a scheme",
		},
		{
			name:    "missing username",
			input:   connectInput{Host: "pve.example.com", Realm: "pam"},
			wantErr: "username is required",
		},
		{
			name:    "missing realm",
			input:   connectInput{Host: "pve.example.com", Username: "root"},
			wantErr: "realm is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewAPIClientTrustSelection(t *testing.T) {
	secure := newAPIClient(&Config{Host: "pve.example.com", Realm: "pam"})
	require.NotNil(t, secure)
	assert.Equal(t, "pve.example.com", secure.Host())
	assert.False(t, secure.Authenticated())

	insecure := newAPIClient(&Config{Host: "pve.example.com", Realm: "pam", Insecure: true})
	require.NotNil(t, insecure)
	assert.False(t, insecure.Authenticated())
}

func TestFormatServerVersion(t *testing.T) {
	assert.Equal(t, "8.2.4", formatServerVersion("8.2.4"))
	assert.Equal(t, "6.4.0 (predates tested releases)", formatServerVersion("6.4.0"))
	assert.Equal(t, "not-a-version", formatServerVersion("not-a-version"))
}
