package cli

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultConfigFile)
	cfg := &Config{
		Version:  "0.1.0",
		Host:     "pve.example.com",
		Realm:    "pam",
		Username: "root",
		Insecure: true,
	}
	require.NoError(t, cfg.WriteConfig(path))

	require.NoError(t, LoadConfig(path))
	loaded := GetConfig()
	require.NotNil(t, loaded)
	assert.Equal(t, cfg.Host, loaded.Host)
	assert.Equal(t, cfg.Realm, loaded.Realm)
	assert.Equal(t, cfg.Username, loaded.Username)
	assert.Equal(t, cfg.Insecure, loaded.Insecure)

	// Config files hold connection preferences only; the schema has no
	// place for a password or ticket.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "ticket")
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing host",
			content: "version: 0.1.0\nrealm: pam\n",
			wantErr: "host is required",
		},
		{
			name:    "host with scheme",
			content: "version: 0.1.0\nhost: https://pve.example.com\nrealm: pam\n",
			wantErr: "without a scheme",
		},
		{
			name:    "not yaml",
			content: "{{{{",
			wantErr: "unable to parse",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempConfig(t, tt.content)
			err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfigDefaultsRealm(t *testing.T) {
	path := writeTempConfig(t, "version: 0.1.0\nhost: pve.example.com\n")
	require.NoError(t, LoadConfig(path))
	assert.Equal(t, DefaultRealm, GetConfig().Realm)
}

func TestLoadConfigMissingFile(t *testing.T) {
	err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
