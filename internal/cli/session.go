package cli

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/pvecontrol/pvecontrol/internal/pveclient"
)

// connectInput is the validated set of fields a login needs. Validation
// happens here, in the caller layer; the client itself does not re-validate.
type connectInput struct {
	Host     string `validate:"required,excludes=://"`
	Username string `validate:"required"`
	Realm    string `validate:"required"`
}

// Validate maps validator failures to the messages users see.
func (in connectInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			for _, fe := range fieldErrors {
				switch fe.Field() {
				case "Host":
					if fe.Tag() == "excludes" {
						return errors.New("host must be a bare hostname or IP, without a scheme")
					}
					return errors.New("host is required; set it with \"pvecontrol config --host <host>\"")
				case "Username":
					return errors.New("username is required; pass --user or store it with \"pvecontrol config\"")
				case "Realm":
					return errors.New("realm is required")
				}
			}
		}
		return err
	}
	return nil
}

// newAPIClient builds a session client from the configuration, selecting the
// trust policy from the insecure toggle. The policy is scoped to this one
// client instance.
func newAPIClient(cfg *Config) *pveclient.Client {
	policy := pveclient.TrustSystem()
	if cfg.Insecure {
		policy = pveclient.TrustAny()
	}
	return pveclient.New(cfg.Host, pveclient.WithTrustPolicy(policy))
}

// establishSession validates inputs, resolves the password, and logs in.
// Tickets are never persisted, so every invocation that talks to the server
// opens its own session and drops it when the process exits.
func establishSession(cmd *cobra.Command) (*pveclient.Client, error) {
	cfg := GetConfig()
	if cfg == nil {
		return nil, errors.New("no configuration loaded")
	}

	username, _ := cmd.Flags().GetString("user")
	if username == "" {
		username = cfg.Username
	}

	input := connectInput{
		Host:     cfg.Host,
		Username: username,
		Realm:    cfg.Realm,
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	password, err := resolvePassword(cmd)
	if err != nil {
		return nil, err
	}

	client := newAPIClient(cfg)
	if err := client.Login(cmd.Context(), input.Username, password, input.Realm); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return client, nil
}
