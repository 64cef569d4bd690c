package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// DefaultRealm is the authentication realm used when none is configured.
const DefaultRealm = "pam"

// Config represents the configuration for the pvecontrol CLI.
// It stores the target host and connection preferences only: passwords and
// session tickets are never written to disk.
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version"`
	// Host is the bare hostname or IP of the Proxmox VE node, no scheme
	Host string `yaml:"host" validate:"required,excludes=://"`
	// Realm is the authentication realm (e.g. pam, pve, or a directory backend)
	Realm string `yaml:"realm" validate:"required"`
	// Username is the last username used, remembered for convenience
	Username string `yaml:"username,omitempty"`
	// Insecure accepts any server certificate, self-signed included.
	// This reduces transport security and must be opted into explicitly.
	Insecure bool `yaml:"insecure"`
}

var config *Config

var validate = validator.New()

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/pvecontrol on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "pvecontrol", DefaultConfigFile), nil
}

// LoadConfig loads the configuration from the specified file
// If no file is specified, it uses the default config location
func LoadConfig(file string) error {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	yamlStr, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("unable to read config file: %w", err)
	}

	var c Config
	if err = yaml.Unmarshal(yamlStr, &c); err != nil {
		return fmt.Errorf("unable to parse config file: %w", err)
	}

	if c.Realm == "" {
		c.Realm = DefaultRealm
	}
	if err := c.Validate(); err != nil {
		return err
	}

	config = &c
	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// Validate checks the configuration for required fields and proper formatting.
func (cfg *Config) Validate() error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			for _, fe := range fieldErrors {
				switch fe.Field() {
				case "Host":
					if fe.Tag() == "excludes" {
						return errors.New("host must be a bare hostname or IP, without a scheme")
					}
					return errors.New("host is required")
				case "Realm":
					return errors.New("realm is required")
				}
			}
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// WriteConfig writes the current configuration to the specified file
// If no file is specified, it uses the default config location
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), os.ModePerm)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	err = os.WriteFile(file, yamlStr, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration settings: the target host, authentication realm,
and the untrusted-certificate toggle. Passwords and session tickets are
never stored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hostFlag, _ := cmd.Flags().GetString("host")
		if hostFlag != "" {
			return setHostConfig(cmd, hostFlag)
		}

		// If no specific flag is provided, show help
		cmd.Help()
		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := LoadConfig(configFile); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				fmt.Println("pvecontrol config file not found. Configure the target host with \"pvecontrol config --host <host>\" first.")
				return ErrAlreadyHandled
			}
			return err
		}
		cfg := GetConfig()

		if jsonOutput {
			printJSON(map[string]any{
				"host":     cfg.Host,
				"realm":    cfg.Realm,
				"username": cfg.Username,
				"insecure": cfg.Insecure,
			})
			return nil
		}
		fmt.Printf("Host:     %s\n", cfg.Host)
		fmt.Printf("Realm:    %s\n", cfg.Realm)
		if cfg.Username != "" {
			fmt.Printf("Username: %s\n", cfg.Username)
		}
		if cfg.Insecure {
			warnLabel.Println("Certificate validation is DISABLED for this host")
		}
		return nil
	},
}

func init() {
	configCmd.Flags().String("host", "", "Set the Proxmox VE host (bare hostname or IP, e.g. pve.example.com)")
	configCmd.Flags().String("realm", DefaultRealm, "Authentication realm")
	configCmd.Flags().String("user", "", "Username to remember for logins")
	configCmd.Flags().Bool("insecure", false, "Accept any server certificate (reduces transport security)")

	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// setHostConfig writes a fresh configuration for the given host
func setHostConfig(cmd *cobra.Command, host string) error {
	configPath := configFile
	if configPath == "" {
		var err error
		configPath, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	if strings.Contains(host, "://") {
		return errors.New("host must be a bare hostname or IP, without a scheme")
	}

	realm, _ := cmd.Flags().GetString("realm")
	user, _ := cmd.Flags().GetString("user")
	insecure, _ := cmd.Flags().GetBool("insecure")

	cfg := &Config{
		Version:  "0.1.0",
		Host:     host,
		Realm:    realm,
		Username: user,
		Insecure: insecure,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cfg.WriteConfig(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"host":        cfg.Host,
			"realm":       cfg.Realm,
			"config_file": configPath,
		})
	} else {
		fmt.Printf("Host configured: %s (realm %s)\n", cfg.Host, cfg.Realm)
		fmt.Printf("Config file: %s\n", configPath)
		if cfg.Insecure {
			warnLabel.Println("Certificate validation is DISABLED for this host")
		}
	}

	return nil
}
