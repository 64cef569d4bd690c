package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newLogoutCmd creates and returns a new logout command
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the remembered username",
		Long: `Logout is purely local. The protocol has no server-side logout call, and
session tickets only ever live in memory for the duration of one command,
so there is nothing else to discard. This clears the username remembered
in the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig()
			if cfg == nil {
				return fmt.Errorf("no configuration loaded")
			}

			cfg.Username = ""
			if err := cfg.WriteConfig(configFile); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			if jsonOutput {
				printJSON(map[string]string{"status": "logged out"})
			} else {
				okLabel.Println("✓ Logged out")
				fmt.Println("Session tickets are never stored; the remembered username was cleared.")
			}
			return nil
		},
	}
}
