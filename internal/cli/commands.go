// Package cli implements the pvecontrol command line surface: connect,
// nodes, reboot, shutdown, version, logout, and config. It is a thin caller
// around the pveclient session client; all network behavior lives there.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pvecontrol/pvecontrol/internal/common/logtrace"
	"github.com/pvecontrol/pvecontrol/internal/pveclient"
)

var (
	// Global flags
	jsonOutput bool
	configFile string
	debugLog   bool
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)
var warnLabel = color.New(color.FgYellow)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pvecontrol [command] [flags]",
	Short: "pvecontrol - power control for Proxmox VE cluster nodes",
	Long: `pvecontrol is a command line client for the Proxmox VE management API.
It authenticates with a ticket, lists cluster nodes, and issues reboot or
shutdown commands against a selected node.

Examples:
  # Store the target host
  pvecontrol config --host pve.example.com --realm pam

  # Login and show the cluster nodes
  pvecontrol connect --user root

  # Reboot a node
  pvecontrol reboot pve1

  # Shut a node down without the confirmation prompt
  pvecontrol shutdown pve2 --yes`,
	PersistentPreRun: preRunHandlePersistents,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	// Set up persistent flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&debugLog, "debug", "", false, "Log every API request to stderr")

	// Add commands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConnectCmd())
	rootCmd.AddCommand(newNodesCmd())
	rootCmd.AddCommand(newRebootCmd())
	rootCmd.AddCommand(newShutdownCmd())
	rootCmd.AddCommand(newLogoutCmd())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error

	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		if jsonOutput {
			kv := map[string]string{
				"error": err.Error(),
			}
			printJSON(kv)
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// preRunHandlePersistents handles persistent flags and configuration loading before command execution
func preRunHandlePersistents(cmd *cobra.Command, args []string) {
	logtrace.InitLogger(debugLog)

	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	isConfig := false
	c := cmd
	for c != nil {
		if c.Name() == "config" || c.Name() == "version" {
			isConfig = true
			break
		}
		c = c.Parent()
	}

	if !isConfig {
		if err := LoadConfig(configFile); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				fmt.Println("pvecontrol config file not found. Configure the target host with \"pvecontrol config --host <host>\" first.")
				os.Exit(1)
			} else {
				fmt.Printf("%s\n", err.Error())
				os.Exit(1)
			}
		}
	}
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of pvecontrol and, best effort, of the server",
		Run: func(cmd *cobra.Command, args []string) {
			configPath, err := GetDefaultConfigPath()
			if err != nil {
				configPath = "unknown"
			}

			serverVer := probeServerVersion(cmd.Context())

			if jsonOutput {
				kv := map[string]string{
					"version":     getCLIVersion(),
					"config_file": configPath,
				}
				if serverVer != "" {
					kv["server_version"] = serverVer
				}
				printJSON(kv)
			} else {
				cmd.Printf("pvecontrol %s\n", getCLIVersion())
				cmd.Printf("Config file: %s\n", configPath)
				if serverVer != "" {
					cmd.Printf("Server: Proxmox VE %s\n", formatServerVersion(serverVer))
				}
			}
		},
	}
}

// probeServerVersion asks the configured server for its version. The probe
// is best effort and non-interactive: it needs a loadable config, a
// remembered username, and a password in the environment. Anything missing,
// or any call failing, skips the probe with no output.
func probeServerVersion(ctx context.Context) string {
	if err := LoadConfig(configFile); err != nil {
		return ""
	}
	cfg := GetConfig()
	if cfg.Username == "" {
		return ""
	}
	password := passwordFromEnv()
	if password == "" {
		return ""
	}
	return serverVersion(ctx, newAPIClient(cfg), cfg.Username, password, cfg.Realm)
}

// serverVersion logs in and queries the version, reporting "" on any
// failure.
func serverVersion(ctx context.Context, client *pveclient.Client, username, password, realm string) string {
	if err := client.Login(ctx, username, password, realm); err != nil {
		return ""
	}
	version, err := client.Version(ctx)
	if err != nil {
		return ""
	}
	return version
}

// printJSON prints the given map as JSON to stdout
func printJSON(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(jsonData))
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.1.0"
}
