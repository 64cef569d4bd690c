package cli

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pvecontrol/pvecontrol/internal/pveclient"
)

// newConnectCmd creates and returns a new connect command
func newConnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Login and show the cluster nodes",
		Long: `Connect to the configured Proxmox VE host: authenticate, probe the server
version, and list the cluster nodes.

The version probe is advisory; when it fails, the connect sequence continues
without it. The node list is required; when it fails, connect aborts.

Example:
  pvecontrol connect --user root
  echo "$PASSWORD" | pvecontrol connect --user root --password-stdin`,
		RunE: runConnect,
	}

	cmd.Flags().String("user", "", "Username to authenticate as")
	cmd.Flags().Bool("password-stdin", false, "Read the password from stdin")
	return cmd
}

// runConnect handles the connect command execution
func runConnect(cmd *cobra.Command, args []string) error {
	client, err := establishSession(cmd)
	if err != nil {
		return err
	}

	version, nodes, err := connectSequence(cmd.Context(), client)
	if err != nil {
		return err
	}

	if jsonOutput {
		kv := map[string]any{
			"username": client.Username(),
			"nodes":    nodes,
		}
		if version != "" {
			kv["server_version"] = version
		}
		printJSON(kv)
		return nil
	}

	okLabel.Printf("✓ Logged in as %s\n", client.Username())
	if version != "" {
		fmt.Printf("Proxmox VE %s\n", formatServerVersion(version))
	}
	printNodes(nodes)
	return nil
}

// connectSequence runs the post-login part of connect. The version probe is
// best effort: it reports informational metadata, not operational state, so
// its failure is logged and the sequence continues with an empty version.
// The node list is load-bearing: its failure aborts the sequence.
func connectSequence(ctx context.Context, client *pveclient.Client) (string, []pveclient.NodeInfo, error) {
	version, err := client.Version(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("server version probe failed")
		version = ""
	}

	nodes, err := client.ListNodes(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("listing nodes failed: %w", err)
	}
	return version, nodes, nil
}

// formatServerVersion renders the reported version, flagging releases that
// predate what this tool is tested against.
func formatServerVersion(version string) string {
	v, err := semver.NewVersion(version)
	if err != nil {
		return version
	}
	if v.Major() < 7 {
		return fmt.Sprintf("%s (predates tested releases)", v)
	}
	return v.String()
}

// printNodes renders the node table with online state derived from the
// status string.
func printNodes(nodes []pveclient.NodeInfo) {
	if len(nodes) == 0 {
		fmt.Println("No nodes reported.")
		return
	}
	fmt.Printf("%-24s %s\n", "NODE", "STATUS")
	for _, node := range nodes {
		if node.Online() {
			fmt.Printf("%-24s ", node.Node)
			okLabel.Println("online")
		} else {
			fmt.Printf("%-24s ", node.Node)
			warnLabel.Println("unknown/offline")
		}
	}
}
