package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newNodesCmd creates and returns a new nodes command
func newNodesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "List the cluster nodes",
		Long: `List the cluster nodes in the order the server reports them.
A node shows as online only when the server says so; any other status, or
none, renders as unknown/offline.

Example:
  pvecontrol nodes --user root`,
		RunE: runNodes,
	}

	cmd.Flags().String("user", "", "Username to authenticate as")
	cmd.Flags().Bool("password-stdin", false, "Read the password from stdin")
	return cmd
}

// runNodes handles the nodes command execution
func runNodes(cmd *cobra.Command, args []string) error {
	client, err := establishSession(cmd)
	if err != nil {
		return err
	}

	nodes, err := client.ListNodes(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing nodes failed: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]any{"nodes": nodes})
		return nil
	}
	printNodes(nodes)
	return nil
}
