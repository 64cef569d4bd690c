package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pvecontrol/pvecontrol/internal/pveclient"
)

// newRebootCmd creates and returns a new reboot command
func newRebootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reboot <node>",
		Short: "Reboot a cluster node",
		Long: `Send a reboot command to the named node. Success means the server accepted
the request; the node's actual power state is not tracked. The command is
never retried: re-sending a power command is not guaranteed idempotent.

Example:
  pvecontrol reboot pve1
  pvecontrol reboot pve1 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPowerCommand(cmd, args[0], "reboot", func(ctx context.Context, c *pveclient.Client, node string) error {
				return c.RebootNode(ctx, node)
			})
		},
	}
	addPowerFlags(cmd)
	return cmd
}

// newShutdownCmd creates and returns a new shutdown command
func newShutdownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shutdown <node>",
		Short: "Shut a cluster node down",
		Long: `Send a shutdown command to the named node. Success means the server accepted
the request; the node's actual power state is not tracked. The command is
never retried: re-sending a power command is not guaranteed idempotent.

Example:
  pvecontrol shutdown pve2
  pvecontrol shutdown pve2 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPowerCommand(cmd, args[0], "shutdown", func(ctx context.Context, c *pveclient.Client, node string) error {
				return c.ShutdownNode(ctx, node)
			})
		},
	}
	addPowerFlags(cmd)
	return cmd
}

func addPowerFlags(cmd *cobra.Command) {
	cmd.Flags().String("user", "", "Username to authenticate as")
	cmd.Flags().Bool("password-stdin", false, "Read the password from stdin")
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

// runPowerCommand confirms, logs in, and fires the power command. The
// confirmation happens before login so an aborted prompt costs no network
// round trip.
func runPowerCommand(cmd *cobra.Command, node, action string, fire func(context.Context, *pveclient.Client, string) error) error {
	skipConfirm, _ := cmd.Flags().GetBool("yes")
	if !skipConfirm {
		ok, err := confirm(fmt.Sprintf("%s node %q?", titled(action), node))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return ErrAlreadyHandled
		}
	}

	client, err := establishSession(cmd)
	if err != nil {
		return err
	}

	if err := fire(cmd.Context(), client, node); err != nil {
		return fmt.Errorf("%s %q failed: %w", action, node, err)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"node":   node,
			"action": action,
			"status": "accepted",
		})
	} else {
		okLabel.Printf("✓ %s command accepted for %s\n", action, node)
	}
	return nil
}

func titled(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// confirm asks a yes/no question on stderr and reads the answer from stdin.
func confirm(question string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
