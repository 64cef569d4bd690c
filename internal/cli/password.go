package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// passwordEnvVar names the environment variable the password is read from
// when no flag is given. A .env file in the working directory is honored,
// so the variable can live next to a project instead of in shell history.
const passwordEnvVar = "PVE_PASSWORD"

// resolvePassword picks the password source in order: --password-stdin,
// the environment (including .env), then an interactive no-echo prompt.
// The password is handed straight to the login call and never stored.
func resolvePassword(cmd *cobra.Command) (string, error) {
	if fromStdin, _ := cmd.Flags().GetBool("password-stdin"); fromStdin {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password from stdin: %w", err)
		}
		password := strings.TrimRight(line, "\r\n")
		if password == "" {
			return "", errors.New("empty password on stdin")
		}
		return password, nil
	}

	if password := passwordFromEnv(); password != "" {
		return password, nil
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		if len(raw) == 0 {
			return "", errors.New("empty password")
		}
		return string(raw), nil
	}

	return "", fmt.Errorf("no password provided; use --password-stdin or set %s", passwordEnvVar)
}

// passwordFromEnv reads the password from the environment, honoring a .env
// file in the working directory.
func passwordFromEnv() string {
	if cwd, err := os.Getwd(); err == nil {
		_ = godotenv.Load(filepath.Join(cwd, ".env")) // no error if .env doesn't exist
	}
	return os.Getenv(passwordEnvVar)
}
