// Package cli implements schoolctl, the command-line client for the school
// management API. It wraps pkg/client and keeps the login session on disk
// between invocations.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theswapneil/school-management-system/pkg/client"
)

const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitAuth     = 2
	ExitInternal = 3
)

// CLI holds the command tree and the shared API client.
type CLI struct {
	rootCmd *cobra.Command
	api     *client.Client

	serverURL   string
	sessionPath string
	jsonOutput  bool
}

func New() *CLI {
	c := &CLI{}
	c.rootCmd = c.newRootCmd()
	return c
}

func (c *CLI) Execute() int {
	if err := c.rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403) {
			return ExitAuth
		}
		return ExitError
	}
	return ExitSuccess
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "schoolctl",
		Short:         "School management API client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initClient()
		},
	}

	cmd.PersistentFlags().StringVar(&c.serverURL, "server", envOr("SCHOOL_SERVER_URL", "http://localhost:5000"), "API server base URL")
	cmd.PersistentFlags().StringVar(&c.sessionPath, "session-file", "", "session file (default: user config dir)")
	cmd.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "machine-readable JSON output")

	cmd.AddCommand(c.newAuthCmd())
	cmd.AddCommand(c.newStudentsCmd())
	cmd.AddCommand(c.newClassesCmd())
	cmd.AddCommand(c.newAttendanceCmd())
	cmd.AddCommand(c.newFeesCmd())

	return cmd
}

func (c *CLI) initClient() error {
	path := c.sessionPath
	if path == "" {
		defaultPath, err := client.DefaultSessionPath()
		if err != nil {
			return fmt.Errorf("resolve session path: %w", err)
		}
		path = defaultPath
	}
	session, err := client.LoadSession(path)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	c.api = client.New(c.serverURL, session)
	return nil
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func (c *CLI) printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *CLI) printf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
}
