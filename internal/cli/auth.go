package cli

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/theswapneil/school-management-system/pkg/client"
)

func (c *CLI) newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Login, registration and session commands",
	}

	cmd.AddCommand(c.newAuthLoginCmd())
	cmd.AddCommand(c.newAuthRegisterCmd())
	cmd.AddCommand(c.newAuthWhoamiCmd())
	cmd.AddCommand(c.newAuthLogoutCmd())

	return cmd
}

func (c *CLI) newAuthLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				pw, err := readPassword("Password: ")
				if err != nil {
					return err
				}
				password = pw
			}

			out, err := c.api.Login(cmd.Context(), client.LoginInput{Email: email, Password: password})
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printJSON(out.User)
			}
			c.printf("Logged in as %s %s (%s)\n", out.User.FirstName, out.User.LastName, out.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func (c *CLI) newAuthRegisterCmd() *cobra.Command {
	var input client.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.Email == "" || input.FirstName == "" || input.LastName == "" {
				return errors.New("--email, --first-name and --last-name are required")
			}
			if input.Password == "" {
				pw, err := readPassword("Password: ")
				if err != nil {
					return err
				}
				input.Password = pw
			}

			out, err := c.api.Register(cmd.Context(), input)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printJSON(out.User)
			}
			c.printf("Registered %s (%s)\n", out.User.Email, out.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Email, "email", "", "account email")
	cmd.Flags().StringVar(&input.Password, "password", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&input.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&input.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&input.Role, "role", "", "role (admin, teacher, student, parent; default student)")
	return cmd
}

func (c *CLI) newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity the server sees for the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.api.Session().IsAuthenticated() {
				return errors.New("not logged in")
			}
			user, err := c.api.Me(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printJSON(user)
			}
			c.printf("%s %s <%s> role=%s\n", user.FirstName, user.LastName, user.Email, user.Role)
			return nil
		},
	}
}

func (c *CLI) newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.api.Logout(); err != nil {
				return err
			}
			c.printf("Logged out\n")
			return nil
		},
	}
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}
