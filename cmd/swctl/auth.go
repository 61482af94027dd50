package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/MrEthical07/swclient"
	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	var form bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in with email and password. The password may also come from
SMARTWORK_PASSWORD so it stays out of shell history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("SMARTWORK_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or SMARTWORK_PASSWORD) are required")
			}

			c, err := a.api()
			if err != nil {
				return err
			}
			login := c.Auth.Login
			if form {
				login = c.Auth.LoginForm
			}
			res, err := login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s). Landing page: %s\n",
				res.User.Email, res.User.Role, swclient.DashboardRoute(res.User.Role))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&form, "form", false, "send the OAuth2 password form instead of JSON")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			if err := c.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Long: `Show the user cached with the session. With --remote the profile is
fetched from /auth/me, which also proves the token is still accepted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}

			var u *swclient.User
			if remote {
				if u, err = c.Auth.Me(cmd.Context()); err != nil {
					return err
				}
			} else {
				sess, ok := c.ActiveSession(cmd.Context())
				if !ok {
					return errors.New("not signed in")
				}
				u = &sess.User
			}
			printUser(cmd, u)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "ask the backend instead of reading the cached profile")
	return cmd
}

func printUser(cmd *cobra.Command, u *swclient.User) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "id:         %d\n", u.ID)
	fmt.Fprintf(out, "email:      %s\n", u.Email)
	if u.DisplayName != "" {
		fmt.Fprintf(out, "name:       %s\n", u.DisplayName)
	}
	fmt.Fprintf(out, "role:       %s\n", u.Role)
	if u.Department != "" {
		fmt.Fprintf(out, "department: %s\n", u.Department)
	}
}

func (a *app) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Wake the backend and check it answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			if err := c.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is up\n", a.cfg.BaseURL)
			return nil
		},
	}
}
