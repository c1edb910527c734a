package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matthieukhl/storefront/internal/api"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/session"
	"github.com/spf13/cobra"
)

var (
	authEmail    string
	authPassword string
	regUsername  string
	regRole      string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and keep the session on disk",
	Long: `Log in against the API. The token and user record are stored in the
session database and reused by every other command until logout.

The password is read from standard input when --password is not given.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE:  runRegister,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd)

	loginCmd.Flags().StringVarP(&authEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&authPassword, "password", "p", "", "account password (read from stdin when empty)")
	_ = loginCmd.MarkFlagRequired("email")

	registerCmd.Flags().StringVarP(&regUsername, "username", "u", "", "display name")
	registerCmd.Flags().StringVarP(&authEmail, "email", "e", "", "account email")
	registerCmd.Flags().StringVarP(&authPassword, "password", "p", "", "account password (read from stdin when empty)")
	registerCmd.Flags().StringVar(&regRole, "role", models.RoleUser, "account role: user or admin")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("email")
}

func readPassword(cmd *cobra.Command) (string, error) {
	if authPassword != "" {
		return authPassword, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.session.Login(cmd.Context(), authEmail, password)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidCredentials):
			return session.ErrInvalidCredentials
		case api.IsKind(err, api.KindNetwork):
			return fmt.Errorf("cannot reach %s: %w", a.client.BaseURL(), err)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Logged in as %s (%s)\n", user.Email, user.Role)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.session.IsAuthenticated() {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
		return nil
	}
	if err := a.session.Logout(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "👋 Logged out")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.session.Register(cmd.Context(), models.RegisterRequest{
		Role:     regRole,
		Username: regUsername,
		Email:    authEmail,
		Password: password,
	})
	if errors.Is(err, session.ErrAlreadyRegistered) {
		fmt.Fprintln(cmd.OutOrStdout(), "⚠️  User already exists, try logging in")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Registered %s (%s)\n", resp.Email, resp.Role)
	fmt.Fprintf(cmd.OutOrStdout(), "💡 Log in with: storefront login --email %s\n", resp.Email)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	user, ok := a.session.Current()
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in (guest)")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Username, user.Email)
	fmt.Fprintf(cmd.OutOrStdout(), "   Role: %s\n", user.Role)
	fmt.Fprintf(cmd.OutOrStdout(), "   Admin: %t\n", user.IsAdmin())
	return nil
}
