package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/doeshing/ytgenius/internal/domain"
)

func newAuthCommand(e *env) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the signed-in session",
	}
	authCmd.AddCommand(
		newAuthLoginCommand(e),
		newAuthStatusCommand(e),
		newAuthLogoutCommand(e),
	)
	return authCmd
}

func newAuthLoginCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "login [access-token]",
		Short: "Store an access token issued by the web dashboard",
		Long: "Stores the access token in ~/.ytgenius/session.yaml. When no token is given " +
			"it is read from a hidden prompt, or from stdin when piped.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			} else {
				var err error
				token, err = readToken(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			session, err := e.container.Sessions.SignIn(cmd.Context(), token)
			if err != nil {
				return err
			}
			e.renderer.Success("Signed in as %s", describeUser(session.User))
			if !session.ExpiresAt.IsZero() {
				e.renderer.Dim("Token expires %s", session.ExpiresAt.Local().Format(domain.TimestampFormat))
			}
			return nil
		},
	}
}

func newAuthStatusCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is signed in",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := e.container.Sessions
			session, err := store.Inspect(cmd.Context())
			if err != nil {
				return err
			}
			if session == nil {
				e.renderer.Warn("not signed in (run `ytgenius auth login` or set %s)", store.TokenEnvVar())
				return nil
			}
			if session.Expired(time.Now()) {
				e.renderer.Warn("session for %s expired at %s", describeUser(session.User),
					session.ExpiresAt.Local().Format(domain.TimestampFormat))
				return nil
			}
			e.renderer.Success("Signed in as %s", describeUser(session.User))
			if os.Getenv(store.TokenEnvVar()) != "" {
				e.renderer.Dim("Token source: $%s", store.TokenEnvVar())
			} else {
				e.renderer.Dim("Token source: %s", store.Path())
			}
			if session.LastKnownBalance != nil {
				e.renderer.Dim("Coins: %d", *session.LastKnownBalance)
			}
			return nil
		},
	}
}

func newAuthLogoutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.container.Sessions.SignOut(); err != nil {
				return err
			}
			e.renderer.Success("Signed out")
			return nil
		},
	}
}

func readToken(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Access token: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func describeUser(u domain.User) string {
	if u.Email == "" {
		return u.Name()
	}
	if u.DisplayName == "" {
		return u.Email
	}
	return fmt.Sprintf("%s <%s>", u.DisplayName, u.Email)
}
