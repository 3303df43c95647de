package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/staff-console/modules/core/domain/aggregates/user"
	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/notification"
	"github.com/iota-uz/staff-console/pkg/types"
)

// readSecret takes the first line of r when the flag was left empty.
func readSecret(r io.Reader, value string) string {
	if value != "" {
		return value
	}
	line, _ := bufio.NewReader(r).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func newLoginCmd(root *rootOptions) *cobra.Command {
	var dto user.SignInDTO
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dto.Password = readSecret(cmd.InOrStdin(), dto.Password)
			return withRuntime(cmd, root, false, func(rt *runtime) error {
				if err := rt.authService().SignIn(cmd.Context(), &dto); err != nil {
					return withCode(classifyAuth(err), err)
				}
				rt.notifier.OpenNotification("signed in as "+dto.Email, notification.Success)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dto.Email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&dto.Password, "password", "", "Password; read from stdin when empty")
	cmd.Flags().BoolVar(&dto.Remember, "remember", true, "Keep the token for later runs")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// classifyAuth reports rejected credentials as an auth failure rather than
// a plain API error.
func classifyAuth(err error) int {
	if apiclient.IsStatus(err, http.StatusBadRequest) && len(apiclient.FieldErrors(err)) == 0 {
		return exitAuth
	}
	return classify(err)
}

func newLogoutCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, root, true, func(rt *runtime) error {
				if err := rt.authService().SignOut(cmd.Context()); err != nil {
					return err
				}
				rt.notifier.OpenNotification("signed out", notification.Info)
				return nil
			})
		},
	}
}

func newSignupCmd(root *rootOptions) *cobra.Command {
	var dto user.SignUpDTO
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dto.Password = readSecret(cmd.InOrStdin(), dto.Password)
			return withRuntime(cmd, root, false, func(rt *runtime) error {
				account, status, err := rt.authService().SignUp(cmd.Context(), &dto)
				if err != nil {
					return err
				}
				if rt.json() {
					return writeJSONLine(rt.out, account)
				}
				rt.notifier.OpenNotification(statusText(status), notification.Success)
				_, _ = fmt.Fprintf(rt.out, "registered #%d %s %s <%s>\n", account.ID, account.FirstName, account.LastName, account.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dto.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&dto.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&dto.Email, "email", "", "Email")
	cmd.Flags().StringVar(&dto.Password, "password", "", "Password; read from stdin when empty")
	cmd.Flags().BoolVar(&dto.Mailing, "mailing", false, "Subscribe to the mailing list")
	return cmd
}

func newWhoamiCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, root, true, func(rt *runtime) error {
				t, err := rt.authService().Current()
				if err != nil {
					return err
				}
				if rt.json() {
					return writeJSONLine(rt.out, map[string]any{"email": t.Email, "issued_at": t.IssuedAt})
				}
				_, _ = fmt.Fprintf(rt.out, "%s (signed in %s)\n", t.Email, t.IssuedAt.Format("2006-01-02 15:04"))
				return nil
			})
		},
	}
}

func printNavigation(w io.Writer, items []types.NavigationItem, depth int) {
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "%s%-28s %s\n", strings.Repeat("  ", depth), item.Name, item.Href)
		printNavigation(w, item.Children, depth+1)
	}
}

func newMenuCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "List console pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, root, false, func(rt *runtime) error {
				if rt.json() {
					return writeJSONLine(rt.out, rt.app.NavItems())
				}
				_, _ = fmt.Fprintln(rt.out, rt.title.Heading())
				printNavigation(rt.out, rt.app.NavItems(), 0)
				return nil
			})
		},
	}
}
