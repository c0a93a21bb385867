// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/aulagate/internal/backend"
	"github.com/taibuivan/aulagate/internal/navigation"
	"github.com/taibuivan/aulagate/internal/platform/constants"
	"github.com/taibuivan/aulagate/internal/platform/sec"
	"github.com/taibuivan/aulagate/internal/platform/validate"
	"github.com/taibuivan/aulagate/pkg/slice"
)

// # Session Commands

func newLoginCommand(opts *options) *cobra.Command {
	var token, userID, role, email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a session",
		Long: `Store a session in the local file.

Either pass a token issued by the school API (with the user id and role
stored beside it), or sign in with an email and password.

Examples:
  gatectl login --token eyJhbGciOi... --user 42 --role Maestro
  gatectl login --email maestra@escuela.edu --password secreto`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			switch {
			case email != "" || password != "":
				if email == "" || password == "" {
					return errors.New("--email and --password go together")
				}
				client := backend.NewClient(opts.backendURL, opts.timeout, nil)
				grant, err := client.Login(ctx, email, password)
				if err != nil {
					return fmt.Errorf("sign in: %w", err)
				}
				token, userID, role = grant.Token, grant.UserID, grant.Role
			case token == "":
				return errors.New("either --token or --email/--password is required")
			}

			if err := (&validate.Validator{}).Role("role", role).Err(); err != nil {
				return fmt.Errorf("unknown role %q: %w", role, err)
			}
			parsed, _ := sec.ParseRole(role)

			service := opts.service()
			if err := service.Establish(ctx, token, userID, parsed); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in. Home: %s\n", service.HomeRoute(ctx))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&token, "token", "", "Token issued by the school API")
	flags.StringVar(&userID, "user", "", "User id stored beside the token")
	flags.StringVar(&role, "role", "", "Role stored beside the token")
	flags.StringVar(&email, "email", "", "Sign in with this email")
	flags.StringVar(&password, "password", "", "Password for --email")

	return cmd
}

func newWhoamiCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			service := opts.service()

			// IsAuthenticated clears an expired session.
			status := service.Inspect(ctx)
			if !service.IsAuthenticated(ctx) {
				fmt.Fprintf(out, "Not signed in (%s)\n", status.State)
				return nil
			}

			user := status.User
			fmt.Fprintf(out, "User:        %s\n", user.ID)
			fmt.Fprintf(out, "Role:        %s (%s)\n", user.Role.String(), user.Role.Label())
			if user.Email != "" {
				fmt.Fprintf(out, "Email:       %s\n", user.Email)
			}
			if user.HasExpiry() {
				fmt.Fprintf(out, "Expires:     %s\n", user.ExpiresAt.UTC().Format(time.RFC3339))
			}
			if user.Fallback {
				fmt.Fprintln(out, "Token:       undecodable, identity from stored fields")
			}
			fmt.Fprintf(out, "Home:        %s\n", service.HomeRoute(ctx))

			names := slice.Map(service.Permissions(ctx), func(permission sec.Permission) string { return string(permission) })
			fmt.Fprintf(out, "Permissions: %s\n", strings.Join(names, ", "))
			return nil
		},
	}
}

func newLogoutCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.service().Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newHeaderCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "header",
		Short: "Print the Authorization header for the school API",
		Long: `Print the Authorization header carrying the stored token.

Examples:
  curl -H "$(gatectl header)" http://localhost:3000/api/verify-token`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header, err := opts.service().AuthHeader(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authorization: %s\n", header)
			return nil
		},
	}
}

// # Navigation Commands

func newNavigateCommand(opts *options) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "navigate <path>",
		Short: "Run a page transition and commit the page it settles on",
		Long: `Run a page transition through the guard, following redirects, and
remember the settled page as the origin of the next transition.

Examples:
  gatectl navigate /teacher/courses/42
  gatectl navigate /login --from /reset-password`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			table, err := opts.table()
			if err != nil {
				return err
			}

			service := opts.service()
			store := service.Store()
			if !cmd.Flags().Changed("from") {
				from, _ = store.Scratch(ctx, constants.ScratchLastPath)
			}

			navigator := navigation.NewNavigator(table, navigation.NewGuard(nil).Decide, nil)
			outcome, err := navigator.Navigate(ctx, clientID, service, args[0], from)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s -> %s (%s)\n", outcome.Requested, outcome.First.Verdict, outcome.First.Reason)
			if outcome.Redirected() {
				for _, hop := range outcome.Redirects {
					fmt.Fprintf(out, "  redirect %s\n", hop)
				}
			}
			fmt.Fprintf(out, "Settled on %s [%s]\n", outcome.Target.Path, outcome.Target.Route.Name)

			return store.SetScratch(ctx, constants.ScratchLastPath, outcome.Target.Path)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Origin path (default: last settled page)")
	return cmd
}

func newCanCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "can <path|permission>",
		Short: "Report whether the current user may enter a path or holds a permission",
		Long: `Report whether the current user may enter a path or holds a permission.

Arguments starting with "/" are page paths; anything else is a permission.

Examples:
  gatectl can /teacher/courses/5
  gatectl can grades.manage`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			service := opts.service()
			target := args[0]

			if !strings.HasPrefix(target, "/") {
				role := sec.RoleNone
				if user, ok := service.CurrentUser(ctx); ok {
					role = user.Role
				}
				if sec.Can(role, sec.Permission(target)) {
					fmt.Fprintf(out, "yes: %s\n", target)
					return nil
				}
				fmt.Fprintf(out, "no: %s (role %s)\n", target, role.Label())
				return nil
			}

			if service.CanAccessRoute(ctx, target) {
				fmt.Fprintf(out, "yes: %s\n", target)
				return nil
			}
			fmt.Fprintf(out, "no: %s (home is %s)\n", target, service.HomeRoute(ctx))
			return nil
		},
	}
}

func newRoutesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, route := range table.Routes() {
				access := "public"
				switch {
				case route.Redirect != "":
					access = "-> " + route.Redirect
				case route.RequiresAuth:
					access = "auth"
				}

				line := fmt.Sprintf("%-42s %-22s %s", route.Path, route.Name, access)
				if len(route.Roles) > 0 {
					line += " roles=" + strings.Join(slice.Map(route.Roles, sec.Role.String), ",")
				}
				if route.BeforeEnter != nil {
					line += " guarded"
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
