// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cli implements gatectl, a command-line client of the gate.

It keeps one session in a local file and runs the same guard and navigator
the server runs, so route tables and tokens can be checked without a browser.

Usage:

	gatectl login --email maestra@escuela.edu --password secreto
	gatectl navigate /teacher/courses/42
	gatectl can /admin/payments
	gatectl logout
*/
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/aulagate/internal/navigation"
	"github.com/taibuivan/aulagate/internal/session"
)

// clientID names the single client a local session file holds.
const clientID = "gatectl"

// options holds the persistent flags shared by every command.
type options struct {
	storePath  string
	routesFile string
	backendURL string
	timeout    time.Duration

	now func() time.Time
}

func (opts *options) service() *session.Service {
	return session.NewService(session.NewFileStore(opts.storePath), session.WithClock(opts.now))
}

func (opts *options) table() (*navigation.Table, error) {
	if opts.routesFile == "" {
		return navigation.MustTable(navigation.DefaultRoutes()), nil
	}

	file, err := os.Open(opts.routesFile)
	if err != nil {
		return nil, fmt.Errorf("open routes file: %w", err)
	}
	defer file.Close()

	routes, err := navigation.LoadRoutes(file)
	if err != nil {
		return nil, err
	}
	return navigation.NewTable(routes)
}

// NewRootCommand builds the gatectl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{now: time.Now}

	root := &cobra.Command{
		Use:   "gatectl",
		Short: "Inspect sessions and navigation decisions of the school gate",
		Long: `gatectl keeps a session in a local file and evaluates navigation against
the same route table and guard the gate server uses.

Commands:
  login     Store a session, from a token or by signing in to the school API
  whoami    Show the current user
  navigate  Run a page transition and commit the page it settles on
  can       Report whether the current user may enter a path
  logout    Clear the session
  routes    List the route table`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.storePath, "store", defaultStorePath(), "Session file")
	flags.StringVar(&opts.routesFile, "routes", "", "YAML route file (default: built-in routes)")
	flags.StringVar(&opts.backendURL, "backend", "http://localhost:3000", "School API base URL")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "School API timeout")

	root.AddCommand(
		newLoginCommand(opts),
		newWhoamiCommand(opts),
		newNavigateCommand(opts),
		newCanCommand(opts),
		newLogoutCommand(opts),
		newHeaderCommand(opts),
		newRoutesCommand(opts),
	)

	return root
}

// Execute runs gatectl with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "gatectl-session.json"
	}
	return filepath.Join(dir, "aulagate", "session.json")
}
