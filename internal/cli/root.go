// Package cli contains the portal commands. Each command that shows a view
// of the platform is gated by the route guard on that view's path.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"linkup/portal/internal/api"
	"linkup/portal/internal/app"
	"linkup/portal/internal/auth"
	"linkup/portal/internal/config"
	"linkup/portal/internal/output"
	"linkup/portal/internal/routes"
)

var (
	cfgFile    string
	verbose    bool
	outputFlag string
	cfg        *config.Config
	logger     *slog.Logger
	printer    *output.Printer
	version    = "dev"

	// newApp is replaced in tests.
	newApp = app.New
)

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "LinkUp internship and work-study platform client",
	Long: `portal talks to the LinkUp platform API on behalf of a student, a
company, the administration or a tutor.

The session opened by "portal login" is kept on disk (or in Postgres when
session.database_url is set) and reused by every other command until
"portal logout".

Example usage:
  portal login -e jean.dupont@example.com
  portal offres list --type STAGE
  portal candidatures apply 42 --letter lettre.txt
  portal notifications watch
  portal serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return output.ExitSuccess
	}

	var cliErr *output.CLIError
	if !errors.As(err, &cliErr) {
		cliErr = &output.CLIError{Summary: err.Error(), ExitCode: output.ExitGeneral, Err: err}
	}
	p := printer
	if p == nil {
		p = output.NewPrinter(os.Stdout, os.Stderr, output.ResolveColors(true), output.FormatTable)
	}
	p.FormatError(cliErr)
	return cliErr.ExitCode
}

func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .portal.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "output format: table, json or yaml")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &output.CLIError{
			Summary:    err.Error(),
			Suggestion: fmt.Sprintf("run '%s --help' for usage", cmd.CommandPath()),
			ExitCode:   output.ExitUsageError,
			Err:        err,
		}
	})
}

func initConfig(cmd *cobra.Command) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return &output.CLIError{
			Summary:    "invalid configuration",
			Detail:     err.Error(),
			Suggestion: "check .portal.yaml and the PORTAL_* environment variables",
			ExitCode:   output.ExitConfigError,
			Err:        err,
		}
	}
	cfg = loaded

	raw := cfg.Output.Format
	if outputFlag != "" {
		raw = outputFlag
	}
	format, err := output.ParseFormat(raw)
	if err != nil {
		return &output.CLIError{Summary: err.Error(), ExitCode: output.ExitUsageError, Err: err}
	}

	logger = app.NewLogger(cfg.Logging, cmd.ErrOrStderr(), verbose)
	printer = output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ResolveColors(cfg.Output.Colors), format)

	logger.Debug("configuration loaded",
		"api", cfg.API.BaseURL,
		"session_file", cfg.Session.File,
		"session_db", cfg.Session.DatabaseURL != "",
	)
	return nil
}

// withApp opens the session for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return &output.CLIError{
			Summary:  "cannot open session",
			Detail:   err.Error(),
			ExitCode: output.ExitConfigError,
			Err:      err,
		}
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Debug("close app", "error", err)
		}
	}()
	return fn(ctx, a)
}

// requireView lets the command through when the guard renders at least one
// of paths for the current session.
func requireView(a *app.App, paths ...string) error {
	for _, p := range paths {
		if d, _ := a.Decide(p); d == routes.Render {
			return nil
		}
	}
	if err := requireSession(a); err != nil {
		return err
	}
	return &output.CLIError{
		Summary:    "this view is not available for your role",
		Detail:     "requires " + strings.Join(paths, " or "),
		Suggestion: "run 'portal login' with another account",
		ExitCode:   output.ExitAuthError,
	}
}

// requireSession admits any logged-in user. The navbar features are not
// tied to a single view.
func requireSession(a *app.App) error {
	if _, ok := a.Session.CurrentUser(); ok {
		return nil
	}
	return &output.CLIError{
		Summary:    "not logged in",
		Suggestion: "run 'portal login'",
		ExitCode:   output.ExitAuthError,
		Err:        auth.ErrNotAuthenticated,
	}
}

// currentRole is only meaningful after requireView succeeded.
func currentRole(a *app.App) auth.Role {
	u, _ := a.Session.CurrentUser()
	return u.Role
}

// failure turns an error from the session or the API into a CLIError.
func failure(summary string, err error) error {
	var cliErr *output.CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var verr *api.ValidationError
	if errors.As(err, &verr) {
		return &output.CLIError{Summary: summary, Detail: verr.Message, ExitCode: output.ExitUsageError, Err: err}
	}
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return &output.CLIError{Summary: summary, Detail: authErr.Message, ExitCode: output.ExitAuthError, Err: err}
	}
	if api.IsUnauthorized(err) {
		return &output.CLIError{
			Summary:    summary,
			Detail:     api.MessageOr(err, "the platform refused the session"),
			Suggestion: "run 'portal login' again",
			ExitCode:   output.ExitAuthError,
			Err:        err,
		}
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		detail := api.MessageOr(err, "")
		if detail == "" {
			detail = apiErr.Error()
		}
		return &output.CLIError{Summary: summary, Detail: detail, ExitCode: output.ExitAPIError, Err: err}
	}
	return &output.CLIError{Summary: summary, Detail: err.Error(), ExitCode: output.ExitGeneral, Err: err}
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, &output.CLIError{
			Summary:  fmt.Sprintf("invalid %s id %q", what, raw),
			ExitCode: output.ExitUsageError,
		}
	}
	return id, nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func fullName(first, last string) string {
	return orDash(strings.TrimSpace(first + " " + last))
}
