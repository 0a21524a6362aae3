package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"linkup/portal/internal/app"
	"linkup/portal/internal/output"
	"linkup/portal/internal/routes"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the views and whether your session may open them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(_ context.Context, a *app.App) error {
			type row struct {
				Path     string `json:"path" yaml:"path"`
				Title    string `json:"title" yaml:"title"`
				Roles    string `json:"roles" yaml:"roles"`
				Decision string `json:"decision" yaml:"decision"`
			}
			var rows []row
			for _, r := range a.Routes.Routes() {
				roles := "public"
				if !r.Public {
					names := make([]string, len(r.Roles))
					for i, role := range r.Roles {
						names[i] = string(role)
					}
					roles = strings.Join(names, ",")
				}
				d, _ := a.Decide(r.Pattern)
				rows = append(rows, row{Path: r.Pattern, Title: r.Title, Roles: roles, Decision: d.String()})
			}
			if ok, err := printer.Data(rows); ok {
				return err
			}
			t := output.NewTable(printer.Out(), []string{"PATH", "TITRE", "RÔLES", "DÉCISION"})
			for _, r := range rows {
				t.AddRow(r.Path, r.Title, r.Roles, r.Decision)
			}
			return t.Render()
		})
	},
}

var routesDecideCmd = &cobra.Command{
	Use:   "decide <path>",
	Short: "Run the guard on a path for the current session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(_ context.Context, a *app.App) error {
			d, r := a.Decide(args[0])
			result := map[string]string{"path": args[0], "decision": d.String()}
			if d == routes.RedirectToLogin {
				result["location"] = routes.LoginPath
			} else {
				result["title"] = r.Title
			}
			if ok, err := printer.Data(result); ok {
				return err
			}
			if d == routes.RedirectToLogin {
				printer.Print("%s -> redirect to %s", args[0], routes.LoginPath)
				return nil
			}
			printer.Print("%s -> render %q", args[0], r.Title)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
	routesCmd.AddCommand(routesDecideCmd)
}
