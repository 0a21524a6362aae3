package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"linkup/portal/internal/api"
	"linkup/portal/internal/app"
	"linkup/portal/internal/dashboard"
	"linkup/portal/internal/output"
	"linkup/portal/internal/routes"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the home view of your role",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireSession(a); err != nil {
				return err
			}
			role := currentRole(a)
			if err := requireView(a, routes.HomePath(role)); err != nil {
				return err
			}
			data, err := dashboard.Load(ctx, a.Client, role)
			if err != nil {
				return failure("cannot load dashboard", err)
			}
			if ok, err := printer.Data(data); ok {
				return err
			}
			u, _ := a.Session.CurrentUser()
			printer.Print("Bonjour %s", printer.Bold(u.DisplayName()))
			return renderDashboard(data)
		})
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func renderDashboard(data any) error {
	switch d := data.(type) {
	case dashboard.Student:
		printer.Print("%d unread notifications", d.Unread)
		printer.Header(fmt.Sprintf("Dernières offres (%d au total)", d.TotalOffres))
		if err := printOffres(d.LatestOffres); err != nil {
			return err
		}
		printer.Header("Mes candidatures")
		if err := printCandidatures(d.Candidatures, false); err != nil {
			return err
		}
		printer.Header("Mon stage")
		if d.Internship == nil {
			printer.Info("No tutor assigned yet")
			return nil
		}
		return printSuivis([]api.Suivi{*d.Internship})
	case dashboard.Company:
		printer.Print("%d unread notifications", d.Unread)
		printer.Header("Mes offres")
		if err := printOffres(d.Offres); err != nil {
			return err
		}
		printer.Header("Conventions")
		return printConventions(d.Conventions)
	case dashboard.Admin:
		printer.Print("%d unread notifications", d.Unread)
		printer.Header("Statistiques")
		t := output.NewTable(printer.Out(), []string{"INDICATEUR", "VALEUR"})
		s := d.Stats
		for _, row := range []struct {
			label string
			value int64
		}{
			{"Offres", s.TotalOffres},
			{"Offres en attente", s.PendingOffres},
			{"Candidatures", s.TotalCandidatures},
			{"Candidatures en attente", s.PendingCandidatures},
			{"Conventions", s.TotalConventions},
			{"Conventions signées", s.SignedConventions},
			{"Stages actifs", s.ActiveInternships},
		} {
			t.AddRow(row.label, strconv.FormatInt(row.value, 10))
		}
		return t.Render()
	case dashboard.Tutor:
		printer.Print("%d unread notifications", d.Unread)
		printer.Header("Mes étudiants")
		return printSuivis(d.Students)
	}
	return fmt.Errorf("unexpected dashboard type %T", data)
}
