package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"linkup/portal/internal/api"
	"linkup/portal/internal/app"
	"linkup/portal/internal/output"
)

var suivisCmd = &cobra.Command{
	Use:   "suivis",
	Short: "Internship follow-up: tutor assignment and progress",
}

var suivisListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every follow-up (administration)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/admin/suivis"); err != nil {
				return err
			}
			list, err := a.Client.Suivis(ctx)
			if err != nil {
				return failure("cannot load follow-ups", err)
			}
			return printSuivis(list)
		})
	},
}

var suivisAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign a tutor to a signed convention (administration)",
	Long: `Example:
  portal suivis assign --convention 12 --tuteur 4`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conventionID, _ := cmd.Flags().GetInt64("convention")
		tutorID, _ := cmd.Flags().GetInt64("tuteur")
		req := api.AssignTutor{ConventionID: conventionID, TutorID: tutorID}
		if err := req.Validate(); err != nil {
			return failure("cannot assign tutor", err)
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/admin/suivis"); err != nil {
				return err
			}
			s, err := a.Client.AssignTutor(ctx, req)
			if err := recordAction(a, "suivi.assign", conventionID, err, "cannot assign tutor", ""); err != nil {
				return err
			}
			if ok, err := printer.Data(s); ok {
				return err
			}
			printer.Success("Tutor %d assigned to convention %d (follow-up %d)", tutorID, conventionID, s.ID)
			return nil
		})
	},
}

var suivisShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one follow-up (tutor, administration)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "follow-up")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, fmt.Sprintf("/tuteur/suivis/%d", id), "/admin/suivis"); err != nil {
				return err
			}
			s, err := a.Client.Suivi(ctx, id)
			if err != nil {
				return failure("cannot load follow-up", err)
			}
			return printSuivi(cmd, s)
		})
	},
}

var suivisStudentsCmd = &cobra.Command{
	Use:   "students",
	Short: "List the students you tutor (tutor)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/tuteur/etudiants"); err != nil {
				return err
			}
			list, err := a.Client.MyStudents(ctx)
			if err != nil {
				return failure("cannot load students", err)
			}
			return printSuivis(list)
		})
	},
}

var suivisMineCmd = &cobra.Command{
	Use:     "mine",
	Aliases: []string{"stage"},
	Short:   "Show the follow-up of your internship (student)",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/etudiant/stage"); err != nil {
				return err
			}
			s, err := a.Client.MyInternship(ctx)
			if api.IsNotFound(err) {
				printer.Info("No tutor has been assigned to your internship yet")
				return nil
			}
			if err != nil {
				return failure("cannot load internship", err)
			}
			return printSuivi(cmd, s)
		})
	},
}

var suivisUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Record progress on a follow-up (tutor)",
	Long: `Example:
  portal suivis update 3 --etat EN_DIFFICULTE --commentaires "Retards répétés" --visite 2025-05-12`,
	Args: cobra.ExactArgs(1),
	RunE: runSuivisUpdate,
}

func init() {
	rootCmd.AddCommand(suivisCmd)
	suivisCmd.AddCommand(suivisListCmd, suivisAssignCmd, suivisShowCmd, suivisStudentsCmd, suivisMineCmd, suivisUpdateCmd)

	suivisAssignCmd.Flags().Int64("convention", 0, "convention id")
	suivisAssignCmd.Flags().Int64("tuteur", 0, "tutor user id")

	suivisUpdateCmd.Flags().String("etat", "", "EN_COURS, TERMINE or EN_DIFFICULTE")
	suivisUpdateCmd.Flags().String("commentaires", "", "comments")
	suivisUpdateCmd.Flags().String("visite", "", "date of the last visit (YYYY-MM-DD)")
}

func runSuivisUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "follow-up")
	if err != nil {
		return err
	}
	f := cmd.Flags()

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := requireView(a, fmt.Sprintf("/tuteur/suivis/%d", id)); err != nil {
			return err
		}
		current, err := a.Client.Suivi(ctx, id)
		if err != nil {
			return failure("cannot load follow-up", err)
		}
		upd := api.ProgressUpdate{
			Progress:  current.Progress,
			Comments:  current.Comments,
			LastVisit: current.LastVisit,
		}
		if f.Changed("etat") {
			v, _ := f.GetString("etat")
			upd.Progress = strings.ToUpper(strings.TrimSpace(v))
		}
		if f.Changed("commentaires") {
			upd.Comments, _ = f.GetString("commentaires")
		}
		if f.Changed("visite") {
			upd.LastVisit, _ = f.GetString("visite")
		}

		s, err := a.Client.UpdateProgress(ctx, id, upd)
		if err := recordAction(a, "suivi.update", id, err, "cannot update follow-up", ""); err != nil {
			return err
		}
		if ok, err := printer.Data(s); ok {
			return err
		}
		printer.Success("Follow-up %d updated: %s", id, upd.Progress)
		return nil
	})
}

func printSuivi(cmd *cobra.Command, s api.Suivi) error {
	if ok, err := printer.Data(s); ok {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s  %s\n", printer.Bold(fmt.Sprintf("Suivi %d", s.ID)), printer.StatusBadge(orDash(s.Progress)))
	fmt.Fprintf(w, "  étudiant:       %s\n", fullName(s.StudentFirstName, s.StudentLastName))
	fmt.Fprintf(w, "  entreprise:     %s\n", orDash(s.CompanyName))
	fmt.Fprintf(w, "  convention:     %d\n", s.ConventionID)
	fmt.Fprintf(w, "  période:        %s → %s\n", orDash(s.StartDate), orDash(s.EndDate))
	fmt.Fprintf(w, "  dernière visite: %s\n", orDash(s.LastVisit))
	if s.Comments != "" {
		fmt.Fprintf(w, "\n%s\n", s.Comments)
	}
	return nil
}

func printSuivis(list []api.Suivi) error {
	if ok, err := printer.Data(list); ok {
		return err
	}
	if len(list) == 0 {
		printer.Info("No follow-ups")
		return nil
	}
	t := output.NewTable(printer.Out(), []string{"ID", "ÉTUDIANT", "ENTREPRISE", "CONVENTION", "TUTEUR", "ÉTAT", "DERNIÈRE VISITE"})
	for _, s := range list {
		tutor := "-"
		if s.TutorID != 0 {
			tutor = strconv.FormatInt(s.TutorID, 10)
		}
		t.AddRow(
			strconv.FormatInt(s.ID, 10),
			fullName(s.StudentFirstName, s.StudentLastName),
			orDash(s.CompanyName),
			strconv.FormatInt(s.ConventionID, 10),
			tutor,
			printer.StatusBadge(orDash(s.Progress)),
			orDash(s.LastVisit),
		)
	}
	return t.Render()
}
