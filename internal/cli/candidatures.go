package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"linkup/portal/internal/api"
	"linkup/portal/internal/app"
	"linkup/portal/internal/output"
)

var candidaturesCmd = &cobra.Command{
	Use:     "candidatures",
	Aliases: []string{"applications"},
	Short:   "Apply to offers and review applications",
}

var candidaturesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your applications (student)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/etudiant/candidatures"); err != nil {
				return err
			}
			list, err := a.Client.MyCandidatures(ctx)
			if err != nil {
				return failure("cannot load applications", err)
			}
			return printCandidatures(list, false)
		})
	},
}

var candidaturesApplyCmd = &cobra.Command{
	Use:   "apply <offre-id>",
	Short: "Apply to an offer (student)",
	Long: `Apply to a validated offer. The cover letter is read from a file.

Example:
  portal candidatures apply 42 --letter lettre.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runCandidaturesApply,
}

var candidaturesWithdrawCmd = &cobra.Command{
	Use:   "withdraw <id>",
	Short: "Withdraw one of your applications (student)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "application")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/etudiant/candidatures"); err != nil {
				return err
			}
			return recordAction(a, "candidature.withdraw", id, a.Client.WithdrawCandidature(ctx, id),
				"cannot withdraw application", fmt.Sprintf("Application %d withdrawn", id))
		})
	},
}

var candidaturesReceivedCmd = &cobra.Command{
	Use:   "received [offre-id]",
	Short: "List applications received for your offers (company)",
	Long:  `Without an offer id, list the applications of every offer of your company.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCandidaturesReceived,
}

var candidaturesAcceptCmd = &cobra.Command{
	Use:   "accept <id>",
	Short: "Accept an application (company)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "application")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/entreprise/candidatures"); err != nil {
				return err
			}
			c, err := a.Client.AcceptCandidature(ctx, id)
			if err := recordAction(a, "candidature.accept", id, err, "cannot accept application", ""); err != nil {
				return err
			}
			if ok, err := printer.Data(c); ok {
				return err
			}
			printer.Success("Application %d accepted, a convention will be prepared", id)
			return nil
		})
	},
}

var candidaturesRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject an application (company)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "application")
		if err != nil {
			return err
		}
		comment, _ := cmd.Flags().GetString("comment")
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/entreprise/candidatures"); err != nil {
				return err
			}
			c, err := a.Client.RejectCandidature(ctx, id, comment)
			if err := recordAction(a, "candidature.reject", id, err, "cannot reject application", ""); err != nil {
				return err
			}
			if ok, err := printer.Data(c); ok {
				return err
			}
			printer.Success("Application %d rejected", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(candidaturesCmd)
	candidaturesCmd.AddCommand(candidaturesListCmd, candidaturesApplyCmd, candidaturesWithdrawCmd,
		candidaturesReceivedCmd, candidaturesAcceptCmd, candidaturesRejectCmd)

	candidaturesApplyCmd.Flags().StringP("letter", "l", "", "file holding the cover letter")
	candidaturesApplyCmd.Flags().String("message", "", "cover letter text, instead of --letter")
	candidaturesRejectCmd.Flags().StringP("comment", "c", "", "reason given to the student")
}

func runCandidaturesApply(cmd *cobra.Command, args []string) error {
	offreID, err := parseID(args[0], "offer")
	if err != nil {
		return err
	}
	letter, _ := cmd.Flags().GetString("message")
	if path, _ := cmd.Flags().GetString("letter"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return &output.CLIError{Summary: "cannot read cover letter", Detail: err.Error(), ExitCode: output.ExitUsageError, Err: err}
		}
		letter = string(b)
	}

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := requireView(a, fmt.Sprintf("/etudiant/offres/%d", offreID)); err != nil {
			return err
		}
		c, err := a.Client.Apply(ctx, offreID, letter)
		if err := recordAction(a, "candidature.apply", offreID, err, "cannot apply", ""); err != nil {
			return err
		}
		if ok, err := printer.Data(c); ok {
			return err
		}
		printer.Success("Application %d sent for offer %d", c.ID, offreID)
		return nil
	})
}

func runCandidaturesReceived(cmd *cobra.Command, args []string) error {
	var offreID int64
	if len(args) == 1 {
		var err error
		if offreID, err = parseID(args[0], "offer"); err != nil {
			return err
		}
	}

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := requireView(a, "/entreprise/candidatures"); err != nil {
			return err
		}
		var ids []int64
		if offreID != 0 {
			ids = []int64{offreID}
		} else {
			offres, err := a.Client.MyOffres(ctx)
			if err != nil {
				return failure("cannot load offers", err)
			}
			for _, o := range offres {
				ids = append(ids, o.ID)
			}
		}

		var all []api.Candidature
		for _, id := range ids {
			list, err := a.Client.CandidaturesForOffre(ctx, id)
			if err != nil {
				return failure("cannot load applications", err)
			}
			all = append(all, list...)
		}
		return printCandidatures(all, true)
	})
}

// recordAction audits the outcome of a state-changing call and converts a
// failure into a CLIError. done is printed on success when not empty.
func recordAction(a *app.App, action string, id int64, err error, summary, done string) error {
	target := strconv.FormatInt(id, 10)
	if err != nil {
		a.Record(action, target, "failed", api.MessageOr(err, ""))
		return failure(summary, err)
	}
	a.Record(action, target, "success", "")
	if done != "" {
		printer.Success("%s", done)
	}
	return nil
}

func printCandidatures(list []api.Candidature, withStudent bool) error {
	if ok, err := printer.Data(list); ok {
		return err
	}
	if len(list) == 0 {
		printer.Info("No applications")
		return nil
	}
	headers := []string{"ID", "OFFRE", "ENTREPRISE", "DATE", "STATUT"}
	if withStudent {
		headers = []string{"ID", "OFFRE", "ÉTUDIANT", "ÉTUDIANT ID", "NIVEAU", "DATE", "STATUT"}
	}
	t := output.NewTable(printer.Out(), headers)
	for _, c := range list {
		if withStudent {
			t.AddRow(
				strconv.FormatInt(c.ID, 10),
				orDash(c.OffreTitle),
				fullName(c.StudentFirstName, c.StudentLastName),
				strconv.FormatInt(c.StudentID, 10),
				orDash(c.StudentLevel),
				orDash(c.AppliedAt),
				printer.StatusBadge(orDash(c.Status)),
			)
			continue
		}
		t.AddRow(
			strconv.FormatInt(c.ID, 10),
			orDash(c.OffreTitle),
			orDash(c.CompanyName),
			orDash(c.AppliedAt),
			printer.StatusBadge(orDash(c.Status)),
		)
	}
	return t.Render()
}
