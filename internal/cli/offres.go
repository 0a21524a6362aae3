package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"linkup/portal/internal/api"
	"linkup/portal/internal/app"
	"linkup/portal/internal/output"
)

var offresCmd = &cobra.Command{
	Use:     "offres",
	Aliases: []string{"offers"},
	Short:   "Browse and manage internship and work-study offers",
}

var offresListCmd = &cobra.Command{
	Use:   "list",
	Short: "List validated offers (student)",
	Long: `List the validated offers, one page at a time.

Examples:
  portal offres list --type STAGE --sort datePublication-DESC
  portal offres list --search golang --from 2025-03-01 --page 1`,
	Args: cobra.NoArgs,
	RunE: runOffresList,
}

var offresShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one offer",
	Args:  cobra.ExactArgs(1),
	RunE:  runOffresShow,
}

var offresSearchCmd = &cobra.Command{
	Use:   "search <title>",
	Short: "Search offers by title (student)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/etudiant/offres"); err != nil {
				return err
			}
			offres, err := a.Client.SearchOffres(ctx, args[0])
			if err != nil {
				return failure("cannot search offers", err)
			}
			return printOffres(offres)
		})
	},
}

var offresMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List the offers of your company (company)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/entreprise/offres"); err != nil {
				return err
			}
			offres, err := a.Client.MyOffres(ctx)
			if err != nil {
				return failure("cannot load offers", err)
			}
			return printOffres(offres)
		})
	},
}

var offresCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new offer (company)",
	Long: `Create an offer. It stays EN_ATTENTE until the administration validates it.

Example:
  portal offres create --titre "Stage backend Go" --type STAGE --description "..." --debut 2025-03-01 --fin 2025-08-31`,
	Args: cobra.NoArgs,
	RunE: runOffresCreate,
}

var offresUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit one of your offers (company)",
	Args:  cobra.ExactArgs(1),
	RunE:  runOffresUpdate,
}

var offresDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one of your offers (company)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "offer")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/entreprise/offres"); err != nil {
				return err
			}
			target := strconv.FormatInt(id, 10)
			if err := a.Client.DeleteOffre(ctx, id); err != nil {
				a.Record("offre.delete", target, "failed", api.MessageOr(err, ""))
				return failure("cannot delete offer", err)
			}
			a.Record("offre.delete", target, "success", "")
			printer.Success("Offer %d deleted", id)
			return nil
		})
	},
}

var offresAllCmd = &cobra.Command{
	Use:   "all",
	Short: "List every offer (administration)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pending, _ := cmd.Flags().GetBool("pending")
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/admin/offres"); err != nil {
				return err
			}
			offres, err := a.Client.AllOffres(ctx)
			if err != nil {
				return failure("cannot load offers", err)
			}
			if pending {
				kept := offres[:0]
				for _, o := range offres {
					if o.Status == api.StatusPending {
						kept = append(kept, o)
					}
				}
				offres = kept
			}
			return printOffres(offres)
		})
	},
}

var offresValidateCmd = &cobra.Command{
	Use:   "validate <id>",
	Short: "Validate a pending offer (administration)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "offer")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/admin/offres"); err != nil {
				return err
			}
			target := strconv.FormatInt(id, 10)
			o, err := a.Client.ValidateOffre(ctx, id)
			if err != nil {
				a.Record("offre.validate", target, "failed", api.MessageOr(err, ""))
				return failure("cannot validate offer", err)
			}
			a.Record("offre.validate", target, "success", "")
			if ok, err := printer.Data(o); ok {
				return err
			}
			printer.Success("Offer %d validated", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(offresCmd)
	offresCmd.AddCommand(offresListCmd, offresShowCmd, offresSearchCmd, offresMineCmd,
		offresCreateCmd, offresUpdateCmd, offresDeleteCmd, offresAllCmd, offresValidateCmd)

	lf := offresListCmd.Flags()
	lf.StringP("search", "s", "", "search in title and description")
	lf.StringP("type", "t", "", "STAGE or ALTERNANCE")
	lf.String("from", "", "earliest start date (YYYY-MM-DD)")
	lf.String("to", "", "latest start date (YYYY-MM-DD)")
	lf.String("sort", "datePublication-DESC", "sort field and direction, e.g. dateDebut-ASC")
	lf.Int("page", 0, "page number, starting at 0")
	lf.Int("size", 10, "page size")

	addOffreFlags(offresCreateCmd.Flags())
	addOffreFlags(offresUpdateCmd.Flags())

	offresAllCmd.Flags().Bool("pending", false, "only offers waiting for validation")
}

func addOffreFlags(f *pflag.FlagSet) {
	f.String("titre", "", "title")
	f.String("description", "", "description")
	f.StringP("type", "t", "", "STAGE or ALTERNANCE")
	f.String("duree", "", "duration, e.g. \"6 mois\"")
	f.String("debut", "", "start date (YYYY-MM-DD)")
	f.String("fin", "", "end date (YYYY-MM-DD)")
	f.String("competences", "", "required skills")
	f.Float64("remuneration", 0, "monthly pay")
}

// applyOffreFlags copies the flags that were set onto o.
func applyOffreFlags(f *pflag.FlagSet, o *api.Offre) {
	str := func(name string, dst *string) {
		if f.Changed(name) {
			v, _ := f.GetString(name)
			*dst = strings.TrimSpace(v)
		}
	}
	str("titre", &o.Title)
	str("description", &o.Description)
	str("duree", &o.Duration)
	str("debut", &o.StartDate)
	str("fin", &o.EndDate)
	str("competences", &o.RequiredSkills)
	if f.Changed("type") {
		v, _ := f.GetString("type")
		o.Type = strings.ToUpper(strings.TrimSpace(v))
	}
	if f.Changed("remuneration") {
		o.Pay, _ = f.GetFloat64("remuneration")
	}
}

func parseSort(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", nil
	}
	i := strings.LastIndex(raw, "-")
	if i <= 0 {
		return raw, "DESC", nil
	}
	field, dir := raw[:i], strings.ToUpper(raw[i+1:])
	if dir != "ASC" && dir != "DESC" {
		return "", "", fmt.Errorf("invalid sort direction %q: must be ASC or DESC", dir)
	}
	return field, dir, nil
}

func runOffresList(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	filter := api.OffreFilter{}
	filter.Search, _ = f.GetString("search")
	filter.Type, _ = f.GetString("type")
	filter.Type = strings.ToUpper(filter.Type)
	filter.StartAfter, _ = f.GetString("from")
	filter.StartBefore, _ = f.GetString("to")
	filter.Page, _ = f.GetInt("page")
	filter.Size, _ = f.GetInt("size")
	sort, _ := f.GetString("sort")
	var err error
	filter.SortBy, filter.SortDirection, err = parseSort(sort)
	if err != nil {
		return &output.CLIError{Summary: err.Error(), ExitCode: output.ExitUsageError, Err: err}
	}

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := requireView(a, "/etudiant/offres"); err != nil {
			return err
		}
		page, err := a.Client.PublicOffres(ctx, filter)
		if err != nil {
			return failure("cannot load offers", err)
		}
		if ok, err := printer.Data(page); ok {
			return err
		}
		if err := printOffres(page.Content); err != nil {
			return err
		}
		printer.Print("%s", printer.Dim(fmt.Sprintf("page %d/%d, %d offers", filter.Page+1, max(page.TotalPages, 1), page.TotalElements)))
		return nil
	})
}

func runOffresShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "offer")
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := requireView(a,
			fmt.Sprintf("/etudiant/offres/%d", id),
			fmt.Sprintf("/entreprise/offres/%d/edit", id),
			"/admin/offres",
		); err != nil {
			return err
		}
		o, err := a.Client.Offre(ctx, id)
		if err != nil {
			return failure("cannot load offer", err)
		}
		if ok, err := printer.Data(o); ok {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s  %s\n", printer.Bold(o.Title), printer.StatusBadge(o.Status))
		fmt.Fprintf(w, "  entreprise:  %s\n", orDash(o.CompanyName))
		fmt.Fprintf(w, "  type:        %s\n", orDash(o.Type))
		fmt.Fprintf(w, "  période:     %s → %s\n", orDash(o.StartDate), orDash(o.EndDate))
		fmt.Fprintf(w, "  durée:       %s\n", orDash(o.Duration))
		if o.Pay > 0 {
			fmt.Fprintf(w, "  rémunération: %.2f €\n", o.Pay)
		}
		fmt.Fprintf(w, "  compétences: %s\n", orDash(o.RequiredSkills))
		fmt.Fprintf(w, "\n%s\n", o.Description)
		return nil
	})
}

func runOffresCreate(cmd *cobra.Command, args []string) error {
	var o api.Offre
	applyOffreFlags(cmd.Flags(), &o)
	if err := o.Validate(); err != nil {
		return failure("cannot create offer", err)
	}

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := requireView(a, "/entreprise/offres/new"); err != nil {
			return err
		}
		created, err := a.Client.CreateOffre(ctx, o)
		if err != nil {
			a.Record("offre.create", o.Title, "failed", api.MessageOr(err, ""))
			return failure("cannot create offer", err)
		}
		a.Record("offre.create", strconv.FormatInt(created.ID, 10), "success", created.Title)
		if ok, err := printer.Data(created); ok {
			return err
		}
		printer.Success("Offer %d created, waiting for validation", created.ID)
		return nil
	})
}

func runOffresUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "offer")
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := requireView(a, fmt.Sprintf("/entreprise/offres/%d/edit", id)); err != nil {
			return err
		}
		o, err := a.Client.Offre(ctx, id)
		if err != nil {
			return failure("cannot load offer", err)
		}
		applyOffreFlags(cmd.Flags(), &o)

		target := strconv.FormatInt(id, 10)
		updated, err := a.Client.UpdateOffre(ctx, id, o)
		if err != nil {
			a.Record("offre.update", target, "failed", api.MessageOr(err, ""))
			return failure("cannot update offer", err)
		}
		a.Record("offre.update", target, "success", "")
		if ok, err := printer.Data(updated); ok {
			return err
		}
		printer.Success("Offer %d updated", id)
		return nil
	})
}

func printOffres(offres []api.Offre) error {
	if ok, err := printer.Data(offres); ok {
		return err
	}
	if len(offres) == 0 {
		printer.Info("No offers")
		return nil
	}
	t := output.NewTable(printer.Out(), []string{"ID", "TITRE", "TYPE", "ENTREPRISE", "DÉBUT", "STATUT", "CANDIDATURES"})
	for _, o := range offres {
		t.AddRow(
			strconv.FormatInt(o.ID, 10),
			o.Title,
			orDash(o.Type),
			orDash(o.CompanyName),
			orDash(o.StartDate),
			printer.StatusBadge(orDash(o.Status)),
			strconv.Itoa(o.ApplicationsCount),
		)
	}
	return t.Render()
}
