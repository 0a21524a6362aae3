package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"linkup/portal/internal/api"
	"linkup/portal/internal/app"
	"linkup/portal/internal/auth"
	"linkup/portal/internal/output"
)

var conventionViews = []string{"/etudiant/conventions", "/entreprise/conventions", "/admin/conventions"}

var conventionsCmd = &cobra.Command{
	Use:   "conventions",
	Short: "Internship agreements and their signatures",
}

var conventionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the conventions visible to your role",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, conventionViews...); err != nil {
				return err
			}
			mine, _ := cmd.Flags().GetBool("mine")
			role := currentRole(a)
			var list []api.Convention
			var err error
			switch {
			case mine && role != auth.RoleStudent && role != auth.RoleCompany:
				return &output.CLIError{
					Summary:  "--mine applies to student and company accounts",
					ExitCode: output.ExitUsageError,
				}
			case mine:
				list, err = a.Client.MyConventions(ctx)
			case role == auth.RoleStudent:
				list, err = a.Client.StudentConventions(ctx)
			case role == auth.RoleCompany:
				list, err = a.Client.CompanyConventions(ctx)
			default:
				list, err = a.Client.Conventions(ctx)
			}
			if err != nil {
				return failure("cannot load conventions", err)
			}
			return printConventions(list)
		})
	},
}

var conventionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one convention",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "convention")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, conventionViews...); err != nil {
				return err
			}
			c, err := a.Client.Convention(ctx, id)
			if err != nil {
				return failure("cannot load convention", err)
			}
			if ok, err := printer.Data(c); ok {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s  %s\n", printer.Bold(fmt.Sprintf("Convention %d", c.ID)), printer.StatusBadge(c.Status))
			fmt.Fprintf(w, "  offre:       %s\n", orDash(c.OffreTitle))
			fmt.Fprintf(w, "  étudiant:    %s\n", fullName(c.StudentFirstName, c.StudentLastName))
			fmt.Fprintf(w, "  entreprise:  %s\n", orDash(c.CompanyName))
			fmt.Fprintf(w, "  période:     %s → %s\n", orDash(c.StartDate), orDash(c.EndDate))
			fmt.Fprintf(w, "  signatures:  étudiant %s  entreprise %s  administration %s\n",
				printer.Check(c.SignedByStudent), printer.Check(c.SignedByCompany), printer.Check(c.SignedByAdmin))
			if c.PDFFile != "" {
				fmt.Fprintf(w, "  pdf:         %s\n", c.PDFFile)
			}
			return nil
		})
	},
}

var conventionsSignCmd = &cobra.Command{
	Use:   "sign <id>",
	Short: "Sign a convention as your role's party",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "convention")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, conventionViews...); err != nil {
				return err
			}
			as, err := signatoryFor(currentRole(a))
			if err != nil {
				return &output.CLIError{Summary: err.Error(), ExitCode: output.ExitAuthError, Err: err}
			}
			c, err := a.Client.SignConvention(ctx, id, as)
			if err := recordAction(a, "convention.sign", id, err, "cannot sign convention", ""); err != nil {
				return err
			}
			if ok, err := printer.Data(c); ok {
				return err
			}
			printer.Success("Convention %d signed as %s", id, as)
			return nil
		})
	},
}

var conventionsGenerateCmd = &cobra.Command{
	Use:   "generate-pdf <id>",
	Short: "Generate the PDF of a convention (administration)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "convention")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/admin/conventions"); err != nil {
				return err
			}
			_, err := a.Client.GenerateConventionPDF(ctx, id)
			return recordAction(a, "convention.generate_pdf", id, err,
				"cannot generate convention PDF", fmt.Sprintf("PDF generated for convention %d", id))
		})
	},
}

var conventionsPDFCmd = &cobra.Command{
	Use:   "pdf <id>",
	Short: "Download the PDF of a convention",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "convention")
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = fmt.Sprintf("convention_%d.pdf", id)
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, conventionViews...); err != nil {
				return err
			}
			b, err := a.Client.ConventionPDF(ctx, id)
			if err != nil {
				return failure("cannot download convention PDF", err)
			}
			return saveFile(out, b)
		})
	},
}

var conventionsArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Archive a signed convention (administration)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "convention")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/admin/conventions"); err != nil {
				return err
			}
			_, err := a.Client.ArchiveConvention(ctx, id)
			return recordAction(a, "convention.archive", id, err,
				"cannot archive convention", fmt.Sprintf("Convention %d archived", id))
		})
	},
}

func init() {
	rootCmd.AddCommand(conventionsCmd)
	conventionsCmd.AddCommand(conventionsListCmd, conventionsShowCmd, conventionsSignCmd,
		conventionsGenerateCmd, conventionsPDFCmd, conventionsArchiveCmd)

	conventionsListCmd.Flags().Bool("mine", false, "use the shared mes-conventions listing (student, company)")
	conventionsPDFCmd.Flags().String("out", "", "output file (default convention_<id>.pdf)")
}

func signatoryFor(role auth.Role) (api.Signatory, error) {
	switch role {
	case auth.RoleStudent:
		return api.SignatoryStudent, nil
	case auth.RoleCompany:
		return api.SignatoryCompany, nil
	case auth.RoleAdministration:
		return api.SignatoryAdmin, nil
	}
	return "", fmt.Errorf("role %s does not sign conventions", role)
}

func printConventions(list []api.Convention) error {
	if ok, err := printer.Data(list); ok {
		return err
	}
	if len(list) == 0 {
		printer.Info("No conventions")
		return nil
	}
	t := output.NewTable(printer.Out(), []string{"ID", "OFFRE", "ÉTUDIANT", "ENTREPRISE", "DÉBUT", "FIN", "ÉT.", "ENT.", "ADM.", "STATUT"})
	for _, c := range list {
		t.AddRow(
			strconv.FormatInt(c.ID, 10),
			orDash(c.OffreTitle),
			fullName(c.StudentFirstName, c.StudentLastName),
			orDash(c.CompanyName),
			orDash(c.StartDate),
			orDash(c.EndDate),
			printer.Check(c.SignedByStudent),
			printer.Check(c.SignedByCompany),
			printer.Check(c.SignedByAdmin),
			printer.StatusBadge(orDash(c.Status)),
		)
	}
	return t.Render()
}
