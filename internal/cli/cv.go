package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"linkup/portal/internal/app"
	"linkup/portal/internal/auth"
	"linkup/portal/internal/output"
	"linkup/portal/internal/routes"
)

var cvCmd = &cobra.Command{
	Use:   "cv",
	Short: "Manage your CV (student) or download a candidate's CV (company)",
}

var cvUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload or replace your CV (PDF, DOC or DOCX, 5MB max)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireStudentProfile(a); err != nil {
				return err
			}
			err := a.Client.UploadCVFile(ctx, args[0])
			if err != nil {
				a.Record("cv.upload", args[0], "failed", err.Error())
				return failure("cannot upload CV", err)
			}
			a.Record("cv.upload", args[0], "success", "")
			printer.Success("CV uploaded")
			return nil
		})
	},
}

var cvDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download your CV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireStudentProfile(a); err != nil {
				return err
			}
			b, err := a.Client.DownloadMyCV(ctx)
			if err != nil {
				return failure("cannot download CV", err)
			}
			if out == "" {
				u, _ := a.Session.CurrentUser()
				out = fmt.Sprintf("CV_%s_%s.pdf", u.LastName, u.FirstName)
			}
			return saveFile(out, b)
		})
	},
}

var cvStudentCmd = &cobra.Command{
	Use:   "student <etudiant-id>",
	Short: "Download the CV of a student who applied to your offers (company)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "student")
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = fmt.Sprintf("CV_%d.pdf", id)
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, "/entreprise/candidatures"); err != nil {
				return err
			}
			b, err := a.Client.DownloadStudentCV(ctx, id)
			if err != nil {
				return failure("cannot download CV", err)
			}
			return saveFile(out, b)
		})
	},
}

var cvDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete your CV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireStudentProfile(a); err != nil {
				return err
			}
			if err := a.Client.DeleteCV(ctx); err != nil {
				a.Record("cv.delete", "", "failed", err.Error())
				return failure("cannot delete CV", err)
			}
			a.Record("cv.delete", "", "success", "")
			printer.Success("CV deleted")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(cvCmd)
	cvCmd.AddCommand(cvUploadCmd, cvDownloadCmd, cvStudentCmd, cvDeleteCmd)

	cvDownloadCmd.Flags().String("out", "", "output file (default CV_<nom>_<prenom>.pdf)")
	cvStudentCmd.Flags().String("out", "", "output file (default CV_<id>.pdf)")
}

// requireStudentProfile gates the CV section of the profile view, which
// only students see.
func requireStudentProfile(a *app.App) error {
	if err := requireView(a, routes.ProfilePath); err != nil {
		return err
	}
	if currentRole(a) != auth.RoleStudent {
		return &output.CLIError{
			Summary:  "only students have a CV",
			ExitCode: output.ExitAuthError,
		}
	}
	return nil
}

func saveFile(path string, b []byte) error {
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return failure("cannot write file", err)
	}
	printer.Success("Saved %s (%d bytes)", path, len(b))
	return nil
}
