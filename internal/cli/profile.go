package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"linkup/portal/internal/api"
	"linkup/portal/internal/app"
	"linkup/portal/internal/output"
	"linkup/portal/internal/routes"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show and edit your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile, or another user's with --id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetInt64("id")
		if id < 0 {
			return &output.CLIError{Summary: fmt.Sprintf("invalid user id %d", id), ExitCode: output.ExitUsageError}
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireView(a, routes.ProfilePath); err != nil {
				return err
			}
			var p api.Profile
			var err error
			if id > 0 {
				p, err = a.Client.User(ctx, id)
			} else {
				p, err = a.Client.MyProfile(ctx)
			}
			if err != nil {
				return failure("cannot load profile", err)
			}
			return printProfile(cmd, p)
		})
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	Long: `Update the fields given as flags; other fields keep their current value.

Example:
  portal profile update --telephone 0601020304 --filiere Informatique`,
	Args: cobra.NoArgs,
	RunE: runProfileUpdate,
}

var profilePasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	Args:  cobra.NoArgs,
	RunE:  runProfilePassword,
}

// profileFields maps flag names to the profile fields they edit.
var profileFields = []struct {
	flag  string
	usage string
	field func(*api.Profile) *string
}{
	{"nom", "last name", func(p *api.Profile) *string { return &p.LastName }},
	{"prenom", "first name", func(p *api.Profile) *string { return &p.FirstName }},
	{"telephone", "phone number", func(p *api.Profile) *string { return &p.Phone }},
	{"niveau", "study level", func(p *api.Profile) *string { return &p.Level }},
	{"filiere", "program", func(p *api.Profile) *string { return &p.Program }},
	{"naissance", "birth date", func(p *api.Profile) *string { return &p.BirthDate }},
	{"entreprise", "company name", func(p *api.Profile) *string { return &p.CompanyName }},
	{"secteur", "business sector", func(p *api.Profile) *string { return &p.Sector }},
	{"adresse", "address", func(p *api.Profile) *string { return &p.Address }},
	{"site", "website", func(p *api.Profile) *string { return &p.Website }},
	{"description", "description", func(p *api.Profile) *string { return &p.Description }},
	{"departement", "department", func(p *api.Profile) *string { return &p.Department }},
	{"specialite", "specialty", func(p *api.Profile) *string { return &p.Specialty }},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd, profilePasswordCmd)

	profileShowCmd.Flags().Int64("id", 0, "show the user with this id instead of yourself")

	for _, pf := range profileFields {
		profileUpdateCmd.Flags().String(pf.flag, "", pf.usage)
	}

	profilePasswordCmd.Flags().String("current", "", "current password")
	profilePasswordCmd.Flags().String("new", "", "new password (at least 8 characters)")
	profilePasswordCmd.Flags().String("confirm", "", "new password again")
	_ = profilePasswordCmd.MarkFlagRequired("current")
	_ = profilePasswordCmd.MarkFlagRequired("new")
	_ = profilePasswordCmd.MarkFlagRequired("confirm")
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := requireView(a, routes.ProfilePath); err != nil {
			return err
		}
		p, err := a.Client.MyProfile(ctx)
		if err != nil {
			return failure("cannot load profile", err)
		}

		changed := 0
		for _, pf := range profileFields {
			if !cmd.Flags().Changed(pf.flag) {
				continue
			}
			v, _ := cmd.Flags().GetString(pf.flag)
			*pf.field(&p) = v
			changed++
		}
		if changed == 0 {
			printer.Warning("Nothing to update")
			return nil
		}

		updated, err := a.Client.UpdateMyProfile(ctx, p)
		if err != nil {
			a.Record("profile.update", "", "failed", err.Error())
			return failure("cannot update profile", err)
		}
		a.Record("profile.update", "", "success", fmt.Sprintf("%d fields", changed))
		if ok, err := printer.Data(updated); ok {
			return err
		}
		printer.Success("Profile updated")
		return nil
	})
}

func runProfilePassword(cmd *cobra.Command, args []string) error {
	current, _ := cmd.Flags().GetString("current")
	next, _ := cmd.Flags().GetString("new")
	confirm, _ := cmd.Flags().GetString("confirm")

	change, err := api.ValidatePasswordChange(current, next, confirm)
	if err != nil {
		return failure("cannot change password", err)
	}

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := requireView(a, routes.ProfilePath); err != nil {
			return err
		}
		if err := a.Client.ChangePassword(ctx, change); err != nil {
			a.Record("profile.password", "", "failed", api.MessageOr(err, ""))
			return failure("cannot change password", err)
		}
		a.Record("profile.password", "", "success", "")
		printer.Success("Password changed")
		return nil
	})
}

func printProfile(cmd *cobra.Command, p api.Profile) error {
	if ok, err := printer.Data(p); ok {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s\n", printer.Bold(fullName(p.FirstName, p.LastName)))
	rows := [][2]string{
		{"email", p.Email},
		{"role", p.Role},
		{"telephone", p.Phone},
		{"niveau", p.Level},
		{"filiere", p.Program},
		{"naissance", p.BirthDate},
		{"cv", p.CVFile},
		{"entreprise", p.CompanyName},
		{"secteur", p.Sector},
		{"adresse", p.Address},
		{"site", p.Website},
		{"departement", p.Department},
		{"specialite", p.Specialty},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(w, "  %-12s %s\n", r[0]+":", r[1])
	}
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
	return nil
}
