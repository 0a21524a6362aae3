package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"linkup/portal/internal/api"
	"linkup/portal/internal/app"
	"linkup/portal/internal/auth"
	"linkup/portal/internal/routes"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Open a session on the platform",
	Long: `Log in with an email and a password. The password is read from the
first line of standard input when --password is not given.

Examples:
  portal login -e jean.dupont@example.com -p secret123
  echo secret123 | portal login -e jean.dupont@example.com`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Close the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(_ context.Context, a *app.App) error {
			a.Session.Logout()
			printer.Success("Logged out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Create an account for one of the four roles. Registration does not
open a session; run "portal login" afterwards.

Examples:
  portal register --role ETUDIANT -e jean@example.com -p secret123 --nom Dupont --prenom Jean --niveau M1
  portal register --role ENTREPRISE -e rh@acme.fr -p secret123 --nom Martin --prenom Paul --entreprise Acme`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd)

	loginCmd.Flags().StringP("email", "e", "", "account email")
	loginCmd.Flags().StringP("password", "p", "", "account password")

	f := registerCmd.Flags()
	f.StringP("email", "e", "", "account email")
	f.StringP("password", "p", "", "account password (at least 8 characters)")
	f.String("nom", "", "last name")
	f.String("prenom", "", "first name")
	f.String("telephone", "", "phone number")
	f.String("role", string(auth.RoleStudent), "ETUDIANT, ENTREPRISE, ADMINISTRATION or TUTEUR")
	f.String("niveau", "", "study level (ETUDIANT)")
	f.String("filiere", "", "program (ETUDIANT)")
	f.String("naissance", "", "birth date YYYY-MM-DD (ETUDIANT)")
	f.String("entreprise", "", "company name (ENTREPRISE)")
	f.String("secteur", "", "business sector (ENTREPRISE)")
	f.String("adresse", "", "address (ENTREPRISE)")
	f.String("site", "", "website (ENTREPRISE)")
	f.String("description", "", "company description (ENTREPRISE)")
	f.String("departement", "", "department (TUTEUR)")
	f.String("specialite", "", "specialty (TUTEUR)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		var err error
		password, err = readLine(cmd.InOrStdin())
		if err != nil {
			return failure("cannot read password", err)
		}
	}

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		user, err := a.Session.Login(ctx, email, password)
		if err != nil {
			return failure("login failed", err)
		}
		home := routes.HomePath(user.Role)
		if ok, err := printer.Data(map[string]any{"user": user, "home": home}); ok {
			return err
		}
		printer.Success("Logged in as %s (%s)", user.DisplayName(), user.Role)
		printer.Info("Home view: %s", home)
		return nil
	})
}

func runWhoami(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(_ context.Context, a *app.App) error {
		if err := requireSession(a); err != nil {
			return err
		}
		user, _ := a.Session.CurrentUser()
		exp, hasExp := a.Session.TokenExpiry()

		data := map[string]any{"user": user, "home": routes.HomePath(user.Role)}
		if hasExp {
			data["expiresAt"] = exp.UTC().Format(time.RFC3339)
		}
		if ok, err := printer.Data(data); ok {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s\n", printer.Bold(user.DisplayName()))
		fmt.Fprintf(w, "  email: %s\n", user.Email)
		fmt.Fprintf(w, "  id:    %d\n", user.ID)
		fmt.Fprintf(w, "  role:  %s\n", user.Role)
		fmt.Fprintf(w, "  home:  %s\n", routes.HomePath(user.Role))
		if hasExp {
			state := "valid"
			if time.Now().After(exp) {
				state = "expired"
			}
			fmt.Fprintf(w, "  token: %s until %s\n", state, exp.Local().Format(time.DateTime))
		}
		return nil
	})
}

func runRegister(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	get := func(name string) string {
		v, _ := f.GetString(name)
		return strings.TrimSpace(v)
	}
	password, _ := f.GetString("password")
	req := api.RegisterRequest{
		Email:       get("email"),
		Password:    password,
		LastName:    get("nom"),
		FirstName:   get("prenom"),
		Phone:       get("telephone"),
		Role:        strings.ToUpper(get("role")),
		Level:       get("niveau"),
		Program:     get("filiere"),
		BirthDate:   get("naissance"),
		CompanyName: get("entreprise"),
		Sector:      get("secteur"),
		Address:     get("adresse"),
		Website:     get("site"),
		Description: get("description"),
		Department:  get("departement"),
		Specialty:   get("specialite"),
	}

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		msg, err := a.Session.Register(ctx, req)
		if err != nil {
			return failure("registration failed", err)
		}
		if ok, err := printer.Data(map[string]string{"message": msg}); ok {
			return err
		}
		if msg == "" {
			msg = "Account created"
		}
		printer.Success("%s", msg)
		printer.Info("Run 'portal login -e %s' to open a session", req.Email)
		return nil
	})
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
