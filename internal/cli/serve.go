package cli

import (
	"context"

	"github.com/spf13/cobra"

	"linkup/portal/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local gateway in front of the web bundle",
	Long: `Serve the built frontend (frontend.dist_dir) on http.addr. Every
navigation goes through the route guard, /api is proxied to the platform
with the session's token and /v1/session exposes login and logout.

Examples:
  portal serve
  PORTAL_HTTP_ADDR=:8081 portal serve --dist ./frontend/dist`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("dist") {
			cfg.Frontend.DistDir, _ = cmd.Flags().GetString("dist")
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Serve(ctx); err != nil {
				return failure("gateway stopped", err)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default http.addr)")
	serveCmd.Flags().String("dist", "", "frontend bundle directory (default frontend.dist_dir)")
}
