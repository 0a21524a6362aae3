package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"linkup/portal/internal/api"
	"linkup/portal/internal/app"
	"linkup/portal/internal/notify"
	"linkup/portal/internal/output"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notifs"},
	Short:   "Read your notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	Args:  cobra.NoArgs,
	RunE:  runNotificationsList,
}

var notificationsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of unread notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireSession(a); err != nil {
				return err
			}
			n, err := a.Client.UnreadCount(ctx)
			if err != nil {
				return failure("cannot count notifications", err)
			}
			if ok, err := printer.Data(map[string]int64{"unread": n}); ok {
				return err
			}
			printer.Print("%d", n)
			return nil
		})
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "notification")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireSession(a); err != nil {
				return err
			}
			if err := a.Client.MarkNotificationRead(ctx, id); err != nil {
				return failure("cannot mark notification as read", err)
			}
			printer.Success("Notification %d marked as read", id)
			return nil
		})
	},
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireSession(a); err != nil {
				return err
			}
			if err := a.Client.MarkAllNotificationsRead(ctx); err != nil {
				return failure("cannot mark notifications as read", err)
			}
			printer.Success("All notifications marked as read")
			return nil
		})
	},
}

var notificationsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the unread count until interrupted",
	Long: `Print the unread notification count every time it changes. Requests
are sent on every tick even when the previous one has not answered yet.

Example:
  portal notifications watch --interval 10s`,
	Args: cobra.NoArgs,
	RunE: runNotificationsWatch,
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.AddCommand(notificationsListCmd, notificationsCountCmd, notificationsReadCmd,
		notificationsReadAllCmd, notificationsWatchCmd)

	notificationsListCmd.Flags().Bool("unread", false, "only unread notifications")
	notificationsListCmd.Flags().Int("page", -1, "page number, starting at 0 (default: all)")
	notificationsListCmd.Flags().Int("size", 10, "page size")
	notificationsWatchCmd.Flags().Duration("interval", 0, "poll interval (default notifications.interval)")
}

func runNotificationsList(cmd *cobra.Command, args []string) error {
	unreadOnly, _ := cmd.Flags().GetBool("unread")
	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := requireSession(a); err != nil {
			return err
		}
		var list []api.Notification
		if page >= 0 {
			p, err := a.Client.NotificationPage(ctx, page, size)
			if err != nil {
				return failure("cannot load notifications", err)
			}
			list = p.Content
		} else {
			var err error
			if list, err = a.Client.Notifications(ctx); err != nil {
				return failure("cannot load notifications", err)
			}
		}
		if unreadOnly {
			kept := list[:0]
			for _, n := range list {
				if !n.Read {
					kept = append(kept, n)
				}
			}
			list = kept
		}

		if ok, err := printer.Data(list); ok {
			return err
		}
		if len(list) == 0 {
			printer.Info("No notifications")
			return nil
		}
		t := output.NewTable(printer.Out(), []string{"ID", "LU", "DATE", "MESSAGE", "LIEN"})
		for _, n := range list {
			t.AddRow(strconv.FormatInt(n.ID, 10), printer.Check(n.Read), orDash(n.CreatedAt), n.Message, orDash(n.Link))
		}
		return t.Render()
	})
}

func runNotificationsWatch(cmd *cobra.Command, args []string) error {
	interval, _ := cmd.Flags().GetDuration("interval")
	if interval <= 0 {
		interval = cfg.Notifications.Interval
	}

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := requireSession(a); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(ctx)
		var last int64 = -1
		updates := make(chan int64, 1)
		poller, err := notify.NewPoller(a.Client.UnreadCount, interval,
			notify.WithLogger(logger),
			notify.WithUpdateFunc(func(n int64) {
				// Keep only the newest value when the printer lags.
				select {
				case <-updates:
				default:
				}
				select {
				case updates <- n:
				case <-ctx.Done():
				}
			}),
		)
		if err != nil {
			cancel()
			return failure("cannot start poller", err)
		}

		printer.Info("Watching notifications every %s, press Ctrl+C to stop", interval)
		done := make(chan struct{})
		go func() {
			poller.Run(ctx)
			close(done)
		}()
		defer func() {
			cancel()
			<-done
		}()

		for {
			select {
			case <-done:
				return nil
			case n := <-updates:
				if n == last {
					continue
				}
				last = n
				if ok, err := printer.Data(map[string]any{"at": time.Now().Format(time.RFC3339), "unread": n}); ok {
					if err != nil {
						return err
					}
					continue
				}
				printer.Print("%s  %s", printer.Dim(time.Now().Format(time.TimeOnly)), fmt.Sprintf("%d unread", n))
			}
		}
	})
}
