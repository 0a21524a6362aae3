package cli

import (
	"github.com/spf13/cobra"

	"linkup/portal/internal/audit"
	"linkup/portal/internal/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the local audit trail of session and write actions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("limit")
		if cfg.Audit.File == "" {
			printer.Warning("Audit log is disabled (audit.file is empty)")
			return nil
		}
		events, err := audit.NewLogger(cfg.Audit.File).Tail(n)
		if err != nil {
			return failure("cannot read audit log", err)
		}
		if ok, err := printer.Data(events); ok {
			return err
		}
		if len(events) == 0 {
			printer.Info("No recorded actions")
			return nil
		}
		t := output.NewTable(printer.Out(), []string{"AT", "ACTOR", "ACTION", "TARGET", "OUTCOME", "DETAIL"})
		for _, e := range events {
			outcome := e.Outcome
			if outcome == "success" {
				outcome = printer.Check(true) + " " + outcome
			}
			t.AddRow(e.At, orDash(e.Actor), e.Action, orDash(e.Target), outcome, orDash(e.Detail))
		}
		return t.Render()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "number of most recent entries")
}
