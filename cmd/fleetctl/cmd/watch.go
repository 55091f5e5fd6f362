package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/printforge/fleet/pkg/logging"
	"github.com/printforge/fleet/pkg/models"
	"github.com/printforge/fleet/pkg/reconcile"
	"github.com/printforge/fleet/pkg/telemetry"
)

var watchRefresh time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live fleet view",
	Long: `Subscribes to the telemetry channel and renders the merged fleet view,
refreshing as snapshots arrive. Persisted printer records come from the
API; live status is overlaid as it streams in. Press Ctrl+C to stop.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchRefresh, "refresh", 5*time.Second, "How often to re-fetch persisted records")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	client := newClient()
	logger := logging.NewLogger(logging.WARN, false)
	stream := telemetry.NewClient(serverURL, tenantID, logger)
	go func() {
		_ = stream.Run(ctx)
	}()

	engine := reconcile.NewEngine()
	ticker := time.NewTicker(watchRefresh)
	defer ticker.Stop()

	var snap models.Snapshot
	render := func() error {
		views, err := client.ListPrinters()
		if err != nil {
			return err
		}
		printers := make([]*models.Printer, len(views))
		for i, v := range views {
			printers[i] = v.Printer
		}
		merged := engine.MergePrinters(printers, snap)

		fmt.Print("\033[H\033[2J")
		fmt.Printf("Fleet %s  (connected: %v)  %s\n\n", tenantID, stream.Connected(), time.Now().Format("15:04:05"))

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("", "#", "Name", "Status", "Job", "Progress")
		for _, m := range merged {
			job, progress := "-", "-"
			if m.Live != nil {
				if m.Live.CurrentJob != "" {
					job = m.Live.CurrentJob
				}
				if m.Live.Progress != nil {
					progress = fmt.Sprintf("%.0f%%", *m.Live.Progress)
				}
			}
			table.Append(
				statusGlyph(m.DisplayStatus),
				m.Printer.NumericID.String(),
				m.Printer.Name,
				string(m.DisplayStatus),
				job,
				progress,
			)
		}
		table.Render()
		return nil
	}

	if err := render(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nStopped")
			return nil
		case s := <-stream.Snapshots():
			snap = s
			if err := render(); err != nil {
				return err
			}
		case <-ticker.C:
			if err := render(); err != nil {
				return err
			}
		}
	}
}
