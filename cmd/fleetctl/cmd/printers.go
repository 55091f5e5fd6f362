package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/printforge/fleet/pkg/api"
	"github.com/printforge/fleet/pkg/models"
)

var (
	printerModel         string
	printerManufacturer  string
	printerFilamentType  string
	printerFilamentColor string
)

var printersCmd = &cobra.Command{
	Use:   "printers",
	Short: "Manage the printer fleet",
}

var printersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List printers with live status",
	RunE:  runPrintersList,
}

var printersAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a printer",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrintersAdd,
}

var printersClearCmd = &cobra.Command{
	Use:   "clear <printer-id>",
	Short: "Mark a printer's build plate as cleared",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrintersClear,
}

var printersReorderCmd = &cobra.Command{
	Use:   "reorder <printer-id>...",
	Short: "Set the fleet display order",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPrintersReorder,
}

func init() {
	rootCmd.AddCommand(printersCmd)
	printersCmd.AddCommand(printersListCmd)
	printersCmd.AddCommand(printersAddCmd)
	printersCmd.AddCommand(printersClearCmd)
	printersCmd.AddCommand(printersReorderCmd)

	printersAddCmd.Flags().StringVar(&printerModel, "model", "", "Printer model, e.g. \"Ender 3\"")
	printersAddCmd.Flags().StringVar(&printerManufacturer, "manufacturer", "", "Printer manufacturer")
	printersAddCmd.Flags().StringVar(&printerFilamentType, "filament-type", "", "Loaded filament type: PLA, PETG, ABS, TPU")
	printersAddCmd.Flags().StringVar(&printerFilamentColor, "filament-color", "", "Loaded filament color")
}

func runPrintersList(cmd *cobra.Command, args []string) error {
	views, err := newClient().ListPrinters()
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "Name", "Status", "Connected", "Job", "Progress", "Nozzle", "Bed")
	for _, v := range views {
		connected := "no"
		if v.Connected {
			connected = "yes"
		}
		job, progress, nozzle, bed := "-", "-", "-", "-"
		if v.Live != nil {
			if v.Live.CurrentJob != "" {
				job = v.Live.CurrentJob
			}
			if v.Live.Progress != nil {
				progress = fmt.Sprintf("%.0f%%", *v.Live.Progress)
			}
			if v.Live.NozzleTemp != nil {
				nozzle = fmt.Sprintf("%.0f°C", *v.Live.NozzleTemp)
			}
			if v.Live.BedTemp != nil {
				bed = fmt.Sprintf("%.0f°C", *v.Live.BedTemp)
			}
		}
		table.Append(
			v.NumericID.String(),
			v.Name,
			string(v.DisplayStatus),
			connected,
			job,
			progress,
			nozzle,
			bed,
		)
	}
	table.Render()
	return nil
}

func runPrintersAdd(cmd *cobra.Command, args []string) error {
	printer, err := newClient().CreatePrinter(&api.CreatePrinterRequest{
		Name:          args[0],
		Model:         printerModel,
		Manufacturer:  printerManufacturer,
		FilamentType:  printerFilamentType,
		FilamentColor: printerFilamentColor,
	})
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		output, _ := json.MarshalIndent(printer, "", "  ")
		fmt.Println(string(output))
		return nil
	}
	fmt.Printf("Printer registered: %s (#%s)\n", printer.Name, printer.NumericID)
	return nil
}

func runPrintersClear(cmd *cobra.Command, args []string) error {
	if err := newClient().ClearPrinter(args[0], true); err != nil {
		return err
	}
	fmt.Println("Printer marked as cleared")
	return nil
}

func runPrintersReorder(cmd *cobra.Command, args []string) error {
	if err := newClient().ReorderPrinters(args); err != nil {
		return err
	}
	fmt.Printf("Fleet order updated: %s\n", strings.Join(args, ", "))
	return nil
}

// statusGlyph renders a compact status marker for watch mode
func statusGlyph(status models.PrinterStatus) string {
	switch status {
	case models.PrinterStatusPrinting:
		return "▶"
	case models.PrinterStatusPaused:
		return "⏸"
	case models.PrinterStatusFailed:
		return "✗"
	default:
		return "·"
	}
}
