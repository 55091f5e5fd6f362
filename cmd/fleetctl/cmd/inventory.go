package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Manage component stock",
}

var inventorySetCmd = &cobra.Command{
	Use:   "set <component> <quantity>",
	Short: "Set the stock level of a component",
	Args:  cobra.ExactArgs(2),
	RunE:  runInventorySet,
}

var inventoryCheckCmd = &cobra.Command{
	Use:   "check <assembly-id>",
	Short: "Check component availability for an assembly",
	RunE:  runInventoryCheck,
	Args:  cobra.ExactArgs(1),
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
	inventoryCmd.AddCommand(inventorySetCmd)
	inventoryCmd.AddCommand(inventoryCheckCmd)
}

func runInventorySet(cmd *cobra.Command, args []string) error {
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("quantity must be a number: %w", err)
	}
	if err := newClient().SetStock(args[0], quantity); err != nil {
		return err
	}
	fmt.Printf("Stock for %s set to %d\n", args[0], quantity)
	return nil
}

func runInventoryCheck(cmd *cobra.Command, args []string) error {
	report, err := newClient().CheckAvailability(args[0])
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		output, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if !report.HasShortage {
		fmt.Println("All components in stock")
		return nil
	}

	fmt.Println("Missing components:")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Component", "Needed", "Available")
	for _, s := range report.Shortages {
		table.Append(s.Component, fmt.Sprintf("%d", s.Needed), fmt.Sprintf("%d", s.Available))
	}
	table.Render()
	return nil
}
