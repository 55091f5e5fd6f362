package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/printforge/fleet/pkg/models"
)

var (
	jobPrinterID string
	jobSKU       string
	jobQuantity  int
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage print jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs in the merged live view",
	RunE:  runJobsList,
}

var jobsSubmitCmd = &cobra.Command{
	Use:   "submit <file-name>",
	Short: "Submit a print job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsSubmit,
}

var jobsCancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Cancel a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsCancel,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsSubmitCmd)
	jobsCmd.AddCommand(jobsCancelCmd)

	jobsSubmitCmd.Flags().StringVar(&jobPrinterID, "printer", "", "Printer record ID to assign the job to")
	jobsSubmitCmd.Flags().StringVar(&jobSKU, "sku", "", "Product SKU this print belongs to")
	jobsSubmitCmd.Flags().IntVar(&jobQuantity, "quantity", 1, "Number of items in this print")
}

func runJobsList(cmd *cobra.Command, args []string) error {
	jobs, err := newClient().ListJobs()
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(jobs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "File", "Status", "Progress", "Qty", "Source")
	for _, j := range jobs {
		progress := "-"
		if p, ok := j["progress_percentage"].(float64); ok {
			progress = fmt.Sprintf("%.0f%%", p)
		}
		qty := "-"
		if q, ok := j["quantity"].(float64); ok {
			qty = fmt.Sprintf("%.0f", q)
		}
		source := "ledger"
		if ext, ok := j["is_external_job"].(bool); ok && ext {
			source = "external"
		}
		table.Append(
			fmt.Sprintf("%v", j["id"]),
			fmt.Sprintf("%v", j["file_name"]),
			fmt.Sprintf("%v", j["status"]),
			progress,
			qty,
			source,
		)
	}
	table.Render()
	return nil
}

func runJobsSubmit(cmd *cobra.Command, args []string) error {
	req := &models.JobRequest{
		FileName:   args[0],
		ProductSKU: jobSKU,
		Quantity:   jobQuantity,
	}
	if jobPrinterID != "" {
		req.PrinterID = &jobPrinterID
	}

	job, err := newClient().CreateJob(req)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		output, _ := json.MarshalIndent(job, "", "  ")
		fmt.Println(string(output))
		return nil
	}
	fmt.Printf("Job submitted: %s (%s)\n", job.ID, job.FileName)
	return nil
}

func runJobsCancel(cmd *cobra.Command, args []string) error {
	job, err := newClient().CancelJob(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Job %s cancelled\n", job.ID)
	return nil
}
