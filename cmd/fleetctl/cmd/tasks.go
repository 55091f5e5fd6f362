package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/printforge/fleet/pkg/api"
	"github.com/printforge/fleet/pkg/models"
)

var (
	taskType       string
	taskPriority   string
	taskNotes      string
	taskAssemblyID string
	taskEstimate   int
	taskForce      bool
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage the worklist",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List worklist tasks",
	RunE:  runTasksList,
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a worklist task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksAdd,
}

var tasksStartCmd = &cobra.Command{
	Use:   "start <task-id>",
	Short: "Start a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksStart,
}

var tasksCancelCmd = &cobra.Command{
	Use:   "cancel <task-id>",
	Short: "Cancel a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksCancel,
}

var tasksCompleteCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Complete a task",
	Long: `Complete a worklist task. Assembly tasks linked to an assembly are
checked against component inventory first; if components are missing the
shortage is shown and you are asked whether to force completion.`,
	Args: cobra.ExactArgs(1),
	RunE: runTasksComplete,
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksStartCmd)
	tasksCmd.AddCommand(tasksCancelCmd)
	tasksCmd.AddCommand(tasksCompleteCmd)

	tasksAddCmd.Flags().StringVar(&taskType, "type", "assembly", "Task type: assembly, filament_change, collection, maintenance, quality_check")
	tasksAddCmd.Flags().StringVar(&taskPriority, "priority", "medium", "Priority: low, medium, high")
	tasksAddCmd.Flags().StringVar(&taskNotes, "notes", "", "Free-form notes")
	tasksAddCmd.Flags().StringVar(&taskAssemblyID, "assembly", "", "Assembly ID to gate completion on")
	tasksAddCmd.Flags().IntVar(&taskEstimate, "estimate", 0, "Estimated minutes")

	tasksCompleteCmd.Flags().BoolVar(&taskForce, "force", false, "Complete even with component shortages")
}

func runTasksList(cmd *cobra.Command, args []string) error {
	tasks, err := newClient().ListTasks()
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Type", "Priority", "Status", "Title", "Est", "Actual")
	for _, task := range tasks {
		actual := "-"
		if task.ActualMinutes != nil {
			actual = fmt.Sprintf("%dm", *task.ActualMinutes)
		}
		estimate := "-"
		if task.EstimatedMinutes > 0 {
			estimate = fmt.Sprintf("%dm", task.EstimatedMinutes)
		}
		table.Append(
			task.ID,
			string(task.Type),
			string(task.Priority),
			string(task.Status),
			task.Title,
			estimate,
			actual,
		)
	}
	table.Render()
	return nil
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	req := &models.TaskRequest{
		Type:             models.TaskType(taskType),
		Priority:         models.TaskPriority(taskPriority),
		Title:            args[0],
		Notes:            taskNotes,
		EstimatedMinutes: taskEstimate,
	}
	if taskAssemblyID != "" {
		req.AssemblyID = &taskAssemblyID
	}

	task, err := newClient().CreateTask(req)
	if err != nil {
		return err
	}
	fmt.Printf("Task created: %s (%s)\n", task.ID, task.Title)
	return nil
}

func runTasksStart(cmd *cobra.Command, args []string) error {
	task, err := newClient().StartTask(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Task %s started\n", task.ID)
	return nil
}

func runTasksCancel(cmd *cobra.Command, args []string) error {
	task, err := newClient().CancelTask(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Task %s cancelled\n", task.ID)
	return nil
}

func runTasksComplete(cmd *cobra.Command, args []string) error {
	client := newClient()
	taskID := args[0]

	result, err := client.CompleteTask(taskID, taskForce)
	if errors.Is(err, api.ErrShortage) {
		fmt.Println("Completion blocked: missing components")
		printShortages(result.Shortages)

		if !confirm("Force completion anyway? Stock will be consumed down to zero") {
			fmt.Println("Task left unchanged")
			return nil
		}
		result, err = client.CompleteTask(taskID, true)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Task %s completed", result.Task.ID)
	if result.Task.ActualMinutes != nil {
		fmt.Printf(" in %dm", *result.Task.ActualMinutes)
	}
	fmt.Println()
	return nil
}

func printShortages(shortages []models.ComponentShortage) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Component", "Needed", "Available")
	for _, s := range shortages {
		table.Append(s.Component, fmt.Sprintf("%d", s.Needed), fmt.Sprintf("%d", s.Available))
	}
	table.Render()
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
