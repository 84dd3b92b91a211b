package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

const (
	toolCreateTask   = "protokoll_create_task"
	toolCompleteTask = "protokoll_complete_task"
	toolDeleteTask   = "protokoll_delete_task"
)

type taskResult struct {
	Task struct {
		ID          textValue `json:"id"`
		Description textValue `json:"description"`
	} `json:"task"`
	TaskID      textValue `json:"taskId"`
	Description textValue `json:"description"`
}

func newTaskCmd() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage transcript tasks",
	}

	taskCmd.AddCommand(&cobra.Command{
		Use:   "add <transcriptPath> <description>",
		Short: "Add a new task to a transcript",
		Example: `  protokoll task add meeting.md "Follow up with client"
  protokoll task add notes/planning.md "Review budget proposal"`,
		Args: cobra.ExactArgs(2),
		RunE: runTaskAdd,
	})

	taskCmd.AddCommand(&cobra.Command{
		Use:     "complete <transcriptPath> <taskId>",
		Short:   "Mark a task as done",
		Example: `  protokoll task complete meeting.md task-1234567890-abc123`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTaskComplete,
	})

	taskCmd.AddCommand(&cobra.Command{
		Use:     "delete <transcriptPath> <taskId>",
		Short:   "Remove a task from a transcript",
		Example: `  protokoll task delete meeting.md task-1234567890-abc123`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTaskDelete,
	})

	return taskCmd
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	var data taskResult
	return runTool(cmd, toolCreateTask, toolArgs{
		"transcriptPath": args[0],
		"description":    args[1],
	}, &data, func(raw json.RawMessage) error {
		p := printerFor(cmd)
		return p.Render(raw, func() {
			p.Success("Task created: %s", data.Task.ID)
			p.Printf("  Description: %s\n", data.Task.Description)
		})
	})
}

func runTaskComplete(cmd *cobra.Command, args []string) error {
	var data taskResult
	return runTool(cmd, toolCompleteTask, toolArgs{
		"transcriptPath": args[0],
		"taskId":         args[1],
	}, &data, func(raw json.RawMessage) error {
		p := printerFor(cmd)
		return p.Render(raw, func() {
			p.Success("Task completed: %s", data.TaskID)
			p.Printf("  %s\n", data.Description)
		})
	})
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	var data taskResult
	return runTool(cmd, toolDeleteTask, toolArgs{
		"transcriptPath": args[0],
		"taskId":         args[1],
	}, &data, func(raw json.RawMessage) error {
		p := printerFor(cmd)
		return p.Render(raw, func() {
			p.Success("Task deleted: %s", data.TaskID)
		})
	})
}
