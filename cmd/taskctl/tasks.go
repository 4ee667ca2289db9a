package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	tasksCmd := &cobra.Command{Use: "tasks", Short: "Task operations"}

	var description string
	addCmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"title": args[0]}
			if description != "" {
				payload["description"] = description
			}
			resp, err := newClient().R().
				SetBody(payload).
				Post(fmt.Sprintf("/api/users/%s/tasks", userFlag))
			return printResponse(resp, err)
		},
	}
	addCmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	tasksCmd.AddCommand(addCmd)

	var status string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().
				SetQueryParam("status", status).
				Get(fmt.Sprintf("/api/users/%s/tasks", userFlag))
			return printResponse(resp, err)
		},
	}
	listCmd.Flags().StringVarP(&status, "status", "s", "all", "Filter: all, pending, completed")
	tasksCmd.AddCommand(listCmd)

	tasksCmd.AddCommand(&cobra.Command{
		Use:   "complete TASK_ID",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().
				Post(fmt.Sprintf("/api/users/%s/tasks/%s/complete", userFlag, args[0]))
			return printResponse(resp, err)
		},
	})

	var newTitle, newDescription string
	updateCmd := &cobra.Command{
		Use:   "update TASK_ID",
		Short: "Update a task's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{}
			if newTitle != "" {
				payload["title"] = newTitle
			}
			if newDescription != "" {
				payload["description"] = newDescription
			}
			if len(payload) == 0 {
				return fmt.Errorf("--title or --description required")
			}
			resp, err := newClient().R().
				SetBody(payload).
				Patch(fmt.Sprintf("/api/users/%s/tasks/%s", userFlag, args[0]))
			return printResponse(resp, err)
		},
	}
	updateCmd.Flags().StringVarP(&newTitle, "title", "t", "", "New title")
	updateCmd.Flags().StringVarP(&newDescription, "description", "d", "", "New description")
	tasksCmd.AddCommand(updateCmd)

	tasksCmd.AddCommand(&cobra.Command{
		Use:   "delete TASK_ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().
				Delete(fmt.Sprintf("/api/users/%s/tasks/%s", userFlag, args[0]))
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
			}
			fmt.Println("deleted")
			return nil
		},
	})

	rootCmd.AddCommand(tasksCmd)
}
