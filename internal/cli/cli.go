package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/velkovb/taskforge/internal/config"
	"github.com/velkovb/taskforge/internal/log"
	internal_storage "github.com/velkovb/taskforge/internal/storage"
	"github.com/velkovb/taskforge/pkg/models"
	"github.com/velkovb/taskforge/pkg/service"
)

// cliUser is the acting identity for local commands. The CLI runs with full
// rights; multi-user permission setups are the embedding application's
// concern.
const cliUser = "cli"

func SetupCLI(rootCmd *cobra.Command) {
	createCmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a new task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc := initService(cmd)
			taskType, _ := cmd.Flags().GetString("type")
			priority, _ := cmd.Flags().GetString("priority")
			req := service.CreateTaskRequest{Title: args[0], Type: taskType}
			if priority != "" {
				p, ok := models.ParsePriority(priority)
				if !ok {
					fmt.Fprintf(os.Stderr, "Error: unknown priority %q\n", priority)
					os.Exit(1)
				}
				req.Priority = p
			}
			res, err := svc.CreateTask(cliUser, req)
			if err != nil {
				log.GetLogger().Errorf("Failed to create task: %v", err)
				fmt.Fprintf(os.Stderr, "Error: failed to create task: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stdout, "Created task '%s' with ID %s\n", res.Task.Title, res.Task.ID)
		},
	}
	createCmd.Flags().String("type", "simple", "Task type (simple, urgent, project)")
	createCmd.Flags().String("priority", "", "Priority (LOW, MEDIUM, HIGH, CRITICAL)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Run: func(cmd *cobra.Command, args []string) {
			svc := initService(cmd)
			sortBy, _ := cmd.Flags().GetString("sort")
			tasks, err := svc.Search(cliUser, service.SearchCriteria{}, sortBy, nil)
			if err != nil {
				log.GetLogger().Errorf("Failed to list tasks: %v", err)
				fmt.Fprintf(os.Stderr, "Error: failed to list tasks: %v\n", err)
				os.Exit(1)
			}
			if len(tasks) == 0 {
				fmt.Fprintf(os.Stdout, "No tasks found.\n")
				return
			}
			fmt.Fprintf(os.Stdout, "Tasks:\n")
			for _, t := range tasks {
				fmt.Fprintf(os.Stdout, "- ID: %s, Title: %s, Status: %s, Priority: %s, Created: %s\n",
					t.ID, t.Title, t.Status, t.Priority, t.CreatedAt.Format(time.RFC3339))
			}
		},
	}
	listCmd.Flags().String("sort", service.SortByPriority, "Sort key (priority, due_date, status, created_at, title)")

	statusCmd := &cobra.Command{
		Use:   "status [id] [status]",
		Short: "Update a task's status",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			svc := initService(cmd)
			res, err := svc.UpdateTaskStatus(cliUser, args[0], models.TaskStatus(args[1]), nil)
			if err != nil {
				log.GetLogger().Errorf("Failed to update task status: %v", err)
				fmt.Fprintf(os.Stderr, "Error: failed to update task status: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stdout, "Updated task %s to status '%s'\n", res.Task.ID, res.Task.Status)
		},
	}

	assignCmd := &cobra.Command{
		Use:   "assign [id] [user]",
		Short: "Assign a task to a user",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			svc := initService(cmd)
			res, err := svc.AssignTask(cliUser, args[0], args[1])
			if err != nil {
				log.GetLogger().Errorf("Failed to assign task: %v", err)
				fmt.Fprintf(os.Stderr, "Error: failed to assign task: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stdout, "Assigned task %s to %s\n", res.Task.ID, res.Task.AssigneeID)
		},
	}

	rootCmd.AddCommand(createCmd, listCmd, statusCmd, assignCmd)
}

func initService(cmd *cobra.Command) *service.TaskService {
	dbConnStr, err := cmd.Flags().GetString("db")
	if err != nil {
		log.GetLogger().Errorf("Error retrieving db flag: %v", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		log.GetLogger().Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}
	store, err := internal_storage.NewPostgresStore(dbConnStr)
	if err != nil {
		log.GetLogger().Errorf("Failed to initialize store: %v", err)
		os.Exit(1)
	}
	svc := service.NewTaskService(store, cfg.Engine(), log.GetLogger())
	svc.Permissions().Grant(cliUser, models.AdminAction)
	return svc
}
