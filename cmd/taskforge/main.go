package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/velkovb/taskforge/internal/cli"
	"github.com/velkovb/taskforge/internal/config"
	internal_http "github.com/velkovb/taskforge/internal/http"
	"github.com/velkovb/taskforge/internal/log"
	internal_storage "github.com/velkovb/taskforge/internal/storage"
	"github.com/velkovb/taskforge/pkg/service"
)

var rootCmd = &cobra.Command{Use: "taskforge"}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the TaskForge HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			log.GetLogger().Errorf("Failed to load config: %v", err)
			os.Exit(1)
		}
		dbConnStr, _ := cmd.Flags().GetString("db")
		if dbConnStr == "" {
			dbConnStr = cfg.DBConnStr
		}
		store, err := internal_storage.NewPostgresStore(dbConnStr)
		if err != nil {
			log.GetLogger().Errorf("Failed to initialize store: %v", err)
			os.Exit(1)
		}
		defer store.Close()
		svc := service.NewTaskService(store, cfg.Engine(), log.GetLogger())
		if err := internal_http.StartServer(cfg.HTTPPort, svc); err != nil {
			log.GetLogger().Errorf("Server stopped: %v", err)
			os.Exit(1)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().String("db", "", "Database connection string")
	rootCmd.AddCommand(serveCmd)
	cli.SetupCLI(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
