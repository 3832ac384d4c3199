package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexnjoya/mindlink/internal/config"
	"github.com/alexnjoya/mindlink/internal/database"
	"github.com/alexnjoya/mindlink/internal/logging"
	"github.com/alexnjoya/mindlink/internal/service"
)

var (
	exportOutput string
	importInput  string
	importClear  bool
	assumeYes    bool
)

var rootCmd = &cobra.Command{
	Use:   "backup",
	Short: "MindLink session history backup tool",
	Long: `Exports persisted game sessions to a JSON file and imports them back.

Environment Variables:
  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)
  DB_PATH          SQLite database path (default: ./mindlink.db)
  DATABASE_URL     PostgreSQL or MySQL connection URL`,
	SilenceUsage: true,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export game sessions to a JSON file",
	Example: `  backup export
  backup export --output mybackup.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import game sessions from a JSON file",
	Example: `  # merge with existing data
  backup import --input backup.json

  # replace all data
  backup import --input backup.json --clear`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "input file path")
	importCmd.Flags().BoolVar(&importClear, "clear", false, "clear existing sessions before import (destructive)")
	importCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt for --clear")
	_ = importCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(exportCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openBackupService connects to the configured database and brings its schema up to date
func openBackupService(ctx context.Context) (*service.BackupService, func(), error) {
	cfg := config.Load()

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(ctx, database.MigrationsFS(cfg.MigrationsPath), logger); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cleanup := func() {
		db.Close()
		_ = logger.Sync()
	}
	return service.NewBackupService(db, logger), cleanup, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	backupService, cleanup, err := openBackupService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	outputPath := exportOutput
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	cmd.Printf("Exporting sessions to: %s\n", outputPath)
	if err := backupService.Export(ctx, outputPath); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if info, err := os.Stat(outputPath); err == nil {
		cmd.Printf("Export complete! File size: %.2f KB\n", float64(info.Size())/1024)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(importInput); err != nil {
		return fmt.Errorf("input file not readable: %w", err)
	}

	if importClear && !assumeYes {
		cmd.Print("WARNING: This will delete all existing sessions. Type 'yes' to confirm: ")
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if strings.TrimSpace(answer) != "yes" {
			cmd.Println("Import cancelled")
			return nil
		}
	}

	ctx := cmd.Context()
	backupService, cleanup, err := openBackupService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	cmd.Printf("Importing sessions from: %s\n", importInput)
	if err := backupService.Import(ctx, importInput, importClear); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Println("Import complete!")
	return nil
}
