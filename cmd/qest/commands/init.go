package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/qest/internal/scaffold"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write starter configuration and job files",
	Long: `Write starter files into the current directory.

Creates:
  • qest.yml - Backend and estimator configuration
  • job.yml - Example estimation job (a Bell pair and a rotation sweep)

Use --force to reinitialize (WARNING: overwrites existing files).`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Force reinitialization (removes existing qest.yml and job.yml)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	// Check for existing files (unless --force)
	if !forceInit {
		if err := scaffold.CheckExisting(); err != nil {
			return err
		}
	}

	if err := scaffold.Initialize(forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess()

	return nil
}
