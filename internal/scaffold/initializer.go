// Package scaffold writes the starter files 'qest init' drops into a fresh
// working directory and validates them with the same loaders the CLI uses.
package scaffold

import (
	"embed"
	"fmt"
	"os"

	"github.com/dyluth/qest/internal/config"
	"github.com/dyluth/qest/internal/jobfile"
)

//go:embed templates/*
var templatesFS embed.FS

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize creates the qest starter files in the current directory
// If force is true, it will remove existing qest.yml and job.yml first
func Initialize(force bool) error {
	// Handle --force flag
	if force {
		if err := handleForce(); err != nil {
			return err
		}
	}

	// Get template files
	files, err := getTemplateFiles()
	if err != nil {
		return err
	}

	// Write files
	if err := writeFiles(files); err != nil {
		return err
	}

	// Validate created files
	if err := validateCreatedFiles(); err != nil {
		return err
	}

	return nil
}

// handleForce removes existing files if --force was specified
func handleForce() error {
	for _, path := range []string{"qest.yml", "job.yml"} {
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("⚠️  Removing existing %s...\n", path)
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove %s: %w", path, err)
			}
		}
	}

	return nil
}

// getTemplateFiles reads and processes all template files
func getTemplateFiles() ([]FileInfo, error) {
	files := []FileInfo{}

	// qest.yml
	qestYml, err := templatesFS.ReadFile("templates/qest.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read qest.yml template: %w", err)
	}
	files = append(files, FileInfo{
		Path:        "qest.yml",
		Content:     qestYml,
		Permissions: 0644,
	})

	// job.yml
	jobYml, err := templatesFS.ReadFile("templates/job.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read job.yml template: %w", err)
	}
	files = append(files, FileInfo{
		Path:        "job.yml",
		Content:     jobYml,
		Permissions: 0644,
	})

	return files, nil
}

// writeFiles writes all template files to disk
func writeFiles(files []FileInfo) error {
	for _, file := range files {
		if err := os.WriteFile(file.Path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return nil
}

// validateCreatedFiles checks that the created files load under the same
// loaders 'qest run' uses
func validateCreatedFiles() error {
	if _, err := config.Load("qest.yml"); err != nil {
		return fmt.Errorf("created qest.yml is not usable: %w", err)
	}
	if _, err := jobfile.Load("job.yml"); err != nil {
		return fmt.Errorf("created job.yml is not usable: %w", err)
	}

	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess() {
	fmt.Println("\n✅ Successfully initialized qest workspace!")
	fmt.Println("\nCreated:")
	fmt.Println("  ✓ qest.yml")
	fmt.Println("  ✓ job.yml")
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit job.yml to describe your circuits and observables")
	fmt.Println("  2. Run 'qest run -f job.yml' to estimate them")
	fmt.Println("  3. Tune backend and precision defaults in qest.yml")
}
