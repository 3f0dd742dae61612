package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crewos/crewos/internal/config"
	"github.com/crewos/crewos/internal/crewfile"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a CrewOS project",
	Long: `Initialize a directory for use with CrewOS.

This command creates a starting point:
  - crew.yaml, a copy of the built-in sample crew to edit
  - .crewos.yaml, a project config template
  - checks whether an Anthropic API key is available

The directory argument is optional and defaults to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	fmt.Printf("Initializing CrewOS in %s...\n\n", absPath)

	crewPath := filepath.Join(absPath, "crew.yaml")
	if err := writeInitFile(crewPath, crewfile.SampleYAML()); err != nil {
		return err
	}

	configTemplate := []byte(`# CrewOS project configuration. Overrides the user config at
# ~/.config/crewos/config.yaml for runs in this directory tree.
oracle:
  # model: claude-sonnet-4-20250514
  # api_key: ${ANTHROPIC_API_KEY}
  # Offline mode: replay canned decisions instead of consulting a model.
  scripted: true
kernel:
  max_ticks: 25
  tick_delay: 500ms
`)
	if err := writeInitFile(filepath.Join(absPath, ".crewos.yaml"), configTemplate); err != nil {
		return err
	}

	if _, err := config.GetAPIKey(nil); err != nil {
		printStatus("⚠", "ANTHROPIC_API_KEY not set (scripted mode still works)", color.FgYellow)
	} else {
		printStatus("✓", "ANTHROPIC_API_KEY is set", color.FgGreen)
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  crewos validate crew.yaml")
	fmt.Println("  crewos run crew.yaml --scripted")
	return nil
}

func writeInitFile(path string, content []byte) error {
	if _, err := os.Stat(path); err == nil && !initForce {
		printStatus("⚠", filepath.Base(path)+" already exists, use --force to overwrite", color.FgYellow)
		return nil
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	printStatus("✓", "Created "+filepath.Base(path), color.FgGreen)
	return nil
}

func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}
