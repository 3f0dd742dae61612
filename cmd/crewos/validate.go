package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crewos/crewos/internal/crewfile"
	"github.com/crewos/crewos/pkg/models"
)

var validateWatch bool

var validateCmd = &cobra.Command{
	Use:   "validate <crew.yaml>",
	Short: "Validate a crew declaration",
	Long: `Validate a crew declaration without running it: YAML structure,
agent and task fields, dependency references, cycles, and whether the file
order is compatible with the dependency graph.

With --watch the file is revalidated every time it changes on disk, which
is useful while editing a declaration.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateWatch, "watch", false, "Revalidate whenever the file changes")
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]

	crew, err := crewfile.Load(path)
	if err != nil {
		reportInvalid(path, err)
		if !validateWatch {
			return fmt.Errorf("validation failed")
		}
	} else {
		reportValid(path, crew)
	}

	if !validateWatch {
		return nil
	}

	w, err := crewfile.Watch(path)
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	defer w.Close()

	fmt.Println("Watching for changes, Ctrl-C to stop...")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case crew := <-w.Crews():
			reportValid(path, crew)
		case err := <-w.Errors():
			reportInvalid(path, err)
		case <-sig:
			return nil
		}
	}
}

func reportValid(path string, crew *models.Crew) {
	color.New(color.FgGreen).Printf("✓ %s", path)
	fmt.Printf(" is valid: %d agents, %d tasks, process %s\n",
		len(crew.Agents), len(crew.Tasks), crew.Process)
}

func reportInvalid(path string, err error) {
	color.New(color.FgRed).Printf("✗ %s", path)
	fmt.Printf(" is invalid: %v\n", err)
}
