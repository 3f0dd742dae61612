package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/crewos/crewos/internal/config"
	"github.com/crewos/crewos/internal/shell"
)

var rootCmd = &cobra.Command{
	Use:   "crewos",
	Short: "Multi-agent crew orchestration kernel",
	Long: `CrewOS runs declared crews of agents against dependent tasks.

A crew is a YAML declaration of agents (role, goal, backstory, tools) and
tasks with dependencies. The kernel schedules tasks in declared order,
aggregates dependency outputs into each task's context, consults a decision
oracle for every running agent, dispatches tools with cost accounting, and
reports resource usage for the run.

With no arguments, launches the interactive shell where you can load crews
and step or run the kernel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// runShell launches the interactive crew shell.
func runShell() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	k, cleanup, err := buildKernel(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	program := tea.NewProgram(shell.New(k, cfg))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	return nil
}
