package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crewos/crewos/internal/config"
	"github.com/crewos/crewos/internal/crewfile"
	"github.com/crewos/crewos/pkg/models"
)

var (
	runTicks  int
	runDelay  time.Duration
	runSample bool
)

var runCmd = &cobra.Command{
	Use:   "run [crew.yaml]",
	Short: "Run a crew to completion without the shell",
	Long: `Run a crew declaration headless: load, validate, tick until every
task is terminal or the tick budget is spent, then print each task's result
and the resource report.

With --sample the built-in demonstration crew runs instead of a file.
With --scripted the decision oracle is replaced by canned decisions, so the
run needs no API credentials.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHeadless,
}

func init() {
	runCmd.Flags().IntVar(&runTicks, "ticks", 0, "Tick budget (default from config)")
	runCmd.Flags().DurationVar(&runDelay, "delay", -1, "Delay between ticks (default from config)")
	runCmd.Flags().BoolVar(&runSample, "sample", false, "Run the built-in demonstration crew")
	runCmd.Flags().BoolVar(&scriptedFlag, "scripted", false, "Use the offline scripted oracle")
}

func runHeadless(cmd *cobra.Command, args []string) error {
	if !runSample && len(args) == 0 {
		return fmt.Errorf("pass a crew file or use --sample")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if runTicks > 0 {
		cfg.Kernel.MaxTicks = runTicks
	}
	if runDelay >= 0 {
		cfg.Kernel.TickDelay = runDelay
	}
	color.NoColor = color.NoColor || !cfg.Shell.Color

	var crew *models.Crew
	if runSample {
		crew, err = crewfile.Sample()
	} else {
		crew, err = crewfile.Load(args[0])
	}
	if err != nil {
		return err
	}

	k, cleanup, err := buildKernel(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := k.LoadCrew(crew); err != nil {
		return err
	}

	fmt.Printf("Running crew: %d agents, %d tasks, up to %d ticks\n\n",
		len(crew.Agents), len(crew.Tasks), cfg.Kernel.MaxTicks)

	// Ctrl-C stops after the in-flight tick.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := k.Run(ctx, cfg.Kernel.MaxTicks, cfg.Kernel.TickDelay); err != nil && ctx.Err() == nil {
		return err
	}

	printOutcome(k.Crew())
	printReport(k.Report().TotalTokens, k.Report().TotalToolCalls, k.TickCount())

	if !k.AllTasksDone() {
		return fmt.Errorf("run stopped with unfinished tasks")
	}
	return nil
}

func printOutcome(crew *models.Crew) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Println("Task results:")
	for _, id := range crew.TaskOrder {
		task := crew.GetTask(id)
		switch {
		case task.State == models.TaskCompleted && task.HasResult():
			green.Printf("  ✓ %s", id)
			fmt.Printf(" %s\n    %s\n", task.Description, *task.Result)
		case task.State == models.TaskFailed:
			red.Printf("  ✗ %s", id)
			fmt.Printf(" %s (failed)\n", task.Description)
		default:
			fmt.Printf("  - %s %s (%s)\n", id, task.Description, task.State)
		}
	}
	fmt.Println()
}

func printReport(tokens, toolCalls int64, ticks int) {
	fmt.Println("Resource report:")
	fmt.Printf("  ticks:      %d\n", ticks)
	fmt.Printf("  tokens:     %d\n", tokens)
	fmt.Printf("  tool calls: %d\n", toolCalls)
}
