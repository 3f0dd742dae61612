package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/crewos/crewos/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify CrewOS configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/crewos/config.yaml
Project-specific overrides can be placed in .crewos.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

func displayAllConfig(cfg *config.Config) {
	fmt.Println("Configuration:")
	fmt.Printf("  oracle.model:                %s\n", orDefault(cfg.Oracle.Model, "(sdk default)"))
	fmt.Printf("  oracle.api_key:              %s (from %s)\n",
		config.MaskAPIKey(cfg.Oracle.APIKey), config.GetAPIKeySource(cfg))
	fmt.Printf("  oracle.max_tokens:           %d\n", cfg.Oracle.MaxTokens)
	fmt.Printf("  oracle.use_aws_bedrock:      %t\n", cfg.Oracle.UseAWSBedrock)
	fmt.Printf("  oracle.scripted:             %t\n", cfg.Oracle.Scripted)
	fmt.Printf("  kernel.max_ticks:            %d\n", cfg.Kernel.MaxTicks)
	fmt.Printf("  kernel.tick_delay:           %s\n", cfg.Kernel.TickDelay)
	fmt.Printf("  kernel.consult_cost:         %d\n", cfg.Kernel.ConsultCost)
	fmt.Printf("  kernel.decision_retry_limit: %d\n", cfg.Kernel.DecisionRetryLimit)
	fmt.Printf("  shell.color:                 %t\n", cfg.Shell.Color)

	fmt.Printf("\nUser config: %s\n", config.GetUserConfigPath())
	if project := config.GetProjectConfigPath(); project != "" {
		fmt.Printf("Project config: %s\n", project)
	}
}

func displayConfigKey(cfg *config.Config, key string) {
	switch key {
	case "oracle.model":
		fmt.Println(cfg.Oracle.Model)
	case "oracle.api_key":
		fmt.Println(config.MaskAPIKey(cfg.Oracle.APIKey))
	case "oracle.max_tokens":
		fmt.Println(cfg.Oracle.MaxTokens)
	case "oracle.use_aws_bedrock":
		fmt.Println(cfg.Oracle.UseAWSBedrock)
	case "oracle.scripted":
		fmt.Println(cfg.Oracle.Scripted)
	case "kernel.max_ticks":
		fmt.Println(cfg.Kernel.MaxTicks)
	case "kernel.tick_delay":
		fmt.Println(cfg.Kernel.TickDelay)
	case "kernel.consult_cost":
		fmt.Println(cfg.Kernel.ConsultCost)
	case "kernel.decision_retry_limit":
		fmt.Println(cfg.Kernel.DecisionRetryLimit)
	case "shell.color":
		fmt.Println(cfg.Shell.Color)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config key: %s\n", key)
		os.Exit(1)
	}
}

func setConfigKey(cfg *config.Config, key, value string) {
	var err error
	switch key {
	case "oracle.model":
		cfg.Oracle.Model = value
	case "oracle.api_key":
		cfg.Oracle.APIKey = value
	case "oracle.max_tokens":
		cfg.Oracle.MaxTokens, err = strconv.ParseInt(value, 10, 64)
	case "oracle.use_aws_bedrock":
		cfg.Oracle.UseAWSBedrock, err = strconv.ParseBool(value)
	case "oracle.scripted":
		cfg.Oracle.Scripted, err = strconv.ParseBool(value)
	case "kernel.max_ticks":
		cfg.Kernel.MaxTicks, err = strconv.Atoi(value)
	case "kernel.tick_delay":
		cfg.Kernel.TickDelay, err = time.ParseDuration(value)
	case "kernel.consult_cost":
		cfg.Kernel.ConsultCost, err = strconv.ParseInt(value, 10, 64)
	case "kernel.decision_retry_limit":
		cfg.Kernel.DecisionRetryLimit, err = strconv.Atoi(value)
	case "shell.color":
		cfg.Shell.Color, err = strconv.ParseBool(value)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config key: %s\n", key)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid value for %s: %v\n", key, err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Set %s = %s\n", key, value)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
