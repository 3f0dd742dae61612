package main

import (
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/crewos/crewos/internal/config"
	"github.com/crewos/crewos/internal/kernel"
	"github.com/crewos/crewos/internal/oracle"
	"github.com/crewos/crewos/internal/tool"
)

// scriptedFlag forces the offline scripted oracle regardless of config.
var scriptedFlag bool

// buildOracle creates the decision oracle the kernel consults. Scripted
// mode needs no credentials; otherwise an API key (or Bedrock) must be
// configured.
func buildOracle(cfg *config.Config) (oracle.Oracle, error) {
	if scriptedFlag || cfg.Oracle.Scripted {
		return oracle.NewScriptedOracle(), nil
	}

	anthropicCfg := oracle.AnthropicConfig{
		Model:         anthropic.Model(cfg.Oracle.Model),
		MaxTokens:     cfg.Oracle.MaxTokens,
		UseAWSBedrock: cfg.Oracle.UseAWSBedrock,
		AWSRegion:     cfg.Oracle.AWSRegion,
		AWSProfile:    cfg.Oracle.AWSProfile,
	}
	if !cfg.Oracle.UseAWSBedrock {
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w; run in scripted mode with --scripted", err)
		}
		anthropicCfg.APIKey = key
	}

	return oracle.NewAnthropicOracle(anthropicCfg)
}

// buildKernel wires the oracle, tool registry, and debug logger into a
// kernel configured from cfg. The returned cleanup closes the logger.
func buildKernel(cfg *config.Config) (*kernel.Kernel, func(), error) {
	o, err := buildOracle(cfg)
	if err != nil {
		return nil, nil, err
	}

	cwd, _ := os.Getwd()
	logger := kernel.NewDebugLoggerForDir(cwd)

	k := kernel.New(o, tool.DefaultRegistry(),
		kernel.WithLogger(logger),
		kernel.WithConsultCost(cfg.Kernel.ConsultCost),
		kernel.WithDecisionRetryLimit(cfg.Kernel.DecisionRetryLimit),
	)
	return k, func() { logger.Close() }, nil
}
