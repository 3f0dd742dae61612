package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crewos/crewos/internal/tool"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the built-in tools agents can be granted",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(tool.DefaultRegistry().Describe())
	},
}
