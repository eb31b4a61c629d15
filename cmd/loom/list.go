package main

import (
	"fmt"

	"github.com/cuemby/loom/cmd/loom/scenarios"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the bundled scenarios 'loom run' can replay",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, sc := range scenarios.All {
			fmt.Printf("%-16s %s\n", sc.Name, sc.Description)
		}
		return nil
	},
}
