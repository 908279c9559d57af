package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "errand",
		Short: "Single-request agent service: plan, act, respond",
	}
	root.AddCommand(serveCMD(), modelsCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
