package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/errandlabs/errand/config"
	"github.com/errandlabs/errand/internal/agent/core"
)

func modelsCMD() *cobra.Command {
	var cfgPath string
	models := &cobra.Command{
		Use:   "models",
		Short: "List the models the configured provider can route to",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			llm, err := core.NewLLMProvider(cfg.LLM)
			if err != nil {
				return err
			}
			names := llm.GetAvailableModels()
			sort.Strings(names)
			for _, name := range names {
				info, err := llm.GetModelInfo(name)
				if err != nil {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) in=$%.4f/1k out=$%.4f/1k\n",
					name, info.Provider, info.CostPer1KInput, info.CostPer1KOutput)
			}
			return nil
		},
	}
	models.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (searches ./config and . by default)")
	return models
}
