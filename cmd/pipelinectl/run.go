package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kbukum/graphflow/config"
	"github.com/kbukum/graphflow/declnet"
	"github.com/kbukum/graphflow/executor"
	"github.com/kbukum/graphflow/planner"
	"github.com/kbukum/graphflow/util"
	"github.com/kbukum/graphflow/validation"
)

func newRunCommand(base config.EngineConfig) *cobra.Command {
	var (
		networkPath string
		includeDirs []string
		inputPath   string
		asked       string
		parallel    int
	)

	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Execute a declarative network definition and print the resulting values",
		Example: "  pipelinectl run --network net.yaml --input values.json --asked z",
		RunE: func(cmd *cobra.Command, args []string) error {
			if appErr := validation.New().
				Required("network", networkPath).
				Required("asked", asked).
				Min("parallel", parallel, 0).
				Validate(); appErr != nil {
				return appErr
			}

			def, err := declnet.LoadFile(networkPath)
			if err != nil {
				return fmt.Errorf("loading network: %w", err)
			}

			var loader declnet.Loader
			if len(includeDirs) > 0 {
				loader = declnet.NewFileLoader(includeDirs...)
			}

			resolved, err := declnet.Resolve(def, demoRegistry(), loader)
			if err != nil {
				return fmt.Errorf("resolving network: %w", err)
			}

			initial, err := loadInputValues(inputPath)
			if err != nil {
				return fmt.Errorf("loading input values: %w", err)
			}

			known := make([]string, 0, len(initial))
			for name := range initial {
				known = append(known, name)
			}

			cfg := base.Clone()
			cfg.Name = util.Coalesce(def.Name, "pipelinectl")
			cfg.Evict = true
			cfg.ParallelTasks = parallel
			cfg.ApplyDefaults()

			req := planner.Request{
				KnownInputs:  known,
				AskedOutputs: splitList(asked),
				Config:       cfg,
			}

			log.Info().Str("network", def.Name).Int("known", len(known)).Msg("executing pipeline")

			exec := executor.New(cfg, nil)
			sol, execErr := exec.Execute(context.Background(), resolved.Network, req, initial)
			if sol != nil {
				encoded, err := json.MarshalIndent(sol.Values(), "", "  ")
				if err == nil {
					fmt.Println(string(encoded))
				}
			}
			if execErr != nil {
				return fmt.Errorf("executing pipeline: %w", execErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&networkPath, "network", "", "path to the network definition YAML file")
	cmd.Flags().StringSliceVar(&includeDirs, "include-dir", nil, "directories searched to resolve includes (repeatable)")
	cmd.Flags().StringVar(&inputPath, "input", "", "path to a JSON file of known input values")
	cmd.Flags().StringVar(&asked, "asked", "", "comma-separated names of values to produce")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "max operations to run concurrently per layer (0 = sequential)")
	_ = cmd.MarkFlagRequired("network")
	_ = cmd.MarkFlagRequired("asked")

	return cmd
}

func loadInputValues(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values := make(map[string]any)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}
