package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kbukum/graphflow/config"
	"github.com/kbukum/graphflow/declnet"
	"github.com/kbukum/graphflow/planner"
	"github.com/kbukum/graphflow/util"
	"github.com/kbukum/graphflow/validation"
)

func newCompileCommand(base config.EngineConfig) *cobra.Command {
	var (
		networkPath string
		includeDirs []string
		known       string
		asked       string
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a declarative network definition into a plan and print its steps",
		Example: "  pipelinectl compile --network net.yaml --known x,y --asked z",
		RunE: func(cmd *cobra.Command, args []string) error {
			if appErr := validation.New().
				Required("network", networkPath).
				Required("asked", asked).
				Validate(); appErr != nil {
				return appErr
			}

			log.Info().Str("network", networkPath).Msg("loading network definition")

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

			cfg := base.Clone()
			cfg.Name = util.Coalesce(def.Name, "pipelinectl")
			cfg.Evict = true
			cfg.ApplyDefaults()

			req := planner.Request{
				KnownInputs:  splitList(known),
				AskedOutputs: splitList(asked),
				Config:       cfg,
			}

			p, err := planner.Compile(resolved.Network, req)
			if err != nil {
				return fmt.Errorf("compiling plan: %w", err)
			}

			fmt.Printf("plan for network %q (%d steps)\n", def.Name, len(p.Steps))
			for i, step := range p.Steps {
				switch step.Kind.String() {
				case "evict":
					fmt.Printf("  %2d. evict %s\n", i, step.EvictName)
				default:
					fmt.Printf("  %2d. run   %s\n", i, step.Op.Name())
				}
			}
			for _, c := range p.Comments {
				fmt.Printf("  # %s\n", c)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&networkPath, "network", "", "path to the network definition YAML file")
	cmd.Flags().StringSliceVar(&includeDirs, "include-dir", nil, "directories searched to resolve includes (repeatable)")
	cmd.Flags().StringVar(&known, "known", "", "comma-separated names of values already known")
	cmd.Flags().StringVar(&asked, "asked", "", "comma-separated names of values to produce")
	_ = cmd.MarkFlagRequired("network")
	_ = cmd.MarkFlagRequired("asked")

	return cmd
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
