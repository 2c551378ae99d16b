// Command pipelinectl is demonstration scaffolding around the pipeline
// engine: it loads a declaratively wired network (declnet.NetworkDef),
// compiles it into a plan and optionally executes or serves it, printing
// the result as plain text. It is not part of the engine's tested core
// surface.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/graphflow/config"
	"github.com/kbukum/graphflow/httpserver"
	"github.com/kbukum/graphflow/logger"
	"github.com/kbukum/graphflow/version"
)

// fileConfig is pipelinectl's own config.yml/.env schema, loaded via
// config.LoadConfig before any subcommand runs: the engine options every
// compile/run invocation defaults to, plus the serve subcommand's listen
// address.
type fileConfig struct {
	Engine config.EngineConfig `yaml:"engine" mapstructure:"engine"`
	Serve  httpserver.Config   `yaml:"serve" mapstructure:"serve"`
}

func main() {
	var fc fileConfig
	if err := config.LoadConfig("pipelinectl", &fc); err != nil {
		logger.Init(&logger.Config{Level: "info", Format: "console", Output: "stdout", Timestamp: true})
		logger.Error("loading pipelinectl config", logger.Fields("error", err.Error()))
		os.Exit(1)
	}
	fc.Engine.Name = "pipelinectl"
	fc.Engine.ApplyDefaults()
	logger.Init(&fc.Engine.Logging)
	logger.RegisterDefaults("executor", "httpserver", "planner", "declnet")

	root := &cobra.Command{
		Use:     "pipelinectl",
		Short:   "Inspect and run declaratively wired pipeline networks",
		Version: version.GetFullVersion(),
	}
	root.SetVersionTemplate("pipelinectl {{.Version}}\n")
	root.AddCommand(newCompileCommand(fc.Engine))
	root.AddCommand(newRunCommand(fc.Engine))
	root.AddCommand(newServeCommand(fc.Serve))

	if err := root.Execute(); err != nil {
		logger.Error("pipelinectl failed", logger.Fields("error", err.Error()))
		os.Exit(1)
	}
}
