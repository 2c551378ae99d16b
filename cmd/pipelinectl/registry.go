package main

import (
	"context"
	"fmt"

	"github.com/kbukum/graphflow/declnet"
)

// demoRegistry returns a BodyRegistry populated with a handful of
// placeholder components, enough to compile and run the example networks
// shipped with this repo. A real deployment builds its own registry from
// its actual business logic and never needs this binary at all.
func demoRegistry() *declnet.BodyRegistry {
	registry := declnet.NewBodyRegistry()

	registry.Register("passthrough", func(ctx context.Context, in map[string]any) (map[string]any, error) {
		out := make(map[string]any, len(in))
		for k, v := range in {
			out[k] = v
		}
		return out, nil
	})

	registry.Register("constant", func(ctx context.Context, in map[string]any) (map[string]any, error) {
		return map[string]any{}, nil
	})

	registry.Register("fail", func(ctx context.Context, in map[string]any) (map[string]any, error) {
		return nil, fmt.Errorf("pipelinectl: demo component \"fail\" always errors")
	})

	return registry
}
