package config

import (
	"fmt"
	"sync"

	"github.com/kbukum/graphflow/logger"
)

// EngineConfig carries every option recognized by the compiler and executor,
// plus the ambient service fields (name, environment, logging) shared by
// every entry point into this module.
type EngineConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`

	// Evict enables automatic eviction of data values once their last
	// consumer has run, freeing memory held by a Solution mid-execution.
	Evict bool `yaml:"evict" mapstructure:"evict"`
	// SkipEvictions disables eviction entirely even if Evict is true,
	// intended for debugging a plan's full intermediate state.
	SkipEvictions bool `yaml:"skip_evictions" mapstructure:"skip_evictions"`
	// ParallelTasks bounds the number of operations the executor may run
	// concurrently within a scheduling layer. Zero or negative means
	// sequential execution.
	ParallelTasks int `yaml:"parallel_tasks" mapstructure:"parallel_tasks"`
	// MarshalTasks is the engine-wide marshal flag. It is loaded and carried
	// in the config; neither the planner nor the executor reads it, and no
	// operation inputs or outputs are marshalled.
	MarshalTasks bool `yaml:"marshal_tasks" mapstructure:"marshal_tasks"`
	// RescheduleEnabled allows rescheduled operations that under-deliver to
	// trigger a plan recompile instead of failing outright.
	RescheduleEnabled bool `yaml:"reschedule_enabled" mapstructure:"reschedule_enabled"`
	// EndureOperations is the engine-wide endure flag. It is loaded and
	// carried in the config; neither the planner nor the executor reads it,
	// so only an operation's own Endured flag decides whether its failure
	// aborts the pipeline.
	EndureOperations bool `yaml:"endure_operations" mapstructure:"endure_operations"`
}

// ApplyDefaults fills in zero-valued fields with the engine's defaults.
func (c *EngineConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()

	c.RescheduleEnabled = true
	c.EndureOperations = true
}

// Validate checks the configuration for consistency.
func (c *EngineConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config: name is required")
	}
	switch c.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("config: environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if c.ParallelTasks < 0 {
		return fmt.Errorf("config: parallel_tasks must not be negative (got: %d)", c.ParallelTasks)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config: logging: %w", err)
	}
	return nil
}

// Clone returns a deep-enough copy of c suitable for a Scope push: every
// field is a value type or a value-type struct, so a plain copy suffices.
func (c EngineConfig) Clone() EngineConfig { return c }

// Scope is a guaranteed push/pop stack of EngineConfig overrides, used to
// compile or execute a sub-pipeline under temporarily different options
// (e.g. disabling eviction for a diagnostic run) without mutating the
// caller's configuration.
type Scope struct {
	mu    sync.Mutex
	stack []EngineConfig
}

// NewScope returns a Scope seeded with base as the bottom of the stack.
func NewScope(base EngineConfig) *Scope {
	return &Scope{stack: []EngineConfig{base}}
}

// Current returns the active configuration: the top of the stack.
func (s *Scope) Current() EngineConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack[len(s.stack)-1]
}

// Push applies overrides on top of Current and returns a function that pops
// it back off. Callers must defer the returned function to guarantee the
// override does not leak past its intended scope.
func (s *Scope) Push(override func(EngineConfig) EngineConfig) func() {
	s.mu.Lock()
	next := override(s.stack[len(s.stack)-1].Clone())
	s.stack = append(s.stack, next)
	s.mu.Unlock()

	popped := false
	return func() {
		if popped {
			return
		}
		popped = true
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(s.stack) > 1 {
			s.stack = s.stack[:len(s.stack)-1]
		}
	}
}
