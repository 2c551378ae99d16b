// Package config provides configuration loading, defaulting and scoped
// overrides for the pipeline engine.
//
// It uses Viper to load configuration from files and environment variables,
// supporting multiple formats (YAML, JSON, TOML) and environment-specific
// overrides.
//
// # Usage
//
//	var cfg config.EngineConfig
//	err := config.LoadConfig("pipelinectl", &cfg)
//
// Environment variables override file values: each variable is bound under
// lower-cased dotted and underscored variants of its name, with no prefix
// (e.g. PARALLEL_TASKS sets EngineConfig.ParallelTasks).
package config
