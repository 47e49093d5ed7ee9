package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete eigenbench configuration
type Config struct {
	Run       RunConfig       `mapstructure:"run" yaml:"run"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	Executor  ExecutorConfig  `mapstructure:"executor" yaml:"executor"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// RunConfig controls the worker pool
type RunConfig struct {
	// Workers is the number of worker threads. 0 means one per logical CPU.
	Workers int `mapstructure:"workers" yaml:"workers"`
	// Pin binds each worker thread to a single CPU
	Pin bool `mapstructure:"pin" yaml:"pin"`
}

// SchedulerConfig controls how task indices are handed out
type SchedulerConfig struct {
	// Policy is the distribution policy.
	// Options: "dynamic", "static", "guided"
	Policy string `mapstructure:"policy" yaml:"policy"`
	// ChunkSize is the number of consecutive indices claimed at once (default: 5)
	ChunkSize int `mapstructure:"chunk_size" yaml:"chunk_size"`
}

// ExecutorConfig controls per-task execution
type ExecutorConfig struct {
	// Solver selects the eigensolver backend.
	// Options: "gonum", "synthetic"
	Solver string `mapstructure:"solver" yaml:"solver"`
	// SyntheticUnitNs is the synthetic solver's sleep per unit of m^3, in nanoseconds
	SyntheticUnitNs int64 `mapstructure:"synthetic_unit_ns" yaml:"synthetic_unit_ns"`
	// PoolBuffers reuses one buffer arena per worker instead of allocating per task
	PoolBuffers bool `mapstructure:"pool_buffers" yaml:"pool_buffers"`
	// MaxTaskMB caps the buffers of a single task. 0 derives a cap from available memory.
	MaxTaskMB int `mapstructure:"max_task_mb" yaml:"max_task_mb"`
}

// OutputConfig controls what is printed after a run
type OutputConfig struct {
	// DumpResults prints every task result after the summary
	DumpResults bool `mapstructure:"dump_results" yaml:"dump_results"`
	// ResultsFormat is the dump format.
	// Options: "text", "json", "yaml"
	ResultsFormat string `mapstructure:"results_format" yaml:"results_format"`
	// Report prints the per-worker balance table to stderr
	Report bool `mapstructure:"report" yaml:"report"`
	// Metrics writes Prometheus text exposition to this path ("-" for stderr)
	Metrics string `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls the debug logger
type LoggingConfig struct {
	// Level is the minimum level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the log directory. Empty logs to stderr.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the size at which the log file is rotated
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files kept
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated files
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Workers: 0,
			Pin:     false,
		},
		Scheduler: SchedulerConfig{
			Policy:    "dynamic",
			ChunkSize: 5,
		},
		Executor: ExecutorConfig{
			Solver:          "gonum",
			SyntheticUnitNs: 10,
			PoolBuffers:     false,
			MaxTaskMB:       0,
		},
		Output: OutputConfig{
			DumpResults:   false,
			ResultsFormat: "text",
			Report:        false,
			Metrics:       "",
		},
		Logging: LoggingConfig{
			Level:      "warn",
			Dir:        "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
	}
}

// SyntheticUnit returns the synthetic solver unit as a time.Duration
func (c *ExecutorConfig) SyntheticUnit() time.Duration {
	return time.Duration(c.SyntheticUnitNs)
}

// MaxTaskBytes returns the per-task buffer cap in bytes (0 means derive one)
func (c *ExecutorConfig) MaxTaskBytes() int64 {
	return int64(c.MaxTaskMB) << 20
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Run defaults
	viper.SetDefault("run.workers", defaults.Run.Workers)
	viper.SetDefault("run.pin", defaults.Run.Pin)

	// Scheduler defaults
	viper.SetDefault("scheduler.policy", defaults.Scheduler.Policy)
	viper.SetDefault("scheduler.chunk_size", defaults.Scheduler.ChunkSize)

	// Executor defaults
	viper.SetDefault("executor.solver", defaults.Executor.Solver)
	viper.SetDefault("executor.synthetic_unit_ns", defaults.Executor.SyntheticUnitNs)
	viper.SetDefault("executor.pool_buffers", defaults.Executor.PoolBuffers)
	viper.SetDefault("executor.max_task_mb", defaults.Executor.MaxTaskMB)

	// Output defaults
	viper.SetDefault("output.dump_results", defaults.Output.DumpResults)
	viper.SetDefault("output.results_format", defaults.Output.ResultsFormat)
	viper.SetDefault("output.report", defaults.Output.Report)
	viper.SetDefault("output.metrics", defaults.Output.Metrics)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// BindEnv binds keys that have environment sources beyond the EIGENBENCH_
// prefix. The worker count honours OMP_NUM_THREADS for drop-in use with
// existing batch scripts.
func BindEnv() error {
	return viper.BindEnv("run.workers", "EIGENBENCH_RUN_WORKERS", "OMP_NUM_THREADS")
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "eigenbench")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".eigenbench"
	}
	return filepath.Join(home, ".config", "eigenbench")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
