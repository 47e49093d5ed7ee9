package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/eigenbench/internal/config"
	benchErrors "github.com/Iron-Ham/eigenbench/internal/errors"
	"github.com/Iron-Ham/eigenbench/internal/scheduler"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eigenbench <dimension> <iterations> <regime>",
		Short: "Load-imbalance harness for parallel eigenvalue tasks",
		Long: `eigenbench runs <iterations> independent symmetric eigenvalue
decompositions across a pool of worker threads and reports the wall time
of the distribution phase.

<dimension> is the matrix order of the first task. <regime> is 'E' for
even work (every task has order <dimension>) or 'U' for uneven work (the
order grows by one every five tasks).`,
		Example: `  eigenbench 200 100 E
  eigenbench 100 400 U --workers 8 --chunk 2 --report
  OMP_NUM_THREADS=4 eigenbench 150 60 U --schedule static`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initConfig,
		RunE:              runBench,
	}

	pf := cmd.PersistentFlags()
	pf.StringP("config", "c", "", "config file (default is $HOME/.config/eigenbench/config.yaml)")

	f := cmd.Flags()
	f.IntP("workers", "w", 0, "worker threads (0 = one per CPU; also OMP_NUM_THREADS)")
	f.IntP("chunk", "k", 5, "indices claimed per scheduling step")
	f.String("schedule", "dynamic", "distribution policy: "+strings.Join(scheduler.ValidPolicies(), ", "))
	f.String("solver", "gonum", "eigensolver backend: "+strings.Join(config.ValidSolvers(), ", "))
	f.Duration("synthetic-unit", 10, "synthetic solver sleep per unit of order^3")
	f.Bool("dump-results", false, "print every task result after the summary")
	f.String("results-format", "text", "result dump format: "+strings.Join(config.ValidResultsFormats(), ", "))
	f.Bool("report", false, "print the per-worker balance table to stderr")
	f.String("metrics", "", "write Prometheus metrics to this file after the run ('-' for stderr)")
	f.Bool("pin", false, "pin each worker thread to one CPU")
	f.Bool("pool-buffers", false, "reuse one buffer arena per worker")
	f.Int("max-task-mb", 0, "per-task buffer budget in MiB (0 = available memory / workers)")
	f.String("log-level", "warn", "log level: "+strings.Join(config.ValidLogLevels(), ", "))
	f.String("log-dir", "", "write rotating JSON logs to this directory instead of stderr")

	cmd.AddCommand(newConfigCmd())
	return cmd
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"workers":        "run.workers",
	"pin":            "run.pin",
	"chunk":          "scheduler.chunk_size",
	"schedule":       "scheduler.policy",
	"solver":         "executor.solver",
	"pool-buffers":   "executor.pool_buffers",
	"max-task-mb":    "executor.max_task_mb",
	"dump-results":   "output.dump_results",
	"results-format": "output.results_format",
	"report":         "output.report",
	"metrics":        "output.metrics",
	"log-level":      "logging.level",
	"log-dir":        "logging.dir",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which is cancelled on
// interrupt by the caller.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func initConfig(cmd *cobra.Command, _ []string) error {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("EIGENBENCH")
	// e.g., EIGENBENCH_SCHEDULER_CHUNK_SIZE for scheduler.chunk_size
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := config.BindEnv(); err != nil {
		return err
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return benchErrors.Wrapf(err, "read config %s", viper.ConfigFileUsed())
		}
	}

	var bindErr error
	cmd.Flags().VisitAll(func(fl *pflag.Flag) {
		key, ok := flagKeys[fl.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = viper.BindPFlag(key, fl)
	})
	if bindErr != nil {
		return bindErr
	}
	if fl := cmd.Flags().Lookup("synthetic-unit"); fl != nil && fl.Changed {
		d, _ := cmd.Flags().GetDuration("synthetic-unit")
		viper.Set("executor.synthetic_unit_ns", d.Nanoseconds())
	}
	return nil
}
