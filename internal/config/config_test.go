package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if cfg.Run.Workers != 0 {
		t.Errorf("Run.Workers = %d, want 0", cfg.Run.Workers)
	}
	if cfg.Scheduler.Policy != "dynamic" {
		t.Errorf("Scheduler.Policy = %q, want dynamic", cfg.Scheduler.Policy)
	}
	if cfg.Scheduler.ChunkSize != 5 {
		t.Errorf("Scheduler.ChunkSize = %d, want 5", cfg.Scheduler.ChunkSize)
	}
	if cfg.Executor.Solver != "gonum" {
		t.Errorf("Executor.Solver = %q, want gonum", cfg.Executor.Solver)
	}
	if cfg.Output.ResultsFormat != "text" {
		t.Errorf("Output.ResultsFormat = %q, want text", cfg.Output.ResultsFormat)
	}
	if cfg.Output.DumpResults {
		t.Error("Output.DumpResults should be false by default")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestExecutorConfig_Conversions(t *testing.T) {
	cfg := ExecutorConfig{SyntheticUnitNs: 250, MaxTaskMB: 3}
	if got := cfg.SyntheticUnit(); got != 250*time.Nanosecond {
		t.Errorf("SyntheticUnit() = %v", got)
	}
	if got := cfg.MaxTaskBytes(); got != 3<<20 {
		t.Errorf("MaxTaskBytes() = %d", got)
	}
}

func TestSetDefaultsAndLoad(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load() = %+v, want defaults %+v", *cfg, *Default())
	}
}

func TestLoad_FromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
run:
  workers: 6
scheduler:
  policy: guided
  chunk_size: 2
executor:
  solver: synthetic
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	SetDefaults()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Run.Workers != 6 || cfg.Scheduler.Policy != "guided" || cfg.Scheduler.ChunkSize != 2 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Executor.Solver != "synthetic" {
		t.Errorf("Executor.Solver = %q", cfg.Executor.Solver)
	}
	if cfg.Output.ResultsFormat != "text" {
		t.Errorf("unset keys should keep defaults, got ResultsFormat=%q", cfg.Output.ResultsFormat)
	}
}

func TestLoad_InvalidReturnsValidationErrors(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()
	viper.Set("scheduler.chunk_size", 0)

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail for chunk_size 0")
	}
	if _, ok := err.(ValidationErrors); !ok {
		t.Errorf("Load() error type = %T, want ValidationErrors", err)
	}
}

func TestBindEnv_WorkerSources(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want int
	}{
		{"none", nil, 0},
		{"omp", map[string]string{"OMP_NUM_THREADS": "3"}, 3},
		{"prefixed wins", map[string]string{"EIGENBENCH_RUN_WORKERS": "7", "OMP_NUM_THREADS": "3"}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OMP_NUM_THREADS", "")
			t.Setenv("EIGENBENCH_RUN_WORKERS", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			viper.Reset()
			t.Cleanup(viper.Reset)

			SetDefaults()
			if err := BindEnv(); err != nil {
				t.Fatalf("BindEnv: %v", err)
			}
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Run.Workers != tt.want {
				t.Errorf("Run.Workers = %d, want %d", cfg.Run.Workers, tt.want)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
		if got := ConfigDir(); got != filepath.Join("/tmp/xdg", "eigenbench") {
			t.Errorf("ConfigDir() = %q", got)
		}
		if got := ConfigFile(); got != filepath.Join("/tmp/xdg", "eigenbench", "config.yaml") {
			t.Errorf("ConfigFile() = %q", got)
		}
	})

	t.Run("falls back to home directory", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no home directory")
		}
		if got := ConfigDir(); got != filepath.Join(home, ".config", "eigenbench") {
			t.Errorf("ConfigDir() = %q", got)
		}
	})
}
