package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/pspoerri/eviltransform/internal/coord"
	"github.com/pspoerri/eviltransform/internal/track"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// noEnv is an empty env file so tests never pick up a stray .env.
func noEnv(t *testing.T) string {
	return writeFile(t, "empty.env", "")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Transform.Tolerance != coord.DefaultTolerance {
		t.Errorf("tolerance = %v", cfg.Transform.Tolerance)
	}
	if cfg.Transform.Limit != track.DefaultLimit {
		t.Errorf("limit = %v", cfg.Transform.Limit)
	}
	if cfg.Method() != track.MethodApprox {
		t.Errorf("method = %v", cfg.Method())
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "eviltransform.yaml", `
transform:
  method: exact
  tolerance: 0.0000001
  max_iterations: 40
batch:
  concurrency: 3
  strict: true
plot:
  mercator: true
  format: webp
server:
  addr: "127.0.0.1:9000"
  shutdown_timeout: 2s
`)
	cfg, err := Load(path, noEnv(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Method() != track.MethodExact {
		t.Errorf("method = %v, want exact", cfg.Method())
	}
	if cfg.Transform.Tolerance != 1e-7 || cfg.Transform.MaxIterations != 40 {
		t.Errorf("transform = %+v", cfg.Transform)
	}
	if cfg.Batch.Concurrency != 3 || !cfg.Batch.Strict {
		t.Errorf("batch = %+v", cfg.Batch)
	}
	if !cfg.Plot.Mercator || cfg.Plot.Format != "webp" {
		t.Errorf("plot = %+v", cfg.Plot)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.ShutdownTimeout != 2*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	// Unset keys keep their defaults.
	if cfg.Plot.Width != Default().Plot.Width {
		t.Errorf("plot width = %d, want default", cfg.Plot.Width)
	}

	bc := cfg.BatchConfig()
	if bc.Tolerance != 1e-7 || bc.MaxIterations != 40 || bc.Concurrency != 3 || !bc.Strict {
		t.Errorf("BatchConfig = %+v", bc)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "eviltransform.yaml", "transform:\n  method: exact\n")
	t.Setenv("EVILTRANSFORM_METHOD", "bd09")
	t.Setenv("EVILTRANSFORM_CONCURRENCY", "7")
	t.Setenv("EVILTRANSFORM_VERBOSE", "true")
	t.Setenv("EVILTRANSFORM_TOLERANCE", "1e-8")
	t.Setenv("EVILTRANSFORM_SHUTDOWN_TIMEOUT", "250ms")

	cfg, err := Load(path, noEnv(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Method() != track.MethodBD09 {
		t.Errorf("method = %v, want bd09", cfg.Method())
	}
	if cfg.Batch.Concurrency != 7 || !cfg.Batch.Verbose {
		t.Errorf("batch = %+v", cfg.Batch)
	}
	if cfg.Transform.Tolerance != 1e-8 {
		t.Errorf("tolerance = %v", cfg.Transform.Tolerance)
	}
	if cfg.Server.ShutdownTimeout != 250*time.Millisecond {
		t.Errorf("shutdown timeout = %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	env := writeFile(t, "test.env", "EVILTRANSFORM_ADDR=:9191\nEVILTRANSFORM_MAX_POINTS=10\n")
	// Registered so the variables godotenv sets are restored after the test.
	t.Setenv("EVILTRANSFORM_ADDR", "")
	t.Setenv("EVILTRANSFORM_MAX_POINTS", "")
	os.Unsetenv("EVILTRANSFORM_ADDR")
	os.Unsetenv("EVILTRANSFORM_MAX_POINTS")

	cfg, err := Load("", env)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9191" || cfg.Server.MaxPoints != 10 {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		invalid bool
	}{
		{name: "bad yaml", yaml: "transform: [\n"},
		{name: "bad env int", env: map[string]string{"EVILTRANSFORM_CONCURRENCY": "many"}},
		{name: "bad env bool", env: map[string]string{"EVILTRANSFORM_STRICT": "sometimes"}},
		{name: "unknown method", yaml: "transform:\n  method: newton\n", invalid: true},
		{name: "zero tolerance", yaml: "transform:\n  tolerance: 0\n", invalid: true},
		{name: "zero iterations", yaml: "transform:\n  max_iterations: 0\n", invalid: true},
		{name: "quality", yaml: "plot:\n  quality: 101\n", invalid: true},
		{name: "format", yaml: "plot:\n  format: gif\n", invalid: true},
		{name: "empty addr", yaml: "server:\n  addr: \"\"\n", invalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeFile(t, "c.yaml", tt.yaml)
			}
			_, err := Load(path, noEnv(t))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if got := errors.Is(err, ErrInvalid); got != tt.invalid {
				t.Errorf("errors.Is(err, ErrInvalid) = %v, want %v (err: %v)", got, tt.invalid, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), noEnv(t)); err == nil {
		t.Error("expected error for missing config file")
	}
}
