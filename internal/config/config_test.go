package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Workers != 4 {
		t.Errorf("expected default workers 4, got %d", cfg.Workers)
	}
	if cfg.Scheme != "gs" {
		t.Errorf("expected default scheme gs, got %s", cfg.Scheme)
	}
	if cfg.Backend != BackendBlob {
		t.Errorf("expected default backend blob, got %s", cfg.Backend)
	}
	if cfg.CostPerGB != 0.12 {
		t.Errorf("expected default cost 0.12, got %v", cfg.CostPerGB)
	}
	if cfg.API.URL != "https://api.firecloud.org" {
		t.Errorf("unexpected default API URL %s", cfg.API.URL)
	}
	if cfg.API.Retry.Attempts != 5 {
		t.Errorf("expected default retry attempts 5, got %d", cfg.API.Retry.Attempts)
	}
	if cfg.API.Retry.Backoff != time.Second {
		t.Errorf("expected default retry backoff 1s, got %v", cfg.API.Retry.Backoff)
	}
	if cfg.API.Retry.MaxBackoff != 30*time.Second {
		t.Errorf("expected default retry max backoff 30s, got %v", cfg.API.Retry.MaxBackoff)
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
namespace: my-billing
workspace: my-workspace
table: sample
dir: /data/out
workers: 8
download_external: true
backend: minio
minio:
  endpoint: localhost:9000
  access_key: minioadmin
cost_per_gb: 0.08
api:
  page_size: 250
  timeout: 10s
  retry:
    attempts: 10
    backoff: 2s
    max_backoff: 60s
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Namespace != "my-billing" || cfg.Workspace != "my-workspace" || cfg.Table != "sample" {
		t.Errorf("unexpected table identity %s/%s/%s", cfg.Namespace, cfg.Workspace, cfg.Table)
	}
	if cfg.Dir != "/data/out" {
		t.Errorf("expected dir /data/out, got %s", cfg.Dir)
	}
	if cfg.Workers != 8 {
		t.Errorf("expected workers 8, got %d", cfg.Workers)
	}
	if !cfg.DownloadExternal {
		t.Error("expected download_external true")
	}
	if cfg.Backend != BackendMinio || cfg.Minio.Endpoint != "localhost:9000" || cfg.Minio.AccessKey != "minioadmin" {
		t.Errorf("unexpected minio config %+v", cfg.Minio)
	}
	if cfg.CostPerGB != 0.08 {
		t.Errorf("expected cost 0.08, got %v", cfg.CostPerGB)
	}
	if cfg.Scheme != "gs" {
		t.Errorf("expected scheme default preserved, got %s", cfg.Scheme)
	}
	if cfg.API.PageSize != 250 {
		t.Errorf("expected page size 250, got %d", cfg.API.PageSize)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.API.Timeout)
	}
	if cfg.API.Retry.Attempts != 10 {
		t.Errorf("expected retry attempts 10, got %d", cfg.API.Retry.Attempts)
	}
	if cfg.API.Retry.Backoff != 2*time.Second {
		t.Errorf("expected retry backoff 2s, got %v", cfg.API.Retry.Backoff)
	}
	if cfg.API.Retry.MaxBackoff != 60*time.Second {
		t.Errorf("expected retry max backoff 60s, got %v", cfg.API.Retry.MaxBackoff)
	}
	if cfg.API.RequestsPerSecond != 5 {
		t.Errorf("expected requests per second default preserved, got %v", cfg.API.RequestsPerSecond)
	}
}

func TestLoadFromYAMLBadDuration(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("api:\n  retry:\n    backoff: soon\n"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PULL_NAMESPACE", "env-billing")
	t.Setenv("PULL_WORKERS", "16")
	t.Setenv("PULL_NO_PROMPT", "1")
	t.Setenv("PULL_DOWNLOAD_EXTERNAL", "true")
	t.Setenv("PULL_BUCKET_URL", "file:///tmp/buckets/{bucket}")
	t.Setenv("PULL_ACCESS_TOKEN", "ya29.token")
	t.Setenv("PULL_COST_PER_GB", "0.2")
	t.Setenv("PULL_API_RETRY_ATTEMPTS", "3")
	t.Setenv("PULL_API_TIMEOUT", "500ms")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.Namespace != "env-billing" {
		t.Errorf("expected namespace env-billing, got %s", cfg.Namespace)
	}
	if cfg.Workers != 16 {
		t.Errorf("expected workers 16, got %d", cfg.Workers)
	}
	if !cfg.NoPrompt {
		t.Error("expected no_prompt true")
	}
	if !cfg.DownloadExternal {
		t.Error("expected download_external true")
	}
	if cfg.BucketURL != "file:///tmp/buckets/{bucket}" {
		t.Errorf("unexpected bucket url %s", cfg.BucketURL)
	}
	if cfg.API.AccessToken != "ya29.token" {
		t.Errorf("unexpected access token %s", cfg.API.AccessToken)
	}
	if cfg.CostPerGB != 0.2 {
		t.Errorf("expected cost 0.2, got %v", cfg.CostPerGB)
	}
	if cfg.API.Retry.Attempts != 3 {
		t.Errorf("expected retry attempts 3, got %d", cfg.API.Retry.Attempts)
	}
	if cfg.API.Timeout != 500*time.Millisecond {
		t.Errorf("expected timeout 500ms, got %v", cfg.API.Timeout)
	}
}

func TestLoadFromEnvInvalid(t *testing.T) {
	t.Setenv("PULL_WORKERS", "many")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err == nil {
		t.Error("expected error for non-numeric PULL_WORKERS")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.Namespace = "ns"
		cfg.Workspace = "ws"
		cfg.Table = "sample"
		cfg.Dir = "out"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid config", modify: func(c *Config) {}},
		{name: "missing dir", modify: func(c *Config) { c.Dir = "" }, wantErr: true},
		{name: "missing table", modify: func(c *Config) { c.Table = "" }, wantErr: true},
		{name: "missing workspace", modify: func(c *Config) { c.Workspace = "" }, wantErr: true},
		{
			name: "table file with workspace bucket",
			modify: func(c *Config) {
				c.Namespace, c.Workspace, c.Table = "", "", ""
				c.TableFile = "sample.tsv"
				c.WorkspaceBucket = "fc-1"
			},
		},
		{
			name: "table file without workspace bucket",
			modify: func(c *Config) {
				c.Namespace, c.Workspace, c.Table = "", "", ""
				c.TableFile = "sample.tsv"
			},
			wantErr: true,
		},
		{
			name: "table file downloading external",
			modify: func(c *Config) {
				c.Namespace, c.Workspace, c.Table = "", "", ""
				c.TableFile = "sample.tsv"
				c.DownloadExternal = true
			},
		},
		{name: "invalid workers", modify: func(c *Config) { c.Workers = 0 }, wantErr: true},
		{name: "negative cost", modify: func(c *Config) { c.CostPerGB = -1 }, wantErr: true},
		{name: "unknown backend", modify: func(c *Config) { c.Backend = "ftp" }, wantErr: true},
		{name: "bucket url without placeholder", modify: func(c *Config) { c.BucketURL = "file:///tmp" }, wantErr: true},
		{name: "bucket url with placeholder", modify: func(c *Config) { c.BucketURL = "file:///tmp/{bucket}" }},
		{name: "minio without endpoint", modify: func(c *Config) { c.Backend = BackendMinio }, wantErr: true},
		{
			name: "minio with endpoint",
			modify: func(c *Config) {
				c.Backend = BackendMinio
				c.Minio.Endpoint = "localhost:9000"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	base.Namespace = "ns"
	base.Workspace = "ws"
	base.Dir = "out"

	override := Config{
		Workers:  32,
		NoPrompt: true,
		API:      APIConfig{Retry: RetryConfig{Attempts: 1}},
	}

	merged := base.Merge(override)

	if merged.Namespace != "ns" || merged.Workspace != "ws" || merged.Dir != "out" {
		t.Errorf("expected base values preserved, got %+v", merged)
	}
	if merged.API.Retry.Backoff != time.Second {
		t.Errorf("expected retry backoff preserved, got %v", merged.API.Retry.Backoff)
	}
	if merged.Workers != 32 {
		t.Errorf("expected Workers overridden to 32, got %d", merged.Workers)
	}
	if !merged.NoPrompt {
		t.Error("expected NoPrompt overridden")
	}
	if merged.API.Retry.Attempts != 1 {
		t.Errorf("expected retry attempts overridden to 1, got %d", merged.API.Retry.Attempts)
	}
}

func TestLoadYAMLFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}
