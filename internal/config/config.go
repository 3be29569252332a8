package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendBlob  = "blob"
	BackendMinio = "minio"
)

// Config defines configuration for the pull-terra-table CLI.
type Config struct {
	Namespace        string      `yaml:"namespace"`
	Workspace        string      `yaml:"workspace"`
	Table            string      `yaml:"table"`
	TableFile        string      `yaml:"table_file"`
	ExcludeRows      string      `yaml:"exclude_rows"`
	ExcludeColumns   string      `yaml:"exclude_columns"`
	DownloadExternal bool        `yaml:"download_external"`
	Dir              string      `yaml:"dir"`
	Workers          int         `yaml:"workers"`
	NoPrompt         bool        `yaml:"no_prompt"`
	WorkspaceBucket  string      `yaml:"workspace_bucket"`
	Scheme           string      `yaml:"scheme"`
	Backend          string      `yaml:"backend"`
	BucketURL        string      `yaml:"bucket_url"`
	Minio            MinioConfig `yaml:"minio"`
	API              APIConfig   `yaml:"api"`
	CostPerGB        float64     `yaml:"cost_per_gb"`
}

// MinioConfig configures the minio backend.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// APIConfig configures the workspace API client.
type APIConfig struct {
	URL               string        `yaml:"url"`
	AccessToken       string        `yaml:"-"`
	PageSize          int           `yaml:"page_size"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
	Retry             RetryConfig   `yaml:"retry"`
}

// RetryConfig defines retry behavior.
type RetryConfig struct {
	Attempts   int           `yaml:"attempts"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Workers:   4,
		Scheme:    "gs",
		Backend:   BackendBlob,
		CostPerGB: 0.12,
		API: APIConfig{
			URL:               "https://api.firecloud.org",
			PageSize:          1000,
			RequestsPerSecond: 5,
			Timeout:           60 * time.Second,
			Retry: RetryConfig{
				Attempts:   5,
				Backoff:    time.Second,
				MaxBackoff: 30 * time.Second,
			},
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	Namespace        string        `yaml:"namespace"`
	Workspace        string        `yaml:"workspace"`
	Table            string        `yaml:"table"`
	TableFile        string        `yaml:"table_file"`
	ExcludeRows      string        `yaml:"exclude_rows"`
	ExcludeColumns   string        `yaml:"exclude_columns"`
	DownloadExternal bool          `yaml:"download_external"`
	Dir              string        `yaml:"dir"`
	Workers          int           `yaml:"workers"`
	NoPrompt         bool          `yaml:"no_prompt"`
	WorkspaceBucket  string        `yaml:"workspace_bucket"`
	Scheme           string        `yaml:"scheme"`
	Backend          string        `yaml:"backend"`
	BucketURL        string        `yaml:"bucket_url"`
	Minio            MinioConfig   `yaml:"minio"`
	API              yamlAPIConfig `yaml:"api"`
	CostPerGB        float64       `yaml:"cost_per_gb"`
}

type yamlAPIConfig struct {
	URL               string          `yaml:"url"`
	PageSize          int             `yaml:"page_size"`
	RequestsPerSecond float64         `yaml:"requests_per_second"`
	Timeout           string          `yaml:"timeout"`
	Retry             yamlRetryConfig `yaml:"retry"`
}

type yamlRetryConfig struct {
	Attempts   int    `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadFromFile loads configuration from a YAML file. Keys absent from the
// file keep their defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default().Merge(Config{
		Namespace:        yc.Namespace,
		Workspace:        yc.Workspace,
		Table:            yc.Table,
		TableFile:        yc.TableFile,
		ExcludeRows:      yc.ExcludeRows,
		ExcludeColumns:   yc.ExcludeColumns,
		DownloadExternal: yc.DownloadExternal,
		Dir:              yc.Dir,
		Workers:          yc.Workers,
		NoPrompt:         yc.NoPrompt,
		WorkspaceBucket:  yc.WorkspaceBucket,
		Scheme:           yc.Scheme,
		Backend:          yc.Backend,
		BucketURL:        yc.BucketURL,
		Minio:            yc.Minio,
		CostPerGB:        yc.CostPerGB,
		API: APIConfig{
			URL:               yc.API.URL,
			PageSize:          yc.API.PageSize,
			RequestsPerSecond: yc.API.RequestsPerSecond,
			Retry:             RetryConfig{Attempts: yc.API.Retry.Attempts},
		},
	})

	if yc.API.Timeout != "" {
		d, err := time.ParseDuration(yc.API.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse api.timeout: %w", err)
		}
		cfg.API.Timeout = d
	}
	if yc.API.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.API.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse api.retry.backoff: %w", err)
		}
		cfg.API.Retry.Backoff = d
	}
	if yc.API.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.API.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse api.retry.max_backoff: %w", err)
		}
		cfg.API.Retry.MaxBackoff = d
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the PULL_ prefix.
func (c *Config) LoadFromEnv() error {
	strs := map[string]*string{
		"PULL_NAMESPACE":        &c.Namespace,
		"PULL_WORKSPACE":        &c.Workspace,
		"PULL_TABLE":            &c.Table,
		"PULL_TABLE_FILE":       &c.TableFile,
		"PULL_EXCLUDE_ROWS":     &c.ExcludeRows,
		"PULL_EXCLUDE_COLUMNS":  &c.ExcludeColumns,
		"PULL_DIR":              &c.Dir,
		"PULL_WORKSPACE_BUCKET": &c.WorkspaceBucket,
		"PULL_SCHEME":           &c.Scheme,
		"PULL_BACKEND":          &c.Backend,
		"PULL_BUCKET_URL":       &c.BucketURL,
		"PULL_MINIO_ENDPOINT":   &c.Minio.Endpoint,
		"PULL_MINIO_ACCESS_KEY": &c.Minio.AccessKey,
		"PULL_MINIO_SECRET_KEY": &c.Minio.SecretKey,
		"PULL_MINIO_REGION":     &c.Minio.Region,
		"PULL_API_URL":          &c.API.URL,
		"PULL_ACCESS_TOKEN":     &c.API.AccessToken,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"PULL_DOWNLOAD_EXTERNAL": &c.DownloadExternal,
		"PULL_NO_PROMPT":         &c.NoPrompt,
		"PULL_MINIO_USE_SSL":     &c.Minio.UseSSL,
	}
	for name, dst := range bools {
		if v := os.Getenv(name); v != "" {
			*dst = v == "true" || v == "1"
		}
	}

	if v := os.Getenv("PULL_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PULL_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("PULL_COST_PER_GB"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse PULL_COST_PER_GB: %w", err)
		}
		c.CostPerGB = f
	}
	if v := os.Getenv("PULL_API_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PULL_API_RETRY_ATTEMPTS: %w", err)
		}
		c.API.Retry.Attempts = n
	}
	if v := os.Getenv("PULL_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse PULL_API_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Dir == "" {
		return errors.New("config: dir is required")
	}
	if c.TableFile == "" {
		if c.Table == "" {
			return errors.New("config: table or table_file is required")
		}
		if c.Namespace == "" || c.Workspace == "" {
			return errors.New("config: namespace and workspace are required to fetch a table")
		}
	}
	if !c.DownloadExternal && c.WorkspaceBucket == "" && (c.Namespace == "" || c.Workspace == "") {
		return errors.New("config: workspace_bucket or namespace and workspace are required")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.Scheme == "" {
		return errors.New("config: scheme is required")
	}
	if c.CostPerGB < 0 {
		return errors.New("config: cost_per_gb must not be negative")
	}
	switch c.Backend {
	case BackendBlob:
		if c.BucketURL != "" && !strings.Contains(c.BucketURL, "{bucket}") {
			return errors.New("config: bucket_url must contain {bucket}")
		}
	case BackendMinio:
		if c.Minio.Endpoint == "" {
			return errors.New("config: minio.endpoint is required for the minio backend")
		}
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	mergeString(&c.Namespace, override.Namespace)
	mergeString(&c.Workspace, override.Workspace)
	mergeString(&c.Table, override.Table)
	mergeString(&c.TableFile, override.TableFile)
	mergeString(&c.ExcludeRows, override.ExcludeRows)
	mergeString(&c.ExcludeColumns, override.ExcludeColumns)
	mergeString(&c.Dir, override.Dir)
	mergeString(&c.WorkspaceBucket, override.WorkspaceBucket)
	mergeString(&c.Scheme, override.Scheme)
	mergeString(&c.Backend, override.Backend)
	mergeString(&c.BucketURL, override.BucketURL)
	mergeString(&c.Minio.Endpoint, override.Minio.Endpoint)
	mergeString(&c.Minio.AccessKey, override.Minio.AccessKey)
	mergeString(&c.Minio.SecretKey, override.Minio.SecretKey)
	mergeString(&c.Minio.Region, override.Minio.Region)
	mergeString(&c.API.URL, override.API.URL)
	mergeString(&c.API.AccessToken, override.API.AccessToken)

	if override.DownloadExternal {
		c.DownloadExternal = true
	}
	if override.NoPrompt {
		c.NoPrompt = true
	}
	if override.Minio.UseSSL {
		c.Minio.UseSSL = true
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.CostPerGB != 0 {
		c.CostPerGB = override.CostPerGB
	}
	if override.API.PageSize != 0 {
		c.API.PageSize = override.API.PageSize
	}
	if override.API.RequestsPerSecond != 0 {
		c.API.RequestsPerSecond = override.API.RequestsPerSecond
	}
	if override.API.Timeout != 0 {
		c.API.Timeout = override.API.Timeout
	}
	if override.API.Retry.Attempts != 0 {
		c.API.Retry.Attempts = override.API.Retry.Attempts
	}
	if override.API.Retry.Backoff != 0 {
		c.API.Retry.Backoff = override.API.Retry.Backoff
	}
	if override.API.Retry.MaxBackoff != 0 {
		c.API.Retry.MaxBackoff = override.API.Retry.MaxBackoff
	}
	return c
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
