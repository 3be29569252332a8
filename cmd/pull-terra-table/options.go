package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"gocloud.dev/gcp"

	"github.com/mobinasri/terra-scripts/internal/config"
	"github.com/mobinasri/terra-scripts/internal/exclude"
	"github.com/mobinasri/terra-scripts/internal/plan"
	"github.com/mobinasri/terra-scripts/internal/storage"
	"github.com/mobinasri/terra-scripts/internal/table"
	"github.com/mobinasri/terra-scripts/internal/terra"
)

// commandFlags holds the flags shared by every command. Values bind into a
// Config that is merged over defaults, the config file and the environment.
type commandFlags struct {
	fs         *flag.FlagSet
	configPath string
	verbose    bool
	override   config.Config
}

func newCommandFlags(name, usage string) *commandFlags {
	f := &commandFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	fs := f.fs
	fs.SetOutput(stderr)

	fs.StringVar(&f.override.Namespace, "namespace", "", "Workspace namespace (billing project)")
	fs.StringVar(&f.override.Workspace, "workspace", "", "Workspace name")
	fs.StringVar(&f.override.Table, "table", "", "Table name")
	fs.StringVar(&f.override.TableFile, "table-file", "", "Read the table from a TSV export instead of the API")
	fs.StringVar(&f.override.ExcludeColumns, "exclude-columns", "", "File listing column names to exclude, one per line")
	fs.StringVar(&f.override.ExcludeRows, "exclude-rows", "", "File listing row names to exclude, one per line")
	fs.BoolVar(&f.override.DownloadExternal, "download-external", false, "Also download objects stored outside the workspace bucket")
	fs.StringVar(&f.override.Dir, "dir", "", "Output directory (required)")
	fs.IntVar(&f.override.Workers, "workers", 0, "Number of parallel download workers (default 4)")
	fs.BoolVar(&f.override.NoPrompt, "no-prompt", false, "Do not ask for confirmation before downloading")
	fs.StringVar(&f.override.WorkspaceBucket, "workspace-bucket", "", "Workspace bucket name; skips the API lookup")
	fs.StringVar(&f.override.Backend, "backend", "", "Storage backend: blob or minio (default blob)")
	fs.StringVar(&f.override.BucketURL, "bucket-url", "", "Bucket URL template for the blob backend, e.g. file:///mnt/{bucket}")
	fs.StringVar(&f.override.API.URL, "api-url", "", "Workspace API base URL")
	fs.StringVar(&f.configPath, "config", "", "YAML config file")
	fs.BoolVar(&f.verbose, "v", false, "Verbose logging")

	fs.Usage = func() {
		fmt.Fprintln(stderr, usage+"\n\nOptions:")
		fs.PrintDefaults()
	}
	return f
}

// parse parses args and resolves the effective configuration. It returns a
// non-zero exit code on failure, or ExitSuccess with ok false for -h.
func (f *commandFlags) parse(args []string) (cfg config.Config, ok bool, code int) {
	if err := f.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cfg, false, ExitSuccess
		}
		return cfg, false, ExitInvalidArgs
	}

	cfg = config.Default()
	if f.configPath != "" {
		var err error
		cfg, err = config.LoadFromFile(f.configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return cfg, false, ExitInvalidArgs
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return cfg, false, ExitInvalidArgs
	}
	cfg = cfg.Merge(f.override)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		f.fs.Usage()
		return cfg, false, ExitInvalidArgs
	}
	return cfg, true, ExitSuccess
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(stderr, "\n[pull] Received interrupt, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func newBackend(cfg config.Config) (storage.Backend, error) {
	switch cfg.Backend {
	case config.BackendMinio:
		return storage.NewMinioBackend(storage.MinioOptions{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Region:    cfg.Minio.Region,
			UseSSL:    cfg.Minio.UseSSL,
		})
	case config.BackendBlob:
		return storage.NewBlobBackend(cfg.BucketURL), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func newTerraClient(cfg config.Config, logger *slog.Logger) *terra.Client {
	return terra.NewClient(cfg.API.URL, terra.Options{
		Timeout:           cfg.API.Timeout,
		RetryAttempts:     cfg.API.Retry.Attempts,
		RetryBackoff:      cfg.API.Retry.Backoff,
		RetryMaxBackoff:   cfg.API.Retry.MaxBackoff,
		PageSize:          cfg.API.PageSize,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Token:             tokenFunc(cfg.API.AccessToken),
		Logger:            logger,
	})
}

// tokenFunc returns the static token if one is configured, and otherwise
// looks up application default credentials on first use.
func tokenFunc(static string) func(context.Context) (string, error) {
	if static != "" {
		return func(context.Context) (string, error) { return static, nil }
	}

	var (
		once    sync.Once
		ts      gcp.TokenSource
		credErr error
	)
	return func(ctx context.Context) (string, error) {
		once.Do(func() {
			creds, err := gcp.DefaultCredentials(ctx)
			if err != nil {
				credErr = fmt.Errorf("find default credentials: %w", err)
				return
			}
			ts = gcp.CredentialsTokenSource(creds)
		})
		if credErr != nil {
			return "", credErr
		}
		tok, err := ts.Token()
		if err != nil {
			return "", err
		}
		return tok.AccessToken, nil
	}
}

// pipeline is the state shared by commands after a plan has been built.
type pipeline struct {
	cfg     config.Config
	logger  *slog.Logger
	backend storage.Backend
	plan    *plan.Plan
}

// buildPlan loads the exclusions and the table, resolves the workspace
// bucket and builds the plan. Text cells are written unless dryRun is set.
func buildPlan(ctx context.Context, cfg config.Config, logger *slog.Logger, dryRun bool) (*pipeline, int) {
	exclusions, err := exclude.Load(cfg.ExcludeRows, cfg.ExcludeColumns)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, ExitInvalidArgs
	}
	if rows, columns := exclusions.Len(); rows+columns > 0 {
		logger.Debug("loaded exclusions", "rows", rows, "columns", columns)
	}

	backend, err := newBackend(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, ExitStorageError
	}

	client := newTerraClient(cfg, logger)

	var tbl *table.Table
	if cfg.TableFile != "" {
		tbl, err = table.ReadTSVFile(cfg.TableFile)
	} else {
		fmt.Fprintf(stdout, "[pull] Fetching table %s from %s/%s\n", cfg.Table, cfg.Namespace, cfg.Workspace)
		tbl, err = client.FetchTable(ctx, cfg.Namespace, cfg.Workspace, cfg.Table)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, ExitTableError
	}
	fmt.Fprintf(stdout, "[pull] Table %s: %d rows, %d columns\n", tbl.Name, len(tbl.Rows), len(tbl.Columns))

	bucket := cfg.WorkspaceBucket
	if bucket == "" && !cfg.DownloadExternal {
		bucket, err = client.WorkspaceBucket(ctx, cfg.Namespace, cfg.Workspace)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return nil, ExitTableError
		}
		logger.Debug("resolved workspace bucket", "bucket", bucket)
	}

	builder := plan.NewBuilder(backend, exclusions, plan.Options{
		Dir:              cfg.Dir,
		Scheme:           cfg.Scheme,
		WorkspaceBucket:  bucket,
		DownloadExternal: cfg.DownloadExternal,
		DryRun:           dryRun,
		Output:           stdout,
		Logger:           logger,
	})
	p, err := builder.Build(ctx, tbl)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, ExitGeneralError
	}

	return &pipeline{cfg: cfg, logger: logger, backend: backend, plan: p}, ExitSuccess
}

func printTally(p *plan.Plan) {
	tally := p.Tally()
	fmt.Fprintf(stdout, "[pull] Planned %d objects; %d text cells; skipped %d excluded, %d empty, %d external, %d nonexistent, %d invalid\n",
		p.Count(),
		tally[plan.StatusWrittenText]+tally[plan.StatusWriteFailed],
		tally[plan.StatusExcluded],
		tally[plan.StatusEmpty],
		tally[plan.StatusExternal],
		tally[plan.StatusNotFound],
		tally[plan.StatusInvalid],
	)
}
