package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/HMasataka/logging"
	"github.com/HMasataka/siteserve/internal/config"
	"github.com/HMasataka/siteserve/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

type options struct {
	configPath string
	host       string
	port       int
	root       string
	workers    int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newCommand(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)

	var uerr *usageError
	if errors.As(err, &uerr) {
		fmt.Fprintf(stderr, "Error: %v\n", uerr)
		fmt.Fprint(stderr, cmd.UsageString())
		return server.ExitUsageError
	}

	return server.ExitCode(err)
}

func newCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "siteserve",
		Short: "Serve the website directory on a local HTTP server",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), opts)
			if err != nil {
				server.NewConsoleAnnouncer(stdout, opts.port).Failed(err)
				return err
			}

			logger, err := newLogger(cfg.Log, stderr)
			if err != nil {
				server.NewConsoleAnnouncer(stdout, cfg.Server.Port).Failed(err)
				return err
			}
			slog.SetDefault(logger)

			announcer := server.NewConsoleAnnouncer(stdout, cfg.Server.Port)

			s, err := server.New(cfg, server.WithLogger(logger), server.WithAnnouncer(announcer))
			if err != nil {
				logger.Error("failed to create server", slog.String("error", err.Error()))
				announcer.Failed(err)
				return err
			}

			return s.Run(cmd.Context())
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")
	flags.StringVar(&opts.host, "host", "", "interface to listen on (empty for all)")
	flags.IntVarP(&opts.port, "port", "p", config.DefaultPort, "port to listen on")
	flags.StringVarP(&opts.root, "root", "r", config.DefaultRoot, "directory to serve (relative to the executable unless given on the command line)")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "maximum requests served at once (0 for unlimited)")

	return cmd
}

// loadConfig はデフォルト値、設定ファイル、コマンドライン引数の順に上書きする
func loadConfig(flags *pflag.FlagSet, opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if flags.Changed("host") {
		cfg.Server.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = opts.port
	}
	if flags.Changed("workers") {
		cfg.Server.Workers = opts.workers
	}
	if flags.Changed("root") {
		abs, err := filepath.Abs(opts.root)
		if err != nil {
			return config.Config{}, fmt.Errorf("resolve root: %w", err)
		}
		cfg.Site.Root = abs
	}

	root, err := config.ResolveRoot(cfg.Site.Root)
	if err != nil {
		return config.Config{}, err
	}
	cfg.Site.Root = root

	return cfg, nil
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch cfg.Format {
	case "text":
		h = slog.NewTextHandler(w, opts)
	case "json", "":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidLogFormat, cfg.Format)
	}

	return slog.New(logging.NewHandler(h)), nil
}
