package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"edit-relay/internal/config"
	"edit-relay/internal/linelog"
	"edit-relay/internal/metrics"
	"edit-relay/internal/relay"
	"edit-relay/internal/server"
	"edit-relay/internal/upstream"
)

type serveOptions struct {
	configPath   string
	overridePort int
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the relay. Configuration is read from defaults, the optional YAML file,
a .env file in the working directory and the environment, in that order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to YAML configuration file")
	cmd.Flags().IntVar(&opts.overridePort, "port", 0, "override server port")
	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging.Level, os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	logs := relay.Logs{
		Debug: linelog.Open(cfg.Logging.Debug.Enabled, cfg.Logging.Debug.Path),
		Query: linelog.Open(cfg.Logging.Query.Enabled, cfg.Logging.Query.Path),
	}

	rl, err := relay.New(cfg.Upstream, upstream.NewHTTPClient(), logs, metrics.NewRelayMetrics(reg))
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, rl, reg)
	if err != nil {
		return err
	}

	return srv.Run(cmd.Context())
}

func loadConfig(opts serveOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if opts.overridePort != 0 {
		if opts.overridePort < 0 || opts.overridePort > 65535 {
			return config.Config{}, fmt.Errorf("port override %d must be a valid TCP port", opts.overridePort)
		}
		cfg.Server.Port = opts.overridePort
	}
	return cfg, nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
