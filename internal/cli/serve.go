package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/cableclub/internal/rules"
	"github.com/roach88/cableclub/internal/server"
	"github.com/roach88/cableclub/internal/store"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Database string

	// Tokens overrides the session token generator (for testing).
	// If nil, the server uses UUIDv7 tokens.
	Tokens server.TokenGenerator

	// Ready is called once the listeners are bound (for testing).
	Ready func(ServeInfo)
}

// ServeInfo reports the bound addresses. MetricsAddr is nil when metrics
// are disabled.
type ServeInfo struct {
	Addr        net.Addr
	MetricsAddr net.Addr
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the matchmaking server",
		Long: `Run the cable club server until interrupted.

The server loads the PBS data and rule files named by the configuration,
listens on host:port and pairs clients. With --db (or the database setting)
every session and match is journalled to SQLite. With metrics_addr set,
Prometheus metrics are served at /metrics.

Example:
  cableclub serve --config server.yaml
  cableclub serve --db ./cableclub.db --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (overrides the database setting)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	p := newPrinter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return p.Fail(ExitCommandError, ErrCodeConfig, err)
	}

	logger, closeLog, err := newLogger(cfg, opts.Verbose, cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up logging", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	srvOpts := []server.Option{server.WithLogger(logger)}
	if opts.Tokens != nil {
		srvOpts = append(srvOpts, server.WithTokens(opts.Tokens))
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Database
	}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return p.Fail(ExitCommandError, ErrCodeDatabase, err)
		}
		journal := store.NewJournal(st, logger)
		defer func() {
			if err := multierr.Combine(journal.Close(), st.Close()); err != nil {
				logger.Error("error closing database", "error", err)
			}
		}()
		srvOpts = append(srvOpts, server.WithJournal(journal))
		logger.Info("journal enabled", "db", dbPath)
	}

	if cfg.RulesWatch {
		n, err := rules.Notify(cfg.RulesDir, logger)
		if err != nil {
			logger.Warn("rules watch disabled", "dir", cfg.RulesDir, "error", err)
		} else {
			defer n.Close()
			srvOpts = append(srvOpts, server.WithHinter(n))
		}
	}

	srv, err := server.New(cfg, srvOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start server", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := server.Listen(ctx, cfg.Address())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}
	info := ServeInfo{Addr: ln.Addr()}

	var metricsLn net.Listener
	if cfg.MetricsAddr != "" {
		metricsLn, err = net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			ln.Close()
			return WrapExitError(ExitCommandError, "failed to listen for metrics", err)
		}
		info.MetricsAddr = metricsLn.Addr()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cable club listening on %s\n", info.Addr)
	if info.MetricsAddr != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Metrics at http://%s/metrics\n", info.MetricsAddr)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")
	if opts.Ready != nil {
		opts.Ready(info)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, ln)
	})
	if metricsLn != nil {
		serveMetrics(gctx, g, metricsLn, srv.Metrics(), logger)
	}

	if err := g.Wait(); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

// serveMetrics runs the /metrics endpoint on ln until ctx is done.
func serveMetrics(ctx context.Context, g *errgroup.Group, ln net.Listener, m *server.Metrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	hs := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		logger.Info("metrics server started", "addr", ln.Addr().String())
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	})
}
