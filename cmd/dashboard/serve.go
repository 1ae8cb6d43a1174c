package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/WessleyAI/sportscar-dash/engine/dataset"
	"github.com/WessleyAI/sportscar-dash/engine/events"
	"github.com/WessleyAI/sportscar-dash/engine/filter"
	"github.com/WessleyAI/sportscar-dash/engine/session"
	"github.com/WessleyAI/sportscar-dash/pkg/metrics"
)

var (
	serveAddr        string
	serveDefaultMake string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c := cfg
		if cmd.Flags().Changed("addr") {
			c.Addr = serveAddr
		}
		if cmd.Flags().Changed("default-make") {
			c.DefaultMake = serveDefaultMake
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, c, slog.Default())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveDefaultMake, "default-make", "", "make pre-selected for new sessions")
}

// loadDataset resolves c.Data and loads it. Malformed data maps to
// ExitBadDataset.
func loadDataset(ctx context.Context, c Config, logger *slog.Logger) (*dataset.Dataset, error) {
	src, err := dataset.SourceFromURI(ctx, c.Data, dataset.S3Options{
		Region:    c.S3.Region,
		Endpoint:  c.S3.Endpoint,
		PathStyle: c.S3.PathStyle,
	})
	if err != nil {
		return nil, withExitCode(ExitInvalidArgs, err)
	}
	start := time.Now()
	ds, err := dataset.Load(ctx, src)
	if err != nil {
		return nil, datasetExit(err)
	}
	logger.Debug("dataset ready", "source", src.String(), "duration", time.Since(start))
	return ds, nil
}

func runServe(ctx context.Context, c Config, logger *slog.Logger) error {
	ds, err := loadDataset(ctx, c, logger)
	if err != nil {
		return err
	}
	engine := filter.New(ds)

	sessions, err := session.New(c.SessionCapacity)
	if err != nil {
		return err
	}

	m := metrics.New()
	m.DatasetRows.Set(float64(ds.Len()))

	var pub events.Publisher = events.Nop{}
	if c.NATSURL != "" {
		nc, err := nats.Connect(c.NATSURL,
			nats.Name("sportscar-dash"),
			nats.MaxReconnects(-1),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				logger.Warn("nats disconnected", "error", err)
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				logger.Info("nats reconnected", "url", nc.ConnectedUrl())
			}),
		)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()

		pub = events.NewNATSPublisher(nc, logger, m.ObserveEvent)
		if _, err := events.ServeViews(nc, engine, func(start time.Time) {
			m.ObserveCompute("nats", start)
		}); err != nil {
			return fmt.Errorf("serve views: %w", err)
		}
		logger.Info("nats connected", "url", nc.ConnectedUrl(), "subject", events.SubjectView)
	}

	s := newServer(engine, sessions, pub, m, logger, c.DefaultMake)
	srv := &http.Server{
		Addr:         c.Addr,
		Handler:      s.routes(c),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	timeout := c.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultConfig().ShutdownTimeout
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("dashboard starting", "addr", c.Addr, "version", Version)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}
