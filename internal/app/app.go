package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"blocc-dashboard/internal/alerting"
	"blocc-dashboard/internal/blocc"
	"blocc-dashboard/internal/config"
	"blocc-dashboard/internal/dashboard"
	"blocc-dashboard/internal/metrics"
	"blocc-dashboard/internal/poller"
	"blocc-dashboard/internal/version"
	"blocc-dashboard/internal/web"
)

const shutdownTimeout = 10 * time.Second

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newClient() *blocc.Client {
	return blocc.NewClient(blocc.ClientOptions{
		APIRoot:   a.Config.API.Root,
		Timeout:   a.Config.API.RequestTimeout,
		UserAgent: a.Config.API.UserAgent + " (" + version.Version + ")",
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if !a.Config.Alerting.Enabled {
		return nil
	}
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) newDashboard(clk clock.Clock) *dashboard.Service {
	notifier := a.newNotifier()
	if notifier == nil {
		a.Logger.Info().Msg("alerting disabled; fork transitions are only displayed")
	}

	return dashboard.New(dashboard.Options{
		Interval:        a.Config.Poll.Interval,
		Containers:      a.Config.Dashboard.Containers,
		SeriesContainer: a.Config.Dashboard.SeriesContainer,
		SeriesWindow:    a.Config.Dashboard.SeriesWindow,
		Clock:           clk,
		Metrics: func(name string) poller.Metrics {
			return metrics.NewPoller(name)
		},
		DashboardURL: a.Config.Server.PublicURL,
	}, a.newClient(), notifier, a.Logger)
}

// Serve runs the pollers and the web dashboard until interrupted.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dash := a.newDashboard(clock.New())
	site := web.NewServer(dash, web.Options{
		Refresh:  a.Config.Poll.Interval,
		PageSize: a.Config.Dashboard.PageSize,
		Location: a.Config.Location(),
	}, a.Logger)

	srv := &http.Server{
		Addr:              a.Config.Server.Addr,
		Handler:           site.Handler(),
		ReadTimeout:       a.Config.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      a.Config.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dash.Run(gctx) })
	g.Go(func() error {
		a.Logger.Info().Str("addr", srv.Addr).Str("api_root", a.Config.API.Root).Msg("starting dashboard server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info().Msg("shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("dashboard terminated with error")
		return err
	}

	a.Logger.Info().Msg("dashboard stopped")
	return nil
}

// ExportOptions hold parameters for a one-shot export.
type ExportOptions struct {
	Container int
	Window    time.Duration
	PNGPath   string
	CSVPath   string
	TxCSVPath string
	TxFilter  blocc.TransactionFilter
	MaxPoints int
}

// WatchOptions configure the watch command.
type WatchOptions struct {
	Every time.Duration
	// Rounds stops watching after that many tables; zero watches until interrupted.
	Rounds int
}
