package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"blocc-dashboard/internal/dashboard"
)

// Watch runs the pollers and prints a status table every opts.Every.
func (a *App) Watch(ctx context.Context, out io.Writer, opts WatchOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.Every <= 0 {
		opts.Every = a.Config.Poll.Interval
	}

	dash := a.newDashboard(clock.New())
	loc := a.Config.Location()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dash.Run(gctx) })
	g.Go(func() error {
		ticker := time.NewTicker(opts.Every)
		defer ticker.Stop()

		rounds := 0
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := printStatus(out, dash, loc); err != nil {
					return err
				}
				rounds++
				if opts.Rounds > 0 && rounds >= opts.Rounds {
					cancel()
					return nil
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printStatus(out io.Writer, dash *dashboard.Service, loc *time.Location) error {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Container\tStatus\tUpdated\tError")

	for _, view := range dash.ForkStatuses() {
		updated := "-"
		if !view.UpdatedAt.IsZero() {
			updated = view.UpdatedAt.In(loc).Format(time.RFC3339)
		}
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\n", view.ContainerNum, view.Status, updated, sanitizeInline(view.Error))
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	readings := dash.Readings()
	txs := dash.Transactions()
	_, err := fmt.Fprintf(out, "readings (container %d): %s, %d points\ntransactions: %s, %d rows\n\n",
		dash.SeriesContainer(), readings.State, len(readings.Data), txs.State, len(txs.Data))
	return err
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
