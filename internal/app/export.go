package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"blocc-dashboard/internal/blocc"
	"blocc-dashboard/internal/report"
)

// Export fetches readings and transactions once and writes them as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" && opts.TxCSVPath == "" {
		return errors.New("at least one of --csv, --png or --tx-csv must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)
	if opts.Container <= 0 {
		opts.Container = a.Config.Dashboard.SeriesContainer
	}
	if opts.Window <= 0 {
		opts.Window = a.Config.Dashboard.SeriesWindow
	}

	client := a.newClient()
	loc := a.Config.Location()

	if opts.CSVPath != "" || opts.PNGPath != "" {
		readings, err := client.ApprovedReadings(ctx, blocc.SeriesQuery{ContainerNum: opts.Container, Window: opts.Window})
		if err != nil {
			return fmt.Errorf("fetch readings: %w", err)
		}

		downsampled := report.Downsample(readings, opts.MaxPoints)
		a.Logger.Info().
			Int("container", opts.Container).
			Int("total", len(readings)).
			Int("exported", len(downsampled)).
			Msg("exporting readings")

		if opts.CSVPath != "" {
			err := writeFile(opts.CSVPath, func(w io.Writer) error {
				return report.WriteReadingsCSV(w, downsampled, loc)
			})
			if err != nil {
				return err
			}
		}

		if opts.PNGPath != "" {
			if len(downsampled) < 2 {
				a.Logger.Warn().Int("readings", len(downsampled)).Msg("not enough readings for a chart; skipping png")
			} else {
				err := writeFile(opts.PNGPath, func(w io.Writer) error {
					return report.WriteReadingsPNG(w, downsampled, opts.Container, loc)
				})
				if err != nil {
					return err
				}
			}
		}
	}

	if opts.TxCSVPath != "" {
		txs, err := client.Transactions(ctx, opts.TxFilter)
		if err != nil {
			return fmt.Errorf("fetch transactions: %w", err)
		}
		a.Logger.Info().Int("transactions", len(txs)).Msg("exporting transactions")

		err = writeFile(opts.TxCSVPath, func(w io.Writer) error {
			return report.WriteTransactionsCSV(w, txs, loc)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
