package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"blocc-dashboard/internal/blocc"
)

// ErrNotEnoughPoints is returned when a chart would have no extent.
var ErrNotEnoughPoints = errors.New("at least two readings are needed to draw a chart")

// TimeLayout formats timestamps in tables and exports.
const TimeLayout = "2006-01-02 15:04:05"

// Downsample keeps at most max readings, evenly spaced and including both ends.
func Downsample(readings []blocc.Reading, max int) []blocc.Reading {
	if max <= 0 || len(readings) <= max {
		return readings
	}
	if max == 1 {
		return readings[len(readings)-1:]
	}

	result := make([]blocc.Reading, 0, max)
	step := float64(len(readings)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(readings) {
			idx = len(readings) - 1
		}
		result = append(result, readings[idx])
	}
	return result
}

// WriteReadingsPNG draws the temperature series of a container.
func WriteReadingsPNG(w io.Writer, readings []blocc.Reading, containerNum int, loc *time.Location) error {
	if len(readings) < 2 {
		return ErrNotEnoughPoints
	}
	if loc == nil {
		loc = time.UTC
	}

	x := make([]time.Time, len(readings))
	temperature := make([]float64, len(readings))
	approvals := make([]float64, len(readings))
	for i, r := range readings {
		x[i] = r.Time().In(loc)
		temperature[i] = r.Temperature.InexactFloat64()
		approvals[i] = float64(r.Approvals)
	}

	graph := chart.Chart{
		Width:  960,
		Height: 360,
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return chart.TimeFromFloat64(f).In(loc).Format("15:04:05")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name: "Temperature (°C)",
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.1f")
			},
		},
		YAxisSecondary: chart.YAxis{
			Name: "Approvals",
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.0f")
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    fmt.Sprintf("Temperature (°C) at Container %d", containerNum),
				XValues: x,
				YValues: temperature,
			},
			chart.TimeSeries{
				Name:    "Approvals",
				XValues: x,
				YValues: approvals,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// WriteReadingsCSV writes one row per reading.
func WriteReadingsCSV(w io.Writer, readings []blocc.Reading, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"tx_id", "timestamp", "time", "temperature", "approvals"}); err != nil {
		return err
	}
	for _, r := range readings {
		record := []string{
			r.TxID,
			strconv.FormatInt(r.Timestamp, 10),
			r.Time().In(loc).Format(TimeLayout),
			r.Temperature.String(),
			strconv.Itoa(r.Approvals),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteTransactionsCSV writes the transaction table columns.
func WriteTransactionsCSV(w io.Writer, txs []blocc.Transaction, loc *time.Location) error {
	writer := csv.NewWriter(w)

	header := []string{"tx_id", "creator", "container", "created_at", "temperature", "relative_humidity", "approvals", "approval_color"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, tx := range txs {
		record := []string{
			tx.TxID,
			tx.Creator,
			strconv.Itoa(tx.ContainerNum),
			tx.CreatedAt(loc).Format(TimeLayout),
			tx.Temperature().String(),
			tx.Reading.RelativeHumidity.String(),
			strconv.Itoa(tx.ApprovalCount()),
			string(blocc.ClassifyApprovals(tx.ApprovalCount())),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
