// Package feed loads candle series from CSV files. The expected layout is a
// header row of timestamp,open,high,low,close,volume followed by one bar per
// line in ascending time order.
package feed

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"swing-trader/internal/errors"
	"swing-trader/internal/models"
)

// Accepted timestamp layouts, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DateTime wraps time.Time for CSV unmarshaling.
type DateTime struct {
	time.Time
}

// UnmarshalCSV parses the timestamp field.
func (d *DateTime) UnmarshalCSV(value string) error {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", value)
}

type candleRow struct {
	Timestamp DateTime `csv:"timestamp"`
	Open      float64  `csv:"open"`
	High      float64  `csv:"high"`
	Low       float64  `csv:"low"`
	Close     float64  `csv:"close"`
	Volume    int64    `csv:"volume"`
}

// LoadFile reads a candle series from a CSV file.
func LoadFile(path, symbol string, interval models.Interval) (*models.CandleSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataError("csv", symbol, fmt.Sprintf("opening %s", path), err)
	}
	defer f.Close()

	return Read(f, symbol, interval)
}

// Read reads a candle series from CSV data. The series is validated: strictly
// increasing timestamps and positive price ranges.
func Read(r io.Reader, symbol string, interval models.Interval) (*models.CandleSeries, error) {
	var rows []candleRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.NewDataError("csv", symbol, "parsing candle rows", err)
	}
	if len(rows) == 0 {
		return nil, errors.NewDataError("csv", symbol, "no candle rows", errors.ErrDataNotFound)
	}

	candles := make([]models.Candle, len(rows))
	for i, row := range rows {
		if row.High < row.Low {
			return nil, errors.NewDataError("csv", symbol,
				fmt.Sprintf("row %d: high %.2f below low %.2f", i+1, row.High, row.Low), nil)
		}
		candles[i] = models.Candle{
			Timestamp: row.Timestamp.Time,
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			Volume:    row.Volume,
		}
	}

	series := &models.CandleSeries{
		Symbol:   symbol,
		Interval: interval,
		Candles:  candles,
	}
	if err := series.Validate(); err != nil {
		return nil, errors.NewDataError("csv", symbol, "validating series", err)
	}

	return series, nil
}
