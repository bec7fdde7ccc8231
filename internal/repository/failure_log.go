package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"weather_station/internal/models"
)

const (
	failureFilePrefix = "fl_"
	failureFileSuffix = ".csv"
	failureFileLayout = "2006-01-02_15-04-05"
)

// CSVFailureLog writes one CSV file per failure record into dir and keeps at
// most maxFiles of them, removing the oldest first.
type CSVFailureLog struct {
	dir      string
	maxFiles int
}

var _ FailureLog = (*CSVFailureLog)(nil)

func NewCSVFailureLog(dir string, maxFiles int) (*CSVFailureLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create failure log dir %q: %w", dir, err)
	}
	return &CSVFailureLog{dir: dir, maxFiles: maxFiles}, nil
}

// FailureFileName returns the file name a record is written to, derived from its local time.
func FailureFileName(rec models.FailureRecord) string {
	return failureFilePrefix + rec.LocalTime.Format(failureFileLayout) + failureFileSuffix
}

func (l *CSVFailureLog) Append(rec models.FailureRecord) error {
	path := filepath.Join(l.dir, FailureFileName(rec))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open failure log %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(failureRow(rec)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write failure record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush failure record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close failure log %q: %w", path, err)
	}

	return l.prune()
}

func failureRow(rec models.FailureRecord) []string {
	utc := rec.UTCTime.UTC()
	return []string{
		rec.LocalTime.Format("2006-01-02"),
		rec.LocalTime.Format("15:04:05"),
		formatFloat(rec.Temp),
		formatFloat(rec.Humidity),
		formatFloat(rec.Pressure),
		formatFloat(rec.DewPoint),
		formatFloat(rec.SecondaryTemp),
		rec.AirSensorID,
		rec.SecondarySensorID,
		utc.Format("2006-01-02"),
		utc.Format("15:04:05"),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// prune removes the oldest failure files beyond maxFiles. Names sort by time.
func (l *CSVFailureLog) prune() error {
	if l.maxFiles <= 0 {
		return nil
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("list failure log dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasPrefix(n, failureFilePrefix) || !strings.HasSuffix(n, failureFileSuffix) {
			continue
		}
		names = append(names, n)
	}
	if len(names) <= l.maxFiles {
		return nil
	}

	sort.Strings(names)
	for _, n := range names[:len(names)-l.maxFiles] {
		if err := os.Remove(filepath.Join(l.dir, n)); err != nil {
			return fmt.Errorf("remove old failure log %q: %w", n, err)
		}
	}
	return nil
}
