package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

var runLogHeader = []string{
	"timestamp", "operation", "model", "score", "match_percentage", "offline", "duration_ms",
}

// RunRecord is one row of the run log. Nil scores are written as empty cells.
type RunRecord struct {
	Timestamp       time.Time
	Operation       string
	Model           string
	Score           *int
	MatchPercentage *int
	Offline         bool
	Duration        time.Duration
}

type RunRecorder interface {
	Append(record RunRecord) error
}

type nopRunRecorder struct{}

func (nopRunRecorder) Append(RunRecord) error { return nil }

// CSVRunLog appends run records to a CSV file, writing the header only when
// the file is created.
type CSVRunLog struct {
	mu   sync.Mutex
	path string
}

func NewCSVRunLog(path string) *CSVRunLog {
	return &CSVRunLog{path: path}
}

func (l *CSVRunLog) Path() string {
	return l.path
}

func (l *CSVRunLog) Append(record RunRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create run log directory: %w", err)
		}
	}

	_, statErr := os.Stat(l.path)
	isNew := errors.Is(statErr, fs.ErrNotExist)

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if isNew {
		if err := w.Write(runLogHeader); err != nil {
			return fmt.Errorf("failed to write run log header: %w", err)
		}
	}

	ts := record.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	row := []string{
		ts.UTC().Format(time.RFC3339),
		record.Operation,
		record.Model,
		optionalInt(record.Score),
		optionalInt(record.MatchPercentage),
		strconv.FormatBool(record.Offline),
		strconv.FormatInt(record.Duration.Milliseconds(), 10),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write run log row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush run log: %w", err)
	}
	return nil
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func intPtr(v int) *int {
	return &v
}
