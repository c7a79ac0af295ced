package history

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
)

// Export formats
const (
	FormatJSONL   = "jsonl"
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// Formats lists the supported export formats.
func Formats() []string {
	return []string{FormatJSONL, FormatCSV, FormatParquet}
}

// Exporter writes entries in one output format.
type Exporter interface {
	Write(entry Entry) error
	Close() error
}

// NewExporter creates an Exporter for format writing to w.
// Close flushes but does not close w.
func NewExporter(format string, w io.Writer) (Exporter, error) {
	switch strings.ToLower(format) {
	case FormatJSONL:
		return &jsonlExporter{w: bufio.NewWriter(w)}, nil
	case FormatCSV:
		return &csvExporter{w: csv.NewWriter(w)}, nil
	case FormatParquet:
		return &parquetExporter{w: parquet.NewGenericWriter[parquetRow](w)}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: %s)", format, strings.Join(Formats(), ", "))
	}
}

// ExportFile writes entries to path in format.
func ExportFile(path, format string, entries []Entry) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	exp, err := NewExporter(format, f)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := exp.Write(e); err != nil {
			exp.Close()
			return err
		}
	}
	return exp.Close()
}

type jsonlExporter struct {
	w *bufio.Writer
}

func (e *jsonlExporter) Write(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	return e.w.WriteByte('\n')
}

func (e *jsonlExporter) Close() error {
	return e.w.Flush()
}

var csvHeader = []string{"timestamp", "type", "report", "analysis"}

type csvExporter struct {
	w             *csv.Writer
	headerWritten bool
}

func (e *csvExporter) writeHeader() error {
	if e.headerWritten {
		return nil
	}
	e.headerWritten = true
	if err := e.w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	return nil
}

func (e *csvExporter) Write(entry Entry) error {
	if err := e.writeHeader(); err != nil {
		return err
	}
	return e.w.Write([]string{
		entry.Timestamp.Format(time.RFC3339Nano),
		entry.Type,
		entry.Report,
		entry.Analysis,
	})
}

func (e *csvExporter) Close() error {
	// An empty export still gets a header row.
	if err := e.writeHeader(); err != nil {
		return err
	}
	e.w.Flush()
	return e.w.Error()
}

// parquetRow is the columnar layout of an exported entry.
type parquetRow struct {
	Timestamp   string `parquet:"timestamp"`
	TimestampMS int64  `parquet:"timestamp_ms"`
	Type        string `parquet:"type"`
	Report      string `parquet:"report"`
	Analysis    string `parquet:"analysis"`
}

type parquetExporter struct {
	w *parquet.GenericWriter[parquetRow]
}

func (e *parquetExporter) Write(entry Entry) error {
	row := parquetRow{
		Timestamp:   entry.Timestamp.Format(time.RFC3339Nano),
		TimestampMS: entry.Timestamp.UnixMilli(),
		Type:        entry.Type,
		Report:      entry.Report,
		Analysis:    entry.Analysis,
	}
	if _, err := e.w.Write([]parquetRow{row}); err != nil {
		return fmt.Errorf("failed to write parquet row: %w", err)
	}
	return nil
}

func (e *parquetExporter) Close() error {
	return e.w.Close()
}
