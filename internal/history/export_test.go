package history

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportEntries() []Entry {
	return []Entry{
		NewEntry(base, TypeSystem, "CPU Usage: 25.0%\nDisk: 87.9%", "Status: Warning\nIssues: High disk usage\nAction: Free up disk space"),
		NewEntry(base.Add(time.Hour), TypeSystem, "CPU Usage: 5.0%", "Status: Good, \"all clear\""),
	}
}

func TestExport_JSONL(t *testing.T) {
	var buf bytes.Buffer
	exp, err := NewExporter("jsonl", &buf)
	require.NoError(t, err)
	for _, e := range exportEntries() {
		require.NoError(t, exp.Write(e))
	}
	require.NoError(t, exp.Close())

	var got []Entry
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		got = append(got, e)
	}
	assert.Equal(t, exportEntries(), got)
}

func TestExport_CSV(t *testing.T) {
	var buf bytes.Buffer
	exp, err := NewExporter("CSV", &buf)
	require.NoError(t, err)
	for _, e := range exportEntries() {
		require.NoError(t, exp.Write(e))
	}
	require.NoError(t, exp.Close())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "2024-03-09T14:30:05.123456Z", records[1][0])
	assert.Equal(t, "Status: Warning\nIssues: High disk usage\nAction: Free up disk space", records[1][3])
	assert.Equal(t, "Status: Good, \"all clear\"", records[2][3])
}

func TestExport_CSVEmptyHasHeader(t *testing.T) {
	var buf bytes.Buffer
	exp, err := NewExporter(FormatCSV, &buf)
	require.NoError(t, err)
	require.NoError(t, exp.Close())
	assert.Equal(t, "timestamp,type,report,analysis\n", buf.String())
}

func TestExportFile_Parquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.parquet")
	require.NoError(t, ExportFile(path, FormatParquet, exportEntries()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)

	pf, err := parquet.OpenFile(f, info.Size())
	require.NoError(t, err)
	assert.Equal(t, int64(2), pf.NumRows())

	reader := parquet.NewReader(pf)
	var rows []parquetRow
	for {
		var row parquetRow
		if err := reader.Read(&row); err != nil {
			break
		}
		rows = append(rows, row)
	}

	require.Len(t, rows, 2)
	assert.Equal(t, "system", rows[0].Type)
	assert.Equal(t, base.UnixMilli(), rows[0].TimestampMS)
	assert.Contains(t, rows[0].Report, "87.9")
	assert.Equal(t, "Status: Good, \"all clear\"", rows[1].Analysis)
}

func TestNewExporter_UnknownFormat(t *testing.T) {
	_, err := NewExporter("xml", &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jsonl, csv, parquet")
}

func TestExportFile_BadPath(t *testing.T) {
	err := ExportFile(filepath.Join(t.TempDir(), "missing", "out.csv"), FormatCSV, nil)
	assert.Error(t, err)
}
