package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type submission struct {
	Identifier string         `json:"identifier"`
	Data       map[string]any `json:"data"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func testConfiguration() Configuration {
	return Configuration{
		Columns: Columns{
			{SortKey: 30, Property: "createdAt", Label: "Date"},
			{SortKey: 10, Property: "identifier", Label: "Form"},
			{SortKey: 20, Property: "data.message", Label: "Message"},
		},
		FileBasename:   "submissions",
		DateTimeFormat: "d.m.Y",
	}
}

func testRecords() []submission {
	day := time.Date(2022, time.February, 7, 10, 0, 0, 0, time.UTC)
	return []submission{
		{Identifier: "contact", Data: map[string]any{"message": "plain"}, CreatedAt: day},
		{Identifier: "contact", Data: map[string]any{"message": "comma, \"quotes\"\nand newline"}, CreatedAt: day},
		{Identifier: "feedback", Data: map[string]any{}, CreatedAt: day.AddDate(0, 0, 1)},
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func TestExporter_DumpCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	e := New(NewCSV(), WithOutputDir(dir))
	e.SetConfiguration(testConfiguration())

	res, err := e.Dump(context.Background(), FromSlice(testRecords()))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "submissions.csv"), res.Path)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, []string{"submissions.csv"}, listDir(t, dir))

	f, err := os.Open(res.Path)
	require.NoError(t, err)
	defer f.Close()

	got, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Form", "Message", "Date"},
		{"contact", "plain", "07.02.2022"},
		{"contact", "comma, \"quotes\"\nand newline", "07.02.2022"},
		{"feedback", "", "08.02.2022"},
	}, got)
}

func TestExporter_DumpEmptyColumnsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	e := New(NewCSV(), WithOutputDir(dir))
	e.SetConfiguration(Configuration{FileBasename: "empty"})

	_, err := e.Dump(context.Background(), FromSlice(testRecords()))

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KindEmptyColumnSet, ce.Kind)
	assert.Empty(t, listDir(t, dir))
}

func TestExporter_DumpSourceFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "submissions.csv")
	require.NoError(t, os.WriteFile(existing, []byte("previous export\n"), 0o644))

	boom := errors.New("connection reset")
	records := func(yield func(any, error) bool) {
		for _, r := range testRecords() {
			if !yield(r, nil) {
				return
			}
		}
		yield(nil, boom)
	}

	e := New(NewCSV(), WithOutputDir(dir))
	e.SetConfiguration(testConfiguration())

	_, err := e.Dump(context.Background(), records)
	require.ErrorIs(t, err, boom)
	assert.False(t, IsIOError(err))

	assert.Equal(t, []string{"submissions.csv"}, listDir(t, dir), "temp file removed")
	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "previous export\n", string(content), "existing export untouched")
}

func TestExporter_DumpMissingDirectoryIsIOError(t *testing.T) {
	e := New(NewCSV(), WithOutputDir(filepath.Join(t.TempDir(), "missing")))
	e.SetConfiguration(testConfiguration())

	_, err := e.Dump(context.Background(), FromSlice(testRecords()))

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "create", ioErr.Op)
}

func TestExporter_DumpRejectsPathInBasename(t *testing.T) {
	cfg := testConfiguration()
	cfg.FileBasename = "../escape"

	e := New(NewCSV(), WithOutputDir(t.TempDir()))
	e.SetConfiguration(cfg)

	_, err := e.Dump(context.Background(), FromSlice(testRecords()))

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KindInvalidBasename, ce.Kind)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestExporter_WriteToFailingWriter(t *testing.T) {
	e := New(NewCSV())
	e.SetConfiguration(testConfiguration())

	_, err := e.WriteTo(context.Background(), failingWriter{}, FromSlice(testRecords()))

	assert.True(t, IsIOError(err))
	assert.ErrorContains(t, err, "disk full")
}

func TestExporter_WriteToCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(NewCSV())
	e.SetConfiguration(testConfiguration())

	var buf bytes.Buffer
	_, err := e.WriteTo(ctx, &buf, FromSlice(testRecords()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExporter_WriteToTranslatedHeaders(t *testing.T) {
	translator := TranslatorFunc(func(key string) (string, bool) {
		if key == "Form" {
			return "Formular", true
		}
		return "", false
	})

	e := New(NewCSV(), WithTranslator(translator))
	e.SetConfiguration(testConfiguration())

	var buf bytes.Buffer
	n, err := e.WriteTo(context.Background(), &buf, FromSlice(testRecords()[:1]))
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, "Formular,Message,Date\ncontact,plain,07.02.2022\n", buf.String())
}

func TestExporter_CSVOptions(t *testing.T) {
	format := &CSV{Comma: ';', UseCRLF: true, BOM: true}
	e := New(format)
	e.SetConfiguration(Configuration{Columns: Columns{{Property: "name", Label: "Name"}}})

	var buf bytes.Buffer
	_, err := e.WriteTo(context.Background(), &buf, FromSlice([]map[string]any{{"name": "a;b"}}))
	require.NoError(t, err)

	assert.Equal(t, "\xEF\xBB\xBFName\r\n\"a;b\"\r\n", buf.String())
}

func TestExporter_DumpXLSX(t *testing.T) {
	dir := t.TempDir()
	e := New(NewXLSX(), WithOutputDir(dir))
	e.SetConfiguration(testConfiguration())

	res, err := e.Dump(context.Background(), FromSlice(testRecords()))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "submissions.xlsx"), res.Path)

	f, err := excelize.OpenFile(res.Path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Form", "Message", "Date"}, rows[0])
	assert.Equal(t, []string{"contact", "plain", "07.02.2022"}, rows[1])
	assert.Equal(t, "feedback", rows[3][0])
}

func TestLookupFormat(t *testing.T) {
	f, err := LookupFormat("")
	require.NoError(t, err)
	assert.Equal(t, "csv", f.Extension())

	f, err = LookupFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", f.Name())

	_, err = LookupFormat("pdf")
	assert.True(t, IsConfigurationError(err))

	assert.Equal(t, []string{"csv", "xlsx"}, Formats())
}

func TestExporter_OutputFilename(t *testing.T) {
	e := New(NewXLSX())
	assert.Equal(t, "output.xlsx", e.OutputFilename())

	e.SetConfiguration(Configuration{FileBasename: "log"})
	assert.Equal(t, "log.xlsx", e.OutputFilename())
}
