package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"studyviz/domain/core"
	"studyviz/domain/dataset"
	"studyviz/internal"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet read from workbooks unless configured.
const DefaultSheet = "Sheet1"

// FileReader reads a tabular dataset from a CSV or XLSX file.
type FileReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	log      *internal.Logger
}

// NewFileReader creates a reader that picks the format from the file
// extension. An empty sheet selects DefaultSheet.
func NewFileReader(filePath, sheet string) *FileReader {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &FileReader{
		filePath: filePath,
		fileType: fileType(filePath),
		sheet:    sheet,
		log:      internal.DefaultLogger.WithComponent("DataReader"),
	}
}

func fileType(name string) string {
	if strings.ToLower(filepath.Ext(name)) == ".csv" {
		return "csv"
	}
	return "xlsx"
}

// ReadTable reads and normalizes the file.
func (r *FileReader) ReadTable(ctx context.Context) (dataset.Table, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Table{}, err
	}
	r.log.Info("Starting to read %s file: %s", r.fileType, r.filePath)

	file, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return dataset.Table{}, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
		}
		return dataset.Table{}, fmt.Errorf("failed to open %s file: %w", r.fileType, err)
	}
	defer file.Close()

	return Parse(filepath.Base(r.filePath), file, r.sheet)
}

// Parse reads a dataset from an uploaded stream; name selects the format.
func Parse(name string, src io.Reader, sheet string) (dataset.Table, error) {
	var (
		rows [][]string
		err  error
	)
	switch fileType(name) {
	case "csv":
		rows, err = readCSV(src)
	default:
		rows, err = readXLSX(src, sheet)
	}
	if err != nil {
		return dataset.Table{}, err
	}
	return Normalize(name, rows)
}

func readCSV(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV: %v", core.ErrMalformedInput, err)
	}
	logger().Debug("CSV read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func readXLSX(src io.Reader, sheet string) ([][]string, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	startTime := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %v", core.ErrMalformedInput, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", core.ErrMalformedInput, sheet, err)
	}
	logger().Debug("%s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func logger() *internal.Logger {
	return internal.DefaultLogger.WithComponent("DataReader")
}

// NormalizeHeader lowercases a column name and joins its words with
// underscores.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), "_"))
}

// Normalize turns raw rows into a table: the first row is the header, cells
// are trimmed, short rows are padded, surplus cells and blank rows dropped.
// The label field is the first field whose first value is non-numeric.
func Normalize(source string, rows [][]string) (dataset.Table, error) {
	if len(rows) == 0 {
		return dataset.Table{}, fmt.Errorf("%w: missing header row", core.ErrMalformedInput)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = NormalizeHeader(h)
	}
	for len(headers) > 0 && headers[len(headers)-1] == "" {
		headers = headers[:len(headers)-1]
	}
	if len(headers) == 0 {
		return dataset.Table{}, fmt.Errorf("%w: empty header row", core.ErrMalformedInput)
	}

	data := make([][]string, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := make([]string, len(headers))
		blank := true
		for j := range headers {
			if j < len(raw) {
				row[j] = strings.TrimSpace(raw[j])
			}
			if row[j] != "" {
				blank = false
			}
		}
		if !blank {
			data = append(data, row)
		}
	}
	if len(data) == 0 {
		return dataset.Table{}, fmt.Errorf("%w: %s must have at least a header row and one data row", core.ErrEmptyDataset, source)
	}

	table := dataset.Table{
		Fields:     headers,
		Rows:       data,
		LabelField: DetectLabelField(headers, data[0]),
		Source:     source,
	}
	logger().Info("%s processed (%d columns, %d rows, label %q)", source, len(headers), len(data), table.LabelField)
	return table, nil
}

// DetectLabelField returns the first field whose value in first is
// non-empty and non-numeric, or dataset.RowLabelField when every field is
// numeric.
func DetectLabelField(fields, first []string) string {
	for i, f := range fields {
		if i >= len(first) || first[i] == "" {
			continue
		}
		if _, ok := dataset.ParseNumeric(first[i]); !ok {
			return f
		}
	}
	return dataset.RowLabelField
}
