package ingest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"studyviz/domain/core"
	"studyviz/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const studentsCSV = `Student ID, Study Hours Per Day ,Exam Score,Internet Quality
S1,1.5,40,Good
S2, 3.0 ,55,Poor
,,,
S3,6,n/a
`

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "study_hours_per_day", NormalizeHeader("  Study Hours  per Day "))
	assert.Equal(t, "exam_score", NormalizeHeader("exam_score"))
	assert.Equal(t, "", NormalizeHeader("   "))
}

func TestParse_CSV(t *testing.T) {
	table, err := Parse("students.csv", strings.NewReader(studentsCSV), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"student_id", "study_hours_per_day", "exam_score", "internet_quality"}, table.Fields)
	assert.Equal(t, "student_id", table.LabelField)
	assert.Equal(t, "students.csv", table.Source)
	require.Len(t, table.Rows, 3, "blank rows are dropped")
	assert.Equal(t, []string{"S2", "3.0", "55", "Poor"}, table.Rows[1])
	assert.Equal(t, []string{"S3", "6", "n/a", ""}, table.Rows[2], "short rows are padded")

	store, err := dataset.NewStore(table)
	require.NoError(t, err)
	assert.Equal(t, dataset.DimensionSet{"study_hours_per_day", "exam_score"}, store.Dimensions())
	rec, ok := store.Get("student_id_2")
	require.True(t, ok)
	assert.Equal(t, "S3", rec.Label)
}

func TestParse_AllNumericUsesRowLabels(t *testing.T) {
	table, err := Parse("scores.csv", strings.NewReader("math,reading\n70,80\n65,90\n"), "")
	require.NoError(t, err)
	assert.Equal(t, dataset.RowLabelField, table.LabelField)

	store, err := dataset.NewStore(table)
	require.NoError(t, err)
	rec, ok := store.Get("row_1")
	require.True(t, ok)
	assert.Equal(t, "row_1", rec.Label)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty input", "", core.ErrMalformedInput},
		{"blank header", " , \n1,2\n", core.ErrMalformedInput},
		{"header only", "a,b\n", core.ErrEmptyDataset},
		{"unterminated quote", "a,b\n\"1,2\n", core.ErrMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.csv", strings.NewReader(tt.input), "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestDetectLabelField(t *testing.T) {
	fields := []string{"a", "b", "c"}
	assert.Equal(t, "b", DetectLabelField(fields, []string{"1", "x", "y"}))
	assert.Equal(t, "c", DetectLabelField(fields, []string{"1", "", "y"}), "empty values are skipped")
	assert.Equal(t, dataset.RowLabelField, DetectLabelField(fields, []string{"1", "2", "3"}))
}

func TestFileReader_ReadsCSVFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.csv")
	require.NoError(t, os.WriteFile(path, []byte(studentsCSV), 0o644))

	table, err := NewFileReader(path, "").ReadTable(context.Background())
	require.NoError(t, err)
	assert.Len(t, table.Rows, 3)
	assert.Equal(t, "students.csv", table.Source)
}

func TestFileReader_MissingFile(t *testing.T) {
	_, err := NewFileReader(filepath.Join(t.TempDir(), "nope.xlsx"), "").ReadTable(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "XLSX file not found")
}

func TestWriteXLSX_ReadsBack(t *testing.T) {
	table, err := Parse("students.csv", strings.NewReader(studentsCSV), "")
	require.NoError(t, err)
	store, err := dataset.NewStore(table)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, "Students", store.Fields(), store.Records()))

	back, err := Parse("export.xlsx", &buf, "Students")
	require.NoError(t, err)
	assert.Equal(t, table.Fields, back.Fields)
	require.Len(t, back.Rows, 3)
	assert.Equal(t, "S1", back.Rows[0][0])
	assert.Equal(t, "55", back.Rows[1][2])
	assert.Equal(t, "n/a", back.Rows[2][2])
}

func TestWriteCSV(t *testing.T) {
	table, err := Parse("students.csv", strings.NewReader(studentsCSV), "")
	require.NoError(t, err)
	store, err := dataset.NewStore(table)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []string{"student_id", "exam_score"}, store.Records()[:2]))
	assert.Equal(t, "student_id,exam_score\nS1,40\nS2,55\n", buf.String())
}
