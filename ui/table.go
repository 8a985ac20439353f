package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"studyviz/adapters/ingest"
	"studyviz/domain/dataset"
	"studyviz/internal/errors"
	"studyviz/internal/report"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 25
	maxPageSize     = 500
)

// TablePage is one page of the filter subset.
type TablePage struct {
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Pages    int               `json:"pages"`
	Total    int               `json:"total"`
	Fields   []string          `json:"fields"`
	Rows     []*dataset.Record `json:"rows"`
}

// paginate returns page (1-based) of records. Pages past the end are empty.
func paginate(records []*dataset.Record, page, size int) TablePage {
	pages := (len(records) + size - 1) / size
	out := TablePage{Page: page, PageSize: size, Pages: pages, Total: len(records), Rows: []*dataset.Record{}}
	if page > pages {
		return out
	}
	start := (page - 1) * size
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	out.Rows = records[start:end]
	return out
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, errors.InvalidInput(fmt.Sprintf("%s must be a positive integer", key))
	}
	return v, nil
}

// handleTable returns a page of the records in the current filter.
func (s *Server) handleTable(c *gin.Context) {
	coord, ok := s.session(c)
	if !ok {
		return
	}
	page, err := queryInt(c, "page", 1)
	if err != nil {
		s.respondError(c, err)
		return
	}
	size, err := queryInt(c, "page_size", defaultPageSize)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	out := paginate(coord.FilterRecords(), page, size)
	out.Fields = coord.Store().Fields()
	c.JSON(http.StatusOK, out)
}

// handleExport downloads the current filter as CSV or XLSX.
func (s *Server) handleExport(c *gin.Context) {
	coord, ok := s.session(c)
	if !ok {
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	fields := coord.Store().Fields()
	records := coord.FilterRecords()

	var (
		buf         bytes.Buffer
		contentType string
		err         error
	)
	switch format {
	case "csv":
		contentType = "text/csv; charset=utf-8"
		err = ingest.WriteCSV(&buf, fields, records)
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = ingest.WriteXLSX(&buf, "Students", fields, records)
	default:
		s.respondError(c, errors.InvalidInput(fmt.Sprintf("unsupported export format %q", format)))
		return
	}
	if err != nil {
		s.respondError(c, errors.Wrap(err, "export failed"))
		return
	}

	filename := fmt.Sprintf("students-%s.%s", time.Now().UTC().Format("20060102-150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// handleReport renders the dashboard report as Markdown or HTML.
func (s *Server) handleReport(c *gin.Context) {
	coord, ok := s.session(c)
	if !ok {
		return
	}
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	snap, err := coord.Snapshot(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	out, err := report.Render(snap, format, report.Options{Title: c.Query("title")})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), out)
}
