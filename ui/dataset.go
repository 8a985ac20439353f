package ui

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"studyviz/adapters/ingest"
	"studyviz/internal/coordinator"
	"studyviz/internal/errors"

	"github.com/gin-gonic/gin"
)

// handleDataset describes the loaded dataset.
func (s *Server) handleDataset(c *gin.Context) {
	store := s.sessions.Dataset()
	c.JSON(http.StatusOK, coordinator.DescribeDataset(store, s.sessions.Registry().ForDataset(store)))
}

// handleDatasetUpload replaces the dataset with an uploaded CSV or XLSX file
// and resets every session to it.
func (s *Server) handleDatasetUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		s.respondError(c, errors.InvalidInput("No file uploaded"))
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		s.respondError(c, errors.InvalidInput(fmt.Sprintf("File size (%.1f MB) exceeds the 50MB limit", float64(header.Size)/(1024*1024))))
		return
	}
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv", ".xlsx":
	default:
		s.respondError(c, errors.InvalidInput("Only Excel (.xlsx) and CSV (.csv) files are allowed"))
		return
	}

	s.log.Info("Dataset upload %s (%d bytes)", header.Filename, header.Size)
	table, err := ingest.Parse(header.Filename, file, s.opts.Sheet)
	if err != nil {
		s.respondError(c, err)
		return
	}

	store, err := s.sessions.Reload(c.Request.Context(), table)
	if store == nil {
		s.respondError(c, err)
		return
	}
	resp := gin.H{
		"dataset":  coordinator.DescribeDataset(store, s.sessions.Registry().ForDataset(store)),
		"sessions": len(s.sessions.List()),
	}
	if err != nil {
		// The dataset is loaded; some session could not reset to it.
		resp["warning"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
