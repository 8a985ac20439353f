package ui

import (
	"net/http"

	"studyviz/domain/core"
	"studyviz/internal/errors"

	"github.com/gin-gonic/gin"
)

type saveViewRequest struct {
	Name string `json:"name" binding:"required"`
}

// handleSaveView stores the restorable state of the session.
func (s *Server) handleSaveView(c *gin.Context) {
	coord, ok := s.session(c)
	if !ok {
		return
	}
	var req saveViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput("name is required"))
		return
	}
	saved, err := s.sessions.SaveView(c.Request.Context(), coord.ID(), req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (s *Server) handleListViews(c *gin.Context) {
	limit, err := queryInt(c, "limit", 100)
	if err != nil {
		s.respondError(c, err)
		return
	}
	views, err := s.sessions.ListViews(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": views})
}

func (s *Server) handleRestoreView(c *gin.Context) {
	coord, ok := s.session(c)
	if !ok {
		return
	}
	res, err := s.sessions.RestoreView(c.Request.Context(), coord.ID(), core.SnapshotID(c.Param("viewID")))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleDeleteView(c *gin.Context) {
	if err := s.sessions.DeleteView(c.Request.Context(), core.SnapshotID(c.Param("viewID"))); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
