package ui

import (
	"context"
	"net/http"

	"studyviz/domain/view"
	"studyviz/internal/coordinator"
	"studyviz/internal/errors"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.sessions.List()})
}

// handleCreateSession starts a session and returns its first snapshot.
func (s *Server) handleCreateSession(c *gin.Context) {
	coord, err := s.sessions.Create(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	snap, err := coord.Snapshot(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session_id": coord.ID(),
		"snapshot":   snap,
	})
}

func (s *Server) handleGetSession(c *gin.Context) {
	coord, ok := s.session(c)
	if !ok {
		return
	}
	snap, err := coord.Snapshot(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	coord, ok := s.session(c)
	if !ok {
		return
	}
	if err := s.sessions.Delete(coord.ID()); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleEvent applies one interaction event.
func (s *Server) handleEvent(c *gin.Context) {
	coord, ok := s.session(c)
	if !ok {
		return
	}
	var ev coordinator.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		s.respondError(c, errors.InvalidInput("invalid event: "+err.Error()))
		return
	}
	res, err := coord.Dispatch(c.Request.Context(), ev)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleParams applies a partial parameter update.
func (s *Server) handleParams(c *gin.Context) {
	coord, ok := s.session(c)
	if !ok {
		return
	}
	var patch view.ParamsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.respondError(c, errors.InvalidInput("invalid parameters: "+err.Error()))
		return
	}
	res, err := coord.Dispatch(c.Request.Context(), coordinator.Event{Type: coordinator.ParamsChanged, Params: &patch})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"params": coord.Params(), "result": res})
}

// handleStream streams view updates over SSE, starting with a snapshot.
func (s *Server) handleStream(c *gin.Context) {
	coord, ok := s.session(c)
	if !ok {
		return
	}
	err := s.hub.HandleSSE(c, coord.ID(), func(ctx context.Context) (interface{}, int64, error) {
		snap, err := coord.Snapshot(ctx)
		if err != nil {
			return nil, 0, err
		}
		return snap, snap.Generation, nil
	}, s.opts.KeepAlive)
	if err != nil {
		s.respondError(c, err)
	}
}

func (s *Server) handleWebSocket(c *gin.Context) {
	coord, ok := s.session(c)
	if !ok {
		return
	}
	s.hub.HandleWebSocket(c.Writer, c.Request, coord.ID(), coord)
}
