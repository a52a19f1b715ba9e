package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pdxmph/tasks-tui/internal/db"
	"github.com/pdxmph/tasks-tui/internal/tasks"
)

func (s *Server) handleListTasks(c *gin.Context) {
	list, err := s.store.ListTasks(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	task, err := s.store.GetTask(c.Request.Context(), id)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": task})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	draft, ok := s.bindDraft(c)
	if !ok {
		return
	}

	task, err := s.store.CreateTask(c.Request.Context(), draft)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Task created", "data": task})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	draft, ok := s.bindDraft(c)
	if !ok {
		return
	}

	task, err := s.store.UpdateTask(c.Request.Context(), id, draft)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task updated", "data": task})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.store.DeleteTask(c.Request.Context(), id); err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// bindDraft decodes and validates a task payload. Extra fields such as id
// are ignored.
func (s *Server) bindDraft(c *gin.Context) (tasks.Draft, bool) {
	var draft tasks.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		s.respondError(c, http.StatusUnprocessableEntity, err)
		return tasks.Draft{}, false
	}
	if err := draft.Validate(); err != nil {
		s.respondError(c, http.StatusUnprocessableEntity, err)
		return tasks.Draft{}, false
	}
	return draft, true
}

func (s *Server) respondStoreError(c *gin.Context, err error) {
	if errors.Is(err, db.ErrNotFound) {
		s.respondError(c, http.StatusNotFound, err)
		return
	}
	s.respondError(c, http.StatusInternalServerError, err)
}
