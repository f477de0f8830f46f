package endpoints

import (
	"context"
	"errors"
	"net/http"
	"time"

	"courier"
	"courier/internal/api/handler/middleware"
	"courier/internal/api/handler/response"
	"courier/internal/api/models"
	"courier/internal/api/repo"
	"courier/internal/api/service"
	"courier/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type taskHandler struct {
	tasks  service.TaskStore
	hub    *realtime.Hub
	config courier.AppConfig
	logger zerolog.Logger
}

func newTaskHandler(deps Dependencies) *taskHandler {
	return &taskHandler{
		tasks:  deps.Tasks,
		hub:    deps.Hub,
		config: deps.Config,
		logger: deps.Logger,
	}
}

func TaskHandler(router gin.IRouter, deps Dependencies) {
	h := newTaskHandler(deps)

	routes := router.Group("/api/v1/tasks")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("/:id", h.getByID)
		routes.GET("/:id/field", h.getField)
	}

	// the socket authenticates itself: browsers cannot set headers on an upgrade
	if h.hub != nil {
		router.GET("/api/v1/ws/tasks", h.serveWS)
	}
}

func (slf *taskHandler) load(c *gin.Context) (models.TaskRecord, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	record, err := slf.tasks.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repo.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
			return models.TaskRecord{}, false
		}
		slf.logger.Error().Err(err).Str("taskId", c.Param("id")).Msg("Error loading task")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to load task"})
		return models.TaskRecord{}, false
	}
	return record, true
}

func (slf *taskHandler) getByID(c *gin.Context) {
	record, ok := slf.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, record)
}

// getField decodes the body of a finished http task and reads one top-level key
func (slf *taskHandler) getField(c *gin.Context) {
	record, ok := slf.load(c)
	if !ok {
		return
	}
	if record.Kind != models.TaskKindHTTP {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Only http tasks carry a response body"})
		return
	}
	if !record.Done() {
		c.JSON(http.StatusConflict, response.APIError{Message: "Task is still pending"})
		return
	}

	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Query parameter 'key' is required"})
		return
	}

	field, err := service.ExtractField(record.ContentType, record.Body, key, service.FieldType(c.DefaultQuery("type", string(service.FieldString))))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, response.APIError{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, field)
}

func (slf *taskHandler) serveWS(c *gin.Context) {
	cfg := realtime.Config{JWTSecret: slf.config.JWTConfig.Secret, DevMode: slf.config.Mode == "dev"}
	realtime.ServeWS(slf.hub, cfg, slf.logger, c.Writer, c.Request)
}
