package endpoints

import (
	"net/http"

	"courier"
	"courier/internal/api/handler/mapper"
	"courier/internal/api/handler/middleware"
	"courier/internal/api/handler/request"
	"courier/internal/api/handler/response"
	"courier/internal/api/models"
	"courier/internal/api/service"
	"courier/pkg"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type captureHandler struct {
	captureService *service.CaptureService
	courierMapper  mapper.CourierMapper
	config         courier.AppConfig
	logger         zerolog.Logger
}

func newCaptureHandler(deps Dependencies) *captureHandler {
	return &captureHandler{
		captureService: deps.Captures,
		courierMapper:  mapper.CourierMapperImpl{},
		config:         deps.Config,
		logger:         deps.Logger,
	}
}

// CaptureHandler writes to the server's disk, so it is admin only
func CaptureHandler(router gin.IRouter, deps Dependencies) {
	if deps.Captures == nil {
		return
	}
	h := newCaptureHandler(deps)

	routes := router.Group("/api/v1/captures")
	routes.Use(middleware.AuthMiddleware(h.config), middleware.RequireRole(models.RoleAdmin))
	{
		routes.POST("", h.save)
	}
}

func (slf *captureHandler) save(c *gin.Context) {
	var dto request.CaptureDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		slf.logger.Error().Err(err).Msg("Error parsing and validating capture DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	taskID, err := slf.captureService.SaveFrame(slf.courierMapper.ToCaptureFrame(dto), dto.Path, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.APIError{Message: err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, response.TaskAccepted{TaskID: taskID})
}
