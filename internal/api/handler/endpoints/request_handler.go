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

type requestHandler struct {
	requestService *service.HTTPRequestService
	courierMapper  mapper.CourierMapper
	config         courier.AppConfig
	logger         zerolog.Logger
}

func newRequestHandler(deps Dependencies) *requestHandler {
	return &requestHandler{
		requestService: deps.Requests,
		courierMapper:  mapper.CourierMapperImpl{},
		config:         deps.Config,
		logger:         deps.Logger,
	}
}

func RequestHandler(router gin.IRouter, deps Dependencies) {
	h := newRequestHandler(deps)

	routes := router.Group("/api/v1")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.POST("/requests", middleware.RateLimiter(deps.Ctx, h.config.RateLimit.Requests, h.config.RateLimit.Window), h.create)
		routes.GET("/config/timeout", h.getTimeout)
		routes.PUT("/config/timeout", middleware.RequireRole(models.RoleAdmin), h.setTimeout)
	}
}

func (slf *requestHandler) create(c *gin.Context) {
	var dto request.HTTPRequestDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		slf.logger.Error().Err(err).Msg("Error parsing and validating http request DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	method, ok := models.ParseMethod(dto.Method)
	if !ok {
		c.JSON(http.StatusBadRequest, response.APIError{Message: service.ErrInvalidMethod.Error(), Data: dto.Method})
		return
	}

	taskID, err := slf.requestService.MakeRequest(
		method,
		dto.URL,
		slf.courierMapper.ToQueryParams(dto.Params, dto.EncodeParams),
		slf.courierMapper.ToHeaders(dto.Headers),
		dto.Body,
		nil,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, response.TaskAccepted{TaskID: taskID})
}

func (slf *requestHandler) getTimeout(c *gin.Context) {
	c.JSON(http.StatusOK, response.TimeoutResponse{TimeoutSeconds: slf.requestService.Config().Timeout()})
}

func (slf *requestHandler) setTimeout(c *gin.Context) {
	var dto request.TimeoutDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	cfg := slf.requestService.Config()
	cfg.SetTimeout(dto.TimeoutSeconds)
	slf.logger.Info().Int("timeoutSeconds", cfg.Timeout()).Msg("Request timeout updated")

	c.JSON(http.StatusOK, response.TimeoutResponse{TimeoutSeconds: cfg.Timeout()})
}
