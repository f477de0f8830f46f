package endpoints

import (
	"errors"
	"net/http"

	"courier"
	"courier/internal/api/handler/middleware"
	"courier/internal/api/handler/request"
	"courier/internal/api/handler/response"
	"courier/internal/api/service"
	"courier/pkg"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type authHandler struct {
	operatorService *service.OperatorService
	logger          zerolog.Logger
	config          courier.AppConfig
}

func newAuthHandler(deps Dependencies) *authHandler {
	return &authHandler{
		operatorService: deps.Operators,
		logger:          deps.Logger,
		config:          deps.Config,
	}
}

func AuthHandler(router gin.IRouter, deps Dependencies) {
	if deps.Operators == nil {
		deps.Logger.Warn().Msg("No operator store configured, auth routes disabled")
		return
	}
	h := newAuthHandler(deps)

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/refresh", h.refreshToken)
	}

	protected := router.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(h.config))
	{
		protected.GET("/me", h.getMe)
	}
}

func (slf *authHandler) register(c *gin.Context) {
	var registerDTO request.RegisterDTO

	err := pkg.ParseAndValidate(c, &registerDTO)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error parsing and validating register DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	authResponse, err := slf.operatorService.Register(registerDTO)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error registering operator")
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrOperatorExists) {
			status = http.StatusConflict
		}
		c.JSON(status, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, authResponse)
}

func (slf *authHandler) login(c *gin.Context) {
	var loginDTO request.LoginDTO
	err := pkg.ParseAndValidate(c, &loginDTO)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error parsing and validating login DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	authResponse, err := slf.operatorService.Login(loginDTO)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error logging in operator")
		c.JSON(http.StatusUnauthorized, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, authResponse)
}

func (slf *authHandler) getMe(c *gin.Context) {
	operatorID := c.GetUint(middleware.ContextOperatorID)
	if operatorID == 0 {
		c.JSON(http.StatusUnauthorized, response.APIError{Message: "Operator not authenticated"})
		return
	}

	operator, err := slf.operatorService.GetByID(operatorID)
	if err != nil {
		slf.logger.Error().Err(err).Uint("operatorId", operatorID).Msg("Error getting operator")
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, operator)
}

func (slf *authHandler) refreshToken(c *gin.Context) {
	var refreshDTO request.RefreshTokenDTO
	err := pkg.ParseAndValidate(c, &refreshDTO)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error parsing and validating refresh token DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	authResponse, err := slf.operatorService.RefreshToken(refreshDTO.RefreshToken)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error refreshing token")
		c.JSON(http.StatusUnauthorized, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, authResponse)
}
