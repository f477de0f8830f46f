package endpoints

import (
	"context"
	"net/http"
	"time"

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

// SMTPVerifier checks that a server accepts a connection and the given credentials
type SMTPVerifier interface {
	Verify(ctx context.Context, server models.ResolvedServer) error
}

type emailHandler struct {
	emailService     *service.EmailService
	directoryService *service.UserDirectoryService
	verifier         SMTPVerifier
	courierMapper    mapper.CourierMapper
	config           courier.AppConfig
	logger           zerolog.Logger
}

func newEmailHandler(deps Dependencies) *emailHandler {
	return &emailHandler{
		emailService:     deps.Emails,
		directoryService: deps.Directory,
		verifier:         deps.Verifier,
		courierMapper:    mapper.CourierMapperImpl{},
		config:           deps.Config,
		logger:           deps.Logger,
	}
}

func EmailHandler(router gin.IRouter, deps Dependencies) {
	h := newEmailHandler(deps)
	limiter := middleware.RateLimiter(deps.Ctx, h.config.RateLimit.Requests, h.config.RateLimit.Window)

	routes := router.Group("/api/v1")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.POST("/emails", limiter, h.send)
		if h.directoryService != nil {
			routes.POST("/emails/directory", limiter, h.sendAsUser)
			routes.GET("/directory/users", h.users)
		}
		if h.verifier != nil {
			routes.POST("/smtp/verify", limiter, h.verify)
		}
	}
}

func (slf *emailHandler) send(c *gin.Context) {
	var dto request.EmailRequestDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		slf.logger.Error().Err(err).Msg("Error parsing and validating email DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	slf.dispatch(c,
		slf.courierMapper.ToEmailDetails(dto),
		slf.courierMapper.ToServerTarget(dto.Provider, dto.Custom),
		dto.Charset, dto.Security)
}

func (slf *emailHandler) sendAsUser(c *gin.Context) {
	var dto request.DirectoryEmailDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		slf.logger.Error().Err(err).Msg("Error parsing and validating directory email DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	details, target, err := slf.directoryService.MakeEmailDetails(dto.User, dto.ReceiverEmail, dto.CC, dto.BCC,
		dto.Subject, dto.Message, dto.Attachments, dto.UseHTML)
	if err != nil {
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
		return
	}

	slf.dispatch(c, details, target, dto.Charset, dto.Security)
}

func (slf *emailHandler) dispatch(c *gin.Context, details models.EmailDetails, target models.ServerTarget, charset, security string) {
	attachments, err := service.ResolveAttachments(slf.config.SmtpConfig.AttachmentRoot, details.Attachments)
	if err != nil {
		slf.logger.Warn().Err(err).Msg("Rejected email attachments")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}
	details.Attachments = attachments

	taskID, err := slf.emailService.SendEmail(details, target, models.Charset(charset), models.SecurityType(security), nil)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error scheduling email")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, response.TaskAccepted{TaskID: taskID})
}

func (slf *emailHandler) users(c *gin.Context) {
	users, err := slf.directoryService.Users()
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to load user directory"})
		return
	}
	c.JSON(http.StatusOK, response.DirectoryUsersResponse{Users: users})
}

func (slf *emailHandler) verify(c *gin.Context) {
	var dto request.SMTPVerifyDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	server, err := service.ResolveServer(slf.courierMapper.ToServerTarget(dto.Provider, dto.Custom), dto.SenderEmail)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}
	server.Password = dto.Password
	server.Security = service.NormalizeSecurity(models.SecurityType(dto.Security))

	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Minute)
	defer cancel()
	if err := slf.verifier.Verify(ctx, server); err != nil {
		slf.logger.Warn().Err(err).Str("host", server.Host).Msg("SMTP verification failed")
		c.JSON(http.StatusBadGateway, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"host": server.Host, "port": server.Port, "verified": true})
}
