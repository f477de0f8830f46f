package endpoints

import (
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

type utilHandler struct {
	config courier.AppConfig
	logger zerolog.Logger
}

func newUtilHandler(deps Dependencies) *utilHandler {
	return &utilHandler{config: deps.Config, logger: deps.Logger}
}

func UtilHandler(router gin.IRouter, deps Dependencies) {
	h := newUtilHandler(deps)

	routes := router.Group("/api/v1/util")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("/urlencode", h.urlEncode)
		routes.GET("/diacritics", h.replaceDiacritics)
		routes.POST("/json/field", h.jsonField)
		routes.POST("/email/image", h.emailImage)
	}
}

func (slf *utilHandler) urlEncode(c *gin.Context) {
	value := c.Query("value")
	c.JSON(http.StatusOK, response.URLEncodeResponse{Value: value, Encoded: service.URLEncode(value)})
}

func (slf *utilHandler) replaceDiacritics(c *gin.Context) {
	value := c.Query("value")
	c.JSON(http.StatusOK, gin.H{"value": value, "replaced": service.ReplaceDiacritics(value)})
}

func (slf *utilHandler) jsonField(c *gin.Context) {
	var dto request.JSONFieldDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	field, err := service.ExtractField(dto.ContentType, dto.Body, dto.Key, service.FieldType(dto.Type))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, response.APIError{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, field)
}

type emailImageDTO struct {
	Source       string `json:"source" validate:"required"`
	Embedded     bool   `json:"embedded"`
	Width        int    `json:"width" validate:"gte=0"`
	Height       int    `json:"height" validate:"gte=0"`
	BreaksBefore int    `json:"breaksBefore" validate:"gte=0,lte=50"`
	BreaksAfter  int    `json:"breaksAfter" validate:"gte=0,lte=50"`
}

// emailImage renders the html page used to show an image in a message body
func (slf *utilHandler) emailImage(c *gin.Context) {
	var dto emailImageDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	var html string
	if dto.Embedded {
		html = service.HTMLForEmbeddedAttachment(dto.Source, dto.Width, dto.Height, dto.BreaksBefore, dto.BreaksAfter)
	} else {
		html = service.HTMLForOnlineAttachment(dto.Source, dto.Width, dto.Height, dto.BreaksBefore, dto.BreaksAfter)
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
