package mapper

import (
	"strings"

	"courier/internal/api/handler/request"
	"courier/internal/api/models"
	"courier/internal/api/service"
)

type CourierMapper interface {
	// http requests
	ToQueryParams(params []request.QueryParamDTO, encode bool) []models.QueryParam
	ToHeaders(headers []request.HeaderDTO) []models.Header

	// email
	ToEmailDetails(req request.EmailRequestDTO) models.EmailDetails
	ToServerTarget(provider string, custom *request.CustomServerDTO) models.ServerTarget

	// captures
	ToCaptureFrame(req request.CaptureDTO) models.CaptureFrame
}

// CourierMapperImpl implements CourierMapper
type CourierMapperImpl struct{}

func (m CourierMapperImpl) ToQueryParams(params []request.QueryParamDTO, encode bool) []models.QueryParam {
	out := make([]models.QueryParam, len(params))
	for i, p := range params {
		value := p.Value
		if encode {
			value = service.URLEncode(value)
		}
		out[i] = models.QueryParam{Key: p.Key, Value: value}
	}
	return out
}

func (m CourierMapperImpl) ToHeaders(headers []request.HeaderDTO) []models.Header {
	out := make([]models.Header, len(headers))
	for i, h := range headers {
		out[i] = models.Header{Name: h.Name, Value: h.Value}
	}
	return out
}

func (m CourierMapperImpl) ToEmailDetails(req request.EmailRequestDTO) models.EmailDetails {
	return models.EmailDetails{
		SenderEmail:   req.SenderEmail,
		Password:      req.Password,
		SenderName:    req.SenderName,
		ReceiverEmail: req.ReceiverEmail,
		Subject:       req.Subject,
		Message:       req.Message,
		CC:            req.CC,
		BCC:           req.BCC,
		Attachments:   req.Attachments,
		UseHTML:       req.UseHTML,
	}
}

func (m CourierMapperImpl) ToServerTarget(provider string, custom *request.CustomServerDTO) models.ServerTarget {
	target := models.ServerTarget{Provider: models.EmailProvider(strings.ToUpper(provider))}
	if custom != nil {
		target.Custom = &models.CustomServer{
			Host:     custom.Host,
			Port:     custom.Port,
			Username: custom.Username,
		}
	}
	return target
}

func (m CourierMapperImpl) ToCaptureFrame(req request.CaptureDTO) models.CaptureFrame {
	return models.CaptureFrame{
		Width:        req.Width,
		Height:       req.Height,
		Pixels:       req.Pixels,
		FlipVertical: req.FlipVertical,
	}
}
