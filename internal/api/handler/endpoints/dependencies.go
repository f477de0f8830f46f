package endpoints

import (
	"context"

	"courier"
	"courier/internal/api/service"
	"courier/internal/realtime"

	"github.com/rs/zerolog"
)

// Dependencies is everything the handlers are built from. Nil services disable their routes.
type Dependencies struct {
	Ctx    context.Context
	Config courier.AppConfig
	Logger zerolog.Logger

	Operators *service.OperatorService
	Requests  *service.HTTPRequestService
	Emails    *service.EmailService
	Directory *service.UserDirectoryService
	Captures  *service.CaptureService
	Tasks     service.TaskStore
	Verifier  SMTPVerifier
	Hub       *realtime.Hub
}
