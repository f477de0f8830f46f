package service

import (
	"errors"

	"courier/internal/jsondoc"
)

var (
	ErrInvalidMethod       = errors.New("invalid http method")
	ErrEmptyURL            = errors.New("url is empty")
	ErrAttachmentNotFound  = errors.New("attachment not found")
	ErrAttachmentOutside   = errors.New("attachment outside the attachment root")
	ErrInvalidEmailAddress = errors.New("invalid email address")
	ErrUnspecifiedService  = errors.New("unspecified email service")
	ErrTransportFailure    = errors.New("transport failure")
	ErrNoConnectivity      = errors.New("no network connection")
	ErrUnknownUser         = errors.New("unknown directory user")
	ErrUnsupportedFormat   = jsondoc.ErrUnsupportedFormat
)
