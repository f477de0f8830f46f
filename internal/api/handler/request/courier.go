package request

type QueryParamDTO struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

type HeaderDTO struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value"`
}

type HTTPRequestDTO struct {
	Method  string          `json:"method" validate:"required"`
	URL     string          `json:"url" validate:"required"`
	Params  []QueryParamDTO `json:"params" validate:"dive"`
	Headers []HeaderDTO     `json:"headers" validate:"dive"`
	Body    string          `json:"body"`
	// EncodeParams percent-encodes every param value before it is appended
	EncodeParams bool `json:"encodeParams"`
}

type CustomServerDTO struct {
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port" validate:"gte=0,lte=65535"`
	Username string `json:"username"`
}

type EmailRequestDTO struct {
	SenderEmail   string           `json:"senderEmail" validate:"required"`
	SenderName    string           `json:"senderName"`
	Password      string           `json:"password"`
	ReceiverEmail string           `json:"receiverEmail" validate:"required"`
	CC            []string         `json:"cc"`
	BCC           []string         `json:"bcc"`
	Subject       string           `json:"subject"`
	Message       string           `json:"message"`
	Attachments   []string         `json:"attachments"`
	UseHTML       bool             `json:"useHtml"`
	Provider      string           `json:"provider" validate:"omitempty,oneof=GMAIL OUTLOOK YAHOO gmail outlook yahoo"`
	Custom        *CustomServerDTO `json:"custom"`
	Charset       string           `json:"charset"`
	Security      string           `json:"security" validate:"omitempty,oneof=TLS SSL tls ssl"`
}

type DirectoryEmailDTO struct {
	User          string   `json:"user" validate:"required"`
	ReceiverEmail string   `json:"receiverEmail" validate:"required"`
	CC            []string `json:"cc"`
	BCC           []string `json:"bcc"`
	Subject       string   `json:"subject"`
	Message       string   `json:"message"`
	Attachments   []string `json:"attachments"`
	UseHTML       bool     `json:"useHtml"`
	Charset       string   `json:"charset"`
	Security      string   `json:"security" validate:"omitempty,oneof=TLS SSL tls ssl"`
}

type SMTPVerifyDTO struct {
	SenderEmail string           `json:"senderEmail" validate:"required,email"`
	Password    string           `json:"password"`
	Provider    string           `json:"provider" validate:"omitempty,oneof=GMAIL OUTLOOK YAHOO gmail outlook yahoo"`
	Custom      *CustomServerDTO `json:"custom"`
	Security    string           `json:"security" validate:"omitempty,oneof=TLS SSL tls ssl"`
}

type JSONFieldDTO struct {
	ContentType string `json:"contentType"`
	Body        string `json:"body" validate:"required"`
	Key         string `json:"key" validate:"required"`
	Type        string `json:"type" validate:"required"`
}

type TimeoutDTO struct {
	TimeoutSeconds int `json:"timeoutSeconds" validate:"required"`
}

type CaptureDTO struct {
	Width        int    `json:"width" validate:"gt=0"`
	Height       int    `json:"height" validate:"gt=0"`
	Pixels       []byte `json:"pixels" validate:"required"` // base64 BGRA rows
	FlipVertical bool   `json:"flipVertical"`
	Path         string `json:"path" validate:"required"`
}
