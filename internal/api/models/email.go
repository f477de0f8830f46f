package models

// EmailProvider names a mail service with a well-known SMTP endpoint
type EmailProvider string

const (
	ProviderNone    EmailProvider = ""
	ProviderGmail   EmailProvider = "GMAIL"
	ProviderOutlook EmailProvider = "OUTLOOK"
	ProviderYahoo   EmailProvider = "YAHOO"
)

type Charset string

const (
	CharsetUSASCII Charset = "us-ascii"
	CharsetUTF8    Charset = "utf-8"
	CharsetGB2312  Charset = "gb2312"
)

type SecurityType string

const (
	// SecurityTLS upgrades a plain connection with STARTTLS
	SecurityTLS SecurityType = "TLS"
	// SecuritySSL connects over implicit TLS
	SecuritySSL SecurityType = "SSL"
)

type EmailResult string

const (
	EmailSuccess EmailResult = "Success"
	EmailFail    EmailResult = "Fail"
)

// EmailDetails is everything needed to compose one message. It is not modified once a send starts.
type EmailDetails struct {
	SenderEmail   string   `json:"senderEmail"`
	Password      string   `json:"-"`
	SenderName    string   `json:"senderName"`
	ReceiverEmail string   `json:"receiverEmail"`
	Subject       string   `json:"subject"`
	Message       string   `json:"message"`
	CC            []string `json:"cc"`
	BCC           []string `json:"bcc"`
	Attachments   []string `json:"attachments"`
	UseHTML       bool     `json:"useHtml"`
}

type CustomServer struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
}

// ServerTarget selects the SMTP server: Custom when set, the named Provider otherwise
type ServerTarget struct {
	Provider EmailProvider `json:"provider,omitempty"`
	Custom   *CustomServer `json:"custom,omitempty"`
}

type ResolvedServer struct {
	Host     string
	Port     int
	Username string
	Password string
	Security SecurityType
}

// ComposedMessage is the transport-facing form of EmailDetails
type ComposedMessage struct {
	From        string
	FromName    string
	To          string
	CC          []string
	BCC         []string
	Subject     string
	Lines       []string
	HTML        bool
	Charset     Charset
	Attachments []string
}

// EmailOutcome carries the failure both as text for the caller and as an error for errors.Is
type EmailOutcome struct {
	Result EmailResult `json:"result"`
	Error  string      `json:"error,omitempty"`
	Err    error       `json:"-"`
}

func (o EmailOutcome) Failed() bool {
	return o.Result != EmailSuccess
}
