package mailer

import "embed"

const (
	FROM_NAME        = "InstaPilot"
	MAX_RETRY        = 3
	WELCOME_TEMPLATE = "welcome.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, toUsername, toEmail string, data any) (int, error)
}
