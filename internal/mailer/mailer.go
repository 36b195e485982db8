package mailer

import "embed"

const (
	FromName                 = "Welp"
	maxRetries               = 3
	VerificationCodeTemplate = "verification_code.tmpl"
	ConversationTemplate     = "conversation_update.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
