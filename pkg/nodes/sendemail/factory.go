package sendemail

import "github.com/fluxo-hq/fluxo/pkg/protocol"

// Factory creates SendEmailNode instances bound to a Mailer.
type Factory struct {
	mailer protocol.Mailer
}

func NewFactory(mailer protocol.Mailer) protocol.NodeFactory {
	return &Factory{mailer: mailer}
}

func (f *Factory) Create(name string, parameters map[string]any) (protocol.Node, error) {
	return NewSendEmailNode(name, parameters, f.mailer)
}

func (f *Factory) Kind() string {
	return "send_email"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":        "object",
		"title":       "Send Email Configuration",
		"description": "Sends an email through Gmail SMTP with an app password",
		"properties": map[string]any{
			"from_email": map[string]any{
				"type":        "string",
				"description": "Gmail address to send from",
			},
			"app_password": map[string]any{
				"type":        "string",
				"description": "Gmail app password for the sender account",
			},
			"to": map[string]any{
				"type":        "string",
				"description": "Recipient address",
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "Subject template, supports {{node.field}} references",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Body template, supports {{node.field}} references",
			},
		},
		"required": []string{"from_email", "app_password", "to", "subject", "body"},
	}
}
