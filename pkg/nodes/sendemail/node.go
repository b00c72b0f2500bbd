// Package sendemail provides the templated email node.
package sendemail

import (
	"context"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/nodes"
	"github.com/fluxo-hq/fluxo/pkg/protocol"
	"github.com/fluxo-hq/fluxo/pkg/template"
)

var requiredParameters = []string{"from_email", "app_password", "to", "subject", "body"}

// SendEmailNode renders its subject and body templates against the run
// context and hands the message to a Mailer. The default mailer speaks SMTP
// to Gmail with an app password.
type SendEmailNode struct {
	name       string
	parameters map[string]any
	mailer     protocol.Mailer
}

func NewSendEmailNode(name string, parameters map[string]any, mailer protocol.Mailer) (*SendEmailNode, error) {
	node := &SendEmailNode{
		name:       name,
		parameters: parameters,
		mailer:     mailer,
	}

	if err := node.Validate(); err != nil {
		return nil, err
	}

	return node, nil
}

func (n *SendEmailNode) Validate() error {
	for _, key := range requiredParameters {
		if value, _ := n.parameters[key].(string); value == "" {
			return nodes.Errorf("missing required parameter: %s", key)
		}
	}

	return nil
}

func (n *SendEmailNode) Execute(ctx context.Context, ec *models.ExecutionContext) (*nodes.Result, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	subject, err := template.Render(n.parameters["subject"].(string), ec.Data)
	if err != nil {
		return nil, nodes.Errorf("failed to render subject template: %v", err)
	}

	body, err := template.Render(n.parameters["body"].(string), ec.Data)
	if err != nil {
		return nil, nodes.Errorf("failed to render body template: %v", err)
	}

	to := n.parameters["to"].(string)

	message := protocol.MailMessage{
		From:        n.parameters["from_email"].(string),
		AppPassword: n.parameters["app_password"].(string),
		To:          to,
		Subject:     subject,
		Body:        body,
	}

	if err := n.mailer.Send(ctx, message); err != nil {
		return nil, nodes.Errorf("Failed to send email via Gmail: %v", err)
	}

	return nodes.NewResult(map[string]any{
		"success":  true,
		"provider": "gmail",
		"sent_to":  to,
		"subject":  subject,
		"body":     body,
	}), nil
}
