// Package email provides the send-email node.
package email

import (
	"context"
	"fmt"

	"github.com/dukex/classflow/pkg/collaborators"
	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/nodes"
	"github.com/dukex/classflow/pkg/protocol"
)

const NodeType = "send-email"

type Executor struct {
	mailer collaborators.Mailer
}

func NewExecutor(mailer collaborators.Mailer) *Executor {
	return &Executor{mailer: mailer}
}

// Execute sends one message to every recipient. "to" accepts a comma separated list,
// a list of addresses, or a list of students (their "email" field is used).
func (e *Executor) Execute(ctx context.Context, req protocol.Request) (*protocol.Result, error) {
	if e.mailer == nil {
		return nodes.NotConfigured(NodeType, "email"), nil
	}

	recipients := nodes.Strings(req.Config, "to", req.Variables)
	if len(recipients) == 0 {
		return protocol.Failure("to: at least one recipient is required"), nil
	}

	subject, err := nodes.RequiredString(req.Config, "subject", req.Variables)
	if err != nil {
		return protocol.Failure(err.Error()), nil
	}

	msg := collaborators.EmailMessage{
		To:      recipients,
		Subject: subject,
		Body:    nodes.String(req.Config, "body", req.Variables),
		HTML:    nodes.Bool(req.Config, "html", req.Variables, false),
	}

	receipt, err := e.mailer.SendEmail(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	req.Log().Info("Email sent", "recipients", len(recipients), "message_id", receipt.MessageID)

	return protocol.Success(map[string]any{
		"emailSent":      true,
		"messageId":      receipt.MessageID,
		"recipientCount": len(recipients),
	}), nil
}

func (e *Executor) Definition() models.NodeDefinition {
	return models.NodeDefinition{
		Type:        NodeType,
		Label:       "Send Email",
		Category:    models.CategoryAction,
		Description: "Email students, guardians or staff",
		Fields: []models.FieldDefinition{
			{Name: "to", Label: "Recipients", Type: "text", Placeholder: "{{students}}", Required: true},
			{Name: "subject", Label: "Subject", Type: "text", Placeholder: "Your result for {{exam.title}}", Required: true},
			{Name: "body", Label: "Body", Type: "textarea"},
			{Name: "html", Label: "Send as HTML", Type: "boolean"},
		},
		Inputs:  models.InputHandle(),
		Outputs: models.OutputHandles("output", "Next"),
		OutputVariables: []models.OutputVariable{
			{Name: "emailSent", Label: "Sent", Description: "True when the message was accepted"},
			{Name: "messageId", Label: "Message id"},
			{Name: "recipientCount", Label: "Recipients"},
		},
	}
}
