package lark

import (
	"context"
	"encoding/json"
	"fmt"

	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/traveldesk/traveldesk/internal/application/port"
)

// Messenger implements port.Messenger by sending Lark text messages.
type Messenger struct {
	sdk       *SDKClient
	approvers map[string]string
	logger    *zap.Logger
}

// NewMessenger creates a messenger. approvers maps approval stages to the
// open ids configured for them.
func NewMessenger(sdk *SDKClient, approvers map[string]string, logger *zap.Logger) port.Messenger {
	return &Messenger{
		sdk:       sdk,
		approvers: approvers,
		logger:    logger,
	}
}

// NotifyApprover pings the approver configured for the given stage.
func (m *Messenger) NotifyApprover(ctx context.Context, stage string, applicationID int64, applicantID string, estimatedTotal string) error {
	openID, ok := m.approvers[stage]
	if !ok || openID == "" {
		return &port.ExternalServiceError{
			Service: "lark",
			Err:     fmt.Errorf("no approver configured for stage %q", stage),
		}
	}

	text := fmt.Sprintf("Travel application #%d from %s awaits your approval (estimated total %s).",
		applicationID, applicantID, estimatedTotal)
	return m.sendText(ctx, openID, text)
}

// NotifyApplicant tells the applicant about a decision on their application.
func (m *Messenger) NotifyApplicant(ctx context.Context, applicantID string, applicationID int64, decision, remarks string) error {
	text := fmt.Sprintf("Your travel application #%d was %s.", applicationID, decision)
	if remarks != "" {
		text += " Remarks: " + remarks
	}
	return m.sendText(ctx, applicantID, text)
}

func (m *Messenger) sendText(ctx context.Context, openID, text string) error {
	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal message content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeOpenId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(openID).
			MsgType(larkim.MsgTypeText).
			Content(string(content)).
			Build()).
		Build()

	resp, err := m.sdk.Client().Im.Message.Create(ctx, req)
	if err != nil {
		m.logger.Error("Failed to send Lark message",
			zap.String("open_id", openID),
			zap.Error(err))
		return &port.ExternalServiceError{Service: "lark", Err: err}
	}
	if !resp.Success() {
		m.logger.Error("Lark message rejected",
			zap.String("open_id", openID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return &port.ExternalServiceError{
			Service: "lark",
			Err:     fmt.Errorf("code %d: %s", resp.Code, resp.Msg),
		}
	}

	m.logger.Debug("Lark message sent", zap.String("open_id", openID))
	return nil
}

// NoopMessenger discards all notifications. Used when Lark is not configured.
type NoopMessenger struct{}

func (NoopMessenger) NotifyApprover(context.Context, string, int64, string, string) error {
	return nil
}

func (NoopMessenger) NotifyApplicant(context.Context, string, int64, string, string) error {
	return nil
}

var _ port.Messenger = NoopMessenger{}
