// Package lark adapts the Lark open platform SDK to the notification port.
// Approvals themselves live in this system; Lark is only used to ping the
// people involved.
package lark

import (
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"go.uber.org/zap"
)

// Config holds Lark client configuration. ApproverOpenIDs maps an approval
// stage (manager, chro, ceo) to the open id of the person handling it.
type Config struct {
	AppID           string
	AppSecret       string
	ApproverOpenIDs map[string]string
}

// SDKClient wraps the Lark SDK client.
type SDKClient struct {
	client *lark.Client
	logger *zap.Logger
}

// NewSDKClient creates a new Lark SDK client.
func NewSDKClient(cfg Config, logger *zap.Logger) *SDKClient {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)

	return &SDKClient{
		client: client,
		logger: logger,
	}
}

// Client returns the underlying Lark SDK client.
func (c *SDKClient) Client() *lark.Client {
	return c.client
}
