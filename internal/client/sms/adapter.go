package smsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/GregMSThompson/kisanmate-backend/internal/dto"
	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
	"github.com/GregMSThompson/kisanmate-backend/pkg/logger"
)

const serviceName = "sms-gateway"

// Adapter posts messages to an HTTP SMS gateway that accepts
// {"sender","to","message"} with a bearer API key.
type Adapter struct {
	client   *http.Client
	endpoint string
	apiKey   string
	senderID string
}

func NewAdapter(endpoint, apiKey, senderID string) *Adapter {
	return &Adapter{
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: endpoint,
		apiKey:   apiKey,
		senderID: senderID,
	}
}

type gatewayRequest struct {
	Sender  string `json:"sender,omitempty"`
	To      string `json:"to"`
	Message string `json:"message"`
}

func (a *Adapter) Send(ctx context.Context, msg dto.SMSMessage) error {
	body, err := json.Marshal(gatewayRequest{
		Sender:  a.senderID,
		To:      msg.To,
		Message: msg.Body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return errs.NewExternalServiceError(serviceName, "failed to reach gateway", true, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return errs.NewExternalServiceError(serviceName,
			fmt.Sprintf("gateway returned status %d", resp.StatusCode), transient, nil)
	}
	return nil
}

// LogSender writes messages to the request logger instead of sending them.
// It is wired when no gateway is configured so local sign-in still works.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg dto.SMSMessage) error {
	logger.FromContext(ctx).Warn("sms gateway not configured, message not sent", "to", msg.To, "body", msg.Body)
	return nil
}

type Sender interface {
	Send(ctx context.Context, msg dto.SMSMessage) error
}

// New returns the gateway adapter, or LogSender when endpoint is empty.
func New(endpoint, apiKey, senderID string) Sender {
	if endpoint == "" {
		return LogSender{}
	}
	return NewAdapter(endpoint, apiKey, senderID)
}
