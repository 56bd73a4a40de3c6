package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/nystar1/midnight/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// MailerClient forwards review emails to the mail delivery service.
type MailerClient struct {
	DeliveryURL string
	APIKey      string
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

func NewMailerClient(cfg *config.Config, log *zap.Logger) *MailerClient {
	return &MailerClient{
		DeliveryURL: cfg.Mailer.DeliveryURL,
		APIKey:      cfg.Mailer.APIKey,
		HTTPClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
	}
}

type mailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// SendReviewEmail delivers one review outcome email.
func (c *MailerClient) SendReviewEmail(ctx context.Context, toAddress string, n ReviewNotification) error {
	if c.DeliveryURL == "" {
		return fmt.Errorf("mail delivery endpoint not configured")
	}

	verdict := "rejected"
	if n.Approved {
		verdict = "approved"
	}
	subject := fmt.Sprintf("Your project %q was %s", n.ProjectTitle, verdict)

	text := fmt.Sprintf("Your submission for %q (#%d) has been %s.", n.ProjectTitle, n.ProjectID, verdict)
	if n.Approved && n.ApprovedHours != nil {
		text += fmt.Sprintf(" You were credited %.1f hours.", *n.ApprovedHours)
	}
	if n.Feedback != nil && *n.Feedback != "" {
		text += "\n\nReviewer feedback: " + *n.Feedback
	}

	b, err := sonic.Marshal(mailMessage{To: toAddress, Subject: subject, Text: text})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.DeliveryURL, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		c.Logger.Error("mail delivery failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}
