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

// ReviewNotification is the outcome payload shared by the email and chat
// notification channels.
type ReviewNotification struct {
	ProjectTitle  string   `json:"project_title"`
	ProjectID     int64    `json:"project_id"`
	Approved      bool     `json:"approved"`
	ApprovedHours *float64 `json:"approved_hours,omitempty"`
	Feedback      *string  `json:"feedback,omitempty"`
}

// SlackClient posts review outcomes to the program's Slack via incoming webhook.
type SlackClient struct {
	WebhookURL string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewSlackClient(cfg *config.Config, log *zap.Logger) *SlackClient {
	return &SlackClient{
		WebhookURL: cfg.Slack.WebhookURL,
		HTTPClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
	}
}

type slackMessage struct {
	Text string `json:"text"`
}

// SendReviewMessage posts the review outcome, addressing the participant by
// email since the webhook targets a fixed channel.
func (c *SlackClient) SendReviewMessage(ctx context.Context, toAddress string, n ReviewNotification) error {
	if c.WebhookURL == "" {
		return fmt.Errorf("slack webhook not configured")
	}

	verdict := "rejected"
	if n.Approved {
		verdict = "approved"
	}
	text := fmt.Sprintf("Project %q (#%d) by %s was %s.", n.ProjectTitle, n.ProjectID, toAddress, verdict)
	if n.Approved && n.ApprovedHours != nil {
		text += fmt.Sprintf(" Credited %.1f hours.", *n.ApprovedHours)
	}
	if n.Feedback != nil && *n.Feedback != "" {
		text += " Feedback: " + *n.Feedback
	}

	b, err := sonic.Marshal(slackMessage{Text: text})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.WebhookURL, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.Logger.Error("slack webhook failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}
