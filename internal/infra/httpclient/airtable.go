package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/nystar1/midnight/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// AirtableClient mirrors approved projects into the Airtable base acting as
// the external system of record.
type AirtableClient struct {
	BaseURL    string
	APIKey     string
	BaseID     string
	Table      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewAirtableClient(cfg *config.Config, log *zap.Logger) *AirtableClient {
	return &AirtableClient{
		BaseURL: cfg.Airtable.BaseURL,
		APIKey:  cfg.Airtable.APIKey,
		BaseID:  cfg.Airtable.BaseID,
		Table:   cfg.Airtable.Table,
		HTTPClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
	}
}

// ApprovedProjectPayload carries the merged user/project/submission fields for
// an Airtable row. The caller is responsible for the merge precedence.
type ApprovedProjectPayload struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Birthday     string `json:"birthday"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	ZipCode      string `json:"zip_code"`

	ProjectTitle       string   `json:"project_title"`
	Description        string   `json:"description"`
	PlayableURL        string   `json:"playable_url"`
	RepoURL            string   `json:"repo_url"`
	ScreenshotURL      string   `json:"screenshot_url"`
	ApprovedHours      *float64 `json:"approved_hours,omitempty"`
	HoursJustification *string  `json:"hours_justification,omitempty"`
}

func (p ApprovedProjectPayload) fields() map[string]any {
	fields := map[string]any{
		"First Name":     p.FirstName,
		"Last Name":      p.LastName,
		"Email":          p.Email,
		"Birthday":       p.Birthday,
		"Address Line 1": p.AddressLine1,
		"Address Line 2": p.AddressLine2,
		"City":           p.City,
		"State":          p.State,
		"Country":        p.Country,
		"ZIP Code":       p.ZipCode,
		"Project Title":  p.ProjectTitle,
		"Description":    p.Description,
		"Playable URL":   p.PlayableURL,
		"Code URL":       p.RepoURL,
		"Screenshot":     p.ScreenshotURL,
	}
	if p.ApprovedHours != nil {
		fields["Approved Hours"] = *p.ApprovedHours
	}
	if p.HoursJustification != nil {
		fields["Hours Justification"] = *p.HoursJustification
	}
	return fields
}

type airtableRecord struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

func (c *AirtableClient) tableURL() string {
	return fmt.Sprintf("%s/%s/%s", c.BaseURL, c.BaseID, url.PathEscape(c.Table))
}

func (c *AirtableClient) send(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	b, err := sonic.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Logger.Error("airtable request failed",
			zap.String("method", method),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// CreateApprovedProject creates the Airtable row for a newly approved project
// and returns its record id.
func (c *AirtableClient) CreateApprovedProject(ctx context.Context, payload ApprovedProjectPayload) (string, error) {
	respBody, err := c.send(ctx, http.MethodPost, c.tableURL(), airtableRecord{Fields: payload.fields()})
	if err != nil {
		return "", err
	}

	var rec airtableRecord
	if err := sonic.Unmarshal(respBody, &rec); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if rec.ID == "" {
		return "", fmt.Errorf("airtable response missing record id")
	}
	return rec.ID, nil
}

// UpdateApprovedProject patches only the supplied fields on an existing row.
func (c *AirtableClient) UpdateApprovedProject(ctx context.Context, recordID string, fields map[string]any) error {
	endpoint := fmt.Sprintf("%s/%s", c.tableURL(), recordID)
	_, err := c.send(ctx, http.MethodPatch, endpoint, airtableRecord{Fields: fields})
	return err
}
