package httpclient

import (
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

// HackatimeClient queries the Hackatime time-tracking service.
type HackatimeClient struct {
	AdminBaseURL string
	StatsBaseURL string
	APIKey       string
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

func NewHackatimeClient(cfg *config.Config, log *zap.Logger) *HackatimeClient {
	return &HackatimeClient{
		AdminBaseURL: cfg.Hackatime.AdminBaseURL,
		StatsBaseURL: cfg.Hackatime.StatsBaseURL,
		APIKey:       cfg.Hackatime.APIKey,
		HTTPClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
	}
}

func (c *HackatimeClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.Logger.Error("hackatime request failed",
			zap.String("endpoint", endpoint),
			zap.Int("status_code", resp.StatusCode))
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return body, nil
}

// ProjectDurations returns every project the account has tracked, mapped to
// its total duration in seconds. The endpoint's shape varies: a bare list of
// names or objects, a {projects: [...]} wrapper, or a single object. Entries
// without a duration count as zero.
func (c *HackatimeClient) ProjectDurations(ctx context.Context, account string) (map[string]float64, error) {
	endpoint := fmt.Sprintf("%s/user/projects?id=%s", c.AdminBaseURL, url.QueryEscape(account))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var raw any
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	durations := make(map[string]float64)
	addEntry := func(entry any) {
		switch e := entry.(type) {
		case string:
			if _, ok := durations[e]; !ok {
				durations[e] = 0
			}
		case map[string]any:
			name, _ := e["name"].(string)
			if name == "" {
				name, _ = e["projectName"].(string)
			}
			if name == "" {
				return
			}
			seconds, _ := e["total_duration"].(float64)
			durations[name] = seconds
		}
	}

	switch data := raw.(type) {
	case []any:
		for _, entry := range data {
			addEntry(entry)
		}
	case map[string]any:
		if projects, ok := data["projects"].([]any); ok {
			for _, entry := range projects {
				addEntry(entry)
			}
		} else if data["name"] != nil || data["projectName"] != nil {
			addEntry(data)
		}
	}
	return durations, nil
}

type statsResponse struct {
	Data struct {
		Projects []struct {
			Name         string  `json:"name"`
			TotalSeconds float64 `json:"total_seconds"`
		} `json:"projects"`
	} `json:"data"`
}

// StatsSince returns seconds tracked per project for the account, counting
// only activity on or after the start date. This is the authoritative source
// for reconciliation; callers pick out the project names they care about.
func (c *HackatimeClient) StatsSince(ctx context.Context, account string, since time.Time) (map[string]float64, error) {
	endpoint := fmt.Sprintf("%s/api/v1/users/%s/stats?features=projects&start_date=%s",
		c.StatsBaseURL, url.PathEscape(account), since.UTC().Format("2006-01-02"))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var stats statsResponse
	if err := sonic.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	durations := make(map[string]float64, len(stats.Data.Projects))
	for _, p := range stats.Data.Projects {
		durations[p.Name] = p.TotalSeconds
	}
	return durations, nil
}
