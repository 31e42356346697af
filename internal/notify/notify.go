package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexcalc/internal/compute"
)

// Notifier reports the outcome of a batch run.
type Notifier interface {
	SendSuccess(ctx context.Context, result *compute.BatchResult, date string, duration time.Duration) error
	SendFailure(ctx context.Context, result *compute.BatchResult, date string, duration time.Duration, err error) error
}

// Client posts messages to an ntfy topic.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
	}
}

// SendSuccess publishes the zero gamma levels of a finished batch. Runs that
// found no flip for some ticker are tagged with a warning.
func (c *Client) SendSuccess(ctx context.Context, result *compute.BatchResult, date string, duration time.Duration) error {
	if !c.config.Enabled {
		return nil
	}

	title := fmt.Sprintf("GEX Levels: %s", date)
	tags := c.withTags("white_check_mark")
	if result.NoFlip > 0 || result.Failed > 0 {
		tags = c.withTags("warning")
	}

	return c.send(ctx, title, FormatSuccessMessage(result, duration), tags, c.config.Priority)
}

// SendFailure publishes a failed batch at high priority.
func (c *Client) SendFailure(ctx context.Context, result *compute.BatchResult, date string, duration time.Duration, err error) error {
	if !c.config.Enabled {
		return nil
	}

	title := fmt.Sprintf("GEX Run Failed: %s", date)
	return c.send(ctx, title, FormatFailureMessage(result, duration, err), c.withTags("x"), "high")
}

func (c *Client) withTags(extra string) string {
	if c.config.Tags == "" {
		return extra
	}
	return c.config.Tags + "," + extra
}

func (c *Client) send(ctx context.Context, title, message, tags, priority string) error {
	url := fmt.Sprintf("%s/%s", strings.TrimSuffix(c.config.Server, "/"), c.config.Topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Title", title)
	req.Header.Set("Priority", priority)
	req.Header.Set("Tags", tags)

	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("failed to send notification", zap.Error(err))
		return fmt.Errorf("sending notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("notification failed",
			zap.Int("status", resp.StatusCode),
			zap.String("url", url),
		)
		return fmt.Errorf("notification failed with status: %d", resp.StatusCode)
	}

	c.logger.Debug("notification sent", zap.String("title", title))
	return nil
}

// NoopNotifier is used when notifications are disabled.
type NoopNotifier struct{}

func (NoopNotifier) SendSuccess(_ context.Context, _ *compute.BatchResult, _ string, _ time.Duration) error {
	return nil
}

func (NoopNotifier) SendFailure(_ context.Context, _ *compute.BatchResult, _ string, _ time.Duration, _ error) error {
	return nil
}

// New creates the appropriate notifier based on config.
func New(cfg Config, logger *zap.Logger) Notifier {
	if !cfg.Enabled {
		return NoopNotifier{}
	}
	return NewClient(cfg, logger)
}
