package poster

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/k1LoW/errors"
	"github.com/lestrrat-go/backoff/v2"
)

// PublishPayload is the JSON body POSTed to the webhook endpoint after a
// poster is rendered.
type PublishPayload struct {
	Image     string `json:"image"` // PNG as a base64 data URL
	EventName string `json:"event_name"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Place     string `json:"place"`
	Address   string `json:"address"`
}

// Publisher delivers rendered posters to a fixed webhook endpoint. Delivery
// failures are reported to the caller as ordinary errors to be surfaced as
// non-fatal status messages; they never abort poster generation.
type Publisher struct {
	endpoint   string
	httpClient *http.Client
	policy     backoff.Policy
	logger     *slog.Logger
}

func NewPublisher(endpoint string, httpClient *http.Client, logger *slog.Logger) (*Publisher, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("webhook endpoint is required")
	}
	if httpClient == nil {
		httpClient = newRetryClient(logger)
	}
	return &Publisher{
		endpoint:   endpoint,
		httpClient: httpClient,
		policy: backoff.Exponential(
			backoff.WithMinInterval(500*time.Millisecond),
			backoff.WithMaxRetries(1),
		),
		logger: logger,
	}, nil
}

// Publish POSTs the poster and its event fields to the webhook. Success is
// HTTP 200 exactly; anything else is returned as an error after the retry
// budget is spent.
func (p *Publisher) Publish(ctx context.Context, result *RenderResult, rec EventRecord) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	payload := PublishPayload{
		Image:     "data:image/png;base64," + base64.StdEncoding.EncodeToString(result.PNG),
		EventName: rec.TitleText(),
		Date:      rec.Date,
		Time:      rec.Time,
		Place:     rec.Venue,
		Address:   rec.Address,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	b := p.policy.Start(ctx)
	for backoff.Continue(b) {
		err = p.post(ctx, body)
		if err == nil {
			p.logger.Info("published poster", slog.String("endpoint", p.endpoint))
			return nil
		}
		p.logger.Warn("retrying webhook delivery", slog.String("error", err.Error()))
	}
	if err == nil {
		err = ctx.Err()
	}
	return fmt.Errorf("webhook delivery failed: %w", err)
}

func (p *Publisher) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	res, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("status code %d", res.StatusCode)
	}
	return nil
}
