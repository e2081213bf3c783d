package publishers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/listfetch/pkg/httpclient"
)

const webhookSnippetLen = 512

// httpPublisher delivers each outcome event to a webhook as a JSON body.
type httpPublisher struct {
	id      string
	typ     string
	method  string
	url     string
	headers map[string]string
	client  *resty.Client
	log     Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("http publisher %q: http block missing", cfg.ID)
	}
	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	return &httpPublisher{
		id:      cfg.ID,
		typ:     TypeHTTP,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  httpclient.NewRestyHTTPClient(timeout),
		log:     ensureLogger(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return h.typ }

// Publish treats any non-2xx reply from the webhook as a failed delivery.
func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeaders(h.headers).
		SetHeader("Content-Type", "application/json").
		SetBody(evt).
		Execute(h.method, h.url)
	if err != nil {
		return fmt.Errorf("webhook %s %s: %w", h.method, h.url, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook %s %s: status %d: %s", h.method, h.url, resp.StatusCode(), webhookSnippet(resp.Body()))
	}
	h.log.DebugObj("outcome delivered to webhook", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"target_id":    evt.TargetID,
		"status":       resp.StatusCode(),
	})
	return nil
}

func webhookSnippet(body []byte) string {
	if len(body) > webhookSnippetLen {
		body = body[:webhookSnippetLen]
	}
	return strings.ToValidUTF8(strings.TrimSpace(string(body)), "")
}
