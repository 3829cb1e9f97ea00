package publisher

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// webhookPublisher POSTs the normalized payload as JSON. When a secret is
// configured the body is signed with HMAC-SHA256 in X-Draftflow-Signature.
type webhookPublisher struct {
	client *http.Client
}

func NewWebhookPublisher() Publisher {
	return &webhookPublisher{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *webhookPublisher) Type() string {
	return TypeWebhook
}

func (p *webhookPublisher) Publish(ctx context.Context, content *PublishableContent, cfg map[string]string) (*Result, error) {
	body := map[string]any{
		"event":   "article.published",
		"article": content.Map(),
	}

	status, err := p.send(ctx, cfg, body)
	if err != nil {
		return nil, err
	}

	return &Result{
		IntegrationType: TypeWebhook,
		Detail:          fmt.Sprintf("webhook accepted with status %d", status),
	}, nil
}

func (p *webhookPublisher) Test(ctx context.Context, cfg map[string]string) (*Result, error) {
	status, err := p.send(ctx, cfg, map[string]any{"event": "ping"})
	if err != nil {
		return nil, err
	}

	return &Result{
		IntegrationType: TypeWebhook,
		Detail:          fmt.Sprintf("ping accepted with status %d", status),
	}, nil
}

func (p *webhookPublisher) ValidateCredentials(cfg map[string]string) []string {
	var errs []string
	url := cfg["url"]
	if url == "" {
		errs = append(errs, "url is required")
	} else if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		errs = append(errs, "url must start with http:// or https://")
	}
	return errs
}

func (p *webhookPublisher) send(ctx context.Context, cfg map[string]string, body map[string]any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg["url"], bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	if secret := cfg["secret"]; secret != "" {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(payload)
		req.Header.Set("X-Draftflow-Signature", hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return resp.StatusCode, nil
}
