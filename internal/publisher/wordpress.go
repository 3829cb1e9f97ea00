package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// wordpressPublisher creates posts through the WordPress REST API using an
// application password.
type wordpressPublisher struct {
	client *http.Client
}

func NewWordPressPublisher() Publisher {
	return &wordpressPublisher{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *wordpressPublisher) Type() string {
	return TypeWordPress
}

func (p *wordpressPublisher) Publish(ctx context.Context, content *PublishableContent, cfg map[string]string) (*Result, error) {
	post := map[string]any{
		"title":   content.Title,
		"slug":    content.Slug,
		"content": content.HTMLBody,
		"excerpt": content.Excerpt,
		"status":  "publish",
	}

	payload, err := json.Marshal(post)
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimSuffix(cfg["site_url"], "/") + "/wp-json/wp/v2/posts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(cfg["username"], cfg["app_password"])

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wordpress returned status %d: %s", resp.StatusCode, string(body))
	}

	var created struct {
		ID   int64  `json:"id"`
		Link string `json:"link"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("unexpected wordpress response: %w", err)
	}

	return &Result{
		IntegrationType: TypeWordPress,
		Detail:          fmt.Sprintf("created wordpress post %d", created.ID),
		ExternalURL:     created.Link,
	}, nil
}

func (p *wordpressPublisher) Test(ctx context.Context, cfg map[string]string) (*Result, error) {
	endpoint := strings.TrimSuffix(cfg["site_url"], "/") + "/wp-json/wp/v2/users/me"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(cfg["username"], cfg["app_password"])

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wordpress credential check returned status %d", resp.StatusCode)
	}

	return &Result{
		IntegrationType: TypeWordPress,
		Detail:          "wordpress credentials verified",
	}, nil
}

func (p *wordpressPublisher) ValidateCredentials(cfg map[string]string) []string {
	var errs []string
	if cfg["site_url"] == "" {
		errs = append(errs, "site_url is required")
	} else if !strings.HasPrefix(cfg["site_url"], "http") {
		errs = append(errs, "site_url must be an http(s) URL")
	}
	if cfg["username"] == "" {
		errs = append(errs, "username is required")
	}
	if cfg["app_password"] == "" {
		errs = append(errs, "app_password is required")
	}
	return errs
}
