// Package publisher defines the outbound integration contract. Each external
// platform implements Publisher once; the factory selects the implementation
// by integration-type identifier.
package publisher

import (
	"context"
	"fmt"
	"time"

	config "draftflow/configs"
	"draftflow/internal/models"
)

// PublishableContent is the normalized payload handed to publishers. It
// decouples every implementation from the article's storage shape.
type PublishableContent struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	HTMLBody         string    `json:"html_body"`
	MarkdownBody     string    `json:"markdown_body"`
	MetaDescription  string    `json:"meta_description,omitempty"`
	Excerpt          string    `json:"excerpt,omitempty"`
	FeaturedImageURL string    `json:"featured_image_url,omitempty"`
	Tags             []string  `json:"tags"`
	CreatedAt        time.Time `json:"created_at"`
}

// Map returns the full normalized representation, used by publishers that
// forward the payload wholesale (webhooks).
func (c *PublishableContent) Map() map[string]any {
	return map[string]any{
		"id":                 c.ID,
		"title":              c.Title,
		"slug":               c.Slug,
		"html_body":          c.HTMLBody,
		"markdown_body":      c.MarkdownBody,
		"meta_description":   c.MetaDescription,
		"excerpt":            c.Excerpt,
		"featured_image_url": c.FeaturedImageURL,
		"tags":               c.Tags,
		"created_at":         c.CreatedAt,
	}
}

func FromArticle(a *models.Article) *PublishableContent {
	return &PublishableContent{
		ID:               a.ID,
		Title:            a.Title,
		Slug:             a.Slug,
		HTMLBody:         a.HTMLBody,
		MarkdownBody:     a.MarkdownBody,
		MetaDescription:  a.MetaDescription.String,
		Excerpt:          a.Excerpt.String,
		FeaturedImageURL: a.FeaturedImageURL.String,
		Tags:             a.Tags,
		CreatedAt:        a.CreatedAt,
	}
}

// Result describes a successful publish or connectivity test with enough
// detail to build a notification.
type Result struct {
	IntegrationType string `json:"integration_type"`
	Detail          string `json:"detail"`
	ExternalURL     string `json:"external_url,omitempty"`
}

type Publisher interface {
	Type() string
	Publish(ctx context.Context, content *PublishableContent, cfg map[string]string) (*Result, error)
	// Test verifies connectivity and credentials outside the publish flow.
	Test(ctx context.Context, cfg map[string]string) (*Result, error)
	// ValidateCredentials returns one message per missing or malformed
	// config field; an empty slice means the config is usable.
	ValidateCredentials(cfg map[string]string) []string
}

const (
	TypeWebhook   = "webhook"
	TypeWordPress = "wordpress"
	TypeBlogger   = "blogger"
)

type Factory struct {
	publishers map[string]Publisher
}

func NewFactory(cfg config.Config) *Factory {
	f := &Factory{publishers: make(map[string]Publisher)}
	f.Register(NewWebhookPublisher())
	f.Register(NewWordPressPublisher())
	f.Register(NewBloggerPublisher(cfg))
	return f
}

func (f *Factory) Register(p Publisher) {
	f.publishers[p.Type()] = p
}

func (f *Factory) ForType(integrationType string) (Publisher, error) {
	p, ok := f.publishers[integrationType]
	if !ok {
		return nil, fmt.Errorf("no publisher registered for type %q", integrationType)
	}
	return p, nil
}

func (f *Factory) Types() []string {
	types := make([]string, 0, len(f.publishers))
	for t := range f.publishers {
		types = append(types, t)
	}
	return types
}
