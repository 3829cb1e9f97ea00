package publisher

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/blogger/v3"
	"google.golang.org/api/option"

	config "draftflow/configs"
)

// bloggerPublisher posts to Google Blogger. The integration config carries the
// per-blog OAuth tokens; the app-level client credentials come from Config.
type bloggerPublisher struct {
	cfg config.Config
}

func NewBloggerPublisher(cfg config.Config) Publisher {
	return &bloggerPublisher{cfg: cfg}
}

func (p *bloggerPublisher) Type() string {
	return TypeBlogger
}

func (p *bloggerPublisher) Publish(ctx context.Context, content *PublishableContent, cfg map[string]string) (*Result, error) {
	svc, err := p.service(ctx, cfg)
	if err != nil {
		return nil, err
	}

	post := &blogger.Post{
		Title:   content.Title,
		Content: content.HTMLBody,
		Labels:  content.Tags,
	}

	created, err := svc.Posts.Insert(cfg["blog_id"], post).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("blogger insert failed: %w", err)
	}

	return &Result{
		IntegrationType: TypeBlogger,
		Detail:          fmt.Sprintf("created blogger post %s", created.Id),
		ExternalURL:     created.Url,
	}, nil
}

func (p *bloggerPublisher) Test(ctx context.Context, cfg map[string]string) (*Result, error) {
	svc, err := p.service(ctx, cfg)
	if err != nil {
		return nil, err
	}

	blog, err := svc.Blogs.Get(cfg["blog_id"]).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("blogger credential check failed: %w", err)
	}

	return &Result{
		IntegrationType: TypeBlogger,
		Detail:          fmt.Sprintf("connected to blog %q", blog.Name),
		ExternalURL:     blog.Url,
	}, nil
}

func (p *bloggerPublisher) ValidateCredentials(cfg map[string]string) []string {
	var errs []string
	if cfg["blog_id"] == "" {
		errs = append(errs, "blog_id is required")
	}
	if cfg["access_token"] == "" && cfg["refresh_token"] == "" {
		errs = append(errs, "access_token or refresh_token is required")
	}
	return errs
}

func (p *bloggerPublisher) service(ctx context.Context, cfg map[string]string) (*blogger.Service, error) {
	token := &oauth2.Token{
		AccessToken:  cfg["access_token"],
		RefreshToken: cfg["refresh_token"],
	}
	if raw := cfg["token_expires_at"]; raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			token.Expiry = t
		}
	}

	ts := oauth2.StaticTokenSource(token)
	return blogger.NewService(ctx, option.WithTokenSource(ts))
}
