package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	config "draftflow/configs"
	"draftflow/internal/logger"
	"draftflow/internal/models"
	"draftflow/internal/repository"
	"draftflow/pkg/utils"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// GenerationService is the body of the generation task: it asks the resolved
// provider for an article, renders it, and moves the item to generated
// status.
type GenerationService interface {
	GenerateArticle(ctx context.Context, scheduledContentID, providerID int64) error
}

type generationService struct {
	cfg    config.Config
	sc     repository.ScheduledContentRepository
	kw     repository.KeywordRepository
	ar     repository.ArticleRepository
	ap     repository.AiProviderRepository
	client *http.Client
	md     goldmark.Markdown
}

func NewGenerationService(
	cfg config.Config,
	sc repository.ScheduledContentRepository,
	kw repository.KeywordRepository,
	ar repository.ArticleRepository,
	ap repository.AiProviderRepository) GenerationService {
	return &generationService{
		cfg:    cfg,
		sc:     sc,
		kw:     kw,
		ar:     ar,
		ap:     ap,
		client: &http.Client{Timeout: 5 * time.Minute},
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (s *generationService) GenerateArticle(ctx context.Context, scheduledContentID, providerID int64) error {
	item, err := s.sc.GetByID(ctx, scheduledContentID)
	if err != nil {
		return err
	}
	if item == nil {
		logger.Log.Warn("scheduled content gone, dropping task", zap.Int64("scheduled_content_id", scheduledContentID))
		return nil
	}
	// Only queued (or retried failed) items are generated; stale tasks for
	// items that moved on are dropped quietly.
	if item.Status != models.StatusQueued && item.Status != models.StatusFailed {
		logger.Log.Warn("scheduled content not queued, dropping task",
			zap.Int64("scheduled_content_id", scheduledContentID),
			zap.String("status", item.Status))
		return nil
	}
	if !item.KeywordID.Valid {
		return fmt.Errorf("scheduled content %d has no keyword", scheduledContentID)
	}

	keyword, err := s.kw.GetByID(ctx, item.KeywordID.Int64)
	if err != nil {
		return err
	}
	if keyword == nil {
		return fmt.Errorf("keyword %d not found", item.KeywordID.Int64)
	}

	provider, err := s.ap.GetByID(ctx, providerID)
	if err != nil {
		return err
	}
	if provider == nil {
		return fmt.Errorf("ai provider %d not found", providerID)
	}

	markdown, err := s.callProvider(ctx, provider, item, keyword.Keyword)
	if err != nil {
		if statusErr := s.sc.UpdateStatus(ctx, models.StatusFailed, item.ID); statusErr != nil {
			logger.Log.Error("mark generation failed", zap.Error(statusErr))
		}
		return err
	}

	title := item.Title.String
	if title == "" {
		title = extractTitle(markdown, keyword.Keyword)
	}

	var html bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &html); err != nil {
		return err
	}

	excerpt := Truncate(firstParagraph(markdown), 300)

	articleID, err := s.ar.Create(ctx, &models.Article{
		ProjectID:       item.ProjectID,
		Title:           title,
		Slug:            Slugify(title),
		HTMLBody:        html.String(),
		MarkdownBody:    markdown,
		MetaDescription: sql.NullString{String: Truncate(firstParagraph(markdown), 160), Valid: true},
		Excerpt:         sql.NullString{String: excerpt, Valid: excerpt != ""},
		Tags:            []string{item.ContentType},
	})
	if err != nil {
		return err
	}

	if err := s.sc.SetArticle(ctx, item.ID, articleID); err != nil {
		return err
	}

	logger.Log.Info("article generated",
		zap.Int64("scheduled_content_id", item.ID),
		zap.Int64("article_id", articleID),
		zap.String("ai_provider", provider.Name))

	return nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *generationService) callProvider(ctx context.Context, provider *models.AiProvider, item *models.ScheduledContent, keyword string) (string, error) {
	apiKey, err := utils.Decrypt(provider.APIKey, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("decrypting provider key: %w", err)
	}

	systemPrompt := fmt.Sprintf(
		"You are a content writer. Write a %s article in Markdown, around %d words, in a %s tone. Start with a single H1 title.",
		strings.ReplaceAll(item.ContentType, "_", " "), item.TargetWordCount, item.Tone)

	body, err := json.Marshal(chatRequest{
		Model: provider.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Write the article for the keyword: %q", keyword)},
		},
	})
	if err != nil {
		return "", err
	}

	baseURL := provider.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(baseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(respBody[:min(len(respBody), 512)]))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("provider returned no content")
	}

	return parsed.Choices[0].Message.Content, nil
}

func extractTitle(markdown, fallback string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return fallback
}

func firstParagraph(markdown string) string {
	for _, block := range strings.Split(markdown, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || strings.HasPrefix(block, "#") {
			continue
		}
		return strings.ReplaceAll(block, "\n", " ")
	}
	return ""
}
