package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftflow/internal/models"
	"draftflow/internal/repository"
)

// ---------- fakes ----------

type stubContentRepo struct {
	repository.ScheduledContentRepository
	byID          map[int64]*models.ScheduledContent
	byArticleID   map[int64]*models.ScheduledContent
	statusUpdates []string
	scheduledIDs  []int64
}

func (s *stubContentRepo) GetByID(ctx context.Context, id int64) (*models.ScheduledContent, error) {
	return s.byID[id], nil
}

func (s *stubContentRepo) GetByArticleID(ctx context.Context, articleID int64) (*models.ScheduledContent, error) {
	return s.byArticleID[articleID], nil
}

func (s *stubContentRepo) UpdateStatus(ctx context.Context, status string, id int64) error {
	s.statusUpdates = append(s.statusUpdates, status)
	return nil
}

func (s *stubContentRepo) Schedule(ctx context.Context, id int64, date time.Time, timeOfDay string) error {
	s.scheduledIDs = append(s.scheduledIDs, id)
	return nil
}

type stubProjects struct {
	owners map[int64]int64 // project id -> owning user id
}

func (s *stubProjects) Info(ctx context.Context, projectID int64) (*models.Project, error) {
	return nil, nil
}

func (s *stubProjects) List(ctx context.Context, userID int64) ([]*models.Project, error) {
	return nil, nil
}

func (s *stubProjects) CheckOwner(ctx context.Context, projectID, userID int64) (bool, error) {
	return s.owners[projectID] == userID, nil
}

type stubMedia struct {
	articleID int64
	data      []byte
}

func (m *stubMedia) UploadFeaturedImage(ctx context.Context, articleID int64, file []byte) (string, error) {
	m.articleID = articleID
	m.data = file
	return "https://assets.example.com/featured/abc.png", nil
}

// ---------- helpers ----------

func newTestApp(userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})
	return app
}

func generatedItem(id, projectID int64) *models.ScheduledContent {
	return &models.ScheduledContent{
		ID:        id,
		ProjectID: projectID,
		KeywordID: sql.NullInt64{Int64: 1, Valid: true},
		Status:    models.StatusGenerated,
	}
}

// ---------- tests ----------

func TestApproveContentOwnedItem(t *testing.T) {
	sc := &stubContentRepo{byID: map[int64]*models.ScheduledContent{5: generatedItem(5, 10)}}
	h := NewContentHandler(sc, &stubProjects{owners: map[int64]int64{10: 42}}, &stubMedia{})

	app := newTestApp("42")
	app.Post("/content/approve", h.ApproveContent)

	resp, err := app.Test(httptest.NewRequest("POST", "/content/approve?id=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{models.StatusApproved}, sc.statusUpdates)
}

func TestApproveContentForeignItemIsNotFound(t *testing.T) {
	// Item 5 belongs to project 10, which user 42 does not own.
	sc := &stubContentRepo{byID: map[int64]*models.ScheduledContent{5: generatedItem(5, 10)}}
	h := NewContentHandler(sc, &stubProjects{owners: map[int64]int64{10: 7}}, &stubMedia{})

	app := newTestApp("42")
	app.Post("/content/approve", h.ApproveContent)

	resp, err := app.Test(httptest.NewRequest("POST", "/content/approve?id=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Empty(t, sc.statusUpdates, "foreign content must not change status")
}

func TestScheduleContentForeignItemIsNotFound(t *testing.T) {
	sc := &stubContentRepo{byID: map[int64]*models.ScheduledContent{5: generatedItem(5, 10)}}
	h := NewContentHandler(sc, &stubProjects{owners: map[int64]int64{10: 7}}, &stubMedia{})

	app := newTestApp("42")
	app.Post("/content/schedule", h.ScheduleContent)

	body := bytes.NewBufferString(`{"scheduled_content_id":5,"scheduled_date":"2025-06-02"}`)
	req := httptest.NewRequest("POST", "/content/schedule", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Empty(t, sc.scheduledIDs)
}

func TestUploadFeaturedImageDeliversWholeFile(t *testing.T) {
	sc := &stubContentRepo{byArticleID: map[int64]*models.ScheduledContent{9: generatedItem(5, 10)}}
	media := &stubMedia{}
	h := NewContentHandler(sc, &stubProjects{owners: map[int64]int64{10: 42}}, media)

	app := newTestApp("42")
	app.Post("/content/featured-image", h.UploadFeaturedImage)

	// Large enough that a single short read would truncate it.
	payload := make([]byte, 256*1024)
	for i := range payload {
		payload[i] = byte(i % 251)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "featured.png")
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/content/featured-image?article_id=9", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, int64(9), media.articleID)
	require.Len(t, media.data, len(payload), "upload must not be truncated")
	assert.Equal(t, payload, media.data)
}

func TestUploadFeaturedImageForeignArticleIsNotFound(t *testing.T) {
	sc := &stubContentRepo{byArticleID: map[int64]*models.ScheduledContent{9: generatedItem(5, 10)}}
	media := &stubMedia{}
	h := NewContentHandler(sc, &stubProjects{owners: map[int64]int64{10: 7}}, media)

	app := newTestApp("42")
	app.Post("/content/featured-image", h.UploadFeaturedImage)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "featured.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/content/featured-image?article_id=9", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Nil(t, media.data)
}
