package publisher

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPublishSignsPayload(t *testing.T) {
	const secret = "hook-secret"

	var gotBody []byte
	var gotSignature, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSignature = r.Header.Get("X-Draftflow-Signature")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewWebhookPublisher()
	content := &PublishableContent{ID: 7, Title: "Best Budget Laptops", Slug: "best-budget-laptops"}

	res, err := p.Publish(context.Background(), content, map[string]string{
		"url":    srv.URL,
		"secret": secret,
	})
	require.NoError(t, err)
	assert.Equal(t, TypeWebhook, res.IntegrationType)
	assert.Contains(t, res.Detail, "200")

	assert.Equal(t, "application/json", gotContentType)

	var envelope struct {
		Event   string         `json:"event"`
		Article map[string]any `json:"article"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &envelope))
	assert.Equal(t, "article.published", envelope.Event)
	assert.Equal(t, "Best Budget Laptops", envelope.Article["title"])

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSignature)
}

func TestWebhookPublishNoSecretSkipsSignature(t *testing.T) {
	var gotSignature string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Draftflow-Signature")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewWebhookPublisher()
	_, err := p.Publish(context.Background(), &PublishableContent{ID: 1}, map[string]string{"url": srv.URL})
	require.NoError(t, err)
	assert.Empty(t, gotSignature)
}

func TestWebhookPublishNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such endpoint", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewWebhookPublisher()
	_, err := p.Publish(context.Background(), &PublishableContent{ID: 1}, map[string]string{"url": srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestWebhookTestPings(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewWebhookPublisher()
	res, err := p.Test(context.Background(), map[string]string{"url": srv.URL})
	require.NoError(t, err)
	assert.Equal(t, TypeWebhook, res.IntegrationType)
	assert.JSONEq(t, `{"event":"ping"}`, string(gotBody))
}
