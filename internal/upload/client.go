// Package upload serializes records into the wire format the backend
// expects and performs the per-record upload requests. One kind (Experience)
// sends multipart with photo bytes; the rest send plain JSON.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/keepsakeapp/keepsake/internal/common"
	"github.com/keepsakeapp/keepsake/internal/logging"
	"github.com/keepsakeapp/keepsake/internal/models"
)

// API is the uploader surface the sync engine drives. A nil error means the
// backend confirmed the record.
type API interface {
	UploadExperience(ctx context.Context, e *models.Experience) error
	UploadEmotion(ctx context.Context, c *models.EmotionCapture) error
	UploadMessage(ctx context.Context, m *models.ChatMessage) error
	UploadHealth(ctx context.Context, h *models.HealthEntry) error
}

// BlobReader supplies photo bytes at upload time. Bytes are read fresh for
// every attempt so local edits between sessions are always reflected.
type BlobReader interface {
	Read(name string) ([]byte, error)
}

const defaultTimeout = 30 * time.Second

// Client implements API against an HTTP backend.
type Client struct {
	baseURL func() string // resolved per request: the URL is user-settable at runtime
	http    *http.Client
	blobs   BlobReader
	log     logging.Logger

	// Per-attempt backoff. Exhausting it leaves the record pending for the
	// next session, so the cap stays small.
	maxRetries    uint64
	retryInterval time.Duration
}

type ClientOption func(*Client)

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func NewClient(baseURL func() string, blobs BlobReader, log logging.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       baseURL,
		http:          &http.Client{Timeout: defaultTimeout},
		blobs:         blobs,
		log:           log,
		maxRetries:    2,
		retryInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) UploadEmotion(ctx context.Context, capture *models.EmotionCapture) error {
	payload := struct {
		Emotion   string  `json:"emotion"`
		Intensity int     `json:"intensity"`
		Context   *string `json:"context,omitempty"`
		CreatedAt string  `json:"created_at"`
	}{
		Emotion:   capture.Emotion,
		Intensity: capture.Intensity,
		Context:   capture.Context,
		CreatedAt: capture.CreatedAt.Format(time.RFC3339),
	}
	return c.postJSON(ctx, "/emotions", payload)
}

func (c *Client) UploadMessage(ctx context.Context, m *models.ChatMessage) error {
	payload := struct {
		Speaker   string  `json:"speaker"`
		Text      string  `json:"text"`
		Emotion   *string `json:"emotion,omitempty"`
		CreatedAt string  `json:"created_at"`
	}{
		Speaker:   string(m.Speaker),
		Text:      m.Text,
		Emotion:   m.Emotion,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
	return c.postJSON(ctx, "/messages", payload)
}

func (c *Client) UploadHealth(ctx context.Context, h *models.HealthEntry) error {
	payload := struct {
		TrackedDate     string  `json:"tracked_date"`
		Abstained       bool    `json:"abstained"`
		DrinksCount     int     `json:"drinks_count"`
		Exercised       bool    `json:"exercised"`
		ExerciseMinutes int     `json:"exercise_minutes"`
		Mood            *int    `json:"mood,omitempty"`
		Energy          *int    `json:"energy,omitempty"`
		Notes           *string `json:"notes,omitempty"`
	}{
		TrackedDate:     h.TrackedDate,
		Abstained:       h.Abstained,
		DrinksCount:     h.DrinksCount,
		Exercised:       h.Exercised,
		ExerciseMinutes: h.ExerciseMinutes,
		Mood:            h.Mood,
		Energy:          h.Energy,
		Notes:           h.Notes,
	}
	return c.postJSON(ctx, "/health", payload)
}

// postJSON sends one scalar-only record. A 2xx status is success.
func (c *Client) postJSON(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	return c.withRetry(ctx, func(ctx context.Context) error {
		resp, err := c.do(ctx, path, "application/json", bytes.NewReader(body))
		if err != nil {
			return retry.RetryableError(err)
		}
		defer drain(resp)
		return statusError(resp)
	})
}

func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	url := strings.TrimRight(c.baseURL(), "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.http.Do(req)
}

// withRetry runs one upload with a short jittered exponential backoff.
// Transport errors and 5xx responses are retried; anything the server
// actively rejected is not.
func (c *Client) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(c.maxRetries, retry.WithJitter(100*time.Millisecond,
		retry.NewExponential(c.retryInterval)))
	return retry.Do(ctx, b, fn)
}

// statusError classifies a response: nil on 2xx, retryable on 5xx,
// permanent otherwise.
func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500:
		return retry.RetryableError(fmt.Errorf("%w: status %s", common.ErrUploadRejected, resp.Status))
	default:
		return fmt.Errorf("%w: status %s", common.ErrUploadRejected, resp.Status)
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
