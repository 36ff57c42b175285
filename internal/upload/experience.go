package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/keepsakeapp/keepsake/internal/common"
	"github.com/keepsakeapp/keepsake/internal/models"
)

// UploadExperience sends one experience as multipart form data: every scalar
// field as a named part plus one binary "images" part per referenced photo.
// Success requires a 2xx response AND a body that parses to
// {"success": true}; a 2xx with no readable success field is a failure, so
// a malformed response is never trusted silently.
func (c *Client) UploadExperience(ctx context.Context, e *models.Experience) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		body, contentType, err := c.encodeExperience(ctx, e)
		if err != nil {
			return err
		}
		resp, err := c.do(ctx, "/experiences", contentType, body)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer drain(resp)
		if err := statusError(resp); err != nil {
			return err
		}

		var ack struct {
			Success *bool `json:"success"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&ack); err != nil {
			return fmt.Errorf("%w: unreadable success indicator: %v", common.ErrUploadRejected, err)
		}
		if ack.Success == nil {
			return fmt.Errorf("%w: response has no success indicator", common.ErrUploadRejected)
		}
		if !*ack.Success {
			return fmt.Errorf("%w: server reported success=false", common.ErrUploadRejected)
		}
		return nil
	})
}

// encodeExperience builds the multipart body. Photo bytes come from the blob
// manager at call time, never from a cache, so edits between attempts are
// picked up. A referenced photo whose blob is missing is skipped with a
// warning rather than failing the whole record.
func (c *Client) encodeExperience(ctx context.Context, e *models.Experience) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":       e.Title,
		"description": e.Description,
		// RFC 3339 keeps the original UTC offset on the wire.
		"experienced_at": e.ExperiencedAt.Format(time.RFC3339),
	}
	addOptString(fields, "place_name", e.PlaceName)
	addOptString(fields, "area", e.Area)
	addOptString(fields, "emotion", e.Emotion)
	addOptString(fields, "mood", e.Mood)
	addOptString(fields, "importance", e.Importance)
	addOptString(fields, "memorable_moment", e.MemorableMoment)
	addOptInt(fields, "overall_rating", e.Rating)
	addOptInt(fields, "emotional_intensity", e.EmotionIntensity)
	addOptFloat(fields, "latitude", e.Latitude)
	addOptFloat(fields, "longitude", e.Longitude)

	if len(e.Photos) > 0 {
		captions := make([]string, len(e.Photos))
		for i, p := range e.Photos {
			captions[i] = p.Caption
		}
		fields["captions"] = strings.Join(captions, ",")
	}

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	for _, p := range e.Photos {
		data, err := c.blobs.Read(p.Filename)
		if err != nil {
			c.log.Warn(ctx, "photo blob missing, uploading without it",
				"experience_id", e.ID, "filename", p.Filename, "error", err)
			continue
		}
		part, err := w.CreateFormFile("images", p.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", fmt.Errorf("failed to write image part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func addOptString(fields map[string]string, name string, v *string) {
	if v != nil {
		fields[name] = *v
	}
}

func addOptInt(fields map[string]string, name string, v *int) {
	if v != nil {
		fields[name] = strconv.Itoa(*v)
	}
}

func addOptFloat(fields map[string]string, name string, v *float64) {
	if v != nil {
		fields[name] = strconv.FormatFloat(*v, 'f', -1, 64)
	}
}
