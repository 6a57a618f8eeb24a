package edit

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/liliping230531-pixel/qushuiyin/internal/picture"
)

// maxResponseBytes caps the decoded response payload (64 MiB).
const maxResponseBytes = 64 << 20

// Client talks to a remote inpainting service: one multipart POST with
// the source image and the mask, one image payload back.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ Editor = (*Client)(nil)

// NewClient creates a client for the configured endpoint.
func NewClient(cfg Config) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: cfg.Timeout()},
	}
}

// Name implements Editor.
func (c *Client) Name() string {
	return "remote"
}

// Edit implements Editor. Network failures, quota responses, and
// malformed payloads all surface as errors; the caller decides whether
// to retry or fall back to the local engine.
func (c *Client) Edit(ctx context.Context, img image.Image, mask image.Image) (image.Image, error) {
	if err := validate(img, mask); err != nil {
		return nil, err
	}

	body, contentType, err := encodeRequest(img, mask)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build edit request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("edit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("edit service returned %s: %s", resp.Status, bytes.TrimSpace(detail))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read edit response: %w", err)
	}

	result, err := picture.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("edit service returned a malformed image: %w", err)
	}

	log.Debug().
		Str("endpoint", c.endpoint).
		Int64("duration(ms)", time.Since(start).Milliseconds()).
		Int("bytes", len(data)).
		Msg("remote edit complete")

	return result.Image, nil
}

// encodeRequest builds the multipart body: PNG-encoded "image" and
// "mask" parts with matching dimensions.
func encodeRequest(img, mask image.Image) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	for _, part := range []struct {
		field string
		img   image.Image
	}{
		{"image", img},
		{"mask", mask},
	} {
		w, err := mw.CreateFormFile(part.field, part.field+".png")
		if err != nil {
			return nil, "", fmt.Errorf("failed to build multipart body: %w", err)
		}
		if err := png.Encode(w, part.img); err != nil {
			return nil, "", fmt.Errorf("failed to encode %s: %w", part.field, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return body, mw.FormDataContentType(), nil
}
