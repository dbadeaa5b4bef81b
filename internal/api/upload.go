package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"ripple/internal/models"
	"ripple/internal/observability"
)

// UploadResponse is the payload returned by the upload endpoint.
type UploadResponse struct {
	URL string `json:"url"`
}

// Upload sends media bytes as a multipart request and returns the remote
// URL. Any failure is classified as UploadError so the enclosing send
// operation aborts without partially publishing.
func (c *Client) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", models.NewValidationError("upload payload is empty")
	}

	token, err := c.tokens.Token()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename=%q`, filename)}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", models.NewUploadError(err)
	}
	if _, err := part.Write(data); err != nil {
		return "", models.NewUploadError(err)
	}
	if err := writer.Close(); err != nil {
		return "", models.NewUploadError(err)
	}

	ctx, finish := observability.StartAPISpan(ctx, http.MethodPost, "/upload")
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		finish(0, err)
		return "", models.NewUploadError(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		finish(0, err)
		c.logger.LogError(ctx, http.MethodPost, "/upload", err)
		return "", models.NewUploadError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	observability.APIRequestLatency.WithLabelValues(http.MethodPost, "/upload").Observe(time.Since(start).Seconds())
	c.logger.LogRequest(ctx, http.MethodPost, "/upload", resp.StatusCode, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody errorBody
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		msg := errBody.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		mapped := models.NewUploadError(fmt.Errorf("upload rejected with status %d: %s", resp.StatusCode, msg))
		finish(resp.StatusCode, mapped)
		return "", mapped
	}

	var out UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		finish(resp.StatusCode, err)
		return "", models.NewUploadError(err)
	}
	finish(resp.StatusCode, nil)
	return out.URL, nil
}
