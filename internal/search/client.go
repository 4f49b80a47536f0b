package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strconv"
	"strings"
	"time"
)

// Dispatcher issues a search request and always yields a
// response-shaped value: success or an error-kind response, never a
// raw transport error.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) Response
}

const (
	textSearchPath  = "/api/search/text"
	imageSearchPath = "/api/search/image"
	videoSearchPath = "/api/search/video"
)

// transportFailureMessage is the generic message used when the request
// never produced a server response at all.
const transportFailureMessage = "search request failed"

// Client talks to the search API over HTTP.
type Client struct {
	baseURL   string
	userAgent string
	apiKey    string
	client    *http.Client
}

// NewClient creates a search API client.
func NewClient(baseURL, userAgent, apiKey string, timeout time.Duration) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "ContextSeek/0.1"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		apiKey:    strings.TrimSpace(apiKey),
		client:    &http.Client{Timeout: timeout},
	}
}

// Dispatch routes a request to the matching endpoint.
func (c *Client) Dispatch(ctx context.Context, req Request) Response {
	switch r := req.(type) {
	case TextRequest:
		return c.SearchText(ctx, r)
	case ImageRequest:
		return c.SearchImage(ctx, r)
	case VideoRequest:
		return c.SearchVideo(ctx, r)
	}
	return Errorf("unsupported request type %T", req)
}

// SearchText submits a text query as a JSON body.
func (c *Client) SearchText(ctx context.Context, req TextRequest) Response {
	payload := struct {
		Text    string   `json:"text"`
		Sources []string `json:"sources"`
	}{Text: req.Text, Sources: make([]string, 0, len(req.Sources))}
	for _, src := range req.Sources {
		payload.Sources = append(payload.Sources, string(src))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Errorf("failed to encode request")
	}
	return c.post(ctx, KindText, textSearchPath, "application/json", bytes.NewReader(body))
}

// SearchImage submits a reverse image search as a multipart form with
// the file plus the search_faces and search_social flags.
func (c *Client) SearchImage(ctx context.Context, req ImageRequest) Response {
	if req.File == nil {
		return Errorf("no image selected")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := writeFilePart(w, "file", req.File); err != nil {
		return Errorf("failed to read %s", req.File.Name)
	}
	w.WriteField("search_faces", strconv.FormatBool(req.SearchFaces))
	w.WriteField("search_social", strconv.FormatBool(req.SearchSocial))
	if err := w.Close(); err != nil {
		return Errorf("failed to encode request")
	}

	return c.post(ctx, KindImage, imageSearchPath, w.FormDataContentType(), &buf)
}

// SearchVideo submits either the pasted URL as a JSON body or the
// selected file as a multipart form.
func (c *Client) SearchVideo(ctx context.Context, req VideoRequest) Response {
	if req.URL != "" {
		body, err := json.Marshal(struct {
			URL string `json:"url"`
		}{req.URL})
		if err != nil {
			return Errorf("failed to encode request")
		}
		return c.post(ctx, KindVideo, videoSearchPath, "application/json", bytes.NewReader(body))
	}

	if req.File == nil {
		return Errorf("no video selected")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := writeFilePart(w, "file", req.File); err != nil {
		return Errorf("failed to read %s", req.File.Name)
	}
	if err := w.Close(); err != nil {
		return Errorf("failed to encode request")
	}

	return c.post(ctx, KindVideo, videoSearchPath, w.FormDataContentType(), &buf)
}

// post submits the wire request and normalizes every failure mode into
// an error-kind response. Nothing escapes this boundary as a Go error.
func (c *Client) post(ctx context.Context, kind Kind, path, contentType string, body io.Reader) Response {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return Errorf("failed to create request")
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Errorf(transportFailureMessage)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Errorf(transportFailureMessage)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Errorf("%s", httpErrorMessage(resp.StatusCode, raw))
	}

	decoded, err := DecodeResponse(kind, raw)
	if err != nil {
		return Errorf("unexpected response from server")
	}
	return decoded
}

// httpErrorMessage extracts a detail or message field from a JSON error
// body, falling back to a status-code message when the body is not JSON
// or carries neither field.
func httpErrorMessage(status int, body []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return fmt.Sprintf("HTTP error: %d", status)
}

// writeFilePart streams a validated file into a multipart field,
// carrying its sniffed content type.
func writeFilePart(w *multipart.Writer, field string, file *ValidatedFile) error {
	f, err := os.Open(file.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.Name))
	header.Set("Content-Type", file.ContentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}
