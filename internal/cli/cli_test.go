package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hession/contextseek/internal/config"
	"github.com/hession/contextseek/internal/search"
)

func TestVersion(t *testing.T) {
	if Version != "0.1.0" {
		t.Errorf("Expected Version to be '0.1.0', got '%s'", Version)
	}
}

func TestParseImageArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		path    string
		faces   bool
		social  bool
		wantErr bool
	}{
		{
			name:   "path only",
			args:   []string{"photo.png"},
			path:   "photo.png",
			faces:  true,
			social: true,
		},
		{
			name:   "no faces",
			args:   []string{"photo.png", "--no-faces"},
			path:   "photo.png",
			faces:  false,
			social: true,
		},
		{
			name:   "no social",
			args:   []string{"--no-social", "photo.png"},
			path:   "photo.png",
			faces:  true,
			social: false,
		},
		{
			name:   "both flags",
			args:   []string{"photo.png", "--no-faces", "--no-social"},
			path:   "photo.png",
			faces:  false,
			social: false,
		},
		{
			name:    "missing path",
			args:    []string{"--no-faces"},
			wantErr: true,
		},
		{
			name:    "two paths",
			args:    []string{"a.png", "b.png"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, faces, social, err := parseImageArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseImageArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if path != tt.path || faces != tt.faces || social != tt.social {
				t.Errorf("parseImageArgs() = (%q, %v, %v), want (%q, %v, %v)",
					path, faces, social, tt.path, tt.faces, tt.social)
			}
		})
	}
}

func testConfig(serverURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = serverURL
	cfg.Search.VideoStubDelayMS = 1
	return cfg
}

func TestSession_SearchText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search/text" {
			t.Errorf("Expected path /api/search/text, got %s", r.URL.Path)
		}
		io.WriteString(w, `{"results":[{"url":"https://a.com","title":"First Source"}]}`)
	}))
	defer server.Close()

	var out bytes.Buffer
	session, err := NewSession(testConfig(server.URL), &out)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer session.Close()

	if err := session.SearchText(context.Background(), "to be or not to be"); err != nil {
		t.Fatalf("SearchText failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "Searching...") {
		t.Error("Expected the loading line before results")
	}
	if !strings.Contains(output, "First Source") {
		t.Errorf("Expected the result title in output, got:\n%s", output)
	}
	if !strings.Contains(output, "https://a.com") {
		t.Error("Expected the result URL in output")
	}
}

func TestSession_SearchText_Empty(t *testing.T) {
	// No server: empty text must never reach the network
	var out bytes.Buffer
	session, err := NewSession(testConfig("http://127.0.0.1:1"), &out)
	if err != nil {
		t.Fatal(err)
	}
	defer session.Close()

	err = session.SearchText(context.Background(), "   ")
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}
	var verr *search.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Expected *ValidationError, got %T", err)
	}
	if strings.Contains(out.String(), "Searching...") {
		t.Error("Expected no search to start for empty text")
	}
}

var pngBytes = []byte("\x89PNG\r\n\x1a\nrest-of-file")

func TestSession_SearchImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("Failed to parse multipart form: %v", err)
		}
		io.WriteString(w, `{"standard_results":{"google":[{"url":"https://a.com","title":"A"}]},"face_results":[]}`)
	}))
	defer server.Close()

	imgPath := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(imgPath, pngBytes, 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	session, err := NewSession(testConfig(server.URL), &out)
	if err != nil {
		t.Fatal(err)
	}
	defer session.Close()

	if err := session.SearchImage(context.Background(), imgPath, true, true); err != nil {
		t.Fatalf("SearchImage failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "Preview:") {
		t.Error("Expected the preview line in output")
	}
	if !strings.Contains(output, "General Image Matches") {
		t.Errorf("Expected the standard results section, got:\n%s", output)
	}
	if strings.Contains(output, "Face Matches") {
		t.Error("Expected no face section for empty face results")
	}

	// The preview was released after its first display
	if session.imageForm.Previews().Live() != nil {
		t.Error("Expected no live preview after display")
	}
}

func TestSession_SearchVideo_Stub(t *testing.T) {
	// Default config simulates the video endpoint locally
	var out bytes.Buffer
	session, err := NewSession(testConfig("http://127.0.0.1:1"), &out)
	if err != nil {
		t.Fatal(err)
	}
	defer session.Close()

	if err := session.SearchVideo(context.Background(), "https://youtube.com/watch?v=abc"); err != nil {
		t.Fatalf("SearchVideo failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "Video Context") {
		t.Errorf("Expected the video section, got:\n%s", output)
	}
	if !strings.Contains(output, "02:14") {
		t.Error("Expected the canned match timestamps")
	}
}

func TestSession_SetSources(t *testing.T) {
	var out bytes.Buffer
	session, err := NewSession(testConfig("http://127.0.0.1:1"), &out)
	if err != nil {
		t.Fatal(err)
	}
	defer session.Close()

	if err := session.SetSources("article,book"); err != nil {
		t.Fatalf("SetSources failed: %v", err)
	}
	if session.SourcesString() != "article, book" {
		t.Errorf("Expected 'article, book', got %q", session.SourcesString())
	}

	if err := session.SetSources("all"); err != nil {
		t.Fatalf("SetSources(all) failed: %v", err)
	}
	if session.SourcesString() != "article, book, video, movie, study, social" {
		t.Errorf("Expected all sources, got %q", session.SourcesString())
	}

	if err := session.SetSources("article,podcast"); err == nil {
		t.Error("Expected error for unknown tag, got nil")
	}
}

func TestPrintView_Error(t *testing.T) {
	var out bytes.Buffer
	PrintView(&out, search.ViewModel{Kind: search.ResponseError, Error: "engine timeout"})

	if !strings.Contains(out.String(), "engine timeout") {
		t.Errorf("Expected the error text, got %q", out.String())
	}
}

func TestPrintView_EngineError(t *testing.T) {
	vm := search.ViewModel{
		Kind: search.ResponseImage,
		Engines: []search.EngineView{
			{Name: "google", Error: "quota exceeded"},
			{Name: "bing", Items: []search.ItemView{{Label: "B", URL: "https://b.com"}}},
		},
	}

	var out bytes.Buffer
	PrintView(&out, vm)

	output := out.String()
	if !strings.Contains(output, "Error: quota exceeded") {
		t.Error("Expected the inline engine error")
	}
	if !strings.Contains(output, "https://b.com") {
		t.Error("Expected the sibling engine's results")
	}
}

func TestPrintView_FaceGroups(t *testing.T) {
	vm := search.ViewModel{
		Kind: search.ResponseImage,
		FaceGroups: []search.FaceGroupView{
			{Number: 1, Engines: []search.EngineView{{Name: "google"}}},
			{Number: 2, Engines: []search.EngineView{{Name: "google"}}},
		},
	}

	var out bytes.Buffer
	PrintView(&out, vm)

	output := out.String()
	if !strings.Contains(output, "Face #1 Matches") || !strings.Contains(output, "Face #2 Matches") {
		t.Errorf("Expected numbered face groups, got:\n%s", output)
	}
}

func TestPrintView_EmptyText(t *testing.T) {
	var out bytes.Buffer
	PrintView(&out, search.ViewModel{Kind: search.ResponseText})

	if !strings.Contains(out.String(), "No results found") {
		t.Errorf("Expected the empty state, got %q", out.String())
	}
}
