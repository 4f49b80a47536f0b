package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient("", "", "", 0)

	if client.baseURL != "http://localhost:8000" {
		t.Errorf("Expected default baseURL, got %q", client.baseURL)
	}
	if client.userAgent != "ContextSeek/0.1" {
		t.Errorf("Expected default user agent, got %q", client.userAgent)
	}
	if client.client.Timeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", client.client.Timeout)
	}
}

func TestNewClient_TrimTrailingSlash(t *testing.T) {
	client := NewClient("https://api.test.com/", "", "", 0)

	if client.baseURL != "https://api.test.com" {
		t.Errorf("Expected baseURL without trailing slash, got %q", client.baseURL)
	}
}

func TestClient_SearchText(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request
		if r.Method != "POST" {
			t.Errorf("Expected POST method, got %s", r.Method)
		}
		if r.URL.Path != "/api/search/text" {
			t.Errorf("Expected path /api/search/text, got %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"results":[{"url":"https://a.com","title":"A"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", 0)
	req, err := NewTextRequest("to be or not to be", nil)
	if err != nil {
		t.Fatal(err)
	}

	resp := client.SearchText(context.Background(), req)
	if resp.Kind != ResponseText {
		t.Fatalf("Expected text response, got %s (%s)", resp.Kind, resp.Error)
	}
	if len(resp.Results) != 1 || resp.Results[0].Title != "A" {
		t.Errorf("Unexpected results: %+v", resp.Results)
	}

	// All-default sources are sent explicitly, in canonical order
	if gotBody["text"] != "to be or not to be" {
		t.Errorf("Expected text field, got %v", gotBody["text"])
	}
	wantSources := []any{"article", "book", "video", "movie", "study", "social"}
	if !reflect.DeepEqual(gotBody["sources"], wantSources) {
		t.Errorf("Expected sources %v, got %v", wantSources, gotBody["sources"])
	}
}

func TestClient_SearchImage_MultipartFields(t *testing.T) {
	var gotFaces, gotSocial, gotFile string
	var gotFileBytes []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search/image" {
			t.Errorf("Expected path /api/search/image, got %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("Failed to parse multipart form: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		gotFaces = r.FormValue("search_faces")
		gotSocial = r.FormValue("search_social")

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Failed to read file field: %v", err)
		} else {
			defer file.Close()
			gotFile = header.Filename
			gotFileBytes, _ = io.ReadAll(file)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"standard_results":{"google":[{"url":"https://a.com","title":"A"}]},"face_results":[]}`)
	}))
	defer server.Close()

	path := writeTempFile(t, "photo.png", pngBytes)
	file, err := SelectFile(KindImage, path)
	if err != nil {
		t.Fatal(err)
	}
	req, err := NewImageRequest(file, true, false)
	if err != nil {
		t.Fatal(err)
	}

	client := NewClient(server.URL, "", "", 0)
	resp := client.SearchImage(context.Background(), req)
	if resp.Kind != ResponseImage {
		t.Fatalf("Expected image response, got %s (%s)", resp.Kind, resp.Error)
	}

	if gotFaces != "true" {
		t.Errorf("Expected search_faces 'true', got %q", gotFaces)
	}
	if gotSocial != "false" {
		t.Errorf("Expected search_social 'false', got %q", gotSocial)
	}
	if gotFile != "photo.png" {
		t.Errorf("Expected filename photo.png, got %q", gotFile)
	}
	if string(gotFileBytes) != string(pngBytes) {
		t.Error("Uploaded file bytes do not match the selection")
	}

	if resp.Standard.Len() != 1 || resp.Standard.Entries()[0].Name != "google" {
		t.Errorf("Unexpected standard results: %+v", resp.Standard.Entries())
	}
	if len(resp.Faces) != 0 {
		t.Errorf("Expected no face groups, got %d", len(resp.Faces))
	}
}

func TestClient_SearchVideo_URL(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search/video" {
			t.Errorf("Expected path /api/search/video, got %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON body for URL search, got %s", r.Header.Get("Content-Type"))
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"video":{"title":"Full","source":"YouTube","url":"https://yt.com/w","matches":[]}}`)
	}))
	defer server.Close()

	req, err := NewVideoURLRequest("https://yt.com/clip")
	if err != nil {
		t.Fatal(err)
	}

	client := NewClient(server.URL, "", "", 0)
	resp := client.SearchVideo(context.Background(), req)
	if resp.Kind != ResponseVideo {
		t.Fatalf("Expected video response, got %s (%s)", resp.Kind, resp.Error)
	}
	if gotBody["url"] != "https://yt.com/clip" {
		t.Errorf("Expected url field, got %v", gotBody["url"])
	}
}

func TestClient_SearchVideo_File(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(60 << 20); err != nil {
			t.Errorf("Expected multipart body for file search: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("Failed to read file field: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"video":{"title":"Full","source":"YouTube","url":"https://yt.com/w","matches":[]}}`)
	}))
	defer server.Close()

	path := writeTempFile(t, "clip.mp4", mp4Bytes)
	file, err := SelectFile(KindVideo, path)
	if err != nil {
		t.Fatal(err)
	}
	req, err := NewVideoFileRequest(file)
	if err != nil {
		t.Fatal(err)
	}

	client := NewClient(server.URL, "", "", 0)
	resp := client.SearchVideo(context.Background(), req)
	if resp.Kind != ResponseVideo {
		t.Fatalf("Expected video response, got %s (%s)", resp.Kind, resp.Error)
	}
}

func TestClient_HTTPErrorWithDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"detail":"engine timeout"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", 0)
	req, _ := NewTextRequest("quote", nil)

	resp := client.SearchText(context.Background(), req)
	if resp.Kind != ResponseError {
		t.Fatalf("Expected error response, got %s", resp.Kind)
	}
	if resp.Error != "engine timeout" {
		t.Errorf("Expected error 'engine timeout', got %q", resp.Error)
	}
}

func TestClient_HTTPErrorWithMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"message":"upstream unavailable"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", 0)
	req, _ := NewTextRequest("quote", nil)

	resp := client.SearchText(context.Background(), req)
	if resp.Error != "upstream unavailable" {
		t.Errorf("Expected error 'upstream unavailable', got %q", resp.Error)
	}
}

func TestClient_HTTPErrorNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `<html>Internal Server Error</html>`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", 0)
	req, _ := NewTextRequest("quote", nil)

	resp := client.SearchText(context.Background(), req)
	if resp.Kind != ResponseError {
		t.Fatalf("Expected error response, got %s", resp.Kind)
	}
	if resp.Error != "HTTP error: 500" {
		t.Errorf("Expected fallback 'HTTP error: 500', got %q", resp.Error)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	// Point at a server that is already gone
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, "", "", time.Second)
	req, _ := NewTextRequest("quote", nil)

	resp := client.SearchText(context.Background(), req)
	if resp.Kind != ResponseError {
		t.Fatalf("Expected error response, got %s", resp.Kind)
	}
	if resp.Error != "search request failed" {
		t.Errorf("Expected generic transport message, got %q", resp.Error)
	}
}

func TestClient_MalformedSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `not json at all`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", 0)
	req, _ := NewTextRequest("quote", nil)

	resp := client.SearchText(context.Background(), req)
	if resp.Kind != ResponseError {
		t.Fatalf("Expected error response, got %s", resp.Kind)
	}
}

func TestClient_AuthAndUserAgentHeaders(t *testing.T) {
	var gotAuth, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		io.WriteString(w, `{"results":[]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "TestAgent/1.0", "secret-key", 0)
	req, _ := NewTextRequest("quote", nil)
	client.SearchText(context.Background(), req)

	if gotAuth != "Bearer secret-key" {
		t.Errorf("Expected bearer auth header, got %q", gotAuth)
	}
	if gotAgent != "TestAgent/1.0" {
		t.Errorf("Expected custom user agent, got %q", gotAgent)
	}
}

func TestHTTPErrorMessage_DetailWinsOverMessage(t *testing.T) {
	msg := httpErrorMessage(500, []byte(`{"detail":"d","message":"m"}`))
	if msg != "d" {
		t.Errorf("Expected detail to win, got %q", msg)
	}
}

func TestClient_Dispatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"results":[]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", 0)
	req, _ := NewTextRequest("quote", nil)

	resp := client.Dispatch(context.Background(), req)
	if resp.Kind != ResponseText {
		t.Errorf("Expected dispatch to route text requests, got %s", resp.Kind)
	}
}
