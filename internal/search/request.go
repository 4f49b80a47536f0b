package search

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Kind identifies which search form a request belongs to.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// SourceTag narrows a text search to one category of sources.
type SourceTag string

const (
	SourceArticle SourceTag = "article"
	SourceBook    SourceTag = "book"
	SourceVideo   SourceTag = "video"
	SourceMovie   SourceTag = "movie"
	SourceStudy   SourceTag = "study"
	SourceSocial  SourceTag = "social"
)

// AllSources returns every source tag in canonical order.
func AllSources() []SourceTag {
	return []SourceTag{
		SourceArticle,
		SourceBook,
		SourceVideo,
		SourceMovie,
		SourceStudy,
		SourceSocial,
	}
}

// ParseSourceTag normalizes a raw tag string.
func ParseSourceTag(raw string) (SourceTag, error) {
	tag := SourceTag(strings.ToLower(strings.TrimSpace(raw)))
	switch tag {
	case SourceArticle, SourceBook, SourceVideo, SourceMovie, SourceStudy, SourceSocial:
		return tag, nil
	}
	return "", &ValidationError{Field: "sources", Reason: fmt.Sprintf("unknown source tag %q", raw)}
}

const (
	// MaxTextLen caps the length of a text query in runes.
	MaxTextLen = 500

	// MaxImageBytes and MaxVideoBytes are advisory client-side size
	// ceilings; the server remains authoritative.
	MaxImageBytes = 5 << 20
	MaxVideoBytes = 50 << 20
)

// Request is a validated search payload ready for dispatch.
type Request interface {
	Kind() Kind
}

// TextRequest searches for the original source of a quote or snippet.
type TextRequest struct {
	Text    string
	Sources []SourceTag
}

// Kind implements Request.
func (TextRequest) Kind() Kind { return KindText }

// NewTextRequest trims and validates raw text input. Empty or
// whitespace-only text is rejected here, before any network call.
// Nil or empty sources default to all tags.
func NewTextRequest(text string, sources []SourceTag) (TextRequest, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TextRequest{}, &ValidationError{Field: "text", Reason: "cannot be empty"}
	}
	if n := len([]rune(text)); n > MaxTextLen {
		return TextRequest{}, &ValidationError{
			Field:  "text",
			Reason: fmt.Sprintf("%d characters exceeds the %d character limit", n, MaxTextLen),
		}
	}
	if len(sources) == 0 {
		return TextRequest{Text: text, Sources: AllSources()}, nil
	}
	normalized := make([]SourceTag, 0, len(sources))
	for _, src := range sources {
		tag, err := ParseSourceTag(string(src))
		if err != nil {
			return TextRequest{}, err
		}
		normalized = append(normalized, tag)
	}
	return TextRequest{Text: text, Sources: normalized}, nil
}

// ImageRequest performs a reverse image search over an uploaded file.
type ImageRequest struct {
	File         *ValidatedFile
	SearchFaces  bool
	SearchSocial bool
}

// Kind implements Request.
func (ImageRequest) Kind() Kind { return KindImage }

// NewImageRequest wraps a validated image selection. Both options
// default to on in the UI; callers pass them through explicitly here.
func NewImageRequest(file *ValidatedFile, searchFaces, searchSocial bool) (ImageRequest, error) {
	if file == nil {
		return ImageRequest{}, &ValidationError{Field: "file", Reason: "no image selected"}
	}
	return ImageRequest{File: file, SearchFaces: searchFaces, SearchSocial: searchSocial}, nil
}

// VideoRequest traces a clip back to its full video, by URL or by
// uploaded file. Exactly one of URL and File is set.
type VideoRequest struct {
	URL  string
	File *ValidatedFile
}

// Kind implements Request.
func (VideoRequest) Kind() Kind { return KindVideo }

// NewVideoURLRequest validates a pasted video URL.
func NewVideoURLRequest(raw string) (VideoRequest, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return VideoRequest{}, &ValidationError{Field: "url", Reason: "cannot be empty"}
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return VideoRequest{}, &ValidationError{Field: "url", Reason: "must be an http or https URL"}
	}
	return VideoRequest{URL: raw}, nil
}

// NewVideoFileRequest wraps a validated video selection.
func NewVideoFileRequest(file *ValidatedFile) (VideoRequest, error) {
	if file == nil {
		return VideoRequest{}, &ValidationError{Field: "file", Reason: "no video selected"}
	}
	return VideoRequest{File: file}, nil
}

// ValidatedFile is a local file accepted for upload.
type ValidatedFile struct {
	Path        string
	Name        string
	Size        int64
	ContentType string
}

// SelectFile validates a local file selection for the given form kind:
// the content type must carry the matching image/ or video/ prefix, and
// the advisory size ceiling must not be exceeded. No network access.
func SelectFile(kind Kind, path string) (*ValidatedFile, error) {
	var prefix string
	var sizeLimit int64
	switch kind {
	case KindImage:
		prefix, sizeLimit = "image/", MaxImageBytes
	case KindVideo:
		prefix, sizeLimit = "video/", MaxVideoBytes
	default:
		return nil, &ValidationError{Field: "kind", Reason: fmt.Sprintf("%s search does not accept file uploads", kind)}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &ValidationError{Field: "file", Reason: fmt.Sprintf("cannot read %s", path)}
	}
	if info.IsDir() {
		return nil, &ValidationError{Field: "file", Reason: fmt.Sprintf("%s is a directory", path)}
	}

	contentType, err := detectContentType(path)
	if err != nil {
		return nil, &ValidationError{Field: "file", Reason: fmt.Sprintf("cannot read %s", path)}
	}
	if !strings.HasPrefix(contentType, prefix) {
		return nil, &ValidationError{
			Field:  "file",
			Reason: fmt.Sprintf("expected a %s* file, got %s", prefix, contentType),
		}
	}
	if info.Size() > sizeLimit {
		return nil, &ValidationError{
			Field:  "file",
			Reason: fmt.Sprintf("%d bytes exceeds the %dMB limit", info.Size(), sizeLimit>>20),
		}
	}

	return &ValidatedFile{
		Path:        path,
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: contentType,
	}, nil
}

// detectContentType sniffs the file's leading bytes, falling back to
// the extension when sniffing is inconclusive.
func detectContentType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}

	contentType := http.DetectContentType(buf[:n])
	if contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
			contentType = byExt
		}
	}
	// Strip parameters such as "; charset=utf-8".
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	return contentType, nil
}
