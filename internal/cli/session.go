package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hession/contextseek/internal/config"
	"github.com/hession/contextseek/internal/search"
)

// Session wires one independent form per search tab, the way the
// product UI keeps text, image and video forms isolated from each
// other. Forms share nothing, so a pending image search never blocks a
// text search.
type Session struct {
	out     io.Writer
	cfg     *config.Config
	sources []search.SourceTag

	textForm  *search.Form
	imageForm *search.Form
	videoForm *search.Form
}

// NewSession builds the three forms from configuration.
func NewSession(cfg *config.Config, out io.Writer) (*Session, error) {
	client := search.NewClient(
		cfg.API.BaseURL,
		cfg.API.UserAgent,
		cfg.API.APIKey,
		time.Duration(cfg.API.TimeoutSeconds)*time.Second,
	)

	// The video endpoint is not finalized; default config answers video
	// searches from a local stub instead.
	var videoDispatcher search.Dispatcher = client
	if cfg.Search.SimulateVideo {
		videoDispatcher = search.StubVideoDispatcher{
			Delay: time.Duration(cfg.Search.VideoStubDelayMS) * time.Millisecond,
		}
	}

	sources := make([]search.SourceTag, 0, len(cfg.Search.DefaultSources))
	for _, raw := range cfg.Search.DefaultSources {
		tag, err := search.ParseSourceTag(raw)
		if err != nil {
			return nil, err
		}
		sources = append(sources, tag)
	}

	s := &Session{out: out, cfg: cfg, sources: sources}
	s.textForm = s.newForm(client)
	s.imageForm = s.newForm(client)
	s.videoForm = s.newForm(videoDispatcher)
	return s, nil
}

// newForm builds a form with the session's loading and rendering hooks.
func (s *Session) newForm(d search.Dispatcher) *search.Form {
	return search.NewForm(d,
		search.WithPreviewDir(s.cfg.Preview.Dir),
		search.WithStartHandler(func() {
			fmt.Fprintf(s.out, "%sSearching...%s\n", colorGray, colorReset)
		}),
		search.WithCompleteHandler(func(resp search.Response) {
			PrintView(s.out, search.Render(resp))
		}),
	)
}

// Close tears down every form, releasing any live previews.
func (s *Session) Close() {
	s.textForm.Close()
	s.imageForm.Close()
	s.videoForm.Close()
}

// SourcesString returns the active source filters for display.
func (s *Session) SourcesString() string {
	names := make([]string, 0, len(s.sources))
	for _, tag := range s.sources {
		names = append(names, string(tag))
	}
	return strings.Join(names, ", ")
}

// SetSources replaces the source filters used by text searches.
func (s *Session) SetSources(raw string) error {
	if strings.EqualFold(strings.TrimSpace(raw), "all") {
		s.sources = search.AllSources()
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]search.SourceTag, 0, len(parts))
	for _, part := range parts {
		tag, err := search.ParseSourceTag(part)
		if err != nil {
			return err
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return &search.ValidationError{Field: "sources", Reason: "cannot be empty"}
	}
	s.sources = tags
	return nil
}

// SearchText validates and submits a text search.
func (s *Session) SearchText(ctx context.Context, text string) error {
	req, err := search.NewTextRequest(text, s.sources)
	if err != nil {
		return err
	}
	_, err = s.textForm.Submit(ctx, req)
	return err
}

// SearchImage validates the selection, shows its preview and submits a
// reverse image search.
func (s *Session) SearchImage(ctx context.Context, path string, faces, social bool) error {
	file, handle, err := s.imageForm.SelectFile(search.KindImage, path)
	if err != nil {
		return err
	}
	s.showPreview(s.imageForm, handle.Path())

	req, err := search.NewImageRequest(file, faces, social)
	if err != nil {
		return err
	}
	_, err = s.imageForm.Submit(ctx, req)
	return err
}

// SearchVideo submits a video search for a URL or a local file.
func (s *Session) SearchVideo(ctx context.Context, target string) error {
	var req search.VideoRequest
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		var err error
		req, err = search.NewVideoURLRequest(target)
		if err != nil {
			return err
		}
	} else {
		file, handle, err := s.videoForm.SelectFile(search.KindVideo, target)
		if err != nil {
			return err
		}
		s.showPreview(s.videoForm, handle.Path())
		req, err = search.NewVideoFileRequest(file)
		if err != nil {
			return err
		}
	}
	_, err := s.videoForm.Submit(ctx, req)
	return err
}

// showPreview displays the transient preview and releases it after this
// first successful display.
func (s *Session) showPreview(form *search.Form, path string) {
	fmt.Fprintf(s.out, "%sPreview: %s%s\n", colorGray, path, colorReset)
	form.Previews().Release()
}
