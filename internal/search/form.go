package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hession/contextseek/internal/logger"
	"github.com/hession/contextseek/internal/preview"
)

// State is a form's submission state.
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Form owns one request/response cycle at a time. At most one request
// is in flight; a second submit while pending is rejected, not queued.
// Each form is independent, so different forms may search concurrently.
type Form struct {
	mu         sync.Mutex
	state      State
	closed     bool
	dispatcher Dispatcher
	previews   *preview.Manager
	onStart    func()
	onComplete func(Response)
}

// Option configures a Form.
type Option func(*Form)

// WithStartHandler registers a callback fired synchronously when a
// submit is accepted, before the network call begins.
func WithStartHandler(fn func()) Option {
	return func(f *Form) { f.onStart = fn }
}

// WithCompleteHandler registers a callback fired exactly once per
// accepted submit, when the dispatch settles with success or error.
func WithCompleteHandler(fn func(Response)) Option {
	return func(f *Form) { f.onComplete = fn }
}

// WithPreviewDir places preview copies under dir instead of the system
// temp directory.
func WithPreviewDir(dir string) Option {
	return func(f *Form) { f.previews = preview.NewManager(dir) }
}

// NewForm creates a form bound to a dispatcher.
func NewForm(d Dispatcher, opts ...Option) *Form {
	f := &Form{
		dispatcher: d,
		previews:   preview.NewManager(""),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State reports the current submission state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Previews exposes the form's preview manager.
func (f *Form) Previews() *preview.Manager { return f.previews }

// SelectFile validates a file selection and swaps in a fresh preview,
// releasing the previous one. Selection stays allowed while a request
// is pending; it only feeds the next cycle.
func (f *Form) SelectFile(kind Kind, path string) (*ValidatedFile, *preview.Handle, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, nil, ErrClosed
	}
	f.mu.Unlock()

	file, err := SelectFile(kind, path)
	if err != nil {
		return nil, nil, err
	}
	handle, err := f.previews.Acquire(file.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create preview: %w", err)
	}
	return file, handle, nil
}

// Submit runs one dispatch cycle: Idle -> Submitting -> Idle. A submit
// while another is pending returns ErrBusy and triggers no dispatch and
// no signals. The start handler fires synchronously before the network
// call; the complete handler fires exactly once when the call settles.
// A response settling after Close is discarded, never committed.
func (f *Form) Submit(ctx context.Context, req Request) (Response, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return Response{}, ErrClosed
	}
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return Response{}, ErrBusy
	}
	f.state = StateSubmitting
	onStart := f.onStart
	f.mu.Unlock()

	id := uuid.NewString()
	logger.Debug("search %s started: kind=%s", id, req.Kind())
	if onStart != nil {
		onStart()
	}

	resp := f.dispatcher.Dispatch(ctx, req)

	f.mu.Lock()
	f.state = StateIdle
	closed := f.closed
	onComplete := f.onComplete
	f.mu.Unlock()

	if closed {
		// The consuming view is gone; drop the late response rather
		// than committing into torn-down state.
		logger.Debug("search %s settled after close, dropped", id)
		return Response{}, ErrClosed
	}

	if resp.Kind == ResponseError {
		logger.Warn("search %s failed: %s", id, resp.Error)
	} else {
		logger.Debug("search %s completed: kind=%s", id, resp.Kind)
	}
	if onComplete != nil {
		onComplete(resp)
	}
	return resp, nil
}

// Close tears the form down: the live preview is released and any
// request still in flight has its response discarded on arrival.
func (f *Form) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.mu.Unlock()
	f.previews.Close()
}
