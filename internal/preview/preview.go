// Package preview manages the transient local copies shown to the user
// while a selected file waits for upload. A handle is acquired on
// selection and released exactly once: on first successful display, on
// replacement by a newer selection, or on form teardown, whichever
// comes first.
package preview

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// Handle is one transient preview copy.
type Handle struct {
	path  string
	once  sync.Once
	freed atomic.Bool
}

// Path returns the preview file location.
func (h *Handle) Path() string { return h.path }

// Released reports whether the handle has been freed.
func (h *Handle) Released() bool { return h.freed.Load() }

// Release frees the preview resource. The underlying file is removed
// exactly once; extra calls are no-ops.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.freed.Store(true)
		os.Remove(h.path)
	})
}

// Manager owns at most one live preview per form. Acquiring a new
// preview releases the previous one, so repeated selections never
// accumulate live handles.
type Manager struct {
	mu   sync.Mutex
	dir  string
	live *Handle
}

// NewManager creates a manager placing preview copies under dir, or the
// system temp directory when dir is empty.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Acquire copies the selected file into a fresh preview and swaps it in
// as the live handle, releasing the prior one.
func (m *Manager) Acquire(srcPath string) (*Handle, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open selection: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(m.dir, "preview-*"+filepath.Ext(srcPath))
	if err != nil {
		return nil, fmt.Errorf("failed to allocate preview: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to copy preview: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write preview: %w", err)
	}

	handle := &Handle{path: tmp.Name()}

	m.mu.Lock()
	prior := m.live
	m.live = handle
	m.mu.Unlock()

	if prior != nil {
		prior.Release()
	}
	return handle, nil
}

// Live returns the current live handle, or nil when none is held.
func (m *Manager) Live() *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live
}

// Release frees the live preview, if any. Called after the preview's
// first successful display.
func (m *Manager) Release() {
	m.mu.Lock()
	h := m.live
	m.live = nil
	m.mu.Unlock()

	if h != nil {
		h.Release()
	}
}

// Close releases whatever is still live. Guaranteed release on
// teardown, even for previews that were never displayed.
func (m *Manager) Close() {
	m.Release()
}
