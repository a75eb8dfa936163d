package snapshot

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// refScheme prefixes every addressable reference minted by a Registry.
const refScheme = "blob:oshicam/"

// Snapshot is one finished output image plus its metadata.
type Snapshot struct {
	ID        uuid.UUID
	Data      []byte
	MIME      string
	Width     int
	Height    int
	CreatedAt time.Time
	Ref       string // addressable reference for display/download
}

// Valid reports whether s carries image data.
func (s Snapshot) Valid() bool { return len(s.Data) > 0 }

// Registry mints and revokes addressable references for encoded images.
// A reference stays resolvable until Revoke is called for it.
type Registry struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

type blob struct {
	data []byte
	mime string
}

// NewRegistry returns an empty reference registry.
func NewRegistry() *Registry { return &Registry{blobs: make(map[string]blob)} }

// Create stores data and returns a new reference to it.
func (r *Registry) Create(id uuid.UUID, data []byte, mime string) string {
	ref := refScheme + id.String()
	r.mu.Lock()
	r.blobs[ref] = blob{data: data, mime: mime}
	r.mu.Unlock()
	return ref
}

// Resolve returns the data behind ref.
func (r *Registry) Resolve(ref string) ([]byte, string, bool) {
	r.mu.RLock()
	b, ok := r.blobs[ref]
	r.mu.RUnlock()
	return b.data, b.mime, ok
}

// Revoke releases ref. Revoking an unknown reference is a no-op.
func (r *Registry) Revoke(ref string) {
	if !strings.HasPrefix(ref, refScheme) {
		return
	}
	r.mu.Lock()
	delete(r.blobs, ref)
	r.mu.Unlock()
}

// Live returns the number of unreleased references.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}

// New builds a Snapshot for data and registers its reference.
func (r *Registry) New(data []byte, mime string, w, h int, at time.Time) Snapshot {
	id := uuid.New()
	return Snapshot{
		ID:        id,
		Data:      data,
		MIME:      mime,
		Width:     w,
		Height:    h,
		CreatedAt: at,
		Ref:       r.Create(id, data, mime),
	}
}
