// Package identity assigns session-scoped identities to queued tracks.
//
// Each playback session is an epoch. Identities carry the epoch they were
// issued in, so a token from an earlier session never resolves once a new
// session has started.
package identity

import (
	"sync"

	"github.com/google/uuid"
)

// Identity is an opaque token for a single queued track. It is unique within
// its epoch and never reused across epochs.
type Identity struct {
	Token   uuid.UUID
	Epoch   uuid.UUID
	Ordinal int
}

// Registry issues identities with monotonically increasing ordinals for the
// current epoch and resolves ordinals back to identities.
type Registry struct {
	mu     sync.Mutex
	epoch  uuid.UUID
	issued []Identity
}

func NewRegistry() *Registry {
	return &Registry{epoch: uuid.New()}
}

// Make issues the identity for the next ordinal position in the current epoch.
func (r *Registry) Make() Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := Identity{
		Token:   uuid.New(),
		Epoch:   r.epoch,
		Ordinal: len(r.issued),
	}
	r.issued = append(r.issued, id)
	return id
}

// At returns the identity at the given ordinal in the current epoch.
func (r *Registry) At(ordinal int) (Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ordinal < 0 || ordinal >= len(r.issued) {
		return Identity{}, false
	}
	return r.issued[ordinal], true
}

// Size returns the number of identities issued in the current epoch.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.issued)
}

// Valid reports whether id was issued in the current epoch.
func (r *Registry) Valid(id Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return id.Epoch == r.epoch
}

// StartNewSession begins a fresh epoch. The ordinal counter restarts at zero
// and every previously issued identity stops resolving.
func (r *Registry) StartNewSession() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch = uuid.New()
	r.issued = nil
}
