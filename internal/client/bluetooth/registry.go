package bluetooth

import "sync"

// Blob is content this device offers over Bluetooth.
type Blob struct {
	Path        string
	ContentType string
}

// Registry maps content hashes to local files. The origin registers authored
// objects here; nothing else is ever served.
type Registry struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

func NewRegistry() *Registry {
	return &Registry{blobs: make(map[string]Blob)}
}

func (r *Registry) Register(hash string, b Blob) {
	r.mu.Lock()
	r.blobs[hash] = b
	r.mu.Unlock()
}

func (r *Registry) Unregister(hash string) {
	r.mu.Lock()
	delete(r.blobs, hash)
	r.mu.Unlock()
}

func (r *Registry) Lookup(hash string) (Blob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blobs[hash]
	return b, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}
