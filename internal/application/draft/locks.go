package draft

import "sync"

// keyedMutex serializa las mutaciones de un mismo borrador sin bloquear a los demás.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedEntry)}
}

// Lock toma el candado de la clave y devuelve la función que lo libera.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// UploadGuard marca "subiendo" por envío: impide cargas concurrentes al mismo
// envío y no bloquea cargas a otros envíos.
type UploadGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewUploadGuard construye el guard.
func NewUploadGuard() *UploadGuard {
	return &UploadGuard{active: make(map[string]struct{})}
}

// TryAcquire marca el envío como en carga; false si ya lo estaba.
func (g *UploadGuard) TryAcquire(shipmentID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[shipmentID]; busy {
		return false
	}
	g.active[shipmentID] = struct{}{}
	return true
}

// Release libera la marca.
func (g *UploadGuard) Release(shipmentID string) {
	g.mu.Lock()
	delete(g.active, shipmentID)
	g.mu.Unlock()
}

// Uploading indica si hay una carga en curso para el envío.
func (g *UploadGuard) Uploading(shipmentID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.active[shipmentID]
	return busy
}
