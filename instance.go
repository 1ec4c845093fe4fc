package statechart

import (
	"sync"

	"github.com/google/uuid"
)

// MemoryInstance is the default embedded.Instance: an in-process,
// mutex-guarded record of which vertex is current in each region plus a
// terminated flag, keyed by the instance's own id. It plays the role the
// teacher repository's per-element Context[T] map (HSM.active) plays for
// a whole tree of elements, narrowed down to the handful of fields
// Engine actually needs per spec §6 — a host backing an Instance with a
// database row or serialized blob only has to match this same shape.
type MemoryInstance struct {
	mu         sync.RWMutex
	id         string
	terminated bool
	current    map[string]string
}

// NewMemoryInstance returns a fresh, un-initialised MemoryInstance with a
// random id. Call Engine.Initialise on it before the first Evaluate.
func NewMemoryInstance() *MemoryInstance {
	return &MemoryInstance{
		id:      uuid.NewString(),
		current: map[string]string{},
	}
}

func (mi *MemoryInstance) Id() string {
	mi.mu.RLock()
	defer mi.mu.RUnlock()
	return mi.id
}

func (mi *MemoryInstance) IsTerminated() bool {
	mi.mu.RLock()
	defer mi.mu.RUnlock()
	return mi.terminated
}

func (mi *MemoryInstance) SetTerminated(terminated bool) {
	mi.mu.Lock()
	defer mi.mu.Unlock()
	mi.terminated = terminated
}

func (mi *MemoryInstance) SetCurrent(region, state string) {
	mi.mu.Lock()
	defer mi.mu.Unlock()
	mi.current[region] = state
}

func (mi *MemoryInstance) GetCurrent(region string) string {
	mi.mu.RLock()
	defer mi.mu.RUnlock()
	return mi.current[region]
}

// Active returns a snapshot of every region currently recording a
// vertex, keyed by region qualified name. Intended for diagnostics; the
// returned map is a copy, safe to range over without holding any lock.
func (mi *MemoryInstance) Active() map[string]string {
	mi.mu.RLock()
	defer mi.mu.RUnlock()
	out := make(map[string]string, len(mi.current))
	for k, v := range mi.current {
		out[k] = v
	}
	return out
}
