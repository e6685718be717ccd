package server

import "sync"

// ClientInfo is a point-in-time snapshot of one connection's metadata, the
// shape CLIENT LIST renders.
type ClientInfo struct {
	ID   int64
	Addr string
	Name string
}

// registry is the process-wide table of live connections backing CLIENT
// LIST. Mutation is confined to connect/disconnect/name-change events, per
// spec.md §9 — it is never touched on a command's hot path, matching the
// teacher's pattern of one mutex per logically independent piece of shared
// state (its pkg/cache splits muUpstreamJobs from its other locks the same
// way).
type registry struct {
	mu      sync.Mutex
	clients map[int64]*ClientInfo
	nextID  int64
}

func newRegistry() *registry {
	return &registry{clients: make(map[int64]*ClientInfo)}
}

func (r *registry) register(addr string) *ClientInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	info := &ClientInfo{ID: r.nextID, Addr: addr}
	r.clients[info.ID] = info

	return info
}

func (r *registry) unregister(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.clients, id)
}

func (r *registry) setName(id int64, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[id]; ok {
		c.Name = name
	}
}

func (r *registry) list() []ClientInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ClientInfo, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, *c)
	}

	return out
}
