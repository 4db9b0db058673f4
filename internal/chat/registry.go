package chat

import "sync"

type presence struct {
	current string
	joined  []string
}

// Registry tracks which connection sits in which room. It is pure in-memory
// process state; a connection occupies exactly one room at a time and a
// room exists only as the set of connections currently assigned to it.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]map[string]struct{}
	conns map[string]*presence
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[string]struct{}),
		conns: make(map[string]*presence),
	}
}

// Join moves a connection into room as a single atomic step: the removal
// from the previous room and the insertion into the new one are never
// observable separately. Joining the current room is a no-op.
func (r *Registry) Join(connID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.conns[connID]
	if !ok {
		p = &presence{}
		r.conns[connID] = p
	}
	if p.current == room {
		return
	}

	if p.current != "" {
		r.removeLocked(connID, p.current)
	}

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[room] = members
	}
	members[connID] = struct{}{}
	p.current = room

	for _, joined := range p.joined {
		if joined == room {
			return
		}
	}
	p.joined = append(p.joined, room)
}

// Leave removes the connection from its current room and forgets it.
func (r *Registry) Leave(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.conns[connID]
	if !ok {
		return
	}
	if p.current != "" {
		r.removeLocked(connID, p.current)
	}
	delete(r.conns, connID)
}

func (r *Registry) removeLocked(connID, room string) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// Members returns a snapshot of the connection ids currently in room.
func (r *Registry) Members(room string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := make([]string, 0, len(r.rooms[room]))
	for connID := range r.rooms[room] {
		members = append(members, connID)
	}
	return members
}

// CurrentRoom reports the room the connection occupies right now.
func (r *Registry) CurrentRoom(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.conns[connID]
	if !ok || p.current == "" {
		return "", false
	}
	return p.current, true
}

// JoinedRooms returns, in join order, every room the connection has joined
// during its lifetime. The synthetic per-connection channel is never part
// of this history.
func (r *Registry) JoinedRooms(connID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.conns[connID]
	if !ok {
		return nil
	}
	joined := make([]string, len(p.joined))
	copy(joined, p.joined)
	return joined
}
