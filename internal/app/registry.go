package app

import (
	"time"

	"livepoll-service/internal/domain"
)

// registry maps live connections to participants and resolves reconnection.
// It holds no lock of its own: the coordinator serializes every mutation.
//
// Identity rules: students are keyed by display name among live connections;
// teachers have no uniqueness constraint. The connection handle is never the
// identity, only a transient binding to the stable participant id.
type registry struct {
	participants map[string]*domain.Participant // participant id -> participant
	byConn       map[string]string              // conn id -> participant id

	now   func() time.Time
	newID func() string
}

func newRegistry(now func() time.Time, newID func() string) *registry {
	return &registry{
		participants: make(map[string]*domain.Participant),
		byConn:       make(map[string]string),
		now:          now,
		newID:        newID,
	}
}

// registerStudent joins a student under a display name. The rebind rule runs
// first: a name held by a student whose connection is gone is the same
// logical participant returning, so the new connection is bound in place and
// any pending-eviction mark cleared. Only a name held by a live connection
// is a collision.
func (r *registry) registerStudent(connID, name string) (*domain.Participant, bool, error) {
	for _, p := range r.participants {
		if p.Role != domain.RoleStudent || p.Name != name {
			continue
		}
		if p.ConnID != connID && p.PendingEvictionAt == nil {
			return nil, false, domain.ErrNameTaken
		}
		rebound := p.ConnID != connID
		r.releaseConn(connID, p.ID)
		delete(r.byConn, p.ConnID)
		p.ConnID = connID
		p.PendingEvictionAt = nil
		r.byConn[connID] = p.ID
		return p, rebound, nil
	}

	// The name is free. A connection that already holds a student identity
	// is renamed in place rather than left behind as an orphan.
	if cur := r.byConnID(connID); cur != nil && cur.Role == domain.RoleStudent {
		cur.Name = name
		cur.PendingEvictionAt = nil
		return cur, false, nil
	}

	// A teacher identity bound to this connection is abandoned by the
	// re-registration.
	r.releaseConn(connID, "")

	p := &domain.Participant{
		ID:     r.newID(),
		ConnID: connID,
		Name:   name,
		Role:   domain.RoleStudent,
	}
	r.participants[p.ID] = p
	r.byConn[connID] = p.ID
	return p, false, nil
}

// registerTeacher joins a teacher connection. Idempotent per connection;
// multiple teacher connections may coexist.
func (r *registry) registerTeacher(connID string) *domain.Participant {
	if p := r.byConnID(connID); p != nil && p.Role == domain.RoleTeacher {
		return p
	}
	r.releaseConn(connID, "")
	p := &domain.Participant{
		ID:     r.newID(),
		ConnID: connID,
		Name:   "Teacher",
		Role:   domain.RoleTeacher,
	}
	r.participants[p.ID] = p
	r.byConn[connID] = p.ID
	return p
}

// releaseConn drops any identity bound to connID other than keepID. The
// connection has re-identified itself, so the old identity is abandoned, not
// retained: leaving it would inflate the student total forever and suppress
// the all-answered notice. The stale ConnID is cleared so a lingering
// pointer can never alias the connection's new binding.
func (r *registry) releaseConn(connID, keepID string) *domain.Participant {
	p := r.byConnID(connID)
	if p == nil || p.ID == keepID {
		return nil
	}
	delete(r.byConn, connID)
	delete(r.participants, p.ID)
	p.ConnID = ""
	return p
}

// unregister handles a closed connection. Explicit leaves are removed for
// good; anything else is kept for the grace window so the student can
// reclaim their name and responses.
func (r *registry) unregister(connID string, cause domain.DisconnectCause) (*domain.Participant, bool) {
	p := r.byConnID(connID)
	if p == nil {
		return nil, false
	}
	delete(r.byConn, connID)

	if cause == domain.DisconnectExplicitLeave || p.Role == domain.RoleTeacher {
		delete(r.participants, p.ID)
		return p, true
	}

	at := r.now()
	p.PendingEvictionAt = &at
	return p, false
}

// remove drops a participant unconditionally (kick, eviction).
func (r *registry) remove(participantID string) *domain.Participant {
	p, ok := r.participants[participantID]
	if !ok {
		return nil
	}
	delete(r.participants, participantID)
	delete(r.byConn, p.ConnID)
	return p
}

// sweep purges participants whose pending-eviction mark is older than the
// grace window and returns them.
func (r *registry) sweep(grace time.Duration) []*domain.Participant {
	cutoff := r.now().Add(-grace)
	var evicted []*domain.Participant
	for id, p := range r.participants {
		if p.PendingEvictionAt != nil && p.PendingEvictionAt.Before(cutoff) {
			delete(r.participants, id)
			delete(r.byConn, p.ConnID)
			evicted = append(evicted, p)
		}
	}
	return evicted
}

func (r *registry) byConnID(connID string) *domain.Participant {
	id, ok := r.byConn[connID]
	if !ok {
		return nil
	}
	return r.participants[id]
}

func (r *registry) byID(participantID string) *domain.Participant {
	return r.participants[participantID]
}

// students snapshots all registered students, pending-eviction included:
// a disconnected student still counts toward progress until swept.
func (r *registry) students() []*domain.Participant {
	var out []*domain.Participant
	for _, p := range r.participants {
		if p.Role == domain.RoleStudent {
			out = append(out, p)
		}
	}
	return out
}

func (r *registry) studentCount() int {
	n := 0
	for _, p := range r.participants {
		if p.Role == domain.RoleStudent {
			n++
		}
	}
	return n
}

func (r *registry) all() []domain.Participant {
	out := make([]domain.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, *p)
	}
	return out
}
