package score

import (
	"context"
	"sync"
)

// Session supplies the signed-in user's identifier; ok is false when nobody is signed in.
type Session interface {
	UserID() (id string, ok bool)
}

// SessionFunc adapts a func to Session.
type SessionFunc func() (string, bool)

func (f SessionFunc) UserID() (string, bool) { return f() }

// StaticSession is a Session for a known user id; an empty id means no user.
type StaticSession string

func (s StaticSession) UserID() (string, bool) { return string(s), s != "" }

// State is what presentation layers render.
type State struct {
	Score   int     `json:"score"`
	Loading bool    `json:"loading"`
	Outcome Outcome `json:"outcome,omitempty"`
}

// Tracker holds the score of the session's user: loading until the first computation settles, then ready.
// Concurrent refreshes are neither de-duplicated nor cancelled; the last one to settle wins.
type Tracker struct {
	svc     Service
	session Session

	mu       sync.RWMutex
	inflight int
	ready    bool
	last     Result
}

func NewTracker(svc Service, session Session) *Tracker {
	return &Tracker{svc: svc, session: session}
}

// Mount computes the score for the session's user.
// Without a user nothing is computed and the tracker becomes ready with a score of 0.
func (t *Tracker) Mount(ctx context.Context) State {
	if _, ok := t.session.UserID(); !ok {
		t.mu.Lock()
		t.ready = true
		t.mu.Unlock()
		return t.State()
	}
	return t.Refresh(ctx)
}

// Refresh recomputes the score for the session's user; no-op without a user.
func (t *Tracker) Refresh(ctx context.Context) State {
	userID, ok := t.session.UserID()
	if !ok {
		return t.State()
	}

	t.mu.Lock()
	t.inflight++
	t.mu.Unlock()

	res := t.svc.Compute(ctx, userID)

	t.mu.Lock()
	t.inflight--
	t.ready = true
	t.last = res
	t.mu.Unlock()
	return t.State()
}

func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return State{
		Score:   t.last.Score,
		Loading: !t.ready || t.inflight > 0,
		Outcome: t.last.Outcome,
	}
}

// Last returns the latest settled Result (zero value before any computation).
func (t *Tracker) Last() Result {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}
