package preview

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-games/internal/grading"
	"github.com/mind-engage/mindengage-games/internal/schema"
)

// Hub keeps the plays opened over HTTP. Plays idle for longer than the
// TTL are dropped on the next sweep.
type Hub struct {
	mu     sync.Mutex
	plays  map[string]*play
	ttl    time.Duration
	grader grading.Grader
	now    func() time.Time
}

type play struct {
	mu      sync.Mutex
	gameID  string
	session *Session
	touched time.Time
}

func NewHub(ttl time.Duration, g grading.Grader) *Hub {
	if g == nil {
		g = grading.NewGrader()
	}
	return &Hub{plays: map[string]*play{}, ttl: ttl, grader: g, now: time.Now}
}

// Open starts a play of the given game and returns its id.
func (h *Hub) Open(gameID string, m schema.Metadata) (string, View) {
	s := NewSession(m, WithGrader(h.grader))
	id := uuid.NewString()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.sweepLocked()
	h.plays[id] = &play{gameID: gameID, session: s, touched: h.now()}
	return id, s.View()
}

// Do runs fn on the play's session. Calls on the same play are serialized.
func (h *Hub) Do(id string, fn func(*Session) error) (View, error) {
	h.mu.Lock()
	p, ok := h.plays[id]
	if ok {
		p.touched = h.now()
	}
	h.mu.Unlock()
	if !ok {
		return View{}, ErrNotFound
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err := fn(p.session)
	return p.session.View(), err
}

// GameID returns the game a play was opened for.
func (h *Hub) GameID(id string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.plays[id]
	if !ok {
		return "", false
	}
	return p.gameID, true
}

func (h *Hub) Close(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.plays, id)
}

// Sweep drops idle plays and returns how many were removed.
func (h *Hub) Sweep() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sweepLocked()
}

func (h *Hub) sweepLocked() int {
	if h.ttl <= 0 {
		return 0
	}
	cutoff := h.now().Add(-h.ttl)
	n := 0
	for id, p := range h.plays {
		if p.touched.Before(cutoff) {
			delete(h.plays, id)
			n++
		}
	}
	return n
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.plays)
}
