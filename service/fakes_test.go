package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/beka-birhanu/pong-arena/domain"
	"github.com/beka-birhanu/pong-arena/service/i"
	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

// memQueue is an in-memory SortedQueue with the same semantics as the Redis
// implementation: set membership per member, ordering by score.
type memQueue struct {
	mu      sync.Mutex
	entries map[string][]i.ScoredMember
}

func newMemQueue() *memQueue {
	return &memQueue{entries: make(map[string][]i.ScoredMember)}
}

func (q *memQueue) Enqueue(_ context.Context, key string, score float64, member string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries[key] {
		if e.Member == member {
			return false, nil
		}
	}
	q.entries[key] = append(q.entries[key], i.ScoredMember{Member: member, Score: score})
	q.sortLocked(key)
	return true, nil
}

func (q *memQueue) DequeTops(_ context.Context, key string, amount int64) ([]i.ScoredMember, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if int64(len(q.entries[key])) < amount {
		return nil, nil
	}
	tops := q.entries[key][:amount]
	q.entries[key] = q.entries[key][amount:]
	return tops, nil
}

func (q *memQueue) Requeue(_ context.Context, key string, members ...i.ScoredMember) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries[key] = append(q.entries[key], members...)
	q.sortLocked(key)
	return nil
}

func (q *memQueue) Remove(_ context.Context, key string, member string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for idx, e := range q.entries[key] {
		if e.Member == member {
			q.entries[key] = append(q.entries[key][:idx], q.entries[key][idx+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (q *memQueue) DequeBelow(_ context.Context, key string, maxScore float64) ([]i.ScoredMember, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var expired, kept []i.ScoredMember
	for _, e := range q.entries[key] {
		if e.Score < maxScore {
			expired = append(expired, e)
		} else {
			kept = append(kept, e)
		}
	}
	q.entries[key] = kept
	return expired, nil
}

func (q *memQueue) Count(_ context.Context, key string) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	return int64(len(q.entries[key]))
}

func (q *memQueue) sortLocked(key string) {
	sort.SliceStable(q.entries[key], func(a, b int) bool {
		return q.entries[key][a].Score < q.entries[key][b].Score
	})
}

type notifyRecord struct {
	playerID uuid.UUID
	event    string
	payload  any
}

type disconnectRecord struct {
	playerID uuid.UUID
	code     int
}

// fakeNotifier records every outbound notification and disconnect.
type fakeNotifier struct {
	mu          sync.Mutex
	notices     []notifyRecord
	disconnects []disconnectRecord
}

func (n *fakeNotifier) Notify(playerID uuid.UUID, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notifyRecord{playerID: playerID, event: event, payload: payload})
}

func (n *fakeNotifier) Disconnect(playerID uuid.UUID, code int, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.disconnects = append(n.disconnects, disconnectRecord{playerID: playerID, code: code})
}

func (n *fakeNotifier) countOf(playerID uuid.UUID, event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, r := range n.notices {
		if r.playerID == playerID && r.event == event {
			count++
		}
	}
	return count
}

// memMatchRepo is an in-memory MatchRepo.
type memMatchRepo struct {
	mu      sync.Mutex
	matches map[uuid.UUID]*domain.Match
}

func newMemMatchRepo() *memMatchRepo {
	return &memMatchRepo{matches: make(map[uuid.UUID]*domain.Match)}
}

func (r *memMatchRepo) ByID(_ context.Context, id uuid.UUID) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[id]
	if !ok {
		return nil, errors.New("no documents in result")
	}
	clone := *m
	return &clone, nil
}

func (r *memMatchRepo) ByTournament(_ context.Context, tournamentID uuid.UUID) ([]*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			clone := *m
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Round < out[b].Round })
	return out, nil
}

func (r *memMatchRepo) CreateRound(_ context.Context, matches []*domain.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range matches {
		clone := *m
		r.matches[m.ID] = &clone
	}
	return nil
}

func (r *memMatchRepo) SetWinner(_ context.Context, matchID, winnerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[matchID]
	if !ok {
		return errors.New("no documents in result")
	}
	m.Winner = &winnerID
	m.Status = domain.MatchCompleted
	return nil
}

// memTournamentRepo is an in-memory TournamentRepo.
type memTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[uuid.UUID]*domain.Tournament
}

func newMemTournamentRepo() *memTournamentRepo {
	return &memTournamentRepo{tournaments: make(map[uuid.UUID]*domain.Tournament)}
}

func (r *memTournamentRepo) Create(_ context.Context, t *domain.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *t
	r.tournaments[t.ID] = &clone
	return nil
}

func (r *memTournamentRepo) ByID(_ context.Context, id uuid.UUID) (*domain.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tournaments[id]
	if !ok {
		return nil, errors.New("no documents in result")
	}
	clone := *t
	return &clone, nil
}

func (r *memTournamentRepo) AddParticipant(_ context.Context, tournamentID, playerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tournaments[tournamentID]
	if !ok {
		return errors.New("no documents in result")
	}
	for _, p := range t.Participants {
		if p == playerID {
			return nil
		}
	}
	t.Participants = append(t.Participants, playerID)
	return nil
}

func (r *memTournamentRepo) SetStatus(_ context.Context, id uuid.UUID, status domain.TournamentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tournaments[id]
	if !ok {
		return errors.New("no documents in result")
	}
	t.Status = status
	return nil
}

// memLocker serializes named sections with process-local mutexes.
type memLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMemLocker() *memLocker {
	return &memLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *memLocker) Lock(_ context.Context, name string) (i.UnlockFunc, error) {
	l.mu.Lock()
	m, ok := l.locks[name]
	if !ok {
		m = &sync.Mutex{}
		l.locks[name] = m
	}
	l.mu.Unlock()

	m.Lock()
	return func() error {
		m.Unlock()
		return nil
	}, nil
}

// fakeSockConn is an in-memory player connection recording everything sent
// through it.
type fakeSockConn struct {
	id     uuid.UUID
	mu     sync.Mutex
	events []notifyRecord
	closed bool
}

func newFakeSockConn() *fakeSockConn {
	return &fakeSockConn{id: uuid.New()}
}

func (c *fakeSockConn) ID() uuid.UUID { return c.id }

func (c *fakeSockConn) Send(event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, notifyRecord{playerID: c.id, event: event, payload: payload})
	return nil
}

func (c *fakeSockConn) Close(_ int, _ string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeSockConn) countOf(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, e := range c.events {
		if e.event == event {
			count++
		}
	}
	return count
}

// fakeSocketManager implements i.SocketManager over fake connections.
type fakeSocketManager struct {
	fakeNotifier

	onConnect func(playerID, matchID uuid.UUID)
	onInput   func(playerID uuid.UUID, y float64)
	onClose   func(playerID uuid.UUID)

	clientsMu sync.Mutex
	clients   map[uuid.UUID]i.Conn
}

func newFakeSocketManager() *fakeSocketManager {
	return &fakeSocketManager{clients: make(map[uuid.UUID]i.Conn)}
}

func (s *fakeSocketManager) SetConnectHandler(f func(playerID, matchID uuid.UUID)) { s.onConnect = f }
func (s *fakeSocketManager) SetInputHandler(f func(playerID uuid.UUID, y float64)) { s.onInput = f }
func (s *fakeSocketManager) SetCloseHandler(f func(playerID uuid.UUID))            { s.onClose = f }

func (s *fakeSocketManager) Client(playerID uuid.UUID) (i.Conn, bool) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	c, ok := s.clients[playerID]
	return c, ok
}

func (s *fakeSocketManager) connect(c *fakeSockConn) {
	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()
}

// fakeUserRepo records win/loss bookkeeping.
type fakeUserRepo struct {
	mu      sync.Mutex
	results [][2]uuid.UUID // winner, loser
}

func (r *fakeUserRepo) Save(*domain.User) error { return nil }

func (r *fakeUserRepo) ByID(uuid.UUID) (*domain.User, error) {
	return nil, errors.New("not found")
}

func (r *fakeUserRepo) ByUsername(string) (*domain.User, error) {
	return nil, errors.New("not found")
}

func (r *fakeUserRepo) RecordWinLoss(winnerID, loserID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, [2]uuid.UUID{winnerID, loserID})
	return nil
}

func (r *fakeUserRepo) recorded() [][2]uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][2]uuid.UUID, len(r.results))
	copy(out, r.results)
	return out
}

// fakeMatchmaker records routing calls from the coordinator.
type fakeMatchmaker struct {
	mu             sync.Mutex
	publicJoins    []uuid.UUID
	scheduledJoins [][2]uuid.UUID // player, match
	removed        []uuid.UUID
	handler        i.PairHandler
}

func (m *fakeMatchmaker) JoinPublicQueue(_ context.Context, playerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publicJoins = append(m.publicJoins, playerID)
	return nil
}

func (m *fakeMatchmaker) JoinScheduledMatch(_ context.Context, playerID, matchID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduledJoins = append(m.scheduledJoins, [2]uuid.UUID{playerID, matchID})
	return nil
}

func (m *fakeMatchmaker) Remove(_ context.Context, playerID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, playerID)
}

func (m *fakeMatchmaker) SetPairHandler(f i.PairHandler) { m.handler = f }

// fakeBracket records reported results.
type fakeBracket struct {
	mu      sync.Mutex
	reports [][2]uuid.UUID // match, winner
}

func (b *fakeBracket) Start(_ context.Context, _, _ uuid.UUID) error { return nil }

func (b *fakeBracket) ReportResult(_ context.Context, matchID, winnerID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reports = append(b.reports, [2]uuid.UUID{matchID, winnerID})
	return nil
}

func (b *fakeBracket) recorded() [][2]uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][2]uuid.UUID, len(b.reports))
	copy(out, b.reports)
	return out
}
