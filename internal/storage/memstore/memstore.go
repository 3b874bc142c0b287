// Package memstore is an in-memory agent.StorageAdapter, the kernel's
// zero-dependency default for tests and the demonstration binary. It
// supports optional snapshot-to-disk persistence so data survives
// restarts, adapted from the teacher's in-memory control-plane store.
package memstore

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agentoven/kernel/pkg/agent"
)

// snapshot is the JSON-serializable shape written to disk.
type snapshot struct {
	Agents       map[string]agent.Character `json:"agents"`
	Memories     map[string][]*agent.Memory `json:"memories"` // key: table name
	Rooms        map[string]*agent.Room     `json:"rooms"`
	Worlds       map[string]*agent.World    `json:"worlds"`
	Entities     map[string]*agent.Entity   `json:"entities"`
	Participants []agent.Participant        `json:"participants"`
}

// Store implements agent.StorageAdapter with in-memory maps guarded by a
// single RWMutex, mirroring the teacher's in-memory control-plane store.
type Store struct {
	mu sync.RWMutex

	agents       map[agent.ID]agent.Character
	memories     map[string][]*agent.Memory // key: table name
	rooms        map[agent.ID]*agent.Room
	worlds       map[agent.ID]*agent.World
	entities     map[agent.ID]*agent.Entity
	participants []agent.Participant

	snapshotPath string
	saveMu       sync.Mutex
	saveCh       chan struct{}
	doneCh       chan struct{}

	ready bool
}

// New constructs a Store. If snapshotPath is non-empty, state is persisted
// to that file on a debounced background goroutine and loaded from it (if
// present) during Initialize.
func New(snapshotPath string) *Store {
	s := &Store{
		agents:       make(map[agent.ID]agent.Character),
		memories:     make(map[string][]*agent.Memory),
		rooms:        make(map[agent.ID]*agent.Room),
		worlds:       make(map[agent.ID]*agent.World),
		entities:     make(map[agent.ID]*agent.Entity),
		snapshotPath: snapshotPath,
	}
	if snapshotPath != "" {
		s.saveCh = make(chan struct{}, 1)
		s.doneCh = make(chan struct{})
		go s.saveLoop()
	}
	return s
}

// Initialize loads a snapshot from disk if one exists; config is unused
// (the in-memory adapter needs none).
func (s *Store) Initialize(ctx context.Context, config any) error {
	if s.snapshotPath != "" {
		if err := s.load(); err != nil {
			return agent.Wrap(agent.ErrDatabase, err, "loading snapshot from %s", s.snapshotPath)
		}
	}
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
	return nil
}

// IsReady reports whether Initialize has completed.
func (s *Store) IsReady(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// GetConnection returns nil: the in-memory adapter has no backend handle.
func (s *Store) GetConnection() any { return nil }

// Close stops the background save loop, then flushes a final snapshot.
func (s *Store) Close(ctx context.Context) error {
	if s.doneCh != nil {
		close(s.doneCh)
	}
	if s.snapshotPath != "" {
		return s.save()
	}
	return nil
}

// ── Agent CRUD ──────────────────────────────────────────────

func (s *Store) CreateAgent(ctx context.Context, id agent.ID, character agent.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.agents[id]; exists {
		return agent.NewConstraintViolation("agents", "primary_key", id.String(), "agent already exists, use UpdateAgent instead")
	}
	s.agents[id] = character
	s.scheduleSave()
	return nil
}

func (s *Store) GetAgent(ctx context.Context, id agent.ID) (agent.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.agents[id]
	if !ok {
		return agent.Character{}, agent.NewError(agent.ErrNotFound, "agent %s not found", id)
	}
	return c, nil
}

func (s *Store) UpdateAgent(ctx context.Context, id agent.ID, character agent.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.agents[id]; !exists {
		return agent.NewError(agent.ErrNotFound, "agent %s not found", id)
	}
	s.agents[id] = character
	s.scheduleSave()
	return nil
}

func (s *Store) DeleteAgent(ctx context.Context, id agent.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.agents[id]; !exists {
		return agent.NewError(agent.ErrNotFound, "agent %s not found", id)
	}
	delete(s.agents, id)
	s.scheduleSave()
	return nil
}

func (s *Store) ListAgents(ctx context.Context) ([]agent.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]agent.ID, 0, len(s.agents))
	for id := range s.agents {
		out = append(out, id)
	}
	return out, nil
}

// ── Memory CRUD and query ───────────────────────────────────

func (s *Store) CreateMemory(ctx context.Context, memory *agent.Memory, tableName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories[tableName] = append(s.memories[tableName], memory)
	s.scheduleSave()
	return nil
}

func (s *Store) GetMemories(ctx context.Context, query agent.MemoryQuery) ([]*agent.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*agent.Memory
	for _, m := range s.memories[query.TableName] {
		if !memoryMatchesQuery(m, query) {
			continue
		}
		out = append(out, m)
	}
	if query.Offset != nil && *query.Offset < len(out) {
		out = out[*query.Offset:]
	}
	if query.Count != nil && *query.Count < len(out) {
		out = out[:*query.Count]
	}
	return out, nil
}

func memoryMatchesQuery(m *agent.Memory, query agent.MemoryQuery) bool {
	if query.EntityID != nil && m.EntityID != *query.EntityID {
		return false
	}
	if query.AgentID != nil && m.AgentID != *query.AgentID {
		return false
	}
	if query.RoomID != nil && m.RoomID != *query.RoomID {
		return false
	}
	if query.Unique != nil && m.Unique != *query.Unique {
		return false
	}
	if query.StartMS != nil && m.CreatedAt < *query.StartMS {
		return false
	}
	if query.EndMS != nil && m.CreatedAt > *query.EndMS {
		return false
	}
	return true
}

// SearchMemoriesByEmbedding ranks by cosine similarity against the stored
// embedding; a linear scan, acceptable for the in-memory/test adapter.
func (s *Store) SearchMemoriesByEmbedding(ctx context.Context, params agent.SearchMemoriesParams) ([]*agent.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		memory     *agent.Memory
		similarity float32
	}
	var candidates []scored
	for _, m := range s.memories[params.TableName] {
		if len(m.Embedding) == 0 {
			continue
		}
		if len(m.Embedding) != len(params.Embedding) {
			return nil, agent.NewVectorSearchError("embedding dimension mismatch", len(m.Embedding), len(params.Embedding))
		}
		if params.RoomID != nil && m.RoomID != *params.RoomID {
			continue
		}
		if params.AgentID != nil && m.AgentID != *params.AgentID {
			continue
		}
		sim := cosineSimilarity(m.Embedding, params.Embedding)
		if params.Threshold != nil && sim < *params.Threshold {
			continue
		}
		candidates = append(candidates, scored{memory: m, similarity: sim})
	}

	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].similarity > candidates[j-1].similarity; j-- {
			candidates[j-1], candidates[j] = candidates[j], candidates[j-1]
		}
	}

	limit := params.Count
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}
	out := make([]*agent.Memory, 0, limit)
	for _, c := range candidates[:limit] {
		c.memory.Similarity = c.similarity
		out = append(out, c.memory)
	}
	return out, nil
}

func cosineSimilarity(a, b []float32) float32 {
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}

func (s *Store) CountMemories(ctx context.Context, query agent.MemoryQuery) (int, error) {
	memories, err := s.GetMemories(ctx, query)
	if err != nil {
		return 0, err
	}
	return len(memories), nil
}

func (s *Store) DeleteMemory(ctx context.Context, id agent.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for table, list := range s.memories {
		for i, m := range list {
			if m.ID == id {
				s.memories[table] = append(list[:i], list[i+1:]...)
				s.scheduleSave()
				return nil
			}
		}
	}
	return agent.NewError(agent.ErrNotFound, "memory %s not found", id)
}

// ── Environment CRUD ─────────────────────────────────────────

func (s *Store) CreateRoom(ctx context.Context, room *agent.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
	s.scheduleSave()
	return nil
}

func (s *Store) GetRoom(ctx context.Context, id agent.ID) (*agent.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, agent.NewError(agent.ErrNotFound, "room %s not found", id)
	}
	return r, nil
}

func (s *Store) CreateWorld(ctx context.Context, world *agent.World) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.worlds[world.ID] = world
	s.scheduleSave()
	return nil
}

func (s *Store) GetWorld(ctx context.Context, id agent.ID) (*agent.World, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.worlds[id]
	if !ok {
		return nil, agent.NewError(agent.ErrNotFound, "world %s not found", id)
	}
	return w, nil
}

func (s *Store) CreateEntity(ctx context.Context, entity *agent.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[entity.ID] = entity
	s.scheduleSave()
	return nil
}

func (s *Store) GetEntity(ctx context.Context, id agent.ID) (*agent.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return nil, agent.NewError(agent.ErrNotFound, "entity %s not found", id)
	}
	return e, nil
}

func (s *Store) AddParticipant(ctx context.Context, participant agent.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants = append(s.participants, participant)
	s.scheduleSave()
	return nil
}

func (s *Store) ListParticipants(ctx context.Context, roomID agent.ID) ([]agent.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []agent.Participant
	for _, p := range s.participants {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	return out, nil
}

// ── Plugin migrations ────────────────────────────────────────

// RunPluginMigrations is a no-op for the in-memory adapter: there is no
// schema to migrate. Verbose logs each named migration that was skipped.
func (s *Store) RunPluginMigrations(ctx context.Context, migrations []agent.PluginMigration, opts agent.MigrationOptions) error {
	if opts.Verbose {
		for _, m := range migrations {
			log.Debug().Str("migration", m.Name).Msg("in-memory adapter: migration is a no-op")
		}
	}
	return nil
}

// ── Snapshot persistence ─────────────────────────────────────

func (s *Store) scheduleSave() {
	if s.snapshotPath == "" {
		return
	}
	select {
	case s.saveCh <- struct{}{}:
	default:
	}
}

func (s *Store) saveLoop() {
	debounce := 500 * time.Millisecond
	var timer *time.Timer
	for {
		select {
		case <-s.saveCh:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if err := s.save(); err != nil {
					log.Warn().Err(err).Msg("failed to save memstore snapshot")
				}
			})
		case <-s.doneCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (s *Store) save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	snap := snapshot{
		Agents:       s.agents,
		Memories:     s.memories,
		Rooms:        s.rooms,
		Worlds:       s.worlds,
		Entities:     s.entities,
		Participants: s.participants,
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.snapshotPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.snapshotPath, data, 0o644)
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.snapshotPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Agents != nil {
		s.agents = snap.Agents
	}
	if snap.Memories != nil {
		s.memories = snap.Memories
	}
	if snap.Rooms != nil {
		s.rooms = snap.Rooms
	}
	if snap.Worlds != nil {
		s.worlds = snap.Worlds
	}
	if snap.Entities != nil {
		s.entities = snap.Entities
	}
	s.participants = snap.Participants
	return nil
}

var _ agent.StorageAdapter = (*Store)(nil)
