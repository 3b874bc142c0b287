// Package postgres is a pgvector-backed agent.StorageAdapter for
// deployments that want durable storage and real vector search instead of
// the in-memory default, adapted from the teacher's pgvector vector store
// driver.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/agentoven/kernel/pkg/agent"
)

// Store implements agent.StorageAdapter against PostgreSQL with the
// pgvector extension. Embeddings are stored natively as vector(dimensions)
// so SearchMemoriesByEmbedding can push the cosine-distance ranking down
// into the database rather than scanning in process.
type Store struct {
	pool       *pgxpool.Pool
	dimensions int
	ready      bool
}

// New connects to connURL and creates the schema (including the pgvector
// extension) if it doesn't already exist. dimensions fixes the embedding
// column width; it must match every Memory's Embedding length.
func New(ctx context.Context, connURL string, dimensions int) (*Store, error) {
	pool, err := pgxpool.New(ctx, connURL)
	if err != nil {
		return nil, agent.Wrap(agent.ErrDatabase, err, "postgres connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, agent.Wrap(agent.ErrDatabase, err, "postgres ping")
	}

	s := &Store{pool: pool, dimensions: dimensions}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, agent.Wrap(agent.ErrDatabase, err, "postgres migrate")
	}
	log.Info().Int("dims", dimensions).Msg("postgres storage adapter initialized")
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS kernel_agents (
			id        UUID PRIMARY KEY,
			character JSONB NOT NULL
		);

		CREATE TABLE IF NOT EXISTS kernel_memories (
			id          UUID PRIMARY KEY,
			table_name  TEXT NOT NULL,
			entity_id   UUID NOT NULL,
			agent_id    UUID NOT NULL,
			room_id     UUID NOT NULL,
			content     JSONB NOT NULL,
			embedding   vector(%d),
			metadata    JSONB,
			unique_flag BOOLEAN NOT NULL DEFAULT false,
			created_at  BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_kernel_memories_table ON kernel_memories (table_name);
		CREATE INDEX IF NOT EXISTS idx_kernel_memories_room ON kernel_memories (table_name, room_id);

		CREATE TABLE IF NOT EXISTS kernel_rooms (
			id           UUID PRIMARY KEY,
			agent_id     UUID,
			name         TEXT NOT NULL DEFAULT '',
			source       TEXT NOT NULL DEFAULT '',
			channel_type TEXT NOT NULL DEFAULT '',
			channel_id   TEXT NOT NULL DEFAULT '',
			server_id    TEXT NOT NULL DEFAULT '',
			world_id     UUID,
			metadata     JSONB,
			created_at   BIGINT
		);

		CREATE TABLE IF NOT EXISTS kernel_worlds (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL DEFAULT '',
			agent_id   UUID,
			server_id  TEXT NOT NULL DEFAULT '',
			metadata   JSONB,
			created_at BIGINT
		);

		CREATE TABLE IF NOT EXISTS kernel_entities (
			id         UUID PRIMARY KEY,
			agent_id   UUID,
			name       TEXT NOT NULL DEFAULT '',
			username   TEXT NOT NULL DEFAULT '',
			email      TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			metadata   JSONB,
			created_at BIGINT
		);

		CREATE TABLE IF NOT EXISTS kernel_participants (
			entity_id UUID NOT NULL,
			room_id   UUID NOT NULL,
			joined_at BIGINT,
			metadata  JSONB,
			PRIMARY KEY (entity_id, room_id)
		);
	`, s.dimensions)

	_, err := s.pool.Exec(ctx, ddl)
	return err
}

// Initialize marks the adapter ready; config is unused, the connection was
// already established by New.
func (s *Store) Initialize(ctx context.Context, config any) error {
	s.ready = true
	return nil
}

func (s *Store) IsReady(ctx context.Context) bool { return s.ready }

// GetConnection exposes the pool for adapter-aware plugins.
func (s *Store) GetConnection() any { return s.pool }

func (s *Store) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

// ── Agent CRUD ──────────────────────────────────────────────

func (s *Store) CreateAgent(ctx context.Context, id agent.ID, character agent.Character) error {
	data, err := json.Marshal(character)
	if err != nil {
		return agent.Wrap(agent.ErrValidation, err, "marshal character")
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO kernel_agents (id, character) VALUES ($1, $2)`, id, data)
	if err != nil {
		if isUniqueViolation(err) {
			return agent.NewConstraintViolation("kernel_agents", "primary_key", id.String(), "agent already exists, use UpdateAgent instead")
		}
		return agent.Wrap(agent.ErrDatabase, err, "create agent %s", id)
	}
	return nil
}

func (s *Store) GetAgent(ctx context.Context, id agent.ID) (agent.Character, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT character FROM kernel_agents WHERE id = $1`, id).Scan(&data)
	if err == pgx.ErrNoRows {
		return agent.Character{}, agent.NewError(agent.ErrNotFound, "agent %s not found", id)
	}
	if err != nil {
		return agent.Character{}, agent.Wrap(agent.ErrDatabase, err, "get agent %s", id)
	}
	var c agent.Character
	if err := json.Unmarshal(data, &c); err != nil {
		return agent.Character{}, agent.Wrap(agent.ErrValidation, err, "unmarshal character")
	}
	return c, nil
}

func (s *Store) UpdateAgent(ctx context.Context, id agent.ID, character agent.Character) error {
	data, err := json.Marshal(character)
	if err != nil {
		return agent.Wrap(agent.ErrValidation, err, "marshal character")
	}
	tag, err := s.pool.Exec(ctx, `UPDATE kernel_agents SET character = $2 WHERE id = $1`, id, data)
	if err != nil {
		return agent.Wrap(agent.ErrDatabase, err, "update agent %s", id)
	}
	if tag.RowsAffected() == 0 {
		return agent.NewError(agent.ErrNotFound, "agent %s not found", id)
	}
	return nil
}

func (s *Store) DeleteAgent(ctx context.Context, id agent.ID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM kernel_agents WHERE id = $1`, id)
	if err != nil {
		return agent.Wrap(agent.ErrDatabase, err, "delete agent %s", id)
	}
	if tag.RowsAffected() == 0 {
		return agent.NewError(agent.ErrNotFound, "agent %s not found", id)
	}
	return nil
}

func (s *Store) ListAgents(ctx context.Context) ([]agent.ID, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM kernel_agents`)
	if err != nil {
		return nil, agent.Wrap(agent.ErrDatabase, err, "list agents")
	}
	defer rows.Close()

	var out []agent.ID
	for rows.Next() {
		var id agent.ID
		if err := rows.Scan(&id); err != nil {
			return nil, agent.Wrap(agent.ErrDatabase, err, "scan agent id")
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ── Memory CRUD and query ───────────────────────────────────

func (s *Store) CreateMemory(ctx context.Context, memory *agent.Memory, tableName string) error {
	content, err := json.Marshal(memory.Content)
	if err != nil {
		return agent.Wrap(agent.ErrValidation, err, "marshal content")
	}
	var metadata []byte
	if memory.Metadata != nil {
		metadata, err = json.Marshal(memory.Metadata)
		if err != nil {
			return agent.Wrap(agent.ErrValidation, err, "marshal metadata")
		}
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO kernel_memories (id, table_name, entity_id, agent_id, room_id, content, embedding, metadata, unique_flag, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		memory.ID, tableName, memory.EntityID, memory.AgentID, memory.RoomID,
		content, pgvectorLiteral(memory.Embedding), metadata, memory.Unique, memory.CreatedAt,
	)
	if err != nil {
		return agent.Wrap(agent.ErrDatabase, err, "create memory %s", memory.ID)
	}
	return nil
}

func (s *Store) GetMemories(ctx context.Context, query agent.MemoryQuery) ([]*agent.Memory, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, entity_id, agent_id, room_id, content, metadata, unique_flag, created_at
		FROM kernel_memories WHERE table_name = $1`)
	args := []any{query.TableName}

	if query.EntityID != nil {
		args = append(args, *query.EntityID)
		fmt.Fprintf(&sb, " AND entity_id = $%d", len(args))
	}
	if query.AgentID != nil {
		args = append(args, *query.AgentID)
		fmt.Fprintf(&sb, " AND agent_id = $%d", len(args))
	}
	if query.RoomID != nil {
		args = append(args, *query.RoomID)
		fmt.Fprintf(&sb, " AND room_id = $%d", len(args))
	}
	if query.Unique != nil {
		args = append(args, *query.Unique)
		fmt.Fprintf(&sb, " AND unique_flag = $%d", len(args))
	}
	if query.StartMS != nil {
		args = append(args, *query.StartMS)
		fmt.Fprintf(&sb, " AND created_at >= $%d", len(args))
	}
	if query.EndMS != nil {
		args = append(args, *query.EndMS)
		fmt.Fprintf(&sb, " AND created_at <= $%d", len(args))
	}
	sb.WriteString(" ORDER BY created_at ASC")
	if query.Count != nil {
		args = append(args, *query.Count)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if query.Offset != nil {
		args = append(args, *query.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, agent.Wrap(agent.ErrDatabase, err, "get memories")
	}
	defer rows.Close()

	var out []*agent.Memory
	for rows.Next() {
		m, err := scanMemoryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// rowScanner is the subset of pgx.Rows used by scanMemoryRow, so it can
// also be used against a single pgx.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemoryRow(r rowScanner) (*agent.Memory, error) {
	var (
		m        agent.Memory
		content  []byte
		metadata []byte
	)
	if err := r.Scan(&m.ID, &m.EntityID, &m.AgentID, &m.RoomID, &content, &metadata, &m.Unique, &m.CreatedAt); err != nil {
		return nil, agent.Wrap(agent.ErrDatabase, err, "scan memory row")
	}
	if err := json.Unmarshal(content, &m.Content); err != nil {
		return nil, agent.Wrap(agent.ErrValidation, err, "unmarshal memory content")
	}
	if len(metadata) > 0 {
		var md agent.MemoryMetadata
		if err := json.Unmarshal(metadata, &md); err != nil {
			return nil, agent.Wrap(agent.ErrValidation, err, "unmarshal memory metadata")
		}
		m.Metadata = &md
	}
	return &m, nil
}

// SearchMemoriesByEmbedding ranks by pgvector's cosine-distance operator,
// pushing the comparison down into the database instead of scanning rows
// in process.
func (s *Store) SearchMemoriesByEmbedding(ctx context.Context, params agent.SearchMemoriesParams) ([]*agent.Memory, error) {
	if len(params.Embedding) != s.dimensions {
		return nil, agent.NewVectorSearchError("embedding dimension mismatch", len(params.Embedding), s.dimensions)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, entity_id, agent_id, room_id, content, metadata, unique_flag, created_at,
		1 - (embedding <=> $1) AS similarity
		FROM kernel_memories WHERE table_name = $2 AND embedding IS NOT NULL`)
	args := []any{pgvectorLiteral(params.Embedding), params.TableName}

	if params.RoomID != nil {
		args = append(args, *params.RoomID)
		fmt.Fprintf(&sb, " AND room_id = $%d", len(args))
	}
	if params.AgentID != nil {
		args = append(args, *params.AgentID)
		fmt.Fprintf(&sb, " AND agent_id = $%d", len(args))
	}
	if params.Unique != nil {
		args = append(args, *params.Unique)
		fmt.Fprintf(&sb, " AND unique_flag = $%d", len(args))
	}
	if params.Threshold != nil {
		args = append(args, *params.Threshold)
		fmt.Fprintf(&sb, " AND 1 - (embedding <=> $1) >= $%d", len(args))
	}
	sb.WriteString(" ORDER BY embedding <=> $1")
	if params.Count > 0 {
		args = append(args, params.Count)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, agent.Wrap(agent.ErrDatabase, err, "search memories by embedding")
	}
	defer rows.Close()

	var out []*agent.Memory
	for rows.Next() {
		var (
			m        agent.Memory
			content  []byte
			metadata []byte
			sim      float64
		)
		if err := rows.Scan(&m.ID, &m.EntityID, &m.AgentID, &m.RoomID, &content, &metadata, &m.Unique, &m.CreatedAt, &sim); err != nil {
			return nil, agent.Wrap(agent.ErrDatabase, err, "scan search row")
		}
		if err := json.Unmarshal(content, &m.Content); err != nil {
			return nil, agent.Wrap(agent.ErrValidation, err, "unmarshal memory content")
		}
		if len(metadata) > 0 {
			var md agent.MemoryMetadata
			if err := json.Unmarshal(metadata, &md); err != nil {
				return nil, agent.Wrap(agent.ErrValidation, err, "unmarshal memory metadata")
			}
			m.Metadata = &md
		}
		m.Similarity = float32(sim)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (s *Store) CountMemories(ctx context.Context, query agent.MemoryQuery) (int, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT COUNT(*) FROM kernel_memories WHERE table_name = $1`)
	args := []any{query.TableName}
	if query.RoomID != nil {
		args = append(args, *query.RoomID)
		fmt.Fprintf(&sb, " AND room_id = $%d", len(args))
	}
	if query.AgentID != nil {
		args = append(args, *query.AgentID)
		fmt.Fprintf(&sb, " AND agent_id = $%d", len(args))
	}

	var count int
	err := s.pool.QueryRow(ctx, sb.String(), args...).Scan(&count)
	if err != nil {
		return 0, agent.Wrap(agent.ErrDatabase, err, "count memories")
	}
	return count, nil
}

func (s *Store) DeleteMemory(ctx context.Context, id agent.ID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM kernel_memories WHERE id = $1`, id)
	if err != nil {
		return agent.Wrap(agent.ErrDatabase, err, "delete memory %s", id)
	}
	if tag.RowsAffected() == 0 {
		return agent.NewError(agent.ErrNotFound, "memory %s not found", id)
	}
	return nil
}

// ── Environment CRUD ─────────────────────────────────────────

func (s *Store) CreateRoom(ctx context.Context, room *agent.Room) error {
	metadata, err := json.Marshal(room.Metadata)
	if err != nil {
		return agent.Wrap(agent.ErrValidation, err, "marshal room metadata")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO kernel_rooms (id, agent_id, name, source, channel_type, channel_id, server_id, world_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, metadata = EXCLUDED.metadata`,
		room.ID, room.AgentID, room.Name, room.Source, room.ChannelType, room.ChannelID, room.ServerID, room.WorldID, metadata, room.CreatedAt,
	)
	if err != nil {
		return agent.Wrap(agent.ErrDatabase, err, "create room %s", room.ID)
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, id agent.ID) (*agent.Room, error) {
	var (
		r        agent.Room
		metadata []byte
	)
	err := s.pool.QueryRow(ctx, `SELECT id, agent_id, name, source, channel_type, channel_id, server_id, world_id, metadata, created_at
		FROM kernel_rooms WHERE id = $1`, id).Scan(
		&r.ID, &r.AgentID, &r.Name, &r.Source, &r.ChannelType, &r.ChannelID, &r.ServerID, &r.WorldID, &metadata, &r.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, agent.NewError(agent.ErrNotFound, "room %s not found", id)
	}
	if err != nil {
		return nil, agent.Wrap(agent.ErrDatabase, err, "get room %s", id)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &r.Metadata); err != nil {
			return nil, agent.Wrap(agent.ErrValidation, err, "unmarshal room metadata")
		}
	}
	return &r, nil
}

func (s *Store) CreateWorld(ctx context.Context, world *agent.World) error {
	metadata, err := json.Marshal(world.Metadata)
	if err != nil {
		return agent.Wrap(agent.ErrValidation, err, "marshal world metadata")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO kernel_worlds (id, name, agent_id, server_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, metadata = EXCLUDED.metadata`,
		world.ID, world.Name, world.AgentID, world.ServerID, metadata, world.CreatedAt,
	)
	if err != nil {
		return agent.Wrap(agent.ErrDatabase, err, "create world %s", world.ID)
	}
	return nil
}

func (s *Store) GetWorld(ctx context.Context, id agent.ID) (*agent.World, error) {
	var (
		w        agent.World
		metadata []byte
	)
	err := s.pool.QueryRow(ctx, `SELECT id, name, agent_id, server_id, metadata, created_at
		FROM kernel_worlds WHERE id = $1`, id).Scan(&w.ID, &w.Name, &w.AgentID, &w.ServerID, &metadata, &w.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, agent.NewError(agent.ErrNotFound, "world %s not found", id)
	}
	if err != nil {
		return nil, agent.Wrap(agent.ErrDatabase, err, "get world %s", id)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &w.Metadata); err != nil {
			return nil, agent.Wrap(agent.ErrValidation, err, "unmarshal world metadata")
		}
	}
	return &w, nil
}

func (s *Store) CreateEntity(ctx context.Context, entity *agent.Entity) error {
	metadata, err := json.Marshal(entity.Metadata)
	if err != nil {
		return agent.Wrap(agent.ErrValidation, err, "marshal entity metadata")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO kernel_entities (id, agent_id, name, username, email, avatar_url, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, metadata = EXCLUDED.metadata`,
		entity.ID, entity.AgentID, entity.Name, entity.Username, entity.Email, entity.AvatarURL, metadata, entity.CreatedAt,
	)
	if err != nil {
		return agent.Wrap(agent.ErrDatabase, err, "create entity %s", entity.ID)
	}
	return nil
}

func (s *Store) GetEntity(ctx context.Context, id agent.ID) (*agent.Entity, error) {
	var (
		e        agent.Entity
		metadata []byte
	)
	err := s.pool.QueryRow(ctx, `SELECT id, agent_id, name, username, email, avatar_url, metadata, created_at
		FROM kernel_entities WHERE id = $1`, id).Scan(&e.ID, &e.AgentID, &e.Name, &e.Username, &e.Email, &e.AvatarURL, &metadata, &e.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, agent.NewError(agent.ErrNotFound, "entity %s not found", id)
	}
	if err != nil {
		return nil, agent.Wrap(agent.ErrDatabase, err, "get entity %s", id)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return nil, agent.Wrap(agent.ErrValidation, err, "unmarshal entity metadata")
		}
	}
	return &e, nil
}

func (s *Store) AddParticipant(ctx context.Context, participant agent.Participant) error {
	metadata, err := json.Marshal(participant.Metadata)
	if err != nil {
		return agent.Wrap(agent.ErrValidation, err, "marshal participant metadata")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO kernel_participants (entity_id, room_id, joined_at, metadata)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (entity_id, room_id) DO UPDATE SET metadata = EXCLUDED.metadata`,
		participant.EntityID, participant.RoomID, participant.JoinedAt, metadata,
	)
	if err != nil {
		return agent.Wrap(agent.ErrDatabase, err, "add participant")
	}
	return nil
}

func (s *Store) ListParticipants(ctx context.Context, roomID agent.ID) ([]agent.Participant, error) {
	rows, err := s.pool.Query(ctx, `SELECT entity_id, room_id, joined_at, metadata FROM kernel_participants WHERE room_id = $1`, roomID)
	if err != nil {
		return nil, agent.Wrap(agent.ErrDatabase, err, "list participants")
	}
	defer rows.Close()

	var out []agent.Participant
	for rows.Next() {
		var (
			p        agent.Participant
			metadata []byte
		)
		if err := rows.Scan(&p.EntityID, &p.RoomID, &p.JoinedAt, &metadata); err != nil {
			return nil, agent.Wrap(agent.ErrDatabase, err, "scan participant")
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
				return nil, agent.Wrap(agent.ErrValidation, err, "unmarshal participant metadata")
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ── Plugin migrations ────────────────────────────────────────

// RunPluginMigrations executes each migration's Schema as raw DDL when it
// is a string, in order. DryRun logs what would run without executing it.
func (s *Store) RunPluginMigrations(ctx context.Context, migrations []agent.PluginMigration, opts agent.MigrationOptions) error {
	for _, m := range migrations {
		ddl, ok := m.Schema.(string)
		if !ok {
			if opts.Verbose {
				log.Warn().Str("migration", m.Name).Msg("postgres adapter: migration schema is not a DDL string, skipped")
			}
			continue
		}
		if opts.DryRun {
			log.Info().Str("migration", m.Name).Msg("postgres adapter: dry run, not executing")
			continue
		}
		if opts.Verbose {
			log.Info().Str("migration", m.Name).Msg("postgres adapter: running migration")
		}
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			return agent.Wrap(agent.ErrDatabase, err, "migration %q", m.Name)
		}
	}
	return nil
}

// pgvectorLiteral renders a float32 embedding in pgvector's text input
// format, or nil when empty so the column stores SQL NULL.
func pgvectorLiteral(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%g", f)
	}
	sb.WriteByte(']')
	return sb.String()
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

var _ agent.StorageAdapter = (*Store)(nil)
