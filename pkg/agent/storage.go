package agent

import "context"

// PluginMigration describes one plugin's database schema for
// RunPluginMigrations.
type PluginMigration struct {
	Name   string
	Schema any
}

// MigrationOptions controls RunPluginMigrations behavior.
type MigrationOptions struct {
	Verbose bool
	Force   bool
	DryRun  bool
}

// AgentStore is the sub-contract for agent CRUD. Composed, along with the
// other sub-contracts below, into StorageAdapter — mirroring the
// many-small-interfaces idiom over one monolithic store interface.
type AgentStore interface {
	CreateAgent(ctx context.Context, id ID, character Character) error
	GetAgent(ctx context.Context, id ID) (Character, error)
	UpdateAgent(ctx context.Context, id ID, character Character) error
	DeleteAgent(ctx context.Context, id ID) error
	ListAgents(ctx context.Context) ([]ID, error)
}

// MemoryStore is the sub-contract for memory persistence and retrieval.
type MemoryStore interface {
	CreateMemory(ctx context.Context, memory *Memory, tableName string) error
	GetMemories(ctx context.Context, query MemoryQuery) ([]*Memory, error)
	SearchMemoriesByEmbedding(ctx context.Context, params SearchMemoriesParams) ([]*Memory, error)
	CountMemories(ctx context.Context, query MemoryQuery) (int, error)
	DeleteMemory(ctx context.Context, id ID) error
}

// EnvironmentStore is the sub-contract for room/world/entity/participant
// CRUD.
type EnvironmentStore interface {
	CreateRoom(ctx context.Context, room *Room) error
	GetRoom(ctx context.Context, id ID) (*Room, error)
	CreateWorld(ctx context.Context, world *World) error
	GetWorld(ctx context.Context, id ID) (*World, error)
	CreateEntity(ctx context.Context, entity *Entity) error
	GetEntity(ctx context.Context, id ID) (*Entity, error)
	AddParticipant(ctx context.Context, participant Participant) error
	ListParticipants(ctx context.Context, roomID ID) ([]Participant, error)
}

// MigrationStore is the sub-contract for plugin schema migrations.
type MigrationStore interface {
	RunPluginMigrations(ctx context.Context, migrations []PluginMigration, opts MigrationOptions) error
}

// StorageAdapter is the full contract the kernel consumes (SPEC_FULL.md
// §6.1). The kernel treats it as opaque: no kernel code branches on the
// concrete adapter type. GetConnection returns an adapter-specific handle
// for adapter-aware plugins only.
type StorageAdapter interface {
	AgentStore
	MemoryStore
	EnvironmentStore
	MigrationStore

	Initialize(ctx context.Context, config any) error
	IsReady(ctx context.Context) bool
	GetConnection() any
	Close(ctx context.Context) error
}
