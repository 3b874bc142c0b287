package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentoven/kernel/pkg/agent"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.Equal(t, float32(0), cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestAgentCRUD(t *testing.T) {
	s := New("")
	ctx := context.Background()

	id := agent.NewID()
	character := agent.Character{Name: "Ada"}

	require.NoError(t, s.CreateAgent(ctx, id, character))

	err := s.CreateAgent(ctx, id, character)
	require.Error(t, err) // duplicate create must fail

	got, err := s.GetAgent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	got.Name = "Ada Lovelace"
	require.NoError(t, s.UpdateAgent(ctx, id, got))

	got, err = s.GetAgent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)

	ids, err := s.ListAgents(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, id)

	require.NoError(t, s.DeleteAgent(ctx, id))
	_, err = s.GetAgent(ctx, id)
	assert.Error(t, err)
}

func TestMemoryCreateAndQuery(t *testing.T) {
	s := New("")
	ctx := context.Background()
	roomID := agent.NewID()

	for i := 0; i < 3; i++ {
		m := &agent.Memory{
			ID:      agent.NewID(),
			RoomID:  roomID,
			Content: agent.Content{Text: "hello"},
		}
		require.NoError(t, s.CreateMemory(ctx, m, "messages"))
	}

	count := 2
	memories, err := s.GetMemories(ctx, agent.MemoryQuery{TableName: "messages", RoomID: &roomID, Count: &count})
	require.NoError(t, err)
	assert.Len(t, memories, 2)

	total, err := s.CountMemories(ctx, agent.MemoryQuery{TableName: "messages", RoomID: &roomID})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestSearchMemoriesByEmbedding_OrdersBySimilarity(t *testing.T) {
	s := New("")
	ctx := context.Background()

	near := &agent.Memory{ID: agent.NewID(), Embedding: []float32{1, 0}}
	far := &agent.Memory{ID: agent.NewID(), Embedding: []float32{0, 1}}
	require.NoError(t, s.CreateMemory(ctx, far, "facts"))
	require.NoError(t, s.CreateMemory(ctx, near, "facts"))

	results, err := s.SearchMemoriesByEmbedding(ctx, agent.SearchMemoriesParams{
		TableName: "facts",
		Embedding: []float32{1, 0},
		Count:     10,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, near.ID, results[0].ID)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestSearchMemoriesByEmbedding_DimensionMismatch(t *testing.T) {
	s := New("")
	ctx := context.Background()

	m := &agent.Memory{ID: agent.NewID(), Embedding: []float32{1, 0, 0}}
	require.NoError(t, s.CreateMemory(ctx, m, "facts"))

	_, err := s.SearchMemoriesByEmbedding(ctx, agent.SearchMemoriesParams{
		TableName: "facts",
		Embedding: []float32{1, 0},
		Count:     10,
	})
	assert.Error(t, err)
}

func TestDeleteMemory(t *testing.T) {
	s := New("")
	ctx := context.Background()

	m := &agent.Memory{ID: agent.NewID()}
	require.NoError(t, s.CreateMemory(ctx, m, "messages"))
	require.NoError(t, s.DeleteMemory(ctx, m.ID))

	err := s.DeleteMemory(ctx, m.ID)
	assert.Error(t, err)
}

func TestRoomWorldEntityParticipant(t *testing.T) {
	s := New("")
	ctx := context.Background()

	room := &agent.Room{ID: agent.NewID(), Name: "general"}
	require.NoError(t, s.CreateRoom(ctx, room))
	got, err := s.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "general", got.Name)

	world := &agent.World{ID: agent.NewID()}
	require.NoError(t, s.CreateWorld(ctx, world))
	_, err = s.GetWorld(ctx, world.ID)
	require.NoError(t, err)

	entity := &agent.Entity{ID: agent.NewID()}
	require.NoError(t, s.CreateEntity(ctx, entity))
	_, err = s.GetEntity(ctx, entity.ID)
	require.NoError(t, err)

	participant := agent.Participant{EntityID: entity.ID, RoomID: room.ID}
	require.NoError(t, s.AddParticipant(ctx, participant))
	participants, err := s.ListParticipants(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, entity.ID, participants[0].EntityID)
}
