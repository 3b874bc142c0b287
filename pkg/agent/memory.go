package agent

// MemoryMetadata carries the typed fields commonly attached to a Memory,
// plus an open extension bag.
type MemoryMetadata struct {
	MemoryType string   `json:"memoryType,omitempty"`
	EntityName string   `json:"entityName,omitempty"`
	Data       Metadata `json:"data,omitempty"`
}

// Memory is the unit of recorded experience: a message, thought, or summary
// owned by the runtime that created it and persisted through the storage
// adapter once the cycle hands it off.
type Memory struct {
	ID         ID              `json:"id"`
	EntityID   ID              `json:"entityId"`
	AgentID    ID              `json:"agentId"`
	RoomID     ID              `json:"roomId"`
	Content    Content         `json:"content"`
	Embedding  []float32       `json:"embedding,omitempty"`
	Metadata   *MemoryMetadata `json:"metadata,omitempty"`
	CreatedAt  int64           `json:"createdAt"`
	Unique     bool            `json:"unique,omitempty"`
	Similarity float32         `json:"similarity,omitempty"`
}

// MemoryQuery parameterizes a lookup against the storage adapter's memory
// table.
type MemoryQuery struct {
	EntityID  *ID
	AgentID   *ID
	RoomID    *ID
	WorldID   *ID
	Count     *int
	Offset    *int
	Unique    *bool
	TableName string
	StartMS   *int64
	EndMS     *int64
}

// SearchMemoriesParams parameterizes an embedding similarity search.
type SearchMemoriesParams struct {
	TableName string
	AgentID   *ID
	RoomID    *ID
	WorldID   *ID
	EntityID  *ID
	Embedding []float32
	Count     int
	Unique    *bool
	Threshold *float32
}
