package qdrant

// CreateCollectionRequest defines the schema for creating a collection.
type CreateCollectionRequest struct {
	Name    string       `json:"-"` // Collection name (in URL)
	Vectors VectorConfig `json:"vectors"`
}

// VectorConfig defines vector dimension and distance metric.
type VectorConfig struct {
	Size     int    `json:"size"`     // Vector dimension (1024 for voyage-code-3)
	Distance string `json:"distance"` // "Cosine", "Euclid", "Dot"
}

// Point represents a vector with payload (metadata).
// Qdrant only accepts UUID strings or unsigned integers as ids.
type Point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// UpsertPointsRequest is the request to insert/update points.
type UpsertPointsRequest struct {
	Points []Point `json:"points"`
}

// Filter is a payload filter. Only exact-match conditions are used.
type Filter struct {
	Must []Condition `json:"must,omitempty"`
}

type Condition struct {
	Key   string `json:"key"`
	Match Match  `json:"match"`
}

type Match struct {
	Value any `json:"value"`
}

// MatchField builds a single-condition filter on key == value.
func MatchField(key string, value any) Filter {
	return Filter{Must: []Condition{{Key: key, Match: Match{Value: value}}}}
}

// SearchRequest is the request for semantic search.
type SearchRequest struct {
	Vector      []float32 `json:"vector"`           // Query vector
	Limit       int       `json:"limit"`            // Top-K results
	WithPayload bool      `json:"with_payload"`     // Include metadata
	Filter      *Filter   `json:"filter,omitempty"` // Optional filters
}

// SearchResponse contains search results.
type SearchResponse struct {
	Result []ScoredPoint `json:"result"`
}

// ScoredPoint is a search result with similarity score.
type ScoredPoint struct {
	ID      any            `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// DeletePointsRequest is the request to delete points.
type DeletePointsRequest struct {
	Points []string `json:"points"`
}

// DeleteByFilterRequest deletes every point matching Filter.
type DeleteByFilterRequest struct {
	Filter Filter `json:"filter"`
}
