package persist

import "time"

// Manifest describes a saved index.
type Manifest struct {
	ModelName          string         `json:"model_name"`
	NumDocuments       int            `json:"num_documents"`
	EmbeddingDimension int            `json:"embedding_dimension"`
	CreatedAt          time.Time      `json:"created_at"`
	SourceBreakdown    map[string]int `json:"source_breakdown"`
	BuildID            string         `json:"build_id"`
}
