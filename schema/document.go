package schema

// SourceBuiltin marks documents from the hand-authored fallback set.
const SourceBuiltin = "builtin"

// Document is a classified chunk of a source file, the unit of embedding and retrieval.
type Document struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Source   string `json:"source"`
	// ChunkID is the split position within the source file; it is not globally unique.
	ChunkID  int    `json:"chunk_id"`
	FilePath string `json:"file_path,omitempty"`
	// Scores is nil for builtin documents, which bypass classification.
	Scores *Scores `json:"scores,omitempty"`
}

// Scores holds classifier confidences attached at ingestion.
type Scores struct {
	Relevance          float64 `json:"relevance_score"`
	CategoryConfidence float64 `json:"category_confidence"`
}

// IsBuiltin reports whether the document comes from the fallback set.
func (d *Document) IsBuiltin() bool {
	return d.Source == SourceBuiltin
}

// Result is a search hit.
type Result struct {
	Document Document `json:"document"`
	Score    float32  `json:"score"`
}
