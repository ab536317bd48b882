package knowledge

// Document is one source file to index.
type Document struct {
	Path    string
	Content string
}

// Chunk is a slice of a Document stored as one vector.
type Chunk struct {
	ID      string
	RepoKey string
	Path    string
	Index   int
	Content string
}

// Result is a retrieved chunk with its similarity score.
type Result struct {
	Path    string
	Content string
	Score   float64
}

// Config controls chunking and retrieval.
type Config struct {
	ChunkSize    int
	Limit        int
	MaxFileBytes int64
}
