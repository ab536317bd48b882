package knowledge

const (
	DefaultChunkSize    = 1500
	DefaultLimit        = 8
	DefaultMaxFileBytes = 512 * 1024

	// Consecutive chunks share this many bytes so a definition split across
	// a boundary still appears whole in one of them.
	chunkOverlap = 200
)
