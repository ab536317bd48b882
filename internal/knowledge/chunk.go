package knowledge

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var chunkNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8") // URL namespace

// ChunkID is the deterministic point id of chunk index of path in repoKey,
// so re-ingesting a file overwrites its previous vectors.
func ChunkID(repoKey, path string, index int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(repoKey+":"+path+":"+strconv.Itoa(index))).String()
}

// Split cuts doc into chunks of at most size bytes, preferring line
// boundaries. Empty documents yield no chunks.
func Split(repoKey string, doc Document, size int) []Chunk {
	if size <= chunkOverlap {
		size = DefaultChunkSize
	}
	content := strings.TrimSpace(doc.Content)
	if content == "" {
		return nil
	}

	var chunks []Chunk
	for start := 0; start < len(content); {
		end := start + size
		if end >= len(content) {
			end = len(content)
		} else if nl := strings.LastIndexByte(content[start:end], '\n'); nl > size/2 {
			end = start + nl + 1
		} else {
			for end > start && !utf8.RuneStart(content[end]) {
				end--
			}
		}

		chunks = append(chunks, Chunk{
			ID:      ChunkID(repoKey, doc.Path, len(chunks)),
			RepoKey: repoKey,
			Path:    doc.Path,
			Index:   len(chunks),
			Content: content[start:end],
		})

		if end == len(content) {
			break
		}
		next := end - chunkOverlap
		if next <= start {
			next = end
		}
		for next < end && !utf8.RuneStart(content[next]) {
			next++
		}
		start = next
	}
	return chunks
}
