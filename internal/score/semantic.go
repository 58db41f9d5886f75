package score

import "context"

// SemanticSource supplies the vector-similarity component on a 0..100 scale.
// Embedding generation and vector search live outside this engine; callers
// wire in whatever backend they have.
type SemanticSource interface {
	Similarity(ctx context.Context, userID string, jobID int64) (int, error)
}

// FlatSemantic returns a fixed value for every pair. The default of 50 keeps
// overall scores meaningful when no vector backend is configured.
type FlatSemantic struct {
	Value int
}

func (f FlatSemantic) Similarity(context.Context, string, int64) (int, error) {
	return f.Value, nil
}
