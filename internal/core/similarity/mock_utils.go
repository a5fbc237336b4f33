package similarity

import (
	"context"
)

type MockEmbedderClient struct {
	Vectors map[string][]float32 // text -> embedding
	Err     error
}

func (m *MockEmbedderClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vectors[text], nil
}
