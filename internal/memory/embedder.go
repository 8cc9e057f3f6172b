package memory

import (
	"context"

	"github.com/briankw/theo/internal/openai"
)

// NewOpenAIEmbedFunc returns an EmbedFunc backed by the embeddings endpoint
// of the given client, bound to one model.
func NewOpenAIEmbedFunc(client *openai.Client, model string) EmbedFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return client.Embed(ctx, text, model)
	}
}
