package session

import (
	"context"

	"github.com/kailas-cloud/omnisearch/internal/domain/preview"
	"github.com/kailas-cloud/omnisearch/internal/domain/route"
)

// PreviewResolver produces the per-category preview for one input.
type PreviewResolver interface {
	Preview(ctx context.Context, input string) []preview.Item
}

// CommitResolver resolves a submitted input to exactly one navigation.
type CommitResolver interface {
	Commit(ctx context.Context, input string, nav route.Navigator) (route.Target, error)
}
