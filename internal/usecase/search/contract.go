package search

import (
	"context"

	"github.com/kailas-cloud/omnisearch/internal/domain/preview"
	"github.com/kailas-cloud/omnisearch/internal/domain/route"
	"github.com/kailas-cloud/omnisearch/internal/usecase/session"
)

// Previewer runs the incremental resolution for one network.
type Previewer interface {
	Preview(ctx context.Context, input string) []preview.Item
}

// Committer runs the commit resolution for one network.
type Committer interface {
	Commit(ctx context.Context, input string, nav route.Navigator) (route.Target, error)
}

// SessionStore keeps live resolution sessions.
type SessionStore interface {
	Save(s *session.Session)
	Get(id string) (*session.Session, error)
	Delete(id string) error
}
