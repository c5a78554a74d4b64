package search

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/usecase/resolve"
	"github.com/kailas-cloud/omnisearch/internal/usecase/unknown"
)

// Engine bundles the resolvers serving one network.
type Engine struct {
	Previewer Previewer
	Committer Committer
}

// NewEngine wires a previewer, an unknown fallback and a committer over the same probes.
func NewEngine(probes []resolve.Binding, logger *zap.Logger) Engine {
	fallback := unknown.New(probes, logger)
	return Engine{
		Previewer: resolve.NewPreviewer(probes, logger),
		Committer: resolve.NewCommitter(probes, fallback, logger),
	}
}
