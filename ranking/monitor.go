package ranking

import "github.com/poiesic/colormatch/core"

// Monitor provides hooks to observe a ranking pass.
type Monitor interface {
	Start(reference *core.CatalogItem, candidates int)
	CandidateSkipped(item *core.CatalogItem, reason string)
	Finish(matches []Match)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *core.CatalogItem, _ int)               {}
func (n *noopMonitor) CandidateSkipped(_ *core.CatalogItem, _ string) {}
func (n *noopMonitor) Finish(_ []Match)                               {}
