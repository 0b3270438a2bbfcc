package search

import "github.com/kirezi/inyishu/core"

// Monitor provides hooks to observe the query pipeline.
// Implement this interface to track intermediate stages during a query.
// Callbacks arrive sequentially; implementations need no locking.
type Monitor interface {
	Start(question string)
	Normalized(query string)
	MethodReturned(list core.RankedList)
	Fused(results []core.FusedResult)
	GateDecision(accepted bool, confidence float64, threshold float64)
	Finish(answer *core.Answer)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                          {}
func (n *noopMonitor) Normalized(_ string)                     {}
func (n *noopMonitor) MethodReturned(_ core.RankedList)        {}
func (n *noopMonitor) Fused(_ []core.FusedResult)              {}
func (n *noopMonitor) GateDecision(_ bool, _ float64, _ float64) {}
func (n *noopMonitor) Finish(_ *core.Answer)                   {}
