package service

// GateDecision is the outcome of the training gate.
type GateDecision int

const (
	// GateInsufficient means the tenant has too few example pairs to train.
	GateInsufficient GateDecision = iota
	// GateReady means training may start.
	GateReady
)

// Gate decides whether a tenant's example count justifies training an
// adapter. Pure and side-effect free; callers evaluate it against the count
// read at decision time, so it only ever gives a lower-bound guarantee.
type Gate struct {
	minExamples int
}

// NewGate creates a gate with the given example threshold.
func NewGate(minExamples int) *Gate {
	return &Gate{minExamples: minExamples}
}

// Decide returns GateReady when count reaches the threshold.
func (g *Gate) Decide(count int) GateDecision {
	if count < g.minExamples {
		return GateInsufficient
	}
	return GateReady
}

// Required returns the configured threshold, for reporting to callers.
func (g *Gate) Required() int {
	return g.minExamples
}
