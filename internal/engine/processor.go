package engine

// Processor is a specialist matching strategy for one order type. Each
// implementation owns a disjoint slice of the books, so processors are
// independent of each other within a cycle.
//
// A processor must leave its books self-consistent even when it returns an
// error: the orchestrator logs and skips a failing processor, it does not
// roll anything back.
type Processor interface {
	// Name identifies the processor in logs.
	Name() string

	// Process matches against the books reachable from the context and
	// reports the trades and order changes it produced.
	Process(cx *Context) (*Result, error)
}
