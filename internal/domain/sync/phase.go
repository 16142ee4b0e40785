package sync

// Phase identifies a stage of a reconciliation run
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseCategories   Phase = "categories"
	PhaseProducts     Phase = "products"
	PhaseStockRefresh Phase = "stock_refresh"
	PhaseDone         Phase = "done"
)

// next defines the forward edges of the phase state machine. StockRefresh
// is optional; both Products and StockRefresh may complete a run.
var next = map[Phase][]Phase{
	PhaseIdle:         {PhaseCategories},
	PhaseCategories:   {PhaseProducts},
	PhaseProducts:     {PhaseStockRefresh, PhaseDone},
	PhaseStockRefresh: {PhaseDone},
}

// CanTransition reports whether a run may advance from one phase to
// another. Per-record errors never block progression; only a
// connection-level failure terminates a run, and that is modeled by
// stopping, not by a transition.
func CanTransition(from, to Phase) bool {
	for _, allowed := range next[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
