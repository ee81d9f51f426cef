// Package portfolio defines the read-only capabilities the decision pipeline
// requires from the portfolio owner. The pipeline never mutates portfolio
// state and never reserves capital; it reads a snapshot taken before
// invocation and tolerates staleness. Oversubscription across concurrent
// approvals is resolved by the execution layer, not here.
package portfolio

// Timeframe capital buckets recognized by AvailableCapital.
const (
	TimeframeSwing    = "swing"
	TimeframeLongTerm = "longterm"
)

// Portfolio is the single explicit read interface the pipeline requires.
type Portfolio interface {
	// TotalEquity returns total account equity.
	TotalEquity() float64
	// AvailableCapital returns deployable capital for the given timeframe
	// bucket, falling back to the general pool for unknown timeframes.
	AvailableCapital(timeframe string) float64
	// OpenPositions returns the count of open positions for an instrument.
	OpenPositions(instrumentID string) int
	// RiskUsedToday returns the summed risk amount of positions opened today.
	RiskUsedToday() float64
}

// SystemContext exposes account-level stress indicators for circuit breaking.
type SystemContext interface {
	// DrawdownPct returns the current drawdown from peak equity, in percent.
	DrawdownPct() float64
	// ConsecutiveLosses returns the current consecutive losing-trade count.
	ConsecutiveLosses() int
}

// Snapshot is an immutable Portfolio value, resolved before a pipeline run.
type Snapshot struct {
	Equity         float64
	SwingCapital   float64
	GeneralCapital float64
	TodaysRisk     float64
	Positions      map[string]int
}

var _ Portfolio = (*Snapshot)(nil)

func (s *Snapshot) TotalEquity() float64 { return s.Equity }

func (s *Snapshot) AvailableCapital(timeframe string) float64 {
	if timeframe == TimeframeSwing && s.SwingCapital > 0 {
		return s.SwingCapital
	}
	return s.GeneralCapital
}

func (s *Snapshot) OpenPositions(instrumentID string) int {
	return s.Positions[instrumentID]
}

func (s *Snapshot) RiskUsedToday() float64 { return s.TodaysRisk }

// ContextSnapshot is an immutable SystemContext value.
type ContextSnapshot struct {
	Drawdown float64
	Losses   int
}

var _ SystemContext = (*ContextSnapshot)(nil)

func (c *ContextSnapshot) DrawdownPct() float64   { return c.Drawdown }
func (c *ContextSnapshot) ConsecutiveLosses() int { return c.Losses }
