// Package store provides persistence for the decision journal and a local
// candle cache.
package store

import (
	"context"
	"time"

	"swing-trader/internal/models"
)

// DecisionRecord is one journaled decision-engine outcome.
type DecisionRecord struct {
	ID           int64
	Timestamp    time.Time
	Symbol       string
	Approved     bool
	Stage        string
	Reason       string
	DecisionPath []string
	Entry        float64
	Stop         float64
	Quantity     int64
	RiskAmount   float64
	Confidence   float64
	ExpectedRR   float64
}

// DecisionFilter narrows journal queries. Zero values mean "no constraint".
type DecisionFilter struct {
	Symbol       string
	OnlyApproved bool
	Since        time.Time
	Limit        int
}

// DecisionStats summarizes the journal.
type DecisionStats struct {
	Total         int
	Approved      int
	Rejected      int
	RejectByStage map[string]int
}

// DecisionStore journals engine outcomes for later review.
type DecisionStore interface {
	SaveDecision(ctx context.Context, rec *DecisionRecord) error
	GetDecisions(ctx context.Context, filter DecisionFilter) ([]DecisionRecord, error)
	GetDecisionStats(ctx context.Context) (*DecisionStats, error)
	Close() error
}

// CandleStore caches candle series locally.
type CandleStore interface {
	SaveCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) error
	GetCandles(ctx context.Context, symbol, timeframe string, from, to time.Time) ([]models.Candle, error)
}
