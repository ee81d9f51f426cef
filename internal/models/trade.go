package models

import "time"

// Target is a profit target with its estimated hit probability.
type Target struct {
	Price       float64
	Probability float64
}

// TradeIntent is the canonical, adapter-normalized trade idea that feeds
// position sizing and the decision engine.
type TradeIntent struct {
	Symbol      string
	Bias        Bias
	Entry       float64
	Stop        float64
	Targets     []Target
	ExpectedRR  float64
	SizingHint  SizingHint
	StrategyKey string
}

// SizingResult holds the outcome of position sizing.
// Invariant: RiskAmount == RiskPerShare * Quantity.
type SizingResult struct {
	Quantity        int64
	CapitalRequired float64
	RiskAmount      float64
	RiskPercentage  float64
	RiskPerShare    float64
}

// TradeRecommendation is the fully-sized trade candidate handed to the
// decision engine and, on approval, to the execution subsystem.
type TradeRecommendation struct {
	InstrumentID string
	Entry        float64
	Stop         float64
	Targets      []Target
	Quantity     int64
	RiskAmount   float64
	Timeframe    string
	Confidence   float64
	ExpectedRR   float64
	Facts        *IndicatorFacts
	CreatedAt    time.Time
}

// IndicatorFacts is the snapshot of indicator values the recommendation was
// built from, kept for audit and for decision-engine volatility checks.
type IndicatorFacts struct {
	Close         float64
	EMA20         float64
	EMA50         float64
	EMA200        float64
	RSI           float64
	ADX           float64
	ATR           float64
	MACD          float64
	MACDSignal    float64
	MACDHistogram float64
	SupertrendDir float64
	BollUpper     float64
	BollMiddle    float64
	BollLower     float64
}
