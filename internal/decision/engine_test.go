package decision

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"swing-trader/internal/config"
	"swing-trader/internal/models"
	"swing-trader/internal/portfolio"
)

func defaultDecisionConfig() config.DecisionConfig {
	return config.DecisionConfig{
		Enabled:               true,
		MinRiskReward:         2.0,
		MinConfidence:         60.0,
		MaxVolatilityPct:      8.0,
		MaxPositionsPerSymbol: 1,
		MaxDailyRiskPct:       2.0,
	}
}

// goodRecommendation passes every default check in isolation.
func goodRecommendation() *models.TradeRecommendation {
	return &models.TradeRecommendation{
		InstrumentID: "RELIANCE",
		Entry:        100,
		Stop:         95,
		Targets:      []models.Target{{Price: 112, Probability: 0.7}},
		Quantity:     200,
		RiskAmount:   1000,
		Timeframe:    portfolio.TimeframeSwing,
		Confidence:   75,
		ExpectedRR:   2.4,
		Facts:        &models.IndicatorFacts{Close: 100, ATR: 3},
	}
}

func newTestEngine(cfg config.DecisionConfig) *Engine {
	return NewEngine(cfg, zerolog.Nop())
}

func TestDecide_ApprovesCleanRecommendation(t *testing.T) {
	e := newTestEngine(defaultDecisionConfig())
	pf := &portfolio.Snapshot{Equity: 100000}

	outcome := e.Decide(context.Background(), Input{Recommendation: goodRecommendation(), Portfolio: pf})
	if !outcome.Approved {
		t.Fatalf("want approval, got stage=%s reason=%s", outcome.Stage, outcome.Reason)
	}
	if outcome.Stage != StageApproved {
		t.Errorf("Stage = %s, want %s", outcome.Stage, StageApproved)
	}
	wantPath := []string{StageValidation, StageRiskRules, StageQuality, StagePortfolio}
	if len(outcome.DecisionPath) != len(wantPath) {
		t.Fatalf("DecisionPath = %v, want %d entries", outcome.DecisionPath, len(wantPath))
	}
	for i, stage := range wantPath {
		if !strings.HasPrefix(outcome.DecisionPath[i], stage+": ") {
			t.Errorf("DecisionPath[%d] = %q, want a %s entry with its pass reason", i, outcome.DecisionPath[i], stage)
		}
	}
}

func TestDecide_DisabledPassesThrough(t *testing.T) {
	cfg := defaultDecisionConfig()
	cfg.Enabled = false
	e := newTestEngine(cfg)

	// Even an empty input passes when the engine is off.
	outcome := e.Decide(context.Background(), Input{})
	if !outcome.Approved {
		t.Error("disabled engine must approve")
	}
	if outcome.Stage != StageDisabled {
		t.Errorf("Stage = %s, want %s", outcome.Stage, StageDisabled)
	}
}

func TestDecide_ValidationRejections(t *testing.T) {
	e := newTestEngine(defaultDecisionConfig())

	mutate := func(f func(*models.TradeRecommendation)) *models.TradeRecommendation {
		rec := goodRecommendation()
		f(rec)
		return rec
	}

	cases := []struct {
		name string
		rec  *models.TradeRecommendation
	}{
		{"nil recommendation", nil},
		{"zero entry", mutate(func(r *models.TradeRecommendation) { r.Entry = 0 })},
		{"equal entry and stop", mutate(func(r *models.TradeRecommendation) { r.Stop = r.Entry })},
		{"zero quantity", mutate(func(r *models.TradeRecommendation) { r.Quantity = 0 })},
		{"zero risk amount", mutate(func(r *models.TradeRecommendation) { r.RiskAmount = 0 })},
		{"low risk reward", mutate(func(r *models.TradeRecommendation) { r.ExpectedRR = 1.5 })},
		{"low confidence", mutate(func(r *models.TradeRecommendation) { r.Confidence = 50 })},
	}
	for _, tc := range cases {
		outcome := e.Decide(context.Background(), Input{Recommendation: tc.rec})
		if outcome.Approved {
			t.Errorf("%s: want rejection", tc.name)
			continue
		}
		if outcome.Stage != StageValidation {
			t.Errorf("%s: Stage = %s, want %s", tc.name, outcome.Stage, StageValidation)
		}
	}
}

func TestDecide_RiskRuleRejections(t *testing.T) {
	e := newTestEngine(defaultDecisionConfig())

	t.Run("excessive volatility", func(t *testing.T) {
		rec := goodRecommendation()
		rec.Facts.ATR = 10 // 10% of close
		outcome := e.Decide(context.Background(), Input{Recommendation: rec})
		if outcome.Approved || outcome.Stage != StageRiskRules {
			t.Errorf("outcome = %+v, want risk_rules rejection", outcome)
		}
	})

	t.Run("missing ATR passes the volatility check", func(t *testing.T) {
		rec := goodRecommendation()
		rec.Facts = nil
		outcome := e.Decide(context.Background(), Input{Recommendation: rec})
		if !outcome.Approved {
			t.Errorf("outcome = %+v, want approval without ATR data", outcome)
		}
	})

	t.Run("single trade over the daily budget", func(t *testing.T) {
		// 1000 risk on 40000 equity is 2.5%, over the 2% cap by itself.
		pf := &portfolio.Snapshot{Equity: 40000, GeneralCapital: 40000}
		outcome := e.Decide(context.Background(), Input{Recommendation: goodRecommendation(), Portfolio: pf})
		if outcome.Approved || outcome.Stage != StageRiskRules {
			t.Errorf("outcome = %+v, want risk_rules rejection", outcome)
		}
	})

	t.Run("cumulative daily risk over budget", func(t *testing.T) {
		// 1500 used plus 1000 new on 100000 equity is 2.5%, over the 2% cap.
		pf := &portfolio.Snapshot{Equity: 100000, GeneralCapital: 100000, TodaysRisk: 1500}
		outcome := e.Decide(context.Background(), Input{Recommendation: goodRecommendation(), Portfolio: pf})
		if outcome.Approved || outcome.Stage != StageRiskRules {
			t.Errorf("outcome = %+v, want risk_rules rejection", outcome)
		}
	})
}

func TestDecide_CircuitBreaker(t *testing.T) {
	e := newTestEngine(defaultDecisionConfig())

	t.Run("drawdown", func(t *testing.T) {
		sys := &portfolio.ContextSnapshot{Drawdown: 15}
		outcome := e.Decide(context.Background(), Input{Recommendation: goodRecommendation(), System: sys})
		if outcome.Approved {
			t.Fatal("want rejection at 15% drawdown")
		}
		if !strings.Contains(outcome.Reason, "circuit breaker") {
			t.Errorf("Reason = %q, want a circuit breaker reason", outcome.Reason)
		}
	})

	t.Run("loss streak", func(t *testing.T) {
		sys := &portfolio.ContextSnapshot{Losses: 3}
		outcome := e.Decide(context.Background(), Input{Recommendation: goodRecommendation(), System: sys})
		if outcome.Approved {
			t.Fatal("want rejection after 3 consecutive losses")
		}
	})

	t.Run("below thresholds", func(t *testing.T) {
		sys := &portfolio.ContextSnapshot{Drawdown: 14.9, Losses: 2}
		outcome := e.Decide(context.Background(), Input{Recommendation: goodRecommendation(), System: sys})
		if !outcome.Approved {
			t.Errorf("outcome = %+v, want approval below the breaker thresholds", outcome)
		}
	})
}

func TestDecide_PortfolioConstraints(t *testing.T) {
	e := newTestEngine(defaultDecisionConfig())

	t.Run("position cap", func(t *testing.T) {
		pf := &portfolio.Snapshot{Equity: 1000000, Positions: map[string]int{"RELIANCE": 1}}
		outcome := e.Decide(context.Background(), Input{Recommendation: goodRecommendation(), Portfolio: pf})
		if outcome.Approved || outcome.Stage != StagePortfolio {
			t.Errorf("outcome = %+v, want portfolio_constraints rejection", outcome)
		}
	})

	t.Run("insufficient capital", func(t *testing.T) {
		// 200 shares at 100 needs 20000; the swing bucket only holds 15000.
		pf := &portfolio.Snapshot{Equity: 1000000, SwingCapital: 15000, GeneralCapital: 500000}
		outcome := e.Decide(context.Background(), Input{Recommendation: goodRecommendation(), Portfolio: pf})
		if outcome.Approved || outcome.Stage != StagePortfolio {
			t.Errorf("outcome = %+v, want portfolio_constraints rejection", outcome)
		}
	})

	t.Run("capital available in the swing bucket", func(t *testing.T) {
		pf := &portfolio.Snapshot{Equity: 1000000, SwingCapital: 50000, GeneralCapital: 500000}
		outcome := e.Decide(context.Background(), Input{Recommendation: goodRecommendation(), Portfolio: pf})
		if !outcome.Approved {
			t.Errorf("outcome = %+v, want approval with sufficient swing capital", outcome)
		}
	})

	t.Run("no portfolio view passes", func(t *testing.T) {
		outcome := e.Decide(context.Background(), Input{Recommendation: goodRecommendation()})
		if !outcome.Approved {
			t.Errorf("outcome = %+v, want approval without a portfolio view", outcome)
		}
	})
}

func TestDecide_PanickingQualityCheckRejects(t *testing.T) {
	panicking := func(*models.TradeRecommendation) (string, bool) {
		panic("boom")
	}
	e := NewEngineWithQuality(defaultDecisionConfig(), panicking, zerolog.Nop())

	outcome := e.Decide(context.Background(), Input{Recommendation: goodRecommendation()})
	if outcome.Approved {
		t.Fatal("a panicking stage must reject, never approve")
	}
	if outcome.Stage != StageError {
		t.Errorf("Stage = %s, want %s", outcome.Stage, StageError)
	}
}

func TestDefaultQualityCheck(t *testing.T) {
	t.Run("passes a sound long setup", func(t *testing.T) {
		if reason, ok := DefaultQualityCheck(goodRecommendation()); !ok {
			t.Errorf("want pass, got %q", reason)
		}
	})

	t.Run("rejects missing targets", func(t *testing.T) {
		rec := goodRecommendation()
		rec.Targets = nil
		if _, ok := DefaultQualityCheck(rec); ok {
			t.Error("want failure without targets")
		}
	})

	t.Run("rejects target on the wrong side", func(t *testing.T) {
		rec := goodRecommendation()
		rec.Targets = []models.Target{{Price: 97, Probability: 0.7}}
		if _, ok := DefaultQualityCheck(rec); ok {
			t.Error("want failure for a long setup with a target below entry")
		}
	})

	t.Run("rejects a stop tighter than half the ATR", func(t *testing.T) {
		rec := goodRecommendation()
		rec.Stop = 99 // distance 1 against ATR 3
		if _, ok := DefaultQualityCheck(rec); ok {
			t.Error("want failure for an over-tight stop")
		}
	})

	t.Run("short setup with target below entry passes", func(t *testing.T) {
		rec := goodRecommendation()
		rec.Stop = 105
		rec.Targets = []models.Target{{Price: 88, Probability: 0.7}}
		if reason, ok := DefaultQualityCheck(rec); !ok {
			t.Errorf("want pass, got %q", reason)
		}
	})
}

func TestDecide_CancelledContext(t *testing.T) {
	e := newTestEngine(defaultDecisionConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := e.Decide(ctx, Input{Recommendation: goodRecommendation()})
	if outcome.Approved {
		t.Error("a cancelled context must not approve")
	}
	if outcome.Stage != StageError {
		t.Errorf("Stage = %s, want %s", outcome.Stage, StageError)
	}
}
