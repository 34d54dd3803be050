package scoring

import (
	"go.uber.org/zap"

	"github.com/rustyeddy/execution/order"
)

// Weights drives the legacy deterministic score.
type Weights struct {
	FillProb       float64 `json:"fill_prob" yaml:"fill_prob"`
	ManualPriority float64 `json:"manual_priority" yaml:"manual_priority"`
	Efficiency     float64 `json:"efficiency" yaml:"efficiency"`
	TimeframeMatch float64 `json:"timeframe_match" yaml:"timeframe_match"`
	SetupBias      float64 `json:"setup_bias" yaml:"setup_bias"`
	SizePref       float64 `json:"size_pref" yaml:"size_pref"`
}

// QualityWeights drives the two-layer quality score. Fill probability is
// deliberately absent: it must never gate execution, only break ties in the
// legacy mode.
type QualityWeights struct {
	ManualPriority float64 `json:"manual_priority" yaml:"manual_priority"`
	Efficiency     float64 `json:"efficiency" yaml:"efficiency"`
	RiskReward     float64 `json:"risk_reward" yaml:"risk_reward"`
	TimeframeMatch float64 `json:"timeframe_match" yaml:"timeframe_match"`
	SetupBias      float64 `json:"setup_bias" yaml:"setup_bias"`
}

// Thresholds gates the setup-bias feature on sample quality.
type Thresholds struct {
	MinTradesForBias int     `json:"min_trades_for_bias" yaml:"min_trades_for_bias"`
	MinWinRate       float64 `json:"min_win_rate" yaml:"min_win_rate"`
	MinProfitFactor  float64 `json:"min_profit_factor" yaml:"min_profit_factor"`
}

func DefaultWeights() Weights {
	return Weights{FillProb: 0.25, ManualPriority: 0.20, Efficiency: 0.20,
		TimeframeMatch: 0.15, SetupBias: 0.10, SizePref: 0.10}
}

func DefaultQualityWeights() QualityWeights {
	return QualityWeights{ManualPriority: 0.30, Efficiency: 0.25, RiskReward: 0.20,
		TimeframeMatch: 0.15, SetupBias: 0.10}
}

func DefaultThresholds() Thresholds {
	return Thresholds{MinTradesForBias: 10, MinWinRate: 0.45, MinProfitFactor: 1.2}
}

// Scorer computes per-candidate components and both score flavors. It is
// pure apart from the optional market-context lookups.
type Scorer struct {
	Weights    Weights
	Quality    QualityWeights
	Thresholds Thresholds

	// Compat maps a candidate timeframe to the dominant timeframes it is
	// considered compatible with.
	Compat map[string][]string

	// Advanced enables the timeframe and setup-history features. When off,
	// both report their neutral 0.5.
	Advanced bool

	Context MarketContext
	Log     *zap.Logger
}

func NewScorer(w Weights, q QualityWeights, t Thresholds, compat map[string][]string, advanced bool, ctx MarketContext, log *zap.Logger) *Scorer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scorer{Weights: w, Quality: q, Thresholds: t, Compat: compat,
		Advanced: advanced, Context: ctx, Log: log}
}

// TimeframeMatch scores how well the candidate's timeframe fits the symbol's
// dominant timeframe: 1.0 exact, 0.7 compatible, 0.3 incompatible, 0.5 when
// the feature is disabled or either side is unknown.
func (s *Scorer) TimeframeMatch(symbol, timeframe string) float64 {
	if !s.Advanced || s.Context == nil || timeframe == "" {
		return 0.5
	}
	dominant, err := s.Context.DominantTimeframe(symbol)
	if err != nil || dominant == "" {
		return 0.5
	}
	if timeframe == dominant {
		return 1.0
	}
	for _, tf := range s.Compat[timeframe] {
		if tf == dominant {
			return 0.7
		}
	}
	return 0.3
}

// SetupBias scores the historical edge of a named setup in [0.1, 1.0].
// Without a usable sample it is the neutral 0.5: feature disabled, no name,
// lookup failure, or too few trades.
func (s *Scorer) SetupBias(name string) float64 {
	if !s.Advanced || s.Context == nil || name == "" {
		return 0.5
	}
	stats, err := s.Context.SetupPerformance(name)
	if err != nil {
		s.Log.Debug("setup performance lookup failed", zap.String("setup", name), zap.Error(err))
		return 0.5
	}
	if stats == nil || stats.TotalTrades < s.Thresholds.MinTradesForBias {
		return 0.5
	}

	bias := 0.5 + (stats.WinRate-s.Thresholds.MinWinRate) + (stats.ProfitFactor-s.Thresholds.MinProfitFactor)*0.1
	if bias < 0.1 {
		return 0.1
	}
	if bias > 1.0 {
		return 1.0
	}
	return bias
}

// Components computes every normalized feature for one candidate.
func (s *Scorer) Components(o order.PlannedOrder, qty, commitment, totalCapital float64) Components {
	return Components{
		Efficiency:      Efficiency(o, qty, commitment),
		TimeframeMatch:  s.TimeframeMatch(o.Symbol, o.Timeframe),
		SetupBias:       s.SetupBias(o.Setup),
		RiskRewardScore: RiskRewardScore(o.RiskReward),
		PriorityNorm:    PriorityNorm(o.Priority),
		SizePref:        SizePref(commitment, totalCapital),
	}
}

// LegacyScore is the original weighted sum. normEfficiency is the candidate's
// efficiency min-max normalized across the cycle's whole candidate set, which
// is why it arrives separately from Components.
func (s *Scorer) LegacyScore(c Components, fillProb, normEfficiency float64) float64 {
	return s.Weights.FillProb*fillProb +
		s.Weights.ManualPriority*c.PriorityNorm +
		s.Weights.Efficiency*normEfficiency +
		s.Weights.SizePref*c.SizePref +
		s.Weights.TimeframeMatch*c.TimeframeMatch +
		s.Weights.SetupBias*c.SetupBias
}

// QualityScore ranks candidates independently of fill probability.
func (s *Scorer) QualityScore(c Components) float64 {
	return s.Quality.ManualPriority*c.PriorityNorm +
		s.Quality.Efficiency*c.Efficiency +
		s.Quality.RiskReward*c.RiskRewardScore +
		s.Quality.TimeframeMatch*c.TimeframeMatch +
		s.Quality.SetupBias*c.SetupBias
}

// MinMaxNormalize rescales values onto [0,1]. A flat series normalizes to
// all zeros.
func MinMaxNormalize(vals []float64) []float64 {
	if len(vals) == 0 {
		return nil
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]float64, len(vals))
	if hi == lo {
		return out
	}
	for i, v := range vals {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}
