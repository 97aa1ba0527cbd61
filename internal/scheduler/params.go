package scheduler

import (
	"math"

	"github.com/conorfennell/repeat/internal/domain"
)

// GradeTable holds one constant per review grade, indexed Again..Easy.
type GradeTable [4]float64

// For returns the table entry for the given grade. The grade must be valid.
func (t GradeTable) For(g domain.Grade) float64 {
	return t[g-domain.Again]
}

// Params holds every constant of the scheduling algorithm. The shape of the
// formulas is fixed; the constants are calibration and may be overridden
// through configuration.
type Params struct {
	// DesiredRetention is the recall probability the next interval is
	// solved for.
	DesiredRetention float64 `koanf:"desired_retention" validate:"gt=0,lt=1"`

	// Decay is the exponent of the forgetting curve, strictly negative.
	Decay float64 `koanf:"decay" validate:"lt=0"`

	// Factor is the multiplier of the forgetting curve. The default is
	// derived from Decay so that recall at an elapsed time equal to the
	// stability is exactly 0.9; overriding it rescales the whole curve.
	Factor float64 `koanf:"factor" validate:"gt=0"`

	// MaxIntervalDays caps the rounded interval.
	MaxIntervalDays int `koanf:"max_interval_days" validate:"gte=1"`

	// InitialStability and InitialDifficulty seed the memory state on the
	// first review, one constant per grade. Stability rises and difficulty
	// falls with the grade.
	InitialStability  GradeTable `koanf:"initial_stability" validate:"dive,gt=0"`
	InitialDifficulty GradeTable `koanf:"initial_difficulty" validate:"dive,gte=1,lte=10"`

	// DifficultyDelta scales the per-review difficulty shift: positive for
	// Again, negative for Easy, zero for Good.
	DifficultyDelta float64 `koanf:"difficulty_delta" validate:"gt=0"`

	// DifficultyMeanReversion pulls difficulty toward DifficultyBaseline a
	// little on every update so it does not drift monotonically into the
	// bounds.
	DifficultyMeanReversion float64 `koanf:"difficulty_mean_reversion" validate:"gte=0,lte=1"`
	DifficultyBaseline      float64 `koanf:"difficulty_baseline" validate:"gte=1,lte=10"`

	// Successful-recall stability growth: S' = S * (1 + StabilityGrowth *
	// (11 - D) * S^-StabilitySaturation * (e^(RetrievabilityBoost*(1-R)) - 1)
	// * penalty/bonus).
	StabilityGrowth     float64 `koanf:"stability_growth" validate:"gt=0"`
	StabilitySaturation float64 `koanf:"stability_saturation" validate:"gte=0"`
	RetrievabilityBoost float64 `koanf:"retrievability_boost" validate:"gt=0"`
	HardPenalty         float64 `koanf:"hard_penalty" validate:"gt=0,lte=1"`
	EasyBonus           float64 `koanf:"easy_bonus" validate:"gte=1"`

	// Lapse stability: S' = LapseScale * D^-LapseDifficultyDecay *
	// ((S+1)^LapseStabilityGrowth - 1) * e^(LapseRetrievabilityBoost*(1-R)),
	// never above the prior stability.
	LapseScale               float64 `koanf:"lapse_scale" validate:"gt=0"`
	LapseDifficultyDecay     float64 `koanf:"lapse_difficulty_decay" validate:"gte=0"`
	LapseStabilityGrowth     float64 `koanf:"lapse_stability_growth" validate:"gt=0"`
	LapseRetrievabilityBoost float64 `koanf:"lapse_retrievability_boost" validate:"gte=0"`
}

// DefaultParams returns the stock calibration. The values follow the
// published FSRS defaults where this model overlaps with it.
func DefaultParams() *Params {
	p := &Params{
		DesiredRetention:         0.9,
		Decay:                    -0.5,
		MaxIntervalDays:          36500,
		InitialStability:         GradeTable{0.21, 1.29, 2.31, 8.30},
		InitialDifficulty:        GradeTable{7.20, 6.20, 4.90, 2.50},
		DifficultyDelta:          0.84,
		DifficultyMeanReversion:  0.06,
		DifficultyBaseline:       4.0,
		StabilityGrowth:          6.50,
		StabilitySaturation:      0.17,
		RetrievabilityBoost:      0.80,
		HardPenalty:              0.60,
		EasyBonus:                1.90,
		LapseScale:               1.65,
		LapseDifficultyDecay:     0.15,
		LapseStabilityGrowth:     0.26,
		LapseRetrievabilityBoost: 1.65,
	}
	p.Factor = math.Pow(0.9, 1.0/p.Decay) - 1
	return p
}
