// Package datagen produces synthetic session datasets for demos, fixtures
// and the standalone CSV generator. The curve is deterministic (two-phase:
// rapid improvement, then plateau after the inflection index); only the
// noise is stochastic, and a fixed seed makes the whole output reproducible.
package datagen

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Pattern selects the shape of the pre-inflection success curve.
type Pattern string

const (
	PatternLinear Pattern = "linear"
	PatternCurved Pattern = "curved"
)

// Default generation parameters.
const (
	DefaultSessionCount     = 200
	DefaultInflectionIndex  = 130
	DefaultNoiseProbability = 0.15
)

// sessionBaseTime anchors the synthetic start/end timestamps. The value is
// arbitrary but fixed so seeded output is fully reproducible.
var sessionBaseTime = time.Date(2024, 8, 24, 10, 0, 0, 0, time.UTC)

// Params configures a synthetic dataset.
type Params struct {
	SessionCount     int     `json:"session_count" validate:"min=1,max=10000"`
	InflectionIndex  int     `json:"inflection_index" validate:"min=1"`
	NoiseProbability float64 `json:"noise_probability" validate:"min=0,max=1"`
	Pattern          Pattern `json:"pattern" validate:"oneof=linear curved"`
	Seed             int64   `json:"seed,omitempty"`
}

// DefaultParams returns the standard demo dataset shape.
func DefaultParams() Params {
	return Params{
		SessionCount:     DefaultSessionCount,
		InflectionIndex:  DefaultInflectionIndex,
		NoiseProbability: DefaultNoiseProbability,
		Pattern:          PatternCurved,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks parameter ranges; the inflection index is additionally
// capped at the session count.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid generator params: %w", err)
	}
	if p.InflectionIndex > p.SessionCount {
		return fmt.Errorf("invalid generator params: inflection index %d exceeds session count %d",
			p.InflectionIndex, p.SessionCount)
	}
	return nil
}

// Session is one synthetic session with a binary success outcome and the
// identifiers both CSV source formats need.
type Session struct {
	Index           int
	SessionID       string
	UserID          string
	OrderID         string
	DurationSeconds float64
	Outcome         int // 1 success, 0 failure
	StartTime       time.Time
	EndTime         time.Time
}

// RatePoint is one point of the continuous-rate generator used for direct
// chart demos.
type RatePoint struct {
	SessionID       string
	DurationSeconds float64
	SuccessRate     float64
}

// Generate produces binary-outcome sessions: a uniform draw against the base
// probability decides the outcome, then the outcome is flipped with the
// configured noise probability. Durations grow strictly linearly with the
// session index.
func Generate(params Params) ([]Session, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	rng := newRNG(params.Seed)

	sessions := make([]Session, 0, params.SessionCount)
	for i := 1; i <= params.SessionCount; i++ {
		outcome := 0
		if rng.Float64() < BaseProbability(i, params) {
			outcome = 1
		}
		if rng.Float64() < params.NoiseProbability {
			outcome = 1 - outcome
		}

		duration := DurationForIndex(i)
		start := sessionBaseTime.Add(time.Duration(i) * time.Minute)
		sessions = append(sessions, Session{
			Index:           i,
			SessionID:       fmt.Sprintf("sess_%04d", i),
			UserID:          fmt.Sprintf("user_%04d", 1+rng.Intn(params.SessionCount)),
			OrderID:         uuid.NewString(),
			DurationSeconds: duration,
			Outcome:         outcome,
			StartTime:       start,
			EndTime:         start.Add(time.Duration(duration * float64(time.Second))),
		})
	}
	return sessions, nil
}

// GenerateContinuous produces continuous success rates instead of binary
// outcomes: the base probability becomes a percentage and Gaussian noise
// scaled by the noise probability is added, clamped to [0, 100].
func GenerateContinuous(params Params) ([]RatePoint, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	rng := newRNG(params.Seed)

	points := make([]RatePoint, 0, params.SessionCount)
	for i := 1; i <= params.SessionCount; i++ {
		rate := BaseProbability(i, params)*100 + rng.NormFloat64()*params.NoiseProbability*20
		points = append(points, RatePoint{
			SessionID:       fmt.Sprintf("sess_%04d", i),
			DurationSeconds: DurationForIndex(i),
			SuccessRate:     clamp(rate, 0, 100),
		})
	}
	return points, nil
}

// DurationForIndex is the deterministic duration curve: 1.0s for the first
// session, growing 0.2s per session.
func DurationForIndex(i int) float64 {
	return 1.0 + float64(i-1)*0.2
}

// BaseProbability is the two-phase success curve. Before the inflection the
// curved pattern decays as 0.55 + 0.44*(1 - progress^0.7) and the linear
// pattern interpolates 0.99 down to 0.55; past the inflection the
// probability is a flat 0.05.
func BaseProbability(i int, params Params) float64 {
	if i > params.InflectionIndex {
		return 0.05
	}

	progress := 0.0
	if params.InflectionIndex > 1 {
		progress = float64(i-1) / float64(params.InflectionIndex-1)
	}

	if params.Pattern == PatternLinear {
		return 0.99 - (0.99-0.55)*progress
	}
	return 0.55 + 0.44*(1-math.Pow(progress, 0.7))
}

func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
