package analysis

import (
	"math"

	"sessionpulse/pkg/contracts/domain"
)

// SplitStrategy names an inflection-point detection algorithm.
type SplitStrategy string

const (
	// SplitSlopeChange bins the sorted series and picks the bucket boundary
	// with the largest local slope change. Primary algorithm.
	SplitSlopeChange SplitStrategy = "slopechange"
	// SplitQuantile cuts at the fixed 65th-percentile index. Fallback for
	// short series, kept selectable for parity with the simpler variant.
	SplitQuantile SplitStrategy = "quantile"
)

const (
	// quantileFraction is the fixed cut used by the quantile strategy.
	quantileFraction = 0.65
	// minPointsForBinning is the smallest series the slope-change detector
	// will bin; below it the quantile cut applies.
	minPointsForBinning = 10
	// slopeChangeBins is the target bucket count for the slope-change
	// detector.
	slopeChangeBins = 20
	// splitSearchLow/High restrict slope-change candidates to the plausible
	// middle range of the series.
	splitSearchLow  = 0.2
	splitSearchHigh = 0.8
)

// Smoothing window bounds.
const (
	MinWindowSize     = 5
	MaxWindowSize     = 25
	DefaultWindowSize = 10
)

// Options configures statistics computation.
type Options struct {
	Strategy   SplitStrategy `json:"strategy" validate:"omitempty,oneof=slopechange quantile"`
	WindowSize int           `json:"window_size" validate:"omitempty,min=5,max=25"`
}

// Normalized returns a copy with the strategy defaulted and the window
// clamped into [MinWindowSize, MaxWindowSize].
func (o Options) Normalized() Options {
	if o.Strategy == "" {
		o.Strategy = SplitSlopeChange
	}
	if o.WindowSize == 0 {
		o.WindowSize = DefaultWindowSize
	}
	if o.WindowSize < MinWindowSize {
		o.WindowSize = MinWindowSize
	}
	if o.WindowSize > MaxWindowSize {
		o.WindowSize = MaxWindowSize
	}
	return o
}

// Compute derives the statistics summary for a duration-sorted fused record
// set. successCount and durationCount are the sizes of the two source record
// sets; the reported total is their maximum (the union upper bound) so the
// match rate stays meaningful.
func Compute(fused []domain.FusedRecord, successCount, durationCount int, opts Options) domain.StatisticsSummary {
	opts = opts.Normalized()

	summary := domain.StatisticsSummary{
		TotalSessions:   maxInt(successCount, durationCount),
		MatchedSessions: len(fused),
	}
	if len(fused) == 0 {
		return summary
	}

	split := SplitIndex(fused, opts.Strategy)
	summary.InflectionDuration = fused[split].DurationSeconds
	summary.EarlySuccessRate = meanRate(fused[:split])
	summary.LateSuccessRate = meanRate(fused[split:])

	durations := make([]float64, len(fused))
	rates := make([]float64, len(fused))
	for i, f := range fused {
		durations[i] = f.DurationSeconds
		rates[i] = f.SuccessRate
	}

	summary.Correlation = pearson(durations, rates)
	summary.PreSlope = leastSquaresSlope(durations[:split], rates[:split])
	summary.PostSlope = leastSquaresSlope(durations[split:], rates[split:])

	summary.Mean = mean(rates)
	summary.StdDev = stdDev(rates, summary.Mean)
	summary.Min, summary.Max = minMax(rates)

	return summary
}

// SplitIndex locates the inflection index for the chosen strategy. The
// slope-change detector falls back to the quantile cut when the series is
// too short to bin meaningfully.
func SplitIndex(fused []domain.FusedRecord, strategy SplitStrategy) int {
	n := len(fused)
	if n == 0 {
		return 0
	}
	if strategy == SplitSlopeChange && n >= minPointsForBinning {
		if idx := slopeChangeSplit(fused); idx > 0 {
			return idx
		}
	}
	return quantileSplit(n)
}

func quantileSplit(n int) int {
	return int(math.Floor(float64(n) * quantileFraction))
}

// slopeChangeSplit partitions the sorted series into roughly equal buckets,
// computes the local least-squares slope of the buckets adjacent to each
// boundary, and returns the boundary index with the maximum absolute slope
// change inside the middle search range. Returns 0 when no boundary
// qualifies.
func slopeChangeSplit(fused []domain.FusedRecord) int {
	n := len(fused)
	bins := slopeChangeBins
	if n/bins < 2 {
		bins = n / 2
	}
	if bins < 4 {
		return 0
	}
	size := n / bins

	bestIdx := 0
	bestDelta := -1.0
	for b := 1; b < bins; b++ {
		idx := b * size
		frac := float64(idx) / float64(n)
		if frac < splitSearchLow || frac > splitSearchHigh {
			continue
		}

		before := fused[(b-1)*size : idx]
		afterEnd := (b + 1) * size
		if b == bins-1 {
			afterEnd = n
		}
		after := fused[idx:afterEnd]

		delta := math.Abs(segmentSlope(after) - segmentSlope(before))
		if delta > bestDelta {
			bestDelta = delta
			bestIdx = idx
		}
	}
	return bestIdx
}

// Smooth reduces a duration-sorted series with a non-overlapping bucketed
// moving average: consecutive chunks of windowSize records collapse into
// one averaged point each. Output length is ceil(N/windowSize) and empty
// iff the input is empty.
func Smooth(fused []domain.FusedRecord, windowSize int) []domain.SmoothedPoint {
	opts := Options{WindowSize: windowSize}.Normalized()
	w := opts.WindowSize

	points := make([]domain.SmoothedPoint, 0, (len(fused)+w-1)/w)
	for start := 0; start < len(fused); start += w {
		end := start + w
		if end > len(fused) {
			end = len(fused)
		}
		chunk := fused[start:end]

		var durSum, rateSum float64
		for _, f := range chunk {
			durSum += f.DurationSeconds
			rateSum += f.SuccessRate
		}
		points = append(points, domain.SmoothedPoint{
			DurationSeconds: durSum / float64(len(chunk)),
			SuccessRate:     rateSum / float64(len(chunk)),
		})
	}
	return points
}

func segmentSlope(records []domain.FusedRecord) float64 {
	xs := make([]float64, len(records))
	ys := make([]float64, len(records))
	for i, r := range records {
		xs[i] = r.DurationSeconds
		ys[i] = r.SuccessRate
	}
	return leastSquaresSlope(xs, ys)
}

// leastSquaresSlope returns the simple linear-regression slope of y on x,
// or 0 for degenerate inputs (fewer than 2 points, zero x variance).
func leastSquaresSlope(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	mx := mean(xs)
	my := mean(ys)

	var num, den float64
	for i := range xs {
		num += (xs[i] - mx) * (ys[i] - my)
		den += (xs[i] - mx) * (xs[i] - mx)
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// pearson returns the Pearson correlation coefficient, or 0 when either
// series has zero variance.
func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	mx := mean(xs)
	my := mean(ys)

	var num, dx, dy float64
	for i := range xs {
		num += (xs[i] - mx) * (ys[i] - my)
		dx += (xs[i] - mx) * (xs[i] - mx)
		dy += (ys[i] - my) * (ys[i] - my)
	}
	if dx == 0 || dy == 0 {
		return 0
	}
	return num / math.Sqrt(dx*dy)
}

func meanRate(records []domain.FusedRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.SuccessRate
	}
	return sum / float64(len(records))
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// stdDev is the population standard deviation.
func stdDev(vs []float64, m float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(vs)))
}

func minMax(vs []float64) (float64, float64) {
	if len(vs) == 0 {
		return 0, 0
	}
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
