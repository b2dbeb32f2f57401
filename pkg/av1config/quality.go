package av1config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tier is a named quality level.
type Tier int

const (
	TierBest Tier = iota
	TierBalanced
	TierLow
	TierCustom
)

// MaxCustomPercent is the upper bound of a custom bitrate percentage.
const MaxCustomPercent = 200

// Quality is either a named tier or a custom bitrate percentage (0-200).
type Quality struct {
	Tier    Tier
	Percent int // only meaningful for TierCustom
}

var (
	Best     = Quality{Tier: TierBest}
	Balanced = Quality{Tier: TierBalanced}
	Low      = Quality{Tier: TierLow}
)

// Custom returns a quality that scales the base bitrate by percent.
func Custom(percent int) Quality {
	return Quality{Tier: TierCustom, Percent: percent}
}

// ParseQuality accepts "best", "balanced", "low" or an integer percentage.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "best":
		return Best, nil
	case "balanced":
		return Balanced, nil
	case "low":
		return Low, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return Quality{}, fmt.Errorf("invalid quality %q: want best, balanced, low or 0-%d", s, MaxCustomPercent)
	}
	return Custom(n), nil
}

// String returns the string representation of the quality.
func (q Quality) String() string {
	switch q.Tier {
	case TierBest:
		return "best"
	case TierBalanced:
		return "balanced"
	case TierLow:
		return "low"
	default:
		return strconv.Itoa(q.Percent)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (q Quality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Quality) UnmarshalText(text []byte) error {
	parsed, err := ParseQuality(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Params returns the quantizer bounds and the bitrate scale (percent of base
// bitrate) for q. The bounds are not validated here; see Quantizers.
func (q Quality) Params() (qMin, qMax, scale int) {
	switch q.Tier {
	case TierBest:
		return 12, 25, 100
	case TierBalanced:
		return 12, 35, 100 * 2 / 3
	case TierLow:
		return 18, 45, 50
	default:
		b := clamp(q.Percent, 0, MaxCustomPercent)
		qMin, qMax = customQuantizers(b)
		return qMin, qMax, b
	}
}

// customQuantizers interpolates between (24, 45) at 0% and (5, 25) at 200%.
// The breakpoints are empirical. The arithmetic is float32 with every
// intermediate rounded, so ties such as q_max at 195% (24.375 + 1.1249989)
// land where the tuned values expect.
func customQuantizers(b int) (qMin, qMax int) {
	const (
		qMinLow  = 24
		qMinHigh = 5
		qMaxLow  = 45
		qMaxHigh = 25
	)
	t := float32(b) / MaxCustomPercent
	u := float32(1 - t)
	lerp := func(lo, hi float32) int {
		// Explicit conversions keep the compiler from fusing the multiply-adds.
		v := float32(float32(u*lo) + float32(t*hi))
		return int(math.Round(float64(v)))
	}
	return lerp(qMinLow, qMinHigh), lerp(qMaxLow, qMaxHigh)
}

// Default quantizer bounds used when a quality yields an unusable pair.
const (
	DefaultMinQuantizer = 12
	DefaultMaxQuantizer = 56
)

// ValidQuantizers reports whether the pair can be handed to the engine.
func ValidQuantizers(qMin, qMax int) bool {
	return qMin > 0 && qMin < qMax && qMax < 64
}

// Quantizers returns the validated bounds for q, substituting the defaults
// when the pair is unusable.
func (q Quality) Quantizers() (qMin, qMax int) {
	qMin, qMax, _ = q.Params()
	if !ValidQuantizers(qMin, qMax) {
		return DefaultMinQuantizer, DefaultMaxQuantizer
	}
	return qMin, qMax
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
