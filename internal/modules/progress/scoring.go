package progress

import "math"

// ComputePoints turns a submission into points for an activity worth maxPoints.
// A non-zero explicit value wins, then a non-zero percentage of maxPoints, then 0.
// The percentage is clamped to [0, 100] and a non-finite one counts as 0, so a derived value
// always lies in [0, maxPoints].
func ComputePoints(maxPoints int, explicitPoints *int, scorePercent *float64) int {
	if explicitPoints != nil && *explicitPoints != 0 {
		return *explicitPoints
	}
	if scorePercent != nil && *scorePercent != 0 {
		return int(math.Round(clampPercent(*scorePercent) / 100 * float64(maxPoints)))
	}
	return 0
}

func clampPercent(pct float64) float64 {
	switch {
	case math.IsNaN(pct), math.IsInf(pct, 0), pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// ValidPercent reports whether pct is a finite percentage in [0, 100].
func ValidPercent(pct float64) bool {
	return !math.IsNaN(pct) && !math.IsInf(pct, 0) && pct >= 0 && pct <= 100
}

// Policy decides how much a client-reported point value is believed.
type Policy struct {
	TrustExplicitPoints bool
}

func DefaultPolicy() Policy { return Policy{TrustExplicitPoints: true} }

// Scored is a computed point value plus what the explicit value looked like next to it.
type Scored struct {
	Points  int
	Derived int

	ExplicitIgnored  bool
	ExplicitMismatch bool
	ExceedsMax       bool
}

// Suspicious reports an explicit value that disagrees with the percentage or the activity maximum.
func (s Scored) Suspicious() bool {
	return s.ExplicitIgnored || s.ExplicitMismatch || s.ExceedsMax
}

func (p Policy) Score(maxPoints int, explicitPoints *int, scorePercent *float64) Scored {
	derived := ComputePoints(maxPoints, nil, scorePercent)
	hasExplicit := explicitPoints != nil && *explicitPoints != 0

	out := Scored{Derived: derived}
	if !p.TrustExplicitPoints {
		out.Points = derived
		out.ExplicitIgnored = hasExplicit && *explicitPoints != derived
		return out
	}
	out.Points = ComputePoints(maxPoints, explicitPoints, scorePercent)
	if hasExplicit {
		out.ExplicitMismatch = scorePercent != nil && *scorePercent != 0 && *explicitPoints != derived
		out.ExceedsMax = maxPoints >= 0 && *explicitPoints > maxPoints
	}
	return out
}
