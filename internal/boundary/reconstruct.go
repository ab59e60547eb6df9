package boundary

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geodensity/internal/geo"
)

// Reconstructor chains boundary segments into closed rings. Tolerance is the
// coordinate-match tolerance in degrees used everywhere endpoints are
// compared; tests can tighten or loosen it.
type Reconstructor struct {
	Tolerance float64
}

// NewReconstructor returns a Reconstructor with the given tolerance, falling
// back to geo.CoordMatchToleranceDeg when tol is not positive.
func NewReconstructor(tol float64) *Reconstructor {
	if tol <= 0 {
		tol = geo.CoordMatchToleranceDeg
	}
	return &Reconstructor{Tolerance: tol}
}

// Result is a reconstructed ring with its K-of-N segment diagnostics. A
// best-effort ring (SegmentsUsed < SegmentsTotal) is still returned; the
// caller decides whether partial coverage is acceptable.
type Result struct {
	Ring          geo.Polygon `json:"ring"`
	SegmentsUsed  int         `json:"segments_used"`
	SegmentsTotal int         `json:"segments_total"`
}

// Complete reports whether every input segment was chained into the ring.
func (r *Result) Complete() bool {
	return r.SegmentsUsed == r.SegmentsTotal
}

// Assemble chains segments into one closed ring.
//
// Each segment in turn seeds a chain that is greedily extended: any unused
// segment whose start or end matches the chain's tail (within Tolerance) is
// appended, reversed if it matched tail-to-tail. The first seed whose chain
// consumes every segment wins outright. If no seed consumes everything, the
// chain that used the most segments is kept, cleaned of consecutive
// near-duplicate points, and force-closed across the gap. Ties between
// equally long chains go to the earliest seed in input order, so the output
// depends on input iteration order.
//
// Disconnected segment groups (multi-polygon islands) are not supported; the
// caller must invoke Assemble once per connected group.
func (r *Reconstructor) Assemble(segments []Segment) (*Result, error) {
	n := len(segments)
	if n == 0 {
		return nil, eris.Wrap(geo.ErrEmptyInput, "boundary: no segments")
	}
	for _, s := range segments {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	if n == 1 {
		ring := r.closeRing(segments[0].Coords)
		return &Result{
			Ring:          geo.Polygon{Ring: ring, Closed: true},
			SegmentsUsed:  1,
			SegmentsTotal: 1,
		}, nil
	}

	var bestChain []geo.Point
	bestUsed := 0

	for seed := 0; seed < n; seed++ {
		chain, used := r.chainFrom(segments, seed)
		if used == n {
			ring := r.closeRing(chain)
			return &Result{
				Ring:          geo.Polygon{Ring: ring, Closed: true},
				SegmentsUsed:  n,
				SegmentsTotal: n,
			}, nil
		}
		if used > bestUsed {
			bestUsed = used
			bestChain = chain
		}
	}

	cleaned := r.dedupe(bestChain)
	if distinctCount(cleaned, r.Tolerance) < 3 {
		return nil, eris.Wrapf(ErrUnreconstructable,
			"best chain used %d of %d segments and collapsed below 3 distinct points", bestUsed, n)
	}

	ring := r.closeRing(cleaned)
	zap.L().Debug("boundary: best-effort ring",
		zap.Int("segments_used", bestUsed),
		zap.Int("segments_total", n),
	)
	return &Result{
		Ring:          geo.Polygon{Ring: ring, Closed: true},
		SegmentsUsed:  bestUsed,
		SegmentsTotal: n,
	}, nil
}

// chainFrom builds the longest greedy chain seeded by segments[seed].
// Returns the chained coordinates and the number of segments consumed.
func (r *Reconstructor) chainFrom(segments []Segment, seed int) ([]geo.Point, int) {
	used := make([]bool, len(segments))
	used[seed] = true
	consumed := 1

	chain := append([]geo.Point(nil), segments[seed].Coords...)

	for {
		tail := chain[len(chain)-1]
		extended := false

		for i, s := range segments {
			if used[i] {
				continue
			}
			switch {
			case s.Start().NearlyEqual(tail, r.Tolerance):
				chain = append(chain, s.Coords[1:]...)
			case s.End().NearlyEqual(tail, r.Tolerance):
				chain = append(chain, reverse(s.Coords)[1:]...)
			default:
				continue
			}
			used[i] = true
			consumed++
			extended = true
			break
		}

		if !extended || consumed == len(segments) {
			return chain, consumed
		}
	}
}

// closeRing appends the starting point when the ring's final coordinate does
// not already coincide with it.
func (r *Reconstructor) closeRing(coords []geo.Point) []geo.Point {
	ring := append([]geo.Point(nil), coords...)
	if len(ring) == 0 {
		return ring
	}
	if !ring[len(ring)-1].NearlyEqual(ring[0], r.Tolerance) {
		ring = append(ring, ring[0])
	}
	return ring
}

// dedupe removes consecutive near-identical points.
func (r *Reconstructor) dedupe(coords []geo.Point) []geo.Point {
	if len(coords) == 0 {
		return nil
	}
	out := coords[:1:1]
	for _, p := range coords[1:] {
		if !p.NearlyEqual(out[len(out)-1], r.Tolerance) {
			out = append(out, p)
		}
	}
	return out
}

// distinctCount counts points that are pairwise distinct under tol,
// ignoring a closing point that duplicates the first.
func distinctCount(coords []geo.Point, tol float64) int {
	var distinct []geo.Point
	for _, p := range coords {
		seen := false
		for _, q := range distinct {
			if p.NearlyEqual(q, tol) {
				seen = true
				break
			}
		}
		if !seen {
			distinct = append(distinct, p)
		}
	}
	return len(distinct)
}

func reverse(coords []geo.Point) []geo.Point {
	out := make([]geo.Point, len(coords))
	for i, p := range coords {
		out[len(coords)-1-i] = p
	}
	return out
}
