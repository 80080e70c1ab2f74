package profile

// Interpolate returns the duty for a sampled temperature. Samples outside the
// profile clamp to the first or last point; a sample on a knot returns that
// knot's duty exactly; anything else is linearly interpolated between the
// bracketing points.
func Interpolate(p Profile, sample float64) float64 {
	pts := p.points
	if len(pts) == 0 {
		return 0
	}

	first, last := pts[0], pts[len(pts)-1]
	if sample <= float64(first.Temperature) {
		return float64(first.Duty)
	}
	if sample >= float64(last.Temperature) {
		return float64(last.Duty)
	}

	for i := 0; i < len(pts)-1; i++ {
		lo, hi := pts[i], pts[i+1]
		t0, t1 := float64(lo.Temperature), float64(hi.Temperature)

		if sample == t0 {
			return float64(lo.Duty)
		}
		if sample > t0 && sample < t1 {
			d0, d1 := float64(lo.Duty), float64(hi.Duty)
			return d0 + (d1-d0)*(sample-t0)/(t1-t0)
		}
	}

	return float64(last.Duty)
}
