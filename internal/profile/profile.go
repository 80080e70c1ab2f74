// Package profile parses, validates and evaluates temperature to duty
// profiles.
//
// A Profile is an ascending sequence of calibration points that always ends
// with a critical point forcing full duty at the critical temperature,
// whatever duty bound applied to the user-supplied points.
package profile

import (
	"sort"
	"strconv"
	"strings"
)

// MaxDuty is the duty forced at the critical temperature.
const MaxDuty = 100

// Point is a single (temperature, duty) calibration pair.
type Point struct {
	Temperature int
	Duty        int
}

// Bounds constrain the points accepted by Parse. Temperatures are in °C,
// duties in percent; both ranges are inclusive.
type Bounds struct {
	MinTemp int
	MaxTemp int
	MinDuty int
	MaxDuty int
}

// DefaultBounds returns bounds spanning [minTemp, maxTemp] with the full
// 0-100% duty range.
func DefaultBounds(minTemp, maxTemp int) Bounds {
	return Bounds{MinTemp: minTemp, MaxTemp: maxTemp, MinDuty: 0, MaxDuty: MaxDuty}
}

// Profile is an immutable, normalized sequence of points. The zero value is
// an empty profile and evaluates to zero duty.
type Profile struct {
	points []Point
}

// Normalize sorts points by temperature and terminates them with the
// critical point (criticalTemp, MaxDuty). Points at or above criticalTemp are
// replaced by the critical point. Duplicate temperatures and decreasing
// duties are kept as given.
func Normalize(points []Point, criticalTemp int) Profile {
	sorted := make([]Point, 0, len(points)+1)
	for _, p := range points {
		if p.Temperature < criticalTemp {
			sorted = append(sorted, p)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Temperature < sorted[j].Temperature
	})

	sorted = append(sorted, Point{Temperature: criticalTemp, Duty: MaxDuty})

	return Profile{points: sorted}
}

// Points returns a copy of the profile's points.
func (p Profile) Points() []Point {
	out := make([]Point, len(p.points))
	copy(out, p.points)

	return out
}

func (p Profile) Len() int {
	return len(p.points)
}

// Critical returns the terminal point.
func (p Profile) Critical() (Point, bool) {
	if len(p.points) == 0 {
		return Point{}, false
	}

	return p.points[len(p.points)-1], true
}

// String renders the profile in the same syntax Parse accepts.
func (p Profile) String() string {
	var b strings.Builder
	for i, pt := range p.points {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		b.WriteString(strconv.Itoa(pt.Temperature))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(pt.Duty))
		b.WriteByte(')')
	}

	return b.String()
}
