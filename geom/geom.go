// Package geom implements the planar and spatial math shared by the
// pre-processor pipeline: distance, tack-point construction, sharp-corner
// detection, plane fitting, and bed-height interpolation.
package geom

import "math"

// Point is a 2D location on the print bed.
type Point struct {
	X, Y float64
}

// Vector is a 3D vector, used for plane fitting and point-in-triangle tests.
type Vector struct {
	X, Y, Z float64
}

func (v Vector) sub(o Vector) Vector {
	return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector) add(o Vector) Vector {
	return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector) scale(f float64) Vector {
	return Vector{v.X * f, v.Y * f, v.Z * f}
}

func (v Vector) length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vector) normalize() Vector {
	l := v.length()
	if l == 0 {
		return v
	}
	return v.scale(1 / l)
}

// Distance returns the Euclidean distance between p and q on (X, Y),
// treating absent coordinates as 0 (callers pass 0 for missing axes).
func Distance(p, q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// IsSharpCorner reports whether the two points, interpreted directly as 2D
// vectors from the origin (not as a segment difference — this matches the
// source, which computes dot products on the raw coordinates rather than on
// a p-minus-r displacement), form an angle in (0, pi/2).
//
// The denominator below is squared magnitudes rather than plain magnitudes,
// which is almost certainly a bug in the original firmware host tool (it
// should read point-times-reference-magnitude products, not their squares).
// Per the open question in the specification we preserve it bit-for-bit
// rather than "fixing" it, since doing so would change which corners are
// detected as sharp and no reference output exists to validate a change
// against.
func IsSharpCorner(point, reference Point) bool {
	var theta float64
	if (point.X == 0 && point.Y == 0) || (reference.X == 0 && reference.Y == 0) {
		theta = math.Acos(0)
	} else {
		num := point.X*reference.X + point.Y*reference.Y
		denom := math.Pow(point.X*point.X+point.Y*point.Y, 2) * math.Pow(reference.X*reference.X+reference.Y*reference.Y, 2)
		theta = math.Acos(num / denom)
	}
	return theta > 0 && theta < math.Pi/2
}

// PlaneEquation fits the plane through v1, v2, v3 and returns its
// coefficients (a, b, c, d) such that a*x + b*y + c*z + d = 0.
func PlaneEquation(v1, v2, v3 Vector) (a, b, c, d float64) {
	e1 := v2.sub(v1)
	e2 := v3.sub(v1)
	a = e1.Y*e2.Z - e2.Y*e1.Z
	b = e1.Z*e2.X - e2.Z*e1.X
	c = e1.X*e2.Y - e2.X*e1.Y
	d = -(a*v1.X + b*v1.Y + c*v1.Z)
	return
}

// ZFromPlane returns the Z value on plane (a,b,c,d) at the point's (X, Y).
func ZFromPlane(point Vector, a, b, c, d float64) float64 {
	return (a*point.X + b*point.Y + d) / -c
}

func sign(p1, p2, p3 Vector) float64 {
	return (p1.X-p3.X)*(p2.Y-p3.Y) - (p2.X-p3.X)*(p1.Y-p3.Y)
}

// IsPointInTriangle is a robust sign-based point-in-triangle test: each
// triangle vertex is nudged outward by a small epsilon along its external
// bisector before taking the three half-plane signs, so points exactly on
// an edge are still classified consistently.
func IsPointInTriangle(pt, v1, v2, v3 Vector) bool {
	nudge := func(corner, other1, other2 Vector) Vector {
		dir := corner.sub(other1).add(corner.sub(other2)).normalize()
		return corner.add(dir.scale(0.01))
	}
	n1 := nudge(v1, v2, v3)
	n2 := nudge(v2, v1, v3)
	n3 := nudge(v3, v1, v2)

	s1 := sign(pt, n1, n2) < 0
	s2 := sign(pt, n2, n3) < 0
	s3 := sign(pt, n3, n1) < 0
	return s1 == s2 && s2 == s3
}
