package dynamo

import (
	"fmt"
	"math"
)

// Vector is an immutable three-component value. Every operation returns a new Vector.
type Vector struct {
	X, Y, Z float64
}

// Zero is the zero vector.
var Zero = Vector{}

func Vec(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

func (v Vector) Add(o Vector) Vector {
	return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector) Sub(o Vector) Vector {
	return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale multiplies every component by s.
func (v Vector) Scale(s float64) Vector {
	return Vector{v.X * s, v.Y * s, v.Z * s}
}

// Div divides every component by s and fails with ErrDivisionByZero when s is zero.
func (v Vector) Div(s float64) (Vector, error) {
	if s == 0 {
		return Zero, ErrDivisionByZero
	}
	return Vector{v.X / s, v.Y / s, v.Z / s}, nil
}

func (v Vector) Neg() Vector {
	return Vector{-v.X, -v.Y, -v.Z}
}

func (v Vector) Dot(o Vector) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector) Cross(o Vector) Vector {
	return Vector{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector) MagnitudeSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vector) Magnitude() float64 {
	return math.Sqrt(v.MagnitudeSq())
}

// Normalize returns the unit vector along v. The zero vector normalizes to itself.
func (v Vector) Normalize() Vector {
	mag := v.Magnitude()
	if mag == 0 {
		return Zero
	}
	return Vector{v.X / mag, v.Y / mag, v.Z / mag}
}

// Equal reports exact component-wise equality.
func (v Vector) Equal(o Vector) bool {
	return v.X == o.X && v.Y == o.Y && v.Z == o.Z
}

func (v Vector) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (v Vector) Triple() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func FromTriple(t [3]float64) Vector {
	return Vector{t[0], t[1], t[2]}
}

// Slice returns the components as an ordered [x, y, z] list for serialization.
func (v Vector) Slice() []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// VectorFromSlice builds a Vector from an ordered [x, y, z] list.
func VectorFromSlice(s []float64) (Vector, error) {
	if len(s) != 3 {
		return Zero, fmt.Errorf("%w: got %d", ErrMalformedVector, len(s))
	}
	return Vector{s[0], s[1], s[2]}, nil
}

func (v Vector) String() string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
