package vecmat

import "math"

// Matrix is a row-major 3x3 matrix.
type Matrix [3][3]float64

// Axis numbers for elemental rotations.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
)

// Identity returns the 3x3 identity matrix.
func Identity() Matrix {
	return Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Elemental returns the rotation by a radians about the given axis (0=x,
// 1=y, 2=z). Applied to a vector with positive a, axis x turns y toward z,
// axis z turns x toward y, and axis y turns x toward z. The y form matches
// the frame-rotation convention of the precession angles in Meeus ch. 21.
func Elemental(axis int, a float64) Matrix {
	c, s := math.Cos(a), math.Sin(a)
	switch axis {
	case AxisX:
		return Matrix{{1, 0, 0}, {0, c, -s}, {0, s, c}}
	case AxisY:
		return Matrix{{c, 0, -s}, {0, 1, 0}, {s, 0, c}}
	case AxisZ:
		return Matrix{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
	}
	return Identity()
}

// Step is one elemental rotation in a Rotation sequence.
type Step struct {
	Axis  int
	Angle float64
}

// Rotation composes elemental rotations applied in the order given: the
// result rotates a vector by steps[0] first, then steps[1], and so on.
func Rotation(steps ...Step) Matrix {
	m := Identity()
	for _, st := range steps {
		m = Elemental(st.Axis, st.Angle).Mul(m)
	}
	return m
}

// Rotate returns m right-multiplied by the elemental rotation about axis.
func (m Matrix) Rotate(axis int, a float64) Matrix {
	return m.Mul(Elemental(axis, a))
}

// Mul returns the matrix product m·n.
func (m Matrix) Mul(n Matrix) Matrix {
	var r Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}
	return r
}

// Apply returns m·v.
func (m Matrix) Apply(v Vector) Vector {
	return Vector{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Transpose returns the transpose of m. For rotation matrices this is the inverse.
func (m Matrix) Transpose() Matrix {
	var r Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// Determinant returns det(m).
func (m Matrix) Determinant() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Inverse returns the inverse of m by the adjugate. A singular matrix
// yields a matrix of NaNs.
func (m Matrix) Inverse() Matrix {
	det := m.Determinant()
	if det == 0 {
		nan := math.NaN()
		return Matrix{{nan, nan, nan}, {nan, nan, nan}, {nan, nan, nan}}
	}
	inv := 1 / det
	return Matrix{
		{
			(m[1][1]*m[2][2] - m[1][2]*m[2][1]) * inv,
			(m[0][2]*m[2][1] - m[0][1]*m[2][2]) * inv,
			(m[0][1]*m[1][2] - m[0][2]*m[1][1]) * inv,
		},
		{
			(m[1][2]*m[2][0] - m[1][0]*m[2][2]) * inv,
			(m[0][0]*m[2][2] - m[0][2]*m[2][0]) * inv,
			(m[0][2]*m[1][0] - m[0][0]*m[1][2]) * inv,
		},
		{
			(m[1][0]*m[2][1] - m[1][1]*m[2][0]) * inv,
			(m[0][1]*m[2][0] - m[0][0]*m[2][1]) * inv,
			(m[0][0]*m[1][1] - m[0][1]*m[1][0]) * inv,
		},
	}
}

// Row returns row i as a Vector.
func (m Matrix) Row(i int) Vector {
	return Vector{m[i][0], m[i][1], m[i][2]}
}
