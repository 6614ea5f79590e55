package scene

import "math"

// DegreesToRadians converts degrees to radians.
const DegreesToRadians = math.Pi / 180

// Vector3 is a position or scale in meters.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is a rotation.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// IdentityQuaternion is the zero rotation.
func IdentityQuaternion() Quaternion {
	return Quaternion{W: 1}
}

// QuaternionFromEuler builds a rotation from Euler angles in radians,
// applied in yaw (Y), pitch (X), roll (Z) order.
func QuaternionFromEuler(x, y, z float64) Quaternion {
	hx, hy, hz := x/2, y/2, z/2
	sx, cx := math.Sin(hx), math.Cos(hx)
	sy, cy := math.Sin(hy), math.Cos(hy)
	sz, cz := math.Sin(hz), math.Cos(hz)
	return Quaternion{
		X: cy*sx*cz + sy*cx*sz,
		Y: sy*cx*cz - cy*sx*sz,
		Z: cy*cx*sz - sy*sx*cz,
		W: cy*cx*cz + sy*sx*sz,
	}
}

// Color3 is an RGB colour in [0,1].
type Color3 struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Color4 is an RGBA colour in [0,1].
type Color4 struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

var (
	White = Color3{R: 1, G: 1, B: 1}
	Red   = Color3{R: 1}
)

// WithAlpha extends c with an alpha channel.
func (c Color3) WithAlpha(a float64) Color4 {
	return Color4{R: c.R, G: c.G, B: c.B, A: a}
}
