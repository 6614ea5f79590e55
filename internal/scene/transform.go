package scene

// Transform is an actor's local transform relative to its parent.
type Transform struct {
	Position Vector3    `json:"position"`
	Rotation Quaternion `json:"rotation"`
	Scale    Vector3    `json:"scale"`
}

// DefaultTransform is the identity transform.
func DefaultTransform() Transform {
	return Transform{Rotation: IdentityQuaternion(), Scale: Vector3{X: 1, Y: 1, Z: 1}}
}

// TransformSpec is a partial transform as written in configuration: rotation
// is given in Euler degrees and unset fields keep their identity values.
type TransformSpec struct {
	Position *Vector3 `json:"position,omitempty" yaml:"position,omitempty"`
	Rotation *Vector3 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Scale    *Vector3 `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// Translate resolves a partial spec to a full local transform.
func Translate(spec TransformSpec) Transform {
	t := DefaultTransform()
	if spec.Position != nil {
		t.Position = *spec.Position
	}
	if spec.Rotation != nil {
		r := spec.Rotation
		t.Rotation = QuaternionFromEuler(r.X*DegreesToRadians, r.Y*DegreesToRadians, r.Z*DegreesToRadians)
	}
	if spec.Scale != nil {
		t.Scale = *spec.Scale
	}
	return t
}
