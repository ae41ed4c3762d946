package autodiff

// Vec3 is a 3D vector of tape variables.
type Vec3 [3]Var

// Vec creates a Vec3 of leaves holding x.
func (t *Tape) Vec(x [3]float64) Vec3 {
	return Vec3{t.Leaf(x[0]), t.Leaf(x[1]), t.Leaf(x[2])}
}

// Values returns the forward values.
func (a Vec3) Values() [3]float64 {
	return [3]float64{a[0].Value(), a[1].Value(), a[2].Value()}
}

// Add returns a + b.
func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a[0].Add(b[0]), a[1].Add(b[1]), a[2].Add(b[2])}
}

// Sub returns a - b.
func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a[0].Sub(b[0]), a[1].Sub(b[1]), a[2].Sub(b[2])}
}

// Mul returns s * a.
func (a Vec3) Mul(s Var) Vec3 {
	return Vec3{a[0].Mul(s), a[1].Mul(s), a[2].Mul(s)}
}

// Scale returns c * a for a constant c.
func (a Vec3) Scale(c float64) Vec3 {
	return Vec3{a[0].Scale(c), a[1].Scale(c), a[2].Scale(c)}
}

// Dot returns a · b.
func (a Vec3) Dot(b Vec3) Var {
	return a[0].Mul(b[0]).Add(a[1].Mul(b[1])).Add(a[2].Mul(b[2]))
}

// Cross returns a × b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a[1].Mul(b[2]).Sub(a[2].Mul(b[1])),
		a[2].Mul(b[0]).Sub(a[0].Mul(b[2])),
		a[0].Mul(b[1]).Sub(a[1].Mul(b[0])),
	}
}

// Norm returns |a|.
func (a Vec3) Norm() Var {
	return a.Dot(a).Sqrt()
}

// Unit returns a / |a|.
func (a Vec3) Unit() Vec3 {
	inv := a.Norm().Recip()
	return a.Mul(inv)
}
