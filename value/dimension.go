// Package value implements the closed universe of GeoScript value kinds,
// the dimension algebra scalars carry, and the entities (free variables)
// that own slices of the generator's adjustable vector.
package value

import "math/big"

// Dimension is a vector over the fixed basis {distance, angle}; "no unit" is
// the zero vector. Components are exact rationals because exponentiation by
// a rational exponent must scale them exactly, and repeated squaring or
// halving would otherwise drift under floating-point scaling. The standard
// library's math/big.Rat is used here rather than a third-party type: no
// example repo in the corpus ships a rational-number library, and the
// arithmetic needed (add, scale by a rational) is exactly what Rat provides.
type Dimension struct {
	Distance *big.Rat
	Angle    *big.Rat
}

func NoUnit() Dimension { return Dimension{Distance: big.NewRat(0, 1), Angle: big.NewRat(0, 1)} }

func Distance() Dimension { return Dimension{Distance: big.NewRat(1, 1), Angle: big.NewRat(0, 1)} }

func Angle() Dimension { return Dimension{Distance: big.NewRat(0, 1), Angle: big.NewRat(1, 1)} }

func (d Dimension) IsNoUnit() bool {
	return d.Distance.Sign() == 0 && d.Angle.Sign() == 0
}

func (d Dimension) Equal(o Dimension) bool {
	return d.Distance.Cmp(o.Distance) == 0 && d.Angle.Cmp(o.Angle) == 0
}

// Add combines the dimensions of two multiplied operands.
func (d Dimension) Add(o Dimension) Dimension {
	return Dimension{
		Distance: new(big.Rat).Add(d.Distance, o.Distance),
		Angle:    new(big.Rat).Add(d.Angle, o.Angle),
	}
}

// Scale is the dimension of d raised to a rational exponent.
func (d Dimension) Scale(exp *big.Rat) Dimension {
	return Dimension{
		Distance: new(big.Rat).Mul(d.Distance, exp),
		Angle:    new(big.Rat).Mul(d.Angle, exp),
	}
}

func (d Dimension) String() string {
	switch {
	case d.IsNoUnit():
		return ""
	case d.Distance.Sign() != 0 && d.Angle.Sign() == 0:
		return "distance^" + d.Distance.RatString()
	case d.Angle.Sign() != 0 && d.Distance.Sign() == 0:
		return "angle^" + d.Angle.RatString()
	default:
		return "distance^" + d.Distance.RatString() + "*angle^" + d.Angle.RatString()
	}
}
