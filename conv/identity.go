package conv

import "vmap2toolkit/geom"

// Identity is the no-op Conversion: forward and backward both return
// the input unchanged. Rescaling an Identity conversion has no effect,
// matching the invariant "a conversion with identical src and dst
// returns points unchanged" (§8.3).
type Identity struct{}

func (Identity) FrwPt(p geom.Point) (geom.Point, error) { return p, nil }
func (Identity) BckPt(p geom.Point) (geom.Point, error) { return p, nil }
func (Identity) RescaleSrc(float64)                     {}
func (Identity) RescaleDst(float64)                     {}
func (Identity) Clone() Conversion                      { return Identity{} }
