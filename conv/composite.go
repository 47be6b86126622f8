package conv

import "vmap2toolkit/geom"

// Composite chains an ordered list of Conversions: FrwPt applies them
// head to tail, BckPt applies them tail to head. Grounded on
// original_source/geo_data/conv_geo.h's ConvGeo chaining of a named
// list of point transforms into a single src->dst pipeline.
type Composite struct {
	steps []Conversion
}

// NewComposite builds a Composite from an ordered, non-empty list of
// conversions. The destination of steps[i] must match the source of
// steps[i+1]; Composite does not itself check this (callers build the
// chain, typically geomap, which knows each link's named frames).
func NewComposite(steps ...Conversion) *Composite {
	cp := make([]Conversion, len(steps))
	copy(cp, steps)
	return &Composite{steps: cp}
}

func (c *Composite) FrwPt(p geom.Point) (geom.Point, error) {
	var err error
	for _, s := range c.steps {
		p, err = s.FrwPt(p)
		if err != nil {
			return geom.Point{}, err
		}
	}
	return p, nil
}

func (c *Composite) BckPt(p geom.Point) (geom.Point, error) {
	var err error
	for i := len(c.steps) - 1; i >= 0; i-- {
		p, err = c.steps[i].BckPt(p)
		if err != nil {
			return geom.Point{}, err
		}
	}
	return p, nil
}

// RescaleSrc rescales only the first step's source side: the
// remaining steps operate on the first step's output, which is
// unaffected by a change of units at the very start of the chain.
func (c *Composite) RescaleSrc(k float64) {
	if len(c.steps) > 0 {
		c.steps[0].RescaleSrc(k)
	}
}

// RescaleDst rescales only the last step's destination side.
func (c *Composite) RescaleDst(k float64) {
	if len(c.steps) > 0 {
		c.steps[len(c.steps)-1].RescaleDst(k)
	}
}

func (c *Composite) Clone() Conversion {
	steps := make([]Conversion, len(c.steps))
	for i, s := range c.steps {
		steps[i] = s.Clone()
	}
	return &Composite{steps: steps}
}
