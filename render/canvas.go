package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"vmap2toolkit/geom"
)

// Canvas is a raster target for a rendering step: polygon fill, line
// stroke and label text all land on the same *image.NRGBA. Fill uses
// golang.org/x/image/vector's scanline rasterizer; stroke uses a
// disc-stamping technique along each segment. Both are grounded on
// other_examples' WaterColorMap raster.go (fillPolygon/strokeLineString
// /drawDisc), generalized here to take an explicit color per call
// instead of a single renderer-wide fillColor.
type Canvas struct {
	Img *image.NRGBA
	W   int
	H   int
}

// NewCanvas allocates a transparent w×h canvas.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{Img: image.NewNRGBA(image.Rect(0, 0, w, h)), W: w, H: h}
}

// FillPolygon rasterizes one or more closed rings (already in pixel
// space) with a solid color, even-odd/nonzero winding handled by the
// underlying rasterizer.
func (c *Canvas) FillPolygon(rings geom.MultiLine, col color.NRGBA) {
	if len(rings) == 0 {
		return
	}
	ras := vector.NewRasterizer(c.W, c.H)
	any := false
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		ras.MoveTo(float32(ring[0].X), float32(ring[0].Y))
		for _, p := range ring[1:] {
			ras.LineTo(float32(p.X), float32(p.Y))
		}
		ras.ClosePath()
		any = true
	}
	if !any {
		return
	}
	src := image.NewUniform(col)
	ras.Draw(c.Img, c.Img.Bounds(), src, image.Point{})
}

// StrokeLine draws a polyline (pixel space) with the given width and
// color by stamping filled discs along each segment at sub-pixel
// intervals, matching the WaterColorMap technique so joins and caps
// come out rounded without separate join/cap logic.
func (c *Canvas) StrokeLine(line geom.Line, width float64, col color.NRGBA) {
	if len(line) == 0 {
		return
	}
	radius := width / 2
	if radius <= 0 {
		radius = 0.5
	}
	step := 0.75
	if width >= 5 {
		step = 0.9
	}
	if len(line) == 1 {
		c.drawDisc(line[0].X, line[0].Y, radius, col)
		return
	}
	for i := 0; i < len(line)-1; i++ {
		x0, y0 := line[i].X, line[i].Y
		x1, y1 := line[i+1].X, line[i+1].Y
		dx, dy := x1-x0, y1-y0
		segLen := math.Hypot(dx, dy)
		if segLen == 0 {
			c.drawDisc(x0, y0, radius, col)
			continue
		}
		steps := int(math.Ceil(segLen / step))
		for s := 0; s <= steps; s++ {
			t := float64(s) / float64(steps)
			c.drawDisc(x0+dx*t, y0+dy*t, radius, col)
		}
	}
}

// StrokeMultiLine strokes every component line.
func (c *Canvas) StrokeMultiLine(ml geom.MultiLine, width float64, col color.NRGBA) {
	for _, l := range ml {
		c.StrokeLine(l, width, col)
	}
}

func (c *Canvas) drawDisc(cx, cy, radius float64, col color.NRGBA) {
	minX := int(math.Floor(cx - radius))
	maxX := int(math.Ceil(cx + radius))
	minY := int(math.Floor(cy - radius))
	maxY := int(math.Ceil(cy + radius))
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX >= c.W {
		maxX = c.W - 1
	}
	if maxY >= c.H {
		maxY = c.H - 1
	}
	r2 := radius * radius
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := (float64(x) + 0.5) - cx
			dy := (float64(y) + 0.5) - cy
			if dx*dx+dy*dy <= r2 {
				c.blend(x, y, col)
			}
		}
	}
}

// blend performs simple source-over compositing so overlapping
// strokes and fills don't just clobber each other's alpha.
func (c *Canvas) blend(x, y int, col color.NRGBA) {
	if col.A == 0 || x < 0 || y < 0 || x >= c.W || y >= c.H {
		return
	}
	i := c.Img.PixOffset(x, y)
	if col.A == 255 {
		c.Img.Pix[i+0] = col.R
		c.Img.Pix[i+1] = col.G
		c.Img.Pix[i+2] = col.B
		c.Img.Pix[i+3] = 255
		return
	}
	a := float64(col.A) / 255
	inv := 1 - a
	c.Img.Pix[i+0] = uint8(float64(col.R)*a + float64(c.Img.Pix[i+0])*inv)
	c.Img.Pix[i+1] = uint8(float64(col.G)*a + float64(c.Img.Pix[i+1])*inv)
	c.Img.Pix[i+2] = uint8(float64(col.B)*a + float64(c.Img.Pix[i+2])*inv)
	existingA := float64(c.Img.Pix[i+3]) / 255
	outA := a + existingA*inv
	c.Img.Pix[i+3] = uint8(outA * 255)
}

// DrawText draws s at baseline point (x, y) in pixel space using a
// fixed bitmap font, rotated by angle radians around (x, y). No
// scalable/vector font binding in the retrieved stack fit this role
// cleanly (the pack's only font engines are harfbuzz/opentype shaping
// internals), so basicfont is used the way font.Drawer documents it.
func (c *Canvas) DrawText(s string, x, y float64, angle float64, col color.NRGBA) {
	if s == "" {
		return
	}
	if angle == 0 {
		d := font.Drawer{
			Dst:  c.Img,
			Src:  image.NewUniform(col),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(int(math.Round(x)), int(math.Round(y))),
		}
		d.DrawString(s)
		return
	}
	// Rotated text: render to a scratch image, then resample with
	// nearest-neighbor rotation around the anchor point.
	face := basicfont.Face7x13
	width := font.MeasureString(face, s).Round()
	height := face.Metrics().Height.Round()
	ascent := face.Metrics().Ascent.Round()
	scratch := image.NewNRGBA(image.Rect(0, 0, width+2, height+2))
	d := font.Drawer{
		Dst:  scratch,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, ascent),
	}
	d.DrawString(s)

	cosA, sinA := math.Cos(angle), math.Sin(angle)
	for sy := 0; sy < scratch.Bounds().Dy(); sy++ {
		for sx := 0; sx < scratch.Bounds().Dx(); sx++ {
			_, _, _, a := scratch.At(sx, sy).RGBA()
			if a == 0 {
				continue
			}
			// Anchor is the text's left-baseline point; rotate the
			// offset from it into canvas space.
			ox := float64(sx)
			oy := float64(sy) - float64(ascent)
			rx := ox*cosA - oy*sinA
			ry := ox*sinA + oy*cosA
			c.blend(int(math.Round(x+rx)), int(math.Round(y+ry)), col)
		}
	}
}
