// Package geometry converts between the three coordinate spaces used by
// image hot-zones and answers hit-test queries.
//
//	natural:   pixel size of the decoded image, fixed per image
//	displayed: natural scaled to fit a container, recomputed on resize
//	relative:  unit square [0,1]x[0,1], the storage format
package geometry

import "math"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s Size) valid() bool { return s.Width > 0 && s.Height > 0 }

// Rect is axis-aligned. Zones store it in relative units; the hit tests
// below use it in displayed units.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Corners returns top-left, top-right, bottom-right, bottom-left.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height},
		{r.X, r.Y + r.Height},
	}
}

// Layout is the result of fitting an image into a container.
type Layout struct {
	Natural   Size    `json:"natural"`
	Container Size    `json:"container"`
	Displayed Size    `json:"displayed"`
	OffsetX   float64 `json:"offset_x"`
	OffsetY   float64 `json:"offset_y"`
}

// Fit scales natural down uniformly so it fits container: first by width,
// then by height if the scaled height still overflows. Smaller images are
// kept at their natural size. The result is centered on both axes.
// ok is false for zero or negative sizes.
func Fit(natural, container Size) (l Layout, ok bool) {
	if !natural.valid() || !container.valid() {
		return Layout{}, false
	}
	w, h := natural.Width, natural.Height
	if w > container.Width {
		h = h * container.Width / w
		w = container.Width
	}
	if h > container.Height {
		w = w * container.Height / h
		h = container.Height
	}
	return Layout{
		Natural:   natural,
		Container: container,
		Displayed: Size{Width: w, Height: h},
		OffsetX:   (container.Width - w) / 2,
		OffsetY:   (container.Height - h) / 2,
	}, true
}

// Valid is false for the zero Layout and anything Fit would reject.
func (l Layout) Valid() bool { return l.Displayed.valid() }

// ToRelative maps a displayed point into the unit square, clamped.
func (l Layout) ToRelative(p Point) Point {
	if !l.Valid() {
		return Point{}
	}
	return Point{
		X: Clamp01((p.X - l.OffsetX) / l.Displayed.Width),
		Y: Clamp01((p.Y - l.OffsetY) / l.Displayed.Height),
	}
}

// ToDisplayed maps a relative point into displayed pixels.
func (l Layout) ToDisplayed(p Point) Point {
	return Point{
		X: p.X*l.Displayed.Width + l.OffsetX,
		Y: p.Y*l.Displayed.Height + l.OffsetY,
	}
}

// Delta converts a displayed-space displacement into relative units.
func (l Layout) Delta(dx, dy float64) (float64, float64) {
	if !l.Valid() {
		return 0, 0
	}
	return dx / l.Displayed.Width, dy / l.Displayed.Height
}

// Contains reports whether a displayed point lies on the image itself
// rather than in the letterbox around it.
func (l Layout) Contains(p Point) bool {
	if !l.Valid() {
		return false
	}
	return Rect{X: l.OffsetX, Y: l.OffsetY, Width: l.Displayed.Width, Height: l.Displayed.Height}.Contains(p)
}

func (l Layout) RectToDisplayed(r Rect) Rect {
	tl := l.ToDisplayed(Point{r.X, r.Y})
	return Rect{
		X:      tl.X,
		Y:      tl.Y,
		Width:  r.Width * l.Displayed.Width,
		Height: r.Height * l.Displayed.Height,
	}
}

func (l Layout) PolygonToDisplayed(poly []Point) []Point {
	out := make([]Point, len(poly))
	for i, p := range poly {
		out[i] = l.ToDisplayed(p)
	}
	return out
}

// PointInPolygon is the even-odd ray casting test. Polygons with fewer
// than three vertices contain nothing.
func PointInPolygon(p Point, poly []Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// BoundingBox returns the min/max extent of poly. ok is false when poly
// is empty.
func BoundingBox(poly []Point) (r Rect, ok bool) {
	if len(poly) == 0 {
		return Rect{}, false
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range poly {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// Clamp01 also maps NaN to 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// ClampRect keeps r inside the unit square with both sides at least min.
func ClampRect(r Rect, min float64) Rect {
	if min < 0 {
		min = 0
	}
	if min > 1 {
		min = 1
	}
	r.X = math.Min(Clamp01(r.X), 1-min)
	r.Y = math.Min(Clamp01(r.Y), 1-min)
	r.Width = math.Min(math.Max(nan0(r.Width), min), 1-r.X)
	r.Height = math.Min(math.Max(nan0(r.Height), min), 1-r.Y)
	return r
}

func nan0(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
