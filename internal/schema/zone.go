package schema

import (
	"encoding/json"

	"github.com/mind-engage/mindengage-games/internal/geometry"
)

// Shape is either a Rectangle (legacy) or a Polygon (current). A zone
// holds exactly one.
type Shape interface {
	shape()
}

// Rectangle is in relative units.
type Rectangle struct{ geometry.Rect }

// Polygon points are in relative units. Fewer than three points is a
// degenerate polygon that hit-tests as empty.
type Polygon struct{ Points []geometry.Point }

func (Rectangle) shape() {}
func (Polygon) shape()   {}

type Zone struct {
	ID        string
	Name      string
	IsCorrect bool
	Shape     Shape
}

type zoneJSON struct {
	ID        string           `json:"id"`
	Name      string           `json:"name,omitempty"`
	IsCorrect bool             `json:"is_correct"`
	X         *float64         `json:"x,omitempty"`
	Y         *float64         `json:"y,omitempty"`
	Width     *float64         `json:"width,omitempty"`
	Height    *float64         `json:"height,omitempty"`
	Points    []geometry.Point `json:"points,omitempty"`
}

// MarshalJSON flattens the shape next to the zone fields, which is the
// stored layout.
func (z Zone) MarshalJSON() ([]byte, error) {
	out := zoneJSON{ID: z.ID, Name: z.Name, IsCorrect: z.IsCorrect}
	switch s := z.Shape.(type) {
	case Rectangle:
		x, y, w, h := s.X, s.Y, s.Width, s.Height
		out.X, out.Y, out.Width, out.Height = &x, &y, &w, &h
	case Polygon:
		out.Points = s.Points
	}
	return json.Marshal(out)
}

// Contains hit-tests p, given in displayed pixels, against the zone laid
// out with l.
func (z Zone) Contains(l geometry.Layout, p geometry.Point) bool {
	if !l.Valid() {
		return false
	}
	switch s := z.Shape.(type) {
	case Rectangle:
		return l.RectToDisplayed(s.Rect).Contains(p)
	case Polygon:
		return geometry.PointInPolygon(p, l.PolygonToDisplayed(s.Points))
	}
	return false
}

// Bounds is the zone's extent in relative units.
func (z Zone) Bounds() (geometry.Rect, bool) {
	switch s := z.Shape.(type) {
	case Rectangle:
		return s.Rect, true
	case Polygon:
		return geometry.BoundingBox(s.Points)
	}
	return geometry.Rect{}, false
}

func (z Zone) Clone() Zone {
	if p, ok := z.Shape.(Polygon); ok {
		pts := make([]geometry.Point, len(p.Points))
		copy(pts, p.Points)
		z.Shape = Polygon{Points: pts}
	}
	return z
}

// HitTest returns the id of the topmost zone under p. Later zones are
// drawn over earlier ones.
func HitTest(zones []Zone, l geometry.Layout, p geometry.Point) (string, bool) {
	for i := len(zones) - 1; i >= 0; i-- {
		if zones[i].Contains(l, p) {
			return zones[i].ID, true
		}
	}
	return "", false
}
