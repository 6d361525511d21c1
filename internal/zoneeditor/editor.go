// Package zoneeditor is the authoring state machine for image hot-zones:
// drawing polygons, moving and resizing rectangles and dragging polygon
// vertices, all driven by pointer events in displayed pixels.
package zoneeditor

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-games/internal/geometry"
	"github.com/mind-engage/mindengage-games/internal/schema"
)

var (
	ErrTooFewPoints = errors.New("zoneeditor: a polygon needs at least 3 points")
	ErrZoneNotFound = errors.New("zoneeditor: zone not found")
)

type Mode string

const (
	ModeNone   Mode = "none"
	ModeDraw   Mode = "draw"
	ModeSelect Mode = "select"
)

const (
	// MinSize is the smallest rectangle side, in relative units.
	MinSize = 0.01
	// HandleRadius is the grab distance of a handle, in displayed pixels.
	HandleRadius = 8.0
)

type dragKind int

const (
	dragMove dragKind = iota + 1
	dragResize
	dragVertex
)

// drag is the single active pointer drag. origin is the zone as it was at
// pointer-down so a cancel can put it back.
type drag struct {
	kind   dragKind
	zone   int
	corner int
	vertex int
	start  geometry.Point
	origin schema.Zone
}

type Option func(*Editor)

// WithOnChange registers fn to receive the whole metadata after every
// committed edit.
func WithOnChange(fn func(schema.ImageInteractive)) Option {
	return func(e *Editor) { e.onChange = fn }
}

// WithIDs replaces the zone id generator.
func WithIDs(fn func() string) Option { return func(e *Editor) { e.newID = fn } }

// Editor edits the zones of one ImageInteractive. It is not safe for
// concurrent use.
type Editor struct {
	data      schema.ImageInteractive
	container geometry.Size
	layout    geometry.Layout
	mode      Mode
	draft     []geometry.Point
	preview   *geometry.Point
	selected  string
	drag      *drag
	onChange  func(schema.ImageInteractive)
	newID     func() string
}

func New(data schema.ImageInteractive, container geometry.Size, opts ...Option) *Editor {
	e := &Editor{data: data.Clone(), container: container, mode: ModeNone, newID: uuid.NewString}
	for _, o := range opts {
		o(e)
	}
	e.layout, _ = geometry.Fit(e.data.NaturalSize(), container)
	return e
}

// Data returns a copy of the edited metadata.
func (e *Editor) Data() schema.ImageInteractive { return e.data.Clone() }

func (e *Editor) Layout() geometry.Layout { return e.layout }
func (e *Editor) Mode() Mode              { return e.mode }
func (e *Editor) Dragging() bool          { return e.drag != nil }

// Draft is the polygon under construction, in relative units.
func (e *Editor) Draft() []geometry.Point { return slices.Clone(e.draft) }

// Preview is the pointer position shown while drawing, if any.
func (e *Editor) Preview() (geometry.Point, bool) {
	if e.preview == nil {
		return geometry.Point{}, false
	}
	return *e.preview, true
}

func (e *Editor) Selected() (string, bool) { return e.selected, e.selected != "" }

func (e *Editor) emit() {
	if e.onChange != nil {
		e.onChange(e.data.Clone())
	}
}

func (e *Editor) index(id string) int {
	return slices.IndexFunc(e.data.Zones, func(z schema.Zone) bool { return z.ID == id })
}

// SetMode switches mode. A partial polygon is discarded, not closed, and
// an active drag is committed.
func (e *Editor) SetMode(m Mode) {
	e.commitDrag()
	e.draft = nil
	e.preview = nil
	e.mode = m
}

// SetLayout refits the image into a new container. Stored zones are
// relative and do not change. ok is false while the layout is degenerate.
func (e *Editor) SetLayout(container geometry.Size) bool {
	e.commitDrag()
	e.container = container
	var ok bool
	e.layout, ok = geometry.Fit(e.data.NaturalSize(), container)
	return ok
}

// SetImage swaps the image. Zones stay in relative units.
func (e *Editor) SetImage(url string, width, height int) {
	e.commitDrag()
	e.data.ImageURL = url
	e.data.ImageWidth = width
	e.data.ImageHeight = height
	e.layout, _ = geometry.Fit(e.data.NaturalSize(), e.container)
	e.emit()
}

func (e *Editor) Select(id string) error {
	if id == "" {
		e.selected = ""
		return nil
	}
	if e.index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}
	e.selected = id
	return nil
}

// PointerDown handles a press at p, in displayed pixels. It reports
// whether the press did anything. A press while a drag is active is
// ignored.
func (e *Editor) PointerDown(p geometry.Point) bool {
	if e.drag != nil || !e.layout.Valid() {
		return false
	}
	switch e.mode {
	case ModeDraw:
		if !e.layout.Contains(p) {
			return false
		}
		e.draft = append(e.draft, e.layout.ToRelative(p))
		return true
	case ModeSelect:
		if e.beginDrag(p) {
			return true
		}
		id, hit := schema.HitTest(e.data.Zones, e.layout, p)
		if !hit {
			id = ""
		}
		changed := id != e.selected
		e.selected = id
		return changed
	}
	return false
}

// beginDrag starts a drag on the selected zone: corner handles resize,
// vertex handles drag a vertex, the body of a rectangle moves it.
func (e *Editor) beginDrag(p geometry.Point) bool {
	i := e.index(e.selected)
	if i < 0 {
		return false
	}
	z := e.data.Zones[i]
	d := &drag{zone: i, start: p, origin: z.Clone()}
	switch s := z.Shape.(type) {
	case schema.Rectangle:
		shown := e.layout.RectToDisplayed(s.Rect)
		corners := shown.Corners()
		if c, ok := nearest(corners[:], p); ok {
			d.kind, d.corner = dragResize, c
		} else if shown.Contains(p) {
			d.kind = dragMove
		} else {
			return false
		}
	case schema.Polygon:
		v, ok := nearest(e.layout.PolygonToDisplayed(s.Points), p)
		if !ok {
			return false
		}
		d.kind, d.vertex = dragVertex, v
	default:
		return false
	}
	e.drag = d
	return true
}

// nearest returns the index of the handle closest to p within reach.
func nearest(handles []geometry.Point, p geometry.Point) (int, bool) {
	best, bestD := -1, HandleRadius
	for i, h := range handles {
		if d := math.Hypot(h.X-p.X, h.Y-p.Y); d <= bestD {
			best, bestD = i, d
		}
	}
	return best, best >= 0
}

// PointerMove updates the draw preview or the active drag.
func (e *Editor) PointerMove(p geometry.Point) {
	if e.drag == nil {
		if e.mode != ModeDraw {
			return
		}
		if !e.layout.Contains(p) {
			e.preview = nil
			return
		}
		rel := e.layout.ToRelative(p)
		e.preview = &rel
		return
	}
	d := e.drag
	z := &e.data.Zones[d.zone]
	switch d.kind {
	case dragMove:
		r := d.origin.Shape.(schema.Rectangle).Rect
		dx, dy := e.layout.Delta(p.X-d.start.X, p.Y-d.start.Y)
		r.X = clamp(r.X+dx, 0, 1-r.Width)
		r.Y = clamp(r.Y+dy, 0, 1-r.Height)
		z.Shape = schema.Rectangle{Rect: r}
	case dragResize:
		r := d.origin.Shape.(schema.Rectangle).Rect
		z.Shape = schema.Rectangle{Rect: resize(r, d.corner, e.layout.ToRelative(p))}
	case dragVertex:
		poly := z.Shape.(schema.Polygon)
		pts := slices.Clone(poly.Points)
		pts[d.vertex] = e.layout.ToRelative(p)
		z.Shape = schema.Polygon{Points: pts}
	}
}

// resize moves corner c of r to q, keeping the opposite corner fixed.
// The result stays in the unit square with sides of at least MinSize, or
// of whatever room is left between the fixed corner and the border.
func resize(r geometry.Rect, c int, q geometry.Point) geometry.Rect {
	fixed := r.Corners()[(c+2)%4]
	var out geometry.Rect
	out.X, out.Width = resizeSide(fixed.X, q.X, c == 0 || c == 3)
	out.Y, out.Height = resizeSide(fixed.Y, q.Y, c == 0 || c == 1)
	return out
}

// resizeSide spans one axis between the fixed coordinate and q. before
// tells whether the moving edge lies before the fixed one.
func resizeSide(fixed, q float64, before bool) (start, size float64) {
	fixed = geometry.Clamp01(fixed)
	if before {
		room := fixed
		edge := clamp(q, 0, fixed-math.Min(MinSize, room))
		return edge, fixed - edge
	}
	room := 1 - fixed
	edge := clamp(q, fixed+math.Min(MinSize, room), 1)
	return fixed, edge - fixed
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(v, hi))
}

// PointerUp commits the active drag.
func (e *Editor) PointerUp(p geometry.Point) {
	if e.drag == nil {
		return
	}
	e.PointerMove(p)
	e.commitDrag()
}

// PointerLeave commits an active drag so it cannot get stuck, and clears
// the draw preview. The draft polygon is kept.
func (e *Editor) PointerLeave() {
	e.preview = nil
	e.commitDrag()
}

func (e *Editor) commitDrag() {
	if e.drag == nil {
		return
	}
	e.drag = nil
	e.emit()
}

// CancelDrag puts the dragged zone back as it was at pointer-down.
func (e *Editor) CancelDrag() {
	if e.drag == nil {
		return
	}
	e.data.Zones[e.drag.zone] = e.drag.origin
	e.drag = nil
}

// FinalizePolygon turns the draft into a new zone, correct by default.
func (e *Editor) FinalizePolygon() (schema.Zone, error) {
	if len(e.draft) < 3 {
		return schema.Zone{}, fmt.Errorf("%w: have %d", ErrTooFewPoints, len(e.draft))
	}
	z := schema.Zone{
		ID:        e.newID(),
		Name:      e.nextName(),
		IsCorrect: true,
		Shape:     schema.Polygon{Points: slices.Clone(e.draft)},
	}
	e.data.Zones = append(e.data.Zones, z)
	e.draft = nil
	e.preview = nil
	e.emit()
	return z.Clone(), nil
}

func (e *Editor) nextName() string {
	for n := len(e.data.Zones) + 1; ; n++ {
		name := fmt.Sprintf("Zone %d", n)
		if !slices.ContainsFunc(e.data.Zones, func(z schema.Zone) bool { return z.Name == name }) {
			return name
		}
	}
}

// UndoLastPoint drops the last draft point; removing the only point
// cancels construction. It returns the points left.
func (e *Editor) UndoLastPoint() int {
	if len(e.draft) > 0 {
		e.draft = e.draft[:len(e.draft)-1]
	}
	if len(e.draft) == 0 {
		e.draft = nil
		e.preview = nil
	}
	return len(e.draft)
}

func (e *Editor) DeleteZone(id string) error {
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}
	if e.drag != nil {
		// indexes shift; drop the drag with its zone or keep it in place
		if e.drag.zone == i {
			e.drag = nil
		} else if e.drag.zone > i {
			e.drag.zone--
		}
	}
	e.data.Zones = slices.Delete(e.data.Zones, i, i+1)
	if e.selected == id {
		e.selected = ""
	}
	e.emit()
	return nil
}

// ToggleCorrect flips is_correct. It is allowed in every mode.
func (e *Editor) ToggleCorrect(id string) error {
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}
	e.data.Zones[i].IsCorrect = !e.data.Zones[i].IsCorrect
	if e.drag != nil && e.drag.zone == i {
		e.drag.origin.IsCorrect = e.data.Zones[i].IsCorrect
	}
	e.emit()
	return nil
}

func (e *Editor) RenameZone(id, name string) error {
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}
	e.data.Zones[i].Name = name
	if e.drag != nil && e.drag.zone == i {
		e.drag.origin.Name = name
	}
	e.emit()
	return nil
}

func (e *Editor) SetRequireAllCorrect(v bool) {
	e.data.RequireAllCorrectZones = v
	e.emit()
}

type HandleKind string

const (
	HandleCorner HandleKind = "corner"
	HandleVertex HandleKind = "vertex"
)

// Handle is a grab point of the selected zone, in displayed pixels.
type Handle struct {
	Kind  HandleKind     `json:"kind"`
	Index int            `json:"index"`
	At    geometry.Point `json:"at"`
}

// Handles lists the handles of the selected zone for rendering.
func (e *Editor) Handles() []Handle {
	i := e.index(e.selected)
	if i < 0 || !e.layout.Valid() {
		return nil
	}
	var out []Handle
	switch s := e.data.Zones[i].Shape.(type) {
	case schema.Rectangle:
		for c, p := range e.layout.RectToDisplayed(s.Rect).Corners() {
			out = append(out, Handle{Kind: HandleCorner, Index: c, At: p})
		}
	case schema.Polygon:
		for v, p := range e.layout.PolygonToDisplayed(s.Points) {
			out = append(out, Handle{Kind: HandleVertex, Index: v, At: p})
		}
	}
	return out
}
