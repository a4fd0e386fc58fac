package livemap

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"

	"github.com/phanxgames/livemap/geom"
	"github.com/phanxgames/livemap/layers"
)

// ObjectData is the construction instruction of a map object.
type ObjectData struct {
	layers.Object
	// Order is the creation order, used to draw objects of a layer in data
	// order.
	Order int
}

// Shape is the World geometry of a projected object. Lines holds the
// polylines of paths and reference lines; Rings holds the polygons of
// polygon objects, outer ring first. Empty is set for geometry without a
// single coordinate; such a shape has no extent and is never drawn.
type Shape struct {
	Point  geom.Vec[geom.World]
	Lines  [][]geom.Vec[geom.World]
	Rings  [][][]geom.Vec[geom.World]
	Bounds geom.Rect[geom.World]
	Empty  bool
}

// LocationComponent accumulates the extents of layer geometry until every
// object has been projected.
type LocationComponent struct {
	Locations []geom.Rect[geom.World]
	ready     bool
}

// Add records a World extent.
func (l *LocationComponent) Add(r geom.Rect[geom.World]) {
	l.Locations = append(l.Locations, r)
}

// SetReady marks the accumulated extents as complete.
func (l *LocationComponent) SetReady() { l.ready = true }

// IsReady reports whether every layer has reported its extent.
func (l *LocationComponent) IsReady() bool { return l.ready }

// LocationEvent is published once the initial view is known.
type LocationEvent struct {
	Position geom.Vec[geom.World]
	Zoom     int
}

var (
	// Object holds the layer object an entity was built from.
	Object = donburi.NewComponentType[ObjectData]()
	// Projected holds the World geometry of an object.
	Projected = donburi.NewComponentType[Shape]()
	// NeedsProjection marks objects whose geometry is still lon/lat only.
	NeedsProjection = donburi.NewTag()

	// LocationResolved fires once, when the initial position and zoom have
	// been requested from the camera.
	LocationResolved = events.NewEventType[LocationEvent]()

	objectQuery    = donburi.NewQuery(filter.Contains(Object))
	pendingQuery   = donburi.NewQuery(filter.Contains(Object, NeedsProjection))
	projectedQuery = donburi.NewQuery(filter.And(
		filter.Contains(Object, Projected),
		filter.Not(filter.Contains(NeedsProjection)),
	))
)
